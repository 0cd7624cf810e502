package normalize

import (
	"github.com/medcanon/platform/pkg/common/models"
)

// Normalize runs every field normalizer over one raw record and assembles the
// clean record. Fields have no cross-dependencies, so order is irrelevant and
// callers may run records concurrently against a shared Normalizer.
func (n *Normalizer) Normalize(raw models.RawRecord) models.CleanRecord {
	phone, invalid := n.Phone(raw.Phone)
	return models.CleanRecord{
		PatientID:     n.PatientID(raw.PatientID),
		FullName:      n.Name(raw.FullName),
		Gender:        n.Gender(raw.Gender),
		DateOfBirth:   n.BirthDate(raw.DateOfBirth),
		Phone:         phone,
		PhoneInvalid:  invalid,
		AdmissionTime: n.Timestamp(raw.AdmissionTime),
		DischargeTime: n.Timestamp(raw.DischargeTime),
		VitalType:     n.VitalType(raw.VitalType),
		VitalValue:    n.FreeText(raw.VitalValue),
		LabTest:       n.LabTest(raw.LabTest),
		LabResult:     n.FreeText(raw.LabResult),
	}
}
