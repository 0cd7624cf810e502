package quality

import (
	"github.com/medcanon/platform/pkg/common/models"
)

// Summarize computes the per-batch quality counters over the pre-dedup clean
// records and the final dataset. The pipeline never rejects malformed input;
// these counters are how bad data becomes visible to the audit layer.
func Summarize(cleaned []models.CleanRecord, ds *models.CanonicalDataset) models.QualitySummary {
	s := models.QualitySummary{
		TotalRecords:   len(cleaned),
		UniquePatients: ds.Len(),
	}
	if s.TotalRecords > s.UniquePatients {
		s.DuplicatesCollapsed = s.TotalRecords - s.UniquePatients
	}

	for _, rec := range cleaned {
		if rec.PatientID == "P-0000" {
			s.PlaceholderIDs++
		}
		if rec.FullName == "Unknown" {
			s.UnknownName++
		}
		if rec.Gender == "Unknown" {
			s.UnknownGender++
		}
		if rec.VitalType == "Unknown" {
			s.UnknownVitalType++
		}
		if rec.LabTest == "Unknown" {
			s.UnknownLabTest++
		}
		if rec.PhoneInvalid {
			s.InvalidPhones++
		}
		if rec.DateOfBirth == nil {
			s.MissingBirthDate++
		}
		if rec.AdmissionTime == nil {
			s.MissingAdmission++
		}
		if rec.DischargeTime == nil {
			s.MissingDischarge++
		}
	}
	return s
}
