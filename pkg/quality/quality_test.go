package quality

import (
	"testing"
	"time"

	"github.com/medcanon/platform/pkg/common/models"
	"github.com/medcanon/platform/pkg/dedupe"
)

func TestSummarizeCounts(t *testing.T) {
	admission := time.Date(2021, 2, 1, 9, 0, 0, 0, time.UTC)
	phone := "+260971234567"

	cleaned := []models.CleanRecord{
		{
			PatientID:     "P-0001",
			FullName:      "Jane Poe",
			Gender:        "F",
			Phone:         &phone,
			AdmissionTime: &admission,
			VitalType:     "Temperature",
			LabTest:       "WBC",
		},
		{
			PatientID:    "P-0001", // duplicate patient
			FullName:     "Unknown",
			Gender:       "Unknown",
			PhoneInvalid: true,
			VitalType:    "Unknown",
			LabTest:      "Unknown",
		},
		{
			PatientID:    "P-0000", // placeholder id
			FullName:     "John Doe",
			Gender:       "M",
			PhoneInvalid: true,
			VitalType:    "Heart Rate",
			LabTest:      "Hgb",
		},
	}

	s := Summarize(cleaned, dedupe.Deduplicate(cleaned))

	if s.TotalRecords != 3 || s.UniquePatients != 2 || s.DuplicatesCollapsed != 1 {
		t.Fatalf("batch counts = %+v", s)
	}
	if s.PlaceholderIDs != 1 {
		t.Fatalf("placeholder ids = %d, want 1", s.PlaceholderIDs)
	}
	if s.UnknownName != 1 || s.UnknownGender != 1 || s.UnknownVitalType != 1 || s.UnknownLabTest != 1 {
		t.Fatalf("unknown counts = %+v", s)
	}
	if s.InvalidPhones != 2 {
		t.Fatalf("invalid phones = %d, want 2", s.InvalidPhones)
	}
	if s.MissingBirthDate != 3 || s.MissingAdmission != 2 || s.MissingDischarge != 3 {
		t.Fatalf("missing counts = %+v", s)
	}
}

func TestSummarizeEmptyBatch(t *testing.T) {
	s := Summarize(nil, dedupe.Deduplicate(nil))
	if s != (models.QualitySummary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}
