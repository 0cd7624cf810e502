package models

import (
	"time"
)

// RawRecord is one patient-encounter row exactly as ingested. Every field is
// optional free text; nil means the source never supplied the column. Raw
// records are immutable once read.
type RawRecord struct {
	PatientID     *string `json:"patient_id,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	DateOfBirth   *string `json:"date_of_birth,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	AdmissionTime *string `json:"admission_time,omitempty"`
	DischargeTime *string `json:"discharge_time,omitempty"`
	VitalType     *string `json:"vital_type,omitempty"`
	VitalValue    *string `json:"vital_value,omitempty"`
	LabTest       *string `json:"lab_test,omitempty"`
	LabResult     *string `json:"lab_result,omitempty"`
}

// CleanRecord is one encounter row after field-level normalization. Every
// field carries either a canonical value or an explicit fallback; consumers
// never observe a missing key. Nil pointers mean "absent", which is itself a
// defined outcome, not an error.
type CleanRecord struct {
	PatientID     string     `json:"patient_id"`
	FullName      string     `json:"full_name"`
	Gender        string     `json:"gender"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	PhoneInvalid  bool       `json:"phone_invalid"`
	AdmissionTime *time.Time `json:"admission_time,omitempty"`
	DischargeTime *time.Time `json:"discharge_time,omitempty"`
	VitalType     string     `json:"vital_type"`
	VitalValue    *string    `json:"vital_value,omitempty"`
	LabTest       string     `json:"lab_test"`
	LabResult     *string    `json:"lab_result,omitempty"`
}

// CanonicalDataset is the deduplicated output of a pipeline run: exactly one
// CleanRecord per distinct patient id. Records preserves first-seen patient
// order so reports and persistence stay deterministic. The dataset has no
// mutators after construction.
type CanonicalDataset struct {
	Records []CleanRecord `json:"records"`

	index map[string]int
}

func NewCanonicalDataset(records []CleanRecord) *CanonicalDataset {
	ds := &CanonicalDataset{
		Records: records,
		index:   make(map[string]int, len(records)),
	}
	for i, rec := range records {
		ds.index[rec.PatientID] = i
	}
	return ds
}

func (d *CanonicalDataset) Get(patientID string) (CleanRecord, bool) {
	if d == nil || d.index == nil {
		return CleanRecord{}, false
	}
	i, ok := d.index[patientID]
	if !ok {
		return CleanRecord{}, false
	}
	return d.Records[i], true
}

func (d *CanonicalDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// QualitySummary aggregates per-batch data-quality counters. Unrecognized
// input never rejects a record; it surfaces here instead.
type QualitySummary struct {
	TotalRecords        int `json:"total_records"`
	UniquePatients      int `json:"unique_patients"`
	DuplicatesCollapsed int `json:"duplicates_collapsed"`
	PlaceholderIDs      int `json:"placeholder_ids"`
	UnknownName         int `json:"unknown_name"`
	UnknownGender       int `json:"unknown_gender"`
	UnknownVitalType    int `json:"unknown_vital_type"`
	UnknownLabTest      int `json:"unknown_lab_test"`
	InvalidPhones       int `json:"invalid_phones"`
	MissingBirthDate    int `json:"missing_birth_date"`
	MissingAdmission    int `json:"missing_admission"`
	MissingDischarge    int `json:"missing_discharge"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // encounter-batch, canonical, intake-dlq
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Batch intake models
type IntakeRequest struct {
	Source  string            `json:"source"` // hospital, lab, registry
	Records []RawRecord       `json:"records"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type IntakeResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	RecordCount int       `json:"record_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// NormalizeResponse is the synchronous API result: the canonical dataset plus
// the quality counters observed while producing it.
type NormalizeResponse struct {
	RunID   string         `json:"run_id"`
	Dataset []CleanRecord  `json:"dataset"`
	Quality QualitySummary `json:"quality"`
}
