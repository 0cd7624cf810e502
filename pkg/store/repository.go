package store

import (
	"context"
	"errors"
	"time"

	"github.com/medcanon/platform/pkg/common/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("canonical record not found")

// CanonicalModel is the persisted form of a CleanRecord, one row per patient.
// Re-running the pipeline upserts by patient id, so the table always mirrors
// the latest canonical dataset.
type CanonicalModel struct {
	PatientID     string     `gorm:"primaryKey;column:patient_id"`
	FullName      string     `gorm:"column:full_name"`
	Gender        string     `gorm:"column:gender"`
	DateOfBirth   *time.Time `gorm:"column:date_of_birth"`
	Phone         *string    `gorm:"column:phone"`
	PhoneInvalid  bool       `gorm:"column:phone_invalid"`
	AdmissionTime *time.Time `gorm:"column:admission_time"`
	DischargeTime *time.Time `gorm:"column:discharge_time"`
	VitalType     string     `gorm:"column:vital_type"`
	VitalValue    *string    `gorm:"column:vital_value"`
	LabTest       string     `gorm:"column:lab_test"`
	LabResult     *string    `gorm:"column:lab_result"`
	RunID         string     `gorm:"column:run_id"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (CanonicalModel) TableName() string {
	return "canonical_records"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&CanonicalModel{})
}

func (r *Repository) UpsertBatch(ctx context.Context, runID string, records []models.CleanRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]CanonicalModel, 0, len(records))
	now := time.Now().UTC()
	for _, rec := range records {
		rows = append(rows, toModel(rec, runID, now))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "patient_id"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
}

func (r *Repository) Get(ctx context.Context, patientID string) (models.CleanRecord, error) {
	var row CanonicalModel
	result := r.db.WithContext(ctx).First(&row, "patient_id = ?", patientID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.CleanRecord{}, ErrNotFound
	}
	if result.Error != nil {
		return models.CleanRecord{}, result.Error
	}
	return fromModel(row), nil
}

// List returns every canonical record in patient-id order, for the read-only
// reporting consumers.
func (r *Repository) List(ctx context.Context) ([]models.CleanRecord, error) {
	var rows []CanonicalModel
	if err := r.db.WithContext(ctx).Order("patient_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]models.CleanRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, fromModel(row))
	}
	return records, nil
}

func toModel(rec models.CleanRecord, runID string, now time.Time) CanonicalModel {
	return CanonicalModel{
		PatientID:     rec.PatientID,
		FullName:      rec.FullName,
		Gender:        rec.Gender,
		DateOfBirth:   rec.DateOfBirth,
		Phone:         rec.Phone,
		PhoneInvalid:  rec.PhoneInvalid,
		AdmissionTime: rec.AdmissionTime,
		DischargeTime: rec.DischargeTime,
		VitalType:     rec.VitalType,
		VitalValue:    rec.VitalValue,
		LabTest:       rec.LabTest,
		LabResult:     rec.LabResult,
		RunID:         runID,
		UpdatedAt:     now,
	}
}

func fromModel(row CanonicalModel) models.CleanRecord {
	return models.CleanRecord{
		PatientID:     row.PatientID,
		FullName:      row.FullName,
		Gender:        row.Gender,
		DateOfBirth:   row.DateOfBirth,
		Phone:         row.Phone,
		PhoneInvalid:  row.PhoneInvalid,
		AdmissionTime: row.AdmissionTime,
		DischargeTime: row.DischargeTime,
		VitalType:     row.VitalType,
		VitalValue:    row.VitalValue,
		LabTest:       row.LabTest,
		LabResult:     row.LabResult,
	}
}
