package ingest

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("intake batch not found")

const (
	StatusAccepted  = "accepted"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// BatchModel is the intake audit row: the untouched raw payload plus the
// publication status of the batch. Raw payloads are kept verbatim so a failed
// run can be replayed.
type BatchModel struct {
	ID          string         `gorm:"primaryKey;column:id"`
	Source      string         `gorm:"column:source"`
	RecordCount int            `gorm:"column:record_count"`
	Payload     datatypes.JSON `gorm:"column:payload"`
	Status      string         `gorm:"column:status"`
	Error       string         `gorm:"column:error"`
	RetryCount  int            `gorm:"column:retry_count"`
	LastAttempt *time.Time     `gorm:"column:last_attempt"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (BatchModel) TableName() string {
	return "intake_batches"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&BatchModel{})
}

func (r *Repository) Create(ctx context.Context, rec *BatchModel) error {
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&BatchModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"error":        errMsg,
			"updated_at":   now,
			"last_attempt": now,
		}).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*BatchModel, error) {
	var rec BatchModel
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, result.Error
}

func (r *Repository) CleanupExpired(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&BatchModel{}).Error
}
