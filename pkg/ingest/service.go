package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medcanon/platform/pkg/common/kafka"
	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/common/models"
	"github.com/medcanon/platform/pkg/observability/metrics"
	"gorm.io/datatypes"
)

// Service accepts raw encounter batches, persists an audit row and publishes
// the batch onto the encounter topic for the pipeline consumer. The records
// themselves pass through untouched.
type Service struct {
	validator *Validator
	repo      *Repository
	producer  *kafka.Producer
	dlq       *kafka.Producer
	statusTTL time.Duration
}

func NewService(validator *Validator, repo *Repository, producer *kafka.Producer, dlq *kafka.Producer, ttl time.Duration) *Service {
	return &Service{
		validator: validator,
		repo:      repo,
		producer:  producer,
		dlq:       dlq,
		statusTTL: ttl,
	}
}

func (s *Service) Process(ctx context.Context, req models.IntakeRequest) (*models.IntakeResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	metrics.ObserveIntake(1, 0, 0)

	id := uuid.New().String()
	payload, err := json.Marshal(req.Records)
	if err != nil {
		return nil, fmt.Errorf("encoding raw records: %w", err)
	}

	record := &BatchModel{
		ID:          id,
		Source:      req.Source,
		RecordCount: len(req.Records),
		Payload:     datatypes.JSON(payload),
		Status:      StatusAccepted,
		RetryCount:  0,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting intake batch: %w", err)
	}

	eventData := map[string]interface{}{
		"batch_id":    id,
		"source":      req.Source,
		"records":     req.Records,
		"meta":        req.Meta,
		"received_at": time.Now().UTC(),
	}

	sendErr := s.producer.PublishEvent(ctx, "encounter-batch", req.Source, eventData)
	if sendErr != nil {
		logger.Log.WithError(sendErr).Error("failed to publish encounter batch")
		metrics.ObserveIntake(0, 0, 1)
		_ = s.repo.UpdateStatus(ctx, id, StatusFailed, sendErr.Error())
		if s.dlq != nil {
			if dlqErr := s.dlq.PublishEvent(ctx, "intake-dlq", req.Source, eventData); dlqErr != nil {
				logger.Log.WithError(dlqErr).Error("failed to push batch to DLQ")
			}
		}
		return nil, fmt.Errorf("publishing encounter batch: %w", sendErr)
	}

	metrics.ObserveIntake(0, 1, 0)
	_ = s.repo.UpdateStatus(ctx, id, StatusPublished, "")

	return &models.IntakeResponse{
		ID:          id,
		Status:      StatusPublished,
		RecordCount: len(req.Records),
		Timestamp:   time.Now().UTC(),
	}, nil
}

func (s *Service) Status(ctx context.Context, id string) (*BatchModel, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Cleanup(ctx context.Context) error {
	return s.repo.CleanupExpired(ctx, s.statusTTL)
}
