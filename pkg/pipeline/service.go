package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/medcanon/platform/pkg/common/kafka"
	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/common/models"
	"github.com/medcanon/platform/pkg/observability/metrics"
	"github.com/medcanon/platform/pkg/store"
)

// Service wires the runner to its collaborators: canonical persistence, the
// patient cache and the canonical-record topic. The core stays pure; all I/O
// happens here, after the synchronous Run call returns.
type Service struct {
	runner   *Runner
	repo     *store.Repository
	cache    *store.Cache
	producer *kafka.Producer
}

func NewService(runner *Runner, repo *store.Repository, cache *store.Cache, producer *kafka.Producer) *Service {
	return &Service{
		runner:   runner,
		repo:     repo,
		cache:    cache,
		producer: producer,
	}
}

func (s *Service) NormalizeBatch(ctx context.Context, source string, batch []models.RawRecord) (*models.NormalizeResponse, error) {
	runID := uuid.New().String()
	result := s.runner.Run(ctx, batch)
	metrics.ObserveRun(result.Quality)

	logger.WithFields(map[string]interface{}{
		"run_id":          runID,
		"source":          source,
		"records":         result.Quality.TotalRecords,
		"unique_patients": result.Quality.UniquePatients,
		"collapsed":       result.Quality.DuplicatesCollapsed,
	}).Info("pipeline run completed")

	if s.repo != nil {
		if err := s.repo.UpsertBatch(ctx, runID, result.Dataset.Records); err != nil {
			return nil, fmt.Errorf("persisting canonical records: %w", err)
		}
	}
	s.cache.SetBatch(ctx, result.Dataset.Records)

	if s.producer != nil {
		if err := s.producer.PublishCanonicalRecords(ctx, source, runID, result.Dataset.Records); err != nil {
			return nil, fmt.Errorf("publishing canonical records: %w", err)
		}
	}

	return &models.NormalizeResponse{
		RunID:   runID,
		Dataset: result.Dataset.Records,
		Quality: result.Quality,
	}, nil
}

// Lookup serves the canonical record for one patient, cache first.
func (s *Service) Lookup(ctx context.Context, patientID string) (models.CleanRecord, error) {
	if rec, ok := s.cache.Get(ctx, patientID); ok {
		return rec, nil
	}
	if s.repo == nil {
		return models.CleanRecord{}, store.ErrNotFound
	}
	return s.repo.Get(ctx, patientID)
}

// ProcessEvent handles one encounter-batch event from the intake topic.
func (s *Service) ProcessEvent(ctx context.Context, event models.Event) error {
	rawValue, ok := event.Data["records"]
	if !ok {
		logger.WithField("event_id", event.ID).Warn("encounter event carries no records")
		return nil
	}

	// Data arrives as generic JSON; round-trip through encoding to the typed
	// record slice.
	payload, err := json.Marshal(rawValue)
	if err != nil {
		return fmt.Errorf("re-encoding event records: %w", err)
	}
	var batch []models.RawRecord
	if err := json.Unmarshal(payload, &batch); err != nil {
		return fmt.Errorf("decoding event records: %w", err)
	}

	_, err = s.NormalizeBatch(ctx, event.Source, batch)
	return err
}
