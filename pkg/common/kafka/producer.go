package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medcanon/platform/pkg/common/config"
	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(topic string) *Producer {
	cfg := config.Load()
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{writer: writer}
}

func (p *Producer) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ID),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "source", Value: []byte(source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": eventType,
		}).Error("Failed to publish event")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": eventType,
		"topic":      p.writer.Topic,
	}).Debug("Event published")

	return nil
}

// PublishCanonicalRecords emits one keyed message per canonical record so
// that downstream consumers partition by patient id.
func (p *Producer) PublishCanonicalRecords(ctx context.Context, source, runID string, records []models.CleanRecord) error {
	messages := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		event := models.Event{
			ID:        uuid.New().String(),
			Type:      "canonical",
			Source:    source,
			Data:      map[string]interface{}{"record": rec},
			Timestamp: time.Now().UTC(),
			Metadata:  map[string]string{"run_id": runID},
		}
		eventBytes, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal canonical event: %w", err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(rec.PatientID),
			Value: eventBytes,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte("canonical")},
				{Key: "run-id", Value: []byte(runID)},
			},
		})
	}
	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"run_id": runID,
			"count":  len(messages),
		}).Error("Failed to publish canonical records")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"run_id": runID,
		"count":  len(messages),
		"topic":  p.writer.Topic,
	}).Info("Canonical records published")

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
