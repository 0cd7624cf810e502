package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// Cache keeps the latest canonical record per patient in Redis so the read
// path can skip Postgres for hot lookups. Misses fall through silently; the
// cache is an optimization, never a source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(patientID string) string {
	return fmt.Sprintf("canonical:%s", patientID)
}

func (c *Cache) Get(ctx context.Context, patientID string) (models.CleanRecord, bool) {
	if c == nil || c.client == nil {
		return models.CleanRecord{}, false
	}
	payload, err := c.client.Get(ctx, cacheKey(patientID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Warn("canonical cache read failed")
		}
		return models.CleanRecord{}, false
	}
	var rec models.CleanRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return models.CleanRecord{}, false
	}
	return rec, true
}

func (c *Cache) SetBatch(ctx context.Context, records []models.CleanRecord) {
	if c == nil || c.client == nil || len(records) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKey(rec.PatientID), payload, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.WithError(err).Warn("canonical cache write failed")
	}
}
