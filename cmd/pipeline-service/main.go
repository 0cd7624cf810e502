package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/medcanon/platform/pkg/common/config"
	"github.com/medcanon/platform/pkg/common/database"
	"github.com/medcanon/platform/pkg/common/kafka"
	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/ingest"
	"github.com/medcanon/platform/pkg/normalize"
	"github.com/medcanon/platform/pkg/observability/metrics"
	"github.com/medcanon/platform/pkg/patterns"
	"github.com/medcanon/platform/pkg/pipeline"
	"github.com/medcanon/platform/pkg/store"
)

func main() {
	logger.Init()
	cfg := config.Load()

	lib, err := patterns.Load(cfg.PatternsPath)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load pattern library, using defaults")
		lib = patterns.Default()
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres()

	canonicalRepo := store.NewRepository(db)
	if err := canonicalRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate canonical records table")
	}
	intakeRepo := ingest.NewRepository(db)
	if err := intakeRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate intake batches table")
	}

	cache := store.NewCache(database.GetRedis(), cfg.CanonicalCacheTTL)
	defer database.CloseRedis()

	encounterProducer := kafka.NewProducer(cfg.KafkaEncounterTopic)
	defer encounterProducer.Close()
	canonicalProducer := kafka.NewProducer(cfg.KafkaCanonicalTopic)
	defer canonicalProducer.Close()
	dlqProducer := kafka.NewProducer(cfg.KafkaDLQTopic)
	defer dlqProducer.Close()

	runner := pipeline.NewRunner(normalize.New(lib), cfg.PipelineWorkers)
	pipelineService := pipeline.NewService(runner, canonicalRepo, cache, canonicalProducer)

	validator := ingest.NewValidator(cfg.AllowedSources, cfg.MaxBatchSize)
	intakeService := ingest.NewService(validator, intakeRepo, encounterProducer, dlqProducer, cfg.IntakeStatusTTL)

	consumer := kafka.NewConsumer(cfg.KafkaEncounterTopic, "pipeline-service")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Consume(ctx, pipelineService.ProcessEvent); err != nil && err != context.Canceled {
			logger.Log.WithError(err).Error("Consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)
	ingest.NewHTTPHandler(intakeService, cfg.MaxRequestBody).Register(router)
	pipeline.NewHTTPHandler(pipelineService, cfg.MaxRequestBody).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Pipeline Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Pipeline Service...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Pipeline Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
