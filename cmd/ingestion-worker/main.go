package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/db"
	"github.com/Yaro-bit/SimpleSalesman/internal/events"
	"github.com/Yaro-bit/SimpleSalesman/internal/importer"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/queue"
	"github.com/Yaro-bit/SimpleSalesman/internal/storage"
	"github.com/Yaro-bit/SimpleSalesman/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting ingestion worker")

	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	publisher, err := events.New(cfg.RabbitMQ)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer publisher.Close()

	ingestionWorker := worker.NewIngestionWorker(worker.IngestionDeps{
		Importer:  importer.NewService(db.NewProjectStore(database), nil, importer.NewOptions(cfg.Import)),
		Repo:      db.NewImportRepository(database),
		Storage:   s3Storage,
		Source:    queue.NewConsumer(redisClient, cfg),
		Requeue:   queue.NewProducer(redisClient, cfg),
		Publisher: publisher,
	}, cfg.Workers.Ingestion.Count, cfg.Workers.Ingestion.MaxAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ingestionWorker.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutting down ingestion worker...")
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Ingestion worker stopped with error")
		}
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Ingestion worker failed")
		}
	}

	log.Info().Msg("Ingestion worker exited")
}
