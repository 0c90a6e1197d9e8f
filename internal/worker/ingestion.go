package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/db"
	"github.com/Yaro-bit/SimpleSalesman/internal/events"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/internal/queue"
	"github.com/Yaro-bit/SimpleSalesman/internal/storage"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

type Importer interface {
	Import(ctx context.Context, data []byte) (model.ImportResult, error)
}

// JobSource delivers queued import jobs and takes back the ones that fail.
type JobSource interface {
	Consume(ctx context.Context, handler queue.MessageHandler) error
	DeadLetter(ctx context.Context, message []byte, cause error)
}

type Requeuer interface {
	EnqueueImport(ctx context.Context, job model.ImportJob) error
}

type IngestionWorker struct {
	importer    Importer
	repo        db.ImportRepository
	storage     storage.Storage
	source      JobSource
	requeue     Requeuer
	publisher   events.Publisher
	workerPool  *WorkerPool
	maxAttempts int
	log         zerolog.Logger
}

type IngestionDeps struct {
	Importer  Importer
	Repo      db.ImportRepository
	Storage   storage.Storage
	Source    JobSource
	Requeue   Requeuer
	Publisher events.Publisher
}

func NewIngestionWorker(deps IngestionDeps, workers, maxAttempts int) *IngestionWorker {
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &IngestionWorker{
		importer:    deps.Importer,
		repo:        deps.Repo,
		storage:     deps.Storage,
		source:      deps.Source,
		requeue:     deps.Requeue,
		publisher:   deps.Publisher,
		workerPool:  NewWorkerPool(workers),
		maxAttempts: maxAttempts,
		log:         logger.Component("ingestion_worker"),
	}
}

// Start consumes jobs until ctx is cancelled, then waits for the jobs already
// handed to the pool. Running imports are not interrupted by ctx.
func (w *IngestionWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting ingestion worker")

	w.workerPool.Start(context.WithoutCancel(ctx))
	defer w.workerPool.Stop()

	return w.source.Consume(ctx, w.handleMessage)
}

func (w *IngestionWorker) Stop() {
	w.log.Info().Msg("Stopping ingestion worker")
	w.workerPool.Stop()
}

func (w *IngestionWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode import job: %w", err)
	}
	if job.ImportID == "" || job.S3Path == "" {
		return fmt.Errorf("import job is missing import_id or s3_path")
	}

	w.log.Info().Str("import_id", job.ImportID).Int("attempt", job.Attempt).Msg("Received import job")

	err := w.workerPool.Submit(ctx, func(ctx context.Context) error {
		if err := w.processImport(ctx, job); err != nil {
			w.source.DeadLetter(ctx, data, err)
			return err
		}
		return nil
	})
	if err != nil {
		// shutting down; hand the job to the next consumer
		if qerr := w.requeue.EnqueueImport(context.WithoutCancel(ctx), job); qerr != nil {
			return fmt.Errorf("requeue import %s: %w", job.ImportID, qerr)
		}
	}
	return nil
}

// processImport downloads the file, runs the import and records the outcome.
// Download failures are retried until maxAttempts; the import outcome is
// final and never retried.
func (w *IngestionWorker) processImport(ctx context.Context, job model.ImportJob) error {
	log := w.log.With().Str("import_id", job.ImportID).Logger()

	log.Debug().Str("s3_path", job.S3Path).Msg("Downloading file from S3")
	data, err := w.storage.Download(ctx, job.S3Path)
	if err != nil {
		err = errors.NewRetryableError(err, "download "+job.S3Path)
		if job.Attempt+1 < w.maxAttempts {
			job.Attempt++
			log.Warn().Err(err).Int("attempt", job.Attempt).Msg("Download failed, requeueing")
			qerr := w.requeue.EnqueueImport(ctx, job)
			if qerr == nil {
				return nil
			}
			log.Error().Err(qerr).Msg("Failed to requeue import job")
		}
		w.fail(ctx, log, job, model.ImportResult{}, err)
		return err
	}

	result, importErr := w.importer.Import(ctx, data)

	var msg *string
	if importErr != nil {
		text := importErr.Error()
		msg = &text
	}
	if err := w.repo.CompleteImport(ctx, job.ImportID, result, msg); err != nil {
		log.Error().Err(err).Msg("Failed to record import outcome")
		return err
	}

	w.publish(ctx, log, job, result)

	if importErr != nil {
		// the outcome is stored; a broken file is not a queue failure
		log.Warn().Err(importErr).Msg("Import finished with error")
		return nil
	}
	log.Info().
		Int("processed", result.RecordsProcessed).
		Int("warnings", len(result.Errors)).
		Msg("Import job completed")
	return nil
}

func (w *IngestionWorker) fail(ctx context.Context, log zerolog.Logger, job model.ImportJob, result model.ImportResult, cause error) {
	text := cause.Error()
	if err := w.repo.UpdateImportStatus(ctx, job.ImportID, model.ImportStatusFailed, &text); err != nil {
		log.Error().Err(err).Msg("Failed to mark import as failed")
	}
	result.Errors = append(result.Errors, text)
	w.publish(ctx, log, job, result)
}

func (w *IngestionWorker) publish(ctx context.Context, log zerolog.Logger, job model.ImportJob, result model.ImportResult) {
	event := model.ImportCompletedEvent{
		ImportID:         job.ImportID,
		Success:          result.Success,
		RecordsProcessed: result.RecordsProcessed,
		ErrorCount:       len(result.Errors),
		CompletedAt:      time.Now().UTC(),
	}
	if err := w.publisher.PublishImportCompleted(ctx, event); err != nil {
		log.Warn().Err(err).Msg("Failed to publish import event")
	}
}
