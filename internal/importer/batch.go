package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

const DefaultBatchSize = 1000

// BatchWriter persists addresses and their projects in fixed-size chunks.
type BatchWriter struct {
	size int
	log  zerolog.Logger
}

func NewBatchWriter(size int) *BatchWriter {
	if size < 1 {
		size = DefaultBatchSize
	}
	return &BatchWriter{size: size, log: logger.Component("batch_writer")}
}

// Write persists addresses[i] before projects[i] for every chunk, each chunk
// inside one call of run. It stops at the first failing chunk and returns
// the number of projects written by the chunks before it.
func (w *BatchWriter) Write(ctx context.Context, run TxFunc, addresses []*model.Address, projects []*model.Project) (int, error) {
	if len(addresses) != len(projects) {
		return 0, fmt.Errorf("batch writer: %d addresses for %d projects", len(addresses), len(projects))
	}

	written := 0
	for start := 0; start < len(projects); start += w.size {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		end := min(start+w.size, len(projects))
		batch := start/w.size + 1
		err := run(ctx, func(ctx context.Context, s Store) error {
			return w.writeChunk(ctx, s, addresses[start:end], projects[start:end])
		})
		if err != nil {
			batchesTotal.WithLabelValues("failed").Inc()
			w.log.Error().Err(err).Int("batch", batch).Int("written", written).Msg("Batch write failed")
			return written, err
		}

		batchesTotal.WithLabelValues("ok").Inc()
		written += end - start
		w.log.Debug().Int("batch", batch).Int("records", end-start).Msg("Processed batch")
	}
	return written, nil
}

func (w *BatchWriter) writeChunk(ctx context.Context, s Store, addresses []*model.Address, projects []*model.Project) error {
	if err := s.SaveAddressBatch(ctx, addresses); err != nil {
		return errors.NewPersistenceError("save address batch", err)
	}

	for i, p := range projects {
		a := addresses[i]
		if !a.Persisted() {
			return errors.NewPersistenceError("link projects",
				fmt.Errorf("address %q has no identifier after save", a.AddressText))
		}
		p.Address = a
		p.AddressID = a.ID
	}

	if err := s.SaveProjectBatch(ctx, projects); err != nil {
		return errors.NewPersistenceError("save project batch", err)
	}
	return nil
}
