package importer

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/excel"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

// Service imports project spreadsheets: parse, resolve regions, drop
// duplicates, then persist in batches.
type Service struct {
	store  Transactor
	parser excel.ParsingStrategy
	writer *BatchWriter
	opts   Options
	log    zerolog.Logger
}

func NewService(store Transactor, parser excel.ParsingStrategy, opts Options) *Service {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxFileSize < 1 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	if parser == nil {
		parser = excel.NewParser(opts.MaxErrors, opts.MaxRows)
	}
	return &Service{
		store:  store,
		parser: parser,
		writer: NewBatchWriter(opts.BatchSize),
		opts:   opts,
		log:    logger.Component("importer"),
	}
}

// Import runs one spreadsheet through the pipeline. The result is always
// populated; a non-nil error additionally tells the caller why the import
// did not complete. Structural problems match errors.ErrInvalidFileFormat,
// the error ceiling matches errors.ErrTooManyErrors and store failures are
// errors.PersistenceError.
func (s *Service) Import(ctx context.Context, data []byte) (model.ImportResult, error) {
	start := time.Now()
	log := s.log.With().Str("run_id", uuid.NewString()).Logger()
	defer func() { importDuration.Observe(time.Since(start).Seconds()) }()

	if size := int64(len(data)); size > s.opts.MaxFileSize {
		err := fmt.Errorf("%w (%d > %d bytes)", errors.ErrFileTooLarge, size, s.opts.MaxFileSize)
		importsTotal.WithLabelValues(outcomeRejected).Inc()
		return model.FailedResult(err.Error()), err
	}

	log.Info().Int("bytes", len(data)).Str("mode", string(s.opts.Mode)).Msg("Starting import")

	parsed, err := s.parser.Parse(ctx, data)
	if err != nil {
		importsTotal.WithLabelValues(outcomeRejected).Inc()
		if parsed != nil && stderrors.Is(err, errors.ErrNoValidRows) {
			rowsTotal.WithLabelValues(rowInvalid).Add(float64(len(parsed.Errors)))
			log.Warn().Int("errors", len(parsed.Errors)).Msg("No valid rows in spreadsheet")
			return model.FailedResult(append(parsed.Messages(), err.Error())...), err
		}
		log.Warn().Err(err).Msg("Spreadsheet rejected")
		return model.FailedResult(err.Error()), err
	}
	rowsTotal.WithLabelValues(rowInvalid).Add(float64(len(parsed.Errors)))

	run := &importRun{
		svc:      s,
		rows:     parsed.Rows,
		messages: parsed.Messages(),
		log:      log,
	}

	switch s.opts.Mode {
	case ModeLenient:
		err = run.execute(ctx, s.store, s.store.InTx, false)
	default:
		err = s.store.InTx(ctx, func(ctx context.Context, tx Store) error {
			return run.execute(ctx, tx, within(tx), true)
		})
		if err != nil {
			// rolled back
			run.processed = 0
		}
	}

	rowsTotal.WithLabelValues(rowImported).Add(float64(run.processed))

	if err != nil {
		importsTotal.WithLabelValues(outcomeFailed).Inc()
		log.Error().Err(err).Int("processed", run.processed).Msg("Import failed")
		messages := append(run.messages, "import failed: "+err.Error())
		return model.ImportResult{Success: false, RecordsProcessed: run.processed, Errors: messages}, err
	}

	result := model.ImportResult{
		Success:          len(run.messages) == 0 || run.processed > 0,
		RecordsProcessed: run.processed,
		Errors:           run.messages,
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}

	switch {
	case !result.Success:
		importsTotal.WithLabelValues(outcomeFailed).Inc()
	case len(result.Errors) > 0:
		importsTotal.WithLabelValues(outcomePartial).Inc()
	default:
		importsTotal.WithLabelValues(outcomeSuccess).Inc()
	}

	log.Info().
		Int("processed", result.RecordsProcessed).
		Int("warnings", len(result.Errors)).
		Dur("took", time.Since(start)).
		Msg("Import finished")
	return result, nil
}

// importRun carries the state of one import after parsing.
type importRun struct {
	svc       *Service
	rows      []model.ProjectRow
	messages  []string
	processed int
	log       zerolog.Logger
}

// execute resolves regions, filters duplicates and writes the remaining rows.
// store serves reads and region creation; run scopes each batch.
func (r *importRun) execute(ctx context.Context, store Store, run TxFunc, failFast bool) error {
	cache, err := LoadRegionCache(ctx, store)
	if err != nil {
		return err
	}

	failed, err := cache.CreateMissing(ctx, store, cache.Missing(r.rows), failFast)
	if err != nil {
		return err
	}

	texts, err := store.FindAllAddressTexts(ctx)
	if err != nil {
		return errors.NewPersistenceError("load address texts", err)
	}

	resolved := make([]model.ProjectRow, 0, len(r.rows))
	for _, row := range r.rows {
		name := regionName(row)
		region, ok := cache.Get(name)
		if !ok {
			reason := "unknown region"
			if ferr, found := failed[name]; found {
				reason = ferr.Error()
			}
			r.messages = append(r.messages, fmt.Sprintf("row %d: region %q could not be resolved: %s", row.Row, name, reason))
			rowsTotal.WithLabelValues(rowUnresolved).Inc()
			continue
		}
		row.Project.Address.Region = region
		row.Project.Address.RegionID = region.ID
		resolved = append(resolved, row)
	}

	proceed, warnings := NewDuplicateFilter(texts).Partition(resolved)
	r.messages = append(r.messages, warnings...)
	rowsTotal.WithLabelValues(rowDuplicate).Add(float64(len(warnings)))
	if len(warnings) > 0 {
		r.log.Info().Int("duplicates", len(warnings)).Msg("Skipped duplicate addresses")
	}

	if len(proceed) == 0 {
		r.log.Info().Msg("Nothing to persist")
		return nil
	}

	addresses := make([]*model.Address, len(proceed))
	projects := make([]*model.Project, len(proceed))
	for i, row := range proceed {
		addresses[i] = row.Project.Address
		projects[i] = row.Project
	}

	r.processed, err = r.svc.writer.Write(ctx, run, addresses, projects)
	return err
}
