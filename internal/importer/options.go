package importer

import (
	"strings"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/excel"
)

type TransactionMode string

const (
	// ModeStrict runs the whole import in one transaction.
	ModeStrict TransactionMode = config.TransactionModeStrict
	// ModeLenient commits region creation and every batch on its own.
	ModeLenient TransactionMode = config.TransactionModeLenient
)

const DefaultMaxFileSize int64 = 100 << 20

type Options struct {
	BatchSize   int
	MaxErrors   int
	MaxRows     int
	MaxFileSize int64
	Mode        TransactionMode
}

func DefaultOptions() Options {
	return Options{
		BatchSize:   DefaultBatchSize,
		MaxErrors:   excel.DefaultMaxErrors,
		MaxRows:     excel.DefaultMaxRows,
		MaxFileSize: DefaultMaxFileSize,
		Mode:        ModeStrict,
	}
}

// NewOptions maps the import section of the configuration, keeping the
// defaults for anything left unset.
func NewOptions(cfg config.ImportConfig) Options {
	opts := DefaultOptions()
	if cfg.BatchSize > 0 {
		opts.BatchSize = cfg.BatchSize
	}
	if cfg.MaxErrors > 0 {
		opts.MaxErrors = cfg.MaxErrors
	}
	if cfg.MaxRows > 0 {
		opts.MaxRows = cfg.MaxRows
	}
	if cfg.MaxFileSize > 0 {
		opts.MaxFileSize = cfg.MaxFileSize
	}
	if strings.EqualFold(cfg.TransactionMode, config.TransactionModeLenient) {
		opts.Mode = ModeLenient
	}
	return opts
}
