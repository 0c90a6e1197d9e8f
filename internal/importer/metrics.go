package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesimport_imports_total",
		Help: "Spreadsheet imports by outcome.",
	}, []string{"outcome"})

	rowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesimport_rows_total",
		Help: "Data rows seen by the importer, by outcome.",
	}, []string{"outcome"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesimport_batches_total",
		Help: "Persistence batches by result.",
	}, []string{"result"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "salesimport_import_duration_seconds",
		Help:    "Wall time of a single import.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

const (
	outcomeSuccess  = "success"
	outcomePartial  = "partial"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"

	rowImported   = "imported"
	rowInvalid    = "invalid"
	rowDuplicate  = "duplicate"
	rowUnresolved = "unresolved"
)
