package model

import "time"

// ImportResult is the summary returned to callers of an import. It is never persisted.
type ImportResult struct {
	Success          bool     `json:"success"`
	RecordsProcessed int      `json:"recordsProcessed"`
	Errors           []string `json:"errors"`
}

func FailedResult(messages ...string) ImportResult {
	errs := make([]string, 0, len(messages))
	errs = append(errs, messages...)
	return ImportResult{Success: false, RecordsProcessed: 0, Errors: errs}
}

type ImportStatus string

const (
	ImportStatusUploaded ImportStatus = "UPLOADED"
	ImportStatusImported ImportStatus = "IMPORTED"
	ImportStatusFailed   ImportStatus = "FAILED"
)

// ImportFile tracks an asynchronous import from upload to completion.
type ImportFile struct {
	ID               string       `json:"id" db:"id"`
	S3Path           string       `json:"s3_path" db:"s3_path"`
	OriginalName     string       `json:"original_name" db:"original_name"`
	Status           ImportStatus `json:"status" db:"status"`
	RecordsProcessed int          `json:"records_processed" db:"records_processed"`
	ErrorCount       int          `json:"error_count" db:"error_count"`
	ErrorMessage     *string      `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// ImportJob is the queue message for an uploaded file. Attempt counts
// redeliveries after retryable failures.
type ImportJob struct {
	ImportID string `json:"import_id"`
	S3Path   string `json:"s3_path"`
	Attempt  int    `json:"attempt,omitempty"`
}

type ImportCompletedEvent struct {
	ImportID         string    `json:"import_id"`
	Success          bool      `json:"success"`
	RecordsProcessed int       `json:"records_processed"`
	ErrorCount       int       `json:"error_count"`
	CompletedAt      time.Time `json:"completed_at"`
}
