package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

// ImportRepository tracks asynchronous imports in the import_files table.
type ImportRepository interface {
	CreateImport(ctx context.Context, file *model.ImportFile) error
	GetImport(ctx context.Context, id string) (*model.ImportFile, error)
	UpdateImportStatus(ctx context.Context, id string, status model.ImportStatus, errorMessage *string) error
	CompleteImport(ctx context.Context, id string, result model.ImportResult, errorMessage *string) error
}

type repository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) ImportRepository {
	return &repository{db: db}
}

func (r *repository) CreateImport(ctx context.Context, file *model.ImportFile) error {
	query := `INSERT INTO import_files (id, s3_path, original_name, status) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, file.ID, file.S3Path, file.OriginalName, file.Status)
	if err != nil {
		return fmt.Errorf("insert import %s: %w", file.ID, err)
	}
	return nil
}

func (r *repository) GetImport(ctx context.Context, id string) (*model.ImportFile, error) {
	query := `SELECT id, s3_path, original_name, status, records_processed, error_count, error_message, created_at, updated_at
			  FROM import_files WHERE id = ?`

	var file model.ImportFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrImportNotFound
		}
		return nil, err
	}
	return &file, nil
}

func (r *repository) UpdateImportStatus(ctx context.Context, id string, status model.ImportStatus, errorMessage *string) error {
	query := `UPDATE import_files SET status = ?, error_message = ?, updated_at = NOW() WHERE id = ?`
	return r.exec(ctx, query, status, errorMessage, id)
}

func (r *repository) CompleteImport(ctx context.Context, id string, result model.ImportResult, errorMessage *string) error {
	status := model.ImportStatusImported
	if !result.Success {
		status = model.ImportStatusFailed
	}

	query := `UPDATE import_files
			  SET status = ?, records_processed = ?, error_count = ?, error_message = ?, updated_at = NOW()
			  WHERE id = ?`
	return r.exec(ctx, query, status, result.RecordsProcessed, len(result.Errors), errorMessage, id)
}

func (r *repository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrImportNotFound
	}
	return nil
}
