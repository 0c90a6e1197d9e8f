package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

func TestImportRepository_CreateImport(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO import_files")).
		WithArgs("imp-1", "imports/imp-1.xlsx", "projekte.xlsx", model.ImportStatusUploaded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewImportRepository(db).CreateImport(context.Background(), &model.ImportFile{
		ID:           "imp-1",
		S3Path:       "imports/imp-1.xlsx",
		OriginalName: "projekte.xlsx",
		Status:       model.ImportStatusUploaded,
	})
	require.NoError(t, err)
}

func TestImportRepository_GetImport(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "s3_path", "original_name", "status", "records_processed", "error_count", "error_message", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM import_files WHERE id = ?").
		WithArgs("imp-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("imp-1", "imports/imp-1.xlsx", "projekte.xlsx", "IMPORTED", 3, 1, nil, now, now))

	file, err := NewImportRepository(db).GetImport(context.Background(), "imp-1")
	require.NoError(t, err)
	require.Equal(t, model.ImportStatusImported, file.Status)
	require.Equal(t, 3, file.RecordsProcessed)
	require.Equal(t, 1, file.ErrorCount)
	require.Nil(t, file.ErrorMessage)
}

func TestImportRepository_GetImportNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM import_files").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewImportRepository(db).GetImport(context.Background(), "missing")
	require.ErrorIs(t, err, errors.ErrImportNotFound)
}

func TestImportRepository_CompleteImport(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE import_files")).
		WithArgs(model.ImportStatusFailed, 0, 2, sqlmock.AnyArg(), "imp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := "persistence failure"
	err := NewImportRepository(db).CompleteImport(context.Background(), "imp-1",
		model.ImportResult{Success: false, Errors: []string{"row 1: x", "import failed"}}, &msg)
	require.NoError(t, err)
}

func TestImportRepository_UpdateImportStatusUnknownID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE import_files SET status = ?")).
		WithArgs(model.ImportStatusFailed, nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewImportRepository(db).UpdateImportStatus(context.Background(), "missing", model.ImportStatusFailed, nil)
	require.ErrorIs(t, err, errors.ErrImportNotFound)
}
