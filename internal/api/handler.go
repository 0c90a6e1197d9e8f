package api

import (
	"context"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/db"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/internal/storage"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

const uploadField = "file"

var spreadsheetTypes = map[string]struct{}{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.ms-excel.sheet.macroenabled.12":                    {},
	"application/vnd.ms-excel":                                          {},
}

var spreadsheetExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
}

type Importer interface {
	Import(ctx context.Context, data []byte) (model.ImportResult, error)
}

type JobQueue interface {
	EnqueueImport(ctx context.Context, job model.ImportJob) error
}

// Pinger is a dependency probed by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps wires the handler. Repo, Storage and Queue are only needed for
// asynchronous imports; without them those routes answer 503.
type Deps struct {
	Importer Importer
	Repo     db.ImportRepository
	Storage  storage.Storage
	Queue    JobQueue
	Checks   map[string]Pinger
}

type Handler struct {
	importer  Importer
	repo      db.ImportRepository
	storage   storage.Storage
	queue     JobQueue
	checks    map[string]Pinger
	cfg       *config.Config
	maxUpload int64
	log       zerolog.Logger
}

func NewHandler(deps Deps, cfg *config.Config) *Handler {
	return &Handler{
		importer:  deps.Importer,
		repo:      deps.Repo,
		storage:   deps.Storage,
		queue:     deps.Queue,
		checks:    deps.Checks,
		cfg:       cfg,
		maxUpload: cfg.Server.MaxUploadSize,
		log:       logger.Component("api"),
	}
}

// ImportSync runs the import inside the request and answers with the
// ImportResult. The status code reflects the kind of failure.
func (h *Handler) ImportSync(c *gin.Context) {
	data, _, status, msg := h.readUpload(c)
	if status != 0 {
		c.JSON(status, model.FailedResult(msg))
		return
	}

	result, err := h.importer.Import(c.Request.Context(), data)
	status = statusForImportError(err)
	if err != nil {
		h.log.Warn().Err(err).Int("status", status).Msg("Import failed")
	}
	c.JSON(status, result)
}

// ImportAsync stores the upload, records it and queues it for a worker.
func (h *Handler) ImportAsync(c *gin.Context) {
	if h.storage == nil || h.repo == nil || h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Asynchronous imports are not configured"})
		return
	}

	data, header, status, msg := h.readUpload(c)
	if status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	ctx := c.Request.Context()
	file := &model.ImportFile{
		ID:           uuid.NewString(),
		OriginalName: header.Filename,
		Status:       model.ImportStatusUploaded,
	}
	file.S3Path = storage.ImportKey(file.ID)
	log := h.log.With().Str("import_id", file.ID).Logger()

	if err := h.storage.Upload(ctx, file.S3Path, data); err != nil {
		log.Error().Err(err).Msg("Failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := h.repo.CreateImport(ctx, file); err != nil {
		log.Error().Err(err).Msg("Failed to record import")
		if derr := h.storage.Delete(ctx, file.S3Path); derr != nil {
			log.Warn().Err(derr).Msg("Failed to remove orphaned upload")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record import"})
		return
	}

	job := model.ImportJob{ImportID: file.ID, S3Path: file.S3Path}
	if err := h.queue.EnqueueImport(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue import job")
		reason := "failed to queue import: " + err.Error()
		if uerr := h.repo.UpdateImportStatus(ctx, file.ID, model.ImportStatusFailed, &reason); uerr != nil {
			log.Error().Err(uerr).Msg("Failed to mark import as failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
		return
	}

	log.Info().Str("file", header.Filename).Int("bytes", len(data)).Msg("Import job enqueued")
	c.JSON(http.StatusAccepted, gin.H{
		"import_id": file.ID,
		"status":    file.Status,
	})
}

func (h *Handler) GetImport(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Asynchronous imports are not configured"})
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import ID"})
		return
	}

	file, err := h.repo.GetImport(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, errors.ErrImportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import not found"})
			return
		}
		h.log.Error().Err(err).Str("import_id", id).Msg("Failed to load import")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, healthy := http.StatusOK, "healthy"
	checks := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("check", name).Msg("Health check failed")
			checks[name] = err.Error()
			status, healthy = http.StatusServiceUnavailable, "unhealthy"
			continue
		}
		checks[name] = "ok"
	}

	c.JSON(status, gin.H{
		"status":  healthy,
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"checks":  checks,
	})
}

// readUpload returns the uploaded spreadsheet, or a non-zero status and a
// message describing why the upload was refused.
func (h *Handler) readUpload(c *gin.Context) ([]byte, *multipart.FileHeader, int, string) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		if isTooLarge(err) {
			return nil, nil, http.StatusRequestEntityTooLarge, "file exceeds the maximum upload size"
		}
		return nil, nil, http.StatusBadRequest, "a spreadsheet must be uploaded in the \"file\" field"
	}
	if header.Size == 0 {
		return nil, nil, http.StatusBadRequest, "uploaded file is empty"
	}
	if !isSpreadsheet(header) {
		return nil, nil, http.StatusUnsupportedMediaType, errors.ErrUnsupportedFileType.Error() + ": only .xlsx files are accepted"
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, http.StatusBadRequest, "failed to read upload"
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, http.StatusBadRequest, "failed to read upload"
	}
	return data, header, 0, ""
}

func isSpreadsheet(header *multipart.FileHeader) bool {
	if _, ok := spreadsheetExtensions[strings.ToLower(filepath.Ext(header.Filename))]; ok {
		return true
	}
	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	_, ok := spreadsheetTypes[contentType]
	return ok
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func statusForImportError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, errors.ErrTooManyErrors):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, errors.ErrInvalidFileFormat):
		return http.StatusBadRequest
	default:
		// persistence failures and cancellations
		return http.StatusInternalServerError
	}
}
