package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/yashrajoria/catalog-import-service/apperrors"
	"github.com/yashrajoria/catalog-import-service/models"
	"github.com/yashrajoria/catalog-import-service/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BulkImportHandler serves the CSV upload endpoints.
type BulkImportHandler struct {
	importer  Importer
	jobs      ImportJobsAPI
	cache     *CacheManager
	validator *RequestValidator
}

// NewBulkImportHandler wires the handler. jobs may be nil, which disables async uploads.
func NewBulkImportHandler(importer Importer, jobs ImportJobsAPI, cache *CacheManager, validator *RequestValidator) *BulkImportHandler {
	return &BulkImportHandler{
		importer:  importer,
		jobs:      jobs,
		cache:     cache,
		validator: validator,
	}
}

// Upload ingests a CSV file, or queues it when ?async=true.
func (h *BulkImportHandler) Upload(c *gin.Context) {
	data, appErr := h.readUpload(c)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	if strings.ToLower(strings.TrimSpace(c.Query("async"))) == "true" {
		h.handleAsyncImport(c, data)
		return
	}

	ctx := c.Request.Context()
	report := h.importer.Ingest(ctx, data)
	if e, ok := report.FirstError(models.StageParse); ok {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "CSV parse error", errors.New(e.Detail)))
		return
	}
	if e, ok := report.FirstError(models.StageInsert); ok {
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Error saving products", errors.New(e.Detail)))
		return
	}

	if report.TotalInserted > 0 {
		if err := h.cache.Invalidate(ctx); err != nil {
			zap.L().Error("CRITICAL: Failed to invalidate cache after bulk import", zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Products uploaded",
		"count":   report.TotalInserted,
		"parsed":  report.TotalParsed,
		"valid":   report.TotalValid,
	})
}

// Validate parses and filters an upload without writing anything.
func (h *BulkImportHandler) Validate(c *gin.Context) {
	data, appErr := h.readUpload(c)
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	report := h.importer.Validate(c.Request.Context(), data)
	if e, ok := report.FirstError(models.StageParse); ok {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "CSV parse error", errors.New(e.Detail)))
		return
	}
	c.JSON(http.StatusOK, report)
}

// JobStatus returns the stored state of an async import.
func (h *BulkImportHandler) JobStatus(c *gin.Context) {
	if h.jobs == nil {
		apperrors.Respond(c, apperrors.New(http.StatusServiceUnavailable, "Async import is not available", nil))
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		apperrors.Respond(c, apperrors.New(http.StatusBadRequest, "Job ID required", nil))
		return
	}

	job, err := h.jobs.Status(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		apperrors.Respond(c, apperrors.New(http.StatusNotFound, "Job not found", nil))
		return
	}
	if err != nil {
		zap.L().Error("Failed to get job status", zap.String("job_id", id), zap.Error(err))
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Failed to retrieve job status", err))
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *BulkImportHandler) handleAsyncImport(c *gin.Context, data []byte) {
	if h.jobs == nil {
		apperrors.Respond(c, apperrors.New(http.StatusServiceUnavailable, "Async import is not available", nil))
		return
	}
	jobID, err := h.jobs.Enqueue(c.Request.Context(), data)
	if err != nil {
		zap.L().Error("Failed to enqueue async bulk import", zap.Error(err))
		apperrors.Respond(c, apperrors.New(http.StatusInternalServerError, "Failed to queue import job", err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"message": "Import queued for processing",
	})
}

// readUpload returns the whole "file" part after type and size checks.
func (h *BulkImportHandler) readUpload(c *gin.Context) ([]byte, *apperrors.Error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.New(http.StatusBadRequest, "No file uploaded.", nil)
	}
	if !h.validator.IsValidCSVFile(file) {
		return nil, apperrors.New(http.StatusBadRequest, "Invalid file type", errors.New("only CSV files are allowed"))
	}
	if err := h.validator.ValidateFileSize(file); err != nil {
		return nil, apperrors.New(http.StatusBadRequest, "File too large", err)
	}

	data, err := readFile(file)
	if err != nil {
		zap.L().Error("Failed to read uploaded file", zap.String("filename", file.Filename), zap.Error(err))
		return nil, apperrors.New(http.StatusInternalServerError, "Failed to read file", nil)
	}
	return data, nil
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	fh, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer fh.Close()
	return io.ReadAll(fh)
}
