package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	MaxPageSize   = 100
	MaxPageNumber = 1000000
)

var allowedCSVExtensions = map[string]bool{
	".csv": true,
	".txt": true,
}

var allowedCSVContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"text/plain":               true,
	"application/vnd.ms-excel": true,
}

// RequestValidator handles upload and query validation
type RequestValidator struct {
	maxUploadBytes int64
}

// NewRequestValidator limits uploads to maxUploadMB; values <= 0 use the default.
func NewRequestValidator(maxUploadMB int) *RequestValidator {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	return &RequestValidator{maxUploadBytes: int64(maxUploadMB) << 20}
}

// ParsePagination reads page and perPage, clamping both to their maximums.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page number")
	}
	page = min(page, MaxPageNumber)

	perPage, err := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	if err != nil || perPage < 1 {
		return 0, 0, errors.New("invalid page size")
	}
	perPage = min(perPage, MaxPageSize)

	return page, perPage, nil
}

// IsValidCSVFile accepts a CSV content type or a .csv/.txt extension.
func (rv *RequestValidator) IsValidCSVFile(file *multipart.FileHeader) bool {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0]))
	if allowedCSVContentTypes[contentType] {
		return true
	}
	return allowedCSVExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

func (rv *RequestValidator) ValidateFileSize(file *multipart.FileHeader) error {
	if file.Size > rv.maxUploadBytes {
		return fmt.Errorf("file too large (max %dMB)", rv.maxUploadBytes>>20)
	}
	return nil
}
