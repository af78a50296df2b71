package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/relist-app/relist/internal/catalog"
	"github.com/relist-app/relist/internal/export"
	"github.com/relist-app/relist/internal/storage"
)

// maxBatchSize caps how many photos one request may carry. Larger batches
// degrade the holistic analysis and blow up request latency.
const maxBatchSize = 15

// maxUploadBytes caps the total multipart body size (64 MB).
const maxUploadBytes = 64 << 20

// Pipeline runs a batch of photos through analysis, grouping and assembly.
type Pipeline interface {
	Process(ctx context.Context, images []catalog.SourceImage) (*catalog.Result, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pipeline Pipeline
	store    storage.Store
}

// NewHandler creates a new HTTP handler. store may be nil to disable
// persistence of results.
func NewHandler(pipeline Pipeline, store storage.Store) *Handler {
	return &Handler{pipeline: pipeline, store: store}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "relist",
	})
}

// AnalyzeBatch accepts a multipart upload of furniture photos and returns
// the analyzed, grouped listings as JSON.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	images, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Process(c.Request.Context(), images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed: " + err.Error()})
		return
	}

	if h.store != nil {
		if err := h.store.SaveResult(result); err != nil {
			log.Warn().Err(err).Str("requestID", result.RequestID).Msg("failed to persist result")
		}
	}

	c.JSON(http.StatusOK, result)
}

// ExportBatch runs the same pipeline as AnalyzeBatch but streams back a zip
// archive with the bulk-upload CSV and the photos arranged per listing.
func (h *Handler) ExportBatch(c *gin.Context) {
	images, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.pipeline.Process(c.Request.Context(), images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed: " + err.Error()})
		return
	}

	if h.store != nil {
		if err := h.store.SaveResult(result); err != nil {
			log.Warn().Err(err).Str("requestID", result.RequestID).Msg("failed to persist result")
		}
	}

	byID := make(map[string]catalog.SourceImage, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="listings_%s.zip"`, result.RequestID))
	c.Status(http.StatusOK)
	if err := export.BuildArchive(c.Writer, result.Listings, byID); err != nil {
		log.Error().Err(err).Str("requestID", result.RequestID).Msg("failed to build export archive")
	}
}

// GetResult returns a previously stored batch result.
func (h *Handler) GetResult(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result storage disabled"})
		return
	}

	result, err := h.store.GetResult(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListResults returns summaries of recent batch results.
func (h *Handler) ListResults(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"results": []storage.ResultSummary{}})
		return
	}

	summaries, err := h.store.ListResults(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []storage.ResultSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"results": summaries})
}

// ExportResultCSV returns the bulk-upload CSV for a stored result.
func (h *Handler) ExportResultCSV(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result storage disabled"})
		return
	}

	result, err := h.store.GetResult(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="listings_%s.csv"`, result.RequestID))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, result.Listings); err != nil {
		log.Error().Err(err).Str("requestID", result.RequestID).Msg("failed to write csv export")
	}
}

// readUpload parses the multipart photo upload into source images. On
// failure it writes the error response and returns ok=false.
func (h *Handler) readUpload(c *gin.Context) ([]catalog.SourceImage, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return nil, false
	}

	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no photos provided, use the 'photos' form field"})
		return nil, false
	}
	if len(files) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("too many photos: got %d, max %d per batch", len(files), maxBatchSize)})
		return nil, false
	}

	images := make([]catalog.SourceImage, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload: " + err.Error()})
			return nil, false
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload: " + err.Error()})
			return nil, false
		}
		images = append(images, catalog.SourceImage{
			ID:   fmt.Sprintf("img_%02d", i+1),
			Name: fh.Filename,
			Data: data,
		})
	}
	return images, true
}
