package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"igtracker/pkg/apify"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
	"igtracker/pkg/tracker"
)

// batchEngine is what a handler needs from the reconciliation engine
type batchEngine interface {
	Run(items []apify.Item, opts tracker.RunOptions) (*tracker.Report, error)
}

// Handler handles HTTP requests for the tracking endpoints
type Handler struct {
	runner tracker.JobRunner
	engine batchEngine
	logger logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(runner tracker.JobRunner, engine batchEngine, log logger.Logger) *Handler {
	return &Handler{
		runner: runner,
		engine: engine,
		logger: log,
	}
}

// Index serves the URL submission form
func (h *Handler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexHTML)
}

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProcessForm ingests the textarea of the submission form. Rows written
// from this entry point are stamped with a date-only fecha.
func (h *Handler) ProcessForm(c *gin.Context) {
	urls := tracker.ParseURLList(c.PostForm("urls"))
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid Instagram post or reel URLs provided"})
		return
	}

	h.runBatch(c, urls, tracker.RunOptions{DateOnly: true})
}

// ProcessCSV ingests an uploaded CSV whose first column holds the URLs.
// Rows written from this entry point carry a full datetime fecha.
func (h *Handler) ProcessCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("csvFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csvFile is required"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	urls, err := tracker.ParseCSVURLs(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse CSV file"})
		return
	}
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid Instagram post or reel URLs in file"})
		return
	}

	h.runBatch(c, urls, tracker.RunOptions{})
}

// Replay reconciles a previously captured scrape result without calling
// the scraping actor. Useful for reprocessing and for smoke testing the
// pipeline with fixtures.
func (h *Handler) Replay(c *gin.Context) {
	var items []apify.Item
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON array of scraped items"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no items to replay"})
		return
	}

	h.reconcile(c, items, tracker.RunOptions{})
}

func (h *Handler) runBatch(c *gin.Context, urls []string, opts tracker.RunOptions) {
	h.logger.InfoWithFields("submitting scrape job", map[string]interface{}{
		"urls": len(urls),
	})

	items, err := h.runner.Scrape(urls)
	if err != nil {
		h.logger.WithError(err).Error("Scrape job failed")
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.reconcile(c, items, opts)
}

func (h *Handler) reconcile(c *gin.Context, items []apify.Item, opts tracker.RunOptions) {
	report, err := h.engine.Run(items, opts)
	if err != nil {
		h.logger.WithError(err).Error("Reconciliation failed")
		// A partial report still tells the caller what made it through
		c.JSON(errorStatus(err), gin.H{"error": err.Error(), "data": report})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
		"message": reportMessage(report),
	})
}

// reportMessage keeps the Spanish wording of the page this API grew out of
func reportMessage(report *tracker.Report) string {
	if report.Appended == 0 && report.Updated == 0 {
		return "sin cambios"
	}
	return fmt.Sprintf("%d filas nuevas agregadas, %d filas actualizadas",
		report.Appended, report.Updated)
}

// errorStatus maps the error taxonomy onto HTTP status codes. Upstream
// failures surface as 502, everything else as 500.
func errorStatus(err error) int {
	var typed *errs.Error
	if !errors.As(err, &typed) {
		return http.StatusInternalServerError
	}

	switch typed.Type {
	case errs.ErrorTypeSubmission, errs.ErrorTypeConnection, errs.ErrorTypeTimeout, errs.ErrorTypeJobFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
