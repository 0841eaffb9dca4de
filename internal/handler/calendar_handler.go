package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/middleware"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/service"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
	"github.com/noah-isme/bimbel-adp-api/pkg/response"
)

type calendarViewer interface {
	View(ctx context.Context, teacherID, batchID string, window models.CalendarWindow) (*models.CalendarView, bool, error)
}

type conflictChecker interface {
	Check(ctx context.Context, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error)
}

type scheduleExporter interface {
	Render(ctx context.Context, teacherID string, window models.CalendarWindow, format models.ExportFormat) (*service.ExportFile, error)
	GenerateLink(ctx context.Context, teacherID string, window models.CalendarWindow, format models.ExportFormat) (*service.ExportResult, error)
	ParseToken(token string, allowExpired bool) (string, string, time.Time, error)
	Open(relPath string) (*os.File, error)
}

// CalendarHandler serves one-shot calendar views, synchronous conflict
// checks and schedule exports.
type CalendarHandler struct {
	views    calendarViewer
	conflict conflictChecker
	exports  scheduleExporter
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(views calendarViewer, conflict conflictChecker, exports scheduleExporter) *CalendarHandler {
	return &CalendarHandler{views: views, conflict: conflict, exports: exports}
}

// View godoc
// @Summary Materialized calendar window
// @Tags Calendar
// @Produce json
// @Param teacherId query string false "Teacher ID"
// @Param batchId query string false "Batch ID"
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD, exclusive)"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) View(c *gin.Context) {
	if h.views == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "calendar service not configured"))
		return
	}
	from, to, err := dto.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	teacherID := strings.TrimSpace(c.Query("teacherId"))
	batchID := strings.TrimSpace(c.Query("batchId"))
	view, cacheHit, err := h.views.View(c.Request.Context(), teacherID, batchID, models.CalendarWindow{From: from, To: to})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// CheckConflicts godoc
// @Summary Validate a proposed placement
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Proposed placement"
// @Success 200 {object} response.Envelope
// @Router /conflicts/check [post]
func (h *CalendarHandler) CheckConflicts(c *gin.Context) {
	if h.conflict == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "conflict service not configured"))
		return
	}
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid conflict check payload"))
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedRange.Code, appErrors.ErrMalformedRange.Status, "invalid start, expected RFC3339 timestamp"))
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrMalformedRange.Code, appErrors.ErrMalformedRange.Status, "invalid end, expected RFC3339 timestamp"))
		return
	}
	result, err := h.conflict.Check(c.Request.Context(), models.ConflictCheckRequest{
		TeacherID:  req.TeacherID,
		Room:       req.Room,
		Start:      start,
		End:        end,
		ExcludeUID: req.ExcludeUID,
		Generation: req.Generation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export a schedule window as CSV or PDF
// @Tags Calendar
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param teacherId query string true "Teacher ID"
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD, exclusive)"
// @Param format query string false "csv or pdf, defaults to csv"
// @Param link query bool false "Store the file and return a signed URL"
// @Success 200 {object} response.Envelope
// @Router /calendar/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	from, to, err := dto.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	teacherID := strings.TrimSpace(c.Query("teacherId"))
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	window := models.CalendarWindow{From: from, To: to}

	if c.Query("link") == "true" {
		result, err := h.exports.GenerateLink(c.Request.Context(), teacherID, window, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dto.ExportLinkResponse{
			URL:       result.URL,
			Format:    string(result.Format),
			ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		}, nil)
		return
	}

	file, err := h.exports.Render(c.Request.Context(), teacherID, window, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// Download godoc
// @Summary Download a stored export via signed token
// @Tags Calendar
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /calendar/export/{token} [get]
func (h *CalendarHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	_, relPath, _, err := h.exports.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	contentType := "text/csv"
	if strings.HasSuffix(strings.ToLower(relPath), ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", info.Name()))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
