package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/middleware"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
	"github.com/noah-isme/bimbel-adp-api/pkg/response"
)

type batchService interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.BatchDetail, error)
	Create(ctx context.Context, req dto.CreateBatchRequest) (*models.Batch, error)
	Update(ctx context.Context, id string, req dto.UpdateBatchRequest) (*models.Batch, error)
	Archive(ctx context.Context, id string) error
	SetEnrollment(ctx context.Context, id string, enrolled int) (*models.Batch, error)
}

type capacityReader interface {
	Snapshot(ctx context.Context, batchID string) (*models.CapacitySnapshot, bool, error)
}

type rescheduleSuggester interface {
	Suggest(ctx context.Context, batchID string, horizonWeeks int) ([]models.RescheduleCandidate, error)
}

type batchDayProber interface {
	BatchAvailableOn(ctx context.Context, batchID string, date time.Time) (bool, error)
}

// BatchHandler manages batch endpoints: CRUD plus the capacity,
// availability and reschedule-suggestion reads hanging off a batch.
type BatchHandler struct {
	batches      batchService
	capacity     capacityReader
	reschedule   rescheduleSuggester
	availability batchDayProber
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(batches batchService, capacity capacityReader, reschedule rescheduleSuggester, availability batchDayProber) *BatchHandler {
	return &BatchHandler{
		batches:      batches,
		capacity:     capacity,
		reschedule:   reschedule,
		availability: availability,
	}
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param status query string false "Filter by status"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch service not configured"))
		return
	}
	var filter models.BatchFilter
	filter.TeacherID = c.Query("teacherId")
	filter.Status = c.Query("status")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	batches, pagination, err := h.batches.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, pagination)
}

// Get godoc
// @Summary Batch detail with schedule rules
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch service not configured"))
		return
	}
	batch, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Create godoc
// @Summary Create a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch service not configured"))
		return
	}
	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid batch payload"))
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Update godoc
// @Summary Update a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body dto.UpdateBatchRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [put]
func (h *BatchHandler) Update(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch service not configured"))
		return
	}
	var req dto.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid batch payload"))
		return
	}
	batch, err := h.batches.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Archive godoc
// @Summary Archive a batch
// @Tags Batches
// @Param id path string true "Batch ID"
// @Success 204
// @Router /batches/{id} [delete]
func (h *BatchHandler) Archive(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch service not configured"))
		return
	}
	if err := h.batches.Archive(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetEnrollment godoc
// @Summary Update batch enrollment
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body dto.UpdateEnrollmentRequest true "Enrollment count"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/enrollment [put]
func (h *BatchHandler) SetEnrollment(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch service not configured"))
		return
	}
	var req dto.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enrolled == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment payload"))
		return
	}
	batch, err := h.batches.SetEnrollment(c.Request.Context(), c.Param("id"), *req.Enrolled)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Capacity godoc
// @Summary Batch capacity snapshot
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/capacity [get]
func (h *BatchHandler) Capacity(c *gin.Context) {
	if h.capacity == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "capacity service not configured"))
		return
	}
	snapshot, cacheHit, err := h.capacity.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, snapshot, nil, middleware.ExtractMeta(c))
}

// RescheduleOptions godoc
// @Summary Suggest replacement slots for a batch
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Param weeks query int false "Search horizon in weeks (1-12)"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/reschedule-options [get]
func (h *BatchHandler) RescheduleOptions(c *gin.Context) {
	if h.reschedule == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "reschedule service not configured"))
		return
	}
	weeks := 0
	if raw := c.Query("weeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weeks must be between 1 and 12"))
			return
		}
		weeks = parsed
	}
	candidates, err := h.reschedule.Suggest(c.Request.Context(), c.Param("id"), weeks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Availability godoc
// @Summary Report whether a batch meets on a date
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/availability [get]
func (h *BatchHandler) Availability(c *gin.Context) {
	if h.availability == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "availability service not configured"))
		return
	}
	date, err := dto.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	available, err := h.availability.BatchAvailableOn(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AvailabilityResponse{
		BatchID:   c.Param("id"),
		Date:      dto.FormatDate(date),
		Available: available,
	}, nil)
}
