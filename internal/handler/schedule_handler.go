package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
	"github.com/noah-isme/bimbel-adp-api/pkg/response"
)

type ruleService interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleRule, error)
	Create(ctx context.Context, batchID string, req dto.CreateRuleRequest) (*models.ScheduleRule, error)
	Update(ctx context.Context, id string, req dto.UpdateRuleRequest) (*models.ScheduleRule, error)
	Delete(ctx context.Context, id string) error
}

type overrideService interface {
	List(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, *models.Pagination, error)
	Upsert(ctx context.Context, req dto.UpsertOverrideRequest) (*models.ScheduleOverride, error)
	Delete(ctx context.Context, id string) error
}

type sessionService interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error)
	Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error)
	Cancel(ctx context.Context, id string) error
}

// ScheduleHandler manages the three persisted schedule shapes: weekly rules
// nested under their batch, date overrides and pinned sessions.
type ScheduleHandler struct {
	rules     ruleService
	overrides overrideService
	sessions  sessionService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(rules ruleService, overrides overrideService, sessions sessionService) *ScheduleHandler {
	return &ScheduleHandler{rules: rules, overrides: overrides, sessions: sessions}
}

// ListRules godoc
// @Summary List a batch's weekly rules
// @Tags Schedules
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/rules [get]
func (h *ScheduleHandler) ListRules(c *gin.Context) {
	if h.rules == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "schedule rule service not configured"))
		return
	}
	rules, err := h.rules.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// CreateRule godoc
// @Summary Add a weekly rule to a batch
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body dto.CreateRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /batches/{id}/rules [post]
func (h *ScheduleHandler) CreateRule(c *gin.Context) {
	if h.rules == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "schedule rule service not configured"))
		return
	}
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rule payload"))
		return
	}
	rule, err := h.rules.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// UpdateRule godoc
// @Summary Update a weekly rule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param ruleId path string true "Rule ID"
// @Param payload body dto.UpdateRuleRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/rules/{ruleId} [put]
func (h *ScheduleHandler) UpdateRule(c *gin.Context) {
	if h.rules == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "schedule rule service not configured"))
		return
	}
	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rule payload"))
		return
	}
	rule, err := h.rules.Update(c.Request.Context(), c.Param("ruleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// DeleteRule godoc
// @Summary Delete a weekly rule
// @Tags Schedules
// @Param id path string true "Batch ID"
// @Param ruleId path string true "Rule ID"
// @Success 204
// @Router /batches/{id}/rules/{ruleId} [delete]
func (h *ScheduleHandler) DeleteRule(c *gin.Context) {
	if h.rules == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "schedule rule service not configured"))
		return
	}
	if err := h.rules.Delete(c.Request.Context(), c.Param("ruleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListOverrides godoc
// @Summary List date overrides
// @Tags Schedules
// @Produce json
// @Param batchId query string false "Filter by batch"
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /overrides [get]
func (h *ScheduleHandler) ListOverrides(c *gin.Context) {
	if h.overrides == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "override service not configured"))
		return
	}
	var filter models.ScheduleOverrideFilter
	filter.BatchID = c.Query("batchId")
	from, ok := optionalDate(c, "from")
	if !ok {
		return
	}
	filter.DateFrom = from
	to, ok := optionalDate(c, "to")
	if !ok {
		return
	}
	filter.DateTo = to
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	overrides, pagination, err := h.overrides.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overrides, pagination)
}

// UpsertOverride godoc
// @Summary Create or replace the override for a (batch, date)
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.UpsertOverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Router /overrides [post]
func (h *ScheduleHandler) UpsertOverride(c *gin.Context) {
	if h.overrides == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "override service not configured"))
		return
	}
	var req dto.UpsertOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid override payload"))
		return
	}
	override, err := h.overrides.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, override, nil)
}

// DeleteOverride godoc
// @Summary Delete an override
// @Tags Schedules
// @Param id path string true "Override ID"
// @Success 204
// @Router /overrides/{id} [delete]
func (h *ScheduleHandler) DeleteOverride(c *gin.Context) {
	if h.overrides == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "override service not configured"))
		return
	}
	if err := h.overrides.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSessions godoc
// @Summary List pinned sessions
// @Tags Schedules
// @Produce json
// @Param batchId query string false "Filter by batch"
// @Param teacherId query string false "Filter by teacher"
// @Param status query string false "Filter by status"
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *ScheduleHandler) ListSessions(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session service not configured"))
		return
	}
	var filter models.SessionFilter
	filter.BatchID = c.Query("batchId")
	filter.TeacherID = c.Query("teacherId")
	filter.Status = c.Query("status")
	from, ok := optionalDate(c, "from")
	if !ok {
		return
	}
	filter.DateFrom = from
	to, ok := optionalDate(c, "to")
	if !ok {
		return
	}
	filter.DateTo = to
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	sessions, pagination, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// GetSession godoc
// @Summary Session detail
// @Tags Schedules
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *ScheduleHandler) GetSession(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session service not configured"))
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// CreateSession godoc
// @Summary Pin a concrete session
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *ScheduleHandler) CreateSession(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session service not configured"))
		return
	}
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session payload"))
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// UpdateSession godoc
// @Summary Update a session
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *ScheduleHandler) UpdateSession(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session service not configured"))
		return
	}
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session payload"))
		return
	}
	session, err := h.sessions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// CancelSession godoc
// @Summary Cancel a session
// @Tags Schedules
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *ScheduleHandler) CancelSession(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session service not configured"))
		return
	}
	if err := h.sessions.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// optionalDate parses a date query parameter when present. The bool reports
// whether handling should continue; a malformed value has already produced
// the error response.
func optionalDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := dto.ParseDate(raw)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return &parsed, true
}
