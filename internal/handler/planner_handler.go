package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/service"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
	"github.com/noah-isme/bimbel-adp-api/pkg/response"
)

type plannerSessions interface {
	Open(ctx context.Context, teacherID string, window models.CalendarWindow) (*service.ScheduleBoard, error)
	Resolve(token string) (*service.ScheduleBoard, error)
	Close(token string) error
}

type boardEngine interface {
	Events(board *service.ScheduleBoard) ([]models.CalendarEventInstance, []models.TimeBlock, int64)
	Refresh(ctx context.Context, board *service.ScheduleBoard) error
	BeginGesture(ctx context.Context, board *service.ScheduleBoard, kind models.GestureKind, uid string, spec *models.CreateSpec) (*service.Gesture, error)
	UpdateGesture(board *service.ScheduleBoard, gestureID string, deltaMin int) (*service.Gesture, error)
	CommitGesture(ctx context.Context, board *service.ScheduleBoard, gestureID string) (*models.CommitResult, error)
	CancelGesture(board *service.ScheduleBoard, gestureID string) error
	CreateBlock(ctx context.Context, board *service.ScheduleBoard, block *models.TimeBlock) (*models.TimeBlock, error)
	DeleteBlock(ctx context.Context, board *service.ScheduleBoard, blockID string) error
}

// PlannerHandler exposes the interactive planner board: token-addressed
// sessions over one teacher's calendar window plus the gesture lifecycle
// editing it.
type PlannerHandler struct {
	sessions plannerSessions
	engine   boardEngine
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(sessions plannerSessions, engine boardEngine) *PlannerHandler {
	return &PlannerHandler{sessions: sessions, engine: engine}
}

// Open godoc
// @Summary Open a planner board
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.OpenBoardRequest true "Board window"
// @Success 201 {object} response.Envelope
// @Router /planner [post]
func (h *PlannerHandler) Open(c *gin.Context) {
	if h.sessions == nil || h.engine == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "planner service not configured"))
		return
	}
	var req dto.OpenBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid planner payload"))
		return
	}
	from, to, err := dto.ParseWindow(req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.sessions.Open(c.Request.Context(), req.TeacherID, models.CalendarWindow{From: from, To: to})
	if err != nil {
		response.Error(c, err)
		return
	}
	events, _, _ := h.engine.Events(board)
	response.JSON(c, http.StatusCreated, dto.OpenBoardResponse{
		Token:     board.Token,
		TeacherID: board.TeacherID,
		From:      dto.FormatDate(board.Window.From),
		To:        dto.FormatDate(board.Window.To),
		Events:    events,
	}, nil)
}

// Events godoc
// @Summary Read board events
// @Tags Planner
// @Produce json
// @Param token path string true "Board token"
// @Success 200 {object} response.Envelope
// @Router /planner/{token}/events [get]
func (h *PlannerHandler) Events(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	h.respondEvents(c, board)
}

// Refresh godoc
// @Summary Re-materialize the board from storage
// @Tags Planner
// @Produce json
// @Param token path string true "Board token"
// @Success 200 {object} response.Envelope
// @Router /planner/{token}/refresh [post]
func (h *PlannerHandler) Refresh(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	if err := h.engine.Refresh(c.Request.Context(), board); err != nil {
		response.Error(c, err)
		return
	}
	h.respondEvents(c, board)
}

// BeginGesture godoc
// @Summary Start an edit gesture
// @Tags Planner
// @Accept json
// @Produce json
// @Param token path string true "Board token"
// @Param payload body dto.BeginGestureRequest true "Gesture kind and target"
// @Success 201 {object} response.Envelope
// @Router /planner/{token}/gestures [post]
func (h *PlannerHandler) BeginGesture(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	var req dto.BeginGestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid gesture payload"))
		return
	}
	var spec *models.CreateSpec
	if req.Create != nil {
		date, err := dto.ParseDate(req.Create.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		spec = &models.CreateSpec{
			BatchID:     req.Create.BatchID,
			Date:        date,
			StartTime:   req.Create.StartTime,
			DurationMin: req.Create.DurationMin,
		}
	}
	gesture, err := h.engine.BeginGesture(c.Request.Context(), board, models.GestureKind(req.Kind), req.UID, spec)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gestureResponse(gesture), nil)
}

// UpdateGesture godoc
// @Summary Nudge an open gesture
// @Tags Planner
// @Accept json
// @Produce json
// @Param token path string true "Board token"
// @Param gestureId path string true "Gesture ID"
// @Param payload body dto.UpdateGestureRequest true "Minute delta"
// @Success 200 {object} response.Envelope
// @Router /planner/{token}/gestures/{gestureId} [patch]
func (h *PlannerHandler) UpdateGesture(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	var req dto.UpdateGestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid gesture payload"))
		return
	}
	gesture, err := h.engine.UpdateGesture(board, c.Param("gestureId"), req.DeltaMin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gestureResponse(gesture), nil)
}

// CommitGesture godoc
// @Summary Commit a gesture
// @Tags Planner
// @Produce json
// @Param token path string true "Board token"
// @Param gestureId path string true "Gesture ID"
// @Success 200 {object} response.Envelope
// @Router /planner/{token}/gestures/{gestureId}/commit [post]
func (h *PlannerHandler) CommitGesture(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	result, err := h.engine.CommitGesture(c.Request.Context(), board, c.Param("gestureId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CancelGesture godoc
// @Summary Cancel a gesture
// @Tags Planner
// @Param token path string true "Board token"
// @Param gestureId path string true "Gesture ID"
// @Success 204
// @Router /planner/{token}/gestures/{gestureId} [delete]
func (h *PlannerHandler) CancelGesture(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	if err := h.engine.CancelGesture(board, c.Param("gestureId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateBlock godoc
// @Summary Place a time block through the board
// @Tags Planner
// @Accept json
// @Produce json
// @Param token path string true "Board token"
// @Param payload body dto.BoardBlockRequest true "Block placement"
// @Success 201 {object} response.Envelope
// @Router /planner/{token}/blocks [post]
func (h *PlannerHandler) CreateBlock(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	var req dto.BoardBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid block payload"))
		return
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	block, err := h.engine.CreateBlock(c.Request.Context(), board, &models.TimeBlock{
		Date:        date,
		StartTime:   req.StartTime,
		DurationMin: req.DurationMin,
		Label:       req.Label,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, block, nil)
}

// DeleteBlock godoc
// @Summary Remove a time block through the board
// @Tags Planner
// @Param token path string true "Board token"
// @Param id path string true "Block ID"
// @Success 204
// @Router /planner/{token}/blocks/{id} [delete]
func (h *PlannerHandler) DeleteBlock(c *gin.Context) {
	board, ok := h.resolveBoard(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteBlock(c.Request.Context(), board, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Close godoc
// @Summary Close a planner board
// @Tags Planner
// @Param token path string true "Board token"
// @Success 204
// @Router /planner/{token} [delete]
func (h *PlannerHandler) Close(c *gin.Context) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "planner service not configured"))
		return
	}
	if err := h.sessions.Close(c.Param("token")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *PlannerHandler) resolveBoard(c *gin.Context) (*service.ScheduleBoard, bool) {
	if h.sessions == nil || h.engine == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "planner service not configured"))
		return nil, false
	}
	board, err := h.sessions.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return board, true
}

func (h *PlannerHandler) respondEvents(c *gin.Context, board *service.ScheduleBoard) {
	events, blocks, version := h.engine.Events(board)
	response.JSON(c, http.StatusOK, dto.BoardEventsResponse{
		Token:   board.Token,
		Version: version,
		Events:  events,
		Blocks:  blocks,
	}, nil)
}

func gestureResponse(g *service.Gesture) dto.GestureResponse {
	return dto.GestureResponse{
		GestureID:  g.ID,
		Kind:       string(g.Kind),
		UID:        g.UID,
		Generation: g.Generation,
		Tentative:  g.Tentative,
		Validation: g.Validation,
	}
}
