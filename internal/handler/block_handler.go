package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
	"github.com/noah-isme/bimbel-adp-api/pkg/response"
)

type blockService interface {
	ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimeBlock, error)
	Create(ctx context.Context, req dto.CreateBlockRequest) (*models.TimeBlock, error)
	Delete(ctx context.Context, id string) error
}

// BlockHandler manages standing time blocks on teacher calendars.
type BlockHandler struct {
	blocks blockService
}

// NewBlockHandler constructs the handler.
func NewBlockHandler(blocks blockService) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

// ListByTeacher godoc
// @Summary List a teacher's time blocks in a window
// @Tags Blocks
// @Produce json
// @Param id path string true "Teacher ID"
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD, exclusive)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/blocks [get]
func (h *BlockHandler) ListByTeacher(c *gin.Context) {
	if h.blocks == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "block service not configured"))
		return
	}
	from, to, err := dto.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	blocks, err := h.blocks.ListByTeacher(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// Create godoc
// @Summary Create a time block
// @Tags Blocks
// @Accept json
// @Produce json
// @Param payload body dto.CreateBlockRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Router /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	if h.blocks == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "block service not configured"))
		return
	}
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid block payload"))
		return
	}
	block, err := h.blocks.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Delete godoc
// @Summary Delete a time block
// @Tags Blocks
// @Param id path string true "Block ID"
// @Success 204
// @Router /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	if h.blocks == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "block service not configured"))
		return
	}
	if err := h.blocks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
