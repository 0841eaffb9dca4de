package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

type fakeBlockService struct {
	blocks     []models.TimeBlock
	block      *models.TimeBlock
	err        error
	deleted    []string
	lastWindow struct {
		teacherID string
		from, to  time.Time
	}
	lastCreate dto.CreateBlockRequest
}

func (f *fakeBlockService) ListByTeacher(_ context.Context, teacherID string, from, to time.Time) ([]models.TimeBlock, error) {
	f.lastWindow.teacherID = teacherID
	f.lastWindow.from = from
	f.lastWindow.to = to
	return f.blocks, f.err
}

func (f *fakeBlockService) Create(_ context.Context, req dto.CreateBlockRequest) (*models.TimeBlock, error) {
	f.lastCreate = req
	return f.block, f.err
}

func (f *fakeBlockService) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func TestBlockHandlerListByTeacher(t *testing.T) {
	gin.SetMode(gin.TestMode)
	blocks := &fakeBlockService{blocks: []models.TimeBlock{{ID: "blk-1", TeacherID: "t1", Label: "Rapat kurikulum"}}}
	handler := NewBlockHandler(blocks)

	c, w := newGinContext(http.MethodGet, "/teachers/t1/blocks?from=2026-01-05&to=2026-01-12", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}

	handler.ListByTeacher(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", blocks.lastWindow.teacherID)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), blocks.lastWindow.from)
}

func TestBlockHandlerListRequiresWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBlockHandler(&fakeBlockService{})

	c, w := newGinContext(http.MethodGet, "/teachers/t1/blocks", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}

	handler.ListByTeacher(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlockHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	blocks := &fakeBlockService{block: &models.TimeBlock{ID: "blk-1", TeacherID: "t1"}}
	handler := NewBlockHandler(blocks)

	body := []byte(`{"teacherId":"t1","date":"2026-01-07","startTime":"09:00","durationMin":60,"label":"Rapat kurikulum"}`)
	c, w := newGinContext(http.MethodPost, "/blocks", body)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "t1", blocks.lastCreate.TeacherID)
	assert.Equal(t, "Rapat kurikulum", blocks.lastCreate.Label)
}

func TestBlockHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	blocks := &fakeBlockService{}
	handler := NewBlockHandler(blocks)

	c, w := newGinContext(http.MethodDelete, "/blocks/blk-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "blk-1"}}

	handler.Delete(c)
	// gin only flushes a status-only response when the engine runs; flush manually.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"blk-1"}, blocks.deleted)
}
