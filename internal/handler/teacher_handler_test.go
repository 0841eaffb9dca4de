package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/service"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type fakeTeacherRoster struct {
	teachers    []models.Teacher
	teacher     *models.Teacher
	err         error
	deactivated []string
	lastFilter  models.TeacherFilter
	lastCreate  service.CreateTeacherRequest
}

func (f *fakeTeacherRoster) List(_ context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	f.lastFilter = filter
	return f.teachers, nil, f.err
}

func (f *fakeTeacherRoster) Get(context.Context, string) (*models.Teacher, error) {
	return f.teacher, f.err
}

func (f *fakeTeacherRoster) Create(_ context.Context, req service.CreateTeacherRequest) (*models.Teacher, error) {
	f.lastCreate = req
	return f.teacher, f.err
}

func (f *fakeTeacherRoster) Update(context.Context, string, service.UpdateTeacherRequest) (*models.Teacher, error) {
	return f.teacher, f.err
}

func (f *fakeTeacherRoster) Deactivate(_ context.Context, id string) error {
	f.deactivated = append(f.deactivated, id)
	return f.err
}

type fakeFreeBusyReader struct {
	freebusy *models.FreeBusy
	err      error
	lastDate time.Time
}

func (f *fakeFreeBusyReader) FreeBusy(_ context.Context, _ string, date time.Time) (*models.FreeBusy, error) {
	f.lastDate = date
	return f.freebusy, f.err
}

func TestTeacherHandlerListActiveFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &fakeTeacherRoster{teachers: []models.Teacher{{ID: "t1", FullName: "Bu Sari"}}}
	handler := NewTeacherHandler(roster, nil)

	c, w := newGinContext(http.MethodGet, "/teachers?active=true&search=sari", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, roster.lastFilter.Active)
	assert.True(t, *roster.lastFilter.Active)
	assert.Equal(t, "sari", roster.lastFilter.Search)
}

func TestTeacherHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &fakeTeacherRoster{teacher: &models.Teacher{ID: "t1", FullName: "Pak Budi"}}
	handler := NewTeacherHandler(roster, nil)

	body := []byte(`{"email":"budi@bimbel.example","fullName":"Pak Budi","subject":"Fisika"}`)
	c, w := newGinContext(http.MethodPost, "/teachers", body)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "budi@bimbel.example", roster.lastCreate.Email)
}

func TestTeacherHandlerDeactivate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &fakeTeacherRoster{}
	handler := NewTeacherHandler(roster, nil)

	c, w := newGinContext(http.MethodDelete, "/teachers/t1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}

	handler.Delete(c)
	// gin only flushes a status-only response when the engine runs; flush manually.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"t1"}, roster.deactivated)
}

func TestTeacherHandlerFreeBusy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	day := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	reader := &fakeFreeBusyReader{freebusy: &models.FreeBusy{
		TeacherID: "t1",
		Date:      day,
		Workday: models.Interval{
			Start: day.Add(7 * time.Hour),
			End:   day.Add(20 * time.Hour),
		},
		Free: []models.Interval{{Start: day.Add(7 * time.Hour), End: day.Add(20 * time.Hour)}},
	}}
	handler := NewTeacherHandler(nil, reader)

	c, w := newGinContext(http.MethodGet, "/teachers/t1/freebusy?date=2026-01-07", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}

	handler.FreeBusy(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, day, reader.lastDate)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "t1", envelope.Data["teacher_id"])
}

func TestTeacherHandlerFreeBusyRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTeacherHandler(nil, &fakeFreeBusyReader{})

	c, w := newGinContext(http.MethodGet, "/teachers/t1/freebusy", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}

	handler.FreeBusy(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeacherHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &fakeTeacherRoster{err: appErrors.Clone(appErrors.ErrNotFound, "teacher not found")}
	handler := NewTeacherHandler(roster, nil)

	c, w := newGinContext(http.MethodGet, "/teachers/ghost", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
