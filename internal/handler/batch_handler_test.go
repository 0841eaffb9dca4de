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

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type fakeBatchService struct {
	batches    []models.Batch
	pagination *models.Pagination
	detail     *models.BatchDetail
	batch      *models.Batch
	err        error
	archived   []string
	lastFilter models.BatchFilter
	lastCreate dto.CreateBatchRequest
	enrolled   int
}

func (f *fakeBatchService) List(_ context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	f.lastFilter = filter
	return f.batches, f.pagination, f.err
}

func (f *fakeBatchService) Get(context.Context, string) (*models.BatchDetail, error) {
	return f.detail, f.err
}

func (f *fakeBatchService) Create(_ context.Context, req dto.CreateBatchRequest) (*models.Batch, error) {
	f.lastCreate = req
	return f.batch, f.err
}

func (f *fakeBatchService) Update(context.Context, string, dto.UpdateBatchRequest) (*models.Batch, error) {
	return f.batch, f.err
}

func (f *fakeBatchService) Archive(_ context.Context, id string) error {
	f.archived = append(f.archived, id)
	return f.err
}

func (f *fakeBatchService) SetEnrollment(_ context.Context, _ string, enrolled int) (*models.Batch, error) {
	f.enrolled = enrolled
	return f.batch, f.err
}

type fakeCapacityReader struct {
	snapshot *models.CapacitySnapshot
	cacheHit bool
	err      error
}

func (f *fakeCapacityReader) Snapshot(context.Context, string) (*models.CapacitySnapshot, bool, error) {
	return f.snapshot, f.cacheHit, f.err
}

type fakeRescheduler struct {
	candidates []models.RescheduleCandidate
	err        error
	lastWeeks  int
}

func (f *fakeRescheduler) Suggest(_ context.Context, _ string, weeks int) ([]models.RescheduleCandidate, error) {
	f.lastWeeks = weeks
	return f.candidates, f.err
}

type fakeDayProber struct {
	available bool
	err       error
	lastDate  time.Time
}

func (f *fakeDayProber) BatchAvailableOn(_ context.Context, _ string, date time.Time) (bool, error) {
	f.lastDate = date
	return f.available, f.err
}

func TestBatchHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeBatchService{batches: []models.Batch{{ID: "b1", Name: "Matematika SMA"}}}
	handler := NewBatchHandler(svc, nil, nil, nil)

	c, w := newGinContext(http.MethodGet, "/batches?teacherId=t1&status=active&page=2&limit=10", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", svc.lastFilter.TeacherID)
	assert.Equal(t, "active", svc.lastFilter.Status)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Equal(t, 10, svc.lastFilter.PageSize)
}

func TestBatchHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeBatchService{batch: &models.Batch{ID: "b1", Name: "Fisika kelas 12"}}
	handler := NewBatchHandler(svc, nil, nil, nil)

	body := []byte(`{"name":"Fisika kelas 12","teacherId":"t1","capacity":12,"durationMin":90,"startDate":"2026-01-05"}`)
	c, w := newGinContext(http.MethodPost, "/batches", body)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Fisika kelas 12", svc.lastCreate.Name)
	assert.Equal(t, "t1", svc.lastCreate.TeacherID)
}

func TestBatchHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBatchHandler(&fakeBatchService{}, nil, nil, nil)

	c, w := newGinContext(http.MethodPost, "/batches", []byte(`{"name":`))

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchHandlerSetEnrollment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeBatchService{batch: &models.Batch{ID: "b1", Enrolled: 9}}
	handler := NewBatchHandler(svc, nil, nil, nil)

	c, w := newGinContext(http.MethodPut, "/batches/b1/enrollment", []byte(`{"enrolled":9}`))
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.SetEnrollment(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 9, svc.enrolled)
}

func TestBatchHandlerSetEnrollmentRequiresCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBatchHandler(&fakeBatchService{}, nil, nil, nil)

	c, w := newGinContext(http.MethodPut, "/batches/b1/enrollment", []byte(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.SetEnrollment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchHandlerCapacityMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	capacity := &fakeCapacityReader{
		snapshot: &models.CapacitySnapshot{BatchID: "b1", Capacity: 12, Enrolled: 9, Utilization: 0.75},
		cacheHit: true,
	}
	handler := NewBatchHandler(nil, capacity, nil, nil)

	c, w := newGinContext(http.MethodGet, "/batches/b1/capacity", nil)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.Capacity(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, 0.75, envelope.Data["utilization"])
}

func TestBatchHandlerRescheduleOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reschedule := &fakeRescheduler{candidates: []models.RescheduleCandidate{{
		BatchID: "b1",
		Date:    time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC),
		IsBest:  true,
	}}}
	handler := NewBatchHandler(nil, nil, reschedule, nil)

	c, w := newGinContext(http.MethodGet, "/batches/b1/reschedule-options?weeks=2", nil)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.RescheduleOptions(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, reschedule.lastWeeks)
}

func TestBatchHandlerRescheduleOptionsBoundsWeeks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBatchHandler(nil, nil, &fakeRescheduler{}, nil)

	c, w := newGinContext(http.MethodGet, "/batches/b1/reschedule-options?weeks=40", nil)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.RescheduleOptions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchHandlerAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prober := &fakeDayProber{available: true}
	handler := NewBatchHandler(nil, nil, nil, prober)

	c, w := newGinContext(http.MethodGet, "/batches/b1/availability?date=2026-01-07", nil)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	handler.Availability(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC), prober.lastDate)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Data["available"])
	assert.Equal(t, "2026-01-07", envelope.Data["date"])
}

func TestBatchHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeBatchService{err: appErrors.Clone(appErrors.ErrNotFound, "batch not found")}
	handler := NewBatchHandler(svc, nil, nil, nil)

	c, w := newGinContext(http.MethodGet, "/batches/ghost", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
