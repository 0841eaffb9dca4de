package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/service"
)

type fakeCalendarViewer struct {
	view     *models.CalendarView
	cacheHit bool
	err      error
	last     struct {
		teacherID string
		batchID   string
		window    models.CalendarWindow
	}
}

func (f *fakeCalendarViewer) View(_ context.Context, teacherID, batchID string, window models.CalendarWindow) (*models.CalendarView, bool, error) {
	f.last.teacherID = teacherID
	f.last.batchID = batchID
	f.last.window = window
	return f.view, f.cacheHit, f.err
}

type fakeConflictChecker struct {
	result *models.ConflictCheckResult
	err    error
	last   models.ConflictCheckRequest
}

func (f *fakeConflictChecker) Check(_ context.Context, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	f.last = req
	return f.result, f.err
}

type fakeExporter struct {
	file    *service.ExportFile
	link    *service.ExportResult
	relPath string
	err     error
}

func (f *fakeExporter) Render(context.Context, string, models.CalendarWindow, models.ExportFormat) (*service.ExportFile, error) {
	return f.file, f.err
}

func (f *fakeExporter) GenerateLink(context.Context, string, models.CalendarWindow, models.ExportFormat) (*service.ExportResult, error) {
	return f.link, f.err
}

func (f *fakeExporter) ParseToken(string, bool) (string, string, time.Time, error) {
	if f.err != nil {
		return "", "", time.Time{}, f.err
	}
	return "export-1", f.relPath, time.Now().Add(time.Hour), nil
}

func (f *fakeExporter) Open(relPath string) (*os.File, error) {
	return os.Open(relPath)
}

func TestCalendarHandlerView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	viewer := &fakeCalendarViewer{
		view: &models.CalendarView{
			TeacherID: "t1",
			Events:    []models.CalendarEventInstance{{UID: "rule:r1:2026-01-05"}},
		},
		cacheHit: true,
	}
	handler := NewCalendarHandler(viewer, nil, nil)

	c, w := newGinContext(http.MethodGet, "/calendar?teacherId=t1&from=2026-01-05&to=2026-01-12", nil)

	handler.View(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", viewer.last.teacherID)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), viewer.last.window.From)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestCalendarHandlerViewRequiresWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(&fakeCalendarViewer{}, nil, nil)

	c, w := newGinContext(http.MethodGet, "/calendar?teacherId=t1", nil)

	handler.View(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerCheckConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checker := &fakeConflictChecker{result: &models.ConflictCheckResult{
		OK: false,
		Conflicts: []models.ConflictDetail{{
			UID:       "rule:r1:2026-01-05",
			Dimension: models.ConflictDimensionTeacher,
		}},
		Generation: 7,
	}}
	handler := NewCalendarHandler(nil, checker, nil)

	body := []byte(`{"teacherId":"t1","start":"2026-01-05T13:00:00Z","end":"2026-01-05T14:30:00Z","generation":7}`)
	c, w := newGinContext(http.MethodPost, "/conflicts/check", body)

	handler.CheckConflicts(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2026, time.January, 5, 13, 0, 0, 0, time.UTC), checker.last.Start)
	assert.Equal(t, int64(7), checker.last.Generation)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Data["ok"])
}

func TestCalendarHandlerCheckConflictsBadTimestamp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(nil, &fakeConflictChecker{}, nil)

	body := []byte(`{"teacherId":"t1","start":"senin siang","end":"2026-01-05T14:30:00Z"}`)
	c, w := newGinContext(http.MethodPost, "/conflicts/check", body)

	handler.CheckConflicts(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerExportStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := &fakeExporter{file: &service.ExportFile{
		Name:        "schedule-t1.csv",
		ContentType: "text/csv",
		Payload:     []byte("Time,Mon\n07:00,Matematika\n"),
	}}
	handler := NewCalendarHandler(nil, nil, exporter)

	c, w := newGinContext(http.MethodGet, "/calendar/export?teacherId=t1&from=2026-01-05&to=2026-01-12", nil)

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule-t1.csv")
	assert.Contains(t, w.Body.String(), "Matematika")
}

func TestCalendarHandlerExportLink(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := &fakeExporter{link: &service.ExportResult{
		URL:       "/api/v1/calendar/export/tok-1",
		Format:    models.ExportFormatPDF,
		ExpiresAt: time.Date(2026, time.January, 6, 12, 0, 0, 0, time.UTC),
	}}
	handler := NewCalendarHandler(nil, nil, exporter)

	c, w := newGinContext(http.MethodGet, "/calendar/export?teacherId=t1&from=2026-01-05&to=2026-01-12&format=pdf&link=true", nil)

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "/api/v1/calendar/export/tok-1", envelope.Data["url"])
	assert.Equal(t, "pdf", envelope.Data["format"])
}

func TestCalendarHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte("Time,Mon\n"), 0o600))
	handler := NewCalendarHandler(nil, nil, &fakeExporter{relPath: path})

	c, w := newGinContext(http.MethodGet, "/calendar/export/tok-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Time,Mon")
}
