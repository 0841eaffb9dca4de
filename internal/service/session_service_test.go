package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type mockSessionStore struct {
	items     map[string]*models.Session
	cancelled []string
}

func (m *mockSessionStore) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	var out []models.Session
	for _, session := range m.items {
		out = append(out, *session)
	}
	return out, len(out), nil
}

func (m *mockSessionStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if session, ok := m.items[id]; ok {
		cp := *session
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionStore) Create(ctx context.Context, session *models.Session) error {
	if m.items == nil {
		m.items = make(map[string]*models.Session)
	}
	if session.ID == "" {
		session.ID = "generated"
	}
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	cp := *session
	m.items[session.ID] = &cp
	return nil
}

func (m *mockSessionStore) Update(ctx context.Context, session *models.Session) error {
	cp := *session
	m.items[session.ID] = &cp
	return nil
}

func (m *mockSessionStore) Cancel(ctx context.Context, id string) error {
	m.cancelled = append(m.cancelled, id)
	if session, ok := m.items[id]; ok {
		session.Status = models.SessionStatusCancelled
	}
	return nil
}

func newSessionServiceForTest(repo *mockSessionStore, batches *mockBatchStore) (*SessionService, *viewInvalidatorStub) {
	views := &viewInvalidatorStub{}
	service := NewSessionService(SessionServiceParams{
		Repo:     repo,
		Batches:  batches,
		Views:    views,
		Validate: validator.New(),
		Logger:   zap.NewNop(),
	})
	return service, views
}

func TestSessionServiceCreate(t *testing.T) {
	repo := &mockSessionStore{}
	service, views := newSessionServiceForTest(repo, ruleTestBatches())

	session, err := service.Create(context.Background(), dto.CreateSessionRequest{
		BatchID:     "b1",
		Date:        "2026-03-04",
		StartTime:   "13:00",
		DurationMin: 90,
		Note:        strp("sesi tambahan"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusScheduled, session.Status)
	assert.Equal(t, day(2026, time.March, 4), session.Date)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)
}

func TestSessionServiceCreateArchivedBatch(t *testing.T) {
	batches := &mockBatchStore{
		items: map[string]*models.Batch{
			"b1": {ID: "b1", TeacherID: "t1", Status: models.BatchStatusArchived},
		},
	}
	service, _ := newSessionServiceForTest(&mockSessionStore{}, batches)

	_, err := service.Create(context.Background(), dto.CreateSessionRequest{
		BatchID:     "b1",
		Date:        "2026-03-04",
		StartTime:   "13:00",
		DurationMin: 90,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceUpdateTime(t *testing.T) {
	repo := &mockSessionStore{
		items: map[string]*models.Session{
			"s1": {ID: "s1", BatchID: "b1", Date: day(2026, time.March, 4), StartTime: "13:00", DurationMin: 90, Status: models.SessionStatusScheduled},
		},
	}
	service, views := newSessionServiceForTest(repo, ruleTestBatches())

	session, err := service.Update(context.Background(), "s1", dto.UpdateSessionRequest{
		StartTime:   strp("15:00"),
		DurationMin: intp(60),
	})
	require.NoError(t, err)
	assert.Equal(t, "15:00", session.StartTime)
	assert.Equal(t, 60, session.DurationMin)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)
}

func TestSessionServiceUpdateCompletedGuard(t *testing.T) {
	repo := &mockSessionStore{
		items: map[string]*models.Session{
			"s1": {ID: "s1", BatchID: "b1", Date: day(2026, time.March, 4), StartTime: "13:00", DurationMin: 90, Status: models.SessionStatusCompleted},
		},
	}
	service, _ := newSessionServiceForTest(repo, ruleTestBatches())

	_, err := service.Update(context.Background(), "s1", dto.UpdateSessionRequest{
		StartTime: strp("15:00"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	session, err := service.Update(context.Background(), "s1", dto.UpdateSessionRequest{
		Note: strp("materi selesai"),
	})
	require.NoError(t, err)
	require.NotNil(t, session.Note)
	assert.Equal(t, "materi selesai", *session.Note)
}

func TestSessionServiceCancel(t *testing.T) {
	repo := &mockSessionStore{
		items: map[string]*models.Session{
			"s1": {ID: "s1", BatchID: "b1", Date: day(2026, time.March, 4), StartTime: "13:00", DurationMin: 90, Status: models.SessionStatusScheduled},
		},
	}
	service, views := newSessionServiceForTest(repo, ruleTestBatches())

	require.NoError(t, service.Cancel(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, repo.cancelled)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)

	err := service.Cancel(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
