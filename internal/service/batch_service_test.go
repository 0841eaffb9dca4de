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

type mockBatchStore struct {
	items      map[string]*models.Batch
	listResult []models.Batch
	listTotal  int
	listErr    error
	archived   []string
	enrollment map[string]int
}

func (m *mockBatchStore) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockBatchStore) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if batch, ok := m.items[id]; ok {
		cp := *batch
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBatchStore) FindDetail(ctx context.Context, id string) (*models.BatchDetail, error) {
	if batch, ok := m.items[id]; ok {
		return &models.BatchDetail{Batch: *batch}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBatchStore) Create(ctx context.Context, batch *models.Batch) error {
	if m.items == nil {
		m.items = make(map[string]*models.Batch)
	}
	if batch.ID == "" {
		batch.ID = "generated"
	}
	now := time.Now()
	batch.CreatedAt = now
	batch.UpdatedAt = now
	cp := *batch
	m.items[batch.ID] = &cp
	return nil
}

func (m *mockBatchStore) Update(ctx context.Context, batch *models.Batch) error {
	if m.items == nil {
		m.items = make(map[string]*models.Batch)
	}
	cp := *batch
	m.items[batch.ID] = &cp
	return nil
}

func (m *mockBatchStore) Archive(ctx context.Context, id string) error {
	m.archived = append(m.archived, id)
	if batch, ok := m.items[id]; ok {
		batch.Status = models.BatchStatusArchived
	}
	return nil
}

func (m *mockBatchStore) SetEnrollment(ctx context.Context, id string, enrolled int) error {
	if m.enrollment == nil {
		m.enrollment = make(map[string]int)
	}
	m.enrollment[id] = enrolled
	if batch, ok := m.items[id]; ok {
		batch.Enrolled = enrolled
	}
	return nil
}

type capacityInvalidatorStub struct{ batchIDs []string }

func (s *capacityInvalidatorStub) Invalidate(ctx context.Context, batchID string) {
	s.batchIDs = append(s.batchIDs, batchID)
}

type viewInvalidatorStub struct{ teacherIDs []string }

func (s *viewInvalidatorStub) Invalidate(ctx context.Context, teacherID string) {
	s.teacherIDs = append(s.teacherIDs, teacherID)
}

func newBatchServiceForTest(repo *mockBatchStore, teachers *mockTeacherRepo) (*BatchService, *capacityInvalidatorStub, *viewInvalidatorStub) {
	capacity := &capacityInvalidatorStub{}
	views := &viewInvalidatorStub{}
	service := NewBatchService(BatchServiceParams{
		Repo:     repo,
		Teachers: teachers,
		Capacity: capacity,
		Views:    views,
		Validate: validator.New(),
		Logger:   zap.NewNop(),
	})
	return service, capacity, views
}

func TestBatchServiceCreate(t *testing.T) {
	repo := &mockBatchStore{}
	teachers := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", Email: "teach@example.com", FullName: "Teacher One", Active: true},
		},
	}
	service, _, _ := newBatchServiceForTest(repo, teachers)

	batch, err := service.Create(context.Background(), dto.CreateBatchRequest{
		Name:        "  Matematika SMA  ",
		TeacherID:   "t1",
		Room:        strp("R1"),
		DurationMin: 90,
		Capacity:    12,
		StartDate:   "2026-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "Matematika SMA", batch.Name)
	assert.Equal(t, models.BatchStatusActive, batch.Status)
	assert.Equal(t, day(2026, time.January, 5), batch.StartDate)
	assert.Nil(t, batch.EndDate)
	assert.Len(t, repo.items, 1)
}

func TestBatchServiceCreateRequiresCapacity(t *testing.T) {
	teachers := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", Active: true},
		},
	}
	service, _, _ := newBatchServiceForTest(&mockBatchStore{}, teachers)

	_, err := service.Create(context.Background(), dto.CreateBatchRequest{
		Name:        "Kimia",
		TeacherID:   "t1",
		DurationMin: 60,
		StartDate:   "2026-01-05",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Create(context.Background(), dto.CreateBatchRequest{
		Name:        "Kimia",
		TeacherID:   "t1",
		DurationMin: 60,
		Unlimited:   true,
		StartDate:   "2026-01-05",
	})
	require.NoError(t, err)
}

func TestBatchServiceCreateInactiveTeacher(t *testing.T) {
	teachers := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", Active: false},
		},
	}
	service, _, _ := newBatchServiceForTest(&mockBatchStore{}, teachers)

	_, err := service.Create(context.Background(), dto.CreateBatchRequest{
		Name:        "Fisika",
		TeacherID:   "t1",
		DurationMin: 60,
		Capacity:    10,
		StartDate:   "2026-01-05",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestBatchServiceUpdateReassignsTeacher(t *testing.T) {
	repo := &mockBatchStore{
		items: map[string]*models.Batch{
			"b1": {
				ID: "b1", Name: "Matematika", TeacherID: "t1", DurationMin: 60,
				Capacity: 10, StartDate: day(2026, time.January, 5),
				Status: models.BatchStatusActive,
			},
		},
	}
	teachers := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", Active: true},
			"t2": {ID: "t2", Active: true},
		},
	}
	service, capacity, views := newBatchServiceForTest(repo, teachers)

	updated, err := service.Update(context.Background(), "b1", dto.UpdateBatchRequest{
		TeacherID: strp("t2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "t2", updated.TeacherID)
	assert.Equal(t, []string{"b1"}, capacity.batchIDs)
	assert.Equal(t, []string{"t1", "t2"}, views.teacherIDs)
}

func TestBatchServiceUpdateRejectsInvertedDates(t *testing.T) {
	repo := &mockBatchStore{
		items: map[string]*models.Batch{
			"b1": {
				ID: "b1", Name: "Matematika", TeacherID: "t1", DurationMin: 60,
				Capacity: 10, StartDate: day(2026, time.March, 1),
				Status: models.BatchStatusActive,
			},
		},
	}
	service, _, _ := newBatchServiceForTest(repo, &mockTeacherRepo{})

	_, err := service.Update(context.Background(), "b1", dto.UpdateBatchRequest{
		EndDate: strp("2026-02-01"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedRange.Code, appErrors.FromError(err).Code)
}

func TestBatchServiceArchive(t *testing.T) {
	repo := &mockBatchStore{
		items: map[string]*models.Batch{
			"b1": {
				ID: "b1", Name: "Matematika", TeacherID: "t1", DurationMin: 60,
				Capacity: 10, StartDate: day(2026, time.January, 5),
				Status: models.BatchStatusActive,
			},
		},
	}
	service, capacity, views := newBatchServiceForTest(repo, &mockTeacherRepo{})

	require.NoError(t, service.Archive(context.Background(), "b1"))
	assert.Equal(t, []string{"b1"}, repo.archived)
	assert.Equal(t, []string{"b1"}, capacity.batchIDs)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)

	err := service.Archive(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBatchServiceSetEnrollment(t *testing.T) {
	repo := &mockBatchStore{
		items: map[string]*models.Batch{
			"b1": {
				ID: "b1", Name: "Matematika", TeacherID: "t1", DurationMin: 60,
				Capacity: 10, Enrolled: 8, StartDate: day(2026, time.January, 5),
				Status: models.BatchStatusActive,
			},
		},
	}
	service, capacity, _ := newBatchServiceForTest(repo, &mockTeacherRepo{})

	batch, err := service.SetEnrollment(context.Background(), "b1", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, batch.Enrolled)
	assert.Equal(t, 9, repo.enrollment["b1"])
	assert.Equal(t, []string{"b1"}, capacity.batchIDs)

	_, err = service.SetEnrollment(context.Background(), "b1", -1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
