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

type mockBlockStore struct {
	items   map[string]*models.TimeBlock
	deleted []string
}

func (m *mockBlockStore) ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimeBlock, error) {
	var out []models.TimeBlock
	for _, block := range m.items {
		if block.TeacherID == teacherID {
			out = append(out, *block)
		}
	}
	return out, nil
}

func (m *mockBlockStore) FindByID(ctx context.Context, id string) (*models.TimeBlock, error) {
	if block, ok := m.items[id]; ok {
		cp := *block
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBlockStore) Create(ctx context.Context, block *models.TimeBlock) error {
	if m.items == nil {
		m.items = make(map[string]*models.TimeBlock)
	}
	if block.ID == "" {
		block.ID = "generated"
	}
	cp := *block
	m.items[block.ID] = &cp
	return nil
}

func (m *mockBlockStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func newBlockServiceForTest(repo *mockBlockStore, teachers *mockTeacherRepo) (*BlockService, *viewInvalidatorStub) {
	views := &viewInvalidatorStub{}
	service := NewBlockService(BlockServiceParams{
		Repo:     repo,
		Teachers: teachers,
		Views:    views,
		Validate: validator.New(),
		Logger:   zap.NewNop(),
	})
	return service, views
}

func blockTestTeachers() *mockTeacherRepo {
	return &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", Email: "teach@example.com", FullName: "Teacher One", Active: true},
		},
	}
}

func TestBlockServiceCreate(t *testing.T) {
	repo := &mockBlockStore{}
	service, views := newBlockServiceForTest(repo, blockTestTeachers())

	block, err := service.Create(context.Background(), dto.CreateBlockRequest{
		TeacherID:   "t1",
		Date:        "2026-03-04",
		StartTime:   "08:00",
		DurationMin: 120,
		Label:       "  Rapat kurikulum  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rapat kurikulum", block.Label)
	assert.Equal(t, day(2026, time.March, 4), block.Date)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)
}

func TestBlockServiceCreateUnknownTeacher(t *testing.T) {
	service, _ := newBlockServiceForTest(&mockBlockStore{}, &mockTeacherRepo{})

	_, err := service.Create(context.Background(), dto.CreateBlockRequest{
		TeacherID:   "ghost",
		Date:        "2026-03-04",
		StartTime:   "08:00",
		DurationMin: 60,
		Label:       "Rapat",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBlockServiceCreateRejectsBadClock(t *testing.T) {
	service, _ := newBlockServiceForTest(&mockBlockStore{}, blockTestTeachers())

	_, err := service.Create(context.Background(), dto.CreateBlockRequest{
		TeacherID:   "t1",
		Date:        "2026-03-04",
		StartTime:   "8 pagi",
		DurationMin: 60,
		Label:       "Rapat",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedRange.Code, appErrors.FromError(err).Code)
}

func TestBlockServiceDelete(t *testing.T) {
	repo := &mockBlockStore{
		items: map[string]*models.TimeBlock{
			"blk1": {ID: "blk1", TeacherID: "t1", Date: day(2026, time.March, 4), StartTime: "08:00", DurationMin: 60, Label: "Rapat"},
		},
	}
	service, views := newBlockServiceForTest(repo, blockTestTeachers())

	require.NoError(t, service.Delete(context.Background(), "blk1"))
	assert.Equal(t, []string{"blk1"}, repo.deleted)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)

	err := service.Delete(context.Background(), "blk1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
