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

type mockOverrideStore struct {
	items   map[string]*models.ScheduleOverride
	upserts []models.ScheduleOverride
	deleted []string
}

func (m *mockOverrideStore) List(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, int, error) {
	var out []models.ScheduleOverride
	for _, override := range m.items {
		out = append(out, *override)
	}
	return out, len(out), nil
}

func (m *mockOverrideStore) FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error) {
	if override, ok := m.items[id]; ok {
		cp := *override
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOverrideStore) Upsert(ctx context.Context, override *models.ScheduleOverride) error {
	if m.items == nil {
		m.items = make(map[string]*models.ScheduleOverride)
	}
	if override.ID == "" {
		override.ID = "generated"
	}
	cp := *override
	m.items[override.ID] = &cp
	m.upserts = append(m.upserts, cp)
	return nil
}

func (m *mockOverrideStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func newOverrideServiceForTest(repo *mockOverrideStore, batches *mockBatchStore) (*OverrideService, *viewInvalidatorStub) {
	views := &viewInvalidatorStub{}
	service := NewOverrideService(OverrideServiceParams{
		Repo:     repo,
		Batches:  batches,
		Views:    views,
		Validate: validator.New(),
		Logger:   zap.NewNop(),
	})
	return service, views
}

func TestOverrideServiceUpsertMove(t *testing.T) {
	repo := &mockOverrideStore{}
	service, views := newOverrideServiceForTest(repo, ruleTestBatches())

	override, err := service.Upsert(context.Background(), dto.UpsertOverrideRequest{
		BatchID:   "b1",
		Date:      "2026-03-03",
		StartTime: strp("14:00"),
		Reason:    strp("  ruang dipakai ujian  "),
	})
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.March, 3), override.Date)
	require.NotNil(t, override.StartTime)
	assert.Equal(t, "14:00", *override.StartTime)
	require.NotNil(t, override.Reason)
	assert.Equal(t, "ruang dipakai ujian", *override.Reason)
	assert.False(t, override.Cancelled)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)
}

func TestOverrideServiceUpsertCancel(t *testing.T) {
	repo := &mockOverrideStore{}
	service, _ := newOverrideServiceForTest(repo, ruleTestBatches())

	override, err := service.Upsert(context.Background(), dto.UpsertOverrideRequest{
		BatchID:   "b1",
		Date:      "2026-03-03",
		Cancelled: true,
	})
	require.NoError(t, err)
	assert.True(t, override.Cancelled)
	assert.Nil(t, override.StartTime)
}

func TestOverrideServiceUpsertRequiresChange(t *testing.T) {
	service, _ := newOverrideServiceForTest(&mockOverrideStore{}, ruleTestBatches())

	_, err := service.Upsert(context.Background(), dto.UpsertOverrideRequest{
		BatchID: "b1",
		Date:    "2026-03-03",
		Reason:  strp("no-op"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOverrideServiceUpsertUnknownBatch(t *testing.T) {
	service, _ := newOverrideServiceForTest(&mockOverrideStore{}, &mockBatchStore{})

	_, err := service.Upsert(context.Background(), dto.UpsertOverrideRequest{
		BatchID:   "ghost",
		Date:      "2026-03-03",
		Cancelled: true,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOverrideServiceDelete(t *testing.T) {
	repo := &mockOverrideStore{
		items: map[string]*models.ScheduleOverride{
			"o1": {ID: "o1", BatchID: "b1", Date: day(2026, time.March, 3), Cancelled: true},
		},
	}
	service, views := newOverrideServiceForTest(repo, ruleTestBatches())

	require.NoError(t, service.Delete(context.Background(), "o1"))
	assert.Equal(t, []string{"o1"}, repo.deleted)
	assert.Equal(t, []string{"t1"}, views.teacherIDs)

	err := service.Delete(context.Background(), "o1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
