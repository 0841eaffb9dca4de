package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

func newOverrideRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestOverrideRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	start := "10:30"
	duration := 90
	override := &models.ScheduleOverride{
		BatchID:     "batch-1",
		Date:        time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		StartTime:   &start,
		DurationMin: &duration,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_overrides")).
		WithArgs(sqlmock.AnyArg(), "batch-1", override.Date, &start, &duration, false, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), override))
	assert.NotEmpty(t, override.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryUpsertKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	override := &models.ScheduleOverride{
		ID:        "ovr-1",
		BatchID:   "batch-1",
		Date:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Cancelled: true,
	}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (batch_id, date) DO UPDATE")).
		WithArgs("ovr-1", "batch-1", override.Date, nil, nil, true, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), override))
	assert.Equal(t, "ovr-1", override.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryFindByBatchAndDate(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "batch_id", "date", "start_time", "duration_min", "cancelled", "reason", "created_at", "updated_at"}).
		AddRow("ovr-1", "batch-1", date, "09:00", 60, false, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, batch_id, date, start_time, duration_min, cancelled, reason, created_at, updated_at FROM schedule_overrides WHERE batch_id = $1 AND date = $2")).
		WithArgs("batch-1", date).
		WillReturnRows(rows)

	override, err := repo.FindByBatchAndDate(context.Background(), "batch-1", date)
	require.NoError(t, err)
	require.NotNil(t, override.StartTime)
	assert.Equal(t, "09:00", *override.StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryListByBatchIDs(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "batch_id", "date", "start_time", "duration_min", "cancelled", "reason", "created_at", "updated_at"}).
		AddRow("ovr-1", "batch-1", from, nil, nil, true, "teacher away", time.Now(), time.Now()).
		AddRow("ovr-2", "batch-2", from.AddDate(0, 0, 3), "14:00", 45, false, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM schedule_overrides WHERE batch_id IN").
		WithArgs("batch-1", "batch-2", from, to).
		WillReturnRows(rows)

	overrides, err := repo.ListByBatchIDs(context.Background(), []string{"batch-1", "batch-2"}, from, to)
	require.NoError(t, err)
	assert.Len(t, overrides, 2)
	assert.True(t, overrides[0].Cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryListByBatchIDsEmpty(t *testing.T) {
	db, _, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	overrides, err := repo.ListByBatchIDs(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, overrides)
}
