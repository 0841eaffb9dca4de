package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// OverrideRepository manages persistence for per-date schedule overrides.
type OverrideRepository struct {
	db *sqlx.DB
}

// NewOverrideRepository constructs an OverrideRepository.
func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

const overrideColumns = "id, batch_id, date, start_time, duration_min, cancelled, reason, created_at, updated_at"

const overrideUpsertQuery = `INSERT INTO schedule_overrides (id, batch_id, date, start_time, duration_min, cancelled, reason, created_at, updated_at)
		VALUES (:id, :batch_id, :date, :start_time, :duration_min, :cancelled, :reason, :created_at, :updated_at)
		ON CONFLICT (batch_id, date) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			duration_min = EXCLUDED.duration_min,
			cancelled = EXCLUDED.cancelled,
			reason = EXCLUDED.reason,
			updated_at = EXCLUDED.updated_at`

func prepareOverride(override *models.ScheduleOverride) {
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if override.CreatedAt.IsZero() {
		override.CreatedAt = now
	}
	override.UpdatedAt = now
}

// Upsert writes the override for (batch, date), replacing any existing one.
// The unique index on (batch_id, date) keeps at most one row per occurrence.
func (r *OverrideRepository) Upsert(ctx context.Context, override *models.ScheduleOverride) error {
	prepareOverride(override)
	if _, err := r.db.NamedExecContext(ctx, overrideUpsertQuery, override); err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

// UpsertMove writes the destination override and the origin-date cancellation
// in one transaction so a cross-date move is atomic.
func (r *OverrideRepository) UpsertMove(ctx context.Context, place, cancel *models.ScheduleOverride) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin override move: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	prepareOverride(place)
	if _, err = tx.NamedExecContext(ctx, overrideUpsertQuery, place); err != nil {
		return fmt.Errorf("upsert destination override: %w", err)
	}
	prepareOverride(cancel)
	if _, err = tx.NamedExecContext(ctx, overrideUpsertQuery, cancel); err != nil {
		return fmt.Errorf("upsert origin cancellation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit override move: %w", err)
	}
	return nil
}

// FindByID fetches one override by its ID.
func (r *OverrideRepository) FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE id = $1", overrideColumns)
	var override models.ScheduleOverride
	if err := r.db.GetContext(ctx, &override, query, id); err != nil {
		return nil, err
	}
	return &override, nil
}

// FindByBatchAndDate fetches the override for one occurrence.
func (r *OverrideRepository) FindByBatchAndDate(ctx context.Context, batchID string, date time.Time) (*models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE batch_id = $1 AND date = $2", overrideColumns)
	var override models.ScheduleOverride
	if err := r.db.GetContext(ctx, &override, query, batchID, date); err != nil {
		return nil, err
	}
	return &override, nil
}

// ListByBatchIDs returns overrides for the batches inside [from, to).
func (r *OverrideRepository) ListByBatchIDs(ctx context.Context, batchIDs []string, from, to time.Time) ([]models.ScheduleOverride, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE batch_id IN (?) AND date >= ? AND date < ? ORDER BY date ASC", overrideColumns), batchIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("build overrides query: %w", err)
	}
	query = r.db.Rebind(query)
	var overrides []models.ScheduleOverride
	if err := r.db.SelectContext(ctx, &overrides, query, args...); err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return overrides, nil
}

// List returns overrides matching the filter along with total count.
func (r *OverrideRepository) List(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, int, error) {
	base := "FROM schedule_overrides WHERE 1=1"
	var args []interface{}

	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		base += fmt.Sprintf(" AND batch_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		base += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		base += fmt.Sprintf(" AND date < $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date ASC LIMIT %d OFFSET %d", overrideColumns, base, size, offset)
	var overrides []models.ScheduleOverride
	if err := r.db.SelectContext(ctx, &overrides, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list overrides: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count overrides: %w", err)
	}

	return overrides, total, nil
}

// Delete removes the override for one occurrence, restoring rule derivation.
func (r *OverrideRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_overrides WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}
