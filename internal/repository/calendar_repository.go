package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// CalendarRepository loads every row a window materialization needs in one
// place: batches in scope, their rules, overrides and sessions, plus blocks
// and holidays. CRUD for the individual tables lives in their own
// repositories; this one is a read model.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// LoadWindow fetches the materialization inputs for [from, to). An empty
// teacherID loads every active batch; otherwise scope narrows to that
// teacher's batches and blocks.
func (r *CalendarRepository) LoadWindow(ctx context.Context, teacherID string, from, to time.Time) (*models.CalendarSlice, error) {
	slice := &models.CalendarSlice{}

	batchQuery := fmt.Sprintf("SELECT %s FROM batches WHERE status = $1 AND start_date < $2 AND (end_date IS NULL OR end_date >= $3)", batchColumns)
	args := []interface{}{models.BatchStatusActive, to, from}
	if teacherID != "" {
		batchQuery += " AND teacher_id = $4"
		args = append(args, teacherID)
	}
	batchQuery += " ORDER BY name ASC"
	if err := r.db.SelectContext(ctx, &slice.Batches, batchQuery, args...); err != nil {
		return nil, fmt.Errorf("load window batches: %w", err)
	}

	batchIDs := make([]string, 0, len(slice.Batches))
	for _, batch := range slice.Batches {
		batchIDs = append(batchIDs, batch.ID)
	}

	if len(batchIDs) > 0 {
		query, inArgs, err := sqlx.In(fmt.Sprintf("SELECT %s FROM schedule_rules WHERE batch_id IN (?) ORDER BY weekday ASC, start_time ASC", ruleColumns), batchIDs)
		if err != nil {
			return nil, fmt.Errorf("build window rules query: %w", err)
		}
		if err := r.db.SelectContext(ctx, &slice.Rules, r.db.Rebind(query), inArgs...); err != nil {
			return nil, fmt.Errorf("load window rules: %w", err)
		}

		query, inArgs, err = sqlx.In(fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE batch_id IN (?) AND date >= ? AND date < ? ORDER BY date ASC", overrideColumns), batchIDs, from, to)
		if err != nil {
			return nil, fmt.Errorf("build window overrides query: %w", err)
		}
		if err := r.db.SelectContext(ctx, &slice.Overrides, r.db.Rebind(query), inArgs...); err != nil {
			return nil, fmt.Errorf("load window overrides: %w", err)
		}

		query, inArgs, err = sqlx.In(fmt.Sprintf("SELECT %s FROM sessions WHERE batch_id IN (?) AND date >= ? AND date < ? ORDER BY date ASC, start_time ASC", sessionColumns), batchIDs, from, to)
		if err != nil {
			return nil, fmt.Errorf("build window sessions query: %w", err)
		}
		if err := r.db.SelectContext(ctx, &slice.Sessions, r.db.Rebind(query), inArgs...); err != nil {
			return nil, fmt.Errorf("load window sessions: %w", err)
		}
	}

	blockQuery := fmt.Sprintf("SELECT %s FROM time_blocks WHERE date >= $1 AND date < $2", blockColumns)
	blockArgs := []interface{}{from, to}
	if teacherID != "" {
		blockQuery += " AND teacher_id = $3"
		blockArgs = append(blockArgs, teacherID)
	}
	blockQuery += " ORDER BY date ASC, start_time ASC"
	if err := r.db.SelectContext(ctx, &slice.Blocks, blockQuery, blockArgs...); err != nil {
		return nil, fmt.Errorf("load window blocks: %w", err)
	}

	holidayQuery := fmt.Sprintf("SELECT %s FROM holidays WHERE date >= $1 AND date < $2 ORDER BY date ASC", holidayColumns)
	if err := r.db.SelectContext(ctx, &slice.Holidays, holidayQuery, from, to); err != nil {
		return nil, fmt.Errorf("load window holidays: %w", err)
	}

	return slice, nil
}
