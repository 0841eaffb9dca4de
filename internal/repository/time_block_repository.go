package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// TimeBlockRepository manages persistence for teacher time blocks.
type TimeBlockRepository struct {
	db *sqlx.DB
}

// NewTimeBlockRepository constructs a TimeBlockRepository.
func NewTimeBlockRepository(db *sqlx.DB) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

const blockColumns = "id, teacher_id, date, start_time, duration_min, label, created_at, updated_at"

// FindByID fetches a block by ID.
func (r *TimeBlockRepository) FindByID(ctx context.Context, id string) (*models.TimeBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM time_blocks WHERE id = $1", blockColumns)
	var block models.TimeBlock
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// ListByTeacher returns the teacher's blocks inside [from, to).
func (r *TimeBlockRepository) ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimeBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM time_blocks WHERE teacher_id = $1 AND date >= $2 AND date < $3 ORDER BY date ASC, start_time ASC", blockColumns)
	var blocks []models.TimeBlock
	if err := r.db.SelectContext(ctx, &blocks, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Create inserts a new block record.
func (r *TimeBlockRepository) Create(ctx context.Context, block *models.TimeBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	const query = `INSERT INTO time_blocks (id, teacher_id, date, start_time, duration_min, label, created_at, updated_at)
		VALUES (:id, :teacher_id, :date, :start_time, :duration_min, :label, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// Delete removes a block record.
func (r *TimeBlockRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM time_blocks WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}
