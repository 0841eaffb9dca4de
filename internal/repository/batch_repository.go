package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// BatchRepository manages persistence for coaching batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = "id, name, teacher_id, room, duration_min, capacity, unlimited, enrolled, fee_due_count, risk_count, start_date, end_date, status, created_at, updated_at"

// List returns batches matching filters along with total count.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	base := "FROM batches WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"name":       "name",
		"start_date": "start_date",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", batchColumns, base, column, order, size, offset)
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}

	return batches, total, nil
}

// FindByID fetches a batch by ID.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	query := fmt.Sprintf("SELECT %s FROM batches WHERE id = $1", batchColumns)
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindDetail fetches a batch joined with its teacher's name.
func (r *BatchRepository) FindDetail(ctx context.Context, id string) (*models.BatchDetail, error) {
	const query = `SELECT b.id, b.name, b.teacher_id, b.room, b.duration_min, b.capacity, b.unlimited, b.enrolled, b.fee_due_count, b.risk_count, b.start_date, b.end_date, b.status, b.created_at, b.updated_at, t.full_name AS teacher_name
		FROM batches b
		LEFT JOIN teachers t ON t.id = b.teacher_id
		WHERE b.id = $1`
	var detail models.BatchDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListActiveByTeacher returns every active batch taught by the teacher.
func (r *BatchRepository) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.Batch, error) {
	query := fmt.Sprintf("SELECT %s FROM batches WHERE teacher_id = $1 AND status = $2 ORDER BY name ASC", batchColumns)
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, teacherID, models.BatchStatusActive); err != nil {
		return nil, fmt.Errorf("list teacher batches: %w", err)
	}
	return batches, nil
}

// ListRoomUsers returns active batches assigned to the room.
func (r *BatchRepository) ListRoomUsers(ctx context.Context, room string) ([]models.Batch, error) {
	query := fmt.Sprintf("SELECT %s FROM batches WHERE room = $1 AND status = $2", batchColumns)
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, room, models.BatchStatusActive); err != nil {
		return nil, fmt.Errorf("list room batches: %w", err)
	}
	return batches, nil
}

// Create inserts a new batch record.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.Status == "" {
		batch.Status = models.BatchStatusActive
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now

	const query = `INSERT INTO batches (id, name, teacher_id, room, duration_min, capacity, unlimited, enrolled, fee_due_count, risk_count, start_date, end_date, status, created_at, updated_at)
		VALUES (:id, :name, :teacher_id, :room, :duration_min, :capacity, :unlimited, :enrolled, :fee_due_count, :risk_count, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Update modifies an existing batch record.
func (r *BatchRepository) Update(ctx context.Context, batch *models.Batch) error {
	batch.UpdatedAt = time.Now().UTC()
	const query = `UPDATE batches SET name = :name, teacher_id = :teacher_id, room = :room, duration_min = :duration_min, capacity = :capacity, unlimited = :unlimited, enrolled = :enrolled, fee_due_count = :fee_due_count, risk_count = :risk_count, start_date = :start_date, end_date = :end_date, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// Archive marks a batch as archived without removing history.
func (r *BatchRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE batches SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.BatchStatusArchived, time.Now().UTC()); err != nil {
		return fmt.Errorf("archive batch: %w", err)
	}
	return nil
}

// SetEnrollment adjusts the enrolled head count.
func (r *BatchRepository) SetEnrollment(ctx context.Context, id string, enrolled int) error {
	const query = `UPDATE batches SET enrolled = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, enrolled, time.Now().UTC()); err != nil {
		return fmt.Errorf("set batch enrollment: %w", err)
	}
	return nil
}
