package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

// ScheduleRuleRepository manages persistence for weekly recurring rules.
type ScheduleRuleRepository struct {
	db *sqlx.DB
}

// NewScheduleRuleRepository constructs a ScheduleRuleRepository.
func NewScheduleRuleRepository(db *sqlx.DB) *ScheduleRuleRepository {
	return &ScheduleRuleRepository{db: db}
}

const ruleColumns = "id, batch_id, weekday, start_time, duration_min, created_at, updated_at"

// ListByBatch returns the batch's rules ordered by weekday then start time.
func (r *ScheduleRuleRepository) ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleRule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_rules WHERE batch_id = $1 ORDER BY weekday ASC, start_time ASC", ruleColumns)
	var rules []models.ScheduleRule
	if err := r.db.SelectContext(ctx, &rules, query, batchID); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// ListByBatchIDs returns all rules for the given batches.
func (r *ScheduleRuleRepository) ListByBatchIDs(ctx context.Context, batchIDs []string) ([]models.ScheduleRule, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM schedule_rules WHERE batch_id IN (?) ORDER BY weekday ASC, start_time ASC", ruleColumns), batchIDs)
	if err != nil {
		return nil, fmt.Errorf("build rules query: %w", err)
	}
	query = r.db.Rebind(query)
	var rules []models.ScheduleRule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		return nil, fmt.Errorf("list rules by batches: %w", err)
	}
	return rules, nil
}

// FindByID fetches a rule by ID.
func (r *ScheduleRuleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleRule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_rules WHERE id = $1", ruleColumns)
	var rule models.ScheduleRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create inserts a new rule record.
func (r *ScheduleRuleRepository) Create(ctx context.Context, rule *models.ScheduleRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO schedule_rules (id, batch_id, weekday, start_time, duration_min, created_at, updated_at)
		VALUES (:id, :batch_id, :weekday, :start_time, :duration_min, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	return nil
}

// Update modifies an existing rule record.
func (r *ScheduleRuleRepository) Update(ctx context.Context, rule *models.ScheduleRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_rules SET weekday = :weekday, start_time = :start_time, duration_min = :duration_min, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return nil
}

// Delete removes a rule record.
func (r *ScheduleRuleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_rules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}
