package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type ruleStore interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleRule, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleRule, error)
	Create(ctx context.Context, rule *models.ScheduleRule) error
	Update(ctx context.Context, rule *models.ScheduleRule) error
	Delete(ctx context.Context, id string) error
}

type ruleBatchReader interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type ruleViewInvalidator interface {
	Invalidate(ctx context.Context, teacherID string)
}

// ScheduleRuleService manages the weekly recurring slots of a batch. A batch
// may carry any number of rules; the materializer picks the earliest start
// when several rules share a weekday.
type ScheduleRuleService struct {
	repo      ruleStore
	batches   ruleBatchReader
	views     ruleViewInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// ScheduleRuleServiceParams groups constructor dependencies.
type ScheduleRuleServiceParams struct {
	Repo     ruleStore
	Batches  ruleBatchReader
	Views    ruleViewInvalidator
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewScheduleRuleService constructs a ScheduleRuleService.
func NewScheduleRuleService(params ScheduleRuleServiceParams) *ScheduleRuleService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &ScheduleRuleService{
		repo:      params.Repo,
		batches:   params.Batches,
		views:     params.Views,
		validator: params.Validate,
		logger:    params.Logger,
	}
}

// ListByBatch returns the recurring slots of a batch.
func (s *ScheduleRuleService) ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleRule, error) {
	if _, err := s.loadBatch(ctx, batchID); err != nil {
		return nil, err
	}
	rules, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule rules")
	}
	return rules, nil
}

// Create adds a recurring slot to a batch.
func (s *ScheduleRuleService) Create(ctx context.Context, batchID string, req dto.CreateRuleRequest) (*models.ScheduleRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}
	if _, err := parseClock(req.StartTime); err != nil {
		return nil, err
	}

	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	rule := &models.ScheduleRule{
		BatchID:     batchID,
		Weekday:     *req.Weekday,
		StartTime:   req.StartTime,
		DurationMin: req.DurationMin,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule rule")
	}

	if s.views != nil {
		s.views.Invalidate(ctx, batch.TeacherID)
	}
	return rule, nil
}

// Update applies partial changes to a recurring slot.
func (s *ScheduleRuleService) Update(ctx context.Context, id string, req dto.UpdateRuleRequest) (*models.ScheduleRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rule payload")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule rule")
	}

	if req.Weekday != nil {
		rule.Weekday = *req.Weekday
	}
	if req.StartTime != nil {
		if _, err := parseClock(*req.StartTime); err != nil {
			return nil, err
		}
		rule.StartTime = *req.StartTime
	}
	if req.DurationMin != nil {
		rule.DurationMin = *req.DurationMin
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule rule")
	}

	s.invalidateViews(ctx, rule.BatchID)
	return rule, nil
}

// Delete removes a recurring slot. Future dates stop materializing from it.
func (s *ScheduleRuleService) Delete(ctx context.Context, id string) error {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule rule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule rule")
	}
	s.invalidateViews(ctx, rule.BatchID)
	return nil
}

func (s *ScheduleRuleService) loadBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

func (s *ScheduleRuleService) invalidateViews(ctx context.Context, batchID string) {
	if s.views == nil {
		return
	}
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		s.logger.Warn("calendar view invalidation skipped", zap.String("batchId", batchID), zap.Error(err))
		return
	}
	s.views.Invalidate(ctx, batch.TeacherID)
}
