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

type overrideStore interface {
	List(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error)
	Upsert(ctx context.Context, override *models.ScheduleOverride) error
	Delete(ctx context.Context, id string) error
}

type overrideBatchReader interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type overrideViewInvalidator interface {
	Invalidate(ctx context.Context, teacherID string)
}

// OverrideService manages per-date schedule adjustments. Writes upsert so a
// batch never carries more than one override per date.
type OverrideService struct {
	repo      overrideStore
	batches   overrideBatchReader
	views     overrideViewInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// OverrideServiceParams groups constructor dependencies.
type OverrideServiceParams struct {
	Repo     overrideStore
	Batches  overrideBatchReader
	Views    overrideViewInvalidator
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewOverrideService constructs an OverrideService.
func NewOverrideService(params OverrideServiceParams) *OverrideService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &OverrideService{
		repo:      params.Repo,
		batches:   params.Batches,
		views:     params.Views,
		validator: params.Validate,
		logger:    params.Logger,
	}
}

// List returns overrides plus pagination data.
func (s *OverrideService) List(ctx context.Context, filter models.ScheduleOverrideFilter) ([]models.ScheduleOverride, *models.Pagination, error) {
	overrides, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overrides")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return overrides, pagination, nil
}

// Upsert writes the override for (batch, date). An override that neither
// changes the time nor cancels the occurrence is rejected before it reaches
// storage.
func (s *OverrideService) Upsert(ctx context.Context, req dto.UpsertOverrideRequest) (*models.ScheduleOverride, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	if req.StartTime == nil && req.DurationMin == nil && !req.Cancelled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "override must change the time or cancel the occurrence")
	}

	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.StartTime != nil {
		if _, err := parseClock(*req.StartTime); err != nil {
			return nil, err
		}
	}

	batch, err := s.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	override := &models.ScheduleOverride{
		BatchID:     req.BatchID,
		Date:        date,
		StartTime:   req.StartTime,
		DurationMin: req.DurationMin,
		Cancelled:   req.Cancelled,
		Reason:      normalizeOptional(req.Reason),
	}
	if err := s.repo.Upsert(ctx, override); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save override")
	}

	if s.views != nil {
		s.views.Invalidate(ctx, batch.TeacherID)
	}
	return override, nil
}

// Delete removes an override, restoring rule derivation for its date.
func (s *OverrideService) Delete(ctx context.Context, id string) error {
	override, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "override not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load override")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete override")
	}
	s.invalidateViews(ctx, override.BatchID)
	return nil
}

func (s *OverrideService) invalidateViews(ctx context.Context, batchID string) {
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
