package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/dto"
	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type holidayStore interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
	FindByID(ctx context.Context, id string) (*models.Holiday, error)
	Create(ctx context.Context, holiday *models.Holiday) error
	Delete(ctx context.Context, id string) error
}

type holidayViewInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// HolidayService manages institute-wide non-teaching dates. A holiday write
// shifts the derived calendar of every teacher, so cached views are dropped
// wholesale.
type HolidayService struct {
	repo      holidayStore
	views     holidayViewInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHolidayService constructs a HolidayService.
func NewHolidayService(repo holidayStore, views holidayViewInvalidator, validate *validator.Validate, logger *zap.Logger) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{repo: repo, views: views, validator: validate, logger: logger}
}

// ListWindow returns holidays inside [from, to).
func (s *HolidayService) ListWindow(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	holidays, err := s.repo.ListWindow(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return holidays, nil
}

// Create marks a date as non-teaching. At most one holiday per date.
func (s *HolidayService) Create(ctx context.Context, req dto.CreateHolidayRequest) (*models.Holiday, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListWindow(ctx, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check holiday date")
	}
	if len(existing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "holiday already exists on this date")
	}

	holiday := &models.Holiday{
		Date: date,
		Name: strings.TrimSpace(req.Name),
	}
	if err := s.repo.Create(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create holiday")
	}

	if s.views != nil {
		s.views.InvalidateAll(ctx)
	}
	return holiday, nil
}

// Delete removes a holiday, restoring rule derivation for its date.
func (s *HolidayService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holiday")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete holiday")
	}
	if s.views != nil {
		s.views.InvalidateAll(ctx)
	}
	return nil
}
