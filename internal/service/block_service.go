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

type blockStore interface {
	ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimeBlock, error)
	FindByID(ctx context.Context, id string) (*models.TimeBlock, error)
	Create(ctx context.Context, block *models.TimeBlock) error
	Delete(ctx context.Context, id string) error
}

type blockTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type blockViewInvalidator interface {
	Invalidate(ctx context.Context, teacherID string)
}

// BlockService manages teacher time reservations outside batch sessions.
type BlockService struct {
	repo      blockStore
	teachers  blockTeacherReader
	views     blockViewInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// BlockServiceParams groups constructor dependencies.
type BlockServiceParams struct {
	Repo     blockStore
	Teachers blockTeacherReader
	Views    blockViewInvalidator
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewBlockService constructs a BlockService.
func NewBlockService(params BlockServiceParams) *BlockService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &BlockService{
		repo:      params.Repo,
		teachers:  params.Teachers,
		views:     params.Views,
		validator: params.Validate,
		logger:    params.Logger,
	}
}

// ListByTeacher returns the teacher's blocks inside [from, to).
func (s *BlockService) ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimeBlock, error) {
	if err := s.ensureTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListByTeacher(ctx, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time blocks")
	}
	return blocks, nil
}

// Create reserves part of a teacher's day.
func (s *BlockService) Create(ctx context.Context, req dto.CreateBlockRequest) (*models.TimeBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := parseClock(req.StartTime); err != nil {
		return nil, err
	}
	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	block := &models.TimeBlock{
		TeacherID:   req.TeacherID,
		Date:        date,
		StartTime:   req.StartTime,
		DurationMin: req.DurationMin,
		Label:       strings.TrimSpace(req.Label),
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time block")
	}

	if s.views != nil {
		s.views.Invalidate(ctx, req.TeacherID)
	}
	return block, nil
}

// Delete releases a reservation.
func (s *BlockService) Delete(ctx context.Context, id string) error {
	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "time block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time block")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time block")
	}
	if s.views != nil {
		s.views.Invalidate(ctx, block.TeacherID)
	}
	return nil
}

func (s *BlockService) ensureTeacher(ctx context.Context, teacherID string) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return nil
}
