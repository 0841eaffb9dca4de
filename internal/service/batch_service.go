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

type batchStore interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	FindDetail(ctx context.Context, id string) (*models.BatchDetail, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Archive(ctx context.Context, id string) error
	SetEnrollment(ctx context.Context, id string, enrolled int) error
}

type batchTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type batchCapacityInvalidator interface {
	Invalidate(ctx context.Context, batchID string)
}

type batchViewInvalidator interface {
	Invalidate(ctx context.Context, teacherID string)
}

// BatchService manages the coaching batch roster.
type BatchService struct {
	repo      batchStore
	teachers  batchTeacherReader
	capacity  batchCapacityInvalidator
	views     batchViewInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// BatchServiceParams groups constructor dependencies.
type BatchServiceParams struct {
	Repo     batchStore
	Teachers batchTeacherReader
	Capacity batchCapacityInvalidator
	Views    batchViewInvalidator
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(params BatchServiceParams) *BatchService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &BatchService{
		repo:      params.Repo,
		teachers:  params.Teachers,
		capacity:  params.Capacity,
		views:     params.Views,
		validator: params.Validate,
		logger:    params.Logger,
	}
}

// List returns batches plus pagination data.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
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
	return batches, pagination, nil
}

// Get returns a batch with its teacher's display name.
func (s *BatchService) Get(ctx context.Context, id string) (*models.BatchDetail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return detail, nil
}

// Create registers a new batch assigned to an active teacher.
func (s *BatchService) Create(ctx context.Context, req dto.CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if !req.Unlimited && req.Capacity < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "capacity must be at least 1 unless unlimited")
	}

	startDate, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	var endDate *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := dto.ParseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		if parsed.Before(startDate) {
			return nil, appErrors.Clone(appErrors.ErrMalformedRange, "end date must not precede start date")
		}
		endDate = &parsed
	}

	if err := s.ensureAssignableTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	batch := &models.Batch{
		Name:        strings.TrimSpace(req.Name),
		TeacherID:   req.TeacherID,
		Room:        normalizeOptional(req.Room),
		DurationMin: req.DurationMin,
		Capacity:    req.Capacity,
		Unlimited:   req.Unlimited,
		Enrolled:    req.Enrolled,
		FeeDueCount: req.FeeDueCount,
		RiskCount:   req.RiskCount,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      models.BatchStatusActive,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, nil
}

// Update applies partial changes to a batch and drops the stale caches.
func (s *BatchService) Update(ctx context.Context, id string, req dto.UpdateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
		}
		updated.Name = name
	}
	if req.TeacherID != nil && *req.TeacherID != existing.TeacherID {
		if err := s.ensureAssignableTeacher(ctx, *req.TeacherID); err != nil {
			return nil, err
		}
		updated.TeacherID = *req.TeacherID
	}
	if req.Room != nil {
		updated.Room = normalizeOptional(req.Room)
	}
	if req.DurationMin != nil {
		updated.DurationMin = *req.DurationMin
	}
	if req.Capacity != nil {
		updated.Capacity = *req.Capacity
	}
	if req.Unlimited != nil {
		updated.Unlimited = *req.Unlimited
	}
	if req.Enrolled != nil {
		updated.Enrolled = *req.Enrolled
	}
	if req.FeeDueCount != nil {
		updated.FeeDueCount = *req.FeeDueCount
	}
	if req.RiskCount != nil {
		updated.RiskCount = *req.RiskCount
	}
	if req.StartDate != nil {
		startDate, err := dto.ParseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		updated.StartDate = startDate
	}
	if req.EndDate != nil {
		if strings.TrimSpace(*req.EndDate) == "" {
			updated.EndDate = nil
		} else {
			endDate, err := dto.ParseDate(*req.EndDate)
			if err != nil {
				return nil, err
			}
			updated.EndDate = &endDate
		}
	}
	if req.Status != nil {
		updated.Status = models.BatchStatus(*req.Status)
	}

	if !updated.Unlimited && updated.Capacity < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "capacity must be at least 1 unless unlimited")
	}
	if updated.EndDate != nil && updated.EndDate.Before(updated.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrMalformedRange, "end date must not precede start date")
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}

	s.invalidate(ctx, id, existing.TeacherID)
	if updated.TeacherID != existing.TeacherID && s.views != nil {
		s.views.Invalidate(ctx, updated.TeacherID)
	}
	return &updated, nil
}

// Archive retires a batch. Archived batches stop materializing instances
// but their history stays queryable.
func (s *BatchService) Archive(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive batch")
	}
	s.invalidate(ctx, id, existing.TeacherID)
	return nil
}

// SetEnrollment records a head-count change reported by the enrollment
// system and drops the cached capacity snapshot.
func (s *BatchService) SetEnrollment(ctx context.Context, id string, enrolled int) (*models.Batch, error) {
	if enrolled < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrolled must not be negative")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if err := s.repo.SetEnrollment(ctx, id, enrolled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	if s.capacity != nil {
		s.capacity.Invalidate(ctx, id)
	}
	existing.Enrolled = enrolled
	return existing, nil
}

func (s *BatchService) ensureAssignableTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is not active")
	}
	return nil
}

func (s *BatchService) invalidate(ctx context.Context, batchID, teacherID string) {
	if s.capacity != nil {
		s.capacity.Invalidate(ctx, batchID)
	}
	if s.views != nil {
		s.views.Invalidate(ctx, teacherID)
	}
}
