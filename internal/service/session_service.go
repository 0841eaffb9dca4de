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

type sessionStore interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Cancel(ctx context.Context, id string) error
}

type sessionBatchReader interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type sessionViewInvalidator interface {
	Invalidate(ctx context.Context, teacherID string)
}

// SessionService manages pinned session rows. A session is authoritative
// for its (batch, date) on the calendar, ahead of rule and override
// derivation.
type SessionService struct {
	repo      sessionStore
	batches   sessionBatchReader
	views     sessionViewInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// SessionServiceParams groups constructor dependencies.
type SessionServiceParams struct {
	Repo     sessionStore
	Batches  sessionBatchReader
	Views    sessionViewInvalidator
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(params SessionServiceParams) *SessionService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &SessionService{
		repo:      params.Repo,
		batches:   params.Batches,
		views:     params.Views,
		validator: params.Validate,
		logger:    params.Logger,
	}
}

// List returns sessions plus pagination data.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
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
	return sessions, pagination, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Create pins an explicit dated session for an active batch.
func (s *SessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := parseClock(req.StartTime); err != nil {
		return nil, err
	}

	batch, err := s.batches.FindByID(ctx, req.BatchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.Status != models.BatchStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "batch is not active")
	}

	session := &models.Session{
		BatchID:     req.BatchID,
		Date:        date,
		StartTime:   req.StartTime,
		DurationMin: req.DurationMin,
		Note:        normalizeOptional(req.Note),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	if s.views != nil {
		s.views.Invalidate(ctx, batch.TeacherID)
	}
	return session, nil
}

// Update applies partial changes to a session. Completed sessions keep their
// recorded time; only status and note may still change.
func (s *SessionService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	changesTime := req.Date != nil || req.StartTime != nil || req.DurationMin != nil
	if session.Status == models.SessionStatusCompleted && changesTime {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "completed sessions cannot be edited")
	}

	if req.Date != nil {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		session.Date = date
	}
	if req.StartTime != nil {
		if _, err := parseClock(*req.StartTime); err != nil {
			return nil, err
		}
		session.StartTime = *req.StartTime
	}
	if req.DurationMin != nil {
		session.DurationMin = *req.DurationMin
	}
	if req.Status != nil {
		session.Status = models.SessionStatus(*req.Status)
	}
	if req.Note != nil {
		session.Note = normalizeOptional(req.Note)
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}

	s.invalidateViews(ctx, session.BatchID)
	return session, nil
}

// Cancel marks a session cancelled. The occurrence disappears from the
// calendar but the row stays for history.
func (s *SessionService) Cancel(ctx context.Context, id string) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel session")
	}
	s.invalidateViews(ctx, session.BatchID)
	return nil
}

func (s *SessionService) invalidateViews(ctx context.Context, batchID string) {
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
