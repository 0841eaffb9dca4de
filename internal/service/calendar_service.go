package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	"github.com/noah-isme/bimbel-adp-api/internal/repository"
)

type calendarWindowSource interface {
	WindowSnapshot(ctx context.Context, teacherID string, window models.CalendarWindow) ([]models.CalendarEventInstance, []models.TimeBlock, error)
}

// CalendarService serves one-shot calendar views: a materialized window plus
// the raw blocks in it. Teacher-scoped views are cached briefly and dropped
// by pattern whenever a schedule change commits for that teacher.
type CalendarService struct {
	materializer calendarWindowSource
	cache        *CacheService
	ttl          time.Duration
	logger       *zap.Logger
}

// NewCalendarService wires the view service. Cache may be nil, in which case
// every view materializes fresh.
func NewCalendarService(materializer calendarWindowSource, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CalendarService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{materializer: materializer, cache: cache, ttl: ttl, logger: logger}
}

// View materializes [window.From, window.To). An empty teacherID covers every
// active batch; batchID narrows the events to one batch. Only unfiltered
// teacher views are cached, since their keys are what a committed change
// invalidates. The bool reports a cache hit.
func (s *CalendarService) View(ctx context.Context, teacherID, batchID string, window models.CalendarWindow) (*models.CalendarView, bool, error) {
	cacheable := s.cache != nil && teacherID != "" && batchID == ""
	key := repository.CalendarViewCacheKey(teacherID, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
	if cacheable {
		var cached models.CalendarView
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("calendar view cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	events, blocks, err := s.materializer.WindowSnapshot(ctx, teacherID, window)
	if err != nil {
		return nil, false, err
	}
	if batchID != "" {
		filtered := make([]models.CalendarEventInstance, 0, len(events))
		for _, event := range events {
			if event.BatchID == batchID {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}
	if events == nil {
		events = []models.CalendarEventInstance{}
	}
	if blocks == nil {
		blocks = []models.TimeBlock{}
	}

	view := &models.CalendarView{
		TeacherID: teacherID,
		From:      window.From,
		To:        window.To,
		Events:    events,
		Blocks:    blocks,
	}
	if cacheable {
		if err := s.cache.Set(ctx, key, view, s.ttl); err != nil {
			s.logger.Warn("calendar view cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return view, false, nil
}

// Invalidate drops every cached view for a teacher.
func (s *CalendarService) Invalidate(ctx context.Context, teacherID string) {
	if s.cache == nil || teacherID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, repository.CalendarViewCachePattern(teacherID)); err != nil {
		s.logger.Warn("calendar view invalidation failed", zap.String("teacherId", teacherID), zap.Error(err))
	}
}

// InvalidateAll drops every cached view. Holiday writes shift materialized
// instances for all teachers at once.
func (s *CalendarService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, repository.CalendarViewCacheAllPattern); err != nil {
		s.logger.Warn("calendar view invalidation failed", zap.Error(err))
	}
}
