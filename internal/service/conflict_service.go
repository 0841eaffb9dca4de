package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type dayEventsProvider interface {
	DaySnapshot(ctx context.Context, teacherID string, date time.Time) ([]models.CalendarEventInstance, []models.TimeBlock, error)
}

type conflictCheckRecorder interface {
	RecordConflictCheck(ok bool)
}

// ConflictService validates proposed placements against the committed
// calendar. The check itself is a pure pass over a day snapshot; loading the
// snapshot is the only side effect.
type ConflictService struct {
	snapshots dayEventsProvider
	metrics   conflictCheckRecorder
	logger    *zap.Logger
}

// NewConflictService wires the validator. metrics may be nil.
func NewConflictService(snapshots dayEventsProvider, metrics conflictCheckRecorder, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{snapshots: snapshots, metrics: metrics, logger: logger}
}

// Check loads the committed state for the proposal's date and reports every
// collision. The generation rides through untouched so debounced callers can
// discard stale results.
func (s *ConflictService) Check(ctx context.Context, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	if req.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if !req.End.After(req.Start) {
		return nil, appErrors.Clone(appErrors.ErrMalformedRange, "proposal end must be after start")
	}

	// Room collisions cross teacher boundaries, so widen the snapshot when a
	// room is in play.
	scope := req.TeacherID
	if req.Room != nil && *req.Room != "" {
		scope = ""
	}
	instances, blocks, err := s.snapshots.DaySnapshot(ctx, scope, dateOnly(req.Start))
	if err != nil {
		return nil, err
	}

	result, err := evaluateConflicts(req, instances, blocks)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordConflictCheck(result.OK)
	}
	if !result.OK {
		s.logger.Debug("conflict check rejected placement",
			zap.String("teacherId", req.TeacherID),
			zap.Time("start", req.Start),
			zap.Int("conflicts", len(result.Conflicts)))
	}
	return result, nil
}

// evaluateConflicts is the pure overlap pass. One detail is emitted per
// colliding event; when an event collides on both dimensions, teacher wins.
func evaluateConflicts(req models.ConflictCheckRequest, instances []models.CalendarEventInstance, blocks []models.TimeBlock) (*models.ConflictCheckResult, error) {
	proposed := models.Interval{Start: req.Start, End: req.End}
	details := make([]models.ConflictDetail, 0, 2)

	for _, instance := range instances {
		if instance.UID == req.ExcludeUID || instance.Cancelled {
			continue
		}
		if !proposed.Overlaps(models.Interval{Start: instance.Start, End: instance.End}) {
			continue
		}
		var dimension models.ConflictDimension
		switch {
		case instance.TeacherID == req.TeacherID:
			dimension = models.ConflictDimensionTeacher
		case sameRoom(req.Room, instance.Room):
			dimension = models.ConflictDimensionRoom
		default:
			continue
		}
		details = append(details, models.ConflictDetail{
			UID:       instance.UID,
			Title:     instance.Title,
			Start:     instance.Start,
			End:       instance.End,
			Dimension: dimension,
		})
	}

	for _, block := range blocks {
		if block.TeacherID != req.TeacherID {
			continue
		}
		start, err := clockOnDate(block.Date, block.StartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("time block %s has an invalid start time", block.ID))
		}
		end := start.Add(minutes(block.DurationMin))
		if !proposed.Overlaps(models.Interval{Start: start, End: end}) {
			continue
		}
		details = append(details, models.ConflictDetail{
			UID:       blockUID(block.ID),
			Title:     block.Label,
			Start:     start,
			End:       end,
			Dimension: models.ConflictDimensionTeacher,
		})
	}

	sort.Slice(details, func(i, j int) bool {
		if details[i].Start.Equal(details[j].Start) {
			return details[i].UID < details[j].UID
		}
		return details[i].Start.Before(details[j].Start)
	})

	result := &models.ConflictCheckResult{
		OK:         len(details) == 0,
		Conflicts:  details,
		Generation: req.Generation,
	}
	if len(details) > 0 {
		first := details[0]
		result.Message = fmt.Sprintf("overlaps %q (%s-%s)", first.Title, formatClock(first.Start), formatClock(first.End))
	}
	return result, nil
}

func sameRoom(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}

func blockUID(id string) string {
	return "block-" + id
}
