package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

// RescheduleConfig bounds the candidate search.
type RescheduleConfig struct {
	HorizonWeeks  int
	MaxCandidates int
	SnapGridMin   int
	WorkdayStart  string
	WorkdayEnd    string
}

// RescheduleService proposes replacement slots for a batch session. The
// search walks the working-day grid across the horizon and keeps every slot
// the conflict pass accepts; candidates are ephemeral and accepting one goes
// through the override endpoint.
type RescheduleService struct {
	batches   availabilityBatchReader
	snapshots dayEventsProvider
	holidays  availabilityHolidayLister
	cfg       RescheduleConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewRescheduleService wires the suggestion engine.
func NewRescheduleService(batches availabilityBatchReader, snapshots dayEventsProvider, holidays availabilityHolidayLister, cfg RescheduleConfig, logger *zap.Logger) *RescheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HorizonWeeks <= 0 {
		cfg.HorizonWeeks = 3
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 40
	}
	if cfg.SnapGridMin <= 0 {
		cfg.SnapGridMin = 30
	}
	if cfg.WorkdayStart == "" {
		cfg.WorkdayStart = "07:00"
	}
	if cfg.WorkdayEnd == "" {
		cfg.WorkdayEnd = "20:00"
	}
	return &RescheduleService{
		batches:   batches,
		snapshots: snapshots,
		holidays:  holidays,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Suggest returns viable replacement slots ordered by (date, start). The
// best candidate is the earliest viable start on the least-loaded date;
// exactly one candidate carries IsBest when any exist.
func (s *RescheduleService) Suggest(ctx context.Context, batchID string, horizonWeeks int) ([]models.RescheduleCandidate, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.Status != models.BatchStatusActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "batch is not active")
	}
	if batch.DurationMin <= 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "batch has no default duration")
	}

	weeks := horizonWeeks
	if weeks <= 0 {
		weeks = s.cfg.HorizonWeeks
	}
	startMin, err := parseClock(s.cfg.WorkdayStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid workday start configuration")
	}
	endMin, err := parseClock(s.cfg.WorkdayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid workday end configuration")
	}

	searchFrom := dateOnly(s.now()).AddDate(0, 0, 1)
	searchTo := searchFrom.AddDate(0, 0, 7*weeks)

	holidayList, err := s.holidays.ListWindow(ctx, searchFrom, searchTo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	offDates := make(map[string]bool, len(holidayList))
	for _, holiday := range holidayList {
		offDates[dateKey(holiday.Date)] = true
	}

	// Room collisions cross teacher boundaries, mirror the validator's
	// snapshot widening.
	scope := batch.TeacherID
	if batch.Room != nil && *batch.Room != "" {
		scope = ""
	}

	candidates := make([]models.RescheduleCandidate, 0, s.cfg.MaxCandidates)
	seen := make(map[string]bool)
	bestIdx := -1

	for date := searchFrom; date.Before(searchTo); date = date.AddDate(0, 0, 1) {
		if offDates[dateKey(date)] {
			continue
		}
		instances, blocks, err := s.snapshots.DaySnapshot(ctx, scope, date)
		if err != nil {
			return nil, err
		}
		load := teacherDayLoad(batch.TeacherID, instances, blocks)

		for slot := startMin; slot+batch.DurationMin <= endMin; slot += s.cfg.SnapGridMin {
			start := date.Add(minutes(slot))
			end := start.Add(minutes(batch.DurationMin))
			result, err := evaluateConflicts(models.ConflictCheckRequest{
				TeacherID: batch.TeacherID,
				Room:      batch.Room,
				Start:     start,
				End:       end,
			}, instances, blocks)
			if err != nil {
				return nil, err
			}
			if !result.OK {
				continue
			}
			candidate := models.RescheduleCandidate{
				BatchID:    batchID,
				Date:       date,
				Start:      start,
				End:        end,
				Weekday:    int(date.Weekday()),
				DayLoadMin: load,
			}
			var added bool
			candidates, added = appendCandidate(candidates, seen, candidate)
			if !added {
				continue
			}
			if bestIdx < 0 || candidates[len(candidates)-1].DayLoadMin < candidates[bestIdx].DayLoadMin {
				bestIdx = len(candidates) - 1
			}
		}
	}

	if len(candidates) == 0 {
		return []models.RescheduleCandidate{}, nil
	}
	candidates[bestIdx].IsBest = true
	capped := capCandidates(candidates, bestIdx, s.cfg.MaxCandidates)

	s.logger.Debug("reschedule suggestions computed",
		zap.String("batchId", batchID),
		zap.Int("weeks", weeks),
		zap.Int("candidates", len(capped)))
	return capped, nil
}

// appendCandidate adds the candidate unless its (batch, start) key was
// already produced; the first occurrence survives.
func appendCandidate(candidates []models.RescheduleCandidate, seen map[string]bool, candidate models.RescheduleCandidate) ([]models.RescheduleCandidate, bool) {
	key := candidate.BatchID + ":" + candidate.Start.UTC().Format(time.RFC3339)
	if seen[key] {
		return candidates, false
	}
	seen[key] = true
	return append(candidates, candidate), true
}

// capCandidates trims to the limit while always keeping the best entry.
// Candidates arrive ordered by (date, start) and stay that way.
func capCandidates(candidates []models.RescheduleCandidate, bestIdx, limit int) []models.RescheduleCandidate {
	if len(candidates) <= limit {
		return candidates
	}
	if bestIdx < limit {
		return candidates[:limit]
	}
	capped := make([]models.RescheduleCandidate, 0, limit)
	capped = append(capped, candidates[:limit-1]...)
	return append(capped, candidates[bestIdx])
}

// teacherDayLoad totals the committed non-cancelled minutes of the teacher
// on the snapshot's date, blocks included.
func teacherDayLoad(teacherID string, instances []models.CalendarEventInstance, blocks []models.TimeBlock) int {
	total := 0
	for _, instance := range instances {
		if instance.Cancelled || instance.TeacherID != teacherID {
			continue
		}
		total += instance.DurationMin
	}
	for _, block := range blocks {
		if block.TeacherID != teacherID {
			continue
		}
		total += block.DurationMin
	}
	return total
}
