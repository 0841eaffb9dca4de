package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type availabilityBatchReader interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

type availabilityRuleLister interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleRule, error)
}

type availabilityOverrideFinder interface {
	FindByBatchAndDate(ctx context.Context, batchID string, date time.Time) (*models.ScheduleOverride, error)
}

type availabilityHolidayLister interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
}

// AvailabilityConfig defines the institute working day.
type AvailabilityConfig struct {
	WorkdayStart string
	WorkdayEnd   string
}

// AvailabilityService answers free/busy and day-availability questions on
// top of materialized state.
type AvailabilityService struct {
	snapshots dayEventsProvider
	batches   availabilityBatchReader
	rules     availabilityRuleLister
	overrides availabilityOverrideFinder
	holidays  availabilityHolidayLister
	cfg       AvailabilityConfig
	logger    *zap.Logger
}

// AvailabilityServiceParams groups constructor dependencies.
type AvailabilityServiceParams struct {
	Snapshots dayEventsProvider
	Batches   availabilityBatchReader
	Rules     availabilityRuleLister
	Overrides availabilityOverrideFinder
	Holidays  availabilityHolidayLister
	Config    AvailabilityConfig
	Logger    *zap.Logger
}

// NewAvailabilityService wires the availability engine.
func NewAvailabilityService(params AvailabilityServiceParams) *AvailabilityService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Config.WorkdayStart == "" {
		params.Config.WorkdayStart = "07:00"
	}
	if params.Config.WorkdayEnd == "" {
		params.Config.WorkdayEnd = "20:00"
	}
	return &AvailabilityService{
		snapshots: params.Snapshots,
		batches:   params.Batches,
		rules:     params.Rules,
		overrides: params.Overrides,
		holidays:  params.Holidays,
		cfg:       params.Config,
		logger:    params.Logger,
	}
}

// FreeBusy partitions the teacher's working day into merged busy intervals
// and the complementary free intervals. Their union is exactly the working
// day.
func (s *AvailabilityService) FreeBusy(ctx context.Context, teacherID string, date time.Time) (*models.FreeBusy, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	workday, err := s.workdayOn(date)
	if err != nil {
		return nil, err
	}

	instances, blocks, err := s.snapshots.DaySnapshot(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}

	raw := make([]models.Interval, 0, len(instances)+len(blocks))
	for _, instance := range instances {
		if instance.Cancelled || instance.TeacherID != teacherID {
			continue
		}
		raw = append(raw, models.Interval{Start: instance.Start, End: instance.End})
	}
	for _, block := range blocks {
		if block.TeacherID != teacherID {
			continue
		}
		start, err := clockOnDate(block.Date, block.StartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "time block has an invalid start time")
		}
		raw = append(raw, models.Interval{Start: start, End: start.Add(minutes(block.DurationMin))})
	}

	busy := mergeIntervals(clipIntervals(raw, workday))
	return &models.FreeBusy{
		TeacherID: teacherID,
		Date:      dateOnly(date),
		Workday:   workday,
		Busy:      busy,
		Free:      complementIntervals(busy, workday),
	}, nil
}

// BatchAvailableOn reports whether the batch would hold a session on the
// date: an override decides outright, otherwise a weekday rule must match
// and the date must be inside the batch range and not a holiday.
func (s *AvailabilityService) BatchAvailableOn(ctx context.Context, batchID string, date time.Time) (bool, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch.Status != models.BatchStatusActive {
		return false, nil
	}
	day := dateOnly(date)
	if day.Before(dateOnly(batch.StartDate)) {
		return false, nil
	}
	if batch.EndDate != nil && day.After(dateOnly(*batch.EndDate)) {
		return false, nil
	}

	override, err := s.overrides.FindByBatchAndDate(ctx, batchID, day)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load override")
	}
	if override != nil {
		return !override.Cancelled, nil
	}

	rules, err := s.rules.ListByBatch(ctx, batchID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule rules")
	}
	matched := false
	for _, rule := range rules {
		if rule.Weekday == int(day.Weekday()) {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	holidays, err := s.holidays.ListWindow(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	return len(holidays) == 0, nil
}

func (s *AvailabilityService) workdayOn(date time.Time) (models.Interval, error) {
	start, err := clockOnDate(date, s.cfg.WorkdayStart)
	if err != nil {
		return models.Interval{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid workday start configuration")
	}
	end, err := clockOnDate(date, s.cfg.WorkdayEnd)
	if err != nil {
		return models.Interval{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid workday end configuration")
	}
	if !end.After(start) {
		return models.Interval{}, appErrors.Clone(appErrors.ErrInternal, "workday end must be after workday start")
	}
	return models.Interval{Start: start, End: end}, nil
}

// batchUtilization is enrolled over capacity. Unlimited batches always
// report zero so dashboards never flag them.
func batchUtilization(batch models.Batch) float64 {
	if batch.Unlimited {
		return 0
	}
	capacity := batch.Capacity
	if capacity < 1 {
		capacity = 1
	}
	return float64(batch.Enrolled) / float64(capacity)
}

// batchIsFull reports whether enrollment reached capacity. Unlimited
// batches are never full.
func batchIsFull(batch models.Batch) bool {
	if batch.Unlimited {
		return false
	}
	return batch.Enrolled >= batch.Capacity
}

// clipIntervals trims intervals to the bounds and drops everything outside
// or empty.
func clipIntervals(intervals []models.Interval, bounds models.Interval) []models.Interval {
	clipped := make([]models.Interval, 0, len(intervals))
	for _, interval := range intervals {
		start, end := interval.Start, interval.End
		if start.Before(bounds.Start) {
			start = bounds.Start
		}
		if end.After(bounds.End) {
			end = bounds.End
		}
		if end.After(start) {
			clipped = append(clipped, models.Interval{Start: start, End: end})
		}
	}
	return clipped
}

// mergeIntervals sorts and coalesces overlapping or touching intervals.
func mergeIntervals(intervals []models.Interval) []models.Interval {
	if len(intervals) == 0 {
		return []models.Interval{}
	}
	sorted := make([]models.Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []models.Interval{sorted[0]}
	for _, interval := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !interval.Start.After(last.End) {
			if interval.End.After(last.End) {
				last.End = interval.End
			}
			continue
		}
		merged = append(merged, interval)
	}
	return merged
}

// complementIntervals returns the gaps of busy within bounds. busy must be
// merged and sorted.
func complementIntervals(busy []models.Interval, bounds models.Interval) []models.Interval {
	free := make([]models.Interval, 0, len(busy)+1)
	cursor := bounds.Start
	for _, interval := range busy {
		if interval.Start.After(cursor) {
			free = append(free, models.Interval{Start: cursor, End: interval.Start})
		}
		if interval.End.After(cursor) {
			cursor = interval.End
		}
	}
	if bounds.End.After(cursor) {
		free = append(free, models.Interval{Start: cursor, End: bounds.End})
	}
	return free
}
