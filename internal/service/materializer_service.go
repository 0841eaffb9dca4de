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

type calendarSource interface {
	LoadWindow(ctx context.Context, teacherID string, from, to time.Time) (*models.CalendarSlice, error)
}

// MaterializerService turns persisted rules, overrides and session rows into
// concrete dated CalendarEventInstances. Instances are derived on every call
// and never written back.
type MaterializerService struct {
	source calendarSource
	logger *zap.Logger
	now    func() time.Time
}

// NewMaterializerService wires the materializer.
func NewMaterializerService(source calendarSource, logger *zap.Logger) *MaterializerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterializerService{source: source, logger: logger, now: time.Now}
}

// Materialize returns the ordered instances for [window.From, window.To).
// An empty teacherID materializes every active batch.
func (s *MaterializerService) Materialize(ctx context.Context, teacherID string, window models.CalendarWindow) ([]models.CalendarEventInstance, error) {
	instances, _, err := s.WindowSnapshot(ctx, teacherID, window)
	return instances, err
}

// WindowSnapshot materializes the window and returns the raw time blocks in
// it alongside, for views that render or collide against both.
func (s *MaterializerService) WindowSnapshot(ctx context.Context, teacherID string, window models.CalendarWindow) ([]models.CalendarEventInstance, []models.TimeBlock, error) {
	if !window.To.After(window.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrMalformedRange, "window end must be after window start")
	}
	slice, err := s.source.LoadWindow(ctx, teacherID, window.From, window.To)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar window")
	}
	instances, err := buildInstances(slice, window, s.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("materialized window",
		zap.String("teacherId", teacherID),
		zap.Time("from", window.From),
		zap.Time("to", window.To),
		zap.Int("instances", len(instances)))
	return instances, slice.Blocks, nil
}

// DaySnapshot materializes a single date plus the raw blocks on it. Conflict
// checks and free/busy computation both consume this.
func (s *MaterializerService) DaySnapshot(ctx context.Context, teacherID string, date time.Time) ([]models.CalendarEventInstance, []models.TimeBlock, error) {
	day := dateOnly(date)
	return s.WindowSnapshot(ctx, teacherID, models.CalendarWindow{From: day, To: day.AddDate(0, 0, 1)})
}

// buildInstances is the pure materialization pass. For every batch and every
// date in the window it resolves which record is authoritative, emits at most
// one instance per (batch, date) and returns the result ordered by start.
func buildInstances(slice *models.CalendarSlice, window models.CalendarWindow, now time.Time) ([]models.CalendarEventInstance, error) {
	rules := indexRules(slice.Rules)
	overrides := make(map[string]models.ScheduleOverride, len(slice.Overrides))
	for _, override := range slice.Overrides {
		overrides[batchDateKey(override.BatchID, override.Date)] = override
	}
	sessions := make(map[string]models.Session, len(slice.Sessions))
	for _, session := range slice.Sessions {
		key := batchDateKey(session.BatchID, session.Date)
		if current, ok := sessions[key]; !ok || session.UpdatedAt.After(current.UpdatedAt) {
			sessions[key] = session
		}
	}
	holidays := make(map[string]bool, len(slice.Holidays))
	for _, holiday := range slice.Holidays {
		holidays[dateKey(holiday.Date)] = true
	}

	instances := make([]models.CalendarEventInstance, 0, len(slice.Batches)*2)
	seen := make(map[string]bool)

	for _, batch := range slice.Batches {
		from, to := clipToBatch(batch, window)
		for date := from; date.Before(to); date = date.AddDate(0, 0, 1) {
			key := batchDateKey(batch.ID, date)
			instance, err := resolveInstance(batch, date, rules[batch.ID], overrides, sessions, holidays, key, now)
			if err != nil {
				return nil, err
			}
			if instance == nil {
				continue
			}
			if seen[instance.UID] {
				return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("duplicate instance uid %s", instance.UID))
			}
			seen[instance.UID] = true
			instances = append(instances, *instance)
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		if instances[i].Start.Equal(instances[j].Start) {
			return instances[i].BatchID < instances[j].BatchID
		}
		return instances[i].Start.Before(instances[j].Start)
	})
	return instances, nil
}

// indexRules maps batch id to its effective rule per weekday. When several
// rules share a weekday the earliest start wins so a day never yields two
// instances for one batch.
func indexRules(rules []models.ScheduleRule) map[string]map[int]models.ScheduleRule {
	indexed := make(map[string]map[int]models.ScheduleRule)
	for _, rule := range rules {
		byDay := indexed[rule.BatchID]
		if byDay == nil {
			byDay = make(map[int]models.ScheduleRule)
			indexed[rule.BatchID] = byDay
		}
		current, ok := byDay[rule.Weekday]
		if !ok || rule.StartTime < current.StartTime {
			byDay[rule.Weekday] = rule
		}
	}
	return indexed
}

// clipToBatch narrows the window to the batch's own running dates. Windows
// are date-granular: a To with a time component rounds up to the next
// midnight. The batch end date is inclusive.
func clipToBatch(batch models.Batch, window models.CalendarWindow) (time.Time, time.Time) {
	from := dateOnly(window.From)
	if start := dateOnly(batch.StartDate); start.After(from) {
		from = start
	}
	to := dateOnly(window.To)
	if window.To.UTC().After(to) {
		to = to.AddDate(0, 0, 1)
	}
	if batch.EndDate != nil {
		if end := dateOnly(*batch.EndDate).AddDate(0, 0, 1); end.Before(to) {
			to = end
		}
	}
	return from, to
}

// resolveInstance picks the authoritative record for one (batch, date) and
// shapes it into an instance. Precedence: a session row and an override on
// the same date resolve by most recent edit; otherwise session beats
// override beats rule. Holidays suppress only rule-derived instances.
func resolveInstance(
	batch models.Batch,
	date time.Time,
	rulesByDay map[int]models.ScheduleRule,
	overrides map[string]models.ScheduleOverride,
	sessions map[string]models.Session,
	holidays map[string]bool,
	key string,
	now time.Time,
) (*models.CalendarEventInstance, error) {
	session, hasSession := sessions[key]
	override, hasOverride := overrides[key]
	rule, hasRule := rulesByDay[int(date.Weekday())]

	if hasSession && hasOverride {
		if override.UpdatedAt.After(session.UpdatedAt) {
			hasSession = false
		} else {
			hasOverride = false
		}
	}

	switch {
	case hasSession:
		if session.Status == models.SessionStatusCancelled {
			return nil, nil
		}
		return sessionInstance(batch, session, now)

	case hasOverride:
		if override.Cancelled {
			return nil, nil
		}
		start := ""
		if override.StartTime != nil {
			start = *override.StartTime
		} else if hasRule {
			start = rule.StartTime
		} else {
			return nil, nil
		}
		duration := 0
		switch {
		case override.DurationMin != nil:
			duration = *override.DurationMin
		case hasRule:
			duration = rule.DurationMin
		default:
			duration = batch.DurationMin
		}
		return derivedInstance(batch, date, start, duration, models.EventSourceOverride, now)

	case hasRule:
		if holidays[dateKey(date)] {
			return nil, nil
		}
		return derivedInstance(batch, date, rule.StartTime, rule.DurationMin, models.EventSourceRule, now)
	}
	return nil, nil
}

func sessionInstance(batch models.Batch, session models.Session, now time.Time) (*models.CalendarEventInstance, error) {
	start, err := clockOnDate(session.Date, session.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("session %s has an invalid start time", session.ID))
	}
	if session.DurationMin <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("session %s has a non-positive duration", session.ID))
	}
	sessionID := session.ID
	instance := newInstance(batch, dateOnly(session.Date), start, session.DurationMin, models.EventSourceSession, now)
	instance.SessionID = &sessionID
	instance.UID = models.InstanceUID(&sessionID, batch.ID, start)
	if session.Status == models.SessionStatusCompleted {
		instance.Status = models.EventStatusCompleted
		instance.Editable = false
	}
	return instance, nil
}

func derivedInstance(batch models.Batch, date time.Time, startClock string, duration int, source models.EventSource, now time.Time) (*models.CalendarEventInstance, error) {
	start, err := clockOnDate(date, startClock)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("batch %s has an invalid stored start time", batch.ID))
	}
	if duration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("batch %s resolves to a non-positive duration on %s", batch.ID, date.Format("2006-01-02")))
	}
	return newInstance(batch, dateOnly(date), start, duration, source, now), nil
}

func newInstance(batch models.Batch, date, start time.Time, duration int, source models.EventSource, now time.Time) *models.CalendarEventInstance {
	instance := &models.CalendarEventInstance{
		UID:          models.InstanceUID(nil, batch.ID, start),
		BatchID:      batch.ID,
		Title:        batch.Name,
		TeacherID:    batch.TeacherID,
		Room:         batch.Room,
		Date:         date,
		Start:        start,
		End:          start.Add(time.Duration(duration) * time.Minute),
		DurationMin:  duration,
		Source:       source,
		StudentCount: batch.Enrolled,
		FeeDueCount:  batch.FeeDueCount,
		RiskCount:    batch.RiskCount,
	}
	instance.Status = instance.ClassifyStatus(now)
	instance.Editable = instance.Status != models.EventStatusCompleted
	return instance
}

func batchDateKey(batchID string, date time.Time) string {
	return batchID + "|" + dateKey(date)
}

func dateKey(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}
