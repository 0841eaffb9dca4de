package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

type fakeDayLoads struct {
	instances map[string][]models.CalendarEventInstance
	blocks    map[string][]models.TimeBlock
}

func (f *fakeDayLoads) DaySnapshot(_ context.Context, _ string, date time.Time) ([]models.CalendarEventInstance, []models.TimeBlock, error) {
	key := date.UTC().Format("2006-01-02")
	return f.instances[key], f.blocks[key], nil
}

// newTestReschedule searches one week on a tight 08:00-12:00 workday with a
// 60-minute grid: a 90-minute batch fits at 08:00, 09:00 and 10:00.
func newTestReschedule(batch models.Batch, days *fakeDayLoads, holidays *fakeHolidayLister, maxCandidates int) *RescheduleService {
	svc := NewRescheduleService(&fakeBatchReader{batch: &batch}, days, holidays, RescheduleConfig{
		HorizonWeeks:  1,
		MaxCandidates: maxCandidates,
		SnapGridMin:   60,
		WorkdayStart:  "08:00",
		WorkdayEnd:    "12:00",
	}, zap.NewNop())
	// Monday 2026-03-02: the search covers Tuesday the 3rd through Monday the 9th.
	svc.now = func() time.Time { return at(2026, time.March, 2, 9, 0) }
	return svc
}

func TestSuggestWalksGridInOrder(t *testing.T) {
	svc := newTestReschedule(physicsBatch(), &fakeDayLoads{}, &fakeHolidayLister{}, 40)

	candidates, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)
	// 7 days x 3 viable slots.
	require.Len(t, candidates, 21)

	for i := 1; i < len(candidates); i++ {
		assert.True(t, !candidates[i].Start.Before(candidates[i-1].Start), "candidates must be ordered by start")
	}
	first := candidates[0]
	assert.Equal(t, day(2026, time.March, 3), first.Date)
	assert.Equal(t, at(2026, time.March, 3, 8, 0), first.Start)
	assert.Equal(t, at(2026, time.March, 3, 9, 30), first.End)
	assert.Equal(t, 2, first.Weekday)
	assert.Equal(t, 0, first.DayLoadMin)
}

func TestSuggestExactlyOneBest(t *testing.T) {
	svc := newTestReschedule(physicsBatch(), &fakeDayLoads{}, &fakeHolidayLister{}, 40)

	candidates, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)

	bestCount := 0
	for _, candidate := range candidates {
		if candidate.IsBest {
			bestCount++
		}
	}
	assert.Equal(t, 1, bestCount)
	// All day loads tie at zero, so the earliest slot wins.
	assert.True(t, candidates[0].IsBest)
}

func TestSuggestBestPrefersLowestDayLoad(t *testing.T) {
	// 60 busy minutes on every day except Thursday the 5th (30 min).
	days := &fakeDayLoads{instances: map[string][]models.CalendarEventInstance{}}
	for d := 3; d <= 9; d++ {
		load := 60
		if d == 5 {
			load = 30
		}
		date := day(2026, time.March, d)
		days.instances[date.Format("2006-01-02")] = []models.CalendarEventInstance{
			committedInstance("uid-"+date.Format("02"), "teacher-1", nil,
				date.Add(minutes(6*60)), date.Add(minutes(6*60+load))),
		}
	}
	// The busy interval sits at 06:00, outside the workday, so every slot
	// stays viable and only the load differs.
	svc := newTestReschedule(physicsBatch(), days, &fakeHolidayLister{}, 40)

	candidates, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 21)

	for _, candidate := range candidates {
		if candidate.IsBest {
			assert.Equal(t, day(2026, time.March, 5), candidate.Date)
			assert.Equal(t, at(2026, time.March, 5, 8, 0), candidate.Start)
			assert.Equal(t, 30, candidate.DayLoadMin)
		}
	}
}

func TestSuggestSkipsConflictingSlots(t *testing.T) {
	date := day(2026, time.March, 3)
	days := &fakeDayLoads{instances: map[string][]models.CalendarEventInstance{
		date.Format("2006-01-02"): {
			committedInstance("uid-1", "teacher-1", nil, at(2026, time.March, 3, 8, 0), at(2026, time.March, 3, 9, 30)),
		},
	}}
	svc := newTestReschedule(physicsBatch(), days, &fakeHolidayLister{}, 40)

	candidates, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)

	var onDate []models.RescheduleCandidate
	for _, candidate := range candidates {
		if candidate.Date.Equal(date) {
			onDate = append(onDate, candidate)
		}
	}
	// 08:00 and 09:00 overlap the 08:00-09:30 session; only 10:00 survives.
	require.Len(t, onDate, 1)
	assert.Equal(t, at(2026, time.March, 3, 10, 0), onDate[0].Start)
	assert.Equal(t, 90, onDate[0].DayLoadMin)
}

func TestSuggestSkipsHolidays(t *testing.T) {
	holidays := &fakeHolidayLister{holidays: []models.Holiday{
		{ID: "hol-1", Date: day(2026, time.March, 5), Name: "Nyepi"},
	}}
	svc := newTestReschedule(physicsBatch(), &fakeDayLoads{}, holidays, 40)

	candidates, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 18)
	for _, candidate := range candidates {
		assert.False(t, candidate.Date.Equal(day(2026, time.March, 5)))
	}
}

func TestSuggestDeterministic(t *testing.T) {
	days := &fakeDayLoads{instances: map[string][]models.CalendarEventInstance{
		"2026-03-04": {
			committedInstance("uid-1", "teacher-1", nil, at(2026, time.March, 4, 9, 0), at(2026, time.March, 4, 10, 0)),
		},
	}}
	svc := newTestReschedule(physicsBatch(), days, &fakeHolidayLister{}, 40)

	first, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)
	second, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSuggestCapKeepsBest(t *testing.T) {
	// Give every day a 60-minute load except the last searched day, so the
	// best candidate sits beyond the cap.
	days := &fakeDayLoads{instances: map[string][]models.CalendarEventInstance{}}
	for d := 3; d <= 8; d++ {
		date := day(2026, time.March, d)
		days.instances[date.Format("2006-01-02")] = []models.CalendarEventInstance{
			committedInstance("uid-"+date.Format("02"), "teacher-1", nil,
				date.Add(minutes(6*60)), date.Add(minutes(7*60))),
		}
	}
	svc := newTestReschedule(physicsBatch(), days, &fakeHolidayLister{}, 5)

	candidates, err := svc.Suggest(context.Background(), "batch-1", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 5)

	last := candidates[len(candidates)-1]
	assert.True(t, last.IsBest)
	assert.Equal(t, day(2026, time.March, 9), last.Date)
	for i := 1; i < len(candidates); i++ {
		assert.True(t, !candidates[i].Start.Before(candidates[i-1].Start))
	}
}

func TestSuggestDedupDropsRepeatedStart(t *testing.T) {
	seen := make(map[string]bool)
	candidate := models.RescheduleCandidate{
		BatchID: "batch-1",
		Start:   at(2026, time.March, 3, 8, 0),
	}
	candidates, added := appendCandidate(nil, seen, candidate)
	require.True(t, added)
	require.Len(t, candidates, 1)

	duplicate := candidate
	duplicate.DayLoadMin = 999
	candidates, added = appendCandidate(candidates, seen, duplicate)
	assert.False(t, added)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].DayLoadMin)
}

func TestSuggestValidation(t *testing.T) {
	svc := newTestReschedule(physicsBatch(), &fakeDayLoads{}, &fakeHolidayLister{}, 40)
	svc.batches = &fakeBatchReader{}
	_, err := svc.Suggest(context.Background(), "missing", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	archived := physicsBatch()
	archived.Status = models.BatchStatusArchived
	svc = newTestReschedule(archived, &fakeDayLoads{}, &fakeHolidayLister{}, 40)
	_, err = svc.Suggest(context.Background(), "batch-1", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	noDuration := physicsBatch()
	noDuration.DurationMin = 0
	svc = newTestReschedule(noDuration, &fakeDayLoads{}, &fakeHolidayLister{}, 40)
	_, err = svc.Suggest(context.Background(), "batch-1", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
