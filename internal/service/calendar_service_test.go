package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/bimbel-adp-api/internal/models"
)

func newTestCalendar(source *fakeWindowSource, repo *memoryCacheRepo) *CalendarService {
	var cache *CacheService
	if repo != nil {
		cache = NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewCalendarService(source, cache, time.Minute, zap.NewNop())
}

func TestCalendarViewMaterializesWindow(t *testing.T) {
	inst := boardInstance()
	source := &fakeWindowSource{
		instances: []models.CalendarEventInstance{inst},
		blocks:    []models.TimeBlock{boardBlock()},
	}
	svc := newTestCalendar(source, nil)

	view, cached, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "teacher-1", view.TeacherID)
	assert.Equal(t, twoWeekWindow().From, view.From)
	require.Len(t, view.Events, 1)
	assert.Equal(t, inst.UID, view.Events[0].UID)
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, "block-1", view.Blocks[0].ID)
}

func TestCalendarViewNormalizesEmptyWindow(t *testing.T) {
	svc := newTestCalendar(&fakeWindowSource{}, nil)

	view, _, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())

	require.NoError(t, err)
	assert.NotNil(t, view.Events)
	assert.Empty(t, view.Events)
	assert.NotNil(t, view.Blocks)
	assert.Empty(t, view.Blocks)
}

func TestCalendarViewServedFromCache(t *testing.T) {
	source := &fakeWindowSource{instances: []models.CalendarEventInstance{boardInstance()}}
	svc := newTestCalendar(source, newMemoryCacheRepo())

	first, cached, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())
	require.NoError(t, err)
	require.False(t, cached)

	second, cached, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls)
}

func TestCalendarViewBatchFilterBypassesCache(t *testing.T) {
	other := boardInstance()
	other.BatchID = "batch-2"
	other.Start = at(2026, time.March, 4, 9, 0)
	other.End = at(2026, time.March, 4, 10, 0)
	other.UID = models.InstanceUID(nil, "batch-2", other.Start)
	source := &fakeWindowSource{instances: []models.CalendarEventInstance{boardInstance(), other}}
	svc := newTestCalendar(source, newMemoryCacheRepo())

	view, cached, err := svc.View(context.Background(), "teacher-1", "batch-2", twoWeekWindow())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, view.Events, 1)
	assert.Equal(t, "batch-2", view.Events[0].BatchID)

	// filtered views never cache, a repeat query materializes again
	_, cached, err = svc.View(context.Background(), "teacher-1", "batch-2", twoWeekWindow())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, source.calls)

	// and the unfiltered view was not poisoned by the filtered one
	full, cached, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, full.Events, 2)
}

func TestCalendarViewAllTeachersNotCached(t *testing.T) {
	source := &fakeWindowSource{instances: []models.CalendarEventInstance{boardInstance()}}
	svc := newTestCalendar(source, newMemoryCacheRepo())

	_, cached, err := svc.View(context.Background(), "", "", twoWeekWindow())
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.View(context.Background(), "", "", twoWeekWindow())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, source.calls)
}

func TestCalendarInvalidateDropsTeacherViews(t *testing.T) {
	source := &fakeWindowSource{instances: []models.CalendarEventInstance{boardInstance()}}
	svc := newTestCalendar(source, newMemoryCacheRepo())

	_, _, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())
	require.NoError(t, err)

	svc.Invalidate(context.Background(), "teacher-1")

	_, cached, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, source.calls)
}

func TestCalendarViewSourceFailure(t *testing.T) {
	source := &fakeWindowSource{err: errors.New("window load failed")}
	svc := newTestCalendar(source, newMemoryCacheRepo())

	_, _, err := svc.View(context.Background(), "teacher-1", "", twoWeekWindow())

	require.Error(t, err)
}
