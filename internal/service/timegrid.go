package service

import (
	"fmt"
	"time"

	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

const clockLayout = "15:04"

// parseClock converts an "HH:MM" wall-clock string into minutes since
// midnight. Rules, overrides, sessions and blocks all store times this way.
func parseClock(raw string) (int, error) {
	t, err := time.Parse(clockLayout, raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrMalformedRange.Code, appErrors.ErrMalformedRange.Status, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// clockOnDate anchors an "HH:MM" string onto a UTC calendar date.
func clockOnDate(date time.Time, clock string) (time.Time, error) {
	minutes, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return dateOnly(date).Add(time.Duration(minutes) * time.Minute), nil
}

// formatClock renders a timestamp back to "HH:MM".
func formatClock(t time.Time) string {
	return t.UTC().Format(clockLayout)
}

// dateOnly truncates a timestamp to midnight UTC.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// snapMinutes quantizes a raw minute delta onto the grid. Integer division
// truncates toward zero, so +47 on a 30-minute grid snaps to +30 and -47
// snaps to -30.
func snapMinutes(delta, grid int) int {
	if grid <= 0 {
		return delta
	}
	return (delta / grid) * grid
}

// sameDate reports whether two timestamps fall on the same UTC day.
func sameDate(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}

// minutes converts a stored minute count into a duration.
func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
