package dto

import (
	"time"

	appErrors "github.com/noah-isme/bimbel-adp-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrMalformedRange.Code, appErrors.ErrMalformedRange.Status, "invalid date, expected YYYY-MM-DD")
	}
	return t.UTC(), nil
}

// ParseWindow parses a half-open [from, to) date range and rejects empty or
// inverted ranges.
func ParseWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from, err := ParseDate(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate(toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrMalformedRange, "window end must be after start")
	}
	return from, to, nil
}

// FormatDate renders a time as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
