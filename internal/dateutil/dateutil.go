// Package dateutil formats and resolves article dates in German.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidMonth indicates a month value that is neither YYYY-MM nor an
// auto expression.
var ErrInvalidMonth = errors.New("invalid month")

// MonthLayout is the Go layout of dataset month keys.
const MonthLayout = "2006-01"

var monthNames = [12]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// dateLayouts are tried in order when parsing frontmatter dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MonthName returns the German name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// LongDate formats t as "2. Dezember 2025".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d. %s %d", t.Day(), MonthName(t.Month()), t.Year())
}

// FormatLongDate parses an ISO-8601 date and formats it with LongDate in
// the date's own offset. Values that do not parse are returned unchanged.
func FormatLongDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return LongDate(t)
		}
	}
	return value
}

// MonthYear formats a YYYY-MM month key as "Oktober 2025".
func MonthYear(month string) (string, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return MonthName(t.Month()) + " " + t.Format("2006"), nil
}

// ResolveMonth handles "auto" and "auto:prev" month values.
//   - "auto" → the month of t
//   - "auto:prev" → the month before t
//   - YYYY-MM → returned unchanged
//
// The time parameter allows injecting a fixed time for testing.
func ResolveMonth(value string, t time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto":
		return t.Format(MonthLayout), nil
	case "auto:prev":
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return first.AddDate(0, -1, 0).Format(MonthLayout), nil
	}

	if _, err := time.Parse(MonthLayout, value); err != nil {
		return "", fmt.Errorf("%w: %q, use YYYY-MM, \"auto\" or \"auto:prev\"", ErrInvalidMonth, value)
	}
	return value, nil
}
