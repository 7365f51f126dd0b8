// Package timeutil provides the timestamp formats used on the wire and in logs.
package timeutil

import (
	"errors"
	"strings"
	"time"
)

// RFC3339Millis is RFC 3339 UTC with fixed millisecond precision. API
// responses use this layout.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision. Log
// timestamps use this layout.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// DateOnly is the calendar-date layout accepted for entry dates.
const DateOnly = time.DateOnly

// ErrInvalidDate is returned by ParseDate for values in neither accepted layout.
var ErrInvalidDate = errors.New("invalid date")

// Time renders as RFC 3339 UTC with millisecond precision,
// e.g. "2024-01-15T10:30:00.000Z". Unmarshaling JSON null leaves the value
// untouched.
type Time struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(RFC3339Millis) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler and accepts the same inputs as
// ParseDate.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseDate parses a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp and
// returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range []string{time.RFC3339Nano, DateOnly} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// NewTime wraps a time.Time.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// NewTimePtr wraps an optional time.Time; nil stays nil.
func NewTimePtr(t *time.Time) *Time {
	if t == nil {
		return nil
	}
	v := NewTime(*t)
	return &v
}

// Now returns the current time.
func Now() Time {
	return Time{Time: time.Now()}
}
