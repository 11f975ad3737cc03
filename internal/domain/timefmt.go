package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalLayout is the wall-clock timestamp format used by the salon API.
const LocalLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar date format used in query strings.
const DateLayout = "2006-01-02"

var localLayouts = []string{
	LocalLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// LocalDateTime is a zone-less timestamp. The wall clock is kept in UTC so two
// values compare by wall clock alone.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime returns the wall clock of t as a LocalDateTime.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: WallClock(t)}
}

// WallClock drops the zone of t, keeping its year-to-nanosecond fields.
func WallClock(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ParseLocalDateTime accepts the salon API layouts as well as RFC 3339.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalDateTime{Time: t}, nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewLocalDateTime(t), nil
	}
	return LocalDateTime{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = LocalDateTime{}
		return nil
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(LocalLayout))
}

// Date returns the calendar date in DateLayout.
func (t LocalDateTime) Date() string {
	return t.Format(DateLayout)
}

// Clock returns the time of day as HH:MM.
func (t LocalDateTime) Clock() string {
	return t.Format("15:04")
}

// ParseDate validates a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return d, nil
}
