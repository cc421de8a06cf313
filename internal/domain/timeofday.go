package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time within one day, stored as minutes since midnight.
type TimeOfDay struct {
	minutes int
	set     bool
}

// NewTimeOfDay constructs a time from hour and minute components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	return TimeOfDay{minutes: hour*60 + minute, set: true}, nil
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS". Seconds are accepted and dropped.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TimeOfDay{}, ErrInvalidTimeOfDay
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	values := make([]int, len(parts))
	for i, part := range parts {
		if len(part) == 0 || len(part) > 2 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
		}
		values[i] = v
	}
	if len(values) == 3 && (values[2] < 0 || values[2] > 59) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	t, err := NewTimeOfDay(values[0], values[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	return t, nil
}

// MustTimeOfDay parses raw and panics on failure. Intended for fixtures.
func MustTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// IsZero reports whether the time was never set.
func (t TimeOfDay) IsZero() bool {
	return !t.set
}

// Hour returns the hour, 0-23.
func (t TimeOfDay) Hour() int {
	return t.minutes / 60
}

// Minute returns the minute within the hour.
func (t TimeOfDay) Minute() int {
	return t.minutes % 60
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.minutes
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes < other.minutes
}

// String renders "HH:MM", or "" when unset.
func (t TimeOfDay) String() string {
	if !t.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON encodes "HH:MM", or "" when unset.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte(`""`), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM", "HH:MM:SS" or "".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, string(data))
	}
	if strings.TrimSpace(raw) == "" {
		*t = TimeOfDay{}
		return nil
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
