package arrivals

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidInput is returned for a zero instant, a non-finite minute count or a
	// malformed "HH:MM" string.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNegativeOffset is returned when a minute offset is below zero.
	ErrNegativeOffset = errors.New("minute offset out of range")

	// ErrOffsetOutOfRange is returned when a minute offset is too large to place on
	// the calendar.
	ErrOffsetOutOfRange = errors.New("minute offset too large")
)

// MaxOffsetMinutes bounds AddMinutesAndFormat, a little over 270,000 years.
const MaxOffsetMinutes = 1.44e11

// maxStep is the largest whole number of minutes a time.Duration can hold.
var maxStep = float64(math.MaxInt64 / int64(time.Minute))

// Clock is a civil wall-clock time with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:MM" string (24-hour).
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("clock %q: %w", s, ErrInvalidInput)
	}
	if !digits(hh) || len(hh) > 2 || !digits(mm) || len(mm) != 2 {
		return Clock{}, fmt.Errorf("clock %q: %w", s, ErrInvalidInput)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h > 23 {
		return Clock{}, fmt.Errorf("clock %q: bad hour: %w", s, ErrInvalidInput)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return Clock{}, fmt.Errorf("clock %q: bad minute: %w", s, ErrInvalidInput)
	}
	return Clock{Hour: h, Minute: m}, nil
}

// MustParseClock is ParseClock for compile-time constants.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as zero-padded "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On anchors the clock to ref's calendar date in ref's location.
func (c Clock) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), c.Hour, c.Minute, 0, 0, ref.Location())
}

// After anchors the clock to now's date and rolls it forward one day when the result
// falls strictly before now.
func (c Clock) After(now time.Time) time.Time {
	t := c.On(now)
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// FormatClock renders t as "HH:MM" in t's location.
func FormatClock(t time.Time) (string, error) {
	if t.IsZero() {
		return "", fmt.Errorf("format clock: zero time: %w", ErrInvalidInput)
	}
	return formatHHMM(t), nil
}

// AddMinutesAndFormat adds minutes to base and renders the result as "HH:MM".
// Only the wall-clock part is kept, so offsets past midnight wrap.
func AddMinutesAndFormat(base time.Time, minutes float64) (string, error) {
	if base.IsZero() {
		return "", fmt.Errorf("add minutes: zero base time: %w", ErrInvalidInput)
	}
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "", fmt.Errorf("add minutes: %v is not a finite number: %w", minutes, ErrInvalidInput)
	}
	if minutes < 0 {
		return "", fmt.Errorf("add minutes: %v: %w", minutes, ErrNegativeOffset)
	}
	if minutes > MaxOffsetMinutes {
		return "", fmt.Errorf("add minutes: %v: %w", minutes, ErrOffsetOutOfRange)
	}

	// A time.Duration tops out near 292 years, so walk larger offsets in steps.
	t := base
	for minutes > maxStep {
		t = t.Add(time.Duration(maxStep) * time.Minute)
		minutes -= maxStep
	}
	return formatHHMM(t.Add(time.Duration(minutes * float64(time.Minute)))), nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatHHMM(t time.Time) string {
	return t.Format("15:04")
}
