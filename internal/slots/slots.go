// Package slots generates the daily grid of bookable court slots.
package slots

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dayLayout = "2006-01-02"

	DefaultDuration = 90 * time.Minute
)

var (
	DefaultOpen  = TimeOfDay(9 * 60)
	DefaultClose = TimeOfDay(22 * 60)
)

var (
	ErrInvalidTimeOfDay = errors.New("time of day must be HH:MM")
	ErrInvalidDay       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidWindow    = errors.New("invalid operating window")
)

// TimeOfDay is a wall-clock offset from midnight in whole minutes.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS" with zero seconds.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidTimeOfDay
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidTimeOfDay
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, ErrInvalidTimeOfDay
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, ErrInvalidTimeOfDay
	}
	if len(parts) == 3 && parts[2] != "00" {
		return 0, ErrInvalidTimeOfDay
	}
	return TimeOfDay(hour*60 + minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window is the daily operating window shared by every court.
type Window struct {
	Open     TimeOfDay
	Close    TimeOfDay
	Duration time.Duration
}

// DefaultWindow returns the 09:00-22:00 window with 90 minute slots.
func DefaultWindow() Window {
	return Window{Open: DefaultOpen, Close: DefaultClose, Duration: DefaultDuration}
}

func (w Window) Validate() error {
	switch {
	case w.Duration < time.Minute:
		return fmt.Errorf("%w: slot duration must be at least one minute", ErrInvalidWindow)
	case w.Duration%time.Minute != 0:
		return fmt.Errorf("%w: slot duration must be whole minutes", ErrInvalidWindow)
	case w.Open < 0 || w.Close > 24*60:
		return fmt.Errorf("%w: open and close must fall within the day", ErrInvalidWindow)
	case w.Open >= w.Close:
		return fmt.Errorf("%w: open %s must be before close %s", ErrInvalidWindow, w.Open, w.Close)
	}
	return nil
}

// Generate returns the slot starts for a day. A slot is produced while its
// start is strictly before Close, so the last slot may run past Close.
func Generate(w Window) []TimeOfDay {
	if w.Validate() != nil {
		return nil
	}
	step := TimeOfDay(w.Duration / time.Minute)
	starts := make([]TimeOfDay, 0, int(w.Close-w.Open)/int(step)+1)
	for start := w.Open; start < w.Close; start += step {
		starts = append(starts, start)
	}
	return starts
}

// OnGrid reports whether t is one of the generated slot starts.
func (w Window) OnGrid(t TimeOfDay) bool {
	if w.Validate() != nil || t < w.Open || t >= w.Close {
		return false
	}
	step := int(w.Duration / time.Minute)
	return int(t-w.Open)%step == 0
}

// Day is a calendar date without a time of day.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

func ParseDay(value string) (Day, error) {
	parsed, err := time.Parse(dayLayout, strings.TrimSpace(value))
	if err != nil {
		return Day{}, ErrInvalidDay
	}
	return DayOf(parsed), nil
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	year, month, dom := t.Date()
	return Day{Year: year, Month: month, Dom: dom}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Dom)
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Start is local midnight of the day.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

// At combines the day and a time of day into a wall-clock instant in loc.
func (d Day) At(t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Dom, t.Hour(), t.Minute(), 0, 0, loc)
}

// AddDays normalizes through time.Date so month and year rollover apply.
func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Dom+n, 12, 0, 0, 0, time.UTC))
}

// Bounds returns the half-open interval [midnight, next midnight).
func (d Day) Bounds(loc *time.Location) (time.Time, time.Time) {
	return d.Start(loc), d.AddDays(1).Start(loc)
}

// StartOfWeek returns the Monday on or before d.
func (d Day) StartOfWeek() Day {
	weekday := time.Date(d.Year, d.Month, d.Dom, 12, 0, 0, 0, time.UTC).Weekday()
	offset := (int(weekday) + 6) % 7
	return d.AddDays(-offset)
}
