package slots

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateDefaultWindow(t *testing.T) {
	got := Generate(DefaultWindow())
	want := []string{"09:00", "10:30", "12:00", "13:30", "15:00", "16:30", "18:00", "19:30", "21:00"}

	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d (%v)", len(want), len(got), got)
	}
	for i, slot := range got {
		if slot.String() != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], slot)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate(DefaultWindow())
	second := Generate(DefaultWindow())
	if len(first) != len(second) {
		t.Fatalf("expected identical lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d differs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestGenerateStopsWhenStartReachesClose(t *testing.T) {
	window := Window{Open: TimeOfDay(9 * 60), Close: TimeOfDay(12 * 60), Duration: time.Hour}
	got := Generate(window)
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %v", got)
	}
	if got[len(got)-1].String() != "11:00" {
		t.Fatalf("expected last slot 11:00, got %s", got[len(got)-1])
	}
}

func TestGenerateInvalidWindow(t *testing.T) {
	tests := []struct {
		name   string
		window Window
	}{
		{"zero duration", Window{Open: DefaultOpen, Close: DefaultClose}},
		{"open after close", Window{Open: DefaultClose, Close: DefaultOpen, Duration: time.Hour}},
		{"sub-minute duration", Window{Open: DefaultOpen, Close: DefaultClose, Duration: 90 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.window.Validate(); !errors.Is(err, ErrInvalidWindow) {
				t.Fatalf("expected ErrInvalidWindow, got %v", err)
			}
			if got := Generate(tt.window); got != nil {
				t.Fatalf("expected no slots, got %v", got)
			}
		})
	}
}

func TestOnGrid(t *testing.T) {
	window := DefaultWindow()
	tests := []struct {
		value string
		want  bool
	}{
		{"09:00", true},
		{"10:30", true},
		{"21:00", true},
		{"10:00", false},
		{"08:00", false},
		{"22:30", false},
		{"07:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			tod, err := ParseTimeOfDay(tt.value)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.value, err)
			}
			if got := window.OnGrid(tod); got != tt.want {
				t.Fatalf("OnGrid(%s) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"10:30", "10:30", false},
		{" 09:00 ", "09:00", false},
		{"13:30:00", "13:30", false},
		{"13:30:15", "", true},
		{"9:00", "", true},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeOfDay) {
					t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2024-06-10")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	if day.String() != "2024-06-10" {
		t.Fatalf("expected 2024-06-10, got %s", day)
	}

	for _, bad := range []string{"", "2024-6-10", "2024-02-30", "10/06/2024"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("ParseDay(%q): expected ErrInvalidDay, got %v", bad, err)
		}
	}
}

func TestDayAtAndBounds(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	day, _ := ParseDay("2024-06-10")
	slot, _ := ParseTimeOfDay("10:30")

	at := day.At(slot, loc)
	want := time.Date(2024, time.June, 10, 10, 30, 0, 0, loc)
	if !at.Equal(want) {
		t.Fatalf("expected %v, got %v", want, at)
	}

	start, end := day.Bounds(loc)
	if !start.Equal(time.Date(2024, time.June, 10, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected day start %v", start)
	}
	if !end.Equal(time.Date(2024, time.June, 11, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected day end %v", end)
	}
}

func TestAddDaysRollsOverMonthAndYear(t *testing.T) {
	day, _ := ParseDay("2024-12-31")
	if got := day.AddDays(1).String(); got != "2025-01-01" {
		t.Fatalf("expected 2025-01-01, got %s", got)
	}
	day, _ = ParseDay("2024-03-01")
	if got := day.AddDays(-1).String(); got != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", got)
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2024-06-10", "2024-06-10"}, // Monday
		{"2024-06-12", "2024-06-10"},
		{"2024-06-16", "2024-06-10"}, // Sunday
		{"2024-09-01", "2024-08-26"},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			day, err := ParseDay(tt.day)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := day.StartOfWeek().String(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
