package workweek

import (
	"testing"
	"time"

	"worklog/internal/models"
)

func fixed(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		day        string
		wantMonday string
		wantFriday string
	}{
		{"2026-10-12", "2026-10-12", "2026-10-16"},
		{"2026-10-14", "2026-10-12", "2026-10-16"},
		{"2026-10-16", "2026-10-12", "2026-10-16"},
		{"2026-10-17", "2026-10-12", "2026-10-16"},
		{"2026-10-18", "2026-10-12", "2026-10-16"},
		{"2026-12-31", "2026-12-28", "2027-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			mon, fri := WeekOf(models.MustParseDate(tt.day))
			if mon.String() != tt.wantMonday || fri.String() != tt.wantFriday {
				t.Errorf("WeekOf(%s) = %s..%s, want %s..%s", tt.day, mon, fri, tt.wantMonday, tt.wantFriday)
			}
		})
	}
}

func TestSubmissionOpen(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"monday", time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC), true},
		{"friday_late", time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC), true},
		{"saturday", time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC), false},
		{"sunday", time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := New(time.UTC).WithClock(fixed(tt.now))
			if got := cal.SubmissionOpen(); got != tt.want {
				t.Errorf("SubmissionOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalendarUsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	// Friday 20:00 UTC is already Saturday 03:00 at UTC+7.
	cal := New(loc).WithClock(fixed(time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)))

	if got := cal.Today().String(); got != "2026-10-17" {
		t.Errorf("Today() = %s, want 2026-10-17", got)
	}
	if cal.SubmissionOpen() {
		t.Error("expected submission window to be closed on local Saturday")
	}
}

func TestInCurrentWeek(t *testing.T) {
	cal := New(time.UTC).WithClock(fixed(time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)))

	cases := map[string]bool{
		"2026-10-11": false,
		"2026-10-12": true,
		"2026-10-16": true,
		"2026-10-17": false,
	}
	for day, want := range cases {
		if got := cal.InCurrentWeek(models.MustParseDate(day)); got != want {
			t.Errorf("InCurrentWeek(%s) = %v, want %v", day, got, want)
		}
	}
}

func TestSameWeek(t *testing.T) {
	if !SameWeek(models.MustParseDate("2026-10-12"), models.MustParseDate("2026-10-16")) {
		t.Error("expected Monday and Friday to share a week")
	}
	if SameWeek(models.MustParseDate("2026-10-16"), models.MustParseDate("2026-10-19")) {
		t.Error("expected Friday and next Monday to be different weeks")
	}
}
