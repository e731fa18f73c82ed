// Package workweek answers calendar questions in the company timezone:
// what today is, which Monday–Friday week it belongs to and whether reports
// may be submitted right now.
package workweek

import (
	"time"

	"worklog/internal/models"
)

// Calendar is safe for concurrent use.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New returns a calendar for loc using the wall clock.
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock returns a copy of c that reads the time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location returns the calendar's timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the calendar's timezone.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar date.
func (c *Calendar) Today() models.Date {
	return models.DateOf(c.Now())
}

// CurrentWeek returns Monday and Friday of the week containing today.
func (c *Calendar) CurrentWeek() (models.Date, models.Date) {
	return WeekOf(c.Today())
}

// SubmissionOpen reports whether today is a weekday.
func (c *Calendar) SubmissionOpen() bool {
	return IsWorkday(c.Today())
}

// InCurrentWeek reports whether d falls on Monday..Friday of the current week.
func (c *Calendar) InCurrentWeek(d models.Date) bool {
	mon, fri := c.CurrentWeek()
	return d.Between(mon, fri)
}

// WeekOf returns Monday and Friday of the week containing d. Saturday and
// Sunday belong to the week that started on the preceding Monday.
func WeekOf(d models.Date) (models.Date, models.Date) {
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDays(-offset)
	return monday, monday.AddDays(4)
}

// SameWeek reports whether a and b belong to the same Monday-based week.
func SameWeek(a, b models.Date) bool {
	ma, _ := WeekOf(a)
	mb, _ := WeekOf(b)
	return ma.Equal(mb)
}

// IsWorkday reports whether d is Monday through Friday.
func IsWorkday(d models.Date) bool {
	wd := d.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}
