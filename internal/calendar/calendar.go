package calendar

import (
	"time"
)

// Schedule describes a weekly working pattern: the days worked, the daily
// working window and an excluded lunch break. Clock values are offsets from
// local midnight in Location.
type Schedule struct {
	Days       [7]bool // indexed by time.Weekday
	Start      time.Duration
	End        time.Duration
	LunchStart time.Duration
	LunchEnd   time.Duration
	Location   *time.Location
}

// interval is a half-open working interval [from, to).
type interval struct {
	from time.Time
	to   time.Time
}

// NewSchedule builds a schedule for the given weekdays.
func NewSchedule(days []time.Weekday, start, end, lunchStart, lunchEnd time.Duration, loc *time.Location) Schedule {
	s := Schedule{
		Start:      start,
		End:        end,
		LunchStart: lunchStart,
		LunchEnd:   lunchEnd,
		Location:   loc,
	}
	for _, d := range days {
		s.Days[d] = true
	}
	return s
}

// WithDays returns a copy of s working only the given weekdays.
func (s Schedule) WithDays(days []time.Weekday) Schedule {
	s.Days = [7]bool{}
	for _, d := range days {
		s.Days[d] = true
	}
	return s
}

func (s Schedule) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// DailyWorkingTime is the working time of one full working day.
func (s Schedule) DailyWorkingTime() time.Duration {
	if s.End <= s.Start {
		return 0
	}
	total := s.End - s.Start
	lunchStart := max(s.LunchStart, s.Start)
	lunchEnd := min(s.LunchEnd, s.End)
	if lunchEnd > lunchStart {
		total -= lunchEnd - lunchStart
	}
	return total
}

func (s Schedule) weeklyWorkingTime() time.Duration {
	var total time.Duration
	for _, worked := range s.Days {
		if worked {
			total += s.DailyWorkingTime()
		}
	}
	return total
}

// intervals returns the working intervals of the day starting at midnight.
func (s Schedule) intervals(midnight time.Time) []interval {
	if !s.Days[midnight.Weekday()] || s.End <= s.Start {
		return nil
	}
	at := func(offset time.Duration) time.Time {
		// time.Date normalises the seconds overflow against the wall clock,
		// so DST transitions land on the intended local time.
		return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 0, 0, int(offset/time.Second), 0, midnight.Location())
	}

	lunchStart := max(s.LunchStart, s.Start)
	lunchEnd := min(s.LunchEnd, s.End)
	if lunchEnd <= lunchStart {
		return []interval{{at(s.Start), at(s.End)}}
	}
	var out []interval
	if lunchStart > s.Start {
		out = append(out, interval{at(s.Start), at(lunchStart)})
	}
	if s.End > lunchEnd {
		out = append(out, interval{at(lunchEnd), at(s.End)})
	}
	return out
}

func (s Schedule) midnight(t time.Time) time.Time {
	t = t.In(s.location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Elapsed returns the working time between start and end. A range with end
// at or before start has no working time and returns zero.
func (s Schedule) Elapsed(start, end time.Time) time.Duration {
	if !end.After(start) {
		return 0
	}

	var total time.Duration
	for day := s.midnight(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		for _, iv := range s.intervals(day) {
			from := latest(iv.from, start)
			to := earliest(iv.to, end)
			if to.After(from) {
				total += to.Sub(from)
			}
		}
	}
	return total
}

// Add returns the instant at which budget working time has elapsed after
// start. A schedule without any working time falls back to wall-clock time.
func (s Schedule) Add(start time.Time, budget time.Duration) time.Time {
	if budget <= 0 {
		return start
	}
	if s.weeklyWorkingTime() <= 0 {
		return start.Add(budget)
	}

	remaining := budget
	for day := s.midnight(start); ; day = day.AddDate(0, 0, 1) {
		for _, iv := range s.intervals(day) {
			from := latest(iv.from, start)
			if !iv.to.After(from) {
				continue
			}
			available := iv.to.Sub(from)
			if remaining <= available {
				return from.Add(remaining)
			}
			remaining -= available
		}
	}
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Calendars maps reviewer logins to their schedules, falling back to a
// default for reviewers without an override.
type Calendars struct {
	Default   Schedule
	overrides map[string]Schedule
}

func NewCalendars(def Schedule) *Calendars {
	return &Calendars{Default: def, overrides: make(map[string]Schedule)}
}

// Override registers a schedule for a single reviewer.
func (c *Calendars) Override(login string, s Schedule) {
	c.overrides[login] = s
}

// For returns the schedule that applies to login.
func (c *Calendars) For(login string) Schedule {
	if c == nil {
		return Schedule{}
	}
	if s, ok := c.overrides[login]; ok {
		return s
	}
	return c.Default
}

// Elapsed is the working time between start and end for login.
func (c *Calendars) Elapsed(start, end time.Time, login string) time.Duration {
	return c.For(login).Elapsed(start, end)
}
