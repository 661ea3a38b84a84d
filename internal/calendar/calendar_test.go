package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func officeHours(loc *time.Location) Schedule {
	return NewSchedule(weekdays, clock(9, 0), clock(17, 30), clock(12, 30), clock(13, 30), loc)
}

func clock(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// 2024-01-15 is a Monday.
func at(day, h, m int) time.Time {
	return time.Date(2024, time.January, day, h, m, 0, 0, time.UTC)
}

func TestElapsed_ZeroLengthRange(t *testing.T) {
	s := officeHours(time.UTC)
	for _, ts := range []time.Time{at(15, 10, 0), at(13, 3, 0), at(15, 12, 45)} {
		assert.Equal(t, time.Duration(0), s.Elapsed(ts, ts))
	}
}

func TestElapsed_FullWorkingDay(t *testing.T) {
	s := officeHours(time.UTC)
	assert.Equal(t, 7*time.Hour+30*time.Minute, s.Elapsed(at(15, 9, 0), at(15, 17, 30)))
	assert.Equal(t, 7*time.Hour+30*time.Minute, s.Elapsed(at(15, 0, 0), at(16, 0, 0)))
	assert.Equal(t, s.DailyWorkingTime(), s.Elapsed(at(15, 0, 0), at(16, 0, 0)))
}

func TestElapsed(t *testing.T) {
	s := officeHours(time.UTC)
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  time.Duration
	}{
		{"morning only", at(15, 10, 0), at(15, 12, 0), 2 * time.Hour},
		{"across lunch", at(15, 12, 0), at(15, 14, 0), time.Hour},
		{"inside lunch", at(15, 12, 40), at(15, 13, 20), 0},
		{"evening", at(15, 18, 0), at(15, 23, 0), 0},
		{"overnight", at(15, 17, 0), at(16, 10, 0), 90 * time.Minute},
		{"over the weekend", at(19, 17, 0), at(22, 9, 30), time.Hour},
		{"whole weekend", at(20, 0, 0), at(22, 0, 0), 0},
		{"full week", at(15, 0, 0), at(22, 0, 0), 5 * (7*time.Hour + 30*time.Minute)},
		{"day one to day two", at(15, 10, 0), at(16, 16, 0), 12*time.Hour + 30*time.Minute},
		{"reversed range", at(16, 10, 0), at(15, 10, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Elapsed(tt.start, tt.end))
		})
	}
}

func TestElapsed_UsesScheduleLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	s := officeHours(loc)

	// 14:00-16:00 UTC is 09:00-11:00 in New York in January.
	assert.Equal(t, 2*time.Hour, s.Elapsed(at(15, 14, 0), at(15, 16, 0)))
}

func TestElapsed_DaylightSavingChange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	s := officeHours(loc)

	// Clocks go forward on Sunday 2024-03-31; Monday is still a full day.
	start := time.Date(2024, time.March, 29, 17, 0, 0, 0, loc)
	end := time.Date(2024, time.April, 1, 17, 30, 0, 0, loc)
	assert.Equal(t, 8*time.Hour, s.Elapsed(start, end))
}

func TestAdd(t *testing.T) {
	s := officeHours(time.UTC)
	tests := []struct {
		name   string
		start  time.Time
		budget time.Duration
		want   time.Time
	}{
		{"before lunch", at(15, 9, 0), 2 * time.Hour, at(15, 11, 0)},
		{"skips lunch", at(15, 10, 0), 3*time.Hour + 30*time.Minute, at(15, 14, 30)},
		{"from outside hours", at(15, 20, 0), time.Hour, at(16, 10, 0)},
		{"from friday evening", at(19, 17, 0), 3*time.Hour + 30*time.Minute, at(22, 12, 0)},
		{"requested at weekend", at(20, 11, 0), 30 * time.Minute, at(22, 9, 30)},
		{"zero budget", at(15, 20, 0), 0, at(15, 20, 0)},
		{"ends exactly at lunch", at(15, 9, 0), 3*time.Hour + 30*time.Minute, at(15, 12, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(s.Add(tt.start, tt.budget)), "got %v want %v", s.Add(tt.start, tt.budget), tt.want)
		})
	}
}

func TestAdd_ElapsedRoundTrip(t *testing.T) {
	s := officeHours(time.UTC)
	start := at(17, 15, 12)
	for _, budget := range []time.Duration{time.Minute, 3 * time.Hour, 11 * time.Hour, 40 * time.Hour} {
		assert.Equal(t, budget, s.Elapsed(start, s.Add(start, budget)))
	}
}

func TestAdd_NoWorkingDaysFallsBackToWallClock(t *testing.T) {
	s := NewSchedule(nil, clock(9, 0), clock(17, 0), 0, 0, time.UTC)
	assert.True(t, at(15, 13, 0).Equal(s.Add(at(15, 10, 0), 3*time.Hour)))
	assert.Equal(t, time.Duration(0), s.Elapsed(at(15, 10, 0), at(16, 10, 0)))
}

func TestCalendars_Override(t *testing.T) {
	def := officeHours(time.UTC)
	cals := NewCalendars(def)
	cals.Override("part-timer", def.WithDays([]time.Weekday{time.Wednesday, time.Thursday, time.Friday}))

	monday := at(15, 0, 0)
	tuesday := at(16, 0, 0)
	assert.Equal(t, 7*time.Hour+30*time.Minute, cals.Elapsed(monday, tuesday, "someone"))
	assert.Equal(t, time.Duration(0), cals.Elapsed(monday, tuesday, "part-timer"))
	assert.Equal(t, def, cals.For("unknown"))
}
