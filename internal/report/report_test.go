package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reillywatson/reviewturnaround/internal/calendar"
	"github.com/reillywatson/reviewturnaround/internal/review"
	"github.com/reillywatson/reviewturnaround/internal/stats"
)

const target = 3*time.Hour + 30*time.Minute

func at(day, h, m int) time.Time {
	return time.Date(2024, time.January, day, h, m, 0, 0, time.UTC)
}

func fixture() []stats.Reviewer {
	schedule := calendar.NewSchedule(
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		9*time.Hour, 17*time.Hour+30*time.Minute,
		12*time.Hour+30*time.Minute, 13*time.Hour+30*time.Minute,
		time.UTC,
	)
	response := at(15, 12, 0)
	return []stats.Reviewer{{
		Login: "bob",
		Name:  "Bob",
		Group: "backend",
		Obligations: []review.Obligation{
			{
				Index: 1, Reviewer: "bob", PullRequest: "Add search", Repository: "SearchService", Author: "alice",
				Request: at(15, 10, 0), Response: &response, State: "APPROVED", Resolved: at(16, 16, 0), Closure: review.ClosureMerged,
				Due: at(15, 13, 30), Status: review.StatusOnTime, Target: target, Schedule: schedule,
			},
			{
				Index: 2, Reviewer: "bob", PullRequest: "Add search", Repository: "SearchService", Author: "alice",
				Request: at(15, 10, 0), Resolved: at(15, 10, 5), Closure: review.ClosureClosed,
				Due: at(15, 14, 30), Status: review.StatusNoResponse, Target: target, Schedule: schedule,
			},
		},
	}}
}

func TestWriteObligations(t *testing.T) {
	reviewers := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteObligations(&buf, NewLayout(reviewers, time.UTC), reviewers))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"Review 1 by bob on 'Add search' in SearchService by alice requested on 2024-01-15T10:00:00Z"+
			" actioned on 2024-01-15T12:00:00Z as APPROVED took 2h0m0s"+
			" and the request was merged at 2024-01-16T16:00:00Z and was     expected",
		lines[0])
	assert.Contains(t, lines[1], "actioned on N/A ")
	assert.Contains(t, lines[1], "as N/A      took N/A    and")
	assert.Contains(t, lines[1], "the request was closed at 2024-01-15T10:05:00Z")
	assert.Contains(t, lines[1], "was not expected")
	assert.Len(t, lines[1], len(lines[0]))
}

func TestWriteSummary(t *testing.T) {
	reviewers := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, NewLayout(reviewers, time.UTC), reviewers))

	assert.Equal(t,
		"Bob reviewed 1/2 ( 50%), with 1/1 (100%) hitting target, in on average 2h0m0s"+
			" (median 2h0m0s); 100% on time (on_time=1 late=0 no_response=1) [backend]\n",
		buf.String())
}

func TestWriteSummary_OnTimeRatioWidth(t *testing.T) {
	reviewers := fixture()
	late := reviewers[0].Obligations[0]
	late.Status = review.StatusLate
	reviewers = append(reviewers, stats.Reviewer{Name: "Carol", Obligations: []review.Obligation{late, late, late}})

	l := NewLayout(reviewers, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, l, reviewers))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "; 100% on time")
	assert.Contains(t, lines[1], ";   0% on time (on_time=0 late=3 no_response=0)")
}

func TestNewLayout_Location(t *testing.T) {
	reviewers := fixture()
	l := NewLayout(reviewers, time.FixedZone("UTC+1", 3600))
	assert.Equal(t, "2024-01-15T11:00:00+01:00", l.date(&reviewers[0].Obligations[0].Request))
	assert.Equal(t, len("2024-01-15T11:00:00+01:00"), l.Date)
	assert.Equal(t, notAvailable, l.date(nil))
}

func TestNewLayout_Empty(t *testing.T) {
	l := NewLayout(nil, nil)
	assert.Equal(t, time.UTC, l.Location)
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, l, nil))
	assert.Empty(t, buf.String())
}

func TestWriteTransformed(t *testing.T) {
	var obligations []review.Obligation
	for _, r := range fixture() {
		obligations = append(obligations, r.Obligations...)
	}
	obligations = append(obligations, review.Obligation{
		Reviewer: "ci-bot", Status: review.StatusLate, Due: at(15, 13, 30),
	})

	var buf bytes.Buffer
	loc := time.FixedZone("UTC+1", 3600)
	require.NoError(t, WriteTransformed(&buf, obligations, []string{"ci-bot"}, loc))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"reviewer": "bob", "status": "on_time", "time_due": "2024-01-15T14:30:00+01:00"},
		{"reviewer": "bob", "status": "no_response", "time_due": "2024-01-15T15:30:00+01:00"},
	}, got)
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {"))
}

func TestRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransformed(&buf, nil, nil, nil))
	assert.Equal(t, "[]\n", buf.String())
}
