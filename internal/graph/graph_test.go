package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/reillywatson/reviewturnaround/internal/calendar"
	"github.com/reillywatson/reviewturnaround/internal/review"
	"github.com/reillywatson/reviewturnaround/internal/stats"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func reviewers() []stats.Reviewer {
	schedule := calendar.NewSchedule(
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		9*time.Hour, 17*time.Hour, 0, 0, time.UTC,
	)
	request := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	quick := request.Add(time.Hour)
	slow := request.Add(5 * time.Hour)
	obligation := func(response *time.Time) review.Obligation {
		return review.Obligation{
			Request:  request,
			Response: response,
			Resolved: request.Add(24 * time.Hour),
			Target:   3 * time.Hour,
			Schedule: schedule,
		}
	}
	return []stats.Reviewer{
		{Name: "Bob", Obligations: []review.Obligation{obligation(&quick), obligation(&slow), obligation(nil)}},
		{Name: "Carol", Obligations: []review.Obligation{obligation(nil)}},
	}
}

func TestRenderCharts(t *testing.T) {
	for name, render := range map[string]func(*bytes.Buffer) error{
		"reviews": func(b *bytes.Buffer) error { return RenderReviews(b, reviewers()) },
		"rate":    func(b *bytes.Buffer) error { return RenderRate(b, reviewers()) },
		"time":    func(b *bytes.Buffer) error { return RenderTime(b, reviewers()) },
		"on time": func(b *bytes.Buffer) error { return RenderOnTime(b, reviewers(), 0.75) },
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(&buf))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestRenderAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	require.NoError(t, RenderAll(dir, reviewers(), 0.75))

	for _, name := range []string{ReviewsFile, RateFile, TimeFile, OnTimeFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, pngMagic), name)
	}
}

func TestRenderAll_NothingToPlot(t *testing.T) {
	assert.ErrorIs(t, RenderAll(t.TempDir(), nil, 0.75), ErrNothingToPlot)

	var buf bytes.Buffer
	assert.ErrorIs(t, RenderReviews(&buf, []stats.Reviewer{{Name: "empty"}}), ErrNothingToPlot)
}

func TestSegments(t *testing.T) {
	rs := reviewers()
	within, slower, notReviewed := segments(rs[0])
	assert.Equal(t, []int{1, 1, 1}, []int{within, slower, notReviewed})

	// Resolved before the target elapsed, so no review was expected.
	early := rs[1].Obligations[0]
	early.Resolved = early.Request.Add(time.Hour)
	within, slower, notReviewed = segments(stats.Reviewer{Name: "Dave", Obligations: []review.Obligation{early, rs[1].Obligations[0]}})
	assert.Equal(t, []int{0, 0, 1}, []int{within, slower, notReviewed})

	var buf bytes.Buffer
	assert.ErrorIs(t, RenderReviews(&buf, []stats.Reviewer{{Name: "Dave", Obligations: []review.Obligation{early}}}), ErrNothingToPlot)
}

func TestRenderOnTime_Goal(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderOnTime(&buf, reviewers(), 1.5))
	assert.Error(t, RenderOnTime(&buf, reviewers(), -0.1))
	assert.Zero(t, buf.Len())

	box := chart.Box{Top: 100, Left: 0, Right: 400, Bottom: 500}
	assert.Equal(t, 200, goalY(box, 0.75))
	assert.Equal(t, 500, goalY(box, 0))
	assert.Equal(t, 100, goalY(box, 1))
}

func TestCanvasWidth(t *testing.T) {
	assert.Equal(t, 480, canvasWidth(1))
	assert.Equal(t, 160+20*60, canvasWidth(20))
}
