// Package graph renders per-reviewer bar charts as PNG images.
package graph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/reillywatson/reviewturnaround/internal/stats"
)

const (
	ReviewsFile = "reviews_by_reviewer.png"
	RateFile    = "rate_by_reviewer.png"
	TimeFile    = "time_by_reviewer.png"
	OnTimeFile  = "on_time_by_reviewer.png"

	chartHeight = 720
	barWidth    = 40
	barSpacing  = 20
)

var ErrNothingToPlot = errors.New("no reviewers to plot")

// RenderAll writes the reviewer charts into dir, creating it if needed.
// goal is the on-time share, between 0 and 1, drawn across the on-time
// chart.
func RenderAll(dir string, reviewers []stats.Reviewer, goal float64) error {
	if len(reviewers) == 0 {
		return ErrNothingToPlot
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating chart directory %s", dir)
	}
	charts := []struct {
		name   string
		render func(io.Writer, []stats.Reviewer) error
	}{
		{ReviewsFile, RenderReviews},
		{RateFile, RenderRate},
		{TimeFile, RenderTime},
		{OnTimeFile, func(w io.Writer, reviewers []stats.Reviewer) error {
			return RenderOnTime(w, reviewers, goal)
		}},
	}
	for _, c := range charts {
		if err := renderFile(filepath.Join(dir, c.name), reviewers, c.render); err != nil {
			return err
		}
	}
	return nil
}

func renderFile(path string, reviewers []stats.Reviewer, render func(io.Writer, []stats.Reviewer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := render(f, reviewers); err != nil {
		f.Close()
		return errors.Wrapf(err, "rendering %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// RenderReviews stacks each reviewer's obligations into those answered
// within target, answered slower and never answered.
func RenderReviews(w io.Writer, reviewers []stats.Reviewer) error {
	var bars []chart.StackedBar
	for _, r := range reviewers {
		within, slower, notReviewed := segments(r)
		if within+slower+notReviewed == 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{
			Name:  r.Name,
			Width: barWidth,
			Values: []chart.Value{
				{Label: "within target", Value: float64(within), Style: chart.Style{FillColor: chart.ColorGreen, StrokeColor: chart.ColorGreen}},
				{Label: "slower", Value: float64(slower), Style: chart.Style{FillColor: chart.ColorOrange, StrokeColor: chart.ColorOrange}},
				{Label: "not reviewed", Value: float64(notReviewed), Style: chart.Style{FillColor: chart.ColorRed, StrokeColor: chart.ColorRed}},
			},
		})
	}
	if len(bars) == 0 {
		return ErrNothingToPlot
	}
	c := chart.StackedBarChart{
		Title:      "Code reviews actioned",
		Width:      canvasWidth(len(bars)),
		Height:     chartHeight,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
	return c.Render(chart.PNG, w)
}

// segments splits a reviewer's obligations for the stacked chart. Requests
// resolved before a review was expected are left out of every segment.
func segments(r stats.Reviewer) (within, slower, notReviewed int) {
	within = r.ActionedWithinTarget()
	slower = r.Actioned() - within
	notReviewed = max(0, r.Expected()-r.Actioned())
	return within, slower, notReviewed
}

// RenderRate plots the share of expected reviews answered within target.
func RenderRate(w io.Writer, reviewers []stats.Reviewer) error {
	bars := make([]chart.Value, 0, len(reviewers))
	for _, r := range reviewers {
		bars = append(bars, chart.Value{Label: r.Name, Value: r.RateWithTarget()})
	}
	return renderBars(w, "Code reviews within target", bars, 1, chart.PercentValueFormatter)
}

// RenderTime plots the mean working hours to respond.
func RenderTime(w io.Writer, reviewers []stats.Reviewer) error {
	bars := make([]chart.Value, 0, len(reviewers))
	top := 1.0
	for _, r := range reviewers {
		hours := r.MeanDuration().Hours()
		top = max(top, hours*1.1)
		bars = append(bars, chart.Value{Label: r.Name, Value: hours})
	}
	return renderBars(w, "Average working hours to review", bars, top, chart.FloatValueFormatter)
}

// RenderOnTime plots the share of classified responses that were on time,
// with a horizontal line at goal.
func RenderOnTime(w io.Writer, reviewers []stats.Reviewer, goal float64) error {
	if goal < 0 || goal > 1 {
		return errors.Errorf("on-time goal %.2f is outside 0..1", goal)
	}
	bars := make([]chart.Value, 0, len(reviewers))
	for _, r := range reviewers {
		bars = append(bars, chart.Value{Label: r.Name, Value: r.OnTimeRatio()})
	}
	title := fmt.Sprintf("Code reviews on time (goal %.0f%%)", goal*100)
	return renderBars(w, title, bars, 1, chart.PercentValueFormatter, goalLine(goal))
}

func goalLine(goal float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		y := goalY(box, goal)
		r.SetStrokeColor(chart.ColorRed)
		r.SetStrokeWidth(2)
		r.SetStrokeDashArray([]float64{6, 4})
		r.MoveTo(box.Left, y)
		r.LineTo(box.Right, y)
		r.Stroke()
	}
}

// goalY maps goal onto the plot box of a chart whose y range is 0..1.
func goalY(box chart.Box, goal float64) int {
	return box.Bottom - int(goal*float64(box.Height()))
}

func renderBars(w io.Writer, title string, bars []chart.Value, top float64, format chart.ValueFormatter, elements ...chart.Renderable) error {
	if len(bars) == 0 {
		return ErrNothingToPlot
	}
	c := chart.BarChart{
		Title:      title,
		Width:      canvasWidth(len(bars)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: format,
		},
		Bars:     bars,
		Elements: elements,
	}
	return c.Render(chart.PNG, w)
}

func canvasWidth(n int) int {
	return max(480, 160+n*(barWidth+barSpacing))
}
