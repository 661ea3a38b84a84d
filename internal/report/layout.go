package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/reillywatson/reviewturnaround/internal/review"
	"github.com/reillywatson/reviewturnaround/internal/stats"
)

const notAvailable = "N/A"

// Layout holds the column widths of the text report. Build it with
// NewLayout once every reviewer is known.
type Layout struct {
	Location *time.Location

	Index            int
	Reviewer         int
	PullRequest      int
	Repository       int
	Author           int
	Date             int
	Duration         int
	State            int
	Closure          int
	Expectation      int
	ReviewerDuration int
	Count            int
	Rate             int
}

// NewLayout sizes every column to the widest value it will hold.
func NewLayout(reviewers []stats.Reviewer, loc *time.Location) Layout {
	if loc == nil {
		loc = time.UTC
	}
	l := Layout{Location: loc}
	for _, r := range reviewers {
		l.Reviewer = max(l.Reviewer, len(r.Name))
		l.Count = max(l.Count, len(strconv.Itoa(r.Total())))
		l.Rate = max(l.Rate, len(percent(r.Rate())), len(percent(r.RateWithTarget())), len(percent(r.OnTimeRatio())))
		l.ReviewerDuration = max(l.ReviewerDuration, len(formatDuration(r.MeanDuration())))

		for _, o := range r.Obligations {
			l.Index = max(l.Index, len(strconv.Itoa(o.Index)))
			l.Reviewer = max(l.Reviewer, len(o.Reviewer))
			l.PullRequest = max(l.PullRequest, len(o.PullRequest))
			l.Repository = max(l.Repository, len(o.Repository))
			l.Author = max(l.Author, len(o.Author))
			l.Date = max(l.Date,
				len(l.date(&o.Request)),
				len(l.date(o.Response)),
				len(l.date(&o.Resolved)),
			)
			l.Duration = max(l.Duration, len(obligationDuration(o)))
			l.State = max(l.State, len(reviewState(o)))
			l.Closure = max(l.Closure, len(o.Closure))
			l.Expectation = max(l.Expectation, len(expectation(o)))
		}
	}
	return l
}

func (l Layout) date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return notAvailable
	}
	return t.In(l.Location).Format(time.RFC3339)
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f", rate*100)
}

func formatDuration(d time.Duration) string {
	return d.Truncate(time.Second).String()
}

func obligationDuration(o review.Obligation) string {
	d, ok := o.Duration()
	if !ok {
		return notAvailable
	}
	return formatDuration(d)
}

func reviewState(o review.Obligation) string {
	if o.State == "" {
		return notAvailable
	}
	return o.State
}

func expectation(o review.Obligation) string {
	if o.ExpectsReview() {
		return "   "
	}
	return "not"
}
