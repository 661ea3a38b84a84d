package report

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/reillywatson/reviewturnaround/internal/review"
	"github.com/reillywatson/reviewturnaround/internal/stats"
)

// WriteObligations writes one line per obligation of every reviewer.
func WriteObligations(w io.Writer, l Layout, reviewers []stats.Reviewer) error {
	for _, r := range reviewers {
		for _, o := range r.Obligations {
			if _, err := fmt.Fprintln(w, l.obligationLine(o)); err != nil {
				return errors.Wrap(err, "writing obligation")
			}
		}
	}
	return nil
}

func (l Layout) obligationLine(o review.Obligation) string {
	return fmt.Sprintf(
		"Review %-*d by %-*s on '%-*s' in %-*s by %-*s requested on %-*s actioned on %-*s as %-*s took %-*s"+
			" and the request was %-*s at %-*s and was %-*s expected",
		l.Index, o.Index,
		l.Reviewer, o.Reviewer,
		l.PullRequest, o.PullRequest,
		l.Repository, o.Repository,
		l.Author, o.Author,
		l.Date, l.date(&o.Request),
		l.Date, l.date(o.Response),
		l.State, reviewState(o),
		l.Duration, obligationDuration(o),
		l.Closure, o.Closure,
		l.Date, l.date(&o.Resolved),
		l.Expectation, expectation(o),
	)
}

// WriteSummary writes one line per reviewer.
func WriteSummary(w io.Writer, l Layout, reviewers []stats.Reviewer) error {
	for _, r := range reviewers {
		if _, err := fmt.Fprintln(w, l.summaryLine(r)); err != nil {
			return errors.Wrap(err, "writing summary")
		}
	}
	return nil
}

func (l Layout) summaryLine(r stats.Reviewer) string {
	line := fmt.Sprintf(
		"%-*s reviewed %*d/%-*d (%*s%%), with %*d/%-*d (%*s%%) hitting target, in on average %*s"+
			" (median %s); %*s%% on time (on_time=%d late=%d no_response=%d)",
		l.Reviewer, r.Name,
		l.Count, r.Actioned(), l.Count, r.Total(),
		l.Rate, percent(r.Rate()),
		l.Count, r.ActionedWithinTarget(), l.Count, r.Expected(),
		l.Rate, percent(r.RateWithTarget()),
		l.ReviewerDuration, formatDuration(r.MeanDuration()),
		formatDuration(r.MedianDuration()),
		l.Rate, percent(r.OnTimeRatio()),
		r.CountStatus(review.StatusOnTime),
		r.CountStatus(review.StatusLate),
		r.CountStatus(review.StatusNoResponse),
	)
	if r.Group != "" {
		line += " [" + r.Group + "]"
	}
	return line
}
