package stats

import (
	"slices"
	"time"

	"github.com/reillywatson/reviewturnaround/internal/review"
)

// Reviewer holds the obligations of one reviewer and the statistics
// derived from them.
type Reviewer struct {
	Login       string
	Name        string
	Group       string
	Obligations []review.Obligation
}

func (r Reviewer) Total() int {
	return len(r.Obligations)
}

func (r Reviewer) Actioned() int {
	return r.count(review.Obligation.Actioned)
}

func (r Reviewer) ActionedWithinTarget() int {
	return r.count(review.Obligation.ActionedWithinTarget)
}

// Expected counts obligations the reviewer was expected to act on.
func (r Reviewer) Expected() int {
	return r.count(review.Obligation.ExpectsReview)
}

// CountStatus counts obligations with the given classification.
func (r Reviewer) CountStatus(s review.Status) int {
	return r.count(func(o review.Obligation) bool { return o.Status == s })
}

func (r Reviewer) count(pred func(review.Obligation) bool) int {
	n := 0
	for _, o := range r.Obligations {
		if pred(o) {
			n++
		}
	}
	return n
}

// Rate is the share of obligations that got a response.
func (r Reviewer) Rate() float64 {
	return ratio(r.Actioned(), r.Total())
}

// RateWithTarget is the share of expected obligations answered within the
// target.
func (r Reviewer) RateWithTarget() float64 {
	return ratio(r.ActionedWithinTarget(), r.Expected())
}

// OnTimeRatio is on-time responses over all classified on-time or late.
func (r Reviewer) OnTimeRatio() float64 {
	onTime := r.CountStatus(review.StatusOnTime)
	return ratio(onTime, onTime+r.CountStatus(review.StatusLate))
}

// MeanDuration is the mean working time to respond over actioned
// obligations, zero when nothing was actioned.
func (r Reviewer) MeanDuration() time.Duration {
	var total time.Duration
	n := 0
	for _, o := range r.Obligations {
		if d, ok := o.Duration(); ok {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// MedianDuration is the median working time to respond over actioned
// obligations.
func (r Reviewer) MedianDuration() time.Duration {
	var durations []time.Duration
	for _, o := range r.Obligations {
		if d, ok := o.Duration(); ok {
			durations = append(durations, d)
		}
	}
	return median(durations)
}

func median(durations []time.Duration) time.Duration {
	n := len(durations)
	if n == 0 {
		return 0
	}
	slices.Sort(durations)
	if n%2 != 0 {
		return durations[n/2]
	}
	return (durations[n/2-1] + durations[n/2]) / 2
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
