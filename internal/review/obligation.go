package review

import (
	"time"

	"github.com/reillywatson/reviewturnaround/internal/calendar"
)

// Status is the terminal classification of an obligation.
type Status string

const (
	StatusOnTime     Status = "on_time"
	StatusLate       Status = "late"
	StatusNoResponse Status = "no_response"
)

// Closure is how an obligation stopped being pending.
type Closure string

const (
	ClosureMerged  Closure = "merged"
	ClosureClosed  Closure = "closed"
	ClosureRemoved Closure = "removed"
	// ClosureOpen means the pull request was still open at the cutoff.
	ClosureOpen Closure = "open"
)

// Obligation is one request for a reviewer to review a pull request,
// together with how it was resolved.
type Obligation struct {
	Index       int // 1-based, per reviewer and pull request
	Reviewer    string
	PullRequest string
	Repository  string
	Author      string
	Request     time.Time
	Response    *time.Time // nil when the reviewer never responded
	State       string     // review state of the response, e.g. APPROVED
	Resolved    time.Time
	Closure     Closure
	Due         time.Time
	Status      Status
	Target      time.Duration
	Schedule    calendar.Schedule
}

// Duration is the working time between request and response. ok is false
// when there was no response.
func (o Obligation) Duration() (d time.Duration, ok bool) {
	if o.Response == nil {
		return 0, false
	}
	return o.Schedule.Elapsed(o.Request, *o.Response), true
}

func (o Obligation) Actioned() bool {
	return o.Response != nil
}

// ActionedWithinTarget reports a response that took less working time than
// the target.
func (o Obligation) ActionedWithinTarget() bool {
	d, ok := o.Duration()
	return ok && d < o.Target
}

// ExpectsReview reports whether the obligation counts against the reviewer.
// Pull requests resolved within the target are not expected to have been
// reviewed. The comparison uses wall-clock time, unlike classification
// which uses working time.
func (o Obligation) ExpectsReview() bool {
	return o.Response != nil || o.Resolved.Sub(o.Request) > o.Target
}
