package review

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/reillywatson/reviewturnaround/internal/calendar"
	"github.com/reillywatson/reviewturnaround/internal/timeline"
)

// Tracker turns pull request timelines into review obligations.
type Tracker struct {
	Target    time.Duration
	Calendars *calendar.Calendars
	// Cutoff resolves obligations on pull requests that are still open.
	Cutoff time.Time
	Log    *zap.Logger
}

// pendingQueue holds request instants in the order they were made.
type pendingQueue []time.Time

func (q *pendingQueue) push(t time.Time) { *q = append(*q, t) }

func (q *pendingQueue) pop() (time.Time, bool) {
	if len(*q) == 0 {
		return time.Time{}, false
	}
	t := (*q)[0]
	*q = (*q)[1:]
	return t, true
}

func (q pendingQueue) front() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0], true
}

// prState is the bookkeeping for a single pull request.
type prState struct {
	pending map[string]*pendingQueue
	closed  map[string]int
	out     []Obligation
	// answered indexes obligations closed by a response; their resolution is
	// only known once the pull request resolves.
	answered []int
}

func (s *prState) queue(reviewer string) *pendingQueue {
	q, ok := s.pending[reviewer]
	if !ok {
		q = &pendingQueue{}
		s.pending[reviewer] = q
	}
	return q
}

func (t *Tracker) logger() *zap.Logger {
	if t.Log == nil {
		return zap.NewNop()
	}
	return t.Log
}

// Build derives the obligations of one pull request. Events are processed in
// chronological order; responses, removals and resolution close the oldest
// pending request of a reviewer first.
func (t *Tracker) Build(pr timeline.PullRequest) []Obligation {
	log := t.logger().With(zap.String("repository", pr.Repository), zap.String("pull_request", pr.Title))

	events := slices.DeleteFunc(slices.Clone(pr.Events), func(ev timeline.Event) bool { return ev == nil })
	slices.SortStableFunc(events, func(a, b timeline.Event) int {
		return a.At().Compare(b.At())
	})

	st := &prState{
		pending: make(map[string]*pendingQueue),
		closed:  make(map[string]int),
	}
	newObligation := func(reviewer string, request time.Time) Obligation {
		// Requests are popped in the order they were pushed, so counting
		// closed obligations per reviewer yields the request index.
		st.closed[reviewer]++
		schedule := t.Calendars.For(reviewer)
		return Obligation{
			Index:       st.closed[reviewer],
			Reviewer:    reviewer,
			PullRequest: pr.Title,
			Repository:  pr.Repository,
			Author:      pr.Author,
			Request:     request,
			Due:         schedule.Add(request, t.Target),
			Target:      t.Target,
			Schedule:    schedule,
		}
	}

	closure := ClosureOpen
	var resolvedAt time.Time

scan:
	for _, ev := range events {
		switch e := ev.(type) {
		case timeline.ReviewRequested:
			st.queue(e.Reviewer).push(e.Time)

		case timeline.ReviewSubmitted:
			q := st.queue(e.Reviewer)
			request, ok := q.front()
			if !ok || !request.Before(e.Time) {
				// unsolicited review
				continue
			}
			q.pop()
			o := newObligation(e.Reviewer, request)
			response := e.Time
			o.Response = &response
			o.State = e.State
			o.Status = StatusLate
			if !response.After(o.Due) {
				o.Status = StatusOnTime
			}
			st.answered = append(st.answered, len(st.out))
			st.out = append(st.out, o)

		case timeline.ReviewRequestRemoved:
			request, ok := st.queue(e.Reviewer).pop()
			if !ok {
				log.Warn("review request removed but no pending request found", zap.String("reviewer", e.Reviewer), zap.Time("at", e.Time))
				continue
			}
			o := newObligation(e.Reviewer, request)
			o.Resolved = e.Time
			o.Closure = ClosureRemoved
			o.Status = unanswered(o.Due, e.Time)
			st.out = append(st.out, o)

		case timeline.Resolved:
			closure = ClosureClosed
			if e.Merged {
				closure = ClosureMerged
			}
			resolvedAt = e.Time
			break scan

		default:
			log.Warn("unknown timeline event", zap.String("type", typeName(ev)))
		}
	}

	end := t.Cutoff
	if closure != ClosureOpen {
		end = resolvedAt
	}
	for _, i := range st.answered {
		st.out[i].Resolved = latest(end, *st.out[i].Response)
		st.out[i].Closure = closure
	}

	reviewers := make([]string, 0, len(st.pending))
	for reviewer := range st.pending {
		reviewers = append(reviewers, reviewer)
	}
	slices.Sort(reviewers)
	for _, reviewer := range reviewers {
		q := st.pending[reviewer]
		for request, ok := q.pop(); ok; request, ok = q.pop() {
			o := newObligation(reviewer, request)
			o.Resolved = latest(end, request)
			o.Closure = closure
			o.Status = unanswered(o.Due, o.Resolved)
			st.out = append(st.out, o)
		}
	}
	return st.out
}

// BuildAll builds obligations for every pull request in order.
func (t *Tracker) BuildAll(prs []timeline.PullRequest) []Obligation {
	var out []Obligation
	for _, pr := range prs {
		out = append(out, t.Build(pr)...)
	}
	return out
}

// unanswered classifies an obligation closed without a response at closedAt.
func unanswered(due, closedAt time.Time) Status {
	if closedAt.After(due) {
		return StatusLate
	}
	return StatusNoResponse
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func typeName(ev timeline.Event) string {
	return fmt.Sprintf("%T", ev)
}
