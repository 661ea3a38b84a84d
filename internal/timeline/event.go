package timeline

import "time"

// Event is a typed timeline event. The set of implementations is closed:
// ReviewRequested, ReviewRequestRemoved, ReviewSubmitted and Resolved.
type Event interface {
	At() time.Time
	event()
}

type ReviewRequested struct {
	Time     time.Time
	Reviewer string
}

type ReviewRequestRemoved struct {
	Time     time.Time
	Reviewer string
}

// ReviewSubmitted is any submitted review; approvals, comments and change
// requests all count as a response.
type ReviewSubmitted struct {
	Time     time.Time
	Reviewer string
	State    string
}

// Resolved marks the pull request as merged or closed.
type Resolved struct {
	Time   time.Time
	Merged bool
}

func (e ReviewRequested) At() time.Time      { return e.Time }
func (e ReviewRequestRemoved) At() time.Time { return e.Time }
func (e ReviewSubmitted) At() time.Time      { return e.Time }
func (e Resolved) At() time.Time             { return e.Time }

func (ReviewRequested) event()      {}
func (ReviewRequestRemoved) event() {}
func (ReviewSubmitted) event()      {}
func (Resolved) event()             {}

// PullRequest is a normalized pull request: localized, filtered events in
// source order.
type PullRequest struct {
	Title      string
	Repository string
	Author     string
	CreatedAt  time.Time
	Events     []Event
}
