package timeline

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrTooOld means the pull request was created before the analysis window.
	ErrTooOld = errors.New("pull request older than analysis window")
	// ErrExcludedAuthor means the pull request author matches the exclusion policy.
	ErrExcludedAuthor = errors.New("pull request author excluded")
	// ErrMalformed means required fields are missing or unparseable.
	ErrMalformed = errors.New("malformed timeline data")
	// ErrTeamReviewer means a review request targets a team rather than a user.
	ErrTeamReviewer = errors.New("review request targets a team")
	// ErrUnknownType means the node type is not one the tracker understands.
	ErrUnknownType = errors.New("unknown timeline event type")
)

// Normalizer converts raw pull requests into typed, localized events.
type Normalizer struct {
	Location        *time.Location
	Now             time.Time
	MaxAge          time.Duration // zero disables the age filter
	ExcludedAuthors []string      // case-insensitive substrings of the author login
	Log             *zap.Logger
}

func (n *Normalizer) logger() *zap.Logger {
	if n.Log == nil {
		return zap.NewNop()
	}
	return n.Log
}

func (n *Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

// Normalize filters and localizes one pull request. repository is used when
// the pull request does not name its base repository. The returned error is
// ErrTooOld, ErrExcludedAuthor or ErrMalformed when the whole pull request is
// discarded; event-level problems are logged and the event skipped.
func (n *Normalizer) Normalize(raw RawPullRequest, repository string) (PullRequest, error) {
	if raw.BaseRepository != nil && raw.BaseRepository.Name != "" {
		repository = raw.BaseRepository.Name
	}
	log := n.logger().With(zap.String("repository", repository), zap.String("pull_request", raw.Title))

	created, err := n.parseTime(raw.CreatedAt)
	if err != nil {
		return PullRequest{}, errors.Wrap(ErrMalformed, "createdAt")
	}
	if n.MaxAge > 0 && !created.After(n.Now.Add(-n.MaxAge)) {
		return PullRequest{}, ErrTooOld
	}

	var author string
	if raw.Author != nil {
		author = raw.Author.Login
	}
	if n.excluded(author) {
		return PullRequest{}, ErrExcludedAuthor
	}

	pr := PullRequest{
		Title:      raw.Title,
		Repository: repository,
		Author:     author,
		CreatedAt:  created,
	}
	for _, item := range raw.TimelineItems.Nodes {
		ev, err := n.parseEvent(item)
		switch {
		case err == nil:
			pr.Events = append(pr.Events, ev)
		case errors.Is(err, ErrTeamReviewer):
			log.Debug("skipping team review request", zap.String("type", item.Typename))
		default:
			log.Warn("skipping timeline event", zap.String("type", item.Typename), zap.Error(err))
		}
	}
	return pr, nil
}

func (n *Normalizer) excluded(author string) bool {
	login := strings.ToLower(author)
	for _, pattern := range n.ExcludedAuthors {
		if pattern != "" && strings.Contains(login, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func (n *Normalizer) parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrMalformed
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return t.In(n.location()), nil
}

func (n *Normalizer) parseEvent(raw RawEvent) (Event, error) {
	if raw.decodeErr != nil {
		return nil, errors.Wrap(ErrMalformed, raw.decodeErr.Error())
	}
	switch raw.Typename {
	case TypeReviewRequested, TypeReviewRequestRemoved:
		if raw.RequestedReviewer == nil {
			return nil, errors.Wrap(ErrMalformed, "missing requestedReviewer")
		}
		if raw.RequestedReviewer.Login == "" {
			return nil, ErrTeamReviewer
		}
		at, err := n.parseTime(raw.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "createdAt")
		}
		if raw.Typename == TypeReviewRequested {
			return ReviewRequested{Time: at, Reviewer: raw.RequestedReviewer.Login}, nil
		}
		return ReviewRequestRemoved{Time: at, Reviewer: raw.RequestedReviewer.Login}, nil

	case TypePullRequestReview:
		if raw.Author == nil || raw.Author.Login == "" {
			return nil, errors.Wrap(ErrMalformed, "missing review author")
		}
		at, err := n.parseTime(raw.SubmittedAt)
		if err != nil {
			return nil, errors.Wrap(err, "submittedAt")
		}
		return ReviewSubmitted{Time: at, Reviewer: raw.Author.Login, State: raw.State}, nil

	case TypeClosed, TypeMerged:
		at, err := n.parseTime(raw.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "createdAt")
		}
		return Resolved{Time: at, Merged: raw.Typename == TypeMerged}, nil
	}
	return nil, errors.Wrap(ErrUnknownType, raw.Typename)
}
