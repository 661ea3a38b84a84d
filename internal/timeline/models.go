package timeline

import "encoding/json"

// RawPullRequest is one pull request as returned by the timeline query.
type RawPullRequest struct {
	Title          string           `json:"title"`
	CreatedAt      string           `json:"createdAt"`
	Author         *RawActor        `json:"author"`
	BaseRepository *RawRepository   `json:"baseRepository"`
	TimelineItems  RawTimelineItems `json:"timelineItems"`
}

type RawActor struct {
	Login string `json:"login,omitempty"`
}

type RawRepository struct {
	Name string `json:"name"`
}

type RawTimelineItems struct {
	Nodes []RawEvent `json:"nodes"`
}

// UnmarshalJSON decodes each node on its own. A node that does not decode
// keeps its type name and the decoding error, and the normalizer skips it.
func (t *RawTimelineItems) UnmarshalJSON(data []byte) error {
	var aux struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Nodes = make([]RawEvent, 0, len(aux.Nodes))
	for _, node := range aux.Nodes {
		var ev RawEvent
		if err := json.Unmarshal(node, &ev); err != nil {
			var head struct {
				Typename string `json:"__typename"`
			}
			_ = json.Unmarshal(node, &head)
			ev = RawEvent{Typename: head.Typename, decodeErr: err}
		}
		t.Nodes = append(t.Nodes, ev)
	}
	return nil
}

// RawEvent is a loosely-typed timeline node. Which fields are set depends
// on Typename.
type RawEvent struct {
	Typename          string                `json:"__typename"`
	CreatedAt         string                `json:"createdAt,omitempty"`
	SubmittedAt       string                `json:"submittedAt,omitempty"`
	State             string                `json:"state,omitempty"`
	RequestedReviewer *RawRequestedReviewer `json:"requestedReviewer,omitempty"`
	Author            *RawActor             `json:"author,omitempty"`

	decodeErr error
}

// RawRequestedReviewer is either a user (Login set) or a team (Name set).
type RawRequestedReviewer struct {
	Login string `json:"login,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Timeline node type names.
const (
	TypeReviewRequested      = "ReviewRequestedEvent"
	TypeReviewRequestRemoved = "ReviewRequestRemovedEvent"
	TypePullRequestReview    = "PullRequestReview"
	TypeClosed               = "ClosedEvent"
	TypeMerged               = "MergedEvent"
)
