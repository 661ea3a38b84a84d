package github

import "github.com/reillywatson/reviewturnaround/internal/timeline"

// timelineQuery pages backwards through a repository's pull requests with
// the timeline items the review tracker understands. Team reviewers only
// expose a name.
const timelineQuery = `
query($repoOwner: String!, $repoName: String!, $prBefore: String, $prCount: Int = 100) {
  repository(owner: $repoOwner, name: $repoName) {
    pullRequests(last: $prCount, before: $prBefore, orderBy: {field: CREATED_AT, direction: ASC}) {
      pageInfo {
        startCursor
        hasPreviousPage
      }
      nodes {
        title
        createdAt
        baseRepository { name }
        author { login }
        timelineItems(first: 200, itemTypes: [REVIEW_REQUESTED_EVENT, REVIEW_REQUEST_REMOVED_EVENT, PULL_REQUEST_REVIEW, CLOSED_EVENT, MERGED_EVENT]) {
          nodes {
            ... on ReviewRequestedEvent {
              __typename
              createdAt
              requestedReviewer { ...ReviewerInfo }
            }
            ... on ReviewRequestRemovedEvent {
              __typename
              createdAt
              requestedReviewer { ...ReviewerInfo }
            }
            ... on PullRequestReview {
              __typename
              state
              submittedAt
              author { login }
            }
            ... on ClosedEvent {
              __typename
              createdAt
            }
            ... on MergedEvent {
              __typename
              createdAt
            }
          }
        }
      }
    }
  }
}

fragment ReviewerInfo on RequestedReviewer {
  ... on User { login }
  ... on Team { name }
}
`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

type pageInfo struct {
	StartCursor     *string `json:"startCursor"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
}

type timelineResponse struct {
	Data struct {
		Repository *struct {
			PullRequests struct {
				PageInfo pageInfo                  `json:"pageInfo"`
				Nodes    []timeline.RawPullRequest `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}
