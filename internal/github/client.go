package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/reillywatson/reviewturnaround/internal/timeline"
)

// Fetcher downloads raw pull request timelines for a repository.
type Fetcher interface {
	FetchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) ([]timeline.RawPullRequest, error)
	VerifyRepositoryAccess(ctx context.Context, owner, repo string) error
	ListRepositories(ctx context.Context, org string) ([]string, error)
}

type FetchOptions struct {
	// DaysOld stops paging once a page holds only older pull requests.
	DaysOld   int
	BatchSize int
	Now       time.Time
}

func (o FetchOptions) batchSize() int {
	if o.BatchSize <= 0 || o.BatchSize > 100 {
		return 100
	}
	return o.BatchSize
}

type GitHubClient struct {
	client *github.Client
	log    *zap.Logger
}

func NewGitHubClient(token string, log *zap.Logger) *GitHubClient {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return newGitHubClient(github.NewClient(tc), log)
}

// NewEnterpriseClient authenticates with token against the REST root at
// baseURL.
func NewEnterpriseClient(token, baseURL string, log *zap.Logger) (*GitHubClient, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return NewGitHubClientWithBaseURL(oauth2.NewClient(context.Background(), ts), baseURL, log)
}

// NewGitHubClientWithBaseURL talks to a GitHub Enterprise or test server.
// baseURL is the REST root; the GraphQL endpoint is resolved relative to it.
func NewGitHubClientWithBaseURL(httpClient *http.Client, baseURL string, log *zap.Logger) (*GitHubClient, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing base URL %q", baseURL)
	}
	c := github.NewClient(httpClient)
	c.BaseURL = u
	return newGitHubClient(c, log), nil
}

func newGitHubClient(c *github.Client, log *zap.Logger) *GitHubClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &GitHubClient{client: c, log: log}
}

// FetchPullRequests pages backwards from the newest pull request until there
// are no more pages or a page ends with a pull request older than DaysOld.
func (c *GitHubClient) FetchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) ([]timeline.RawPullRequest, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	tooOld := now.AddDate(0, 0, -opts.DaysOld)

	var all []timeline.RawPullRequest
	var cursor *string
	for {
		page, err := c.fetchPage(ctx, owner, repo, cursor, opts.batchSize())
		if err != nil {
			return nil, err
		}
		nodes := page.Nodes
		all = append(all, nodes...)
		c.log.Info("loaded pull requests", zap.String("repository", owner+"/"+repo), zap.Int("count", len(all)))

		if !page.PageInfo.HasPreviousPage || page.PageInfo.StartCursor == nil || len(nodes) == 0 {
			break
		}
		if opts.DaysOld > 0 {
			created, err := time.Parse(time.RFC3339, nodes[len(nodes)-1].CreatedAt)
			if err == nil && created.Before(tooOld) {
				break
			}
		}
		cursor = page.PageInfo.StartCursor
	}
	return all, nil
}

type timelinePage struct {
	PageInfo pageInfo
	Nodes    []timeline.RawPullRequest
}

func (c *GitHubClient) fetchPage(ctx context.Context, owner, repo string, cursor *string, batch int) (timelinePage, error) {
	body := graphQLRequest{
		Query: timelineQuery,
		Variables: map[string]any{
			"repoOwner": owner,
			"repoName":  repo,
			"prBefore":  cursor,
			"prCount":   batch,
		},
	}
	req, err := c.client.NewRequest(http.MethodPost, "graphql", body)
	if err != nil {
		return timelinePage{}, errors.Wrap(err, "building timeline query")
	}

	var out timelineResponse
	if _, err := c.client.Do(ctx, req, &out); err != nil {
		return timelinePage{}, errors.Wrapf(err, "querying pull requests for %s/%s", owner, repo)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return timelinePage{}, errors.Errorf("graphql errors for %s/%s: %s", owner, repo, strings.Join(msgs, "; "))
	}
	if out.Data.Repository == nil {
		return timelinePage{}, errors.Errorf("repository %s/%s not found", owner, repo)
	}
	prs := out.Data.Repository.PullRequests
	return timelinePage{PageInfo: prs.PageInfo, Nodes: prs.Nodes}, nil
}

// VerifyRepositoryAccess checks that the token can see the repository.
func (c *GitHubClient) VerifyRepositoryAccess(ctx context.Context, owner, repo string) error {
	_, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return errors.Errorf("repository %s/%s not found or token doesn't have access", owner, repo)
		}
		return errors.Wrapf(err, "checking access to %s/%s", owner, repo)
	}
	return nil
}

// ListRepositories returns the names of every repository in org, following
// REST pagination.
func (c *GitHubClient) ListRepositories(ctx context.Context, org string) ([]string, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var names []string
	for {
		repos, resp, err := c.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, errors.Errorf("organization %s not found or token doesn't have access", org)
			}
			return nil, errors.Wrapf(err, "listing repositories for %s", org)
		}
		for _, r := range repos {
			names = append(names, r.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	c.log.Info("listed repositories", zap.String("organization", org), zap.Int("count", len(names)))
	return names, nil
}
