package github

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/reillywatson/reviewturnaround/internal/cache"
	"github.com/reillywatson/reviewturnaround/internal/timeline"
)

const timelineTTL = time.Hour

// CachedGitHubClient wraps a Fetcher with a cache of timeline downloads.
type CachedGitHubClient struct {
	fetcher Fetcher
	cache   cache.Cache
	kb      *cache.KeyBuilder
	log     *zap.Logger
}

func NewCachedGitHubClient(fetcher Fetcher, cacheImpl cache.Cache, log *zap.Logger) *CachedGitHubClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedGitHubClient{
		fetcher: fetcher,
		cache:   cacheImpl,
		kb:      cache.NewKeyBuilder("github"),
		log:     log,
	}
}

// FetchPullRequests serves a download from the cache when one was made for
// the same repository and options today, within the TTL.
func (c *CachedGitHubClient) FetchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) ([]timeline.RawPullRequest, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	key := c.kb.TimelineKey(owner, repo, opts.DaysOld, opts.batchSize(), now)

	var cached []timeline.RawPullRequest
	err := c.cache.Get(key, &cached)
	if err == nil {
		c.log.Info("using cached pull requests", zap.String("repository", owner+"/"+repo), zap.Int("count", len(cached)))
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.log.Warn("cache error for pull requests", zap.String("repository", owner+"/"+repo), zap.Error(err))
	}

	prs, err := c.fetcher.FetchPullRequests(ctx, owner, repo, opts)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, prs, timelineTTL); err != nil {
		c.log.Warn("failed to cache pull requests", zap.String("repository", owner+"/"+repo), zap.Error(err))
	}
	return prs, nil
}

// VerifyRepositoryAccess is never cached.
func (c *CachedGitHubClient) VerifyRepositoryAccess(ctx context.Context, owner, repo string) error {
	return c.fetcher.VerifyRepositoryAccess(ctx, owner, repo)
}

func (c *CachedGitHubClient) ListRepositories(ctx context.Context, org string) ([]string, error) {
	return c.fetcher.ListRepositories(ctx, org)
}

func (c *CachedGitHubClient) Close() error {
	return c.cache.Close()
}
