package main

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reillywatson/reviewturnaround/internal/cache"
	"github.com/reillywatson/reviewturnaround/internal/github"
	"github.com/reillywatson/reviewturnaround/internal/timeline"
)

type fetchOptions struct {
	days      int
	batchSize int
	output    string
	noCache   bool
	org       string
}

func newFetchCmd(a *app) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch {owner/repo | owner | --org owner}",
		Short: "Download pull request timelines from GitHub",
		Long: "Download pull request timelines from GitHub.\n\n" +
			"Given owner/repo, one repository is saved. Given a bare owner or --org,\n" +
			"every repository of the organization is saved to <data_dir>/<repo>.json.",
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				opts.days = a.cfg.DaysOld
			}
			target := opts.org
			switch {
			case len(args) == 1 && opts.org != "":
				return errors.New("give either a repository argument or --org, not both")
			case len(args) == 1:
				target = args[0]
			case opts.org == "":
				return errors.New("a repository (owner/repo) or an organization is required")
			}
			if opts.org != "" || !strings.Contains(target, "/") {
				return a.fetchOrg(cmd, target, opts)
			}
			return a.fetch(cmd, target, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.days, "days", "d", 0, "Stop paging once pull requests are older than this many days (default from config)")
	cmd.Flags().IntVar(&opts.batchSize, "prs-per-batch", 100, "Pull requests per GraphQL page (max 100)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file, - for stdout (default <data_dir>/<repo>.json)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the download cache")
	cmd.Flags().StringVar(&opts.org, "org", "", "Download every repository of this organization")
	return cmd
}

func (a *app) fetch(cmd *cobra.Command, slug string, opts *fetchOptions) error {
	owner, repo, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return errors.Errorf("invalid repository %q, use owner/repo", slug)
	}
	fetcher, closeFetcher, err := a.fetcher(opts)
	if err != nil {
		return err
	}
	defer closeFetcher()

	if err := fetcher.VerifyRepositoryAccess(cmd.Context(), owner, repo); err != nil {
		return err
	}
	output := opts.output
	if output == "" {
		output = filepath.Join(a.cfg.DataDir, repo+".json")
	}
	return a.fetchRepository(cmd, fetcher, owner, repo, output, opts)
}

// fetchOrg saves every repository of org into the data directory. A
// repository that fails is logged and the rest are still fetched.
func (a *app) fetchOrg(cmd *cobra.Command, org string, opts *fetchOptions) error {
	if org == "" || strings.Contains(org, "/") {
		return errors.Errorf("invalid organization %q", org)
	}
	if opts.output != "" {
		return errors.New("--output cannot be used when fetching an organization")
	}
	fetcher, closeFetcher, err := a.fetcher(opts)
	if err != nil {
		return err
	}
	defer closeFetcher()

	repos, err := fetcher.ListRepositories(cmd.Context(), org)
	if err != nil {
		return err
	}
	failed := 0
	for _, repo := range repos {
		output := filepath.Join(a.cfg.DataDir, repo+".json")
		if err := a.fetchRepository(cmd, fetcher, org, repo, output, opts); err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			a.log.Error("failed to fetch repository", zap.String("repository", org+"/"+repo), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d repositories in %s failed to download", failed, len(repos), org)
	}
	return nil
}

// fetcher builds the GitHub client, cached unless disabled. The returned
// func releases the cache.
func (a *app) fetcher(opts *fetchOptions) (github.Fetcher, func(), error) {
	if a.cfg.GitHubToken == "" {
		return nil, nil, errors.New("GITHUB_TOKEN environment variable not set")
	}
	var fetcher github.Fetcher = github.NewGitHubClient(a.cfg.GitHubToken, a.log)
	if a.cfg.GitHubAPIURL != "" {
		client, err := github.NewEnterpriseClient(a.cfg.GitHubToken, a.cfg.GitHubAPIURL, a.log)
		if err != nil {
			return nil, nil, err
		}
		fetcher = client
	}
	if opts.noCache {
		return fetcher, func() {}, nil
	}
	c, err := cache.NewDefaultCache(a.cfg.CacheDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating cache")
	}
	cached := github.NewCachedGitHubClient(fetcher, c, a.log)
	return cached, func() { _ = cached.Close() }, nil
}

func (a *app) fetchRepository(cmd *cobra.Command, fetcher github.Fetcher, owner, repo, output string, opts *fetchOptions) error {
	slug := owner + "/" + repo
	ctx := cmd.Context()
	a.log.Info("fetching pull requests", zap.String("repository", slug), zap.Int("days", opts.days))
	prs, err := fetcher.FetchPullRequests(ctx, owner, repo, github.FetchOptions{
		DaysOld:   opts.days,
		BatchSize: opts.batchSize,
		Now:       a.now(),
	})
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		return writePullRequests(w, prs)
	}); err != nil {
		return err
	}
	a.log.Info("saved pull requests", zap.String("repository", slug), zap.Int("count", len(prs)), zap.String("output", output))
	return nil
}

func writePullRequests(w io.Writer, prs []timeline.RawPullRequest) error {
	if prs == nil {
		prs = []timeline.RawPullRequest{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(prs), "encoding pull requests")
}
