package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reillywatson/reviewturnaround/internal/config"
	"github.com/reillywatson/reviewturnaround/internal/graph"
	"github.com/reillywatson/reviewturnaround/internal/report"
	"github.com/reillywatson/reviewturnaround/internal/stats"
)

type reportOptions struct {
	dataDir    string
	outputDir  string
	repos      []string
	details    bool
	noCharts   bool
	minReviews int
	groupsFile string
	windowDays int
	goal       int
}

func newReportCmd(a *app) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print per-reviewer turnaround statistics and render charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("data-dir") {
				opts.dataDir = a.cfg.DataDir
			}
			if !flags.Changed("output-dir") {
				opts.outputDir = a.cfg.OutputDir
			}
			if !flags.Changed("window-days") {
				opts.windowDays = a.cfg.WindowDays
			}
			return a.report(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory of downloaded timelines (default from config)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for chart images (default from config)")
	cmd.Flags().StringSliceVar(&opts.repos, "repos", nil, "Only report on these repositories")
	cmd.Flags().BoolVar(&opts.details, "details", false, "Print one line per review request")
	cmd.Flags().BoolVar(&opts.noCharts, "no-charts", false, "Skip chart rendering")
	cmd.Flags().IntVar(&opts.minReviews, "min-reviews", 10, "Minimum review requests for a reviewer to appear in charts")
	cmd.Flags().StringVarP(&opts.groupsFile, "groups", "g", "", "YAML or JSON file mapping group names to logins")
	cmd.Flags().IntVar(&opts.windowDays, "window-days", 0, "Report on requests made in the last this many days (default from config)")
	cmd.Flags().IntVar(&opts.goal, "goal", 75, "On-time percentage drawn as a goal line on the on-time chart")
	return cmd
}

func (a *app) report(cmd *cobra.Command, opts *reportOptions) error {
	if opts.windowDays < 1 {
		return errors.Errorf("window must be at least one day, got %d", opts.windowDays)
	}
	if opts.goal < 0 || opts.goal > 100 {
		return errors.Errorf("goal must be a percentage between 0 and 100, got %d", opts.goal)
	}
	var groups map[string]string
	if opts.groupsFile != "" {
		var err error
		if groups, err = config.LoadGroups(opts.groupsFile); err != nil {
			return err
		}
	}

	prs, err := a.pullRequests(opts.dataDir, opts.repos, 0)
	if err != nil {
		return err
	}
	obligations, err := a.obligations(prs)
	if err != nil {
		return err
	}
	reviewers := stats.Aggregate(obligations, stats.Options{
		Names:  a.cfg.Names,
		Allow:  a.cfg.Allow(),
		Groups: groups,
		Since:  a.now().Add(-days(opts.windowDays)),
	})
	a.log.Info("aggregated reviewers", zap.Int("reviewers", len(reviewers)), zap.Int("window_days", opts.windowDays))

	out := cmd.OutOrStdout()
	layout := report.NewLayout(reviewers, a.loc)
	if opts.details {
		if err := report.WriteObligations(out, layout, reviewers); err != nil {
			return err
		}
	}
	if err := report.WriteSummary(out, layout, reviewers); err != nil {
		return err
	}

	if opts.noCharts {
		return nil
	}
	err = graph.RenderAll(opts.outputDir, stats.AtLeast(reviewers, opts.minReviews), float64(opts.goal)/100)
	switch {
	case errors.Is(err, graph.ErrNothingToPlot):
		a.log.Warn("no reviewers to chart", zap.Int("min_reviews", opts.minReviews))
	case err != nil:
		return err
	default:
		a.log.Info("rendered charts", zap.String("output_dir", opts.outputDir))
	}
	return nil
}
