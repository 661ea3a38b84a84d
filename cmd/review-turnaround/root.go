package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reillywatson/reviewturnaround/internal/config"
	"github.com/reillywatson/reviewturnaround/internal/logger"
	"github.com/reillywatson/reviewturnaround/internal/review"
	"github.com/reillywatson/reviewturnaround/internal/timeline"
)

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
	loc *time.Location
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{now: time.Now})
}

func newRootCmdFor(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "review-turnaround",
		Short:        "Code review turnaround statistics from GitHub pull request timelines",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newFetchCmd(a), newTransformCmd(a), newReportCmd(a))
	return cmd
}

func (a *app) init() error {
	log, err := logger.New(a.verbose)
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	a.log = log

	cfg, err := config.Load(a.configPath)
	if err != nil {
		log.Error("failed to load config", zap.Error(err))
		return err
	}
	a.cfg = cfg
	return a.setTimezone(cfg.Timezone)
}

func (a *app) setTimezone(name string) error {
	a.cfg.Timezone = name
	loc, err := a.cfg.Location()
	if err != nil {
		a.log.Error("invalid timezone", zap.String("timezone", name), zap.Error(err))
		return err
	}
	a.loc = loc
	return nil
}

// pullRequests loads and normalizes every repository in dataDir. maxAge of
// zero keeps pull requests of any age.
func (a *app) pullRequests(dataDir string, only []string, maxAge time.Duration) ([]timeline.PullRequest, error) {
	repos, err := timeline.LoadDir(dataDir, a.cfg.TransformedFile, only, a.log)
	if err != nil {
		return nil, err
	}
	n := &timeline.Normalizer{
		Location:        a.loc,
		Now:             a.now(),
		MaxAge:          maxAge,
		ExcludedAuthors: a.cfg.ExcludeAuthors,
		Log:             a.log,
	}
	return n.NormalizeAll(repos), nil
}

func (a *app) obligations(prs []timeline.PullRequest) ([]review.Obligation, error) {
	cals, err := a.cfg.Calendars(a.loc)
	if err != nil {
		return nil, err
	}
	t := &review.Tracker{
		Target:    a.cfg.TargetReviewTime,
		Calendars: cals,
		Cutoff:    a.now(),
		Log:       a.log,
	}
	obligations := t.BuildAll(prs)
	a.log.Info("built review obligations", zap.Int("pull_requests", len(prs)), zap.Int("obligations", len(obligations)))
	return obligations, nil
}

// writeOutput writes to path, creating parent directories, or to stdout
// when path is "-".
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
