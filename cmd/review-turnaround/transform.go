package main

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reillywatson/reviewturnaround/internal/report"
)

type transformOptions struct {
	dataDir  string
	output   string
	timezone string
	daysOld  int
}

func newTransformCmd(a *app) *cobra.Command {
	opts := &transformOptions{}
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Classify every review request as on_time, late or no_response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("data-dir") {
				opts.dataDir = a.cfg.DataDir
			}
			if !flags.Changed("days-old") {
				opts.daysOld = a.cfg.DaysOld
			}
			if flags.Changed("tz") {
				if err := a.setTimezone(opts.timezone); err != nil {
					return err
				}
			}
			return a.transform(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory of downloaded timelines (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file, - for stdout (default <data_dir>/<transformed_file>)")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "Timezone for working hours (default from config)")
	cmd.Flags().IntVar(&opts.daysOld, "days-old", 0, "Ignore pull requests created more than this many days ago (default from config)")
	return cmd
}

func (a *app) transform(cmd *cobra.Command, opts *transformOptions) error {
	prs, err := a.pullRequests(opts.dataDir, nil, days(opts.daysOld))
	if err != nil {
		return err
	}
	obligations, err := a.obligations(prs)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = filepath.Join(opts.dataDir, a.cfg.TransformedFile)
	}
	if err := writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		return report.WriteTransformed(w, obligations, a.cfg.IgnoreReviewers, a.loc)
	}); err != nil {
		return err
	}
	a.log.Info("wrote transformed reviews", zap.String("output", output))
	return nil
}
