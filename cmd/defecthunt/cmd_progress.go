package main

import (
	"fmt"

	"digital.vasic.defecthunt/pkg/engine"
	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/report"

	"github.com/spf13/cobra"
)

func newReporter(format string, a *app) (report.Reporter, error) {
	switch format {
	case "json":
		return report.NewJSONReporter(true), nil
	case "markdown", "md":
		return report.NewMarkdownReporter(report.NamesFrom(a.snapshot.Registry)), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func newProgressCmd(current func() *app) *cobra.Command {
	var (
		format     string
		summaryDir string
		reevaluate bool
	)

	cmd := &cobra.Command{
		Use:   "progress <learner-id...>",
		Short: "Show completed challenges and badges for learners",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := newReporter(format, a)
			if err != nil {
				return err
			}

			all := make([]engine.Progress, 0, len(args))
			for _, learner := range args {
				if reevaluate {
					awards, err := eng.Reevaluate(cmd.Context(), learner)
					if err != nil {
						return err
					}
					a.log.Info("badges re-evaluated",
						logging.LearnerField(learner),
						logging.IntField("awarded", len(awards)),
					)
				}
				p, err := eng.Progress(cmd.Context(), learner)
				if err != nil {
					return err
				}
				if err := rep.WriteReport(cmd.OutOrStdout(), &p); err != nil {
					return err
				}
				all = append(all, p)
			}

			if summaryDir != "" {
				s := report.BuildMasterSummary(a.snapshot.Registry, a.snapshot.Catalog, all)
				if err := report.SaveMasterSummary(s, summaryDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or markdown")
	cmd.Flags().StringVar(&summaryDir, "summary-dir", "", "also write a cohort summary to this directory")
	cmd.Flags().BoolVar(&reevaluate, "reevaluate", false, "re-run badge evaluation before reporting")
	return cmd
}
