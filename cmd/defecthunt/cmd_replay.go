package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/report"
	"digital.vasic.defecthunt/pkg/runner"

	"github.com/spf13/cobra"
)

func newReplayCmd(current func() *app) *cobra.Command {
	var (
		concurrency int
		stopOnError bool
		historyPath string
	)

	cmd := &cobra.Command{
		Use:   "replay <file|->",
		Short: "Replay a log of submissions (JSON array or JSON Lines)",
		Long: `Replays submissions through the engine. Submissions of one
learner run in file order; different learners run in parallel.
Prints a summary of the outcomes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("replay: %w", err)
				}
				defer f.Close()
				in = f
			}
			subs, err := runner.ReadSubmissions(in)
			if err != nil {
				return err
			}

			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			if concurrency <= 0 {
				concurrency = a.settings.ReplayConcurrency
			}
			opts := []runner.Option{
				runner.WithConcurrency(concurrency),
				runner.WithLogger(a.log),
			}
			if stopOnError {
				opts = append(opts, runner.WithStopOnError())
			}

			results, err := runner.New(eng, opts...).Replay(cmd.Context(), subs)
			if historyPath != "" {
				if herr := report.AppendToHistory(historyPath, results, time.Now()); herr != nil {
					a.log.Error("history not written", logging.ErrorField(herr))
				}
			}

			summary := runner.Summarize(results)
			a.log.Info("replay finished",
				logging.IntField("total", summary.Total),
				logging.IntField("passed", summary.Passed),
				logging.IntField("errors", summary.Errors),
			)
			if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "learners replayed in parallel (default from DEFECTHUNT_REPLAY_CONCURRENCY)")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "cancel remaining submissions after the first error")
	cmd.Flags().StringVar(&historyPath, "history", "", "append one JSON line per submission to this file")
	return cmd
}
