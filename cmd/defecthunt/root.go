package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// cli is the root command plus the app it opens. Execute closes
// the app whether or not the command succeeded.
type cli struct {
	root *cobra.Command
	app  *app
}

func newCLI() *cli {
	c := &cli{}
	flags := &globalFlags{}

	c.root = &cobra.Command{
		Use:   "defecthunt",
		Short: "Free-text defect hunt challenges with rewards and badges",
		Long: `defecthunt judges learners' free-text defect reports against a
bank of challenges. A first correct answer reveals the challenge's
reward token and may earn badges.

Configuration comes from DEFECTHUNT_* environment variables and an
optional .env file; flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	pf := c.root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", "", "env file to load (default .env)")
	pf.StringVar(&flags.bankPath, "bank", "", "challenge bank file or directory")
	pf.StringVar(&flags.store, "store", "", "store backend: memory, sqlite, redis or postgres")
	pf.StringVar(&flags.sqlitePath, "sqlite-path", "", "SQLite database file")
	pf.StringVar(&flags.logFile, "log-file", "", "also append JSON log entries to this file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&flags.trace, "trace", false, "print OpenTelemetry spans to stderr")
	pf.StringVar(&flags.metricsOut, "metrics-out", "", "write counters in Prometheus text format to this file")

	current := func() *app { return c.app }
	c.root.AddCommand(
		newValidateCmd(current),
		newCheckCmd(current),
		newSubmitCmd(current),
		newProgressCmd(current),
		newReplayCmd(current),
		newWatchCmd(current),
		newEventsCmd(current),
	)
	return c
}

// Execute runs the command line and releases what it opened.
func (c *cli) Execute(ctx context.Context) error {
	err := c.root.ExecuteContext(ctx)
	if c.app != nil {
		err = errors.Join(err, c.app.close())
		c.app = nil
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
