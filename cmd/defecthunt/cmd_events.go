package main

import (
	"strings"

	"digital.vasic.defecthunt/pkg/httpclient"

	"github.com/spf13/cobra"
)

func newEventsCmd(current func() *app) *cobra.Command {
	var (
		server  string
		learner string
		stats   bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Fetch recorded events or counters from a running watch server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if server == "" {
				server = "http://" + localAddr(a.settings.ListenAddr)
			}
			client := httpclient.NewAPIClient(server,
				httpclient.WithTimeout(a.settings.StoreTimeout))

			if stats {
				s, err := client.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), s)
			}
			events, err := client.Events(cmd.Context(), learner)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "event server URL (default derived from DEFECTHUNT_LISTEN)")
	cmd.Flags().StringVar(&learner, "learner", "", "only events of this learner")
	cmd.Flags().BoolVar(&stats, "stats", false, "print counters instead of events")
	return cmd
}

// localAddr turns a listen address such as ":8088" into one a
// client can dial.
func localAddr(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "localhost" + listen
	}
	return listen
}
