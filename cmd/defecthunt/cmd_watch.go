package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/notify"

	"github.com/spf13/cobra"
)

func newWatchCmd(current func() *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Serve reward and badge events over WebSocket",
		Long: `Starts an HTTP server exposing /ws (live events), /events,
/stats and /health. With the Redis store, events published by
other defecthunt processes on the shared channel are relayed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if listen == "" {
				listen = a.settings.ListenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := a.openStore(ctx); err != nil {
				return err
			}

			stream := notify.NewStream(notify.WithStreamLogger(a.log))
			server := notify.NewServer(listen, stream, a.hub)

			if a.redis != nil {
				pub := notify.NewRedisPublisher(a.redis, a.settings.RedisChannel,
					notify.WithPublisherLogger(a.log))
				if err := pub.Subscribe(ctx, a.hub); err != nil {
					return err
				}
				a.log.Info("relaying events", logging.StringField("channel", pub.Channel()))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", listen)

			err := server.Start(ctx)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := server.Stop(shutdownCtx); serr != nil && err == nil {
				err = serr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from DEFECTHUNT_LISTEN)")
	return cmd
}
