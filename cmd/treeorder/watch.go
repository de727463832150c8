package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"treeorder/internal/watch"

	"github.com/spf13/cobra"
)

// newWatchCmd creates the watch command
func newWatchCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the stored order in step with the vault",
		Long: `Watch the vault for files being created, renamed and deleted and update
the stored order as they happen. Edits to the settings file made by other
programs are picked up too. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := watchContext(cmd.Context())
			defer stop()

			return withSession(cmd, func(s *session) error {
				daemon, err := watch.NewDaemon(cfg, s.vault, s.engine)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !quiet {
					daemon.SetCallback(func(ev watch.Event) {
						name := ev.Path
						if id, err := s.vault.IDFor(ev.Path); err == nil {
							name = id
						}
						if ev.Op == watch.Renamed {
							if old, err := s.vault.IDFor(ev.OldPath); err == nil {
								name = old + " -> " + name
							}
						}
						fmt.Fprintf(out, "%s %-8s %s\n", time.Now().Format("15:04:05"), ev.Op, name)
					})
				}

				fmt.Fprintln(out, infoText("Watching "+s.vault.Root()+". Press Ctrl+C to stop."))
				if err := daemon.Run(ctx); err != nil {
					return err
				}

				st := daemon.Status()
				fmt.Fprintln(out, successText(fmt.Sprintf("Stopped after %d events and %d settings reloads", st.EventsProcessed, st.Reloads)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print each change")
	return cmd
}

// watchContext bounds the watch loop. Tests replace it to stop the daemon.
var watchContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
