package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dm/gpuavail/internal/tui"
)

func newLiveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Show the live availability view without saving a snapshot",
		Long: `Open the full-screen view sorted by GPU model and refresh it every
--interval. Press q to quit, r to sweep immediately and ? for help. Log
output always goes to --log-file while the view is open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tui.CheckTerminal(os.Stdin, os.Stdout); err != nil {
				return err
			}
			s, err := o.start(true)
			if err != nil {
				return err
			}
			defer s.closeLog()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			sw, err := s.sweeper()
			if err != nil {
				return err
			}
			return tui.Run(ctx, tui.NewApp(ctx, sw, s.liveConfig()))
		},
	}
}
