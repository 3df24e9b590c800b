package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dm/gpuavail/internal/exporter"
)

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a Prometheus exporter",
		Long: `Sweep every --interval and serve the latest results on --listen:

  GET /metrics           Prometheus metrics
  GET /healthz           liveness check
  GET /api/v1/snapshot   latest sweep as JSON (503 until the first sweep)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(false)
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
			e := exporter.New(sw, exporter.Config{
				Specs:    s.cfg.Specs,
				Interval: s.cfg.Interval,
				GPUOnly:  s.cfg.GPUOnly,
				Listen:   s.cfg.Listen,
			}, s.logger)
			return e.Run(ctx)
		},
	}
}
