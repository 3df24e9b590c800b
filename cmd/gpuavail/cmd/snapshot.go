package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dm/gpuavail/internal/engine"
	"github.com/dm/gpuavail/internal/report"
)

func newSnapshotCmd(o *options) *cobra.Command {
	var (
		format string
		byGPU  bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Sweep once, save the CSV snapshot and print a report",
		Long: `Query every configured node once, save the CSV snapshot (unless --output is
empty) and print the result to stdout. Never needs a terminal, so it is the
command to use from cron or scripts.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return report.ValidateFormat(format)
		},
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
			snap, err := sw.Sweep(ctx, s.cfg.Specs)
			if err != nil {
				return fmt.Errorf("sweep interrupted: %w", err)
			}
			s.persist(cmd.ErrOrStderr(), cmd.ErrOrStderr(), snap)

			records := s.records(snap)
			if byGPU {
				records = engine.SortByGPUModel(records)
			}
			return report.Print(cmd.OutOrStdout(), format, snap, records, s.cfg.Columns, engine.CalcTotals(records))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatTable, "report format: "+strings.Join(report.Formats, ", "))
	cmd.Flags().BoolVar(&byGPU, "sort-gpu", false, "sort the report by GPU model")
	return cmd
}
