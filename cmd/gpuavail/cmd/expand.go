package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dm/gpuavail/internal/nodeset"
)

func newExpandCmd() *cobra.Command {
	var count bool
	cmd := &cobra.Command{
		Use:   "expand <range>...",
		Short: "Print the node names of range expressions",
		Example: `  gpuavail expand 'hpc3-gpu-16-[00-07]'
  gpuavail expand --count 'hpc3-gpu-17-[02-04]' 'hpc3-gpu-l54-[00,03-09]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := nodeset.ParseAll(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, spec := range specs {
				if count {
					fmt.Fprintf(out, "%s\t%d\n", spec.Expr, spec.Len())
					continue
				}
				for _, name := range spec.Expand() {
					fmt.Fprintln(out, name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&count, "count", "c", false, "print the number of nodes per range instead of names")
	return cmd
}
