// Package cmd implements the gpuavail command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dm/gpuavail/internal/client"
	"github.com/dm/gpuavail/internal/config"
	"github.com/dm/gpuavail/internal/engine"
	"github.com/dm/gpuavail/internal/log"
	"github.com/dm/gpuavail/internal/model"
	"github.com/dm/gpuavail/internal/report"
	"github.com/dm/gpuavail/internal/tui"
)

const programName = "gpuavail"

// options carries state shared by every command of one invocation.
type options struct {
	v       *viper.Viper
	cfgFile string
	noLive  bool
}

// session is the resolved configuration and logger of a running command.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	closeLog func()
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd returns the root command. Without a subcommand it sweeps once,
// saves the CSV snapshot and then opens the live view.
func NewRootCmd() *cobra.Command {
	o := &options{v: viper.New()}
	config.SetDefaults(o.v)

	root := &cobra.Command{
		Use:   programName,
		Short: "Report CPU, memory and GPU availability of Slurm nodes",
		Long: `gpuavail queries "scontrol show node" for every node of the configured
ranges, saves the result as a CSV snapshot and shows a live view sorted by
GPU model. It never changes cluster state.`,
		Version:      versionString(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.BindEnv(o.v)
			return config.ReadFile(o.v, o.cfgFile)
		},
		RunE: o.runDefault,
	}
	root.SetVersionTemplate(version.Print(programName) + "\n")

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (default is $HOME/.gpuavail/config.yaml)")
	config.AddFlags(pf)
	cobra.CheckErr(config.BindFlags(o.v, pf))

	root.Flags().BoolVar(&o.noLive, "no-live", false, "exit after writing the CSV snapshot")

	root.AddCommand(
		newSnapshotCmd(o),
		newLiveCmd(o),
		newServeCmd(o),
		newExpandCmd(),
	)
	return root
}

func versionString() string {
	if version.Version == "" {
		return "devel"
	}
	return version.Version
}

// start resolves the configuration and builds the logger. The live view
// owns the terminal, so fileLog forces log output to the log file.
func (o *options) start(fileLog bool) (*session, error) {
	cfg, err := config.Load(o.v)
	if err != nil {
		return nil, err
	}
	output := cfg.Log.Output
	if fileLog {
		output = "file"
	}
	logger, closeLog, err := log.NewLogger(output, cfg.Log.Format, cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("unable to create logger: %w", err)
	}
	return &session{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

// sweeper builds a Sweeper over scontrol, or over the fixture directory when
// one is configured.
func (s *session) sweeper() (*engine.Sweeper, error) {
	var (
		r   client.NodeReporter
		err error
	)
	if s.cfg.Fixtures != "" {
		r, err = client.NewDirClient(s.cfg.Fixtures)
	} else {
		r, err = client.NewScontrolClient(client.ClientConfig{
			Scontrol:       s.cfg.Scontrol,
			RequestTimeout: s.cfg.Timeout,
		})
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("node reporter ready", "source", r.Source(), "nodes", engine.TotalNodes(s.cfg.Specs))
	return engine.NewSweeper(r, s.logger), nil
}

// records applies the gpu-only filter to snap.
func (s *session) records(snap *model.Snapshot) []model.NodeStatus {
	if s.cfg.GPUOnly {
		return engine.FilterGPUNodes(snap.Nodes)
	}
	return snap.Nodes
}

// persist writes the CSV snapshot. A failed write is reported but never
// stops the caller.
func (s *session) persist(w, errw io.Writer, snap *model.Snapshot) {
	if s.cfg.Output == "" {
		return
	}
	if err := report.WriteCSVFile(s.cfg.Output, s.records(snap), s.cfg.Columns); err != nil {
		s.logger.Error("unable to save node information", "err", err)
		fmt.Fprintf(errw, "An error occurred while writing to CSV: %v\n", err)
		return
	}
	s.logger.Info("snapshot saved", "path", s.cfg.Output, "nodes", len(snap.Nodes), "failed", len(snap.Failures))
	fmt.Fprintf(w, "Node information saved to %s\n", s.cfg.Output)
}

func (s *session) liveConfig() tui.Config {
	return tui.Config{
		Specs:    s.cfg.Specs,
		Interval: s.cfg.Interval,
		GPUOnly:  s.cfg.GPUOnly,
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (o *options) runDefault(cmd *cobra.Command, _ []string) error {
	live := !o.noLive
	s, err := o.start(live)
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
	s.persist(cmd.OutOrStdout(), cmd.ErrOrStderr(), snap)

	if !live {
		return nil
	}
	if err := tui.CheckTerminal(os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("%w (use --no-live or the snapshot command)", err)
	}
	return tui.Run(ctx, tui.NewApp(ctx, sw, s.liveConfig()))
}
