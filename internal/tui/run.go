package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/dm/gpuavail/internal/engine"
	"github.com/dm/gpuavail/internal/nodeset"
)

// ErrNoTerminal is returned when the live view is started without an
// interactive terminal on stdin and stdout.
var ErrNoTerminal = errors.New("live view requires an interactive terminal")

// CheckTerminal returns ErrNoTerminal unless both in and out are terminals.
func CheckTerminal(in, out *os.File) error {
	for _, f := range []*os.File{in, out} {
		if f == nil {
			return ErrNoTerminal
		}
		fd := f.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return ErrNoTerminal
		}
	}
	return nil
}

// Run starts the live view on the alternate screen and blocks until the user
// quits or ctx is cancelled. The terminal is restored in every case.
// Cancellation of ctx (e.g. SIGINT) is a normal exit.
func Run(ctx context.Context, app *App, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(app, opts...)

	log := app.sweeper.Logger
	app.sweeper.OnRangeDone = func(spec nodeset.Spec, stats engine.RangeStats) {
		if log != nil {
			log.Info(spec.Prefix+" done", "range", spec.Expr, "nodes", stats.Nodes, "failed", stats.Failed, "elapsed", stats.Elapsed)
		}
		p.Send(rangeDone(spec, stats))
	}

	_, err := p.Run()
	app.cancel()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
