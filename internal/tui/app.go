package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/gpuavail/internal/engine"
	"github.com/dm/gpuavail/internal/model"
	"github.com/dm/gpuavail/internal/nodeset"
)

// Fallback screen size used until the first tea.WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Config selects what the live view sweeps and how often.
type Config struct {
	Specs    []nodeset.Spec
	Interval time.Duration
	GPUOnly  bool
}

// App is the root Bubble Tea model for the live view.
type App struct {
	sweeper *engine.Sweeper
	cfg     Config

	// ctx scopes every sweep; cancel is called on quit so an in-flight
	// scontrol invocation is killed.
	ctx    context.Context
	cancel context.CancelFunc

	// Sweep state
	fetching    bool // true while a sweepCmd goroutine is in-flight
	gen         int  // bumped on every startSweep; only ticks of gen count
	snapshot    *model.Snapshot
	rows        []model.NodeStatus
	totals      model.ClusterTotals
	progress    RangeDoneMsg
	lastErr     error
	lastUpdated time.Time

	// Layout
	width, height int

	// UI state
	showHelp bool
}

// NewApp creates a new App that sweeps with s until ctx is cancelled or the
// user quits.
func NewApp(ctx context.Context, s *engine.Sweeper, cfg Config) *App {
	ctx, cancel := context.WithCancel(ctx)
	return &App{
		sweeper:  s,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		fetching: true, // Init() always issues an immediate sweepCmd
	}
}

// Init implements tea.Model. Starts the first sweep immediately on launch.
func (app *App) Init() tea.Cmd {
	return sweepCmd(app.ctx, app.sweeper, app.cfg)
}

// Update implements tea.Model. It is the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case SweepMsg:
		app.fetching = false
		app.snapshot = msg.Snapshot
		app.rows = msg.Rows
		app.totals = msg.Totals
		app.lastErr = nil
		app.lastUpdated = msg.Snapshot.FinishedAt
		app.progress = RangeDoneMsg{}
		return app, tickCmd(app.cfg.Interval, app.gen)

	case SweepErrorMsg:
		app.fetching = false
		app.lastErr = msg.Err
		app.progress = RangeDoneMsg{}
		if app.ctx.Err() != nil {
			return app, nil
		}
		return app, tickCmd(app.cfg.Interval, app.gen)

	case RangeDoneMsg:
		if app.fetching {
			app.progress = msg
		}

	case TickMsg:
		if msg.Gen != app.gen {
			return app, nil
		}
		return app, app.startSweep()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			app.cancel()
			return app, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return app, app.startSweep()
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		}
	}

	return app, nil
}

// startSweep begins a sweep unless one is already running or the app is
// shutting down. A stale tick or refresh while sweeping is a no-op.
func (app *App) startSweep() tea.Cmd {
	if app.fetching || app.ctx.Err() != nil {
		return nil
	}
	app.fetching = true
	app.gen++
	app.progress = RangeDoneMsg{}
	return sweepCmd(app.ctx, app.sweeper, app.cfg)
}

// View implements tea.Model. Renders the header block, as many rows as fit
// and the status line on the last screen line.
func (app *App) View() string {
	width, height := app.size()

	lines := renderHeader(width)
	lines = append(lines, renderRows(app.rows, width, height)...)
	if len(lines) > height-1 {
		lines = lines[:max(height-1, 0)]
	}
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, renderStatus(app, width))

	return strings.Join(lines, "\n")
}

func (app *App) size() (int, int) {
	width, height := app.width, app.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

// rangeDone reports a finished range by its position in the sweep.
func rangeDone(spec nodeset.Spec, stats engine.RangeStats) RangeDoneMsg {
	return RangeDoneMsg{Prefix: spec.Prefix, Done: stats.Index + 1, Total: stats.Ranges}
}

// tickCmd schedules the next sweep of generation gen after duration d.
func tickCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}

// sweepCmd is a Bubble Tea command that runs one full sweep and returns a
// SweepMsg, or a SweepErrorMsg when ctx was cancelled part way.
func sweepCmd(ctx context.Context, s *engine.Sweeper, cfg Config) tea.Cmd {
	return func() tea.Msg {
		snap, err := s.Sweep(ctx, cfg.Specs)
		if err != nil {
			return SweepErrorMsg{Err: err, Snapshot: snap}
		}

		records := snap.Nodes
		if cfg.GPUOnly {
			records = engine.FilterGPUNodes(records)
		}
		rows := engine.SortByGPUModel(records)
		return SweepMsg{
			Snapshot: snap,
			Rows:     rows,
			Totals:   engine.CalcTotals(rows),
		}
	}
}
