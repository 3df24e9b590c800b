// Package exporter publishes sweep results as Prometheus metrics and a small
// JSON API.
package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"golang.org/x/sync/errgroup"

	"github.com/dm/gpuavail/internal/engine"
	"github.com/dm/gpuavail/internal/model"
	"github.com/dm/gpuavail/internal/nodeset"
	"github.com/dm/gpuavail/internal/report"
)

const namespace = "gpuavail"

// Label values of the state label.
const (
	stateTotal     = "total"
	stateAllocated = "allocated"
	stateAvailable = "available"
)

// Config selects what the exporter sweeps and where it listens.
type Config struct {
	Specs    []nodeset.Spec
	Interval time.Duration
	GPUOnly  bool
	Listen   string
}

// Exporter sweeps the cluster on a fixed interval and serves the latest
// results. It owns a private registry so tests and embedders never collide
// with the global one.
type Exporter struct {
	sweeper *engine.Sweeper
	cfg     Config
	logger  *slog.Logger

	registry *prometheus.Registry

	cpus   *prometheus.GaugeVec
	memory *prometheus.GaugeVec
	gpus   *prometheus.GaugeVec

	sweepDuration prometheus.Gauge
	sweepNodes    prometheus.Gauge
	sweepFailures prometheus.Gauge
	lastSweep     prometheus.Gauge

	// mu guards latest and the gauges above; Update holds it for writing
	// across Reset and repopulate, Gather for reading.
	mu     sync.RWMutex
	latest *report.Document
}

// New creates an Exporter that sweeps with s.
func New(s *engine.Sweeper, cfg Config, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		sweeper:  s,
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	e.cpus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "node_cpus",
		Help:      "CPUs per node by allocation state.",
	}, []string{"node", "state"})
	e.memory = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "node_memory_gb",
		Help:      "Memory per node in GB by allocation state.",
	}, []string{"node", "state"})
	e.gpus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "node_gpus",
		Help:      "GPUs per node by model and allocation state.",
	}, []string{"node", "model", "state"})

	e.sweepDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Wall time of the last completed sweep.",
	})
	e.sweepNodes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sweep_nodes",
		Help:      "Nodes that reported in the last completed sweep.",
	})
	e.sweepFailures = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sweep_failures",
		Help:      "Nodes that could not be queried in the last completed sweep.",
	})
	e.lastSweep = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sweep_timestamp_seconds",
		Help:      "Unix time at which the last sweep finished.",
	})

	e.registry.MustRegister(
		e.cpus, e.memory, e.gpus,
		e.sweepDuration, e.sweepNodes, e.sweepFailures, e.lastSweep,
		versioncollector.NewCollector(namespace),
	)
	return e
}

// Registry returns the exporter's private registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Gather implements prometheus.Gatherer. A scrape sees the series of one
// whole Update, never a partial one.
func (e *Exporter) Gather() ([]*dto.MetricFamily, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Gather()
}

// Update replaces every per-node series with the contents of snap. Nodes
// missing from snap disappear from the output.
func (e *Exporter) Update(snap *model.Snapshot) {
	records := snap.Nodes
	if e.cfg.GPUOnly {
		records = engine.FilterGPUNodes(records)
	}
	totals := engine.CalcTotals(records)
	doc := report.NewDocument(snap, engine.SortByGPUModel(records), totals)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cpus.Reset()
	e.memory.Reset()
	e.gpus.Reset()
	for _, n := range records {
		e.cpus.WithLabelValues(n.Node, stateTotal).Set(float64(n.TotalCPUs))
		e.cpus.WithLabelValues(n.Node, stateAllocated).Set(float64(n.AllocatedCPUs))
		e.cpus.WithLabelValues(n.Node, stateAvailable).Set(float64(n.AvailableCPUs))

		e.memory.WithLabelValues(n.Node, stateTotal).Set(n.RealMemoryGB)
		e.memory.WithLabelValues(n.Node, stateAllocated).Set(n.AllocatedMemoryGB)
		e.memory.WithLabelValues(n.Node, stateAvailable).Set(n.AvailableMemoryGB)

		if n.HasGPU() {
			e.gpus.WithLabelValues(n.Node, n.GPUModel, stateTotal).Set(float64(n.TotalGPUs))
			e.gpus.WithLabelValues(n.Node, n.GPUModel, stateAllocated).Set(float64(n.AllocatedGPUs))
			e.gpus.WithLabelValues(n.Node, n.GPUModel, stateAvailable).Set(float64(n.AvailableGPUs))
		}
	}

	e.sweepDuration.Set(snap.Duration().Seconds())
	e.sweepNodes.Set(float64(len(records)))
	e.sweepFailures.Set(float64(len(snap.Failures)))
	e.lastSweep.Set(float64(snap.FinishedAt.Unix()))
	e.latest = &doc
}

// Handler returns the HTTP routes served by the exporter.
func (e *Exporter) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(e, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", e.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/snapshot", e.handleSnapshot).Methods(http.MethodGet)
	return r
}

func (e *Exporter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (e *Exporter) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	e.mu.RLock()
	doc := e.latest
	e.mu.RUnlock()

	if doc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no sweep has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", e.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", e.cfg.Listen, err)
	}
	return e.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln alongside the sweep loop. Sweeps stay
// sequential: the next one starts Interval after the previous one finished.
// It returns nil once ctx is cancelled and the server has shut down.
func (e *Exporter) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           e.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.logger.Info("exporter listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("exporter server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		e.sweepLoop(gctx)
		return nil
	})

	return g.Wait()
}

func (e *Exporter) sweepLoop(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		snap, err := e.sweeper.Sweep(ctx, e.cfg.Specs)
		if err != nil {
			return
		}
		e.Update(snap)
		e.logger.Info("sweep published", "nodes", len(snap.Nodes), "failed", len(snap.Failures), "elapsed", snap.Duration())
		timer.Reset(e.cfg.Interval)
	}
}
