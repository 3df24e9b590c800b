package exporter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/gpuavail/internal/engine"
	"github.com/dm/gpuavail/internal/model"
	"github.com/dm/gpuavail/internal/nodeset"
	"github.com/dm/gpuavail/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureSnapshot() *model.Snapshot {
	start := time.Unix(1_790_000_000, 0)
	return &model.Snapshot{
		Nodes: []model.NodeStatus{
			{
				Node: "gpu-a-00", TotalCPUs: 40, AllocatedCPUs: 8, AvailableCPUs: 32,
				RealMemoryGB: 192, AllocatedMemoryGB: 64, AvailableMemoryGB: 128,
				GPUModel: "V100", TotalGPUs: 4, AllocatedGPUs: 1, AvailableGPUs: 3,
			},
			{
				Node: "cpu-a-00", TotalCPUs: 64, AllocatedCPUs: 70, AvailableCPUs: -6,
				RealMemoryGB: 256, AvailableMemoryGB: 256, GPUModel: model.NoGPU,
			},
		},
		Failures:   []model.NodeFailure{{Node: "gpu-a-01", Error: "timeout"}},
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
}

func newTestExporter(cfg Config) *Exporter {
	s := &engine.Sweeper{
		Fetch: func(ctx context.Context, node string) (string, error) {
			return "CPUTot=16 CPUAlloc=4 RealMemory=65536 AllocMem=1024 Gres=gpu:T4:2 AllocTRES=cpu=4,gres/gpu=1", nil
		},
		Logger: discardLogger(),
	}
	return New(s, cfg, discardLogger())
}

func TestUpdate_SetsNodeGauges(t *testing.T) {
	e := newTestExporter(Config{})
	e.Update(fixtureSnapshot())

	assert.Equal(t, 32.0, testutil.ToFloat64(e.cpus.WithLabelValues("gpu-a-00", stateAvailable)))
	assert.Equal(t, -6.0, testutil.ToFloat64(e.cpus.WithLabelValues("cpu-a-00", stateAvailable)))
	assert.Equal(t, 128.0, testutil.ToFloat64(e.memory.WithLabelValues("gpu-a-00", stateAvailable)))
	assert.Equal(t, 4.0, testutil.ToFloat64(e.gpus.WithLabelValues("gpu-a-00", "V100", stateTotal)))
	assert.Equal(t, 3.0, testutil.ToFloat64(e.gpus.WithLabelValues("gpu-a-00", "V100", stateAvailable)))

	assert.Equal(t, 6, testutil.CollectAndCount(e.cpus))
	assert.Equal(t, 3, testutil.CollectAndCount(e.gpus), "nodes without GPUs export no GPU series")

	assert.Equal(t, 3.0, testutil.ToFloat64(e.sweepDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.sweepNodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.sweepFailures))
	assert.Equal(t, 1_790_000_003.0, testutil.ToFloat64(e.lastSweep))
}

func TestUpdate_DropsVanishedNodes(t *testing.T) {
	e := newTestExporter(Config{})
	e.Update(fixtureSnapshot())

	snap := fixtureSnapshot()
	snap.Nodes = snap.Nodes[1:]
	e.Update(snap)

	assert.Equal(t, 3, testutil.CollectAndCount(e.cpus))
	assert.Equal(t, 0, testutil.CollectAndCount(e.gpus))
}

func TestUpdate_GPUOnly(t *testing.T) {
	e := newTestExporter(Config{GPUOnly: true})
	e.Update(fixtureSnapshot())

	assert.Equal(t, 3, testutil.CollectAndCount(e.cpus))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.sweepNodes))
}

func TestGather_NeverSeesPartialUpdate(t *testing.T) {
	e := newTestExporter(Config{})
	e.Update(fixtureSnapshot())

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				e.Update(fixtureSnapshot())
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 200; i++ {
		families, err := e.Gather()
		require.NoError(t, err)
		series := map[string]int{}
		for _, mf := range families {
			series[mf.GetName()] = len(mf.GetMetric())
		}
		require.Equal(t, 6, series["gpuavail_node_cpus"], "gather %d", i)
		require.Equal(t, 6, series["gpuavail_node_memory_gb"], "gather %d", i)
		require.Equal(t, 3, series["gpuavail_node_gpus"], "gather %d", i)
	}
}

func TestHandler_Metrics(t *testing.T) {
	e := newTestExporter(Config{})
	e.Update(fixtureSnapshot())

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gpuavail_node_gpus{model="V100",node="gpu-a-00",state="available"} 3`)
	assert.Contains(t, body, "gpuavail_sweep_failures 1")
	assert.Contains(t, body, "gpuavail_build_info")
}

func TestHandler_Health(t *testing.T) {
	e := newTestExporter(Config{})
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_SnapshotBeforeFirstSweep(t *testing.T) {
	e := newTestExporter(Config{})
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no sweep")
}

func TestHandler_Snapshot(t *testing.T) {
	e := newTestExporter(Config{})
	e.Update(fixtureSnapshot())

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc report.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, model.NoGPU, doc.Nodes[0].GPUModel, "nodes sorted by GPU model")
	assert.Equal(t, "V100", doc.Nodes[1].GPUModel)
	assert.Equal(t, 1, doc.Totals.Inconsistent)
	assert.Equal(t, "3s", doc.Elapsed)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	e := newTestExporter(Config{})
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", strings.NewReader("")))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServe_SweepsAndShutsDown(t *testing.T) {
	specs, err := nodeset.ParseAll([]string{"t4-[00-01]"})
	require.NoError(t, err)
	e := newTestExporter(Config{Specs: specs, Interval: time.Hour})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/v1/snapshot"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(e.sweepNodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.gpus.WithLabelValues("t4-01", "T4", stateAvailable)))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	e := newTestExporter(Config{Listen: "256.0.0.1:bad"})
	assert.ErrorContains(t, e.Run(context.Background()), "listen on")
}
