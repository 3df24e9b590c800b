package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dm/gpuavail/internal/model"
)

func fixtureRecords() []model.NodeStatus {
	return []model.NodeStatus{
		{
			Node: "hpc3-gpu-16-00", TotalCPUs: 40, AllocatedCPUs: 16, AvailableCPUs: 24,
			RealMemoryGB: 192, AllocatedMemoryGB: 64, AvailableMemoryGB: 128,
			GPUModel: "V100", TotalGPUs: 4, AllocatedGPUs: 3, AvailableGPUs: 1,
		},
		{
			Node: "hpc3-14-00", TotalCPUs: 64, AllocatedCPUs: 0, AvailableCPUs: 64,
			RealMemoryGB: 0.5, AvailableMemoryGB: 0.5, GPUModel: model.NoGPU,
		},
	}
}

func fixtureSnapshot() *model.Snapshot {
	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	return &model.Snapshot{
		Nodes:      fixtureRecords(),
		Failures:   []model.NodeFailure{{Node: "hpc3-gpu-16-01", Error: "exit status 1"}},
		StartedAt:  start,
		FinishedAt: start.Add(12 * time.Second),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtureRecords(), model.AllColumns))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, model.Headers(model.AllColumns), rows[0])
	assert.Equal(t, []string{"hpc3-gpu-16-00", "40", "16", "24", "192.0", "64.0", "128.0", "V100", "4", "3", "1"}, rows[1])
	assert.Equal(t, []string{"hpc3-14-00", "64", "0", "64", "0.5", "0.0", "0.5", "None", "0", "0", "0"}, rows[2])
}

func TestWriteCSV_KeepsRecordOrder(t *testing.T) {
	records := fixtureRecords()
	records[0], records[1] = records[1], records[0]

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, model.AllColumns))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "hpc3-14-00,"))
	assert.True(t, strings.HasPrefix(lines[2], "hpc3-gpu-16-00,"))
}

func TestWriteCSV_Projection(t *testing.T) {
	cols, err := model.ParseColumns("node,gpu_model")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtureRecords()[:1], cols))
	assert.Equal(t, "Node,GPU Model\nhpc3-gpu-16-00,V100\n", buf.String())
}

func TestWriteCSV_EmptySnapshotWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, model.AllColumns))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node_info.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteCSVFile(path, fixtureRecords(), model.AllColumns))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "Node,Total CPUs,"))
	assert.NotContains(t, string(b), "stale")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteCSVFile_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "node_info.csv")
	err := WriteCSVFile(path, fixtureRecords(), model.AllColumns)
	require.Error(t, err)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, path, we.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrint_Table(t *testing.T) {
	snap := fixtureSnapshot()
	totals := model.ClusterTotals{
		Nodes: 2, TotalCPUs: 104, AvailableCPUs: 88, TotalGPUs: 4, AvailableGPUs: 1,
		RealMemoryGB: 192.5, AvailableMemoryGB: 128.5, Inconsistent: 1,
		ByModel: []model.GPUModelTotals{{Model: "V100", Nodes: 1, Total: 4, Allocated: 3, Available: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatTable, snap, snap.Nodes, model.AllColumns, totals))
	out := buf.String()
	assert.Contains(t, out, "hpc3-gpu-16-00")
	assert.Contains(t, out, "hpc3-14-00")
	assert.Contains(t, out, "CPUs available: 88/104")
	assert.Contains(t, out, "Memory available: 128.50/192.50 GB")
	assert.Contains(t, out, "GPUs available: 1/4")
	assert.Contains(t, out, "1/4 available on 1 nodes")
	assert.Contains(t, out, "Warning: 1 node(s)")
	assert.Contains(t, out, "hpc3-gpu-16-01: exit status 1")
}

func TestPrint_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatTable, &model.Snapshot{}, nil, model.AllColumns, model.ClusterTotals{}))
	assert.Contains(t, buf.String(), "No nodes reported")
}

func TestPrint_JSON(t *testing.T) {
	snap := fixtureSnapshot()
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, snap, snap.Nodes, model.AllColumns, model.ClusterTotals{Nodes: 2}))

	var doc struct {
		StartedAt string              `json:"started_at"`
		Elapsed   string              `json:"elapsed"`
		Nodes     []model.NodeStatus  `json:"nodes"`
		Failures  []model.NodeFailure `json:"failures"`
		Totals    model.ClusterTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2026-10-16T09:00:00Z", doc.StartedAt)
	assert.Equal(t, "12s", doc.Elapsed)
	assert.Equal(t, snap.Nodes, doc.Nodes)
	assert.Equal(t, snap.Failures, doc.Failures)
	assert.Equal(t, 2, doc.Totals.Nodes)
}

func TestPrint_YAML(t *testing.T) {
	snap := fixtureSnapshot()
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatYAML, snap, snap.Nodes, model.AllColumns, model.ClusterTotals{}))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	nodes, ok := doc["nodes"].([]any)
	require.True(t, ok)
	assert.Len(t, nodes, 2)
	assert.Contains(t, buf.String(), "gpu_model: V100")
}

func TestPrint_NoneAndUnknown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatNone, nil, fixtureRecords(), model.AllColumns, model.ClusterTotals{}))
	assert.Empty(t, buf.String())

	assert.Error(t, Print(&buf, "xml", nil, nil, model.AllColumns, model.ClusterTotals{}))
	assert.NoError(t, ValidateFormat("yaml"))
	assert.Error(t, ValidateFormat("xml"))
}
