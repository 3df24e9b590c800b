package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/gpuavail/internal/model"
)

func TestCalcTotals_Empty(t *testing.T) {
	tot := CalcTotals(nil)
	assert.Equal(t, model.ClusterTotals{}, tot)
}

func TestCalcTotals(t *testing.T) {
	records := []model.NodeStatus{
		ParseNodeStatus("a", "CPUTot=64 CPUAlloc=16 RealMemory=131072 AllocMem=32768 Gres=gpu:a100:4 AllocTRES=gres/gpu=2"),
		ParseNodeStatus("b", "CPUTot=32 CPUAlloc=32 RealMemory=65536 AllocMem=0 Gres=gpu:a100:4 AllocTRES=gres/gpu=4"),
		ParseNodeStatus("c", "CPUTot=40 CPUAlloc=0 Gres=gpu:V100:2"),
		ParseNodeStatus("d", "CPUTot=8 CPUAlloc=10"),
	}

	tot := CalcTotals(records)
	assert.Equal(t, 4, tot.Nodes)
	assert.Equal(t, 3, tot.GPUNodes)
	assert.Equal(t, 1, tot.Inconsistent)
	assert.Equal(t, 144, tot.TotalCPUs)
	assert.Equal(t, 58, tot.AllocatedCPUs)
	assert.Equal(t, 86, tot.AvailableCPUs)
	assert.Equal(t, 192.0, tot.RealMemoryGB)
	assert.Equal(t, 32.0, tot.AllocatedMemoryGB)
	assert.Equal(t, 160.0, tot.AvailableMemoryGB)
	assert.Equal(t, 10, tot.TotalGPUs)
	assert.Equal(t, 6, tot.AllocatedGPUs)
	assert.Equal(t, 4, tot.AvailableGPUs)

	require.Len(t, tot.ByModel, 2)
	assert.Equal(t, model.GPUModelTotals{Model: "V100", Nodes: 1, Total: 2, Allocated: 0, Available: 2}, tot.ByModel[0])
	assert.Equal(t, model.GPUModelTotals{Model: "a100", Nodes: 2, Total: 8, Allocated: 6, Available: 2}, tot.ByModel[1])
}
