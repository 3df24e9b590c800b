package engine

import (
	"sort"

	"github.com/dm/gpuavail/internal/model"
)

// CalcTotals sums every resource field across records and breaks GPU
// availability down per model. Negative per-node availability is summed as
// reported, not clamped; Inconsistent counts the nodes that have any.
func CalcTotals(records []model.NodeStatus) model.ClusterTotals {
	var t model.ClusterTotals
	byModel := make(map[string]*model.GPUModelTotals)

	for _, r := range records {
		t.Nodes++
		t.TotalCPUs += r.TotalCPUs
		t.AllocatedCPUs += r.AllocatedCPUs
		t.AvailableCPUs += r.AvailableCPUs
		t.RealMemoryGB += r.RealMemoryGB
		t.AllocatedMemoryGB += r.AllocatedMemoryGB
		t.AvailableMemoryGB += r.AvailableMemoryGB
		t.TotalGPUs += r.TotalGPUs
		t.AllocatedGPUs += r.AllocatedGPUs
		t.AvailableGPUs += r.AvailableGPUs
		if r.Inconsistent() {
			t.Inconsistent++
		}

		if !r.HasGPU() {
			continue
		}
		t.GPUNodes++
		m, ok := byModel[r.GPUModel]
		if !ok {
			m = &model.GPUModelTotals{Model: r.GPUModel}
			byModel[r.GPUModel] = m
		}
		m.Nodes++
		m.Total += r.TotalGPUs
		m.Allocated += r.AllocatedGPUs
		m.Available += r.AvailableGPUs
	}

	if len(byModel) > 0 {
		t.ByModel = make([]model.GPUModelTotals, 0, len(byModel))
		for _, m := range byModel {
			t.ByModel = append(t.ByModel, *m)
		}
		sort.Slice(t.ByModel, func(i, j int) bool {
			return t.ByModel[i].Model < t.ByModel[j].Model
		})
	}
	return t
}
