package engine

import (
	"sort"

	"github.com/dm/gpuavail/internal/model"
)

// SortByGPUModel returns a copy of records sorted ascending by GPU model.
// The sort is stable: nodes with the same model keep their sweep order.
func SortByGPUModel(records []model.NodeStatus) []model.NodeStatus {
	out := make([]model.NodeStatus, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GPUModel < out[j].GPUModel
	})
	return out
}

// FilterGPUNodes returns the records that declare a GPU generic resource.
func FilterGPUNodes(records []model.NodeStatus) []model.NodeStatus {
	out := records[:0:0]
	for _, r := range records {
		if r.HasGPU() {
			out = append(out, r)
		}
	}
	return out
}
