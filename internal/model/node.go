package model

// NoGPU is the GPUModel reported for nodes without a GPU generic resource.
const NoGPU = "None"

// NodeStatus is one node's resource allocation as reported by the resource
// manager in a single sweep. It is built once and never mutated.
type NodeStatus struct {
	Node string `json:"node" yaml:"node"`

	TotalCPUs     int `json:"total_cpus" yaml:"total_cpus"`
	AllocatedCPUs int `json:"allocated_cpus" yaml:"allocated_cpus"`
	AvailableCPUs int `json:"available_cpus" yaml:"available_cpus"` // may be negative

	RealMemoryGB      float64 `json:"real_memory_gb" yaml:"real_memory_gb"`
	AllocatedMemoryGB float64 `json:"allocated_memory_gb" yaml:"allocated_memory_gb"`
	AvailableMemoryGB float64 `json:"available_memory_gb" yaml:"available_memory_gb"` // may be negative

	GPUModel      string `json:"gpu_model" yaml:"gpu_model"`
	TotalGPUs     int    `json:"total_gpus" yaml:"total_gpus"`
	AllocatedGPUs int    `json:"allocated_gpus" yaml:"allocated_gpus"`
	AvailableGPUs int    `json:"available_gpus" yaml:"available_gpus"` // may be negative
}

// HasGPU reports whether the node declared a GPU generic resource.
func (n NodeStatus) HasGPU() bool {
	return n.GPUModel != "" && n.GPUModel != NoGPU
}

// Inconsistent reports whether any derived availability is negative, which
// only happens when the resource manager reports more allocated than total.
func (n NodeStatus) Inconsistent() bool {
	return n.AvailableCPUs < 0 || n.AvailableMemoryGB < 0 || n.AvailableGPUs < 0
}
