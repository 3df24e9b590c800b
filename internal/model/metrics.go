package model

// GPUModelTotals aggregates GPU counts for one GPU model across the cluster.
type GPUModelTotals struct {
	Model     string `json:"model" yaml:"model"`
	Nodes     int    `json:"nodes" yaml:"nodes"`
	Total     int    `json:"total" yaml:"total"`
	Allocated int    `json:"allocated" yaml:"allocated"`
	Available int    `json:"available" yaml:"available"`
}

// ClusterTotals holds cluster-wide sums over one sweep's records.
type ClusterTotals struct {
	Nodes        int `json:"nodes" yaml:"nodes"`
	GPUNodes     int `json:"gpu_nodes" yaml:"gpu_nodes"`
	Inconsistent int `json:"inconsistent" yaml:"inconsistent"` // nodes with a negative availability

	TotalCPUs     int `json:"total_cpus" yaml:"total_cpus"`
	AllocatedCPUs int `json:"allocated_cpus" yaml:"allocated_cpus"`
	AvailableCPUs int `json:"available_cpus" yaml:"available_cpus"`

	RealMemoryGB      float64 `json:"real_memory_gb" yaml:"real_memory_gb"`
	AllocatedMemoryGB float64 `json:"allocated_memory_gb" yaml:"allocated_memory_gb"`
	AvailableMemoryGB float64 `json:"available_memory_gb" yaml:"available_memory_gb"`

	TotalGPUs     int `json:"total_gpus" yaml:"total_gpus"`
	AllocatedGPUs int `json:"allocated_gpus" yaml:"allocated_gpus"`
	AvailableGPUs int `json:"available_gpus" yaml:"available_gpus"`

	ByModel []GPUModelTotals `json:"by_model,omitempty" yaml:"by_model,omitempty"`
}
