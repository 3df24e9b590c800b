package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is one projected field of a NodeStatus, used by every tabular sink.
type Column struct {
	Key    string
	Header string
	Value  func(NodeStatus) string
}

func itoa(n int) string { return strconv.Itoa(n) }

// ftoa writes f in its shortest form, keeping a ".0" on whole numbers so
// memory columns always read as floats.
func ftoa(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// AllColumns lists every NodeStatus field in persisted order.
var AllColumns = []Column{
	{Key: "node", Header: "Node", Value: func(n NodeStatus) string { return n.Node }},
	{Key: "cpu_total", Header: "Total CPUs", Value: func(n NodeStatus) string { return itoa(n.TotalCPUs) }},
	{Key: "cpu_alloc", Header: "Allocated CPUs", Value: func(n NodeStatus) string { return itoa(n.AllocatedCPUs) }},
	{Key: "cpu_avail", Header: "Available CPUs", Value: func(n NodeStatus) string { return itoa(n.AvailableCPUs) }},
	{Key: "mem_real", Header: "Real Memory (GB)", Value: func(n NodeStatus) string { return ftoa(n.RealMemoryGB) }},
	{Key: "mem_alloc", Header: "Allocated Memory (GB)", Value: func(n NodeStatus) string { return ftoa(n.AllocatedMemoryGB) }},
	{Key: "mem_avail", Header: "Available Memory (GB)", Value: func(n NodeStatus) string { return ftoa(n.AvailableMemoryGB) }},
	{Key: "gpu_model", Header: "GPU Model", Value: func(n NodeStatus) string { return n.GPUModel }},
	{Key: "gpu_total", Header: "Total GPUs", Value: func(n NodeStatus) string { return itoa(n.TotalGPUs) }},
	{Key: "gpu_alloc", Header: "Allocated GPUs", Value: func(n NodeStatus) string { return itoa(n.AllocatedGPUs) }},
	{Key: "gpu_avail", Header: "Available GPUs", Value: func(n NodeStatus) string { return itoa(n.AvailableGPUs) }},
}

// ColumnKeys returns the keys accepted by ParseColumns.
func ColumnKeys() []string {
	keys := make([]string, len(AllColumns))
	for i, c := range AllColumns {
		keys[i] = c.Key
	}
	return keys
}

// ParseColumns resolves a comma-separated list of column keys. An empty
// string or "all" selects AllColumns.
func ParseColumns(spec string) ([]Column, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "all" {
		return AllColumns, nil
	}
	var cols []Column
	for _, k := range strings.Split(spec, ",") {
		k = strings.TrimSpace(k)
		found := false
		for _, c := range AllColumns {
			if c.Key == k {
				cols = append(cols, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown column %q (valid: %s)", k, strings.Join(ColumnKeys(), ", "))
		}
	}
	return cols, nil
}

// Headers returns the header row for cols.
func Headers(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Row returns the projected values of n for cols.
func Row(n NodeStatus, cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Value(n)
	}
	return out
}
