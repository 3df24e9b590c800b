package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dm/gpuavail/internal/model"
)

// ErrReportUnavailable is returned by NewNodeStatus when the caller could not
// fetch a report for the node. The parser never infers it from the text.
var ErrReportUnavailable = errors.New("node report unavailable")

// Each key is anchored to a token boundary so that e.g. CfgTRES never
// satisfies the AllocTRES pattern.
var (
	reCPUTot     = regexp.MustCompile(`(?:^|\s)CPUTot=(\d+)`)
	reCPUAlloc   = regexp.MustCompile(`(?:^|\s)CPUAlloc=(\d+)`)
	reRealMemory = regexp.MustCompile(`(?:^|\s)RealMemory=(\d+)`)
	reAllocMem   = regexp.MustCompile(`(?:^|\s)AllocMem=(\d+)`)
	reGres       = regexp.MustCompile(`(?:^|\s)Gres=gpu:(\w+):(\d+)`)
	// Only the untyped gres/gpu entry counts; typed entries such as
	// gres/gpu:a100=2 and the cpu/mem entries are skipped.
	reAllocGPU = regexp.MustCompile(`(?:^|\s)AllocTRES=(?:\S*?,)?gres/gpu=(\d+)`)
)

const mbPerGB = 1024

// ParseNodeStatus extracts a NodeStatus from the text of
// "scontrol show node <node>". Every field is located independently; a
// missing field keeps its default and never aborts the parse.
func ParseNodeStatus(node, raw string) model.NodeStatus {
	n := model.NodeStatus{
		Node:     node,
		GPUModel: model.NoGPU,
	}

	if v, ok := findInt(reCPUTot, raw); ok {
		n.TotalCPUs = v
	}
	if v, ok := findInt(reCPUAlloc, raw); ok {
		n.AllocatedCPUs = v
	}
	n.AvailableCPUs = n.TotalCPUs - n.AllocatedCPUs

	if v, ok := findInt(reRealMemory, raw); ok {
		n.RealMemoryGB = float64(v) / mbPerGB
	}
	if v, ok := findInt(reAllocMem, raw); ok {
		n.AllocatedMemoryGB = float64(v) / mbPerGB
	}
	n.AvailableMemoryGB = n.RealMemoryGB - n.AllocatedMemoryGB

	if m := reGres.FindStringSubmatch(raw); m != nil {
		if total, err := strconv.Atoi(m[2]); err == nil {
			n.GPUModel = m[1]
			n.TotalGPUs = total
		}
	}
	if v, ok := findInt(reAllocGPU, raw); ok {
		n.AllocatedGPUs = v
	}
	n.AvailableGPUs = n.TotalGPUs - n.AllocatedGPUs

	return n
}

// NewNodeStatus parses raw unless the fetch that produced it failed, in
// which case the error wraps ErrReportUnavailable.
func NewNodeStatus(node, raw string, fetchErr error) (model.NodeStatus, error) {
	if fetchErr != nil {
		return model.NodeStatus{}, fmt.Errorf("%s: %w: %w", node, ErrReportUnavailable, fetchErr)
	}
	if strings.TrimSpace(raw) == "" {
		return model.NodeStatus{}, fmt.Errorf("%s: %w: empty report", node, ErrReportUnavailable)
	}
	return ParseNodeStatus(node, raw), nil
}

func findInt(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
