package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/dm/gpuavail/internal/format"
	"github.com/dm/gpuavail/internal/model"
)

// Console output formats accepted by Print.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatNone  = "none"
)

// Formats lists the accepted console formats.
var Formats = []string{FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatNone}

// ValidateFormat returns an error for an unknown console format.
func ValidateFormat(f string) error {
	for _, v := range Formats {
		if f == v {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (valid: %s)", f, strings.Join(Formats, ", "))
}

// Document is the structured form of a sweep used by json and yaml output
// and the exporter API.
type Document struct {
	StartedAt string              `json:"started_at" yaml:"started_at"`
	Elapsed   string              `json:"elapsed" yaml:"elapsed"`
	Nodes     []model.NodeStatus  `json:"nodes" yaml:"nodes"`
	Failures  []model.NodeFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Totals    model.ClusterTotals `json:"totals" yaml:"totals"`
}

// Print renders records (already filtered by the caller) to w in the
// requested format. totals summarises the same records.
func Print(w io.Writer, f string, snap *model.Snapshot, records []model.NodeStatus, cols []model.Column, totals model.ClusterTotals) error {
	switch f {
	case FormatNone:
		return nil
	case FormatCSV:
		return WriteCSV(w, records, cols)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(snap, records, totals))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(snap, records, totals)); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return printTable(w, snap, records, cols, totals)
	default:
		return ValidateFormat(f)
	}
}

// NewDocument builds the Document for records taken from snap.
func NewDocument(snap *model.Snapshot, records []model.NodeStatus, totals model.ClusterTotals) Document {
	d := Document{Nodes: records, Totals: totals}
	if d.Nodes == nil {
		d.Nodes = []model.NodeStatus{}
	}
	if snap != nil {
		d.StartedAt = snap.StartedAt.Format("2006-01-02T15:04:05Z07:00")
		d.Elapsed = snap.Duration().String()
		d.Failures = snap.Failures
	}
	return d
}

func printTable(w io.Writer, snap *model.Snapshot, records []model.NodeStatus, cols []model.Column, totals model.ClusterTotals) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No nodes reported")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header(toAny(model.Headers(cols))...)
		for _, r := range records {
			if err := table.Append(toAny(model.Row(r, cols))...); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nNodes: %d  CPUs available: %s/%s  Memory available: %s/%s GB  GPUs available: %s/%s\n",
		totals.Nodes,
		format.FormatNumber(int64(totals.AvailableCPUs)), format.FormatNumber(int64(totals.TotalCPUs)),
		format.FormatGB(totals.AvailableMemoryGB), format.FormatGB(totals.RealMemoryGB),
		format.FormatNumber(int64(totals.AvailableGPUs)), format.FormatNumber(int64(totals.TotalGPUs)))
	for _, m := range totals.ByModel {
		fmt.Fprintf(w, "  %-12s %d/%d available on %d nodes\n", m.Model, m.Available, m.Total, m.Nodes)
	}
	if totals.Inconsistent > 0 {
		fmt.Fprintf(w, "Warning: %d node(s) report more resources allocated than installed\n", totals.Inconsistent)
	}
	if snap != nil && len(snap.Failures) > 0 {
		fmt.Fprintf(w, "Unreachable: %d node(s)\n", len(snap.Failures))
		for _, f := range snap.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.Node, f.Error)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
