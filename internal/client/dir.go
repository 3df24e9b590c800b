package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirClient implements NodeReporter over a directory of saved reports, one
// "<node>.txt" file per node. It lets the tool run without a cluster.
type DirClient struct {
	Dir string
}

// NewDirClient returns a DirClient for dir, which must exist.
func NewDirClient(dir string) (*DirClient, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("fixtures directory %q is not a directory", dir)
	}
	return &DirClient{Dir: dir}, nil
}

// Source describes where reports come from.
func (c *DirClient) Source() string {
	return c.Dir
}

// ShowNode reads the saved report for node.
func (c *DirClient) ShowNode(ctx context.Context, node string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &FetchError{Node: node, Err: err}
	}
	if node == "" || strings.ContainsAny(node, `/\`) || node == "." || node == ".." {
		return "", &FetchError{Node: node, Err: fmt.Errorf("invalid node name")}
	}
	b, err := os.ReadFile(filepath.Join(c.Dir, node+".txt"))
	if err != nil {
		return "", &FetchError{Node: node, Err: err}
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", &FetchError{Node: node, Err: ErrEmptyReport}
	}
	return string(b), nil
}
