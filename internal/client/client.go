package client

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// NodeReporter fetches the raw status report for a single node.
type NodeReporter interface {
	ShowNode(ctx context.Context, node string) (string, error)
	Source() string
}

// ExecCommandFunc builds the command used to query the resource manager.
// Tests replace it to avoid depending on a real scontrol binary.
type ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// ClientConfig holds configuration for ScontrolClient.
type ClientConfig struct {
	Scontrol       string
	RequestTimeout time.Duration
}

// ScontrolClient implements NodeReporter by running "scontrol show node".
type ScontrolClient struct {
	execCommand ExecCommandFunc
	config      ClientConfig
}

// NewScontrolClient constructs a ScontrolClient from the given config.
// An empty Scontrol path means "scontrol" from $PATH.
func NewScontrolClient(cfg ClientConfig) (*ScontrolClient, error) {
	if cfg.Scontrol == "" {
		cfg.Scontrol = "scontrol"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &ScontrolClient{
		execCommand: exec.CommandContext,
		config:      cfg,
	}, nil
}

// SetExecCommand replaces the command factory and returns the client.
func (c *ScontrolClient) SetExecCommand(f ExecCommandFunc) *ScontrolClient {
	c.execCommand = f
	return c
}

// Source describes where reports come from, for headers and logs.
func (c *ScontrolClient) Source() string {
	return c.config.Scontrol + " show node"
}

// ShowNode runs "scontrol show node <node>" and returns its stdout. A
// non-zero exit, a timeout or an empty report is returned as *FetchError.
func (c *ScontrolClient) ShowNode(ctx context.Context, node string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	cmd := c.execCommand(ctx, c.config.Scontrol, "show", "node", node)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		// A killed process reports "signal: killed"; the context error says why.
		err = fmt.Errorf("%w (%v)", ctxErr, err)
	}
	if err != nil {
		return "", &FetchError{Node: node, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	out := stdout.String()
	if strings.TrimSpace(out) == "" {
		return "", &FetchError{Node: node, Stderr: strings.TrimSpace(stderr.String()), Err: ErrEmptyReport}
	}
	return out, nil
}

// ErrEmptyReport is wrapped by FetchError when the query succeeded but
// produced no output.
var ErrEmptyReport = errors.New("empty report")

// FetchError reports that no data could be obtained for a node.
type FetchError struct {
	Node   string
	Stderr string
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch node %s: %v", e.Node, e.Err)
	if e.Stderr != "" {
		msg += ": " + truncate(e.Stderr, 200)
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
