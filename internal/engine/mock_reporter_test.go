package engine

import (
	"context"
	"errors"
	"fmt"
)

// MockReporter implements client.NodeReporter for testing.
type MockReporter struct {
	ShowNodeFn func(ctx context.Context, node string) (string, error)
	calls      []string
}

func (m *MockReporter) ShowNode(ctx context.Context, node string) (string, error) {
	m.calls = append(m.calls, node)
	if m.ShowNodeFn != nil {
		return m.ShowNodeFn(ctx, node)
	}
	return fmt.Sprintf("NodeName=%s CPUTot=8 CPUAlloc=2", node), nil
}

func (m *MockReporter) Source() string {
	return "mock"
}

var errMockFailure = errors.New("mock failure")
