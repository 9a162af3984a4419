package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/profile-audit/internal/service"
)

// MockRunner is a mock implementation of the scheduler Runner interface.
type MockRunner struct {
	RunFunc func(ctx context.Context, req service.RunRequest) (*service.AuditRun, error)

	calls atomic.Int32
}

func (m *MockRunner) Run(ctx context.Context, req service.RunRequest) (*service.AuditRun, error) {
	m.calls.Add(1)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, req)
	}
	return nil, errors.New("RunFunc not implemented")
}

// Calls returns how many runs were started.
func (m *MockRunner) Calls() int {
	return int(m.calls.Load())
}
