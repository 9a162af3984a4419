package mocks

import (
	"context"
	"errors"

	"github.com/godilite/profile-audit/internal/service"
)

// MockHistoryService is a mock implementation of the HistoryService interface
// for testing the handler layer.
type MockHistoryService struct {
	GetRunHistoryFunc func(ctx context.Context, locationID string) ([]service.RunSummary, error)
}

// GetRunHistory implements the HistoryService interface
func (m *MockHistoryService) GetRunHistory(ctx context.Context, locationID string) ([]service.RunSummary, error) {
	if m.GetRunHistoryFunc != nil {
		return m.GetRunHistoryFunc(ctx, locationID)
	}
	return nil, errors.New("GetRunHistoryFunc not implemented")
}
