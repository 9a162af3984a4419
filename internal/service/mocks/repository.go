package mocks

import (
	"context"
	"errors"

	"github.com/godilite/profile-audit/internal/repository/models"
)

// MockRunRepository is a mock implementation of the RunRepository interface
// for testing the service layer.
type MockRunRepository struct {
	ListRunsFunc func(ctx context.Context, locationID string, limit int) ([]models.AuditRunRecord, error)
}

// ListRuns implements the RunRepository interface
func (m *MockRunRepository) ListRuns(ctx context.Context, locationID string, limit int) ([]models.AuditRunRecord, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx, locationID, limit)
	}
	return nil, errors.New("ListRunsFunc not implemented")
}
