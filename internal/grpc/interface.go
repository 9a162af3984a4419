package grpc

import (
	"context"
	"time"

	"github.com/godilite/profile-audit/internal/service"
	"github.com/godilite/profile-audit/internal/session"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// SessionManager opens and closes per-user audit sessions.
type SessionManager interface {
	Open(userID string) (*session.Session, error)
	Get(userID string) (*session.Session, error)
	Close(userID string) error
}

// HistoryService reads persisted audit runs.
type HistoryService interface {
	GetRunHistory(ctx context.Context, locationID string) ([]service.RunSummary, error)
}
