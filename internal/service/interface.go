package service

import (
	"context"

	"github.com/godilite/profile-audit/internal/repository/models"
)

// PerformanceSource returns daily metrics for a location, ascending by date.
type PerformanceSource interface {
	FetchDailyMetrics(ctx context.Context, locationID string, dateRange DateRange) ([]PerformanceMetric, error)
}

type ReviewSource interface {
	FetchReviews(ctx context.Context, locationID string) ([]Review, error)
}

type RankLookup interface {
	Lookup(ctx context.Context, query RankQuery) (RankResult, error)
}

// TextGenerator is an opaque prompt -> text service.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RunPublisher receives completed runs. Publish must not block.
type RunPublisher interface {
	Publish(run AuditRun)
}

// RunRepository defines the read side of persisted audit runs.
type RunRepository interface {
	ListRuns(ctx context.Context, locationID string, limit int) ([]models.AuditRunRecord, error)
}
