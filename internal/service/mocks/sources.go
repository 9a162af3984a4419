package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/godilite/profile-audit/internal/service"
)

type MockPerformanceSource struct {
	FetchDailyMetricsFunc func(ctx context.Context, locationID string, dateRange service.DateRange) ([]service.PerformanceMetric, error)
}

func (m *MockPerformanceSource) FetchDailyMetrics(ctx context.Context, locationID string, dateRange service.DateRange) ([]service.PerformanceMetric, error) {
	if m.FetchDailyMetricsFunc != nil {
		return m.FetchDailyMetricsFunc(ctx, locationID, dateRange)
	}
	return nil, errors.New("FetchDailyMetricsFunc not implemented")
}

type MockReviewSource struct {
	FetchReviewsFunc func(ctx context.Context, locationID string) ([]service.Review, error)
}

func (m *MockReviewSource) FetchReviews(ctx context.Context, locationID string) ([]service.Review, error) {
	if m.FetchReviewsFunc != nil {
		return m.FetchReviewsFunc(ctx, locationID)
	}
	return nil, errors.New("FetchReviewsFunc not implemented")
}

type MockRankLookup struct {
	LookupFunc func(ctx context.Context, query service.RankQuery) (service.RankResult, error)
}

func (m *MockRankLookup) Lookup(ctx context.Context, query service.RankQuery) (service.RankResult, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, query)
	}
	return service.RankResult{}, errors.New("LookupFunc not implemented")
}

type MockTextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", errors.New("GenerateFunc not implemented")
}

// MockRunPublisher records every published run.
type MockRunPublisher struct {
	mu   sync.Mutex
	Runs []service.AuditRun
}

func (m *MockRunPublisher) Publish(run service.AuditRun) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, run)
}

func (m *MockRunPublisher) Published() []service.AuditRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.AuditRun(nil), m.Runs...)
}
