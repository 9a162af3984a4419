package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	dbTimeout = 1 * time.Second

	// MaxHistoryRuns bounds how many runs a history read returns.
	MaxHistoryRuns = 50
)

var (
	ErrNoRuns         = errors.New("no audit runs found")
	ErrStorageFailure = errors.New("storage failure")
)

// RunHistoryCacheKey is shared by the history cache and its invalidation.
func RunHistoryCacheKey(locationID string) string {
	return "grpc:audit_runs:" + locationID
}

// HistoryService reads persisted audit runs.
type HistoryService struct {
	storage RunRepository
	logger  *zap.Logger
}

// NewHistoryService creates a new HistoryService instance.
func NewHistoryService(storage RunRepository, logger *zap.Logger) *HistoryService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &HistoryService{
		storage: storage,
		logger:  logger,
	}
}

// GetRunHistory returns up to MaxHistoryRuns runs for a location, newest first.
func (s *HistoryService) GetRunHistory(ctx context.Context, locationID string) ([]RunSummary, error) {
	if locationID == "" {
		return nil, ErrNoLocation
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListRuns(dbCtx, locationID, MaxHistoryRuns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRuns
	}

	out := make([]RunSummary, 0, len(rows))
	for _, r := range rows {
		summary := RunSummary{
			RunID:      r.ID,
			LocationID: r.LocationID,
			DateRange:  DateRange{StartDate: r.DateStart, EndDate: r.DateEnd},
			Timestamp:  r.CreatedAt,
		}
		if err := json.Unmarshal(r.ScoreJSON, &summary.Score); err != nil {
			s.logger.Warn("skipping run with corrupt score", zap.String("run_id", r.ID), zap.Error(err))
			continue
		}
		if len(r.RecommendationsJSON) > 0 {
			if err := json.Unmarshal(r.RecommendationsJSON, &summary.Recommendations); err != nil {
				s.logger.Warn("dropping corrupt recommendations", zap.String("run_id", r.ID), zap.Error(err))
			}
		}
		out = append(out, summary)
	}

	s.logger.Debug("fetched run history",
		zap.String("location_id", locationID),
		zap.Int("count", len(out)))

	if len(out) == 0 {
		return nil, ErrNoRuns
	}
	return out, nil
}
