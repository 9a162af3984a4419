package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	rankSeedSuffix  = "rank"
	rankFallbackMin = 1
	rankFallbackMax = 15

	// NotFoundRank marks a business that is beyond the tracked results. It is
	// a display sentinel, not an upper bound on rank.
	NotFoundRank = 30

	rankLookupTimeout = 10 * time.Second
)

// RankQueryFromProfile builds a lookup query when the snapshot has a business
// name and usable coordinates.
func RankQueryFromProfile(profile *ProfileSnapshot) (RankQuery, bool) {
	if profile == nil || profile.Title == "" || profile.Latlng == nil {
		return RankQuery{}, false
	}
	if profile.Latlng.Latitude == 0 && profile.Latlng.Longitude == 0 {
		return RankQuery{}, false
	}

	q := RankQuery{
		BusinessName: profile.Title,
		Latitude:     profile.Latlng.Latitude,
		Longitude:    profile.Latlng.Longitude,
	}
	if profile.Metadata != nil {
		q.PlaceID = profile.Metadata.PlaceID
	}
	if c := profile.Categories; c != nil && c.PrimaryCategory != nil {
		q.Category = c.PrimaryCategory.DisplayName
	}
	return q, true
}

// resolveSearchRank never fails: every problem degrades to the fallback rank.
func (s *AuditService) resolveSearchRank(ctx context.Context, locationID string, hasMetrics bool, profile *ProfileSnapshot) (int, bool) {
	fallback := FallbackScore(locationID+rankSeedSuffix, rankFallbackMin, rankFallbackMax)

	if !hasMetrics || s.rank == nil {
		return fallback, true
	}
	query, ok := RankQueryFromProfile(profile)
	if !ok {
		s.logger.Debug("rank lookup skipped, profile lacks name or coordinates",
			zap.String("location_id", locationID))
		return fallback, true
	}

	lookupCtx, cancel := context.WithTimeout(ctx, rankLookupTimeout)
	defer cancel()

	result, err := s.rank.Lookup(lookupCtx, query)
	if err != nil {
		s.logger.Warn("rank lookup failed, using fallback rank",
			zap.String("location_id", locationID),
			zap.Error(err))
		return fallback, true
	}
	if !result.Found {
		return NotFoundRank, false
	}
	if result.Rank < 1 {
		s.logger.Warn("rank lookup returned invalid rank, using fallback rank",
			zap.String("location_id", locationID),
			zap.Int("rank", result.Rank))
		return fallback, true
	}
	return result.Rank, false
}
