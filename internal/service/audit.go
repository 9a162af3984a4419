package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/profile-audit/internal/metrics"
)

const (
	defaultWindowDays = 30
	insightTimeout    = 15 * time.Second
	dateLayout        = "2006-01-02"
)

var (
	ErrAllSourcesUnavailable = errors.New("performance data unavailable")
	ErrNoLocation            = errors.New("location id is required")
	ErrAccessGated           = errors.New("upstream access gated")
)

// State is a phase of an audit run.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateScoring   State = "scoring"
	StatePersisted State = "persisted"
	StateFailed    State = "failed"
)

// AuditService fetches upstream data, scores it and publishes the run.
type AuditService struct {
	performance PerformanceSource
	reviews     ReviewSource
	rank        RankLookup
	generator   TextGenerator
	publisher   RunPublisher
	logger      *zap.Logger
	now         func() time.Time
	windowDays  int
}

type Option func(*AuditService)

func WithRankLookup(r RankLookup) Option {
	return func(s *AuditService) { s.rank = r }
}

func WithTextGenerator(g TextGenerator) Option {
	return func(s *AuditService) { s.generator = g }
}

func WithPublisher(p RunPublisher) Option {
	return func(s *AuditService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *AuditService) { s.now = now }
}

func WithWindowDays(days int) Option {
	return func(s *AuditService) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(performance PerformanceSource, reviews ReviewSource, logger *zap.Logger, opts ...Option) *AuditService {
	if performance == nil {
		panic("performance source must not be nil")
	}
	if reviews == nil {
		panic("review source must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}

	s := &AuditService{
		performance: performance,
		reviews:     reviews,
		logger:      logger.Named("audit"),
		now:         time.Now,
		windowDays:  defaultWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type fetchResult struct {
	metrics     []PerformanceMetric
	metricsErr  error
	reviews     []Review
	reviewsErr  error
	profileOkay bool
}

func (f fetchResult) allUnavailable() bool {
	return len(f.metrics) == 0 && !f.profileOkay && f.reviewsErr != nil
}

// DateRangeEnding returns the performance window that ends on now's UTC date.
func DateRangeEnding(now time.Time, days int) DateRange {
	end := now.UTC()
	start := end.AddDate(0, 0, -(days - 1))
	return DateRange{StartDate: start.Format(dateLayout), EndDate: end.Format(dateLayout)}
}

// Run executes one audit for req.LocationID. It fails only when every source
// is unusable; single-source failures degrade to fallback values.
func (s *AuditService) Run(ctx context.Context, req RunRequest) (*AuditRun, error) {
	if req.LocationID == "" {
		return nil, ErrNoLocation
	}

	started := s.now()
	logger := s.logger.With(zap.String("location_id", req.LocationID), zap.String("user_id", req.UserID))
	dateRange := DateRangeEnding(started, s.windowDays)

	logger.Debug("audit state", zap.String("state", string(StateFetching)))
	fetched := s.fetch(ctx, logger, req, dateRange)

	if fetched.allUnavailable() {
		logger.Debug("audit state", zap.String("state", string(StateFailed)))
		metrics.AuditRuns.WithLabelValues(metrics.OutcomeFailure).Inc()
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAllSourcesUnavailable, err)
		}
		return nil, ErrAllSourcesUnavailable
	}

	logger.Debug("audit state", zap.String("state", string(StateScoring)))
	score := s.score(ctx, req, fetched)

	run := &AuditRun{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		LocationID:        req.LocationID,
		PerformanceSeries: fetched.metrics,
		Score:             score,
		Recommendations:   BuildRecommendations(score),
		DateRange:         dateRange,
		Timestamp:         s.now(),
	}
	if run.PerformanceSeries == nil {
		run.PerformanceSeries = []PerformanceMetric{}
	}
	run.Insight = s.insight(ctx, logger, score)

	if s.publisher != nil {
		s.publisher.Publish(*run)
	}
	logger.Debug("audit state", zap.String("state", string(StatePersisted)), zap.String("run_id", run.ID))

	metrics.AuditRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.AuditRunDuration.Observe(s.now().Sub(started).Seconds())

	logger.Info("audit completed",
		zap.String("run_id", run.ID),
		zap.Int("overall", score.Overall),
		zap.Int("search_rank", score.SearchRank))

	return run, nil
}

// fetch issues the performance and review requests concurrently; each failure
// is isolated to its own source.
func (s *AuditService) fetch(ctx context.Context, logger *zap.Logger, req RunRequest, dateRange DateRange) fetchResult {
	res := fetchResult{profileOkay: req.Profile.hasIdentity()}

	var g errgroup.Group
	g.Go(func() error {
		res.metrics, res.metricsErr = s.performance.FetchDailyMetrics(ctx, req.LocationID, dateRange)
		return nil
	})
	g.Go(func() error {
		res.reviews, res.reviewsErr = s.reviews.FetchReviews(ctx, req.LocationID)
		return nil
	})
	_ = g.Wait()

	if res.metricsErr != nil {
		res.metrics = nil
		s.degraded(logger, "performance", res.metricsErr)
	}
	if res.reviewsErr != nil {
		res.reviews = nil
		s.degraded(logger, "reviews", res.reviewsErr)
	}
	if !res.profileOkay {
		metrics.SourceDegraded.WithLabelValues("profile", "absent").Inc()
	}
	return res
}

func (s *AuditService) degraded(logger *zap.Logger, source string, err error) {
	if errors.Is(err, ErrAccessGated) {
		metrics.SourceDegraded.WithLabelValues(source, "gated").Inc()
		logger.Info("source access gated, treating as absent", zap.String("source", source))
		return
	}
	metrics.SourceDegraded.WithLabelValues(source, "error").Inc()
	logger.Warn("source unavailable, using defaults", zap.String("source", source), zap.Error(err))
}

func (s *AuditService) score(ctx context.Context, req RunRequest, fetched fetchResult) AuditScore {
	perf := CalculatePerformance(req.LocationID, fetched.metrics)
	if perf.Fallback {
		metrics.FallbackUsed.WithLabelValues("performance").Inc()
	}

	rank, rankFallback := s.resolveSearchRank(ctx, req.LocationID, len(fetched.metrics) > 0, req.Profile)
	if rankFallback {
		metrics.FallbackUsed.WithLabelValues("search_rank").Inc()
	}

	completion, completionDetails := AnalyzeProfileCompleteness(req.LocationID, req.Profile)
	seo, seoDetails := AnalyzeSEO(req.LocationID, req.Profile)
	if !req.Profile.hasIdentity() {
		metrics.FallbackUsed.WithLabelValues("profile").Inc()
	}

	reviews := AnalyzeReviews(fetched.reviews, s.now())

	score := NewAuditScore(SubScores{
		Performance:       perf.Performance,
		Engagement:        perf.Engagement,
		ProfileCompletion: completion,
		SEO:               seo,
		Review:            reviews.ReviewScore,
		ReviewReply:       reviews.ReviewReplyScore,
	}, rank)
	score.ProfileCompletionDetails = &completionDetails
	score.SEODetails = &seoDetails
	score.ReviewDetails = &reviews.Details
	return score
}

func (s *AuditService) insight(ctx context.Context, logger *zap.Logger, score AuditScore) string {
	if s.generator == nil {
		return ""
	}
	genCtx, cancel := context.WithTimeout(ctx, insightTimeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, InsightPrompt(score))
	if err != nil {
		logger.Warn("insight generation failed", zap.Error(err))
		return ""
	}
	return text
}
