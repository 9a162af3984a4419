package persister

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/profile-audit/internal/metrics"
	"github.com/godilite/profile-audit/internal/repository/models"
	"github.com/godilite/profile-audit/internal/service"
)

const (
	defaultQueueSize   = 64
	defaultSaveTimeout = 5 * time.Second
)

// RunSaver writes audit run records.
type RunSaver interface {
	SaveRun(ctx context.Context, run models.AuditRunRecord) error
}

// Invalidator drops cached entries made stale by a new run.
type Invalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// Persister consumes completed runs and writes them in the background.
// Failures are logged and swallowed; a run is never retried.
type Persister struct {
	repo        RunSaver
	cache       Invalidator
	logger      *zap.Logger
	saveTimeout time.Duration
	queueSize   int

	mu     sync.RWMutex
	closed bool
	queue  chan service.AuditRun
	done   chan struct{}
}

type Option func(*Persister)

func WithQueueSize(n int) Option {
	return func(p *Persister) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(p *Persister) {
		if d > 0 {
			p.saveTimeout = d
		}
	}
}

func WithCache(c Invalidator) Option {
	return func(p *Persister) { p.cache = c }
}

// New creates a Persister and starts its worker.
func New(repo RunSaver, logger *zap.Logger, opts ...Option) *Persister {
	if repo == nil {
		panic("run saver must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}

	p := &Persister{
		repo:        repo,
		logger:      logger.Named("persister"),
		saveTimeout: defaultSaveTimeout,
		queueSize:   defaultQueueSize,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan service.AuditRun, p.queueSize)

	go p.work()
	return p
}

// Publish enqueues run without blocking. When the queue is full or the
// persister is closed the run is dropped.
func (p *Persister) Publish(run service.AuditRun) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.drop(run, "persister closed")
		return
	}
	select {
	case p.queue <- run:
	default:
		p.drop(run, "queue full")
	}
}

func (p *Persister) drop(run service.AuditRun, reason string) {
	metrics.PersistResults.WithLabelValues(metrics.OutcomeDropped).Inc()
	p.logger.Error("audit run dropped",
		zap.String("run_id", run.ID),
		zap.String("location_id", run.LocationID),
		zap.String("reason", reason))
}

// Close stops accepting runs, writes what is queued and returns when the
// worker has exited.
func (p *Persister) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	<-p.done
}

func (p *Persister) work() {
	defer close(p.done)
	for run := range p.queue {
		p.persist(run)
	}
}

func (p *Persister) persist(run service.AuditRun) {
	logger := p.logger.With(zap.String("run_id", run.ID), zap.String("location_id", run.LocationID))

	record, err := ToRecord(run)
	if err != nil {
		metrics.PersistResults.WithLabelValues(metrics.OutcomeFailure).Inc()
		logger.Error("failed to encode audit run", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()

	if err := p.repo.SaveRun(ctx, record); err != nil {
		metrics.PersistResults.WithLabelValues(metrics.OutcomeFailure).Inc()
		logger.Error("failed to persist audit run", zap.Error(err))
		return
	}
	metrics.PersistResults.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logger.Debug("audit run persisted")

	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, service.RunHistoryCacheKey(run.LocationID)); err != nil {
		logger.Warn("failed to invalidate run history cache", zap.Error(err))
	}
}

// ToRecord flattens a run into its stored form.
func ToRecord(run service.AuditRun) (models.AuditRunRecord, error) {
	score, err := json.Marshal(run.Score)
	if err != nil {
		return models.AuditRunRecord{}, fmt.Errorf("encode score: %w", err)
	}

	series := run.PerformanceSeries
	if series == nil {
		series = []service.PerformanceMetric{}
	}
	seriesJSON, err := json.Marshal(series)
	if err != nil {
		return models.AuditRunRecord{}, fmt.Errorf("encode series: %w", err)
	}

	recs := run.Recommendations
	if recs == nil {
		recs = []string{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return models.AuditRunRecord{}, fmt.Errorf("encode recommendations: %w", err)
	}

	return models.AuditRunRecord{
		ID:                  run.ID,
		UserID:              run.UserID,
		LocationID:          run.LocationID,
		Overall:             run.Score.Overall,
		ScoreJSON:           score,
		SeriesJSON:          seriesJSON,
		RecommendationsJSON: recsJSON,
		Insight:             run.Insight,
		DateStart:           run.DateRange.StartDate,
		DateEnd:             run.DateRange.EndDate,
		CreatedAt:           run.Timestamp,
	}, nil
}
