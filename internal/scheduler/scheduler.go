package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/profile-audit/internal/metrics"
	"github.com/godilite/profile-audit/internal/service"
	"github.com/godilite/profile-audit/internal/store"
)

const (
	defaultInterval   = 5 * time.Minute
	defaultStaleness  = 2 * time.Minute
	defaultRunTimeout = 60 * time.Second
)

// Trigger names the reason a run was scheduled.
type Trigger string

const (
	TriggerLocationChange Trigger = "location_change"
	TriggerInterval       Trigger = "interval"
	TriggerVisibility     Trigger = "visibility"
	TriggerManual         Trigger = "manual"
)

// Runner executes one audit run.
type Runner interface {
	Run(ctx context.Context, req service.RunRequest) (*service.AuditRun, error)
}

// Scheduler decides when a session's selected location is audited. Triggers
// never block the caller; at most one run per location is in flight and a
// trigger that arrives meanwhile joins it.
type Scheduler struct {
	runner Runner
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time

	userID      string
	interval    time.Duration
	staleness   time.Duration
	runTimeout  time.Duration
	autoRefresh bool

	mu      sync.Mutex
	visible bool
	started bool
	closed  bool
	stop    chan struct{}

	sf     singleflight.Group
	runs   sync.WaitGroup
	loopWG sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithStalenessThreshold(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.staleness = d
		}
	}
}

func WithAutoRefresh(enabled bool) Option {
	return func(s *Scheduler) { s.autoRefresh = enabled }
}

func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithUserID(id string) Option {
	return func(s *Scheduler) { s.userID = id }
}

// New creates a scheduler bound to one session store. Call Start to enable
// the interval loop and Stop to tear it down.
func New(runner Runner, st *store.Store, opts ...Option) *Scheduler {
	if runner == nil {
		panic("runner must not be nil")
	}
	if st == nil {
		panic("store must not be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:      runner,
		store:       st,
		logger:      zap.NewNop(),
		now:         time.Now,
		interval:    defaultInterval,
		staleness:   defaultStaleness,
		runTimeout:  defaultRunTimeout,
		autoRefresh: true,
		visible:     true,
		stop:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scheduler").With(zap.String("user_id", s.userID))
	return s
}

// Start launches the interval loop. It is a no-op after the first call or
// after Stop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true

	s.loopWG.Add(1)
	go s.loop()
}

func (s *Scheduler) loop() {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// Stop cancels in-flight runs, stops the loop and waits for everything to
// return. Later triggers are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()

	s.cancel()
	s.loopWG.Wait()
	s.runs.Wait()
}

// Wait blocks until every run triggered so far has finished.
func (s *Scheduler) Wait() {
	s.runs.Wait()
}

// SelectLocation records the session's location and audits it immediately
// when it changed.
func (s *Scheduler) SelectLocation(locationID string, profile *service.ProfileSnapshot) {
	if !s.store.SelectLocation(locationID, profile) || locationID == "" {
		return
	}
	s.trigger(locationID, TriggerLocationChange)
}

// RequestRefresh audits locationID, or the selected location when empty.
func (s *Scheduler) RequestRefresh(locationID string) error {
	if locationID == "" {
		locationID = s.store.Selected()
	}
	if locationID == "" {
		return service.ErrNoLocation
	}
	s.trigger(locationID, TriggerManual)
	return nil
}

// SetVisible records the session's visibility. Becoming visible refreshes the
// selected location when its last success is older than the staleness
// threshold, or when it never succeeded.
func (s *Scheduler) SetVisible(visible bool) {
	s.mu.Lock()
	wasVisible := s.visible
	s.visible = visible
	s.mu.Unlock()

	if wasVisible || !visible {
		return
	}

	locationID := s.store.Selected()
	if locationID == "" || !s.stale(locationID) {
		return
	}
	s.trigger(locationID, TriggerVisibility)
}

func (s *Scheduler) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRefresh = enabled
}

func (s *Scheduler) AutoRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRefresh
}

func (s *Scheduler) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Scheduler) stale(locationID string) bool {
	last, ok := s.store.LastSuccessAt(locationID)
	if !ok {
		return true
	}
	return s.now().Sub(last) > s.staleness
}

// tick is one interval firing.
func (s *Scheduler) tick() {
	if !s.AutoRefresh() {
		return
	}
	locationID := s.store.Selected()
	if locationID == "" {
		return
	}
	if s.store.IsRefreshing(locationID) {
		s.logger.Debug("interval refresh suppressed, run in flight", zap.String("location_id", locationID))
		return
	}
	s.trigger(locationID, TriggerInterval)
}

func (s *Scheduler) trigger(locationID string, trigger Trigger) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.runs.Add(1)
	s.mu.Unlock()

	metrics.RefreshTriggers.WithLabelValues(string(trigger)).Inc()
	s.logger.Debug("refresh triggered",
		zap.String("location_id", locationID),
		zap.String("trigger", string(trigger)))

	go func() {
		defer s.runs.Done()
		_, _, shared := s.sf.Do(locationID, func() (any, error) {
			s.execute(locationID)
			return nil, nil
		})
		if shared {
			s.logger.Debug("trigger coalesced into in-flight run",
				zap.String("location_id", locationID),
				zap.String("trigger", string(trigger)))
		}
	}()
}

func (s *Scheduler) execute(locationID string) {
	s.store.BeginRefresh(locationID)
	defer s.store.EndRefresh(locationID)

	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	run, err := s.runner.Run(ctx, service.RunRequest{
		UserID:     s.userID,
		LocationID: locationID,
		Profile:    s.store.Profile(locationID),
	})

	logger := s.logger.With(zap.String("location_id", locationID))
	switch {
	case s.ctx.Err() != nil:
		logger.Debug("run abandoned, scheduler stopped")
	case errors.Is(err, service.ErrAllSourcesUnavailable):
		if s.store.MarkUnavailable(locationID) {
			logger.Warn("audit data unavailable, score cleared")
		}
	case err != nil:
		logger.Error("audit run failed", zap.Error(err))
	case !s.store.ApplyRun(run, s.now()):
		metrics.AuditRuns.WithLabelValues(metrics.OutcomeDropped).Inc()
		logger.Info("discarding result for location no longer selected", zap.String("run_id", run.ID))
	}
}
