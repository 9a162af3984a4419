package session

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/godilite/profile-audit/internal/metrics"
	"github.com/godilite/profile-audit/internal/scheduler"
	"github.com/godilite/profile-audit/internal/store"
)

var (
	ErrNoSession = errors.New("session not found")
	ErrNoUser    = errors.New("user id is required")
)

// Session is one signed-in user's store and the scheduler that feeds it.
type Session struct {
	UserID    string
	Store     *store.Store
	Scheduler *scheduler.Scheduler
}

// Manager owns the lifecycle of sessions: a session is created on login and
// torn down on logout, taking its store with it.
type Manager struct {
	runner  scheduler.Runner
	logger  *zap.Logger
	options []scheduler.Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. opts are applied to every scheduler it starts.
func NewManager(runner scheduler.Runner, logger *zap.Logger, opts ...scheduler.Option) *Manager {
	if runner == nil {
		panic("runner must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &Manager{
		runner:   runner,
		logger:   logger.Named("session"),
		options:  opts,
		sessions: make(map[string]*Session),
	}
}

// Open returns the user's session, creating and starting it when absent.
func (m *Manager) Open(userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}

	st := store.New()
	opts := append([]scheduler.Option{
		scheduler.WithLogger(m.logger),
		scheduler.WithUserID(userID),
	}, m.options...)
	sched := scheduler.New(m.runner, st, opts...)
	sched.Start()

	s := &Session{UserID: userID, Store: st, Scheduler: sched}
	m.sessions[userID] = s
	metrics.ActiveSessions.Inc()
	m.logger.Info("session opened", zap.String("user_id", userID))
	return s, nil
}

func (m *Manager) Get(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Close stops the user's scheduler, waits for its runs and drops the store.
func (m *Manager) Close(userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNoSession
	}

	m.teardown(s)
	m.logger.Info("session closed", zap.String("user_id", userID))
	return nil
}

// CloseAll tears down every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			m.teardown(s)
		}(s)
	}
	wg.Wait()

	if len(all) > 0 {
		m.logger.Info("all sessions closed", zap.Int("count", len(all)))
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) teardown(s *Session) {
	s.Scheduler.Stop()
	s.Store.Reset()
	metrics.ActiveSessions.Dec()
}
