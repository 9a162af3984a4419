package store

import (
	"sync"
	"time"

	"github.com/godilite/profile-audit/internal/service"
)

// Status is what the presentation layer should render for the selected location.
type Status string

const (
	StatusNoLocation  Status = "no_location"
	StatusPending     Status = "pending"
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
)

// View is a point-in-time copy of the store for the presentation layer.
type View struct {
	LocationID      string              `json:"locationId,omitempty"`
	CurrentScore    *service.AuditScore `json:"currentScore"`
	Recommendations []string            `json:"recommendations,omitempty"`
	Insight         string              `json:"insight,omitempty"`
	LastUpdatedAt   *time.Time          `json:"lastUpdatedAt"`
	IsRefreshing    bool                `json:"isRefreshing"`
	Status          Status              `json:"status"`
}

// Store holds one session's audit state. It is created when a session opens
// and dropped when it closes; nothing in it is shared between sessions.
type Store struct {
	mu sync.RWMutex

	selected      string
	profiles      map[string]*service.ProfileSnapshot
	run           *service.AuditRun
	lastUpdatedAt time.Time
	lastSuccess   map[string]time.Time
	refreshing    map[string]bool
	unavailable   bool
}

func New() *Store {
	return &Store{
		profiles:    make(map[string]*service.ProfileSnapshot),
		lastSuccess: make(map[string]time.Time),
		refreshing:  make(map[string]bool),
	}
}

// SelectLocation makes locationID current and reports whether it changed. A
// change clears the displayed score so results from the previous location are
// never shown against the new one. A non-nil profile replaces the resident one.
func (s *Store) SelectLocation(locationID string, profile *service.ProfileSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile != nil && locationID != "" {
		s.profiles[locationID] = profile
	}
	if locationID == s.selected {
		return false
	}

	s.selected = locationID
	s.run = nil
	s.lastUpdatedAt = time.Time{}
	s.unavailable = false
	return true
}

func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Profile returns the resident snapshot for a location, or nil.
func (s *Store) Profile(locationID string) *service.ProfileSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[locationID]
}

func (s *Store) BeginRefresh(locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing[locationID] = true
}

func (s *Store) EndRefresh(locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshing, locationID)
}

func (s *Store) IsRefreshing(locationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing[locationID]
}

// ApplyRun publishes a completed run if its location is still selected. It
// returns false when the run was discarded.
func (s *Store) ApplyRun(run *service.AuditRun, at time.Time) bool {
	if run == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if run.LocationID != s.selected {
		return false
	}
	s.run = run
	s.lastUpdatedAt = at
	s.lastSuccess[run.LocationID] = at
	s.unavailable = false
	return true
}

// MarkUnavailable clears the displayed score after a total failure.
// lastUpdatedAt keeps pointing at the last good score, and the last success
// time is kept so staleness is still measured from real data.
func (s *Store) MarkUnavailable(locationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if locationID != s.selected {
		return false
	}
	s.run = nil
	s.unavailable = true
	return true
}

// LastSuccessAt reports when locationID last produced a score in this session.
func (s *Store) LastSuccessAt(locationID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lastSuccess[locationID]
	return t, ok
}

func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		LocationID:   s.selected,
		IsRefreshing: s.selected != "" && s.refreshing[s.selected],
	}
	if !s.lastUpdatedAt.IsZero() {
		t := s.lastUpdatedAt
		v.LastUpdatedAt = &t
	}

	switch {
	case s.selected == "":
		v.Status = StatusNoLocation
	case s.run != nil:
		score := s.run.Score
		v.CurrentScore = &score
		v.Recommendations = append([]string(nil), s.run.Recommendations...)
		v.Insight = s.run.Insight
		v.Status = StatusReady
	case s.unavailable:
		v.Status = StatusUnavailable
	default:
		v.Status = StatusPending
	}
	return v
}

// Reset drops everything; the store is empty afterwards.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = ""
	s.profiles = make(map[string]*service.ProfileSnapshot)
	s.run = nil
	s.lastUpdatedAt = time.Time{}
	s.lastSuccess = make(map[string]time.Time)
	s.refreshing = make(map[string]bool)
	s.unavailable = false
}
