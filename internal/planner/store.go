package planner

import "sync"

// Plan availability states.
const (
	StateMissing   = "missing"
	StateAvailable = "available"
	StateRefreshed = "refreshed"
)

// Store keeps the latest generated plan. The state moves missing →
// available on the first plan and available → refreshed on every
// subsequent one.
type Store struct {
	mu    sync.RWMutex
	plan  *Plan
	state string
}

// NewStore starts with no plan.
func NewStore() *Store {
	return &Store{state: StateMissing}
}

// Set stores a newly generated plan and advances the state.
func (s *Store) Set(plan *Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		s.state = StateAvailable
	} else {
		s.state = StateRefreshed
	}
	s.plan = plan
}

// Latest returns the stored plan, or false when none was generated yet.
func (s *Store) Latest() (*Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan, s.plan != nil
}

// State reports the availability state.
func (s *Store) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
