package service

import (
	"sync"
	"time"

	tradersvc "trade_engine/internal/modules/trader/service"
)

// State holds the last published tick snapshot for the health endpoints and
// the /status command. Readiness means at least one tick completed.
type State struct {
	startedAt time.Time

	mu   sync.RWMutex
	last tradersvc.Status
	seen bool
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

// ObserveTick implements the trader's StatusSink.
func (s *State) ObserveTick(st tradersvc.Status) {
	s.mu.Lock()
	s.last = st
	s.seen = true
	s.mu.Unlock()
}

func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen
}

func (s *State) Last() (tradersvc.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.seen
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
