package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the window assumed when sizing the idle-key sweep.
	DefaultWindow = time.Minute

	// sweepGrace keeps a key alive for this multiple of the default window
	// after its last admission, so a key is never pruned mid-burst.
	sweepGrace = 5
)

// Result reports the outcome of an admission attempt.
type Result struct {
	Limited   bool
	Remaining int
	ResetAt   time.Time
}

// Store is a per-key sliding-window admission controller. State is held in
// process memory and is not persisted: a restart resets all counters, which
// is the documented behavior rather than a hidden bug.
//
// The store owns its lifecycle explicitly (Start/Stop for the idle-key
// sweep) so tests can run isolated instances.
type Store struct {
	mu      sync.Mutex
	windows map[string][]time.Time

	now  func() time.Time
	done chan struct{}
	once sync.Once
}

func NewStore() *Store {
	return &Store{
		windows: make(map[string][]time.Time),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Admit records a request for key if fewer than maxRequests admissions
// happened within the trailing window. Stale entries are pruned lazily on
// every call; the background sweep only bounds memory for idle keys.
func (s *Store) Admit(key string, maxRequests int, window time.Duration) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	valid := s.windows[key][:0]
	for _, ts := range s.windows[key] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= maxRequests {
		s.windows[key] = valid
		// The window next admits when the oldest surviving entry ages out.
		return Result{
			Limited: true,
			ResetAt: valid[0].Add(window),
		}
	}

	valid = append(valid, now)
	s.windows[key] = valid

	return Result{
		Limited:   false,
		Remaining: maxRequests - len(valid),
		ResetAt:   now.Add(window),
	}
}

// Start launches the periodic sweep that drops keys idle for longer than
// 5x the default window.
func (s *Store) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the background sweep. Safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.done) })
}

// Sweep removes keys whose entire window has gone stale. A key with any
// activity within sweepGrace default windows is spared.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-sweepGrace * DefaultWindow)
	for key, window := range s.windows {
		if len(window) == 0 || !window[len(window)-1].After(cutoff) {
			delete(s.windows, key)
		}
	}
}

// Len reports the number of tracked keys, used by the sweep tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
