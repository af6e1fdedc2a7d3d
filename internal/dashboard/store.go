package dashboard

import (
	"sync"

	"gep-report/internal/metrics"
)

// Store holds the uploaded series for one dashboard session. Handlers
// run concurrently, so reads and writes go through the lock.
type Store struct {
	mu     sync.RWMutex
	actual []metrics.Observation
	plan   []metrics.Observation
	grid   metrics.AlignedGrid
	loaded bool
}

// SetSeries replaces one series and realigns the grid.
func (s *Store) SetSeries(series metrics.Series, obs []metrics.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if series == metrics.SeriesPlan {
		s.plan = obs
	} else {
		s.actual = obs
	}
	s.grid = metrics.Align(s.actual, s.plan)
	s.loaded = true
}

// Grid returns the current aligned grid. ok is false before any upload.
func (s *Store) Grid() (metrics.AlignedGrid, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid, s.loaded
}
