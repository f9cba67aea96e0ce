package server

import (
	"sync"

	"github.com/cadencejames/Get-PingTimes/internal/pipeline"
	"github.com/cadencejames/Get-PingTimes/internal/window"
)

// Publication is one run's published output set.
type Publication struct {
	Report     pipeline.Report
	Projection *window.Projection
	Script     []byte
}

// Store holds the latest publication. Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	pub *Publication
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current publication.
func (s *Store) Set(pub *Publication) {
	s.mu.Lock()
	s.pub = pub
	s.mu.Unlock()
}

// Latest returns the current publication, or false before the first run
// publishes.
func (s *Store) Latest() (*Publication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pub == nil {
		return nil, false
	}
	return s.pub, true
}
