package internal

import (
	"sync/atomic"
	"time"
)

// RunStats counts what a run did.
type RunStats struct {
	start      time.Time
	Candidates atomic.Int64
	Checked    atomic.Int64
	Empty      atomic.Int64
}

func (s *RunStats) Start() {
	s.start = time.Now()
}

func (s *RunStats) Elapsed() time.Duration {
	return time.Since(s.start)
}
