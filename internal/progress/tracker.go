package progress

import (
	"go.uber.org/zap"
)

// Tracker owns the scrape counters and notifies sinks whenever the progress
// position advances. It is driven by a single goroutine and is not safe for
// concurrent mutation.
type Tracker struct {
	total     int
	completed int
	found     int
	requests  int
	sinks     []Sink
	logger    *zap.Logger
}

// NewTracker creates a Tracker over total candidates.
func NewTracker(total int, logger *zap.Logger, sinks ...Sink) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		total:  total,
		sinks:  append([]Sink(nil), sinks...),
		logger: logger,
	}
	t.notify()
	return t
}

// AddRequests records n issued page requests.
func (t *Tracker) AddRequests(n int) {
	t.requests += n
}

// AddFound records one new team and returns the updated count.
func (t *Tracker) AddFound() int {
	t.found++
	return t.found
}

// Advance moves the progress position by n candidates and notifies sinks.
// The position never exceeds the total.
func (t *Tracker) Advance(n int) {
	if n <= 0 {
		return
	}
	t.completed += n
	if t.total > 0 && t.completed > t.total {
		t.completed = t.total
	}
	t.notify()
}

// Found returns the number of teams added during this run.
func (t *Tracker) Found() int {
	return t.found
}

// Requests returns the number of requests issued during this run.
func (t *Tracker) Requests() int {
	return t.requests
}

// Snapshot returns the current counters.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Completed: t.completed,
		Total:     t.total,
		Found:     t.found,
		Requests:  t.requests,
	}
}

// Close pushes a final snapshot and closes every sink. Sink errors are
// logged and never returned.
func (t *Tracker) Close() {
	t.notify()
	for _, s := range t.sinks {
		if err := s.Close(); err != nil {
			t.logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
}

func (t *Tracker) notify() {
	snap := t.Snapshot()
	for _, s := range t.sinks {
		s.Update(snap)
	}
}
