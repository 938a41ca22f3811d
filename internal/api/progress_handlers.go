package api

import (
	"sync"
	"time"

	"github.com/JakeFAU/team-logo-scraper/internal/progress"
)

// ProgressState holds the most recent snapshot so HTTP handlers can read it
// while the scrape goroutine keeps updating. It implements progress.Sink.
type ProgressState struct {
	mu       sync.RWMutex
	snap     progress.Snapshot
	updated  time.Time
	finished bool
	now      func() time.Time
}

// NewProgressState creates an empty state.
func NewProgressState() *ProgressState {
	return &ProgressState{now: time.Now}
}

// Update stores snap as the latest snapshot.
func (s *ProgressState) Update(snap progress.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.updated = s.now().UTC()
}

// Close marks the scrape as finished.
func (s *ProgressState) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	return nil
}

type progressDTO struct {
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Found     int       `json:"found"`
	Requests  int       `json:"requests"`
	Finished  bool      `json:"finished"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *ProgressState) dto() progressDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return progressDTO{
		Completed: s.snap.Completed,
		Total:     s.snap.Total,
		Found:     s.snap.Found,
		Requests:  s.snap.Requests,
		Finished:  s.finished,
		UpdatedAt: s.updated,
	}
}
