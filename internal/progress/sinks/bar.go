package sinks

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/JakeFAU/team-logo-scraper/internal/progress"
)

const barDescription = "Scraping teams"

// BarSink renders a live progress bar with the found and request counters
// in its description.
type BarSink struct {
	bar *progressbar.ProgressBar
}

// NewBarSink draws a bar over total candidates on w.
func NewBarSink(total int, w io.Writer) *BarSink {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(barDescription),
		progressbar.OptionSetItsString("teams"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
	return &BarSink{bar: bar}
}

// Update moves the bar to the snapshot position.
func (s *BarSink) Update(snap progress.Snapshot) {
	s.bar.Describe(describe(snap))
	_ = s.bar.Set(snap.Completed)
}

// Close finishes the bar.
func (s *BarSink) Close() error {
	if err := s.bar.Finish(); err != nil {
		return fmt.Errorf("finish progress bar: %w", err)
	}
	return nil
}

func describe(snap progress.Snapshot) string {
	return fmt.Sprintf("%s [found: %d, requests: %d]", barDescription, snap.Found, snap.Requests)
}
