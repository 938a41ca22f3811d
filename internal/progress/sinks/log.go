package sinks

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/team-logo-scraper/internal/progress"
)

// LogSink emits structured logs for progress updates. It stands in for the
// progress bar when stdout is not a terminal.
type LogSink struct {
	logger *zap.Logger
	last   progress.Snapshot
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Update logs the snapshot with structured fields.
func (s *LogSink) Update(snap progress.Snapshot) {
	s.last = snap
	s.logger.Info("progress",
		zap.Int("completed", snap.Completed),
		zap.Int("total", snap.Total),
		zap.Int("found", snap.Found),
		zap.Int("requests", snap.Requests),
	)
}

// Close logs the last snapshot seen.
func (s *LogSink) Close() error {
	s.logger.Info("progress finished",
		zap.Int("completed", s.last.Completed),
		zap.Int("total", s.last.Total),
	)
	return nil
}
