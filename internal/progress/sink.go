package progress

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	// Completed is the number of candidate identifiers already probed.
	Completed int
	// Total is the number of candidate identifiers across all ranges.
	Total int
	// Found counts teams added during this run.
	Found int
	// Requests counts page fetches issued during this run.
	Requests int
}

// Sink observes snapshots. Implementations must not affect the scrape; a
// failing sink only logs.
type Sink interface {
	Update(s Snapshot)
	Close() error
}
