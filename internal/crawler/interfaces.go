package crawler

import (
	"context"
	"time"
)

// Fetcher retrieves a single team page. Implementations never return an
// error: every failure is folded into the FetchResult.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// Extractor turns a team page body into a Record.
type Extractor interface {
	Extract(body []byte, sourceURL string) (Record, error)
}

// Checkpointer persists the full set of records, overwriting prior contents.
type Checkpointer interface {
	Save(ctx context.Context, records []Record) error
}

// Reporter observes scrape progress. It owns the found and request counters.
type Reporter interface {
	AddRequests(n int)
	AddFound() int
	Advance(n int)
	Found() int
	Requests() int
}

// Clock returns the current time and pauses between batches.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}
