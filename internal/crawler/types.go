package crawler

import (
	"fmt"
	"strconv"
	"time"
)

// Record is a single team discovered on the stats site. It is persisted as-is
// to the output file and is never mutated once created.
type Record struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	LogoURL  string `json:"logo_url"`
}

// Range is a closed interval of candidate team identifiers.
type Range struct {
	Start int `mapstructure:"start" json:"start"`
	End   int `mapstructure:"end" json:"end"`
}

// Len returns the number of candidate identifiers covered by the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Validate rejects inverted or negative ranges.
func (r Range) Validate() error {
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("range %s must not be negative", r)
	}
	if r.Start > r.End {
		return fmt.Errorf("range %s has start after end", r)
	}
	return nil
}

func (r Range) String() string {
	return "[" + strconv.Itoa(r.Start) + ", " + strconv.Itoa(r.End) + "]"
}

// TotalCandidates sums the sizes of all ranges.
func TotalCandidates(ranges []Range) int {
	total := 0
	for _, r := range ranges {
		total += r.Len()
	}
	return total
}

// FetchStatus classifies how a single page fetch ended.
type FetchStatus int

// Fetch outcomes. Only FetchSucceeded carries a body.
const (
	FetchSucceeded FetchStatus = iota
	FetchNotFound
	FetchTransportError
)

func (s FetchStatus) String() string {
	switch s {
	case FetchSucceeded:
		return "success"
	case FetchNotFound:
		return "not_found"
	case FetchTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// FetchResult is the tagged outcome of a single GET.
type FetchResult struct {
	URL        string
	Status     FetchStatus
	StatusCode int
	Duration   time.Duration
	// Err holds the underlying cause for FetchNotFound and FetchTransportError.
	Err  error
	body []byte
}

// Succeeded builds a successful result carrying body.
func Succeeded(url string, statusCode int, body []byte, dur time.Duration) FetchResult {
	return FetchResult{URL: url, Status: FetchSucceeded, StatusCode: statusCode, Duration: dur, body: body}
}

// NotFound builds a result for a non-success HTTP status.
func NotFound(url string, statusCode int, cause error, dur time.Duration) FetchResult {
	return FetchResult{URL: url, Status: FetchNotFound, StatusCode: statusCode, Duration: dur, Err: cause}
}

// TransportFailed builds a result for a request that never produced a response.
func TransportFailed(url string, cause error, dur time.Duration) FetchResult {
	return FetchResult{URL: url, Status: FetchTransportError, Duration: dur, Err: cause}
}

// Body collapses the outcome: ok is false for every non-success result.
func (r FetchResult) Body() ([]byte, bool) {
	if r.Status != FetchSucceeded {
		return nil, false
	}
	return r.body, true
}
