package store

import "github.com/JakeFAU/team-logo-scraper/internal/crawler"

// Teams is an insertion-ordered set of records keyed by TeamID. It is not
// safe for concurrent use; the dispatcher is its only writer.
type Teams struct {
	order []string
	byID  map[string]crawler.Record
}

// NewTeams returns an empty collection.
func NewTeams() *Teams {
	return &Teams{byID: make(map[string]crawler.Record)}
}

// FromRecords builds a collection from records in order. A repeated TeamID
// keeps the position of its first occurrence but takes the value of its
// last.
func FromRecords(records []crawler.Record) *Teams {
	t := NewTeams()
	for _, rec := range records {
		if !t.Add(rec) {
			t.byID[rec.TeamID] = rec
		}
	}
	return t
}

// Add inserts rec unless its TeamID is already present. It reports whether
// the record was inserted.
func (t *Teams) Add(rec crawler.Record) bool {
	if _, exists := t.byID[rec.TeamID]; exists {
		return false
	}
	t.byID[rec.TeamID] = rec
	t.order = append(t.order, rec.TeamID)
	return true
}

// Has reports whether id is stored.
func (t *Teams) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// Get returns the stored record for id.
func (t *Teams) Get(id string) (crawler.Record, bool) {
	rec, ok := t.byID[id]
	return rec, ok
}

// Len returns the number of stored records.
func (t *Teams) Len() int {
	return len(t.order)
}

// Records returns a copy of the stored records in insertion order. The
// result is never nil so it serializes as an empty JSON array.
func (t *Teams) Records() []crawler.Record {
	out := make([]crawler.Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}
