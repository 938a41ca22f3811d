// Package progress tracks how far a scrape has come: candidates completed
// out of the total, requests issued, and new teams found. The Tracker owns
// those counters and pushes a Snapshot to pluggable sinks after every batch.
package progress
