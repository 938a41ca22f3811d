// Package crawler defines the core types and interfaces shared by the team
// logo scraper: records, identifier ranges, fetch outcomes, and the narrow
// contracts the dispatcher depends on.
package crawler
