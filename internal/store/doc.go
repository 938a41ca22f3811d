// Package store holds the in-memory collection of discovered teams. It is
// keyed by team ID, remembers insertion order for serialization, and never
// replaces or removes an entry once added.
package store
