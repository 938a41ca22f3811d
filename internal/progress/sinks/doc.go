// Package sinks implements concrete progress consumers: a terminal progress
// bar and a structured log sink. Each satisfies progress.Sink.
package sinks
