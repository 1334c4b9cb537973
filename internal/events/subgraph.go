// Package events declares the typed events the execution layer publishes on
// the event bus. Subscribers (tracing, metrics) attach at startup.
package events

import "time"

// LocalExecuteStart is emitted before a local subgraph executes a sub-query.
type LocalExecuteStart struct {
	Subgraph      string
	OperationName string
}

// LocalExecuteFinish is emitted after a local subgraph finishes a sub-query.
type LocalExecuteFinish struct {
	Subgraph      string
	OperationName string
	ErrorCount    int
	Duration      time.Duration
}

// FetchStart is emitted before each HTTP attempt to a remote subgraph.
type FetchStart struct {
	Subgraph string
	URL      string
	Attempt  int
}

// FetchFinish is emitted after each HTTP attempt completes.
type FetchFinish struct {
	Subgraph string
	URL      string
	Attempt  int
	Status   int
	Err      error
	Duration time.Duration
}

// FetchRetry is emitted when a failed attempt will be retried after Delay.
type FetchRetry struct {
	Subgraph string
	URL      string
	Attempt  int
	Class    string
	Delay    time.Duration
}
