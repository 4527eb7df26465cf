// Package reviewerclient drives the vendor reviewer model: acquiring a
// thread, running single or chunked turns against it with deadline and
// one-retry-on-malformed-JSON semantics, and merging multi-chunk results.
package reviewerclient

import "context"

// TurnOptions constrains a single thread turn.
type TurnOptions struct {
	// Deadline bounds how long the vendor SDK may take to return this turn.
	Deadline int // seconds
}

// TurnResult is the raw output of a single thread turn: unvalidated text
// plus the thread id the next turn should resume, if continuation is
// supported by the backend.
type TurnResult struct {
	Text     string
	ThreadID string
}

// ThreadSDK is the vendor SDK boundary (spec §6): the core package never
// imports a concrete vendor SDK directly, only this interface. The shipped
// implementation is internal/vendorsdk/anthropicthread.
type ThreadSDK interface {
	// StartThread begins a new reviewer thread and returns its id.
	StartThread(ctx context.Context) (threadID string, err error)

	// ResumeThread validates that threadID is usable for a further turn.
	// Implementations that don't persist server-side thread state may
	// treat this as a no-op validation.
	ResumeThread(ctx context.Context, threadID string) error

	// Run executes one turn of the given prompt against threadID and
	// returns the raw model text plus the thread id to resume for any
	// following turn.
	Run(ctx context.Context, threadID, prompt string, opts TurnOptions) (TurnResult, error)
}
