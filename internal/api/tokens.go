package api

import "sync"

// TokenTracker accumulates token usage across the API calls of a run.
type TokenTracker struct {
	mu     sync.Mutex
	input  int64
	output int64
}

// NewTokenTracker creates an empty tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records usage from one API response.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input += input
	t.output += output
}

// Totals returns the accumulated input and output token counts.
func (t *TokenTracker) Totals() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input, t.output
}
