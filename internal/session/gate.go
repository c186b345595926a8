package session

import "sync/atomic"

// Gate serializes generation calls: at most one request to the model
// service may be in flight at a time, across the ask, quiz, and flashcard
// flows. It replaces the UI-side "disable all start controls" rule.
type Gate struct {
	busy atomic.Bool
}

// TryAcquire claims the gate. Returns false when another generation call
// is already in flight.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the gate once the in-flight call settles.
func (g *Gate) Release() {
	g.busy.Store(false)
}

// Busy reports whether a generation call is currently in flight.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
