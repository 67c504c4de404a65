package calc

import (
	"sync"
	"time"
)

// HistoryEntry is one recorded calculation.
type HistoryEntry struct {
	Result Result
	At     time.Time
}

// History is an append-only diagnostic log of calculation results.
// Callers append after each computation; no calculation reads it back.
// Safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records one result with the current time.
func (h *History) Append(r Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, HistoryEntry{Result: r, At: time.Now()})
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Snapshot returns a copy of the recorded entries in append order.
func (h *History) Snapshot() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
