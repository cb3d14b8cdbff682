package core

import "sync/atomic"

// ResultHolder keeps the current payroll result set.
//
// Each accepted file replaces the held Run wholesale; readers see either the
// previous Run or the new one, never a mix.
type ResultHolder struct {
	current atomic.Pointer[Run]
}

// Replace swaps in a new Run and returns the one it superseded (may be nil).
func (h *ResultHolder) Replace(run *Run) *Run {
	return h.current.Swap(run)
}

// Current returns the held Run, or nil before the first upload.
func (h *ResultHolder) Current() *Run {
	return h.current.Load()
}

// Clear drops the held Run.
func (h *ResultHolder) Clear() {
	h.current.Store(nil)
}
