package testutil

import "sync"

// IDs hands out compiler node IDs for fixtures.
//
// One allocator is shared by every file of a Unit so IDs stay unique across
// the compilation unit, as solc guarantees.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type IDs struct {
	mu   sync.Mutex
	next int64
}

// NewIDs creates an allocator whose first ID is 1.
func NewIDs() *IDs {
	return &IDs{}
}

// Next returns a fresh ID.
func (a *IDs) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	return a.next
}

// Current returns the last ID handed out, or 0.
func (a *IDs) Current() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
