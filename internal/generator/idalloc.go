package generator

import (
	"fmt"
	"sync/atomic"
)

// IDAllocator hands out order ids that are unique across every day of a run.
// It is safe for concurrent use so day batches may be parallelized without
// colliding.
type IDAllocator struct {
	start int64
	next  atomic.Int64
}

// NewIDAllocator returns an allocator whose first id is ORD-<start, padded>.
func NewIDAllocator(start int64) *IDAllocator {
	if start < 1 {
		start = 1
	}
	alloc := &IDAllocator{start: start}
	alloc.next.Store(start)
	return alloc
}

// Next returns the next order id.
func (a *IDAllocator) Next() string {
	n := a.next.Add(1) - 1
	return fmt.Sprintf("ORD-%08d", n)
}

// Allocated returns how many ids have been handed out so far.
func (a *IDAllocator) Allocated() int64 {
	return a.next.Load() - a.start
}
