package session

import "sync"

// maxID is the highest assignable id: signed bytes, and 0 is never
// assigned (§4.4, §3 invariant "assigned ids lie in [1, min(limit,127)]").
const maxID = 127

// IDAllocator hands out compact signed-byte player ids, recycling released
// ones ahead of the monotone counter.
type IDAllocator struct {
	mu      sync.Mutex
	free    []int8
	counter int8
	limit   int8
}

// NewIDAllocator caps the allocator at min(limit, 127). A non-positive limit
// makes every allocation fail.
func NewIDAllocator(limit int) *IDAllocator {
	cap := limit
	if cap > maxID {
		cap = maxID
	}
	if cap < 0 {
		cap = 0
	}
	return &IDAllocator{limit: int8(cap)}
}

// Allocate pops a recycled id if one is available; otherwise it advances the
// counter if under the cap. ok is false if the allocator is exhausted.
func (a *IDAllocator) Allocate() (id int8, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
		return id, true
	}
	if a.counter >= a.limit {
		return 0, false
	}
	a.counter++
	return a.counter, true
}

// Release returns id to the free list for reuse by a future Allocate call
// (§8 property 4).
func (a *IDAllocator) Release(id int8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, id)
}

// InUse reports how many ids are currently assigned.
func (a *IDAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.counter) - len(a.free)
}
