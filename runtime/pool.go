package runtime

import (
	"container/heap"
	"sync"
)

// GuestIDPool hands out the small integer suffixes of default guest
// identities. Reclaimed ids are recycled lowest-first before the high-water
// mark grows, so churn never exhausts the namespace.
type GuestIDPool struct {
	mu        sync.Mutex
	reclaimed intHeap
	next      int
}

func NewGuestIDPool() *GuestIDPool {
	return &GuestIDPool{next: 1}
}

// Allocate returns the smallest reclaimed id if any exist, else the next
// fresh one. Never blocks, never fails.
func (p *GuestIDPool) Allocate() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reclaimed.Len() > 0 {
		return heap.Pop(&p.reclaimed).(int)
	}
	id := p.next
	p.next++
	return id
}

// Reclaim returns an id to the pool. Callers must only reclaim ids they
// previously allocated and have fully released.
func (p *GuestIDPool) Reclaim(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	heap.Push(&p.reclaimed, id)
}

type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
