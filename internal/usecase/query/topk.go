package query

import (
	"container/heap"

	"github.com/talentgrid/matchengine/internal/domain/match"
)

// topKHeap is a bounded min-heap keeping the K best hits seen so far.
// The root is the current worst hit: lowest score, and among equal scores
// the lexicographically greatest id, so that the ascending-id tie-break is
// preserved when the heap evicts.
type topKHeap struct {
	items []match.Result
	limit int
}

func newTopKHeap(limit int) *topKHeap {
	return &topKHeap{items: make([]match.Result, 0, limit), limit: limit}
}

func (h *topKHeap) Len() int { return len(h.items) }

func (h *topKHeap) Less(i, j int) bool {
	a, b := &h.items[i], &h.items[j]
	if a.Score() != b.Score() {
		return a.Score() < b.Score()
	}
	return a.ID() > b.ID()
}

func (h *topKHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *topKHeap) Push(x any) { h.items = append(h.items, x.(match.Result)) }

func (h *topKHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// offer adds a candidate, evicting the current worst once the heap is full.
func (h *topKHeap) offer(r match.Result) {
	if h.limit == 0 {
		return
	}
	if len(h.items) < h.limit {
		heap.Push(h, r)
		return
	}
	worst := &h.items[0]
	if r.Score() < worst.Score() {
		return
	}
	if r.Score() == worst.Score() && r.ID() >= worst.ID() {
		return
	}
	h.items[0] = r
	heap.Fix(h, 0)
}

// drain empties the heap into a slice ordered by descending score, ties
// broken by ascending id.
func (h *topKHeap) drain() []match.Result {
	out := make([]match.Result, len(h.items))
	for i := len(h.items) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(match.Result)
	}
	return out
}
