// Package priority_queue provides a minimum-priority heap used to schedule
// route expiration events. It is the same container/heap-backed design the
// forwarder uses for its dead nonce list expiration queue, made generic.
package priority_queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

type item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	index    int
}

type wrapper[V any, P constraints.Ordered] []*item[V, P]

func (pq wrapper[V, P]) Len() int { return len(pq) }

func (pq wrapper[V, P]) Less(i, j int) bool { return pq[i].priority < pq[j].priority }

func (pq wrapper[V, P]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *wrapper[V, P]) Push(x any) {
	it := x.(*item[V, P])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *wrapper[V, P]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}

// Queue is a minimum-priority queue of values of type V ordered by P.
type Queue[V any, P constraints.Ordered] struct {
	pq wrapper[V, P]
}

// New creates an empty priority queue.
func New[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{}
}

// Len returns the number of items in the queue.
func (q *Queue[V, P]) Len() int { return q.pq.Len() }

// Push inserts value with the given priority and returns a token that can
// later be passed to Remove to cancel the event before it fires.
func (q *Queue[V, P]) Push(value V, priority P) *Token {
	it := &item[V, P]{object: value, priority: priority}
	heap.Push(&q.pq, it)
	return &Token{index: &it.index}
}

// Peek returns the minimum-priority value without removing it.
func (q *Queue[V, P]) Peek() V { return q.pq[0].object }

// PeekPriority returns the minimum priority without removing it.
func (q *Queue[V, P]) PeekPriority() P { return q.pq[0].priority }

// Pop removes and returns the minimum-priority value.
func (q *Queue[V, P]) Pop() V {
	return heap.Pop(&q.pq).(*item[V, P]).object
}

// Remove cancels the event referenced by tok, if it is still pending.
// Removing an already-fired or already-removed token is a no-op, making
// cancellation idempotent as spec.md's Design Notes require.
func (q *Queue[V, P]) Remove(tok *Token) {
	if tok == nil || *tok.index < 0 || *tok.index >= len(q.pq) {
		return
	}
	heap.Remove(&q.pq, *tok.index)
}

// Token is an opaque handle to a pending queue entry, used to implement the
// Route's cancellable expirationEvent from spec.md §3/§9.
type Token struct {
	index *int
}
