// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package rqnode

import (
	"sync"
	"sync/atomic"
)

// Inner is the shared, refcounted block every wake handle and the
// ReadyQueue façade itself hold a reference to. It owns the wake-queue
// head, the permanent sentinel, the directory that resolves a wake
// handle's opaque id back to a live Node, and the parent parker the
// consumer suspends on.
type Inner[T any] struct {
	sentinel *Node[T]
	head     nodePtr[T]

	mu        sync.Mutex
	directory map[uint64]*Node[T]
	nextID    uint64

	parker Parker

	// refCount is Inner's own reference count: the façade holds one, and
	// each outstanding wake handle holds one (see CloneRaw/DropRaw).
	refCount atomic.Int64
}

// Parker is the single-slot register-and-wake primitive a consumer uses to
// suspend between polls and that any producer wakes from another goroutine.
// It is satisfied by *park.Parker; the interface indirection keeps rqnode
// free of a dependency on that package's concrete type.
type Parker interface {
	Register(ready chan struct{})
	Wake()
}

// NewInner allocates a new Inner with its sentinel already installed as
// both the wake-queue's sole member and the cursor the façade will hand
// back via NewDequeueCursor.
func NewInner[T any](p Parker) *Inner[T] {
	sentinel := newSentinel[T]()
	in := &Inner[T]{
		sentinel:  sentinel,
		directory: make(map[uint64]*Node[T]),
		parker:    p,
	}
	in.head.store(sentinel)
	in.refCount.Store(1)
	return in
}

// NewDequeueCursor returns a dequeue cursor initialized to the sentinel, as
// the façade's wake-queue tail must be on construction.
func (in *Inner[T]) NewDequeueCursor() *DequeueCursor[T] {
	return &DequeueCursor[T]{tail: in.sentinel}
}

// Dequeue drains one Node from the wake queue using the façade-owned
// cursor st.
func (in *Inner[T]) Dequeue(st *DequeueCursor[T]) DequeueResult[T] {
	return dequeue(&in.head, in.sentinel, st)
}

// IsSentinel reports whether n is the permanent stub Node, which must
// never be returned to a consumer as live data (invariant 4).
func (in *Inner[T]) IsSentinel(n *Node[T]) bool {
	return n == in.sentinel
}

// AllocNode creates and registers a new Node holding task, ready for
// immediate enqueue into both the all-list and the wake queue.
func (in *Inner[T]) AllocNode(task any) *Node[T] {
	in.mu.Lock()
	in.nextID++
	id := in.nextID
	n := newNode[T](id, task)
	in.directory[id] = n
	in.mu.Unlock()
	return n
}

// Enqueue pushes n into the wake queue. Called by ReadyQueue.Push for a
// freshly allocated Node (which starts out QUEUED) and, internally, by
// Notify when it observes a transition from clear to set.
func (in *Inner[T]) Enqueue(n *Node[T]) {
	enqueue(&in.head, n)
}

// ReleaseNode implements the consumer-side half of Node teardown described
// in §4.E: the task is dropped and the Node's QUEUED bit is set so any
// future Notify becomes a no-op until the next wake-queue drain frees it.
//
// SetQueuedIfClear's result decides who owns releasing the reference this
// call holds. If QUEUED was clear, nothing raced this completion and the
// reference is released here. If QUEUED was already set, a concurrent
// Notify beat this call to re-enqueuing n — its duplicate wake-queue entry
// will be drained later, find TakeTask empty, and release the reference
// then (see ReadyQueue.pollOnce's lingering-reference branch). Releasing
// it here too would evict n from the directory while that duplicate entry
// is still outstanding, letting a concurrently held Waker panic on a Wake
// or Close that arrives after.
func (in *Inner[T]) ReleaseNode(n *Node[T]) {
	n.task = nil
	if n.SetQueuedIfClear() {
		in.releaseRef(n)
	}
}

// ReleaseDrainedRef releases the reference owed to a duplicate wake-queue
// entry drained with an empty task slot — the complementary half of the
// race ReleaseNode defers (§4.E): when a concurrent Notify re-enqueues a
// Node after its task already completed, that duplicate entry is what
// eventually releases the reference ReleaseNode withheld.
func (in *Inner[T]) ReleaseDrainedRef(n *Node[T]) {
	in.releaseRef(n)
}

// releaseRef drops one reference to n, evicting it from the directory if
// that reference was the last one.
func (in *Inner[T]) releaseRef(n *Node[T]) {
	if n.DecRef() {
		in.mu.Lock()
		delete(in.directory, n.id)
		in.mu.Unlock()
	}
}

// lookup resolves id to its live Node via the directory. It panics if id
// does not name a live Node, which would indicate a wake handle used after
// every reference to its Node was already released — a contract violation
// by the caller, not a recoverable runtime condition.
func (in *Inner[T]) lookup(id uint64) *Node[T] {
	in.mu.Lock()
	n, ok := in.directory[id]
	in.mu.Unlock()
	if !ok {
		panic("readyq: wake handle used after its node was released")
	}
	return n
}

// Notify implements the wake-target protocol's notify(id) operation
// (§4.D): if id's Node was not already queued, it is enqueued and the
// parent parker is woken. If it was already queued, the call is a no-op —
// the Node is already on its way to being polled again.
func (in *Inner[T]) Notify(id uint64) {
	n := in.lookup(id)
	if in.IsSentinel(n) {
		panic("readyq: notify called on the sentinel node")
	}
	if n.SetQueuedIfClear() {
		in.Enqueue(n)
		in.parker.Wake()
	}
}

// AcquireHandleRef implements clone_handle(id)'s reference bookkeeping: it
// increments both the Node's refcount and Inner's own refcount, the two
// references a cloned wake handle needs to hold independently of the one
// it was cloned from.
func (in *Inner[T]) AcquireHandleRef(id uint64) {
	n := in.lookup(id)
	n.IncRef()
	in.CloneRaw()
}

// ReleaseHandleRef implements drop_handle(id): it releases the Node
// reference and the Inner reference independently, per §6.
func (in *Inner[T]) ReleaseHandleRef(id uint64) {
	n := in.lookup(id)
	in.releaseRef(n)
	in.DropRaw()
}

// AcquirePollRef increments only Inner's own refcount, for the transient
// wake handle constructed fresh on every poll attempt (§4.E: "construct a
// wake handle carrying a new Inner reference plus the Node's id"). Unlike
// AcquireHandleRef this does not touch the Node's refcount: the Node is
// already kept alive by its all-list/wake-queue membership for the
// duration of the poll call.
func (in *Inner[T]) AcquirePollRef() {
	in.CloneRaw()
}

// CloneRaw increments Inner's own reference count.
func (in *Inner[T]) CloneRaw() {
	old := in.refCount.Add(1) - 1
	if old == 1<<62 {
		panic("readyq: inner refcount overflow")
	}
}

// DropRaw decrements Inner's own reference count. Inner has no destructor
// to run in Go beyond becoming unreachable, so DropRaw is a no-op beyond
// that implicit release once the count reaches zero.
func (in *Inner[T]) DropRaw() {
	in.refCount.Add(-1)
}
