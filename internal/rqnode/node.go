// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

// Package rqnode implements the per-task record and the intrusive
// multi-producer/single-consumer wake queue that a ReadyQueue drives. It is
// the "hard part" described by the surrounding package: a single Node is
// simultaneously a member of a consumer-owned doubly linked all-list and,
// while its QUEUED bit is set, of a lock-free wake queue that any number of
// goroutines may push onto concurrently.
//
// rqnode knows nothing about the task-polling contract itself — it stores a
// task as an opaque any, and leaves constructing and invoking the wake
// target to its caller (the readyq façade package). This keeps the
// concurrency primitives here independent of the public Task/Waker types.
package rqnode

import (
	"sync/atomic"
)

// queued is the top bit of a Node's packed state word. The remaining bits
// hold a reference count. The bit marks wake-queue membership and, once a
// Node's task has been released, keeps later Notify calls from enqueuing it
// again. It is not part of the reference count: DecRef ignores it.
const queued uint64 = 1 << 63

// maxRefs bounds the refcount half of the state word, leaving the top bit
// for queued and guarding against runaway reference leaks wrapping the
// counter.
const maxRefs uint64 = queued - 1

// Node is a per-task record. Once allocated it never moves; all of its
// fields except state, wakeNext and its directory entry are touched only by
// the single consumer goroutine.
type Node[T any] struct {
	// id is this Node's key in the owning Inner's directory, assigned once
	// at creation. It is what a Waker's (handle, id) pair carries instead of
	// a raw memory address (see DESIGN.md).
	id uint64

	// task holds the user task until it completes or the Node is released.
	// Mutated only by the consumer. Typed any because the Task/Poll
	// contract is defined by the façade package, not rqnode.
	task any

	// all-list links, mutated only by the consumer.
	prevAll *Node[T]
	nextAll *Node[T]

	// wakeNext is this Node's forward link in the wake queue. Written by
	// producers during enqueue and by the consumer during dequeue.
	wakeNext atomic.Pointer[Node[T]]

	// state packs the QUEUED flag (top bit) and a reference count (the
	// rest) into a single atomic word. A Node is evicted from its Inner's
	// directory once the refcount portion reaches zero, whether or not
	// QUEUED is set (see DecRef).
	state atomic.Uint64
}

// newNode allocates a Node holding task, already marked QUEUED with a
// single reference (the one the all-list membership implies).
func newNode[T any](id uint64, task any) *Node[T] {
	n := &Node[T]{id: id, task: task}
	n.state.Store(queued | 1)
	return n
}

// newSentinel allocates the permanent stub Node for a wake queue. Its
// refcount of 1 is never decremented to zero: the sentinel is destroyed
// together with its Inner, not through the wake-target protocol.
func newSentinel[T any]() *Node[T] {
	n := &Node[T]{}
	n.state.Store(queued | 1)
	return n
}

// ID returns the directory key used to address this Node from a Waker.
func (n *Node[T]) ID() uint64 { return n.id }

// TakeTask clears and returns the task slot, or nil and false if it was
// already cleared (a lingering wake-queue reference with no work left to
// do).
func (n *Node[T]) TakeTask() (any, bool) {
	t := n.task
	n.task = nil
	return t, t != nil
}

// RestoreTask puts task back into the slot after a poll that reported
// Pending, so the next dequeue of this Node polls the same task again.
func (n *Node[T]) RestoreTask(task any) { n.task = task }

// ClearQueued clears the QUEUED bit. Per §4.E, this must happen before
// polling so that a wake racing with the poll either finds QUEUED already
// set (absorbed by the in-progress poll) or legitimately clears-then-sets
// it, re-enqueuing the Node.
func (n *Node[T]) ClearQueued() {
	n.state.And(^queued)
}

// SetQueuedIfClear atomically sets QUEUED and reports whether it was
// previously clear. This is the gate that grants a producer the right to
// enqueue the Node (§4.B precondition).
func (n *Node[T]) SetQueuedIfClear() (wasClear bool) {
	for {
		old := n.state.Load()
		if old&queued != 0 {
			return false
		}
		if n.state.CompareAndSwap(old, old|queued) {
			return true
		}
	}
}

// IncRef atomically increments the refcount half of state. A relaxed
// increment is sufficient: a new reference is always derived from an
// existing live one, so no additional synchronization is required to
// observe the Node.
func (n *Node[T]) IncRef() {
	old := n.state.Add(1) - 1
	if old&maxRefs == maxRefs {
		panic("readyq: node refcount overflow")
	}
}

// DecRef releases one reference. Node lifetime in Go is managed by the
// garbage collector once every structural reference (all-list, wake queue,
// directory, outstanding handles) is gone, so "freeing" a Node here means
// evicting it from the Inner directory so nothing keeps it reachable.
//
// DecRef reports whether this decrement brought the refcount portion of
// state to zero, independent of QUEUED: a completed Node keeps QUEUED set
// (via ReleaseNode/SetQueuedIfClear) for the rest of its life, so checking
// the whole word against zero would never be satisfied and the Node would
// never be evicted. Subtracting 1 from the full word is safe because the
// refcount portion is always positive when DecRef is called (every call
// releases a reference that was actually held), so the subtraction never
// borrows into the QUEUED bit.
func (n *Node[T]) DecRef() (last bool) {
	return n.state.Add(^uint64(0))&^queued == 0
}

func (n *Node[T]) loadWakeNext() *Node[T] { return n.wakeNext.Load() }
func (n *Node[T]) storeWakeNext(v *Node[T]) {
	n.wakeNext.Store(v)
}
