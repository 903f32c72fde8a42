// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package rqnode

import "sync/atomic"

// This file implements the Vyukov intrusive MPSC queue algorithm described
// at http://www.1024cores.net/home/lock-free-algorithms/queues/intrusive-mpsc-node-based-queue
// and reproduced, with the same recovery-on-Inconsistent behavior, by
// futures-rs's ReadyQueue (see original_source/src/future/ready_queue.rs).
// Any number of goroutines may call Enqueue concurrently; Dequeue must only
// ever be called by one goroutine at a time (the consumer).

// DequeueResult is the three-way outcome of a single Dequeue call.
type DequeueResult[T any] struct {
	Node         *Node[T]
	Empty        bool
	Inconsistent bool
}

// Enqueue pushes n onto the queue rooted at head. Its only precondition,
// guaranteed by the caller, is that n's QUEUED bit was just transitioned
// from clear to set by this call's caller (SetQueuedIfClear returned true):
// that transition is what grants the right to enqueue.
//
// Steps 1-3 below match §4.B exactly, including the transient
// inconsistency between swapping head and publishing the forward link from
// the previous head: a concurrent Dequeue may observe the new head before
// the old head's forward link is written, which is exactly what
// DequeueResult.Inconsistent reports.
func enqueue[T any](head *nodePtr[T], n *Node[T]) {
	// 1. No reader can observe n yet, so this store needs no synchronization.
	n.storeWakeNext(nil)

	// 2. Publish n as the new head.
	prev := head.swap(n)

	// 3. Link the old head to n. Between this line and the previous one, a
	// consumer that has already observed n as head will see a nil forward
	// link on prev and must report Inconsistent.
	prev.storeWakeNext(n)
}

// DequeueCursor is the consumer-private cursor into the wake queue: the
// façade's "wake-queue tail" of the data model, initialized to the
// sentinel and owned exclusively by the single consumer.
type DequeueCursor[T any] struct {
	tail *Node[T]
}

// dequeue implements the five numbered rules of §4.B precisely, including
// the sentinel re-enqueue in rule 5 that installs a fresh terminator for
// the next producer.
func dequeue[T any](head *nodePtr[T], sentinel *Node[T], st *DequeueCursor[T]) DequeueResult[T] {
	tail := st.tail
	next := tail.loadWakeNext()

	if tail == sentinel {
		if next == nil {
			return DequeueResult[T]{Empty: true}
		}
		st.tail = next
		tail = next
		next = next.loadWakeNext()
	}

	if next != nil {
		st.tail = next
		return DequeueResult[T]{Node: tail}
	}

	if head.load() != tail {
		return DequeueResult[T]{Inconsistent: true}
	}

	// Install a fresh terminator so the next producer has somewhere to
	// link. The sentinel's QUEUED bit is already permanently set, so no
	// SetQueuedIfClear gate is needed for this internal re-enqueue.
	enqueue(head, sentinel)

	next = tail.loadWakeNext()
	if next != nil {
		st.tail = next
		return DequeueResult[T]{Node: tail}
	}

	return DequeueResult[T]{Inconsistent: true}
}

// nodePtr is a thin atomic-pointer wrapper kept as its own type so Inner's
// field declarations read as "the wake-queue head" rather than a bare
// atomic.Pointer.
type nodePtr[T any] struct {
	p atomic.Pointer[Node[T]]
}

func (h *nodePtr[T]) load() *Node[T]           { return h.p.Load() }
func (h *nodePtr[T]) store(n *Node[T])         { h.p.Store(n) }
func (h *nodePtr[T]) swap(n *Node[T]) *Node[T] { return h.p.Swap(n) }
