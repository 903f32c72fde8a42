// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package readyq

import (
	"github.com/readypoll/readyq/internal/park"
	"github.com/readypoll/readyq/internal/rqnode"
)

// ReadyQueue is an unbounded, concurrently-notifiable container of
// in-flight tasks. Exactly one goroutine at a time may own a ReadyQueue
// and call Push, PollNext, Len, IsEmpty, or Close on it; any number of
// other goroutines may hold Wakers obtained from tasks it has polled and
// call Wake on them concurrently with all of the above.
type ReadyQueue[T any] struct {
	inner  *rqnode.Inner[T]
	all    rqnode.AllList[T]
	cursor *rqnode.DequeueCursor[T]
	parker *park.Parker
	length int
	closed bool
}

// New creates an empty ReadyQueue.
func New[T any]() *ReadyQueue[T] {
	p := &park.Parker{}
	in := rqnode.NewInner[T](p)
	return &ReadyQueue[T]{
		inner:  in,
		cursor: in.NewDequeueCursor(),
		parker: p,
	}
}

// Len returns the number of tasks currently held by the queue, whether
// pending or awaiting their first poll.
func (q *ReadyQueue[T]) Len() int { return q.length }

// IsEmpty reports whether the queue holds no tasks at all.
func (q *ReadyQueue[T]) IsEmpty() bool { return q.length == 0 }

// Push adds task to the queue. No polling is performed; the caller must
// call PollNext afterwards to drive it. Push panics if the queue has
// already been closed.
func (q *ReadyQueue[T]) Push(task Task[T]) {
	if q.closed {
		panic(ErrQueueClosed)
	}
	n := q.inner.AllocNode(task)
	q.all.PushFront(n)
	q.inner.Enqueue(n)
	q.length++
}

// PollStep registers the caller's interest with the parent parker, then
// makes one non-blocking attempt to drain a completed task from the wake
// queue. The returned channel is only meaningful when the result is
// Pending: it closes once a producer's notify (or this call's own
// registration) might make another attempt worthwhile. Composing PollStep
// with other channels in a select is what lets the spawn subpackage's
// pump goroutine multiplex queue readiness with its own task intake without
// busy-polling.
func (q *ReadyQueue[T]) PollStep() (Poll[T], <-chan struct{}) {
	ready := make(chan struct{})
	q.parker.Register(ready)
	return q.pollOnce(), ready
}

// pollOnce drains the wake queue until it finds a Node whose task reports
// Ready, or the queue goes Empty. An Inconsistent report is retried
// immediately in the same call, and a Node that reports Pending keeps its
// task and the loop moves on to the next dequeue, since neither requires
// suspending the caller (§4.B rule 4/5, scenario 6).
func (q *ReadyQueue[T]) pollOnce() Poll[T] {
	for {
		result := q.inner.Dequeue(q.cursor)
		switch {
		case result.Inconsistent:
			continue

		case result.Empty:
			return PollPending[T]()

		default:
			n := result.Node
			task, has := n.TakeTask()
			if !has {
				// This is a duplicate wake-queue entry: a Notify raced the
				// previous drain's ReleaseNode and re-enqueued n after its
				// task was already taken. ReleaseNode withheld its release
				// for exactly this case, so release it now instead.
				q.inner.ReleaseDrainedRef(n)
				continue
			}

			// Clear QUEUED before polling so a wake racing with this poll
			// is never lost (§4.E).
			n.ClearQueued()

			q.inner.AcquirePollRef()
			w := newWaker(q.inner, n.ID())
			res := task.(Task[T]).Poll(w)
			q.inner.DropRaw()

			if res.Status == Pending {
				n.RestoreTask(task)
				continue
			}

			q.all.Unlink(n)
			q.inner.ReleaseNode(n)
			q.length--
			return res
		}
	}
}

// TryPollNext makes one non-blocking attempt to drain a completed task.
// Status is Pending both when the queue holds tasks but none are ready yet
// and, indistinguishably, when the queue holds no tasks at all — callers
// that need to tell those apart should consult IsEmpty.
func (q *ReadyQueue[T]) TryPollNext() Poll[T] {
	res, _ := q.PollStep()
	return res
}

// PollNext drives the queue's tasks until one completes or the queue is
// empty, suspending the calling goroutine on the parent parker in between
// as needed. It returns (output, true, err) for a task that completed
// (err is that task's own failure, if any), or (zero, false, nil) once the
// queue holds no further tasks.
func (q *ReadyQueue[T]) PollNext() (output T, ok bool, err error) {
	for {
		res, ready := q.PollStep()
		if res.Status == Ready {
			return res.Output, true, res.Err
		}
		if q.length == 0 {
			var zero T
			return zero, false, nil
		}
		<-ready
	}
}

// Close releases every task still held by the queue without polling it
// further. Calling it again after the first call, or on an empty queue, is
// a harmless no-op.
func (q *ReadyQueue[T]) Close() {
	if q.closed {
		return
	}
	q.closed = true
	for n := q.all.Head(); n != nil; {
		next := q.all.Next(n)
		q.all.Unlink(n)
		// A Node still sitting in the wake queue, never drained, has QUEUED
		// set; clear it unconditionally so ReleaseNode always releases here
		// rather than deferring to a drain that will now never happen.
		n.ClearQueued()
		q.inner.ReleaseNode(n)
		n = next
	}
	q.length = 0
}
