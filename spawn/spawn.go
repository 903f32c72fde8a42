// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

// Package spawn adapts readyq.ReadyQueue into the Spawn/LocalSpawn
// capabilities a caller hands to arbitrary producers: a way to launch a
// fire-and-forget task, or one whose output is awaited through a
// JoinHandle, without any of those producers needing to be the queue's
// single owning goroutine.
package spawn

import (
	"sync"

	"github.com/readypoll/readyq"
	"github.com/readypoll/readyq/internal/cerr"
)

// ErrShutdown is returned by Spawn/SpawnLocal once the Queue's Close
// method has been called.
const ErrShutdown = cerr.Error("executor is shut down")

// funcTask boxes a plain function as a one-shot Task[struct{}]: it runs fn
// to completion the first time it is polled and reports Ready immediately,
// the Go counterpart of boxing a Future<Output = ()> for SpawnExt.spawn.
type funcTask struct {
	fn func() error
}

func (t funcTask) Poll(w *readyq.Waker) readyq.Poll[struct{}] {
	if err := t.fn(); err != nil {
		return readyq.PollReadyErr[struct{}](err)
	}
	return readyq.PollReady(struct{}{})
}

// FromFunc boxes fn as a fire-and-forget Task[struct{}] suitable for Spawn
// or SpawnLocal.
func FromFunc(fn func() error) readyq.Task[struct{}] {
	return funcTask{fn: fn}
}

// Spawn is the cross-goroutine-safe capability to launch a fire-and-forget
// task. Any number of goroutines may call Spawn concurrently.
type Spawn interface {
	Spawn(task readyq.Task[struct{}]) error
	Status() error
}

// LocalSpawn is the non-transferable counterpart to Spawn, for callers
// that only ever spawn from the goroutine that owns the Queue. Go draws no
// compile-time distinction between the two the way some other ecosystems
// distinguish thread-safe from single-threaded task types, but a *Queue
// still only grants LocalSpawn to its owning goroutine by convention
// rather than enforcement — callers that hand a Queue to other goroutines
// should use the Spawn interface, not LocalSpawn, to document that
// intent.
type LocalSpawn interface {
	SpawnLocal(task readyq.Task[struct{}]) error
	StatusLocal() error
}

// Queue is the single concrete type implementing both Spawn and
// LocalSpawn. It owns a readyq.ReadyQueue[struct{}] and a dedicated pump
// goroutine that is that queue's sole owner; Spawn/SpawnLocal hand tasks
// to the pump over a channel rather than calling Push directly, since
// ReadyQueue itself permits only one goroutine at a time to call its
// façade methods.
type Queue struct {
	rq        *readyq.ReadyQueue[struct{}]
	incoming  chan readyq.Task[struct{}]
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a Queue and starts its pump goroutine.
func NewQueue() *Queue {
	q := &Queue{
		rq:       readyq.New[struct{}](),
		incoming: make(chan readyq.Task[struct{}]),
		done:     make(chan struct{}),
	}
	go q.pump()
	return q
}

// Spawn implements Spawn.
func (q *Queue) Spawn(task readyq.Task[struct{}]) error {
	select {
	case q.incoming <- task:
		return nil
	case <-q.done:
		return ErrShutdown
	}
}

// SpawnLocal implements LocalSpawn. In this port it behaves identically to
// Spawn; see LocalSpawn's doc comment.
func (q *Queue) SpawnLocal(task readyq.Task[struct{}]) error {
	return q.Spawn(task)
}

// Status reports whether the Queue is likely to accept a subsequent Spawn.
func (q *Queue) Status() error {
	select {
	case <-q.done:
		return ErrShutdown
	default:
		return nil
	}
}

// StatusLocal implements LocalSpawn's Status counterpart.
func (q *Queue) StatusLocal() error {
	return q.Status()
}

// Close stops the pump goroutine once its current task, if any, finishes
// draining, releasing any tasks still in flight without polling them
// further. Close does not wait for in-flight tasks spawned before it was
// called to complete; callers that need that guarantee should coordinate
// it themselves, e.g. via a WaitGroup captured by each task.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// pump is the sole goroutine that ever calls q.rq's façade methods. It
// multiplexes newly spawned tasks with the queue's own readiness signal so
// that neither source of work is missed and neither is busy-polled.
func (q *Queue) pump() {
	defer q.rq.Close()
	for {
		select {
		case task := <-q.incoming:
			q.rq.Push(task)
			continue
		case <-q.done:
			return
		default:
		}

		res, ready := q.rq.PollStep()
		if res.Status == readyq.Ready {
			// Fire-and-forget: a spawned task's own error, if any, was
			// already surfaced through whatever side channel it used
			// (see SpawnWithHandle's JoinHandle for tasks that need
			// their result observed).
			continue
		}

		if q.rq.IsEmpty() {
			select {
			case task := <-q.incoming:
				q.rq.Push(task)
			case <-q.done:
				return
			}
			continue
		}

		select {
		case <-ready:
		case task := <-q.incoming:
			q.rq.Push(task)
		case <-q.done:
			return
		}
	}
}
