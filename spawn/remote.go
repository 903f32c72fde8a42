// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package spawn

import (
	"sync"

	"github.com/readypoll/readyq"
)

// handleState is the oneshot-like block a driver and its JoinHandle share.
// Exactly one of them ever writes result/done; the other only reads it
// under mu.
type handleState[T any] struct {
	mu        sync.Mutex
	done      bool
	result    readyq.Poll[T]
	waker     *readyq.Waker
	cancelled bool
	detached  bool
}

// driver is the Task[struct{}] actually pushed onto a Queue: it polls the
// wrapped task to completion and delivers the result into handleState, or
// stops early if the handle was canceled.
//
// Because readyq.Waker carries no type parameter (see waker.go), the exact
// *readyq.Waker the driver itself is polled with can be handed straight
// through to the wrapped task: waking it re-enqueues the driver's own Node
// in the Queue's internal ReadyQueue[struct{}], which is exactly what
// drives the wrapped task's next poll.
type driver[T any] struct {
	state *handleState[T]
	inner readyq.Task[T]
}

func (d *driver[T]) Poll(w *readyq.Waker) readyq.Poll[struct{}] {
	d.state.mu.Lock()
	cancelled := d.state.cancelled && !d.state.detached
	d.state.mu.Unlock()
	if cancelled {
		return readyq.PollReady(struct{}{})
	}

	res := d.inner.Poll(w)
	if res.Status == readyq.Pending {
		return readyq.PollPending[struct{}]()
	}

	d.state.mu.Lock()
	d.state.done = true
	d.state.result = res
	waker := d.state.waker
	d.state.waker = nil
	d.state.mu.Unlock()

	if waker != nil {
		waker.Wake()
		waker.Close()
	}
	return readyq.PollReady(struct{}{})
}

// JoinHandle is a Task[T] that resolves to the wrapped task's own output
// once its driver has finished running it to completion. Pushing a
// JoinHandle onto a readyq.ReadyQueue[T] (or polling it directly) is how a
// caller observes the result of work started through SpawnWithHandle or
// SpawnLocalWithHandle.
type JoinHandle[T any] struct {
	state *handleState[T]
}

func (h *JoinHandle[T]) Poll(w *readyq.Waker) readyq.Poll[T] {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if h.state.done {
		return h.state.result
	}
	if h.state.waker != nil {
		h.state.waker.Close()
	}
	h.state.waker = w.Clone()
	return readyq.PollPending[T]()
}

// Cancel stops the driver from making further progress on the wrapped
// task the next time it is polled. A task already mid-poll when Cancel is
// called still runs to completion; Cancel only prevents the *next* poll.
// Cancel has no effect once Detach has been called.
func (h *JoinHandle[T]) Cancel() {
	h.state.mu.Lock()
	h.state.cancelled = true
	h.state.mu.Unlock()
}

// Detach disconnects this handle from its driver: the driver runs the
// wrapped task to completion regardless of whether the handle is ever
// polled or canceled again. The result is still recorded, so polling the
// handle after the driver finishes yields it. This is the Go counterpart of letting a
// RemoteHandle fall out of scope without dropping it.
func (h *JoinHandle[T]) Detach() {
	h.state.mu.Lock()
	h.state.detached = true
	h.state.mu.Unlock()
}

// SpawnWithHandle spawns task onto s and returns a JoinHandle that
// resolves to its output.
func SpawnWithHandle[T any](s Spawn, task readyq.Task[T]) (*JoinHandle[T], error) {
	state := &handleState[T]{}
	if err := s.Spawn(&driver[T]{state: state, inner: task}); err != nil {
		return nil, err
	}
	return &JoinHandle[T]{state: state}, nil
}

// SpawnLocalWithHandle is SpawnWithHandle's LocalSpawn counterpart.
func SpawnLocalWithHandle[T any](s LocalSpawn, task readyq.Task[T]) (*JoinHandle[T], error) {
	state := &handleState[T]{}
	if err := s.SpawnLocal(&driver[T]{state: state, inner: task}); err != nil {
		return nil, err
	}
	return &JoinHandle[T]{state: state}, nil
}
