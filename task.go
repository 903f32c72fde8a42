// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package readyq

// Task is anything a ReadyQueue can drive to completion: a single Poll
// step that reports readiness, pending, or failure. A task's output is
// produced exactly once, from whichever Poll call returns Ready (invariant
// 1's "yields each task's output exactly once").
//
// On returning Pending, a task must have arranged for the Waker it was
// just given to be woken at least once in the future — otherwise its Node
// will never be re-enqueued and the task will stall forever. A task may
// retain the Waker (or a clone of it, see Waker.Clone) past the Poll call
// that produced it for exactly this purpose.
type Task[T any] interface {
	Poll(w *Waker) Poll[T]
}

// Status is the three-way outcome of a single Poll call.
type Status int

const (
	// Pending means the task made no progress this call and has arranged
	// for its Waker to be invoked once it might.
	Pending Status = iota
	// Ready means the task produced its final output, successfully or not.
	Ready
)

// Poll is the result of one Task.Poll call. Output and Err are only
// meaningful when Status is Ready; a Pending result carries neither.
type Poll[T any] struct {
	Status Status
	Output T
	Err    error
}

// PollPending constructs a Pending result.
func PollPending[T any]() Poll[T] {
	return Poll[T]{Status: Pending}
}

// PollReady constructs a successful Ready result.
func PollReady[T any](output T) Poll[T] {
	return Poll[T]{Status: Ready, Output: output}
}

// PollReadyErr constructs a failed Ready result.
func PollReadyErr[T any](err error) Poll[T] {
	return Poll[T]{Status: Ready, Err: err}
}

// TaskFunc adapts a plain poll function into a Task, mirroring the
// functional-literal adapter pattern Go's standard library uses for
// single-method interfaces (e.g. http.HandlerFunc).
type TaskFunc[T any] func(w *Waker) Poll[T]

func (f TaskFunc[T]) Poll(w *Waker) Poll[T] { return f(w) }
