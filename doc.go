// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

// Package readyq provides an unbounded, concurrently-notifiable container
// of in-flight asynchronous tasks: a ReadyQueue that yields each task's
// output exactly once, in the order each task becomes ready. It is meant
// to sit underneath a higher-level executor that drives a large, dynamic
// set of tasks from a single polling goroutine while letting any number of
// other goroutines signal "this task may have progress to make."
//
// A ReadyQueue has exactly one owner at a time: the goroutine that calls
// Push, PollNext, Len, IsEmpty, and Close. Any number of other goroutines
// may concurrently call Wake on a Waker handed to a task by a previous
// Poll call, or on a clone of one obtained via Waker.Clone.
//
// # Task contract
//
// A Task's Poll method is given a fresh Waker on every call and must
// return Pending only after arranging for that Waker (or a Clone of it
// retained past the call) to be woken at least once in the future. A task
// that ignores its Waker on a Pending result will never be polled again.
//
// The core of this package has no context.Context dependency and performs
// no cancellation on a task's behalf: a task that wants cancellation
// support must build it into its own Poll implementation, typically by
// capturing a context.Context in its closure.
//
// # Spawning
//
// The spawn subpackage adapts ordinary goroutine-based work into the Task
// contract this package expects, for callers that would rather launch a
// plain function than implement Poll by hand.
package readyq
