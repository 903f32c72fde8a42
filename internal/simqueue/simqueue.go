// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

// Package simqueue is a deterministic discrete-event scheduler used by
// property tests that need many timed, interleaved actions (notifies,
// polls, pushes) to replay in a reproducible order instead of relying on
// real goroutine scheduling and wall-clock sleeps.
package simqueue

import (
	"cmp"
	"time"

	"github.com/addrummond/heap"
	"github.com/gammazero/deque"
)

// event is one scheduled action: run Func once simulated time reaches
// Time. Seq breaks ties between events scheduled for the same instant in
// the order they were submitted, matching the FIFO tie-break a real
// goroutine scheduler gives same-tick work.
type event struct {
	Time time.Duration
	Seq  uint64
	Func func()
}

func (e *event) Cmp(other *event) int {
	if c := cmp.Compare(e.Time, other.Time); c != 0 {
		return c
	}
	return cmp.Compare(e.Seq, other.Seq)
}

// Scheduler drives a single-threaded simulation of simulated time. All of
// its methods must be called either from outside Run or from within a
// callback Run itself is invoking; Scheduler performs no synchronization
// of its own, since the entire point is to replace concurrency with a
// deterministic replay.
type Scheduler struct {
	now      time.Duration
	nextSeq  uint64
	events   heap.Heap[event, heap.Min]
	sameTick deque.Deque[event]
}

// New creates a Scheduler with simulated time starting at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() time.Duration { return s.now }

// At schedules fn to run once simulated time reaches s.Now()+delay. delay
// must not be negative.
func (s *Scheduler) At(delay time.Duration, fn func()) {
	if delay < 0 {
		panic("simqueue: delay must not be negative")
	}
	s.schedule(s.now+delay, fn)
}

// Immediately schedules fn to run at the current simulated time, after
// whatever immediate work is already queued ahead of it.
func (s *Scheduler) Immediately(fn func()) {
	s.schedule(s.now, fn)
}

func (s *Scheduler) schedule(at time.Duration, fn func()) {
	s.nextSeq++
	heap.PushOrderable(&s.events, event{Time: at, Seq: s.nextSeq, Func: fn})
}

// Run drains every scheduled event in (time, submission order), advancing
// Now as it goes, until none remain. A callback that schedules further
// events via At/Immediately extends the run.
func (s *Scheduler) Run() {
	for {
		e, ok := heap.PopOrderable(&s.events)
		if !ok {
			return
		}
		s.now = e.Time
		s.sameTick.PushBack(e)

		// Drain every other event already due at this same instant before
		// invoking any of them, so a callback that schedules more work at
		// s.Now() is ordered after everything already due rather than
		// jumping the queue.
		for {
			peek, ok := heap.Peek(&s.events)
			if !ok || peek.Time != s.now {
				break
			}
			next, _ := heap.PopOrderable(&s.events)
			s.sameTick.PushBack(next)
		}

		for s.sameTick.Len() > 0 {
			s.sameTick.PopFront().Func()
		}
	}
}

// Pending reports whether any event remains scheduled.
func (s *Scheduler) Pending() bool {
	_, ok := heap.Peek(&s.events)
	return ok
}
