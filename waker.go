// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package readyq

// wakeTarget is the non-generic subset of *rqnode.Inner[T] a Waker needs.
// Every rqnode.Inner[T], regardless of its task output type T, satisfies
// this interface identically: Notify/AcquireHandleRef/ReleaseHandleRef
// never mention T in their signatures. Keeping Waker itself non-generic
// this way is what lets it cross ReadyQueue[T] instantiations, which the
// spawn subpackage's driver/handle split depends on (§4.F).
type wakeTarget interface {
	Notify(id uint64)
	AcquireHandleRef(id uint64)
	ReleaseHandleRef(id uint64)
}

// Waker is the wake target passed to a task on each Poll call: the opaque
// (handle, id) pair of §6, resolved back to a live Node through the shared
// Inner's directory rather than a raw pointer. A Waker is safe to call from
// any goroutine, including ones unrelated to the ReadyQueue's consumer.
type Waker struct {
	target wakeTarget
	id     uint64
}

// newWaker constructs the ephemeral per-poll Waker described in §4.E: it
// carries a fresh Inner reference (acquired by the caller via
// Inner.AcquirePollRef) but, deliberately, no additional Node reference —
// the Node is already kept alive by its all-list and wake-queue membership
// for the duration of the poll.
func newWaker(target wakeTarget, id uint64) *Waker {
	return &Waker{target: target, id: id}
}

// Wake schedules this Waker's Node for re-poll. It is idempotent: calling
// it any number of times while the Node is already queued has the same
// effect as calling it once.
func (w *Waker) Wake() {
	w.target.Notify(w.id)
}

// Clone returns an independent Waker referencing the same Node, suitable
// for a task to stash past the Poll call that produced the original (the
// usual reason a task needs more than the ephemeral per-poll Waker: it
// must outlive that call to be woken later). The clone holds its own Node
// and Inner references and must eventually be released with Close.
func (w *Waker) Clone() *Waker {
	w.target.AcquireHandleRef(w.id)
	return &Waker{target: w.target, id: w.id}
}

// Close releases the references a cloned Waker holds. It must be called
// exactly once per Clone, and must not be called on the ephemeral Waker a
// task is handed by Poll itself — that one is released by the façade after
// the Poll call returns.
func (w *Waker) Close() {
	w.target.ReleaseHandleRef(w.id)
}
