// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

// Package park implements a single-slot register-and-wake primitive: the
// "parent parker" a ReadyQueue's consumer registers itself with before each
// poll attempt, and that any producer goroutine wakes once it has made a
// previously pending Node ready again.
package park

import "sync/atomic"

// Parker is a single-slot register-and-wake primitive. Its zero value is
// ready to use. Register records the channel that a subsequent Wake call
// will close, exactly once, regardless of how many times Wake is called
// before the next Register.
//
// Internally it is an atomic swap of a pointer to the registered channel,
// closed to broadcast a single change rather than supporting repeated
// Load/Store over an arbitrary value.
type Parker struct {
	slot atomic.Pointer[chan struct{}]
}

// Register installs ready as the channel the next Wake call will close.
// The consumer must register before checking for fresh work and blocking,
// so that a Wake racing with the check is not missed.
func (p *Parker) Register(ready chan struct{}) {
	p.slot.Store(&ready)
}

// Wake closes the most recently registered channel, if any. Calling Wake
// with nothing registered, or calling it more than once for the same
// registration, is safe and has no additional effect.
func (p *Parker) Wake() {
	s := p.slot.Swap(nil)
	if s == nil {
		return
	}
	close(*s)
}
