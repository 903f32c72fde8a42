// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package readyq_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readypoll/readyq"
	"github.com/readypoll/readyq/internal/simqueue"
)

// TestManyConcurrentWakesDeterministic replays scenario 4 (many wakes
// racing against one task) through simqueue instead of real goroutines, so
// the interleaving of notify calls relative to the poll that clones the
// waker is reproducible from one run to the next.
func TestManyConcurrentWakesDeterministic(t *testing.T) {
	chk := require.New(t)
	sched := simqueue.New()
	q := readyq.New[int]()

	task := &manualTask{}
	q.Push(task)

	// Poll once synchronously to capture a waker worth cloning, mirroring
	// what a real caller's first PollNext attempt would observe.
	res := q.TryPollNext()
	chk.Equal(readyq.Pending, res.Status)

	task.mu.Lock()
	base := task.waker
	task.mu.Unlock()
	chk.NotNil(base)

	const numWakers = 500
	for i := 0; i < numWakers; i++ {
		delay := time.Duration(i%7) * time.Millisecond
		sched.At(delay, func() {
			w := base.Clone()
			w.Wake()
			w.Close()
		})
	}
	sched.Run()
	chk.False(sched.Pending())

	task.arm(123)
	out, ok, err := q.PollNext()
	chk.True(ok)
	chk.NoError(err)
	chk.Equal(123, out)
}
