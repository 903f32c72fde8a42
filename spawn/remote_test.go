// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package spawn_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readypoll/readyq"
	"github.com/readypoll/readyq/spawn"
)

// onceReadyTask reports Ready with output on its first poll.
type onceReadyTask[T any] struct {
	output T
	err    error
}

func (o onceReadyTask[T]) Poll(w *readyq.Waker) readyq.Poll[T] {
	if o.err != nil {
		return readyq.PollReadyErr[T](o.err)
	}
	return readyq.PollReady(o.output)
}

func TestSpawnWithHandleResolvesToTaskOutput(t *testing.T) {
	chk := require.New(t)
	q := spawn.NewQueue()
	defer q.Close()

	handle, err := spawn.SpawnWithHandle[int](q, onceReadyTask[int]{output: 42})
	chk.NoError(err)

	rq := readyq.New[int]()
	rq.Push(handle)

	out, ok, err := rq.PollNext()
	chk.True(ok)
	chk.NoError(err)
	chk.Equal(42, out)
}

func TestSpawnWithHandlePropagatesError(t *testing.T) {
	chk := require.New(t)
	q := spawn.NewQueue()
	defer q.Close()

	wantErr := errors.New("task failed")
	handle, err := spawn.SpawnWithHandle[int](q, onceReadyTask[int]{err: wantErr})
	chk.NoError(err)

	rq := readyq.New[int]()
	rq.Push(handle)

	_, ok, err := rq.PollNext()
	chk.True(ok)
	chk.ErrorIs(err, wantErr)
}

// slowTask reports Pending a fixed number of times, waking itself each
// time, before completing. It lets a test observe a JoinHandle polled
// before its driver has finished.
type slowTask struct {
	remaining int32
	output    int
}

func (s *slowTask) Poll(w *readyq.Waker) readyq.Poll[int] {
	if atomic.AddInt32(&s.remaining, -1) >= 0 {
		w.Wake()
		return readyq.PollPending[int]()
	}
	return readyq.PollReady(s.output)
}

func TestSpawnWithHandleWaitsForCompletion(t *testing.T) {
	chk := require.New(t)
	q := spawn.NewQueue()
	defer q.Close()

	handle, err := spawn.SpawnWithHandle[int](q, &slowTask{remaining: 5, output: 9})
	chk.NoError(err)

	rq := readyq.New[int]()
	rq.Push(handle)

	out, ok, err := rq.PollNext()
	chk.True(ok)
	chk.NoError(err)
	chk.Equal(9, out)
}

func TestJoinHandleDetachLetsDriverFinishIndependently(t *testing.T) {
	chk := require.New(t)
	q := spawn.NewQueue()
	defer q.Close()

	task := onceReadyTask[int]{output: 1}
	handle, err := spawn.SpawnWithHandle[int](q, task)
	chk.NoError(err)
	handle.Detach()

	// The driver still runs to completion even though the handle is
	// detached; nothing else observes its result.
	require.Eventually(t, func() bool {
		rq := readyq.New[int]()
		rq.Push(handle)
		res := rq.TryPollNext()
		return res.Status == readyq.Ready
	}, time.Second, time.Millisecond)
}

func TestSpawnLocalWithHandle(t *testing.T) {
	chk := require.New(t)
	q := spawn.NewQueue()
	defer q.Close()

	handle, err := spawn.SpawnLocalWithHandle[string](q, onceReadyTask[string]{output: "ok"})
	chk.NoError(err)

	rq := readyq.New[string]()
	rq.Push(handle)

	out, ok, err := rq.PollNext()
	chk.True(ok)
	chk.NoError(err)
	chk.Equal("ok", out)
}
