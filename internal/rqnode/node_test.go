// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package rqnode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNodeStartsQueuedWithOneRef(t *testing.T) {
	chk := require.New(t)
	n := newNode[int](1, "task")

	chk.Equal(queued|1, n.state.Load())
	task, ok := n.TakeTask()
	chk.True(ok)
	chk.Equal("task", task)

	// A second TakeTask reports nothing left to do.
	_, ok = n.TakeTask()
	chk.False(ok)
}

func TestSetQueuedIfClear(t *testing.T) {
	chk := require.New(t)
	n := newNode[int](1, nil)
	n.ClearQueued()

	chk.True(n.SetQueuedIfClear())
	chk.False(n.SetQueuedIfClear())
}

func TestIncRefDecRef(t *testing.T) {
	chk := require.New(t)
	n := newNode[int](1, nil)

	n.IncRef()
	chk.False(n.DecRef())

	n.ClearQueued()
	chk.True(n.DecRef())
}

func TestIncRefPanicsOnOverflow(t *testing.T) {
	chk := require.New(t)
	n := newNode[int](1, nil)
	n.state.Store(maxRefs)

	chk.Panics(func() { n.IncRef() })
}
