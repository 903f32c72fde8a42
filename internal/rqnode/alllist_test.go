// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package rqnode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllListPushFrontOrder(t *testing.T) {
	chk := require.New(t)
	var l AllList[int]

	a := newNode[int](1, nil)
	b := newNode[int](2, nil)
	c := newNode[int](3, nil)
	l.PushFront(a)
	l.PushFront(b)
	l.PushFront(c)

	chk.Equal(3, l.Len())
	chk.Same(c, l.Head())
	chk.Same(b, l.Next(c))
	chk.Same(a, l.Next(b))
	chk.Nil(l.Next(a))
}

func TestAllListUnlinkMiddle(t *testing.T) {
	chk := require.New(t)
	var l AllList[int]

	a := newNode[int](1, nil)
	b := newNode[int](2, nil)
	c := newNode[int](3, nil)
	l.PushFront(a)
	l.PushFront(b)
	l.PushFront(c)

	l.Unlink(b)

	chk.Equal(2, l.Len())
	chk.Same(c, l.Head())
	chk.Same(a, l.Next(c))
	chk.Nil(b.nextAll)
	chk.Nil(b.prevAll)
}

func TestAllListUnlinkHead(t *testing.T) {
	chk := require.New(t)
	var l AllList[int]

	a := newNode[int](1, nil)
	b := newNode[int](2, nil)
	l.PushFront(a)
	l.PushFront(b)

	l.Unlink(b)
	chk.Equal(1, l.Len())
	chk.Same(a, l.Head())
}

func TestAllListUnlinkTail(t *testing.T) {
	chk := require.New(t)
	var l AllList[int]

	a := newNode[int](1, nil)
	b := newNode[int](2, nil)
	l.PushFront(a)
	l.PushFront(b)

	l.Unlink(a)
	chk.Equal(1, l.Len())
	chk.Same(b, l.Head())
	chk.Nil(l.Next(b))
}

func TestAllListDrainWhileWalking(t *testing.T) {
	chk := require.New(t)
	var l AllList[int]

	for i := uint64(1); i <= 5; i++ {
		l.PushFront(newNode[int](i, nil))
	}

	count := 0
	for n := l.Head(); n != nil; {
		next := l.Next(n)
		l.Unlink(n)
		count++
		n = next
	}

	chk.Equal(5, count)
	chk.Equal(0, l.Len())
	chk.Nil(l.Head())
}
