// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// StackNode is the pool-allocated node backing [Stack]. prev points
// to the node immediately below on the stack; the bottom node's prev
// is the null index.
type StackNode[T any] struct {
	data T
	prev atomix.Uint128 // lo = index of node below (or nullIdx), hi = tag
}

// Stack is a multi-producer, multi-consumer lock-free LIFO. Every
// node it holds lives inside a [Pool], so Push/Pop never allocate.
//
// The zero value is not usable; construct with [NewStack] or
// [NewStackCapacity].
type Stack[T any] struct {
	top atomix.Uint128 // lo = index of top node (or nullIdx), hi = tag
	_   pad

	pool  *Pool[StackNode[T]]
	owned bool
}

// NewStack creates a Stack backed by an existing, possibly shared,
// pool. The caller owns pool and must size its capacity for every
// container drawing from it.
func NewStack[T any](pool *Pool[StackNode[T]]) *Stack[T] {
	s := &Stack[T]{pool: pool}
	s.top.StoreRelaxed(uint64(nullIdx), 0)
	return s
}

// NewStackCapacity creates a Stack with its own internal pool sized
// for n nodes.
func NewStackCapacity[T any](n int) *Stack[T] {
	return NewStack[T](NewPool[StackNode[T]](n))
}

// Push links a new node holding v at the top of the stack. Returns
// false if the backing pool is full.
func (s *Stack[T]) Push(v T) bool {
	node := s.pool.AcquirePtr()
	if node == nil {
		return false
	}
	node.data = v
	newIdx := uint64(s.pool.indexOf(node))

	prevIdx, prevTag := s.top.LoadRelaxed()
	node.prev.StoreRelaxed(prevIdx, prevTag)

	sw := spin.Wait{}
	for {
		// Tag travels unchanged: Push never detaches the top, so it
		// never needs to invalidate a concurrent observer's tag.
		if s.top.CompareAndSwapAcqRel(prevIdx, prevTag, newIdx, prevTag) {
			return true
		}
		prevIdx, prevTag = s.top.LoadRelaxed()
		node.prev.StoreRelaxed(prevIdx, prevTag)
		sw.Once()
	}
}

// Pop removes the top node and stores its value into *out, returning
// true, or returns false if the stack is empty.
func (s *Stack[T]) Pop(out *T) bool {
	sw := spin.Wait{}
	oldIdx, oldTag := s.top.LoadAcquire()
	for uint32(oldIdx) != nullIdx {
		node := s.pool.ptrAt(uint32(oldIdx))
		// Critical read: node may already be back on the free-list and
		// reacquired elsewhere. The tag-bumping CAS below discards a
		// stale read by failing.
		nextIdx, _ := node.prev.LoadRelaxed()
		if s.top.CompareAndSwapAcqRel(oldIdx, oldTag, nextIdx, oldTag+1) {
			*out = node.data
			var zero T
			node.data = zero
			s.pool.ReleasePtr(node)
			return true
		}
		sw.Once()
		oldIdx, oldTag = s.top.LoadAcquire()
	}
	return false
}

// NonAtomicPush is the quiescent-region counterpart to [Stack.Push].
func (s *Stack[T]) NonAtomicPush(v T) bool {
	node := s.pool.NonAtomicAcquirePtr()
	if node == nil {
		return false
	}
	node.data = v
	topIdx, topTag := s.top.LoadRelaxed()
	node.prev.StoreRelaxed(topIdx, topTag)
	s.top.StoreRelaxed(uint64(s.pool.indexOf(node)), topTag)
	return true
}

// NonAtomicPop is the quiescent-region counterpart to [Stack.Pop].
func (s *Stack[T]) NonAtomicPop(out *T) bool {
	topIdx, topTag := s.top.LoadRelaxed()
	if uint32(topIdx) == nullIdx {
		return false
	}
	node := s.pool.ptrAt(uint32(topIdx))
	nextIdx, _ := node.prev.LoadRelaxed()
	s.top.StoreRelaxed(nextIdx, topTag+1)
	*out = node.data
	var zero T
	node.data = zero
	s.pool.NonAtomicReleasePtr(node)
	return true
}

// Empty reports whether the stack currently holds no elements.
func (s *Stack[T]) Empty() bool {
	idx, _ := s.top.LoadAcquire()
	return uint32(idx) == nullIdx
}

// Drain pops every remaining element non-atomically, calling fn with
// each in LIFO order. Intended for single-threaded teardown, not for
// use alongside concurrent Push/Pop.
func (s *Stack[T]) Drain(fn func(T)) {
	var v T
	for s.NonAtomicPop(&v) {
		fn(v)
	}
}
