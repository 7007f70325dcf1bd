// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPSCNode is the pool-allocated node backing [MPSCQueue]. Unlike
// [QueueNode], whose prev word reserves a tag half (always 0), prev is
// a bare index: with a single consumer there is no concurrent Pop to
// create an ABA hazard on the node's identity.
type MPSCNode[T any] struct {
	data T
	prev atomix.Uint64 // index of newer node, or nullIdx
}

// MPSCQueue is a lock-free FIFO optimized for many producers and
// exactly one consumer: the producer side pays for one CAS-emulated
// exchange and a publish, and the consumer's Pop touches no atomic of
// the queue except a single acquire-load (returning the old front node
// to the pool still goes through the pool's own CAS loop).
//
// The zero value is not usable; construct with [NewMPSCQueue] or
// [NewMPSCQueueCapacity]. Pop (and NonAtomicPop) must only ever be
// called from one goroutine at a time; the package does not detect
// concurrent misuse.
type MPSCQueue[T any] struct {
	back atomix.Uint64
	_    padShort

	front uint32 // consumer-owned, non-atomic
	pool  *Pool[MPSCNode[T]]
}

// NewMPSCQueue creates an MPSCQueue backed by an existing, possibly
// shared, pool. The pool's capacity must cover this queue's sentinel
// in addition to every other container drawing from it.
func NewMPSCQueue[T any](pool *Pool[MPSCNode[T]]) *MPSCQueue[T] {
	sentinel := pool.AcquirePtr()
	if sentinel == nil {
		panic("lfpool: pool has no room for the queue sentinel")
	}
	sentinel.prev.StoreRelaxed(uint64(nullIdx))
	idx := uint32(pool.indexOf(sentinel))
	q := &MPSCQueue[T]{pool: pool, front: idx}
	q.back.StoreRelaxed(uint64(idx))
	return q
}

// NewMPSCQueueCapacity creates an MPSCQueue with its own internal
// pool, sized for n elements plus the one sentinel the queue always
// holds.
func NewMPSCQueueCapacity[T any](n int) *MPSCQueue[T] {
	return NewMPSCQueue[T](NewPool[MPSCNode[T]](n + 1))
}

// exchangeBack atomically swaps in newIdx as the back node and returns
// the index that was previously there. Emulated via CAS retry loop in
// the absence of a native exchange; since exchange is unconditional,
// a spurious CAS "success" against a stale-but-equal old value is
// harmless — unlike the MPMC Queue's front CAS, this loop carries no
// ABA concern of its own.
func (q *MPSCQueue[T]) exchangeBack(newIdx uint64) uint64 {
	sw := spin.Wait{}
	for {
		old := q.back.LoadRelaxed()
		if q.back.CompareAndSwapAcqRel(old, newIdx) {
			return old
		}
		sw.Once()
	}
}

// Push appends v to the back of the queue. Returns false if the
// backing pool is full. Safe for any number of concurrent producers.
//
// Unlike [Queue.Push], the new node is fully constructed with v before
// it is linked; the producer never holds a partially-published node
// other than the one it just exchanged out of back.
func (q *MPSCQueue[T]) Push(v T) bool {
	node := q.pool.AcquirePtr()
	if node == nil {
		return false
	}
	node.data = v
	node.prev.StoreRelaxed(uint64(nullIdx))
	newIdx := uint64(q.pool.indexOf(node))

	oldIdx := q.exchangeBack(newIdx)
	oldBack := q.pool.ptrAt(uint32(oldIdx))
	oldBack.prev.StoreRelease(newIdx)
	return true
}

// Pop removes the oldest element and stores its value into *out,
// returning true, or returns false if the queue is empty. Must only
// be called by a single consumer goroutine.
func (q *MPSCQueue[T]) Pop(out *T) bool {
	oldFront := q.pool.ptrAt(q.front)
	nextIdx := oldFront.prev.LoadAcquire()
	if uint32(nextIdx) == nullIdx {
		return false
	}
	nextNode := q.pool.ptrAt(uint32(nextIdx))
	q.front = uint32(nextIdx)
	*out = nextNode.data
	var zero T
	nextNode.data = zero
	oldFront.data = zero
	q.pool.ReleasePtr(oldFront)
	return true
}

// NonAtomicPush is the quiescent-region counterpart to
// [MPSCQueue.Push].
func (q *MPSCQueue[T]) NonAtomicPush(v T) bool {
	node := q.pool.NonAtomicAcquirePtr()
	if node == nil {
		return false
	}
	node.data = v
	node.prev.StoreRelaxed(uint64(nullIdx))
	newIdx := uint64(q.pool.indexOf(node))

	oldIdx := q.back.LoadRelaxed()
	q.back.StoreRelaxed(newIdx)
	oldBack := q.pool.ptrAt(uint32(oldIdx))
	oldBack.prev.StoreRelaxed(newIdx)
	return true
}

// NonAtomicPop is the quiescent-region counterpart to
// [MPSCQueue.Pop].
func (q *MPSCQueue[T]) NonAtomicPop(out *T) bool {
	oldFront := q.pool.ptrAt(q.front)
	nextIdx := oldFront.prev.LoadRelaxed()
	if uint32(nextIdx) == nullIdx {
		return false
	}
	nextNode := q.pool.ptrAt(uint32(nextIdx))
	q.front = uint32(nextIdx)
	*out = nextNode.data
	var zero T
	nextNode.data = zero
	oldFront.data = zero
	q.pool.NonAtomicReleasePtr(oldFront)
	return true
}

// Empty reports whether the queue currently holds no elements.
// Safe to call from the consumer goroutine; the front field it reads
// is consumer-owned.
func (q *MPSCQueue[T]) Empty() bool {
	front := q.pool.ptrAt(q.front)
	return uint32(front.prev.LoadAcquire()) == nullIdx
}

// Drain pops every remaining element non-atomically, calling fn with
// each in FIFO order. Intended for single-threaded teardown.
func (q *MPSCQueue[T]) Drain(fn func(T)) {
	var v T
	for q.NonAtomicPop(&v) {
		fn(v)
	}
}
