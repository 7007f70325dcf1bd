// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// QueueNode is the pool-allocated node backing [Queue]. prev points
// from a node towards the back (the newer node); the back sentinel's
// prev is the null index until it is linked by the next Push.
type QueueNode[T any] struct {
	data T
	prev atomix.Uint128 // lo = index of newer node (or nullIdx), hi unused (always 0)
}

// Queue is a multi-producer, multi-consumer lock-free FIFO: a
// singly-linked list of pool nodes threaded front-to-back, with an
// always-present unconstructed sentinel at back.
//
// The zero value is not usable; construct with [NewQueue] or
// [NewQueueCapacity].
type Queue[T any] struct {
	front atomix.Uint128 // lo = index of oldest node, hi = tag
	_     pad
	back  atomix.Uint128 // lo = index of sentinel node, hi unused (always 0)
	_     pad

	pool *Pool[QueueNode[T]]
}

// NewQueue creates a Queue backed by an existing, possibly shared,
// pool. The pool's capacity must cover this queue's sentinel in
// addition to every other container drawing from it.
func NewQueue[T any](pool *Pool[QueueNode[T]]) *Queue[T] {
	sentinel := pool.AcquirePtr()
	if sentinel == nil {
		panic("lfpool: pool has no room for the queue sentinel")
	}
	sentinel.prev.StoreRelaxed(uint64(nullIdx), 0)
	idx := uint64(pool.indexOf(sentinel))
	q := &Queue[T]{pool: pool}
	q.front.StoreRelaxed(idx, 0)
	q.back.StoreRelaxed(idx, 0)
	return q
}

// NewQueueCapacity creates a Queue with its own internal pool, sized
// for n elements plus the one sentinel the queue always holds.
func NewQueueCapacity[T any](n int) *Queue[T] {
	return NewQueue[T](NewPool[QueueNode[T]](n + 1))
}

// exchangeBack atomically swaps in newIdx as the back node and returns
// the index that was previously there. atomix has no native exchange,
// so this is emulated with a CAS retry loop: lock-free, though under
// adversarial scheduling not strictly wait-free the way a hardware
// exchange would be.
func (q *Queue[T]) exchangeBack(newIdx uint64) uint64 {
	sw := spin.Wait{}
	for {
		oldIdx, _ := q.back.LoadRelaxed()
		if q.back.CompareAndSwapAcqRel(oldIdx, 0, newIdx, 0) {
			return oldIdx
		}
		sw.Once()
	}
}

// Push appends v to the back of the queue. Returns false if the
// backing pool is full.
//
// Pushes are wait-free modulo the CAS-retry exchange emulation above:
// one exchange and one store. The producer briefly owns the old back
// node between the two. If a producer is preempted in that window,
// the old back's prev stays null; later Pushes still enqueue behind
// it, but Pops cannot advance past it until the preempted producer
// resumes. This is documented, intended behavior, not a bug.
func (q *Queue[T]) Push(v T) bool {
	newNode := q.pool.AcquirePtr() // raw: no construction yet
	if newNode == nil {
		return false
	}
	newIdx := uint64(q.pool.indexOf(newNode))
	newNode.prev.StoreRelaxed(uint64(nullIdx), 0)

	oldIdx := q.exchangeBack(newIdx)
	oldBack := q.pool.ptrAt(uint32(oldIdx))
	oldBack.data = v
	// Publishing store: pairs with the consumer's acquire-load of prev
	// in Pop, making the data write above visible before the node can
	// be popped.
	oldBack.prev.StoreRelease(newIdx, 0)
	return true
}

// Pop removes the oldest element and stores its value into *out,
// returning true, or returns false if the queue is empty.
func (q *Queue[T]) Pop(out *T) bool {
	sw := spin.Wait{}
	for {
		oldIdx, oldTag := q.front.LoadRelaxed()
		oldFront := q.pool.ptrAt(uint32(oldIdx))
		nextIdx, _ := oldFront.prev.LoadAcquire()
		if uint32(nextIdx) == nullIdx {
			return false
		}
		// front's own CAS is relaxed: data synchronization rides on
		// the prev acquire/release edge above, not on front itself.
		if q.front.CompareAndSwapRelaxed(oldIdx, oldTag, nextIdx, oldTag+1) {
			*out = oldFront.data
			var zero T
			oldFront.data = zero
			q.pool.ReleasePtr(oldFront)
			return true
		}
		sw.Once()
	}
}

// NonAtomicPush is the quiescent-region counterpart to [Queue.Push].
func (q *Queue[T]) NonAtomicPush(v T) bool {
	newNode := q.pool.NonAtomicAcquirePtr()
	if newNode == nil {
		return false
	}
	newIdx := uint64(q.pool.indexOf(newNode))
	newNode.prev.StoreRelaxed(uint64(nullIdx), 0)

	oldIdx, _ := q.back.LoadRelaxed()
	q.back.StoreRelaxed(newIdx, 0)
	oldBack := q.pool.ptrAt(uint32(oldIdx))
	oldBack.data = v
	oldBack.prev.StoreRelaxed(newIdx, 0)
	return true
}

// NonAtomicPop is the quiescent-region counterpart to [Queue.Pop].
func (q *Queue[T]) NonAtomicPop(out *T) bool {
	oldIdx, oldTag := q.front.LoadRelaxed()
	oldFront := q.pool.ptrAt(uint32(oldIdx))
	nextIdx, _ := oldFront.prev.LoadRelaxed()
	if uint32(nextIdx) == nullIdx {
		return false
	}
	q.front.StoreRelaxed(nextIdx, oldTag+1)
	*out = oldFront.data
	var zero T
	oldFront.data = zero
	q.pool.NonAtomicReleasePtr(oldFront)
	return true
}

// Empty reports whether the queue currently holds no elements.
func (q *Queue[T]) Empty() bool {
	idx, _ := q.front.LoadAcquire()
	front := q.pool.ptrAt(uint32(idx))
	nextIdx, _ := front.prev.LoadAcquire()
	return uint32(nextIdx) == nullIdx
}

// Drain pops every remaining element non-atomically, calling fn with
// each in FIFO order. Intended for single-threaded teardown.
func (q *Queue[T]) Drain(fn func(T)) {
	var v T
	for q.NonAtomicPop(&v) {
		fn(v)
	}
}
