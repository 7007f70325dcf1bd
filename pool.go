// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// nullIdx marks the end of the free-list and an empty head. No slot
// ever occupies this index; NewPool rejects a capacity that would let
// a real index collide with it.
const nullIdx uint32 = 1<<32 - 1

// poolSlot is a single fixed-size cell: either a constructed T, or
// (while free) a free-list link to the next free slot. The two never
// overlap in time; data sits first so a slot's address equals the
// address of the T it holds, keeping index recovery a single division.
type poolSlot[T any] struct {
	data T
	next atomix.Uint64
}

// Pool is a bounded, lock-free, zero-allocation-after-construction
// slab of capacity slots, each holding a T and a free-list link. Slots
// are handed out and reclaimed by index; a slot's link is only
// meaningful while the slot is free, its T only while it is acquired.
//
// The zero value is not usable; construct with [NewPool].
type Pool[T any] struct {
	head atomix.Uint128 // lo = index of the first free slot, hi = tag
	_    pad

	storage  []poolSlot[T]
	capacity uint32
}

// NewPool allocates a pool of the given capacity. Panics if capacity
// is non-positive or large enough to collide with the reserved null
// index.
func NewPool[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		panic("lfpool: pool capacity must be positive")
	}
	if uint64(capacity) >= uint64(nullIdx) {
		panic("lfpool: pool capacity too large")
	}
	pl := &Pool[T]{
		storage:  make([]poolSlot[T], capacity),
		capacity: uint32(capacity),
	}
	for i := 0; i < capacity-1; i++ {
		pl.storage[i].next.StoreRelaxed(uint64(i + 1))
	}
	pl.storage[capacity-1].next.StoreRelaxed(uint64(nullIdx))
	pl.head.StoreRelaxed(0, 0)
	return pl
}

// indexOf recovers the slot index of a pointer previously returned by
// this pool. The caller must guarantee p was acquired from pl.
func (pl *Pool[T]) indexOf(p *T) uint32 {
	base := uintptr(unsafe.Pointer(&pl.storage[0]))
	off := uintptr(unsafe.Pointer(p)) - base
	return uint32(off / unsafe.Sizeof(pl.storage[0]))
}

func (pl *Pool[T]) ptrAt(idx uint32) *T {
	return &pl.storage[idx].data
}

// AcquirePtr removes and returns the slot addressed by head, or nil
// if the pool is empty. The returned T is whatever was last stored
// there; callers that need a zeroed or freshly-constructed value
// should use [Pool.Acquire].
func (pl *Pool[T]) AcquirePtr() *T {
	sw := spin.Wait{}
	for {
		idx, tag := pl.head.LoadRelaxed()
		if uint32(idx) == nullIdx {
			return nil
		}
		slot := &pl.storage[idx]
		// Critical read: by the time we get here this slot may already
		// have been re-acquired and reused by another thread. Safe
		// because the slab is never freed (the read cannot fault) and
		// the CAS below will fail if head has moved, discarding the
		// garbage we may have just read.
		next := slot.next.LoadAcquire()
		if pl.head.CompareAndSwapAcqRel(idx, tag, next, tag+1) {
			return &slot.data
		}
		sw.Once()
	}
}

// Acquire removes a slot and stores v into it, returning a pointer to
// the stored value, or nil if the pool is empty.
func (pl *Pool[T]) Acquire(v T) *T {
	p := pl.AcquirePtr()
	if p == nil {
		return nil
	}
	*p = v
	return p
}

// ReleasePtr returns a slot to the free-list. p must have been
// returned by this pool and not yet released; violating this is a
// fatal programmer error, checked only in lfpool_debug builds.
func (pl *Pool[T]) ReleasePtr(p *T) {
	assertManaged(pl, p)
	idx := pl.indexOf(p)
	slot := &pl.storage[idx]
	sw := spin.Wait{}
	for {
		headIdx, headTag := pl.head.LoadRelaxed()
		slot.next.StoreRelease(headIdx)
		// Tag is not bumped here: only Acquire invalidates stale
		// observers, because only Acquire detaches a node from head.
		if pl.head.CompareAndSwapAcqRel(headIdx, headTag, uint64(idx), headTag) {
			return
		}
		sw.Once()
	}
}

// Release zeroes *p (dropping any references it holds, standing in
// for T's destructor) and returns the slot to the free-list.
func (pl *Pool[T]) Release(p *T) {
	var zero T
	*p = zero
	pl.ReleasePtr(p)
}

// NonAtomicAcquirePtr is the quiescent-region counterpart to
// [Pool.AcquirePtr]: algorithmically identical, but uses relaxed
// ordering throughout and skips the CAS loop. The caller is
// responsible for excluding concurrent access.
func (pl *Pool[T]) NonAtomicAcquirePtr() *T {
	idx, tag := pl.head.LoadRelaxed()
	if uint32(idx) == nullIdx {
		return nil
	}
	slot := &pl.storage[idx]
	next := slot.next.LoadRelaxed()
	pl.head.StoreRelaxed(next, tag+1)
	return &slot.data
}

// NonAtomicReleasePtr is the quiescent-region counterpart to
// [Pool.ReleasePtr].
func (pl *Pool[T]) NonAtomicReleasePtr(p *T) {
	assertManaged(pl, p)
	idx := pl.indexOf(p)
	headIdx, headTag := pl.head.LoadRelaxed()
	pl.storage[idx].next.StoreRelaxed(headIdx)
	pl.head.StoreRelaxed(uint64(idx), headTag)
}

// Empty reports whether the pool has no free slots — equivalently,
// every slot is currently acquired.
func (pl *Pool[T]) Empty() bool {
	idx, _ := pl.head.LoadAcquire()
	return uint32(idx) == nullIdx
}

// Full reports whether every slot is on the free-list, i.e. there are
// no outstanding acquisitions. O(capacity) and unsafe under concurrent
// mutation; intended for quiescent checks only.
func (pl *Pool[T]) Full() bool {
	idx, _ := pl.head.LoadRelaxed()
	var count uint32
	for uint32(idx) != nullIdx {
		count++
		if count > pl.capacity {
			return false
		}
		idx = pl.storage[idx].next.LoadRelaxed()
	}
	return count == pl.capacity
}

// Capacity returns the number of slots in the pool.
func (pl *Pool[T]) Capacity() int {
	return int(pl.capacity)
}

// Manages reports whether p addresses a slot within this pool's
// storage, regardless of whether that slot is currently free or
// occupied.
func (pl *Pool[T]) Manages(p *T) bool {
	base := uintptr(unsafe.Pointer(&pl.storage[0]))
	addr := uintptr(unsafe.Pointer(p))
	if addr < base {
		return false
	}
	stride := unsafe.Sizeof(pl.storage[0])
	off := addr - base
	return off%stride == 0 && off/stride < uintptr(pl.capacity)
}
