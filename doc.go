// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfpool provides bounded, lock-free, pool-backed concurrent
// containers for latency-sensitive multithreaded code: a fixed-capacity
// object pool, an MPMC stack, an MPMC queue, and an MPSC queue. None of
// the three container types built on top of [Pool] allocates after
// construction — every node they hold lives inside a pool slot,
// reclaimed by index rather than freed.
//
// # Quick Start
//
//	pool := lfpool.NewPool[lfpool.StackNode[int]](1024)
//	s := lfpool.NewStack(pool)
//	// or, for a container with its own internal pool:
//	s := lfpool.NewStackCapacity[int](1024)
//	q := lfpool.NewQueueCapacity[*Request](4096)
//	mq := lfpool.NewMPSCQueueCapacity[Event](4096)
//
// # Basic Usage
//
// Every container shares the same Push/Pop shape: both return a bool,
// never an error. Push fails (returns false) only when the backing
// pool is exhausted; Pop fails only when the container is empty.
//
//	s := lfpool.NewStackCapacity[int](16)
//	if !s.Push(42) {
//	    // pool exhausted — handle backpressure
//	}
//	var v int
//	if s.Pop(&v) {
//	    // v == 42
//	}
//
// # Common Patterns
//
// Retry with backoff from outside the package, using [iox.Backoff]:
//
//	backoff := iox.Backoff{}
//	for !q.Push(item) {
//	    backoff.Wait()
//	}
//	backoff.Reset()
//
// Sizing one pool shared by several containers of the same kind, with
// [PoolBudget] tracking the sentinel slots each Queue/MPSCQueue needs
// in addition to its live elements:
//
//	cap := lfpool.NewPoolBudget().Queue(1000).Queue(500).Capacity()
//	pool := lfpool.NewPool[lfpool.QueueNode[Event]](cap)
//	q1 := lfpool.NewQueue(pool)
//	q2 := lfpool.NewQueue(pool)
//
// # Pool, Stack, and the two Queues
//
//   - [Pool]: fixed-capacity slot allocator. AcquirePtr/Acquire hand out
//     slots by index; ReleasePtr/Release return them. Full is an
//     O(capacity) quiescent-only diagnostic, not safe under concurrent
//     mutation; Empty is a single atomic snapshot, and Manages only
//     checks an address against the pool's fixed storage bounds.
//   - [Stack]: MPMC LIFO. Push links a newly acquired node at the top;
//     Pop detaches it. Both are lock-free CAS loops over a single
//     tagged top word.
//   - [Queue]: MPMC FIFO with an always-present sentinel at the back.
//     Push is wait-free modulo the exchange-emulation CAS loop; Pop
//     spins until the front advances or the queue is empty. A producer
//     preempted mid-Push can stall consumers at that node — documented
//     behavior, not a bug.
//   - [MPSCQueue]: the same FIFO shape specialized for one consumer.
//     Pop touches no atomic of the queue apart from one acquire-load;
//     returning the old front node goes through the pool's CAS loop.
//
// # Non-atomic variants
//
// NonAtomicPush/NonAtomicPop exist for quiescent regions — construction,
// teardown, or any window where the caller already excludes concurrent
// access by other means. They are algorithmically identical to their
// atomic counterparts but skip the CAS loop entirely; calling them
// concurrently with anything else is undefined behavior that the
// package makes no attempt to detect.
//
// # Error Handling
//
// There is exactly one observable failure mode per operation, reported
// by a bool: capacity exhausted (Push) or empty (Pop). Programmer
// errors — releasing a pointer the pool did not hand out, calling a
// NonAtomic variant concurrently — are not reported in release builds.
// Build with the lfpool_debug tag to turn the former into a panic; see
// [Pool.Manages].
//
// # Thread Safety
//
//   - Pool: AcquirePtr/Acquire/ReleasePtr/Release are safe for any
//     number of concurrent callers.
//   - Stack: Push/Pop are MPMC-safe.
//   - Queue: Push/Pop are MPMC-safe.
//   - MPSCQueue: Push is safe for any number of producers; Pop must be
//     called by exactly one goroutine at a time.
//
// # Race Detection
//
// Go's race detector tracks happens-before through synchronization on
// a single variable; it cannot see the cross-variable edges these
// algorithms rely on (a tag bump on one atomic word validating a read
// of the memory a different, no-longer-synchronized word used to
// address). Concurrency tests exercising those edges are kept away from
// the race detector: the concurrent examples via //go:build !race, the
// stress tests by skipping themselves when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for every shared
// atomic word with explicit memory ordering, and
// [code.hybscloud.com/spin] for the pause instruction in every CAS
// retry loop. [code.hybscloud.com/iox]'s [iox.Backoff] is not used by
// the package itself but is the recommended caller-side retry helper,
// as shown above.
package lfpool
