// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/lfpool"
)

// =============================================================================
// Queue (MPMC) - Basic Operations
// =============================================================================

func TestQueueSingleThreaded(t *testing.T) {
	q := lfpool.NewQueueCapacity[int](3)

	if !q.Push(42) {
		t.Fatalf("Push(42): got false, want true")
	}
	if !q.Push(666) {
		t.Fatalf("Push(666): got false, want true")
	}
	if !q.Push(1337) {
		t.Fatalf("Push(1337): got false, want true")
	}
	if q.Push(1138) {
		t.Fatalf("Push on full queue: got true, want false")
	}

	var v int
	for _, want := range []int{42, 666, 1337} {
		if !q.Pop(&v) {
			t.Fatalf("Pop: got false, want true")
		}
		if v != want {
			t.Fatalf("Pop: got %d, want %d", v, want)
		}
	}
	if q.Pop(&v) {
		t.Fatalf("Pop on empty queue: got true, want false")
	}
}

func TestQueueRoundTrip(t *testing.T) {
	q := lfpool.NewQueueCapacity[string](1)
	if !q.Push("x") {
		t.Fatalf("Push: got false, want true")
	}
	var got string
	if !q.Pop(&got) {
		t.Fatalf("Pop: got false, want true")
	}
	if got != "x" {
		t.Fatalf("Pop: got %q, want %q", got, "x")
	}
}

func TestQueueSharedPool(t *testing.T) {
	pool := lfpool.NewPool[lfpool.QueueNode[int]](lfpool.NewPoolBudget().Queue(4).Queue(4).Capacity())
	a := lfpool.NewQueue[int](pool)
	b := lfpool.NewQueue[int](pool)

	if !a.Push(1) || !b.Push(2) {
		t.Fatalf("Push into shared-pool queues failed unexpectedly")
	}
	var v int
	if !a.Pop(&v) || v != 1 {
		t.Fatalf("a.Pop: got %d, want 1", v)
	}
	if !b.Pop(&v) || v != 2 {
		t.Fatalf("b.Pop: got %d, want 2", v)
	}
}

func TestQueueDrain(t *testing.T) {
	q := lfpool.NewQueueCapacity[int](3)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	var got []int
	q.Drain(func(v int) { got = append(got, v) })

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Drain: got %v, want %v", got, want)
	}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("Drain[%d]: got %d, want %d", i, got[i], v)
		}
	}
	if !q.Empty() {
		t.Fatalf("Empty after Drain: got false, want true")
	}
}

// =============================================================================
// Queue (MPMC) - Concurrent
// =============================================================================

// TestQueueConcurrentMixed mirrors the stack's concurrent-mixed
// scenario for the MPMC queue: 600 goroutines alternately pushing and
// popping against a 300-capacity queue. A final Pop after every
// goroutine completes must fail.
func TestQueueConcurrentMixed(t *testing.T) {
	if lfpool.RaceEnabled {
		t.Skip("cross-variable ordering not visible to the race detector")
	}

	const capacity = 300
	const tasks = 600

	q := lfpool.NewQueueCapacity[int](capacity)

	var wg sync.WaitGroup
	wg.Add(tasks)
	for i := 0; i < tasks; i++ {
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				for !q.Push(i) {
				}
			} else {
				var v int
				for !q.Pop(&v) {
				}
			}
		}(i)
	}
	wg.Wait()

	var v int
	if q.Pop(&v) {
		t.Fatalf("Pop on drained queue: got true, want false")
	}
}

// TestQueueConcurrentFIFOSingleProducer pushes from one goroutine and
// pops from the main goroutine after a happens-before handoff,
// checking that popped values form a prefix of the pushed sequence.
func TestQueueConcurrentFIFOSingleProducer(t *testing.T) {
	q := lfpool.NewQueueCapacity[int](8)
	pushed := make(chan struct{})

	go func() {
		for i := 0; i < 5; i++ {
			q.Push(i)
		}
		close(pushed)
	}()
	<-pushed

	var v int
	for i := 0; i < 5; i++ {
		if !q.Pop(&v) || v != i {
			t.Fatalf("Pop(%d): got %d, want %d", i, v, i)
		}
	}
}
