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
// MPSCQueue - Basic Operations
// =============================================================================

func TestMPSCQueueSingleThreaded(t *testing.T) {
	q := lfpool.NewMPSCQueueCapacity[int](3)

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

func TestMPSCQueueRoundTrip(t *testing.T) {
	q := lfpool.NewMPSCQueueCapacity[string](1)
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

func TestMPSCQueueDrain(t *testing.T) {
	q := lfpool.NewMPSCQueueCapacity[int](3)
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
// MPSCQueue - Concurrent
// =============================================================================

// TestMPSCQueueConcurrentUniqueness runs 16 producers each pushing a
// disjoint range of ints totaling 300 values, while the main goroutine
// is the sole consumer, popping until it has collected all of them.
// The consumer must observe a set of exactly 300 distinct values.
func TestMPSCQueueConcurrentUniqueness(t *testing.T) {
	if lfpool.RaceEnabled {
		t.Skip("cross-variable ordering not visible to the race detector")
	}

	const producers = 16
	const total = 300
	const perProducer = total / producers

	q := lfpool.NewMPSCQueueCapacity[int](total)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			base := p * perProducer
			n := perProducer
			if p == producers-1 {
				n = total - base // last producer takes the remainder
			}
			for i := 0; i < n; i++ {
				for !q.Push(base + i) {
				}
			}
		}(p)
	}

	seen := make(map[int]bool, total)
	var v int
	for len(seen) < total {
		if q.Pop(&v) {
			if seen[v] {
				t.Fatalf("value %d popped twice", v)
			}
			seen[v] = true
		}
	}
	wg.Wait()

	if len(seen) != total {
		t.Fatalf("distinct values popped: got %d, want %d", len(seen), total)
	}
}
