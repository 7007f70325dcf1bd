// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool

// PoolBudget accumulates the slot count a shared pool needs to cover
// several containers of the same node type, so callers don't have to
// remember by hand that every Queue/MPSCQueue permanently occupies one
// slot for its sentinel.
//
// A PoolBudget only tracks a count; Queue/Stack/MPSCQueue nodes have
// distinct Go types, so a single Pool instance can still only back
// containers sharing the same node type.
type PoolBudget struct {
	slots int
}

// NewPoolBudget returns an empty budget.
func NewPoolBudget() *PoolBudget {
	return &PoolBudget{}
}

// Stack reserves n slots for a Stack's live elements.
func (b *PoolBudget) Stack(n int) *PoolBudget {
	b.slots += n
	return b
}

// Queue reserves n slots for a Queue's live elements, plus one for
// its permanent sentinel.
func (b *PoolBudget) Queue(n int) *PoolBudget {
	b.slots += n + 1
	return b
}

// MPSCQueue reserves n slots for an MPSCQueue's live elements, plus
// one for its permanent sentinel.
func (b *PoolBudget) MPSCQueue(n int) *PoolBudget {
	b.slots += n + 1
	return b
}

// Capacity returns the total slot count accumulated so far.
func (b *PoolBudget) Capacity() int {
	return b.slots
}
