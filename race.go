// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package lfpool

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrency scenarios that trigger false
// positives for the Pool/Stack/Queue tagged-index algorithms, whose
// synchronization crosses multiple atomic words (a head tag and the
// node it addresses) rather than a single one.
const RaceEnabled = true
