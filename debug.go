// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lfpool_debug

package lfpool

// assertManaged panics if p was not returned by pl. Compiled in only
// under the lfpool_debug build tag; release builds skip the check and
// exhibit undefined behavior on misuse, per the package's documented
// error model.
func assertManaged[T any](pl *Pool[T], p *T) {
	if !pl.Manages(p) {
		panic("lfpool: Release of a pointer not managed by this pool")
	}
}
