// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lfpool_debug

package lfpool

// assertManaged is a no-op in release builds.
func assertManaged[T any](pl *Pool[T], p *T) {}
