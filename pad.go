// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfpool

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after an 8-byte field.
type padShort [64 - 8]byte
