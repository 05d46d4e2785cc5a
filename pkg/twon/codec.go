// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-twon.
//
// go-twon is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package twon

import "math/big"

// Encode interprets data as a big-endian unsigned integer.
// An empty slice encodes to zero.
func Encode(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}

// Decode renders value as a big-endian unsigned byte slice using the minimum
// number of bytes. Zero decodes to a single zero byte. Leading zero bytes of
// the original input cannot be recovered.
func Decode(value *big.Int) []byte {
	if value == nil || value.Sign() == 0 {
		return []byte{0}
	}
	out := make([]byte, ByteLength(value))
	return value.FillBytes(out)
}

// ByteLength returns the minimum number of bytes needed to hold the
// magnitude of value. Zero needs one byte.
func ByteLength(value *big.Int) int {
	if value == nil || value.Sign() == 0 {
		return 1
	}
	return (value.BitLen() + 7) / 8
}
