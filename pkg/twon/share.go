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

import (
	"fmt"
	"math/big"
)

// Share is a single point (X, Y) on the line used to split a secret.
// Shares carry no identity beyond their coordinates. Callers must not
// modify X or Y once a share has been handed out.
type Share struct {
	X *big.Int
	Y *big.Int
}

// NewShare returns a share with copies of x and y.
func NewShare(x, y *big.Int) Share {
	return Share{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// Equal reports whether s and o have the same coordinates.
func (s Share) Equal(o Share) bool {
	return s.X.Cmp(o.X) == 0 && s.Y.Cmp(o.Y) == 0
}

// Validate checks that both coordinates are present.
func (s Share) Validate() error {
	if s.X == nil || s.Y == nil {
		return fmt.Errorf("%w: share is missing a coordinate", ErrMalformedShareInput)
	}
	return nil
}

// String returns the share as two hex integers, e.g. "(0x3, 0x4852)".
func (s Share) String() string {
	return fmt.Sprintf("(%s, %s)", Hex(s.X), Hex(s.Y))
}

// Hex formats v as lower-case hex with a "0x" prefix and a
// leading "-" for negative values.
func Hex(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	if v.Sign() < 0 {
		return "-0x" + new(big.Int).Abs(v).Text(16)
	}
	return "0x" + v.Text(16)
}
