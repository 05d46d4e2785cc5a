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

// Slope returns the descent of the line through a and b, floor-divided:
// floor((a.Y - b.Y) / (b.X - a.X)). This is the negated slope, so a line
// y = m*x + secret yields -m for any two of its points, and the intercept
// is a.Y + Slope(a, b)*a.X.
//
// The result is exact for any two shares of the same split. For points that
// do not share an integer-slope line the quotient is silently rounded toward
// negative infinity, and a secret recovered from it will be wrong.
//
// Slope fails with ErrInfiniteSlope when a.X == b.X.
func Slope(a, b Share) (*big.Int, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	dx := new(big.Int).Sub(b.X, a.X)
	if dx.Sign() == 0 {
		return nil, fmt.Errorf("%w: both shares have x = %s", ErrInfiniteSlope, Hex(a.X))
	}
	dy := new(big.Int).Sub(a.Y, b.Y)

	return floorDiv(dy, dx), nil
}

// floorDiv returns floor(n / d). big.Int.Div is Euclidean and
// big.Int.Quo truncates toward zero; neither matches floor for every sign.
func floorDiv(n, d *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	if r.Sign() != 0 && (r.Sign() < 0) != (d.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}
