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

// Recover returns the secret encoded by the line through a and b:
// secret = a.Y + Slope(a, b)*a.X.
//
// Any two shares of the same split recover the same secret. For shares that
// are not on a common integer-slope line the result depends on their order.
// Recover fails with ErrInfiniteSlope when the shares have the same
// x-coordinate.
func Recover(a, b Share) (*big.Int, error) {
	m, err := Slope(a, b)
	if err != nil {
		return nil, err
	}
	secret := new(big.Int).Mul(m, a.X)
	return secret.Add(a.Y, secret), nil
}

// Verify recovers the secret from the first two shares and checks that
// every share lies exactly on the resulting line with a distinct
// x-coordinate. It returns the recovered secret on success.
func Verify(shares []Share) (*big.Int, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughShares, len(shares))
	}

	m, err := Slope(shares[0], shares[1])
	if err != nil {
		return nil, err
	}
	secret, err := Recover(shares[0], shares[1])
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(shares))
	for i, share := range shares {
		if err := share.Validate(); err != nil {
			return nil, fmt.Errorf("share %d: %w", i, err)
		}
		key := share.X.String()
		if j, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: shares %d and %d have x = %s",
				ErrInconsistentShares, j, i, Hex(share.X))
		}
		seen[key] = i

		want := new(big.Int).Mul(m, share.X)
		want.Sub(secret, want)
		if want.Cmp(share.Y) != 0 {
			return nil, fmt.Errorf("%w: share %d %s is off the line", ErrInconsistentShares, i, share)
		}
	}

	return secret, nil
}
