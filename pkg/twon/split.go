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

// Splitter splits secrets into shares using a configurable random source.
type Splitter struct {
	source Source
}

// NewSplitter creates a Splitter drawing randomness from source.
// A nil source selects CryptoSource.
func NewSplitter(source Source) *Splitter {
	if source == nil {
		source = CryptoSource{}
	}
	return &Splitter{source: source}
}

// Split divides secret into n shares using a cryptographically secure source.
// See Splitter.Split.
func Split(secret *big.Int, n int) ([]Share, error) {
	return NewSplitter(nil).Split(secret, n)
}

// Split divides secret into n shares, any two of which recover it.
//
// A slope m is drawn from [0, secret] and the secret becomes the
// y-intercept of y = m*x + secret. Distinct x-coordinates are then drawn
// from [0, secret] until n points exist. The order of the returned shares
// carries no meaning.
//
// Split fails with ErrInvalidShareCount when n < 2 and with
// ErrDegenerateSecret when [0, secret] holds fewer than n integers, which
// includes every request against a zero secret.
func (s *Splitter) Split(secret *big.Int, n int) ([]Share, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, n)
	}
	if secret == nil || secret.Sign() < 0 {
		return nil, ErrNegativeSecret
	}

	// [0, secret] contains secret+1 candidate x-coordinates
	capacity := new(big.Int).Add(secret, big.NewInt(1))
	if capacity.Cmp(big.NewInt(int64(n))) < 0 {
		return nil, fmt.Errorf("%w: %d distinct shares requested but only %s x-coordinates exist",
			ErrDegenerateSecret, n, capacity)
	}

	m, err := uniform(s.source, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sample slope: %w", err)
	}

	line := func(x *big.Int) *big.Int {
		y := new(big.Int).Mul(m, x)
		return y.Add(y, secret)
	}

	shares := make([]Share, 0, n)
	seen := make(map[string]struct{}, n)
	for len(shares) < n {
		x, err := uniform(s.source, secret)
		if err != nil {
			return nil, fmt.Errorf("failed to sample x-coordinate: %w", err)
		}
		key := string(x.Bytes())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shares = append(shares, Share{X: x, Y: line(x)})
	}

	return shares, nil
}
