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
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Source produces uniformly distributed random integers.
type Source interface {
	// Int returns a uniform random integer in [0, max). max must be > 0.
	Int(max *big.Int) (*big.Int, error)
}

// CryptoSource draws integers from a cryptographically secure reader.
// The zero value uses crypto/rand.Reader.
type CryptoSource struct {
	Reader io.Reader
}

// Int implements Source.
func (s CryptoSource) Int(max *big.Int) (*big.Int, error) {
	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	return rand.Int(r, max)
}

// SeededSource is a deterministic Source backed by math/rand. It exists for
// reproducible tests and must not be used to split real secrets.
type SeededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source seeded with seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Int implements Source.
func (s *SeededSource) Int(max *big.Int) (*big.Int, error) {
	if max.Sign() <= 0 {
		return nil, fmt.Errorf("twon: random bound must be positive, got %s", max)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Rand(s.rng, max), nil
}

// uniform samples the inclusive range [0, hi].
func uniform(src Source, hi *big.Int) (*big.Int, error) {
	bound := new(big.Int).Add(hi, big.NewInt(1))
	v, err := src.Int(bound)
	if err != nil {
		return nil, fmt.Errorf("failed to sample random integer: %w", err)
	}
	return v, nil
}
