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

import "errors"

var (
	// ErrInvalidShareCount is returned when fewer than two shares are requested.
	ErrInvalidShareCount = errors.New("twon: a secret cannot be split into less than two shares")

	// ErrDegenerateSecret is returned when the secret is too small to yield
	// the requested number of distinct x-coordinates.
	ErrDegenerateSecret = errors.New("twon: secret too small for the requested share count")

	// ErrInfiniteSlope is returned when two shares have the same x-coordinate.
	ErrInfiniteSlope = errors.New("twon: infinite slope")

	// ErrMalformedShareInput is returned when share input cannot be parsed.
	ErrMalformedShareInput = errors.New("twon: malformed share input")

	// ErrEncodingUnderflow is returned when an empty secret is submitted for splitting.
	ErrEncodingUnderflow = errors.New("twon: secret is empty")

	// ErrNegativeSecret is returned when a nil or negative secret is split.
	ErrNegativeSecret = errors.New("twon: secret must be a non-negative integer")

	// ErrNotEnoughShares is returned when fewer than two shares are supplied.
	ErrNotEnoughShares = errors.New("twon: at least two shares are required")

	// ErrInconsistentShares is returned when shares do not lie on a common line.
	ErrInconsistentShares = errors.New("twon: shares do not lie on a common line")
)

// Error kind names, stable for machine-readable output and metric labels.
const (
	KindInvalidShareCount   = "invalid_share_count"
	KindDegenerateSecret    = "degenerate_secret"
	KindInfiniteSlope       = "infinite_slope"
	KindMalformedShareInput = "malformed_share_input"
	KindEncodingUnderflow   = "encoding_underflow"
	KindNegativeSecret      = "negative_secret"
	KindNotEnoughShares     = "not_enough_shares"
	KindInconsistentShares  = "inconsistent_shares"
	KindUnknown             = "unknown"
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidShareCount, KindInvalidShareCount},
	{ErrDegenerateSecret, KindDegenerateSecret},
	{ErrInfiniteSlope, KindInfiniteSlope},
	{ErrMalformedShareInput, KindMalformedShareInput},
	{ErrEncodingUnderflow, KindEncodingUnderflow},
	{ErrNegativeSecret, KindNegativeSecret},
	{ErrNotEnoughShares, KindNotEnoughShares},
	{ErrInconsistentShares, KindInconsistentShares},
}

// Kind returns the kind name of the first sentinel error found in err's
// chain, or KindUnknown. A nil error has no kind and yields "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return KindUnknown
}
