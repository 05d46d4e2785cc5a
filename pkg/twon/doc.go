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

// Package twon implements a simple (2, n) threshold secret sharing scheme.
//
// A secret byte string is encoded as a non-negative integer and used as the
// y-intercept of a randomly chosen line:
//
//	y = m*x + secret
//
// Split samples the slope m and n distinct x-coordinates, and returns the
// resulting points as shares. Any two shares determine the line, so Recover
// floor-divides their rise to obtain the (negated) slope and solves for the
// intercept.
//
// # Usage
//
//	secret := twon.Encode([]byte("HI")) // 0x4849
//	shares, err := twon.Split(secret, 3)
//	if err != nil {
//		return err
//	}
//	recovered, err := twon.Recover(shares[0], shares[2])
//	if err != nil {
//		return err
//	}
//	plaintext := twon.Decode(recovered) // "HI"
//
// # Arithmetic
//
// All arithmetic is plain arbitrary-precision integer arithmetic using
// math/big. There is no finite field. The slope and every x-coordinate are
// drawn from [0, secret], so the size of the secret bounds the range of the
// shares.
//
// Slope uses floor division. For two genuine shares of the same split the
// division is exact. Shares that do not lie on a common integer-slope line,
// for example corrupted shares or shares from different splits, still produce
// a result but it will be wrong. Verify detects this when more than two shares
// are available.
//
// # Security
//
// This scheme is not information-theoretically secure. Because the integers
// are not reduced modulo a prime, a single share leaks information about the
// magnitude of the secret: y = m*x + secret with m, x in [0, secret] bounds the
// secret from above and below. Use a finite-field scheme such as Shamir's
// over GF(256) when secrecy of individual shares matters.
//
// # Errors
//
// Failures are reported through sentinel errors (ErrInvalidShareCount,
// ErrDegenerateSecret, ErrInfiniteSlope and friends), wrapped with context.
// Use errors.Is to classify them and Kind to obtain a stable name.
package twon
