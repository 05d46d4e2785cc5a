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

// Package storage provides the key-value backends used to distribute and
// collect shares. Implementations include an in-memory backend, a file
// backend (pkg/storage/file) and a Redis backend (pkg/storage/redis).
package storage

import (
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Backend defines the interface for storage backends.
// All implementations must be thread-safe.
type Backend interface {
	// Get retrieves the value for the given key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stores the value for the given key with optional settings.
	// If the key already exists, it will be overwritten.
	Put(key string, value []byte, opts *Options) error

	// Delete removes the key and its value from storage.
	// Returns ErrNotFound if the key does not exist.
	Delete(key string) error

	// List returns all keys with the given prefix in sorted order.
	// If prefix is empty, all keys are returned.
	List(prefix string) ([]string, error)

	// Exists checks if a key exists in storage.
	Exists(key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Options contains optional parameters for Put.
type Options struct {
	// Permissions sets the file mode for file-based backends
	Permissions fs.FileMode

	// TTL expires the value after the given duration. Zero keeps it forever.
	// File storage ignores TTL.
	TTL time.Duration
}

// DefaultOptions returns Options with owner-only permissions and no expiry.
func DefaultOptions() *Options {
	return &Options{
		Permissions: 0600,
	}
}

// MaxKeyLength bounds the length of a storage key.
const MaxKeyLength = 255

// ValidateKey rejects keys that are empty, too long, absolute, contain
// control characters or try to climb out of the backend's namespace with "..".
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	if strings.Contains(key, "\x00") {
		return fmt.Errorf("%w: key contains null byte", ErrInvalidKey)
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: key too long (max %d characters)", ErrInvalidKey, MaxKeyLength)
	}
	for _, r := range key {
		if r < 32 || r == 127 {
			return fmt.Errorf("%w: key contains control characters", ErrInvalidKey)
		}
	}
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, `\`) {
		return fmt.Errorf("%w: key cannot be an absolute path", ErrInvalidKey)
	}
	for _, part := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("%w: key contains path traversal attempt", ErrInvalidKey)
		}
	}
	return nil
}
