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

// Package redis provides a storage.Backend on top of a Redis server, used to
// park share sets where each participant can fetch their share.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jeremyhahn/go-twon/pkg/storage"
)

const (
	// DefaultPrefix namespaces every key written by this backend.
	DefaultPrefix = "twon:"

	// DefaultTimeout bounds each Redis round trip.
	DefaultTimeout = 5 * time.Second
)

var _ storage.Backend = (*Store)(nil)

// Config configures the Redis backend.
type Config struct {
	// URL is a redis:// or rediss:// connection URL
	URL string

	// Prefix is prepended to every key (default "twon:")
	Prefix string

	// Timeout bounds each operation (default 5s)
	Timeout time.Duration
}

// Store implements storage.Backend using go-redis.
//
// storage.Backend methods take no context, so every operation derives its
// deadline from the context the Store was created with. Cancelling that
// context aborts operations in flight.
type Store struct {
	ctx     context.Context
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("redis storage: URL cannot be empty")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis storage: invalid URL: %w", err)
	}

	s := NewWithClient(ctx, redis.NewClient(opts), cfg.Prefix, cfg.Timeout)

	pingCtx, cancel := s.opContext()
	defer cancel()
	if err := s.client.Ping(pingCtx).Err(); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("redis storage: failed to connect: %w", err)
	}

	return s, nil
}

// NewWithClient wraps an existing client. ctx bounds every operation; nil
// means context.Background(). Empty prefix and zero timeout select the
// defaults.
func NewWithClient(ctx context.Context, client *redis.Client, prefix string, timeout time.Duration) *Store {
	if ctx == nil {
		ctx = context.Background()
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{ctx: ctx, client: client, prefix: prefix, timeout: timeout}
}

func (s *Store) key(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	return s.prefix + key, nil
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, s.timeout)
}

// Get retrieves the value for the given key.
func (s *Store) Get(key string) ([]byte, error) {
	k, err := s.key(key)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opContext()
	defer cancel()

	data, err := s.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis storage: failed to get %q: %w", key, err)
	}
	return data, nil
}

// Put stores the value for the given key, honoring opts.TTL.
func (s *Store) Put(key string, value []byte, opts *storage.Options) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if opts != nil {
		ttl = opts.TTL
	}

	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.Set(ctx, k, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis storage: failed to put %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *Store) Delete(key string) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}

	ctx, cancel := s.opContext()
	defer cancel()

	n, err := s.client.Del(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("redis storage: failed to delete %q: %w", key, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List scans for keys with the given prefix.
func (s *Store) List(prefix string) ([]string, error) {
	ctx, cancel := s.opContext()
	defer cancel()

	// SCAN may return a key more than once
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, s.prefix+escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), s.prefix)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis storage: failed to list keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Exists checks if a key exists.
func (s *Store) Exists(key string) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}

	ctx, cancel := s.opContext()
	defer cancel()

	n, err := s.client.Exists(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis storage: failed to check %q: %w", key, err)
	}
	return n > 0, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// escapeGlob escapes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
