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

package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-twon/internal/config"
	"github.com/jeremyhahn/go-twon/pkg/storage"
	"github.com/jeremyhahn/go-twon/pkg/storage/file"
	"github.com/jeremyhahn/go-twon/pkg/storage/redis"
)

// memStores keeps mem:// backends alive for the life of the process so a
// split and a later recover in the same process see the same shares.
var (
	memStoresMu sync.Mutex
	memStores   = map[string]*storage.MemoryBackend{}
)

// openStore opens the backend named by rawURL:
//
//	mem://name              in-process memory
//	file:///var/lib/twon    directory (a bare path works too)
//	redis://host:6379/0     redis, also rediss://
func openStore(ctx context.Context, rawURL string, cfg *config.Config) (storage.Backend, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty store URL", storage.ErrUnsupportedURL)
	}
	if !strings.Contains(rawURL, "://") {
		return file.New(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnsupportedURL, err)
	}

	switch u.Scheme {
	case "mem":
		name := u.Host + u.Path
		memStoresMu.Lock()
		defer memStoresMu.Unlock()
		if backend, ok := memStores[name]; ok {
			return nopCloser{backend}, nil
		}
		backend := storage.NewMemory()
		memStores[name] = backend
		return nopCloser{backend}, nil
	case "file":
		dir := u.Path
		if u.Host != "" {
			dir = u.Host + u.Path
		}
		if dir == "" {
			return nil, fmt.Errorf("%w: file URL without a path", storage.ErrUnsupportedURL)
		}
		return file.New(dir)
	case "redis", "rediss":
		redisCfg := &redis.Config{URL: rawURL}
		if cfg != nil {
			redisCfg.Prefix = cfg.Redis.Prefix
			redisCfg.Timeout = cfg.Redis.Timeout
		}
		return redis.New(ctx, redisCfg)
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedURL, u.Scheme)
	}
}

// nopCloser shields shared memory backends from Close.
type nopCloser struct {
	storage.Backend
}

func (nopCloser) Close() error { return nil }
