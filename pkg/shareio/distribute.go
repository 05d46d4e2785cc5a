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

package shareio

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-twon/pkg/storage"
	"github.com/jeremyhahn/go-twon/pkg/twon"
)

// ShareKey returns the storage key of one share of a set,
// "<set-id>/share-<index>.<ext>".
func ShareKey(setID string, index int, format Format) string {
	return fmt.Sprintf("%s/share-%d.%s", setID, index, format.Extension())
}

// Distribute stores every share of set under its own key so each one can be
// handed to a different participant. It returns the keys written in share
// order.
func Distribute(backend storage.Backend, set *ShareSet, format Format, opts *storage.Options) ([]string, error) {
	if format == FormatAuto {
		format = FormatText
	}

	keys := make([]string, 0, len(set.Shares))
	for _, share := range set.Shares {
		single, err := set.Subset(share.Index)
		if err != nil {
			return keys, err
		}

		var buf bytes.Buffer
		if err := Write(&buf, single, format); err != nil {
			return keys, fmt.Errorf("share %d: %w", share.Index, err)
		}

		key := ShareKey(set.ID, share.Index, format)
		if err := backend.Put(key, buf.Bytes(), opts); err != nil {
			return keys, fmt.Errorf("failed to store share %d: %w", share.Index, err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// Collect loads every share stored for setID, detecting each share's format.
func Collect(backend storage.Backend, setID string) ([]twon.Share, error) {
	if _, err := uuid.Parse(setID); err != nil {
		return nil, fmt.Errorf("invalid share set id %q: %w", setID, err)
	}

	keys, err := backend.List(setID + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares of set %s: %w", setID, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("share set %s: %w", setID, storage.ErrNotFound)
	}

	var shares []twon.Share
	for _, key := range keys {
		data, err := backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
		decoded, err := Decode(data, FormatAuto)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		shares = append(shares, decoded...)
	}

	return shares, nil
}
