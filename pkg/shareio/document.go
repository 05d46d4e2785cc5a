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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-twon/pkg/twon"
)

// Threshold is the number of shares needed to recover a secret.
const Threshold = 2

// ErrChecksumMismatch is returned when a share's checksum does not match its
// coordinates. It wraps twon.ErrMalformedShareInput.
var ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", twon.ErrMalformedShareInput)

// ShareSet is the document form of the shares produced by one split.
type ShareSet struct {
	// ID identifies the split the shares belong to
	ID string `json:"id" yaml:"id"`

	// CreatedAt is when the shares were generated (UTC)
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Threshold is always 2
	Threshold int `json:"threshold" yaml:"threshold"`

	// Total is the number of shares the split produced
	Total int `json:"total" yaml:"total"`

	// Shares holds some or all of the split's shares
	Shares []SetShare `json:"shares" yaml:"shares"`
}

// SetShare is one share inside a ShareSet.
type SetShare struct {
	Index    int    `json:"index" yaml:"index"`
	X        string `json:"x" yaml:"x"`
	Y        string `json:"y" yaml:"y"`
	Checksum string `json:"checksum" yaml:"checksum"`
}

// NewShareSet wraps shares in a document with a fresh ID and checksums.
// Shares are numbered from 1 in the order given.
func NewShareSet(shares []twon.Share) (*ShareSet, error) {
	set := &ShareSet{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Threshold: Threshold,
		Total:     len(shares),
		Shares:    make([]SetShare, len(shares)),
	}

	for i, s := range shares {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		x, y := twon.Hex(s.X), twon.Hex(s.Y)
		set.Shares[i] = SetShare{
			Index:    i + 1,
			X:        x,
			Y:        y,
			Checksum: Checksum(i+1, x, y),
		}
	}

	return set, nil
}

// Subset returns a copy of the set holding only the share with the given
// index.
func (s *ShareSet) Subset(index int) (*ShareSet, error) {
	for _, share := range s.Shares {
		if share.Index == index {
			out := *s
			out.Shares = []SetShare{share}
			return &out, nil
		}
	}
	return nil, fmt.Errorf("share set %s has no share %d", s.ID, index)
}

// Validate checks the document metadata and every share checksum.
func (s *ShareSet) Validate() error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("%w: invalid share set id %q", twon.ErrMalformedShareInput, s.ID)
	}
	if s.Threshold != Threshold {
		return fmt.Errorf("%w: unsupported threshold %d", twon.ErrMalformedShareInput, s.Threshold)
	}
	if len(s.Shares) == 0 {
		return fmt.Errorf("%w: share set %s has no shares", twon.ErrMalformedShareInput, s.ID)
	}
	for _, share := range s.Shares {
		if share.Index < 1 || (s.Total > 0 && share.Index > s.Total) {
			return fmt.Errorf("%w: share index %d out of range", twon.ErrMalformedShareInput, share.Index)
		}
		if Checksum(share.Index, share.X, share.Y) != share.Checksum {
			return fmt.Errorf("%w: share %d of set %s", ErrChecksumMismatch, share.Index, s.ID)
		}
	}
	return nil
}

// ToShares validates the set and parses its coordinates.
func (s *ShareSet) ToShares() ([]twon.Share, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	shares := make([]twon.Share, len(s.Shares))
	for i, share := range s.Shares {
		x, err := ParseHex(share.X)
		if err != nil {
			return nil, fmt.Errorf("share %d: x: %w", share.Index, err)
		}
		y, err := ParseHex(share.Y)
		if err != nil {
			return nil, fmt.Errorf("share %d: y: %w", share.Index, err)
		}
		shares[i] = twon.Share{X: x, Y: y}
	}
	return shares, nil
}

// Checksum returns the hex BLAKE2b-256 digest of a share's index and
// coordinates. It guards against transcription errors, not tampering.
func Checksum(index int, x, y string) string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%d:%s:%s", index, x, y)))
	return hex.EncodeToString(sum[:])
}

// WriteJSON writes the set as indented JSON.
func WriteJSON(w io.Writer, set *ShareSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode share set: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates a JSON share set.
func ReadJSON(r io.Reader) (*ShareSet, error) {
	var set ShareSet
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: %v", twon.ErrMalformedShareInput, err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// WriteYAML writes the set as YAML.
func WriteYAML(w io.Writer, set *ShareSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode share set: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes and validates a YAML share set.
func ReadYAML(r io.Reader) (*ShareSet, error) {
	var set ShareSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", twon.ErrMalformedShareInput)
		}
		return nil, fmt.Errorf("%w: %v", twon.ErrMalformedShareInput, err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}
