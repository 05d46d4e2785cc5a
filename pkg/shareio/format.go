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

// Package shareio reads and writes shares.
//
// The text format holds one share per line, two hex integers separated
// by a tab. The JSON and YAML formats wrap the shares of a split in a
// ShareSet carrying an ID and per-share checksums.
package shareio

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-twon/pkg/twon"
)

// Format identifies a share encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the concrete formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat parses a format name. "auto" and "" select detection,
// "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown share format: %s", name)
	}
}

// Extension returns the file extension used when storing a share.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

// DetectFormat guesses the format of data. Text share lines never contain
// ':' so any colon on the first non-blank line means YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatText
	}
	if trimmed[0] == '{' {
		return FormatJSON
	}
	first := trimmed
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if bytes.HasPrefix(first, []byte("---")) || bytes.IndexByte(first, ':') >= 0 {
		return FormatYAML
	}
	return FormatText
}

// Write encodes set to w in the given format.
func Write(w io.Writer, set *ShareSet, format Format) error {
	switch format {
	case FormatText, FormatAuto:
		shares, err := set.ToShares()
		if err != nil {
			return err
		}
		return WriteText(w, shares)
	case FormatJSON:
		return WriteJSON(w, set)
	case FormatYAML:
		return WriteYAML(w, set)
	default:
		return fmt.Errorf("unknown share format: %s", format)
	}
}

// Read decodes every share in r. FormatAuto detects the format from the
// content.
func Read(r io.Reader, format Format) ([]twon.Share, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read shares: %w", err)
	}
	return Decode(data, format)
}

// Decode decodes every share in data.
func Decode(data []byte, format Format) ([]twon.Share, error) {
	if format == FormatAuto {
		format = DetectFormat(data)
	}

	switch format {
	case FormatText:
		return ReadText(bytes.NewReader(data))
	case FormatJSON:
		set, err := ReadJSON(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return set.ToShares()
	case FormatYAML:
		set, err := ReadYAML(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return set.ToShares()
	default:
		return nil, fmt.Errorf("unknown share format: %s", format)
	}
}
