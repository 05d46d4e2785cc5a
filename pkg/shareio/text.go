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
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/jeremyhahn/go-twon/pkg/twon"
)

// maxLineSize bounds a single share line. A share of an N byte secret needs
// roughly 4N hex digits.
const maxLineSize = 16 << 20

// WriteText writes one share per line as two hex integers separated by a tab.
func WriteText(w io.Writer, shares []twon.Share) error {
	bw := bufio.NewWriter(w)
	for _, s := range shares {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", twon.Hex(s.X), twon.Hex(s.Y)); err != nil {
			return fmt.Errorf("failed to write share: %w", err)
		}
	}
	return bw.Flush()
}

// ReadText parses every non-blank line of r as a share. Each line must hold
// exactly two whitespace-separated hex integers; a "0x" prefix and a sign
// are optional.
func ReadText(r io.Reader) ([]twon.Share, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var shares []twon.Share
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected 2 fields, got %d",
				twon.ErrMalformedShareInput, line, len(fields))
		}

		x, err := ParseHex(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := ParseHex(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		shares = append(shares, twon.Share{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", twon.ErrMalformedShareInput, err)
	}

	return shares, nil
}

// ParseHex parses a hex integer such as "0x4849", "4849" or "-0x1f".
func ParseHex(s string) (*big.Int, error) {
	digits := s
	negative := false
	switch {
	case strings.HasPrefix(digits, "-"):
		negative = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}

	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, fmt.Errorf("%w: invalid hex integer %q", twon.ErrMalformedShareInput, s)
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("%w: invalid hex integer %q", twon.ErrMalformedShareInput, s)
	}
	if negative {
		v.Neg(v)
	}
	return v, nil
}
