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
	"fmt"
	"io"
	"net/url"
	"os"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// readInput returns the contents of the named file, or of stdin for "-".
// secret selects the hint logged when stdin is an interactive terminal.
func (a *app) readInput(name string, secret bool) ([]byte, error) {
	if name != stdinName {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	}

	if a.isTerminal(a.stdin) {
		if secret {
			a.logger.Info("reading secret from terminal, finish with Ctrl-D")
		} else {
			a.logger.Info("reading shares from terminal, one per line, finish with Ctrl-D")
		}
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func inputName(name string) string {
	if name == stdinName {
		return "stdin"
	}
	return name
}

// displayURL hides credentials in a store URL before it is printed.
func displayURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	return u.Redacted()
}
