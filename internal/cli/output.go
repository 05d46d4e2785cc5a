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
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-twon/pkg/twon"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Printer handles formatted status output. Shares themselves are written
// by pkg/shareio.
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer. Unknown formats fall back to text.
func NewPrinter(format string, writer io.Writer) *Printer {
	f := OutputFormat(format)
	switch f {
	case OutputFormatJSON, OutputFormatYAML:
	case "yml":
		f = OutputFormatYAML
	default:
		f = OutputFormatText
	}
	return &Printer{
		format: f,
		writer: writer,
	}
}

// PrintStored prints where the shares of a set were stored
func (p *Printer) PrintStored(setID, store string, keys []string) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]interface{}{
			"set_id": setID,
			"store":  store,
			"shares": keys,
		})
	default:
		fmt.Fprintf(p.writer, "Share set: %s\n", setID)
		fmt.Fprintf(p.writer, "Store:     %s\n", store)
		for _, k := range keys {
			fmt.Fprintf(p.writer, "  - %s\n", k)
		}
		return nil
	}
}

// PrintVerified prints the outcome of a successful consistency check
func (p *Printer) PrintVerified(shares int) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]interface{}{
			"status": "consistent",
			"shares": shares,
		})
	default:
		fmt.Fprintf(p.writer, "consistent (%d shares)\n", shares)
		return nil
	}
}

// PrintVersion prints build information
func (p *Printer) PrintVersion(info map[string]string) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(info)
	default:
		fmt.Fprintf(p.writer, "twon version %s\n", info["version"])
		fmt.Fprintf(p.writer, "Git commit: %s\n", info["commit"])
		fmt.Fprintf(p.writer, "Build date: %s\n", info["build_date"])
		fmt.Fprintf(p.writer, "Go version: %s\n", info["go_version"])
		fmt.Fprintf(p.writer, "OS/Arch: %s/%s\n", info["os"], info["arch"])
		return nil
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		return p.printStructured(map[string]interface{}{
			"status": "error",
			"kind":   twon.Kind(err),
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printStructured(data interface{}) error {
	if p.format == OutputFormatYAML {
		enc := yaml.NewEncoder(p.writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
