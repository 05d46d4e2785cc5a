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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-twon/pkg/twon"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// execute runs the CLI with args against in-memory streams.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return executeWith(t, stdin, twon.NewSeededSource(1), args...)
}

func executeWith(t *testing.T, stdin string, source twon.Source, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	a.source = source

	code := run(context.Background(), a, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// shares for the secret "A" (0x41) on the line y = 3x + 65
const lineShares = "0x1 0x44\n0x2 0x47\n0x3 0x4a\n"

func TestRun_NoCommand(t *testing.T) {
	res := execute(t, "")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "Usage:")
	assert.Empty(t, res.stdout)
}

func TestRun_UsageErrors(t *testing.T) {
	secret := writeFile(t, "secret", "hello")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"split without args", []string{"split"}},
		{"split missing count", []string{"split", secret}},
		{"split non-integer count", []string{"split", secret, "five"}},
		{"split extra args", []string{"split", secret, "3", "4"}},
		{"unknown flag", []string{"split", "--bogus", secret, "3"}},
		{"recover without input", []string{"recover"}},
		{"set-id without store", []string{"recover", "--set-id", "0b8f0d9e-5c1f-4a57-9a43-6f2c1c9f7d10"}},
		{"verify without input", []string{"verify"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", tt.args...)
			assert.Equal(t, ExitUsage, res.code, res.stderr)
			assert.Contains(t, res.stderr, "Error:")
			assert.Empty(t, res.stdout)
		})
	}
}

func TestSplit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       string
		want    string
	}{
		{"share count below two", "hello", "1", "less than two shares"},
		{"zero share count", "hello", "0", "less than two shares"},
		{"empty secret", "", "3", "secret is empty"},
		{"zero secret", "\x00", "2", "too small"},
		{"secret smaller than share count", "\x01", "3", "too small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", "split", writeFile(t, "secret", tt.content), tt.n)
			assert.Equal(t, ExitError, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Empty(t, res.stdout)
		})
	}
}

func TestSplit_MissingFile(t *testing.T) {
	res := execute(t, "", "split", filepath.Join(t.TempDir(), "nope"), "3")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "failed to read")
}

func TestSplitRecover_Text(t *testing.T) {
	secret := "hello world"

	split := execute(t, "", "split", writeFile(t, "secret", secret), "5")
	require.Equal(t, ExitOK, split.code, split.stderr)

	lines := strings.Split(strings.TrimSpace(split.stdout), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 2)
		assert.True(t, strings.HasPrefix(fields[0], "0x"))
		assert.True(t, strings.HasPrefix(fields[1], "0x"))
	}

	shares := writeFile(t, "shares", split.stdout)
	recovered := execute(t, "", "recover", shares)
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, secret, recovered.stdout)

	// any two shares work, in any order
	pair := writeFile(t, "pair", lines[4]+"\n"+lines[1]+"\n")
	recovered = execute(t, "", "recover", pair)
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, secret, recovered.stdout)
}

func TestSplitRecover_Stdin(t *testing.T) {
	split := execute(t, "top secret", "split", "-", "3")
	require.Equal(t, ExitOK, split.code, split.stderr)

	recovered := execute(t, split.stdout, "recover", "-")
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, "top secret", recovered.stdout)
}

func TestSplit_CryptoSource(t *testing.T) {
	split := executeWith(t, "", nil, "split", writeFile(t, "secret", "random"), "4")
	require.Equal(t, ExitOK, split.code, split.stderr)

	recovered := execute(t, split.stdout, "recover", "-", "--verify")
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, "random", recovered.stdout)
}

func TestSplitRecover_Documents(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			split := execute(t, "", "split", writeFile(t, "secret", "document"), "3", "-o", format)
			require.Equal(t, ExitOK, split.code, split.stderr)

			var doc struct {
				ID        string `json:"id" yaml:"id"`
				Threshold int    `json:"threshold" yaml:"threshold"`
				Total     int    `json:"total" yaml:"total"`
			}
			if format == "json" {
				require.NoError(t, json.Unmarshal([]byte(split.stdout), &doc))
			} else {
				require.NoError(t, yaml.Unmarshal([]byte(split.stdout), &doc))
			}
			assert.NotEmpty(t, doc.ID)
			assert.Equal(t, 2, doc.Threshold)
			assert.Equal(t, 3, doc.Total)

			recovered := execute(t, "", "recover", writeFile(t, "shares."+format, split.stdout))
			require.Equal(t, ExitOK, recovered.code, recovered.stderr)
			assert.Equal(t, "document", recovered.stdout)

			// explicit input format
			recovered = execute(t, "", "recover", "--input", format, writeFile(t, "shares", split.stdout))
			require.Equal(t, ExitOK, recovered.code, recovered.stderr)
			assert.Equal(t, "document", recovered.stdout)
		})
	}
}

func TestRecover_Lines(t *testing.T) {
	res := execute(t, "", "recover", writeFile(t, "shares", lineShares))
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "A", res.stdout)
}

func TestRecover_MultipleFiles(t *testing.T) {
	first := writeFile(t, "a", "0x1 0x44\n")
	second := writeFile(t, "b", "0x3 0x4a\n")

	res := execute(t, "", "recover", first, second)
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "A", res.stdout)
}

func TestRecover_Failures(t *testing.T) {
	tests := []struct {
		name   string
		shares string
		args   []string
		want   string
	}{
		{"single share", "0x1 0x44\n", nil, "at least two shares"},
		{"no shares", "\n\n", nil, "at least two shares"},
		{"same x", "0x1 0x44\n0x1 0x47\n", nil, "infinite slope"},
		{"malformed line", "0x1 0x44\nnot a share\n", nil, "malformed share input"},
		{"bad hex", "0x1 0x44\n0x2 0xzz\n", nil, "malformed share input"},
		{"inconsistent with verify", "0x1 0x44\n0x2 0x47\n0x3 0x4b\n", []string{"--verify"}, "common line"},
		{"negative intercept", "0x1 0x1\n0x2 0x10\n", nil, "recovered value is negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"recover", writeFile(t, "shares", tt.shares)}, tt.args...)
			res := execute(t, "", args...)
			assert.Equal(t, ExitError, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Empty(t, res.stdout)
		})
	}
}

func TestRecover_IgnoresExtraSharesWithoutVerify(t *testing.T) {
	res := execute(t, "", "recover", writeFile(t, "shares", "0x1 0x44\n0x2 0x47\n0x3 0x4b\n"))
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "A", res.stdout)
}

func TestVerify(t *testing.T) {
	res := execute(t, "", "verify", writeFile(t, "shares", lineShares))
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "consistent (3 shares)\n", res.stdout)

	res = execute(t, "", "verify", "-o", "json", writeFile(t, "shares", lineShares))
	require.Equal(t, ExitOK, res.code, res.stderr)
	var out struct {
		Status string `json:"status"`
		Shares int    `json:"shares"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "consistent", out.Status)
	assert.Equal(t, 3, out.Shares)

	res = execute(t, "", "verify", writeFile(t, "shares", "0x1 0x44\n0x2 0x47\n0x3 0x4b\n"))
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "common line")
	assert.Empty(t, res.stdout)
}

func TestErrorOutput_JSON(t *testing.T) {
	res := execute(t, "", "split", "-o", "json", writeFile(t, "secret", "hello"), "1")
	require.Equal(t, ExitError, res.code)

	var out struct {
		Status string `json:"status"`
		Kind   string `json:"kind"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &out))
	assert.Equal(t, "error", out.Status)
	assert.Equal(t, twon.KindInvalidShareCount, out.Kind)
	assert.Contains(t, out.Error, "less than two shares")
}

type storedSet struct {
	SetID  string   `json:"set_id"`
	Store  string   `json:"store"`
	Shares []string `json:"shares"`
}

func TestStore_File(t *testing.T) {
	dir := t.TempDir()

	split := execute(t, "", "split", "-o", "json", "--store", dir, writeFile(t, "secret", "stored secret"), "4")
	require.Equal(t, ExitOK, split.code, split.stderr)

	var stored storedSet
	require.NoError(t, json.Unmarshal([]byte(split.stdout), &stored))
	require.Len(t, stored.Shares, 4)
	assert.Equal(t, stored.SetID+"/share-1.json", stored.Shares[0])

	info, err := os.Stat(filepath.Join(dir, stored.SetID, "share-1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// the whole set through the store
	recovered := execute(t, "", "recover", "--store", "file://"+dir, "--set-id", stored.SetID, "--verify")
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, "stored secret", recovered.stdout)

	// two participants' files
	recovered = execute(t, "", "recover",
		filepath.Join(dir, stored.SetID, "share-4.json"),
		filepath.Join(dir, stored.SetID, "share-2.json"))
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, "stored secret", recovered.stdout)

	verified := execute(t, "", "verify", "--store", dir, "--set-id", stored.SetID)
	require.Equal(t, ExitOK, verified.code, verified.stderr)
	assert.Equal(t, "consistent (4 shares)\n", verified.stdout)
}

func TestStore_TextSummary(t *testing.T) {
	dir := t.TempDir()

	split := execute(t, "", "split", "--store", dir, writeFile(t, "secret", "s"), "2")
	require.Equal(t, ExitOK, split.code, split.stderr)
	assert.Contains(t, split.stdout, "Share set: ")
	assert.Contains(t, split.stdout, "/share-1.txt")
	assert.Contains(t, split.stdout, "/share-2.txt")
}

func TestStore_Memory(t *testing.T) {
	store := "mem://" + t.Name()

	split := execute(t, "", "split", "-o", "yaml", "--store", store, writeFile(t, "secret", "in memory"), "3")
	require.Equal(t, ExitOK, split.code, split.stderr)

	var stored struct {
		SetID string `yaml:"set_id"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(split.stdout), &stored))

	recovered := execute(t, "", "recover", "--store", store, "--set-id", stored.SetID)
	require.Equal(t, ExitOK, recovered.code, recovered.stderr)
	assert.Equal(t, "in memory", recovered.stdout)
}

func TestStore_Errors(t *testing.T) {
	res := execute(t, "", "recover", "--store", t.TempDir(), "--set-id", "not-a-uuid")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "invalid share set id")

	res = execute(t, "", "recover", "--store", t.TempDir(), "--set-id", "0b8f0d9e-5c1f-4a57-9a43-6f2c1c9f7d10")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "not found")

	res = execute(t, "", "split", "--store", "ftp://example.com/shares", writeFile(t, "secret", "x"), "2")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "unsupported URL")
}

func TestConfigFile(t *testing.T) {
	cfg := writeFile(t, "twon.yaml", "output: json\n")

	res := execute(t, "", "--config", cfg, "split", writeFile(t, "secret", "configured"), "2")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "{"))

	res = execute(t, "", "--config", writeFile(t, "bad.yaml", "output: xml\n"), "version")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "invalid configuration")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("TWON_OUTPUT", "yaml")

	res := execute(t, "", "split", writeFile(t, "secret", "env"), "2")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "threshold: 2")
}

func TestMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twon.prom")

	res := execute(t, "", "split", "--metrics-file", path, writeFile(t, "secret", "metrics"), "3")
	require.Equal(t, ExitOK, res.code, res.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "twon_operations_total")
	assert.Contains(t, string(data), "twon_shares_generated_total")
}

func TestVerbose(t *testing.T) {
	res := execute(t, "", "-v", "split", writeFile(t, "secret", "loud"), "2")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "split secret")
}

func TestVersion(t *testing.T) {
	res := execute(t, "", "version")
	require.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "twon version "+Version)

	res = execute(t, "", "version", "-o", "json")
	require.Equal(t, ExitOK, res.code)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, Version, info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestPrinter_UnknownFormatFallsBackToText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter("table", &buf).PrintVerified(2))
	assert.Equal(t, "consistent (2 shares)\n", buf.String())
}

func TestDisplayURL(t *testing.T) {
	assert.Equal(t, "redis://:xxxxx@localhost:6379/0", displayURL("redis://:hunter2@localhost:6379/0"))
	assert.Equal(t, "/var/lib/twon", displayURL("/var/lib/twon"))
}
