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
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-twon/pkg/storage"
	"github.com/jeremyhahn/go-twon/pkg/twon"
)

func share(x, y int64) twon.Share {
	return twon.Share{X: big.NewInt(x), Y: big.NewInt(y)}
}

func assertSharesEqual(t *testing.T, want, got []twon.Share) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "share %d: want %s, got %s", i, want[i], got[i])
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []twon.Share{share(3, 0x4852), share(0xab, 0x10)}))
	assert.Equal(t, "0x3\t0x4852\n0xab\t0x10\n", buf.String())
}

func TestReadText(t *testing.T) {
	input := "0x3\t0x4852\n\n  0XAB   10  \n-0x1 +0x2\n"
	shares, err := ReadText(strings.NewReader(input))
	require.NoError(t, err)
	assertSharesEqual(t, []twon.Share{share(3, 0x4852), share(0xab, 0x10), share(-1, 2)}, shares)
}

func TestReadText_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"one field", "0x3\n"},
		{"three fields", "0x3 0x4 0x5\n"},
		{"not hex", "0x3 0xzz\n"},
		{"bare prefix", "0x 0x1\n"},
		{"double sign", "--1 0x1\n"},
		{"underscore", "0x1_0 0x1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadText(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, twon.ErrMalformedShareInput)
		})
	}
}

func TestReadText_ReportsLine(t *testing.T) {
	_, err := ReadText(strings.NewReader("0x1 0x2\n0x3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestText_RoundTripSplit(t *testing.T) {
	secret := twon.Encode([]byte("round trip through text"))
	shares, err := twon.Split(secret, 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, shares))

	parsed, err := ReadText(&buf)
	require.NoError(t, err)
	assertSharesEqual(t, shares, parsed)

	got, err := twon.Recover(parsed[0], parsed[1])
	require.NoError(t, err)
	assert.Equal(t, []byte("round trip through text"), twon.Decode(got))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"yaml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat([]byte("  {\"id\": \"x\"}")))
	assert.Equal(t, FormatYAML, DetectFormat([]byte("id: abc\nshares: []\n")))
	assert.Equal(t, FormatYAML, DetectFormat([]byte("---\nid: abc\n")))
	assert.Equal(t, FormatText, DetectFormat([]byte("0x1\t0x2\n")))
	assert.Equal(t, FormatText, DetectFormat(nil))
}

func TestShareSet_JSONRoundTrip(t *testing.T) {
	shares := []twon.Share{share(1, 105), share(2, 110), share(10, 150)}
	set, err := NewShareSet(shares)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Total)
	assert.Equal(t, Threshold, set.Threshold)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, set, FormatJSON))
	assert.Equal(t, FormatJSON, DetectFormat(buf.Bytes()))

	decoded, err := ReadJSON(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, set.ID, decoded.ID)
	assert.True(t, set.CreatedAt.Equal(decoded.CreatedAt))

	parsed, err := decoded.ToShares()
	require.NoError(t, err)
	assertSharesEqual(t, shares, parsed)
}

func TestShareSet_YAMLRoundTrip(t *testing.T) {
	shares := []twon.Share{share(4, 18), share(7, 24)}
	set, err := NewShareSet(shares)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, set, FormatYAML))
	assert.Equal(t, FormatYAML, DetectFormat(buf.Bytes()))

	parsed, err := Decode(buf.Bytes(), FormatAuto)
	require.NoError(t, err)
	assertSharesEqual(t, shares, parsed)
}

func TestShareSet_ChecksumMismatch(t *testing.T) {
	set, err := NewShareSet([]twon.Share{share(1, 105), share(2, 110)})
	require.NoError(t, err)
	set.Shares[1].Y = "0x6f"

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, set))

	_, err = ReadJSON(&buf)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.ErrorIs(t, err, twon.ErrMalformedShareInput)
}

func TestShareSet_ValidateErrors(t *testing.T) {
	base := func() *ShareSet {
		set, err := NewShareSet([]twon.Share{share(1, 105), share(2, 110)})
		require.NoError(t, err)
		return set
	}

	bad := base()
	bad.ID = "not-a-uuid"
	assert.ErrorIs(t, bad.Validate(), twon.ErrMalformedShareInput)

	bad = base()
	bad.Threshold = 3
	assert.ErrorIs(t, bad.Validate(), twon.ErrMalformedShareInput)

	bad = base()
	bad.Shares = nil
	assert.ErrorIs(t, bad.Validate(), twon.ErrMalformedShareInput)

	bad = base()
	bad.Shares[0].Index = 5
	assert.ErrorIs(t, bad.Validate(), twon.ErrMalformedShareInput)
}

func TestReadJSON_UnknownField(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"id": "x", "bogus": 1}`))
	assert.ErrorIs(t, err, twon.ErrMalformedShareInput)
}

func TestReadYAML_Empty(t *testing.T) {
	_, err := ReadYAML(strings.NewReader(""))
	assert.ErrorIs(t, err, twon.ErrMalformedShareInput)
}

func TestShareSet_Subset(t *testing.T) {
	set, err := NewShareSet([]twon.Share{share(1, 105), share(2, 110), share(3, 115)})
	require.NoError(t, err)

	single, err := set.Subset(2)
	require.NoError(t, err)
	require.Len(t, single.Shares, 1)
	assert.Equal(t, 2, single.Shares[0].Index)
	assert.Equal(t, set.ID, single.ID)
	assert.NoError(t, single.Validate())
	assert.Len(t, set.Shares, 3)

	_, err = set.Subset(9)
	assert.Error(t, err)
}

func TestDistributeCollect(t *testing.T) {
	secret := twon.Encode([]byte("distributed"))
	shares, err := twon.Split(secret, 3)
	require.NoError(t, err)
	set, err := NewShareSet(shares)
	require.NoError(t, err)

	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			backend := storage.NewMemory()

			keys, err := Distribute(backend, set, format, nil)
			require.NoError(t, err)
			require.Len(t, keys, 3)
			assert.Equal(t, ShareKey(set.ID, 1, format), keys[0])

			one, err := backend.Get(keys[0])
			require.NoError(t, err)
			parsed, err := Decode(one, FormatAuto)
			require.NoError(t, err)
			require.Len(t, parsed, 1)

			collected, err := Collect(backend, set.ID)
			require.NoError(t, err)
			require.Len(t, collected, 3)

			got, err := twon.Verify(collected)
			require.NoError(t, err)
			assert.Equal(t, []byte("distributed"), twon.Decode(got))
		})
	}
}

func TestCollect_Errors(t *testing.T) {
	backend := storage.NewMemory()

	_, err := Collect(backend, "nope")
	assert.Error(t, err)

	_, err = Collect(backend, "7d9f4c52-3b7a-4a8e-9a53-1d2f0b6c8e11")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
