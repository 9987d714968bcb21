// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseToken tests keyword recognition, including tokens that share a
// prefix with a keyword and the token length bound.
func TestParseToken(t *testing.T) {
	testCases := []struct {
		input string
		frag  Fragment
		valid bool
		rest  int
	}{
		{input: "pkh(@0)", frag: FragPKH, valid: true, rest: 4},
		{input: "pk(@0)", frag: FragPK, valid: true, rest: 4},
		{input: "pk_h(@0)", frag: FragPK_H, valid: true, rest: 4},
		{input: "sortedmulti(", frag: FragSortedMulti, valid: true, rest: 1},
		{input: "0", frag: Frag0, valid: true, rest: 0},
		{input: "andor(", frag: FragAndOr, valid: true, rest: 1},

		// The word is read case-sensitively and must match exactly.
		{input: "Pkh(@0)", valid: false},
		{input: "PKH(@0)", valid: false},
		{input: "yolo(@0)", valid: false},
		{input: "", valid: false},
		{input: "(", valid: false},
		{input: "@0", valid: false},

		// Single wrapper letters are not keywords.
		{input: "a(", valid: false},
		{input: "v(", valid: false},
	}

	for _, tc := range testCases {
		cur := newCursor([]byte(tc.input))
		frag, err := parseToken(cur)
		if !tc.valid {
			require.Errorf(t, err, "input %q", tc.input)
			require.True(t, IsErrorCode(err, ErrSyntax))
			continue
		}
		require.NoErrorf(t, err, "input %q", tc.input)
		require.Equal(t, tc.frag, frag, tc.input)
		require.Equal(t, tc.rest, cur.remaining(), tc.input)
	}
}

// TestScanWrappers tests the wrapper run lookahead, which must only trigger
// when the letter run is immediately followed by ':'.
func TestScanWrappers(t *testing.T) {
	testCases := []struct {
		input    string
		wrappers string
	}{
		{input: "v:pk(@0)", wrappers: "v"},
		{input: "dv:older(100)", wrappers: "dv"},
		{input: "asctdvjnlu:0", wrappers: "asctdvjnlu"},

		// No ':' after the run, or no run at all.
		{input: "pk(@0)", wrappers: ""},
		{input: "and_v(0,0)", wrappers: ""},
		{input: "older(1)", wrappers: ""},
		{input: ":0", wrappers: ""},
		{input: "", wrappers: ""},

		// A non-wrapper letter stops the run before the ':'.
		{input: "ax:0", wrappers: ""},
		{input: "vB:0", wrappers: ""},
	}

	for _, tc := range testCases {
		cur := newCursor([]byte(tc.input))
		letters := scanWrappers(cur)
		require.Equal(t, tc.wrappers, string(letters), tc.input)

		// Lookahead never consumes input.
		require.Equal(t, len(tc.input), cur.remaining(), tc.input)
	}
}

// TestFragmentString makes sure every fragment has a name.
func TestFragmentString(t *testing.T) {
	for frag := FragSH; frag <= FragWrapU; frag++ {
		require.NotContains(t, frag.String(), "Unknown")
	}
	require.Contains(t, Fragment(9999).String(), "Unknown")
}
