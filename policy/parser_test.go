// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestParseValid tests templates that must parse, together with the
// miniscript type computed for the root node.  Descriptor-only roots (sh,
// wsh, wpkh, tr, sortedmulti) have no miniscript type and expect "".
func TestParseValid(t *testing.T) {
	testCases := []struct {
		template string
		typ      string
	}{
		{"pkh(@0)", "Bndu"},
		{"wpkh(@0)", ""},
		{"sh(wpkh(@0))", ""},
		{"sh(wsh(pkh(@0)))", ""},
		{"tr(@0)", ""},
		{"sh(tr(@0))", ""},
		{"multi(2,@0,@1,@2)", "Bndu"},
		{"wsh(multi(3,@0,@1,@2,@3,@4))", ""},

		// The sortedmulti placement check never fires in practice, so
		// top level sortedmulti parses.
		{"sortedmulti(2,@0,@1,@2)", ""},
		{"sh(sortedmulti(2,@0,@1))", ""},
		{"sh(wsh(sortedmulti(3,@0,@1,@2,@3,@4)))", ""},

		// Miniscript leaves.
		{"0", "Bzdu"},
		{"1", "Bzu"},
		{"pk(@0)", "Bondu"},
		{"pk_k(@0)", "Kondu"},
		{"pk_h(@0)", "Kndu"},
		{"older(1)", "Bz"},
		{"after(2147483647)", "Bz"},
		{"sha256(" + strings.Repeat("ab", 32) + ")", "Bzodu"},
		{"hash256(" + strings.Repeat("09", 32) + ")", "Bzodu"},
		{"ripemd160(" + strings.Repeat("cd", 20) + ")", "Bzodu"},
		{"hash160(" + strings.Repeat("ef", 20) + ")", "Bzodu"},

		// Wrappers and combinators.
		{"c:pk_k(@0)", "Bondu"},
		{"v:pk(@0)", "Von"},
		{"l:older(1)", "Bod"},
		{"dv:older(100)", "Bond"},
		{"and_v(v:pk(@0),pk(@1))", "Bnu"},
		{"and_b(pk(@0),a:pk(@1))", "Bndu"},
		{"and_n(pk(@0),older(100))", "Bod"},
		{"andor(pk(@0),older(100),pk(@1))", "Bd"},
		{"or_b(pk(@0),a:pk(@1))", "Bdu"},
		{"or_b(l:after(100),al:after(1000000000))", "Bdu"},
		{"or_c(pk(@0),v:older(100))", "V"},
		{"or_d(pk(@0),pk(@1))", "Bodu"},
		{"or_i(0,pk(@0))", "Bdu"},
		{"thresh(2,pk(@0),s:pk(@1),s:pk(@2))", "B"},
		{"wsh(thresh(1,pk(@0),s:pk(@1)))", ""},
		{"wsh(or_d(pk(@0),and_v(v:pkh(@1),older(52596))))", ""},
		{"j:and_b(pk(@0),a:pk(@1))", "Bndu"},
		{"n:older(1)", "Bzu"},
		{"t:v:pk(@0)", "Bonu"},
		{"u:pk(@0)", "Bdu"},
	}

	for _, tc := range testCases {
		t.Run(tc.template, func(t *testing.T) {
			arena := NewArena(0)
			root, err := Parse(arena, tc.template)
			require.NoError(t, err)
			require.Equal(t, tc.typ,
				arena.Node(root).Type.String())
		})
	}
}

// TestParseInvalid tests templates that must be rejected, together with the
// kind of failure.
func TestParseInvalid(t *testing.T) {
	testCases := []struct {
		template string
		code     ErrorCode
	}{
		// Malformed input.
		{"", ErrSyntax},
		{"pkh(@0) ", ErrSyntax},
		{"pkh(@0", ErrSyntax},
		{"pkh(@0))", ErrSyntax},
		{"yolo(@0)", ErrSyntax},
		{"Pkh(@0)", ErrSyntax},
		{"pkh()", ErrSyntax},
		{"pkh(@)", ErrSyntax},
		{"pkh(0)", ErrSyntax},
		{"pkh(@01)", ErrSyntax},
		{":pkh(@0)", ErrSyntax},
		{"sortedmultis(2,@0,@1)", ErrSyntax},
		{"multi(1,)", ErrSyntax},
		{"multi(1,@0,)", ErrSyntax},
		{"0(@0)", ErrSyntax},

		// Nesting violations.
		{"sh(sh(pkh(@0)))", ErrNesting},
		{"wsh(sh(pkh(@0)))", ErrNesting},
		{"wsh(wsh(pkh(@0)))", ErrNesting},
		{"wsh(wpkh(@0))", ErrNesting},
		{"sh(wsh(tr(@0)))", ErrNesting},

		// Arity and range violations.
		{"multi(4,@0,@1,@2)", ErrRange},
		{"multi(0,@0,@1)", ErrRange},
		{"multi(1)", ErrRange},
		{"multi(1,@0,@1,@2,@3,@4,@5)", ErrRange},
		{"sortedmulti(3,@0)", ErrRange},
		{"thresh(0,pk(@0))", ErrRange},
		{"thresh(4,pk(@0),s:pk(@1))", ErrRange},
		{"older(0)", ErrRange},
		{"older(2147483648)", ErrRange},
		{"after(0)", ErrRange},
		{"after(4294967296)", ErrRange},
		{"sha256(" + strings.Repeat("AB", 32) + ")", ErrRange},
		{"sha256(" + strings.Repeat("ab", 31) + ")", ErrRange},
		{"hash160(" + strings.Repeat("cd", 19) + ")", ErrRange},

		// Type composition violations.
		{"and_v(pk(@0),pk(@1))", ErrType},
		{"and_b(pk(@0),pk(@1))", ErrType},
		{"and_n(v:pk(@0),pk(@1))", ErrType},
		{"andor(v:pk(@0),older(100),pk(@1))", ErrType},
		{"andor(pk(@0),older(100),v:pk(@1))", ErrType},
		{"or_b(pk(@0),pk(@1))", ErrType},
		{"or_b(older(1),a:pk(@0))", ErrType},
		{"or_c(pk(@0),pk(@1))", ErrType},
		{"or_d(v:pk(@0),pk(@1))", ErrType},
		{"or_i(pk(@0),v:pk(@1))", ErrType},
		{"thresh(1,v:pk(@0),s:pk(@1))", ErrType},
		{"thresh(1,pk(@0),pk(@1))", ErrType},
		{"thresh(1,pk(@0),s:older(1))", ErrType},
		{"s:older(1)", ErrType},
		{"a:v:pk(@0)", ErrType},
		{"c:pk(@0)", ErrType},
		{"d:v:pk(@0)", ErrType},
		{"j:older(1)", ErrType},
		{"t:pk(@0)", ErrType},
		{"v:pk_k(@0)", ErrType},
		{"wsh(and_v(v:pkh(@0),sh(pkh(@1))))", ErrNesting},
	}

	for _, tc := range testCases {
		t.Run(tc.template, func(t *testing.T) {
			arena := NewArena(0)
			_, err := Parse(arena, tc.template)
			require.Error(t, err)
			require.Truef(t, IsErrorCode(err, tc.code),
				"want %v, got %v", tc.code, err)
		})
	}
}

// TestParseNodePayload checks that parsed nodes carry the payload of their
// fragment.
func TestParseNodePayload(t *testing.T) {
	arena := NewArena(0)

	root, err := Parse(arena, "pkh(@7)")
	require.NoError(t, err)
	node := arena.Node(root)
	require.Equal(t, FragPKH, node.Fragment)
	require.Equal(t, uint32(7), node.KeyIndex)

	arena.Reset()
	root, err = Parse(arena, "wsh(multi(2,@0,@3,@1))")
	require.NoError(t, err)
	node = arena.Node(arena.Node(root).Script[0])
	require.Equal(t, FragMulti, node.Fragment)
	require.Equal(t, uint32(2), node.K)
	require.Equal(t, []uint32{0, 3, 1}, node.KeyIndexes)

	arena.Reset()
	root, err = Parse(arena, "older(144)")
	require.NoError(t, err)
	require.Equal(t, uint32(144), arena.Node(root).Num)

	arena.Reset()
	root, err = Parse(arena, "thresh(2,pk(@0),s:pk(@1),s:pk(@2))")
	require.NoError(t, err)
	node = arena.Node(root)
	require.Equal(t, uint32(2), node.K)
	require.Len(t, node.Children, 3)
}

// TestMaxKeyIndex checks the placeholder index walk over all payload
// carrying fragments.
func TestMaxKeyIndex(t *testing.T) {
	testCases := []struct {
		template string
		max      uint32
		found    bool
	}{
		{"older(1)", 0, false},
		{"pkh(@0)", 0, true},
		{"tr(@4)", 4, true},
		{"sh(wsh(sortedmulti(2,@1,@5,@3)))", 5, true},
		{"andor(pk(@2),older(100),pkh(@9))", 9, true},
		{"thresh(2,pk(@0),s:pk(@8),s:pk(@1))", 8, true},
		{"or_b(l:after(100),al:after(1000000000))", 0, false},
	}

	for _, tc := range testCases {
		arena := NewArena(0)
		root, err := Parse(arena, tc.template)
		require.NoError(t, err)

		max, found := MaxKeyIndex(arena, root)
		require.Equal(t, tc.found, found, tc.template)
		if found {
			require.Equal(t, tc.max, max, tc.template)
		}
	}
}

// TestParseDepthLimit checks that combinator nesting beyond the recursion
// limit is rejected rather than recursing without bound.
func TestParseDepthLimit(t *testing.T) {
	const depth = maxNestingDepth + 1
	template := strings.Repeat("or_d(pk(@0),", depth) + "pk(@0)" +
		strings.Repeat(")", depth)

	_, err := Parse(NewArena(0), template)
	require.True(t, IsErrorCode(err, ErrCapacity), "got %v", err)
}

// TestParseIdempotence checks that parsing the same input twice into fresh
// arenas yields structurally identical trees.
func TestParseIdempotence(t *testing.T) {
	const template = "wsh(andor(pk(@0),or_i(and_v(v:pkh(@1)," +
		"hash160(dd69735817e0e3f6f826a9238dc2e291184f0131)),older(2)),pk(@2)))"

	first := NewArena(0)
	firstRoot, err := Parse(first, template)
	require.NoError(t, err)

	second := NewArena(0)
	secondRoot, err := Parse(second, template)
	require.NoError(t, err)

	require.Equal(t, firstRoot, secondRoot)
	require.Equal(t, first.Len(), second.Len())
	require.Equal(t, spew.Sdump(first.nodes), spew.Sdump(second.nodes))
}

// TestFormatRoundTrip checks that Format reconstructs the canonical template
// text of a parse.
func TestFormatRoundTrip(t *testing.T) {
	templates := []string{
		"pkh(@0)",
		"sh(wpkh(@0))",
		"sh(wsh(sortedmulti(3,@0,@1,@2,@3,@4)))",
		"tr(@1)",
		"0",
		"dv:older(100)",
		"wsh(andor(pk(@0),older(100),pk(@1)))",
		"thresh(2,pk(@0),s:pk(@1),s:pk(@2))",
		"or_b(l:after(100),al:after(1000000000))",
		"wsh(sha256(" + strings.Repeat("ab", 32) + "))",
	}

	for _, template := range templates {
		arena := NewArena(0)
		root, err := Parse(arena, template)
		require.NoError(t, err)
		require.Equal(t, template, Format(arena, root))
	}
}
