// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import "fmt"

// Fragment identifies one operator of the wallet policy language.  The name
// follows miniscript terminology, where each operator of a script expression
// is called a fragment.
type Fragment int

const (
	// Top-level descriptor fragments.

	FragSH          Fragment = iota // sh(SCRIPT)
	FragWSH                         // wsh(SCRIPT)
	FragPKH                         // pkh(KEY) = c:pk_h(KEY)
	FragWPKH                        // wpkh(KEY)
	FragMulti                       // multi(k,KEY,...)
	FragSortedMulti                 // sortedmulti(k,KEY,...)
	FragTR                          // tr(KEY)

	// Miniscript fragments except wrappers.

	Frag0         // 0
	Frag1         // 1
	FragPK        // pk(KEY) = c:pk_k(KEY)
	FragPK_K      // pk_k(KEY)
	FragPK_H      // pk_h(KEY)
	FragOlder     // older(n)
	FragAfter     // after(n)
	FragSHA256    // sha256(h)
	FragHASH256   // hash256(h)
	FragRIPEMD160 // ripemd160(h)
	FragHASH160   // hash160(h)
	FragAndOr     // andor(X,Y,Z)
	FragAnd_V     // and_v(X,Y)
	FragAnd_B     // and_b(X,Y)
	FragAnd_N     // and_n(X,Y) = andor(X,Y,1)
	FragOr_B      // or_b(X,Z)
	FragOr_C      // or_c(X,Z)
	FragOr_D      // or_d(X,Z)
	FragOr_I      // or_i(X,Z)
	FragThresh    // thresh(k,X1,...,Xn)

	// Miniscript wrappers, applied prefix-style with a ':' separator.

	FragWrapA // a:X
	FragWrapS // s:X
	FragWrapC // c:X
	FragWrapT // t:X = and_v(X,1)
	FragWrapD // d:X
	FragWrapV // v:X
	FragWrapJ // j:X
	FragWrapN // n:X
	FragWrapL // l:X = or_i(0,X)
	FragWrapU // u:X = or_i(X,0)
)

// fragmentNames maps each fragment to its name in the policy language.
var fragmentNames = map[Fragment]string{
	FragSH:          "sh",
	FragWSH:         "wsh",
	FragPKH:         "pkh",
	FragWPKH:        "wpkh",
	FragMulti:       "multi",
	FragSortedMulti: "sortedmulti",
	FragTR:          "tr",
	Frag0:           "0",
	Frag1:           "1",
	FragPK:          "pk",
	FragPK_K:        "pk_k",
	FragPK_H:        "pk_h",
	FragOlder:       "older",
	FragAfter:       "after",
	FragSHA256:      "sha256",
	FragHASH256:     "hash256",
	FragRIPEMD160:   "ripemd160",
	FragHASH160:     "hash160",
	FragAndOr:       "andor",
	FragAnd_V:       "and_v",
	FragAnd_B:       "and_b",
	FragAnd_N:       "and_n",
	FragOr_B:        "or_b",
	FragOr_C:        "or_c",
	FragOr_D:        "or_d",
	FragOr_I:        "or_i",
	FragThresh:      "thresh",
	FragWrapA:       "a",
	FragWrapS:       "s",
	FragWrapC:       "c",
	FragWrapT:       "t",
	FragWrapD:       "d",
	FragWrapV:       "v",
	FragWrapJ:       "j",
	FragWrapN:       "n",
	FragWrapL:       "l",
	FragWrapU:       "u",
}

// String returns the fragment as the keyword or wrapper letter it is written
// as in the policy language.
func (f Fragment) String() string {
	if s, ok := fragmentNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Fragment (%d)", int(f))
}

// maxTokenLen is the length of the longest keyword in the policy language
// ("sortedmulti").
const maxTokenLen = 11

// keywordFragments is the fixed keyword table.  Matching is case-sensitive
// and exact; wrapper letters are not in this table since they are only
// meaningful in front of a ':'.
var keywordFragments = map[string]Fragment{
	"sh":          FragSH,
	"wsh":         FragWSH,
	"pkh":         FragPKH,
	"wpkh":        FragWPKH,
	"multi":       FragMulti,
	"sortedmulti": FragSortedMulti,
	"tr":          FragTR,
	"0":           Frag0,
	"1":           Frag1,
	"pk":          FragPK,
	"pk_k":        FragPK_K,
	"pk_h":        FragPK_H,
	"older":       FragOlder,
	"after":       FragAfter,
	"sha256":      FragSHA256,
	"hash256":     FragHASH256,
	"ripemd160":   FragRIPEMD160,
	"hash160":     FragHASH160,
	"andor":       FragAndOr,
	"and_v":       FragAnd_V,
	"and_b":       FragAnd_B,
	"and_n":       FragAnd_N,
	"or_b":        FragOr_B,
	"or_c":        FragOr_C,
	"or_d":        FragOr_D,
	"or_i":        FragOr_I,
	"thresh":      FragThresh,
}

// wrapperFragments maps the ten valid miniscript wrapper letters to their
// fragments.  Any lowercase letter not in this map never starts a wrapper
// run.
var wrapperFragments = map[byte]Fragment{
	'a': FragWrapA,
	's': FragWrapS,
	'c': FragWrapC,
	't': FragWrapT,
	'd': FragWrapD,
	'v': FragWrapV,
	'j': FragWrapJ,
	'n': FragWrapN,
	'l': FragWrapL,
	'u': FragWrapU,
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isAlphanumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isLowercaseHex(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f')
}

func lowercaseHexToInt(c byte) byte {
	if isDigit(c) {
		return c - '0'
	}
	return c - 'a' + 10
}

// parseToken reads the next word (up to maxTokenLen characters in
// [a-zA-Z0-9_]) from the cursor and returns its fragment from the keyword
// table.  A zero-length word or a word that is not in the table is a syntax
// error.
func parseToken(cur *cursor) (Fragment, error) {
	var word [maxTokenLen]byte
	n := 0
	for n < maxTokenLen {
		c, ok := cur.peek()
		if !ok || !(isAlphanumeric(c) || c == '_') {
			break
		}
		word[n] = c
		n++
		cur.skip(1)
	}

	frag, ok := keywordFragments[string(word[:n])]
	if !ok {
		return 0, parseError(ErrSyntax,
			fmt.Sprintf("unknown token %q", word[:n]))
	}
	return frag, nil
}

// scanWrappers looks ahead for a run of valid wrapper letters at the cursor
// position.  The run counts as wrappers only if the character immediately
// after it is ':'; otherwise nil is returned and the letters will be re-read
// as part of a keyword instead.  The cursor is not advanced.
func scanWrappers(cur *cursor) []byte {
	n := 0
	for {
		c, ok := cur.peekN(n)
		if ok {
			if _, valid := wrapperFragments[c]; valid {
				n++
				continue
			}
			if c == ':' && n > 0 {
				return cur.data[cur.off : cur.off+n]
			}
		}
		return nil
	}
}
