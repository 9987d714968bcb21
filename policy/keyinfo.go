// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// MaxKeyOriginSteps is the maximum number of derivation steps in a
	// key origin.
	MaxKeyOriginSteps = 10

	// minExtPubKeyLength and maxExtPubKeyLength bound the base58 length
	// of a serialized extended public key.
	minExtPubKeyLength = 111
	maxExtPubKeyLength = 112
)

// DerivationStep is one child index of a BIP32 derivation path.  Index is
// always below hdkeychain.HardenedKeyStart; the hardened offset is carried
// by the Hardened flag instead.
type DerivationStep struct {
	Index    uint32
	Hardened bool
}

// KeyInfo is one entry of the key information vector of a wallet policy: an
// optional key origin (master key fingerprint plus derivation path), the
// serialized extended public key, and whether the key is used with a
// trailing /** wildcard.
type KeyInfo struct {
	// HasOrigin reports whether the key information carries a
	// [fingerprint/path] origin prefix.  MasterFingerprint and Steps are
	// only meaningful when it is set.
	HasOrigin bool

	// MasterFingerprint is the fingerprint of the master key the
	// derivation path starts from.
	MasterFingerprint [4]byte

	// Steps is the derivation path from the master key to ExtPubKey.
	Steps []DerivationStep

	// ExtPubKey is the base58 serialized extended public key.
	ExtPubKey string

	// HasWildcard reports a trailing /**, meaning receive and change
	// addresses are derived from the key.
	HasWildcard bool
}

// parseDerivationStep parses one /i or /i' path element, without the
// leading '/'.
func parseDerivationStep(cur *cursor) (DerivationStep, error) {
	var step DerivationStep

	index, err := parseUnsignedDecimal(cur)
	if err != nil {
		return step, err
	}
	if index >= hdkeychain.HardenedKeyStart {
		return step, parseError(ErrRange, fmt.Sprintf(
			"derivation index %d does not fit in 31 bits", index))
	}
	step.Index = index

	if c, ok := cur.peek(); ok && c == '\'' {
		cur.skip(1)
		step.Hardened = true
	}
	return step, nil
}

// ParseKeyInfo parses one KEY expression of the form
//
//	[fingerprint/step/.../step]xpub/**
//
// where the bracketed key origin and the /** wildcard suffix are both
// optional.  The expression must span the whole input.
func ParseKeyInfo(keyInfo string) (KeyInfo, error) {
	info, err := parseKeyInfo(keyInfo)
	if err != nil {
		log.Debugf("Rejected key information %q: %v", keyInfo, err)
	}
	return info, err
}

func parseKeyInfo(keyInfo string) (KeyInfo, error) {
	var info KeyInfo
	cur := newCursor([]byte(keyInfo))

	if c, ok := cur.peek(); ok && c == '[' {
		cur.skip(1)
		info.HasOrigin = true

		fpr, err := parseHexHash(cur, 4)
		if err != nil {
			return KeyInfo{}, parseError(ErrRange,
				"malformed master key fingerprint")
		}
		copy(info.MasterFingerprint[:], fpr)

		for {
			c, ok := cur.peek()
			if !ok || c != '/' {
				break
			}
			cur.skip(1)

			if len(info.Steps) == MaxKeyOriginSteps {
				return KeyInfo{}, parseError(ErrRange, fmt.Sprintf(
					"key origin has more than %d derivation steps",
					MaxKeyOriginSteps))
			}
			step, err := parseDerivationStep(cur)
			if err != nil {
				return KeyInfo{}, err
			}
			info.Steps = append(info.Steps, step)
		}

		if err := consumeChar(cur, ']'); err != nil {
			return KeyInfo{}, err
		}
	}

	// The key is accepted as an alphanumeric run gated purely by its
	// length; base58 and checksum validation happen on ExtendedKey.
	start := cur.off
	for cur.off-start <= maxExtPubKeyLength {
		c, ok := cur.peek()
		if !ok || !isAlphanumeric(c) {
			break
		}
		cur.skip(1)
	}
	n := cur.off - start
	if n < minExtPubKeyLength || n > maxExtPubKeyLength {
		return KeyInfo{}, parseError(ErrSyntax, fmt.Sprintf(
			"extended public key length %d is not %d or %d characters",
			n, minExtPubKeyLength, maxExtPubKeyLength))
	}
	info.ExtPubKey = keyInfo[start : start+n]

	// The only valid suffix after the key is the literal /** wildcard.
	switch cur.remaining() {
	case 0:
	case 3:
		suffix, _ := cur.readBytes(3)
		if string(suffix) != "/**" {
			return KeyInfo{}, parseError(ErrSyntax,
				"invalid suffix after extended public key")
		}
		info.HasWildcard = true
	default:
		return KeyInfo{}, parseError(ErrSyntax,
			"invalid suffix after extended public key")
	}

	return info, nil
}

// String returns the key information in the form accepted by ParseKeyInfo.
func (k *KeyInfo) String() string {
	var sb strings.Builder
	if k.HasOrigin {
		sb.WriteByte('[')
		sb.WriteString(hex.EncodeToString(k.MasterFingerprint[:]))
		for _, step := range k.Steps {
			fmt.Fprintf(&sb, "/%d", step.Index)
			if step.Hardened {
				sb.WriteByte('\'')
			}
		}
		sb.WriteByte(']')
	}
	sb.WriteString(k.ExtPubKey)
	if k.HasWildcard {
		sb.WriteString("/**")
	}
	return sb.String()
}

// ExtendedKey decodes the serialized extended public key, verifying its
// base58 checksum and payload in the process.
func (k *KeyInfo) ExtendedKey() (*hdkeychain.ExtendedKey, error) {
	return hdkeychain.NewKeyFromString(k.ExtPubKey)
}
