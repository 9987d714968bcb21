// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// WalletPolicyV1 identifies the legacy record layout, where the
	// descriptor template text is carried inline.
	WalletPolicyV1 uint8 = 1

	// WalletPolicyV2 identifies the current record layout, where the
	// descriptor template is committed to by its sha256 hash instead of
	// being carried inline.
	WalletPolicyV2 uint8 = 2

	// MaxNameLength is the maximum length in bytes of a wallet name.
	MaxNameLength = 16

	// MaxTemplateLength is the maximum length in bytes of a descriptor
	// template.
	MaxTemplateLength = 512

	// MaxKeys is the maximum number of entries in a wallet policy's key
	// information vector.  It keeps the key count within the single-byte
	// range of a variable length integer.
	MaxKeys = 252
)

// TemplateHash returns the sha256 commitment to a descriptor template as
// carried in a version 2 wallet policy record.
func TemplateHash(template string) chainhash.Hash {
	return chainhash.HashH([]byte(template))
}

// WalletPolicy is the serializable record a wallet policy registration is
// made of: a version byte, a short human-readable name, the descriptor
// template (inline in version 1, committed to by hash in version 2), the
// number of keys, and the Merkle root of the key information vector.
//
// Template is only populated for version 1 records and when a version 2
// record was built locally from the template text; deserializing a version 2
// record recovers the hash commitment only.
type WalletPolicy struct {
	Version        uint8
	Name           string
	TemplateLen    uint64
	Template       string
	TemplateHash   chainhash.Hash
	NKeys          uint64
	KeysMerkleRoot chainhash.Hash
}

// NewWalletPolicy returns a wallet policy record of the given version built
// from the template text, validating all field bounds.
func NewWalletPolicy(version uint8, name, template string, nKeys uint64,
	keysMerkleRoot chainhash.Hash) (*WalletPolicy, error) {

	wp := &WalletPolicy{
		Version:        version,
		Name:           name,
		TemplateLen:    uint64(len(template)),
		Template:       template,
		TemplateHash:   TemplateHash(template),
		NKeys:          nKeys,
		KeysMerkleRoot: keysMerkleRoot,
	}
	if err := wp.validate("NewWalletPolicy"); err != nil {
		return nil, err
	}
	return wp, nil
}

// validate checks the field bounds shared by serialization and
// deserialization.
func (wp *WalletPolicy) validate(op string) error {
	if wp.Version != WalletPolicyV1 && wp.Version != WalletPolicyV2 {
		str := fmt.Sprintf("unknown wallet policy version %d", wp.Version)
		return messageError(op, str)
	}
	if len(wp.Name) > MaxNameLength {
		str := fmt.Sprintf("wallet name is too long [count %d, max %d]",
			len(wp.Name), MaxNameLength)
		return messageError(op, str)
	}
	if wp.TemplateLen > MaxTemplateLength {
		str := fmt.Sprintf("descriptor template is too long [count %d, "+
			"max %d]", wp.TemplateLen, MaxTemplateLength)
		return messageError(op, str)
	}
	if wp.NKeys > MaxKeys {
		str := fmt.Sprintf("number of keys is out of range [count %d, "+
			"max %d]", wp.NKeys, MaxKeys)
		return messageError(op, str)
	}
	return nil
}

// Serialize encodes the wallet policy to w in the canonical registration
// layout: version, name length and name, template length as a varint, the
// inline template (version 1) or its sha256 hash (version 2), the key count
// as a varint, and the key information Merkle root.
func (wp *WalletPolicy) Serialize(w io.Writer) error {
	if err := wp.validate("WalletPolicy.Serialize"); err != nil {
		return err
	}
	if wp.Version == WalletPolicyV1 &&
		uint64(len(wp.Template)) != wp.TemplateLen {

		str := fmt.Sprintf("template length %d does not match template "+
			"[count %d]", wp.TemplateLen, len(wp.Template))
		return messageError("WalletPolicy.Serialize", str)
	}

	if err := binarySerializer.PutUint8(w, wp.Version); err != nil {
		return err
	}

	if err := binarySerializer.PutUint8(w, uint8(len(wp.Name))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(wp.Name)); err != nil {
		return err
	}

	if err := WriteVarInt(w, wp.TemplateLen); err != nil {
		return err
	}
	if wp.Version == WalletPolicyV1 {
		if _, err := w.Write([]byte(wp.Template)); err != nil {
			return err
		}
	} else {
		if _, err := w.Write(wp.TemplateHash[:]); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, wp.NKeys); err != nil {
		return err
	}
	_, err := w.Write(wp.KeysMerkleRoot[:])
	return err
}

// Deserialize decodes a wallet policy from r, enforcing the same field
// bounds Serialize does.  For version 2 records only the template hash
// commitment is recovered; Template is left empty.
func (wp *WalletPolicy) Deserialize(r io.Reader) error {
	version, err := binarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	wp.Version = version
	if version != WalletPolicyV1 && version != WalletPolicyV2 {
		str := fmt.Sprintf("unknown wallet policy version %d", version)
		return messageError("WalletPolicy.Deserialize", str)
	}

	nameLen, err := binarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	if nameLen > MaxNameLength {
		str := fmt.Sprintf("wallet name is too long [count %d, max %d]",
			nameLen, MaxNameLength)
		return messageError("WalletPolicy.Deserialize", str)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return err
	}
	wp.Name = string(name)

	wp.TemplateLen, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if wp.TemplateLen > MaxTemplateLength {
		str := fmt.Sprintf("descriptor template is too long [count %d, "+
			"max %d]", wp.TemplateLen, MaxTemplateLength)
		return messageError("WalletPolicy.Deserialize", str)
	}
	if version == WalletPolicyV1 {
		template := make([]byte, wp.TemplateLen)
		if _, err := io.ReadFull(r, template); err != nil {
			return err
		}
		wp.Template = string(template)
		wp.TemplateHash = TemplateHash(wp.Template)
	} else {
		wp.Template = ""
		if _, err := io.ReadFull(r, wp.TemplateHash[:]); err != nil {
			return err
		}
	}

	wp.NKeys, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if wp.NKeys > MaxKeys {
		str := fmt.Sprintf("number of keys is out of range [count %d, "+
			"max %d]", wp.NKeys, MaxKeys)
		return messageError("WalletPolicy.Deserialize", str)
	}

	_, err = io.ReadFull(r, wp.KeysMerkleRoot[:])
	return err
}

// SerializeSize returns the number of bytes it would take to serialize the
// wallet policy.
func (wp *WalletPolicy) SerializeSize() int {
	n := 1 + 1 + len(wp.Name) + VarIntSerializeSize(wp.TemplateLen) +
		VarIntSerializeSize(wp.NKeys) + chainhash.HashSize
	if wp.Version == WalletPolicyV1 {
		n += int(wp.TemplateLen)
	} else {
		n += chainhash.HashSize
	}
	return n
}

// ID returns the wallet policy id, the sha256 hash of the canonical
// serialization.  The id commits to every field of the record and is what a
// device displays and persists for a registered policy.
func (wp *WalletPolicy) ID() (chainhash.Hash, error) {
	buf := bytes.NewBuffer(make([]byte, 0, wp.SerializeSize()))
	if err := wp.Serialize(buf); err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(buf.Bytes()), nil
}
