// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the wallet policy registration record format.

This package provides the serializable WalletPolicy record that a wallet
policy registration exchanges with a signing device: a version byte, the
wallet name, the descriptor template (inline in version 1, committed to by
its sha256 hash in version 2), the number of keys, and the Merkle root of
the key information vector.  The wallet policy id, the sha256 hash of the
canonical serialization, identifies a registered policy.

Variable length integers use the standard bitcoin compact size encoding and
non-canonical encodings are rejected on read.

# Errors

Errors returned by this package are either the raw underlying io errors or of
type wire.MessageError.  This allows the caller to differentiate between
unexpected io issues, such as a short read, and malformed records by type
asserting the error.
*/
package wire
