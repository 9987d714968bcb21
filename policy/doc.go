// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package policy implements parsing of wallet policy descriptor templates.

A descriptor template is a script expression written in the top-level
descriptor language (sh, wsh, pkh, wpkh, tr, multi, sortedmulti) and the
miniscript language, with numbered placeholders of the form @i standing in
for keys.  The placeholders reference entries of a separate key information
vector, each entry an optional key origin, an extended public key and an
optional /** wildcard, parsed by ParseKeyInfo.

Parse builds the template's abstract syntax tree bottom-up into a
fixed-capacity Arena, enforcing the structural rules of the descriptor
operators (which operators may nest where) and the miniscript type system as
each node is built.  Every miniscript node carries its base type (B, V, K or
W) and the z, o, n, d and u modifier flags, computed from its children by
the fixed composition rule of its fragment; a violated composition
precondition aborts the parse.

The arena bounds memory use per parse: nodes are bump-allocated, never
individually freed, and discarded wholesale by Reset between independent
parses.

# Errors

Errors returned by this package are of type policy.ParseError, whose
ErrorCode field distinguishes syntax, range, nesting, type and capacity
failures.  The IsErrorCode function can be used to check for a specific
kind of failure.
*/
package policy
