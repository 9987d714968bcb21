// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import "fmt"

// ErrorCode identifies a kind of parse error.
type ErrorCode int

// These constants are used to identify a specific ParseError.
const (
	// ErrSyntax indicates the input does not follow the descriptor
	// template grammar: an unexpected character where a literal was
	// required, an unknown or malformed token, or trailing bytes after a
	// complete top-level expression.
	ErrSyntax ErrorCode = iota

	// ErrRange indicates a numeric value is outside its permitted range:
	// a decimal overflow, a malformed hex image or fingerprint, a
	// derivation step of 2^31 or more, a multisig or thresh threshold out
	// of bounds, or too many derivation steps.
	ErrRange

	// ErrNesting indicates an operator was used outside its permitted
	// structural context, such as sh below the top level or wpkh inside
	// wsh.
	ErrNesting

	// ErrType indicates a miniscript type composition precondition was
	// violated, such as and_v whose first argument is not of type V.
	ErrType

	// ErrCapacity indicates the node arena was exhausted or the nesting
	// depth exceeded the recursion limit.
	ErrCapacity

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrSyntax:   "ErrSyntax",
	ErrRange:    "ErrRange",
	ErrNesting:  "ErrNesting",
	ErrType:     "ErrType",
	ErrCapacity: "ErrCapacity",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// ParseError identifies a descriptor template or key information parsing
// failure.  It is used to indicate that the input was rejected and no usable
// result exists.  The caller can use type assertions to access the ErrorCode
// field to ascertain the specific reason for the rejection.
type ParseError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e ParseError) Error() string {
	return e.Description
}

// parseError creates a ParseError given a set of arguments.
func parseError(c ErrorCode, desc string) ParseError {
	return ParseError{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a parse error with
// the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	perr, ok := err.(ParseError)
	return ok && perr.ErrorCode == c
}
