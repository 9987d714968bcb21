// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"testing"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrSyntax, "ErrSyntax"},
		{ErrRange, "ErrRange"},
		{ErrNesting, "ErrNesting"},
		{ErrType, "ErrType"},
		{ErrCapacity, "ErrCapacity"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	if len(tests)-1 != int(numErrorCodes) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestParseError tests the error output for the ParseError type.
func TestParseError(t *testing.T) {
	tests := []struct {
		in   ParseError
		want string
	}{
		{ParseError{Description: "some error"}, "some error"},
		{ParseError{Description: "human-readable error"},
			"human-readable error"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("Error #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestIsErrorCode tests matching against both the code and the error type.
func TestIsErrorCode(t *testing.T) {
	err := parseError(ErrNesting, "sh below the top level")
	if !IsErrorCode(err, ErrNesting) {
		t.Errorf("IsErrorCode did not match an identical code")
	}
	if IsErrorCode(err, ErrSyntax) {
		t.Errorf("IsErrorCode matched a different code")
	}
	if IsErrorCode(nil, ErrNesting) {
		t.Errorf("IsErrorCode matched a nil error")
	}
}
