// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

// cursor is a read-only window over a byte slice with a read position.  It
// never owns or copies the backing bytes.
type cursor struct {
	data []byte
	off  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// canRead returns whether n more bytes can be read from the current position.
func (c *cursor) canRead(n int) bool {
	return c.off+n <= len(c.data)
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

// peek returns the next byte without advancing the read position.
func (c *cursor) peek() (byte, bool) {
	if c.off >= len(c.data) {
		return 0, false
	}
	return c.data[c.off], true
}

// peekN returns the byte n positions ahead of the read position without
// advancing it.
func (c *cursor) peekN(n int) (byte, bool) {
	if c.off+n >= len(c.data) {
		return 0, false
	}
	return c.data[c.off+n], true
}

// readByte returns the next byte and advances the read position.
func (c *cursor) readByte() (byte, bool) {
	if c.off >= len(c.data) {
		return 0, false
	}
	b := c.data[c.off]
	c.off++
	return b, true
}

// readBytes returns the next n bytes and advances the read position.  The
// returned slice aliases the backing bytes.
func (c *cursor) readBytes(n int) ([]byte, bool) {
	if !c.canRead(n) {
		return nil, false
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, true
}

// skip advances the read position by n bytes.  It must not be called with
// more bytes than remain.
func (c *cursor) skip(n int) {
	c.off += n
}
