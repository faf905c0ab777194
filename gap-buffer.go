// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-jump-rope
// File:     gap-buffer.go
// Date:     16.Mar.2024
//
// =============================================================================

// This file implements the gap buffer stored in every leaf of the rope's skip
// list.
//
// A gap buffer is an array with a gap at the edit position, where text is to
// be inserted and deleted.
//
// The string "Hello world!" with the gap at the end of "Hello" -
// "Hello| world!" - looks like this in a gap buffer array:
//
//	Hello|< gap start                                gap end >| world!
//
//	['H', 'e', 'l', 'l', 'o', 0, 0, 0, 0, 0, ' ', 'w', 'o', 'r', 'l', 'd', '!']
//	  0    1    2    3    4  |     gap     |  5    6    7    8    9    10   11
//
// Unlike a growable gap buffer backing a whole document, this one has a fixed
// capacity of nodeStrSize bytes. When an insertion does not fit, the rope
// splits the leaf instead of resizing the buffer.
//
// Besides the byte indices of the gap, the buffer tracks the number of unicode
// scalar points before the gap and whether every stored byte is ASCII. The
// ASCII flag makes translating between scalar point offsets and byte offsets
// a no-op for the common case; once a multi byte scalar point has been stored,
// the flag stays cleared even if that content is removed again.

package jumprope

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// gapBuffer is a fixed capacity UTF-8 buffer with a movable gap.
//
// The logical content is the prefix before the gap followed by the suffix
// after the gap. No unicode scalar point is ever split by the gap.
type gapBuffer struct {
	// The data of the gap buffer. The first gapStartBytes bytes and the last
	// nodeStrSize - gapStartBytes - gapLen bytes hold well formed UTF-8.
	data [nodeStrSize]byte

	// The byte index in `data` of the start of the gap.
	gapStartBytes int

	// The number of unicode scalar points stored before the gap.
	gapStartChars int

	// The length of the gap in bytes, the unused space of the buffer.
	gapLen int

	// True if every stored byte is in the range 0x00 - 0x7F.
	allASCII bool
}

// newGapBuffer returns an empty gap buffer, the gap spans the whole capacity.
func newGapBuffer() gapBuffer {
	return gapBuffer{
		gapLen:   nodeStrSize,
		allASCII: true,
	}
}

// lenBytes returns the number of content bytes in the buffer.
func (g *gapBuffer) lenBytes() int {
	return nodeStrSize - g.gapLen
}

// isEmpty returns true if the buffer holds no content.
func (g *gapBuffer) isEmpty() bool {
	return g.gapLen == nodeStrSize
}

// start returns the content bytes before the gap.
func (g *gapBuffer) start() []byte {
	return g.data[:g.gapStartBytes]
}

// end returns the content bytes after the gap.
func (g *gapBuffer) end() []byte {
	return g.data[g.gapStartBytes+g.gapLen:]
}

// countInternalChars returns the number of scalar points in the given slice of
// this buffer's content, using the ASCII fast path if possible.
func (g *gapBuffer) countInternalChars(b []byte) int {
	if g.allASCII {
		return len(b)
	}

	return countChars(b)
}

// byteOffset returns the byte offset of the scalar point with index `chars` in
// the given slice of this buffer's content.
func (g *gapBuffer) byteOffset(b []byte, chars int) int {
	if g.allASCII {
		return chars
	}

	return charsToBytes(b, chars)
}

// byteOffsetRev returns the number of bytes the last `chars` scalar points of
// the given slice of this buffer's content take up.
func (g *gapBuffer) byteOffsetRev(b []byte, chars int) int {
	if g.allASCII {
		return chars
	}

	return charsToBytesRev(b, chars)
}

// moveGap shifts content across the gap so that the gap starts at the byte
// index `newStart`. The scalar point count before the gap is updated by the
// number of scalar points moved.
//
// `newStart` must not split a scalar point and must not exceed the content
// length.
func (g *gapBuffer) moveGap(newStart int) {
	currentStart := g.gapStartBytes
	if newStart == currentStart {
		return
	}

	gapLen := g.gapLen

	if newStart < currentStart {
		// Move content to the right, across the gap.
		moved := g.data[newStart:currentStart]
		g.gapStartChars -= g.countInternalChars(moved)
		copy(g.data[newStart+gapLen:], moved)
	} else {
		// Move content to the left, across the gap.
		moved := g.data[currentStart+gapLen : newStart+gapLen]
		g.gapStartChars += g.countInternalChars(moved)
		copy(g.data[currentStart:], moved)
	}

	g.gapStartBytes = newStart
}

// insertInGap writes the given string at the head of the gap.
//
// Warning: this function does not check for room, if the string is longer
// than the gap, this panics! Use [gapBuffer.tryInsert] to check for room.
func (g *gapBuffer) insertInGap(s string) {
	length := len(s)
	charLen := utf8.RuneCountInString(s)

	if length > g.gapLen {
		panic(fmt.Sprintf(
			"gap buffer overflow: inserting %d bytes into a gap of %d bytes",
			length, g.gapLen))
	}

	copy(g.data[g.gapStartBytes:], s)
	g.gapStartBytes += length
	g.gapStartChars += charLen
	g.gapLen -= length

	if length != charLen {
		g.allASCII = false
	}
}

// tryInsert moves the gap to the byte index `bytePos` and inserts the given
// string there. It returns false and leaves the buffer untouched if the
// string does not fit into the gap.
func (g *gapBuffer) tryInsert(bytePos int, s string) bool {
	if len(s) > g.gapLen {
		// No space in this buffer.
		return false
	}

	g.moveGap(bytePos)
	g.insertInGap(s)

	return true
}

// removeAtGap discards the given number of bytes at the head of the suffix by
// widening the gap.
//
// Warning: this function does not check its argument, the removed range must
// not split a scalar point and must not exceed the suffix.
func (g *gapBuffer) removeAtGap(delLen int) {
	g.gapLen += delLen
}

// removeChars deletes `delLen` scalar points starting at the scalar point
// offset `pos` and returns the number of bytes removed.
//
// If the deleted range straddles the gap, both sides are trimmed in place -
// the prefix is shortened and the gap widened - without moving the gap first.
func (g *gapBuffer) removeChars(pos, delLen int) int {
	if delLen == 0 {
		return 0
	}

	rmStartBytes := 0
	gapChars := g.gapStartChars

	if pos <= gapChars && pos+delLen >= gapChars {
		if pos < gapChars {
			// Delete the range from pos up to the gap by retracting the
			// prefix, counting backwards from its end.
			rmStartBytes = g.byteOffsetRev(g.start(), gapChars-pos)

			delLen -= gapChars - pos
			g.gapLen += rmStartBytes
			g.gapStartChars = pos
			g.gapStartBytes -= rmStartBytes

			if delLen == 0 {
				return rmStartBytes
			}
		}
	} else {
		gapBytes := 0
		if pos < gapChars {
			gapBytes = g.byteOffset(g.start(), pos)
		} else {
			gapBytes = g.byteOffset(g.end(), pos-gapChars) + g.gapStartBytes
		}

		g.moveGap(gapBytes)
	}

	// The gap now ends directly before the first scalar point to delete.
	rmEndBytes := g.byteOffset(g.end(), delLen)
	g.removeAtGap(rmEndBytes)

	return rmStartBytes + rmEndBytes
}

// takeRest returns the suffix after the gap as a string and marks it deleted
// by widening the gap to the end of the buffer.
func (g *gapBuffer) takeRest() string {
	rest := string(g.end())
	g.gapLen = nodeStrSize - g.gapStartBytes

	return rest
}

// countBytes translates the scalar point offset `charPos` into a byte offset
// into the buffer's content.
func (g *gapBuffer) countBytes(charPos int) int {
	gapChars := g.gapStartChars
	gapBytes := g.gapStartBytes

	switch {
	case charPos == gapChars:
		return gapBytes
	case charPos < gapChars:
		return g.byteOffset(g.start(), charPos)
	default:
		return gapBytes + g.byteOffset(g.end(), charPos-gapChars)
	}
}

// String returns the content of the gap buffer as a single string.
func (g *gapBuffer) String() string {
	var b strings.Builder
	b.Grow(g.lenBytes())
	b.Write(g.start())
	b.Write(g.end())

	return b.String()
}

// equal returns true if both buffers hold the same content, independent of
// where their gaps are. The three aligned segments are compared in place, the
// content is never materialized.
func (g *gapBuffer) equal(o *gapBuffer) bool {
	if g.gapLen != o.gapLen {
		return false
	}

	a, b := g, o
	if b.gapStartBytes < a.gapStartBytes {
		a, b = b, a
	}

	// a has its gap first, or the gaps start at the same index.
	aStart := a.gapStartBytes
	bStart := b.gapStartBytes
	gapLen := a.gapLen

	// The segment before both gaps.
	if !bytes.Equal(a.data[:aStart], b.data[:aStart]) {
		return false
	}

	// The segment between the two gaps.
	if !bytes.Equal(a.data[aStart+gapLen:bStart+gapLen], b.data[aStart:bStart]) {
		return false
	}

	// The segment after both gaps.
	end := bStart + gapLen

	return bytes.Equal(a.data[end:], b.data[end:])
}

// check verifies the bookkeeping of the buffer and returns an error on the
// first violation found.
func (g *gapBuffer) check() error {
	if got := countChars(g.start()); got != g.gapStartChars {
		return fmt.Errorf(
			"gap buffer: gapStartChars is %d, counted %d scalar points before the gap",
			g.gapStartChars, got)
	}

	if g.allASCII {
		for _, b := range g.start() {
			if b > 0x7F {
				return fmt.Errorf(
					"gap buffer: allASCII set, found byte 0x%02X before the gap", b)
			}
		}

		for _, b := range g.end() {
			if b > 0x7F {
				return fmt.Errorf(
					"gap buffer: allASCII set, found byte 0x%02X after the gap", b)
			}
		}
	}

	return nil
}
