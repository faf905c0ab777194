// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-jump-rope
// File:     rope.go
// Date:     16.Mar.2024
//
// =============================================================================

// This library implements a jump rope, a rope data structure to be used as
// the text buffer of a (simple or not so simple) text editor or a
// collaborative editing engine. It stores a unicode string of up to hundreds
// of megabytes and supports insertion, deletion and replacement at arbitrary
// unicode scalar point offsets in logarithmic time.
//
// The rope is a probabilistic skip list over fixed capacity leaves. Every
// leaf holds a run of UTF-8 text in a gap buffer, every forward edge of the
// skip list carries the number of unicode scalar points it skips over. The
// rope "Hello, World" split over three leaves of heights 1, 2 and 1:
//
//	HEAD |-------------- 12 --------------> nil
//	     |----- 3 -----> +--------+-- 9 --> nil
//	     |- 0 -> +-------+        +-------+
//	     |       | "Hel" | "lo, " |"World"|
//	     +-------+-------+--------+-------+
//
// A seek walks the edges top down, subtracting edge counts from the target
// offset, and ends in the leaf holding the target. Small edits are absorbed
// by the leaf's gap buffer at memcpy speed; only when a leaf overflows are
// new leaves spliced into the list.
//
// All positions of the public API are unicode scalar point offsets, not byte
// offsets and not grapheme cluster offsets. Ranges are half open, out of
// range positions are clamped. Input strings must be well formed UTF-8.
//
// A Rope must not be copied by value and must not be mutated concurrently.
package jumprope

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"
	"unsafe"
)

// Rope is a mutable in-memory unicode string with fast edits at arbitrary
// scalar point offsets.
//
// The zero value is not usable, create ropes with [New], [NewSeed], [NewStr]
// or [NewStrSeed].
type Rope struct {
	// The source of leaf heights. Owned by the rope, so a rope built with
	// [NewSeed] is fully reproducible.
	rng *rand.Rand

	// The total number of bytes the stored scalar points take up.
	numBytes int

	// The head sentinel. It stores no text, and its height is always one
	// greater than the tallest leaf ever seen, at most maxHeight+1. Its top
	// level edge points past the end of the list and skips the whole rope.
	head node
}

// newWithRNG returns an empty rope drawing leaf heights from the given
// source.
func newWithRNG(rng *rand.Rand) *Rope {
	r := &Rope{rng: rng}
	r.head.str = newGapBuffer()
	r.head.height = 1
	r.head.nexts = make([]skipEntry, 1, maxHeight+1)

	return r
}

// New returns a new, empty rope. The leaf heights are seeded from entropy,
// use [NewSeed] to get a reproducible structure.
//
// See also [NewSeed], [NewStr], [NewStrSeed].
func New() *Rope {
	return newWithRNG(rand.New(rand.NewSource(rand.Int63())))
}

// NewSeed returns a new, empty rope with leaf heights drawn from a source
// seeded with the given seed. Two ropes built with the same seed and the same
// sequence of edits have identical internal structure.
//
// See also [New], [NewStr], [NewStrSeed].
func NewSeed(seed int64) *Rope {
	return newWithRNG(rand.New(rand.NewSource(seed)))
}

// NewStr returns a new rope holding the given string.
//
// See also [New], [NewSeed], [NewStrSeed].
func NewStr(s string) *Rope {
	r := New()
	r.Insert(0, s)

	return r
}

// NewStrSeed returns a new rope holding the given string, with leaf heights
// drawn from a source seeded with the given seed.
//
// See also [New], [NewSeed], [NewStr].
func NewStrSeed(s string, seed int64) *Rope {
	r := NewSeed(seed)
	r.Insert(0, s)

	return r
}

// LenChars returns the length of the rope in unicode scalar points. This is
// neither the number of bytes nor the number of grapheme clusters of the
// stored string.
//
// This is a constant time read of the head's top level edge.
//
// See also [Rope.LenBytes], [Rope.IsEmpty].
func (r *Rope) LenChars() int {
	return r.head.nexts[r.head.height-1].skipChars
}

// LenBytes returns the number of bytes of the UTF-8 representation of the
// rope, the same as the len of the equivalent string.
//
// See also [Rope.LenChars], [Rope.IsEmpty].
func (r *Rope) LenBytes() int {
	return r.numBytes
}

// IsEmpty returns true if the rope contains no text.
//
// See also [Rope.LenChars], [Rope.LenBytes].
func (r *Rope) IsEmpty() bool {
	return r.numBytes == 0
}

// cursorAtChar seeks the scalar point offset `charPos` and returns the path
// of the seek. `charPos` must be in [0, LenChars()].
//
// With `stickEnd` a target sitting exactly on a leaf boundary resolves to the
// tail of the preceding leaf, which deletion needs so following leaves can be
// spliced out. Without it the target resolves to the head of the next leaf,
// which reads prefer.
func (r *Rope) cursorAtChar(charPos int, stickEnd bool) cursor {
	e := &r.head
	height := r.head.height - 1
	offset := charPos // How many scalar points are still to skip.

	var c cursor

	for {
		next := e.nexts[height]
		skip := next.skipChars

		if offset > skip || (!stickEnd && offset == skip && next.node != nil) {
			// Go right.
			offset -= skip
			e = next.node

			if e == nil {
				panic("jump rope: seek ran past the end of the list")
			}
		} else {
			// Record this level and go down.
			c[height] = skipEntry{node: e, skipChars: offset}

			if height == 0 {
				break
			}

			height--
		}
	}

	return c
}

// cursorAtStart returns a cursor at offset 0, every level resting on the
// head.
func (r *Rope) cursorAtStart() cursor {
	var c cursor
	for i := range c {
		c[i] = skipEntry{node: &r.head, skipChars: 0}
	}

	return c
}

// cursorAtEnd returns an end-sticky cursor at the end of the rope.
func (r *Rope) cursorAtEnd() cursor {
	return r.cursorAtChar(r.LenChars(), true)
}

// insertNodeAt splices a fresh leaf holding `contents` into the list at the
// cursor. `numChars` is the scalar point count of `contents`. If the new
// leaf's random height tops the head, the head grows, the newly exposed
// levels seeing the whole list through a copy of the old top level. With
// `updateCursor` the cursor is advanced past the new leaf.
func (r *Rope) insertNodeAt(c *cursor, contents string, numChars int, updateCursor bool) {
	newNode := newNode(r.rng, contents)
	newHeight := newNode.height

	headHeight := r.head.height
	for headHeight <= newHeight {
		r.head.nexts = append(r.head.nexts, r.head.nexts[headHeight-1])
		c[headHeight] = c[headHeight-1]

		r.head.height++ // Ends up 1 more than the tallest leaf.
		headHeight++
	}

	for i := 0; i < newHeight; i++ {
		prev := &c[i].node.nexts[i]
		newNode.nexts[i].node = prev.node
		newNode.nexts[i].skipChars = numChars + prev.skipChars - c[i].skipChars

		prev.node = newNode
		prev.skipChars = c[i].skipChars

		if updateCursor {
			c[i] = skipEntry{node: newNode, skipChars: numChars}
		}
	}

	for i := newHeight; i < headHeight; i++ {
		// These levels skip over the new leaf, they just see more scalar
		// points.
		c[i].node.nexts[i].skipChars += numChars

		if updateCursor {
			c[i].skipChars += numChars
		}
	}

	r.numBytes += len(contents)
}

// insertAtCursor inserts `contents` at the cursor and leaves the cursor after
// the inserted text.
func (r *Rope) insertAtCursor(c *cursor, contents string) {
	if contents == "" {
		return
	}

	offset := c.localCharPos()
	offsetBytes := 0
	e := c.here()

	insBytes := len(contents)
	insChars := utf8.RuneCountInString(contents)

	// The head sentinel never stores text, an insert at its tail goes into
	// the first leaf or a fresh one.
	isHead := e == &r.head

	if !isHead && e.str.gapStartChars == offset && e.str.gapLen >= insBytes {
		// The whole insertion fits into the gap right here.
		e.str.insertInGap(contents)
		c.updateOffsets(r.head.height, insChars)
		c.moveWithinNode(r.head.height, insChars)
		r.numBytes += insBytes

		return
	}

	if offset > 0 {
		if offset > e.numChars() {
			panic("jump rope: cursor offset outside its leaf")
		}

		offsetBytes = e.str.countBytes(offset)
	}

	currentLenBytes := e.str.lenBytes()
	insertHere := !isHead && currentLenBytes+insBytes <= nodeStrSize

	if !insertHere && offsetBytes == currentLenBytes {
		// The leaf is full and the insertion sits at its very end. If the
		// following leaf has room, insert at its head instead.
		if next := e.next(); next != nil && next.str.lenBytes()+insBytes <= nodeStrSize {
			offsetBytes = 0

			for i := 0; i < next.height; i++ {
				c[i] = skipEntry{node: next, skipChars: 0}
			}

			e = next
			insertHere = true
		}
	}

	if insertHere {
		if !e.str.tryInsert(offsetBytes, contents) {
			panic("jump rope: leaf rejected an insertion that was measured to fit")
		}

		r.numBytes += insBytes
		c.updateOffsets(r.head.height, insChars)
		c.moveWithinNode(r.head.height, insChars)

		return
	}

	// There is no room, at least one new leaf is needed. If the cursor is not
	// at the end of the leaf, the text after it is cut off and re-inserted
	// behind the new leaves.
	e.str.moveGap(offsetBytes)

	numEndBytes := e.str.lenBytes() - offsetBytes
	numEndChars := 0
	endStr := ""

	if numEndBytes > 0 {
		endStr = e.str.takeRest()
		numEndChars = e.numChars() - offset

		c.updateOffsets(r.head.height, -numEndChars)
		r.numBytes -= numEndBytes
	}

	// Break the new content into runs of at most nodeStrSize bytes, never
	// splitting a scalar point, and splice a leaf for each run.
	remainder := contents
	for remainder != "" {
		bytePos := 0
		charPos := 0

		for _, ch := range remainder {
			size := utf8.RuneLen(ch)
			if bytePos+size > nodeStrSize {
				break
			}

			charPos++
			bytePos += size
		}

		r.insertNodeAt(c, remainder[:bytePos], charPos, true)
		remainder = remainder[bytePos:]
	}

	if numEndBytes > 0 {
		// The cursor stays at the splice point, in front of the tail.
		r.insertNodeAt(c, endStr, numEndChars, false)
	}
}

// delAtCursor deletes `length` scalar points following the cursor. The cursor
// stays valid at the deletion point, a following insert continues there.
func (r *Rope) delAtCursor(c *cursor, length int) {
	if length == 0 {
		return
	}

	offset := c.localCharPos()
	n := c.here()

	for length > 0 {
		if s := n.nexts[0]; offset == s.skipChars {
			// End of the current leaf, skip to the start of the next one.
			n = s.node
			offset = 0
		}

		numChars := n.numChars()
		removed := min(length, numChars-offset)
		height := n.height

		if removed < numChars || n == &r.head {
			// Trim the leaf down. Its own forward edges still cover the same
			// following leaves, just with fewer scalar points.
			removedBytes := n.str.removeChars(offset, removed)
			r.numBytes -= removedBytes

			for i := range n.nexts {
				n.nexts[i].skipChars -= removed
			}
		} else {
			// The whole leaf goes away. The cursor points from the previous
			// leaf to the start of this one, so splice it out level by level.
			for i := 0; i < height; i++ {
				s := &c[i].node.nexts[i]
				s.node = n.nexts[i].node
				s.skipChars += n.nexts[i].skipChars - removed
			}

			r.numBytes -= n.str.lenBytes()
			n = n.next()
		}

		for i := height; i < r.head.height; i++ {
			c[i].node.nexts[i].skipChars -= removed
		}

		length -= removed
	}
}

// Insert inserts the given string at the scalar point offset `charPos`. A
// position past the end of the rope is clamped to the end, an empty string is
// a no-op.
//
// The string must be well formed UTF-8.
//
// See also [Rope.Remove], [Rope.Replace], [Rope.Append].
func (r *Rope) Insert(charPos int, s string) {
	if s == "" {
		return
	}

	charPos = min(charPos, r.LenChars())

	c := r.cursorAtChar(charPos, true)
	r.insertAtCursor(&c, s)
}

// Remove deletes the scalar points in the half open range [start, end). An
// end past the end of the rope is clamped, a start at or past the end of the
// range is a no-op.
//
// See also [Rope.Insert], [Rope.Replace].
func (r *Rope) Remove(start, end int) {
	end = min(end, r.LenChars())
	if start >= end {
		return
	}

	// The cursor must stick to the leaf before the boundary so whole leaves
	// behind it can be spliced out.
	c := r.cursorAtChar(start, true)
	r.delAtCursor(&c, end-start)
}

// Replace replaces the scalar points in the half open range [start, end) with
// the given string. It is equivalent to [Rope.Remove] followed by
// [Rope.Insert] but seeks the position only once.
//
// See also [Rope.Insert], [Rope.Remove].
func (r *Rope) Replace(start, end int, s string) {
	length := r.LenChars()
	pos := min(start, length)
	delLen := min(end, length) - pos

	c := r.cursorAtChar(pos, true)

	if delLen > 0 {
		r.delAtCursor(&c, delLen)
	}

	if s != "" {
		r.insertAtCursor(&c, s)
	}
}

// Append inserts the given string at the end of the rope.
//
// See also [Rope.Insert].
func (r *Rope) Append(s string) {
	if s == "" {
		return
	}

	c := r.cursorAtEnd()
	r.insertAtCursor(&c, s)
}

// String returns the content of the rope as a single string.
func (r *Rope) String() string {
	var b strings.Builder
	b.Grow(r.numBytes)

	for n := r.head.next(); n != nil; n = n.next() {
		b.Write(n.str.start())
		b.Write(n.str.end())
	}

	return b.String()
}

// Chunk is one run of text of the rope: a substring and the scalar point
// offset of its first scalar point in the document.
type Chunk struct {
	Str     string
	CharPos int
}

// ChunkIter iterates the text of a rope in document order. Every leaf yields
// one or two chunks, the prefix and the suffix of its gap buffer; their
// concatenation is the document.
//
// A ChunkIter borrows the rope, it must not be used across a mutation.
type ChunkIter struct {
	n       *node
	charPos int
	suffix  bool
}

// Chunks returns an iterator over the text runs of the rope.
//
// See also [Rope.String].
func (r *Rope) Chunks() *ChunkIter {
	return &ChunkIter{n: r.head.next()}
}

// Next returns the next chunk of the rope and true, or a zero Chunk and
// false after the last one.
func (it *ChunkIter) Next() (Chunk, bool) {
	for it.n != nil {
		n := it.n

		if !it.suffix {
			it.suffix = true

			if n.str.gapStartBytes > 0 {
				return Chunk{Str: string(n.str.start()), CharPos: it.charPos}, true
			}
		}

		suffix := n.str.end()
		suffixPos := it.charPos + n.str.gapStartChars

		it.charPos += n.numChars()
		it.suffix = false
		it.n = n.next()

		if len(suffix) > 0 {
			return Chunk{Str: string(suffix), CharPos: suffixPos}, true
		}
	}

	return Chunk{}, false
}

// EqualStr returns true if the content of the rope equals the given string.
// The rope's text runs are compared in place, the rope is not materialized.
//
// See also [Rope.Equal].
func (r *Rope) EqualStr(other string) bool {
	if r.numBytes != len(other) {
		return false
	}

	it := r.Chunks()

	for chunk, ok := it.Next(); ok; chunk, ok = it.Next() {
		if other[:len(chunk.Str)] != chunk.Str {
			return false
		}

		other = other[len(chunk.Str):]
	}

	return true
}

// Equal returns true if both ropes hold the same content. The skip list
// structure and the gap positions do not matter, only the text.
//
// See also [Rope.EqualStr].
func (r *Rope) Equal(other *Rope) bool {
	if r.numBytes != other.numBytes || r.LenChars() != other.LenChars() {
		return false
	}

	it := r.Chunks()
	otherIt := other.Chunks()
	os := ""

	for chunk, ok := it.Next(); ok; chunk, ok = it.Next() {
		s := chunk.Str

		// Walk len(s) bytes through the other rope's chunks.
		for s != "" {
			if os == "" {
				otherChunk, otherOk := otherIt.Next()
				if !otherOk {
					return false
				}

				os = otherChunk.Str
			}

			amt := min(len(s), len(os))
			if s[:amt] != os[:amt] {
				return false
			}

			s = s[amt:]
			os = os[amt:]
		}
	}

	return true
}

// Clone returns a deep copy of the rope with a fresh, entropy seeded height
// source. The copy holds the same text, its internal structure is
// independent of the original's.
func (r *Rope) Clone() *Rope {
	clone := New()
	c := clone.cursorAtStart()

	for n := r.head.next(); n != nil; n = n.next() {
		clone.insertAtCursor(&c, string(n.str.start()))
		clone.insertAtCursor(&c, string(n.str.end()))
	}

	return clone
}

// Check walks the whole rope and verifies its bookkeeping: the gap buffer
// counts of every leaf, the scalar point count of every forward edge on
// every level, the head's total and the byte total. It returns an error
// describing the first violation found, or nil.
//
// This is a debugging aid with linear cost, the library calls it only from
// its tests.
func (r *Rope) Check() error {
	if r.head.height < 1 || r.head.height > maxHeight+1 {
		return fmt.Errorf("rope: head height %d out of range", r.head.height)
	}

	top := r.head.nexts[r.head.height-1]
	if top.node != nil {
		return fmt.Errorf("rope: head top level edge does not point past the end")
	}

	// One running edge per level, each carrying the total distance travelled
	// from the start of the rope.
	var running [maxHeight + 1]skipEntry
	for i := 0; i < r.head.height; i++ {
		running[i].node = &r.head
	}

	numBytes := 0
	numChars := 0

	if !r.head.str.isEmpty() {
		return fmt.Errorf("rope: head sentinel stores text")
	}

	for n := &r.head; n != nil; n = n.next() {
		if len(n.nexts) != n.height {
			return fmt.Errorf(
				"rope: node of height %d carries %d forward edges", n.height, len(n.nexts))
		}

		if n != &r.head {
			if n.str.isEmpty() {
				return fmt.Errorf("rope: empty leaf at scalar point %d", numChars)
			}

			if n.height < 1 || n.height > maxHeight {
				return fmt.Errorf("rope: leaf height %d out of range", n.height)
			}

			if n.height >= r.head.height {
				return fmt.Errorf(
					"rope: leaf height %d not below head height %d",
					n.height, r.head.height)
			}
		}

		if err := n.str.check(); err != nil {
			return err
		}

		if got := countChars(n.str.start()) + countChars(n.str.end()); got != n.numChars() {
			return fmt.Errorf(
				"rope: level 0 edge skips %d scalar points, leaf holds %d",
				n.numChars(), got)
		}

		for i := 0; i < n.height; i++ {
			if running[i].node != n {
				return fmt.Errorf("rope: level %d edge does not link to this leaf", i)
			}

			if running[i].skipChars != numChars {
				return fmt.Errorf(
					"rope: level %d edge arrives at scalar point %d, leaf starts at %d",
					i, running[i].skipChars, numChars)
			}

			running[i].node = n.nexts[i].node
			running[i].skipChars += n.nexts[i].skipChars
		}

		numBytes += n.str.lenBytes()
		numChars += n.numChars()
	}

	for i := 0; i < r.head.height; i++ {
		if running[i].node != nil {
			return fmt.Errorf("rope: level %d edge does not end past the list", i)
		}

		if running[i].skipChars != numChars {
			return fmt.Errorf(
				"rope: level %d edges sum to %d scalar points, rope holds %d",
				i, running[i].skipChars, numChars)
		}
	}

	if numBytes != r.numBytes {
		return fmt.Errorf("rope: numBytes is %d, leaves hold %d bytes", r.numBytes, numBytes)
	}

	if got := r.LenChars(); got != numChars {
		return fmt.Errorf("rope: LenChars is %d, leaves hold %d scalar points", got, numChars)
	}

	return nil
}

// MemSize returns the number of bytes of memory the rope occupies: the rope
// structure itself, the head's forward list and every leaf with its forward
// list.
//
// This walks the whole rope, it is a debugging aid.
func (r *Rope) MemSize() int {
	size := int(unsafe.Sizeof(*r))
	size += cap(r.head.nexts) * int(unsafe.Sizeof(skipEntry{}))

	for n := r.head.next(); n != nil; n = n.next() {
		size += int(unsafe.Sizeof(*n))
		size += n.height * int(unsafe.Sizeof(skipEntry{}))
	}

	return size
}
