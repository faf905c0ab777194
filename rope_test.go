// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-jump-rope
// File:     rope_test.go
// Date:     16.Mar.2024
//
// =============================================================================

// Black-box testing of the jump rope library.
package jumprope_test

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	jumprope "github.com/Release-Candidate/go-jump-rope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkRope verifies the rope against the expected content: the structural
// invariants, the content, both length queries, equality against a string, a
// rope built from the string, and a clone.
func checkRope(t *testing.T, r *jumprope.Rope, expected string) {
	t.Helper()

	require.NoError(t, r.Check(), "Error, structural invariants violated!")
	assert.Equal(t, expected, r.String(), "Error checking rope content!")
	assert.Equal(t, len(expected), r.LenBytes(), "Error checking byte length!")
	assert.Equal(t, utf8.RuneCountInString(expected), r.LenChars(),
		"Error checking scalar point length!")
	assert.True(t, r.EqualStr(expected), "Error, rope isn't equal to its content!")
	assert.True(t, r.Equal(jumprope.NewStr(expected)),
		"Error, rope isn't equal to a rope with the same content!")

	clone := r.Clone()
	require.NoError(t, clone.Check(), "Error, clone violates invariants!")
	assert.True(t, r.Equal(clone), "Error, rope isn't equal to its clone!")
}

// ==============================================================================
//                       Simple Sanity Checks

func TestEmpty(t *testing.T) {
	t.Parallel()

	r := jumprope.New()

	assert.Equal(t, "", r.String(), "Error, empty rope isn't empty!")
	assert.Equal(t, 0, r.LenChars(), "Error checking scalar point length!")
	assert.Equal(t, 0, r.LenBytes(), "Error checking byte length!")
	assert.True(t, r.IsEmpty(), "Error, empty rope claims content!")
	checkRope(t, r, "")
}

func TestEmptyInsertEmpty(t *testing.T) {
	t.Parallel()

	r := jumprope.New()
	r.Insert(0, "")

	checkRope(t, r, "")
}

func TestInsertAtLocation(t *testing.T) {
	t.Parallel()

	r := jumprope.NewSeed(123)

	r.Insert(0, "AAA")
	checkRope(t, r, "AAA")

	r.Insert(0, "BBB")
	checkRope(t, r, "BBBAAA")

	r.Insert(6, "CCC")
	checkRope(t, r, "BBBAAACCC")

	r.Insert(5, "DDD")
	checkRope(t, r, "BBBAADDDACCC")
}

func TestNewStrHasContent(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("hi there")
	checkRope(t, r, "hi there")
}

func TestInsertUnicode(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("κόσμε")
	checkRope(t, r, "κόσμε")

	r.Insert(2, "𝕐𝕆😘")
	checkRope(t, r, "κό𝕐𝕆😘σμε")
	assert.Equal(t, 8, r.LenChars(), "Error checking scalar point length!")
	assert.Equal(t, len("κό𝕐𝕆😘σμε"), r.LenBytes(), "Error checking byte length!")
}

func TestDeleteAtLocation(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("012345678")
	checkRope(t, r, "012345678")

	r.Remove(8, 9)
	checkRope(t, r, "01234567")

	r.Remove(0, 1)
	checkRope(t, r, "1234567")

	r.Remove(5, 6)
	checkRope(t, r, "123457")

	r.Remove(5, 6)
	checkRope(t, r, "12345")

	r.Remove(0, 5)
	checkRope(t, r, "")
}

func TestDeletePastEnd(t *testing.T) {
	t.Parallel()

	r := jumprope.New()

	r.Remove(0, 100)
	checkRope(t, r, "")

	r.Insert(0, "hi there")
	r.Remove(3, 13)
	checkRope(t, r, "hi ")
}

func TestDeleteWord(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("Whoa dawg!")
	r.Remove(4, 9)

	checkRope(t, r, "Whoa!")
}

func TestReplace(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("Hi Mike!")
	r.Replace(3, 7, "Duane")

	checkRope(t, r, "Hi Duane!")
}

func TestReplaceEverything(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("Hello, World!")
	r.Replace(0, r.LenChars(), "Goodbye!")

	checkRope(t, r, "Goodbye!")
}

// ==============================================================================
//                       No-Ops and Clamping

func TestInsertEmptyIsNoOp(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("some text")
	r.Insert(4, "")

	checkRope(t, r, "some text")
}

func TestRemoveEmptyRangeIsNoOp(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("some text")
	r.Remove(4, 4)

	checkRope(t, r, "some text")
}

func TestRemoveInvertedRangeIsNoOp(t *testing.T) {
	t.Parallel()

	r := jumprope.NewStr("some text")
	r.Remove(7, 3)

	checkRope(t, r, "some text")
}

func TestInsertPastEndClamps(t *testing.T) {
	t.Parallel()

	clamped := jumprope.NewStr("abc")
	clamped.Insert(100, "xyz")

	exact := jumprope.NewStr("abc")
	exact.Insert(3, "xyz")

	checkRope(t, clamped, "abcxyz")
	assert.True(t, clamped.Equal(exact), "Error, clamped insert differs from exact insert!")
}

func TestRemovePastEndClamps(t *testing.T) {
	t.Parallel()

	clamped := jumprope.NewStr("abcdef")
	clamped.Remove(2, 100)

	exact := jumprope.NewStr("abcdef")
	exact.Remove(2, 6)

	checkRope(t, clamped, "ab")
	assert.True(t, clamped.Equal(exact), "Error, clamped remove differs from exact remove!")
}

// ==============================================================================
//                       Append, Chunks and Equality

func TestAppend(t *testing.T) {
	t.Parallel()

	r := jumprope.New()
	r.Append("Hello")
	r.Append(", ")
	r.Append("World!")
	r.Append("")

	checkRope(t, r, "Hello, World!")
}

func TestChunksConcatenate(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("0123456789αβγδ", 100)
	r := jumprope.NewStrSeed(content, 7)

	var b strings.Builder
	chars := 0
	iter := r.Chunks()

	for chunk, ok := iter.Next(); ok; chunk, ok = iter.Next() {
		assert.Equal(t, chars, chunk.CharPos, "Error checking chunk offset!")
		b.WriteString(chunk.Str)
		chars += utf8.RuneCountInString(chunk.Str)
	}

	assert.Equal(t, content, b.String(), "Error, chunks don't concatenate to the content!")
	assert.Equal(t, r.LenChars(), chars, "Error checking total chunk scalar points!")
}

func TestChunksOfEmptyRope(t *testing.T) {
	t.Parallel()

	iter := jumprope.New().Chunks()
	_, ok := iter.Next()

	assert.False(t, ok, "Error, empty rope yields a chunk!")
}

func TestEqualityIgnoresStructure(t *testing.T) {
	t.Parallel()

	// Build the same content along two different edit paths and with two
	// different height sequences.
	first := jumprope.NewSeed(1)
	first.Insert(0, "World!")
	first.Insert(0, "Hello, ")

	second := jumprope.NewSeed(99)
	second.Insert(0, "Hello")
	second.Append(", World")
	second.Append("!")

	assert.True(t, first.Equal(second), "Error, equal contents compare unequal!")
	assert.True(t, second.Equal(first), "Error, equality isn't symmetric!")
}

func TestInequality(t *testing.T) {
	t.Parallel()

	assert.False(t, jumprope.NewStr("hi").Equal(jumprope.NewStr("yo")),
		"Error, different contents compare equal!")
	assert.False(t, jumprope.NewStr("hi").EqualStr("hi "),
		"Error, rope equals a longer string!")
	assert.False(t, jumprope.NewStr("hü").EqualStr("hu"),
		"Error, rope equals a different string of other byte length!")
}

// ==============================================================================
//                       Large Content

func TestRoundTripLongAscii(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(17))
	content := randomASCIIString(rng, 2000)
	r := jumprope.NewStrSeed(content, 17)

	checkRope(t, r, content)

	// Delete everything but the first and the last scalar point.
	r.Remove(1, len(content)-1)
	checkRope(t, r, content[:1]+content[len(content)-1:])
}

func TestRoundTripLongUnicode(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(18))
	content := randomUnicodeString(rng, 2000)
	r := jumprope.NewStrSeed(content, 18)

	checkRope(t, r, content)
}

func TestInsertIntoLongString(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("abcdefghij", 150)
	r := jumprope.NewStrSeed(content, 3)

	r.Insert(750, "MIDDLE")
	checkRope(t, r, content[:750]+"MIDDLE"+content[750:])
}

func TestMemSize(t *testing.T) {
	t.Parallel()

	r := jumprope.NewSeed(5)
	empty := r.MemSize()

	assert.Positive(t, empty, "Error, empty rope reports no memory!")

	r.Insert(0, strings.Repeat("x", 5000))

	assert.Greater(t, r.MemSize(), empty, "Error, memory didn't grow with content!")
}

// ==============================================================================
//                       Randomized Edits

// The alphabet mixes scalar points of 1, 2, 3 and 4 byte UTF-8 encodings.
var fuzzChars = []rune{
	'a', 'b', 'c', '1', '2', '3', ' ', '\n', // ASCII
	'©', '¥', '½', // Latin-1 supplement
	'Ύ', 'Δ', 'δ', 'Ϡ', // Greek
	'←', '↯', '↻', '⇈', // arrows
	'𐆐', '𐆔', '𐆘', '𐆚', // ancient Roman symbols
}

func randomUnicodeString(rng *rand.Rand, length int) string {
	var b strings.Builder

	for i := 0; i < length; i++ {
		b.WriteRune(fuzzChars[rng.Intn(len(fuzzChars))])
	}

	return b.String()
}

const asciiChars = " ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()[]{}<>?,./"

func randomASCIIString(rng *rand.Rand, length int) string {
	var b strings.Builder

	for i := 0; i < length; i++ {
		b.WriteByte(asciiChars[rng.Intn(len(asciiChars))])
	}

	return b.String()
}

func runeInsert(model []rune, pos int, text string) []rune {
	out := make([]rune, 0, len(model)+utf8.RuneCountInString(text))
	out = append(out, model[:pos]...)
	out = append(out, []rune(text)...)
	out = append(out, model[pos:]...)

	return out
}

func runeRemove(model []rune, pos, length int) []rune {
	out := make([]rune, 0, len(model)-length)
	out = append(out, model[:pos]...)
	out = append(out, model[pos+length:]...)

	return out
}

// TestRandomEdits drives 1000 random inserts and deletes against a flat rune
// slice as the model and verifies content and invariants after every edit.
func TestRandomEdits(t *testing.T) {
	t.Parallel()

	r := jumprope.NewSeed(123)
	model := []rune{}
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 1000; i++ {
		checkRope(t, r, string(model))

		length := len(model)

		if length == 0 || (length < 1000 && rng.Float32() < 0.5) {
			// Insert a run of 0 to 19 scalar points.
			pos := rng.Intn(length + 1)
			text := randomUnicodeString(rng, rng.Intn(20))

			r.Insert(pos, text)
			model = runeInsert(model, pos, text)
		} else {
			// Delete.
			pos := rng.Intn(length)
			dlen := min(rng.Intn(10), length-pos)

			r.Remove(pos, pos+dlen)
			model = runeRemove(model, pos, dlen)
		}
	}

	checkRope(t, r, string(model))
}

// TestRandomReplace drives random replacements against the model.
func TestRandomReplace(t *testing.T) {
	t.Parallel()

	r := jumprope.NewSeed(321)
	model := []rune{}
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		checkRope(t, r, string(model))

		length := len(model)
		pos := rng.Intn(length + 1)
		dlen := min(rng.Intn(10), length-pos)
		text := randomUnicodeString(rng, rng.Intn(20))

		r.Replace(pos, pos+dlen, text)
		model = runeInsert(runeRemove(model, pos, dlen), pos, text)
	}

	checkRope(t, r, string(model))
}
