// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-jump-rope
// File:     skip-list.go
// Date:     16.Mar.2024
//
// =============================================================================

package jumprope

import "math/rand"

const (
	// nodeStrSize is the byte capacity of a leaf's gap buffer. Sized so a
	// leaf's payload fits one or two cache lines next to its forward list.
	nodeStrSize = 392

	// maxHeight is the tallest a leaf can get. The skip list stays efficient
	// up to about 2^maxHeight leaves.
	maxHeight = 20

	// bias is the likelihood (out of 256) that a leaf's height is n+1 instead
	// of n.
	bias = 65
)

// skipEntry is one forward edge of the skip list: the next node at this level
// and the number of unicode scalar points between the start of the owning
// node and the start of that next node.
type skipEntry struct {
	node      *node
	skipChars int
}

// node is one leaf of the skip list: a gap buffer holding a run of text and
// one forward edge per level up to the node's height.
//
// The head sentinel of a rope is a node too. It never stores text and its
// height is always greater than the height of every leaf, up to maxHeight+1.
type node struct {
	str    gapBuffer
	height int
	nexts  []skipEntry
}

// newNode returns a leaf of random height holding the given content. The
// content must fit into a single gap buffer.
func newNode(rng *rand.Rand, content string) *node {
	n := &node{
		str:    newGapBuffer(),
		height: randomHeight(rng),
	}
	n.nexts = make([]skipEntry, n.height)

	if !n.str.tryInsert(0, content) {
		panic("jump rope: leaf content exceeds the node capacity")
	}

	return n
}

// randomHeight draws a height in [1, maxHeight] from the given source. Each
// level beyond the first is reached with probability bias/256.
func randomHeight(rng *rand.Rand) int {
	height := 1

	for height < maxHeight && rng.Intn(256) < bias {
		height++
	}

	return height
}

// next returns the following node at level 0, nil at the end of the list.
func (n *node) next() *node {
	return n.nexts[0].node
}

// numChars returns the number of unicode scalar points stored in this node.
// The level 0 edge always skips exactly this node's content.
func (n *node) numChars() int {
	return n.nexts[0].skipChars
}

// cursor records the path of a seek through the skip list: for every level
// the last node visited at or before the target and the scalar point offset
// from that node's start to the target. The entry at level 0 identifies the
// leaf holding the target.
//
// A cursor borrows nodes of its rope. It stays valid across mutations only if
// those run through the rope's own mutation paths, which refresh it.
type cursor [maxHeight + 1]skipEntry

// updateOffsets adds `by` scalar points to the forward edge leaving the
// recorded node at every level below `height`. Called when content grows or
// shrinks at the cursor without changing the list structure.
func (c *cursor) updateOffsets(height, by int) {
	for i := 0; i < height; i++ {
		c[i].node.nexts[i].skipChars += by
	}
}

// moveWithinNode advances the cursor itself by `by` scalar points at every
// level below `height`, after an insertion in front of it.
func (c *cursor) moveWithinNode(height, by int) {
	for i := 0; i < height; i++ {
		c[i].skipChars += by
	}
}

// here returns the leaf the cursor points into.
func (c *cursor) here() *node {
	return c[0].node
}

// localCharPos returns the scalar point offset of the cursor inside its leaf.
func (c *cursor) localCharPos() int {
	return c[0].skipChars
}

// globalCharPos returns the scalar point offset of the cursor in the whole
// rope, read from the top level of a head of the given height.
func (c *cursor) globalCharPos(headHeight int) int {
	return c[headHeight-1].skipChars
}
