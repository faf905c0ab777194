// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-jump-rope
// File:     main.go
// Date:     16.Mar.2024
//
// =============================================================================

// A minimal interactive line editor on top of the jump rope. Type to insert,
// backspace and delete to remove, the arrow keys, Home and End to move.
// Escape or Ctrl+C quits.
package main

import (
	"fmt"

	"atomicgo.dev/cursor"
	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	jumprope "github.com/Release-Candidate/go-jump-rope"
)

func main() {
	rope := jumprope.New()
	pos := 0

	fmt.Println("jump rope demo - type away, Escape or Ctrl+C quits")

	redraw(rope, pos)

	err := keyboard.Listen(func(key keys.Key) (bool, error) {
		switch key.Code {
		case keys.CtrlC, keys.Escape:
			return true, nil

		case keys.RuneKey:
			rope.Insert(pos, key.String())
			pos += len(key.Runes)

		case keys.Space:
			rope.Insert(pos, " ")
			pos++

		case keys.Backspace:
			if pos > 0 {
				rope.Remove(pos-1, pos)
				pos--
			}

		case keys.Delete:
			rope.Remove(pos, pos+1)

		case keys.Left:
			if pos > 0 {
				pos--
			}

		case keys.Right:
			if pos < rope.LenChars() {
				pos++
			}

		case keys.Home:
			pos = 0

		case keys.End:
			pos = rope.LenChars()
		}

		redraw(rope, pos)

		return false, nil
	})
	if err != nil {
		fmt.Println("keyboard error:", err)
	}

	fmt.Println()
	fmt.Printf("final text: %q\n", rope.String())
	fmt.Printf("%d scalar points, %d bytes, %d bytes of rope memory\n",
		rope.LenChars(), rope.LenBytes(), rope.MemSize())
}

// redraw repaints the edited line and puts the terminal cursor at the edit
// position.
func redraw(rope *jumprope.Rope, pos int) {
	cursor.StartOfLine()
	cursor.ClearLine()

	// Writing chunk by chunk avoids building the whole document in memory.
	iter := rope.Chunks()
	for chunk, ok := iter.Next(); ok; chunk, ok = iter.Next() {
		fmt.Print(chunk.Str)
	}

	cursor.HorizontalAbsolute(pos)
}
