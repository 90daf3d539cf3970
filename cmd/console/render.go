package main

import (
	"strings"

	"gochip8/pkg/cpu"
)

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// halfBlocks is indexed by top<<1 | bottom.
var halfBlocks = [4]rune{' ', '▄', '▀', '█'}

// render draws the display two pixel rows per text line.
func render(d *cpu.Display) string {
	var b strings.Builder
	b.Grow(cpu.ScreenHeight / 2 * (cpu.ScreenWidth*3 + 1))
	for y := 0; y < cpu.ScreenHeight; y += 2 {
		for x := 0; x < cpu.ScreenWidth; x++ {
			idx := 0
			if d.Pixel(x, y) {
				idx |= 2
			}
			if d.Pixel(x, y+1) {
				idx |= 1
			}
			b.WriteRune(halfBlocks[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// keypad maps typed characters onto hex keypad indexes, using the
// 1234/QWER/ASDF/ZXCV block of the keyboard.
var keypad = map[byte]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// holdFrames is how long a typed key stays held. Terminals report key
// presses but never releases.
const holdFrames = 6

// heldKeys ages typed keys out after holdFrames frames.
type heldKeys struct {
	frames [cpu.NumKeys]int
}

// press marks the key for ch as held and reports whether ch is mapped.
func (h *heldKeys) press(ch byte) bool {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	key, ok := keypad[ch]
	if !ok {
		return false
	}
	h.frames[key] = holdFrames
	return true
}

// snapshot returns the keys held this frame and ages every key by one.
func (h *heldKeys) snapshot() cpu.KeySet {
	var set cpu.KeySet
	for k, n := range h.frames {
		if n > 0 {
			set = set.With(byte(k))
			h.frames[k] = n - 1
		}
	}
	return set
}
