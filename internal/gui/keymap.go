package gui

import (
	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/hajimehoshi/ebiten/v2"
)

// padKey couples a physical key with the pad key it maps to.
type padKey struct {
	physical ebiten.Key
	pad      chip8.Key
}

// padKeys maps the left block of a QWERTY keyboard onto the hex pad:
//
//	1 2 3 4        1 2 3 C
//	Q W E R  --->  4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
//
// The table is ordered by pad key value so polling stays deterministic
// when multiple keys are held down.
var padKeys = []padKey{
	{ebiten.KeyX, 0x0},
	{ebiten.Key1, 0x1},
	{ebiten.Key2, 0x2},
	{ebiten.Key3, 0x3},
	{ebiten.KeyQ, 0x4},
	{ebiten.KeyW, 0x5},
	{ebiten.KeyE, 0x6},
	{ebiten.KeyA, 0x7},
	{ebiten.KeyS, 0x8},
	{ebiten.KeyD, 0x9},
	{ebiten.KeyZ, 0xA},
	{ebiten.KeyC, 0xB},
	{ebiten.Key4, 0xC},
	{ebiten.KeyR, 0xD},
	{ebiten.KeyF, 0xE},
	{ebiten.KeyV, 0xF},
}

// pressedPadKey returns the lowest pressed pad key, or KeyNone when no
// mapped key is down.
func pressedPadKey() chip8.Key {
	for _, mapping := range padKeys {
		if ebiten.IsKeyPressed(mapping.physical) {
			return mapping.pad
		}
	}
	return chip8.KeyNone
}

// bytePadKeys maps terminal input bytes onto the hex pad, mirroring the
// window layout.
var bytePadKeys = map[byte]chip8.Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// terminalPadKey maps a raw input byte to a pad key, ignoring case.
func terminalPadKey(b byte) (chip8.Key, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	key, ok := bytePadKeys[b]
	return key, ok
}
