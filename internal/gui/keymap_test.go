package gui

import (
	"testing"

	"github.com/Marvin-Dziedzina/chip-8-emulator/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestPadKeys_CoverWholePad(t *testing.T) {
	seenPad := map[chip8.Key]bool{}
	seenPhysical := map[string]bool{}

	for _, mapping := range padKeys {
		assert.False(t, seenPad[mapping.pad], "pad key mapped twice")
		assert.False(t, seenPhysical[mapping.physical.String()], "physical key mapped twice")

		seenPad[mapping.pad] = true
		seenPhysical[mapping.physical.String()] = true
	}

	assert.Len(t, padKeys, 16)
	for key := range chip8.Key(16) {
		assert.True(t, seenPad[key], "pad key not mapped")
	}
}

func TestTerminalPadKey(t *testing.T) {
	tests := []struct {
		name     string
		input    byte
		expected chip8.Key
		mapped   bool
	}{
		{"digit row", '1', 0x1, true},
		{"top letter row", 'q', 0x4, true},
		{"home row", 's', 0x8, true},
		{"bottom row", 'v', 0xF, true},
		{"uppercase maps like lowercase", 'Q', 0x4, true},
		{"zero key", 'x', 0x0, true},
		{"unmapped letter", 'p', 0, false},
		{"control byte", 0x03, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := terminalPadKey(tt.input)

			assert.Equal(t, tt.mapped, ok)
			if tt.mapped {
				assert.Equal(t, tt.expected, key)
			}
		})
	}
}

func TestTerminalPadKey_CoversWholePad(t *testing.T) {
	seen := map[chip8.Key]bool{}
	for _, key := range bytePadKeys {
		seen[key] = true
	}

	assert.Len(t, bytePadKeys, 16)
	for key := range chip8.Key(16) {
		assert.True(t, seen[key], "pad key not reachable from the terminal")
	}
}
