package chip8

import (
	"fmt"
	"math"
)

// Memory layout constants.
const (
	// MemorySize is the total amount of addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the address where CHIP-8 programs begin execution.
	// ROM images are loaded here; the area below is reserved for the
	// interpreter and holds the font sprites.
	ProgramStart = 0x200

	// MaxROMSize is the largest ROM image that fits into the program area.
	MaxROMSize = MemorySize - ProgramStart

	// FontGlyphSize is the size of one font sprite in bytes. The glyphs for
	// the hexadecimal digits 0-F are stored back to back from address 0.
	FontGlyphSize = 5
)

// fontSprites contains the built-in 5-byte sprites for the digits 0-F.
var fontSprites = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat 4KB byte store of the machine. All accesses are bounds
// checked; a failed access is fatal to the running program.
type Memory struct {
	data [MemorySize]byte
}

// NewMemory returns zeroed memory with the font sprites loaded at address 0.
func NewMemory() *Memory {
	m := &Memory{}
	copy(m.data[:], fontSprites[:])
	return m
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if address >= MemorySize {
		return 0, fmt.Errorf("reading memory at address %04x: %w", address, ErrOutOfBounds)
	}
	return m.data[address], nil
}

// ReadRange returns a copy of length bytes starting at the given address.
func (m *Memory) ReadRange(address, length uint16) ([]byte, error) {
	end := int(address) + int(length)
	if end > math.MaxUint16 {
		return nil, fmt.Errorf("reading %d bytes at address %04x: %w", length, address, ErrInvalidRange)
	}
	if end > MemorySize {
		return nil, fmt.Errorf("reading %d bytes at address %04x: %w", length, address, ErrOutOfBounds)
	}

	buf := make([]byte, length)
	copy(buf, m.data[address:end])
	return buf, nil
}

// Write stores a byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if address >= MemorySize {
		return fmt.Errorf("writing memory at address %04x: %w", address, ErrOutOfBounds)
	}
	m.data[address] = value
	return nil
}

// WriteBuf stores the buffer starting at the given address.
func (m *Memory) WriteBuf(address uint16, data []byte) error {
	end := int(address) + len(data)
	if end > MemorySize {
		return fmt.Errorf("writing %d bytes at address %04x: %w", len(data), address, ErrOutOfBounds)
	}
	copy(m.data[address:end], data)
	return nil
}
