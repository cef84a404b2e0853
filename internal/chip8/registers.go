package chip8

import (
	"fmt"
	"math"
)

const (
	// NumRegisters is the number of general-purpose V registers.
	NumRegisters = 16

	// FlagRegister is the index of VF, overwritten by arithmetic, shift and
	// draw instructions to report carry, borrow and collision flags.
	FlagRegister = 0xF
)

// Registers holds the 16 general-purpose byte registers V0-VF and the
// 16-bit index register I. The program counter lives in the CPU; registers
// are mutated only by instruction dispatch.
type Registers struct {
	v [NumRegisters]byte
	i uint16
}

// NewRegisters returns a zeroed register file.
func NewRegisters() *Registers {
	return &Registers{}
}

// ReadV returns the value of register V[index].
func (r *Registers) ReadV(index uint8) (byte, error) {
	if index >= NumRegisters {
		return 0, fmt.Errorf("reading register V%X: %w", index, ErrOutOfBounds)
	}
	return r.v[index], nil
}

// WriteV sets register V[index] to the given value.
func (r *Registers) WriteV(index uint8, value byte) error {
	if index >= NumRegisters {
		return fmt.Errorf("writing register V%X: %w", index, ErrOutOfBounds)
	}
	r.v[index] = value
	return nil
}

// ReadVRange returns a copy of count register values starting at V[start].
// It backs the block register store instruction.
func (r *Registers) ReadVRange(start, count uint8) ([]byte, error) {
	end := int(start) + int(count)
	if end > math.MaxUint8 {
		return nil, fmt.Errorf("reading %d registers from V%X: %w", count, start, ErrInvalidRange)
	}
	if end > NumRegisters {
		return nil, fmt.Errorf("reading %d registers from V%X: %w", count, start, ErrOutOfBounds)
	}

	buf := make([]byte, count)
	copy(buf, r.v[start:end])
	return buf, nil
}

// WriteVRange stores the buffer into consecutive registers starting at V[start].
// It backs the block register load instruction.
func (r *Registers) WriteVRange(start uint8, data []byte) error {
	end := int(start) + len(data)
	if end > NumRegisters {
		return fmt.Errorf("writing %d registers from V%X: %w", len(data), start, ErrOutOfBounds)
	}
	copy(r.v[start:end], data)
	return nil
}

// ReadI returns the value of the index register.
func (r *Registers) ReadI() uint16 {
	return r.i
}

// WriteI sets the index register. The full 16-bit range is accepted even
// though only 12 bits are architecturally meaningful; out-of-range values
// fault on the next memory access that uses them.
func (r *Registers) WriteI(value uint16) {
	r.i = value
}
