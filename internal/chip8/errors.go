package chip8

import "errors"

// Core error conditions. All of them indicate a malformed ROM or a violated
// machine invariant and are fatal to the running program; the CPU halts and
// surfaces them instead of attempting recovery.
var (
	// ErrOutOfBounds indicates an address or register index outside the valid range.
	ErrOutOfBounds = errors.New("address out of bounds")

	// ErrInvalidRange indicates a ranged access whose end overflows the address width.
	ErrInvalidRange = errors.New("invalid address range")

	// ErrStackOverflow indicates a push onto a full call stack.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow indicates a pop from an empty call stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrInvalidOpcode indicates a fetched word that matches no defined instruction.
	ErrInvalidOpcode = errors.New("invalid opcode")
)
