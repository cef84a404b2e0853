package chip8

import "fmt"

// StackDepth is the number of return addresses the call stack can hold.
const StackDepth = 16

// Stack is the fixed-depth call stack holding return addresses for
// subroutine calls. Overflow and underflow are terminal conditions for the
// running program, there is no wraparound.
type Stack struct {
	sp    uint8
	slots [StackDepth]uint16
}

// NewStack returns an empty call stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push stores a return address on top of the stack.
func (s *Stack) Push(address uint16) error {
	if s.sp >= StackDepth {
		return fmt.Errorf("pushing address %04x: %w", address, ErrStackOverflow)
	}
	s.slots[s.sp] = address
	s.sp++
	return nil
}

// Pop removes and returns the most recently pushed address.
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.slots[s.sp], nil
}
