package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStack_PushPop(t *testing.T) {
	s := NewStack()

	assert.NoError(t, s.Push(0x200))
	assert.NoError(t, s.Push(0x300))

	address, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x300), address)

	address, err = s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200), address)
}

func TestStack_Overflow(t *testing.T) {
	s := NewStack()

	for i := range uint16(StackDepth) {
		assert.NoError(t, s.Push(0x200+i*2))
	}

	err := s.Push(0x400)
	assert.True(t, errors.Is(err, ErrStackOverflow))

	// the full stack still pops in reverse push order
	address, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200+(StackDepth-1)*2), address)
}

func TestStack_Underflow(t *testing.T) {
	s := NewStack()

	_, err := s.Pop()
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	assert.NoError(t, s.Push(0x250))
	_, err = s.Pop()
	assert.NoError(t, err)

	_, err = s.Pop()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}
