package chip8

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestCPU(t *testing.T) *CPU {
	t.Helper()

	c := New(log.NewTestLogger(t))
	t.Cleanup(c.Stop)
	return c
}

// loadProgram assembles the opcode words into a big-endian ROM image and
// loads it at ProgramStart.
func loadProgram(t *testing.T, c *CPU, words ...uint16) {
	t.Helper()

	rom := make([]byte, 0, len(words)*2)
	for _, word := range words {
		rom = append(rom, byte(word>>8), byte(word))
	}
	assert.NoError(t, c.LoadROM(rom))
}

func step(t *testing.T, c *CPU, count int) {
	t.Helper()

	for range count {
		assert.NoError(t, c.Step())
	}
}

func readV(t *testing.T, c *CPU, index uint8) byte {
	t.Helper()

	value, err := c.regs.ReadV(index)
	assert.NoError(t, err)
	return value
}

func TestCPU_New(t *testing.T) {
	c := newTestCPU(t)

	assert.Equal(t, uint16(ProgramStart), c.ProgramCounter())
	assert.False(t, c.Paused())

	// font sprites are preloaded below the program area
	value, err := c.memory.Read(0x000)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xF0), value)
}

func TestCPU_LoadROM(t *testing.T) {
	c := newTestCPU(t)

	assert.NoError(t, c.LoadROM([]byte{0x12, 0x00}))

	value, err := c.memory.Read(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x12), value)

	// a ROM may fill the whole program area but not exceed it
	assert.NoError(t, c.LoadROM(make([]byte, MaxROMSize)))

	err = c.LoadROM(make([]byte, MaxROMSize+1))
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestCPU_Step_AdvancesProgramCounter(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x6005) // ld V0, $05

	step(t, c, 1)
	assert.Equal(t, uint16(ProgramStart+2), c.ProgramCounter())
}

func TestCPU_Jump(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x1300) // jp $300

	step(t, c, 1)
	assert.Equal(t, uint16(0x300), c.ProgramCounter())
}

func TestCPU_CallReturn(t *testing.T) {
	c := newTestCPU(t)
	// 0x200: call $206
	// 0x206: ret
	loadProgram(t, c, 0x2206, 0x0000, 0x0000, 0x00EE)

	step(t, c, 1)
	assert.Equal(t, uint16(0x206), c.ProgramCounter())

	step(t, c, 1)
	// ret resumes after the call instruction
	assert.Equal(t, uint16(0x202), c.ProgramCounter())
}

func TestCPU_CallDepth(t *testing.T) {
	c := newTestCPU(t)

	// a chain of 17 calls, each targeting the following instruction
	words := make([]uint16, 17)
	for i := range words {
		target := uint16(ProgramStart + 2 + i*2)
		words[i] = 0x2000 | target
	}
	loadProgram(t, c, words...)

	// sixteen nested calls fill the stack
	step(t, c, 16)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestCPU_ReturnWithoutCall(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x00EE)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestCPU_LoadAddImmediate(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x6A05, 0x7A0B) // ld VA, $05 / add VA, $0B

	step(t, c, 2)
	assert.Equal(t, byte(0x10), readV(t, c, 0xA))
}

func TestCPU_AddImmediate_NoFlagChange(t *testing.T) {
	c := newTestCPU(t)
	// add VA, $10 wraps without touching VF
	loadProgram(t, c, 0x6AF8, 0x6F05, 0x7A10)

	step(t, c, 3)
	assert.Equal(t, byte(0x08), readV(t, c, 0xA))
	assert.Equal(t, byte(0x05), readV(t, c, 0xF))
}

//nolint:funlen // table covers the whole ALU group
func TestCPU_ALU(t *testing.T) {
	tests := []struct {
		name     string
		vx       byte
		vy       byte
		opcode   uint16
		expected byte
		flag     byte
	}{
		{"load register", 0x00, 0x42, 0x8010, 0x42, 0x00},
		{"or", 0xF0, 0x0F, 0x8011, 0xFF, 0x00},
		{"and", 0xF6, 0x0F, 0x8012, 0x06, 0x00},
		{"xor", 0xFF, 0x0F, 0x8013, 0xF0, 0x00},
		{"add without carry", 0x10, 0x20, 0x8014, 0x30, 0x00},
		{"add with carry", 0xC8, 0x64, 0x8014, 0x2C, 0x01},
		{"add exactly max", 0xFF, 0x00, 0x8014, 0xFF, 0x00},
		{"sub without borrow", 0x30, 0x10, 0x8015, 0x20, 0x01},
		{"sub equal operands", 0x30, 0x30, 0x8015, 0x00, 0x01},
		{"sub with borrow", 0x10, 0x30, 0x8015, 0xE0, 0x00},
		{"shift right even", 0x04, 0x00, 0x8016, 0x02, 0x00},
		{"shift right odd", 0x05, 0x00, 0x8016, 0x02, 0x01},
		{"subn without borrow", 0x10, 0x30, 0x8017, 0x20, 0x01},
		{"subn with borrow", 0x30, 0x10, 0x8017, 0xE0, 0x00},
		{"shift left low", 0x41, 0x00, 0x801E, 0x82, 0x00},
		{"shift left high bit", 0x81, 0x00, 0x801E, 0x02, 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCPU(t)
			assert.NoError(t, c.regs.WriteV(0x0, tt.vx))
			assert.NoError(t, c.regs.WriteV(0x1, tt.vy))
			loadProgram(t, c, tt.opcode)

			step(t, c, 1)
			assert.Equal(t, tt.expected, readV(t, c, 0x0))
			assert.Equal(t, tt.flag, readV(t, c, 0xF))
		})
	}
}

func TestCPU_SkipByte(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		value    byte
		expected uint16
	}{
		{"se taken", 0x3042, 0x42, ProgramStart + 4},
		{"se not taken", 0x3042, 0x41, ProgramStart + 2},
		{"sne taken", 0x4042, 0x41, ProgramStart + 4},
		{"sne not taken", 0x4042, 0x42, ProgramStart + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCPU(t)
			assert.NoError(t, c.regs.WriteV(0x0, tt.value))
			loadProgram(t, c, tt.opcode)

			step(t, c, 1)
			assert.Equal(t, tt.expected, c.ProgramCounter())
		})
	}
}

func TestCPU_SkipRegister(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		vx       byte
		vy       byte
		expected uint16
	}{
		{"se taken", 0x5010, 0x42, 0x42, ProgramStart + 4},
		{"se not taken", 0x5010, 0x42, 0x41, ProgramStart + 2},
		{"sne taken", 0x9010, 0x42, 0x41, ProgramStart + 4},
		{"sne not taken", 0x9010, 0x42, 0x42, ProgramStart + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCPU(t)
			assert.NoError(t, c.regs.WriteV(0x0, tt.vx))
			assert.NoError(t, c.regs.WriteV(0x1, tt.vy))
			loadProgram(t, c, tt.opcode)

			step(t, c, 1)
			assert.Equal(t, tt.expected, c.ProgramCounter())
		})
	}
}

func TestCPU_LoadIndex(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0xA123)

	step(t, c, 1)
	assert.Equal(t, uint16(0x123), c.regs.ReadI())
}

func TestCPU_JumpIndexed(t *testing.T) {
	c := newTestCPU(t)
	assert.NoError(t, c.regs.WriteV(0x0, 0x10))
	loadProgram(t, c, 0xB300) // jp V0, $300

	step(t, c, 1)
	assert.Equal(t, uint16(0x310), c.ProgramCounter())
}

func TestCPU_Random(t *testing.T) {
	c := newTestCPU(t)
	// rnd V0, $0F / rnd V1, $00
	loadProgram(t, c, 0xC00F, 0xC100)

	step(t, c, 2)
	assert.True(t, readV(t, c, 0x0) <= 0x0F)
	assert.Equal(t, byte(0), readV(t, c, 0x1))
}

func TestCPU_Draw(t *testing.T) {
	c := newTestCPU(t)
	// draw a one-row sprite at (60, 0), wrapping to the left edge
	// 0x200: ld V0, $3C
	// 0x202: ld I, $208
	// 0x204: drw V0, V1, 1
	// 0x208: sprite data FF
	loadProgram(t, c, 0x603C, 0xA208, 0xD011, 0x0000, 0xFF00)

	step(t, c, 3)
	assert.Equal(t, byte(0), readV(t, c, 0xF))

	snapshot := c.Display().Snapshot()
	for _, x := range []int{60, 61, 62, 63, 0, 1, 2, 3} {
		assert.Equal(t, byte(1), pixelAt(snapshot, x, 0))
	}
	assert.Equal(t, byte(0), pixelAt(snapshot, 4, 0))
}

func TestCPU_Draw_Collision(t *testing.T) {
	c := newTestCPU(t)
	// drawing the same sprite twice erases it and raises the collision flag
	loadProgram(t, c, 0xA206, 0xD011, 0xD011, 0xFF00)

	step(t, c, 2)
	assert.Equal(t, byte(0), readV(t, c, 0xF))

	step(t, c, 1)
	assert.Equal(t, byte(1), readV(t, c, 0xF))

	snapshot := c.Display().Snapshot()
	for x := range 8 {
		assert.Equal(t, byte(0), pixelAt(snapshot, x, 0))
	}
}

func TestCPU_Draw_SpriteOutOfBounds(t *testing.T) {
	c := newTestCPU(t)
	// ld I, $FFF / drw V0, V1, 2 reads past the end of memory
	loadProgram(t, c, 0xAFFF, 0xD012)

	step(t, c, 1)
	err := c.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestCPU_ClearScreen(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0xA206, 0xD011, 0x00E0, 0xFF00)

	step(t, c, 3)
	for _, pixel := range c.Display().Snapshot() {
		assert.Equal(t, byte(0), pixel)
	}
}

func TestCPU_DelayTimer(t *testing.T) {
	c := newTestCPU(t)
	// ld V0, $3C / ld DT, V0 / ld V1, DT
	loadProgram(t, c, 0x603C, 0xF015, 0xF107)

	step(t, c, 3)
	value := readV(t, c, 0x1)
	assert.True(t, value > 0)
	assert.True(t, value <= 0x3C)
}

func TestCPU_SoundTimer(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x6020, 0xF018) // ld V0, $20 / ld ST, V0

	step(t, c, 2)
	value := c.SoundTimer().Read()
	assert.True(t, value > 0)
	assert.True(t, value <= 0x20)
}

func TestCPU_AddIndex(t *testing.T) {
	c := newTestCPU(t)
	assert.NoError(t, c.regs.WriteV(0x0, 0x10))
	loadProgram(t, c, 0xA100, 0xF01E) // ld I, $100 / add I, V0

	step(t, c, 2)
	assert.Equal(t, uint16(0x110), c.regs.ReadI())
}

func TestCPU_FontAddress(t *testing.T) {
	c := newTestCPU(t)
	// ld V0, $0F / ld F, V0 points I at the glyph for F
	loadProgram(t, c, 0x600F, 0xF029)

	step(t, c, 2)
	assert.Equal(t, uint16(0xF*FontGlyphSize), c.regs.ReadI())

	sprite, err := c.memory.ReadRange(c.regs.ReadI(), FontGlyphSize)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xF0, 0x80, 0xF0, 0x80, 0x80}, sprite)
}

func TestCPU_BinaryCodedDecimal(t *testing.T) {
	c := newTestCPU(t)
	// ld V0, $EA (234) / ld I, $300 / ld B, V0
	loadProgram(t, c, 0x60EA, 0xA300, 0xF033)

	step(t, c, 3)
	digits, err := c.memory.ReadRange(0x300, 3)
	assert.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, digits)
}

func TestCPU_StoreLoadRegisters(t *testing.T) {
	c := newTestCPU(t)
	for index := range uint8(3) {
		assert.NoError(t, c.regs.WriteV(index, 0x10+index))
	}
	// ld I, $300 / ld [I], V2 stores V0 through V2 inclusive
	loadProgram(t, c, 0xA300, 0xF255)

	step(t, c, 2)
	stored, err := c.memory.ReadRange(0x300, 3)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x11, 0x12}, stored)

	// V3 was not part of the store
	value, err := c.memory.Read(0x303)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), value)

	// overwrite the registers and load them back
	for index := range uint8(3) {
		assert.NoError(t, c.regs.WriteV(index, 0xFF))
	}
	loadProgram(t, c, 0xA300, 0xF265)
	c.pc = ProgramStart

	step(t, c, 2)
	assert.Equal(t, byte(0x10), readV(t, c, 0x0))
	assert.Equal(t, byte(0x11), readV(t, c, 0x1))
	assert.Equal(t, byte(0x12), readV(t, c, 0x2))
}

func TestCPU_StoreAllRegisters(t *testing.T) {
	c := newTestCPU(t)
	for index := range uint8(NumRegisters) {
		assert.NoError(t, c.regs.WriteV(index, index))
	}
	// storing all sixteen registers is within range
	loadProgram(t, c, 0xA300, 0xFF55)

	step(t, c, 2)
	stored, err := c.memory.ReadRange(0x300, NumRegisters)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, stored)
}

func TestCPU_KeySkip(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		pressed  bool
		expected uint16
	}{
		{"skp with key down", 0xE09E, true, ProgramStart + 4},
		{"skp without key", 0xE09E, false, ProgramStart + 2},
		{"sknp with key down", 0xE0A1, true, ProgramStart + 2},
		{"sknp without key", 0xE0A1, false, ProgramStart + 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCPU(t)
			assert.NoError(t, c.regs.WriteV(0x0, 0x5))
			if tt.pressed {
				c.Keypad().SetKey(0x5)
			}
			loadProgram(t, c, tt.opcode)

			step(t, c, 1)
			assert.Equal(t, tt.expected, c.ProgramCounter())
		})
	}
}

func TestCPU_WaitKey(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0xF00A) // ld V0, K

	done := make(chan error, 1)
	go func() {
		done <- c.Step()
	}()

	// the engine reports itself paused while blocked on the keypad
	deadline := time.Now().Add(2 * time.Second)
	for !c.Paused() {
		if time.Now().After(deadline) {
			t.Fatal("engine never paused for key wait")
		}
		time.Sleep(time.Millisecond)
	}

	c.Keypad().SetKey(0xB)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for key press")
	}

	assert.Equal(t, byte(0xB), readV(t, c, 0x0))
	assert.False(t, c.Paused())
}

func TestCPU_SystemJump(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x0300) // legacy machine code call, treated as a jump

	step(t, c, 1)
	assert.Equal(t, uint16(0x300), c.ProgramCounter())
}

func TestCPU_InvalidOpcode(t *testing.T) {
	c := newTestCPU(t)
	loadProgram(t, c, 0x00F1)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrInvalidOpcode))
	assert.ErrorContains(t, err, "00f1")

	// the failed cycle leaves the program counter at the faulting opcode
	assert.Equal(t, uint16(ProgramStart), c.ProgramCounter())
}

func TestCPU_SkipRegisterLowNibble(t *testing.T) {
	c := newTestCPU(t)
	// the 5XY_ compare matches on the top nibble alone
	loadProgram(t, c, 0x5001)

	step(t, c, 1)
	assert.Equal(t, uint16(ProgramStart+4), c.ProgramCounter())
}

func TestCPU_Fetch_OutOfBounds(t *testing.T) {
	c := newTestCPU(t)
	// jumping to the last byte of memory makes the next fetch read past it
	loadProgram(t, c, 0x1FFF)

	step(t, c, 1)
	err := c.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.ErrorContains(t, err, "fetching opcode")
}

func TestCPU_Run_ContextCancelled(t *testing.T) {
	c := newTestCPU(t)
	c.SetClockSpeed(10000)
	loadProgram(t, c, 0x1200) // jp $200, loop forever

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on context cancellation")
	}
}

func TestCPU_Run_HaltsOnError(t *testing.T) {
	c := newTestCPU(t)
	c.SetClockSpeed(10000)
	loadProgram(t, c, 0x6005, 0x00F1)

	err := c.Run(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidOpcode))

	// state before the faulting opcode is preserved
	assert.Equal(t, byte(0x05), readV(t, c, 0x0))
}

func TestCPU_Run_CycleLimit(t *testing.T) {
	c := newTestCPU(t)
	c.SetClockSpeed(10000)
	c.SetCycleLimit(25)
	loadProgram(t, c, 0x1200) // jump to self

	err := c.Run(context.Background())
	assert.NoError(t, err)
}

func TestCPU_SetClockSpeed(t *testing.T) {
	c := newTestCPU(t)

	assert.Equal(t, DefaultClockSpeed, c.clockHz)

	c.SetClockSpeed(700)
	assert.Equal(t, 700, c.clockHz)

	c.SetClockSpeed(0)
	assert.Equal(t, 700, c.clockHz)
}
