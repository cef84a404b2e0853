package chip8

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// DefaultClockSpeed is the default execution pace in instructions per second.
const DefaultClockSpeed = 500

// CPU is the execution engine. It owns the machine state and drives the
// fetch-decode-execute cycle over it. All state mutation happens on the
// goroutine calling Step or Run; the display, keypad and timers are safe to
// access from front-end goroutines.
type CPU struct {
	logger *log.Logger

	pc         uint16
	paused     atomic.Bool
	clockHz    int
	cycleLimit int
	rng        *rand.Rand

	memory  *Memory
	stack   *Stack
	regs    *Registers
	display *Display
	keypad  *Keypad
	delay   *Timer
	sound   *Timer
}

// New returns a CPU with font-loaded memory, the program counter at
// ProgramStart and both timers running.
func New(logger *log.Logger) *CPU {
	c := &CPU{
		logger:  logger,
		pc:      ProgramStart,
		clockHz: DefaultClockSpeed,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		memory:  NewMemory(),
		stack:   NewStack(),
		regs:    NewRegisters(),
		display: NewDisplay(),
		keypad:  NewKeypad(),
		delay:   NewTimer(),
		sound:   NewTimer(),
	}
	logger.Debug("Created CPU", log.Int("clock_hz", c.clockHz))
	return c
}

// LoadROM copies a ROM image into memory at ProgramStart.
func (c *CPU) LoadROM(data []byte) error {
	if err := c.memory.WriteBuf(ProgramStart, data); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	c.logger.Debug("Loaded ROM", log.Int("size", len(data)))
	return nil
}

// SetClockSpeed sets the execution pace in instructions per second.
// Values below 1 are ignored.
func (c *CPU) SetClockSpeed(hz int) {
	if hz < 1 {
		return
	}
	c.clockHz = hz
}

// SetCycleLimit makes Run return after the given number of executed
// cycles. Zero, the default, runs without a limit.
func (c *CPU) SetCycleLimit(cycles int) {
	c.cycleLimit = cycles
}

// Display returns the framebuffer for rendering by a front-end.
func (c *CPU) Display() *Display {
	return c.display
}

// Keypad returns the keypad updated by the input front-end.
func (c *CPU) Keypad() *Keypad {
	return c.keypad
}

// DelayTimer returns the delay timer.
func (c *CPU) DelayTimer() *Timer {
	return c.delay
}

// SoundTimer returns the sound timer, non-zero while a tone should play.
func (c *CPU) SoundTimer() *Timer {
	return c.sound
}

// ProgramCounter returns the current program counter.
func (c *CPU) ProgramCounter() uint16 {
	return c.pc
}

// Paused reports whether the CPU is blocked waiting for a key press.
func (c *CPU) Paused() bool {
	return c.paused.Load()
}

// Stop terminates the timer decay goroutines. The CPU holds no other
// background resources.
func (c *CPU) Stop() {
	c.delay.Stop()
	c.sound.Stop()
}

// Run executes cycles at the configured clock speed until the context is
// cancelled, the optional cycle limit is reached or an instruction fails.
// Each iteration measures the cycle duration and sleeps for the remainder
// of the per-instruction period; overruns are not compensated.
func (c *CPU) Run(ctx context.Context) error {
	period := time.Second / time.Duration(c.clockHz)
	c.logger.Debug("Starting execution",
		log.Int("clock_hz", c.clockHz),
		log.Hex("pc", c.pc))

	executed := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		if !c.paused.Load() {
			if err := c.Step(); err != nil {
				return err
			}

			executed++
			if c.cycleLimit > 0 && executed >= c.cycleLimit {
				c.logger.Debug("Cycle limit reached", log.Int("cycles", executed))
				return nil
			}
		}
		if remaining := period - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// Step executes one fetch-decode-execute cycle. The program counter is
// advanced past the opcode before execution so that jumps and calls set
// absolute targets.
func (c *CPU) Step() error {
	address := c.pc
	opcode, err := c.fetch()
	if err != nil {
		return err
	}

	inst, err := Decode(opcode)
	if err != nil {
		return fmt.Errorf("at address %04x: %w", address, err)
	}

	c.pc += 2

	c.logger.Debug("Executing",
		log.Hex("address", address),
		log.Hex("opcode", opcode),
		log.String("asm", FormatInstruction(opcode)))

	if err := c.execute(inst); err != nil {
		return fmt.Errorf("executing opcode %04x at address %04x: %w", opcode, address, err)
	}
	return nil
}

// fetch reads the big-endian opcode word at the program counter.
func (c *CPU) fetch() (uint16, error) {
	hi, err := c.memory.Read(c.pc)
	if err != nil {
		return 0, fmt.Errorf("fetching opcode: %w", err)
	}
	lo, err := c.memory.Read(c.pc + 1)
	if err != nil {
		return 0, fmt.Errorf("fetching opcode: %w", err)
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

//nolint:cyclop,funlen // one case per instruction
func (c *CPU) execute(inst Instruction) error {
	switch inst.Op {
	case OpCls:
		c.display.Clear()

	case OpRet:
		address, err := c.stack.Pop()
		if err != nil {
			return err
		}
		c.pc = address

	case OpSys, OpJp:
		c.pc = inst.NNN

	case OpCall:
		if err := c.stack.Push(c.pc); err != nil {
			return err
		}
		c.pc = inst.NNN

	case OpSeByte:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		if vx == inst.KK {
			c.skipNext()
		}

	case OpSneByte:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		if vx != inst.KK {
			c.skipNext()
		}

	case OpSeReg:
		vx, vy, err := c.readVXY(inst)
		if err != nil {
			return err
		}
		if vx == vy {
			c.skipNext()
		}

	case OpSneReg:
		vx, vy, err := c.readVXY(inst)
		if err != nil {
			return err
		}
		if vx != vy {
			c.skipNext()
		}

	case OpLdByte:
		return c.regs.WriteV(inst.X, inst.KK)

	case OpAddByte:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		return c.regs.WriteV(inst.X, vx+inst.KK)

	case OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		return c.executeALU(inst)

	case OpLdI:
		c.regs.WriteI(inst.NNN)

	case OpJpV0:
		v0, err := c.regs.ReadV(0)
		if err != nil {
			return err
		}
		c.pc = inst.NNN + uint16(v0)

	case OpRnd:
		return c.regs.WriteV(inst.X, uint8(c.rng.Intn(256))&inst.KK)

	case OpDrw:
		return c.executeDraw(inst)

	case OpSkp, OpSknp:
		return c.executeKeySkip(inst)

	case OpReadDelay:
		return c.regs.WriteV(inst.X, c.delay.Read())

	case OpWaitKey:
		return c.executeWaitKey(inst)

	case OpSetDelay:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		c.delay.Write(vx)

	case OpSetSound:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		c.sound.Write(vx)

	case OpAddI:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		c.regs.WriteI(c.regs.ReadI() + uint16(vx))

	case OpLdFont:
		vx, err := c.regs.ReadV(inst.X)
		if err != nil {
			return err
		}
		c.regs.WriteI(uint16(vx) * FontGlyphSize)

	case OpBCD:
		return c.executeBCD(inst)

	case OpStoreV:
		return c.executeStoreRegisters(inst)

	case OpLoadV:
		return c.executeLoadRegisters(inst)
	}
	return nil
}

// executeALU executes the register-register ALU group 8XY0..8XY7, 8XYE.
// Flags derive from the operand values before the result is written; when X
// is the flag register itself the result write wins.
func (c *CPU) executeALU(inst Instruction) error {
	vx, vy, err := c.readVXY(inst)
	if err != nil {
		return err
	}

	switch inst.Op {
	case OpLdReg:
		return c.regs.WriteV(inst.X, vy)
	case OpOr:
		return c.regs.WriteV(inst.X, vx|vy)
	case OpAnd:
		return c.regs.WriteV(inst.X, vx&vy)
	case OpXor:
		return c.regs.WriteV(inst.X, vx^vy)
	case OpAddReg:
		flag := byte(0)
		if uint16(vx)+uint16(vy) > math.MaxUint8 {
			flag = 1
		}
		return c.writeVWithFlag(inst.X, vx+vy, flag)
	case OpSub:
		flag := byte(0)
		if vx >= vy {
			flag = 1
		}
		return c.writeVWithFlag(inst.X, vx-vy, flag)
	case OpShr:
		return c.writeVWithFlag(inst.X, vx>>1, vx&0x01)
	case OpSubn:
		flag := byte(0)
		if vy >= vx {
			flag = 1
		}
		return c.writeVWithFlag(inst.X, vy-vx, flag)
	case OpShl:
		return c.writeVWithFlag(inst.X, vx<<1, (vx&0x80)>>7)
	}
	return nil
}

// writeVWithFlag writes the flag to VF and then the result to V[x],
// preserving the flag-first write order of the architecture.
func (c *CPU) writeVWithFlag(x uint8, result, flag byte) error {
	if err := c.regs.WriteV(FlagRegister, flag); err != nil {
		return err
	}
	return c.regs.WriteV(x, result)
}

// executeDraw blits an N-row sprite read from memory at I onto the
// framebuffer at (V[X], V[Y]) and stores the collision flag in VF.
func (c *CPU) executeDraw(inst Instruction) error {
	vx, vy, err := c.readVXY(inst)
	if err != nil {
		return err
	}

	address := c.regs.ReadI()
	sprite, err := c.memory.ReadRange(address, uint16(inst.N))
	if err != nil {
		return fmt.Errorf("reading sprite at address %04x: %w", address, err)
	}

	flag := byte(0)
	if c.display.DrawSprite(vx, vy, sprite) {
		flag = 1
	}
	return c.regs.WriteV(FlagRegister, flag)
}

// executeKeySkip executes EX9E and EXA1, skipping the next instruction
// depending on whether key V[X] is pressed.
func (c *CPU) executeKeySkip(inst Instruction) error {
	vx, err := c.regs.ReadV(inst.X)
	if err != nil {
		return err
	}

	pressed := c.keypad.IsPressed(Key(vx))
	if (inst.Op == OpSkp && pressed) || (inst.Op == OpSknp && !pressed) {
		c.skipNext()
	}
	return nil
}

// executeWaitKey pauses the engine until a key press arrives and stores the
// key code in V[X]. No cycles execute while waiting.
func (c *CPU) executeWaitKey(inst Instruction) error {
	c.paused.Store(true)
	defer c.paused.Store(false)

	key := c.keypad.WaitKey()
	return c.regs.WriteV(inst.X, byte(key))
}

// executeBCD writes the decimal digits of V[X] to memory at I, I+1 and I+2.
func (c *CPU) executeBCD(inst Instruction) error {
	vx, err := c.regs.ReadV(inst.X)
	if err != nil {
		return err
	}

	address := c.regs.ReadI()
	digits := []byte{vx / 100, vx % 100 / 10, vx % 10}
	if err := c.memory.WriteBuf(address, digits); err != nil {
		return fmt.Errorf("writing BCD digits at address %04x: %w", address, err)
	}
	return nil
}

// executeStoreRegisters copies V[0] through V[X] inclusive into memory
// starting at I.
func (c *CPU) executeStoreRegisters(inst Instruction) error {
	values, err := c.regs.ReadVRange(0, inst.X+1)
	if err != nil {
		return err
	}

	address := c.regs.ReadI()
	if err := c.memory.WriteBuf(address, values); err != nil {
		return fmt.Errorf("storing registers at address %04x: %w", address, err)
	}
	return nil
}

// executeLoadRegisters copies memory starting at I into V[0] through V[X]
// inclusive.
func (c *CPU) executeLoadRegisters(inst Instruction) error {
	address := c.regs.ReadI()
	values, err := c.memory.ReadRange(address, uint16(inst.X)+1)
	if err != nil {
		return fmt.Errorf("loading registers from address %04x: %w", address, err)
	}
	return c.regs.WriteVRange(0, values)
}

// readVXY reads the two registers selected by the X and Y nibbles.
func (c *CPU) readVXY(inst Instruction) (byte, byte, error) {
	vx, err := c.regs.ReadV(inst.X)
	if err != nil {
		return 0, 0, err
	}
	vy, err := c.regs.ReadV(inst.Y)
	if err != nil {
		return 0, 0, err
	}
	return vx, vy, nil
}

// skipNext advances the program counter past the next instruction.
func (c *CPU) skipNext() {
	c.pc += 2
}
