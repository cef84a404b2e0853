package chip8

import "fmt"

// Op enumerates the decoded instruction behaviors.
type Op uint8

const (
	OpCls       Op = iota // 00E0: clear the framebuffer
	OpRet                 // 00EE: return from subroutine
	OpSys                 // 0NNN: legacy machine code call, treated as jump
	OpJp                  // 1NNN: jump to NNN
	OpCall                // 2NNN: call subroutine at NNN
	OpSeByte              // 3XKK: skip next if V[X] == KK
	OpSneByte             // 4XKK: skip next if V[X] != KK
	OpSeReg               // 5XY_: skip next if V[X] == V[Y]
	OpLdByte              // 6XKK: V[X] = KK
	OpAddByte             // 7XKK: V[X] += KK, no flag change
	OpLdReg               // 8XY0: V[X] = V[Y]
	OpOr                  // 8XY1: V[X] |= V[Y]
	OpAnd                 // 8XY2: V[X] &= V[Y]
	OpXor                 // 8XY3: V[X] ^= V[Y]
	OpAddReg              // 8XY4: V[X] += V[Y], VF = carry
	OpSub                 // 8XY5: V[X] -= V[Y], VF = no borrow
	OpShr                 // 8XY6: VF = V[X] & 1, V[X] >>= 1
	OpSubn                // 8XY7: V[X] = V[Y] - V[X], VF = no borrow
	OpShl                 // 8XYE: VF = bit 7 of V[X], V[X] <<= 1
	OpSneReg              // 9XY_: skip next if V[X] != V[Y]
	OpLdI                 // ANNN: I = NNN
	OpJpV0                // BNNN: jump to NNN + V[0]
	OpRnd                 // CXKK: V[X] = random byte & KK
	OpDrw                 // DXYN: draw N-row sprite from memory[I] at (V[X], V[Y])
	OpSkp                 // EX9E: skip next if key V[X] pressed
	OpSknp                // EXA1: skip next if key V[X] not pressed
	OpReadDelay           // FX07: V[X] = delay timer
	OpWaitKey             // FX0A: block until key press, store key in V[X]
	OpSetDelay            // FX15: delay timer = V[X]
	OpSetSound            // FX18: sound timer = V[X]
	OpAddI                // FX1E: I += V[X], wrapping
	OpLdFont              // FX29: I = font glyph address of digit V[X]
	OpBCD                 // FX33: memory[I..I+2] = BCD digits of V[X]
	OpStoreV              // FX55: memory[I..] = V[0..=X]
	OpLoadV               // FX65: V[0..=X] = memory[I..]
)

// Instruction is one decoded opcode with its operand fields extracted.
// Which fields are meaningful depends on Op.
type Instruction struct {
	Op     Op
	Opcode uint16 // the raw opcode word
	X      uint8  // register index from the second nibble
	Y      uint8  // register index from the third nibble
	N      uint8  // low nibble
	KK     uint8  // low byte immediate
	NNN    uint16 // 12-bit address
}

// Decode turns a big-endian opcode word into an Instruction value. It
// returns ErrInvalidOpcode for words that match no defined instruction;
// decoding performs no machine state access so it can be tested separately
// from execution.
func Decode(opcode uint16) (Instruction, error) {
	inst := Instruction{
		Opcode: opcode,
		X:      uint8(extractRegisterX(opcode)),
		Y:      uint8(extractRegisterY(opcode)),
		N:      uint8(opcode & 0x000F),
		KK:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}

	switch opcode & 0xF000 {
	case 0x0000:
		switch {
		case opcode == 0x00E0:
			inst.Op = OpCls
		case opcode == 0x00EE:
			inst.Op = OpRet
		case opcode&0xFF00 == 0x0000:
			// Unknown system instruction in the 0x00 page.
			return Instruction{}, invalidOpcode(opcode)
		default:
			inst.Op = OpSys
		}
	case 0x1000:
		inst.Op = OpJp
	case 0x2000:
		inst.Op = OpCall
	case 0x3000:
		inst.Op = OpSeByte
	case 0x4000:
		inst.Op = OpSneByte
	case 0x5000:
		inst.Op = OpSeReg
	case 0x6000:
		inst.Op = OpLdByte
	case 0x7000:
		inst.Op = OpAddByte
	case 0x8000:
		op, ok := decodeALU(opcode)
		if !ok {
			return Instruction{}, invalidOpcode(opcode)
		}
		inst.Op = op
	case 0x9000:
		inst.Op = OpSneReg
	case 0xA000:
		inst.Op = OpLdI
	case 0xB000:
		inst.Op = OpJpV0
	case 0xC000:
		inst.Op = OpRnd
	case 0xD000:
		inst.Op = OpDrw
	case 0xE000:
		switch opcode & 0x00FF {
		case 0x9E:
			inst.Op = OpSkp
		case 0xA1:
			inst.Op = OpSknp
		default:
			return Instruction{}, invalidOpcode(opcode)
		}
	case 0xF000:
		op, ok := decodeMisc(opcode)
		if !ok {
			return Instruction{}, invalidOpcode(opcode)
		}
		inst.Op = op
	}

	return inst, nil
}

// decodeALU maps the low nibble of a 8XY_ opcode to its ALU operation.
func decodeALU(opcode uint16) (Op, bool) {
	switch opcode & 0x000F {
	case 0x0:
		return OpLdReg, true
	case 0x1:
		return OpOr, true
	case 0x2:
		return OpAnd, true
	case 0x3:
		return OpXor, true
	case 0x4:
		return OpAddReg, true
	case 0x5:
		return OpSub, true
	case 0x6:
		return OpShr, true
	case 0x7:
		return OpSubn, true
	case 0xE:
		return OpShl, true
	default:
		return 0, false
	}
}

// decodeMisc maps the low byte of a FX__ opcode to its operation.
func decodeMisc(opcode uint16) (Op, bool) {
	switch opcode & 0x00FF {
	case 0x07:
		return OpReadDelay, true
	case 0x0A:
		return OpWaitKey, true
	case 0x15:
		return OpSetDelay, true
	case 0x18:
		return OpSetSound, true
	case 0x1E:
		return OpAddI, true
	case 0x29:
		return OpLdFont, true
	case 0x33:
		return OpBCD, true
	case 0x55:
		return OpStoreV, true
	case 0x65:
		return OpLoadV, true
	default:
		return 0, false
	}
}

func invalidOpcode(opcode uint16) error {
	return fmt.Errorf("opcode %04x: %w", opcode, ErrInvalidOpcode)
}
