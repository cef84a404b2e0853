// Package chip8 implements the CHIP-8 virtual machine core.
//
// # Architecture Overview
//
// CHIP-8 is an interpreted programming language from the 1970s designed for
// simple games on early microcomputers. The machine consists of:
//   - 4KB of flat memory (0x000-0xFFF)
//   - 16 general-purpose 8-bit registers (V0-VF, VF doubles as flag register)
//   - A 16-bit index register I and a 16-bit program counter
//   - A call stack of 16 return addresses
//   - A 64x32 monochrome framebuffer drawn via XOR sprite blitting
//   - A 16-key hexadecimal keypad
//   - Two 8-bit timers (delay, sound) decaying at 60 Hz
//
// # Memory Layout
//
//   - 0x000-0x1FF: interpreter area, holds the built-in font sprites
//   - ProgramStart-0xFFF: user program and data, loaded from ROM
//
// # Execution Model
//
// The CPU fetches one big-endian 16-bit opcode per cycle, advances the
// program counter by 2 before executing it, and dispatches on the decoded
// instruction. Decoding is separated from execution: Decode turns an opcode
// word into an Instruction value, the CPU executes it. The cycle loop is
// paced to a configurable instruction rate (default 500 per second).
//
// The timers decay on their own goroutines and the keypad supports a
// blocking wait used by the wait-for-key instruction, so the core is safe
// to drive from a front-end running on a different goroutine.
package chip8
