// Package cpu implements the CHIP-8 style processor core and its assembler.
//
// The CPU consists of a 4096 byte memory split into a system region
// (0x000-0x0FF) and a program region (0x100-0xFFF), sixteen 8-bit registers
// (v0-vF, with vF doubling as the carry flag), a program counter, and a
// sixteen entry call stack. Each cycle fetches a big-endian 16-bit opcode,
// advances the program counter, and dispatches through a table of
// recognized instruction shapes.
//
// The assembler provides a small assembly language for the recognized
// instructions, supporting labels, equates, macros, and compile-time
// expression evaluation.
package cpu
