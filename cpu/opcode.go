package cpu

import (
	"fmt"
)

// Code is a single 16-bit instruction word.
type Code uint16

const (
	CODE_HALT   = Code(0x0000) // halt
	CODE_RETURN = Code(0x00EE) // ret
)

const (
	OPCODE_SIZE = 2 // Bytes per instruction word.
)

// MakeCode recombines four nibbles into an instruction word.
// Only the low four bits of each argument are used.
func MakeCode(c, x, y, d uint8) Code {
	return Code((uint16(c&0xf) << 12) | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(d&0xf))
}

// MakeCodeCall creates a subroutine call to a 12-bit address.
func MakeCodeCall(nnn uint16) Code {
	return Code(0x2000 | (nnn & 0xfff))
}

// MakeCodeAdd creates an add of register y into register x.
func MakeCodeAdd(x, y uint8) Code {
	return MakeCode(0x8, x, y, 0x4)
}

// Nibbles decodes the word into its group, x, y and subgroup nibbles.
func (code Code) Nibbles() (c, x, y, d uint8) {
	word := uint16(code)
	c = uint8((word >> 12) & 0xf)
	x = uint8((word >> 8) & 0xf)
	y = uint8((word >> 4) & 0xf)
	d = uint8((word >> 0) & 0xf)
	return
}

// Group returns the opcode group nibble.
func (code Code) Group() uint8 {
	return uint8((code >> 12) & 0xf)
}

// X returns the first register operand nibble.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the second register operand nibble.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// Sub returns the opcode subgroup nibble.
func (code Code) Sub() uint8 {
	return uint8(code & 0xf)
}

// Nnn returns the 12-bit address operand.
func (code Code) Nnn() uint16 {
	return uint16(code) & 0xfff
}

// Kk returns the 8-bit immediate operand.
func (code Code) Kk() uint8 {
	return uint8(code & 0xff)
}

// Bytes returns the big-endian memory encoding of the word.
func (code Code) Bytes() [OPCODE_SIZE]byte {
	return [OPCODE_SIZE]byte{byte(code >> 8), byte(code)}
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	inst, ok := Lookup(code)
	if !ok {
		return fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	return inst.Format(code)
}
