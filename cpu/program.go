package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and generated instructions.
type Opcode struct {
	LineNo    int
	Address   int
	Words     []string
	Codes     []Code
	LinkLabel string
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Disassemble lists raw memory bytes loaded at base as a program.
// A trailing odd byte is padded with zero.
func Disassemble(base uint16, data []byte) (prog *Program) {
	prog = &Program{}

	for n := 0; n < len(data); n += OPCODE_SIZE {
		word := uint16(data[n]) << 8
		if n+1 < len(data) {
			word |= uint16(data[n+1])
		}
		code := Code(word)
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo:  n/OPCODE_SIZE + 1,
			Address: int(base) + n,
			Words:   strings.Fields(code.String()),
			Codes:   []Code{code},
		})
	}

	return
}

func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+len(op.Codes)*OPCODE_SIZE {
			index := (int(addr) - op.Address) / OPCODE_SIZE
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  index,
			}
			break
		}
	}

	return
}

func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(uint16(op.Address+n*OPCODE_SIZE), code) {
					return
				}
			}
		}
	}
}

// Region returns the bytes the program places in a memory region,
// from the region base up to the last byte written inside it.
func (prog *Program) Region(region Region) (data []byte) {
	var mem Memory
	limit := -1

	for addr, code := range prog.Codes() {
		for n, b := range code.Bytes() {
			at := int(addr) + n
			if at >= MEMORY_SIZE {
				continue
			}
			mem[at] = b
			if region.Contains(at) && at > limit {
				limit = at
			}
		}
	}

	if limit < 0 {
		return
	}

	data = append(data, mem[region.Base:limit+1]...)
	return
}

// String returns the program listing.
func (prog *Program) String() string {
	var text strings.Builder

	for addr, code := range prog.Codes() {
		b := code.Bytes()
		fmt.Fprintf(&text, "%03x: %02x%02x  %v\n", addr, b[0], b[1], code)
	}

	return text.String()
}
