package cpu

import (
	"fmt"
	"iter"
)

// Instruction is one recognized instruction shape.
// A code matches when code & Mask == Match.
type Instruction struct {
	Name   string                          // Assembler mnemonic.
	Mask   Code                            // Bits that identify the shape.
	Match  Code                            // Required value of the masked bits.
	Exec   func(cpu *Cpu, code Code) error // Executes against a fetched code.
	Format func(code Code) string          // Disassembles a matching code.
}

// instructions is searched in order; the first match wins.
var instructions []Instruction

func init() {
	instructions = []Instruction{
		{
			Name:   "halt",
			Mask:   0xffff,
			Match:  CODE_HALT,
			Exec:   (*Cpu).doHalt,
			Format: func(code Code) string { return "halt" },
		},
		{
			Name:   "ret",
			Mask:   0xffff,
			Match:  CODE_RETURN,
			Exec:   (*Cpu).doReturn,
			Format: func(code Code) string { return "ret" },
		},
		{
			Name:   "call",
			Mask:   0xf000,
			Match:  0x2000,
			Exec:   (*Cpu).doCall,
			Format: func(code Code) string { return fmt.Sprintf("call 0x%03x", code.Nnn()) },
		},
		{
			Name:   "add",
			Mask:   0xf00f,
			Match:  0x8004,
			Exec:   (*Cpu).doAdd,
			Format: func(code Code) string { return fmt.Sprintf("add v%X v%X", code.X(), code.Y()) },
		},
	}
}

// Lookup finds the instruction shape that matches a code.
func Lookup(code Code) (inst *Instruction, ok bool) {
	for n := range instructions {
		if code&instructions[n].Mask == instructions[n].Match {
			return &instructions[n], true
		}
	}

	return
}

// Instructions iterates over the recognized instruction shapes.
func Instructions() iter.Seq[*Instruction] {
	return func(yield func(inst *Instruction) bool) {
		for n := range instructions {
			if !yield(&instructions[n]) {
				return
			}
		}
	}
}

// doHalt stops the run loop without error.
func (cpu *Cpu) doHalt(code Code) (err error) {
	cpu.State = STATE_HALTED
	return
}

// doReturn pops the call stack into the program counter.
func (cpu *Cpu) doReturn(code Code) (err error) {
	pc, ok := cpu.Stack.Pop()
	if !ok {
		err = ErrStackUnderflow
		return
	}

	cpu.Pc = pc
	return
}

// doCall saves the already advanced program counter and jumps to nnn.
func (cpu *Cpu) doCall(code Code) (err error) {
	if !cpu.Stack.Push(cpu.Pc) {
		err = ErrStackOverflow
		return
	}

	cpu.Pc = code.Nnn()
	return
}

// doAdd performs vX += vY with 8-bit wrap. vF is always rewritten with
// the carry, even when there is none.
func (cpu *Cpu) doAdd(code Code) (err error) {
	x, y := code.X(), code.Y()

	sum := uint16(cpu.Register[x]) + uint16(cpu.Register[y])
	cpu.Register[x] = uint8(sum)
	cpu.Register[REGISTER_FLAG] = uint8(sum >> 8)

	return
}
