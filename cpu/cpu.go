package cpu

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	REGISTER_COUNT = 16  // General purpose registers v0-vF.
	REGISTER_FLAG  = 0xf // Carry flag register.
)

// State is the run loop state.
type State int

const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

func (state State) String() string {
	switch state {
	case STATE_RUNNING:
		return "running"
	case STATE_HALTED:
		return "halted"
	case STATE_FAULTED:
		return "faulted"
	}

	return fmt.Sprintf("State(%d)", int(state))
}

var _cpu_defines = map[string]string{
	"SYSTEM_BASE":  fmt.Sprintf("0x%03x", SYSTEM_BASE),
	"SYSTEM_SIZE":  fmt.Sprintf("0x%03x", SYSTEM_SIZE),
	"PROGRAM_BASE": fmt.Sprintf("0x%03x", PROGRAM_BASE),
	"PROGRAM_SIZE": fmt.Sprintf("0x%03x", PROGRAM_SIZE),
	"MEMORY_SIZE":  fmt.Sprintf("0x%03x", MEMORY_SIZE),
	"STACK_LIMIT":  fmt.Sprintf("%d", STACK_LIMIT),
}

// Cpu is the simulation context for a CHIP-8 style processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTER_COUNT]uint8 // Register bank.
	Memory   Memory                // Address space.
	Pc       uint16                // Program counter.
	Stack    Stack                 // Call stack.
	State    State                 // Run loop state.

	Ticks     int // CPU ticks counter.
	TickLimit int // Maximum ticks per Run, zero for unlimited.
}

// NewCpu creates a new CPU with all state zeroed.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers, memory and stack.
// - Zeros the program counter and tick counter.
// - Returns the run loop to the running state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Memory.Reset()
	cpu.Stack.Reset()
	cpu.Pc = 0
	cpu.Ticks = 0
	cpu.State = STATE_RUNNING
}

// WriteSystemMemory loads data at the start of the system region.
func (cpu *Cpu) WriteSystemMemory(data []byte) (err error) {
	return cpu.writeMemory(REGION_SYSTEM, data)
}

// WriteProgramMemory loads data at the start of the program region.
func (cpu *Cpu) WriteProgramMemory(data []byte) (err error) {
	return cpu.writeMemory(REGION_PROGRAM, data)
}

func (cpu *Cpu) writeMemory(region Region, data []byte) (err error) {
	err = cpu.Memory.Write(region, data)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: load %d bytes to %v at 0x%03x", len(data), region.Name, region.Base)
	}

	return
}

// GetRegister reads a register by index.
func (cpu *Cpu) GetRegister(index int) (value uint8, err error) {
	if index < 0 || index >= len(cpu.Register) {
		err = ErrRegisterInvalid
		return
	}

	value = cpu.Register[index]
	return
}

// SetRegister writes a register by index.
func (cpu *Cpu) SetRegister(index int, value uint8) (err error) {
	if index < 0 || index >= len(cpu.Register) {
		err = ErrRegisterInvalid
		return
	}

	cpu.Register[index] = value
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.State)
	text += fmt.Sprintf("% 5s: %03X\n", "pc", cpu.Pc)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%X", n), val)
	}

	strval := "---"
	val, ok := cpu.Stack.Peek()
	if ok {
		strval = fmt.Sprintf("%03X", val)
	}
	text += fmt.Sprintf("% 5s: %v (%d)\n", "stack", strval, cpu.Stack.Depth())

	return
}

// FetchCode reads the instruction word at the program counter.
// The program counter is not advanced.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	return cpu.Memory.Word(cpu.Pc)
}

// Tick executes a single fetch, advance, decode and dispatch cycle.
// Any error leaves the CPU in the faulted state.
func (cpu *Cpu) Tick() (err error) {
	if cpu.State != STATE_RUNNING {
		err = ErrCpuStopped
		return
	}

	pc := cpu.Pc
	var code Code

	defer func() {
		if err != nil {
			cpu.State = STATE_FAULTED
			err = &ErrFault{Pc: pc, Code: code, Err: err}
		}
	}()

	code, err = cpu.FetchCode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %v", pc, code)
	}

	cpu.Pc += OPCODE_SIZE
	cpu.Ticks += 1

	err = cpu.Execute(code)

	return
}

// Execute dispatches a single instruction word.
func (cpu *Cpu) Execute(code Code) (err error) {
	inst, ok := Lookup(code)
	if !ok {
		err = errors.Join(ErrOpcode(code), ErrOpcodeUnimplemented)
		return
	}

	err = inst.Exec(cpu, code)
	if err != nil {
		err = errors.Join(ErrOpcode(code), err)
		return
	}

	return
}

// Run ticks the CPU until it halts or faults.
//
// The run is interrupted, leaving the CPU running, when ctx is done or
// when TickLimit ticks have executed during this call.
func (cpu *Cpu) Run(ctx context.Context) (err error) {
	var ticks int

	for cpu.State == STATE_RUNNING {
		err = ctx.Err()
		if err != nil {
			return
		}

		if cpu.TickLimit > 0 && ticks >= cpu.TickLimit {
			err = ErrTickLimit
			return
		}

		err = cpu.Tick()
		if err != nil {
			return
		}
		ticks++
	}

	if cpu.State == STATE_FAULTED {
		err = ErrCpuStopped
	}

	return
}
