// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/loader"
)

const (
	DEFAULT_TICK_LIMIT = 1 << 20 // Tick budget per Run, unless overridden.
)

var _emulator_defines = map[string]string{
	"TICK_LIMIT": fmt.Sprintf("%v", DEFAULT_TICK_LIMIT),
}

// Emulator state. CPU + program listing + initial image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing used to map addresses to source lines.
	Image    loader.Image // Memory and register content loaded on reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.TickLimit = DEFAULT_TICK_LIMIT

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.MergeDefines(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses source, replacing the program listing and image.
// Register seeds already in the image are kept.
func (emu *Emulator) Assemble(input io.Reader, predefine map[string]string) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	for key, value := range predefine {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	seed := emu.Image.Seed
	emu.Program = prog
	emu.Image = loader.FromProgram(prog)
	emu.Image.Seed = seed

	return
}

// Reset the CPU and load the image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	err = emu.Image.Load(emu.Cpu)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d system, %d program bytes, %d seeds",
			len(emu.Image.System), len(emu.Image.Program), len(emu.Image.Seed))
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// Code returns the listed instruction code at the program counter.
func (emu *Emulator) Code() cpu.Code {
	if emu.Program == nil {
		return cpu.Code(0)
	}

	for addr, code := range emu.Program.Codes() {
		if emu.Cpu.Pc == addr {
			return code
		}
	}

	return cpu.Code(0)
}

// lineOf returns the source line number of the opcode at addr.
func (emu *Emulator) lineOf(addr uint16) int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(addr)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// LineNo returns the source line number of the opcode at the program counter.
func (emu *Emulator) LineNo() int {
	return emu.lineOf(emu.Cpu.Pc)
}

// wrap attaches the source location to a CPU error.
func (emu *Emulator) wrap(err error, addr uint16, lineno int) error {
	if err == nil || errors.Is(err, cpu.ErrCpuStopped) {
		return err
	}

	var fault *cpu.ErrFault
	if errors.As(err, &fault) {
		addr = fault.Pc
		lineno = emu.lineOf(addr)
	}

	return &ErrRuntime{Address: addr, LineNo: lineno, Err: err}
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	addr := emu.Cpu.Pc
	lineno := emu.LineNo()

	err = emu.Cpu.Tick()
	err = emu.wrap(err, addr, lineno)
	if err != nil {
		return
	}

	done = emu.Cpu.State != cpu.STATE_RUNNING
	return
}

// Run ticks the emulator until it halts, faults, or is interrupted.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	addr := emu.Cpu.Pc
	lineno := emu.LineNo()

	err = emu.Cpu.Run(ctx)
	if err != nil && emu.Cpu.State == cpu.STATE_RUNNING {
		// Interrupted; report where it stopped.
		addr = emu.Cpu.Pc
		lineno = emu.LineNo()
	}

	return emu.wrap(err, addr, lineno)
}
