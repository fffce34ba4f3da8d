package cpu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// codeBytes encodes instruction words into their memory image.
func codeBytes(codes ...Code) (data []byte) {
	for _, code := range codes {
		b := code.Bytes()
		data = append(data, b[:]...)
	}
	return
}

func TestNewCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	assert.Equal([REGISTER_COUNT]uint8{}, cpu.Register)
	assert.Equal(Memory{}, cpu.Memory)
	assert.Equal([STACK_LIMIT]uint16{}, cpu.Stack.Data)
	assert.Equal(0, cpu.Stack.Pointer)
	assert.Equal(uint16(0), cpu.Pc)
	assert.Equal(STATE_RUNNING, cpu.State)
	assert.Equal(0, cpu.Ticks)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[3] = 7
	cpu.Memory[0x200] = 0xaa
	cpu.Stack.Push(0x123)
	cpu.Pc = 0x456
	cpu.State = STATE_FAULTED
	cpu.Ticks = 9

	cpu.Reset()

	assert.Equal(NewCpu(), cpu)
}

func TestCpuAdd(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		seed     []uint8
		program  []Code
		register uint8
		flag     uint8
	}){
		{"add_three", []uint8{5, 10, 10, 10},
			[]Code{0x8014, 0x8024, 0x8034, CODE_HALT}, 35, 0},
		{"add_wrap", []uint8{250, 20},
			[]Code{0x8014, CODE_HALT}, 14, 1},
		{"add_exact", []uint8{255, 0},
			[]Code{0x8014, CODE_HALT}, 255, 0},
		{"add_max", []uint8{255, 255},
			[]Code{0x8014, CODE_HALT}, 254, 1},
		{"add_self", []uint8{0x80},
			[]Code{0x8004, CODE_HALT}, 0, 1},
	}

	for _, entry := range table {
		cpu := NewCpu()
		copy(cpu.Register[:], entry.seed)

		err := cpu.WriteSystemMemory(codeBytes(entry.program...))
		assert.NoError(err, entry.name)

		err = cpu.Run(context.Background())
		assert.NoError(err, entry.name)
		assert.Equal(STATE_HALTED, cpu.State, entry.name)
		assert.Equal(entry.register, cpu.Register[0], entry.name)
		assert.Equal(entry.flag, cpu.Register[REGISTER_FLAG], entry.name)
	}
}

func TestCpuAddClearsFlag(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 1
	cpu.Register[1] = 2
	cpu.Register[REGISTER_FLAG] = 1

	err := cpu.Execute(MakeCodeAdd(0, 1))
	assert.NoError(err)
	assert.Equal(uint8(3), cpu.Register[0])
	assert.Equal(uint8(0), cpu.Register[REGISTER_FLAG])
}

func TestCpuAddFlagOperand(t *testing.T) {
	assert := assert.New(t)

	// vF as the source is read before the carry is written.
	cpu := NewCpu()
	cpu.Register[2] = 0xff
	cpu.Register[REGISTER_FLAG] = 1

	err := cpu.Execute(MakeCodeAdd(2, REGISTER_FLAG))
	assert.NoError(err)
	assert.Equal(uint8(0), cpu.Register[2])
	assert.Equal(uint8(1), cpu.Register[REGISTER_FLAG])
}

func TestCpuCallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0] = 5
	cpu.Register[1] = 10

	err := cpu.WriteSystemMemory(codeBytes(
		MakeCodeCall(PROGRAM_BASE),
		MakeCodeCall(PROGRAM_BASE),
		CODE_HALT,
	))
	assert.NoError(err)

	err = cpu.WriteProgramMemory(codeBytes(
		MakeCodeAdd(0, 1),
		MakeCodeAdd(0, 1),
		CODE_RETURN,
	))
	assert.NoError(err)

	err = cpu.Run(context.Background())
	assert.NoError(err)

	assert.Equal(uint8(45), cpu.Register[0])
	assert.Equal(uint8(0), cpu.Register[REGISTER_FLAG])
	assert.Equal(0, cpu.Stack.Pointer)
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(uint16(6), cpu.Pc)
	assert.Equal(9, cpu.Ticks)
}

func TestCpuCallSavesAdvancedPc(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.WriteSystemMemory(codeBytes(CODE_HALT, MakeCodeCall(0x300)))
	cpu.Pc = 2

	err := cpu.Tick()
	assert.NoError(err)
	assert.Equal(uint16(0x300), cpu.Pc)

	saved, ok := cpu.Stack.Peek()
	assert.True(ok)
	assert.Equal(uint16(4), saved)
}

func TestCpuStackOverflow(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	// Each call targets the next call.
	var codes []Code
	for n := range STACK_LIMIT + 1 {
		codes = append(codes, MakeCodeCall(uint16(n+1)*OPCODE_SIZE))
	}
	err := cpu.WriteSystemMemory(codeBytes(codes...))
	assert.NoError(err)

	err = cpu.Run(context.Background())
	assert.ErrorIs(err, ErrStackOverflow)
	assert.ErrorIs(err, ErrOpcode(0))

	var fault *ErrFault
	assert.True(errors.As(err, &fault))
	assert.Equal(uint16(STACK_LIMIT*OPCODE_SIZE), fault.Pc)
	assert.Equal(codes[STACK_LIMIT], fault.Code)

	assert.Equal(STACK_LIMIT+1, cpu.Ticks)
	assert.Equal(STACK_LIMIT, cpu.Stack.Pointer)
	assert.Equal(STATE_FAULTED, cpu.State)
}

func TestCpuStackOverflowRecursive(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.WriteProgramMemory(codeBytes(MakeCodeCall(PROGRAM_BASE)))
	cpu.Pc = PROGRAM_BASE

	for range STACK_LIMIT {
		assert.NoError(cpu.Tick())
	}

	err := cpu.Tick()
	assert.ErrorIs(err, ErrStackOverflow)
	assert.Equal(STATE_FAULTED, cpu.State)
}

func TestCpuStackUnderflow(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.WriteSystemMemory(codeBytes(CODE_RETURN))

	err := cpu.Run(context.Background())
	assert.ErrorIs(err, ErrStackUnderflow)
	assert.Equal(STATE_FAULTED, cpu.State)
	assert.Equal(0, cpu.Stack.Pointer)
}

func TestCpuUnimplemented(t *testing.T) {
	assert := assert.New(t)

	table := []Code{0x00F1, 0x00E0, 0x1234, 0x8015, 0xF00A, 0xFFFF}

	for _, code := range table {
		cpu := NewCpu()
		cpu.WriteSystemMemory(codeBytes(code))
		cpu.Register[0] = 1
		cpu.Register[1] = 2

		err := cpu.Run(context.Background())
		assert.ErrorIs(err, ErrOpcodeUnimplemented, code.String())
		assert.Equal(STATE_FAULTED, cpu.State)
		assert.Equal(uint8(1), cpu.Register[0])
		assert.Equal(uint8(2), cpu.Register[1])
	}
}

func TestCpuStopped(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Run(context.Background()))
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(1, cpu.Ticks)

	// Halted is terminal.
	assert.ErrorIs(cpu.Tick(), ErrCpuStopped)
	assert.NoError(cpu.Run(context.Background()))
	assert.Equal(1, cpu.Ticks)

	cpu.Reset()
	cpu.WriteSystemMemory(codeBytes(CODE_RETURN))
	assert.Error(cpu.Run(context.Background()))
	assert.ErrorIs(cpu.Run(context.Background()), ErrCpuStopped)
}

func TestCpuPcOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Memory[MEMORY_SIZE-2] = 0x80
	cpu.Memory[MEMORY_SIZE-1] = 0x14
	cpu.Pc = MEMORY_SIZE - 2
	cpu.Register[1] = 3

	// Last full word still executes.
	assert.NoError(cpu.Tick())
	assert.Equal(uint8(3), cpu.Register[0])
	assert.Equal(uint16(MEMORY_SIZE), cpu.Pc)

	err := cpu.Tick()
	assert.ErrorIs(err, ErrPcOutOfBounds)
	assert.Equal(STATE_FAULTED, cpu.State)

	cpu.Reset()
	cpu.Pc = MEMORY_SIZE - 1
	assert.ErrorIs(cpu.Tick(), ErrPcOutOfBounds)
}

func TestCpuTickLimit(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	var codes []Code
	for range 40 {
		codes = append(codes, MakeCodeAdd(0, 1))
	}
	assert.NoError(cpu.WriteSystemMemory(codeBytes(codes...)))
	cpu.Register[1] = 1
	cpu.TickLimit = 10

	err := cpu.Run(context.Background())
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(STATE_RUNNING, cpu.State)
	assert.Equal(10, cpu.Ticks)

	// The budget applies per call.
	err = cpu.Run(context.Background())
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(20, cpu.Ticks)
	assert.Equal(uint8(20), cpu.Register[0])

	cpu.TickLimit = 0
	assert.NoError(cpu.Run(context.Background()))
	assert.Equal(uint8(40), cpu.Register[0])
	assert.Equal(STATE_HALTED, cpu.State)
}

func TestCpuCancel(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cpu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(STATE_RUNNING, cpu.State)
	assert.Equal(0, cpu.Ticks)
}

func TestCpuWriteBounds(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	assert.NoError(cpu.WriteSystemMemory(make([]byte, SYSTEM_SIZE)))
	assert.NoError(cpu.WriteProgramMemory(make([]byte, PROGRAM_SIZE)))

	err := cpu.WriteSystemMemory(make([]byte, SYSTEM_SIZE+1))
	assert.ErrorIs(err, ErrMemoryWriteOutOfBounds)

	var werr *ErrWrite
	assert.True(errors.As(err, &werr))
	assert.Equal(REGION_SYSTEM, werr.Region)
	assert.Equal(SYSTEM_SIZE+1, werr.Length)

	data := make([]byte, PROGRAM_SIZE+1)
	data[0] = 0xff
	err = cpu.WriteProgramMemory(data)
	assert.ErrorIs(err, ErrMemoryWriteOutOfBounds)
	assert.Equal(uint8(0), cpu.Memory[PROGRAM_BASE])
}

func TestCpuRegisterAccess(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.SetRegister(0xa, 0x42))
	val, err := cpu.GetRegister(0xa)
	assert.NoError(err)
	assert.Equal(uint8(0x42), val)

	assert.ErrorIs(cpu.SetRegister(REGISTER_COUNT, 1), ErrRegisterInvalid)
	assert.ErrorIs(cpu.SetRegister(-1, 1), ErrRegisterInvalid)
	_, err = cpu.GetRegister(REGISTER_COUNT)
	assert.ErrorIs(err, ErrRegisterInvalid)
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Register[0xa] = 0x5c
	cpu.Stack.Push(0x102)

	text := cpu.String()
	assert.Contains(text, "state: running\n")
	assert.Contains(text, "   vA: 5C\n")
	assert.Contains(text, "stack: 102 (1)\n")
}

func TestCpuDefines(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	defines := map[string]string{}
	for key, val := range cpu.Defines() {
		defines[key] = val
	}

	assert.Equal("0x100", defines["PROGRAM_BASE"])
	assert.Equal("16", defines["STACK_LIMIT"])
}
