package cpu

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrStackOverflow          = errors.New(f("stack overflow"))
	ErrStackUnderflow         = errors.New(f("stack underflow"))
	ErrMemoryWriteOutOfBounds = errors.New(f("memory write out of bounds"))
	ErrOpcodeUnimplemented    = errors.New(f("opcode unimplemented"))
	ErrPcOutOfBounds          = errors.New(f("pc out of bounds"))
	ErrRegisterInvalid        = errors.New(f("register invalid"))
	ErrTickLimit              = errors.New(f("tick limit reached"))
	ErrCpuStopped             = errors.New(f("cpu not running"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrMacroRecursion     = errors.New(f(".macro expands itself"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrAddressInvalid     = errors.New(f("address invalid"))
	ErrAddressOverlap     = errors.New(f("address overlap"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrOpcode identifies the opcode word that failed to execute.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x %v", uint16(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrFault is a terminal run loop failure at a program counter.
type ErrFault struct {
	Pc   uint16 // Address the faulting opcode was fetched from.
	Code Code
	Err  error
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%03x: %v", err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrWrite is a memory load that does not fit its region.
type ErrWrite struct {
	Region Region
	Length int
}

func (err *ErrWrite) Error() string {
	return f("%v: %d bytes exceeds %v region of %d bytes",
		ErrMemoryWriteOutOfBounds, err.Length, err.Region.Name, err.Region.Size)
}

func (err *ErrWrite) Unwrap() error {
	return ErrMemoryWriteOutOfBounds
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
