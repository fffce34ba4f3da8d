// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":       "0",
	"SYSTEM_BASE":  fmt.Sprintf("%#x", SYSTEM_BASE),
	"PROGRAM_BASE": fmt.Sprintf("%#x", PROGRAM_BASE),
	"MEMORY_SIZE":  fmt.Sprintf("%#x", MEMORY_SIZE),
	"FLAG":         "vF",
}

// Assembler is a single pass macro assembler for the CHIP-8 core.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	address   int               // Address of the next emitted word.
	used      [MEMORY_SIZE]bool // Bytes already claimed by an opcode.
	expanding map[string]bool   // Macros currently being expanded.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	v64, err := strconv.ParseUint(word, 0, 16)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)
	return
}

// registerOf returns the register index of a vX word.
func (asm *Assembler) registerOf(word string) (reg uint8, err error) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		err = ErrParseRegister(word)
		return
	}

	v64, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		err = ErrParseRegister(word)
		return
	}

	reg = uint8(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	pred["HERE"] = starlark.MakeInt(asm.address)

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

var (
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]
		if asm.expanding[name] {
			err = ErrMacroRecursion
			return
		}

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expanding[name] = true
		defer delete(asm.expanding, name)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	clear(asm.used[:])
	asm.address = 0
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.expanding = map[string]bool{}
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   words[2:],
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of call labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if addr >= MEMORY_SIZE {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrAddressInvalid
			return
		}
		op.Codes[0] = MakeCodeCall(uint16(addr))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// emit records the codes of one source line at the current address.
func (asm *Assembler) emit(lineno int, words []string, label string, codes ...Code) (err error) {
	size := len(codes) * OPCODE_SIZE
	if asm.address+size > MEMORY_SIZE {
		err = ErrAddressInvalid
		return
	}

	for addr := asm.address; addr < asm.address+size; addr++ {
		if asm.used[addr] {
			err = ErrAddressOverlap
			return
		}
		asm.used[addr] = true
	}

	opcode := Opcode{LineNo: lineno, Address: asm.address, Words: words, Codes: codes, LinkLabel: label}
	asm.Opcode = append(asm.Opcode, opcode)
	asm.address += size

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var addr uint16
		addr, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if addr >= MEMORY_SIZE {
			err = ErrAddressInvalid
			return
		}
		asm.address = int(addr)
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var codes []Code
		for _, word := range words[1:] {
			var value uint16
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			codes = append(codes, Code(value))
		}
		err = asm.emit(lineno, words, "", codes...)
	case "halt", "ret":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		code := CODE_HALT
		if words[0] == "ret" {
			code = CODE_RETURN
		}
		err = asm.emit(lineno, words, "", code)
	case "call":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var label string
		addr, perr := asm.valueOf(words[1])
		switch {
		case perr == nil && addr >= MEMORY_SIZE:
			err = ErrAddressInvalid
			return
		case perr != nil:
			// Resolved at link time.
			label = words[1]
		}
		err = asm.emit(lineno, words, label, MakeCodeCall(addr))
	case "add":
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x, y uint8
		x, err = asm.registerOf(words[1])
		if err != nil {
			return
		}
		y, err = asm.registerOf(words[2])
		if err != nil {
			return
		}
		err = asm.emit(lineno, words, "", MakeCodeAdd(x, y))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
