package loader

import (
	"encoding/hex"
	"io/fs"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

// Image is the initial memory and register content of a run.
type Image struct {
	System  []byte        // Bytes for the system region.
	Program []byte        // Bytes for the program region.
	Seed    map[int]uint8 // Register index to initial value.
}

// isSeparator splits hex groups.
func isSeparator(r rune) bool {
	return r == ',' || r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ParseHex converts hex text to bytes. Groups may be split by whitespace,
// commas or underscores, may carry a 0x prefix, and must each have an even
// number of digits.
func ParseHex(text string) (data []byte, err error) {
	data = []byte{}

	for _, group := range strings.FieldsFunc(text, isSeparator) {
		digits := strings.TrimPrefix(strings.TrimPrefix(group, "0x"), "0X")
		if len(digits)%2 != 0 {
			err = &ErrParse{Text: group, Err: ErrHexOdd}
			return
		}

		var raw []byte
		raw, err = hex.DecodeString(digits)
		if err != nil {
			err = &ErrParse{Text: group, Err: ErrHexSyntax}
			return
		}
		data = append(data, raw...)
	}

	return
}

// ParseRegister converts a "vX=value" seed. The value is decimal, or
// prefixed with 0x, 0o or 0b.
func ParseRegister(text string) (index int, value uint8, err error) {
	name, val, ok := strings.Cut(strings.TrimSpace(text), "=")
	if !ok || len(name) != 2 || (name[0] != 'v' && name[0] != 'V') {
		err = &ErrParse{Text: text, Err: ErrRegisterSyntax}
		return
	}

	i64, perr := strconv.ParseUint(name[1:], 16, 4)
	if perr != nil {
		err = &ErrParse{Text: text, Err: cpu.ErrRegisterInvalid}
		return
	}

	v64, perr := strconv.ParseUint(val, 0, 8)
	if perr != nil {
		err = &ErrParse{Text: text, Err: ErrRegisterSyntax}
		return
	}

	index = int(i64)
	value = uint8(v64)
	return
}

// ReadHex reads a hex text file from a file system.
func ReadHex(fsys fs.FS, name string) (data []byte, err error) {
	text, err := fs.ReadFile(fsys, name)
	if err != nil {
		return
	}

	return ParseHex(string(text))
}

// FromProgram creates an image from an assembled program.
func FromProgram(prog *cpu.Program) (img Image) {
	img.System = prog.Region(cpu.REGION_SYSTEM)
	img.Program = prog.Region(cpu.REGION_PROGRAM)
	return
}

// SetSeeds parses and records "vX=value" register seeds.
func (img *Image) SetSeeds(texts ...string) (err error) {
	for _, text := range texts {
		var index int
		var value uint8
		index, value, err = ParseRegister(text)
		if err != nil {
			return
		}
		if img.Seed == nil {
			img.Seed = make(map[int]uint8, cpu.REGISTER_COUNT)
		}
		img.Seed[index] = value
	}

	return
}

// Load writes the image into the CPU regions and seeds its registers.
func (img *Image) Load(c *cpu.Cpu) (err error) {
	err = c.WriteSystemMemory(img.System)
	if err != nil {
		return
	}

	err = c.WriteProgramMemory(img.Program)
	if err != nil {
		return
	}

	for _, index := range slices.Sorted(maps.Keys(img.Seed)) {
		err = c.SetRegister(index, img.Seed[index])
		if err != nil {
			return
		}
	}

	return
}
