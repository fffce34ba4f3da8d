package cpu

const (
	MEMORY_SIZE  = 0x1000 // Total addressable bytes.
	SYSTEM_BASE  = 0x000  // Start of the system region.
	SYSTEM_SIZE  = 0x100  // Bytes reserved for system issued opcodes.
	PROGRAM_BASE = SYSTEM_BASE + SYSTEM_SIZE
	PROGRAM_SIZE = MEMORY_SIZE - PROGRAM_BASE
)

// Region is a named window over the memory.
type Region struct {
	Name string
	Base uint16
	Size uint16
}

var (
	REGION_SYSTEM  = Region{Name: "system", Base: SYSTEM_BASE, Size: SYSTEM_SIZE}
	REGION_PROGRAM = Region{Name: "program", Base: PROGRAM_BASE, Size: PROGRAM_SIZE}
	REGION_ALL     = Region{Name: "memory", Base: 0, Size: MEMORY_SIZE}
)

// Limit returns the first address past the region.
func (region Region) Limit() int {
	return int(region.Base) + int(region.Size)
}

// Contains is true if the address lies inside the region.
func (region Region) Contains(addr int) bool {
	return addr >= int(region.Base) && addr < region.Limit()
}

// Memory is the CPU address space.
type Memory [MEMORY_SIZE]uint8

// Write copies data to the start of a region.
// Nothing is written if the data does not fit.
func (mem *Memory) Write(region Region, data []byte) (err error) {
	if len(data) > int(region.Size) || region.Limit() > MEMORY_SIZE {
		err = &ErrWrite{Region: region, Length: len(data)}
		return
	}

	copy(mem[region.Base:], data)
	return
}

// Slice returns the region's view of the memory.
func (mem *Memory) Slice(region Region) []byte {
	return mem[region.Base:region.Limit()]
}

// Word reads the big-endian instruction word at addr.
func (mem *Memory) Word(addr uint16) (code Code, err error) {
	if !REGION_ALL.Contains(int(addr) + OPCODE_SIZE - 1) {
		err = ErrPcOutOfBounds
		return
	}

	code = Code(uint16(mem[addr])<<8 | uint16(mem[addr+1]))
	return
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
