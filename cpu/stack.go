package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack is the bounded call stack of saved program counters.
// Pointer is the index of the next free slot; zero is empty.
type Stack struct {
	Data    [STACK_LIMIT]uint16
	Pointer int
}

// Push saves a value. Returns false, leaving the stack untouched, when full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Pointer] = value
	s.Pointer++
	return true
}

func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Pointer--
		s.Data[s.Pointer] = 0
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Pointer == 0
}

func (s *Stack) Full() bool {
	return s.Pointer == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Pointer-1], true
}

// Depth returns the number of saved entries.
func (s *Stack) Depth() int {
	return s.Pointer
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Pointer = 0
}
