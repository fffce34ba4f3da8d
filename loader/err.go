package loader

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Loader errors
	ErrHexSyntax      = errors.New(f("hex syntax"))
	ErrHexOdd         = errors.New(f("hex digits not paired"))
	ErrRegisterSyntax = errors.New(f("register seed syntax"))
)

// ErrParse identifies the text that failed to load.
type ErrParse struct {
	Text string
	Err  error
}

func (err *ErrParse) Error() string {
	return f("'%v' %v", err.Text, err.Err)
}

func (err *ErrParse) Unwrap() error {
	return err.Err
}
