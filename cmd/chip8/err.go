package main

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrDefineSyntax = errors.New(f("define is not NAME=VALUE"))
)
