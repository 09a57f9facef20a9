package emulator

import (
	"errors"

	"github.com/ezrec/umpk80/translate"
)

var f = translate.From

var (
	ErrClosed          = errors.New(f("emulator closed"))
	ErrRegisterInvalid = errors.New(f("monitor register invalid"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address uint16 // Address of the faulting instruction.
	LineNo  int    // Source line of the faulting instruction, if known.
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("0x%04x: %v", err.Address, err.Err)
	}
	return f("0x%04x: line %d %v", err.Address, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
