package bus

import (
	"errors"

	"github.com/ezrec/umpk80/translate"
)

var f = translate.From

var (
	// Load errors
	ErrImageTooLarge = errors.New(f("image too large"))

	// Decode errors. Unreachable through the uint16/uint8 typed paths.
	ErrAddressOutOfRange = errors.New(f("address out of range"))
	ErrPortOutOfRange    = errors.New(f("port out of range"))
)

// ErrLoad describes a rejected memory load.
type ErrLoad struct {
	Address uint16 // First address of the load.
	Size    int    // Size of the rejected image.
	Limit   int    // Bytes available at Address.
	Err     error
}

func (err *ErrLoad) Error() string {
	return f("load of %v bytes at 0x%04x (limit %v): %v", err.Size, err.Address, err.Limit, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
