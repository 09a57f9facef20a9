package io

import (
	"errors"

	"github.com/ezrec/umpk80/translate"
)

var f = translate.From

var (
	// Keyboard errors
	ErrKeyInvalid = errors.New(f("key invalid"))
	ErrKeyUnknown = errors.New(f("key name unknown"))
)
