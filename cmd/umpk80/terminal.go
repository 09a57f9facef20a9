package main

import (
	"os"

	"golang.org/x/term"

	"github.com/ezrec/umpk80/io"
)

// keyMap maps host keys to the trainer keypad.
var keyMap = map[byte]io.Key{
	'0': io.KEY_0, '1': io.KEY_1, '2': io.KEY_2, '3': io.KEY_3,
	'4': io.KEY_4, '5': io.KEY_5, '6': io.KEY_6, '7': io.KEY_7,
	'8': io.KEY_8, '9': io.KEY_9, 'a': io.KEY_A, 'b': io.KEY_B,
	'c': io.KEY_C, 'd': io.KEY_D, 'e': io.KEY_E, 'f': io.KEY_F,
	'z': io.KEY_ZP_UV, // ZP/UV
	'u': io.KEY_UM,
	'p': io.KEY_P,
	'g': io.KEY_OT_RG, // OT RG
	'o': io.KEY_OT_A,  // OT A
	'k': io.KEY_SHK,
	's': io.KEY_PR_SCH, // PR SCH
	'h': io.KEY_SHC,
	'R': io.KEY_R,
	'S': io.KEY_ST,
}

const (
	KEY_QUIT = 'q'
	KEY_INTR = 0x03 // ^C
)

// Terminal is the host keyboard, in raw mode.
type Terminal struct {
	fd    int
	state *term.State
}

// NewTerminal puts stdin in raw mode, if it is a terminal.
func NewTerminal() (tty *Terminal, err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	tty = &Terminal{fd: fd, state: state}
	return
}

// Restore returns the terminal to its original mode.
func (tty *Terminal) Restore() {
	if tty == nil || tty.state == nil {
		return
	}

	_ = term.Restore(tty.fd, tty.state)
	tty.state = nil
}

// Keys reads host key strokes until stdin closes.
// The reader blocks in Read, so it is never joined.
func (tty *Terminal) Keys() <-chan byte {
	keys := make(chan byte, 16)

	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				keys <- buf[0]
			}
			if err != nil {
				return
			}
		}
	}()

	return keys
}
