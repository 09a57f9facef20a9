// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"strings"
)

const (
	KEYBOARD_COLUMNS = 3                                // Keys per matrix row.
	KEYBOARD_ROWS    = 8                                // Matrix rows.
	KEYBOARD_KEYS    = KEYBOARD_COLUMNS * KEYBOARD_ROWS // Keys wired to the matrix.
	KEYBOARD_IDLE    = 0xff                             // Row pattern with no key down.
)

// Key is a key of the trainer keypad.
type Key int

// The matrix keys are ordered row by row, three columns per row.
// KEY_R and KEY_ST are wired to the CPU control lines instead of the matrix.
//
//go:generate go tool stringer -linecomment -type=Key
const (
	KEY_D      = Key(0)  // D
	KEY_E      = Key(1)  // E
	KEY_F      = Key(2)  // F
	KEY_A      = Key(3)  // A
	KEY_B      = Key(4)  // B
	KEY_C      = Key(5)  // C
	KEY_7      = Key(6)  // 7
	KEY_8      = Key(7)  // 8
	KEY_9      = Key(8)  // 9
	KEY_4      = Key(9)  // 4
	KEY_5      = Key(10) // 5
	KEY_6      = Key(11) // 6
	KEY_1      = Key(12) // 1
	KEY_2      = Key(13) // 2
	KEY_3      = Key(14) // 3
	KEY_0      = Key(15) // 0
	KEY_ZP_UV  = Key(16) // ZP/UV
	KEY_UM     = Key(17) // UM
	KEY_P      = Key(18) // P
	KEY_OT_RG  = Key(19) // OT RG
	KEY_OT_A   = Key(20) // OT A
	KEY_SHK    = Key(21) // SHK
	KEY_PR_SCH = Key(22) // PR SCH
	KEY_SHC    = Key(23) // SHC
	KEY_R      = Key(24) // R
	KEY_ST     = Key(25) // ST
	KEY_COUNT  = 26
)

// Valid returns true if the key exists on the keypad.
func (key Key) Valid() bool {
	return key >= 0 && key < KEY_COUNT
}

// Matrix returns true if the key is wired to the scan matrix.
func (key Key) Matrix() bool {
	return key >= 0 && key < KEYBOARD_KEYS
}

// Position returns the matrix row and column of the key.
func (key Key) Position() (row, column int) {
	row = int(key) / KEYBOARD_COLUMNS
	column = int(key) % KEYBOARD_COLUMNS
	return
}

// Pattern returns the scan register value selecting the key's row, and
// the row pattern read back while the key is held.
func (key Key) Pattern() (scan byte, pattern byte) {
	row, column := key.Position()
	scan = ^byte(0x80 >> row)
	pattern = ^byte(1 << column)
	return
}

// ParseKey converts a key label (as printed by Key.String) to a Key.
// Labels are matched case-insensitively, with '_' accepted for spaces
// and '/'.
func ParseKey(name string) (key Key, err error) {
	want := normalizeKey(name)
	for key = range Key(KEY_COUNT) {
		if normalizeKey(key.String()) == want {
			return
		}
	}

	err = ErrKeyUnknown
	return
}

func normalizeKey(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "/", "_").Replace(name)
}

// Keyboard is the key matrix. Only one key is down at a time; a second
// press replaces the first.
type Keyboard struct {
	Select *Register // Scan register shared with the display.

	active  Key
	pressed bool
}

// Reset releases all keys.
func (kb *Keyboard) Reset() {
	kb.pressed = false
}

// Press makes key the active key.
func (kb *Keyboard) Press(key Key) (err error) {
	if !key.Matrix() {
		err = ErrKeyInvalid
		return
	}

	kb.active = key
	kb.pressed = true
	return
}

// Release releases the active key.
func (kb *Keyboard) Release() {
	kb.pressed = false
}

// Active returns the key currently held, if any.
func (kb *Keyboard) Active() (key Key, ok bool) {
	return kb.active, kb.pressed
}

// Scan returns the row pattern for a scan register value.
// The selected row is the first zero bit, counting down from bit 7.
// A held key in that row pulls its column bit low.
func (kb *Keyboard) Scan(scan byte) byte {
	row := 0
	for ; row < KEYBOARD_ROWS; row++ {
		if scan&(0x80>>row) == 0 {
			break
		}
	}

	if row == KEYBOARD_ROWS || !kb.pressed {
		return KEYBOARD_IDLE
	}

	keyRow, column := kb.active.Position()
	if keyRow != row {
		return KEYBOARD_IDLE
	}

	return ^byte(1 << column)
}

// ScanPort returns the row pattern for the current scan register value.
func (kb *Keyboard) ScanPort() byte {
	scan := byte(REGISTER_IDLE)
	if kb.Select != nil {
		scan = kb.Select.Data
	}

	return kb.Scan(scan)
}

// PortRead answers a CPU read of the keyboard port.
func (kb *Keyboard) PortRead() byte {
	return kb.ScanPort()
}
