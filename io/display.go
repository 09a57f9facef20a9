// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

const (
	DISPLAY_DIGITS      = 6   // Number of 7-segment digits.
	DISPLAY_PERSISTENCE = 255 // Ticks a digit stays lit without a refresh.
)

// Display is the six digit multiplexed 7-segment display.
//
// The CPU latches a segment pattern through the display port, then
// strobes one digit through the scan register. Only the strobed digit
// takes the latched pattern.
type Display struct {
	digits   [DISPLAY_DIGITS]byte
	segments byte
	age      int
}

// Reset clears all digits and the segment latch.
func (disp *Display) Reset() {
	clear(disp.digits[:])
	disp.segments = 0
	disp.age = DISPLAY_PERSISTENCE
}

// PortWrite latches the segment pattern for the next strobed digit.
func (disp *Display) PortWrite(data byte) {
	disp.segments = data
}

// Segments returns the latched segment pattern.
func (disp *Display) Segments() byte {
	return disp.segments
}

// Strobe lights up the digit selected by a scan register value.
// Only the one-hot values 0b100000 (digit 0) through 0b000001 (digit 5)
// select a digit; anything else is a transition state of the scan
// register and leaves the display alone.
func (disp *Display) Strobe(scan byte) (index int, ok bool) {
	for index = range DISPLAY_DIGITS {
		if scan == byte(0b100000>>index) {
			disp.WriteDigit(index, disp.segments)
			ok = true
			return
		}
	}

	index = 0
	return
}

// WriteDigit sets the pattern of one digit. Other digits are unchanged.
func (disp *Display) WriteDigit(index int, pattern byte) {
	disp.digits[index] = pattern
	disp.age = 0
}

// Digit returns the pattern of one digit.
func (disp *Display) Digit(index int) byte {
	return disp.digits[index]
}

// Digits returns all digit patterns, left to right.
func (disp *Display) Digits() (digits [DISPLAY_DIGITS]byte) {
	digits = disp.digits
	return
}

// Advance ages the display by one tick.
func (disp *Display) Advance() {
	if disp.age < DISPLAY_PERSISTENCE {
		disp.age++
	}
}

// Age returns the ticks since the last digit refresh.
func (disp *Display) Age() int {
	return disp.age
}

// Lit returns true if the firmware is still refreshing the display.
func (disp *Display) Lit() bool {
	return disp.age < DISPLAY_PERSISTENCE
}

// segmentRunes maps 7-segment patterns (bit 0 = a ... bit 6 = g, bit 7 =
// decimal point ignored) to printable characters.
var segmentRunes = map[byte]rune{
	0x00: ' ',
	0x3f: '0', 0x06: '1', 0x5b: '2', 0x4f: '3',
	0x66: '4', 0x6d: '5', 0x7d: '6', 0x07: '7',
	0x7f: '8', 0x6f: '9', 0x77: 'A', 0x7c: 'b',
	0x39: 'C', 0x5e: 'd', 0x79: 'E', 0x71: 'F',
	0x40: '-', 0x08: '_', 0x76: 'H', 0x38: 'L',
	0x73: 'P', 0x50: 'r', 0x3e: 'U', 0x5c: 'o',
	0x54: 'n', 0x74: 'h', 0x1c: 'u', 0x78: 't',
}

// SegmentRune returns a printable approximation of a segment pattern.
func SegmentRune(pattern byte) rune {
	r, ok := segmentRunes[pattern&0x7f]
	if !ok {
		return '?'
	}
	return r
}
