// Package io provides the peripheral devices of the UMPK-80 board.
//
// Devices attach to the port space of the bus. The display and the
// keyboard share the scan register: the CPU writes a digit/row select
// value to the scan port, then either writes a segment pattern to the
// display port or reads the selected keyboard row back from it.
package io
