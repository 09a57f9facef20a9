package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo  int      // Source line number.
	Address int      // Address of the first byte.
	Words   []string // Source words.
	Bytes   []byte   // Generated bytes.
	Links   []Link   // Label addresses patched in at link time.
}

// Link is a reference to a label from an Opcode.
type Link struct {
	Offset int    // Offset in Opcode.Bytes of the little-endian address.
	Label  string // Referenced label.
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode covering an address.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Address,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program from base up to the
// last generated byte. Gaps are zero filled; bytes below base are dropped.
func (prog *Program) Binary(base uint16) (image []byte) {
	for addr, data := range prog.Codes() {
		if addr < base {
			continue
		}
		offset := int(addr - base)
		if offset >= len(image) {
			image = append(image, make([]byte, offset+1-len(image))...)
		}
		image[offset] = data
	}

	return
}

// Codes iterates over every generated byte and its address.
func (prog *Program) Codes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, data byte) bool) {
		for _, op := range prog.Opcodes {
			addr := uint16(op.Address)
			for n, data := range op.Bytes {
				if !yield(addr+uint16(n), data) {
					return
				}
			}
		}
	}
}
