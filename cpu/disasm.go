package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Disassemble decodes the instruction at the start of code.
//
// Undocumented opcodes, and instructions truncated by the end of code,
// are rendered as .db directives so the text assembles back to the same
// bytes.
func Disassemble(code []byte) (text string, length int) {
	if len(code) == 0 {
		return
	}

	ins := &Instructions[code[0]]
	length = ins.Length()

	if length > len(code) {
		length = len(code)
		text = dataDirective(code)
		return
	}

	if ins.Undocumented {
		text = dataDirective(code[:length]) + " ; " + ins.Mnemonic
		return
	}

	text = ins.Mnemonic
	switch ins.Operand {
	case OPERAND_D8, OPERAND_PORT:
		text += separator(ins) + fmt.Sprintf("0x%02x", code[1])
	case OPERAND_D16, OPERAND_ADDR:
		text += separator(ins) + fmt.Sprintf("0x%04x", uint16(code[2])<<8|uint16(code[1]))
	}

	return
}

func separator(ins *Instruction) string {
	if ins.Name() == ins.Mnemonic {
		return " "
	}
	return ","
}

func dataDirective(code []byte) string {
	values := make([]string, len(code))
	for n, b := range code {
		values[n] = fmt.Sprintf("0x%02x", b)
	}
	return ".db " + strings.Join(values, ",")
}

// Listing is a single disassembled instruction.
type Listing struct {
	Address uint16 // Address of the first byte.
	Bytes   []byte // Instruction bytes.
	Text    string // Disassembled text.
}

// String returns the listing line as 'AAAA: BB BB BB  TEXT'.
func (lst Listing) String() string {
	var hex [3]string
	for n := range hex {
		if n < len(lst.Bytes) {
			hex[n] = fmt.Sprintf("%02X", lst.Bytes[n])
		} else {
			hex[n] = "  "
		}
	}
	return fmt.Sprintf("%04X: %v  %v", lst.Address, strings.Join(hex[:], " "), lst.Text)
}

// Disassembly iterates over the instructions in code, loaded at base.
func Disassembly(code []byte, base uint16) iter.Seq2[uint16, Listing] {
	return func(yield func(addr uint16, lst Listing) bool) {
		for offset := 0; offset < len(code); {
			text, length := Disassemble(code[offset:])
			addr := base + uint16(offset)
			lst := Listing{
				Address: addr,
				Bytes:   code[offset : offset+length],
				Text:    text,
			}
			if !yield(addr, lst) {
				return
			}
			offset += length
		}
	}
}
