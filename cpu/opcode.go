package cpu

import (
	"fmt"
)

// Operand is the kind of inline operand following an opcode.
type Operand int

//go:generate go tool stringer -linecomment -type=Operand
const (
	OPERAND_NONE = Operand(0) // none
	OPERAND_D8   = Operand(1) // d8
	OPERAND_D16  = Operand(2) // d16
	OPERAND_ADDR = Operand(3) // addr
	OPERAND_PORT = Operand(4) // port
)

// Length returns the length of an instruction carrying the operand.
func (op Operand) Length() int {
	switch op {
	case OPERAND_D8, OPERAND_PORT:
		return 2
	case OPERAND_D16, OPERAND_ADDR:
		return 3
	default:
		return 1
	}
}

// Register codes, as encoded in the opcode bits.
// Code 6 selects the memory operand M; its register slot holds the flags.
const (
	REG_B = 0 // B
	REG_C = 1 // C
	REG_D = 2 // D
	REG_E = 3 // E
	REG_H = 4 // H
	REG_L = 5 // L
	REG_M = 6 // Memory at (HL)
	REG_F = 6 // Flags
	REG_A = 7 // Accumulator
)

// Register pair codes, as encoded in the opcode bits.
const (
	PAIR_BC = 0 // BC
	PAIR_DE = 1 // DE
	PAIR_HL = 2 // HL
	PAIR_SP = 3 // SP, or PSW for PUSH and POP
)

// ALU operation codes, as encoded in the opcode bits.
const (
	ALU_ADD = 0
	ALU_ADC = 1
	ALU_SUB = 2
	ALU_SBB = 3
	ALU_ANA = 4
	ALU_XRA = 5
	ALU_ORA = 6
	ALU_CMP = 7
)

var (
	regName    = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}
	pairName   = [4]string{"B", "D", "H", "SP"}
	stackName  = [4]string{"B", "D", "H", "PSW"}
	condName   = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	aluName    = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
	aluImmName = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}
	rotateName = [8]string{"RLC", "RRC", "RAL", "RAR", "DAA", "CMA", "STC", "CMC"}
	ioName     = [8]string{"JMP", "JMP", "OUT", "IN", "XTHL", "XCHG", "DI", "EI"}
	memName    = [8]string{"STAX B", "LDAX B", "STAX D", "LDAX D", "SHLD", "LHLD", "STA", "LDA"}
	memOperand = [8]Operand{OPERAND_NONE, OPERAND_NONE, OPERAND_NONE, OPERAND_NONE, OPERAND_ADDR, OPERAND_ADDR, OPERAND_ADDR, OPERAND_ADDR}
	memCycles  = [8]int{7, 7, 7, 7, 16, 16, 13, 13}
)

// Instruction describes one opcode.
type Instruction struct {
	Mnemonic     string  // Mnemonic with its register arguments, ie "MOV B,C".
	Operand      Operand // Inline operand kind.
	Cycles       int     // T-states, or T-states when a conditional CALL/RET is not taken.
	CyclesTaken  int     // T-states when a conditional CALL/RET is taken.
	Undocumented bool    // Set for the undocumented aliases.
}

// Length returns the instruction length in bytes.
func (ins *Instruction) Length() int {
	return ins.Operand.Length()
}

// Name returns the bare mnemonic, without register arguments.
func (ins *Instruction) Name() string {
	for n, c := range ins.Mnemonic {
		if c == ' ' {
			return ins.Mnemonic[:n]
		}
	}
	return ins.Mnemonic
}

// Instructions is the 8080 opcode table.
var Instructions = makeInstructions()

func makeInstructions() (table [256]Instruction) {
	for n := range len(table) {
		table[n] = decodeInstruction(byte(n))
	}
	return
}

func decodeInstruction(op byte) (ins Instruction) {
	dst := (op >> 3) & 7
	src := op & 7
	pair := (op >> 4) & 3

	switch op >> 6 {
	case 0b00:
		switch src {
		case 0:
			ins = Instruction{Mnemonic: "NOP", Cycles: 4, Undocumented: op != 0x00}
		case 1:
			if op&0x08 == 0 {
				ins = Instruction{Mnemonic: "LXI " + pairName[pair], Operand: OPERAND_D16, Cycles: 10}
			} else {
				ins = Instruction{Mnemonic: "DAD " + pairName[pair], Cycles: 10}
			}
		case 2:
			ins = Instruction{Mnemonic: memName[dst], Operand: memOperand[dst], Cycles: memCycles[dst]}
		case 3:
			if op&0x08 == 0 {
				ins = Instruction{Mnemonic: "INX " + pairName[pair], Cycles: 5}
			} else {
				ins = Instruction{Mnemonic: "DCX " + pairName[pair], Cycles: 5}
			}
		case 4, 5:
			ins = Instruction{Mnemonic: "INR " + regName[dst], Cycles: 5}
			if src == 5 {
				ins.Mnemonic = "DCR " + regName[dst]
			}
			if dst == REG_M {
				ins.Cycles = 10
			}
		case 6:
			ins = Instruction{Mnemonic: "MVI " + regName[dst], Operand: OPERAND_D8, Cycles: 7}
			if dst == REG_M {
				ins.Cycles = 10
			}
		case 7:
			ins = Instruction{Mnemonic: rotateName[dst], Cycles: 4}
		}
	case 0b01:
		if op == 0x76 {
			ins = Instruction{Mnemonic: "HLT", Cycles: 7}
			break
		}
		ins = Instruction{Mnemonic: "MOV " + regName[dst] + "," + regName[src], Cycles: 5}
		if dst == REG_M || src == REG_M {
			ins.Cycles = 7
		}
	case 0b10:
		ins = Instruction{Mnemonic: aluName[dst] + " " + regName[src], Cycles: 4}
		if src == REG_M {
			ins.Cycles = 7
		}
	case 0b11:
		switch src {
		case 0:
			ins = Instruction{Mnemonic: "R" + condName[dst], Cycles: 5, CyclesTaken: 11}
		case 1:
			switch {
			case op&0x08 == 0:
				ins = Instruction{Mnemonic: "POP " + stackName[pair], Cycles: 10}
			case pair == 2:
				ins = Instruction{Mnemonic: "PCHL", Cycles: 5}
			case pair == 3:
				ins = Instruction{Mnemonic: "SPHL", Cycles: 5}
			default:
				ins = Instruction{Mnemonic: "RET", Cycles: 10, Undocumented: op != 0xc9}
			}
		case 2:
			ins = Instruction{Mnemonic: "J" + condName[dst], Operand: OPERAND_ADDR, Cycles: 10}
		case 3:
			ins = Instruction{Mnemonic: ioName[dst], Cycles: 4}
			switch dst {
			case 0, 1:
				ins.Operand = OPERAND_ADDR
				ins.Cycles = 10
				ins.Undocumented = dst == 1
			case 2, 3:
				ins.Operand = OPERAND_PORT
				ins.Cycles = 10
			case 4:
				ins.Cycles = 18
			}
		case 4:
			ins = Instruction{Mnemonic: "C" + condName[dst], Operand: OPERAND_ADDR, Cycles: 11, CyclesTaken: 17}
		case 5:
			if op&0x08 == 0 {
				ins = Instruction{Mnemonic: "PUSH " + stackName[pair], Cycles: 11}
			} else {
				ins = Instruction{Mnemonic: "CALL", Operand: OPERAND_ADDR, Cycles: 17, Undocumented: op != 0xcd}
			}
		case 6:
			ins = Instruction{Mnemonic: aluImmName[dst], Operand: OPERAND_D8, Cycles: 7}
		case 7:
			ins = Instruction{Mnemonic: fmt.Sprintf("RST %d", dst), Cycles: 11}
		}
	}

	return
}
