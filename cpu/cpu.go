// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math/bits"
)

// Flag register bits.
const (
	FLAG_CY = byte(1 << 0) // Carry
	FLAG_1  = byte(1 << 1) // Always set in the PSW.
	FLAG_P  = byte(1 << 2) // Parity (even)
	FLAG_AC = byte(1 << 4) // Auxiliary carry
	FLAG_Z  = byte(1 << 6) // Zero
	FLAG_S  = byte(1 << 7) // Sign

	FLAG_MASK = FLAG_S | FLAG_Z | FLAG_AC | FLAG_P | FLAG_CY // Flags held by the CPU.
)

const (
	RESET_SP = 0xffff // Stack pointer at power-on.
	RESET_PC = 0x0000 // Program counter at power-on.

	RST_CYCLES = 11 // T-states to service an interrupt.
)

var _cpu_defines = map[string]string{
	"FLAG_CY": fmt.Sprintf("0x%02x", FLAG_CY),
	"FLAG_P":  fmt.Sprintf("0x%02x", FLAG_P),
	"FLAG_AC": fmt.Sprintf("0x%02x", FLAG_AC),
	"FLAG_Z":  fmt.Sprintf("0x%02x", FLAG_Z),
	"FLAG_S":  fmt.Sprintf("0x%02x", FLAG_S),
}

// RunState is the execution state of the CPU.
type RunState int

//go:generate go tool stringer -linecomment -type=RunState
const (
	RUNNING = RunState(0) // running
	HALTED  = RunState(1) // halted
	STOPPED = RunState(2) // stopped
)

// Bus is the memory and port space seen by the CPU.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, data byte)
	PortIn(port uint8) byte
	PortOut(port uint8, data byte)
}

// Registers is a snapshot of the CPU registers.
type Registers struct {
	A, B, C, D, E, H, L byte
	Flags               byte
	SP, PC              uint16
	Inte                bool
	State               RunState
	Cycles              uint64
}

// PSW returns the processor status word, as pushed by PUSH PSW.
func (regs Registers) PSW() uint16 {
	return uint16(regs.A)<<8 | uint16(psw(regs.Flags))
}

type request struct {
	rst       byte
	maskable  bool
	requested bool
}

// Cpu is the simulation context for the 8080.
type Cpu struct {
	Verbose      bool // Set to enable verbose logging.
	Undocumented bool // Set to execute the undocumented opcode aliases.

	Bus Bus // Memory and ports.

	Register [8]byte  // Register file, indexed by REG_x.
	SP       uint16   // Stack pointer.
	PC       uint16   // Program counter.
	Inte     bool     // Interrupt enable.
	State    RunState // Execution state.

	Cycles uint64 // T-states since reset.

	fault   bool    // Halted on an illegal opcode.
	eiDelay bool    // EI takes effect after the next instruction.
	pending request // Latched interrupt request.
}

// NewCpu creates a new CPU attached to a bus.
func NewCpu(bus Bus) (cpu *Cpu) {
	cpu = &Cpu{
		Bus: bus,
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU to its power-on state.
// - Clears the registers and flags.
// - Sets SP to RESET_SP, PC to RESET_PC.
// - Disables interrupts and drops any pending request.
// - Zeros the cycle counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Register[REG_F] = FLAG_1
	cpu.SP = RESET_SP
	cpu.PC = RESET_PC
	cpu.Inte = false
	cpu.State = RUNNING
	cpu.Cycles = 0
	cpu.fault = false
	cpu.eiDelay = false
	cpu.pending = request{}
}

// Snapshot returns a copy of the registers.
func (cpu *Cpu) Snapshot() (regs Registers) {
	regs = Registers{
		A:      cpu.Register[REG_A],
		B:      cpu.Register[REG_B],
		C:      cpu.Register[REG_C],
		D:      cpu.Register[REG_D],
		E:      cpu.Register[REG_E],
		H:      cpu.Register[REG_H],
		L:      cpu.Register[REG_L],
		Flags:  psw(cpu.Register[REG_F]),
		SP:     cpu.SP,
		PC:     cpu.PC,
		Inte:   cpu.Inte,
		State:  cpu.State,
		Cycles: cpu.Cycles,
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	flags := []struct {
		mask byte
		name string
	}{
		{FLAG_S, "S"}, {FLAG_Z, "Z"}, {FLAG_AC, "AC"}, {FLAG_P, "P"}, {FLAG_CY, "CY"},
	}

	var strflags string
	for _, flag := range flags {
		if cpu.flag(flag.mask) {
			strflags += flag.name
		} else {
			strflags += "-"
		}
	}

	text = fmt.Sprintf("   pc: %04X\n   sp: %04X\n  psw: %02X%02X %v\n", cpu.PC, cpu.SP,
		cpu.Register[REG_A], psw(cpu.Register[REG_F]), strflags)
	for _, pair := range []byte{PAIR_BC, PAIR_DE, PAIR_HL} {
		text += fmt.Sprintf("% 5s: %04X\n", pairName[pair]+regName[pair*2+1], cpu.pair(pair))
	}
	text += fmt.Sprintf("state: %v\n", cpu.State)

	return
}

// Interrupt latches an interrupt request for RST vector rst (0-7).
// The request is serviced at the start of the next Step: at once if
// not maskable, otherwise as soon as interrupts are enabled. A newer
// request replaces an older one, except that a maskable request never
// replaces a non-maskable one.
func (cpu *Cpu) Interrupt(rst byte, maskable bool) {
	if cpu.pending.requested && !cpu.pending.maskable && maskable {
		return
	}

	cpu.pending = request{
		rst:       rst & 7,
		maskable:  maskable,
		requested: true,
	}
}

// Pending returns true if an interrupt request is latched.
func (cpu *Cpu) Pending() bool {
	return cpu.pending.requested
}

// Faulted returns true if the CPU halted on an illegal opcode.
func (cpu *Cpu) Faulted() bool {
	return cpu.fault
}

// service runs the RST instruction of a pending interrupt.
func (cpu *Cpu) service() (ok bool) {
	if !cpu.pending.requested || cpu.fault || cpu.State == STOPPED {
		return
	}

	if cpu.pending.maskable && (!cpu.Inte || cpu.eiDelay) {
		return
	}

	rst := cpu.pending.rst
	cpu.pending = request{}

	if cpu.Verbose {
		log.Printf("%04x: interrupt RST %d", cpu.PC, rst)
	}

	cpu.Inte = false
	cpu.State = RUNNING
	cpu.push(cpu.PC)
	cpu.PC = uint16(rst) * 8
	cpu.Cycles += RST_CYCLES

	return true
}

// Step executes a single instruction, or services a pending interrupt.
// A halted or stopped CPU does nothing.
func (cpu *Cpu) Step() (err error) {
	if cpu.service() {
		return
	}

	if cpu.State != RUNNING {
		return
	}

	pc := cpu.PC
	op := cpu.Bus.Read(pc)
	ins := &Instructions[op]

	if ins.Undocumented && !cpu.Undocumented {
		cpu.fault = true
		cpu.State = HALTED
		err = ErrOpcode{Opcode: op, Address: pc}
		if cpu.Verbose {
			log.Printf("%04x: %v", pc, err)
		}
		return
	}

	if cpu.Verbose {
		code := []byte{op, cpu.Bus.Read(pc + 1), cpu.Bus.Read(pc + 2)}
		text, _ := Disassemble(code[:ins.Length()])
		log.Printf("%04x: %v", pc, text)
	}

	cpu.PC = pc + 1
	cpu.eiDelay = false
	taken := cpu.execute(op)

	if taken && ins.CyclesTaken != 0 {
		cpu.Cycles += uint64(ins.CyclesTaken)
	} else {
		cpu.Cycles += uint64(ins.Cycles)
	}

	return
}

// fetch8 fetches the next instruction byte.
func (cpu *Cpu) fetch8() (value byte) {
	value = cpu.Bus.Read(cpu.PC)
	cpu.PC++
	return
}

// fetch16 fetches the next little-endian instruction word.
func (cpu *Cpu) fetch16() (value uint16) {
	lo := cpu.fetch8()
	hi := cpu.fetch8()
	value = uint16(hi)<<8 | uint16(lo)
	return
}

func (cpu *Cpu) read16(addr uint16) uint16 {
	return uint16(cpu.Bus.Read(addr+1))<<8 | uint16(cpu.Bus.Read(addr))
}

func (cpu *Cpu) write16(addr uint16, value uint16) {
	cpu.Bus.Write(addr, byte(value))
	cpu.Bus.Write(addr+1, byte(value>>8))
}

// reg returns a register, or memory at HL for REG_M.
func (cpu *Cpu) reg(code byte) byte {
	if code == REG_M {
		return cpu.Bus.Read(cpu.pair(PAIR_HL))
	}
	return cpu.Register[code]
}

func (cpu *Cpu) setReg(code byte, value byte) {
	if code == REG_M {
		cpu.Bus.Write(cpu.pair(PAIR_HL), value)
		return
	}
	cpu.Register[code] = value
}

// pair returns a register pair. PAIR_SP selects the stack pointer.
func (cpu *Cpu) pair(code byte) uint16 {
	if code == PAIR_SP {
		return cpu.SP
	}
	return uint16(cpu.Register[code*2])<<8 | uint16(cpu.Register[code*2+1])
}

func (cpu *Cpu) setPair(code byte, value uint16) {
	if code == PAIR_SP {
		cpu.SP = value
		return
	}
	cpu.Register[code*2] = byte(value >> 8)
	cpu.Register[code*2+1] = byte(value)
}

// psw normalizes a flag byte as the 8080 stores it.
func psw(flags byte) byte {
	return (flags & FLAG_MASK) | FLAG_1
}

func (cpu *Cpu) flag(mask byte) bool {
	return cpu.Register[REG_F]&mask != 0
}

func (cpu *Cpu) setFlag(mask byte, on bool) {
	if on {
		cpu.Register[REG_F] |= mask
	} else {
		cpu.Register[REG_F] &^= mask
	}
}

// setSZP sets the sign, zero, and parity flags from a result.
func (cpu *Cpu) setSZP(value byte) {
	cpu.setFlag(FLAG_S, value&0x80 != 0)
	cpu.setFlag(FLAG_Z, value == 0)
	cpu.setFlag(FLAG_P, bits.OnesCount8(value)%2 == 0)
}

// condition evaluates a condition code.
func (cpu *Cpu) condition(code byte) (ok bool) {
	switch code >> 1 {
	case 0:
		ok = cpu.flag(FLAG_Z)
	case 1:
		ok = cpu.flag(FLAG_CY)
	case 2:
		ok = cpu.flag(FLAG_P)
	case 3:
		ok = cpu.flag(FLAG_S)
	}

	if code&1 == 0 {
		ok = !ok
	}

	return
}

// alu performs an accumulator operation.
func (cpu *Cpu) alu(op byte, value byte) {
	a := cpu.Register[REG_A]
	var carry byte
	if cpu.flag(FLAG_CY) {
		carry = 1
	}

	var result byte
	switch op {
	case ALU_ADD, ALU_ADC:
		if op == ALU_ADD {
			carry = 0
		}
		sum := uint16(a) + uint16(value) + uint16(carry)
		cpu.setFlag(FLAG_AC, (a&0xf)+(value&0xf)+carry > 0xf)
		cpu.setFlag(FLAG_CY, sum > 0xff)
		result = byte(sum)
	case ALU_SUB, ALU_SBB, ALU_CMP:
		// Two's complement addition, with CY as the inverted carry out.
		if op != ALU_SBB {
			carry = 0
		}
		value = ^value
		sum := uint16(a) + uint16(value) + uint16(1-carry)
		cpu.setFlag(FLAG_AC, (a&0xf)+(value&0xf)+(1-carry) > 0xf)
		cpu.setFlag(FLAG_CY, sum <= 0xff)
		result = byte(sum)
	case ALU_ANA:
		result = a & value
		cpu.setFlag(FLAG_AC, (a|value)&0x08 != 0)
		cpu.setFlag(FLAG_CY, false)
	case ALU_XRA:
		result = a ^ value
		cpu.setFlag(FLAG_AC, false)
		cpu.setFlag(FLAG_CY, false)
	case ALU_ORA:
		result = a | value
		cpu.setFlag(FLAG_AC, false)
		cpu.setFlag(FLAG_CY, false)
	}

	cpu.setSZP(result)
	if op != ALU_CMP {
		cpu.Register[REG_A] = result
	}
}

// daa decimal adjusts the accumulator.
func (cpu *Cpu) daa() {
	a := cpu.Register[REG_A]
	lo := a & 0xf
	hi := a >> 4
	carry := cpu.flag(FLAG_CY)

	var correction byte
	if lo > 9 || cpu.flag(FLAG_AC) {
		correction |= 0x06
	}
	if hi > 9 || carry || (hi >= 9 && lo > 9) {
		correction |= 0x60
		carry = true
	}

	cpu.setFlag(FLAG_AC, lo+(correction&0xf) > 0xf)
	a += correction
	cpu.setFlag(FLAG_CY, carry)
	cpu.setSZP(a)
	cpu.Register[REG_A] = a
}

// rotate performs the accumulator rotates and the CMA/STC/CMC/DAA group.
func (cpu *Cpu) rotate(code byte) {
	a := cpu.Register[REG_A]
	carry := cpu.flag(FLAG_CY)

	switch code {
	case 0: // RLC
		cpu.setFlag(FLAG_CY, a&0x80 != 0)
		a = bits.RotateLeft8(a, 1)
	case 1: // RRC
		cpu.setFlag(FLAG_CY, a&0x01 != 0)
		a = bits.RotateLeft8(a, -1)
	case 2: // RAL
		cpu.setFlag(FLAG_CY, a&0x80 != 0)
		a <<= 1
		if carry {
			a |= 0x01
		}
	case 3: // RAR
		cpu.setFlag(FLAG_CY, a&0x01 != 0)
		a >>= 1
		if carry {
			a |= 0x80
		}
	case 4:
		cpu.daa()
		return
	case 5: // CMA
		a = ^a
	case 6: // STC
		cpu.setFlag(FLAG_CY, true)
	case 7: // CMC
		cpu.setFlag(FLAG_CY, !carry)
	}

	cpu.Register[REG_A] = a
}

// execute runs a fetched opcode, with PC past the opcode byte.
// Returns true if a conditional CALL or RET was taken.
func (cpu *Cpu) execute(op byte) (taken bool) {
	dst := (op >> 3) & 7
	src := op & 7
	pair := (op >> 4) & 3

	switch op >> 6 {
	case 0b00:
		switch src {
		case 0:
			// NOP
		case 1:
			if op&0x08 == 0 {
				cpu.setPair(pair, cpu.fetch16())
			} else {
				hl := uint32(cpu.pair(PAIR_HL)) + uint32(cpu.pair(pair))
				cpu.setFlag(FLAG_CY, hl > 0xffff)
				cpu.setPair(PAIR_HL, uint16(hl))
			}
		case 2:
			switch dst {
			case 0, 2: // STAX
				cpu.Bus.Write(cpu.pair(dst>>1), cpu.Register[REG_A])
			case 1, 3: // LDAX
				cpu.Register[REG_A] = cpu.Bus.Read(cpu.pair(dst >> 1))
			case 4: // SHLD
				cpu.write16(cpu.fetch16(), cpu.pair(PAIR_HL))
			case 5: // LHLD
				cpu.setPair(PAIR_HL, cpu.read16(cpu.fetch16()))
			case 6: // STA
				cpu.Bus.Write(cpu.fetch16(), cpu.Register[REG_A])
			case 7: // LDA
				cpu.Register[REG_A] = cpu.Bus.Read(cpu.fetch16())
			}
		case 3:
			if op&0x08 == 0 {
				cpu.setPair(pair, cpu.pair(pair)+1)
			} else {
				cpu.setPair(pair, cpu.pair(pair)-1)
			}
		case 4: // INR
			value := cpu.reg(dst) + 1
			cpu.setFlag(FLAG_AC, value&0xf == 0)
			cpu.setSZP(value)
			cpu.setReg(dst, value)
		case 5: // DCR
			value := cpu.reg(dst) - 1
			cpu.setFlag(FLAG_AC, value&0xf != 0xf)
			cpu.setSZP(value)
			cpu.setReg(dst, value)
		case 6: // MVI
			cpu.setReg(dst, cpu.fetch8())
		case 7:
			cpu.rotate(dst)
		}
	case 0b01:
		if op == 0x76 {
			cpu.State = HALTED
			if cpu.Verbose {
				log.Printf("%04x: halted", cpu.PC-1)
			}
			return
		}
		cpu.setReg(dst, cpu.reg(src))
	case 0b10:
		cpu.alu(dst, cpu.reg(src))
	case 0b11:
		switch src {
		case 0: // Rcc
			if cpu.condition(dst) {
				cpu.PC = cpu.pop()
				taken = true
			}
		case 1:
			switch {
			case op&0x08 == 0:
				value := cpu.pop()
				if pair == PAIR_SP {
					cpu.Register[REG_A] = byte(value >> 8)
					cpu.Register[REG_F] = psw(byte(value))
				} else {
					cpu.setPair(pair, value)
				}
			case pair == 2: // PCHL
				cpu.PC = cpu.pair(PAIR_HL)
			case pair == 3: // SPHL
				cpu.SP = cpu.pair(PAIR_HL)
			default: // RET
				cpu.PC = cpu.pop()
			}
		case 2: // Jcc
			addr := cpu.fetch16()
			if cpu.condition(dst) {
				cpu.PC = addr
			}
		case 3:
			switch dst {
			case 0, 1: // JMP
				cpu.PC = cpu.fetch16()
			case 2: // OUT
				cpu.Bus.PortOut(cpu.fetch8(), cpu.Register[REG_A])
			case 3: // IN
				cpu.Register[REG_A] = cpu.Bus.PortIn(cpu.fetch8())
			case 4: // XTHL
				value := cpu.read16(cpu.SP)
				cpu.write16(cpu.SP, cpu.pair(PAIR_HL))
				cpu.setPair(PAIR_HL, value)
			case 5: // XCHG
				de := cpu.pair(PAIR_DE)
				cpu.setPair(PAIR_DE, cpu.pair(PAIR_HL))
				cpu.setPair(PAIR_HL, de)
			case 6: // DI
				cpu.Inte = false
			case 7: // EI
				cpu.Inte = true
				cpu.eiDelay = true
			}
		case 4: // Ccc
			addr := cpu.fetch16()
			if cpu.condition(dst) {
				cpu.push(cpu.PC)
				cpu.PC = addr
				taken = true
			}
		case 5:
			if op&0x08 == 0 {
				if pair == PAIR_SP {
					cpu.push(uint16(cpu.Register[REG_A])<<8 | uint16(psw(cpu.Register[REG_F])))
				} else {
					cpu.push(cpu.pair(pair))
				}
			} else { // CALL
				addr := cpu.fetch16()
				cpu.push(cpu.PC)
				cpu.PC = addr
			}
		case 6:
			cpu.alu(dst, cpu.fetch8())
		case 7: // RST
			cpu.push(cpu.PC)
			cpu.PC = uint16(dst) * 8
		}
	}

	return
}
