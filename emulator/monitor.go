// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
)

// SAVPC is the base of the monitor's register save area. On a break the
// monitor saves the user registers here, and restores them on resume.
const SAVPC = 0x0bdc

// Register is a byte of the monitor register save area.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REGISTER_PC_LOW  = Register(0)  // PCL
	REGISTER_PC_HIGH = Register(1)  // PCH
	REGISTER_SP_LOW  = Register(2)  // SPL
	REGISTER_SP_HIGH = Register(3)  // SPH
	REGISTER_L       = Register(4)  // L
	REGISTER_H       = Register(5)  // H
	REGISTER_E       = Register(6)  // E
	REGISTER_D       = Register(7)  // D
	REGISTER_C       = Register(8)  // C
	REGISTER_B       = Register(9)  // B
	REGISTER_PSW     = Register(10) // PSW
	REGISTER_A       = Register(11) // A
	REGISTER_M       = Register(12) // M
)

// RegisterPair is a word of the monitor register save area.
type RegisterPair int

//go:generate go tool stringer -linecomment -type=RegisterPair
const (
	PAIR_PC   = RegisterPair(0) // PC
	PAIR_SP   = RegisterPair(1) // SP
	PAIR_HL   = RegisterPair(2) // HL
	PAIR_DE   = RegisterPair(3) // DE
	PAIR_BC   = RegisterPair(4) // BC
	PAIR_PSWA = RegisterPair(5) // PSW
)

func (reg Register) valid() bool {
	return reg >= REGISTER_PC_LOW && reg <= REGISTER_M
}

func (pair RegisterPair) valid() bool {
	return pair >= PAIR_PC && pair <= PAIR_PSWA
}

func (pair RegisterPair) address() uint16 {
	return SAVPC + uint16(pair)*2
}

// monitorPair reads a saved register pair. Must be called with the lock held.
func (emu *Emulator) monitorPair(pair RegisterPair) uint16 {
	addr := pair.address()
	return uint16(emu.board.Read(addr+1))<<8 | uint16(emu.board.Read(addr))
}

// MonitorRegisterPair returns a register pair saved by the monitor.
func (emu *Emulator) MonitorRegisterPair(pair RegisterPair) (value uint16, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	if !pair.valid() {
		err = fmt.Errorf("%w: pair %d", ErrRegisterInvalid, int(pair))
		return
	}

	value = emu.monitorPair(pair)
	return
}

// SetMonitorRegisterPair changes a register pair saved by the monitor.
// The monitor loads it into the CPU when the user program resumes.
func (emu *Emulator) SetMonitorRegisterPair(pair RegisterPair, value uint16) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	if !pair.valid() {
		err = fmt.Errorf("%w: pair %d", ErrRegisterInvalid, int(pair))
		return
	}

	addr := pair.address()
	emu.board.Write(addr, byte(value))
	emu.board.Write(addr+1, byte(value>>8))

	return
}

// MonitorRegister returns a register saved by the monitor.
// REGISTER_M reads the memory addressed by the saved HL.
func (emu *Emulator) MonitorRegister(reg Register) (value byte, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	switch {
	case reg == REGISTER_M:
		value = emu.board.Read(emu.monitorPair(PAIR_HL))
	case reg.valid():
		value = emu.board.Read(SAVPC + uint16(reg))
	default:
		err = fmt.Errorf("%w: register %d", ErrRegisterInvalid, int(reg))
	}

	return
}

// SetMonitorRegister changes a register saved by the monitor.
// REGISTER_M writes the memory addressed by the saved HL.
func (emu *Emulator) SetMonitorRegister(reg Register, value byte) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	switch {
	case reg == REGISTER_M:
		emu.board.Write(emu.monitorPair(PAIR_HL), value)
	case reg.valid():
		emu.board.Write(SAVPC+uint16(reg), value)
	default:
		err = fmt.Errorf("%w: register %d", ErrRegisterInvalid, int(reg))
	}

	return
}
