// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package bus implements the UMPK-80 system bus: the board memory map and
// the 8080 port address space with its attached devices.
//
// The board decodes only the low 12 address lines, so the 4 KiB of
// physical memory (2 KiB ROM followed by 2 KiB RAM) appears sixteen times
// across the 64 KiB address space. Ports are a separate 256 entry space
// and never alias memory.
package bus

import (
	"fmt"
	"iter"
	"maps"
)

const (
	MEMORY_SIZE  = 0x1000                 // Physical memory size.
	ADDRESS_MASK = MEMORY_SIZE - 1        // Decoded address lines.
	ROM_BASE     = 0x0000                 // Firmware base address.
	ROM_SIZE     = 0x0800                 // Firmware region size.
	RAM_BASE     = ROM_BASE + ROM_SIZE    // User RAM base address.
	RAM_SIZE     = MEMORY_SIZE - RAM_BASE // User RAM size.
	PORTS_COUNT  = 256                    // Size of the port address space.
	PORT_IDLE    = 0xff                   // Power-on value of the host input latches.
)

var _bus_defines = map[string]string{
	"ROM_BASE": fmt.Sprintf("0x%04x", ROM_BASE),
	"ROM_SIZE": fmt.Sprintf("0x%04x", ROM_SIZE),
	"RAM_BASE": fmt.Sprintf("0x%04x", RAM_BASE),
	"RAM_SIZE": fmt.Sprintf("0x%04x", RAM_SIZE),
	"RAM_TOP":  fmt.Sprintf("0x%04x", RAM_BASE+RAM_SIZE),
}

// Region identifies the backing store of a decoded address.
type Region int

//go:generate go tool stringer -linecomment -type=Region
const (
	REGION_ROM = Region(0) // rom
	REGION_RAM = Region(1) // ram
)

// Reader is a device that answers CPU port reads.
type Reader interface {
	PortRead() byte
}

// Writer is a device that accepts CPU port writes.
type Writer interface {
	PortWrite(data byte)
}

// Bus is the memory and port address decoder of the board.
type Bus struct {
	Memory [MEMORY_SIZE]byte // Physical memory, ROM then RAM.

	in  [PORTS_COUNT]Reader
	out [PORTS_COUNT]Writer

	input  [PORTS_COUNT]byte // Host driven values for unbound input ports.
	output [PORTS_COUNT]byte // Last value written by the CPU to each port.
}

// NewBus creates a bus with cleared memory and idle port latches.
func NewBus() (bus *Bus) {
	bus = &Bus{}
	bus.ResetPorts()
	return
}

// Defines returns an iterator over the memory map symbols.
func (bus *Bus) Defines() iter.Seq2[string, string] {
	return maps.All(_bus_defines)
}

// ResetPorts restores the host port latches to their power-on state.
// Device bindings and memory are not touched.
func (bus *Bus) ResetPorts() {
	for n := range bus.input {
		bus.input[n] = PORT_IDLE
	}
	clear(bus.output[:])
}

// Region decodes an address to its backing region.
func (bus *Bus) Region(addr uint16) Region {
	if int(addr&ADDRESS_MASK) < RAM_BASE {
		return REGION_ROM
	}
	return REGION_RAM
}

// Read reads a byte of memory.
func (bus *Bus) Read(addr uint16) byte {
	return bus.Memory[addr&ADDRESS_MASK]
}

// Write writes a byte of memory. Writes to ROM are silently ignored.
func (bus *Bus) Write(addr uint16, data byte) {
	if bus.Region(addr) == REGION_ROM {
		return
	}
	bus.Memory[addr&ADDRESS_MASK] = data
}

// Poke writes a byte of memory, ignoring ROM protection.
func (bus *Bus) Poke(addr uint16, data byte) {
	bus.Memory[addr&ADDRESS_MASK] = data
}

// LoadOS copies a firmware image into ROM, starting at ROM_BASE.
// The remainder of ROM is cleared. If the image does not fit, memory is
// left untouched and an error wrapping ErrImageTooLarge is returned.
func (bus *Bus) LoadOS(image []byte) (err error) {
	if len(image) > ROM_SIZE {
		err = &ErrLoad{Address: ROM_BASE, Size: len(image), Limit: ROM_SIZE, Err: ErrImageTooLarge}
		return
	}

	rom := bus.Memory[ROM_BASE : ROM_BASE+ROM_SIZE]
	n := copy(rom, image)
	clear(rom[n:])

	return
}

// LoadProgram copies a user program into RAM at address.
// The whole program must land inside RAM; otherwise memory is left
// untouched.
func (bus *Bus) LoadProgram(data []byte, address uint16) (err error) {
	base := int(address & ADDRESS_MASK)
	if base < RAM_BASE {
		err = &ErrLoad{Address: address, Size: len(data), Limit: 0, Err: ErrAddressOutOfRange}
		return
	}

	limit := RAM_BASE + RAM_SIZE - base
	if len(data) > limit {
		err = &ErrLoad{Address: address, Size: len(data), Limit: limit, Err: ErrImageTooLarge}
		return
	}

	copy(bus.Memory[base:], data)

	return
}

// BindIn attaches a device to answer CPU reads of a port.
// A nil device unbinds the port.
func (bus *Bus) BindIn(port uint8, device Reader) {
	bus.in[port] = device
}

// BindOut attaches a device to receive CPU writes to a port.
// A nil device unbinds the port.
func (bus *Bus) BindOut(port uint8, device Writer) {
	bus.out[port] = device
}

// PortIn performs a CPU port read.
// Bound ports are answered by their device, all others by the host
// input latch.
func (bus *Bus) PortIn(port uint8) byte {
	device := bus.in[port]
	if device != nil {
		return device.PortRead()
	}

	return bus.input[port]
}

// PortOut performs a CPU port write. The value is latched for the host,
// then forwarded to the bound device, if any.
func (bus *Bus) PortOut(port uint8, data byte) {
	bus.output[port] = data

	device := bus.out[port]
	if device != nil {
		device.PortWrite(data)
	}
}

// SetInput sets the host input latch of a port.
func (bus *Bus) SetInput(port uint8, data byte) {
	bus.input[port] = data
}

// Input returns the host input latch of a port.
func (bus *Bus) Input(port uint8) byte {
	return bus.input[port]
}

// Output returns the last value the CPU wrote to a port.
func (bus *Bus) Output(port uint8) byte {
	return bus.output[port]
}

// Port checks that value is a valid port number.
func Port(value int) (port uint8, err error) {
	if value < 0 || value >= PORTS_COUNT {
		err = fmt.Errorf("%w: %v", ErrPortOutOfRange, value)
		return
	}

	port = uint8(value)
	return
}
