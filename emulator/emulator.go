// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"sync"

	"github.com/ezrec/umpk80/bus"
	"github.com/ezrec/umpk80/cpu"
	"github.com/ezrec/umpk80/internal"
	"github.com/ezrec/umpk80/io"
)

// Port wiring of the board.
const (
	PORT_SPEAKER  = 0x04 // Speaker latch, output only.
	PORT_IO       = 0x05 // User IO register.
	PORT_KEYBOARD = 0x06 // Keyboard row, input.
	PORT_DISPLAY  = 0x06 // Display segments, output.
	PORT_SCAN     = 0x07 // Digit and row select.
	PORT_STEP     = 0x0e // Single step latch.

	STOP_RST = 1 // Restart vector of the monitor break.
)

var _emulator_defines = map[string]string{
	"PORT_SPEAKER":  fmt.Sprintf("0x%02x", PORT_SPEAKER),
	"PORT_IO":       fmt.Sprintf("0x%02x", PORT_IO),
	"PORT_KEYBOARD": fmt.Sprintf("0x%02x", PORT_KEYBOARD),
	"PORT_DISPLAY":  fmt.Sprintf("0x%02x", PORT_DISPLAY),
	"PORT_SCAN":     fmt.Sprintf("0x%02x", PORT_SCAN),
	"PORT_STEP":     fmt.Sprintf("0x%02x", PORT_STEP),
	"SAVPC":         fmt.Sprintf("0x%04x", SAVPC),
}

// Emulator is a UMPK-80 board: CPU + bus + display + keyboard.
//
// All methods are safe for concurrent use. Each call observes the board
// between two instructions.
type Emulator struct {
	Verbose bool         // If set, enables verbose logging.
	Program *cpu.Program // Listing of the loaded user program, if any.

	mutex  sync.Mutex
	closed bool

	board *bus.Bus
	core  *cpu.Cpu

	display  io.Display
	scan     *io.ScanRegister
	keyboard io.Keyboard
	step     io.StepLatch
}

// NewEmulator creates a new emulator, in its power-on state.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		board: bus.NewBus(),
	}

	emu.core = cpu.NewCpu(emu.board)
	emu.display.Reset()
	emu.keyboard.Reset()
	emu.scan = io.NewScanRegister(&emu.display)
	emu.keyboard.Select = &emu.scan.Register

	emu.board.BindOut(PORT_DISPLAY, &emu.display)
	emu.board.BindOut(PORT_SCAN, emu.scan)
	emu.board.BindIn(PORT_KEYBOARD, &emu.keyboard)
	emu.board.BindOut(PORT_STEP, &emu.step)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.board.Defines(),
		emu.core.Defines(),
	)
}

// Close the emulator. Later calls fail with ErrClosed, or return zero
// values.
func (emu *Emulator) Close() (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	emu.closed = true
	emu.Program = nil

	return
}

// LoadOS loads a firmware image into ROM.
func (emu *Emulator) LoadOS(image []byte) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	err = emu.board.LoadOS(image)
	return
}

// LoadProgram loads a user program into RAM.
func (emu *Emulator) LoadProgram(data []byte, address uint16) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	err = emu.board.LoadProgram(data, address)
	return
}

// LoadListing loads an assembled user program into RAM, and keeps its
// listing for runtime error locations.
func (emu *Emulator) LoadListing(prog *cpu.Program) (base uint16, err error) {
	base = bus.RAM_BASE
	first := true
	for addr := range prog.Codes() {
		if first || addr < base {
			base = addr
			first = false
		}
	}

	err = emu.LoadProgram(prog.Binary(base), base)
	if err != nil {
		return
	}

	emu.mutex.Lock()
	emu.Program = prog
	emu.mutex.Unlock()

	return
}

// lineNo returns the listing line of an address.
func (emu *Emulator) lineNo(addr uint16) int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(addr)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick executes a single instruction.
// done is set when the CPU is no longer running.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	done, err = emu.tick()
	return
}

func (emu *Emulator) tick() (done bool, err error) {
	core := emu.core
	core.Verbose = emu.Verbose

	if core.State == cpu.STOPPED {
		done = true
		return
	}

	pc := core.PC
	cycles := core.Cycles

	err = core.Step()
	if err != nil {
		err = &ErrRuntime{Address: pc, LineNo: emu.lineNo(pc), Err: err}
		done = true
		return
	}

	if core.Cycles != cycles && emu.step.Retire() {
		if emu.Verbose {
			log.Printf("emulator: step break at %04x", core.PC)
		}
		core.Interrupt(STOP_RST, false)
	}

	emu.display.Advance()

	done = core.State != cpu.RUNNING
	return
}

// Run ticks the emulator until ticks instructions have executed, the CPU
// stops running, or the context is cancelled. A ticks value of zero or
// less runs without limit.
func (emu *Emulator) Run(ctx context.Context, ticks int) (count int, err error) {
	for ticks <= 0 || count < ticks {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		count++
		if done {
			return
		}
	}

	return
}

// Stop stops the CPU. Ticks do nothing until a Restart.
func (emu *Emulator) Stop() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: stop")
	}

	emu.core.State = cpu.STOPPED
}

// Restart resets the CPU to its power-on state and releases the keypad.
// Memory is preserved.
func (emu *Emulator) Restart() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.restart()
}

func (emu *Emulator) restart() {
	if emu.Verbose {
		log.Printf("emulator: restart")
	}

	emu.core.Verbose = emu.Verbose
	emu.core.Reset()
	emu.step.Reset()
	emu.keyboard.Reset()
}

// State returns the CPU run state.
func (emu *Emulator) State() (state cpu.RunState) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		state = cpu.STOPPED
		return
	}

	state = emu.core.State
	return
}

// SetUndocumented enables execution of the undocumented 8080 opcodes.
func (emu *Emulator) SetUndocumented(enable bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.core.Undocumented = enable
}

// PressKey presses a key. KEY_R restarts the CPU, KEY_ST requests the
// monitor break; all other keys go to the matrix.
func (emu *Emulator) PressKey(key io.Key) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		err = ErrClosed
		return
	}

	switch key {
	case io.KEY_R:
		emu.restart()
	case io.KEY_ST:
		emu.core.Interrupt(STOP_RST, false)
	default:
		err = emu.keyboard.Press(key)
	}

	return
}

// ReleaseKey releases the matrix key.
func (emu *Emulator) ReleaseKey() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.keyboard.Release()
}

// KeyPressed returns true if key is the held matrix key.
func (emu *Emulator) KeyPressed(key io.Key) (pressed bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	active, ok := emu.keyboard.Active()
	pressed = ok && active == key
	return
}

// PortIn reads a port as the CPU would.
func (emu *Emulator) PortIn(port uint8) (data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	data = emu.board.PortIn(port)
	return
}

// PortOut writes a port as the CPU would.
func (emu *Emulator) PortOut(port uint8, data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.board.PortOut(port, data)
}

// SetInput sets the value the CPU reads from an unbound port, such as
// PORT_IO.
func (emu *Emulator) SetInput(port uint8, data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.board.SetInput(port, data)
}

// Input returns the host input latch of a port.
func (emu *Emulator) Input(port uint8) (data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	data = emu.board.Input(port)
	return
}

// Output returns the last value the CPU wrote to a port.
func (emu *Emulator) Output(port uint8) (data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	data = emu.board.Output(port)
	return
}

// DisplayDigit returns the segment pattern of a digit, 0 being the
// leftmost. Out of range digits are blank.
func (emu *Emulator) DisplayDigit(index int) (pattern byte) {
	if index < 0 || index >= io.DISPLAY_DIGITS {
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	pattern = emu.display.Digit(index)
	return
}

// DisplayDigits returns all segment patterns, left to right.
func (emu *Emulator) DisplayDigits() (digits [io.DISPLAY_DIGITS]byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	digits = emu.display.Digits()
	return
}

// DisplayLit returns true while the firmware keeps refreshing the display.
func (emu *Emulator) DisplayLit() (lit bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	lit = emu.display.Lit()
	return
}

// ProgramCounter returns the CPU program counter.
func (emu *Emulator) ProgramCounter() (pc uint16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	pc = emu.core.PC
	return
}

// SetProgramCounter sets the CPU program counter.
func (emu *Emulator) SetProgramCounter(pc uint16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.core.PC = pc
}

// StackPointer returns the CPU stack pointer.
func (emu *Emulator) StackPointer() (sp uint16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	sp = emu.core.SP
	return
}

// SetStackPointer sets the CPU stack pointer.
func (emu *Emulator) SetStackPointer(sp uint16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.core.SP = sp
}

// Snapshot returns a consistent copy of the CPU registers.
func (emu *Emulator) Snapshot() (regs cpu.Registers) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	regs = emu.core.Snapshot()
	return
}

// String returns the CPU state.
func (emu *Emulator) String() (text string) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	text = emu.core.String()
	return
}

// Jump sets the program counter, as a JMP would.
func (emu *Emulator) Jump(addr uint16) {
	emu.SetProgramCounter(addr)
}

// Call pushes the program counter and jumps, as a CALL would.
func (emu *Emulator) Call(addr uint16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.core.Push(emu.core.PC)
	emu.core.PC = addr
}

// Interrupt requests an RST interrupt, serviced before the next
// instruction. Maskable requests wait for EI.
func (emu *Emulator) Interrupt(rst byte, maskable bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.core.Interrupt(rst, maskable)
}

// MemoryRead reads a byte of memory.
func (emu *Emulator) MemoryRead(addr uint16) (data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	data = emu.board.Read(addr)
	return
}

// MemoryWrite writes a byte of memory, as the CPU would.
// Writes to ROM are ignored.
func (emu *Emulator) MemoryWrite(addr uint16, data byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	emu.board.Write(addr, data)
}

// Memory returns a copy of the board memory.
func (emu *Emulator) Memory() (memory [bus.MEMORY_SIZE]byte) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.closed {
		return
	}

	memory = emu.board.Memory
	return
}
