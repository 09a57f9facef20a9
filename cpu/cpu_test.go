// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testBus is a flat 64K memory with latched ports.
type testBus struct {
	mem [0x10000]byte
	in  [256]byte
	out [256]byte

	writes []uint8 // Ports written, in order.
}

func (tb *testBus) Read(addr uint16) byte {
	return tb.mem[addr]
}

func (tb *testBus) Write(addr uint16, data byte) {
	tb.mem[addr] = data
}

func (tb *testBus) PortIn(port uint8) byte {
	return tb.in[port]
}

func (tb *testBus) PortOut(port uint8, data byte) {
	tb.out[port] = data
	tb.writes = append(tb.writes, port)
}

func newTestCpu(code ...byte) (cpu *Cpu, bus *testBus) {
	bus = &testBus{}
	copy(bus.mem[:], code)
	cpu = NewCpu(bus)
	cpu.SP = 0x1000
	return
}

func assemble(t *testing.T, program ...string) []byte {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog.Binary(0)
}

// runHalt steps until the CPU halts, or fails after limit steps.
func runHalt(t *testing.T, cpu *Cpu, limit int) {
	for range limit {
		err := cpu.Step()
		if err != nil {
			t.Fatal(err)
		}
		if cpu.State == HALTED {
			return
		}
	}
	t.Fatalf("no HLT after %v steps\n%v", limit, cpu)
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()
	cpu.Register[REG_A] = 0x12
	cpu.Inte = true
	cpu.Cycles = 100
	cpu.Interrupt(1, false)
	cpu.Reset()

	regs := cpu.Snapshot()
	assert.Equal(uint16(0xffff), regs.SP)
	assert.Equal(uint16(0x0000), regs.PC)
	assert.Equal(byte(0), regs.A)
	assert.Equal(FLAG_1, regs.Flags)
	assert.False(regs.Inte)
	assert.Equal(RUNNING, regs.State)
	assert.Equal(uint64(0), regs.Cycles)
	assert.False(cpu.Pending())
}

func TestCpu_Table(t *testing.T) {
	assert := assert.New(t)

	documented := 0
	for n := range Instructions {
		ins := &Instructions[n]
		if !ins.Undocumented {
			documented++
		}
		assert.NotEmpty(ins.Mnemonic, "0x%02x", n)
		assert.NotZero(ins.Cycles, "0x%02x", n)
	}
	assert.Equal(244, documented)

	assert.Equal("MOV B,C", Instructions[0x41].Mnemonic)
	assert.Equal("MVI M", Instructions[0x36].Mnemonic)
	assert.Equal(OPERAND_D8, Instructions[0x36].Operand)
	assert.Equal(10, Instructions[0x36].Cycles)
	assert.Equal("LXI SP", Instructions[0x31].Mnemonic)
	assert.Equal(3, Instructions[0x31].Length())
	assert.Equal("PUSH PSW", Instructions[0xf5].Mnemonic)
	assert.Equal("RST 7", Instructions[0xff].Mnemonic)
	assert.Equal("HLT", Instructions[0x76].Mnemonic)
	assert.Equal(OPERAND_PORT, Instructions[0xd3].Operand)
	assert.Equal("CNZ", Instructions[0xc4].Name())
	assert.Equal(17, Instructions[0xc4].CyclesTaken)
	assert.Equal(11, Instructions[0xc4].Cycles)

	for _, op := range []byte{0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38, 0xcb, 0xd9, 0xdd, 0xed, 0xfd} {
		assert.True(Instructions[op].Undocumented, "0x%02x", op)
	}
}

func TestCpu_Alu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		code  []byte
		a, b  byte
		carry bool
		wantA byte
		flags byte
	}){
		{"ADD B", []byte{0x80}, 0x6c, 0x2e, false, 0x9a, FLAG_S | FLAG_AC | FLAG_P},
		{"ADD B overflow", []byte{0x80}, 0xff, 0x01, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P | FLAG_CY},
		{"ADC B", []byte{0x88}, 0x42, 0x3d, false, 0x7f, 0},
		{"ADC B carry", []byte{0x88}, 0x42, 0x3d, true, 0x80, FLAG_S | FLAG_AC},
		{"SUB A", []byte{0x97}, 0x3e, 0x00, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P},
		{"SBB B", []byte{0x98}, 0x04, 0x02, true, 0x01, FLAG_AC},
		{"SBB B borrow", []byte{0x98}, 0x00, 0x00, true, 0xff, FLAG_S | FLAG_P | FLAG_CY},
		{"CMP B greater", []byte{0xb8}, 0x0a, 0x05, false, 0x0a, FLAG_AC | FLAG_P},
		{"CMP B less", []byte{0xb8}, 0x02, 0x05, false, 0x02, FLAG_S | FLAG_CY},
		{"ANA B", []byte{0xa0}, 0xfc, 0x0f, true, 0x0c, FLAG_AC | FLAG_P},
		{"XRA A", []byte{0xaf}, 0x5c, 0x00, true, 0x00, FLAG_Z | FLAG_P},
		{"ORA B", []byte{0xb0}, 0x33, 0x0f, true, 0x3f, FLAG_P},
		{"ADI", []byte{0xc6, 0x42}, 0x14, 0x00, false, 0x56, FLAG_P},
		{"SUI", []byte{0xd6, 0x01}, 0x00, 0x00, false, 0xff, FLAG_S | FLAG_P | FLAG_CY},
		{"CPI", []byte{0xfe, 0x40}, 0x40, 0x00, false, 0x40, FLAG_Z | FLAG_AC | FLAG_P},
		{"ANI", []byte{0xe6, 0x00}, 0xff, 0x00, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P},
		{"ORI", []byte{0xf6, 0x80}, 0x01, 0x00, true, 0x81, FLAG_S | FLAG_P},
		{"XRI", []byte{0xee, 0xff}, 0x0f, 0x00, true, 0xf0, FLAG_S | FLAG_P},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(entry.code...)
		cpu.Register[REG_A] = entry.a
		cpu.Register[REG_B] = entry.b
		cpu.setFlag(FLAG_CY, entry.carry)

		err := cpu.Step()
		assert.NoError(err, entry.name)
		assert.Equal(entry.wantA, cpu.Register[REG_A], entry.name)
		assert.Equal(entry.flags, cpu.Register[REG_F]&FLAG_MASK, "%v: flags %08b", entry.name, cpu.Register[REG_F])
		assert.Equal(uint16(len(entry.code)), cpu.PC, entry.name)
	}
}

func TestCpu_IncDec(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		code  byte
		b     byte
		carry bool
		wantB byte
		flags byte
	}){
		{"INR nibble", 0x04, 0x0f, true, 0x10, FLAG_AC | FLAG_CY},
		{"INR wrap", 0x04, 0xff, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P},
		{"INR", 0x04, 0x99, false, 0x9a, FLAG_S | FLAG_P},
		{"DCR zero", 0x05, 0x01, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P},
		{"DCR wrap", 0x05, 0x00, true, 0xff, FLAG_S | FLAG_P | FLAG_CY},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(entry.code)
		cpu.Register[REG_B] = entry.b
		cpu.setFlag(FLAG_CY, entry.carry)

		err := cpu.Step()
		assert.NoError(err, entry.name)
		assert.Equal(entry.wantB, cpu.Register[REG_B], entry.name)
		assert.Equal(entry.flags, cpu.Register[REG_F]&FLAG_MASK, entry.name)
	}

	// INR M / DCR M work on memory at HL
	cpu, bus := newTestCpu(0x34, 0x35, 0x35)
	cpu.setPair(PAIR_HL, 0x0800)
	bus.mem[0x0800] = 0x40
	for range 3 {
		assert.NoError(cpu.Step())
	}
	assert.Equal(byte(0x3f), bus.mem[0x0800])
	assert.False(cpu.flag(FLAG_AC))
}

func TestCpu_Daa(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(0x27)
	cpu.Register[REG_A] = 0x9b
	assert.NoError(cpu.Step())
	assert.Equal(byte(0x01), cpu.Register[REG_A])
	assert.Equal(FLAG_AC|FLAG_CY, cpu.Register[REG_F]&FLAG_MASK)

	// 15 + 27 = 42 in BCD
	cpu, _ = newTestCpu(0xc6, 0x27, 0x27)
	cpu.Register[REG_A] = 0x15
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(byte(0x42), cpu.Register[REG_A])
	assert.Equal(FLAG_AC|FLAG_P, cpu.Register[REG_F]&FLAG_MASK)

	// 99 + 01 = 00, carry
	cpu, _ = newTestCpu(0xc6, 0x01, 0x27)
	cpu.Register[REG_A] = 0x99
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(byte(0x00), cpu.Register[REG_A])
	assert.Equal(FLAG_Z|FLAG_AC|FLAG_P|FLAG_CY, cpu.Register[REG_F]&FLAG_MASK)
}

func TestCpu_Rotate(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name      string
		code      byte
		a         byte
		carry     bool
		wantA     byte
		wantCarry bool
	}){
		{"RLC", 0x07, 0xf2, false, 0xe5, true},
		{"RRC", 0x0f, 0xf2, true, 0x79, false},
		{"RAL", 0x17, 0xb5, false, 0x6a, true},
		{"RAR", 0x1f, 0x6a, true, 0xb5, false},
		{"CMA", 0x2f, 0x51, true, 0xae, true},
		{"STC", 0x37, 0x51, false, 0x51, true},
		{"CMC", 0x3f, 0x51, true, 0x51, false},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(entry.code)
		cpu.Register[REG_A] = entry.a
		cpu.setFlag(FLAG_CY, entry.carry)
		cpu.setFlag(FLAG_Z, true)

		assert.NoError(cpu.Step())
		assert.Equal(entry.wantA, cpu.Register[REG_A], entry.name)
		assert.Equal(entry.wantCarry, cpu.flag(FLAG_CY), entry.name)
		assert.True(cpu.flag(FLAG_Z), entry.name)
	}
}

func TestCpu_Pairs(t *testing.T) {
	assert := assert.New(t)

	cpu, bus := newTestCpu(assemble(t,
		"LXI B, 0x339f",
		"LXI H, 0xa17b",
		"DAD B        ; HL = 0xd51a",
		"SHLD 0x0900",
		"LXI D, 0x1234",
		"XCHG         ; DE = 0xd51a, HL = 0x1234",
		"INX H",
		"DCX D",
		"LHLD 0x0900",
		"MVI A, 0x77",
		"STAX D",
		"XRA A",
		"LDAX D",
		"HLT",
	)...)
	runHalt(t, cpu, 20)

	assert.Equal(uint16(0x339f), cpu.pair(PAIR_BC))
	assert.Equal(uint16(0xd519), cpu.pair(PAIR_DE))
	assert.Equal(uint16(0xd51a), cpu.pair(PAIR_HL))
	assert.Equal(byte(0x77), cpu.Register[REG_A])
	assert.Equal(byte(0x1a), bus.mem[0x0900])
	assert.Equal(byte(0xd5), bus.mem[0x0901])
	assert.Equal(byte(0x77), bus.mem[0xd519])

	// DAD only changes CY
	cpu, _ = newTestCpu(assemble(t,
		"LXI H, 0xffff",
		"LXI B, 0x0001",
		"DAD B",
		"HLT",
	)...)
	cpu.setFlag(FLAG_Z, false)
	cpu.setFlag(FLAG_S, true)
	runHalt(t, cpu, 10)
	assert.Equal(uint16(0x0000), cpu.pair(PAIR_HL))
	assert.Equal(FLAG_S|FLAG_CY, cpu.Register[REG_F]&FLAG_MASK)
}

func TestCpu_Stack(t *testing.T) {
	assert := assert.New(t)

	cpu, bus := newTestCpu(assemble(t,
		"LXI SP, 0x1000",
		"LXI B, 0xbeef",
		"PUSH B",
		"POP D",
		"PUSH B",
		"LXI H, 0x1234",
		"XTHL",
		"HLT",
	)...)
	runHalt(t, cpu, 20)

	assert.Equal(uint16(0xbeef), cpu.pair(PAIR_DE))
	assert.Equal(uint16(0xbeef), cpu.pair(PAIR_HL))
	assert.Equal(uint16(0x0ffe), cpu.SP)
	assert.Equal(byte(0x34), bus.mem[0x0ffe])
	assert.Equal(byte(0x12), bus.mem[0x0fff])

	// PSW layout: bit 1 set, bits 3 and 5 clear.
	cpu, bus = newTestCpu(0xf5, 0xf1)
	cpu.Register[REG_A] = 0x1f
	cpu.Register[REG_F] = 0xff
	assert.NoError(cpu.Step())
	assert.Equal(byte(0xd7), bus.mem[0x0ffe])
	assert.Equal(byte(0x1f), bus.mem[0x0fff])
	assert.Equal(uint16(0x1fd7), cpu.Snapshot().PSW())

	bus.mem[0x0ffe] = 0x28
	bus.mem[0x0fff] = 0x99
	assert.NoError(cpu.Step())
	assert.Equal(byte(0x99), cpu.Register[REG_A])
	assert.Equal(FLAG_1, cpu.Register[REG_F])
	assert.Equal(uint16(0x1000), cpu.SP)

	// SPHL, PCHL
	cpu, _ = newTestCpu(0xf9, 0xe9)
	cpu.setPair(PAIR_HL, 0x0abc)
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0abc), cpu.SP)
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0abc), cpu.PC)
}

func TestCpu_Branch(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(assemble(t,
		"        LXI SP, 0x1000",
		"        MVI B, 5",
		"        XRA A",
		"loop:   ADD B",
		"        DCR B",
		"        JNZ loop",
		"        CALL sub",
		"        HLT",
		"sub:    CPI 15",
		"        RNZ",
		"        MVI C, 0xaa",
		"        RET",
	)...)
	runHalt(t, cpu, 100)

	assert.Equal(byte(15), cpu.Register[REG_A])
	assert.Equal(byte(0xaa), cpu.Register[REG_C])
	assert.Equal(uint16(0x1000), cpu.SP)

	// Every condition code
	table := [](struct {
		cond  string
		flags byte
		taken bool
	}){
		{"NZ", 0, true},
		{"NZ", FLAG_Z, false},
		{"Z", FLAG_Z, true},
		{"NC", FLAG_CY, false},
		{"C", FLAG_CY, true},
		{"PO", 0, true},
		{"PE", FLAG_P, true},
		{"PE", 0, false},
		{"P", FLAG_S, false},
		{"M", FLAG_S, true},
	}

	for _, entry := range table {
		op, ok := opcodeMap["J"+entry.cond]
		assert.True(ok, entry.cond)
		cpu, _ := newTestCpu(op, 0x00, 0x08)
		cpu.Register[REG_F] = entry.flags | FLAG_1
		assert.NoError(cpu.Step())
		if entry.taken {
			assert.Equal(uint16(0x0800), cpu.PC, entry.cond)
		} else {
			assert.Equal(uint16(0x0003), cpu.PC, entry.cond)
		}
	}

	// RST pushes the return address
	cpu, bus := newTestCpu(0x00, 0xef)
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0028), cpu.PC)
	assert.Equal(byte(0x02), bus.mem[0x0ffe])
	assert.Equal(byte(0x00), bus.mem[0x0fff])
}

func TestCpu_Cycles(t *testing.T) {
	assert := assert.New(t)

	code := make([]byte, 0x11)
	copy(code, []byte{
		0xaf,             // XRA A
		0xc4, 0x10, 0x00, // CNZ 0x0010
		0xcc, 0x10, 0x00, // CZ 0x0010
		0x76, // HLT
	})
	code[0x10] = 0xc8 // RZ

	cpu, _ := newTestCpu(code...)
	runHalt(t, cpu, 10)

	assert.Equal(uint64(4+11+17+11+7), cpu.Cycles)
	assert.Equal(uint16(0x0008), cpu.PC)
}

func TestCpu_Ports(t *testing.T) {
	assert := assert.New(t)

	cpu, bus := newTestCpu(assemble(t,
		"MVI A, 0x5a",
		"OUT 0x07",
		"IN 0x05",
		"HLT",
	)...)
	bus.in[0x05] = 0x33
	runHalt(t, cpu, 10)

	assert.Equal(byte(0x5a), bus.out[0x07])
	assert.Equal([]uint8{0x07}, bus.writes)
	assert.Equal(byte(0x33), cpu.Register[REG_A])
}

func TestCpu_Halt(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(0x00, 0x76, 0x00)
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(HALTED, cpu.State)
	assert.Equal(uint16(0x0002), cpu.PC)

	// Halted steps do nothing.
	cycles := cpu.Cycles
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0002), cpu.PC)
	assert.Equal(cycles, cpu.Cycles)

	// An interrupt releases the halt.
	cpu.Inte = true
	cpu.Interrupt(7, true)
	assert.NoError(cpu.Step())
	assert.Equal(RUNNING, cpu.State)
	assert.Equal(uint16(0x0038), cpu.PC)
	assert.Equal(uint16(0x0002), cpu.read16(cpu.SP))
	assert.False(cpu.Inte)
}

func TestCpu_Illegal(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []byte{0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38, 0xcb, 0xd9, 0xdd, 0xed, 0xfd} {
		cpu, _ := newTestCpu(0x00, op, 0x00, 0x08)

		assert.NoError(cpu.Step())
		err := cpu.Step()
		assert.ErrorIs(err, ErrIllegalOpcode, "0x%02x", op)

		var eo ErrOpcode
		assert.True(errors.As(err, &eo))
		assert.Equal(op, eo.Opcode)
		assert.Equal(uint16(0x0001), eo.Address)

		assert.Equal(uint16(0x0001), cpu.PC)
		assert.Equal(HALTED, cpu.State)
		assert.True(cpu.Faulted())

		// Reported once; registers are frozen.
		before := cpu.Snapshot()
		assert.NoError(cpu.Step())
		assert.Equal(uint16(0x0001), cpu.PC)
		assert.Equal(before, cpu.Snapshot())

		// A fault is not released by an interrupt.
		cpu.Interrupt(1, false)
		assert.NoError(cpu.Step())
		assert.Equal(uint16(0x0001), cpu.PC)
		assert.Equal(HALTED, cpu.State)

		cpu.Reset()
		assert.False(cpu.Faulted())
		assert.Equal(RUNNING, cpu.State)
	}
}

func TestCpu_Undocumented(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op     byte
		wantPC uint16
		pushed bool
	}){
		{0x08, 0x0001, false},
		{0x38, 0x0001, false},
		{0xcb, 0x0800, false},
		{0xdd, 0x0800, true},
		{0xed, 0x0800, true},
		{0xfd, 0x0800, true},
	}

	for _, entry := range table {
		cpu, _ := newTestCpu(entry.op, 0x00, 0x08)
		cpu.Undocumented = true
		assert.NoError(cpu.Step(), "0x%02x", entry.op)
		assert.Equal(entry.wantPC, cpu.PC, "0x%02x", entry.op)
		if entry.pushed {
			assert.Equal(uint16(0x0003), cpu.read16(cpu.SP))
		} else {
			assert.Equal(uint16(0x1000), cpu.SP)
		}
	}

	// 0xD9 is RET
	cpu, bus := newTestCpu(0xd9)
	cpu.Undocumented = true
	cpu.SP = 0x0ffe
	bus.mem[0x0ffe] = 0x34
	bus.mem[0x0fff] = 0x12
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x1234), cpu.PC)
}

func TestCpu_Interrupt(t *testing.T) {
	assert := assert.New(t)

	// Maskable requests wait for EI.
	cpu, _ := newTestCpu(0x00, 0x00, 0xfb, 0x00)
	cpu.Interrupt(2, true)
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0002), cpu.PC)
	assert.True(cpu.Pending())
	assert.NoError(cpu.Step()) // EI
	assert.True(cpu.Inte)
	assert.NoError(cpu.Step()) // NOP, EI is delayed by one instruction
	assert.Equal(uint16(0x0004), cpu.PC)
	assert.True(cpu.Pending())
	assert.NoError(cpu.Step()) // serviced
	assert.Equal(uint16(0x0010), cpu.PC)
	assert.Equal(uint16(0x0004), cpu.read16(cpu.SP))
	assert.False(cpu.Inte)
	assert.False(cpu.Pending())

	// EI; RET leaves the handler before the next request nests.
	cpu, bus := newTestCpu(0xfb, 0xc9)
	cpu.SP = 0x0ffe
	bus.mem[0x0ffe] = 0x34
	bus.mem[0x0fff] = 0x12
	cpu.Interrupt(7, true)
	assert.NoError(cpu.Step()) // EI
	assert.Equal(uint16(0x0001), cpu.PC)
	assert.NoError(cpu.Step()) // RET
	assert.Equal(uint16(0x1234), cpu.PC)
	assert.Equal(uint16(0x1000), cpu.SP)
	assert.True(cpu.Pending())
	assert.NoError(cpu.Step()) // serviced
	assert.Equal(uint16(0x0038), cpu.PC)
	assert.Equal(uint16(0x0ffe), cpu.SP)
	assert.Equal(uint16(0x1234), cpu.read16(cpu.SP))

	// DI right after EI keeps interrupts off.
	cpu, _ = newTestCpu(0xfb, 0xf3, 0x00)
	cpu.Interrupt(3, true)
	assert.NoError(cpu.Step()) // EI
	assert.NoError(cpu.Step()) // DI
	assert.NoError(cpu.Step()) // NOP
	assert.Equal(uint16(0x0003), cpu.PC)
	assert.True(cpu.Pending())

	// Non-maskable requests ignore INTE.
	cpu, _ = newTestCpu(0xf3, 0x00)
	assert.NoError(cpu.Step()) // DI
	cpu.Interrupt(1, false)
	cycles := cpu.Cycles
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0008), cpu.PC)
	assert.Equal(uint64(RST_CYCLES), cpu.Cycles-cycles)

	// A maskable request does not replace a non-maskable one.
	cpu, _ = newTestCpu()
	cpu.Interrupt(1, false)
	cpu.Interrupt(5, true)
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0008), cpu.PC)

	// Stopped CPUs do not service interrupts.
	cpu, _ = newTestCpu()
	cpu.State = STOPPED
	cpu.Interrupt(1, false)
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0000), cpu.PC)
	assert.True(cpu.Pending())
}

func TestCpu_Length(t *testing.T) {
	assert := assert.New(t)

	branches := []string{"JMP", "CALL", "RET", "PCHL", "RST", "HLT"}
	for _, cond := range condName {
		branches = append(branches, "J"+cond, "C"+cond, "R"+cond)
	}

	for n := range Instructions {
		ins := &Instructions[n]
		if ins.Undocumented || slices.Contains(branches, ins.Name()) {
			continue
		}

		cpu, _ := newTestCpu(byte(n), 0x00, 0x08)
		cpu.setPair(PAIR_HL, 0x0900)
		assert.NoError(cpu.Step(), ins.Mnemonic)
		assert.Equal(uint16(ins.Length()), cpu.PC, ins.Mnemonic)
		assert.Equal(uint64(ins.Cycles), cpu.Cycles, ins.Mnemonic)
	}
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()
	cpu.setPair(PAIR_DE, 0xbeef)
	cpu.setFlag(FLAG_Z, true)

	text := cpu.String()
	assert.Contains(text, "   DE: BEEF\n")
	assert.Contains(text, "-Z---")
	assert.Contains(text, "state: running")
}
