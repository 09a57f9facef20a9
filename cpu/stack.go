package cpu

// push pushes a word on the memory stack, high byte first.
func (cpu *Cpu) push(value uint16) {
	cpu.SP--
	cpu.Bus.Write(cpu.SP, byte(value>>8))
	cpu.SP--
	cpu.Bus.Write(cpu.SP, byte(value))
}

// pop pops a word from the memory stack.
func (cpu *Cpu) pop() (value uint16) {
	value = cpu.read16(cpu.SP)
	cpu.SP += 2
	return
}

// Push pushes a word on the stack, as PUSH would.
func (cpu *Cpu) Push(value uint16) {
	cpu.push(value)
}

// Pop pops a word from the stack, as POP would.
func (cpu *Cpu) Pop() uint16 {
	return cpu.pop()
}
