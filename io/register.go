package io

const (
	REGISTER_IDLE = 0xff // Power-on value of a port register.
)

// Register is an 8-bit port latch.
type Register struct {
	Data byte
}

// NewRegister creates a register at its power-on value.
func NewRegister() *Register {
	return &Register{Data: REGISTER_IDLE}
}

// Reset restores the power-on value.
func (reg *Register) Reset() {
	reg.Data = REGISTER_IDLE
}

// PortRead returns the latched value.
func (reg *Register) PortRead() byte {
	return reg.Data
}

// PortWrite latches a value.
func (reg *Register) PortWrite(data byte) {
	reg.Data = data
}

// ScanRegister is the digit/row select latch. Every write also strobes
// the display.
type ScanRegister struct {
	Register
	Display *Display
}

// NewScanRegister creates a scan register strobing disp.
func NewScanRegister(disp *Display) *ScanRegister {
	return &ScanRegister{
		Register: Register{Data: REGISTER_IDLE},
		Display:  disp,
	}
}

// PortWrite latches the select value and strobes the display.
func (sr *ScanRegister) PortWrite(data byte) {
	sr.Register.PortWrite(data)
	if sr.Display != nil {
		sr.Display.Strobe(data)
	}
}
