package io

const (
	STEP_DELAY = 3 // Instructions between the step request and the break.
)

// StepLatch is the monitor's single-step control port.
//
// Any write arms the latch. The monitor follows the write with a NOP and
// a jump into the user program; the break is due after that user
// instruction completes, STEP_DELAY instructions after the write.
type StepLatch struct {
	armed     bool
	countdown int
}

// Reset disarms the latch.
func (sl *StepLatch) Reset() {
	sl.armed = false
	sl.countdown = 0
}

// PortWrite arms the latch.
func (sl *StepLatch) PortWrite(data byte) {
	sl.armed = true
}

// Pending returns true while a break is outstanding.
func (sl *StepLatch) Pending() bool {
	return sl.armed || sl.countdown > 0
}

// Retire accounts for one completed instruction, and returns true when
// the break is due.
func (sl *StepLatch) Retire() (due bool) {
	if sl.armed {
		sl.armed = false
		sl.countdown = STEP_DELAY
		return
	}

	if sl.countdown > 0 {
		sl.countdown--
		due = sl.countdown == 0
	}

	return
}
