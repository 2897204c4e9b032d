package gb

// Timer implements the DIV/TIMA/TMA/TAC register block.
//
// The divider is a free-running 16-bit counter incremented every t-cycle;
// DIV (0xFF04) exposes its high byte. TIMA increments on every falling edge
// of the divider bit selected by TAC, which is why writing to DIV (resetting
// the counter) or changing TAC can produce a spurious increment. That is real
// hardware behavior and tests depend on it.
type Timer struct {
	irq *IRQ

	div  uint16
	tima uint8
	tma  uint8
	tac  uint8
}

// Divider bit watched for falling edges, per TAC clock select.
// 0: 4096 Hz, 1: 262144 Hz, 2: 65536 Hz, 3: 16384 Hz.
var timerDivBit = [4]uint8{9, 3, 5, 7}

func NewTimer(irq *IRQ) *Timer {
	return &Timer{irq: irq}
}

func (t Timer) enabled() bool {
	return t.tac&0x04 != 0
}

// timerSignal is the level of the selected divider bit gated by the enable
// flag. TIMA increments whenever this signal goes from high to low.
func (t Timer) timerSignal() bool {
	if !t.enabled() {
		return false
	}
	return t.div&(1<<timerDivBit[t.tac&0x03]) != 0
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima == 0 {
		t.tima = t.tma
		t.irq.Request(irqTimer)
	}
}

// Tic advances the timer by the given number of machine cycles.
func (t *Timer) Tic(mcycles uint8) {
	for i := 0; i < int(mcycles)*4; i++ {
		old := t.timerSignal()
		t.div++
		if old && !t.timerSignal() {
			t.incrementTIMA()
		}
	}
}

func (t Timer) readRegister(addr uint16) uint8 {
	switch addr {
	case addrDIV:
		return uint8(t.div >> 8)
	case addrTIMA:
		return t.tima
	case addrTMA:
		return t.tma
	case addrTAC:
		return t.tac | 0xf8
	}
	return 0xff
}

func (t *Timer) writeRegister(addr uint16, data uint8) {
	switch addr {
	case addrDIV:
		// any write resets the whole internal counter. if the selected
		// bit was high this is a falling edge and TIMA ticks once.
		old := t.timerSignal()
		t.div = 0
		if old {
			t.incrementTIMA()
		}
	case addrTIMA:
		t.tima = data
	case addrTMA:
		t.tma = data
	case addrTAC:
		old := t.timerSignal()
		t.tac = data & 0x07
		if old && !t.timerSignal() {
			t.incrementTIMA()
		}
	}
}
