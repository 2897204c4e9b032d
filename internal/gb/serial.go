package gb

// A full byte at the 8192 Hz internal clock: 8 bits x 512 t-cycles, in
// machine cycles.
const serialTransferCycles = 8 * 512 / 4

// Serial implements the SB/SC link port registers. There is no link cable:
// a transfer driven by the internal clock completes after the documented
// cycle count, shifts in 0xFF and raises the serial interrupt. An optional
// sink observes every transferred byte, which is how the blargg test ROM
// harness collects its pass/fail output.
type Serial struct {
	irq *IRQ

	sb uint8
	sc uint8

	counter int
	sink    func(uint8)
}

func NewSerial(irq *IRQ) *Serial {
	return &Serial{irq: irq}
}

// SetSink registers a callback invoked with each byte the program sends.
func (s *Serial) SetSink(sink func(uint8)) {
	s.sink = sink
}

// Tic advances an in-progress transfer by the given number of machine cycles.
func (s *Serial) Tic(mcycles uint8) {
	if s.counter <= 0 {
		return
	}
	s.counter -= int(mcycles)
	if s.counter > 0 {
		return
	}
	if s.sink != nil {
		s.sink(s.sb)
	}
	s.sb = 0xff // nothing on the other end of the cable
	s.sc &= ^uint8(0x80)
	s.irq.Request(irqSerial)
}

func (s Serial) readRegister(addr uint16) uint8 {
	switch addr {
	case addrSB:
		return s.sb
	case addrSC:
		return s.sc | 0x7e
	}
	return 0xff
}

func (s *Serial) writeRegister(addr uint16, data uint8) {
	switch addr {
	case addrSB:
		s.sb = data
	case addrSC:
		s.sc = data & 0x81
		if s.sc&0x81 == 0x81 { // transfer start with internal clock
			s.counter = serialTransferCycles
		}
	}
}
