package gb

// Interrupt kinds in dispatch priority order. The bit position in IE/IF
// matches the priority: VBlank is bit 0 and wins every tie.
type irqKind uint8

const (
	irqVBlank irqKind = iota
	irqStat
	irqTimer
	irqSerial
	irqJoypad

	irqCount
)

func (k irqKind) String() string {
	switch k {
	case irqVBlank:
		return "VBLANK"
	case irqStat:
		return "STAT"
	case irqTimer:
		return "TIMER"
	case irqSerial:
		return "SERIAL"
	case irqJoypad:
		return "JOYPAD"
	}
	return "???"
}

// vector returns the fixed service routine address for the interrupt.
func (k irqKind) vector() uint16 {
	return 0x0040 + uint16(k)*8
}

// IRQ tracks the interrupt enable mask (0xFFFF) and pending flags (0xFF0F).
type IRQ struct {
	enable uint8
	flags  uint8
}

func NewIRQ() *IRQ {
	return &IRQ{}
}

// Request marks the interrupt as pending.
func (i *IRQ) Request(kind irqKind) {
	i.flags |= 1 << kind
}

// pending returns the set of interrupts that are both enabled and flagged.
func (i IRQ) pending() uint8 {
	return i.enable & i.flags & 0x1f
}

// next returns the highest-priority interrupt eligible for dispatch.
func (i IRQ) next() (irqKind, bool) {
	pending := i.pending()
	if pending == 0 {
		return 0, false
	}
	for k := irqVBlank; k < irqCount; k++ {
		if pending&(1<<k) != 0 {
			return k, true
		}
	}
	return 0, false
}

// acknowledge clears exactly one pending flag bit.
func (i *IRQ) acknowledge(kind irqKind) {
	i.flags &= ^(1 << kind)
}

func (i IRQ) readFlags() uint8 {
	// unused upper bits read as 1
	return i.flags | 0xe0
}

func (i *IRQ) writeFlags(data uint8) {
	i.flags = data & 0x1f
}

func (i IRQ) readEnable() uint8 {
	return i.enable
}

func (i *IRQ) writeEnable(data uint8) {
	i.enable = data
}
