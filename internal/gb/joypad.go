package gb

// Button is one of the eight Game Boy buttons.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

const (
	p1SelectDpad    = uint8(1 << 4)
	p1SelectButtons = uint8(1 << 5)
)

// Joypad holds the raw button state and exposes it through the P1 select
// matrix. The host sets button state before stepping; the core only reads it
// through the 0xFF00 register. P1 lines are active low.
type Joypad struct {
	irq *IRQ

	sel     uint8 // bits 4-5 of P1 as written by the program
	dpad    uint8 // right left up down on bits 0-3, 1 = pressed
	buttons uint8 // a b select start on bits 0-3, 1 = pressed
}

func NewJoypad(irq *IRQ) *Joypad {
	return &Joypad{irq: irq, sel: p1SelectDpad | p1SelectButtons}
}

// SetButton records a button press or release. A new press raises the joypad
// interrupt only when its matrix group is selected through P1: the interrupt
// line watches the P1 inputs, not the buttons themselves, so a press on a
// deselected group never produces a high-to-low transition.
func (j *Joypad) SetButton(b Button, pressed bool) {
	group := &j.dpad
	selBit := p1SelectDpad
	bit := uint8(1) << b
	if b >= ButtonA {
		group = &j.buttons
		selBit = p1SelectButtons
		bit = 1 << (b - ButtonA)
	}

	was := *group&bit != 0
	if pressed {
		*group |= bit
	} else {
		*group &= ^bit
	}
	if pressed && !was && j.sel&selBit == 0 {
		j.irq.Request(irqJoypad)
	}
}

func (j Joypad) readP1() uint8 {
	v := uint8(0xc0) | j.sel | 0x0f
	if j.sel&p1SelectDpad == 0 {
		v &= ^(j.dpad & 0x0f)
	}
	if j.sel&p1SelectButtons == 0 {
		v &= ^(j.buttons & 0x0f)
	}
	return v
}

func (j *Joypad) writeP1(data uint8) {
	j.sel = data & (p1SelectDpad | p1SelectButtons)
}
