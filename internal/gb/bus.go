package gb

import "fmt"

const bootROMSize = 0x100

// Model selects which hardware revision's post-boot register values Reset
// installs. Emulation semantics are DMG for all of them.
type Model uint8

const (
	ModelDMG Model = iota
	ModelPocket
	ModelSGB
	ModelCGB
)

func (m Model) String() string {
	switch m {
	case ModelDMG:
		return "dmg"
	case ModelPocket:
		return "pocket"
	case ModelSGB:
		return "sgb"
	case ModelCGB:
		return "cgb"
	}
	return fmt.Sprintf("model(%d)", uint8(m))
}

// ParseModel maps a command line name to a Model.
func ParseModel(s string) (Model, error) {
	switch s {
	case "dmg":
		return ModelDMG, nil
	case "pocket", "mgb":
		return ModelPocket, nil
	case "sgb":
		return ModelSGB, nil
	case "cgb", "gbc":
		return ModelCGB, nil
	}
	return ModelDMG, fmt.Errorf("unknown model %q", s)
}

// Bus wires every component together and owns the memory regions that belong
// to no one else. It is the single-threaded heart of the machine: Step moves
// the CPU by one instruction and slaves everything else to the cycles that
// instruction took.
type Bus struct {
	cpu    *CPU
	ppu    *PPU
	timer  *Timer
	irq    *IRQ
	joypad *Joypad
	serial *Serial
	cart   *Cart

	wram [0x2000]uint8
	hram [0x7f]uint8

	bootROM      []uint8
	bootDisabled bool

	dmaSource uint8
	dmaCycles uint16

	cycles uint64
	model  Model
}

func NewBus(model Model) *Bus {
	b := &Bus{model: model}
	b.irq = NewIRQ()
	b.timer = NewTimer(b.irq)
	b.ppu = NewPPU(b.irq)
	b.joypad = NewJoypad(b.irq)
	b.serial = NewSerial(b.irq)
	b.cpu = NewCPU(b, b.irq)
	return b
}

func (b *Bus) LoadCart(cart *Cart) {
	b.cart = cart
	b.Reset()
}

// LoadBootROM installs a 256 byte boot image. With one loaded, Reset starts
// execution at 0x0000 with cleared registers instead of the post-boot state.
func (b *Bus) LoadBootROM(rom []uint8) error {
	if len(rom) != bootROMSize {
		return fmt.Errorf("boot ROM must be %d bytes, got %d", bootROMSize, len(rom))
	}
	b.bootROM = make([]uint8, bootROMSize)
	copy(b.bootROM, rom)
	return nil
}

// Reset puts the machine in its power-on state. Without a boot ROM the
// registers get the values the real boot sequence leaves behind, which differ
// per hardware revision.
func (b *Bus) Reset() {
	b.wram = [0x2000]uint8{}
	b.hram = [0x7f]uint8{}
	b.bootDisabled = false
	b.dmaSource = 0xff
	b.dmaCycles = 0
	b.cycles = 0

	*b.irq = IRQ{}
	*b.timer = *NewTimer(b.irq)
	b.ppu.reset()
	*b.joypad = *NewJoypad(b.irq)
	sink := b.serial.sink
	*b.serial = *NewSerial(b.irq)
	b.serial.sink = sink

	cpu := b.cpu
	cpu.cycles = 0
	cpu.totalCycles = 0
	cpu.ime = false
	cpu.imeDelay = false
	cpu.halted = false
	cpu.haltBug = false

	if len(b.bootROM) == bootROMSize {
		cpu.a, cpu.f = 0, 0
		cpu.b, cpu.c = 0, 0
		cpu.d, cpu.e = 0, 0
		cpu.h, cpu.l = 0, 0
		cpu.sp = 0
		cpu.pc = 0
		return
	}
	b.bootDisabled = true

	switch b.model {
	case ModelDMG:
		cpu.a, cpu.f = 0x01, 0xb0
		cpu.b, cpu.c = 0x00, 0x13
		cpu.d, cpu.e = 0x00, 0xd8
		cpu.h, cpu.l = 0x01, 0x4d
	case ModelPocket:
		cpu.a, cpu.f = 0xff, 0xb0
		cpu.b, cpu.c = 0x00, 0x13
		cpu.d, cpu.e = 0x00, 0xd8
		cpu.h, cpu.l = 0x01, 0x4d
	case ModelSGB:
		cpu.a, cpu.f = 0x01, 0x00
		cpu.b, cpu.c = 0x00, 0x14
		cpu.d, cpu.e = 0x00, 0x00
		cpu.h, cpu.l = 0xc0, 0x60
	case ModelCGB:
		cpu.a, cpu.f = 0x11, 0x80
		cpu.b, cpu.c = 0x00, 0x00
		cpu.d, cpu.e = 0xff, 0x56
		cpu.h, cpu.l = 0x00, 0x0d
	}
	cpu.sp = 0xfffe
	cpu.pc = 0x0100

	b.timer.div = 0xabcc
	b.irq.flags = 0x01
	b.ppu.lcdc = 0x91
	b.ppu.bgp = 0xfc
	b.ppu.obp0 = 0xff
	b.ppu.obp1 = 0xff
	b.ppu.mode = modeVBlank
	b.ppu.ly = 0
}

// Step runs one CPU instruction and moves the rest of the machine by the
// cycles it consumed. It reports whether this step finished a frame.
func (b *Bus) Step() (bool, error) {
	cycles, err := b.cpu.Step()
	if err != nil {
		return false, err
	}
	b.cycles += uint64(cycles)

	if b.dmaCycles > 0 {
		if uint16(cycles) >= b.dmaCycles {
			b.dmaCycles = 0
		} else {
			b.dmaCycles -= uint16(cycles)
		}
	}

	b.timer.Tic(cycles)
	b.ppu.Tic(cycles)
	b.serial.Tic(cycles)

	return b.ppu.consumeFrameDone(), nil
}

// RunFrame steps until the PPU hands over a finished frame.
func (b *Bus) RunFrame() error {
	for {
		done, err := b.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// startDMA copies a 160 byte page into OAM and opens the window during which
// the CPU is locked out of everything but HRAM. The copy itself is immediate;
// only the lockout is timed.
func (b *Bus) startDMA(src uint8) {
	b.dmaSource = src
	base := uint16(src) << 8
	for i := 0; i < oamSize; i++ {
		b.ppu.dmaWriteOAM(i, b.read8(base+uint16(i)))
	}
	b.dmaCycles = 160
}

func (b *Bus) Frame() *[ScreenHeight][ScreenWidth]uint8 {
	return b.ppu.Frame()
}

func (b *Bus) SetButton(button Button, pressed bool) {
	b.joypad.SetButton(button, pressed)
}

// SetSerialSink registers a byte consumer for serial output. Test ROMs print
// their results over the link port, which makes this the headless harness.
func (b *Bus) SetSerialSink(sink func(uint8)) {
	b.serial.SetSink(sink)
}

func (b *Bus) Cart() *Cart {
	return b.cart
}

func (b *Bus) Cycles() uint64 {
	return b.cycles
}
