package gb

// Snapshot types are plain exported data, the same shape MapperState already
// has, so an external collaborator can push a State through any encoder
// (gob, json) without help from this package. The file format is theirs.

type CPUState struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	TotalCycles            uint64
	IME                    bool
	IMEDelay               bool
	Halted                 bool
	HaltBug                bool
}

func (c *CPU) state() CPUState {
	return CPUState{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		TotalCycles: c.totalCycles,
		IME:         c.ime,
		IMEDelay:    c.imeDelay,
		Halted:      c.halted,
		HaltBug:     c.haltBug,
	}
}

func (c *CPU) restore(s CPUState) {
	c.a, c.f = s.A, s.F
	c.b, c.c = s.B, s.C
	c.d, c.e = s.D, s.E
	c.h, c.l = s.H, s.L
	c.sp, c.pc = s.SP, s.PC
	c.totalCycles = s.TotalCycles
	c.ime = s.IME
	c.imeDelay = s.IMEDelay
	c.halted = s.Halted
	c.haltBug = s.HaltBug
}

type IRQState struct {
	Enable uint8
	Flags  uint8
}

func (i *IRQ) state() IRQState {
	return IRQState{Enable: i.enable, Flags: i.flags}
}

func (i *IRQ) restore(s IRQState) {
	i.enable = s.Enable
	i.flags = s.Flags
}

type TimerState struct {
	DIV  uint16
	TIMA uint8
	TMA  uint8
	TAC  uint8
}

func (t *Timer) state() TimerState {
	return TimerState{DIV: t.div, TIMA: t.tima, TMA: t.tma, TAC: t.tac}
}

func (t *Timer) restore(s TimerState) {
	t.div = s.DIV
	t.tima = s.TIMA
	t.tma = s.TMA
	t.tac = s.TAC
}

type JoypadState struct {
	Sel     uint8
	Dpad    uint8
	Buttons uint8
}

func (j *Joypad) state() JoypadState {
	return JoypadState{Sel: j.sel, Dpad: j.dpad, Buttons: j.buttons}
}

func (j *Joypad) restore(s JoypadState) {
	j.sel = s.Sel
	j.dpad = s.Dpad
	j.buttons = s.Buttons
}

type SerialState struct {
	SB      uint8
	SC      uint8
	Counter int
}

func (s *Serial) state() SerialState {
	return SerialState{SB: s.sb, SC: s.sc, Counter: s.counter}
}

// restore keeps the sink: it is host configuration, not machine state.
func (s *Serial) restore(st SerialState) {
	s.sb = st.SB
	s.sc = st.SC
	s.counter = st.Counter
}

type PixelState struct {
	Color    uint8
	Palette  uint8
	Priority bool
}

type FIFOState struct {
	Pixels [16]PixelState
	Out    int
	In     int
	Len    int
}

type FetcherState struct {
	Step     uint8
	Ticks    uint8
	MapAddr  uint16
	TileX    uint8
	TileLine uint8
	TileID   uint8
	Lo       uint8
	Hi       uint8
}

type SpriteState struct {
	Y, X, Tile, Attr uint8
	Fetched          bool
}

type PPUState struct {
	VRAM [0x2000]uint8
	OAM  [0xa0]uint8

	LCDC uint8
	STAT uint8
	SCY  uint8
	SCX  uint8
	LY   uint8
	LYC  uint8
	BGP  uint8
	OBP0 uint8
	OBP1 uint8
	WY   uint8
	WX   uint8

	Mode uint8
	Dot  int

	BGFifo       FIFOState
	OBJFifo      FIFOState
	Fetch        FetcherState
	X            int
	Discard      uint8
	LineSprites  []SpriteState
	SpriteStall  int
	StalledIndex int

	WindowActive bool
	WindowHitY   bool
	WindowLine   uint8

	StatLine bool

	Frame     [ScreenHeight][ScreenWidth]uint8
	Completed [ScreenHeight][ScreenWidth]uint8
	FrameDone bool
}

func fifoState(f *pixelFIFO) FIFOState {
	s := FIFOState{Out: f.out, In: f.in, Len: f.len}
	for i, px := range f.pixels {
		s.Pixels[i] = PixelState{Color: px.color, Palette: px.palette, Priority: px.priority}
	}
	return s
}

func restoreFIFO(f *pixelFIFO, s FIFOState) {
	f.out, f.in, f.len = s.Out, s.In, s.Len
	for i, px := range s.Pixels {
		f.pixels[i] = fifoPixel{color: px.Color, palette: px.Palette, priority: px.Priority}
	}
}

func (p *PPU) state() PPUState {
	s := PPUState{
		VRAM: p.vram,
		OAM:  p.oam,

		LCDC: p.lcdc,
		STAT: p.stat,
		SCY:  p.scy,
		SCX:  p.scx,
		LY:   p.ly,
		LYC:  p.lyc,
		BGP:  p.bgp,
		OBP0: p.obp0,
		OBP1: p.obp1,
		WY:   p.wy,
		WX:   p.wx,

		Mode: p.mode,
		Dot:  p.dot,

		BGFifo:  fifoState(&p.bgFifo),
		OBJFifo: fifoState(&p.objFifo),
		Fetch: FetcherState{
			Step:     uint8(p.fetch.state),
			Ticks:    p.fetch.ticks,
			MapAddr:  p.fetch.mapAddr,
			TileX:    p.fetch.tileX,
			TileLine: p.fetch.tileLine,
			TileID:   p.fetch.tileID,
			Lo:       p.fetch.lo,
			Hi:       p.fetch.hi,
		},
		X:            p.x,
		Discard:      p.discard,
		SpriteStall:  p.spriteStall,
		StalledIndex: p.stalledIndex,

		WindowActive: p.windowActive,
		WindowHitY:   p.windowHitY,
		WindowLine:   p.windowLine,

		StatLine: p.statLine,

		Frame:     p.frame,
		Completed: p.completed,
		FrameDone: p.frameDone,
	}
	for _, sp := range p.lineSprites {
		s.LineSprites = append(s.LineSprites, SpriteState{Y: sp.y, X: sp.x, Tile: sp.tile, Attr: sp.attr, Fetched: sp.fetched})
	}
	return s
}

func (p *PPU) restore(s PPUState) {
	p.vram = s.VRAM
	p.oam = s.OAM

	p.lcdc = s.LCDC
	p.stat = s.STAT
	p.scy = s.SCY
	p.scx = s.SCX
	p.ly = s.LY
	p.lyc = s.LYC
	p.bgp = s.BGP
	p.obp0 = s.OBP0
	p.obp1 = s.OBP1
	p.wy = s.WY
	p.wx = s.WX

	p.mode = s.Mode
	p.dot = s.Dot

	restoreFIFO(&p.bgFifo, s.BGFifo)
	restoreFIFO(&p.objFifo, s.OBJFifo)
	p.fetch = fetcher{
		state:    fetcherState(s.Fetch.Step),
		ticks:    s.Fetch.Ticks,
		mapAddr:  s.Fetch.MapAddr,
		tileX:    s.Fetch.TileX,
		tileLine: s.Fetch.TileLine,
		tileID:   s.Fetch.TileID,
		lo:       s.Fetch.Lo,
		hi:       s.Fetch.Hi,
	}
	p.x = s.X
	p.discard = s.Discard
	p.lineSprites = p.lineSprites[:0]
	for _, sp := range s.LineSprites {
		p.lineSprites = append(p.lineSprites, sprite{y: sp.Y, x: sp.X, tile: sp.Tile, attr: sp.Attr, fetched: sp.Fetched})
	}
	p.spriteStall = s.SpriteStall
	p.stalledIndex = s.StalledIndex

	p.windowActive = s.WindowActive
	p.windowHitY = s.WindowHitY
	p.windowLine = s.WindowLine

	p.statLine = s.StatLine

	p.frame = s.Frame
	p.completed = s.Completed
	p.frameDone = s.FrameDone
}

// State is a complete machine snapshot taken at an instruction boundary.
// Restoring it on a Bus loaded with the same cartridge resumes execution
// bit-identically, mid-frame state included. Every field is exported plain
// data so an external collaborator can serialize it as an opaque blob.
type State struct {
	CPU    CPUState
	PPU    PPUState
	Timer  TimerState
	IRQ    IRQState
	Joypad JoypadState
	Serial SerialState

	WRAM [0x2000]uint8
	HRAM [0x7f]uint8

	BootDisabled bool
	DMASource    uint8
	DMACycles    uint16
	Cycles       uint64

	Mapper  MapperState
	CartRAM []uint8
}

func (b *Bus) State() State {
	s := State{
		CPU:    b.cpu.state(),
		PPU:    b.ppu.state(),
		Timer:  b.timer.state(),
		IRQ:    b.irq.state(),
		Joypad: b.joypad.state(),
		Serial: b.serial.state(),

		WRAM: b.wram,
		HRAM: b.hram,

		BootDisabled: b.bootDisabled,
		DMASource:    b.dmaSource,
		DMACycles:    b.dmaCycles,
		Cycles:       b.cycles,
	}
	if b.cart != nil {
		s.Mapper = b.cart.mapper.state()
		s.CartRAM = append([]uint8(nil), b.cart.ram...)
	}
	return s
}

// Restore rewires a snapshot into the live machine.
func (b *Bus) Restore(s State) {
	b.cpu.restore(s.CPU)
	b.ppu.restore(s.PPU)
	b.timer.restore(s.Timer)
	b.irq.restore(s.IRQ)
	b.joypad.restore(s.Joypad)
	b.serial.restore(s.Serial)

	b.wram = s.WRAM
	b.hram = s.HRAM
	b.bootDisabled = s.BootDisabled
	b.dmaSource = s.DMASource
	b.dmaCycles = s.DMACycles
	b.cycles = s.Cycles

	if b.cart != nil {
		b.cart.mapper.restore(s.Mapper)
		copy(b.cart.ram, s.CartRAM)
	}
}
