package gb

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsPerLine   = 456
	linesPerFrame = 154
	oamScanDots   = 80

	spritesPerLine = 10
	spriteCount    = 40
	oamSize        = 0xa0
)

// PPU mode numbers as they appear in STAT bits 0-1.
const (
	modeHBlank uint8 = iota
	modeVBlank
	modeOAMScan
	modeTransfer
)

// LCDC bits.
const (
	lcdcBGEnable = uint8(1 << iota)
	lcdcOBJEnable
	lcdcOBJSize
	lcdcBGTileMap
	lcdcTileData
	lcdcWindowEnable
	lcdcWindowTileMap
	lcdcLCDEnable
)

// STAT bits. Bits 0-2 are hardware-driven status, 3-6 interrupt selects.
const (
	statLYCFlag   = uint8(1 << 2)
	statHBlankInt = uint8(1 << 3)
	statVBlankInt = uint8(1 << 4)
	statOAMInt    = uint8(1 << 5)
	statLYCInt    = uint8(1 << 6)
)

// Sprite attribute bits.
const (
	attrPalette = uint8(1 << 4)
	attrXFlip   = uint8(1 << 5)
	attrYFlip   = uint8(1 << 6)
	attrBehind  = uint8(1 << 7)
)

type sprite struct {
	y    uint8 // screen y + 16
	x    uint8 // screen x + 8
	tile uint8
	attr uint8

	fetched bool
}

// PPU is the scanline/dot state machine. Tic advances it by whole machine
// cycles; internally it steps one dot at a time so mid-scanline register
// effects land on the right pixel.
type PPU struct {
	irq *IRQ

	vram [0x2000]uint8
	oam  [0xa0]uint8

	lcdc uint8
	stat uint8 // interrupt select bits 3-6 only, the rest is derived
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	mode uint8
	dot  int

	// pixel transfer state, valid during mode 3
	bgFifo       pixelFIFO
	objFifo      pixelFIFO
	fetch        fetcher
	x            int
	discard      uint8 // leftover of SCX to drop at line start
	lineSprites  []sprite
	spriteStall  int
	stalledIndex int

	windowActive bool
	windowHitY   bool
	windowLine   uint8

	statLine bool

	frame     [ScreenHeight][ScreenWidth]uint8
	completed [ScreenHeight][ScreenWidth]uint8
	frameDone bool
}

func NewPPU(irq *IRQ) *PPU {
	p := &PPU{irq: irq}
	p.reset()
	return p
}

func (p *PPU) reset() {
	irq := p.irq
	*p = PPU{
		irq:         irq,
		lineSprites: make([]sprite, 0, spritesPerLine),
		mode:        modeOAMScan,
	}
}

// Tic advances the PPU by the given number of machine cycles (4 dots each).
func (p *PPU) Tic(mcycles uint8) {
	for i := 0; i < int(mcycles)*4; i++ {
		p.ticDot()
	}
}

func (p *PPU) ticDot() {
	if p.lcdc&lcdcLCDEnable == 0 {
		return
	}

	p.dot++
	switch p.mode {
	case modeOAMScan:
		if p.dot == oamScanDots {
			p.scanOAM()
			p.startTransfer()
		}
	case modeTransfer:
		p.ticTransfer()
	case modeHBlank, modeVBlank:
		if p.dot == dotsPerLine {
			p.nextLine()
		}
	}
}

func (p *PPU) spriteHeight() int {
	if p.lcdc&lcdcOBJSize != 0 {
		return 16
	}
	return 8
}

// scanOAM selects up to 10 sprites visible on the current line, in OAM
// order. OAM order is what breaks x ties later: first fetched wins.
func (p *PPU) scanOAM() {
	p.lineSprites = p.lineSprites[:0]
	h := p.spriteHeight()
	for i := 0; i < spriteCount && len(p.lineSprites) < spritesPerLine; i++ {
		y := int(p.oam[i*4])
		line := int(p.ly) + 16
		if line >= y && line < y+h {
			p.lineSprites = append(p.lineSprites, sprite{
				y:    p.oam[i*4],
				x:    p.oam[i*4+1],
				tile: p.oam[i*4+2],
				attr: p.oam[i*4+3],
			})
		}
	}
}

func (p *PPU) startTransfer() {
	p.setMode(modeTransfer)
	p.x = 0
	p.discard = p.scx & 7
	p.bgFifo.clear()
	p.objFifo.clear()
	p.windowActive = false
	p.spriteStall = 0
	if p.ly == p.wy {
		p.windowHitY = true
	}

	mapBase := uint16(0x9800)
	if p.lcdc&lcdcBGTileMap != 0 {
		mapBase = 0x9c00
	}
	row := p.ly + p.scy
	p.fetch.start(mapBase+uint16(row/8)*32, p.scx/8, row%8)
}

// startWindow restarts the fetch pipeline at the window map. The background
// FIFO is dropped, which is where the window's extra mode-3 dots come from.
func (p *PPU) startWindow() {
	p.windowActive = true
	p.bgFifo.clear()

	mapBase := uint16(0x9800)
	if p.lcdc&lcdcWindowTileMap != 0 {
		mapBase = 0x9c00
	}
	p.fetch.start(mapBase+uint16(p.windowLine/8)*32, 0, p.windowLine%8)
}

// nextSpriteAt returns the index of the first unfetched sprite covering the
// current output column, or -1.
func (p *PPU) nextSpriteAt() int {
	if p.lcdc&lcdcOBJEnable == 0 {
		return -1
	}
	for i := range p.lineSprites {
		s := &p.lineSprites[i]
		if !s.fetched && int(s.x) <= p.x+8 {
			return i
		}
	}
	return -1
}

func (p *PPU) ticTransfer() {
	// a sprite fetch stalls the pipeline for a fixed window, then the
	// sprite row is merged into the object FIFO
	if p.spriteStall > 0 {
		p.spriteStall--
		if p.spriteStall == 0 {
			p.mergeSprite(p.stalledIndex)
		}
		return
	}

	if !p.windowActive &&
		p.lcdc&lcdcWindowEnable != 0 && p.windowHitY && p.x >= int(p.wx)-7 {
		p.startWindow()
		return
	}

	if i := p.nextSpriteAt(); i >= 0 {
		p.lineSprites[i].fetched = true
		p.stalledIndex = i
		p.spriteStall = 6
		return
	}

	p.fetch.tic(p)

	// popping requires more than one full tile row buffered, which is what
	// stretches mode 3 past its 172-dot minimum
	if p.bgFifo.size() <= 8 {
		return
	}

	bg := p.bgFifo.pop()
	var obj fifoPixel
	if p.objFifo.size() > 0 {
		obj = p.objFifo.pop()
	}

	if p.discard > 0 {
		p.discard--
		return
	}

	p.frame[p.ly][p.x] = p.mixPixel(bg, obj)
	p.x++
	if p.x == ScreenWidth {
		p.setMode(modeHBlank)
	}
}

// mixPixel applies the priority rule between the background/window pixel and
// the sprite pixel, then maps the winner through its palette to a 2-bit shade.
func (p *PPU) mixPixel(bg, obj fifoPixel) uint8 {
	bgColor := bg.color
	if p.lcdc&lcdcBGEnable == 0 {
		bgColor = 0
	}

	useObj := p.lcdc&lcdcOBJEnable != 0 && obj.color != 0
	if useObj && obj.priority && bgColor != 0 {
		useObj = false
	}

	if useObj {
		pal := p.obp0
		if obj.palette != 0 {
			pal = p.obp1
		}
		return pal >> (2 * obj.color) & 3
	}
	return p.bgp >> (2 * bgColor) & 3
}

// mergeSprite reads one sprite row from VRAM and overlays it on the object
// FIFO. Already-populated opaque pixels win: they belong to an earlier
// fetched sprite.
func (p *PPU) mergeSprite(index int) {
	s := p.lineSprites[index]
	h := p.spriteHeight()

	line := int(p.ly) + 16 - int(s.y)
	if s.attr&attrYFlip != 0 {
		line = h - 1 - line
	}
	tile := s.tile
	if h == 16 {
		tile &= 0xfe
	}
	if line >= 8 {
		tile |= 0x01
		line -= 8
	}

	off := (uint16(tile)*16 + uint16(line)*2) & 0x1fff
	lo := p.vram[off]
	hi := p.vram[off+1]

	for p.objFifo.size() < 8 {
		p.objFifo.push(fifoPixel{})
	}

	// skip the part of the sprite hanging off the left edge
	skip := 0
	if s.x < 8 {
		skip = 8 - int(s.x)
	}
	for i := skip; i < 8; i++ {
		bit := 7 - i
		if s.attr&attrXFlip != 0 {
			bit = i
		}
		color := (hi>>bit&1)<<1 | lo>>bit&1
		slot := p.objFifo.at(i - skip)
		if slot.color == 0 {
			*slot = fifoPixel{
				color:    color,
				palette:  s.attr & attrPalette >> 4,
				priority: s.attr&attrBehind != 0,
			}
		}
	}
}

func (p *PPU) nextLine() {
	p.dot = 0
	if p.windowActive {
		p.windowLine++
		p.windowActive = false
	}
	p.ly++

	switch {
	case p.ly == ScreenHeight:
		p.setMode(modeVBlank)
		p.irq.Request(irqVBlank)
		p.completed = p.frame
		p.frameDone = true
	case p.ly < ScreenHeight:
		p.setMode(modeOAMScan)
	case p.ly < linesPerFrame:
		p.updateStatLine()
	default:
		p.ly = 0
		p.windowLine = 0
		p.windowHitY = false
		p.setMode(modeOAMScan)
	}
}

func (p *PPU) setMode(mode uint8) {
	p.mode = mode
	p.updateStatLine()
}

// updateStatLine recomputes the STAT interrupt line. The request fires on a
// rising edge only: overlapping sources on an already-high line are absorbed,
// as on hardware.
func (p *PPU) updateStatLine() {
	sig := p.stat&statLYCInt != 0 && p.ly == p.lyc
	switch p.mode {
	case modeHBlank:
		sig = sig || p.stat&statHBlankInt != 0
	case modeVBlank:
		sig = sig || p.stat&statVBlankInt != 0
	case modeOAMScan:
		sig = sig || p.stat&statOAMInt != 0
	}
	if sig && !p.statLine {
		p.irq.Request(irqStat)
	}
	p.statLine = sig
}

// Mode returns the current PPU mode for bus access checks.
func (p *PPU) Mode() uint8 {
	return p.mode
}

// Frame returns the last completed frame as 2-bit shades. The buffer is only
// replaced at the VBlank transition, so it is always a whole frame.
func (p *PPU) Frame() *[ScreenHeight][ScreenWidth]uint8 {
	return &p.completed
}

// consumeFrameDone reports and clears the frame-complete signal.
func (p *PPU) consumeFrameDone() bool {
	done := p.frameDone
	p.frameDone = false
	return done
}

func (p *PPU) readVRAM8(addr uint16) uint8 {
	if p.mode == modeTransfer {
		return 0xff
	}
	return p.vram[addr&0x1fff]
}

func (p *PPU) writeVRAM8(addr uint16, data uint8) {
	if p.mode == modeTransfer {
		return
	}
	p.vram[addr&0x1fff] = data
}

func (p *PPU) readOAM8(addr uint16) uint8 {
	if p.mode == modeOAMScan || p.mode == modeTransfer {
		return 0xff
	}
	return p.oam[(addr-0xfe00)%uint16(len(p.oam))]
}

func (p *PPU) writeOAM8(addr uint16, data uint8) {
	if p.mode == modeOAMScan || p.mode == modeTransfer {
		return
	}
	p.oam[(addr-0xfe00)%uint16(len(p.oam))] = data
}

// dmaWriteOAM bypasses the mode lockout: OAM DMA writes land regardless.
func (p *PPU) dmaWriteOAM(index int, data uint8) {
	p.oam[index] = data
}

func (p *PPU) readRegister(addr uint16) uint8 {
	switch addr {
	case addrLCDC:
		return p.lcdc
	case addrSTAT:
		v := 0x80 | p.stat | p.mode
		if p.ly == p.lyc {
			v |= statLYCFlag
		}
		return v
	case addrSCY:
		return p.scy
	case addrSCX:
		return p.scx
	case addrLY:
		return p.ly
	case addrLYC:
		return p.lyc
	case addrBGP:
		return p.bgp
	case addrOBP0:
		return p.obp0
	case addrOBP1:
		return p.obp1
	case addrWY:
		return p.wy
	case addrWX:
		return p.wx
	}
	return 0xff
}

func (p *PPU) writeRegister(addr uint16, data uint8) {
	switch addr {
	case addrLCDC:
		was := p.lcdc&lcdcLCDEnable != 0
		p.lcdc = data
		now := p.lcdc&lcdcLCDEnable != 0
		if was && !now {
			// LCD off: LY and the state machine reset, VRAM opens up
			p.ly = 0
			p.dot = 0
			p.setMode(modeHBlank)
		}
		if !was && now {
			p.dot = 0
			p.setMode(modeOAMScan)
		}
	case addrSTAT:
		p.stat = data & 0x78
		p.updateStatLine()
	case addrSCY:
		p.scy = data
	case addrSCX:
		p.scx = data
	case addrLY:
		// read only
	case addrLYC:
		p.lyc = data
		p.updateStatLine()
	case addrBGP:
		p.bgp = data
	case addrOBP0:
		p.obp0 = data
	case addrOBP1:
		p.obp1 = data
	case addrWY:
		p.wy = data
	case addrWX:
		p.wx = data
	}
}
