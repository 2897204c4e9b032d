package gb

// fifoPixel is one entry of a pixel FIFO: a 2-bit color number plus the
// sprite attributes needed at merge time.
type fifoPixel struct {
	color    uint8
	palette  uint8 // OBP0 or OBP1 for sprite pixels
	priority bool  // sprite behind background colors 1-3
}

// pixelFIFO is a fixed-size ring. 16 slots fit two background tile fetches.
type pixelFIFO struct {
	pixels [16]fifoPixel
	out    int
	in     int
	len    int
}

func (f *pixelFIFO) push(px fifoPixel) {
	f.pixels[f.in] = px
	f.in = (f.in + 1) % len(f.pixels)
	f.len++
}

func (f *pixelFIFO) pop() fifoPixel {
	px := f.pixels[f.out]
	f.out = (f.out + 1) % len(f.pixels)
	f.len--
	return px
}

// at peeks the n-th entry from the output end without popping.
func (f *pixelFIFO) at(n int) *fifoPixel {
	return &f.pixels[(f.out+n)%len(f.pixels)]
}

func (f *pixelFIFO) size() int {
	return f.len
}

func (f *pixelFIFO) clear() {
	f.in, f.out, f.len = 0, 0, 0
}

type fetcherState uint8

const (
	fetchTileID fetcherState = iota
	fetchTileLo
	fetchTileHi
	fetchPush
)

// fetcher is the background/window tile fetch pipeline. It runs at half the
// dot clock and pushes 8 pixels at a time into the background FIFO whenever
// there is room for a full tile row.
type fetcher struct {
	state fetcherState
	ticks uint8

	mapAddr  uint16 // VRAM address of the current tile map row
	tileX    uint8  // tile column within the map row, wraps at 32
	tileLine uint8  // pixel row within the tile

	tileID uint8
	lo     uint8
	hi     uint8
}

func (f *fetcher) start(mapRowAddr uint16, tileX, tileLine uint8) {
	f.state = fetchTileID
	f.ticks = 0
	f.mapAddr = mapRowAddr
	f.tileX = tileX & 0x1f
	f.tileLine = tileLine
}

// tileDataAddr resolves the VRAM address of one tile row honoring the LCDC
// addressing mode: 0x8000 unsigned or 0x9000 signed.
func (p *PPU) tileDataAddr(tileID uint8, line uint8) uint16 {
	if p.lcdc&lcdcTileData != 0 {
		return 0x8000 + uint16(tileID)*16 + uint16(line)*2
	}
	return uint16(0x9000 + int(int8(tileID))*16 + int(line)*2)
}

func (f *fetcher) tic(p *PPU) {
	f.ticks++
	if f.ticks < 2 {
		return
	}
	f.ticks = 0

	switch f.state {
	case fetchTileID:
		f.tileID = p.vram[(f.mapAddr+uint16(f.tileX))&0x1fff]
		f.state = fetchTileLo

	case fetchTileLo:
		f.lo = p.vram[p.tileDataAddr(f.tileID, f.tileLine)&0x1fff]
		f.state = fetchTileHi

	case fetchTileHi:
		f.hi = p.vram[(p.tileDataAddr(f.tileID, f.tileLine)+1)&0x1fff]
		f.state = fetchPush

	case fetchPush:
		if p.bgFifo.size() <= 8 {
			for bit := 7; bit >= 0; bit-- {
				color := (f.hi>>bit&1)<<1 | f.lo>>bit&1
				p.bgFifo.push(fifoPixel{color: color})
			}
			f.tileX = (f.tileX + 1) & 0x1f
			f.state = fetchTileID
		}
	}
}
