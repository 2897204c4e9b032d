package gb

// Read8 is the CPU's view of the address space. While OAM DMA is running the
// CPU can only reach HRAM and the 0xFF00 page; the rest of the map reads back
// 0xFF. HRAM-resident code keeps polling I/O registers mid-transfer.
func (b *Bus) Read8(addr uint16) uint8 {
	if b.dmaCycles > 0 && !dmaAccessible(addr) {
		return 0xff
	}
	return b.read8(addr)
}

// Write8 is the CPU's view of the address space. Writes outside HRAM and the
// 0xFF00 page are dropped while OAM DMA is running.
func (b *Bus) Write8(addr uint16, data uint8) {
	if b.dmaCycles > 0 && !dmaAccessible(addr) {
		return
	}
	b.write8(addr, data)
}

func dmaAccessible(addr uint16) bool {
	return addr >= 0xff00
}

// read8 routes without the DMA lockout. The DMA engine itself copies through
// here so its source bytes come from the same map the CPU sees.
func (b *Bus) read8(addr uint16) uint8 {
	switch {
	case addr < 0x0100 && !b.bootDisabled && len(b.bootROM) == bootROMSize:
		return b.bootROM[addr]
	case addr < 0x8000:
		return b.cart.Read8(addr)
	case addr < 0xa000:
		return b.ppu.readVRAM8(addr)
	case addr < 0xc000:
		return b.cart.Read8(addr)
	case addr < 0xfe00:
		// 0xE000-0xFDFF echoes work RAM
		return b.wram[addr&0x1fff]
	case addr < 0xfea0:
		return b.ppu.readOAM8(addr)
	case addr < 0xff00:
		// prohibited region
		return 0xff
	case addr < 0xff80:
		return b.ioRead8(addr)
	case addr < 0xffff:
		return b.hram[addr-0xff80]
	default:
		return b.irq.readEnable()
	}
}

func (b *Bus) write8(addr uint16, data uint8) {
	switch {
	case addr < 0x0100 && !b.bootDisabled && len(b.bootROM) == bootROMSize:
		// boot ROM shadows the cartridge, nothing to write
	case addr < 0x8000:
		b.cart.Write8(addr, data)
	case addr < 0xa000:
		b.ppu.writeVRAM8(addr, data)
	case addr < 0xc000:
		b.cart.Write8(addr, data)
	case addr < 0xfe00:
		b.wram[addr&0x1fff] = data
	case addr < 0xfea0:
		b.ppu.writeOAM8(addr, data)
	case addr < 0xff00:
		// prohibited region
	case addr < 0xff80:
		b.ioWrite8(addr, data)
	case addr < 0xffff:
		b.hram[addr-0xff80] = data
	default:
		b.irq.writeEnable(data)
	}
}

func (b *Bus) ioRead8(addr uint16) uint8 {
	switch {
	case addr == addrP1:
		return b.joypad.readP1()
	case addr == addrSB || addr == addrSC:
		return b.serial.readRegister(addr)
	case addr >= addrDIV && addr <= addrTAC:
		return b.timer.readRegister(addr)
	case addr == addrIF:
		return b.irq.readFlags()
	case addr == addrDMA:
		return b.dmaSource
	case addr >= addrLCDC && addr <= addrWX:
		return b.ppu.readRegister(addr)
	case addr == addrBOOT:
		if b.bootDisabled {
			return 0xff
		}
		return 0xfe
	default:
		return 0xff
	}
}

func (b *Bus) ioWrite8(addr uint16, data uint8) {
	switch {
	case addr == addrP1:
		b.joypad.writeP1(data)
	case addr == addrSB || addr == addrSC:
		b.serial.writeRegister(addr, data)
	case addr >= addrDIV && addr <= addrTAC:
		b.timer.writeRegister(addr, data)
	case addr == addrIF:
		b.irq.writeFlags(data)
	case addr == addrDMA:
		b.startDMA(data)
	case addr >= addrLCDC && addr <= addrWX:
		b.ppu.writeRegister(addr, data)
	case addr == addrBOOT:
		// one-way switch, the boot ROM never comes back
		if data&0x01 != 0 {
			b.bootDisabled = true
		}
	}
}
