package gb

// I/O register addresses.
const (
	addrP1 = uint16(0xff00) // joypad matrix

	addrSB = uint16(0xff01) // serial transfer data
	addrSC = uint16(0xff02) // serial transfer control

	addrDIV  = uint16(0xff04) // divider, write resets
	addrTIMA = uint16(0xff05) // timer counter
	addrTMA  = uint16(0xff06) // timer modulo
	addrTAC  = uint16(0xff07) // timer control

	addrIF = uint16(0xff0f) // interrupt flags
	addrIE = uint16(0xffff) // interrupt enable

	addrLCDC = uint16(0xff40) // LCD control
	addrSTAT = uint16(0xff41) // LCD status
	addrSCY  = uint16(0xff42) // background scroll Y
	addrSCX  = uint16(0xff43) // background scroll X
	addrLY   = uint16(0xff44) // current scanline, read only
	addrLYC  = uint16(0xff45) // scanline compare
	addrDMA  = uint16(0xff46) // OAM DMA source, write starts transfer
	addrBGP  = uint16(0xff47) // background palette
	addrOBP0 = uint16(0xff48) // object palette 0
	addrOBP1 = uint16(0xff49) // object palette 1
	addrWY   = uint16(0xff4a) // window Y
	addrWX   = uint16(0xff4b) // window X plus 7

	addrBOOT = uint16(0xff50) // boot ROM disable, write once
)
