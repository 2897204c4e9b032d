package gb

import "fmt"

// Mapper translates CPU addresses in the cartridge ranges (0x0000-0x7FFF ROM,
// 0xA000-0xBFFF RAM) to offsets in the ROM/RAM images. Writes into the ROM
// range are bank-control register writes, never memory writes. The set of
// mappers is closed and selected once at load time from the header type byte.
type Mapper interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, data uint8)

	// state and restore exist for whole-machine snapshots.
	state() MapperState
	restore(s MapperState)
}

// MapperState captures the banking registers of any supported mapper.
type MapperState struct {
	ROMBank    uint16
	RAMBank    uint8
	RAMEnabled bool
	BankMode   uint8
}

func NewMapper(cart *Cart) (Mapper, error) {
	switch cart.cartType {
	case 0x00:
		return &ROMOnly{cart: cart}, nil
	case 0x01, 0x02, 0x03:
		return &MBC1{cart: cart, romBank: 1}, nil
	case 0x0f, 0x10, 0x11, 0x12, 0x13:
		return &MBC3{cart: cart, romBank: 1}, nil
	case 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e:
		return &MBC5{cart: cart, romBank: 1}, nil
	}
	return nil, fmt.Errorf("%w: cartridge type %02X", ErrUnsupportedMapper, cart.cartType)
}

// ROMOnly is a 32 KiB cartridge without banking hardware.
type ROMOnly struct {
	cart *Cart
}

func (m *ROMOnly) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if int(addr) < len(m.cart.rom) {
			return m.cart.rom[addr]
		}
	case addr >= 0xa000 && addr < 0xc000:
		if len(m.cart.ram) > 0 {
			return m.cart.ram[int(addr-0xa000)%len(m.cart.ram)]
		}
	}
	return 0xff
}

func (m *ROMOnly) Write8(addr uint16, data uint8) {
	if addr >= 0xa000 && addr < 0xc000 && len(m.cart.ram) > 0 {
		m.cart.ram[int(addr-0xa000)%len(m.cart.ram)] = data
	}
}

func (m *ROMOnly) state() MapperState     { return MapperState{} }
func (m *ROMOnly) restore(_ MapperState) {}
