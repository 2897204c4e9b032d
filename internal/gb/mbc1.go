package gb

// MBC1 supports up to 2 MiB ROM and 32 KiB RAM. The 5-bit ROM bank register
// cannot hold zero: writing 0 selects bank 1, so banks 0x20, 0x40 and 0x60
// are unreachable through the switchable window. In banking mode 1 the upper
// two bits remap the fixed 0x0000-0x3FFF window as well.
type MBC1 struct {
	cart *Cart

	romBank    uint8 // lower 5 bits
	upperBits  uint8 // RAM bank or ROM bank high bits, 2 bits
	bankMode   uint8 // 0: ROM banking, 1: RAM banking
	ramEnabled bool
}

func (m *MBC1) romOffset(addr uint16) int {
	bank := 0
	switch {
	case addr < 0x4000:
		if m.bankMode == 1 {
			bank = int(m.upperBits) << 5
		}
	default:
		bank = int(m.upperBits)<<5 | int(m.romBank)
	}
	bank %= m.cart.romBanks
	return bank*romBankSizeBytes + int(addr&0x3fff)
}

func (m *MBC1) ramOffset(addr uint16) int {
	bank := 0
	if m.bankMode == 1 {
		bank = int(m.upperBits) % m.cart.ramBanks
	}
	return bank*ramBankSizeBytes + int(addr-0xa000)
}

func (m *MBC1) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.cart.rom[m.romOffset(addr)]
	case addr >= 0xa000 && addr < 0xc000:
		if !m.ramEnabled || len(m.cart.ram) == 0 {
			return 0xff
		}
		return m.cart.ram[m.ramOffset(addr)%len(m.cart.ram)]
	}
	return 0xff
}

func (m *MBC1) Write8(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0f == 0x0a
	case addr < 0x4000:
		m.romBank = data & 0x1f
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.upperBits = data & 0x03
	case addr < 0x8000:
		m.bankMode = data & 0x01
	case addr >= 0xa000 && addr < 0xc000:
		if m.ramEnabled && len(m.cart.ram) > 0 {
			m.cart.ram[m.ramOffset(addr)%len(m.cart.ram)] = data
		}
	}
}

func (m *MBC1) state() MapperState {
	return MapperState{
		ROMBank:    uint16(m.romBank),
		RAMBank:    m.upperBits,
		RAMEnabled: m.ramEnabled,
		BankMode:   m.bankMode,
	}
}

func (m *MBC1) restore(s MapperState) {
	m.romBank = uint8(s.ROMBank)
	m.upperBits = s.RAMBank
	m.ramEnabled = s.RAMEnabled
	m.bankMode = s.BankMode
}
