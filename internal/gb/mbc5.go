package gb

// MBC5 extends the ROM bank register to 9 bits across two control ranges and,
// unlike MBC1/MBC3, really can map bank 0 into the switchable window.
type MBC5 struct {
	cart *Cart

	romBank    uint16 // 9 bits
	ramBank    uint8  // 4 bits
	ramEnabled bool
}

func (m *MBC5) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return m.cart.rom[addr]
	case addr < 0x8000:
		bank := int(m.romBank) % m.cart.romBanks
		return m.cart.rom[bank*romBankSizeBytes+int(addr&0x3fff)]
	case addr >= 0xa000 && addr < 0xc000:
		if !m.ramEnabled || len(m.cart.ram) == 0 {
			return 0xff
		}
		return m.cart.ram[(int(m.ramBank)*ramBankSizeBytes+int(addr-0xa000))%len(m.cart.ram)]
	}
	return 0xff
}

func (m *MBC5) Write8(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0f == 0x0a
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(data)
	case addr < 0x4000:
		m.romBank = uint16(data&0x01)<<8 | m.romBank&0xff
	case addr < 0x6000:
		m.ramBank = data & 0x0f
	case addr >= 0xa000 && addr < 0xc000:
		if m.ramEnabled && len(m.cart.ram) > 0 {
			m.cart.ram[(int(m.ramBank)*ramBankSizeBytes+int(addr-0xa000))%len(m.cart.ram)] = data
		}
	}
}

func (m *MBC5) state() MapperState {
	return MapperState{
		ROMBank:    m.romBank,
		RAMBank:    m.ramBank,
		RAMEnabled: m.ramEnabled,
	}
}

func (m *MBC5) restore(s MapperState) {
	m.romBank = s.ROMBank
	m.ramBank = s.RAMBank
	m.ramEnabled = s.RAMEnabled
}
