package gb

// MBC3 has a 7-bit ROM bank register (0 selects 1) and four RAM banks.
// The RTC registers 0x08-0x0C are accepted as bank selections and read as
// zero: clock persistence is the host's concern, not the core's.
type MBC3 struct {
	cart *Cart

	romBank    uint8 // 7 bits
	ramBank    uint8 // 0-3 RAM, 0x08-0x0c RTC
	ramEnabled bool
}

func (m *MBC3) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return m.cart.rom[addr]
	case addr < 0x8000:
		bank := int(m.romBank) % m.cart.romBanks
		return m.cart.rom[bank*romBankSizeBytes+int(addr&0x3fff)]
	case addr >= 0xa000 && addr < 0xc000:
		if !m.ramEnabled {
			return 0xff
		}
		if m.ramBank >= 0x08 {
			return 0 // RTC registers, not emulated
		}
		if len(m.cart.ram) == 0 {
			return 0xff
		}
		return m.cart.ram[(int(m.ramBank)*ramBankSizeBytes+int(addr-0xa000))%len(m.cart.ram)]
	}
	return 0xff
}

func (m *MBC3) Write8(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0f == 0x0a
	case addr < 0x4000:
		m.romBank = data & 0x7f
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.ramBank = data & 0x0f
	case addr < 0x8000:
		// RTC latch sequence, ignored
	case addr >= 0xa000 && addr < 0xc000:
		if !m.ramEnabled || m.ramBank >= 0x08 || len(m.cart.ram) == 0 {
			return
		}
		m.cart.ram[(int(m.ramBank)*ramBankSizeBytes+int(addr-0xa000))%len(m.cart.ram)] = data
	}
}

func (m *MBC3) state() MapperState {
	return MapperState{
		ROMBank:    uint16(m.romBank),
		RAMBank:    m.ramBank,
		RAMEnabled: m.ramEnabled,
	}
}

func (m *MBC3) restore(s MapperState) {
	m.romBank = uint8(s.ROMBank)
	m.ramBank = s.RAMBank
	m.ramEnabled = s.RAMEnabled
}
