package gb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

const (
	headerStart = 0x100
	headerEnd   = 0x150

	romBankSizeBytes = 0x4000
	ramBankSizeBytes = 0x2000
)

var (
	ErrTruncatedROM      = errors.New("image is shorter than the declared ROM size")
	ErrUnsupportedMapper = errors.New("unsupported mapper type")
	ErrBadHeader         = errors.New("invalid cartridge header")
)

// Cart owns the ROM image, optional battery-backed RAM and the active mapper.
// The ROM is immutable after load; RAM persists for the process lifetime and
// is exposed to the host for persistence at session boundaries.
type Cart struct {
	rom []uint8
	ram []uint8

	title    string
	cartType uint8
	romBanks int
	ramBanks int
	battery  bool

	mapper Mapper
}

// NewCartFromFile reads a .gb ROM image and returns a Cart.
func NewCartFromFile(path string) (*Cart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the file: %w", err)
	}
	return NewCart(data)
}

// NewCart validates the header of a raw ROM image, selects the mapper it
// declares and returns a ready Cart. Validation failures abort the load:
// nothing is ever executed from a rejected image.
func NewCart(rom []uint8) (*Cart, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("%w: image of %d bytes has no header", ErrBadHeader, len(rom))
	}

	var header struct {
		EntryPoint     [4]uint8
		Logo           [48]uint8
		Title          [15]uint8
		CGBFlag        uint8
		NewLicensee    [2]uint8
		SGBFlag        uint8
		CartType       uint8
		ROMSize        uint8
		RAMSize        uint8
		DestCode       uint8
		OldLicensee    uint8
		MaskROMVersion uint8
		HeaderChecksum uint8
		GlobalChecksum [2]uint8
	}
	if err := binary.Read(bytes.NewReader(rom[headerStart:headerEnd]), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("couldn't read the header: %w", err)
	}

	var checksum uint8
	for _, b := range rom[0x134:0x14d] {
		checksum = checksum - b - 1
	}
	if checksum != header.HeaderChecksum {
		return nil, fmt.Errorf("%w: header checksum %02X, computed %02X",
			ErrBadHeader, header.HeaderChecksum, checksum)
	}

	if header.ROMSize > 0x08 {
		return nil, fmt.Errorf("%w: ROM size code %02X", ErrBadHeader, header.ROMSize)
	}
	romBanks := 2 << header.ROMSize
	if len(rom) < romBanks*romBankSizeBytes {
		return nil, fmt.Errorf("%w: declared %d bytes, image has %d",
			ErrTruncatedROM, romBanks*romBankSizeBytes, len(rom))
	}

	ramBanks, err := ramBanksFromCode(header.RAMSize)
	if err != nil {
		return nil, err
	}

	cart := &Cart{
		rom:      rom,
		ram:      make([]uint8, ramBanks*ramBankSizeBytes),
		title:    string(bytes.TrimRight(header.Title[:], "\x00")),
		cartType: header.CartType,
		romBanks: romBanks,
		ramBanks: ramBanks,
	}
	switch header.CartType {
	case 0x03, 0x0f, 0x10, 0x13, 0x1b, 0x1e:
		cart.battery = true
	}

	cart.mapper, err = NewMapper(cart)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func ramBanksFromCode(code uint8) (int, error) {
	switch code {
	case 0x00:
		return 0, nil
	case 0x01:
		// 2 KiB, unofficial but present in the wild. rounded up to one bank.
		return 1, nil
	case 0x02:
		return 1, nil
	case 0x03:
		return 4, nil
	case 0x04:
		return 16, nil
	case 0x05:
		return 8, nil
	}
	return 0, fmt.Errorf("%w: RAM size code %02X", ErrBadHeader, code)
}

// Title returns the title field from the cartridge header.
func (c Cart) Title() string {
	return c.title
}

// HasBattery reports whether the cartridge RAM is battery backed and worth
// persisting between sessions.
func (c Cart) HasBattery() bool {
	return c.battery
}

// BatteryRAM exposes the external RAM buffer for a storage collaborator.
// The core itself never touches a filesystem.
func (c *Cart) BatteryRAM() []uint8 {
	return c.ram
}

// LoadBatteryRAM restores previously persisted external RAM.
func (c *Cart) LoadBatteryRAM(data []uint8) {
	copy(c.ram, data)
}

func (c *Cart) Read8(addr uint16) uint8 {
	return c.mapper.Read8(addr)
}

func (c *Cart) Write8(addr uint16, data uint8) {
	c.mapper.Write8(addr, data)
}
