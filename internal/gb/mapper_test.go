package gb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bankAt reads the bank marker makeTestROM plants at the start of each bank.
func bankAt(c *Cart, addr uint16) int {
	return int(c.Read8(addr)) | int(c.Read8(addr+1))<<8
}

func TestMBC1_Banking(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x01, 0x05, 0x00)) // 64 banks, 1 MiB
	assert.NoError(t, err)

	t.Run("fixed window maps bank 0", func(t *testing.T) {
		assert.Equal(t, 0, bankAt(cart, 0x0000))
	})

	t.Run("bank register selects", func(t *testing.T) {
		cart.Write8(0x2000, 0x05)
		assert.Equal(t, 5, bankAt(cart, 0x4000))
	})

	t.Run("bank 0 aliases to 1", func(t *testing.T) {
		cart.Write8(0x2000, 0x00)
		assert.Equal(t, 1, bankAt(cart, 0x4000))
	})

	t.Run("upper bits extend past 5-bit banks", func(t *testing.T) {
		cart.Write8(0x2000, 0x01)
		cart.Write8(0x4000, 0x01) // upper bits = 1
		assert.Equal(t, 0x21, bankAt(cart, 0x4000))
	})

	t.Run("bank 0x20 is unreachable, alias lands on 0x21", func(t *testing.T) {
		cart.Write8(0x2000, 0x00)
		assert.Equal(t, 0x21, bankAt(cart, 0x4000))
	})

	t.Run("mode 1 remaps the fixed window", func(t *testing.T) {
		cart.Write8(0x6000, 0x01)
		assert.Equal(t, 0x20, bankAt(cart, 0x0000))
		cart.Write8(0x6000, 0x00)
		assert.Equal(t, 0, bankAt(cart, 0x0000))
	})
}

func TestMBC1_RAMEnable(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x03, 0x01, 0x03)) // 32 KiB RAM
	assert.NoError(t, err)

	t.Run("disabled RAM reads 0xFF and drops writes", func(t *testing.T) {
		cart.Write8(0xa000, 0x42)
		assert.Equal(t, uint8(0xff), cart.Read8(0xa000))
	})

	t.Run("0x0A in the low nibble enables", func(t *testing.T) {
		cart.Write8(0x0000, 0x0a)
		cart.Write8(0xa000, 0x42)
		assert.Equal(t, uint8(0x42), cart.Read8(0xa000))
	})

	t.Run("any other value disables again", func(t *testing.T) {
		cart.Write8(0x0000, 0x00)
		assert.Equal(t, uint8(0xff), cart.Read8(0xa000))
	})

	t.Run("mode 1 switches RAM banks", func(t *testing.T) {
		cart.Write8(0x0000, 0x0a)
		cart.Write8(0x6000, 0x01) // RAM banking mode
		cart.Write8(0x4000, 0x01) // bank 1
		cart.Write8(0xa000, 0x99)
		cart.Write8(0x4000, 0x00)
		assert.Equal(t, uint8(0x42), cart.Read8(0xa000), "bank 0 kept its value")
		cart.Write8(0x4000, 0x01)
		assert.Equal(t, uint8(0x99), cart.Read8(0xa000))
	})
}

func TestMBC3_Banking(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x11, 0x06, 0x00)) // 128 banks
	assert.NoError(t, err)

	t.Run("7-bit bank register", func(t *testing.T) {
		cart.Write8(0x2000, 0x7f)
		assert.Equal(t, 0x7f, bankAt(cart, 0x4000))
	})

	t.Run("bank 0 aliases to 1", func(t *testing.T) {
		cart.Write8(0x2000, 0x00)
		assert.Equal(t, 1, bankAt(cart, 0x4000))
	})
}

func TestMBC3_RTCRegistersReadZero(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x10, 0x01, 0x03)) // MBC3+RTC+RAM+BATTERY
	assert.NoError(t, err)

	cart.Write8(0x0000, 0x0a)
	cart.Write8(0x4000, 0x08) // RTC seconds register

	assert.Equal(t, uint8(0x00), cart.Read8(0xa000))
}

func TestMBC5_Banking(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x19, 0x08, 0x00)) // 512 banks, 8 MiB
	assert.NoError(t, err)

	t.Run("low 8 bits", func(t *testing.T) {
		cart.Write8(0x2000, 0x42)
		assert.Equal(t, 0x42, bankAt(cart, 0x4000))
	})

	t.Run("ninth bit", func(t *testing.T) {
		cart.Write8(0x3000, 0x01)
		assert.Equal(t, 0x142, bankAt(cart, 0x4000))
	})

	t.Run("bank 0 really maps", func(t *testing.T) {
		cart.Write8(0x2000, 0x00)
		cart.Write8(0x3000, 0x00)
		assert.Equal(t, 0, bankAt(cart, 0x4000))
	})
}

func TestROMOnly_IgnoresBankWrites(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x00, 0x00, 0x00))
	assert.NoError(t, err)

	cart.Write8(0x2000, 0x01)
	assert.Equal(t, 1, bankAt(cart, 0x4000), "second half of the 32 KiB image")
	assert.Equal(t, 0, bankAt(cart, 0x0000))
}

func TestMapper_StateRoundTrip(t *testing.T) {
	cart, err := NewCart(makeTestROM(0x01, 0x05, 0x03))
	assert.NoError(t, err)

	cart.Write8(0x0000, 0x0a)
	cart.Write8(0x2000, 0x07)
	cart.Write8(0x4000, 0x01)
	cart.Write8(0x6000, 0x01)
	saved := cart.mapper.state()

	cart.Write8(0x2000, 0x01)
	cart.Write8(0x4000, 0x00)
	cart.Write8(0x6000, 0x00)
	cart.Write8(0x0000, 0x00)

	cart.mapper.restore(saved)
	assert.Equal(t, 0x27, bankAt(cart, 0x4000))
	cart.Write8(0xa000, 0x55)
	assert.Equal(t, uint8(0x55), cart.Read8(0xa000), "RAM enable restored")
}
