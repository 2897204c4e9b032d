package gb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testMem is a flat 64 KiB space, enough to exercise the CPU without a bus.
type testMem struct {
	data [0x10000]uint8
}

func (m *testMem) Read8(addr uint16) uint8 {
	return m.data[addr]
}

func (m *testMem) Write8(addr uint16, data uint8) {
	m.data[addr] = data
}

// newTestCPU loads the program at 0x0100 and points PC and SP at sane places.
func newTestCPU(program ...uint8) (*CPU, *testMem) {
	mem := &testMem{}
	copy(mem.data[0x0100:], program)
	cpu := NewCPU(mem, NewIRQ())
	cpu.pc = 0x0100
	cpu.sp = 0xfffe
	return cpu, mem
}

func Test_ADD(t *testing.T) {
	type testArgs struct {
		initA     uint8
		operand   uint8
		initF     uint8
		withCarry bool
		expectedA uint8
		expectedF uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		cpu, _ := newTestCPU()
		cpu.a = in.initA
		cpu.f = in.initF

		cpu.add(in.operand, in.withCarry)

		assert.Equal(t, in.expectedA, cpu.a, "A register")
		assert.Equal(t, in.expectedF, cpu.f, "F register")
	}

	t.Run("zero plus zero", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0,
			operand:   0,
			expectedA: 0,
			expectedF: flagZ,
		})
	})

	t.Run("simple addition", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x10,
			operand:   0x22,
			expectedA: 0x32,
			expectedF: 0,
		})
	})

	t.Run("half carry", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x0f,
			operand:   0x01,
			expectedA: 0x10,
			expectedF: flagH,
		})
	})

	t.Run("full carry wraps to zero", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0xff,
			operand:   0x01,
			expectedA: 0x00,
			expectedF: flagZ | flagH | flagC,
		})
	})

	t.Run("carry in is added", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x10,
			operand:   0x20,
			initF:     flagC,
			withCarry: true,
			expectedA: 0x31,
			expectedF: 0,
		})
	})

	t.Run("carry in completes half carry", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x0f,
			operand:   0x00,
			initF:     flagC,
			withCarry: true,
			expectedA: 0x10,
			expectedF: flagH,
		})
	})
}

func Test_SUB(t *testing.T) {
	type testArgs struct {
		initA     uint8
		operand   uint8
		initF     uint8
		withCarry bool
		expectedA uint8
		expectedF uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		cpu, _ := newTestCPU()
		cpu.a = in.initA
		cpu.f = in.initF

		cpu.sub(in.operand, in.withCarry)

		assert.Equal(t, in.expectedA, cpu.a, "A register")
		assert.Equal(t, in.expectedF, cpu.f, "F register")
	}

	t.Run("equal operands give zero", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x42,
			operand:   0x42,
			expectedA: 0x00,
			expectedF: flagZ | flagN,
		})
	})

	t.Run("half borrow", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x10,
			operand:   0x01,
			expectedA: 0x0f,
			expectedF: flagN | flagH,
		})
	})

	t.Run("full borrow wraps", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x00,
			operand:   0x01,
			expectedA: 0xff,
			expectedF: flagN | flagH | flagC,
		})
	})

	t.Run("borrow in is subtracted", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x10,
			operand:   0x0f,
			initF:     flagC,
			withCarry: true,
			expectedA: 0x00,
			expectedF: flagZ | flagN | flagH,
		})
	})
}

func Test_CP(t *testing.T) {
	cpu, _ := newTestCPU()
	cpu.a = 0x42

	cpu.cp(0x42)

	assert.Equal(t, uint8(0x42), cpu.a, "A must not change")
	assert.Equal(t, flagZ|flagN, cpu.f, "F register")
}

func Test_DAA(t *testing.T) {
	type testArgs struct {
		initA     uint8
		initF     uint8
		expectedA uint8
		expectedF uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		cpu, _ := newTestCPU()
		cpu.a = in.initA
		cpu.f = in.initF

		cpu.daa()

		assert.Equal(t, in.expectedA, cpu.a, "A register")
		assert.Equal(t, in.expectedF, cpu.f, "F register")
	}

	t.Run("no adjust needed", func(t *testing.T) {
		testDo(t, testArgs{
			initA:     0x42,
			expectedA: 0x42,
			expectedF: 0,
		})
	})

	t.Run("low nibble overflow after add", func(t *testing.T) {
		// 0x09 + 0x01 = 0x0a, decimal 10
		testDo(t, testArgs{
			initA:     0x0a,
			expectedA: 0x10,
			expectedF: 0,
		})
	})

	t.Run("half carry after add", func(t *testing.T) {
		// 0x09 + 0x08 = 0x11 with H, decimal 17
		testDo(t, testArgs{
			initA:     0x11,
			initF:     flagH,
			expectedA: 0x17,
			expectedF: 0,
		})
	})

	t.Run("high nibble overflow sets carry", func(t *testing.T) {
		// 0x90 + 0x90 = 0x20 with C, decimal 180
		testDo(t, testArgs{
			initA:     0x20,
			initF:     flagC,
			expectedA: 0x80,
			expectedF: flagC,
		})
	})

	t.Run("adjust after subtraction", func(t *testing.T) {
		// 0x20 - 0x05 = 0x1b with N H, decimal 15
		testDo(t, testArgs{
			initA:     0x1b,
			initF:     flagN | flagH,
			expectedA: 0x15,
			expectedF: flagN,
		})
	})
}

func Test_INC8_DEC8(t *testing.T) {
	cpu, _ := newTestCPU()

	t.Run("INC keeps carry", func(t *testing.T) {
		cpu.f = flagC
		assert.Equal(t, uint8(0x10), cpu.inc8(0x0f))
		assert.Equal(t, flagH|flagC, cpu.f)
	})

	t.Run("INC wraps to zero", func(t *testing.T) {
		cpu.f = 0
		assert.Equal(t, uint8(0x00), cpu.inc8(0xff))
		assert.Equal(t, flagZ|flagH, cpu.f)
	})

	t.Run("DEC half borrow", func(t *testing.T) {
		cpu.f = 0
		assert.Equal(t, uint8(0x0f), cpu.dec8(0x10))
		assert.Equal(t, flagN|flagH, cpu.f)
	})

	t.Run("DEC to zero", func(t *testing.T) {
		cpu.f = 0
		assert.Equal(t, uint8(0x00), cpu.dec8(0x01))
		assert.Equal(t, flagZ|flagN, cpu.f)
	})
}

func Test_ADDSPe8(t *testing.T) {
	type testArgs struct {
		initSP    uint16
		operand   uint8
		expected  uint16
		expectedF uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		cpu, _ := newTestCPU(in.operand)
		cpu.sp = in.initSP

		got := cpu.addSPe8()

		assert.Equal(t, in.expected, got, "result")
		assert.Equal(t, in.expectedF, cpu.f, "F register")
	}

	t.Run("positive offset", func(t *testing.T) {
		testDo(t, testArgs{
			initSP:    0xfff8,
			operand:   0x08,
			expected:  0x0000,
			expectedF: flagH | flagC,
		})
	})

	t.Run("negative offset", func(t *testing.T) {
		testDo(t, testArgs{
			initSP:    0x0100,
			operand:   0xff, // -1
			expected:  0x00ff,
			expectedF: 0,
		})
	})
}

func Test_Rotates(t *testing.T) {
	cpu, _ := newTestCPU()

	t.Run("RLC", func(t *testing.T) {
		cpu.f = 0
		assert.Equal(t, uint8(0x01), cpu.rlc(0x80))
		assert.True(t, cpu.getFlag(flagC))
	})

	t.Run("RR uses carry in", func(t *testing.T) {
		cpu.f = flagC
		assert.Equal(t, uint8(0x80), cpu.rr(0x00))
		assert.False(t, cpu.getFlag(flagC))
	})

	t.Run("SRA keeps sign", func(t *testing.T) {
		cpu.f = 0
		assert.Equal(t, uint8(0xc0), cpu.sra(0x81))
		assert.True(t, cpu.getFlag(flagC))
	})

	t.Run("SWAP", func(t *testing.T) {
		cpu.f = flagC
		assert.Equal(t, uint8(0x2f), cpu.swap(0xf2))
		assert.Equal(t, uint8(0), cpu.f)
	})

	t.Run("BIT on clear bit sets Z", func(t *testing.T) {
		cpu.f = 0
		cpu.bit(3, 0xf7)
		assert.Equal(t, flagZ|flagH, cpu.f)
	})
}

func TestStep_Cycles(t *testing.T) {
	type testArgs struct {
		program  []uint8
		initF    uint8
		expected uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		cpu, _ := newTestCPU(in.program...)
		cpu.f = in.initF

		cycles, err := cpu.Step()

		assert.NoError(t, err)
		assert.Equal(t, in.expected, cycles, "machine cycles")
	}

	t.Run("NOP", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0x00}, expected: 1})
	})

	t.Run("LD BC,d16", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0x01, 0x34, 0x12}, expected: 3})
	})

	t.Run("JR taken", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0x20, 0x05}, expected: 3})
	})

	t.Run("JR not taken", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0x20, 0x05}, initF: flagZ, expected: 2})
	})

	t.Run("CALL taken", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xcd, 0x00, 0x02}, expected: 6})
	})

	t.Run("CALL not taken", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xc4, 0x00, 0x02}, initF: flagZ, expected: 3})
	})

	t.Run("RET", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xc9}, expected: 4})
	})

	t.Run("RET cc taken", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xc8}, initF: flagZ, expected: 5})
	})

	t.Run("CB on register", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xcb, 0x11}, expected: 2}) // RL C
	})

	t.Run("CB on (HL)", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xcb, 0x16}, expected: 4}) // RL (HL)
	})

	t.Run("CB BIT on (HL)", func(t *testing.T) {
		testDo(t, testArgs{program: []uint8{0xcb, 0x46}, expected: 3}) // BIT 0,(HL)
	})
}

func TestStep_UndefinedOpcode(t *testing.T) {
	cpu, _ := newTestCPU(0xd3)

	_, err := cpu.Step()

	var opErr *OpcodeError
	assert.ErrorAs(t, err, &opErr)
	assert.Equal(t, uint16(0x0100), opErr.PC)
	assert.Equal(t, uint8(0xd3), opErr.Opcode)
}

func TestStep_AllUndefinedOpcodes(t *testing.T) {
	undefined := []uint8{0xd3, 0xdb, 0xdd, 0xe3, 0xe4, 0xeb, 0xec, 0xed, 0xf4, 0xfc, 0xfd}
	for _, opcode := range undefined {
		cpu, _ := newTestCPU(opcode)
		_, err := cpu.Step()
		assert.True(t, errors.As(err, new(*OpcodeError)), "opcode %02X must be fatal", opcode)
	}
}

func TestStep_PopAFMasksLowBits(t *testing.T) {
	cpu, mem := newTestCPU(0xf1) // POP AF
	cpu.sp = 0xd000
	mem.data[0xd000] = 0xff // would set the nonexistent low flag bits
	mem.data[0xd001] = 0x12

	_, err := cpu.Step()

	assert.NoError(t, err)
	assert.Equal(t, uint8(0x12), cpu.a)
	assert.Equal(t, uint8(0xf0), cpu.f)
}

func TestStep_InterruptDispatch(t *testing.T) {
	cpu, mem := newTestCPU(0x00)
	cpu.ime = true
	cpu.irq.writeEnable(1 << irqTimer)
	cpu.irq.Request(irqTimer)

	cycles, err := cpu.Step()

	assert.NoError(t, err)
	assert.Equal(t, uint8(interruptCycles), cycles, "dispatch cost")
	assert.Equal(t, uint16(0x0050), cpu.pc, "timer vector")
	assert.False(t, cpu.ime, "IME cleared by dispatch")
	assert.Equal(t, uint8(0), cpu.irq.pending(), "flag acknowledged")
	// old PC pushed on the stack
	assert.Equal(t, uint8(0x00), mem.data[0xfffc])
	assert.Equal(t, uint8(0x01), mem.data[0xfffd])
}

func TestStep_InterruptPriority(t *testing.T) {
	cpu, _ := newTestCPU(0x00)
	cpu.ime = true
	cpu.irq.writeEnable(0x1f)
	cpu.irq.Request(irqJoypad)
	cpu.irq.Request(irqVBlank)
	cpu.irq.Request(irqSerial)

	_, err := cpu.Step()

	assert.NoError(t, err)
	assert.Equal(t, irqVBlank.vector(), cpu.pc, "VBlank wins every tie")
}

func TestStep_HaltIdlesUntilInterrupt(t *testing.T) {
	cpu, _ := newTestCPU(0x76, 0x3c) // HALT; INC A
	cpu.irq.writeEnable(1 << irqTimer)

	_, err := cpu.Step()
	assert.NoError(t, err)
	assert.True(t, cpu.halted)

	// nothing pending: the CPU burns single cycles
	cycles, err := cpu.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), cycles)
	assert.True(t, cpu.halted)

	// a pending interrupt ends halt even with IME clear, no dispatch happens
	cpu.irq.Request(irqTimer)
	_, err = cpu.Step()
	assert.NoError(t, err)
	assert.False(t, cpu.halted)
	assert.Equal(t, uint8(1), cpu.a, "INC A after wake-up")
}

func TestStep_HaltBug(t *testing.T) {
	// HALT with IME clear and an interrupt already pending: the next opcode
	// byte is executed twice because PC fails to advance once.
	cpu, _ := newTestCPU(0x76, 0x3c) // HALT; INC A
	cpu.irq.writeEnable(1 << irqTimer)
	cpu.irq.Request(irqTimer)

	_, err := cpu.Step()
	assert.NoError(t, err)
	assert.False(t, cpu.halted, "halt is skipped entirely")
	assert.True(t, cpu.haltBug)

	_, err = cpu.Step()
	assert.NoError(t, err)
	_, err = cpu.Step()
	assert.NoError(t, err)

	assert.Equal(t, uint8(2), cpu.a, "INC A ran twice")
	assert.Equal(t, uint16(0x0102), cpu.pc)
}

func TestStep_EIDelay(t *testing.T) {
	cpu, _ := newTestCPU(0xfb, 0x3c) // EI; INC A
	cpu.irq.writeEnable(1 << irqVBlank)
	cpu.irq.Request(irqVBlank)

	// EI itself does not enable IME yet
	_, err := cpu.Step()
	assert.NoError(t, err)
	assert.False(t, cpu.ime)

	// the instruction after EI still runs before dispatch
	_, err = cpu.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), cpu.a)
	assert.True(t, cpu.ime)

	// now the interrupt is taken
	cycles, err := cpu.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint8(interruptCycles), cycles)
	assert.Equal(t, irqVBlank.vector(), cpu.pc)
}

func TestStep_LDMemory(t *testing.T) {
	// LD HL,0xC123; LD (HL),0x42; LD A,(HL)
	cpu, mem := newTestCPU(0x21, 0x23, 0xc1, 0x36, 0x42, 0x7e)

	for i := 0; i < 3; i++ {
		_, err := cpu.Step()
		assert.NoError(t, err)
	}

	assert.Equal(t, uint8(0x42), mem.data[0xc123])
	assert.Equal(t, uint8(0x42), cpu.a)
}

func TestStep_PushPopRoundTrip(t *testing.T) {
	// LD BC,0x1234; PUSH BC; POP DE
	cpu, _ := newTestCPU(0x01, 0x34, 0x12, 0xc5, 0xd1)
	cpu.sp = 0xd000

	for i := 0; i < 3; i++ {
		_, err := cpu.Step()
		assert.NoError(t, err)
	}

	assert.Equal(t, uint16(0x1234), cpu.de())
	assert.Equal(t, uint16(0xd000), cpu.sp)
}

func TestInstructionTableComplete(t *testing.T) {
	undefined := map[uint8]bool{
		0xd3: true, 0xdb: true, 0xdd: true,
		0xe3: true, 0xe4: true, 0xeb: true, 0xec: true, 0xed: true,
		0xf4: true, 0xfc: true, 0xfd: true,
	}
	cpu, _ := newTestCPU()
	for op := 0; op < 0x100; op++ {
		in := cpu.instrs[op]
		if undefined[uint8(op)] {
			assert.Nil(t, in.fn, "opcode %02X must be undefined", op)
			continue
		}
		assert.NotNil(t, in.fn, "opcode %02X must be implemented", op)
	}
	for op := 0; op < 0x100; op++ {
		assert.NotNil(t, cpu.cbInstrs[op].fn, "CB opcode %02X must be implemented", op)
	}
}
