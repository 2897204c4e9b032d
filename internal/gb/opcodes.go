package gb

import "fmt"

// initInstructions fills the primary opcode table. Cycle counts are machine
// cycles for the not-taken path; branch helpers add the taken-path cost.
// Entries left nil are opcodes the hardware does not define.
func (c *CPU) initInstructions() {
	c.instrs[0x00] = instr{name: "NOP", fn: func() {}, cycles: 1}
	c.instrs[0x01] = instr{name: "LD BC,d16", fn: func() { c.setBC(c.fetch16()) }, cycles: 3}
	c.instrs[0x02] = instr{name: "LD (BC),A", fn: func() { c.write8(c.bc(), c.a) }, cycles: 2}
	c.instrs[0x03] = instr{name: "INC BC", fn: func() { c.setBC(c.bc() + 1) }, cycles: 2}
	c.instrs[0x04] = instr{name: "INC B", fn: func() { c.b = c.inc8(c.b) }, cycles: 1}
	c.instrs[0x05] = instr{name: "DEC B", fn: func() { c.b = c.dec8(c.b) }, cycles: 1}
	c.instrs[0x06] = instr{name: "LD B,d8", fn: func() { c.b = c.fetch8() }, cycles: 2}
	c.instrs[0x07] = instr{name: "RLCA", fn: func() { c.a = c.rlc(c.a); c.setFlag(flagZ, false) }, cycles: 1}
	c.instrs[0x08] = instr{name: "LD (a16),SP", fn: func() {
		addr := c.fetch16()
		c.write8(addr, uint8(c.sp))
		c.write8(addr+1, uint8(c.sp>>8))
	}, cycles: 5}
	c.instrs[0x09] = instr{name: "ADD HL,BC", fn: func() { c.addHL(c.bc()) }, cycles: 2}
	c.instrs[0x0a] = instr{name: "LD A,(BC)", fn: func() { c.a = c.read8(c.bc()) }, cycles: 2}
	c.instrs[0x0b] = instr{name: "DEC BC", fn: func() { c.setBC(c.bc() - 1) }, cycles: 2}
	c.instrs[0x0c] = instr{name: "INC C", fn: func() { c.c = c.inc8(c.c) }, cycles: 1}
	c.instrs[0x0d] = instr{name: "DEC C", fn: func() { c.c = c.dec8(c.c) }, cycles: 1}
	c.instrs[0x0e] = instr{name: "LD C,d8", fn: func() { c.c = c.fetch8() }, cycles: 2}
	c.instrs[0x0f] = instr{name: "RRCA", fn: func() { c.a = c.rrc(c.a); c.setFlag(flagZ, false) }, cycles: 1}

	c.instrs[0x10] = instr{name: "STOP", fn: c.stop, cycles: 1}
	c.instrs[0x11] = instr{name: "LD DE,d16", fn: func() { c.setDE(c.fetch16()) }, cycles: 3}
	c.instrs[0x12] = instr{name: "LD (DE),A", fn: func() { c.write8(c.de(), c.a) }, cycles: 2}
	c.instrs[0x13] = instr{name: "INC DE", fn: func() { c.setDE(c.de() + 1) }, cycles: 2}
	c.instrs[0x14] = instr{name: "INC D", fn: func() { c.d = c.inc8(c.d) }, cycles: 1}
	c.instrs[0x15] = instr{name: "DEC D", fn: func() { c.d = c.dec8(c.d) }, cycles: 1}
	c.instrs[0x16] = instr{name: "LD D,d8", fn: func() { c.d = c.fetch8() }, cycles: 2}
	c.instrs[0x17] = instr{name: "RLA", fn: func() { c.a = c.rl(c.a); c.setFlag(flagZ, false) }, cycles: 1}
	c.instrs[0x18] = instr{name: "JR r8", fn: func() { c.jr(true) }, cycles: 2}
	c.instrs[0x19] = instr{name: "ADD HL,DE", fn: func() { c.addHL(c.de()) }, cycles: 2}
	c.instrs[0x1a] = instr{name: "LD A,(DE)", fn: func() { c.a = c.read8(c.de()) }, cycles: 2}
	c.instrs[0x1b] = instr{name: "DEC DE", fn: func() { c.setDE(c.de() - 1) }, cycles: 2}
	c.instrs[0x1c] = instr{name: "INC E", fn: func() { c.e = c.inc8(c.e) }, cycles: 1}
	c.instrs[0x1d] = instr{name: "DEC E", fn: func() { c.e = c.dec8(c.e) }, cycles: 1}
	c.instrs[0x1e] = instr{name: "LD E,d8", fn: func() { c.e = c.fetch8() }, cycles: 2}
	c.instrs[0x1f] = instr{name: "RRA", fn: func() { c.a = c.rr(c.a); c.setFlag(flagZ, false) }, cycles: 1}

	c.instrs[0x20] = instr{name: "JR NZ,r8", fn: func() { c.jr(!c.getFlag(flagZ)) }, cycles: 2}
	c.instrs[0x21] = instr{name: "LD HL,d16", fn: func() { c.setHL(c.fetch16()) }, cycles: 3}
	c.instrs[0x22] = instr{name: "LD (HL+),A", fn: func() { c.write8(c.hl(), c.a); c.setHL(c.hl() + 1) }, cycles: 2}
	c.instrs[0x23] = instr{name: "INC HL", fn: func() { c.setHL(c.hl() + 1) }, cycles: 2}
	c.instrs[0x24] = instr{name: "INC H", fn: func() { c.h = c.inc8(c.h) }, cycles: 1}
	c.instrs[0x25] = instr{name: "DEC H", fn: func() { c.h = c.dec8(c.h) }, cycles: 1}
	c.instrs[0x26] = instr{name: "LD H,d8", fn: func() { c.h = c.fetch8() }, cycles: 2}
	c.instrs[0x27] = instr{name: "DAA", fn: c.daa, cycles: 1}
	c.instrs[0x28] = instr{name: "JR Z,r8", fn: func() { c.jr(c.getFlag(flagZ)) }, cycles: 2}
	c.instrs[0x29] = instr{name: "ADD HL,HL", fn: func() { c.addHL(c.hl()) }, cycles: 2}
	c.instrs[0x2a] = instr{name: "LD A,(HL+)", fn: func() { c.a = c.read8(c.hl()); c.setHL(c.hl() + 1) }, cycles: 2}
	c.instrs[0x2b] = instr{name: "DEC HL", fn: func() { c.setHL(c.hl() - 1) }, cycles: 2}
	c.instrs[0x2c] = instr{name: "INC L", fn: func() { c.l = c.inc8(c.l) }, cycles: 1}
	c.instrs[0x2d] = instr{name: "DEC L", fn: func() { c.l = c.dec8(c.l) }, cycles: 1}
	c.instrs[0x2e] = instr{name: "LD L,d8", fn: func() { c.l = c.fetch8() }, cycles: 2}
	c.instrs[0x2f] = instr{name: "CPL", fn: func() {
		c.a = ^c.a
		c.setFlag(flagN, true)
		c.setFlag(flagH, true)
	}, cycles: 1}

	c.instrs[0x30] = instr{name: "JR NC,r8", fn: func() { c.jr(!c.getFlag(flagC)) }, cycles: 2}
	c.instrs[0x31] = instr{name: "LD SP,d16", fn: func() { c.sp = c.fetch16() }, cycles: 3}
	c.instrs[0x32] = instr{name: "LD (HL-),A", fn: func() { c.write8(c.hl(), c.a); c.setHL(c.hl() - 1) }, cycles: 2}
	c.instrs[0x33] = instr{name: "INC SP", fn: func() { c.sp++ }, cycles: 2}
	c.instrs[0x34] = instr{name: "INC (HL)", fn: func() { c.write8(c.hl(), c.inc8(c.read8(c.hl()))) }, cycles: 3}
	c.instrs[0x35] = instr{name: "DEC (HL)", fn: func() { c.write8(c.hl(), c.dec8(c.read8(c.hl()))) }, cycles: 3}
	c.instrs[0x36] = instr{name: "LD (HL),d8", fn: func() { c.write8(c.hl(), c.fetch8()) }, cycles: 3}
	c.instrs[0x37] = instr{name: "SCF", fn: func() {
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, true)
	}, cycles: 1}
	c.instrs[0x38] = instr{name: "JR C,r8", fn: func() { c.jr(c.getFlag(flagC)) }, cycles: 2}
	c.instrs[0x39] = instr{name: "ADD HL,SP", fn: func() { c.addHL(c.sp) }, cycles: 2}
	c.instrs[0x3a] = instr{name: "LD A,(HL-)", fn: func() { c.a = c.read8(c.hl()); c.setHL(c.hl() - 1) }, cycles: 2}
	c.instrs[0x3b] = instr{name: "DEC SP", fn: func() { c.sp-- }, cycles: 2}
	c.instrs[0x3c] = instr{name: "INC A", fn: func() { c.a = c.inc8(c.a) }, cycles: 1}
	c.instrs[0x3d] = instr{name: "DEC A", fn: func() { c.a = c.dec8(c.a) }, cycles: 1}
	c.instrs[0x3e] = instr{name: "LD A,d8", fn: func() { c.a = c.fetch8() }, cycles: 2}
	c.instrs[0x3f] = instr{name: "CCF", fn: func() {
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, !c.getFlag(flagC))
	}, cycles: 1}

	// 0x40-0x7F: LD r,r' grid, with HALT in the (HL),(HL) slot
	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			opcode := 0x40 + dst*8 + src
			if opcode == 0x76 {
				continue
			}
			dst, src := dst, src
			cycles := uint8(1)
			if dst == 6 || src == 6 {
				cycles = 2
			}
			c.instrs[opcode] = instr{
				name:   fmt.Sprintf("LD %s,%s", r8Names[dst], r8Names[src]),
				fn:     func() { c.setR8(dst, c.getR8(src)) },
				cycles: cycles,
			}
		}
	}
	c.instrs[0x76] = instr{name: "HALT", fn: c.halt, cycles: 1}

	// 0x80-0xBF: eight-wide ALU grid against the register file
	aluOps := []struct {
		name string
		fn   func(uint8)
	}{
		{"ADD A,", func(v uint8) { c.add(v, false) }},
		{"ADC A,", func(v uint8) { c.add(v, true) }},
		{"SUB ", func(v uint8) { c.sub(v, false) }},
		{"SBC A,", func(v uint8) { c.sub(v, true) }},
		{"AND ", c.and},
		{"XOR ", c.xor},
		{"OR ", c.or},
		{"CP ", c.cp},
	}
	for i, op := range aluOps {
		for src := 0; src < 8; src++ {
			opcode := 0x80 + i*8 + src
			src := src
			fn := op.fn
			cycles := uint8(1)
			if src == 6 {
				cycles = 2
			}
			c.instrs[opcode] = instr{
				name:   op.name + r8Names[src],
				fn:     func() { fn(c.getR8(src)) },
				cycles: cycles,
			}
		}
	}

	c.instrs[0xc0] = instr{name: "RET NZ", fn: func() { c.ret(!c.getFlag(flagZ)) }, cycles: 2}
	c.instrs[0xc1] = instr{name: "POP BC", fn: func() { c.setBC(c.pop16()) }, cycles: 3}
	c.instrs[0xc2] = instr{name: "JP NZ,a16", fn: func() { c.jp(!c.getFlag(flagZ)) }, cycles: 3}
	c.instrs[0xc3] = instr{name: "JP a16", fn: func() { c.jp(true) }, cycles: 3}
	c.instrs[0xc4] = instr{name: "CALL NZ,a16", fn: func() { c.call(!c.getFlag(flagZ)) }, cycles: 3}
	c.instrs[0xc5] = instr{name: "PUSH BC", fn: func() { c.push16(c.bc()) }, cycles: 4}
	c.instrs[0xc6] = instr{name: "ADD A,d8", fn: func() { c.add(c.fetch8(), false) }, cycles: 2}
	c.instrs[0xc7] = instr{name: "RST 00H", fn: func() { c.rst(0x0000) }, cycles: 4}
	c.instrs[0xc8] = instr{name: "RET Z", fn: func() { c.ret(c.getFlag(flagZ)) }, cycles: 2}
	c.instrs[0xc9] = instr{name: "RET", fn: func() { c.pc = c.pop16() }, cycles: 4}
	c.instrs[0xca] = instr{name: "JP Z,a16", fn: func() { c.jp(c.getFlag(flagZ)) }, cycles: 3}
	c.instrs[0xcb] = instr{name: "PREFIX CB", fn: c.prefixCB, cycles: 0}
	c.instrs[0xcc] = instr{name: "CALL Z,a16", fn: func() { c.call(c.getFlag(flagZ)) }, cycles: 3}
	c.instrs[0xcd] = instr{name: "CALL a16", fn: func() { c.call(true) }, cycles: 3}
	c.instrs[0xce] = instr{name: "ADC A,d8", fn: func() { c.add(c.fetch8(), true) }, cycles: 2}
	c.instrs[0xcf] = instr{name: "RST 08H", fn: func() { c.rst(0x0008) }, cycles: 4}

	c.instrs[0xd0] = instr{name: "RET NC", fn: func() { c.ret(!c.getFlag(flagC)) }, cycles: 2}
	c.instrs[0xd1] = instr{name: "POP DE", fn: func() { c.setDE(c.pop16()) }, cycles: 3}
	c.instrs[0xd2] = instr{name: "JP NC,a16", fn: func() { c.jp(!c.getFlag(flagC)) }, cycles: 3}
	c.instrs[0xd4] = instr{name: "CALL NC,a16", fn: func() { c.call(!c.getFlag(flagC)) }, cycles: 3}
	c.instrs[0xd5] = instr{name: "PUSH DE", fn: func() { c.push16(c.de()) }, cycles: 4}
	c.instrs[0xd6] = instr{name: "SUB d8", fn: func() { c.sub(c.fetch8(), false) }, cycles: 2}
	c.instrs[0xd7] = instr{name: "RST 10H", fn: func() { c.rst(0x0010) }, cycles: 4}
	c.instrs[0xd8] = instr{name: "RET C", fn: func() { c.ret(c.getFlag(flagC)) }, cycles: 2}
	c.instrs[0xd9] = instr{name: "RETI", fn: func() {
		c.pc = c.pop16()
		c.ime = true
	}, cycles: 4}
	c.instrs[0xda] = instr{name: "JP C,a16", fn: func() { c.jp(c.getFlag(flagC)) }, cycles: 3}
	c.instrs[0xdc] = instr{name: "CALL C,a16", fn: func() { c.call(c.getFlag(flagC)) }, cycles: 3}
	c.instrs[0xde] = instr{name: "SBC A,d8", fn: func() { c.sub(c.fetch8(), true) }, cycles: 2}
	c.instrs[0xdf] = instr{name: "RST 18H", fn: func() { c.rst(0x0018) }, cycles: 4}

	c.instrs[0xe0] = instr{name: "LDH (a8),A", fn: func() { c.write8(0xff00|uint16(c.fetch8()), c.a) }, cycles: 3}
	c.instrs[0xe1] = instr{name: "POP HL", fn: func() { c.setHL(c.pop16()) }, cycles: 3}
	c.instrs[0xe2] = instr{name: "LD (C),A", fn: func() { c.write8(0xff00|uint16(c.c), c.a) }, cycles: 2}
	c.instrs[0xe5] = instr{name: "PUSH HL", fn: func() { c.push16(c.hl()) }, cycles: 4}
	c.instrs[0xe6] = instr{name: "AND d8", fn: func() { c.and(c.fetch8()) }, cycles: 2}
	c.instrs[0xe7] = instr{name: "RST 20H", fn: func() { c.rst(0x0020) }, cycles: 4}
	c.instrs[0xe8] = instr{name: "ADD SP,r8", fn: func() { c.sp = c.addSPe8() }, cycles: 4}
	c.instrs[0xe9] = instr{name: "JP HL", fn: func() { c.pc = c.hl() }, cycles: 1}
	c.instrs[0xea] = instr{name: "LD (a16),A", fn: func() { c.write8(c.fetch16(), c.a) }, cycles: 4}
	c.instrs[0xee] = instr{name: "XOR d8", fn: func() { c.xor(c.fetch8()) }, cycles: 2}
	c.instrs[0xef] = instr{name: "RST 28H", fn: func() { c.rst(0x0028) }, cycles: 4}

	c.instrs[0xf0] = instr{name: "LDH A,(a8)", fn: func() { c.a = c.read8(0xff00 | uint16(c.fetch8())) }, cycles: 3}
	c.instrs[0xf1] = instr{name: "POP AF", fn: func() { c.setAF(c.pop16()) }, cycles: 3}
	c.instrs[0xf2] = instr{name: "LD A,(C)", fn: func() { c.a = c.read8(0xff00 | uint16(c.c)) }, cycles: 2}
	c.instrs[0xf3] = instr{name: "DI", fn: func() {
		c.ime = false
		c.imeDelay = false
	}, cycles: 1}
	c.instrs[0xf5] = instr{name: "PUSH AF", fn: func() { c.push16(c.af()) }, cycles: 4}
	c.instrs[0xf6] = instr{name: "OR d8", fn: func() { c.or(c.fetch8()) }, cycles: 2}
	c.instrs[0xf7] = instr{name: "RST 30H", fn: func() { c.rst(0x0030) }, cycles: 4}
	c.instrs[0xf8] = instr{name: "LD HL,SP+r8", fn: func() { c.setHL(c.addSPe8()) }, cycles: 3}
	c.instrs[0xf9] = instr{name: "LD SP,HL", fn: func() { c.sp = c.hl() }, cycles: 2}
	c.instrs[0xfa] = instr{name: "LD A,(a16)", fn: func() { c.a = c.read8(c.fetch16()) }, cycles: 4}
	c.instrs[0xfb] = instr{name: "EI", fn: func() { c.imeDelay = true }, cycles: 1}
	c.instrs[0xfe] = instr{name: "CP d8", fn: func() { c.cp(c.fetch8()) }, cycles: 2}
	c.instrs[0xff] = instr{name: "RST 38H", fn: func() { c.rst(0x0038) }, cycles: 4}
}

// initCBInstructions fills the CB-prefixed table. The whole page is regular
// enough to generate: eight shift/rotate rows, then BIT, RES and SET blocks.
func (c *CPU) initCBInstructions() {
	shiftOps := []struct {
		name string
		fn   func(uint8) uint8
	}{
		{"RLC", c.rlc},
		{"RRC", c.rrc},
		{"RL", c.rl},
		{"RR", c.rr},
		{"SLA", c.sla},
		{"SRA", c.sra},
		{"SWAP", c.swap},
		{"SRL", c.srl},
	}
	for i, op := range shiftOps {
		for r := 0; r < 8; r++ {
			opcode := i*8 + r
			r := r
			fn := op.fn
			cycles := uint8(2)
			if r == 6 {
				cycles = 4
			}
			c.cbInstrs[opcode] = instr{
				name:   op.name + " " + r8Names[r],
				fn:     func() { c.setR8(r, fn(c.getR8(r))) },
				cycles: cycles,
			}
		}
	}

	for n := 0; n < 8; n++ {
		for r := 0; r < 8; r++ {
			n, r := n, r

			cycles := uint8(2)
			if r == 6 {
				cycles = 3
			}
			c.cbInstrs[0x40+n*8+r] = instr{
				name:   fmt.Sprintf("BIT %d,%s", n, r8Names[r]),
				fn:     func() { c.bit(uint8(n), c.getR8(r)) },
				cycles: cycles,
			}

			cycles = 2
			if r == 6 {
				cycles = 4
			}
			c.cbInstrs[0x80+n*8+r] = instr{
				name:   fmt.Sprintf("RES %d,%s", n, r8Names[r]),
				fn:     func() { c.setR8(r, c.getR8(r)&^uint8(1<<n)) },
				cycles: cycles,
			}
			c.cbInstrs[0xc0+n*8+r] = instr{
				name:   fmt.Sprintf("SET %d,%s", n, r8Names[r]),
				fn:     func() { c.setR8(r, c.getR8(r)|uint8(1<<n)) },
				cycles: cycles,
			}
		}
	}
}
