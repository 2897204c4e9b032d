package gb

import "fmt"

// ReadWriter is the CPU's view of the memory bus.
type ReadWriter interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, data uint8)
}

const (
	flagZ = uint8(1 << 7) // Zero
	flagN = uint8(1 << 6) // Subtract
	flagH = uint8(1 << 5) // Half carry
	flagC = uint8(1 << 4) // Carry
)

// Machine cycles burned by an interrupt dispatch.
const interruptCycles = 5

// OpcodeError reports execution of an opcode the hardware does not define.
// A real unit locks up here, so emulation must stop rather than skip it.
type OpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("undefined opcode %02X at PC %04X", e.Opcode, e.PC)
}

type instr struct {
	name   string
	fn     func()
	cycles uint8
}

// CPU is the SM83 instruction engine. It owns the register file and drives
// every byte access through the memory bus; all timing below is in machine
// cycles (4 t-cycles each).
type CPU struct {
	a uint8
	f uint8
	b uint8
	c uint8
	d uint8
	e uint8
	h uint8
	l uint8

	sp uint16
	pc uint16

	mem ReadWriter
	irq *IRQ

	instrs   [0x100]instr
	cbInstrs [0x100]instr

	cycles      uint8
	totalCycles uint64

	ime      bool
	imeDelay bool
	halted   bool
	haltBug  bool
}

func NewCPU(mem ReadWriter, irq *IRQ) *CPU {
	cpu := &CPU{
		mem: mem,
		irq: irq,
	}
	cpu.initInstructions()
	cpu.initCBInstructions()
	return cpu
}

// Step executes exactly one instruction, or services one interrupt in its
// place, and returns the number of machine cycles consumed. A halted CPU
// burns one cycle per call doing nothing but watching for pending interrupts.
func (c *CPU) Step() (uint8, error) {
	if c.irq.pending() != 0 {
		// a pending interrupt always ends halt, even with IME clear
		c.halted = false
		if c.ime {
			return c.serviceInterrupt(), nil
		}
	}
	if c.halted {
		c.totalCycles++
		return 1, nil
	}

	enableIME := c.imeDelay

	pc := c.pc
	opcode := c.read8(c.pc)
	if c.haltBug {
		// halt bug: PC fails to advance once, the byte after HALT runs twice
		c.haltBug = false
	} else {
		c.pc++
	}

	in := c.instrs[opcode]
	if in.fn == nil {
		return 0, &OpcodeError{PC: pc, Opcode: opcode}
	}

	c.cycles = 0
	in.fn()
	c.cycles += in.cycles
	c.totalCycles += uint64(c.cycles)

	if enableIME {
		c.ime = true
		c.imeDelay = false
	}
	return c.cycles, nil
}

func (c *CPU) serviceInterrupt() uint8 {
	kind, _ := c.irq.next()
	c.ime = false
	c.imeDelay = false
	c.irq.acknowledge(kind)
	c.push16(c.pc)
	c.pc = kind.vector()
	c.totalCycles += interruptCycles
	return interruptCycles
}

func (c *CPU) read8(addr uint16) uint8 {
	return c.mem.Read8(addr)
}

func (c *CPU) write8(addr uint16, data uint8) {
	c.mem.Write8(addr, data)
}

func (c *CPU) fetch8() uint8 {
	v := c.read8(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) push16(v uint16) {
	c.sp--
	c.write8(c.sp, uint8(v>>8))
	c.sp--
	c.write8(c.sp, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.read8(c.sp))
	c.sp++
	hi := uint16(c.read8(c.sp))
	c.sp++
	return lo | hi<<8
}

func (c *CPU) getFlag(flag uint8) bool {
	return c.f&flag > 0
}

func (c *CPU) setFlag(flag uint8, v bool) {
	if v {
		c.f |= flag
		return
	}
	c.f &= ^flag
}

func (c *CPU) af() uint16 { return uint16(c.a)<<8 | uint16(c.f) }
func (c *CPU) bc() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) de() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) hl() uint16 { return uint16(c.h)<<8 | uint16(c.l) }

func (c *CPU) setAF(v uint16) {
	c.a = uint8(v >> 8)
	c.f = uint8(v) & 0xf0 // low flag bits do not exist
}

func (c *CPU) setBC(v uint16) {
	c.b = uint8(v >> 8)
	c.c = uint8(v)
}

func (c *CPU) setDE(v uint16) {
	c.d = uint8(v >> 8)
	c.e = uint8(v)
}

func (c *CPU) setHL(v uint16) {
	c.h = uint8(v >> 8)
	c.l = uint8(v)
}

// r8 accessors in encoding order: B C D E H L (HL) A. Index 6 goes through
// the bus, which the CB cycle table accounts for.
var r8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

func (c *CPU) getR8(i int) uint8 {
	switch i {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.read8(c.hl())
	default:
		return c.a
	}
}

func (c *CPU) setR8(i int, v uint8) {
	switch i {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.write8(c.hl(), v)
	default:
		c.a = v
	}
}

func (c *CPU) add(v uint8, withCarry bool) {
	carry := uint8(0)
	if withCarry && c.getFlag(flagC) {
		carry = 1
	}
	r := uint16(c.a) + uint16(v) + uint16(carry)
	c.setFlag(flagH, c.a&0x0f+v&0x0f+carry > 0x0f)
	c.setFlag(flagC, r > 0xff)
	c.a = uint8(r)
	c.setFlag(flagZ, c.a == 0)
	c.setFlag(flagN, false)
}

func (c *CPU) sub(v uint8, withCarry bool) {
	carry := int(0)
	if withCarry && c.getFlag(flagC) {
		carry = 1
	}
	r := int(c.a) - int(v) - carry
	c.setFlag(flagH, int(c.a&0x0f)-int(v&0x0f)-carry < 0)
	c.setFlag(flagC, r < 0)
	c.a = uint8(r)
	c.setFlag(flagZ, c.a == 0)
	c.setFlag(flagN, true)
}

func (c *CPU) cp(v uint8) {
	a := c.a
	c.sub(v, false)
	c.a = a
}

func (c *CPU) and(v uint8) {
	c.a &= v
	c.f = flagH
	c.setFlag(flagZ, c.a == 0)
}

func (c *CPU) xor(v uint8) {
	c.a ^= v
	c.f = 0
	c.setFlag(flagZ, c.a == 0)
}

func (c *CPU) or(v uint8) {
	c.a |= v
	c.f = 0
	c.setFlag(flagZ, c.a == 0)
}

func (c *CPU) inc8(v uint8) uint8 {
	r := v + 1
	c.setFlag(flagZ, r == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, v&0x0f == 0x0f)
	return r
}

func (c *CPU) dec8(v uint8) uint8 {
	r := v - 1
	c.setFlag(flagZ, r == 0)
	c.setFlag(flagN, true)
	c.setFlag(flagH, v&0x0f == 0)
	return r
}

func (c *CPU) addHL(v uint16) {
	hl := c.hl()
	r := uint32(hl) + uint32(v)
	c.setFlag(flagN, false)
	c.setFlag(flagH, hl&0x0fff+v&0x0fff > 0x0fff)
	c.setFlag(flagC, r > 0xffff)
	c.setHL(uint16(r))
}

// addSPe8 computes SP plus a signed immediate. H and C come from the low
// byte addition only, a documented oddity shared by ADD SP,e8 and LD HL,SP+e8.
func (c *CPU) addSPe8() uint16 {
	e := uint16(int16(int8(c.fetch8())))
	c.setFlag(flagZ, false)
	c.setFlag(flagN, false)
	c.setFlag(flagH, c.sp&0x0f+e&0x0f > 0x0f)
	c.setFlag(flagC, c.sp&0xff+e&0xff > 0xff)
	return c.sp + e
}

func (c *CPU) daa() {
	a := c.a
	carry := c.getFlag(flagC)
	adjust := uint8(0)
	if !c.getFlag(flagN) {
		if c.getFlag(flagH) || a&0x0f > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	} else {
		if c.getFlag(flagH) {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	}
	c.a = a
	c.setFlag(flagZ, a == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carry)
}

func (c *CPU) setShiftFlags(r uint8, carry bool) {
	c.f = 0
	c.setFlag(flagZ, r == 0)
	c.setFlag(flagC, carry)
}

func (c *CPU) rlc(v uint8) uint8 {
	r := v<<1 | v>>7
	c.setShiftFlags(r, v&0x80 != 0)
	return r
}

func (c *CPU) rrc(v uint8) uint8 {
	r := v>>1 | v<<7
	c.setShiftFlags(r, v&0x01 != 0)
	return r
}

func (c *CPU) rl(v uint8) uint8 {
	r := v << 1
	if c.getFlag(flagC) {
		r |= 0x01
	}
	c.setShiftFlags(r, v&0x80 != 0)
	return r
}

func (c *CPU) rr(v uint8) uint8 {
	r := v >> 1
	if c.getFlag(flagC) {
		r |= 0x80
	}
	c.setShiftFlags(r, v&0x01 != 0)
	return r
}

func (c *CPU) sla(v uint8) uint8 {
	r := v << 1
	c.setShiftFlags(r, v&0x80 != 0)
	return r
}

func (c *CPU) sra(v uint8) uint8 {
	r := v>>1 | v&0x80
	c.setShiftFlags(r, v&0x01 != 0)
	return r
}

func (c *CPU) swap(v uint8) uint8 {
	r := v<<4 | v>>4
	c.setShiftFlags(r, false)
	return r
}

func (c *CPU) srl(v uint8) uint8 {
	r := v >> 1
	c.setShiftFlags(r, v&0x01 != 0)
	return r
}

func (c *CPU) bit(n uint8, v uint8) {
	c.setFlag(flagZ, v&(1<<n) == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, true)
}

// Branch helpers add the extra machine cycles of the taken path themselves,
// the same way the table entries carry only the not-taken base cost.
func (c *CPU) jr(cond bool) {
	e := int8(c.fetch8())
	if !cond {
		return
	}
	c.cycles++
	c.pc = uint16(int32(c.pc) + int32(e))
}

func (c *CPU) jp(cond bool) {
	addr := c.fetch16()
	if !cond {
		return
	}
	c.cycles++
	c.pc = addr
}

func (c *CPU) call(cond bool) {
	addr := c.fetch16()
	if !cond {
		return
	}
	c.cycles += 3
	c.push16(c.pc)
	c.pc = addr
}

func (c *CPU) ret(cond bool) {
	if !cond {
		return
	}
	c.cycles += 3
	c.pc = c.pop16()
}

func (c *CPU) rst(addr uint16) {
	c.push16(c.pc)
	c.pc = addr
}

func (c *CPU) halt() {
	if !c.ime && c.irq.pending() != 0 {
		// DMG halt bug: HALT with IME clear and an interrupt already
		// pending does not halt, it corrupts the next fetch instead
		c.haltBug = true
		return
	}
	c.halted = true
}

func (c *CPU) stop() {
	// consume the padding byte; wake-up happens like halt
	c.fetch8()
	c.halted = true
}

func (c *CPU) prefixCB() {
	opcode := c.fetch8()
	in := c.cbInstrs[opcode]
	in.fn()
	c.cycles += in.cycles
}
