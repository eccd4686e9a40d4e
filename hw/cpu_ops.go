package hw

// operand performs the bus accesses of the addressing mode of info, including
// dummy accesses, and returns the effective address. For IMP and ACC modes the
// returned address is meaningless; for REL it's the branch target.
func (c *CPU) operand(info *opinfo) uint16 {
	switch info.mode {
	case IMP, ACC:
		c.read8(c.PC)
		return 0
	case IMM:
		addr := c.PC
		c.PC++
		return addr
	case ZPG:
		return uint16(c.fetch())
	case ZPX:
		zp := c.fetch()
		c.read8(uint16(zp))
		return uint16(zp + c.X)
	case ZPY:
		zp := c.fetch()
		c.read8(uint16(zp))
		return uint16(zp + c.Y)
	case ABS:
		return c.fetch16()
	case ABX:
		return c.indexed(c.fetch16(), c.X, info.access)
	case ABY:
		return c.indexed(c.fetch16(), c.Y, info.access)
	case IND:
		// The pointer high byte is fetched without carry, from the same
		// page as the low byte.
		ptr := c.fetch16()
		lo := c.read8(ptr)
		hi := c.read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		return uint16(hi)<<8 | uint16(lo)
	case IZX:
		zp := c.fetch()
		c.read8(uint16(zp))
		zp += c.X
		lo := c.read8(uint16(zp))
		hi := c.read8(uint16(zp + 1))
		return uint16(hi)<<8 | uint16(lo)
	case IZY:
		zp := c.fetch()
		lo := c.read8(uint16(zp))
		hi := c.read8(uint16(zp + 1))
		return c.indexed(uint16(hi)<<8|uint16(lo), c.Y, info.access)
	case REL:
		off := c.fetch()
		return c.PC + uint16(int8(off))
	}
	panic("unreachable")
}

// indexed adds idx to base. The CPU first reads from the address with the
// high byte not yet fixed; that read is only real if no page was crossed,
// otherwise an extra cycle is needed. Writes and read-modify-writes always
// take the extra cycle.
func (c *CPU) indexed(base uint16, idx uint8, acc access) uint16 {
	c.opBase = base
	addr := base + uint16(idx)
	crossed := base&0xFF00 != addr&0xFF00
	if crossed || acc == accessWrite || acc == accessRMW {
		c.read8(base&0xFF00 | addr&0x00FF)
	}
	return addr
}

type execFunc func(c *CPU, mode AddrMode, addr uint16)

var execs = [...]execFunc{
	ADC: func(c *CPU, _ AddrMode, addr uint16) { c.adc(c.read8(addr)) },
	AND: func(c *CPU, _ AddrMode, addr uint16) { c.A &= c.read8(addr); c.P.checkNZ(c.A) },
	ASL: func(c *CPU, mode AddrMode, addr uint16) { c.rmw(mode, addr, (*CPU).asl) },
	BCC: func(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.has(Carry), addr) },
	BCS: func(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.has(Carry), addr) },
	BEQ: func(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.has(Zero), addr) },
	BIT: (*CPU).bit,
	BMI: func(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.has(Negative), addr) },
	BNE: func(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.has(Zero), addr) },
	BPL: func(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.has(Negative), addr) },
	BRK: (*CPU).brk,
	BVC: func(c *CPU, _ AddrMode, addr uint16) { c.branch(!c.P.has(Overflow), addr) },
	BVS: func(c *CPU, _ AddrMode, addr uint16) { c.branch(c.P.has(Overflow), addr) },
	CLC: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Carry, false) },
	CLD: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Decimal, false) },
	CLI: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Interrupt, false) },
	CLV: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Overflow, false) },
	CMP: func(c *CPU, _ AddrMode, addr uint16) { c.compare(c.A, c.read8(addr)) },
	CPX: func(c *CPU, _ AddrMode, addr uint16) { c.compare(c.X, c.read8(addr)) },
	CPY: func(c *CPU, _ AddrMode, addr uint16) { c.compare(c.Y, c.read8(addr)) },
	DEC: func(c *CPU, mode AddrMode, addr uint16) { c.rmw(mode, addr, (*CPU).dec) },
	DEX: func(c *CPU, _ AddrMode, _ uint16) { c.X--; c.P.checkNZ(c.X) },
	DEY: func(c *CPU, _ AddrMode, _ uint16) { c.Y--; c.P.checkNZ(c.Y) },
	EOR: func(c *CPU, _ AddrMode, addr uint16) { c.A ^= c.read8(addr); c.P.checkNZ(c.A) },
	INC: func(c *CPU, mode AddrMode, addr uint16) { c.rmw(mode, addr, (*CPU).inc) },
	INX: func(c *CPU, _ AddrMode, _ uint16) { c.X++; c.P.checkNZ(c.X) },
	INY: func(c *CPU, _ AddrMode, _ uint16) { c.Y++; c.P.checkNZ(c.Y) },
	JMP: func(c *CPU, _ AddrMode, addr uint16) { c.PC = addr },
	JSR: (*CPU).jsr,
	LDA: func(c *CPU, _ AddrMode, addr uint16) { c.A = c.read8(addr); c.P.checkNZ(c.A) },
	LDX: func(c *CPU, _ AddrMode, addr uint16) { c.X = c.read8(addr); c.P.checkNZ(c.X) },
	LDY: func(c *CPU, _ AddrMode, addr uint16) { c.Y = c.read8(addr); c.P.checkNZ(c.Y) },
	LSR: func(c *CPU, mode AddrMode, addr uint16) { c.rmw(mode, addr, (*CPU).lsr) },
	NOP: (*CPU).nop,
	ORA: func(c *CPU, _ AddrMode, addr uint16) { c.A |= c.read8(addr); c.P.checkNZ(c.A) },
	PHA: func(c *CPU, _ AddrMode, _ uint16) { c.push8(c.A) },
	PHP: func(c *CPU, _ AddrMode, _ uint16) { c.push8(c.P.pushed(true)) },
	PLA: func(c *CPU, _ AddrMode, _ uint16) { c.peekStack(); c.A = c.pull8(); c.P.checkNZ(c.A) },
	PLP: func(c *CPU, _ AddrMode, _ uint16) { c.peekStack(); c.P.pulled(c.pull8()) },
	ROL: func(c *CPU, mode AddrMode, addr uint16) { c.rmw(mode, addr, (*CPU).rol) },
	ROR: func(c *CPU, mode AddrMode, addr uint16) { c.rmw(mode, addr, (*CPU).ror) },
	RTI: (*CPU).rti,
	RTS: (*CPU).rts,
	SBC: func(c *CPU, _ AddrMode, addr uint16) { c.adc(^c.read8(addr)) },
	SEC: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Carry, true) },
	SED: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Decimal, true) },
	SEI: func(c *CPU, _ AddrMode, _ uint16) { c.P.set(Interrupt, true) },
	STA: func(c *CPU, _ AddrMode, addr uint16) { c.write8(addr, c.A) },
	STX: func(c *CPU, _ AddrMode, addr uint16) { c.write8(addr, c.X) },
	STY: func(c *CPU, _ AddrMode, addr uint16) { c.write8(addr, c.Y) },
	TAX: func(c *CPU, _ AddrMode, _ uint16) { c.X = c.A; c.P.checkNZ(c.X) },
	TAY: func(c *CPU, _ AddrMode, _ uint16) { c.Y = c.A; c.P.checkNZ(c.Y) },
	TSX: func(c *CPU, _ AddrMode, _ uint16) { c.X = c.SP; c.P.checkNZ(c.X) },
	TXA: func(c *CPU, _ AddrMode, _ uint16) { c.A = c.X; c.P.checkNZ(c.A) },
	TXS: func(c *CPU, _ AddrMode, _ uint16) { c.SP = c.X },
	TYA: func(c *CPU, _ AddrMode, _ uint16) { c.A = c.Y; c.P.checkNZ(c.A) },

	// undocumented
	ALR: (*CPU).alr,
	ANC: (*CPU).anc,
	ANE: (*CPU).ane,
	ARR: (*CPU).arr,
	DCP: func(c *CPU, mode AddrMode, addr uint16) { c.compare(c.A, c.rmw(mode, addr, (*CPU).dec)) },
	ISC: func(c *CPU, mode AddrMode, addr uint16) { c.adc(^c.rmw(mode, addr, (*CPU).inc)) },
	JAM: func(c *CPU, _ AddrMode, _ uint16) { c.halt() },
	LAS: (*CPU).las,
	LAX: func(c *CPU, _ AddrMode, addr uint16) { c.A = c.read8(addr); c.X = c.A; c.P.checkNZ(c.A) },
	LXA: (*CPU).lxa,
	RLA: func(c *CPU, mode AddrMode, addr uint16) { c.A &= c.rmw(mode, addr, (*CPU).rol); c.P.checkNZ(c.A) },
	RRA: func(c *CPU, mode AddrMode, addr uint16) { c.adc(c.rmw(mode, addr, (*CPU).ror)) },
	SAX: func(c *CPU, _ AddrMode, addr uint16) { c.write8(addr, c.A&c.X) },
	SBX: (*CPU).sbx,
	SHA: func(c *CPU, _ AddrMode, addr uint16) { c.shWrite(addr, c.A&c.X) },
	SHX: func(c *CPU, _ AddrMode, addr uint16) { c.shWrite(addr, c.X) },
	SHY: func(c *CPU, _ AddrMode, addr uint16) { c.shWrite(addr, c.Y) },
	SLO: func(c *CPU, mode AddrMode, addr uint16) { c.A |= c.rmw(mode, addr, (*CPU).asl); c.P.checkNZ(c.A) },
	SRE: func(c *CPU, mode AddrMode, addr uint16) { c.A ^= c.rmw(mode, addr, (*CPU).lsr); c.P.checkNZ(c.A) },
	TAS: func(c *CPU, _ AddrMode, addr uint16) { c.SP = c.A & c.X; c.shWrite(addr, c.SP) },
}

// rmw applies f to the accumulator or, for memory operands, performs the
// read, dummy write of the unmodified value and final write of a
// read-modify-write instruction. It returns the new value.
func (c *CPU) rmw(mode AddrMode, addr uint16, f func(*CPU, uint8) uint8) uint8 {
	if mode == ACC {
		c.A = f(c, c.A)
		return c.A
	}
	val := c.read8(addr)
	c.write8(addr, val)
	val = f(c, val)
	c.write8(addr, val)
	return val
}

func (c *CPU) adc(val uint8) {
	sum := uint16(c.A) + uint16(val) + uint16(c.P.carry())
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.set(Carry, reg >= val)
	c.P.checkNZ(reg - val)
}

func (c *CPU) asl(val uint8) uint8 {
	c.P.set(Carry, val&0x80 != 0)
	val <<= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) lsr(val uint8) uint8 {
	c.P.set(Carry, val&0x01 != 0)
	val >>= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rol(val uint8) uint8 {
	carry := c.P.carry()
	c.P.set(Carry, val&0x80 != 0)
	val = val<<1 | carry
	c.P.checkNZ(val)
	return val
}

func (c *CPU) ror(val uint8) uint8 {
	carry := c.P.carry()
	c.P.set(Carry, val&0x01 != 0)
	val = val>>1 | carry<<7
	c.P.checkNZ(val)
	return val
}

func (c *CPU) inc(val uint8) uint8 {
	val++
	c.P.checkNZ(val)
	return val
}

func (c *CPU) dec(val uint8) uint8 {
	val--
	c.P.checkNZ(val)
	return val
}

func (c *CPU) branch(taken bool, target uint16) {
	if !taken {
		return
	}
	c.read8(c.PC)
	if c.PC&0xFF00 != target&0xFF00 {
		c.read8(c.PC&0xFF00 | target&0x00FF)
	}
	c.PC = target
}

func (c *CPU) bit(_ AddrMode, addr uint16) {
	val := c.read8(addr)
	c.P.set(Zero, c.A&val == 0)
	c.P.set(Negative, val&0x80 != 0)
	c.P.set(Overflow, val&0x40 != 0)
}

func (c *CPU) nop(mode AddrMode, addr uint16) {
	if mode != IMP {
		c.read8(addr)
	}
}

func (c *CPU) brk(_ AddrMode, _ uint16) {
	// The byte following BRK is a padding byte, already read.
	c.PC++
	c.push16(c.PC)

	vector := IRQVector
	if c.nmiPending {
		c.nmiPending = false
		vector = NMIVector
	}
	c.push8(c.P.pushed(true))
	c.P.set(Interrupt, true)
	c.PC = c.read16(vector)
}

func (c *CPU) jsr(_ AddrMode, addr uint16) {
	c.peekStack()
	c.push16(c.PC - 1)
	c.PC = addr
}

func (c *CPU) rts(_ AddrMode, _ uint16) {
	c.peekStack()
	c.PC = c.pull16()
	c.read8(c.PC)
	c.PC++
}

func (c *CPU) rti(_ AddrMode, _ uint16) {
	c.peekStack()
	c.P.pulled(c.pull8())
	c.PC = c.pull16()
}

/* undocumented opcodes */

func (c *CPU) alr(_ AddrMode, addr uint16) {
	c.A &= c.read8(addr)
	c.A = c.lsr(c.A)
}

func (c *CPU) anc(_ AddrMode, addr uint16) {
	c.A &= c.read8(addr)
	c.P.checkNZ(c.A)
	c.P.set(Carry, c.A&0x80 != 0)
}

// unstable, use the commonly used magic constant.
const aneMagic = 0xEE

func (c *CPU) ane(_ AddrMode, addr uint16) {
	c.A = (c.A | aneMagic) & c.X & c.read8(addr)
	c.P.checkNZ(c.A)
}

func (c *CPU) lxa(_ AddrMode, addr uint16) {
	c.A = (c.A | aneMagic) & c.read8(addr)
	c.X = c.A
	c.P.checkNZ(c.A)
}

func (c *CPU) arr(_ AddrMode, addr uint16) {
	c.A &= c.read8(addr)
	c.A = c.A>>1 | c.P.carry()<<7
	c.P.checkNZ(c.A)
	c.P.set(Carry, c.A&0x40 != 0)
	c.P.set(Overflow, (c.A>>6^c.A>>5)&1 != 0)
}

func (c *CPU) las(_ AddrMode, addr uint16) {
	val := c.read8(addr) & c.SP
	c.A, c.X, c.SP = val, val, val
	c.P.checkNZ(val)
}

func (c *CPU) sbx(_ AddrMode, addr uint16) {
	val := c.read8(addr)
	ax := c.A & c.X
	c.P.set(Carry, ax >= val)
	c.X = ax - val
	c.P.checkNZ(c.X)
}

// shWrite implements the store of SHA, SHX, SHY and TAS: the value is ANDed
// with the high byte of the base address plus one and, when indexing crossed
// a page, it replaces the high byte of the effective address.
func (c *CPU) shWrite(addr uint16, val uint8) {
	hi := uint8(c.opBase>>8) + 1
	val &= hi
	if c.opBase&0xFF00 != addr&0xFF00 {
		addr = uint16(val)<<8 | addr&0x00FF
	}
	c.write8(addr, val)
}
