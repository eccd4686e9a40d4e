package hw

// P is the processor status register.
type P uint8

const (
	Carry = 1 << iota
	Zero
	Interrupt
	Decimal
	Break
	Reserved
	Overflow
	Negative
)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(p) & (1 << (7 - i))) >> (7 - i)
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p P) has(flag uint8) bool {
	return uint8(p)&flag != 0
}

func (p *P) set(flag uint8, on bool) {
	if on {
		*p |= P(flag)
	} else {
		*p &^= P(flag)
	}
}

func (p P) carry() uint8 {
	return uint8(p) & Carry
}

func (p *P) checkNZ(v uint8) {
	p.set(Negative, v&0x80 != 0)
	p.set(Zero, v == 0)
}

// checkCV sets the carry and overflow flags after x+y(+carry) gave sum.
func (p *P) checkCV(x, y uint8, sum uint16) {
	p.set(Carry, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	p.set(Overflow, (uint16(x)^sum)&(uint16(y)^sum)&0x80 != 0)
}

// pushed returns the value of P as pushed on the stack, brk telling whether
// the push comes from an instruction (PHP/BRK) or from an interrupt.
func (p P) pushed(brk bool) uint8 {
	v := uint8(p) | Reserved
	if brk {
		v |= Break
	} else {
		v &^= Break
	}
	return v
}

// pulled sets P from a value pulled from the stack. The B flag doesn't exist
// in the register and the unused bit always reads back as 1.
func (p *P) pulled(v uint8) {
	*p = P(v&^Break | Reserved)
}
