package hwio

import "fmt"

// Reg8 is an 8-bit hardware register. Bits set in RoMask can't be written.
type Reg8 struct {
	Name   string
	Value  uint8
	RoMask uint8

	Flags   RWFlags
	ReadCb  func(val uint8, peek bool) uint8
	WriteCb func(old uint8, val uint8)
}

func (reg Reg8) String() string {
	cb := ""
	if reg.ReadCb != nil {
		cb += "r"
	}
	if reg.WriteCb != nil {
		cb += "w"
	}
	return fmt.Sprintf("%s=%02X[%s]", reg.Name, reg.Value, cb)
}

// Write8 stores val, leaving the bits of RoMask untouched, then calls WriteCb
// with the previous and the new value.
func (reg *Reg8) Write8(addr uint16, val uint8) {
	if !reg.Flags.writable(reg.Name, addr) {
		return
	}
	old := reg.Value
	reg.Value = old&reg.RoMask | val&^reg.RoMask
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

func (reg *Reg8) Read8(addr uint16, peek bool) uint8 {
	switch {
	case !reg.Flags.readable(reg.Name, addr, peek):
		return 0
	case reg.ReadCb != nil:
		return reg.ReadCb(reg.Value, peek)
	}
	return reg.Value
}

// Bit helpers, n is the bit position.

func (reg *Reg8) GetBit(n uint) bool   { return reg.Value&(1<<n) != 0 }
func (reg *Reg8) GetBiti(n uint) uint8 { return (reg.Value >> n) & 1 }
func (reg *Reg8) SetBit(n uint)        { reg.Value |= 1 << n }
func (reg *Reg8) ClearBit(n uint)      { reg.Value &^= 1 << n }
func (reg *Reg8) ClearBits(mask uint8) { reg.Value &^= mask }
