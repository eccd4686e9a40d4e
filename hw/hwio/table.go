package hwio

import (
	"fmt"

	"nescore/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Write16(b BankIO8, addr uint16, val uint16) {
	b.Write8(addr, uint8(val))
	b.Write8(addr+1, uint8(val>>8))
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

// OutOfRangeAccess is the panic value of an access to an address that no
// device covers. Tables are expected to cover their whole address space, so
// this is always a decoding bug.
type OutOfRangeAccess struct {
	Table string
	Addr  uint16
	Write bool
}

func (e OutOfRangeAccess) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("%s: unmapped %s at $%04X", e.Table, op, e.Addr)
}

// Table is an address decoder: it maps each address of a 16-bit space to the
// device responsible for it.
type Table struct {
	Name string

	// Unmapped, if set, handles accesses to addresses without device.
	// Otherwise such accesses panic with OutOfRangeAccess.
	Unmapped BankIO8

	ios [0x10000]BankIO8
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Reset() {
	clear(t.ios[:])
}

// MapBank maps a register bank, that is a structure containing Reg8, Mem or
// Device fields. Registers must have a struct tag "hwio" containing at least:
//
//	offset=0x12     Byte-offset within the register bank at which this
//	                register is mapped. Fields without offset are not part
//	                of any bank and are ignored.
//
//	bank=NN         Ordinal bank number (0 if not specified), allowing a
//	                structure to expose multiple banks.
//
// See InitRegs for the other options.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Device:
			t.MapDevice(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) mapBus8(addr uint16, size int, io BankIO8) {
	if size <= 0 || int(addr)+size > len(t.ios) {
		panic(fmt.Sprintf("%s: invalid mapping at $%04X (size %d)", t.Name, addr, size))
	}
	for i := range size {
		t.ios[int(addr)+i] = io
	}
}

func (t *Table) MapReg8(addr uint16, io *Reg8) {
	t.mapBus8(addr, 1, io)
}

func (t *Table) MapDevice(addr uint16, io *Device) {
	log.ModHwIo.DebugZ("mapping device").
		Hex16("addr", addr).
		Int("size", io.Size).
		String("name", io.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, io.Size, io)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Int("size", mem.VSize).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, mem.VSize, mem.BankIO8())
}

// MapMemorySlice maps buf over [addr, end], mirroring it if the range is
// bigger than the slice.
func (t *Table) MapMemorySlice(addr, end uint16, buf []uint8, readonly bool) {
	flags := ReadWriteFlag
	if readonly {
		flags = ReadOnlyFlag
	}
	t.MapMem(addr, &Mem{
		Data:  buf,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

func (t *Table) Unmap(begin, end uint16) {
	for i := int(begin); i <= int(end); i++ {
		t.ios[i] = nil
	}
}

// Mapped reports whether a device handles addr.
func (t *Table) Mapped(addr uint16) bool {
	return t.ios[addr] != nil
}

func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.ios[addr]
	if io == nil {
		if t.Unmapped != nil {
			return t.Unmapped.Read8(addr, peek)
		}
		panic(OutOfRangeAccess{Table: t.Name, Addr: addr})
	}
	return io.Read8(addr, peek)
}

func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.ios[addr]
	if io == nil {
		if t.Unmapped != nil {
			t.Unmapped.Write8(addr, val)
			return
		}
		panic(OutOfRangeAccess{Table: t.Name, Addr: addr, Write: true})
	}
	io.Write8(addr, val)
}
