package mappers

import (
	"fmt"

	"nescore/hw"
	"nescore/ines"
)

// base implements the memory side of a mapper: PRG ROM banked in 8KB slots
// at $8000-$FFFF, PRG RAM at $6000-$7FFF, CHR ROM or RAM banked in 1KB slots.
// Mappers embed it and implement bank switching on top of it.
type base struct {
	desc MapperDesc

	rom  *ines.Rom
	cart *hw.Cartridge

	prg    []byte
	prgram []byte
	chr    []byte
	chrRAM bool

	prgmap [4]int // offset in prg of each 8KB slot
	chrmap [8]int // offset in chr of each 1KB slot

	ramEnabled   bool
	ramReadOnly  bool
	busConflicts bool
	mirroring    ines.NTMirroring
}

func ispow2(n int) bool {
	return n&(n-1) == 0
}

func newbase(desc MapperDesc, rom *ines.Rom, cart *hw.Cartridge) (*base, error) {
	if len(rom.PRG) < 0x4000 || !ispow2(len(rom.PRG)) {
		return nil, fmt.Errorf("only support PRG ROM with power of 2 size, got %d", len(rom.PRG))
	}

	b := &base{
		desc:       desc,
		rom:        rom,
		cart:       cart,
		prg:        rom.PRG,
		prgram:     make([]byte, rom.PRGRAMSize()),
		ramEnabled: true,
		mirroring:  rom.Mirroring(),
	}

	if len(rom.CHR) == 0 {
		b.chr = make([]byte, rom.CHRRAMSize())
		b.chrRAM = true
	} else {
		b.chr = rom.CHR
	}
	if len(b.chr) < 0x2000 || !ispow2(len(b.chr)) {
		return nil, fmt.Errorf("only support CHR memory with power of 2 size, got %d", len(b.chr))
	}

	b.selectPRGPage32KB(0)
	b.selectCHRPage8KB(0)
	return b, nil
}

func (b *base) Name() string {
	return b.desc.Name
}

func (b *base) Mirroring() ines.NTMirroring {
	return b.mirroring
}

func (b *base) setNTMirroring(m ines.NTMirroring) {
	if b.mirroring == ines.FourScreenMirroring || b.mirroring == m {
		return
	}
	modMapper.DebugZ("select NT mirroring").
		String("mapper", b.desc.Name).
		Stringer("prev", b.mirroring).
		Stringer("new", m).
		End()
	b.mirroring = m
}

func (b *base) Reset(soft bool) {
	if !soft {
		clear(b.prgram)
		if b.chrRAM {
			clear(b.chr)
		}
	}
}

func (b *base) ReadPRG(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		if len(b.prgram) == 0 || !b.ramEnabled {
			return 0, false
		}
		return b.prgram[int(addr-0x6000)&(len(b.prgram)-1)], true
	}
	return b.prgByte(addr), true
}

// prgByte returns the PRG ROM byte mapped at addr ($8000-$FFFF).
func (b *base) prgByte(addr uint16) uint8 {
	slot := (addr >> 13) & 0x3
	return b.prg[b.prgmap[slot]+int(addr&0x1FFF)]
}

// WritePRG handles writes to PRG RAM. Mappers handle the writes to their
// registers.
func (b *base) WritePRG(addr uint16, val uint8) {
	if addr >= 0x8000 {
		return
	}
	b.writeRAM(addr, val)
}

func (b *base) writeRAM(addr uint16, val uint8) {
	if len(b.prgram) == 0 || !b.ramEnabled || b.ramReadOnly {
		return
	}
	b.prgram[int(addr-0x6000)&(len(b.prgram)-1)] = val
}

// conflict returns the value actually written at addr in case of bus
// conflicts: the ROM drives the data bus at the same time as the CPU.
func (b *base) conflict(addr uint16, val uint8) uint8 {
	if !b.busConflicts {
		return val
	}
	return val & b.prgByte(addr)
}

func (b *base) ReadCHR(addr uint16) uint8 {
	slot := (addr >> 10) & 0x7
	return b.chr[b.chrmap[slot]+int(addr&0x3FF)]
}

func (b *base) WriteCHR(addr uint16, val uint8) {
	if !b.chrRAM {
		return
	}
	slot := (addr >> 10) & 0x7
	b.chr[b.chrmap[slot]+int(addr&0x3FF)] = val
}

// bankOffset returns the offset of the bank-th bank of size banksz in a
// memory of size memsz. Negative banks count from the end (-1 is the last
// bank); out of range banks wrap around.
func bankOffset(bank, banksz, memsz int) int {
	nbanks := memsz / banksz
	if bank < 0 {
		bank += nbanks
	}
	bank %= nbanks
	if bank < 0 {
		bank += nbanks
	}
	return bank * banksz
}

// selectPRGPage8KB maps the given 8KB bank at slot (0: $8000, 3: $E000).
func (b *base) selectPRGPage8KB(slot, bank int) {
	b.prgmap[slot] = bankOffset(bank, 0x2000, len(b.prg))
}

// selectPRGPage16KB maps the given 16KB bank at slot (0: $8000, 1: $C000).
func (b *base) selectPRGPage16KB(slot, bank int) {
	off := bankOffset(bank, 0x4000, len(b.prg))
	b.prgmap[slot*2] = off
	b.prgmap[slot*2+1] = off + 0x2000
}

func (b *base) selectPRGPage32KB(bank int) {
	if len(b.prg) < 0x8000 {
		// 16KB ROMs are mirrored.
		b.selectPRGPage16KB(0, 0)
		b.selectPRGPage16KB(1, 0)
		return
	}
	off := bankOffset(bank, 0x8000, len(b.prg))
	for i := range b.prgmap {
		b.prgmap[i] = off + i*0x2000
	}
}

func (b *base) selectCHRPage1KB(slot, bank int) {
	b.chrmap[slot] = bankOffset(bank, 0x400, len(b.chr))
}

func (b *base) selectCHRPage2KB(slot, bank int) {
	off := bankOffset(bank, 0x800, len(b.chr))
	b.chrmap[slot*2] = off
	b.chrmap[slot*2+1] = off + 0x400
}

func (b *base) selectCHRPage4KB(slot, bank int) {
	off := bankOffset(bank, 0x1000, len(b.chr))
	for i := range 4 {
		b.chrmap[slot*4+i] = off + i*0x400
	}
}

func (b *base) selectCHRPage8KB(bank int) {
	off := bankOffset(bank, 0x2000, len(b.chr))
	for i := range b.chrmap {
		b.chrmap[i] = off + i*0x400
	}
}
