package mappers

import (
	"nescore/hw"
	"nescore/ines"
)

var MMC1 = MapperDesc{
	Name: "MMC1",
	Load: loadMMC1,
}

// MMC1 internal registers, selected by bits 13-14 of the address of the
// fifth serial write.
const (
	mmc1Control = iota // $8000 [...C PPMM]
	mmc1CHR0           // $A000
	mmc1CHR1           // $C000
	mmc1PRG            // $E000 [...W PPPP]
)

var mmc1Mirroring = [4]ines.NTMirroring{
	ines.OnlyAScreen, ines.OnlyBScreen, ines.VertMirroring, ines.HorzMirroring,
}

type mmc1 struct {
	*base

	regs [4]uint8

	// Serial port. A marker bit starts at bit 4, the register is complete
	// when it reaches bit 0.
	shift     uint8
	lastWrite int64
}

const mmc1ShiftEmpty = 0x10

func loadMMC1(b *base) (hw.Mapper, error) {
	m := &mmc1{base: b}
	m.Reset(false)
	return m, nil
}

func (m *mmc1) Reset(soft bool) {
	m.base.Reset(soft)

	m.shift = mmc1ShiftEmpty
	m.lastWrite = -2

	// Power up and reset both select PRG mode 3: bank 0 at $8000 and the last
	// bank at $C000, which boards without PRG banking rely on. WRAM is
	// enabled, as on MMC1B.
	if !soft {
		m.regs = [4]uint8{}
	}
	m.regs[mmc1Control] |= 0x0C
	m.remap()
}

func (m *mmc1) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.writeRAM(addr, val)
		return
	}

	cycle := m.cart.CPUCycle()
	consecutive := cycle-m.lastWrite < 2
	m.lastWrite = cycle

	if val&0x80 != 0 {
		m.shift = mmc1ShiftEmpty
		m.regs[mmc1Control] |= 0x0C
		m.remap()
		return
	}

	// Only the first write of a read-modify-write instruction is seen.
	if consecutive {
		return
	}

	done := m.shift&1 != 0
	m.shift = m.shift>>1 | (val&1)<<4
	if !done {
		return
	}

	reg := int(addr>>13) & 3
	m.regs[reg] = m.shift
	m.shift = mmc1ShiftEmpty

	modMapper.DebugZ("write register").
		String("mapper", m.desc.Name).
		Int("reg", reg).
		Hex8("val", m.regs[reg]).
		End()
	m.remap()
}

func (m *mmc1) remap() {
	ctrl := m.regs[mmc1Control]
	chr0, chr1 := int(m.regs[mmc1CHR0]), int(m.regs[mmc1CHR1])
	prg := int(m.regs[mmc1PRG] & 0x0F)

	m.setNTMirroring(mmc1Mirroring[ctrl&3])

	// SUROM: bit 4 of CHR0 selects the 256KB half of a 512KB PRG ROM.
	outer := 0
	if len(m.prg) == 0x80000 {
		outer = chr0 & 0x10
	}

	switch (ctrl >> 2) & 3 {
	case 0, 1:
		m.selectPRGPage16KB(0, outer|prg&^1)
		m.selectPRGPage16KB(1, outer|prg|1)
	case 2:
		m.selectPRGPage16KB(0, outer)
		m.selectPRGPage16KB(1, outer|prg)
	case 3:
		m.selectPRGPage16KB(0, outer|prg)
		m.selectPRGPage16KB(1, outer|0x0F)
	}

	if ctrl&0x10 == 0 {
		m.selectCHRPage8KB((chr0 & 0x1F) >> 1)
	} else {
		m.selectCHRPage4KB(0, chr0&0x1F)
		m.selectCHRPage4KB(1, chr1&0x1F)
	}

	m.ramEnabled = m.regs[mmc1PRG]&0x10 == 0
}
