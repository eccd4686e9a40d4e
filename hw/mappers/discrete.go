package mappers

import (
	"nescore/hw"
	"nescore/ines"
)

// Boards built around a single 8-bit latch, written anywhere in $8000-$FFFF
// and decoded by standard logic chips.
var (
	// UxROM: 16KB PRG bank at $8000, last bank fixed at $C000.
	UxROM = discreteBoard("UxROM", submapper2Conflicts, func(b *base, val uint8) {
		b.selectPRGPage16KB(0, int(val))
		b.selectPRGPage16KB(1, -1)
	})

	// CNROM: 8KB CHR bank, PRG is fixed.
	CNROM = discreteBoard("CNROM", alwaysConflicts, func(b *base, val uint8) {
		b.selectCHRPage8KB(int(val & 0x03))
	})

	// AxROM: [...M .PPP] 32KB PRG bank, M selects the single-screen
	// nametable.
	AxROM = discreteBoard("AxROM", submapper2Conflicts, func(b *base, val uint8) {
		b.selectPRGPage32KB(int(val & 0x07))
		if val&0x10 != 0 {
			b.setNTMirroring(ines.OnlyBScreen)
		} else {
			b.setNTMirroring(ines.OnlyAScreen)
		}
	})

	// GxROM: [..PP ..CC] 32KB PRG bank and 8KB CHR bank.
	GxROM = discreteBoard("GxROM", nil, func(b *base, val uint8) {
		b.selectPRGPage32KB(int(val>>4) & 0x03)
		b.selectCHRPage8KB(int(val & 0x03))
	})
)

func alwaysConflicts(*ines.Rom) bool { return true }

// NES 2.0 submapper 2 marks boards with bus conflicts.
func submapper2Conflicts(rom *ines.Rom) bool { return rom.SubMapper() == 2 }

type discrete struct {
	*base

	latch  uint8
	decode func(*base, uint8)
}

func discreteBoard(name string, conflicts func(*ines.Rom) bool, decode func(*base, uint8)) MapperDesc {
	return MapperDesc{
		Name: name,
		Load: func(b *base) (hw.Mapper, error) {
			b.busConflicts = conflicts != nil && conflicts(b.rom)
			m := &discrete{base: b, decode: decode}
			m.Reset(false)
			return m, nil
		},
	}
}

func (m *discrete) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.writeRAM(addr, val)
		return
	}

	val = m.conflict(addr, val)
	if val != m.latch {
		modMapper.DebugZ("latch").
			String("mapper", m.desc.Name).
			Hex8("prev", m.latch).
			Hex8("new", val).
			End()
	}
	m.latch = val
	m.decode(m.base, val)
}

// Reset clears the latch on power up only, a soft reset doesn't reach it.
func (m *discrete) Reset(soft bool) {
	m.base.Reset(soft)
	if !soft {
		m.latch = 0
		m.decode(m.base, 0)
	}
}
