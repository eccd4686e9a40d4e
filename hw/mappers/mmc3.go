package mappers

import (
	"nescore/hw"
	"nescore/ines"
)

var MMC3 = MapperDesc{
	Name: "MMC3",
	Load: loadMMC3,
}

type mmc3 struct {
	*base

	regs    [8]uint8 // R0-R7 bank registers
	target  uint8    // register updated by the next bank data write
	prgmode uint8
	chrinv  uint8

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool

	// A12 edge detection
	a12         bool
	a12LowSince int64
}

// Minimum number of CPU cycles A12 must stay low for the next rising edge to
// clock the IRQ counter.
const a12Filter = 3

func (m *mmc3) WritePRG(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.writeRAM(addr, val)
		return
	}

	even := addr&1 == 0
	switch addr & 0xE000 {
	case 0x8000:
		if even {
			// Bank select
			m.target = val & 0x7
			m.prgmode = (val >> 6) & 1
			m.chrinv = (val >> 7) & 1
		} else {
			// Bank data
			m.regs[m.target] = val
		}
		m.remap()

	case 0xA000:
		if even {
			if val&1 == 0 {
				m.setNTMirroring(ines.VertMirroring)
			} else {
				m.setNTMirroring(ines.HorzMirroring)
			}
		} else {
			// PRG RAM protect
			m.ramEnabled = val&0x80 != 0
			m.ramReadOnly = val&0x40 != 0
		}

	case 0xC000:
		if even {
			m.irqLatch = val
		} else {
			m.irqCounter = 0
			m.irqReload = true
		}

	case 0xE000:
		if even {
			m.irqEnabled = false
			m.cart.ClearIRQ()
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) remap() {
	if m.prgmode == 0 {
		m.selectPRGPage8KB(0, int(m.regs[6]))
		m.selectPRGPage8KB(2, -2)
	} else {
		m.selectPRGPage8KB(0, -2)
		m.selectPRGPage8KB(2, int(m.regs[6]))
	}
	m.selectPRGPage8KB(1, int(m.regs[7]))
	m.selectPRGPage8KB(3, -1)

	// With CHR inversion, 2KB banks are at $1000-$1FFF and 1KB banks at
	// $0000-$0FFF.
	lo, hi := 0, 4
	if m.chrinv == 1 {
		lo, hi = 4, 0
	}
	m.selectCHRPage1KB(lo+0, int(m.regs[0]&0xFE))
	m.selectCHRPage1KB(lo+1, int(m.regs[0]|1))
	m.selectCHRPage1KB(lo+2, int(m.regs[1]&0xFE))
	m.selectCHRPage1KB(lo+3, int(m.regs[1]|1))
	m.selectCHRPage1KB(hi+0, int(m.regs[2]))
	m.selectCHRPage1KB(hi+1, int(m.regs[3]))
	m.selectCHRPage1KB(hi+2, int(m.regs[4]))
	m.selectCHRPage1KB(hi+3, int(m.regs[5]))
}

func (m *mmc3) ReadCHR(addr uint16) uint8 {
	m.watchA12(addr)
	return m.base.ReadCHR(addr)
}

func (m *mmc3) WriteCHR(addr uint16, val uint8) {
	m.watchA12(addr)
	m.base.WriteCHR(addr, val)
}

// watchA12 clocks the IRQ counter on filtered rising edges of PPU A12.
func (m *mmc3) watchA12(addr uint16) {
	a12 := addr&0x1000 != 0
	cycle := m.cart.CPUCycle()

	switch {
	case a12 && !m.a12:
		if cycle-m.a12LowSince >= a12Filter {
			m.clockIRQ()
		}
	case !a12 && m.a12:
		m.a12LowSince = cycle
	}
	m.a12 = a12
}

func (m *mmc3) clockIRQ() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		modMapper.DebugZ("IRQ").String("mapper", m.desc.Name).End()
		m.cart.SetIRQ()
	}
}

func (m *mmc3) Reset(soft bool) {
	m.base.Reset(soft)

	m.irqEnabled = false
	m.irqReload = false
	m.irqCounter = 0
	m.cart.ClearIRQ()
	if soft {
		return
	}

	m.target, m.prgmode, m.chrinv = 0, 0, 0
	m.regs = [8]uint8{0, 2, 4, 5, 6, 7, 0, 1}
	m.irqLatch = 0
	m.a12 = false
	m.a12LowSince = 0
	m.remap()
}

func loadMMC3(b *base) (hw.Mapper, error) {
	mmc3 := &mmc3{base: b}
	mmc3.Reset(false)
	return mmc3, nil
}
