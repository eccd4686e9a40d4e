package hw

import (
	"nescore/hw/hwdefs"
	"nescore/ines"
)

// A Mapper is the board logic of a cartridge: it translates CPU and PPU
// addresses into PRG and CHR memories, and observes CPU writes to switch
// banks.
type Mapper interface {
	Name() string

	// ReadPRG reads from CPU space ($6000-$FFFF). ok is false when nothing
	// drives the data bus at addr, which then reads as open bus.
	ReadPRG(addr uint16) (val uint8, ok bool)
	WritePRG(addr uint16, val uint8)

	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)

	// Mirroring returns the current nametable mirroring mode.
	Mirroring() ines.NTMirroring

	Reset(soft bool)
}

// CPUPins is what the cartridge sees of the CPU.
type CPUPins interface {
	SetIRQ(src hwdefs.IRQSource)
	ClearIRQ(src hwdefs.IRQSource)
	CurrentCycle() int64
}

type Cartridge struct {
	Mapper
	Rom *ines.Rom

	// VRAM holds the 2 extra nametables of four-screen boards.
	VRAM []byte

	pins CPUPins
}

// NewCartridge creates a cartridge for rom, whose board logic will be set
// later.
func NewCartridge(rom *ines.Rom) *Cartridge {
	cart := &Cartridge{Rom: rom}
	if rom.Mirroring() == ines.FourScreenMirroring {
		cart.VRAM = make([]byte, 0x800)
	}
	return cart
}

// Connect connects the cartridge IRQ line and clock to the CPU.
func (c *Cartridge) Connect(pins CPUPins) {
	c.pins = pins
}

func (c *Cartridge) SetIRQ() {
	if c.pins != nil {
		c.pins.SetIRQ(hwdefs.External)
	}
}

func (c *Cartridge) ClearIRQ() {
	if c.pins != nil {
		c.pins.ClearIRQ(hwdefs.External)
	}
}

// CPUCycle returns the current CPU cycle, or 0 if no CPU is connected.
func (c *Cartridge) CPUCycle() int64 {
	if c.pins == nil {
		return 0
	}
	return c.pins.CurrentCycle()
}
