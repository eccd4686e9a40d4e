package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// OAMDMA copies a page of CPU memory into the PPU OAM, through OAMDATA. The
// CPU is halted during the transfer, but the rest of the system keeps going.
type OAMDMA struct {
	OAMDMA hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`

	page    uint8
	pending bool
}

func (dma *OAMDMA) reset() {
	dma.page = 0x00
	dma.pending = false
}

// $4014
func (dma *OAMDMA) WriteOAMDMA(_, val uint8) {
	log.ModDMA.InfoZ("Write to OAMDMA reg").Hex8("val", val).End()
	dma.page = val
	dma.pending = true
}

// process performs the transfer on behalf of the CPU, after the instruction
// that wrote to OAMDMA. It takes 513 cycles: 1 idle cycle then 256 pairs of
// read/write cycles, plus one alignment cycle if the transfer would begin on
// an odd cycle.
func (dma *OAMDMA) process(c *CPU) {
	dma.pending = false

	start := c.Cycles
	c.tick()
	if start%2 == 1 {
		c.tick()
	}

	base := uint16(dma.page) << 8
	for i := range uint16(256) {
		val := c.read8(base | i)
		c.write8(0x2004, val)
	}

	log.ModDMA.InfoZ("OAM DMA transfer done").
		Hex8("page", dma.page).
		Int64("start", start).
		Int64("cycles", c.Cycles-start).
		End()
}
