package hw

import (
	"nescore/emu/log"
)

// loopy is the layout of the PPU internal VRAM address registers v and t:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
type loopy uint16

func (l loopy) coarseX() uint16 { return uint16(l) & 0x1F }
func (l loopy) coarseY() uint16 { return uint16(l) >> 5 & 0x1F }
func (l loopy) fineY() uint16   { return uint16(l) >> 12 & 0x07 }

// ntAddr is the offset of the current tile in the nametables.
func (l loopy) ntAddr() uint16 { return uint16(l) & 0x0FFF }

// atAddr is the address of the attribute byte of the current tile.
func (l loopy) atAddr() uint16 {
	v := uint16(l)
	return 0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07
}

// atShift is the position of the 2 bits of the current tile within its
// attribute byte.
func (l loopy) atShift() uint8 {
	v := uint16(l)
	return uint8((v>>4)&0x04 | v&0x02)
}

func (l *loopy) incX() {
	if l.coarseX() == 31 {
		*l &^= 0x001F
		*l ^= 0x0400 // switch horizontal nametable
		return
	}
	*l++
}

func (l *loopy) incY() {
	if l.fineY() < 7 {
		*l += 0x1000
		return
	}

	*l &^= 0x7000
	y := l.coarseY()
	switch y {
	case 29:
		y = 0
		*l ^= 0x0800 // switch vertical nametable
	case 31:
		y = 0
	default:
		y++
	}
	*l = *l&^0x03E0 | loopy(y<<5)
}

func (l *loopy) copyX(t loopy) { *l = *l&^0x041F | t&0x041F }
func (l *loopy) copyY(t loopy) { *l = *l&^0x7BE0 | t&0x7BE0 }

// Reads of write-only registers return the I/O latch.
func (p *PPU) ReadIOLATCH(_ uint8, _ bool) uint8 {
	return p.iolatch
}

// PPUCTRL: $2000
func (p *PPU) WritePPUCTRL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()
	p.iolatch = val

	// Transfer the nametable bits.
	p.vramTmp &^= ntselect << 10
	p.vramTmp |= loopy(val&ntselect) << 10

	// By toggling the nmi bit during vblank without reading PPUSTATUS, a
	// program can cause /NMI to be pulled low multiple times, causing
	// multiple NMIs to be generated.
	p.updateNMI()
}

// PPUMASK: $2001
func (p *PPU) WritePPUMASK(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.iolatch = val
}

// PPUSTATUS: $2002
func (p *PPU) ReadPPUSTATUS(val uint8, peek bool) uint8 {
	ret := val&^openbusMask | p.iolatch&openbusMask
	if peek {
		return ret
	}

	p.iolatch = ret
	p.writeLatch = false
	p.PPUSTATUS.ClearBit(vblank)
	p.updateNMI()

	// Reading one dot before vblank is set suppresses the flag, and the NMI,
	// for the whole frame.
	if p.Scanline == vblankLine && p.Cycle == 1 {
		p.suppressVBL = true
	}
	return ret
}

func (p *PPU) WritePPUSTATUS(old, val uint8) {
	p.iolatch = val
	p.PPUSTATUS.Value = old
}

// OAMADDR: $2003
func (p *PPU) WriteOAMADDR(old, val uint8) {
	p.iolatch = val
	p.oamAddr = val
}

// OAMDATA: $2004
func (p *PPU) ReadOAMDATA(_ uint8, peek bool) uint8 {
	val := p.OAM[p.oamAddr]
	if p.oamAddr&3 == 2 {
		// Unimplemented bits of the sprite attribute byte.
		val &= 0xE3
	}
	if !peek {
		p.iolatch = val
	}
	return val
}

func (p *PPU) WriteOAMDATA(old, val uint8) {
	p.iolatch = val
	if p.renderingEnabled() && p.renderingLine() {
		// During rendering, writes don't modify OAM but increment the high 6
		// bits of OAMADDR.
		p.oamAddr += 4
		return
	}
	p.OAM[p.oamAddr] = val
	p.oamAddr++
}

// PPUSCROLL: $2005
func (p *PPU) WritePPUSCROLL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).End()
	p.iolatch = val

	if !p.writeLatch { // first write
		p.finex = val & 0b111
		p.vramTmp &^= 0b1_1111
		p.vramTmp |= loopy(val >> 3)
	} else { // second write
		p.vramTmp &^= 0b0111_0011_1110_0000
		p.vramTmp |= loopy(val&0b111) << 12
		p.vramTmp |= loopy(val&0b1111_1000) << 2
	}

	p.writeLatch = !p.writeLatch
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the operation.
// It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) WritePPUADDR(old, val uint8) {
	p.iolatch = val

	if !p.writeLatch { // first write
		p.vramTmp &^= 0b0111_1111_0000_0000 // also clears bit 14
		p.vramTmp |= loopy(val&0b11_1111) << 8
	} else { // second write
		p.vramTmp &^= 0xff
		p.vramTmp |= loopy(val)
		p.vramAddr = p.vramTmp
	}

	p.writeLatch = !p.writeLatch
}

// PPUDATA: $2007
func (p *PPU) ReadPPUDATA(_ uint8, peek bool) uint8 {
	addr := uint16(p.vramAddr) & 0x3FFF

	var val uint8
	if addr < 0x3F00 {
		// Reading VRAM is too slow so the actual data
		// will be returned at the next read.
		val = p.ppuDataRbuf
		if peek {
			return val
		}
		p.ppuDataRbuf = p.Bus.PPURead8(addr)
	} else {
		// Reading palette data is immediate, the upper 2 bits come from the
		// I/O latch.
		val = p.Bus.PPURead8(addr)&0x3F | p.iolatch&0xC0
		if peek {
			return val
		}
		// Still the read buffer gets filled with the nametable byte
		// 'underneath' the palette.
		p.ppuDataRbuf = p.Bus.PPURead8(addr - 0x1000)
	}

	p.iolatch = val
	p.incVRAMaddr()
	log.ModPPU.DebugZ("VRAM read").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
	return val
}

// PPUDATA: $2007
func (p *PPU) WritePPUDATA(old, val uint8) {
	p.iolatch = val
	addr := uint16(p.vramAddr) & 0x3FFF
	p.Bus.PPUWrite8(addr, val)
	p.incVRAMaddr()

	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}

// After each access to PPUDATA, the VRAM address is incremented.
func (p *PPU) incVRAMaddr() {
	if p.renderingEnabled() && p.renderingLine() {
		// During rendering, both coarse X and Y are incremented.
		p.vramAddr.incX()
		p.vramAddr.incY()
		return
	}

	incr := loopy(1)
	if p.PPUCTRL.GetBit(vramIncr) {
		incr = 32
	}
	p.vramAddr = (p.vramAddr + incr) & 0x7FFF
}
