package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
)

const (
	// PPUCTRL bits
	// $2000

	// Nametable selection mask
	// (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ntselect = 0b11

	// VRAM address increment per CPU read/write of PPUDATA
	// (0: +1 i.e. horizontal; 1: +32 i.e. vertical)
	vramIncr = 2

	// Sprite pattern table address for 8x8 sprites
	// (0: $0000; 1: $1000; ignored in 8x16 mode)
	spriteAddr = 3

	// Background pattern table address (0: $0000; 1: $1000)
	backgroundAddr = 4

	// Sprite size (0: 8x8 pixels; 1: 8x16 pixels – see byte 1 of OAM)
	spriteSize = 5

	// Generate an NMI at the start of the
	// vertical blanking interval (0: off; 1: on)
	nmi = 7
)

const (
	// PPUMASK bits
	// $2001

	// Greyscale
	// (0: normal color, 1: produce a greyscale display)
	greyscale = 0

	// Show background in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostBg = 1

	// Show sprites in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostSprites = 2

	// Show background
	showBg = 3

	// Show sprites
	showSprites = 4
)

const (
	// PPUSTATUS bits
	// $2002

	// Returns stale PPU bus contents.
	openbusMask = 0b11111

	// Sprite overflow. The intent was for this flag to be set
	// whenever more than eight sprites appear on a scanline, but a
	// hardware bug causes the actual behavior to be more complicated
	// and generate false positives as well as false negatives; see
	// PPU sprite evaluation. This flag is set during sprite
	// evaluation and cleared at dot 1 (the second dot) of the
	// pre-render line.
	spriteOverflow = 5

	// Sprite 0 Hit.  Set when a nonzero pixel of sprite 0 overlaps
	// a nonzero background pixel; cleared at dot 1 of the pre-render
	// line.  Used for raster timing.
	sprite0Hit = 6

	// Vertical blank has started (0: not in vblank; 1: in vblank).
	// Set at dot 1 of line 241 (the line *after* the post-render
	// line); cleared after reading $2002 and at dot 1 of the
	// pre-render line.
	vblank = 7
)

const (
	preRenderLine = hwdefs.NumScanlines - 1
	vblankLine    = 241
)

// PPUBus is the 14-bit address space of the PPU.
type PPUBus interface {
	PPURead8(addr uint16) uint8
	PPUWrite8(addr uint16, val uint8)
}

type PPU struct {
	Bus PPUBus

	Cycle    int // Current dot in scanline
	Scanline int // Current scanline being drawn (261 is the pre-render line)

	// CPU-exposed memory-mapped PPU registers
	// mapped from $2000 to $2007, mirrored up to $3fff
	PPUCTRL   hwio.Reg8 `hwio:"offset=0x0,rcb=ReadIOLATCH,wcb"`
	PPUMASK   hwio.Reg8 `hwio:"offset=0x1,rcb=ReadIOLATCH,wcb"`
	PPUSTATUS hwio.Reg8 `hwio:"offset=0x2,rcb,wcb"`
	OAMADDR   hwio.Reg8 `hwio:"offset=0x3,rcb=ReadIOLATCH,wcb"`
	OAMDATA   hwio.Reg8 `hwio:"offset=0x4,rcb,wcb"`
	PPUSCROLL hwio.Reg8 `hwio:"offset=0x5,rcb=ReadIOLATCH,wcb"`
	PPUADDR   hwio.Reg8 `hwio:"offset=0x6,rcb=ReadIOLATCH,wcb"`
	PPUDATA   hwio.Reg8 `hwio:"offset=0x7,rcb,wcb"`

	OAM        [256]uint8
	Nametables [0x800]uint8 // CIRAM, 2 physical nametables
	Palette    [32]uint8

	// loopy registers
	vramAddr   loopy // v
	vramTmp    loopy // t
	finex      uint8 // x
	writeLatch bool  // w

	oamAddr     uint8
	ppuDataRbuf uint8
	iolatch     uint8 // last value written to or read from a register

	// Background pipeline
	bg struct {
		nt, at, lo, hi uint8 // latches of the current tile fetch

		patLo, patHi   uint16 // pattern shift registers
		attrLo, attrHi uint16 // attribute shift registers
	}

	// Sprites of the current line, and their patterns.
	sprites  [8]sprite
	nsprites int

	// Sprite evaluation of the next line, running on dots 65-256.
	eval struct {
		secondary [8]sprite
		count     int
		n, m      int // OAM entry and byte index
		stall     int // steps left copying a sprite to secondary OAM
		done      bool
	}

	// NMI output
	nmiLine     bool
	nmiEdge     bool
	suppressVBL bool

	oddFrame bool
	frames   uint64

	front, back *Frame
}

type sprite struct {
	y, tile, attr, x uint8
	lo, hi           uint8
	zero             bool // sprite 0
}

func NewPPU() *PPU {
	return &PPU{
		front: new(Frame),
		back:  new(Frame),
	}
}

func (p *PPU) InitBus() {
	hwio.MustInitRegs(p)
}

// Reset puts the PPU in its reset state. A hard reset also clears the status
// register and the frame buffers. Memories (OAM, CIRAM, palette) are left
// untouched.
func (p *PPU) Reset(soft bool) {
	p.PPUCTRL.Value = 0
	p.PPUMASK.Value = 0
	p.writeLatch = false
	p.ppuDataRbuf = 0
	p.vramTmp = 0
	p.finex = 0
	p.oddFrame = false
	p.nmiLine = false
	p.nmiEdge = false
	p.suppressVBL = false

	if !soft {
		p.PPUSTATUS.Value = 0
		p.oamAddr = 0
		p.vramAddr = 0
		p.iolatch = 0
		p.frames = 0
		*p.front = Frame{}
		*p.back = Frame{}
	}

	p.Scanline = 0
	p.Cycle = 0
	p.nsprites = 0
	p.eval.count = 0
}

// Frame returns the last completed frame. It's valid until the next one is
// completed.
func (p *PPU) Frame() *Frame {
	return p.front
}

// Frames returns the number of frames completed since power-up.
func (p *PPU) Frames() uint64 {
	return p.frames
}

// TakeNMI reports whether the NMI output went active since the last call.
func (p *PPU) TakeNMI() bool {
	edge := p.nmiEdge
	p.nmiEdge = false
	return edge
}

func (p *PPU) updateNMI() {
	line := p.PPUSTATUS.GetBit(vblank) && p.PPUCTRL.GetBit(nmi)
	if line && !p.nmiLine {
		p.nmiEdge = true
	}
	p.nmiLine = line
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK.GetBit(showBg) || p.PPUMASK.GetBit(showSprites)
}

// renderingLine reports whether the PPU is currently fetching, if rendering
// is enabled.
func (p *PPU) renderingLine() bool {
	return p.Scanline < 240 || p.Scanline == preRenderLine
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	switch {
	case p.renderingLine():
		p.renderLine()
	case p.Scanline == vblankLine && p.Cycle == 1:
		if !p.suppressVBL {
			p.PPUSTATUS.SetBit(vblank)
			p.updateNMI()
		}
		p.suppressVBL = false
		log.ModPPU.DebugZ("vblank start").Uint64("frame", p.frames).End()
	}

	p.advance()
}

func (p *PPU) advance() {
	p.Cycle++
	// On odd frames, with rendering enabled, the last dot of the pre-render
	// line is skipped.
	if p.Scanline == preRenderLine && p.Cycle == hwdefs.NumDots-1 && p.oddFrame && p.renderingEnabled() {
		p.Cycle++
	}
	if p.Cycle < hwdefs.NumDots {
		return
	}

	p.Cycle = 0
	p.Scanline++
	if p.Scanline == hwdefs.NumScanlines {
		p.Scanline = 0
		p.oddFrame = !p.oddFrame
		p.front, p.back = p.back, p.front
		p.frames++
	}
}

func (p *PPU) renderLine() {
	if p.Scanline == preRenderLine && p.Cycle == 1 {
		// Clear vblank, sprite0Hit and spriteOverflow
		const mask = 1<<vblank | 1<<sprite0Hit | 1<<spriteOverflow
		p.PPUSTATUS.ClearBits(mask)
		p.updateNMI()
	}

	if p.renderingEnabled() {
		p.fetch()
	}

	if p.Scanline < 240 && p.Cycle >= 1 && p.Cycle <= 256 {
		p.renderPixel()
	}
}

// fetch performs the memory fetches and the updates of the internal
// registers happening at the current dot of a rendering line.
func (p *PPU) fetch() {
	if (p.Cycle >= 2 && p.Cycle <= 257) || (p.Cycle >= 322 && p.Cycle <= 337) {
		p.shiftBackground()
	}

	switch {
	case (p.Cycle >= 1 && p.Cycle <= 256) || (p.Cycle >= 321 && p.Cycle <= 336):
		p.fetchBackground()
	case p.Cycle == 337 || p.Cycle == 339:
		// Unused nametable fetches.
		p.Bus.PPURead8(0x2000 | p.vramAddr.ntAddr())
	}

	switch {
	case p.Cycle == 65:
		p.startSpriteEval()
	case p.Cycle > 65 && p.Cycle <= 256 && p.Cycle%2 == 0:
		p.evalSpriteStep()
	}

	switch p.Cycle {
	case 256:
		p.vramAddr.incY()
	case 257:
		p.loadBackground()
		p.vramAddr.copyX(p.vramTmp)
		p.sprites = p.eval.secondary
		p.nsprites = p.eval.count
	}

	if p.Cycle >= 257 && p.Cycle <= 320 {
		p.oamAddr = 0
		p.fetchSprites()
	}

	if p.Scanline == preRenderLine && p.Cycle >= 280 && p.Cycle <= 304 {
		p.vramAddr.copyY(p.vramTmp)
	}
}

/* background */

func (p *PPU) fetchBackground() {
	v := p.vramAddr
	switch (p.Cycle - 1) % 8 {
	case 0:
		p.loadBackground()
		p.bg.nt = p.Bus.PPURead8(0x2000 | v.ntAddr())
	case 2:
		at := p.Bus.PPURead8(v.atAddr())
		p.bg.at = (at >> v.atShift()) & 0b11
	case 4:
		p.bg.lo = p.Bus.PPURead8(p.bgPatternAddr())
	case 6:
		p.bg.hi = p.Bus.PPURead8(p.bgPatternAddr() + 8)
	case 7:
		p.vramAddr.incX()
	}
}

func (p *PPU) bgPatternAddr() uint16 {
	base := uint16(p.PPUCTRL.GetBiti(backgroundAddr)) << 12
	return base + uint16(p.bg.nt)<<4 + p.vramAddr.fineY()
}

// loadBackground loads the latched tile into the low byte of the shifters.
func (p *PPU) loadBackground() {
	p.bg.patLo = p.bg.patLo&0xFF00 | uint16(p.bg.lo)
	p.bg.patHi = p.bg.patHi&0xFF00 | uint16(p.bg.hi)

	p.bg.attrLo &= 0xFF00
	if p.bg.at&0b01 != 0 {
		p.bg.attrLo |= 0xFF
	}
	p.bg.attrHi &= 0xFF00
	if p.bg.at&0b10 != 0 {
		p.bg.attrHi |= 0xFF
	}
}

func (p *PPU) shiftBackground() {
	p.bg.patLo <<= 1
	p.bg.patHi <<= 1
	p.bg.attrLo <<= 1
	p.bg.attrHi <<= 1
}

// bgPixel returns the background pixel (0-3) and palette (0-3) at the
// current dot.
func (p *PPU) bgPixel(x int) (pixel, pal uint8) {
	if !p.PPUMASK.GetBit(showBg) || (x < 8 && !p.PPUMASK.GetBit(leftmostBg)) {
		return 0, 0
	}

	mux := uint16(0x8000) >> p.finex
	if p.bg.patLo&mux != 0 {
		pixel |= 1
	}
	if p.bg.patHi&mux != 0 {
		pixel |= 2
	}
	if p.bg.attrLo&mux != 0 {
		pal |= 1
	}
	if p.bg.attrHi&mux != 0 {
		pal |= 2
	}
	return pixel, pal
}

/* sprites */

func (p *PPU) spriteHeight() int {
	if p.PPUCTRL.GetBit(spriteSize) {
		return 16
	}
	return 8
}

// Sprite evaluation selects the sprites of the next line: the first 8
// sprites in OAM order whose Y range covers the current line. It advances one
// OAM entry every 2 dots, copying an entry to secondary OAM takes 8 dots.
//
// Once 8 sprites are found, the remaining entries are scanned with a byte
// index m that is incremented along with the entry index on each miss, so
// tile, attribute and X bytes get compared as Y. This is the hardware bug
// making the overflow flag unreliable.

func (p *PPU) startSpriteEval() {
	e := &p.eval
	e.count, e.n, e.m, e.stall = 0, 0, 0, 0
	// Nothing is shown on the line following the pre-render line.
	e.done = p.Scanline == preRenderLine
}

func (p *PPU) spriteInRange(y uint8) bool {
	row := p.Scanline - int(y)
	return row >= 0 && row < p.spriteHeight()
}

func (p *PPU) evalSpriteStep() {
	e := &p.eval
	switch {
	case e.done:
		return
	case e.stall > 0:
		e.stall--
		return
	case e.n == 64:
		e.done = true
		return
	}

	if e.count < 8 {
		y := p.OAM[e.n*4]
		if p.spriteInRange(y) {
			e.secondary[e.count] = sprite{
				y:    y,
				tile: p.OAM[e.n*4+1],
				attr: p.OAM[e.n*4+2],
				x:    p.OAM[e.n*4+3],
				zero: e.n == 0,
			}
			e.count++
			e.stall = 3
		}
		e.n++
		return
	}

	if p.spriteInRange(p.OAM[e.n*4+e.m]) {
		p.PPUSTATUS.SetBit(spriteOverflow)
		log.ModPPU.DebugZ("sprite overflow").Int("line", p.Scanline).End()
		e.done = true
		return
	}
	e.n++
	e.m = (e.m + 1) & 3
}

// fetchSprites performs the pattern fetches of the 8 sprite slots during dots
// 257-320. Empty slots fetch tile $FF.
func (p *PPU) fetchSprites() {
	off := p.Cycle - 257
	slot := off / 8
	switch off % 8 {
	case 0, 2:
		// Garbage nametable fetches.
		p.Bus.PPURead8(0x2000 | p.vramAddr.ntAddr())
	case 4:
		addr := p.spritePatternAddr(slot)
		lo := p.Bus.PPURead8(addr)
		if slot < p.nsprites {
			p.sprites[slot].lo = lo
		}
	case 6:
		addr := p.spritePatternAddr(slot) + 8
		hi := p.Bus.PPURead8(addr)
		if slot < p.nsprites {
			spr := &p.sprites[slot]
			spr.hi = hi
			if spr.attr&0x40 != 0 {
				spr.lo = reverseBits(spr.lo)
				spr.hi = reverseBits(spr.hi)
			}
		}
	}
}

func (p *PPU) spritePatternAddr(slot int) uint16 {
	tile, row := uint8(0xFF), 0
	vflip := false
	if slot < p.nsprites {
		spr := &p.sprites[slot]
		tile = spr.tile
		row = p.Scanline - int(spr.y)
		vflip = spr.attr&0x80 != 0
	}

	if p.spriteHeight() == 8 {
		if vflip {
			row = 7 - row
		}
		base := uint16(p.PPUCTRL.GetBiti(spriteAddr)) << 12
		return base + uint16(tile)<<4 + uint16(row)
	}

	// 8x16: bit 0 of tile index selects the pattern table.
	base := uint16(tile&1) << 12
	tile &^= 1
	if vflip {
		row = 15 - row
	}
	if row >= 8 {
		tile++
		row -= 8
	}
	return base + uint16(tile)<<4 + uint16(row)
}

// spritePixel returns the sprite pixel (0-3) at x, along with its palette,
// priority and whether it belongs to sprite 0.
func (p *PPU) spritePixel(x int) (pixel, pal uint8, behind, zero bool) {
	if !p.PPUMASK.GetBit(showSprites) || (x < 8 && !p.PPUMASK.GetBit(leftmostSprites)) {
		return 0, 0, false, false
	}

	for i := range p.nsprites {
		spr := &p.sprites[i]
		off := x - int(spr.x)
		if off < 0 || off > 7 {
			continue
		}
		shift := 7 - off
		pixel = (spr.lo>>shift)&1 | ((spr.hi>>shift)&1)<<1
		if pixel == 0 {
			continue
		}
		return pixel, spr.attr & 0b11, spr.attr&0x20 != 0, spr.zero
	}
	return 0, 0, false, false
}

/* output */

func (p *PPU) renderPixel() {
	x := p.Cycle - 1
	y := p.Scanline

	bgpix, bgpal := p.bgPixel(x)
	sppix, sppal, behind, zero := p.spritePixel(x)

	var addr uint16
	switch {
	case bgpix == 0 && sppix == 0:
		addr = 0x3F00
	case bgpix == 0:
		addr = 0x3F10 | uint16(sppal)<<2 | uint16(sppix)
	case sppix == 0:
		addr = 0x3F00 | uint16(bgpal)<<2 | uint16(bgpix)
	default:
		if zero && x != 255 {
			p.PPUSTATUS.SetBit(sprite0Hit)
		}
		if behind {
			addr = 0x3F00 | uint16(bgpal)<<2 | uint16(bgpix)
		} else {
			addr = 0x3F10 | uint16(sppal)<<2 | uint16(sppix)
		}
	}

	// With rendering disabled, when v points to the palette, the backdrop is
	// the color at v.
	if !p.renderingEnabled() && p.vramAddr&0x3F00 == 0x3F00 {
		addr = uint16(p.vramAddr) & 0x3F1F
	}

	color := p.Bus.PPURead8(addr) & 0x3F
	if p.PPUMASK.GetBit(greyscale) {
		color &= 0x30
	}
	p.back.Pix[y*ScreenWidth+x] = color
}

func reverseBits(b uint8) uint8 {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}
