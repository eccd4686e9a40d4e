package hw

import (
	"fmt"

	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/ines"
)

// Bus connects the CPU to RAM and the memory-mapped devices, and the PPU to
// the cartridge CHR memory, the nametables and the palette.
type Bus struct {
	CPU *hwio.Table // CPU address space
	PPU *hwio.Table // PPU address space

	// $0000-$07FF internal RAM, mirrored up to $1FFF.
	RAM hwio.Mem `hwio:"offset=0x0000,size=0x800,vsize=0x2000"`

	// $4000-$4013, $4015: APU registers.
	APUREGS   hwio.Device `hwio:"offset=0x4000,size=0x14,rcb,wcb"`
	APUSTATUS hwio.Device `hwio:"offset=0x4015,size=0x1,rcb=ReadAPUREGS,wcb=WriteAPUREGS"`

	// $4017: reads from the second controller port, writes to the APU
	// frame counter.
	JOY2 hwio.Reg8 `hwio:"offset=0x4017,rcb,wcb"`

	// $4018-$401F: APU and I/O functionality that is normally disabled.
	TESTMODE hwio.Device `hwio:"offset=0x4018,size=0x8,rcb=ReadOPENBUS"`

	// $4020-$FFFF: cartridge space.
	CARTRIDGE hwio.Device `hwio:"offset=0x4020,size=0xBFE0,rcb,wcb"`

	// PPU space.
	// $0000-$1FFF pattern tables.
	CHR hwio.Device `hwio:"bank=1,offset=0x0000,size=0x2000,rcb,wcb"`
	// $2000-$2FFF nametables, $3000-$3EFF mirror of $2000-$2EFF.
	NAMETABLES hwio.Device `hwio:"bank=1,offset=0x2000,size=0x1F00,rcb,wcb"`
	// $3F00-$3F1F palette RAM, mirrored up to $3FFF.
	PALETTE hwio.Device `hwio:"bank=1,offset=0x3F00,size=0x100,rcb,wcb"`

	DMA   OAMDMA
	Input InputPorts

	ppu  *PPU
	apu  APU
	cart *Cartridge

	openbus uint8
}

// NewBus creates the buses of a NES and maps all devices. apu can be nil, in
// which case a silent APU is used.
func NewBus(ppu *PPU, apu APU, cart *Cartridge) *Bus {
	if apu == nil {
		apu = new(APURegs)
	}
	b := &Bus{
		CPU:  hwio.NewTable("cpu"),
		PPU:  hwio.NewTable("ppu"),
		ppu:  ppu,
		apu:  apu,
		cart: cart,
	}
	ppu.Bus = b
	b.initBus()
	return b
}

func (b *Bus) initBus() {
	hwio.MustInitRegs(b)
	hwio.MustInitRegs(&b.DMA)
	b.Input.initBus(b.OpenBus)
	b.ppu.InitBus()

	b.CPU.MapBank(0x0000, b, 0)
	// PPU registers are mirrored every 8 bytes in $2000-$3FFF.
	for addr := 0x2000; addr < 0x4000; addr += 8 {
		b.CPU.MapBank(uint16(addr), b.ppu, 0)
	}
	b.CPU.MapBank(0x4014, &b.DMA, 0)
	b.CPU.MapBank(0x4000, &b.Input, 0)

	b.PPU.MapBank(0x0000, b, 1)

	for addr := range 0x10000 {
		if !b.CPU.Mapped(uint16(addr)) {
			panic(fmt.Sprintf("cpu bus: $%04X is not mapped", addr))
		}
	}
}

// Reset resets the state of the devices owned by the bus. A hard reset also
// clears RAM.
func (b *Bus) Reset(soft bool) {
	if !soft {
		clear(b.RAM.Data)
		b.openbus = 0
	}
	b.DMA.reset()
	b.Input.reset()
}

func (b *Bus) Read8(addr uint16, peek bool) uint8 {
	val := b.CPU.Read8(addr, peek)
	if !peek {
		b.openbus = val
	}
	return val
}

func (b *Bus) Write8(addr uint16, val uint8) {
	b.openbus = val
	b.CPU.Write8(addr, val)
}

// Peek8 reads addr without side effects.
func (b *Bus) Peek8(addr uint16) uint8 {
	return b.CPU.Read8(addr, true)
}

// OpenBus returns the last value driven on the CPU data bus.
func (b *Bus) OpenBus() uint8 {
	return b.openbus
}

func (b *Bus) PPURead8(addr uint16) uint8 {
	return b.PPU.Read8(addr&0x3FFF, false)
}

func (b *Bus) PPUWrite8(addr uint16, val uint8) {
	b.PPU.Write8(addr&0x3FFF, val)
}

/* CPU space */

func (b *Bus) ReadOPENBUS(_ uint16, _ bool) uint8 {
	return b.openbus
}

func (b *Bus) ReadAPUREGS(addr uint16, peek bool) uint8 {
	if addr != 0x4015 {
		// Write-only registers.
		return b.openbus
	}
	// Bit 5 isn't driven.
	return b.apu.Read8(addr, peek)&^0x20 | b.openbus&0x20
}

func (b *Bus) WriteAPUREGS(addr uint16, val uint8) {
	b.apu.Write8(addr, val)
}

func (b *Bus) ReadJOY2(_ uint8, peek bool) uint8 {
	return b.Input.ReadPort2(peek)
}

func (b *Bus) WriteJOY2(_, val uint8) {
	b.apu.Write8(0x4017, val)
}

func (b *Bus) ReadCARTRIDGE(addr uint16, _ bool) uint8 {
	if addr < 0x6000 {
		// Expansion area, unused by supported boards.
		return b.openbus
	}
	if val, ok := b.cart.ReadPRG(addr); ok {
		return val
	}
	return b.openbus
}

func (b *Bus) WriteCARTRIDGE(addr uint16, val uint8) {
	if addr < 0x6000 {
		log.ModMapper.DebugZ("write to expansion area").
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return
	}
	b.cart.WritePRG(addr, val)
}

/* PPU space */

func (b *Bus) ReadCHR(addr uint16, _ bool) uint8 {
	return b.cart.ReadCHR(addr)
}

func (b *Bus) WriteCHR(addr uint16, val uint8) {
	b.cart.WriteCHR(addr, val)
}

// ntcell returns the memory cell backing the nametable address addr, according
// to the current mirroring.
func (b *Bus) ntcell(addr uint16) *uint8 {
	addr &= 0x0FFF
	nt := addr >> 10
	off := addr & 0x3FF

	var bank uint16
	switch b.cart.Mirroring() {
	case ines.HorzMirroring:
		bank = nt >> 1
	case ines.VertMirroring:
		bank = nt & 1
	case ines.OnlyAScreen:
		bank = 0
	case ines.OnlyBScreen:
		bank = 1
	case ines.FourScreenMirroring:
		if nt >= 2 {
			return &b.cart.VRAM[(nt-2)<<10|off]
		}
		bank = nt
	}
	return &b.ppu.Nametables[bank<<10|off]
}

func (b *Bus) ReadNAMETABLES(addr uint16, _ bool) uint8 {
	return *b.ntcell(addr)
}

func (b *Bus) WriteNAMETABLES(addr uint16, val uint8) {
	*b.ntcell(addr) = val
}

// paletteIndex returns the index in palette RAM of addr. Entries $10, $14, $18
// and $1C are mirrors of $00, $04, $08 and $0C.
func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx&0x13 == 0x10 {
		idx &^= 0x10
	}
	return idx
}

func (b *Bus) ReadPALETTE(addr uint16, _ bool) uint8 {
	return b.ppu.Palette[paletteIndex(addr)]
}

func (b *Bus) WritePALETTE(addr uint16, val uint8) {
	b.ppu.Palette[paletteIndex(addr)] = val & 0x3F
}
