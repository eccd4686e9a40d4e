package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"nescore/hw/hwdefs"
	"nescore/ines"
)

func TestBusRAMMirrors(t *testing.T) {
	bus, _ := newTestBus(t)

	bus.Write8(0x1801, 0x42)
	for _, addr := range []uint16{0x0001, 0x0801, 0x1001, 0x1801} {
		if got := bus.Read8(addr, false); got != 0x42 {
			t.Errorf("Read8(%04X) = %02X, want 42", addr, got)
		}
	}
}

func TestBusOpenBus(t *testing.T) {
	bus, m := newTestBus(t)
	m.prg[0] = 0x8D

	tests := []struct {
		name string
		addr uint16
	}{
		{"test mode registers", 0x4018},
		{"test mode registers end", 0x401F},
		{"expansion area", 0x5000},
		{"unmapped cartridge space", 0x6000},
		{"write-only APU register", 0x4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus.Write8(0x0010, 0x5A)
			if got := bus.Read8(0x0010, false); got != 0x5A {
				t.Fatalf("RAM read = %02X, want 5A", got)
			}
			if got := bus.Read8(tt.addr, false); got != 0x5A {
				t.Errorf("Read8(%04X) = %02X, want last bus value 5A", tt.addr, got)
			}
		})
	}

	if got := bus.Read8(0x8000, false); got != 0x8D {
		t.Errorf("Read8(8000) = %02X, want 8D", got)
	}
	if got := bus.OpenBus(); got != 0x8D {
		t.Errorf("OpenBus() = %02X, want 8D", got)
	}
}

func TestBusAPUStatusBit5(t *testing.T) {
	bus, _ := newTestBus(t)

	bus.Write8(0x0000, 0x20)
	bus.Read8(0x0000, false)
	if got := bus.Read8(0x4015, false); got != 0x20 {
		t.Errorf("APU status = %02X, want open bus bit 5 only", got)
	}

	bus.Write8(0x0000, 0xDF)
	bus.Read8(0x0000, false)
	if got := bus.Read8(0x4015, false); got != 0x00 {
		t.Errorf("APU status = %02X, want 00", got)
	}
}

func TestBusHardReset(t *testing.T) {
	bus, _ := newTestBus(t)

	bus.Write8(0x0123, 0x99)
	bus.Reset(hwdefs.SoftReset)
	if got := bus.Peek8(0x0123); got != 0x99 {
		t.Errorf("RAM after soft reset = %02X, want 99", got)
	}
	bus.Reset(hwdefs.HardReset)
	if got := bus.Peek8(0x0123); got != 0x00 {
		t.Errorf("RAM after hard reset = %02X, want 00", got)
	}
}

func TestBusNametableMirroring(t *testing.T) {
	tests := []struct {
		name string
		mir  ines.NTMirroring
		want [4]uint16 // physical offset of each nametable
	}{
		{"horizontal", ines.HorzMirroring, [4]uint16{0x000, 0x000, 0x400, 0x400}},
		{"vertical", ines.VertMirroring, [4]uint16{0x000, 0x400, 0x000, 0x400}},
		{"single A", ines.OnlyAScreen, [4]uint16{0x000, 0x000, 0x000, 0x000}},
		{"single B", ines.OnlyBScreen, [4]uint16{0x400, 0x400, 0x400, 0x400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, m := newTestBus(t)
			m.mir = tt.mir

			for nt := range uint16(4) {
				bus.ppu.Nametables = [0x800]uint8{}
				bus.PPUWrite8(0x2000+nt*0x400+5, uint8(nt+1))
				if got := bus.ppu.Nametables[tt.want[nt]+5]; got != uint8(nt+1) {
					t.Errorf("nametable %d: CIRAM[%03X] = %d, want %d", nt, tt.want[nt]+5, got, nt+1)
				}
				// $3000-$3EFF mirrors $2000-$2EFF.
				if got := bus.PPURead8(0x3000 + nt*0x400 + 5); got != uint8(nt+1) {
					t.Errorf("nametable %d: mirror read = %d, want %d", nt, got, nt+1)
				}
			}
		})
	}
}

func TestBusPalette(t *testing.T) {
	bus, _ := newTestBus(t)

	// $3F10/$3F14/$3F18/$3F1C alias $3F00/$3F04/$3F08/$3F0C.
	for i := uint16(0); i < 0x10; i += 4 {
		bus.PPUWrite8(0x3F10+i, uint8(0x20+i))
		if got := bus.PPURead8(0x3F00 + i); got != uint8(0x20+i) {
			t.Errorf("palette[%02X] = %02X, want %02X", i, got, 0x20+i)
		}
	}

	bus.PPUWrite8(0x3F05, 0x15)
	if got := bus.PPURead8(0x3FE5); got != 0x15 {
		t.Errorf("palette mirror read = %02X, want 15", got)
	}
}

type testPads [2]uint8

func (p *testPads) LoadState() (uint8, uint8) { return p[0], p[1] }

// readPort reads a controller port the way LDA $4016 does: the last value on
// the bus before the read is the high byte of the operand.
func readPort(bus *Bus, addr uint16) uint8 {
	bus.Write8(0x0010, uint8(addr>>8))
	bus.Read8(0x0010, false)
	return bus.Read8(addr, false)
}

func TestInputPorts(t *testing.T) {
	bus, _ := newTestBus(t)
	pads := &testPads{ButtonA | ButtonStart | ButtonRight, ButtonB}
	bus.Input.Plug(pads)

	readBits := func(addr uint16, n int) []uint8 {
		bits := make([]uint8, n)
		for i := range bits {
			bits[i] = readPort(bus, addr)
		}
		return bits
	}

	// Latch the state on the strobe falling edge.
	bus.Write8(0x4016, 1)
	bus.Write8(0x4016, 0)

	// Buttons change after the latch aren't seen.
	pads[0] = 0

	got := readBits(0x4016, 10)
	want := []uint8{0x41, 0x40, 0x40, 0x41, 0x40, 0x40, 0x40, 0x41, 0x41, 0x41}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("$4016 reads mismatch (-want +got):\n%s", diff)
	}

	got = readBits(0x4017, 3)
	want = []uint8{0x40, 0x41, 0x40}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("$4017 reads mismatch (-want +got):\n%s", diff)
	}
}

func TestInputPortsOpenBus(t *testing.T) {
	bus, _ := newTestBus(t)
	bus.Input.Plug(&testPads{ButtonA, 0})
	bus.Write8(0x4016, 1)
	bus.Write8(0x4016, 0)

	// Bits 5-7 come from the open bus, bits 1-4 are never driven.
	bus.Write8(0x0010, 0xFE)
	bus.Read8(0x0010, false)
	if got := bus.Read8(0x4016, false); got != 0xE1 {
		t.Errorf("read = %02X, want E1", got)
	}
	if got := bus.Read8(0x4016, false); got != 0xE0 {
		t.Errorf("read = %02X, want E0", got)
	}

	// Peeking doesn't shift.
	for range 2 {
		if got := bus.Peek8(0x4016) & 1; got != 0 {
			t.Errorf("peek bit 0 = %d, want 0", got)
		}
	}
	if got := readPort(bus, 0x4016); got != 0x40 {
		t.Errorf("read after peek = %02X, want 40", got)
	}
}

func TestInputPortsStrobeHigh(t *testing.T) {
	bus, _ := newTestBus(t)
	pads := &testPads{ButtonA, 0}
	bus.Input.Plug(pads)

	// While strobe is high, reads keep returning button A.
	bus.Write8(0x4016, 1)
	for i := range 3 {
		if got := readPort(bus, 0x4016); got != 0x41 {
			t.Errorf("read #%d = %02X, want 41", i, got)
		}
	}

	// No device reads as no button pressed.
	bus.Input.Plug(nil)
	bus.Write8(0x4016, 0)
	if got := readPort(bus, 0x4016); got != 0x40 {
		t.Errorf("unplugged read = %02X, want 40", got)
	}
}

func TestJOY2WritesGoToAPU(t *testing.T) {
	apu := &APURegs{}
	cart := NewCartridge(&ines.Rom{})
	cart.Mapper = &testMapper{}
	bus := NewBus(NewPPU(), apu, cart)

	bus.Write8(0x4017, 0xC0)
	if !apu.mode5 || !apu.inhibit {
		t.Errorf("APU frame counter not written: mode5=%t inhibit=%t", apu.mode5, apu.inhibit)
	}
	if apu.Regs[0x17] != 0xC0 {
		t.Errorf("Regs[$17] = %02X, want C0", apu.Regs[0x17])
	}
}
