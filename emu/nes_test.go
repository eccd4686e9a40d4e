package emu

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"

	"github.com/google/go-cmp/cmp"
)

func init() {
	log.Disable()
}

// powerUpProgram powers up a NES running the given program at $8000. nmi, if
// not zero, is the NMI vector.
func powerUpProgram(t testing.TB, program string, nmi uint16) *NES {
	t.Helper()

	rom, err := ines.FromProgram(program)
	if err != nil {
		t.Fatal(err)
	}
	if nmi != 0 {
		rom.PRG[0x7FFA] = uint8(nmi)
		rom.PRG[0x7FFB] = uint8(nmi >> 8)
	}
	nes, err := PowerUp(rom)
	if err != nil {
		t.Fatal(err)
	}
	return nes
}

// romImage decodes a 32KB PRG, CHR RAM, iNES image with the given flags 6
// byte.
func romImage(t testing.TB, flags6 byte) *ines.Rom {
	t.Helper()

	buf := make([]byte, 16+0x8000)
	copy(buf, ines.Magic)
	buf[4] = 2
	buf[6] = flags6
	buf[16+0x7FFD] = 0x80

	rom := new(ines.Rom)
	if _, err := rom.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatal(err)
	}
	return rom
}

func TestPowerUpState(t *testing.T) {
	nes := powerUpProgram(t, "EA", 0)

	if nes.CPU.PC != 0x8000 {
		t.Errorf("PC = %04X, want 8000", nes.CPU.PC)
	}
	if nes.CPU.SP != 0xFD {
		t.Errorf("SP = %02X, want FD", nes.CPU.SP)
	}
	if nes.CPU.Cycles != 7 {
		t.Errorf("reset took %d cycles, want 7", nes.CPU.Cycles)
	}
	// The PPU ran 3 dots per reset cycle.
	if nes.PPU.Scanline != 0 || nes.PPU.Cycle != 21 {
		t.Errorf("PPU at %d/%d, want 0/21", nes.PPU.Scanline, nes.PPU.Cycle)
	}
}

func TestLDAImmediate(t *testing.T) {
	nes := powerUpProgram(t, "A9 42", 0)

	n, err := nes.Step()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("LDA #$42 took %d cycles, want 2", n)
	}
	if nes.CPU.A != 0x42 {
		t.Errorf("A = %02X, want 42", nes.CPU.A)
	}
	if nes.CPU.P&(hw.Zero|hw.Negative) != 0 {
		t.Errorf("P = %s, want Z and N clear", nes.CPU.P)
	}
}

func TestBranchTiming(t *testing.T) {
	tests := []struct {
		name    string
		program string
		skip    int // instructions to execute before the branch
		want    int
	}{
		{
			name:    "not taken",
			program: "A9 01 F0 10", // LDA #1; BEQ +16
			skip:    1,
			want:    2,
		},
		{
			name:    "taken same page",
			program: "A9 00 F0 10", // LDA #0; BEQ +16
			skip:    1,
			want:    3,
		},
		{
			name: "taken page cross",
			// JMP $80F0, then at $80F0: LDA #0; BEQ +16 lands at $8104.
			program: "4C F0 80",
			skip:    2,
			want:    4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom, err := ines.FromProgram(tt.program)
			if err != nil {
				t.Fatal(err)
			}
			copy(rom.PRG[0xF0:], []byte{0xA9, 0x00, 0xF0, 0x10})
			nes, err := PowerUp(rom)
			if err != nil {
				t.Fatal(err)
			}
			for range tt.skip {
				if _, err := nes.Step(); err != nil {
					t.Fatal(err)
				}
			}
			n, err := nes.Step()
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.want {
				t.Errorf("branch took %d cycles, want %d", n, tt.want)
			}
		})
	}
}

func TestRAMMirroring(t *testing.T) {
	nes := powerUpProgram(t, "EA", 0)

	nes.Bus.Write8(0x0001, 0x5A)
	for _, addr := range []uint16{0x0801, 0x1001, 0x1801} {
		if got := nes.Bus.Read8(addr, false); got != 0x5A {
			t.Errorf("read %04X = %02X, want 5A", addr, got)
		}
	}

	nes.Bus.Write8(0x1FFF, 0xA5)
	if got := nes.Bus.Read8(0x07FF, false); got != 0xA5 {
		t.Errorf("read 07FF = %02X, want A5", got)
	}
}

func TestPaletteAliasing(t *testing.T) {
	nes := powerUpProgram(t, "EA", 0)

	// $3F10/$3F14/$3F18/$3F1C alias $3F00/$3F04/$3F08/$3F0C.
	for i := uint16(0); i < 4; i++ {
		nes.Bus.PPUWrite8(0x3F10+i*4, 0x20+uint8(i))
	}
	for i := uint16(0); i < 4; i++ {
		if got := nes.Bus.PPURead8(0x3F00 + i*4); got != 0x20+uint8(i) {
			t.Errorf("read %04X = %02X, want %02X", 0x3F00+i*4, got, 0x20+i)
		}
	}

	// Palette is mirrored every 32 bytes up to $3FFF.
	nes.Bus.PPUWrite8(0x3F01, 0x16)
	if got := nes.Bus.PPURead8(0x3FE1); got != 0x16 {
		t.Errorf("read 3FE1 = %02X, want 16", got)
	}
}

func TestNametableMirroring(t *testing.T) {
	tests := []struct {
		mirroring ines.NTMirroring
		want      string
	}{
		{ines.HorzMirroring, "AABBAABB"},
		{ines.VertMirroring, "ABABABAB"},
	}
	for _, tt := range tests {
		t.Run(tt.mirroring.String(), func(t *testing.T) {
			var flags6 byte
			if tt.mirroring == ines.VertMirroring {
				flags6 = 0x01
			}
			nes, err := PowerUp(romImage(t, flags6))
			if err != nil {
				t.Fatal(err)
			}

			nes.Bus.PPUWrite8(0x2000, 'A')
			nes.Bus.PPUWrite8(0x2C00, 'B')
			if tt.mirroring == ines.VertMirroring {
				nes.Bus.PPUWrite8(0x2400, 'B')
			}

			var nts []byte
			for _, a := range []uint16{0x2000, 0x2400, 0x2800, 0x2C00, 0x3000, 0x3400, 0x3800, 0x3C00} {
				nts = append(nts, nes.Bus.PPURead8(a))
			}
			if diff := cmp.Diff(tt.want, string(nts)); diff != "" {
				t.Errorf("nametables mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNMI(t *testing.T) {
	// $8000: LDA #$80; STA $2000; loop: JMP loop
	// $8010: NMI handler, INC $10; RTI
	const program = "A9 80 8D 00 20 4C 05 80 EA EA EA EA EA EA EA EA E6 10 40"
	nes := powerUpProgram(t, program, 0x8010)

	for nes.CPU.PC != 0x8010 {
		if _, err := nes.Step(); err != nil {
			t.Fatal(err)
		}
		if nes.PPU.Frames() > 0 {
			t.Fatal("NMI not received during the first frame")
		}
	}

	// The NMI is detected at the boundary of the instruction being executed
	// at 241/1, then the interrupt sequence takes 7 cycles.
	if nes.PPU.Scanline != 241 {
		t.Fatalf("NMI handler entered at scanline %d, want 241", nes.PPU.Scanline)
	}
	if nes.PPU.Cycle < 1+(7-1)*3 || nes.PPU.Cycle > 1+(3+7+1)*3 {
		t.Errorf("NMI handler entered at dot %d", nes.PPU.Cycle)
	}

	// Return address pushed on the stack is the JMP loop.
	ret := uint16(nes.Bus.Peek8(0x0100|uint16(nes.CPU.SP+2))) | uint16(nes.Bus.Peek8(0x0100|uint16(nes.CPU.SP+3)))<<8
	if ret != 0x8005 {
		t.Errorf("return address = %04X, want 8005", ret)
	}

	// One NMI per frame.
	for range 3 {
		if _, err := nes.RunFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if got := nes.Bus.Peek8(0x10); got != 4 && got != 3 {
		t.Errorf("NMI handler ran %d times, want 3 or 4", got)
	}
}

func TestOAMDMA(t *testing.T) {
	// LDA #$02; STA $4014
	nes := powerUpProgram(t, "A9 02 8D 14 40", 0)
	for i := range uint16(256) {
		nes.Bus.Write8(0x0200+i, uint8(i^0xFF))
	}

	if _, err := nes.Step(); err != nil {
		t.Fatal(err)
	}
	// The alignment cycle depends on the parity of the cycle following the
	// write, which is the last of STA's 4 cycles.
	after := nes.CPU.Cycles + 4
	n, err := nes.Step()
	if err != nil {
		t.Fatal(err)
	}

	want := 4 + 513 + int(after&1)
	if n != want {
		t.Errorf("STA $4014 took %d cycles, want %d", n, want)
	}

	var want256 [256]uint8
	for i := range want256 {
		want256[i] = uint8(i ^ 0xFF)
	}
	// Attribute bytes bits 2-4 don't exist, but they're stored in OAM.
	if diff := cmp.Diff(want256, nes.PPU.OAM); diff != "" {
		t.Errorf("OAM mismatch (-want +got):\n%s", diff)
	}
}

func TestOAMDMAParity(t *testing.T) {
	// LDA zp takes 3 cycles, it changes the parity of the cycle at which the
	// transfer starts.
	programs := []struct {
		prog  string
		steps int
	}{
		{"A9 02 8D 14 40", 2},
		{"A5 00 A9 02 8D 14 40", 3},
	}
	cycles := map[int]bool{}
	for _, p := range programs {
		nes := powerUpProgram(t, p.prog, 0)
		var n int
		for range p.steps {
			var err error
			if n, err = nes.Step(); err != nil {
				t.Fatal(err)
			}
		}
		cycles[n-4] = true
	}
	if diff := cmp.Diff(map[int]bool{513: true, 514: true}, cycles); diff != "" {
		t.Errorf("DMA cycles mismatch (-want +got):\n%s", diff)
	}
}

func TestUnimplementedOpcode(t *testing.T) {
	// JAM
	nes := powerUpProgram(t, "EA 02", 0)

	if _, err := nes.Step(); err != nil {
		t.Fatal(err)
	}
	_, err := nes.Step()

	var uerr *hw.UnimplementedOpcodeError
	if !errors.As(err, &uerr) {
		t.Fatalf("got error %v, want UnimplementedOpcodeError", err)
	}
	if uerr.Opcode != 0x02 || uerr.PC != 0x8001 {
		t.Errorf("got opcode %02X at %04X, want 02 at 8001", uerr.Opcode, uerr.PC)
	}
	if _, err := nes.RunFrame(); err == nil {
		t.Errorf("RunFrame on a halted CPU should fail")
	}

	// A reset restarts the CPU.
	nes.Reset(true)
	if _, err := nes.Step(); err != nil {
		t.Errorf("Step after reset: %v", err)
	}
}

func TestUnsupportedMapper(t *testing.T) {
	// MMC5
	_, err := PowerUp(romImage(t, 0x50))
	if !errors.Is(err, hw.ErrUnsupportedMapper) {
		t.Fatalf("got error %v, want ErrUnsupportedMapper", err)
	}
}

// Fills palette, CHR RAM and the first nametable rows, enables rendering
// then moves sprite 0 and triggers an OAM DMA every frame.
const drawingProgram = `
	A9 00 8D 00 20 8D 01 20
	A9 3F 8D 06 20 A9 00 8D 06 20
	A2 00 8E 07 20 E8 E0 20 D0 F8
	A9 00 8D 06 20 8D 06 20
	A2 00 8E 07 20 E8 D0 FA
	A9 20 8D 06 20 A9 00 8D 06 20
	A2 00 8E 07 20 E8 D0 FA
	A9 1E 8D 01 20
	AD 02 20 10 FB
	EE 00 02 A9 02 8D 14 40
	4C 43 80`

func TestDeterminism(t *testing.T) {
	rom, err := ines.FromProgram(drawingProgram)
	if err != nil {
		t.Fatal(err)
	}

	if err := CheckDeterminism(context.Background(), rom, 3, 10, nil); err != nil {
		t.Fatal(err)
	}

	// Compare whole frames too.
	a, err := PowerUp(rom)
	if err != nil {
		t.Fatal(err)
	}
	b, err := PowerUp(rom)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		fa, err := a.RunFrame()
		if err != nil {
			t.Fatal(err)
		}
		fb, err := b.RunFrame()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(fa.Pix[:], fb.Pix[:]) {
			t.Fatalf("frame %d differs", i)
		}
	}
}

func TestCheckDeterminismErrors(t *testing.T) {
	rom, err := ines.FromProgram("02")
	if err != nil {
		t.Fatal(err)
	}

	if err := CheckDeterminism(context.Background(), rom, 1, 1, nil); err == nil {
		t.Errorf("1 instance should be refused")
	}

	err = CheckDeterminism(context.Background(), rom, 2, 1, nil)
	var uerr *hw.UnimplementedOpcodeError
	if !errors.As(err, &uerr) {
		t.Errorf("got error %v, want UnimplementedOpcodeError", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rom, _ = ines.FromProgram("4C 00 80")
	if err := CheckDeterminism(ctx, rom, 2, 1, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want context.Canceled", err)
	}
}

func TestRunFrame(t *testing.T) {
	nes := powerUpProgram(t, "4C 00 80", 0)

	for i := range uint64(3) {
		if _, err := nes.RunFrame(); err != nil {
			t.Fatal(err)
		}
		if nes.Frames() != i+1 {
			t.Fatalf("Frames() = %d, want %d", nes.Frames(), i+1)
		}
	}
}
