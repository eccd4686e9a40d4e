package ines

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nescore/tests"
)

func makeRom(hdr [16]byte, prg, chr int) []byte {
	buf := append([]byte{}, hdr[:]...)
	buf = append(buf, make([]byte, prg)...)
	buf = append(buf, make([]byte, chr)...)
	return buf
}

func mkHeader(b ...byte) [16]byte {
	var hdr [16]byte
	copy(hdr[:], Magic)
	copy(hdr[4:], b)
	return hdr
}

func TestHeaderDecode(t *testing.T) {
	type want struct {
		mapper    uint16
		submapper uint8
		mirroring NTMirroring
		battery   bool
		trainer   bool
		nes2      bool
		prgram    int
		prg, chr  int
	}

	tests := []struct {
		name string
		hdr  [16]byte
		want want
	}{
		{
			name: "nrom horizontal",
			hdr:  mkHeader(2, 1, 0x00, 0x00),
			want: want{mapper: 0, mirroring: HorzMirroring, prgram: 0x2000, prg: 0x8000, chr: 0x2000},
		},
		{
			name: "mmc1 vertical battery",
			hdr:  mkHeader(8, 0, 0x13, 0x00),
			want: want{mapper: 1, mirroring: VertMirroring, battery: true, prgram: 0x2000, prg: 0x20000},
		},
		{
			name: "gxrom high nibble",
			hdr:  mkHeader(2, 2, 0x20, 0x40),
			want: want{mapper: 66, mirroring: HorzMirroring, prgram: 0x2000, prg: 0x8000, chr: 0x4000},
		},
		{
			name: "four screen",
			hdr:  mkHeader(1, 1, 0x49, 0x00),
			want: want{mapper: 4, mirroring: FourScreenMirroring, prgram: 0x2000, prg: 0x4000, chr: 0x2000},
		},
		{
			name: "nes 2.0 submapper",
			hdr:  mkHeader(2, 0, 0x20, 0x08, 0x20, 0x00, 0x07),
			want: want{mapper: 2, submapper: 2, nes2: true, prgram: 0x2000, prg: 0x8000},
		},
		{
			name: "diskdude garbage",
			hdr: func() [16]byte {
				h := mkHeader(1, 1, 0x10, 'D')
				copy(h[7:], "DiskDude!")
				return h
			}(),
			want: want{mapper: 1, mirroring: HorzMirroring, prgram: 0x2000, prg: 0x4000, chr: 0x2000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := new(Rom)
			_, err := rom.ReadFrom(bytes.NewReader(makeRom(tt.hdr, tt.want.prg, tt.want.chr)))
			require.NoError(t, err)

			assert.Equal(t, tt.want.mapper, rom.Mapper(), "mapper")
			assert.Equal(t, tt.want.submapper, rom.SubMapper(), "submapper")
			assert.Equal(t, tt.want.mirroring, rom.Mirroring(), "mirroring")
			assert.Equal(t, tt.want.battery, rom.HasPersistent(), "battery")
			assert.Equal(t, tt.want.trainer, rom.HasTrainer(), "trainer")
			assert.Equal(t, tt.want.nes2, rom.IsNES2(), "nes2")
			assert.Equal(t, tt.want.prgram, rom.PRGRAMSize(), "prg ram")
			assert.Len(t, rom.PRG, tt.want.prg)
			assert.Len(t, rom.CHR, tt.want.chr)
		})
	}
}

func TestTrainer(t *testing.T) {
	hdr := mkHeader(1, 1, 0x04)
	buf := append([]byte{}, hdr[:]...)
	buf = append(buf, bytes.Repeat([]byte{0xAA}, 512)...)
	buf = append(buf, bytes.Repeat([]byte{0xBB}, 0x4000)...)
	buf = append(buf, bytes.Repeat([]byte{0xCC}, 0x2000)...)

	rom := new(Rom)
	_, err := rom.ReadFrom(bytes.NewReader(buf))
	require.NoError(t, err)

	assert.True(t, rom.HasTrainer())
	assert.Len(t, rom.Trainer, 512)
	assert.Equal(t, byte(0xBB), rom.PRG[0])
	assert.Equal(t, byte(0xCC), rom.CHR[0])
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		err  string
	}{
		{"short", []byte("NES"), "too small"},
		{"magic", makeRom([16]byte{'N', 'E', 'Z', 0x1a, 1}, 0x4000, 0), "invalid magic"},
		{"no prg", makeRom(mkHeader(0, 1), 0, 0x2000), "empty PRG"},
		{"truncated prg", makeRom(mkHeader(2, 0), 0x4000, 0), "incomplete PRG"},
		{"truncated chr", makeRom(mkHeader(1, 1), 0x4000, 0x1000), "incomplete CHR"},
		{"truncated trainer", makeRom(mkHeader(1, 0, 0x04), 0, 0), "incomplete TRAINER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := new(Rom).ReadFrom(bytes.NewReader(tt.buf))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestFromProgram(t *testing.T) {
	rom, err := FromProgram("a9 42 8d 00 02 00")
	require.NoError(t, err)

	assert.Equal(t, uint16(0), rom.Mapper())
	assert.Len(t, rom.PRG, 0x8000)
	assert.Empty(t, rom.CHR)
	assert.Equal(t, []byte{0xA9, 0x42, 0x8D, 0x00, 0x02, 0x00}, rom.PRG[:6])
	assert.Equal(t, []byte{0x00, 0x80}, rom.PRG[0x7FFC:0x7FFE], "reset vector")
	assert.Equal(t, 0x2000, rom.CHRRAMSize())

	_, err = FromProgram("a9 zz")
	assert.ErrorContains(t, err, "invalid hex byte")
}

func TestPrintInfos(t *testing.T) {
	rom, err := FromProgram("ea")
	require.NoError(t, err)

	var sb strings.Builder
	rom.PrintInfos(&sb)
	out := sb.String()
	assert.Contains(t, out, "mapper")
	assert.Contains(t, out, "PRG ROM   32 KB")
	assert.Contains(t, out, "CHR RAM   8 KB")
}

func TestRomOpen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test depending on external roms in short mode")
	}

	dir := filepath.Join(tests.RomsPath(t), "instr_test-v5", "rom_singles")
	paths := []string{
		"01-basics.nes",
		"02-implied.nes",
		"10-branches.nes",
		"16-special.nes",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rom, err := Open(filepath.Join(dir, path))
			require.NoError(t, err)
			assert.Equal(t, uint16(1), rom.Mapper())
		})
	}
}
