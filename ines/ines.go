// package ines implements a Reader for roms in the iNES file format, used for
// for the distribution of NES binary programs.
package ines

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

type Rom struct {
	header
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRG     []byte // PRG is PRG ROM data (length is multiples of 16k)
	CHR     []byte // CHR is CHR ROM data (length is multiples of 8k), empty for CHR RAM.
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	// header
	var off int
	if err := rom.decode(buf); err != nil {
		return 0, fmt.Errorf("failed to decode header: %w", err)
	}
	off += 16

	// trainer
	if rom.HasTrainer() {
		if len(buf) < off+512 {
			return 0, fmt.Errorf("incomplete TRAINER section")
		}
		rom.Trainer = buf[off : off+512]
		off += 512
	}

	// PRG rom data
	if rom.prgsz == 0 {
		return 0, fmt.Errorf("empty PRG section")
	}
	if len(buf) < off+rom.prgsz {
		return 0, fmt.Errorf("incomplete PRG section")
	}
	rom.PRG = buf[off : off+rom.prgsz]
	off += rom.prgsz

	// CHR rom data
	if len(buf) < off+rom.chrsz {
		return 0, fmt.Errorf("incomplete CHR section")
	}
	rom.CHR = buf[off : off+rom.chrsz]
	off += rom.chrsz

	return int64(len(buf)), nil
}

const Magic = "NES\x1a"

func (hdr *header) decode(p []byte) error {
	if len(p) < 16 {
		return fmt.Errorf("too small, needs 16 bytes")
	}
	if string(p[:4]) != Magic {
		return fmt.Errorf("invalid magic number")
	}
	copy(hdr.raw[:], p[:16])

	hdr.prgsz = int(hdr.raw[4]) * 16384
	hdr.chrsz = int(hdr.raw[5]) * 8192
	if hdr.IsNES2() {
		hdr.prgsz += int(hdr.raw[9]&0x0F) << 8 * 16384
		hdr.chrsz += int(hdr.raw[9]>>4) << 8 * 8192
	}
	return nil
}

type header struct {
	raw   [16]byte
	prgsz int
	chrsz int
}

// Has Trainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed PRG RAM.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// IsNES2 reports whether the header is in the NES 2.0 format.
func (hdr *header) IsNES2() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// Mapper returns the mapper number.
func (hdr *header) Mapper() uint16 {
	num := uint16(hdr.raw[7]&0xF0 | hdr.raw[6]>>4)
	if hdr.IsNES2() {
		num |= uint16(hdr.raw[8]&0x0F) << 8
	} else if string(hdr.raw[12:16]) != "\x00\x00\x00\x00" {
		// Garbage in bytes 12-15 (e.g "DiskDude!"): byte 7 is unreliable.
		num &= 0x0F
	}
	return num
}

// SubMapper returns the submapper number, always 0 for iNES 1.0 headers.
func (hdr *header) SubMapper() uint8 {
	if !hdr.IsNES2() {
		return 0
	}
	return hdr.raw[8] >> 4
}

// PRGRAMSize returns the size of PRG RAM, 8KB if not specified.
func (hdr *header) PRGRAMSize() int {
	if hdr.IsNES2() {
		shift := hdr.raw[10] & 0x0F
		if hdr.HasPersistent() {
			shift = hdr.raw[10] >> 4
		}
		if shift != 0 {
			return 64 << shift
		}
		return 0x2000
	}
	if hdr.raw[8] == 0 {
		return 0x2000
	}
	return int(hdr.raw[8]) * 0x2000
}

// CHRRAMSize returns the size of CHR RAM, 8KB if the rom has no CHR ROM.
func (hdr *header) CHRRAMSize() int {
	if hdr.IsNES2() {
		if shift := hdr.raw[11] & 0x0F; shift != 0 {
			return 64 << shift
		}
	}
	if hdr.chrsz == 0 {
		return 0x2000
	}
	return 0
}

// NTMirroring is the nametable mirroring mode.
type NTMirroring uint8

const (
	HorzMirroring NTMirroring = iota
	VertMirroring
	FourScreenMirroring
	OnlyAScreen
	OnlyBScreen
)

func (m NTMirroring) String() string {
	switch m {
	case HorzMirroring:
		return "horizontal"
	case VertMirroring:
		return "vertical"
	case FourScreenMirroring:
		return "4-screen"
	case OnlyAScreen:
		return "single screen A"
	case OnlyBScreen:
		return "single screen B"
	}
	return fmt.Sprintf("NTMirroring(%d)", m)
}

// Mirroring returns the nametable mirroring mode hardwired on the board.
func (hdr *header) Mirroring() NTMirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return FourScreenMirroring
	case hdr.raw[6]&0x01 != 0:
		return VertMirroring
	}
	return HorzMirroring
}

// PrintInfos writes a human readable description of the rom header.
func (rom *Rom) PrintInfos(w io.Writer) {
	format := "iNES"
	if rom.IsNES2() {
		format = "NES 2.0"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "format\t%s\n", format)
	fmt.Fprintf(tw, "mapper\t%d (submapper %d)\n", rom.Mapper(), rom.SubMapper())
	fmt.Fprintf(tw, "PRG ROM\t%d KB\n", len(rom.PRG)/1024)
	if len(rom.CHR) == 0 {
		fmt.Fprintf(tw, "CHR RAM\t%d KB\n", rom.CHRRAMSize()/1024)
	} else {
		fmt.Fprintf(tw, "CHR ROM\t%d KB\n", len(rom.CHR)/1024)
	}
	fmt.Fprintf(tw, "PRG RAM\t%d KB\n", rom.PRGRAMSize()/1024)
	fmt.Fprintf(tw, "mirroring\t%s\n", rom.Mirroring())
	fmt.Fprintf(tw, "battery\t%t\n", rom.HasPersistent())
	fmt.Fprintf(tw, "trainer\t%t\n", rom.HasTrainer())
	tw.Flush()
}
