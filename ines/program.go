package ines

import (
	"fmt"
	"strconv"
	"strings"
)

// FromProgram builds an NROM rom (32KB PRG, 8KB CHR RAM) from a 6502 program
// given as whitespace separated hexadecimal bytes. The program is loaded at
// $8000, where the reset vector points.
func FromProgram(program string) (*Rom, error) {
	const prgsz = 0x8000

	prg := make([]byte, prgsz)
	fields := strings.Fields(program)
	if len(fields) > prgsz-6 {
		return nil, fmt.Errorf("program too large: %d bytes", len(fields))
	}
	for i, f := range fields {
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte %q at offset %d", f, i)
		}
		prg[i] = byte(b)
	}

	// Reset vector at $FFFC.
	prg[prgsz-4] = 0x00
	prg[prgsz-3] = 0x80

	rom := &Rom{PRG: prg}
	copy(rom.raw[:], Magic)
	rom.raw[4] = prgsz / 16384
	rom.prgsz = prgsz
	return rom, nil
}
