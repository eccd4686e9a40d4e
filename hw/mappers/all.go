package mappers

import (
	"fmt"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

var modMapper = log.ModMapper

// Load creates the cartridge for rom, with the board logic of its mapper.
func Load(rom *ines.Rom) (*hw.Cartridge, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("%w: %d", hw.ErrUnsupportedMapper, rom.Mapper())
	}

	cart := hw.NewCartridge(rom)
	base, err := newbase(desc, rom, cart)
	if err != nil {
		return nil, fmt.Errorf("mapper initialization failed: %w", err)
	}
	m, err := desc.Load(base)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapper %s: %w", desc.Name, err)
	}
	cart.Mapper = m

	modMapper.InfoZ("cartridge loaded").
		String("mapper", desc.Name).
		Int("prg", len(rom.PRG)).
		Int("chr", len(rom.CHR)).
		Stringer("mirroring", rom.Mirroring()).
		End()
	return cart, nil
}

type MapperDesc struct {
	Name string
	Load func(*base) (hw.Mapper, error)
}

var All = map[uint16]MapperDesc{
	0:  NROM,
	1:  MMC1,
	2:  UxROM,
	3:  CNROM,
	4:  MMC3,
	7:  AxROM,
	66: GxROM,
}
