package mappers

import "nescore/hw"

var NROM = MapperDesc{
	Name: "NROM",
	Load: loadNROM,
}

// nrom has no bank switching: 16KB ROMs are mirrored at $C000.
type nrom struct {
	*base
}

func loadNROM(b *base) (hw.Mapper, error) {
	b.selectPRGPage32KB(0)
	b.selectCHRPage8KB(0)
	return &nrom{base: b}, nil
}
