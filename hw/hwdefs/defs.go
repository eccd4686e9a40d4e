// Package hwdefs holds definitions shared by the hardware packages.
package hwdefs

import "strings"

// NTSC frame geometry. The PPU runs 3 dots per CPU cycle.
const (
	NumScanlines = 262
	NumDots      = 341
	DotsPerCycle = 3
)

// Values of the soft argument of the Reset methods. A soft reset is the
// console reset button, a hard reset is a power cycle.
const (
	HardReset = false
	SoftReset = true
)

// IRQSource is a set of devices pulling the CPU IRQ line low. The line stays
// asserted until every source has acknowledged.
type IRQSource uint8

const (
	External     IRQSource = 1 << iota // cartridge mapper
	FrameCounter                       // APU frame sequencer
	DMC                                // APU delta modulation channel
)

func (irq IRQSource) String() string {
	if irq == 0 {
		return "none"
	}
	var names []string
	for i, name := range [...]string{"ext", "fcnt", "dmc"} {
		if irq&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}
