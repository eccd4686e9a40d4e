package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
)

// APU is the register window of the audio processing unit, at $4000-$4013,
// $4015 and $4017 (writes only, reads of $4017 go to the second controller).
type APU interface {
	hwio.BankIO8
}

// APURegs is a silent APU. It latches the register writes and implements the
// status register as if no channel ever played. Its frame counter raises the
// frame IRQ, if not inhibited, when ticked once per CPU cycle.
type APURegs struct {
	Regs [0x18]uint8
	CPU  CPUPins // nil if there's no CPU to interrupt.

	cycles   int64 // since last write to $4017
	mode5    bool  // 5-step sequence, which never raises the frame IRQ
	inhibit  bool
	frameIRQ bool
}

// Number of CPU cycles in the 4-step frame counter sequence.
const frameSeqCycles = 29830

func (a *APURegs) Tick() {
	a.cycles++
	if a.mode5 || a.cycles < frameSeqCycles-1 {
		return
	}
	if a.cycles == frameSeqCycles {
		a.cycles = 0
	}
	if !a.inhibit && !a.frameIRQ {
		a.frameIRQ = true
		if a.CPU != nil {
			a.CPU.SetIRQ(hwdefs.FrameCounter)
		}
		log.ModSound.DebugZ("frame IRQ").End()
	}
}

func (a *APURegs) Read8(addr uint16, peek bool) uint8 {
	if addr != 0x4015 {
		return a.Regs[addr-0x4000]
	}

	// No length counter ever runs, no DMC IRQ is raised.
	var val uint8
	if a.frameIRQ {
		val |= 1 << 6
	}
	if !peek {
		a.clearFrameIRQ()
	}
	return val
}

func (a *APURegs) Write8(addr uint16, val uint8) {
	log.ModSound.DebugZ("APU write").Hex16("addr", addr).Hex8("val", val).End()
	a.Regs[addr-0x4000] = val

	if addr == 0x4017 {
		a.mode5 = val&0x80 != 0
		a.inhibit = val&0x40 != 0
		a.cycles = 0
		if a.inhibit {
			a.clearFrameIRQ()
		}
	}
}

func (a *APURegs) clearFrameIRQ() {
	a.frameIRQ = false
	if a.CPU != nil {
		a.CPU.ClearIRQ(hwdefs.FrameCounter)
	}
}
