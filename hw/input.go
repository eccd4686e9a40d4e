package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// Standard controller buttons. Bit 0 is the first bit shifted out.
const (
	ButtonA uint8 = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// An InputDevice provides the button states of both controller ports.
type InputDevice interface {
	// LoadState returns the buttons held on port 1 and port 2.
	LoadState() (uint8, uint8)
}

// shiftReg is the 8-bit parallel-in serial-out register of a standard
// controller. Once emptied it shifts out ones.
type shiftReg uint8

func (r *shiftReg) shift() uint8 {
	bit := uint8(*r) & 1
	*r = *r>>1 | 0x80
	return bit
}

// InputPorts are the two controller ports. Writing bit 0 of $4016 drives the
// strobe line, the button states are latched when it goes low, and kept
// reloaded for as long as it stays high. Bits 5-7 of a read are not driven
// and come from the CPU open bus.
//
// $4017 reads are routed to ReadPort2 by the bus, writes there belong to the
// APU.
type InputPorts struct {
	In hwio.Reg8 `hwio:"offset=0x16,rcb,wcb"`

	dev     InputDevice
	openbus func() uint8

	strobe bool
	ports  [2]shiftReg
}

func (ip *InputPorts) initBus(openbus func() uint8) {
	hwio.MustInitRegs(ip)
	ip.openbus = openbus
}

func (ip *InputPorts) reset() {
	ip.strobe = false
	ip.ports = [2]shiftReg{}
}

// Plug connects dev to the controller ports, nil unplugs everything.
func (ip *InputPorts) Plug(dev InputDevice) {
	ip.dev = dev
}

func (ip *InputPorts) latch() {
	var p1, p2 uint8
	if ip.dev != nil {
		p1, p2 = ip.dev.LoadState()
	}
	ip.ports = [2]shiftReg{shiftReg(p1), shiftReg(p2)}

	log.ModInput.DebugZ("latch").
		Hex8("port1", p1).
		Hex8("port2", p2).
		End()
}

func (ip *InputPorts) read(port int, peek bool) uint8 {
	hi := ip.openbus() & 0xE0
	if peek {
		return hi | uint8(ip.ports[port])&1
	}
	if ip.strobe {
		ip.latch()
	}
	return hi | ip.ports[port].shift()
}

func (ip *InputPorts) WriteIN(_, val uint8) {
	strobe := val&1 != 0
	if ip.strobe && !strobe {
		ip.latch()
	}
	ip.strobe = strobe
}

func (ip *InputPorts) ReadIN(_ uint8, peek bool) uint8 {
	return ip.read(0, peek)
}

func (ip *InputPorts) ReadPort2(peek bool) uint8 {
	return ip.read(1, peek)
}
