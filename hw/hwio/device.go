package hwio

import "nescore/emu/log"

// RWFlags restrict the accesses allowed on a register or a device.
type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

// readable reports whether name can be read. Invalid non-peek reads are
// logged, they return 0 on the real hardware.
func (f RWFlags) readable(name string, addr uint16, peek bool) bool {
	if f&WriteOnlyFlag == 0 {
		return true
	}
	if !peek {
		log.ModHwIo.ErrorZ("read from write-only location").
			String("name", name).
			Hex16("addr", addr).
			End()
	}
	return false
}

func (f RWFlags) writable(name string, addr uint16) bool {
	if f&ReadOnlyFlag == 0 {
		return true
	}
	log.ModHwIo.ErrorZ("write to read-only location").
		String("name", name).
		Hex16("addr", addr).
		End()
	return false
}

// Device maps a whole address range to a pair of callbacks. Missing
// callbacks read as 0 and ignore writes.
type Device struct {
	Name  string
	Size  int
	Flags RWFlags

	ReadCb  func(addr uint16, peek bool) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	if d.ReadCb == nil || !d.Flags.readable(d.Name, addr, peek) {
		return 0
	}
	return d.ReadCb(addr, peek)
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.WriteCb != nil && d.Flags.writable(d.Name, addr) {
		d.WriteCb(addr, val)
	}
}
