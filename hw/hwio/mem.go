package hwio

import "fmt"

// Mem is a linear memory area. When VSize is bigger than Data, the data is
// mirrored over the whole virtual range, so len(Data) must be a power of 2.
type Mem struct {
	Name  string
	Data  []byte
	VSize int

	// Only ReadOnlyFlag applies to memory.
	Flags RWFlags

	// WriteCb, if set, replaces the write to Data.
	WriteCb func(addr uint16, val uint8)
}

// BankIO8 returns the view of m that is mapped into a Table.
func (m *Mem) BankIO8() BankIO8 {
	n := len(m.Data)
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("hwio: mem %q: size %d is not a power of 2", m.Name, n))
	}
	return &mirror{Mem: m, mask: uint16(n - 1)}
}

type mirror struct {
	*Mem
	mask uint16
}

func (m *mirror) Read8(addr uint16, _ bool) uint8 {
	return m.Data[addr&m.mask]
}

func (m *mirror) Write8(addr uint16, val uint8) {
	switch {
	case m.WriteCb != nil:
		m.WriteCb(addr, val)
	case m.Flags.writable(m.Name, addr):
		m.Data[addr&m.mask] = val
	}
}
