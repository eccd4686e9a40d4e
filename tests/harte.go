package tests

import (
	"fmt"
	"os"

	"github.com/go-faster/jx"
)

// CPUState is the CPU and memory state at the beginning or the end of a
// single step test.
type CPUState struct {
	PC            uint16
	S, A, X, Y, P uint8
	RAM           []RAMCell
}

type RAMCell struct {
	Addr uint16
	Val  uint8
}

// BusCycle is one expected bus cycle.
type BusCycle struct {
	Addr uint16
	Val  uint8
	Kind string // "read" or "write"
}

func (c BusCycle) String() string {
	return fmt.Sprintf("%-5s 0x%04x = 0x%02x", c.Kind, c.Addr, c.Val)
}

// HarteTest is a single step test, as found in the per-opcode JSON files of
// the SingleStepTests/65x02 repository.
type HarteTest struct {
	Name    string
	Initial CPUState
	Final   CPUState
	Cycles  []BusCycle
}

// LoadHarteTests decodes all tests of a per-opcode JSON file.
func LoadHarteTests(path string) ([]HarteTest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tests []HarteTest
	d := jx.DecodeBytes(buf)
	err = d.Arr(func(d *jx.Decoder) error {
		var tt HarteTest
		if err := tt.decode(d); err != nil {
			return err
		}
		tests = append(tests, tt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tests, nil
}

func (tt *HarteTest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			tt.Name, err = d.Str()
		case "initial":
			err = tt.Initial.decode(d)
		case "final":
			err = tt.Final.decode(d)
		case "cycles":
			err = d.Arr(func(d *jx.Decoder) error {
				var c BusCycle
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					var err error
					switch i {
					case 0:
						c.Addr, err = d.UInt16()
					case 1:
						c.Val, err = d.UInt8()
					case 2:
						c.Kind, err = d.Str()
					default:
						err = d.Skip()
					}
					i++
					return err
				})
				tt.Cycles = append(tt.Cycles, c)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

func (s *CPUState) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "s":
			s.S, err = d.UInt8()
		case "a":
			s.A, err = d.UInt8()
		case "x":
			s.X, err = d.UInt8()
		case "y":
			s.Y, err = d.UInt8()
		case "p":
			s.P, err = d.UInt8()
		case "ram":
			err = d.Arr(func(d *jx.Decoder) error {
				var cell RAMCell
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					var err error
					switch i {
					case 0:
						cell.Addr, err = d.UInt16()
					case 1:
						cell.Val, err = d.UInt8()
					default:
						err = d.Skip()
					}
					i++
					return err
				})
				s.RAM = append(s.RAM, cell)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}
