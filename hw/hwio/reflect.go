package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

// InitRegs initializes the Reg8, Mem and Device fields of the structure
// pointed by data, according to their "hwio" struct tag. Supported options:
//
//	offset=0x12     offset within the bank (see Table.MapBank)
//	bank=NN         bank number (see Table.MapBank)
//	reset=0x12      Reg8: value after initialization
//	rwmask=0x12     Reg8: writable bits (others are read-only)
//	size=0x800      Mem, Device: size of the area
//	vsize=0x2000    Mem: virtual size of the area (mirroring)
//	readonly        writes are rejected (and logged)
//	writeonly       reads are rejected (and logged)
//	rcb[=Name]      read callback, method ReadFIELDNAME by default
//	wcb[=Name]      write callback, method WriteFIELDNAME by default
//
// Callback signatures are:
//
//	Reg8:   Read(val uint8, peek bool) uint8      Write(old, val uint8)
//	Mem:                                          Write(addr uint16, val uint8)
//	Device: Read(addr uint16, peek bool) uint8    Write(addr uint16, val uint8)
func InitRegs(data any) error {
	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: InitRegs wants a pointer to struct, got %T", data)
	}
	elem := val.Elem()
	typ := elem.Type()

	for i := range typ.NumField() {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("hwio: %s.%s: %w", typ.Name(), field.Name, err)
		}

		ptr := elem.Field(i).Addr().Interface()
		switch reg := ptr.(type) {
		case *Reg8:
			err = initReg8(val, field.Name, reg, opts)
		case *Mem:
			err = initMem(val, field.Name, reg, opts)
		case *Device:
			err = initDevice(val, field.Name, reg, opts)
		default:
			err = fmt.Errorf("unsupported type %T", reg)
		}
		if err != nil {
			return fmt.Errorf("hwio: %s.%s: %w", typ.Name(), field.Name, err)
		}
	}
	return nil
}

type tagOpts map[string]string

func parseTag(tag string) (tagOpts, error) {
	opts := make(tagOpts)
	for _, kv := range strings.Split(tag, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		if _, dup := opts[k]; dup {
			return nil, fmt.Errorf("duplicate option %q", k)
		}
		opts[k] = v
	}
	return opts, nil
}

func (o tagOpts) has(k string) bool {
	_, ok := o[k]
	return ok
}

func (o tagOpts) int(k string, def int) (int, error) {
	s, ok := o[k]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return int(v), nil
}

func (o tagOpts) flags() (RWFlags, error) {
	var f RWFlags
	if o.has("readonly") {
		f |= ReadOnlyFlag
	}
	if o.has("writeonly") {
		f |= WriteOnlyFlag
	}
	if f == ReadOnlyFlag|WriteOnlyFlag {
		return 0, fmt.Errorf("readonly and writeonly are exclusive")
	}
	return f, nil
}

// method returns the callback method for option opt ("rcb" or "wcb"), or
// nil if the option is not set.
func (o tagOpts) method(owner reflect.Value, opt, prefix, field string) (any, error) {
	name, ok := o[opt]
	if !ok {
		return nil, nil
	}
	if name == "" {
		name = prefix + strings.ToUpper(field)
	}
	m := owner.MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("missing method %s", name)
	}
	return m.Interface(), nil
}

func initReg8(owner reflect.Value, name string, reg *Reg8, opts tagOpts) error {
	reset, err := opts.int("reset", 0)
	if err != nil {
		return err
	}
	rwmask, err := opts.int("rwmask", 0xFF)
	if err != nil {
		return err
	}
	flags, err := opts.flags()
	if err != nil {
		return err
	}

	reg.Name = name
	reg.Value = uint8(reset)
	reg.RoMask = ^uint8(rwmask)
	reg.Flags = flags

	rcb, err := opts.method(owner, "rcb", "Read", name)
	if err != nil {
		return err
	}
	if rcb != nil {
		f, ok := rcb.(func(uint8, bool) uint8)
		if !ok {
			return fmt.Errorf("read callback has type %T", rcb)
		}
		reg.ReadCb = f
	}

	wcb, err := opts.method(owner, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb != nil {
		f, ok := wcb.(func(uint8, uint8))
		if !ok {
			return fmt.Errorf("write callback has type %T", wcb)
		}
		reg.WriteCb = f
	}
	return nil
}

func initMem(owner reflect.Value, name string, mem *Mem, opts tagOpts) error {
	size, err := opts.int("size", 0)
	if err != nil {
		return err
	}
	if size == 0 {
		return fmt.Errorf("missing size")
	}
	vsize, err := opts.int("vsize", size)
	if err != nil {
		return err
	}
	if opts.has("rcb") {
		return fmt.Errorf("rcb is not supported on Mem")
	}

	mem.Name = name
	if len(mem.Data) != size {
		mem.Data = make([]byte, size)
	}
	mem.VSize = vsize
	if opts.has("readonly") {
		mem.Flags |= ReadOnlyFlag
	}

	wcb, err := opts.method(owner, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb != nil {
		f, ok := wcb.(func(uint16, uint8))
		if !ok {
			return fmt.Errorf("write callback has type %T", wcb)
		}
		mem.WriteCb = f
	}
	return nil
}

func initDevice(owner reflect.Value, name string, dev *Device, opts tagOpts) error {
	size, err := opts.int("size", 0)
	if err != nil {
		return err
	}
	if size == 0 {
		return fmt.Errorf("missing size")
	}
	flags, err := opts.flags()
	if err != nil {
		return err
	}

	dev.Name = name
	dev.Size = size
	dev.Flags = flags

	rcb, err := opts.method(owner, "rcb", "Read", name)
	if err != nil {
		return err
	}
	if rcb != nil {
		f, ok := rcb.(func(uint16, bool) uint8)
		if !ok {
			return fmt.Errorf("read callback has type %T", rcb)
		}
		dev.ReadCb = f
	}

	wcb, err := opts.method(owner, "wcb", "Write", name)
	if err != nil {
		return err
	}
	if wcb != nil {
		f, ok := wcb.(func(uint16, uint8))
		if !ok {
			return fmt.Errorf("write callback has type %T", wcb)
		}
		dev.WriteCb = f
	}
	return nil
}

type bankReg struct {
	offset uint16
	regPtr any
}

// bankGetRegs returns the registers of bank that are part of bank number
// bankNum, that is the fields having an offset option and a matching bank
// option.
func bankGetRegs(bank any, bankNum int) ([]bankReg, error) {
	val := reflect.ValueOf(bank)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hwio: bank must be a pointer to struct, got %T", bank)
	}
	elem := val.Elem()
	typ := elem.Type()

	var regs []bankReg
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("hwio: %s.%s: %w", typ.Name(), field.Name, err)
		}
		if !opts.has("offset") {
			continue
		}
		num, err := opts.int("bank", 0)
		if err != nil {
			return nil, err
		}
		if num != bankNum {
			continue
		}
		off, err := opts.int("offset", 0)
		if err != nil {
			return nil, err
		}
		regs = append(regs, bankReg{
			offset: uint16(off),
			regPtr: elem.Field(i).Addr().Interface(),
		})
	}
	return regs, nil
}
