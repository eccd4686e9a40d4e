package log

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field without allocations. A nil
// *EntryZ is valid and silently discards everything, this is what a Module
// returns when the requested level is disabled, so that:
//
//	log.ModCPU.DebugZ("opcode").Hex8("op", op).End()
//
// costs almost nothing when debug logging is off for the CPU module.
type EntryZ struct {
	mod    Module
	lvl    Level
	msg    string
	fields [maxZFields]zfield
	nfield int
}

var entryzPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func newEntryZ(mod Module, lvl Level, msg string) *EntryZ {
	e := entryzPool.Get().(*EntryZ)
	e.mod, e.lvl, e.msg = mod, lvl, msg
	e.nfield = 0
	return e
}

// add appends a field, or returns nil if the entry is full. Extra fields are
// dropped.
func (z *EntryZ) add(key string, kind fieldKind) *zfield {
	if z == nil || z.nfield == maxZFields {
		return nil
	}
	f := &z.fields[z.nfield]
	*f = zfield{key: key, kind: kind}
	z.nfield++
	return f
}

func (z *EntryZ) String(key, val string) *EntryZ {
	if f := z.add(key, kindString); f != nil {
		f.str = val
	}
	return z
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	if f := z.add(key, kindBool); f != nil && val {
		f.num = 1
	}
	return z
}

func (z *EntryZ) hex(key string, width int, val uint64) *EntryZ {
	if f := z.add(key, kindHex); f != nil {
		f.width = width
		f.num = val
	}
	return z
}

func (z *EntryZ) Hex8(key string, val uint8) *EntryZ   { return z.hex(key, 2, uint64(val)) }
func (z *EntryZ) Hex16(key string, val uint16) *EntryZ { return z.hex(key, 4, uint64(val)) }

func (z *EntryZ) Uint64(key string, val uint64) *EntryZ {
	if f := z.add(key, kindUint); f != nil {
		f.num = val
	}
	return z
}

func (z *EntryZ) Int64(key string, val int64) *EntryZ {
	if f := z.add(key, kindInt); f != nil {
		f.num = uint64(val)
	}
	return z
}

func (z *EntryZ) Int(key string, val int) *EntryZ { return z.Int64(key, int64(val)) }

func (z *EntryZ) Duration(key string, val time.Duration) *EntryZ {
	if f := z.add(key, kindDuration); f != nil {
		f.dur = val
	}
	return z
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	if f := z.add(key, kindError); f != nil && err != nil {
		f.obj = err
	}
	return z
}

func (z *EntryZ) Stringer(key string, val fmt.Stringer) *EntryZ {
	if f := z.add(key, kindStringer); f != nil {
		f.obj = val
	}
	return z
}

// End emits the entry and gives it back to the pool. Fatal entries exit the
// program, panic entries panic.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.nfield+2*len(contexts)+1)
	fields["_mod"] = z.mod.String()

	// Context fields first so that explicit fields win on conflict.
	if len(contexts) != 0 {
		var ctx EntryZ
		for _, c := range contexts {
			c.AddLogContext(&ctx)
		}
		for i := range ctx.fields[:ctx.nfield] {
			fields[ctx.fields[i].key] = ctx.fields[i].value()
		}
	}
	for i := range z.fields[:z.nfield] {
		fields[z.fields[i].key] = z.fields[i].value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	lvl, msg := z.lvl, z.msg
	entryzPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case PanicLevel:
		entry.Panic(msg)
	}
}
