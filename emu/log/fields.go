package log

import (
	"fmt"
	"time"
)

type fieldKind uint8

const (
	kindString fieldKind = iota
	kindBool
	kindHex
	kindInt
	kindUint
	kindDuration
	kindError
	kindStringer
)

// zfield is a typed key/value pair of an EntryZ. Values are only converted
// when the entry is emitted.
type zfield struct {
	key   string
	kind  fieldKind
	width int // number of digits of hex values

	num uint64
	str string
	dur time.Duration
	obj any // error, fmt.Stringer or []byte
}

// value returns the value stored in the logrus fields. Numbers stay numbers,
// hex values are formatted as fixed-width uppercase strings.
func (f *zfield) value() any {
	switch f.kind {
	case kindString:
		return f.str
	case kindBool:
		return f.num != 0
	case kindHex:
		return fmt.Sprintf("%0*X", f.width, f.num)
	case kindInt:
		return int64(f.num)
	case kindUint:
		return f.num
	case kindDuration:
		return f.dur
	case kindError:
		if f.obj == nil {
			return "<nil>"
		}
		return f.obj.(error).Error()
	case kindStringer:
		return f.obj.(fmt.Stringer).String()
	}
	return nil
}
