package hw

import (
	"fmt"
	"io"

	"github.com/go-faster/jx"
)

// TraceFormat is the format of the execution trace.
type TraceFormat uint8

const (
	// TraceText is a nestest-like log, one instruction per line.
	TraceText TraceFormat = iota
	// TraceJSON writes one JSON object per instruction (JSON lines).
	TraceJSON
)

func (f TraceFormat) String() string {
	switch f {
	case TraceText:
		return "text"
	case TraceJSON:
		return "json"
	}
	return fmt.Sprintf("TraceFormat(%d)", f)
}

// ParseTraceFormat parses "text" or "json".
func ParseTraceFormat(s string) (TraceFormat, error) {
	switch s {
	case "", "text":
		return TraceText, nil
	case "json":
		return TraceJSON, nil
	}
	return 0, fmt.Errorf("unknown trace format %q", s)
}

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock    int64
	PPUCycle uint32
	Scanline int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d      disasmer
	w      io.Writer
	format TraceFormat
	ppu    *PPU // nil if PPU position isn't traced

	buf []byte
	enc jx.Encoder
}

func appendHex(dst []byte, vals ...byte) []byte {
	const digits = "0123456789ABCDEF"
	for _, v := range vals {
		dst = append(dst, digits[v>>4], digits[v&0x0f])
	}
	return dst
}

// pad appends spaces to dst until it is n bytes long.
func pad(dst []byte, n int) []byte {
	for len(dst) < n {
		dst = append(dst, ' ')
	}
	return dst
}

func traceScanline(scanline int) int {
	if scanline == 261 {
		return -1
	}
	return scanline
}

// write the execution trace for current cycle.
func (t *tracer) write(state cpuState) {
	if t.format == TraceJSON {
		t.writeJSON(state)
		return
	}
	t.writeText(state)
}

// writeText writes a nestest-like line:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 S:FD PPU:0  ,21  7
func (t *tracer) writeText(state cpuState) {
	buf := t.d.Disasm(state.PC).appendText(t.buf[:0])
	buf = pad(buf, 49)

	regs := [...]struct {
		name byte
		val  uint8
	}{
		{'A', state.A}, {'X', state.X}, {'Y', state.Y}, {'P', uint8(state.P)}, {'S', state.SP},
	}
	for _, r := range regs {
		buf = append(buf, r.name, ':')
		buf = appendHex(buf, r.val)
		buf = append(buf, ' ')
	}

	buf = fmt.Appendf(buf, "PPU:%-3d,%-3d %d\n", traceScanline(state.Scanline), state.PPUCycle, state.Clock)
	t.w.Write(buf)
	t.buf = buf
}

func (t *tracer) writeJSON(state cpuState) {
	dis := t.d.Disasm(state.PC)

	var raw [6]byte
	hexb := appendHex(raw[:0], dis.Buf...)

	e := &t.enc
	e.Reset()
	e.ObjStart()
	e.FieldStart("pc")
	e.UInt16(state.PC)
	e.FieldStart("bytes")
	e.Str(string(hexb))
	e.FieldStart("op")
	e.Str(dis.Opcode)
	e.FieldStart("oper")
	e.Str(dis.Oper)
	e.FieldStart("a")
	e.UInt8(state.A)
	e.FieldStart("x")
	e.UInt8(state.X)
	e.FieldStart("y")
	e.UInt8(state.Y)
	e.FieldStart("p")
	e.UInt8(uint8(state.P))
	e.FieldStart("sp")
	e.UInt8(state.SP)
	e.FieldStart("scanline")
	e.Int(traceScanline(state.Scanline))
	e.FieldStart("dot")
	e.UInt32(state.PPUCycle)
	e.FieldStart("cycle")
	e.Int64(state.Clock)
	e.ObjEnd()

	buf := append(e.Bytes(), '\n')
	t.w.Write(buf)
}

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

// Bytes returns the disassembly as printed in the text trace: address, raw
// bytes, then the instruction, padded to 48 columns.
func (d DisasmOp) Bytes() []byte {
	return d.appendText(make([]byte, 0, 48))
}

func (d DisasmOp) appendText(dst []byte) []byte {
	start := len(dst)
	dst = appendHex(dst, byte(d.PC>>8), byte(d.PC))
	dst = append(dst, ' ', ' ')
	for _, b := range d.Buf {
		dst = appendHex(dst, b)
		dst = append(dst, ' ')
	}
	dst = pad(dst, start+16)
	dst = append(dst, d.Opcode...)
	dst = append(dst, ' ')
	dst = append(dst, d.Oper...)
	if len(dst)-start > 48 {
		return append(dst, ' ')
	}
	return pad(dst, start+48)
}

var addressLabels = map[uint16]string{
	0x2000: "PpuControl_2000",
	0x2001: "PpuMask_2001",
	0x2002: "PpuStatus_2002",
	0x2003: "OamAddr_2003",
	0x2004: "OamData_2004",
	0x2005: "PpuScroll_2005",
	0x2006: "PpuAddr_2006",
	0x2007: "PpuData_2007",
	0x4000: "Sq0Duty_4000",
	0x4001: "Sq0Sweep_4001",
	0x4002: "Sq0Timer_4002",
	0x4003: "Sq0Length_4003",
	0x4004: "Sq1Duty_4004",
	0x4005: "Sq1Sweep_4005",
	0x4006: "Sq1Timer_4006",
	0x4007: "Sq1Length_4007",
	0x4008: "TrgLinear_4008",
	0x400A: "TrgTimer_400A",
	0x400B: "TrgLength_400B",
	0x400C: "NoiseVolume_400C",
	0x400E: "NoisePeriod_400E",
	0x400F: "NoiseLength_400F",
	0x4010: "DmcFreq_4010",
	0x4011: "DmcCounter_4011",
	0x4012: "DmcAddress_4012",
	0x4013: "DmcLength_4013",
	0x4014: "SpriteDma_4014",
	0x4015: "ApuStatus_4015",
	0x4016: "Ctrl1_4016",
	0x4017: "Ctrl2_FrameCtr_4017",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}
