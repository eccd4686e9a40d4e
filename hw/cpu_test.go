package hw

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nescore/emu/log"
	"nescore/hw/hwdefs"
)

func init() {
	log.Disable()
}

// testBus is a flat 64KB memory which optionally records all accesses.
type testBus struct {
	mem [0x10000]uint8

	record   bool
	accesses []busAccess
}

type busAccess struct {
	Addr  uint16
	Val   uint8
	Write bool
}

func (a busAccess) String() string {
	kind := "read"
	if a.Write {
		kind = "write"
	}
	return fmt.Sprintf("%-5s 0x%04x = 0x%02x", kind, a.Addr, a.Val)
}

func (b *testBus) Read8(addr uint16, peek bool) uint8 {
	val := b.mem[addr]
	if b.record && !peek {
		b.accesses = append(b.accesses, busAccess{Addr: addr, Val: val})
	}
	return val
}

func (b *testBus) Write8(addr uint16, val uint8) {
	if b.record {
		b.accesses = append(b.accesses, busAccess{Addr: addr, Val: val, Write: true})
	}
	b.mem[addr] = val
}

// loadCPUWith creates a CPU connected to a flat memory loaded with the given
// hex dump. Each line is 'ADDR: BYTES...', '#' starts a comment. The CPU is
// reset, the PC is loaded from $FFFC and the cycle counter is zero.
func loadCPUWith(tb testing.TB, dump string) *CPU {
	tb.Helper()

	bus := &testBus{}
	loadDump(tb, bus.mem[:], dump)

	cpu := NewCPU(bus)
	cpu.Reset(hwdefs.HardReset)
	cpu.Cycles = 0
	return cpu
}

func loadDump(tb testing.TB, mem []uint8, dump string) {
	tb.Helper()

	sc := bufio.NewScanner(strings.NewReader(dump))
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		saddr, sbytes, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed dump line %q", line)
		}
		addr, err := strconv.ParseUint(saddr, 16, 16)
		if err != nil {
			tb.Fatalf("malformed address in dump line %q: %v", line, err)
		}
		for i, s := range strings.Fields(sbytes) {
			b, err := strconv.ParseUint(s, 16, 8)
			if err != nil {
				tb.Fatalf("malformed byte in dump line %q: %v", line, err)
			}
			mem[int(addr)+i] = uint8(b)
		}
	}
}

// runAndCheckState runs the CPU for ncycles then checks its state against
// the list of name/value pairs. Names are the register names, 'Pn', 'Pv',
// 'Pz', 'Pc', 'Pi' for individual flags, and 'mem' for a hex dump of
// the expected memory content.
func runAndCheckState(tb testing.TB, cpu *CPU, ncycles int64, states ...any) {
	tb.Helper()

	cpu.Run(ncycles)
	if err := cpu.Err(); err != nil {
		tb.Fatal(err)
	}

	if len(states)%2 != 0 {
		tb.Fatal("states should be a list of name/value pairs")
	}

	flags := map[string]uint8{
		"Pn": Negative,
		"Pv": Overflow,
		"Pz": Zero,
		"Pc": Carry,
		"Pi": Interrupt,
	}

	for i := 0; i < len(states); i += 2 {
		name := states[i].(string)
		switch name {
		case "mem":
			var want testBus
			loadDump(tb, want.mem[:], states[i+1].(string))
			got := cpu.Bus.(*testBus)
			for addr, val := range want.mem {
				if val != 0 && got.mem[addr] != val {
					tb.Errorf("mem[0x%04x] = 0x%02x, want 0x%02x", addr, got.mem[addr], val)
				}
			}
			continue
		case "Pn", "Pv", "Pz", "Pc", "Pi":
			want := states[i+1].(int) != 0
			if got := cpu.P.has(flags[name]); got != want {
				tb.Errorf("%s = %t, want %t (P = %s)", name, got, want, cpu.P)
			}
			continue
		}

		var got int
		switch name {
		case "PC":
			got = int(cpu.PC)
		case "SP":
			got = int(cpu.SP)
		case "A":
			got = int(cpu.A)
		case "X":
			got = int(cpu.X)
		case "Y":
			got = int(cpu.Y)
		case "P":
			got = int(cpu.P)
		default:
			tb.Fatalf("unknown state %q", name)
		}
		if want := states[i+1].(int); got != want {
			tb.Errorf("%s = 0x%02x, want 0x%02x", name, got, want)
		}
	}
}

func wantMem8(tb testing.TB, cpu *CPU, addr uint16, want uint8) {
	tb.Helper()
	if got := cpu.Bus.Read8(addr, true); got != want {
		tb.Errorf("mem[0x%04x] = 0x%02x, want 0x%02x", addr, got, want)
	}
}

func TestPString(t *testing.T) {
	p := P(0b00110100)
	if got := p.String(); got != "nvUBdIzc" {
		t.Errorf("got P = %s, want %s", got, "nvUBdIzc")
	}
	p = P(0b00000100)
	if p.String() != "nvubdIzc" {
		t.Errorf("got P = %s, want %s", p.String(), "nvubdIzc")
	}
}

func TestPPushed(t *testing.T) {
	p := P(Carry | Interrupt)
	if got := p.pushed(true); got != 0x35 {
		t.Errorf("pushed(brk) = 0x%02x, want 0x35", got)
	}
	if got := p.pushed(false); got != 0x25 {
		t.Errorf("pushed(irq) = 0x%02x, want 0x25", got)
	}
}

func TestReset(t *testing.T) {
	cpu := loadCPUWith(t, `FFFC: 34 12`)
	if cpu.PC != 0x1234 {
		t.Errorf("PC = 0x%04x, want 0x1234", cpu.PC)
	}
	if cpu.SP != 0xFD || cpu.P != Reserved|Interrupt {
		t.Errorf("SP = 0x%02x P = %s after hard reset", cpu.SP, cpu.P)
	}

	cpu.P = 0
	cpu.A = 0x12
	cpu.Reset(hwdefs.SoftReset)
	if cpu.SP != 0xFA {
		t.Errorf("SP = 0x%02x, want 0xFA after soft reset", cpu.SP)
	}
	if !cpu.P.has(Interrupt) {
		t.Errorf("I flag should be set after soft reset")
	}
	if cpu.A != 0x12 {
		t.Errorf("A = 0x%02x, soft reset shouldn't change it", cpu.A)
	}
	if cpu.Cycles != 7 {
		t.Errorf("reset took %d cycles, want 7", cpu.Cycles)
	}
}

func TestCPx(t *testing.T) {
	tests := []struct {
		name string
		dump string
		p    int
	}{
		// LDX #$40; CPX #$41
		{"40 - 41", `0600: a2 40 e0 41`, 0b10110000},
		// LDX #$40; CPX #$40
		{"40 - 40", `0600: a2 40 e0 40`, 0b00110011},
		// LDX #$40; CPX #$39
		{"40 - 39", `0600: a2 40 e0 39`, 0b00110001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := loadCPUWith(t, tt.dump)
			cpu.PC = 0x0600
			cpu.P = 0b00110000
			runAndCheckState(t, cpu, 4,
				"A", 0x00,
				"X", 0x40,
				"Y", 0x00,
				"P", tt.p,
			)
		})
	}
}

func TestLDA_STA(t *testing.T) {
	dump := `0600: a9 01 8d 00 02 a9 05 8d 01 02 a9 08 8d 02 02`
	cpu := loadCPUWith(t, dump)
	cpu.PC = 0x0600
	runAndCheckState(t, cpu, 6*3,
		"A", 0x08,
		"PC", 0x060F,
		"SP", 0xfd,
		"mem", `0200: 01 05 08`,
	)
}

func TestADC_SBC(t *testing.T) {
	tests := []struct {
		name       string
		dump       string
		a          int
		n, v, z, c int
	}{
		// CLC; LDA #$50; ADC #$50
		{"signed overflow", `0600: 18 a9 50 69 50`, 0xA0, 1, 1, 0, 0},
		// CLC; LDA #$FF; ADC #$01
		{"carry out", `0600: 18 a9 ff 69 01`, 0x00, 0, 0, 1, 1},
		// SEC; LDA #$50; SBC #$F0
		{"borrow", `0600: 38 a9 50 e9 f0`, 0x60, 0, 0, 0, 0},
		// SEC; LDA #$D0; SBC #$70
		{"sbc overflow", `0600: 38 a9 d0 e9 70`, 0x60, 0, 1, 0, 1},
		// SED; CLC; LDA #$09; ADC #$01: decimal mode is ignored
		{"no decimal", `0600: f8 18 a9 09 69 01`, 0x0A, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := loadCPUWith(t, tt.dump)
			cpu.PC = 0x0600
			cycles := int64(2 + 2 + 2)
			if tt.name == "no decimal" {
				cycles += 2
			}
			runAndCheckState(t, cpu, cycles,
				"A", tt.a,
				"Pn", tt.n,
				"Pv", tt.v,
				"Pz", tt.z,
				"Pc", tt.c,
			)
		})
	}
}

func TestEOR(t *testing.T) {
	dump := `
0000: 06
0100: 45 00`
	cpu := loadCPUWith(t, dump)
	cpu.PC = 0x0100
	cpu.A = 0x80
	runAndCheckState(t, cpu, 3,
		"A", 0x86,
		"Pn", 1,
		"Pz", 0,
	)
}

func TestROR(t *testing.T) {
	dump := `
0000: 55
0100: 66 00
# reset vector
FFFC: 00 01`
	cpu := loadCPUWith(t, dump)
	cpu.A = 0x80
	cpu.P.set(Carry, true)
	runAndCheckState(t, cpu, 5,
		"Pn", 1,
		"Pc", 1,
		"Pz", 0,
	)
	wantMem8(t, cpu, 0x0000, 0xAA)
}

func TestJMPIndirectPageWrap(t *testing.T) {
	// JMP ($02FF) reads the high byte from $0200, not $0300.
	dump := `
0200: 12
02FF: 34
0300: 56
0600: 6c ff 02`
	cpu := loadCPUWith(t, dump)
	cpu.PC = 0x0600
	runAndCheckState(t, cpu, 5, "PC", 0x1234)
}

func TestStack(t *testing.T) {
	dump := `
# instructions
0600: a2 00 a0 00 8a 99 00 02 48 e8 c8 c0 10 d0 f5 68
0610: 99 00 02 c8 c0 20 d0 f7
# reset vector
FFFC: 00 06
`
	cpu := loadCPUWith(t, dump)
	cpu.P = 0x30
	cpu.SP = 0xFF
	runAndCheckState(t, cpu, 562,
		"PC", 0x0618,
		"A", 0x00,
		"X", 0x10,
		"Y", 0x20,
		"SP", 0xFF,
		"mem", `
01f0: 0f 0e 0d 0c 0b 0a 09 08 07 06 05 04 03 02 01
0200: 00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f
0210: 0f 0e 0d 0c 0b 0a 09 08 07 06 05 04 03 02 01`,
	)
}

func TestStackSmall(t *testing.T) {
	dump := `0600: a9 aa 48 a9 11 68`
	cpu := loadCPUWith(t, dump)
	cpu.PC = 0x0600
	cpu.P = 0x30
	cpu.SP = 0xFF
	runAndCheckState(t, cpu, 8,
		"PC", 0x0606,
		"A", 0xAA,
		"SP", 0xFF,
		"Pn", 1,
	)
}

func TestInterrupts(t *testing.T) {
	const dump = `
0600: 58 ea ea ea
# vectors
FFFA: 00 90
FFFC: 00 06
FFFE: 00 a0`

	t.Run("irq", func(t *testing.T) {
		cpu := loadCPUWith(t, dump)
		cpu.SetIRQ(hwdefs.External)

		// The I flag is set at reset, the IRQ waits for CLI.
		if n := cpu.Step(); n != 2 || cpu.PC != 0x0601 {
			t.Fatalf("CLI: %d cycles, PC = 0x%04x", n, cpu.PC)
		}
		if n := cpu.Step(); n != 7 {
			t.Errorf("IRQ took %d cycles, want 7", n)
		}
		if cpu.PC != 0xA000 {
			t.Errorf("PC = 0x%04x, want 0xA000", cpu.PC)
		}
		if !cpu.P.has(Interrupt) {
			t.Errorf("I flag should be set")
		}
		// Pushed P has B clear.
		if p := cpu.Bus.Read8(0x0100|uint16(cpu.SP+1), true); p&Break != 0 {
			t.Errorf("pushed P = 0x%02x, B should be clear", p)
		}
		if !cpu.HasIRQ(hwdefs.External) {
			t.Errorf("IRQ line is level triggered, it should still be asserted")
		}
	})

	t.Run("nmi", func(t *testing.T) {
		cpu := loadCPUWith(t, dump)
		cpu.SetNMI()
		if n := cpu.Step(); n != 7 {
			t.Errorf("NMI took %d cycles, want 7", n)
		}
		if cpu.PC != 0x9000 {
			t.Errorf("PC = 0x%04x, want 0x9000", cpu.PC)
		}
		// NMI is edge triggered.
		cpu.Step()
		if cpu.PC == 0x9000 {
			t.Errorf("NMI serviced twice")
		}
	})

	t.Run("brk", func(t *testing.T) {
		cpu := loadCPUWith(t, "0600: 00 ff\nFFFC: 00 06\nFFFE: 00 a0")
		if n := cpu.Step(); n != 7 {
			t.Errorf("BRK took %d cycles, want 7", n)
		}
		if cpu.PC != 0xA000 {
			t.Errorf("PC = 0x%04x, want 0xA000", cpu.PC)
		}
		ret := uint16(cpu.Bus.Read8(0x0100|uint16(cpu.SP+2), true)) |
			uint16(cpu.Bus.Read8(0x0100|uint16(cpu.SP+3), true))<<8
		if ret != 0x0602 {
			t.Errorf("BRK return address = 0x%04x, want 0x0602", ret)
		}
		if p := cpu.Bus.Read8(0x0100|uint16(cpu.SP+1), true); p&Break == 0 {
			t.Errorf("pushed P = 0x%02x, B should be set", p)
		}
	})
}

func TestJAM(t *testing.T) {
	cpu := loadCPUWith(t, "0600: ea 02")
	cpu.PC = 0x0600

	cpu.Run(100)
	if !cpu.IsHalted() {
		t.Fatal("CPU should be halted")
	}
	want := &UnimplementedOpcodeError{Opcode: 0x02, PC: 0x0601}
	if diff := cmp.Diff(want, cpu.Err()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
	if n := cpu.Step(); n != 0 {
		t.Errorf("halted CPU executed %d cycles", n)
	}
}

type countTicker int

func (c *countTicker) Tick() { *c++ }

func TestClockTicksPerAccess(t *testing.T) {
	// INC $0300 (6 cycles), 6 bus accesses.
	cpu := loadCPUWith(t, "0600: ee 00 03")
	cpu.PC = 0x0600

	var ticks countTicker
	cpu.Clock = &ticks
	bus := cpu.Bus.(*testBus)
	bus.record = true

	n := cpu.Step()
	if n != 6 || int(ticks) != 6 || len(bus.accesses) != 6 {
		t.Errorf("cycles = %d, ticks = %d, accesses = %d, want 6", n, ticks, len(bus.accesses))
	}

	// RMW writes the unmodified value back first.
	want := []busAccess{
		{Addr: 0x0600, Val: 0xee},
		{Addr: 0x0601, Val: 0x00},
		{Addr: 0x0602, Val: 0x03},
		{Addr: 0x0300, Val: 0x00},
		{Addr: 0x0300, Val: 0x00, Write: true},
		{Addr: 0x0300, Val: 0x01, Write: true},
	}
	if diff := cmp.Diff(want, bus.accesses); diff != "" {
		t.Errorf("bus accesses mismatch (-want +got):\n%s", diff)
	}
}
