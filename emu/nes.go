package emu

import (
	"fmt"
	"io"

	"nescore/hw"
	"nescore/hw/hwdefs"
	"nescore/hw/mappers"
	"nescore/ines"
)

// NES is a complete console: CPU, PPU, buses and cartridge, clocked by the
// CPU at the granularity of a single bus access.
type NES struct {
	CPU  *hw.CPU
	PPU  *hw.PPU
	Bus  *hw.Bus
	APU  hw.APU
	Cart *hw.Cartridge
	Rom  *ines.Rom

	apuTicker hw.Ticker // nil if the APU doesn't need clocking
}

type options struct {
	apu         hw.APU
	input       hw.InputDevice
	trace       io.Writer
	traceFormat hw.TraceFormat
}

// An Option configures a NES at power up.
type Option func(*options)

// WithAPU replaces the default APU registers with apu. If apu implements
// hw.Ticker, it's ticked once per CPU cycle.
func WithAPU(apu hw.APU) Option {
	return func(o *options) { o.apu = apu }
}

// WithInput plugs dev in the controller ports.
func WithInput(dev hw.InputDevice) Option {
	return func(o *options) { o.input = dev }
}

// WithTrace enables the CPU execution trace.
func WithTrace(w io.Writer, format hw.TraceFormat) Option {
	return func(o *options) {
		o.trace = w
		o.traceFormat = format
	}
}

// PowerUp builds a NES around rom and performs a hard reset.
func PowerUp(rom *ines.Rom, opts ...Option) (*NES, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cart, err := mappers.Load(rom)
	if err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	apu := o.apu
	if apu == nil {
		apu = &hw.APURegs{}
	}

	ppu := hw.NewPPU()
	bus := hw.NewBus(ppu, apu, cart)
	cpu := hw.NewCPU(bus)
	cpu.DMA = &bus.DMA

	nes := &NES{
		CPU:  cpu,
		PPU:  ppu,
		Bus:  bus,
		APU:  apu,
		Cart: cart,
		Rom:  rom,
	}
	cpu.Clock = nes
	cart.Connect(cpu)

	if regs, ok := apu.(*hw.APURegs); ok {
		regs.CPU = cpu
	}
	if t, ok := apu.(hw.Ticker); ok {
		nes.apuTicker = t
	}
	if o.input != nil {
		bus.Input.Plug(o.input)
	}
	if o.trace != nil {
		cpu.SetTraceOutput(o.trace, o.traceFormat)
		cpu.SetTraceClock(ppu)
	}

	nes.Reset(hwdefs.HardReset)
	return nes, nil
}

// Tick implements hw.Ticker. It's called by the CPU once per cycle and runs
// the PPU for 3 dots, forwarding the NMI edges it produces.
func (nes *NES) Tick() {
	for range hwdefs.DotsPerCycle {
		nes.PPU.Tick()
		if nes.PPU.TakeNMI() {
			nes.CPU.SetNMI()
		}
	}
	if nes.apuTicker != nil {
		nes.apuTicker.Tick()
	}
}

// Reset performs a soft (reset button) or hard (power cycle) reset.
func (nes *NES) Reset(soft bool) {
	nes.Bus.Reset(soft)
	nes.Cart.Reset(soft)
	nes.PPU.Reset(soft)
	nes.CPU.Reset(soft)
}

// Step executes one instruction, or services one interrupt, and returns the
// number of CPU cycles it took.
func (nes *NES) Step() (int, error) {
	n := nes.CPU.Step()
	if err := nes.CPU.Err(); err != nil {
		return n, err
	}
	return n, nil
}

// RunFrame runs the NES until the PPU completes a frame, and returns it.
func (nes *NES) RunFrame() (*hw.Frame, error) {
	start := nes.PPU.Frames()
	for nes.PPU.Frames() == start {
		if _, err := nes.Step(); err != nil {
			return nil, err
		}
	}
	return nes.PPU.Frame(), nil
}

// Frame returns the last completed frame.
func (nes *NES) Frame() *hw.Frame { return nes.PPU.Frame() }

// Frames returns the number of frames completed since power up.
func (nes *NES) Frames() uint64 { return nes.PPU.Frames() }
