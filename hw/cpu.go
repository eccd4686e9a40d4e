package hw

import (
	"io"

	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// A Ticker is ticked once per CPU cycle, before the bus access of that cycle.
// This is how the rest of the system keeps up with the CPU, in the middle of
// instructions.
type Ticker interface {
	Tick()
}

type CPU struct {
	Bus   hwio.BankIO8
	DMA   *OAMDMA // nil when there's no PPU.
	Clock Ticker  // nil when running the CPU alone.

	// Non-nil when execution tracing is enabled.
	tracer *tracer

	Cycles int64 // CPU cycles

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	// interrupt handling
	nmiPending bool
	irqFlag    hwdefs.IRQSource

	// current instruction
	opcode uint8
	opPC   uint16
	opBase uint16 // operand address before indexing

	halted bool
	err    error
}

// NewCPU creates a new CPU at power-up state, reading and writing through bus.
func NewCPU(bus hwio.BankIO8) *CPU {
	return &CPU{
		Bus: bus,
		SP:  0xFD,
		P:   Reserved | Interrupt,
	}
}

// Reset performs a soft (reset button) or hard (power cycle) reset and loads
// the program counter from the reset vector.
func (c *CPU) Reset(soft bool) {
	if soft {
		c.SP -= 0x03
		c.P.set(Interrupt, true)
	} else {
		c.A = 0x00
		c.X = 0x00
		c.Y = 0x00
		c.SP = 0xFD
		c.P = Reserved | Interrupt
		c.irqFlag = 0
	}

	c.nmiPending = false
	c.halted = false
	c.err = nil
	if c.DMA != nil {
		c.DMA.reset()
	}

	// The reset sequence takes 7 cycles, the last 2 fetch the vector.
	c.Cycles = 0
	for range 5 {
		c.tick()
	}
	c.PC = c.read16(ResetVector)
}

// Step services a pending interrupt or executes one instruction, and returns
// the number of cycles it took. An OAM DMA triggered by the instruction is
// performed before returning, its cycles included.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}

	start := c.Cycles
	switch {
	case c.nmiPending:
		c.nmiPending = false
		c.interrupt(NMIVector)
	case c.irqFlag != 0 && !c.P.has(Interrupt):
		c.interrupt(IRQVector)
	default:
		c.execute()
	}

	if c.DMA != nil && c.DMA.pending {
		c.DMA.process(c)
	}
	return int(c.Cycles - start)
}

// Run executes instructions until at least ncycles have elapsed or the CPU
// halts.
func (c *CPU) Run(ncycles int64) {
	until := c.Cycles + ncycles
	for c.Cycles < until && !c.halted {
		c.Step()
	}
}

func (c *CPU) execute() {
	c.opPC = c.PC
	if c.tracer != nil {
		c.traceOp()
	}

	c.opcode = c.fetch()
	info := &opcodes[c.opcode]
	addr := c.operand(info)
	execs[info.mn](c, info.mode, addr)
}

func (c *CPU) halt() {
	c.halted = true
	c.err = &UnimplementedOpcodeError{Opcode: c.opcode, PC: c.opPC}
	log.ModCPU.WarnZ("CPU halted").
		Hex16("PC", c.opPC).
		Hex8("opcode", c.opcode).
		End()
}

// IsHalted reports whether the CPU stopped on a JAM opcode. Only a reset can
// restart it.
func (c *CPU) IsHalted() bool {
	return c.halted
}

// Err returns the error that halted the CPU, if any.
func (c *CPU) Err() error {
	return c.err
}

func (c *CPU) CurrentCycle() int64 {
	return c.Cycles
}

func (c *CPU) tick() {
	c.Cycles++
	if c.Clock != nil {
		c.Clock.Tick()
	}
}

func (c *CPU) read8(addr uint16) uint8 {
	c.tick()
	return c.Bus.Read8(addr, false)
}

func (c *CPU) write8(addr uint16, val uint8) {
	c.tick()
	c.Bus.Write8(addr, val)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read8(addr)
	hi := c.read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// fetch reads the byte at PC and increments PC.
func (c *CPU) fetch() uint8 {
	v := c.read8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	c.write8(0x0100|uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.read8(0x0100 | uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

// dummy read of the top of the stack, done by instructions pulling from the
// stack while the stack pointer is incremented.
func (c *CPU) peekStack() {
	c.read8(0x0100 | uint16(c.SP))
}

/* interrupt handling */

// SetNMI latches an NMI edge. It's serviced at the next instruction boundary.
func (c *CPU) SetNMI() { c.nmiPending = true }

func (c *CPU) SetIRQ(src hwdefs.IRQSource)      { c.irqFlag |= src }
func (c *CPU) ClearIRQ(src hwdefs.IRQSource)    { c.irqFlag &^= src }
func (c *CPU) HasIRQ(src hwdefs.IRQSource) bool { return c.irqFlag&src != 0 }

// interrupt runs the 7-cycle interrupt sequence for the given vector.
func (c *CPU) interrupt(vector uint16) {
	c.read8(c.PC) // dummy reads
	c.read8(c.PC)

	prevpc := c.PC
	c.push16(c.PC)

	// An NMI occurring during the sequence hijacks the vector.
	if c.nmiPending {
		c.nmiPending = false
		vector = NMIVector
	}
	c.push8(c.P.pushed(false))
	c.P.set(Interrupt, true)
	c.PC = c.read16(vector)

	log.ModCPU.DebugZ("interrupt").
		Hex16("from", prevpc).
		Hex16("to", c.PC).
		Bool("nmi", vector == NMIVector).
		Stringer("irq", c.irqFlag).
		End()
}

/* tracing */

// SetTraceOutput enables the execution trace, one line per instruction in
// the given format, or disables it if w is nil.
func (c *CPU) SetTraceOutput(w io.Writer, format TraceFormat) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c, format: format}
}

// SetTraceClock provides the PPU position shown in the trace.
func (c *CPU) SetTraceClock(ppu *PPU) {
	if c.tracer != nil {
		c.tracer.ppu = ppu
	}
}

func (c *CPU) traceOp() {
	state := cpuState{
		A:     c.A,
		X:     c.X,
		Y:     c.Y,
		P:     c.P,
		SP:    c.SP,
		Clock: c.Cycles,
		PC:    c.PC,
	}
	if ppu := c.tracer.ppu; ppu != nil {
		state.PPUCycle = uint32(ppu.Cycle)
		state.Scanline = ppu.Scanline
	}
	c.tracer.write(state)
}

// AddLogContext implements log.LogContext.
func (c *CPU) AddLogContext(e *log.EntryZ) {
	e.Hex16("pc", c.opPC).Int64("cycle", c.Cycles)
}
