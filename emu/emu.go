package emu

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

// Emulator runs a NES frame after frame, until stopped.
type Emulator struct {
	NES *NES
	out *hw.Output
	cfg EmulationConfig

	screenshot string

	// Set concurrently with the emulation loop.
	paused  atomic.Bool
	stopped atomic.Bool
	pending atomic.Uint32 // request
}

// A request is performed by the emulation loop between two frames.
type request uint32

const (
	noRequest request = iota
	softResetRequest
	hardResetRequest
)

// Launch powers up the NES and setups the video output. It doesn't start
// the emulation loop, call Run() for that. Converted frames are sent to
// frames if it's not nil.
func Launch(rom *ines.Rom, cfg Config, frames chan *image.RGBA, opts ...Option) (*Emulator, error) {
	if cfg.TraceOut != nil {
		format, err := cfg.Trace.TraceFormat()
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTrace(cfg.TraceOut, format))
	}

	nes, err := PowerUp(rom, opts...)
	if err != nil {
		return nil, err
	}

	out := hw.NewOutput(hw.OutputConfig{
		NumVideoBuffers: 3,
		FrameOutCh:      frames,
	})

	e := &Emulator{
		NES: nes,
		out: out,
		cfg: cfg.Emulation,
	}
	e.SetPause(cfg.Emulation.StartPaused)
	return e, nil
}

// Run runs the emulation loop until ctx is done, Stop is called, the
// configured number of frames is reached, or the CPU halts.
func (e *Emulator) Run(ctx context.Context) error {
	log.AddContext(e.NES.CPU)
	defer log.RemoveContext(e.NES.CPU)

	start := time.Now()
	err := e.loop(ctx)
	e.out.Close()

	log.ModEmu.InfoZ("emulation loop exited").
		Uint64("frames", e.NES.Frames()).
		Duration("elapsed", time.Since(start)).
		End()

	if err != nil {
		return fmt.Errorf("emulation stopped: %w", err)
	}
	if e.screenshot == "" {
		return nil
	}
	if err := hw.SaveAsPNG(e.NES.Frame(), e.screenshot); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	log.ModEmu.InfoZ("screenshot saved").String("path", e.screenshot).End()
	return nil
}

func (e *Emulator) loop(ctx context.Context) error {
	idle := time.NewTicker(10 * time.Millisecond)
	defer idle.Stop()

	for !e.done() {
		if e.paused.Load() {
			select {
			case <-ctx.Done():
				return nil
			case <-idle.C:
			}
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		frame, err := e.NES.RunFrame()
		if err != nil {
			return err
		}
		e.out.EndFrame(frame)

		switch request(e.pending.Swap(uint32(noRequest))) {
		case softResetRequest:
			log.ModEmu.InfoZ("soft reset").End()
			e.NES.Reset(true)
		case hardResetRequest:
			log.ModEmu.InfoZ("hard reset").End()
			e.NES.Reset(false)
		}
	}
	return nil
}

func (e *Emulator) done() bool {
	if e.cfg.Frames != 0 && e.NES.Frames() >= e.cfg.Frames {
		return true
	}
	return e.stopped.Load() || e.NES.CPU.IsHalted()
}

// SetScreenshot sets the path of a PNG screenshot of the last frame, saved
// when the emulation loop exits.
func (e *Emulator) SetScreenshot(path string) { e.screenshot = path }

// The following methods can be called from any goroutine.

func (e *Emulator) SetPause(pause bool) { e.paused.Store(pause) }
func (e *Emulator) Stop()               { e.stopped.Store(true) }

// Reset presses the reset button after the current frame.
func (e *Emulator) Reset() { e.pending.Store(uint32(softResetRequest)) }

// Restart power cycles the console after the current frame.
func (e *Emulator) Restart() { e.pending.Store(uint32(hardResetRequest)) }
