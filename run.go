package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"nescore/emu"
	"nescore/ines"
)

// replayArg loads a replay file.
//
// Implements kong.MapperValue interface.
type replayArg struct {
	*emu.Replay
}

func (r *replayArg) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	path, ok := tok.Value.(string)
	if !ok {
		return fmt.Errorf("expected a path, got %v", tok.Value)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.Replay, err = emu.ParseReplay(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// runMain runs the emulator headless with the given rom.
func runMain(args Run, cfg emu.Config) {
	rom, err := ines.Open(args.RomPath)
	checkf(err, "failed to open rom")

	if args.Trace != nil {
		defer args.Trace.Close()
		cfg.TraceOut = args.Trace
		if args.TraceFormat != "" {
			cfg.Trace.Format = args.TraceFormat
		}
	}
	if args.Frames != 0 {
		cfg.Emulation.Frames = args.Frames
	}
	if args.Paused {
		cfg.Emulation.StartPaused = true
	}

	emulator, err := emu.Launch(rom, cfg, nil)
	checkf(err, "failed to start emulator")

	if args.Replay != nil {
		args.Replay.Attach(emulator.NES)
	}
	if args.Screenshot != "" {
		emulator.SetScreenshot(args.Screenshot)
	}

	if args.CPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(args.CPUProfile), profile.NoShutdownHook).Stop()
	}

	// Ctrl-C stops the emulation loop, so that the trace and the profile are
	// properly flushed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	checkf(emulator.Run(ctx), "emulation error")
}

func checkMain(args Check) {
	rom, err := ines.Open(args.RomPath)
	checkf(err, "failed to open rom")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var replay *emu.Replay
	if args.Replay != nil {
		replay = args.Replay.Replay
	}
	err = emu.CheckDeterminism(ctx, rom, args.Instances, args.Frames, replay)
	checkf(err, "determinism check failed")
	fmt.Printf("ok: %d instances produced the same %d frames\n", args.Instances, args.Frames)
}

// execMain runs a raw 6502 program until it executes a JAM opcode (02 for
// example) or the cycle budget is exhausted, then prints the CPU state.
func execMain(args Exec) {
	rom, err := ines.FromProgram(args.Program)
	checkf(err, "invalid program")

	nes, err := emu.PowerUp(rom)
	checkf(err, "power up failed")

	start := nes.CPU.Cycles
	for nes.CPU.Cycles-start < args.MaxCycles {
		if _, err := nes.Step(); err != nil {
			break
		}
	}

	cpu := nes.CPU
	fmt.Printf("A:%02X X:%02X Y:%02X P:%02X [%s] SP:%02X PC:%04X CYC:%d\n",
		cpu.A, cpu.X, cpu.Y, uint8(cpu.P), cpu.P, cpu.SP, cpu.PC, cpu.Cycles-start)
	if cpu.IsHalted() {
		fmt.Println(cpu.Err())
	}

	buf := make([]byte, int(args.Dump.end)-int(args.Dump.start)+1)
	for i := range buf {
		buf[i] = nes.Bus.Peek8(args.Dump.start + uint16(i))
	}
	fmt.Printf("\n$%04X-$%04X:\n%s", args.Dump.start, args.Dump.end, hex.Dump(buf))
}
