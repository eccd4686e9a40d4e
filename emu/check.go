package emu

import (
	"context"
	"fmt"
	"hash/fnv"

	"nescore/emu/log"
	"nescore/ines"

	"golang.org/x/sync/errgroup"
)

// A DeterminismError reports the first frame for which two instances running
// the same rom produced different pictures.
type DeterminismError struct {
	Frame     int
	Instance  int
	Want, Got uint64
}

func (e *DeterminismError) Error() string {
	return fmt.Sprintf("instance %d diverged at frame %d: hash %016x, want %016x", e.Instance, e.Frame, e.Got, e.Want)
}

// CheckDeterminism runs ninstances independent NES in parallel, each one for
// nframes frames, and verifies they all produce the exact same frames. If
// replay is not nil, each instance gets a copy of it.
func CheckDeterminism(ctx context.Context, rom *ines.Rom, ninstances, nframes int, replay *Replay) error {
	if ninstances < 2 {
		return fmt.Errorf("determinism check needs at least 2 instances, got %d", ninstances)
	}

	hashes := make([][]uint64, ninstances)
	g, ctx := errgroup.WithContext(ctx)
	for i := range ninstances {
		g.Go(func() error {
			var err error
			hashes[i], err = frameHashes(ctx, rom, nframes, replay)
			if err != nil {
				return fmt.Errorf("instance %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := 1; i < ninstances; i++ {
		for f := range nframes {
			if hashes[i][f] != hashes[0][f] {
				return &DeterminismError{Frame: f, Instance: i, Want: hashes[0][f], Got: hashes[i][f]}
			}
		}
	}

	log.ModEmu.InfoZ("Determinism check passed").
		Int("instances", ninstances).
		Int("frames", nframes).
		End()
	return nil
}

// frameHashes powers up a NES and returns the hashes of its first nframes
// frames.
func frameHashes(ctx context.Context, rom *ines.Rom, nframes int, replay *Replay) ([]uint64, error) {
	nes, err := PowerUp(rom)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		replay.Clone().Attach(nes)
	}

	h := fnv.New64a()
	hashes := make([]uint64, 0, nframes)
	for range nframes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := nes.RunFrame()
		if err != nil {
			return nil, err
		}
		h.Reset()
		h.Write(frame.Pix[:])
		hashes = append(hashes, h.Sum64())
	}
	return hashes, nil
}
