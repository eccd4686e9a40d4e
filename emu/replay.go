package emu

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"nescore/hw"
)

// ReplayEvent sets the state of both controllers, from Frame onward.
type ReplayEvent struct {
	Frame uint64
	Pads  [2]uint8
}

// Replay is an input device that replays a recorded sequence of controller
// states, keyed by frame number. A state holds until the next event.
type Replay struct {
	events []ReplayEvent
	clock  interface{ Frames() uint64 }
}

var _ hw.InputDevice = (*Replay)(nil)

// NewReplay creates a replay from events, which are sorted by frame.
func NewReplay(events []ReplayEvent) *Replay {
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(a, b ReplayEvent) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
	return &Replay{events: events}
}

// ParseReplay reads a replay in text format. Each non-empty line that isn't a
// '#' comment holds a frame number followed by the state of controller 1 and
// optionally controller 2. A state is either a hexadecimal byte (bit 0 is A,
// bit 7 is Right) or a '+' separated list of button names, '-' for none.
//
//	60  start
//	120 A+right 00
func ParseReplay(r io.Reader) (*Replay, error) {
	var events []ReplayEvent
	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("replay line %d: want 2 or 3 fields, got %d", lineno, len(fields))
		}

		var ev ReplayEvent
		var err error
		if ev.Frame, err = strconv.ParseUint(fields[0], 10, 64); err != nil {
			return nil, fmt.Errorf("replay line %d: bad frame number: %w", lineno, err)
		}
		for i, f := range fields[1:] {
			if ev.Pads[i], err = parseButtons(f); err != nil {
				return nil, fmt.Errorf("replay line %d: %w", lineno, err)
			}
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewReplay(events), nil
}

var buttonNames = map[string]uint8{
	"a":      hw.ButtonA,
	"b":      hw.ButtonB,
	"select": hw.ButtonSelect,
	"start":  hw.ButtonStart,
	"up":     hw.ButtonUp,
	"down":   hw.ButtonDown,
	"left":   hw.ButtonLeft,
	"right":  hw.ButtonRight,
}

func parseButtons(s string) (uint8, error) {
	if s == "-" {
		return 0, nil
	}
	if len(s) == 2 {
		if v, err := strconv.ParseUint(s, 16, 8); err == nil {
			return uint8(v), nil
		}
	}

	var state uint8
	for _, name := range strings.Split(strings.ToLower(s), "+") {
		btn, ok := buttonNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown button %q", name)
		}
		state |= btn
	}
	return state, nil
}

// Attach plugs the replay into the nes controller ports. A Replay can only be
// attached to one NES at a time, use Clone for more.
func (r *Replay) Attach(nes *NES) {
	r.clock = nes
	nes.Bus.Input.Plug(r)
}

// Clone returns an unattached copy of r.
func (r *Replay) Clone() *Replay {
	return &Replay{events: r.events}
}

// LoadState implements hw.InputDevice.
func (r *Replay) LoadState() (uint8, uint8) {
	if r.clock == nil {
		return 0, 0
	}
	frame := r.clock.Frames()
	i, found := slices.BinarySearchFunc(r.events, frame, func(ev ReplayEvent, f uint64) int {
		return cmp.Compare(ev.Frame, f)
	})
	if !found {
		i--
	}
	if i < 0 {
		return 0, 0
	}
	// Among events with the same frame, the last one wins.
	for i+1 < len(r.events) && r.events[i+1].Frame == r.events[i].Frame {
		i++
	}
	return r.events[i].Pads[0], r.events[i].Pads[1]
}
