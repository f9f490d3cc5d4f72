// Package notegen provides a MIDI source that plays one note on a fixed
// grid, used as a stand-in for a MIDI track.
package notegen

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
	"github.com/vk/dawgraph/internal/signal"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params are the session parameters of a note generator. Interval and Length
// are in frames.
type Params struct {
	Channel  int `param:"channel"`
	Note     int `param:"note"`
	Velocity int `param:"velocity"`
	Interval int `param:"interval"`
	Length   int `param:"length"`
}

// Unit emits a note-on every Interval frames and the matching note-off
// Length frames later.
type Unit struct {
	interval, length int64
	on, off          midi.Message
}

// New creates a note generator.
func New(p Params) (*Unit, error) {
	switch {
	case p.Channel < 0 || p.Channel > 15:
		return nil, fmt.Errorf("channel must be within 0..15: %d", p.Channel)
	case p.Note < 0 || p.Note > 127:
		return nil, fmt.Errorf("note must be within 0..127: %d", p.Note)
	case p.Velocity <= 0 || p.Velocity > 127:
		return nil, fmt.Errorf("velocity must be within 1..127: %d", p.Velocity)
	case p.Interval <= 0:
		return nil, fmt.Errorf("interval must be positive: %d", p.Interval)
	case p.Length <= 0 || p.Length >= p.Interval:
		return nil, fmt.Errorf("length must be within 1..%d: %d", p.Interval-1, p.Length)
	}
	ch, key := uint8(p.Channel), uint8(p.Note)
	return &Unit{
		interval: int64(p.Interval),
		length:   int64(p.Length),
		on:       midi.NoteOn(ch, key, uint8(p.Velocity)),
		off:      midi.NoteOff(ch, key),
	}, nil
}

// Ports implements node.Unit.
func (u *Unit) Ports() ([]portid.SignalType, []portid.SignalType) {
	return nil, []portid.SignalType{portid.Event}
}

// Latency implements node.Unit.
func (u *Unit) Latency() int { return 0 }

// Process implements node.Unit. The messages are shared between cycles and
// must be treated as read-only by consumers.
func (u *Unit) Process(pc *node.ProcessContext) error {
	t := pc.Time
	out := pc.Outputs[0]
	for i := range t.NFrames {
		var msg midi.Message
		switch (t.Playhead + int64(i)) % u.interval {
		case 0:
			msg = u.on
		case u.length:
			msg = u.off
		default:
			continue
		}
		out.AppendEvent(signal.Event{Frame: uint32(t.LocalOffset + i), Msg: msg})
	}
	return nil
}

// Register registers the processor kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor("notegen", &registry.Processor{
		NewParams: func() any {
			return &Params{Note: 60, Velocity: 100, Interval: 24000, Length: 12000}
		},
		New: func(p any) (node.Unit, error) { return New(*p.(*Params)) },
	})
}
