package signal

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/delay"
	"github.com/vk/dawgraph/internal/portid"
)

// Delay shifts a port's signal later in time by a fixed number of frames. It
// is the mechanism behind latency compensation: a branch that reaches a
// summing port earlier than its siblings is delayed by the difference.
type Delay struct {
	frames int
	lines  *delay.Line

	// event state; carry holds events that are due in a later cycle, with
	// their frame measured from the start of that cycle.
	carry []Event
	spare []Event
	due   []Event
}

// NewDelay creates a delay of frames for a buffer of type typ. Control
// buffers cannot be delayed.
func NewDelay(typ portid.SignalType, frames, eventCap int) (*Delay, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("delay must be positive: %d", frames)
	}
	d := &Delay{frames: frames}
	switch typ {
	case portid.Audio, portid.CV:
		line, err := delay.New(frames)
		if err != nil {
			return nil, err
		}
		d.lines = line
	case portid.Event:
		if eventCap <= 0 {
			eventCap = DefaultEventCapacity
		}
		d.carry = make([]Event, 0, eventCap)
		d.spare = make([]Event, 0, eventCap)
		d.due = make([]Event, 0, eventCap)
	default:
		return nil, fmt.Errorf("signal type %s cannot be delayed", typ)
	}
	return d, nil
}

// Frames returns the configured delay.
func (d *Delay) Frames() int {
	return d.frames
}

// Apply delays the range [offset, offset+n) of b in place.
func (d *Delay) Apply(b *Buffer, offset, n int) {
	if d.lines != nil {
		samples := b.Samples[offset : offset+n]
		for i, x := range samples {
			samples[i] = d.lines.Read(d.frames)
			d.lines.Write(x)
		}
		return
	}
	d.applyEvents(b, offset, n)
}

func (d *Delay) applyEvents(b *Buffer, offset, n int) {
	end := uint32(offset + n)
	due := d.due[:0]
	next := d.spare[:0]

	for _, ev := range d.carry {
		at := uint32(offset) + ev.Frame
		if at < end {
			ev.Frame = at
			due = appendBounded(due, ev)
			continue
		}
		ev.Frame -= uint32(n)
		next = appendBounded(next, ev)
	}
	for _, ev := range b.Events {
		at := ev.Frame + uint32(d.frames)
		if at < end {
			ev.Frame = at
			due = appendBounded(due, ev)
			continue
		}
		ev.Frame = at - end
		next = appendBounded(next, ev)
	}

	b.Events = b.Events[:0]
	for _, ev := range due {
		b.AppendEvent(ev)
	}
	SortEvents(b.Events)

	d.due = due
	d.spare = d.carry[:0]
	d.carry = next
}

// Reset clears the delay's history.
func (d *Delay) Reset() {
	if d.lines != nil {
		d.lines.Reset()
	}
	d.carry = d.carry[:0]
}

func appendBounded(events []Event, ev Event) []Event {
	if len(events) == cap(events) {
		return events
	}
	return append(events, ev)
}
