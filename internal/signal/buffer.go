package signal

import (
	"github.com/vk/dawgraph/internal/portid"
	"gitlab.com/gomidi/midi/v2"
)

// DefaultEventCapacity is the number of events an event buffer holds per
// cycle when no explicit capacity is configured.
const DefaultEventCapacity = 512

// Event is a MIDI message stamped with its frame offset inside the cycle.
type Event struct {
	Frame uint32
	Msg   midi.Message
}

// Buffer is the storage behind one port. Which fields are used depends on the
// signal type: Samples for audio and CV, Events for event ports, Value for
// control ports.
type Buffer struct {
	typ     portid.SignalType
	Samples []float64
	Events  []Event
	Value   float64

	scratch []float64
	dropped int
}

// New allocates a buffer for the given signal type. blockSize is the largest
// number of frames a cycle may process; eventCap bounds the event list.
func New(typ portid.SignalType, blockSize, eventCap int) *Buffer {
	b := &Buffer{typ: typ}
	switch typ {
	case portid.Audio, portid.CV:
		b.Samples = make([]float64, blockSize)
		b.scratch = make([]float64, blockSize)
	case portid.Event:
		if eventCap <= 0 {
			eventCap = DefaultEventCapacity
		}
		b.Events = make([]Event, 0, eventCap)
	}
	return b
}

// Type returns the signal type of the buffer.
func (b *Buffer) Type() portid.SignalType {
	return b.typ
}

// Len returns the block size of an audio or CV buffer.
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Clear silences the range [offset, offset+n). Event and control buffers are
// reset entirely.
func (b *Buffer) Clear(offset, n int) {
	switch b.typ {
	case portid.Audio, portid.CV:
		clear(b.Samples[offset : offset+n])
	case portid.Event:
		b.Events = b.Events[:0]
	case portid.Control:
		b.Value = 0
	}
}

// Dropped returns and resets the number of events discarded because the
// buffer was full.
func (b *Buffer) Dropped() int {
	d := b.dropped
	b.dropped = 0
	return d
}

// AppendEvent adds one event if there is room for it. It reports false and
// counts a drop when the buffer is full.
func (b *Buffer) AppendEvent(ev Event) bool {
	if len(b.Events) == cap(b.Events) {
		b.dropped++
		return false
	}
	b.Events = append(b.Events, ev)
	return true
}
