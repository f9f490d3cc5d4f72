package node

import (
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
)

// Compensation delays one incoming connection of an input port. The source
// buffer is copied into a private buffer and delayed there, so the source
// port and its other consumers are left untouched.
type Compensation struct {
	frames int
	delay  *signal.Delay
	buf    *signal.Buffer
}

// NewCompensation creates a delay of frames for a connection whose source
// carries typ. Control values cannot be delayed; their compensation only
// records the frame count.
func NewCompensation(typ portid.SignalType, frames, blockSize, eventCap int) (*Compensation, error) {
	c := &Compensation{frames: frames}
	if typ == portid.Control {
		return c, nil
	}
	d, err := signal.NewDelay(typ, frames, eventCap)
	if err != nil {
		return nil, err
	}
	c.delay = d
	c.buf = signal.New(typ, blockSize, eventCap)
	return c, nil
}

// Frames returns the delay in frames.
func (c *Compensation) Frames() int {
	return c.frames
}

// apply returns src delayed over [offset, offset+n).
func (c *Compensation) apply(src *signal.Buffer, offset, n int) *signal.Buffer {
	if c.delay == nil {
		return src
	}
	c.buf.CopyFrom(src, offset, n)
	c.delay.Apply(c.buf, offset, n)
	return c.buf
}

func (c *Compensation) dropped() int {
	if c.buf == nil {
		return 0
	}
	return c.buf.Dropped()
}
