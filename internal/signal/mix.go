package signal

import (
	"cmp"
	"slices"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/vk/dawgraph/internal/portid"
)

// Compatible reports whether a source of type src may feed a destination of
// type dst. Identical types always combine; CV may drive a control input and
// audio may drive a CV input.
func Compatible(src, dst portid.SignalType) bool {
	if src == dst {
		return true
	}
	return (src == portid.CV && dst == portid.Control) || (src == portid.Audio && dst == portid.CV)
}

// Mix combines src into b over [offset, offset+n) using the rule for b's
// signal type:
//
//   - audio, CV: b += m * src, elementwise
//   - control:   b += m * src (the last CV sample of the range for CV sources)
//   - event:     src events are appended, then the list is stably sorted by frame
//
// The multiplier is ignored for event buffers.
func (b *Buffer) Mix(src *Buffer, m float64, offset, n int) {
	switch b.typ {
	case portid.Audio, portid.CV:
		dst := b.Samples[offset : offset+n]
		in := src.Samples[offset : offset+n]
		if m == 1 {
			vecmath.AddBlockInPlace(dst, in)
			return
		}
		tmp := b.scratch[:n]
		vecmath.ScaleBlock(tmp, in, m)
		vecmath.AddBlockInPlace(dst, tmp)
	case portid.Control:
		if src.typ == portid.CV {
			b.Value += m * src.Samples[offset+n-1]
			return
		}
		b.Value += m * src.Value
	case portid.Event:
		before := len(b.Events)
		for _, ev := range src.Events {
			b.AppendEvent(ev)
		}
		if before > 0 && len(b.Events) > before {
			SortEvents(b.Events)
		}
	}
}

// CopyFrom overwrites the range [offset, offset+n) of b with src.
func (b *Buffer) CopyFrom(src *Buffer, offset, n int) {
	switch b.typ {
	case portid.Audio, portid.CV:
		copy(b.Samples[offset:offset+n], src.Samples[offset:offset+n])
	case portid.Event:
		b.Events = b.Events[:0]
		for _, ev := range src.Events {
			b.AppendEvent(ev)
		}
	case portid.Control:
		b.Value = src.Value
	}
}

// Peak returns the largest absolute sample value in [offset, offset+n).
func (b *Buffer) Peak(offset, n int) float64 {
	if !b.typ.IsBlock() || n == 0 {
		return 0
	}
	return vecmath.MaxAbs(b.Samples[offset : offset+n])
}

// SortEvents orders events by frame, keeping the relative order of events
// that share a frame. It sorts in place without allocating.
func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
}
