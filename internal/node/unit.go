package node

import (
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
)

// TimeInfo describes the cycle a node is processing.
type TimeInfo struct {
	// Cycle is a monotonically increasing cycle counter.
	Cycle uint64
	// Playhead is the transport position, in frames, at the start of the cycle.
	Playhead int64
	// GlobalOffset is the cycle's position inside the engine's latency
	// compensation window.
	GlobalOffset int
	// LocalOffset is the first frame of the buffers to process.
	LocalOffset int
	// NFrames is the number of frames to process.
	NFrames int
	// SampleRate of the engine in Hz.
	SampleRate int
}

// ProcessContext is handed to a Unit every cycle. Inputs and Outputs are the
// buffers of the processor's graph-modeled ports, in declaration order. The
// context is built once per graph and reused; units must not retain it.
type ProcessContext struct {
	Time    TimeInfo
	Inputs  []*signal.Buffer
	Outputs []*signal.Buffer
}

// Unit is the processing entry point of anything wrapped by a processor
// node: tracks, faders, plugins, hardware I/O adapters.
type Unit interface {
	// Ports declares the signal types of the unit's inputs and outputs.
	Ports() (inputs, outputs []portid.SignalType)
	// Latency is the delay, in frames, the unit's processing introduces.
	Latency() int
	// Process fills the output buffers from the input buffers over
	// [Time.LocalOffset, Time.LocalOffset+Time.NFrames). Outputs are
	// silenced before the call. A returned error or a panic silences the
	// outputs again and is reported asynchronously.
	Process(pc *ProcessContext) error
}
