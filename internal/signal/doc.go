// Package signal holds the per-port buffers of the processing graph and the
// rules for combining several sources into one destination.
//
// Buffers are allocated once when a graph is built and reused every cycle.
// Nothing in this package allocates on the processing path: audio and CV
// blocks are mixed with algo-vecmath into preallocated slices, event lists
// are appended up to a fixed capacity and re-sorted in place.
package signal
