// Package router is the façade the audio callback talks to. It owns the
// current graph, rebuilds it when the topology changes, tracks the latency
// figures of the cycle in flight and hands each cycle to the scheduler.
//
// Rebuilds happen on non real-time threads under the graph_access semaphore.
// A new graph is published with a single atomic pointer swap; the real-time
// thread loads the pointer once at the start of every cycle and never waits
// on the semaphore.
package router
