// Package topology is the live, editable model of a project's routing: the
// processors (tracks, plugins, faders, hardware I/O) with their ports, and the
// connections between ports.
//
// The model validates every edit when it is made. A connection that joins
// incompatible signal types, runs the wrong way, loops back onto its own
// processor or would close a cycle is rejected, so a Snapshot taken from a
// Project always describes an acyclic graph.
//
// The processing graph is never built from the live model directly. Callers
// take a Snapshot, an immutable copy, and hand it to graph.Build; edits can
// continue while a build is running.
package topology
