// Package engine ties the processing core together. An Engine is the
// explicitly constructed context object behind one audio device: it owns
// the project topology, the worker pool, the router and the telemetry queue,
// and exposes the entry points a driver calls every cycle.
package engine
