// Package node defines the vertices of the processing graph.
//
// A Node is either a port or a processor. Input ports sum their enabled
// incoming connections into their own buffer; output ports hold what their
// processor wrote. A connection that reaches its input port ahead of the
// slowest signal feeding the same processor is delayed on the way in by its
// Compensation. Processors call a Unit with their input and output buffers.
// After processing, Complete decrements the pending counter of every
// dependent node and queues those that became ready. That counter is the only
// synchronisation between nodes.
package node
