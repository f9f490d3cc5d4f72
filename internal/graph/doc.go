// Package graph turns a topology snapshot into an executable processing
// graph.
//
// # Structure
//
// Build creates one node per port and one per processor, stored in an arena
// and addressed by int32 index. Edges come from two sources: every enabled
// connection links an output port to an input port, and every processor is
// linked between its own ports (inputs -> processor -> outputs). A node's
// initial pending count is its number of distinct predecessors; the trigger
// set is every node whose count is zero and the terminal set every node
// without dependents.
//
// Arena order is deterministic: processors in snapshot order, and for each
// processor its input ports, the processor itself, then its output ports.
// Edges, triggers and terminals follow arena order, so identical snapshots
// produce identical graphs.
//
// # Latency
//
// Each node accumulates the latency of the longest path leading to it:
//
//	up(n) = declared(n) + max(up(p) for p in preds(n))
//
// All input ports of a processor are aligned to its slowest input, so they
// share one figure. Every connection arriving earlier than that is delayed by
// the difference on its own way into the input port; the source port is never
// delayed in place, so a port fanning out to consumers that need different
// delays feeds each of them correctly. The delays live in an immutable Plan;
// UpdateLatencies swaps in a new Plan atomically without touching the
// topology.
//
// # Cycles
//
// A Graph is executed by the scheduler through Begin and Step. Begin resets
// every pending counter and seeds the ready queue with the triggers; Step pops
// one ready node, processes it and signals its dependents. The graph itself is
// never mutated by a cycle apart from those counters and the port buffers.
package graph
