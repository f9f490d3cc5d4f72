/*
Package portid provides a structured, comparable identifier for graph ports.

The canonical textual form is `owner/direction/type[index]`, e.g.
`track.drums/out/audio[0]` or `plugin.bus.comp[1]/in/event[0]`. The owner is a
dot-separated address of the entity that owns the port; each segment may carry
an optional `[n]` index.

IDs are immutable values and are safe to use as map keys. They are the key of
persisted connections, so String and Parse must round-trip.
*/
package portid
