// Package registry maps processor kinds, as named in session files, to the
// Go factories that build their units.
//
// Every built-in module registers itself through the Module interface. The
// registry also knows each kind's parameter struct, so parameters read from
// a session file can be type-checked and decoded before a unit is created.
// ValidateRegistry checks at startup that every parameter struct can be
// represented as cty values, which keeps the factories and the session
// loader in sync.
package registry
