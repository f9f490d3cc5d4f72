// Package config defines the format-agnostic model of a session file: the
// engine settings, the processors and the connections between their ports,
// along with the Loader interface that concrete formats implement.
//
// The model is the single source of truth for the session package, which
// turns it into a live topology. The HCL implementation lives in package hcl.
package config
