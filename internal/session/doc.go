// Package session turns a loaded configuration model into a live project
// topology, creating every processor through the registry.
package session
