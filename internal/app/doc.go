// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: load a session, start
// the engine and its telemetry, and drive it until told to stop. It is
// decoupled from any specific entrypoint like a CLI.
package app
