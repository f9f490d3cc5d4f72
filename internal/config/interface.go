package config

import "context"

// Loader is the interface for a format-specific session loader.
type Loader interface {
	// Load reads every session file under paths and merges them into one
	// model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
