package app

import (
	"github.com/vk/dawgraph/internal/registry"
	"github.com/vk/dawgraph/modules/gain"
	"github.com/vk/dawgraph/modules/latency"
	"github.com/vk/dawgraph/modules/meter"
	"github.com/vk/dawgraph/modules/notegen"
	"github.com/vk/dawgraph/modules/passthrough"
	"github.com/vk/dawgraph/modules/tone"
)

// coreModules is the definitive list of all processor modules compiled into
// the dawgraph binary.
var coreModules = []registry.Module{
	&gain.Module{},
	&latency.Module{},
	&meter.Module{},
	&notegen.Module{},
	&passthrough.Module{},
	&tone.Module{},
}

// CoreModules returns a copy of the built-in module list, for callers that
// register extra modules alongside it.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}
