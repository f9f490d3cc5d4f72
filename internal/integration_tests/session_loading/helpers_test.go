package session_loading

import (
	"errors"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/registry"
)

type badModule struct{}

func (badModule) Register(r *registry.Registry) {
	r.RegisterProcessor("broken", &registry.Processor{
		NewParams: func() any { return &struct{}{} },
		New:       func(any) (node.Unit, error) { return nil, errors.New("no device") },
	})
}
