package app

import "github.com/vk/dawgraph/internal/registry"

type moduleFunc func(r *registry.Registry)

func (f moduleFunc) Register(r *registry.Registry) { f(r) }
