// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownRenderer is returned when no factory is registered under a name.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry maps renderer names to factories.
//
// Example:
//
//	reg := render.NewRegistry()
//	reg.Register("liveview", func() render.Renderer {
//	    return render.NewLiveviewRenderer(feed)
//	})
//	factory, err := reg.Factory("liveview")
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Factory
}

// NewRegistry creates a registry with the built-in "cube" renderer.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Factory)}
	r.Register("cube", func() Renderer { return NewCubeRenderer() })
	return r
}

// Register adds or replaces a factory. A nil factory removes the name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f == nil {
		delete(r.entries, name)
		return
	}
	r.entries[name] = f
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
	return f, nil
}

// New creates a renderer by name.
func (r *Registry) New(name string) (Renderer, error) {
	f, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
