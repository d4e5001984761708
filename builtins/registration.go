// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package builtins

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Builtin is an action implemented in Go, only implementable on structs since with maps are decoded into them
type Builtin interface {
	Execute(ctx context.Context) (map[string]any, error)
}

// Describer is implemented by builtins with a human readable summary
type Describer interface {
	Description() string
}

// Factory returns a fresh, zero valued builtin
type Factory func() Builtin

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var defaultRegistry = &registry{
	factories: map[string]Factory{
		"echo":  func() Builtin { return &echo{} },
		"fetch": func() Builtin { return &fetch{} },
	},
}

func (r *registry) get(name string) Builtin {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

func (r *registry) add(name string, factory Factory) error {
	switch {
	case name == "":
		return fmt.Errorf("builtin name cannot be empty")
	case factory == nil:
		return fmt.Errorf("registration function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Get returns a fresh instance of a registered builtin, or nil when name is unknown
func Get(name string) Builtin {
	return defaultRegistry.get(name)
}

// Describe returns the summary of a registered builtin, or "" if it has none
func Describe(name string) string {
	if d, ok := Get(name).(Describer); ok {
		return d.Description()
	}
	return ""
}

// Register makes a builtin available to workflow files as builtin:<name>
func Register(name string, factory func() Builtin) error {
	return defaultRegistry.add(name, factory)
}

// Names returns the sorted names of every registered builtin
func Names() []string {
	return defaultRegistry.names()
}
