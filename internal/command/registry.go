// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package command

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tapestrymud/tapestry/internal/world"
)

// Execution carries everything a builtin verb handler needs. Handlers run
// inside the world lock and must not retain any of these pointers.
type Execution struct {
	Svc  *world.Service
	User *world.Entity
	Room *world.Entity // nil when the user is in limbo
	Args string        // raw input after the verb, untrimmed of quoting
	// InvokedAs is the verb the player actually typed, which may be any
	// of the handler's registered aliases.
	InvokedAs string
}

// Handler executes a builtin verb.
type Handler func(ctx context.Context, ex *Execution) error

// Registry maps verb names, including aliases, to handlers.
// It is safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Handler
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Handler),
	}
}

// Register binds a handler to every name in names. Re-registering a name
// overwrites the previous binding with a warning, last registration wins.
func (r *Registry) Register(handler Handler, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if _, ok := r.commands[name]; ok {
			slog.Warn("verb conflict: overwriting existing verb", "verb", name)
		}
		r.commands[name] = handler
	}
}

// Get retrieves the handler bound to name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.commands[name]
	return h, ok
}
