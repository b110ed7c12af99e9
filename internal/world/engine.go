// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import "sync"

// Engine serializes access to a Service. The world graph is plain
// mutable state with no internal locking; every reader and writer goes
// through With, which holds the single mutex for the duration of fn.
type Engine struct {
	mu  sync.Mutex
	svc *Service
}

// NewEngine wraps svc in an Engine.
func NewEngine(svc *Service) *Engine {
	return &Engine{svc: svc}
}

// With runs fn with exclusive access to the world. fn must not retain
// the *Service or any entity pointers past its return.
func (e *Engine) With(fn func(*Service) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.svc)
}
