// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"github.com/oklog/ulid/v2"
)

// Store owns the entity map and its two secondary indexes (fqn and
// username). All external access to the graph goes through Service
// operations; the Store itself performs no validation or locking. The
// single serialization point is the Engine.
type Store struct {
	entities map[ulid.ULID]*Entity
	fqns     map[string]ulid.ULID
	users    map[string]ulid.ULID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entities: make(map[ulid.ULID]*Entity),
		fqns:     make(map[string]ulid.ULID),
		users:    make(map[string]ulid.ULID),
	}
}

// NewStoreFromEntities builds a store from a loaded snapshot, rebuilding
// the fqn and username indexes in a single pass. Returns a CodeValue
// error if two entities share an fqn or username.
func NewStoreFromEntities(entities map[ulid.ULID]*Entity) (*Store, error) {
	s := NewStore()
	for id, e := range entities {
		e.ID = id
		if _, taken := s.fqns[e.FQN]; taken {
			return nil, ValueErrorf("duplicate fqn %q in snapshot", e.FQN)
		}
		if e.Kind == KindUser {
			if _, taken := s.users[e.Name]; taken {
				return nil, ValueErrorf("duplicate username %q in snapshot", e.Name)
			}
		}
		s.insert(e)
	}
	return s, nil
}

// Get returns the entity with the given id.
func (s *Store) Get(id ulid.ULID) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// ByFQN returns the entity with the given fully-qualified name.
func (s *Store) ByFQN(fqn string) (*Entity, bool) {
	id, ok := s.fqns[fqn]
	if !ok {
		return nil, false
	}
	return s.Get(id)
}

// UserByName returns the user entity with the given username.
func (s *Store) UserByName(username string) (*Entity, bool) {
	id, ok := s.users[username]
	if !ok {
		return nil, false
	}
	return s.Get(id)
}

// Len returns the number of entities in the store.
func (s *Store) Len() int {
	return len(s.entities)
}

// Export returns a shallow copy of the entity map, keyed by id, for the
// persistence layer. Each entity carries its fqn, kind and name, so both
// indexes are rebuildable from the snapshot alone.
func (s *Store) Export() map[ulid.ULID]*Entity {
	out := make(map[ulid.ULID]*Entity, len(s.entities))
	for id, e := range s.entities {
		out[id] = e
	}
	return out
}

// insert registers an entity in the store and both indexes.
func (s *Store) insert(e *Entity) {
	s.entities[e.ID] = e
	s.fqns[e.FQN] = e.ID
	if e.Kind == KindUser {
		s.users[e.Name] = e.ID
	}
}

// remove deletes an entity from the store and both indexes.
func (s *Store) remove(e *Entity) {
	delete(s.entities, e.ID)
	delete(s.fqns, e.FQN)
	if e.Kind == KindUser {
		delete(s.users, e.Name)
	}
}
