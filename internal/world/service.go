// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"slices"

	"github.com/oklog/ulid/v2"
)

// Notifier delivers a rendered message line to a connected user's
// session. Delivery is a non-blocking enqueue; users without a session
// miss the message.
type Notifier interface {
	Deliver(userID ulid.ULID, text string)
}

// PasswordHasher produces password hashes for user creation. Verification
// happens at the transport layer, outside the graph lock.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service exposes the graph mutation operations. Every operation
// validates before mutating: on error the graph is exactly as it was.
// Callers serialize access through the Engine.
type Service struct {
	store    *Store
	notifier Notifier
	hasher   PasswordHasher
}

// NewService creates a world service. The notifier may be nil, in which
// case notifications are discarded (useful in tests and batch tooling).
func NewService(store *Store, notifier Notifier, hasher PasswordHasher) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		hasher:   hasher,
	}
}

// Store returns the underlying entity store.
func (s *Service) Store() *Store {
	return s.store
}

// EmitToUser delivers a message to a single user.
func (s *Service) EmitToUser(userID ulid.ULID, text string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Deliver(userID, text)
}

// EmitToRoom delivers a message to every user located in the room at the
// instant of the call, skipping ids in exclude. Membership is a snapshot:
// a user who moves away mid-broadcast is not chased.
func (s *Service) EmitToRoom(roomID ulid.ULID, text string, exclude []ulid.ULID) {
	room, ok := s.store.Get(roomID)
	if !ok || room.Kind != KindRoom {
		return
	}
	for _, id := range room.Room.Contents {
		occupant, ok := s.store.Get(id)
		if !ok || occupant.Kind != KindUser {
			continue
		}
		if slices.Contains(exclude, id) {
			continue
		}
		s.EmitToUser(id, text)
	}
}
