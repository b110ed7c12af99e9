// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"
)

// DeleteObject removes a plain object from the graph, repairing the
// container that held it and the owner's owns list. Returns false when
// the id is unknown, the entity is not a plain object, or the requester
// is neither owner nor superuser.
func (s *Service) DeleteObject(id ulid.ULID, requester *Entity) bool {
	e, ok := s.store.Get(id)
	if !ok || e.Kind != KindObject {
		return false
	}
	if !IsOwner(e, requester) {
		return false
	}
	s.removeFromContainer(id)
	s.unregister(e)
	return true
}

// DeleteRoom removes a room. Users inside are evicted to limbo; other
// contents return to their owners' inventories (ownership, not location,
// decides the fallback). Every exit touching the room is force-deleted so
// the graph never retains dangling exits. Returns false on the same
// existence/kind/permission gates as DeleteObject.
func (s *Service) DeleteRoom(id ulid.ULID, requester *Entity) bool {
	room, ok := s.store.Get(id)
	if !ok || room.Kind != KindRoom {
		return false
	}
	if !IsOwner(room, requester) {
		return false
	}
	for _, itemID := range slices.Clone(room.Room.Contents) {
		item, ok := s.store.Get(itemID)
		if !ok {
			continue
		}
		if item.Kind == KindUser {
			item.User.LocationID = nil
			continue
		}
		itemOwner, ok := s.store.Get(item.OwnerID)
		if !ok {
			slog.Warn("orphaned entity during room deletion",
				"entity_id", itemID.String(),
				"owner_id", item.OwnerID.String(),
			)
			continue
		}
		itemOwner.User.Inventory = append(itemOwner.User.Inventory, itemID)
	}
	for _, exitID := range slices.Clone(room.Room.ExitsIn) {
		s.deleteExit(exitID, requester, true)
	}
	for _, exitID := range slices.Clone(room.Room.ExitsOut) {
		s.deleteExit(exitID, requester, true)
	}
	s.unregister(room)
	return true
}

// DeleteExit removes an exit and deregisters it from both rooms. Returns
// false on the existence/kind/permission gates.
func (s *Service) DeleteExit(id ulid.ULID, requester *Entity) bool {
	return s.deleteExit(id, requester, false)
}

// deleteExit implements DeleteExit. force bypasses the permission gate;
// it is used only by DeleteRoom, which must clean up exits owned by
// other users.
func (s *Service) deleteExit(id ulid.ULID, requester *Entity, force bool) bool {
	e, ok := s.store.Get(id)
	if !ok || e.Kind != KindExit {
		return false
	}
	if !force && !IsOwner(e, requester) {
		return false
	}
	if source, ok := s.store.Get(e.Exit.Source); ok && source.Kind == KindRoom {
		source.Room.ExitsOut = removeID(source.Room.ExitsOut, id)
	}
	if destination, ok := s.store.Get(e.Exit.Destination); ok && destination.Kind == KindRoom {
		destination.Room.ExitsIn = removeID(destination.Room.ExitsIn, id)
	}
	s.unregister(e)
	return true
}

// unregister removes the entity from the store, the fqn index and the
// owner's owns list.
func (s *Service) unregister(e *Entity) {
	if owner, ok := s.store.Get(e.OwnerID); ok && owner.Kind == KindUser {
		owner.User.Owns = removeID(owner.User.Owns, e.ID)
	}
	s.store.remove(e)
}

// removeFromContainer deletes the id from whichever single container
// holds it: the owner's inventory, any user's inventory, or a room's
// contents. Objects carry no back-pointer, so this walks the candidate
// containers in likelihood order.
func (s *Service) removeFromContainer(id ulid.ULID) {
	for _, e := range s.store.entities {
		switch e.Kind {
		case KindUser:
			if slices.Contains(e.User.Inventory, id) {
				e.User.Inventory = removeID(e.User.Inventory, id)
				return
			}
		case KindRoom:
			if slices.Contains(e.Room.Contents, id) {
				e.Room.Contents = removeID(e.Room.Contents, id)
				return
			}
		case KindObject, KindExit:
		}
	}
}
