// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Move relocates an object or user through an exit. The requester must
// own the entity being moved, and the exit's destination admits or
// refuses based on the moved entity's owner. On success the exit's
// three departure/arrival messages are emitted with {name} resolved to
// the moved entity's name.
func (s *Service) Move(entityID, exitID ulid.ULID, requester *Entity) error {
	e, ok := s.store.Get(entityID)
	if !ok {
		return ValueErrorf("no such entity to move")
	}
	exit, ok := s.store.Get(exitID)
	if !ok || exit.Kind != KindExit {
		return ValueErrorf("no such exit")
	}
	if !IsOwner(e, requester) {
		return OwnershipErrorf("you do not own %q", e.Name)
	}
	if e.Kind != KindObject && e.Kind != KindUser {
		return TypeErrorf("only objects and users can move through exits")
	}
	source, ok := s.store.Get(exit.Exit.Source)
	if !ok || source.Kind != KindRoom {
		return ValueErrorf("the exit leads from nowhere")
	}
	destination, ok := s.store.Get(exit.Exit.Destination)
	if !ok || destination.Kind != KindRoom {
		return ValueErrorf("the exit leads nowhere")
	}
	if !slices.Contains(source.Room.Contents, entityID) {
		return ValueErrorf("%q is not in %q", e.Name, source.Name)
	}
	if err := CheckAdmission(destination, e.OwnerID); err != nil {
		return err
	}

	source.Room.Contents = removeID(source.Room.Contents, entityID)
	destination.Room.Contents = append(destination.Room.Contents, entityID)
	if e.Kind == KindUser {
		locID := destination.ID
		e.User.LocationID = &locID
		s.EmitToUser(entityID, exit.Exit.LeaveUser)
	}
	name := e.Name
	s.EmitToRoom(source.ID, strings.ReplaceAll(exit.Exit.LeaveRoom, namePlaceholder, name), []ulid.ULID{entityID})
	s.EmitToRoom(destination.ID, strings.ReplaceAll(exit.Exit.ArriveRoom, namePlaceholder, name), []ulid.ULID{entityID})
	return nil
}

// Teleport moves a user directly to the room named by fqn, skipping any
// connecting exit and the destination's admission lists.
func (s *Service) Teleport(user *Entity, destFQN string) error {
	destination, ok := s.store.ByFQN(destFQN)
	if !ok {
		return ValueErrorf("no such place: %q", destFQN)
	}
	if destination.Kind != KindRoom {
		return TypeErrorf("%q is not a room", destFQN)
	}
	if slices.Contains(destination.Room.Contents, user.ID) {
		return ValueErrorf("you are already there")
	}

	if user.User.LocationID != nil {
		if old, ok := s.store.Get(*user.User.LocationID); ok && old.Kind == KindRoom {
			old.Room.Contents = removeID(old.Room.Contents, user.ID)
			s.EmitToRoom(old.ID, user.Name+" teleports away.", []ulid.ULID{user.ID})
		}
	}
	destination.Room.Contents = append(destination.Room.Contents, user.ID)
	locID := destination.ID
	user.User.LocationID = &locID
	s.EmitToUser(user.ID, "You teleport away.")
	s.EmitToRoom(destination.ID, user.Name+" teleports in.", []ulid.ULID{user.ID})
	return nil
}

// Take moves a visible object from the user's current room into their
// inventory. Returns false when the object is missing, not a plain
// object, not in the room, or hidden from the user.
func (s *Service) Take(objectID ulid.ULID, user *Entity) bool {
	obj, ok := s.store.Get(objectID)
	if !ok || obj.Kind != KindObject {
		return false
	}
	if user.User.LocationID == nil {
		return false
	}
	room, ok := s.store.Get(*user.User.LocationID)
	if !ok || room.Kind != KindRoom {
		return false
	}
	if !slices.Contains(room.Room.Contents, objectID) {
		return false
	}
	if !IsVisible(obj, user) {
		return false
	}
	room.Room.Contents = removeID(room.Room.Contents, objectID)
	user.User.Inventory = append(user.User.Inventory, objectID)
	return true
}

// Give hands an object from the giver's inventory to another user in the
// same room.
func (s *Service) Give(objectID ulid.ULID, giver *Entity, recipientID ulid.ULID) bool {
	obj, ok := s.store.Get(objectID)
	if !ok || obj.Kind != KindObject {
		return false
	}
	recipient, ok := s.store.Get(recipientID)
	if !ok || recipient.Kind != KindUser {
		return false
	}
	if !slices.Contains(giver.User.Inventory, objectID) {
		return false
	}
	if giver.User.LocationID == nil || recipient.User.LocationID == nil {
		return false
	}
	if *giver.User.LocationID != *recipient.User.LocationID {
		return false
	}
	giver.User.Inventory = removeID(giver.User.Inventory, objectID)
	recipient.User.Inventory = append(recipient.User.Inventory, objectID)
	return true
}

// Drop places an object from the user's inventory into the room they
// occupy. A user in limbo has nowhere to drop anything.
func (s *Service) Drop(objectID ulid.ULID, user *Entity) bool {
	obj, ok := s.store.Get(objectID)
	if !ok || obj.Kind != KindObject {
		return false
	}
	if !slices.Contains(user.User.Inventory, objectID) {
		return false
	}
	if user.User.LocationID == nil {
		return false
	}
	room, ok := s.store.Get(*user.User.LocationID)
	if !ok || room.Kind != KindRoom {
		return false
	}
	user.User.Inventory = removeID(user.User.Inventory, objectID)
	room.Room.Contents = append(room.Room.Contents, objectID)
	return true
}
