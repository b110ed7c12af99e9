// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"fmt"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tapestrymud/tapestry/internal/core"
)

// namePlaceholder is the single placeholder substituted with the mover's
// display name in exit message templates.
const namePlaceholder = "{name}"

// newBase validates the name, checks fqn uniqueness against the owner's
// namespace and returns the populated base record. No store mutation
// happens here.
func (s *Service) newBase(name string, description string, owner *Entity, kind Kind) (*Entity, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	fqn := owner.Name + "/" + name
	if _, taken := s.store.fqns[fqn]; taken {
		return nil, ValueErrorf("you already have something called %q", name)
	}
	return &Entity{
		ID:          core.NewULID(),
		Name:        name,
		FQN:         fqn,
		Description: description,
		OwnerID:     owner.ID,
		Public:      true,
		Kind:        kind,
	}, nil
}

// register inserts the entity and records it on the owner's owns list.
func (s *Service) register(e *Entity, owner *Entity) {
	s.store.insert(e)
	owner.User.Owns = append(owner.User.Owns, e.ID)
}

// CreateObject creates a plain object and places it in the owner's
// inventory.
func (s *Service) CreateObject(name, description string, owner *Entity) (ulid.ULID, error) {
	e, err := s.newBase(name, description, owner, KindObject)
	if err != nil {
		return ulid.ULID{}, err
	}
	s.register(e, owner)
	owner.User.Inventory = append(owner.User.Inventory, e.ID)
	return e.ID, nil
}

// CreateRoom creates an empty room.
func (s *Service) CreateRoom(name, description string, owner *Entity) (ulid.ULID, error) {
	e, err := s.newBase(name, description, owner, KindRoom)
	if err != nil {
		return ulid.ULID{}, err
	}
	e.Room = &RoomData{}
	s.register(e, owner)
	return e.ID, nil
}

// CreateExit creates an exit from source to destination and registers it
// on both rooms. The owner must satisfy the destination's admission
// policy, the rooms must differ, and no exit may already link the pair.
func (s *Service) CreateExit(name, description string, owner, source, destination *Entity) (ulid.ULID, error) {
	if source.Kind != KindRoom || destination.Kind != KindRoom {
		return ulid.ULID{}, TypeErrorf("exits can only connect rooms")
	}
	e, err := s.newBase(name, description, owner, KindExit)
	if err != nil {
		return ulid.ULID{}, err
	}
	if err := CheckAdmission(destination, owner.ID); err != nil {
		return ulid.ULID{}, err
	}
	if source.ID == destination.ID {
		return ulid.ULID{}, ValueErrorf("an exit cannot connect a room to itself")
	}
	for _, exitID := range source.Room.ExitsOut {
		if slices.Contains(destination.Room.ExitsIn, exitID) {
			return ulid.ULID{}, ValueErrorf("an exit to that destination already exists")
		}
	}
	e.Exit = &ExitData{
		Source:      source.ID,
		Destination: destination.ID,
		LeaveUser:   fmt.Sprintf("You leave %q via %q.", source.Name, name),
		LeaveRoom:   fmt.Sprintf("%s leaves for %q via %q.", namePlaceholder, destination.Name, name),
		ArriveRoom:  fmt.Sprintf("%s arrives from %q.", namePlaceholder, source.Name),
	}
	s.register(e, owner)
	source.Room.ExitsOut = append(source.Room.ExitsOut, e.ID)
	destination.Room.ExitsIn = append(destination.Room.ExitsIn, e.ID)
	return e.ID, nil
}

// CreateUser creates a self-owned user in limbo (no location). The raw
// password is hashed before anything is stored.
func (s *Service) CreateUser(name, description, password, email string) (ulid.ULID, error) {
	if err := validateName(name); err != nil {
		return ulid.ULID{}, err
	}
	if _, taken := s.store.users[name]; taken {
		return ulid.ULID{}, ValueErrorf("username %q already exists", name)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ulid.ULID{}, err
	}
	e := &Entity{
		ID:          core.NewULID(),
		Name:        name,
		FQN:         name + "/" + name,
		Description: description,
		Public:      true,
		Kind:        KindUser,
		User: &UserData{
			PasswordHash: hash,
			Email:        email,
			CreatedAt:    time.Now().UTC(),
		},
	}
	e.OwnerID = e.ID
	e.User.Owns = []ulid.ULID{e.ID}
	s.store.insert(e)
	return e.ID, nil
}

// Build creates a room and, when both exit names are given, a pair of
// exits between the user's current room and the new room. Exit creation
// reuses CreateExit's full validation.
func (s *Service) Build(name, description string, user *Entity, exitName, returnName, exitDescription, returnDescription string) (ulid.ULID, error) {
	roomID, err := s.CreateRoom(name, description, user)
	if err != nil {
		return ulid.ULID{}, err
	}
	if exitName == "" || returnName == "" {
		return roomID, nil
	}
	if user.User.LocationID == nil {
		return ulid.ULID{}, ValueErrorf("you are nowhere to dig from")
	}
	current, ok := s.store.Get(*user.User.LocationID)
	if !ok {
		return ulid.ULID{}, ValueErrorf("your current location no longer exists")
	}
	room, _ := s.store.Get(roomID)
	if _, err := s.CreateExit(exitName, exitDescription, user, current, room); err != nil {
		return ulid.ULID{}, err
	}
	if _, err := s.CreateExit(returnName, returnDescription, user, room, current); err != nil {
		return ulid.ULID{}, err
	}
	return roomID, nil
}

// Clone creates a copy of a plain object, owned by user, carrying the
// source's description, public flag and a shallow copy of every extra
// attribute. The source must be visible to the user.
func (s *Service) Clone(sourceID ulid.ULID, targetName string, user *Entity) (ulid.ULID, error) {
	source, ok := s.store.Get(sourceID)
	if !ok {
		return ulid.ULID{}, ValueErrorf("there is nothing to clone")
	}
	if source.Kind != KindObject {
		return ulid.ULID{}, ValueErrorf("you can only clone objects")
	}
	if !IsVisible(source, user) {
		return ulid.ULID{}, PermissionErrorf("you can't clone that object")
	}
	cloneID, err := s.CreateObject(targetName, source.Description, user)
	if err != nil {
		return ulid.ULID{}, err
	}
	clone, _ := s.store.Get(cloneID)
	clone.Public = source.Public
	if source.Attrs != nil {
		for pair := source.Attrs.Oldest(); pair != nil; pair = pair.Next() {
			clone.SetAttr(pair.Key, pair.Value)
		}
	}
	return cloneID, nil
}
