// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"slices"
	"strings"
)

// reservedAttrNames are attribute names shadowed by core entity fields.
// They cannot be set or removed as extra attributes, with one carve-out:
// setting "description" updates the entity's description field.
var reservedAttrNames = map[string]struct{}{
	"id":          {},
	"name":        {},
	"fqn":         {},
	"description": {},
	"aliases":     {},
	"owner":       {},
	"public":      {},
	"kind":        {},
	"leaveuser":   {},
	"leaveroom":   {},
	"arriveroom":  {},
}

// AddAlias records an additional name the entity answers to. Aliases
// follow the same character rules as names.
func (s *Service) AddAlias(e *Entity, alias string, user *Entity) error {
	if !IsOwner(e, user) {
		return PermissionErrorf("you do not own %q", e.Name)
	}
	if err := validateName(alias); err != nil {
		return err
	}
	if slices.Contains(e.Aliases, alias) {
		return ValueErrorf("%q already answers to %q", e.Name, alias)
	}
	e.Aliases = append(e.Aliases, alias)
	return nil
}

// RemoveAlias drops an alias from the entity. Removing an alias the
// entity never had reports which one was missing.
func (s *Service) RemoveAlias(e *Entity, alias string, user *Entity) error {
	if !IsOwner(e, user) {
		return PermissionErrorf("you do not own %q", e.Name)
	}
	if !slices.Contains(e.Aliases, alias) {
		return ValueErrorf("%q does not answer to %q", e.Name, alias)
	}
	e.Aliases = slices.DeleteFunc(slices.Clone(e.Aliases), func(a string) bool {
		return a == alias
	})
	return nil
}

// SetAttribute stores an arbitrary attribute on the entity. Attribute
// names follow the same character rules as entity names and the value
// must survive a JSON round trip. Setting "description" updates the
// description field instead; the remaining reserved names are rejected.
func (s *Service) SetAttribute(e *Entity, name string, value any, user *Entity) error {
	if !IsOwner(e, user) {
		return PermissionErrorf("you do not own %q", e.Name)
	}
	if err := validateName(name); err != nil {
		return err
	}
	key := strings.ToLower(name)
	if key == "description" {
		text, ok := value.(string)
		if !ok {
			return TypeErrorf("description must be text")
		}
		e.Description = text
		return nil
	}
	if _, reserved := reservedAttrNames[key]; reserved {
		return ValueErrorf("%q is a reserved attribute name", name)
	}
	if !serializable(value) {
		return TypeErrorf("attribute value for %q cannot be stored", name)
	}
	e.SetAttr(name, value)
	return nil
}

// RemoveAttribute deletes an extra attribute. Reserved names cannot be
// removed, and removing an absent attribute reports which one was
// missing.
func (s *Service) RemoveAttribute(e *Entity, name string, user *Entity) error {
	if !IsOwner(e, user) {
		return PermissionErrorf("you do not own %q", e.Name)
	}
	if _, reserved := reservedAttrNames[strings.ToLower(name)]; reserved {
		return ValueErrorf("%q is a reserved attribute name", name)
	}
	if !e.DeleteAttr(name) {
		return ValueErrorf("%q has no attribute %q", e.Name, name)
	}
	return nil
}

// AddAllow puts a user on the room's allow list. Once the list is
// non-empty only listed users may enter through exits.
func (s *Service) AddAllow(room *Entity, username string, user *Entity) error {
	return s.editAdmission(room, username, user, func(r *RoomData, id *Entity) {
		if !slices.Contains(r.Allow, id.ID) {
			r.Allow = append(r.Allow, id.ID)
		}
	})
}

// RemoveAllow takes a user off the room's allow list.
func (s *Service) RemoveAllow(room *Entity, username string, user *Entity) error {
	return s.editAdmission(room, username, user, func(r *RoomData, id *Entity) {
		r.Allow = removeID(r.Allow, id.ID)
	})
}

// AddExclude bars a user from entering the room through exits.
func (s *Service) AddExclude(room *Entity, username string, user *Entity) error {
	return s.editAdmission(room, username, user, func(r *RoomData, id *Entity) {
		if !slices.Contains(r.Exclude, id.ID) {
			r.Exclude = append(r.Exclude, id.ID)
		}
	})
}

// RemoveExclude lifts a user's bar from the room.
func (s *Service) RemoveExclude(room *Entity, username string, user *Entity) error {
	return s.editAdmission(room, username, user, func(r *RoomData, id *Entity) {
		r.Exclude = removeID(r.Exclude, id.ID)
	})
}

func (s *Service) editAdmission(room *Entity, username string, user *Entity, apply func(*RoomData, *Entity)) error {
	if room.Kind != KindRoom {
		return TypeErrorf("%q is not a room", room.Name)
	}
	if !IsOwner(room, user) {
		return PermissionErrorf("you do not own %q", room.Name)
	}
	subject, ok := s.store.UserByName(username)
	if !ok {
		return ValueErrorf("no such user: %q", username)
	}
	apply(room.Room, subject)
	return nil
}
