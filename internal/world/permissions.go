// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"slices"

	"github.com/oklog/ulid/v2"
)

// IsOwner reports whether user owns the entity. Superusers own everything.
func IsOwner(e *Entity, user *Entity) bool {
	if user.User != nil && user.User.Superuser {
		return true
	}
	return user.ID == e.OwnerID
}

// IsVisible reports whether the entity is visible to the user. Owners
// always see their own entities; everyone else sees what is public.
func IsVisible(e *Entity, user *Entity) bool {
	if IsOwner(e, user) {
		return true
	}
	return e.Public
}

// SetVisible changes the public flag of a plain object. Rooms, exits and
// users have fixed visibility.
func SetVisible(e *Entity, public bool, user *Entity) error {
	if e.Kind != KindObject {
		return TypeErrorf("you cannot change the visibility of that sort of thing")
	}
	if !IsOwner(e, user) {
		return PermissionErrorf("you cannot change the visibility of %q", e.Name)
	}
	e.Public = public
	return nil
}

// CheckAdmission evaluates a room's allow/exclude policy for the given
// user id. A non-empty allow list admits only its members; the exclude
// list bars its members. Allow is checked first.
func CheckAdmission(dest *Entity, userID ulid.ULID) error {
	if len(dest.Room.Allow) > 0 && !slices.Contains(dest.Room.Allow, userID) {
		return PermissionErrorf("you are not on the allow list for %q", dest.Name)
	}
	if slices.Contains(dest.Room.Exclude, userID) {
		return PermissionErrorf("you are excluded from %q", dest.Name)
	}
	return nil
}
