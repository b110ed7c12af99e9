// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

// Package world contains the entity graph domain model and its mutation
// operations.
//
// Every node in the graph is an Entity: a shared base record (id, name,
// fqn, description, aliases, owner, public flag, kind) plus exactly one
// kind-specific extension (RoomData, ExitData or UserData, nil for plain
// objects) and an ordered map of free-form extra attributes.
//
// Entities are created by Service operations, never by direct struct
// initialization; the operations maintain the store indexes and the
// cross-entity invariants (ownership closure, single containment,
// exit registration on both rooms).
package world

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies what sort of entity a graph node is.
// The set is closed: every switch over Kind must be exhaustive.
type Kind string

// Entity kinds.
const (
	KindObject Kind = "object"
	KindRoom   Kind = "room"
	KindExit   Kind = "exit"
	KindUser   Kind = "user"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Valid checks that the kind is a recognized value.
func (k Kind) Valid() bool {
	switch k {
	case KindObject, KindRoom, KindExit, KindUser:
		return true
	default:
		return false
	}
}

// Entity is a node in the world graph.
type Entity struct {
	ID          ulid.ULID `json:"id"`
	Name        string    `json:"name"`
	FQN         string    `json:"fqn"`
	Description string    `json:"description"`
	Aliases     []string  `json:"aliases,omitempty"`
	OwnerID     ulid.ULID `json:"owner"`
	Public      bool      `json:"public"`
	Kind        Kind      `json:"kind"`

	// Attrs holds the free-form extra attributes, in insertion order.
	// Reserved names (see attributes.go) never appear here.
	Attrs *orderedmap.OrderedMap[string, any] `json:"attrs,omitempty"`

	// Exactly one of these is non-nil, matching Kind; all nil for KindObject.
	Room *RoomData `json:"room,omitempty"`
	Exit *ExitData `json:"exit,omitempty"`
	User *UserData `json:"user,omitempty"`
}

// RoomData is the room-specific extension of an entity.
type RoomData struct {
	Contents []ulid.ULID `json:"contents"`
	ExitsOut []ulid.ULID `json:"exits_out"`
	// ExitsIn caches the exits arriving at this room so deletion never
	// needs a full graph scan.
	ExitsIn []ulid.ULID `json:"exits_in"`
	Allow   []ulid.ULID `json:"allow"`
	Exclude []ulid.ULID `json:"exclude"`
}

// ExitData is the exit-specific extension of an entity. Source and
// Destination always differ. The three message templates contain the
// {name} placeholder for the mover's display name.
type ExitData struct {
	Source      ulid.ULID `json:"source"`
	Destination ulid.ULID `json:"destination"`
	LeaveUser   string    `json:"leave_user"`
	LeaveRoom   string    `json:"leave_room"`
	ArriveRoom  string    `json:"arrive_room"`
}

// UserData is the user-specific extension of an entity.
type UserData struct {
	// LocationID is nil when the user is nowhere (limbo), the state of
	// freshly created and evicted users.
	LocationID   *ulid.ULID  `json:"location"`
	Inventory    []ulid.ULID `json:"inventory"`
	Owns         []ulid.ULID `json:"owns"`
	PasswordHash string      `json:"password_hash"`
	Email        string      `json:"email"`
	CreatedAt    time.Time   `json:"created_at"`
	LastLogin    *time.Time  `json:"last_login"`
	Superuser    bool        `json:"superuser"`
}

// MatchesName returns true if input equals the entity's name or one of
// its aliases.
func (e *Entity) MatchesName(input string) bool {
	return e.Name == input || slices.Contains(e.Aliases, input)
}

// Attr returns the named extra attribute.
func (e *Entity) Attr(name string) (any, bool) {
	if e.Attrs == nil {
		return nil, false
	}
	return e.Attrs.Get(name)
}

// SetAttr writes an extra attribute, initializing the map on first use.
// Callers validate the name and value; see Service.SetAttribute.
func (e *Entity) SetAttr(name string, value any) {
	if e.Attrs == nil {
		e.Attrs = orderedmap.New[string, any]()
	}
	e.Attrs.Set(name, value)
}

// DeleteAttr removes an extra attribute. Returns true if it was present.
func (e *Entity) DeleteAttr(name string) bool {
	if e.Attrs == nil {
		return false
	}
	_, present := e.Attrs.Delete(name)
	return present
}

// removeID deletes the first occurrence of id from ids, preserving order.
func removeID(ids []ulid.ULID, id ulid.ULID) []ulid.ULID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
