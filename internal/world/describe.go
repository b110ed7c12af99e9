// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import "github.com/oklog/ulid/v2"

// LookContext is everything a viewer can see in a room, already
// filtered by visibility.
type LookContext struct {
	Room   *Entity
	Exits  []*Entity
	Users  []*Entity
	Things []*Entity
}

// Look gathers the viewer's current room, its exits, and the visible
// occupants and objects. The viewer is omitted from the occupant list.
func (s *Service) Look(viewer *Entity) (*LookContext, error) {
	if viewer.User.LocationID == nil {
		return nil, ValueErrorf("you are floating in the void")
	}
	room, ok := s.store.Get(*viewer.User.LocationID)
	if !ok || room.Kind != KindRoom {
		return nil, ValueErrorf("you are somewhere that no longer exists")
	}
	return s.LookAt(room, viewer), nil
}

// LookAt gathers what the viewer can see in the given room. The viewer
// is omitted from the occupant list.
func (s *Service) LookAt(room, viewer *Entity) *LookContext {
	ctx := &LookContext{Room: room}
	for _, exitID := range room.Room.ExitsOut {
		if exit, ok := s.store.Get(exitID); ok && IsVisible(exit, viewer) {
			ctx.Exits = append(ctx.Exits, exit)
		}
	}
	for _, id := range room.Room.Contents {
		e, ok := s.store.Get(id)
		if !ok || id == viewer.ID {
			continue
		}
		switch {
		case e.Kind == KindUser:
			ctx.Users = append(ctx.Users, e)
		case IsVisible(e, viewer):
			ctx.Things = append(ctx.Things, e)
		}
	}
	return ctx
}

// AttrEntry is a named attribute in insertion order.
type AttrEntry struct {
	Name  string
	Value any
}

// DetailContext is the owner-aware close inspection of an entity.
// Attribute and admission data appear only for the entity's owner.
type DetailContext struct {
	Entity          *Entity
	OwnerName       string
	Attrs           []AttrEntry
	SourceName      string
	DestinationName string
	AllowNames      []string
	ExcludeNames    []string
}

// Detail inspects an entity on behalf of a viewer. Hidden entities are
// refused outright rather than partially revealed.
func (s *Service) Detail(e *Entity, viewer *Entity) (*DetailContext, error) {
	if !IsVisible(e, viewer) {
		return nil, PermissionErrorf("you cannot examine %q", e.Name)
	}
	ctx := &DetailContext{Entity: e}
	if owner, ok := s.store.Get(e.OwnerID); ok {
		ctx.OwnerName = owner.Name
	}
	owned := IsOwner(e, viewer)
	if owned && e.Attrs != nil {
		for pair := e.Attrs.Oldest(); pair != nil; pair = pair.Next() {
			ctx.Attrs = append(ctx.Attrs, AttrEntry{Name: pair.Key, Value: pair.Value})
		}
	}
	switch e.Kind {
	case KindExit:
		if src, ok := s.store.Get(e.Exit.Source); ok {
			ctx.SourceName = src.Name
		}
		if dst, ok := s.store.Get(e.Exit.Destination); ok {
			ctx.DestinationName = dst.Name
		}
	case KindRoom:
		if owned {
			ctx.AllowNames = s.usernames(e.Room.Allow)
			ctx.ExcludeNames = s.usernames(e.Room.Exclude)
		}
	case KindObject, KindUser:
	}
	return ctx, nil
}

func (s *Service) usernames(ids []ulid.ULID) []string {
	var names []string
	for _, id := range ids {
		if u, ok := s.store.Get(id); ok {
			names = append(names, u.Name)
		}
	}
	return names
}
