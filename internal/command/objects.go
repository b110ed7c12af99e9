// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package command

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/tapestrymud/tapestry/internal/world"
)

// ObjectRef is a direct or indirect object extracted from player input.
// Entity is non-nil when exactly one visible entity in context matched
// the text; otherwise the ref carries just the literal text.
type ObjectRef struct {
	Text   string
	Entity *world.Entity
}

// GetObjects splits the input after a verb into the pattern
//
//	DIRECT-OBJECT [PREPOSITION [INDIRECT-OBJECT]]
//
// Multi-word object names must be enclosed in double quotes; a quoted
// name of a single word is rejected, as is a quoted preposition. Each
// object name is then matched against the visible entities in context
// (the reserved words "me" and "here" name the player and the room).
// Zero matches leaves the ref unresolved; more than one is an error
// asking for disambiguation.
func GetObjects(svc *world.Service, user, room *world.Entity, args string) (dobj *ObjectRef, prep string, iobj *ObjectRef, err error) {
	tokens := strings.Fields(args)
	if len(tokens) == 0 {
		return nil, "", nil, nil
	}

	directText, rest, err := takeName(tokens)
	if err != nil {
		return nil, "", nil, err
	}
	dobj, err = resolveRef(svc, user, room, directText)
	if err != nil {
		return nil, "", nil, err
	}
	if len(rest) == 0 {
		return dobj, "", nil, nil
	}

	prep = rest[0]
	if strings.Contains(prep, `"`) {
		return nil, "", nil, world.ValueErrorf("prepositions cannot be quoted")
	}
	indirect := rest[1:]
	if len(indirect) == 0 {
		return dobj, prep, nil, nil
	}

	var indirectText string
	if len(indirect) == 1 {
		if strings.Contains(indirect[0], `"`) {
			return nil, "", nil, world.ValueErrorf("a quoted name needs more than one word")
		}
		indirectText = indirect[0]
	} else {
		if !strings.HasPrefix(indirect[0], `"`) || !strings.HasSuffix(indirect[len(indirect)-1], `"`) {
			return nil, "", nil, world.ValueErrorf("a multi-word name must be fully enclosed in quotes")
		}
		indirectText = strings.Join(indirect, " ")
		indirectText = strings.TrimSuffix(strings.TrimPrefix(indirectText, `"`), `"`)
		if strings.Contains(indirectText, `"`) {
			return nil, "", nil, world.ValueErrorf("stray quote inside a name")
		}
	}
	iobj, err = resolveRef(svc, user, room, indirectText)
	if err != nil {
		return nil, "", nil, err
	}
	return dobj, prep, iobj, nil
}

// takeName consumes one object name from the front of tokens: either a
// single unquoted word or a quoted multi-word run. Returns the name and
// the remaining tokens.
func takeName(tokens []string) (string, []string, error) {
	head := tokens[0]
	if !strings.HasPrefix(head, `"`) {
		if strings.Contains(head, `"`) {
			return "", nil, world.ValueErrorf("stray quote inside a name")
		}
		return head, tokens[1:], nil
	}
	if len(head) > 1 && strings.HasSuffix(head, `"`) {
		return "", nil, world.ValueErrorf("a quoted name needs more than one word")
	}
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.Contains(tok, `"`) {
			continue
		}
		if !strings.HasSuffix(tok, `"`) || strings.Count(tok, `"`) > 1 {
			return "", nil, world.ValueErrorf("stray quote inside a name")
		}
		words := append([]string{strings.TrimPrefix(head, `"`)}, tokens[1:i]...)
		words = append(words, strings.TrimSuffix(tok, `"`))
		return strings.Join(words, " "), tokens[i+1:], nil
	}
	return "", nil, world.ValueErrorf("unclosed quote in %q", strings.Join(tokens, " "))
}

// resolveRef matches name against the entities in context. Fully
// qualified names are checked against the context first and then the
// global fqn index; plain names are matched, by name or alias, against
// the visible contents of the room and then the player's inventory. A
// plain name matching more than one entity is an error listing the
// candidates.
func resolveRef(svc *world.Service, user, room *world.Entity, name string) (*ObjectRef, error) {
	ref := &ObjectRef{Text: name}
	switch name {
	case "me":
		ref.Entity = user
		return ref, nil
	case "here":
		ref.Entity = room
		return ref, nil
	}

	if strings.Contains(name, "/") {
		for _, id := range contextIDs(user, room) {
			e, ok := svc.Store().Get(id)
			if ok && e.FQN == name && world.IsVisible(e, user) {
				ref.Entity = e
				return ref, nil
			}
		}
		// Fully qualified names are globally unique, so rooms, exits
		// and entities held elsewhere can be named from anywhere.
		if e, ok := svc.Store().ByFQN(name); ok && world.IsVisible(e, user) {
			ref.Entity = e
		}
		return ref, nil
	}

	var matches []*world.Entity
	for _, id := range contextIDs(user, room) {
		e, ok := svc.Store().Get(id)
		if ok && e.MatchesName(name) && world.IsVisible(e, user) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
	case 1:
		ref.Entity = matches[0]
	default:
		var candidates []string
		for _, m := range matches {
			candidates = append(candidates, fmt.Sprintf("%s (%s)", m.Name, m.FQN))
		}
		return nil, world.ValueErrorf("%q could mean any of: %s", name, strings.Join(candidates, ", "))
	}
	return ref, nil
}

// ResolveOne resolves a name that must refer to exactly one entity.
func ResolveOne(svc *world.Service, user, room *world.Entity, name string) (*world.Entity, error) {
	ref, err := resolveRef(svc, user, room, name)
	if err != nil {
		return nil, err
	}
	if ref.Entity == nil {
		return nil, world.ValueErrorf("there is nothing called %q here", name)
	}
	return ref.Entity, nil
}

// contextIDs lists the entity ids in matching scope: the room's contents
// first, then the player's inventory. In limbo only the inventory is in
// scope.
func contextIDs(user, room *world.Entity) []ulid.ULID {
	var ids []ulid.ULID
	if room != nil {
		ids = append(ids, room.Room.Contents...)
	}
	ids = append(ids, user.User.Inventory...)
	return ids
}
