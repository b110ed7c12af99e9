// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package command

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/tapestrymud/tapestry/internal/world"
)

// Say renders the player speaking to their current room.
func Say(svc *world.Service, user, room *world.Entity, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	if room == nil {
		return world.ValueErrorf("there is nobody here to hear you")
	}
	svc.EmitToUser(user.ID, fmt.Sprintf("You say, %q.", message))
	svc.EmitToRoom(room.ID, fmt.Sprintf("%s says, %q.", user.Name, message), []ulid.ULID{user.ID})
	return nil
}

// Shout renders the player shouting to their current room.
func Shout(svc *world.Service, user, room *world.Entity, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	if room == nil {
		return world.ValueErrorf("there is nobody here to hear you")
	}
	svc.EmitToUser(user.ID, fmt.Sprintf("You shout, %q.", message))
	svc.EmitToRoom(room.ID, fmt.Sprintf("%s shouts, %q.", user.Name, message), []ulid.ULID{user.ID})
	return nil
}

// Emote renders a free-form action as the player's name followed by the
// message, shown identically to everyone in the room, the player
// included.
func Emote(svc *world.Service, user, room *world.Entity, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	if room == nil {
		return world.ValueErrorf("there is nobody here to see that")
	}
	svc.EmitToRoom(room.ID, user.Name+" "+message, nil)
	return nil
}

// Tell renders the player speaking to one named user in the room. The
// first word of args is the recipient's username, the rest the message.
func Tell(svc *world.Service, user, room *world.Entity, args string) error {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return world.ArityErrorf("tell who what? try: @username message")
	}
	username, message := parts[0], strings.TrimSpace(parts[1])
	if room == nil {
		return world.ValueErrorf("there is nobody here to hear you")
	}
	recipient, ok := svc.Store().UserByName(username)
	if !ok || recipient.User.LocationID == nil || *recipient.User.LocationID != room.ID {
		return world.ValueErrorf("%q is not here", username)
	}
	svc.EmitToUser(user.ID, fmt.Sprintf("You say to %s, %q.", recipient.Name, message))
	svc.EmitToUser(recipient.ID, fmt.Sprintf("%s says to you, %q.", user.Name, message))
	svc.EmitToRoom(room.ID, fmt.Sprintf("%s says to %s, %q.", user.Name, recipient.Name, message),
		[]ulid.ULID{user.ID, recipient.ID})
	return nil
}
