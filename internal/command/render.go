// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package command

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tapestrymud/tapestry/internal/world"
)

// renderValue turns an attribute value into player-facing text. Strings
// pass through untouched; everything else is shown as JSON.
func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}

func renderLook(ctx *world.LookContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[ %s ]\n", ctx.Room.Name)
	b.WriteString(ctx.Room.Description)
	if len(ctx.Exits) > 0 {
		b.WriteString("\n\nExits: ")
		b.WriteString(strings.Join(entityNames(ctx.Exits), ", "))
	}
	if len(ctx.Users) > 0 {
		b.WriteString("\n\nAlso here: ")
		b.WriteString(strings.Join(entityNames(ctx.Users), ", "))
	}
	if len(ctx.Things) > 0 {
		b.WriteString("\n\nYou can see: ")
		b.WriteString(strings.Join(entityNames(ctx.Things), ", "))
	}
	return b.String()
}

// renderEntity is the short, non-privileged view of a single entity:
// name, aliases and description, plus where an exit leads or what a
// user is carrying (filtered by the viewer's visibility).
func renderEntity(svc *world.Service, e, viewer *world.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[ %s ]\n", e.Name)
	b.WriteString(e.Description)
	if len(e.Aliases) > 0 {
		fmt.Fprintf(&b, "\n\nAlso known as: %s", strings.Join(e.Aliases, ", "))
	}
	switch e.Kind {
	case world.KindExit:
		if dst, ok := svc.Store().Get(e.Exit.Destination); ok {
			fmt.Fprintf(&b, "\n\nLeads to: %s", dst.Name)
		}
	case world.KindUser:
		var names []string
		for _, id := range e.User.Inventory {
			if item, ok := svc.Store().Get(id); ok && world.IsVisible(item, viewer) {
				names = append(names, item.Name)
			}
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "\n\nCarrying: %s", strings.Join(names, ", "))
		}
	case world.KindObject, world.KindRoom:
	}
	return b.String()
}

func renderDetail(ctx *world.DetailContext) string {
	e := ctx.Entity
	var b strings.Builder
	fmt.Fprintf(&b, "[ %s ]\n", e.FQN)
	fmt.Fprintf(&b, "id: %s\n", e.ID)
	fmt.Fprintf(&b, "kind: %s\n", e.Kind)
	fmt.Fprintf(&b, "owner: %s\n", ctx.OwnerName)
	fmt.Fprintf(&b, "public: %t\n", e.Public)
	if len(e.Aliases) > 0 {
		fmt.Fprintf(&b, "aliases: %s\n", strings.Join(e.Aliases, ", "))
	}
	if e.Kind == world.KindExit {
		fmt.Fprintf(&b, "from: %s\n", ctx.SourceName)
		fmt.Fprintf(&b, "to: %s\n", ctx.DestinationName)
	}
	if len(ctx.AllowNames) > 0 {
		fmt.Fprintf(&b, "allow: %s\n", strings.Join(ctx.AllowNames, ", "))
	}
	if len(ctx.ExcludeNames) > 0 {
		fmt.Fprintf(&b, "exclude: %s\n", strings.Join(ctx.ExcludeNames, ", "))
	}
	fmt.Fprintf(&b, "description: %s", e.Description)
	for _, attr := range ctx.Attrs {
		fmt.Fprintf(&b, "\n%s: %s", attr.Name, renderValue(attr.Value))
	}
	return b.String()
}

func renderInventory(svc *world.Service, user *world.Entity) string {
	var names []string
	for _, id := range user.User.Inventory {
		if e, ok := svc.Store().Get(id); ok {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return "You are carrying nothing."
	}
	return "You are carrying: " + strings.Join(names, ", ")
}

func entityNames(entities []*world.Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}
