// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/tapestrymud/tapestry/internal/world"
)

// RegisterBuiltins binds every builtin verb and its aliases.
func RegisterBuiltins(reg *Registry) {
	reg.Register(handleCreate, "create", "make", "cr", "mk")
	reg.Register(handleBuild, "build", "dig")
	reg.Register(handleConnect, "connect")
	reg.Register(handleDescribe, "describe", "desc")
	reg.Register(handleRemove, "remove", "delete", "rm")
	reg.Register(handleTeleport, "teleport", "tp")
	reg.Register(handleClone, "clone")
	reg.Register(handleInventory, "inventory", "inv", "i")
	reg.Register(handleTake, "take", "get")
	reg.Register(handleDrop, "drop")
	reg.Register(handleSet, "set", "annotate")
	reg.Register(handleUnset, "unset")
	reg.Register(handleAlias, "alias")
	reg.Register(handleUnalias, "unalias")
	reg.Register(handleHide, "hide")
	reg.Register(handleShow, "show")
	reg.Register(handleAllow, "allow")
	reg.Register(handleUnallow, "unallow")
	reg.Register(handleExclude, "exclude")
	reg.Register(handleUnexclude, "unexclude")
	reg.Register(handleLook, "look", "l")
	reg.Register(handleDetail, "detail", "examine", "ex")
	reg.Register(handleHelp, "help", "?")
	reg.Register(handleSay, "say")
	reg.Register(handleShout, "shout")
	reg.Register(handleEmote, "emote", "me")
	reg.Register(handleTell, "tell")
}

// splitWord peels the first whitespace-delimited word off args.
func splitWord(args string) (string, string) {
	args = strings.TrimSpace(args)
	head, rest, _ := strings.Cut(args, " ")
	return head, strings.TrimSpace(rest)
}

func handleCreate(_ context.Context, ex *Execution) error {
	name, description := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("%s what? try: %s name description", ex.InvokedAs, ex.InvokedAs)
	}
	id, err := ex.Svc.CreateObject(name, description, ex.User)
	if err != nil {
		return err
	}
	obj, _ := ex.Svc.Store().Get(id)
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You create %q (%s).", obj.Name, obj.FQN))
	return nil
}

func handleBuild(_ context.Context, ex *Execution) error {
	name, description := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("build what? try: build name description")
	}
	id, err := ex.Svc.Build(name, description, ex.User, "", "", "", "")
	if err != nil {
		return err
	}
	room, _ := ex.Svc.Store().Get(id)
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You build the room %q (%s).", room.Name, room.FQN))
	return nil
}

// connect destination-fqn name [description]
func handleConnect(_ context.Context, ex *Execution) error {
	destFQN, rest := splitWord(ex.Args)
	name, description := splitWord(rest)
	if destFQN == "" || name == "" {
		return world.ArityErrorf("connect where via what? try: connect owner/room name description")
	}
	if ex.Room == nil {
		return world.ValueErrorf("there is nowhere to connect from")
	}
	destination, ok := ex.Svc.Store().ByFQN(destFQN)
	if !ok {
		return world.ValueErrorf("no such place: %q", destFQN)
	}
	if _, err := ex.Svc.CreateExit(name, description, ex.User, ex.Room, destination); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You connect %q to %q via %q.", ex.Room.Name, destination.Name, name))
	return nil
}

func handleDescribe(_ context.Context, ex *Execution) error {
	name, description := splitWord(ex.Args)
	if name == "" || description == "" {
		return world.ArityErrorf("describe what as what? try: describe name description")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if err := ex.Svc.SetAttribute(e, "description", description, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You describe %q.", e.Name))
	return nil
}

func handleRemove(_ context.Context, ex *Execution) error {
	name, attr := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("remove what? try: remove name [attribute]")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if attr != "" {
		if err := ex.Svc.RemoveAttribute(e, attr, ex.User); err != nil {
			return err
		}
		ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You remove %q from %q.", attr, e.Name))
		return nil
	}
	if e.Kind == world.KindUser {
		return world.TypeErrorf("users cannot be removed")
	}
	// The deletion operations refuse silently; surface the reason first.
	if !world.IsOwner(e, ex.User) {
		return world.PermissionErrorf("you do not own %q", e.Name)
	}
	var removed bool
	switch e.Kind {
	case world.KindObject:
		removed = ex.Svc.DeleteObject(e.ID, ex.User)
	case world.KindRoom:
		removed = ex.Svc.DeleteRoom(e.ID, ex.User)
	case world.KindExit:
		removed = ex.Svc.DeleteExit(e.ID, ex.User)
	case world.KindUser:
	}
	if !removed {
		return world.ValueErrorf("%q could not be removed", e.Name)
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("%q is gone.", e.Name))
	return nil
}

func handleTeleport(_ context.Context, ex *Execution) error {
	fqn, _ := splitWord(ex.Args)
	if fqn == "" {
		return world.ArityErrorf("teleport where? try: teleport owner/room")
	}
	return ex.Svc.Teleport(ex.User, fqn)
}

func handleClone(_ context.Context, ex *Execution) error {
	source, targetName := splitWord(ex.Args)
	if source == "" || targetName == "" {
		return world.ArityErrorf("clone what as what? try: clone name newname")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, source)
	if err != nil {
		return err
	}
	id, err := ex.Svc.Clone(e.ID, targetName, ex.User)
	if err != nil {
		return err
	}
	clone, _ := ex.Svc.Store().Get(id)
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You clone %q into %q (%s).", e.Name, clone.Name, clone.FQN))
	return nil
}

func handleInventory(_ context.Context, ex *Execution) error {
	ex.Svc.EmitToUser(ex.User.ID, renderInventory(ex.Svc, ex.User))
	return nil
}

func handleTake(_ context.Context, ex *Execution) error {
	name, _ := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("%s what? try: %s name", ex.InvokedAs, ex.InvokedAs)
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if !ex.Svc.Take(e.ID, ex.User) {
		return world.ValueErrorf("you cannot take %q", e.Name)
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You take %q.", e.Name))
	ex.Svc.EmitToRoom(ex.Room.ID, fmt.Sprintf("%s takes %q.", ex.User.Name, e.Name), []ulid.ULID{ex.User.ID})
	return nil
}

func handleDrop(_ context.Context, ex *Execution) error {
	name, _ := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("drop what? try: drop name")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if !ex.Svc.Drop(e.ID, ex.User) {
		return world.ValueErrorf("you cannot drop %q", e.Name)
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You drop %q.", e.Name))
	ex.Svc.EmitToRoom(ex.Room.ID, fmt.Sprintf("%s drops %q.", ex.User.Name, e.Name), []ulid.ULID{ex.User.ID})
	return nil
}

// set name attribute value...
func handleSet(_ context.Context, ex *Execution) error {
	name, rest := splitWord(ex.Args)
	attr, value := splitWord(rest)
	if name == "" || attr == "" || value == "" {
		return world.ArityErrorf("%s what? try: %s name attribute value", ex.InvokedAs, ex.InvokedAs)
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if err := ex.Svc.SetAttribute(e, attr, value, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You set %q on %q.", attr, e.Name))
	return nil
}

func handleUnset(_ context.Context, ex *Execution) error {
	name, attr := splitWord(ex.Args)
	if name == "" || attr == "" {
		return world.ArityErrorf("unset what? try: unset name attribute")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if err := ex.Svc.RemoveAttribute(e, attr, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("You unset %q on %q.", attr, e.Name))
	return nil
}

func handleAlias(_ context.Context, ex *Execution) error {
	name, alias := splitWord(ex.Args)
	if name == "" || alias == "" {
		return world.ArityErrorf("alias what as what? try: alias name newalias")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if err := ex.Svc.AddAlias(e, alias, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("%q now also answers to %q.", e.Name, alias))
	return nil
}

func handleUnalias(_ context.Context, ex *Execution) error {
	name, alias := splitWord(ex.Args)
	if name == "" || alias == "" {
		return world.ArityErrorf("unalias what? try: unalias name alias")
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if err := ex.Svc.RemoveAlias(e, alias, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf("%q no longer answers to %q.", e.Name, alias))
	return nil
}

func handleHide(_ context.Context, ex *Execution) error {
	return setVisibility(ex, false, "You hide %q.")
}

func handleShow(_ context.Context, ex *Execution) error {
	return setVisibility(ex, true, "You reveal %q.")
}

func setVisibility(ex *Execution, public bool, done string) error {
	name, _ := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("%s what? try: %s name", ex.InvokedAs, ex.InvokedAs)
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if err := world.SetVisible(e, public, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf(done, e.Name))
	return nil
}

func handleAllow(_ context.Context, ex *Execution) error {
	return editAdmission(ex, ex.Svc.AddAllow, "%q may now enter this room.")
}

func handleUnallow(_ context.Context, ex *Execution) error {
	return editAdmission(ex, ex.Svc.RemoveAllow, "%q is off the allow list.")
}

func handleExclude(_ context.Context, ex *Execution) error {
	return editAdmission(ex, ex.Svc.AddExclude, "%q is barred from this room.")
}

func handleUnexclude(_ context.Context, ex *Execution) error {
	return editAdmission(ex, ex.Svc.RemoveExclude, "%q is no longer barred from this room.")
}

func editAdmission(ex *Execution, op func(*world.Entity, string, *world.Entity) error, done string) error {
	username, _ := splitWord(ex.Args)
	if username == "" {
		return world.ArityErrorf("%s who? try: %s username", ex.InvokedAs, ex.InvokedAs)
	}
	if ex.Room == nil {
		return world.ValueErrorf("you are nowhere")
	}
	if err := op(ex.Room, username, ex.User); err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, fmt.Sprintf(done, username))
	return nil
}

func handleLook(_ context.Context, ex *Execution) error {
	name, _ := splitWord(ex.Args)
	if name == "" {
		ctx, err := ex.Svc.Look(ex.User)
		if err != nil {
			return err
		}
		ex.Svc.EmitToUser(ex.User.ID, renderLook(ctx))
		return nil
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	if e.Kind == world.KindRoom {
		ex.Svc.EmitToUser(ex.User.ID, renderLook(ex.Svc.LookAt(e, ex.User)))
		return nil
	}
	ex.Svc.EmitToUser(ex.User.ID, renderEntity(ex.Svc, e, ex.User))
	return nil
}

func handleDetail(_ context.Context, ex *Execution) error {
	name, _ := splitWord(ex.Args)
	if name == "" {
		return world.ArityErrorf("%s what? try: %s name", ex.InvokedAs, ex.InvokedAs)
	}
	e, err := ResolveOne(ex.Svc, ex.User, ex.Room, name)
	if err != nil {
		return err
	}
	ctx, err := ex.Svc.Detail(e, ex.User)
	if err != nil {
		return err
	}
	ex.Svc.EmitToUser(ex.User.ID, renderDetail(ctx))
	return nil
}

func handleSay(_ context.Context, ex *Execution) error {
	return Say(ex.Svc, ex.User, ex.Room, ex.Args)
}

func handleShout(_ context.Context, ex *Execution) error {
	return Shout(ex.Svc, ex.User, ex.Room, ex.Args)
}

func handleEmote(_ context.Context, ex *Execution) error {
	return Emote(ex.Svc, ex.User, ex.Room, ex.Args)
}

func handleTell(_ context.Context, ex *Execution) error {
	return Tell(ex.Svc, ex.User, ex.Room, ex.Args)
}

const helpText = `Speech shortcuts:
  "message           say something to the room
  !message           shout something to the room
  :action            emote an action
  @username message  say something to one person

Getting around:
  look (l)                    describe your surroundings
  detail name (examine, ex)   inspect something closely
  exitname                    walk through an exit
  teleport owner/room (tp)    jump straight to a room
  inventory (inv, i)          list what you carry
  take name / drop name       pick things up, put them down

Making things:
  create name description     make an object (make, cr, mk)
  build name description      make a room (dig)
  connect owner/room name     make an exit from here
  clone name newname          copy an object
  describe name description   re-describe something you own
  set name attribute value    annotate something you own
  unset name attribute        remove an annotation
  alias name word             add an extra name
  hide name / show name       toggle an object's visibility
  remove name [attribute]     delete something you own

Room policy (owners only):
  allow username / unallow username
  exclude username / unexclude username`

func handleHelp(_ context.Context, ex *Execution) error {
	ex.Svc.EmitToUser(ex.User.ID, helpText)
	return nil
}
