// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package command_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapestrymud/tapestry/internal/command"
	"github.com/tapestrymud/tapestry/internal/world"
)

// newInterpreter wraps the fixture world in an engine with all builtins
// registered.
func newInterpreter(t *testing.T) (*command.Interpreter, *world.Service, *recorder, *world.Entity, *world.Entity, *world.Entity) {
	t.Helper()
	svc, rec, alice, hall, thing := fixture(t)
	reg := command.NewRegistry()
	command.RegisterBuiltins(reg)
	interp := command.NewInterpreter(world.NewEngine(svc), reg)
	return interp, svc, rec, alice, hall, thing
}

func TestEval_SpeechSigils(t *testing.T) {
	interp, svc, rec, alice, _, _ := newInterpreter(t)
	bobID, err := svc.CreateUser("bob", "", "pw", "")
	require.NoError(t, err)
	bob, _ := svc.Store().Get(bobID)
	require.NoError(t, svc.Teleport(bob, "alice/hall"))
	rec.notices = nil

	t.Run("say", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, `"Hello, world!`)
		assert.Equal(t, []string{`You say, "Hello, world!".`}, rec.textsFor(alice.ID))
		assert.Equal(t, []string{`alice says, "Hello, world!".`}, rec.textsFor(bob.ID))
		rec.notices = nil
	})

	t.Run("shout", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "!Oi oi")
		assert.Equal(t, []string{`You shout, "Oi oi".`}, rec.textsFor(alice.ID))
		assert.Equal(t, []string{`alice shouts, "Oi oi".`}, rec.textsFor(bob.ID))
		rec.notices = nil
	})

	t.Run("emote reads the same to everyone", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, ":smiles")
		assert.Equal(t, []string{"alice smiles"}, rec.textsFor(alice.ID))
		assert.Equal(t, []string{"alice smiles"}, rec.textsFor(bob.ID))
		rec.notices = nil
	})

	t.Run("tell", func(t *testing.T) {
		carolID, err := svc.CreateUser("carol", "", "pw", "")
		require.NoError(t, err)
		carol, _ := svc.Store().Get(carolID)
		require.NoError(t, svc.Teleport(carol, "alice/hall"))
		rec.notices = nil

		interp.Eval(context.Background(), alice.ID, "@bob Hello")
		assert.Equal(t, []string{`You say to bob, "Hello".`}, rec.textsFor(alice.ID))
		assert.Equal(t, []string{`alice says to you, "Hello".`}, rec.textsFor(bob.ID))
		assert.Equal(t, []string{`alice says to bob, "Hello".`}, rec.textsFor(carol.ID))
		rec.notices = nil
	})

	t.Run("tell someone absent", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "@mallory psst")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "mallory")
		rec.notices = nil
	})
}

func TestEval_Builtins(t *testing.T) {
	interp, svc, rec, alice, _, _ := newInterpreter(t)

	t.Run("create with alias", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "mk lamp A brass lamp.")
		_, ok := svc.Store().ByFQN("alice/lamp")
		assert.True(t, ok)
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "alice/lamp")
		rec.notices = nil
	})

	t.Run("missing argument is an arity error", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "create")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "create what?")
		rec.notices = nil
	})

	t.Run("verbs are case-insensitive", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "Inventory")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "You are carrying")
		rec.notices = nil
	})

	t.Run("domain errors reach the player verbatim", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "teleport alice/nowhere")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "no such place")
		rec.notices = nil
	})

	t.Run("remove with a second argument deletes an attribute", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "set thing colour red")
		rec.notices = nil

		interp.Eval(context.Background(), alice.ID, "remove thing colour")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], `You remove "colour" from "thing".`)

		thing, ok := svc.Store().ByFQN("alice/thing")
		require.True(t, ok)
		_, found := thing.Attr("colour")
		assert.False(t, found)
		rec.notices = nil
	})

	t.Run("question mark is help", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "?")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Speech shortcuts")
		rec.notices = nil
	})
}

func TestEval_VerbAttributes(t *testing.T) {
	interp, svc, rec, alice, hall, thing := newInterpreter(t)

	require.NoError(t, svc.SetAttribute(thing, "wibble", "the thing wibbles", alice))
	require.NoError(t, svc.SetAttribute(hall, "wibble", "the hall wibbles", alice))
	require.NoError(t, svc.SetAttribute(alice, "wibble", "you wibble", alice))
	rec.notices = nil

	t.Run("user attribute wins", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "wibble thing")
		assert.Equal(t, []string{"you wibble"}, rec.textsFor(alice.ID))
		rec.notices = nil
	})

	t.Run("then the room", func(t *testing.T) {
		require.NoError(t, svc.RemoveAttribute(alice, "wibble", alice))
		interp.Eval(context.Background(), alice.ID, "wibble thing")
		assert.Equal(t, []string{"the hall wibbles"}, rec.textsFor(alice.ID))
		rec.notices = nil
	})

	t.Run("then the direct object", func(t *testing.T) {
		require.NoError(t, svc.RemoveAttribute(hall, "wibble", alice))
		interp.Eval(context.Background(), alice.ID, "wibble thing")
		assert.Equal(t, []string{"the thing wibbles"}, rec.textsFor(alice.ID))
		rec.notices = nil
	})

	t.Run("then the indirect object", func(t *testing.T) {
		require.NoError(t, svc.RemoveAttribute(thing, "wibble", alice))
		require.NoError(t, svc.SetAttribute(thing, "prod", "the thing jumps", alice))
		interp.Eval(context.Background(), alice.ID, "prod nothing with thing")
		assert.Equal(t, []string{"the thing jumps"}, rec.textsFor(alice.ID))
		rec.notices = nil
	})

	t.Run("non-string attribute renders as JSON", func(t *testing.T) {
		require.NoError(t, svc.SetAttribute(thing, "weigh", 42, alice))
		interp.Eval(context.Background(), alice.ID, "weigh thing")
		assert.Equal(t, []string{"42"}, rec.textsFor(alice.ID))
		rec.notices = nil
	})
}

func TestEval_ExitFallback(t *testing.T) {
	interp, svc, rec, alice, hall, _ := newInterpreter(t)

	denID, err := svc.CreateRoom("den", "", alice)
	require.NoError(t, err)
	den, _ := svc.Store().Get(denID)
	exitID, err := svc.CreateExit("north", "", alice, hall, den)
	require.NoError(t, err)
	exit, _ := svc.Store().Get(exitID)
	require.NoError(t, svc.AddAlias(exit, "n", alice))
	rec.notices = nil

	t.Run("exit name moves the user", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "north")
		require.NotNil(t, alice.User.LocationID)
		assert.Equal(t, den.ID, *alice.User.LocationID)
		assert.Equal(t, []string{`You leave "hall" via "north".`}, rec.textsFor(alice.ID))
		rec.notices = nil
	})

	t.Run("exit alias moves the user too", func(t *testing.T) {
		require.NoError(t, svc.Teleport(alice, "alice/hall"))
		rec.notices = nil
		interp.Eval(context.Background(), alice.ID, "n")
		assert.Equal(t, den.ID, *alice.User.LocationID)
	})
}

func TestEval_LastResorts(t *testing.T) {
	interp, svc, rec, alice, hall, _ := newInterpreter(t)

	t.Run("room huh attribute", func(t *testing.T) {
		require.NoError(t, svc.SetAttribute(hall, "huh", "What?", alice))
		rec.notices = nil
		interp.Eval(context.Background(), alice.ID, "wibble ntoll with bongo")
		assert.Equal(t, []string{"What?"}, rec.textsFor(alice.ID))
		rec.notices = nil
	})

	t.Run("fallback quotes the input", func(t *testing.T) {
		require.NoError(t, svc.RemoveAttribute(hall, "huh", alice))
		rec.notices = nil
		interp.Eval(context.Background(), alice.ID, "wibble ntoll with bongo")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.True(t, strings.HasPrefix(texts[0], `"wibble ntoll with bongo", `))
		assert.Greater(t, len(texts[0]), len(`"wibble ntoll with bongo", `))
		rec.notices = nil
	})

	t.Run("blank input is ignored", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "   ")
		assert.Empty(t, rec.notices)
	})

	t.Run("ambiguous reference asks for disambiguation", func(t *testing.T) {
		interp, svc, rec, alice, _, thing := newInterpreter(t)
		otherID, err := svc.CreateObject("thing2", "", alice)
		require.NoError(t, err)
		other, _ := svc.Store().Get(otherID)
		require.NoError(t, svc.AddAlias(other, "thing", alice))
		_ = thing
		rec.notices = nil

		interp.Eval(context.Background(), alice.ID, "wibble thing")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "could mean any of")
	})
}

func TestEval_RemoveRoomByFQN(t *testing.T) {
	interp, svc, rec, alice, hall, thing := newInterpreter(t)
	bobID, err := svc.CreateUser("bob", "", "pw", "")
	require.NoError(t, err)
	carolID, err := svc.CreateUser("carol", "", "pw", "")
	require.NoError(t, err)
	carol, _ := svc.Store().Get(carolID)
	carol.User.Superuser = true
	rec.notices = nil

	t.Run("non-owner is refused", func(t *testing.T) {
		interp.Eval(context.Background(), bobID, "remove alice/hall")
		texts := rec.textsFor(bobID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "you do not own")
		_, ok := svc.Store().ByFQN("alice/hall")
		assert.True(t, ok, "the room must survive a refused removal")
		rec.notices = nil
	})

	t.Run("superuser removes it from anywhere", func(t *testing.T) {
		interp.Eval(context.Background(), carolID, "remove alice/hall")
		texts := rec.textsFor(carolID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], `"hall" is gone.`)

		_, ok := svc.Store().ByFQN("alice/hall")
		assert.False(t, ok)
		_, ok = svc.Store().Get(hall.ID)
		assert.False(t, ok)
		assert.Nil(t, alice.User.LocationID, "occupants are evicted to limbo")
		assert.Contains(t, alice.User.Inventory, thing.ID,
			"room contents return to their owner's inventory")
	})
}

func TestEval_Look(t *testing.T) {
	interp, svc, rec, alice, hall, _ := newInterpreter(t)
	bobID, err := svc.CreateUser("bob", "", "pw", "")
	require.NoError(t, err)
	bob, _ := svc.Store().Get(bobID)
	require.NoError(t, svc.Teleport(bob, "alice/hall"))
	rec.notices = nil

	interp.Eval(context.Background(), alice.ID, "look")
	texts := rec.textsFor(alice.ID)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "hall")
	assert.Contains(t, texts[0], "A great hall.")
	assert.Contains(t, texts[0], "bob")
	assert.Contains(t, texts[0], "thing")
	rec.notices = nil

	denID, err := svc.CreateRoom("den", "A cosy den.", alice)
	require.NoError(t, err)
	den, _ := svc.Store().Get(denID)
	_, err = svc.CreateExit("north", "A low doorway.", alice, hall, den)
	require.NoError(t, err)
	_, err = svc.CreateObject("rock", "", bob)
	require.NoError(t, err)
	rec.notices = nil

	t.Run("an exit shows where it leads", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "look north")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "[ north ]")
		assert.Contains(t, texts[0], "A low doorway.")
		assert.Contains(t, texts[0], "Leads to: den")
		rec.notices = nil
	})

	t.Run("a user shows what they carry", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "look bob")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "[ bob ]")
		assert.Contains(t, texts[0], "Carrying: rock")
		rec.notices = nil
	})

	t.Run("a room renders its full view", func(t *testing.T) {
		interp.Eval(context.Background(), alice.ID, "look alice/den")
		texts := rec.textsFor(alice.ID)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "[ den ]")
		assert.Contains(t, texts[0], "A cosy den.")
		rec.notices = nil
	})
}
