// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapestrymud/tapestry/internal/world"
)

func TestLook(t *testing.T) {
	svc, _, alice, hall := newTestService(t)
	bob := addUser(t, svc, "bob", hall)
	denID, err := svc.CreateRoom("den", "", alice)
	require.NoError(t, err)
	den, _ := svc.Store().Get(denID)
	_, err = svc.CreateExit("north", "", alice, hall, den)
	require.NoError(t, err)

	lampID, err := svc.CreateObject("lamp", "", alice)
	require.NoError(t, err)
	require.True(t, svc.Drop(lampID, alice))
	coinID, err := svc.CreateObject("coin", "", alice)
	require.NoError(t, err)
	coin, _ := svc.Store().Get(coinID)
	require.NoError(t, world.SetVisible(coin, false, alice))
	require.True(t, svc.Drop(coinID, alice))

	ctx, err := svc.Look(bob)
	require.NoError(t, err)
	assert.Equal(t, hall.ID, ctx.Room.ID)
	require.Len(t, ctx.Exits, 1)
	assert.Equal(t, "north", ctx.Exits[0].Name)
	require.Len(t, ctx.Users, 1)
	assert.Equal(t, "alice", ctx.Users[0].Name, "the viewer is not listed")
	require.Len(t, ctx.Things, 1)
	assert.Equal(t, "lamp", ctx.Things[0].Name, "hidden objects are filtered")

	t.Run("hidden things visible to their owner", func(t *testing.T) {
		ctx, err := svc.Look(alice)
		require.NoError(t, err)
		assert.Len(t, ctx.Things, 2)
	})

	t.Run("limbo", func(t *testing.T) {
		bob.User.LocationID = nil
		_, err := svc.Look(bob)
		require.Error(t, err)
		assert.True(t, world.HasCode(err, world.CodeValue))
	})
}

func TestDetail(t *testing.T) {
	svc, _, alice, hall := newTestService(t)
	bob := addUser(t, svc, "bob", hall)

	lampID, err := svc.CreateObject("lamp", "A brass lamp.", alice)
	require.NoError(t, err)
	lamp, _ := svc.Store().Get(lampID)
	require.NoError(t, svc.SetAttribute(lamp, "shine", "bright", alice))

	t.Run("owner sees attributes", func(t *testing.T) {
		ctx, err := svc.Detail(lamp, alice)
		require.NoError(t, err)
		assert.Equal(t, "alice", ctx.OwnerName)
		require.Len(t, ctx.Attrs, 1)
		assert.Equal(t, "shine", ctx.Attrs[0].Name)
	})

	t.Run("non-owner sees no attributes", func(t *testing.T) {
		ctx, err := svc.Detail(lamp, bob)
		require.NoError(t, err)
		assert.Empty(t, ctx.Attrs)
	})

	t.Run("hidden entity is refused", func(t *testing.T) {
		require.NoError(t, world.SetVisible(lamp, false, alice))
		_, err := svc.Detail(lamp, bob)
		require.Error(t, err)
		assert.True(t, world.HasCode(err, world.CodePermission))
	})

	t.Run("exit endpoints", func(t *testing.T) {
		denID, err := svc.CreateRoom("den", "", alice)
		require.NoError(t, err)
		den, _ := svc.Store().Get(denID)
		exitID, err := svc.CreateExit("north", "", alice, hall, den)
		require.NoError(t, err)
		exit, _ := svc.Store().Get(exitID)

		ctx, err := svc.Detail(exit, bob)
		require.NoError(t, err)
		assert.Equal(t, "hall", ctx.SourceName)
		assert.Equal(t, "den", ctx.DestinationName)
	})

	t.Run("room admission lists for the owner only", func(t *testing.T) {
		require.NoError(t, svc.AddExclude(hall, "bob", alice))
		ctx, err := svc.Detail(hall, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, ctx.ExcludeNames)

		ctx, err = svc.Detail(hall, bob)
		require.NoError(t, err)
		assert.Empty(t, ctx.ExcludeNames)
	})
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "lamp", true},
		{"digits", "lamp2", true},
		{"unicode letters", "häst", true},
		{"empty", "", false},
		{"space", "bad name", false},
		{"slash", "a/b", false},
		{"punctuation", "lamp!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, world.ValidName(tt.input))
		})
	}
}
