// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapestrymud/tapestry/internal/snapshot"
	"github.com/tapestrymud/tapestry/internal/world"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func buildWorld(t *testing.T) *world.Service {
	t.Helper()
	svc := world.NewService(world.NewStore(), nil, fakeHasher{})

	aliceID, err := svc.CreateUser("alice", "The first user.", "pw", "alice@example.com")
	require.NoError(t, err)
	alice, _ := svc.Store().Get(aliceID)

	_, err = svc.CreateRoom("hall", "A great hall.", alice)
	require.NoError(t, err)
	hall, _ := svc.Store().ByFQN("alice/hall")
	require.NoError(t, svc.SetAttribute(hall, "defaultroom", true, alice))
	require.NoError(t, svc.Teleport(alice, "alice/hall"))

	denID, err := svc.CreateRoom("den", "", alice)
	require.NoError(t, err)
	den, _ := svc.Store().Get(denID)
	_, err = svc.CreateExit("north", "", alice, hall, den)
	require.NoError(t, err)

	lampID, err := svc.CreateObject("lamp", "A brass lamp.", alice)
	require.NoError(t, err)
	lamp, _ := svc.Store().Get(lampID)
	require.NoError(t, svc.SetAttribute(lamp, "shine", "bright", alice))
	require.NoError(t, svc.SetAttribute(lamp, "weight", float64(3), alice))
	return svc
}

func TestRoundTrip(t *testing.T) {
	svc := buildWorld(t)
	path := filepath.Join(t.TempDir(), "world.json")
	fs := snapshot.NewFileStore(path)

	require.NoError(t, fs.Save(world.NewEngine(svc)))

	loaded, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, svc.Store().Len(), loaded.Len())

	alice, ok := loaded.UserByName("alice")
	require.True(t, ok)
	assert.Equal(t, "hashed:pw", alice.User.PasswordHash)
	require.NotNil(t, alice.User.LocationID)

	hall, ok := loaded.ByFQN("alice/hall")
	require.True(t, ok)
	assert.Equal(t, *alice.User.LocationID, hall.ID)
	assert.Contains(t, hall.Room.Contents, alice.ID)
	assert.Len(t, hall.Room.ExitsOut, 1)

	lamp, ok := loaded.ByFQN("alice/lamp")
	require.True(t, ok)
	assert.Equal(t, "A brass lamp.", lamp.Description)
	shine, ok := lamp.Attr("shine")
	require.True(t, ok)
	assert.Equal(t, "bright", shine)
	weight, ok := lamp.Attr("weight")
	require.True(t, ok)
	assert.Equal(t, float64(3), weight)

	t.Run("attribute order survives", func(t *testing.T) {
		pair := lamp.Attrs.Oldest()
		assert.Equal(t, "shine", pair.Key)
	})
}

func TestLoadMissingFile(t *testing.T) {
	fs := snapshot.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	store, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := snapshot.NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestLoadWrongVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "entities": {}}`), 0o644))
	_, err := snapshot.NewFileStore(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestSaveOverwritesAtomically(t *testing.T) {
	svc := buildWorld(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "world.json")
	fs := snapshot.NewFileStore(path)
	engine := world.NewEngine(svc)

	require.NoError(t, fs.Save(engine))
	require.NoError(t, fs.Save(engine))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDefaultRoom(t *testing.T) {
	svc := buildWorld(t)
	fqn, ok := snapshot.DefaultRoom(svc.Store())
	require.True(t, ok)
	assert.Equal(t, "alice/hall", fqn)

	t.Run("absent when nothing is flagged", func(t *testing.T) {
		_, ok := snapshot.DefaultRoom(world.NewStore())
		assert.False(t, ok)
	})
}
