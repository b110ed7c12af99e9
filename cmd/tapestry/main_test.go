// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapestrymud/tapestry/internal/snapshot"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "seed"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", "/etc/tapestry.yaml", "--help"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/etc/tapestry.yaml", configFile)
}

func TestSeedCommand_CreatesAndIsIdempotent(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "world.json")

	run := func() string {
		cmd := NewRootCmd()
		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{
			"seed",
			"--data-file", dataFile,
			"--username", "ada",
			"--password", "lovelace",
			"--room", "parlour",
		})
		require.NoError(t, cmd.Execute())
		return buf.String()
	}

	first := run()
	assert.Contains(t, first, "Created superuser: ada")
	assert.Contains(t, first, "Created default room: ada/parlour")

	store, err := snapshot.NewFileStore(dataFile).Load()
	require.NoError(t, err)

	ada, ok := store.UserByName("ada")
	require.True(t, ok)
	assert.True(t, ada.User.Superuser)

	fqn, ok := snapshot.DefaultRoom(store)
	require.True(t, ok)
	assert.Equal(t, "ada/parlour", fqn)

	second := run()
	assert.Contains(t, second, `User "ada" already exists, skipping`)
	assert.Contains(t, second, "Default room already exists (ada/parlour), skipping")
}

func TestSeedCommand_RequiresPassword(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "world.json")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"seed", "--data-file", dataFile, "--username", "ada"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--password is required")
}
