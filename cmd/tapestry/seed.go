// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tapestrymud/tapestry/internal/auth"
	"github.com/tapestrymud/tapestry/internal/config"
	"github.com/tapestrymud/tapestry/internal/snapshot"
	"github.com/tapestrymud/tapestry/internal/world"
)

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	dataFile string
	username string
	password string
	roomName string
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the world with a superuser and a default room",
		Long: `Creates the initial world data: a superuser account and the room
new logins are placed in. This command is idempotent - it will not
create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.dataFile, "data-file", config.Default().DataFile, "world snapshot file")
	cmd.Flags().StringVar(&cfg.username, "username", "wizard", "superuser name")
	cmd.Flags().StringVar(&cfg.password, "password", "", "superuser password (required on first run)")
	cmd.Flags().StringVar(&cfg.roomName, "room", "lobby", "default room name")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	fileStore := snapshot.NewFileStore(cfg.dataFile)
	store, err := fileStore.Load()
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "load world").Wrap(err)
	}

	svc := world.NewService(store, nil, auth.NewArgon2idHasher())
	engine := world.NewEngine(svc)

	user, exists := store.UserByName(cfg.username)
	if exists {
		cmd.Printf("User %q already exists, skipping\n", cfg.username)
	} else {
		if cfg.password == "" {
			return oops.Code("SEED_FAILED").Errorf("--password is required to create the superuser")
		}
		userID, createErr := svc.CreateUser(cfg.username, "The first of the weavers.", cfg.password, "")
		if createErr != nil {
			return oops.Code("SEED_FAILED").With("operation", "create superuser").Wrap(createErr)
		}
		user, _ = store.Get(userID)
		user.User.Superuser = true
		cmd.Printf("Created superuser: %s\n", cfg.username)
		slog.Info("created superuser", "id", userID, "name", cfg.username)
	}

	if fqn, ok := snapshot.DefaultRoom(store); ok {
		cmd.Printf("Default room already exists (%s), skipping\n", fqn)
	} else {
		roomID, createErr := svc.CreateRoom(cfg.roomName, "Threads of every colour hang in the air, waiting to be woven.", user)
		if createErr != nil {
			return oops.Code("SEED_FAILED").With("operation", "create default room").Wrap(createErr)
		}
		room, _ := store.Get(roomID)
		if setErr := svc.SetAttribute(room, "defaultroom", true, user); setErr != nil {
			return oops.Code("SEED_FAILED").With("operation", "mark default room").Wrap(setErr)
		}
		cmd.Printf("Created default room: %s\n", room.FQN)
		slog.Info("created default room", "id", roomID, "fqn", room.FQN)
	}

	if saveErr := fileStore.Save(engine); saveErr != nil {
		return oops.Code("SEED_FAILED").With("operation", "save world").Wrap(saveErr)
	}
	cmd.Printf("World saved to %s\n", fileStore.Path())
	return nil
}
