// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/tapestrymud/tapestry/internal/auth"
	"github.com/tapestrymud/tapestry/internal/command"
	"github.com/tapestrymud/tapestry/internal/config"
	"github.com/tapestrymud/tapestry/internal/core"
	"github.com/tapestrymud/tapestry/internal/logging"
	"github.com/tapestrymud/tapestry/internal/observability"
	"github.com/tapestrymud/tapestry/internal/snapshot"
	"github.com/tapestrymud/tapestry/internal/telnet"
	"github.com/tapestrymud/tapestry/internal/world"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the world server",
		Long: `Start the world server. Loads the world snapshot, listens for
telnet connections and saves the world periodically and at shutdown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	def := config.Default()
	cmd.Flags().String("listen-addr", def.ListenAddr, "telnet listen address")
	cmd.Flags().String("metrics-addr", def.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("data-file", def.DataFile, "world snapshot file")
	cmd.Flags().String("log-format", def.LogFormat, "log format (json or text)")
	cmd.Flags().String("log-file", def.LogFile, "log file path (empty = stderr)")
	cmd.Flags().Duration("autosave-interval", def.AutosaveInterval, "time between world snapshots")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}

	logging.SetDefault("tapestry", version, cfg.LogFormat, cfg.LogFile)

	slog.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"data_file", cfg.DataFile,
		"log_format", cfg.LogFormat,
	)

	fileStore := snapshot.NewFileStore(cfg.DataFile)
	store, err := fileStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load world: %w", err)
	}
	slog.Info("world loaded", "path", fileStore.Path(), "entities", store.Len())

	defaultRoom, ok := snapshot.DefaultRoom(store)
	if !ok {
		slog.Warn("no default room set, new logins stay in limbo. Run 'tapestry seed' first")
	}

	hasher := auth.NewArgon2idHasher()
	sessions := core.NewSessionManager(func(ulid.ULID) {
		observability.RecordDroppedMessage()
	})
	svc := world.NewService(store, sessions, hasher)
	engine := world.NewEngine(svc)

	registry := command.NewRegistry()
	command.RegisterBuiltins(registry)
	interp := command.NewInterpreter(engine, registry)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, func() bool { return true }, sessions.Count)
		metrics = obs.Metrics()
		obsErrChan, startErr := obs.Start()
		if startErr != nil {
			return fmt.Errorf("failed to start observability server: %w", startErr)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
				slog.Warn("failed to stop observability server", "error", stopErr)
			}
		}()
		go func() {
			select {
			case obsErr, open := <-obsErrChan:
				if open && obsErr != nil {
					slog.Error("observability server failed", "error", obsErr)
					cancel()
				}
			case <-ctx.Done():
			}
		}()
		slog.Info("observability server started", "addr", obs.Addr())
	}

	onSave := func(status string) {
		if metrics != nil {
			metrics.SnapshotSaves.WithLabelValues(status).Inc()
		}
	}
	go snapshot.Autosave(ctx, engine, fileStore, cfg.AutosaveInterval, onSave)

	srv := telnet.NewServer(cfg.ListenAddr, engine, interp, sessions, hasher, defaultRoom, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("telnet server failed: %w", err)
	}

	slog.Info("shutting down, saving world", "path", fileStore.Path())
	if saveErr := fileStore.Save(engine); saveErr != nil {
		return fmt.Errorf("failed to save world at shutdown: %w", saveErr)
	}
	return nil
}
