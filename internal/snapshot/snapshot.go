// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

// Package snapshot persists the world graph as a JSON file.
package snapshot

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/tapestrymud/tapestry/internal/world"
)

// formatVersion is bumped when the snapshot layout changes incompatibly.
const formatVersion = 1

type fileFormat struct {
	Version  int                      `json:"version"`
	SavedAt  time.Time                `json:"saved_at"`
	Entities map[string]*world.Entity `json:"entities"`
}

// FileStore reads and writes world snapshots at a fixed path. Writes are
// atomic: the snapshot is written to a temporary file in the same
// directory and renamed into place, so a crash mid-write never corrupts
// the previous snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a snapshot store for the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the snapshot and rebuilds the world store. A missing file
// yields an empty store, the state of a brand new world.
func (fs *FileStore) Load() (*world.Store, error) {
	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		slog.Info("no snapshot found, starting with an empty world", "path", fs.path)
		return world.NewStore(), nil
	}
	if err != nil {
		return nil, oops.With("path", fs.path).Wrap(err)
	}

	var file fileFormat
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, oops.With("path", fs.path).Wrapf(err, "corrupt snapshot")
	}
	if file.Version != formatVersion {
		return nil, oops.With("path", fs.path).
			Errorf("unsupported snapshot version %d (want %d)", file.Version, formatVersion)
	}

	entities := make(map[ulid.ULID]*world.Entity, len(file.Entities))
	for key, e := range file.Entities {
		id, err := ulid.Parse(key)
		if err != nil {
			return nil, oops.With("path", fs.path).Wrapf(err, "bad entity id %q", key)
		}
		entities[id] = e
	}
	store, err := world.NewStoreFromEntities(entities)
	if err != nil {
		return nil, oops.With("path", fs.path).Wrap(err)
	}
	slog.Info("snapshot loaded", "path", fs.path, "entities", store.Len())
	return store, nil
}

// Save encodes the world under the engine lock and writes the snapshot
// outside it, so disk latency never blocks players.
func (fs *FileStore) Save(engine *world.Engine) error {
	var raw []byte
	err := engine.With(func(svc *world.Service) error {
		var encodeErr error
		raw, encodeErr = encode(svc.Store())
		return encodeErr
	})
	if err != nil {
		return err
	}
	return fs.write(raw)
}

func encode(store *world.Store) ([]byte, error) {
	exported := store.Export()
	entities := make(map[string]*world.Entity, len(exported))
	for id, e := range exported {
		entities[id.String()] = e
	}
	raw, err := json.Marshal(fileFormat{
		Version:  formatVersion,
		SavedAt:  time.Now().UTC(),
		Entities: entities,
	})
	if err != nil {
		return nil, oops.Wrapf(err, "encode snapshot")
	}
	return raw, nil
}

func (fs *FileStore) write(raw []byte) error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.With("path", fs.path).Wrap(err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return oops.With("path", fs.path).Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return oops.With("path", fs.path).Wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return oops.With("path", fs.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", fs.path).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return oops.With("path", fs.path).Wrap(err)
	}
	return nil
}

// Autosave periodically saves the world until ctx is cancelled. Each
// failed save is retried with exponential backoff before giving up until
// the next tick. onSave, if non-nil, is told the outcome ("ok" or
// "error") of each attempt cycle.
func Autosave(ctx context.Context, engine *world.Engine, fs *FileStore, interval time.Duration, onSave func(status string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
			err := retry.Do(ctx, backoff, func(ctx context.Context) error {
				if saveErr := fs.Save(engine); saveErr != nil {
					return retry.RetryableError(saveErr)
				}
				return nil
			})
			status := "ok"
			if err != nil {
				status = "error"
				slog.Error("autosave failed", "path", fs.path, "error", err)
			} else {
				slog.Debug("autosave complete", "path", fs.path)
			}
			if onSave != nil {
				onSave(status)
			}
		}
	}
}

// DefaultRoom returns the fqn of the room flagged with the defaultroom
// attribute, where freshly connected users in limbo are placed.
func DefaultRoom(store *world.Store) (string, bool) {
	for _, e := range store.Export() {
		if e.Kind != world.KindRoom {
			continue
		}
		if _, ok := e.Attr("defaultroom"); ok {
			return e.FQN, true
		}
	}
	return "", false
}
