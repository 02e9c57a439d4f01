package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"petrosmart/internal/game"
)

const saveFileName = "current.json"

// FileStore keeps the save slot as one file under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path() string {
	return filepath.Join(f.dir, saveFileName)
}

func (f *FileStore) Load(_ context.Context) (game.SaveRecord, error) {
	raw, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return game.SaveRecord{}, game.ErrNoSave
		}
		return game.SaveRecord{}, err
	}
	if len(raw) == 0 {
		return game.SaveRecord{}, game.ErrNoSave
	}
	return Decode(raw)
}

// Save writes to a temp file and renames it over the slot, so a crash never
// leaves a half-written save behind.
func (f *FileStore) Save(_ context.Context, rec game.SaveRecord) error {
	raw, err := Encode(rec)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, saveFileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path())
}

func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
