package store

import (
	"context"
	"fmt"

	"petrosmart/internal/config"
	"petrosmart/internal/game"
)

// Open builds the backend cfg names. The returned close func is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (game.Store, func(), error) {
	switch cfg.Kind {
	case config.StoreSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		s, err := NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return s, pool.Close, nil
	case config.StoreFile, "":
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() {}, nil
	}
	return nil, func() {}, fmt.Errorf("unknown store kind %q", cfg.Kind)
}
