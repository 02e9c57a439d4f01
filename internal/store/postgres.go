package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petrosmart/internal/game"
)

// Connect opens a small pool; one engine process only ever touches one slot.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps the save slot in a Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS petro_save_slots (
			slot TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			phase TEXT NOT NULL,
			year INT NOT NULL,
			month INT NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL,
			envelope BYTEA NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Load(ctx context.Context) (game.SaveRecord, error) {
	var env []byte
	err := s.pool.QueryRow(ctx, `SELECT envelope FROM petro_save_slots WHERE slot = $1`, slotName).Scan(&env)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return game.SaveRecord{}, game.ErrNoSave
		}
		return game.SaveRecord{}, fmt.Errorf("load save: %w", err)
	}
	return Decode(env)
}

func (s *PostgresStore) Save(ctx context.Context, rec game.SaveRecord) error {
	env, err := Encode(rec)
	if err != nil {
		return err
	}
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO petro_save_slots (slot, game_id, phase, year, month, saved_at, envelope)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slot) DO UPDATE SET
			game_id = EXCLUDED.game_id,
			phase = EXCLUDED.phase,
			year = EXCLUDED.year,
			month = EXCLUDED.month,
			saved_at = EXCLUDED.saved_at,
			envelope = EXCLUDED.envelope
	`, slotName, rec.GameID, string(rec.Phase), rec.Stats.Year, rec.Stats.Month, savedAt, env)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM petro_save_slots WHERE slot = $1`, slotName)
	return err
}
