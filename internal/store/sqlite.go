package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"petrosmart/internal/game"
)

const slotName = "current"

// SQLiteStore keeps the save slot in a local SQLite database.
type SQLiteStore struct {
	conn *sqlx.DB
}

type slotRow struct {
	Slot     string `db:"slot"`
	GameID   string `db:"game_id"`
	Phase    string `db:"phase"`
	Year     int    `db:"year"`
	Month    int    `db:"month"`
	SavedAt  string `db:"saved_at"`
	Envelope []byte `db:"envelope"`
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS save_slots (
		slot TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		saved_at TEXT NOT NULL,
		envelope BLOB NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (game.SaveRecord, error) {
	var row slotRow
	err := s.conn.GetContext(ctx, &row, `SELECT * FROM save_slots WHERE slot = ?`, slotName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.SaveRecord{}, game.ErrNoSave
		}
		return game.SaveRecord{}, fmt.Errorf("load save: %w", err)
	}
	return Decode(row.Envelope)
}

func (s *SQLiteStore) Save(ctx context.Context, rec game.SaveRecord) error {
	env, err := Encode(rec)
	if err != nil {
		return err
	}
	row := slotRow{
		Slot:     slotName,
		GameID:   rec.GameID,
		Phase:    string(rec.Phase),
		Year:     rec.Stats.Year,
		Month:    rec.Stats.Month,
		SavedAt:  rec.SavedAt.UTC().Format(time.RFC3339Nano),
		Envelope: env,
	}
	_, err = s.conn.NamedExecContext(ctx, `
		INSERT INTO save_slots (slot, game_id, phase, year, month, saved_at, envelope)
		VALUES (:slot, :game_id, :phase, :year, :month, :saved_at, :envelope)
		ON CONFLICT(slot) DO UPDATE SET
			game_id = excluded.game_id,
			phase = excluded.phase,
			year = excluded.year,
			month = excluded.month,
			saved_at = excluded.saved_at,
			envelope = excluded.envelope`, row)
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, slotName)
	return err
}
