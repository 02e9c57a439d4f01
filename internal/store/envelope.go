// Package store keeps the single "current game" save slot on disk, in SQLite,
// or in Postgres. Every backend persists the same envelope: the JSON save
// record, lz4-compressed, with a blake3 checksum so a truncated or edited save
// is reported as corrupt instead of half-loading.
package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"

	"petrosmart/internal/game"
)

const envelopeVersion = 1

type envelope struct {
	Version  int    `json:"version"`
	Checksum string `json:"checksum"`
	Payload  []byte `json:"payload"`
}

func checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Encode serializes rec into envelope bytes.
func Encode(rec game.SaveRecord) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal save: %w", err)
	}
	buf := &bytes.Buffer{}
	zw := lz4.NewWriter(buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress save: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress save: %w", err)
	}
	return json.Marshal(envelope{
		Version:  envelopeVersion,
		Checksum: checksum(raw),
		Payload:  buf.Bytes(),
	})
}

// Decode reverses Encode. Anything malformed comes back as game.ErrCorruptSave.
func Decode(data []byte) (game.SaveRecord, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return game.SaveRecord{}, fmt.Errorf("%w: %v", game.ErrCorruptSave, err)
	}
	if env.Version != envelopeVersion {
		return game.SaveRecord{}, fmt.Errorf("%w: unsupported version %d", game.ErrCorruptSave, env.Version)
	}
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(env.Payload)))
	if err != nil {
		return game.SaveRecord{}, fmt.Errorf("%w: decompress: %v", game.ErrCorruptSave, err)
	}
	if checksum(raw) != env.Checksum {
		return game.SaveRecord{}, fmt.Errorf("%w: checksum mismatch", game.ErrCorruptSave)
	}
	var rec game.SaveRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return game.SaveRecord{}, fmt.Errorf("%w: %v", game.ErrCorruptSave, err)
	}
	return rec, nil
}
