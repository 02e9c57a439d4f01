package game

import (
	"context"
	"time"
)

// SaveRecord is the persisted "current game". Transport is up to the Store.
type SaveRecord struct {
	GameID   string     `json:"gameId"`
	Phase    Phase      `json:"phase"`
	Stats    Snapshot   `json:"stats"`
	History  []Snapshot `json:"history"`
	Unlocked []string   `json:"unlockedAchievementIds"`
	Event    *NewsEvent `json:"event,omitempty"`
	Quiz     *Quiz      `json:"quiz,omitempty"`
	SavedAt  time.Time  `json:"savedAt"`
}

// Store keeps a single save slot. Load returns ErrNoSave when the slot is
// empty and ErrCorruptSave when it cannot be decoded.
type Store interface {
	Load(ctx context.Context) (SaveRecord, error)
	Save(ctx context.Context, rec SaveRecord) error
	Clear(ctx context.Context) error
}

// Repair replaces each broken field with its initial value. It reports
// whether anything was replaced.
func (r *SaveRecord) Repair(lang Language) bool {
	repaired := false
	if err := r.Stats.Validate(); err != nil {
		if len(r.History) > 0 && r.History[len(r.History)-1].Validate() == nil {
			r.Stats = r.History[len(r.History)-1]
		} else {
			r.Stats = NewSnapshot(lang)
		}
		repaired = true
	}
	// A rollover refills turns in the same step that spends the last one.
	if r.Stats.TurnsRemaining == 0 {
		r.Stats.TurnsRemaining = TurnsPerMonth
		repaired = true
	}
	if r.Stats.Language == "" {
		r.Stats.Language = lang
		repaired = true
	}
	if len(r.History) == 0 {
		r.History = []Snapshot{r.Stats}
		repaired = true
	}
	if !r.Phase.Valid() || r.Phase == PhaseMenu {
		r.Phase = PhasePlaying
		repaired = true
	}
	if r.Phase == PhaseEvent && r.Event == nil {
		r.Phase = PhasePlaying
		repaired = true
	}
	if r.Phase == PhaseQuiz && (r.Quiz == nil || r.Quiz.Validate() != nil) {
		r.Phase = PhasePlaying
		r.Quiz = nil
		repaired = true
	}
	kept := r.Unlocked[:0]
	seen := make(map[string]struct{}, len(r.Unlocked))
	for _, id := range r.Unlocked {
		if _, ok := AchievementByID(id); !ok {
			repaired = true
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	r.Unlocked = kept
	return repaired
}
