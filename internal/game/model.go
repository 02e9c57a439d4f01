package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	StartYear     = 2024
	TurnsPerMonth = 5

	StartingCash      = 1_000_000.0
	StartingPollution = 5.0
	StartingApproval  = 80.0

	BankruptcyFloor = -500_000.0
	PollutionLimit  = 100.0
)

var (
	ErrWrongPhase     = errors.New("operation not allowed in current phase")
	ErrNoTurns        = errors.New("no turns remaining this month")
	ErrUnknownAction  = errors.New("unknown action")
	ErrUnknownUpgrade = errors.New("unknown upgrade")
	ErrContentPending = errors.New("content request in flight")
	ErrInvalidChoice  = errors.New("invalid choice")
	ErrNoSave         = errors.New("no saved game")
	ErrCorruptSave    = errors.New("saved game is corrupt")
)

type Phase string

const (
	PhaseMenu         Phase = "MENU"
	PhasePlaying      Phase = "PLAYING"
	PhaseEvent        Phase = "EVENT"
	PhaseQuiz         Phase = "QUIZ"
	PhaseYearlyReview Phase = "YEARLY_REVIEW"
	PhaseGameOver     Phase = "GAMEOVER"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseMenu, PhasePlaying, PhaseEvent, PhaseQuiz, PhaseYearlyReview, PhaseGameOver:
		return true
	}
	return false
}

type Language string

const (
	LangEN Language = "EN"
	LangID Language = "ID"
)

func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(LangID)) {
		return LangID
	}
	return LangEN
}

// Text is a localized string keyed by language; EN is the fallback.
type Text map[Language]string

func (t Text) In(lang Language) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	return t[LangEN]
}

// Levels holds one upgrade level per catalog entry, indexed by UpgradeID.
// It is an array so that a Snapshot copy never shares state with its source.
type Levels [upgradeCount]int

func (l Levels) Level(id UpgradeID) int {
	if !id.Valid() {
		return 0
	}
	return l[id]
}

func (l Levels) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, upgradeCount)
	for _, u := range Upgrades {
		out[u.Key] = l[u.ID]
	}
	return json.Marshal(out)
}

func (l *Levels) UnmarshalJSON(raw []byte) error {
	var in map[string]int
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	var out Levels
	for key, level := range in {
		id, err := ParseUpgrade(key)
		if err != nil {
			continue
		}
		if level < 0 {
			level = 0
		}
		out[id] = level
	}
	*l = out
	return nil
}

// Snapshot is the complete company state at one instant. It is a plain value:
// every mutation works on a copy, so entries already in the ledger never change.
type Snapshot struct {
	Year              int      `json:"year"`
	Month             int      `json:"month"`
	TurnsRemaining    int      `json:"turnsRemaining"`
	Cash              float64  `json:"cash"`
	CrudeOil          float64  `json:"crudeOil"`
	RefinedProducts   float64  `json:"refinedProducts"`
	Pollution         float64  `json:"pollution"`
	Approval          float64  `json:"approval"`
	Knowledge         float64  `json:"knowledge"`
	RenewableCapacity float64  `json:"renewableCapacity"`
	Upgrades          Levels   `json:"upgrades"`
	Language          Language `json:"language"`
}

func NewSnapshot(lang Language) Snapshot {
	if lang == "" {
		lang = LangEN
	}
	return Snapshot{
		Year:           StartYear,
		Month:          1,
		TurnsRemaining: TurnsPerMonth,
		Cash:           StartingCash,
		Pollution:      StartingPollution,
		Approval:       StartingApproval,
		Language:       lang,
	}
}

// TotalMonths counts months since the start of 2024, January 2024 being 1.
func (s Snapshot) TotalMonths() int {
	return (s.Year-StartYear)*12 + s.Month
}

func (s Snapshot) Level(id UpgradeID) int {
	return s.Upgrades.Level(id)
}

// Validate reports whether the snapshot is inside the documented ranges.
// Pollution is allowed above 100 since that is how the game ends.
func (s Snapshot) Validate() error {
	switch {
	case s.Year < StartYear:
		return fmt.Errorf("year %d before %d", s.Year, StartYear)
	case s.Month < 1 || s.Month > 12:
		return fmt.Errorf("month %d out of range", s.Month)
	case s.TurnsRemaining < 0 || s.TurnsRemaining > TurnsPerMonth:
		return fmt.Errorf("turns %d out of range", s.TurnsRemaining)
	case s.Approval < 0 || s.Approval > 100:
		return fmt.Errorf("approval %.2f out of range", s.Approval)
	case s.CrudeOil < 0 || s.RefinedProducts < 0 || s.Knowledge < 0 || s.RenewableCapacity < 0:
		return errors.New("negative resource")
	}
	for _, v := range []float64{s.Cash, s.CrudeOil, s.RefinedProducts, s.Pollution, s.Approval, s.Knowledge, s.RenewableCapacity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("non-finite stat")
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampApproval(v float64) float64 {
	return clamp(v, 0, 100)
}
