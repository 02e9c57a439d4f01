package game

import "math"

// subsidyPerGW is the monthly clean energy subsidy per GW of capacity.
const subsidyPerGW = 5_000.0

type GameOverReason string

const (
	ReasonNone       GameOverReason = ""
	ReasonPollution  GameOverReason = "POLLUTION"
	ReasonApproval   GameOverReason = "APPROVAL"
	ReasonBankruptcy GameOverReason = "BANKRUPTCY"
)

var gameOverText = map[GameOverReason]Text{
	ReasonPollution: {
		LangEN: "Environmental collapse led to global sanctions.",
		LangID: "Keruntuhan lingkungan memicu sanksi global.",
	},
	ReasonApproval: {
		LangEN: "Massive public protests forced your resignation.",
		LangID: "Protes publik besar-besaran memaksa Anda mundur.",
	},
	ReasonBankruptcy: {
		LangEN: "Your industry has declared bankruptcy.",
		LangID: "Industri Anda dinyatakan bangkrut.",
	},
}

func (r GameOverReason) Text(lang Language) string {
	return gameOverText[r].In(lang)
}

// GameOverReasonFor returns the first terminal condition that s meets.
func GameOverReasonFor(s Snapshot) GameOverReason {
	switch {
	case s.Pollution >= PollutionLimit:
		return ReasonPollution
	case s.Approval <= 0:
		return ReasonApproval
	case s.Cash < BankruptcyFloor:
		return ReasonBankruptcy
	}
	return ReasonNone
}

// RolloverResult is the outcome of closing a month.
type RolloverResult struct {
	Snapshot     Snapshot
	Phase        Phase
	YearBoundary bool
	Reason       GameOverReason
}

// Rollover applies end-of-month effects to s (the snapshot after the last
// turn) and advances the calendar. Income and approval drift read the
// pre-rollover values.
func Rollover(s Snapshot) RolloverResult {
	next := s

	next.Cash += s.RenewableCapacity * subsidyPerGW

	approvalBonus := (s.RenewableCapacity / 10) * math.Pow(0.95, float64(s.Level(UpgradeRefine)))
	pollutionPenalty := s.Pollution / 20
	next.Approval = clampApproval(s.Approval + approvalBonus - pollutionPenalty)

	yearBoundary := s.Month == 12
	next.Month++
	next.TurnsRemaining = TurnsPerMonth
	if next.Month > 12 {
		next.Month = 1
		next.Year++
	}

	out := RolloverResult{
		Snapshot:     next,
		Phase:        NextPhase(next, yearBoundary),
		YearBoundary: yearBoundary,
	}
	if reason := GameOverReasonFor(next); reason != ReasonNone {
		out.Phase = PhaseGameOver
		out.Reason = reason
	}
	return out
}

// NextPhase picks the follow-up for a freshly rolled month. A year boundary
// always wins over the event/quiz schedule.
func NextPhase(next Snapshot, yearBoundary bool) Phase {
	if yearBoundary {
		return PhaseYearlyReview
	}
	total := next.TotalMonths()
	switch {
	case total%4 == 0:
		return PhaseEvent
	case total%3 == 0:
		return PhaseQuiz
	}
	return PhasePlaying
}
