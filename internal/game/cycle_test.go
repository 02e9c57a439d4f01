package game

import (
	"math"
	"testing"
)

func TestRolloverAfterFiveSkips(t *testing.T) {
	s := NewSnapshot(LangEN)
	for i := 0; i < 5; i++ {
		var ok bool
		s, ok, _ = Resolve(s, ActionSkip)
		if !ok {
			t.Fatalf("skip %d rejected", i)
		}
	}
	if s.TurnsRemaining != 0 {
		t.Fatalf("turns=%d want 0", s.TurnsRemaining)
	}
	out := Rollover(s)
	got := out.Snapshot
	if got.Month != 2 || got.Year != 2024 || got.TurnsRemaining != 5 {
		t.Fatalf("calendar: %+v", got)
	}
	if got.Cash != 1_000_000 {
		t.Fatalf("cash=%.2f want unchanged", got.Cash)
	}
	if got.Approval != 79.75 {
		t.Fatalf("approval=%.4f want 79.75", got.Approval)
	}
	if out.Phase != PhasePlaying || out.YearBoundary {
		t.Fatalf("phase=%s boundary=%v", out.Phase, out.YearBoundary)
	}
}

func TestRolloverUsesPreRolloverValues(t *testing.T) {
	s := NewSnapshot(LangEN)
	s.TurnsRemaining = 0
	s.RenewableCapacity = 30
	s.Pollution = 40
	s.Approval = 50
	s.Upgrades[UpgradeRefine] = 2

	got := Rollover(s).Snapshot
	if got.Cash != 1_000_000+150_000 {
		t.Fatalf("subsidy: cash=%.2f", got.Cash)
	}
	want := 50 + 3*0.95*0.95 - 2
	if math.Abs(got.Approval-want) > 1e-9 {
		t.Fatalf("approval=%.6f want %.6f", got.Approval, want)
	}
}

func TestRolloverClampsApproval(t *testing.T) {
	high := NewSnapshot(LangEN)
	high.Approval = 99
	high.RenewableCapacity = 200
	high.Pollution = 0
	if got := Rollover(high).Snapshot.Approval; got != 100 {
		t.Fatalf("approval=%.2f want 100", got)
	}

	low := NewSnapshot(LangEN)
	low.Approval = 1
	low.Pollution = 90
	out := Rollover(low)
	if out.Snapshot.Approval != 0 {
		t.Fatalf("approval=%.2f want 0", out.Snapshot.Approval)
	}
	if out.Phase != PhaseGameOver || out.Reason != ReasonApproval {
		t.Fatalf("phase=%s reason=%s", out.Phase, out.Reason)
	}
}

func TestRolloverYearBoundaryAlwaysReview(t *testing.T) {
	for year := 2024; year < 2040; year++ {
		s := NewSnapshot(LangEN)
		s.Year = year
		s.Month = 12
		s.TurnsRemaining = 0
		out := Rollover(s)
		if out.Snapshot.Month != 1 || out.Snapshot.Year != year+1 {
			t.Fatalf("calendar: %+v", out.Snapshot)
		}
		if !out.YearBoundary || out.Phase != PhaseYearlyReview {
			t.Fatalf("year %d: phase=%s boundary=%v", year, out.Phase, out.YearBoundary)
		}
	}
}

func TestNextPhaseSchedule(t *testing.T) {
	tests := []struct {
		year, month int
		want        Phase
	}{
		{2024, 2, PhasePlaying},
		{2024, 3, PhaseQuiz},
		{2024, 4, PhaseEvent},
		{2024, 6, PhaseQuiz},
		{2024, 8, PhaseEvent},
		{2024, 12, PhaseEvent},
		{2025, 3, PhaseQuiz},  // 15
		{2025, 4, PhaseEvent}, // 16
		{2025, 5, PhasePlaying},
	}
	for _, tc := range tests {
		s := NewSnapshot(LangEN)
		s.Year, s.Month = tc.year, tc.month
		if got := NextPhase(s, false); got != tc.want {
			t.Fatalf("%d-%02d: got %s want %s", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestRolloverTermination(t *testing.T) {
	tests := []struct {
		name   string
		mod    func(*Snapshot)
		reason GameOverReason
	}{
		{name: "pollution", mod: func(s *Snapshot) { s.Pollution = 100 }, reason: ReasonPollution},
		{name: "bankruptcy", mod: func(s *Snapshot) { s.Cash = -500_001 }, reason: ReasonBankruptcy},
		{name: "edge of bankruptcy", mod: func(s *Snapshot) { s.Cash = -500_000 }, reason: ReasonNone},
		{name: "beats year review", mod: func(s *Snapshot) {
			s.Month = 12
			s.Pollution = 120
		}, reason: ReasonPollution},
		{name: "beats event", mod: func(s *Snapshot) {
			s.Month = 3
			s.Cash = -900_000
		}, reason: ReasonBankruptcy},
	}
	for _, tc := range tests {
		s := NewSnapshot(LangEN)
		s.TurnsRemaining = 0
		tc.mod(&s)
		out := Rollover(s)
		if out.Reason != tc.reason {
			t.Fatalf("%s: reason=%q want %q", tc.name, out.Reason, tc.reason)
		}
		if tc.reason != ReasonNone && out.Phase != PhaseGameOver {
			t.Fatalf("%s: phase=%s want GAMEOVER", tc.name, out.Phase)
		}
		if tc.reason == ReasonNone && out.Phase == PhaseGameOver {
			t.Fatalf("%s: unexpected game over", tc.name)
		}
	}
}

func TestGameOverReasonText(t *testing.T) {
	if ReasonBankruptcy.Text(LangEN) == "" || ReasonPollution.Text(LangID) == "" {
		t.Fatalf("expected localized reasons")
	}
}
