package game

import (
	"math"
	"testing"
)

func TestResolveDrillFromInitialSnapshot(t *testing.T) {
	s := NewSnapshot(LangEN)
	next, ok, label := Resolve(s, ActionDrill)
	if !ok {
		t.Fatalf("expected drill to apply")
	}
	if next.Cash != 900_000 || next.CrudeOil != 50_000 || next.Pollution != 7 || next.TurnsRemaining != 4 {
		t.Fatalf("unexpected snapshot after drill: %+v", next)
	}
	if label == "" {
		t.Fatalf("expected an effect label")
	}
	if s.Cash != 1_000_000 || s.TurnsRemaining != 5 {
		t.Fatalf("input snapshot mutated: %+v", s)
	}
}

func TestResolveRejectsWhenGateClosed(t *testing.T) {
	tests := []struct {
		name string
		kind ActionKind
		mod  func(*Snapshot)
	}{
		{name: "drill without cash", kind: ActionDrill, mod: func(s *Snapshot) { s.Cash = 99_999 }},
		{name: "drill with research surcharge", kind: ActionDrill, mod: func(s *Snapshot) {
			s.Cash = 110_000
			s.Upgrades[UpgradeResearch] = 1
		}},
		{name: "refine without crude", kind: ActionRefine, mod: func(s *Snapshot) { s.CrudeOil = 9_999 }},
		{name: "research without cash", kind: ActionResearch, mod: func(s *Snapshot) { s.Cash = 49_999 }},
		{name: "renewable without cash", kind: ActionRenewable, mod: func(s *Snapshot) {
			s.Cash = 240_000
			s.Upgrades[UpgradeRenewable] = 1
		}},
		{name: "unknown kind", kind: ActionKind("PARTY")},
	}
	for _, tc := range tests {
		s := NewSnapshot(LangEN)
		if tc.mod != nil {
			tc.mod(&s)
		}
		next, ok, _ := Resolve(s, tc.kind)
		if ok {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		if next != s {
			t.Fatalf("%s: snapshot changed: %+v", tc.name, next)
		}
	}
}

func TestResolveFormulasScaleWithUpgrades(t *testing.T) {
	s := NewSnapshot(LangEN)
	s.Cash = 5_000_000
	s.CrudeOil = 20_000
	s.Upgrades = Levels{2, 3, 1, 2} // drill, refine, research, renewable

	drilled, _, _ := Resolve(s, ActionDrill)
	if drilled.Cash != 5_000_000-115_000 {
		t.Fatalf("drill cost: got cash %.2f", drilled.Cash)
	}
	if drilled.CrudeOil != 20_000+80_000 || drilled.Pollution != 5+4 {
		t.Fatalf("drill yield: %+v", drilled)
	}

	refined, _, _ := Resolve(s, ActionRefine)
	if refined.CrudeOil != 10_000 || refined.RefinedProducts != 9_000 {
		t.Fatalf("refine stock: %+v", refined)
	}
	if refined.Cash != 5_000_000+300_000 || refined.Pollution != 5+9 {
		t.Fatalf("refine revenue: %+v", refined)
	}

	researched, _, _ := Resolve(s, ActionResearch)
	if researched.Knowledge != 15 || researched.Cash != 5_000_000-50_000 {
		t.Fatalf("research: %+v", researched)
	}

	built, _, _ := Resolve(s, ActionRenewable)
	if built.Cash != 5_000_000-300_000 {
		t.Fatalf("renewable cost: got cash %.2f", built.Cash)
	}
	if math.Abs(built.RenewableCapacity-7.2) > 1e-9 {
		t.Fatalf("renewable gain: got %.4f want 7.2", built.RenewableCapacity)
	}
	if built.Pollution != 0 {
		t.Fatalf("renewable cleanup: pollution %.2f want 0", built.Pollution)
	}
}

func TestRenewableGainFloor(t *testing.T) {
	s := NewSnapshot(LangEN)
	s.Upgrades[UpgradeDrill] = 12
	if got := RenewableGain(s); got != 0.1 {
		t.Fatalf("gain=%.4f want 0.1", got)
	}
}

func TestResolveSkipAlwaysApplies(t *testing.T) {
	s := NewSnapshot(LangEN)
	s.Cash = -400_000
	next, ok, _ := Resolve(s, ActionSkip)
	if !ok || next.TurnsRemaining != 4 {
		t.Fatalf("skip: ok=%v turns=%d", ok, next.TurnsRemaining)
	}
	next.TurnsRemaining = s.TurnsRemaining
	if next != s {
		t.Fatalf("skip changed resources: %+v", next)
	}
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]ActionKind{
		"drill":     ActionDrill,
		" Refine ":  ActionRefine,
		"research":  ActionResearch,
		"renewable": ActionRenewable,
		"skip":      ActionSkip,
		"SKIP_TURN": ActionSkip,
	} {
		got, err := ParseAction(in)
		if err != nil || got != want {
			t.Fatalf("ParseAction(%q)=%q,%v", in, got, err)
		}
	}
	if _, err := ParseAction("sell"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCanAffordMatchesResolve(t *testing.T) {
	broke := NewSnapshot(LangEN)
	broke.Cash = 10_000
	rich := NewSnapshot(LangEN)
	rich.CrudeOil = 50_000
	researched := rich
	researched.Cash = 110_000
	researched.Upgrades[UpgradeResearch] = 1

	for _, s := range []Snapshot{broke, rich, researched} {
		for _, kind := range Actions {
			_, applied, _ := Resolve(s, kind)
			if got := CanAfford(s, kind); got != applied {
				t.Fatalf("%s cash=%.0f: CanAfford=%v Resolve applied=%v", kind, s.Cash, got, applied)
			}
		}
	}
	if CanAfford(rich, ActionKind("MINE")) {
		t.Fatalf("unknown kind must not be affordable")
	}
}
