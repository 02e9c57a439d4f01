package game

import (
	"fmt"
	"math"
	"strings"
)

type ActionKind string

const (
	ActionDrill     ActionKind = "DRILL"
	ActionRefine    ActionKind = "REFINE"
	ActionResearch  ActionKind = "RESEARCH"
	ActionRenewable ActionKind = "RENEWABLE"
	ActionSkip      ActionKind = "SKIP_TURN"
)

var Actions = []ActionKind{ActionDrill, ActionRefine, ActionResearch, ActionRenewable, ActionSkip}

func ParseAction(s string) (ActionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DRILL":
		return ActionDrill, nil
	case "REFINE":
		return ActionRefine, nil
	case "RESEARCH":
		return ActionResearch, nil
	case "RENEWABLE", "BUILD_RENEWABLE", "BUILDRENEWABLE":
		return ActionRenewable, nil
	case "SKIP", "SKIP_TURN", "SKIPTURN", "WAIT":
		return ActionSkip, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

const (
	drillBaseCost     = 100_000.0
	drillBaseYield    = 50_000.0
	drillBasePollute  = 2.0
	refineCrudeInput  = 10_000.0
	refineOutput      = 9_000.0
	refineBaseRevenue = 150_000.0
	refineBasePollute = 3.0
	researchCost      = 50_000.0
	researchBaseGain  = 10.0
	renewableBaseCost = 200_000.0
	renewableBaseGain = 5.0
	renewableMinGain  = 0.1
	renewableCleanup  = 5.0
	drillDragPerLevel = 0.1
)

// DrillCost grows with the research level.
func DrillCost(s Snapshot) float64 {
	return drillBaseCost * (1 + Upgrades[UpgradeResearch].PenaltyPerLevel*float64(s.Level(UpgradeResearch)))
}

func RenewableCost(s Snapshot) float64 {
	return renewableBaseCost + Upgrades[UpgradeRenewable].PenaltyPerLevel*float64(s.Level(UpgradeRenewable))
}

// RenewableGain shrinks as drilling technology grows, never below 0.1 GW.
func RenewableGain(s Snapshot) float64 {
	base := renewableBaseGain + Upgrades[UpgradeRenewable].YieldPerLevel*float64(s.Level(UpgradeRenewable))
	return math.Max(renewableMinGain, base*(1-drillDragPerLevel*float64(s.Level(UpgradeDrill))))
}

// CanAfford reports whether the resource gate for kind is open.
func CanAfford(s Snapshot, kind ActionKind) bool {
	switch kind {
	case ActionDrill:
		return s.Cash >= DrillCost(s)
	case ActionRefine:
		return s.CrudeOil >= refineCrudeInput
	case ActionResearch:
		return s.Cash >= researchCost
	case ActionRenewable:
		return s.Cash >= RenewableCost(s)
	case ActionSkip:
		return true
	}
	return false
}

// Resolve applies one action. When the resource gate is closed the input
// snapshot is returned untouched and applied is false. Turn accounting
// happens here; the caller owns the phase and zero-turn guards.
func Resolve(s Snapshot, kind ActionKind) (next Snapshot, applied bool, label string) {
	if !CanAfford(s, kind) {
		return s, false, gateMessage(s, kind)
	}
	next = s
	switch kind {
	case ActionDrill:
		cost := DrillCost(s)
		drill := float64(s.Level(UpgradeDrill))
		yield := drillBaseYield + Upgrades[UpgradeDrill].YieldPerLevel*drill
		pollute := drillBasePollute + Upgrades[UpgradeDrill].PenaltyPerLevel*drill
		next.Cash -= cost
		next.CrudeOil += yield
		next.Pollution += pollute
		label = fmt.Sprintf("+%.0f bbl crude, -$%.0f, +%.1f pollution", yield, cost, pollute)
	case ActionRefine:
		refine := float64(s.Level(UpgradeRefine))
		revenue := refineBaseRevenue + Upgrades[UpgradeRefine].YieldPerLevel*refine
		pollute := refineBasePollute + Upgrades[UpgradeRefine].PenaltyPerLevel*refine
		next.CrudeOil -= refineCrudeInput
		next.RefinedProducts += refineOutput
		next.Cash += revenue
		next.Pollution += pollute
		label = fmt.Sprintf("+%.0f refined, +$%.0f, +%.1f pollution", refineOutput, revenue, pollute)
	case ActionResearch:
		gain := researchBaseGain + Upgrades[UpgradeResearch].YieldPerLevel*float64(s.Level(UpgradeResearch))
		next.Cash -= researchCost
		next.Knowledge += gain
		label = fmt.Sprintf("+%.0f knowledge, -$%.0f", gain, researchCost)
	case ActionRenewable:
		cost := RenewableCost(s)
		gain := RenewableGain(s)
		next.Cash -= cost
		next.RenewableCapacity += gain
		next.Pollution = math.Max(0, next.Pollution-renewableCleanup)
		label = fmt.Sprintf("+%.1f GW renewable, -$%.0f", gain, cost)
	case ActionSkip:
		label = "turn skipped"
	}
	next.TurnsRemaining--
	return next, true, label
}

func gateMessage(s Snapshot, kind ActionKind) string {
	switch kind {
	case ActionDrill:
		return fmt.Sprintf("drilling needs $%.0f", DrillCost(s))
	case ActionRefine:
		return fmt.Sprintf("refining needs %.0f bbl crude", refineCrudeInput)
	case ActionResearch:
		return fmt.Sprintf("research needs $%.0f", researchCost)
	case ActionRenewable:
		return fmt.Sprintf("renewables need $%.0f", RenewableCost(s))
	}
	return "unknown action"
}
