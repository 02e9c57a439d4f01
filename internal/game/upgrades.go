package game

import (
	"fmt"
	"math"
	"strings"
)

type UpgradeID int

const (
	UpgradeDrill UpgradeID = iota
	UpgradeRefine
	UpgradeResearch
	UpgradeRenewable

	upgradeCount = 4
)

func (id UpgradeID) Valid() bool {
	return id >= 0 && id < upgradeCount
}

func (id UpgradeID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("upgrade(%d)", int(id))
	}
	return Upgrades[id].Key
}

// Upgrade is one purchasable capability tier. YieldPerLevel and PenaltyPerLevel
// are the per-level coefficients the action formulas read.
type Upgrade struct {
	ID              UpgradeID
	Key             string
	Title           Text
	BaseCost        float64
	CostFactor      float64
	GrowthRate      float64
	YieldPerLevel   float64
	PenaltyPerLevel float64
}

// Upgrades is indexed by UpgradeID.
var Upgrades = [upgradeCount]Upgrade{
	{
		ID:              UpgradeDrill,
		Key:             "drillLevel",
		Title:           Text{LangEN: "Turbo Drills", LangID: "Mata Bor Turbo"},
		BaseCost:        250_000,
		CostFactor:      1.5,
		GrowthRate:      2.4,
		YieldPerLevel:   15_000, // crude per drill
		PenaltyPerLevel: 1,      // pollution per drill
	},
	{
		ID:              UpgradeRefine,
		Key:             "refineLevel",
		Title:           Text{LangEN: "Nano-Catalysts", LangID: "Katalis-Nano"},
		BaseCost:        300_000,
		CostFactor:      1.5,
		GrowthRate:      2.4,
		YieldPerLevel:   50_000, // revenue per refine
		PenaltyPerLevel: 2,      // pollution per refine
	},
	{
		ID:              UpgradeResearch,
		Key:             "researchLevel",
		Title:           Text{LangEN: "AI Lab Cluster", LangID: "Klaster Lab AI"},
		BaseCost:        200_000,
		CostFactor:      1.5,
		GrowthRate:      2.4,
		YieldPerLevel:   5,    // knowledge per research
		PenaltyPerLevel: 0.15, // drill cost multiplier
	},
	{
		ID:              UpgradeRenewable,
		Key:             "renewableLevel",
		Title:           Text{LangEN: "Smart Grid 2.0", LangID: "Grid Pintar 2.0"},
		BaseCost:        400_000,
		CostFactor:      1.5,
		GrowthRate:      2.4,
		YieldPerLevel:   2,      // GW per build
		PenaltyPerLevel: 50_000, // build cost
	},
}

func ParseUpgrade(key string) (UpgradeID, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.TrimSuffix(k, "level")
	for _, u := range Upgrades {
		if strings.TrimSuffix(strings.ToLower(u.Key), "level") == k {
			return u.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUpgrade, key)
}

// UpgradeCost is the price of taking id from level to level+1.
func UpgradeCost(id UpgradeID, level int) float64 {
	if !id.Valid() {
		return math.Inf(1)
	}
	u := Upgrades[id]
	return math.Floor(u.BaseCost * u.CostFactor * math.Pow(u.GrowthRate, float64(level)))
}

// PurchaseUpgrade buys one level of id. It does not consume a turn.
func PurchaseUpgrade(s Snapshot, id UpgradeID) (Snapshot, bool, string) {
	if !id.Valid() {
		return s, false, "unknown upgrade"
	}
	level := s.Level(id)
	cost := UpgradeCost(id, level)
	if s.Cash < cost {
		return s, false, fmt.Sprintf("need $%.0f for %s", cost, Upgrades[id].Title.In(s.Language))
	}
	next := s
	next.Cash -= cost
	next.Upgrades[id] = level + 1
	return next, true, fmt.Sprintf("%s upgraded to level %d (-$%.0f)", Upgrades[id].Title.In(s.Language), level+1, cost)
}
