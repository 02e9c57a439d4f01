package game

import "math"

type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// ReviewReport compares the first snapshot of a year with the current one.
type ReviewReport struct {
	Year               int     `json:"year"`
	CashGrowth         float64 `json:"cashGrowth"`
	PollutionReduction float64 `json:"pollutionReduction"`
	RenewableGrowth    float64 `json:"renewableGrowth"`
	ApprovalChange     float64 `json:"approvalChange"`
	RefinedProduced    float64 `json:"refinedProduced"`
	CrudeProduced      float64 `json:"crudeProduced"`
	KnowledgeGained    float64 `json:"knowledgeGained"`
	Score              int     `json:"score"`
	Grade              Grade   `json:"grade"`
}

// YearJustEnded is the year a review shown at current covers.
func YearJustEnded(current Snapshot) int {
	if current.Month == 1 {
		return current.Year - 1
	}
	return current.Year
}

// Summarize scores the year. The baseline is the earliest history entry from
// January of year, or the first entry when that January is missing.
func Summarize(current Snapshot, history []Snapshot, year int) ReviewReport {
	start := current
	if len(history) > 0 {
		start = history[0]
	}
	for _, h := range history {
		if h.Year == year && h.Month == 1 {
			start = h
			break
		}
	}

	r := ReviewReport{
		Year:               year,
		CashGrowth:         current.Cash - start.Cash,
		PollutionReduction: start.Pollution - current.Pollution,
		RenewableGrowth:    current.RenewableCapacity - start.RenewableCapacity,
		ApprovalChange:     current.Approval - start.Approval,
		RefinedProduced:    current.RefinedProducts - start.RefinedProducts,
		CrudeProduced:      current.CrudeOil - start.CrudeOil,
		KnowledgeGained:    current.Knowledge - start.Knowledge,
	}
	raw := r.CashGrowth/5000 +
		r.RenewableGrowth*50 +
		r.ApprovalChange*10 +
		r.KnowledgeGained*5 +
		r.PollutionReduction*20
	r.Score = int(math.Floor(math.Max(0, raw)))
	r.Grade = GradeFor(r.Score)
	return r
}

func GradeFor(score int) Grade {
	switch {
	case score > 3000:
		return GradeS
	case score > 1500:
		return GradeA
	case score > 700:
		return GradeB
	case score < 0:
		return GradeD
	}
	return GradeC
}
