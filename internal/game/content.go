package game

import (
	"context"
	"fmt"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyFor picks the quiz difficulty from the player's knowledge.
func DifficultyFor(knowledge float64) Difficulty {
	switch {
	case knowledge >= 120:
		return DifficultyHard
	case knowledge >= 40:
		return DifficultyMedium
	}
	return DifficultyEasy
}

// Impact is a partial overlay of resource fields. Nil fields are left alone;
// set fields replace the current value outright.
type Impact struct {
	Cash              *float64 `json:"cash,omitempty" yaml:"cash,omitempty"`
	CrudeOil          *float64 `json:"crudeOil,omitempty" yaml:"crudeOil,omitempty"`
	RefinedProducts   *float64 `json:"refinedProducts,omitempty" yaml:"refinedProducts,omitempty"`
	Pollution         *float64 `json:"pollution,omitempty" yaml:"pollution,omitempty"`
	Approval          *float64 `json:"approval,omitempty" yaml:"approval,omitempty"`
	Knowledge         *float64 `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`
	RenewableCapacity *float64 `json:"renewableCapacity,omitempty" yaml:"renewableCapacity,omitempty"`
}

// StatImpact builds an Impact that sets a single named stat.
func StatImpact(stat string, value float64) (Impact, error) {
	v := value
	var out Impact
	switch strings.ToLower(strings.TrimSpace(stat)) {
	case "cash":
		out.Cash = &v
	case "crudeoil", "crude_oil":
		out.CrudeOil = &v
	case "refinedproducts", "refined_products":
		out.RefinedProducts = &v
	case "pollution":
		out.Pollution = &v
	case "approval":
		out.Approval = &v
	case "knowledge":
		out.Knowledge = &v
	case "renewablecapacity", "renewable_capacity":
		out.RenewableCapacity = &v
	default:
		return Impact{}, fmt.Errorf("unknown stat %q", stat)
	}
	return out, nil
}

// Apply overlays the impact onto s. Approval is clamped; stock counters
// cannot go negative.
func (im Impact) Apply(s Snapshot) Snapshot {
	next := s
	if im.Cash != nil {
		next.Cash = *im.Cash
	}
	if im.CrudeOil != nil {
		next.CrudeOil = max(0, *im.CrudeOil)
	}
	if im.RefinedProducts != nil {
		next.RefinedProducts = max(0, *im.RefinedProducts)
	}
	if im.Pollution != nil {
		next.Pollution = *im.Pollution
	}
	if im.Approval != nil {
		next.Approval = clampApproval(*im.Approval)
	}
	if im.Knowledge != nil {
		next.Knowledge = max(0, *im.Knowledge)
	}
	if im.RenewableCapacity != nil {
		next.RenewableCapacity = max(0, *im.RenewableCapacity)
	}
	return next
}

type EventOption struct {
	Label  string `json:"label"`
	Impact Impact `json:"impact"`
}

type NewsEvent struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Impact      Impact        `json:"impact"`
	Options     []EventOption `json:"options,omitempty"`
}

// ImpactFor returns the overlay for the player's choice. Events without
// options only accept the acknowledge choice (-1 or 0).
func (e NewsEvent) ImpactFor(choice int) (Impact, error) {
	if len(e.Options) == 0 {
		if choice > 0 {
			return Impact{}, fmt.Errorf("%w: event has no options", ErrInvalidChoice)
		}
		return e.Impact, nil
	}
	if choice < 0 || choice >= len(e.Options) {
		return Impact{}, fmt.Errorf("%w: option %d of %d", ErrInvalidChoice, choice, len(e.Options))
	}
	return e.Options[choice].Impact, nil
}

type Quiz struct {
	Question     string     `json:"question"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Explanation  string     `json:"explanation"`
	Difficulty   Difficulty `json:"difficulty"`
}

const QuizOptionCount = 4

func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("quiz question is empty")
	}
	if len(q.Options) != QuizOptionCount {
		return fmt.Errorf("quiz needs %d options, got %d", QuizOptionCount, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("quiz correct index %d out of range", q.CorrectIndex)
	}
	return nil
}

// ContentProvider supplies world events and quizzes. Implementations may be
// remote; the Service bounds each call with its own context.
type ContentProvider interface {
	NewsEvent(ctx context.Context, current Snapshot) (NewsEvent, error)
	Quiz(ctx context.Context, difficulty Difficulty, lang Language) (Quiz, error)
}
