// Package content supplies world events and quizzes to the game service,
// either from the catalog embedded in the binary or from a remote service.
package content

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"petrosmart/internal/game"
)

//go:embed catalog.yaml
var builtinCatalog []byte

type catalogOption struct {
	Label  game.Text   `yaml:"label"`
	Impact game.Impact `yaml:"impact"`
}

type catalogEvent struct {
	Title       game.Text       `yaml:"title"`
	Description game.Text       `yaml:"description"`
	Impact      game.Impact     `yaml:"impact"`
	Options     []catalogOption `yaml:"options"`
}

type catalogQuiz struct {
	Difficulty   game.Difficulty            `yaml:"difficulty"`
	Question     game.Text                  `yaml:"question"`
	Options      map[game.Language][]string `yaml:"options"`
	CorrectIndex int                        `yaml:"correctIndex"`
	Explanation  game.Text                  `yaml:"explanation"`
}

type catalogFile struct {
	Events  []catalogEvent `yaml:"events"`
	Quizzes []catalogQuiz  `yaml:"quizzes"`
}

// Catalog serves content from a fixed list. Event impacts in the catalog are
// deltas; they become absolute overlays against the snapshot the event fires on.
type Catalog struct {
	events  []catalogEvent
	quizzes []catalogQuiz

	mu   sync.Mutex
	next map[game.Difficulty]int
}

// Builtin parses the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return ParseCatalog(builtinCatalog)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Events) == 0 || len(f.Quizzes) == 0 {
		return nil, errors.New("catalog needs at least one event and one quiz")
	}
	for i, q := range f.Quizzes {
		for lang := range q.Options {
			if err := toQuiz(q, lang).Validate(); err != nil {
				return nil, fmt.Errorf("quiz %d (%s): %w", i, lang, err)
			}
		}
	}
	return &Catalog{
		events:  f.Events,
		quizzes: f.Quizzes,
		next:    make(map[game.Difficulty]int),
	}, nil
}

// NewsEvent picks the event by calendar position so a replayed month sees the
// same headline.
func (c *Catalog) NewsEvent(ctx context.Context, current game.Snapshot) (game.NewsEvent, error) {
	if err := ctx.Err(); err != nil {
		return game.NewsEvent{}, err
	}
	ev := c.events[(current.TotalMonths()/4)%len(c.events)]
	lang := current.Language
	out := game.NewsEvent{
		Title:       ev.Title.In(lang),
		Description: ev.Description.In(lang),
		Impact:      materialize(ev.Impact, current),
	}
	for _, o := range ev.Options {
		out.Options = append(out.Options, game.EventOption{
			Label:  o.Label.In(lang),
			Impact: materialize(o.Impact, current),
		})
	}
	return out, nil
}

// Quiz rotates through the quizzes of the requested difficulty, falling back
// to the whole catalog when none match.
func (c *Catalog) Quiz(ctx context.Context, difficulty game.Difficulty, lang game.Language) (game.Quiz, error) {
	if err := ctx.Err(); err != nil {
		return game.Quiz{}, err
	}
	var pool []catalogQuiz
	for _, q := range c.quizzes {
		if q.Difficulty == difficulty {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		pool = c.quizzes
	}

	c.mu.Lock()
	i := c.next[difficulty] % len(pool)
	c.next[difficulty]++
	c.mu.Unlock()

	out := toQuiz(pool[i], lang)
	out.Difficulty = difficulty
	return out, nil
}

func toQuiz(q catalogQuiz, lang game.Language) game.Quiz {
	opts, ok := q.Options[lang]
	if !ok {
		opts = q.Options[game.LangEN]
	}
	return game.Quiz{
		Question:     q.Question.In(lang),
		Options:      append([]string(nil), opts...),
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation.In(lang),
		Difficulty:   q.Difficulty,
	}
}

// materialize turns a delta into the absolute overlay Impact.Apply expects.
func materialize(delta game.Impact, s game.Snapshot) game.Impact {
	var out game.Impact
	add := func(d *float64, base float64) *float64 {
		if d == nil {
			return nil
		}
		v := base + *d
		return &v
	}
	out.Cash = add(delta.Cash, s.Cash)
	out.CrudeOil = add(delta.CrudeOil, s.CrudeOil)
	out.RefinedProducts = add(delta.RefinedProducts, s.RefinedProducts)
	out.Pollution = add(delta.Pollution, s.Pollution)
	if out.Pollution != nil && *out.Pollution < 0 {
		*out.Pollution = 0
	}
	out.Approval = add(delta.Approval, s.Approval)
	out.Knowledge = add(delta.Knowledge, s.Knowledge)
	out.RenewableCapacity = add(delta.RenewableCapacity, s.RenewableCapacity)
	return out
}
