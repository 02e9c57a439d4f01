package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"petrosmart/internal/game"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("play needs an interactive terminal; use the one-shot commands instead")
			}
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.close()

			st, resumed := eng.svc.Resume(ctx)
			m := newPlayModel(ctx, eng.svc, st, eng.save)
			if resumed {
				m.status = "Welcome back."
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	goodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Strikethrough(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(0, 1)
	promptStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1)
)

// playModel only persists on the save key. Quitting goes through Exit, which
// drops everything since the last save.
type playModel struct {
	ctx    context.Context
	svc    *game.Service
	save   func(context.Context) error
	state  game.State
	status string
	busy   bool
}

type actDoneMsg struct {
	res game.ActionResult
	err error
}

func newPlayModel(ctx context.Context, svc *game.Service, st game.State, save func(context.Context) error) playModel {
	return playModel{ctx: ctx, svc: svc, save: save, state: st}
}

func (m playModel) Init() tea.Cmd {
	return nil
}

// actCmd runs off the UI loop since event and quiz months wait on content.
func (m playModel) actCmd(kind game.ActionKind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
		defer cancel()
		res, err := m.svc.Act(ctx, kind)
		return actDoneMsg{res: res, err: err}
	}
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actDoneMsg:
		m.busy = false
		m.state = m.svc.State()
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = resultLine(msg.res.Label, msg.res.Unlocked, m.state.Stats.Language)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.svc.CancelContent()
			m.state = m.svc.Exit()
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if msg.String() == "w" {
			return m.saveGame(), nil
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

var actionKeys = map[string]game.ActionKind{
	"d": game.ActionDrill,
	"r": game.ActionRefine,
	"e": game.ActionResearch,
	"n": game.ActionRenewable,
	"s": game.ActionSkip,
}

var upgradeKeys = map[string]game.UpgradeID{
	"D": game.UpgradeDrill,
	"R": game.UpgradeRefine,
	"E": game.UpgradeResearch,
	"N": game.UpgradeRenewable,
}

func (m playModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch m.state.Phase {
	case game.PhaseMenu:
		if key == "enter" {
			m.state = m.svc.NewGame()
			m.status = "New company founded."
		}
	case game.PhasePlaying:
		if kind, ok := actionKeys[key]; ok {
			m.busy = true
			m.status = "Working..."
			return m, m.actCmd(kind)
		}
		if id, ok := upgradeKeys[key]; ok {
			res, err := m.svc.Purchase(id)
			m.state = m.svc.State()
			if err != nil {
				m.status = err.Error()
			} else {
				m.status = resultLine(res.Label, res.Unlocked, m.state.Stats.Language)
			}
		}
	case game.PhaseEvent:
		if m.state.Event == nil {
			return m, nil
		}
		choice, ok := choiceKey(key, len(m.state.Event.Options))
		if !ok {
			return m, nil
		}
		res, err := m.svc.ResolveEvent(choice)
		m.state = m.svc.State()
		if err != nil {
			m.status = err.Error()
		} else {
			m.status = resultLine(res.Label, res.Unlocked, m.state.Stats.Language)
		}
	case game.PhaseQuiz:
		if m.state.Quiz == nil {
			return m, nil
		}
		choice, ok := choiceKey(key, len(m.state.Quiz.Options))
		if !ok || choice < 0 {
			return m, nil
		}
		res, err := m.svc.AnswerQuiz(choice)
		m.state = m.svc.State()
		switch {
		case err != nil:
			m.status = err.Error()
		case res.Correct:
			m.status = "Correct! " + res.Explanation
		default:
			m.status = fmt.Sprintf("Wrong, it was %d. %s", res.CorrectIndex+1, res.Explanation)
		}
	case game.PhaseYearlyReview:
		if key == "enter" {
			m.state, _ = m.svc.AcknowledgeReview()
			m.status = ""
		}
	case game.PhaseGameOver:
		if key == "enter" {
			m.state, _ = m.svc.AcknowledgeGameOver()
			m.status = "Company closed. Press enter to start a new one."
			if err := m.save(m.ctx); err != nil {
				m.status = err.Error()
			}
		}
	}
	return m, nil
}

func (m playModel) saveGame() playModel {
	if m.state.Phase == game.PhaseMenu {
		m.status = "Nothing to save."
		return m
	}
	if err := m.save(m.ctx); err != nil {
		m.status = "Save failed: " + err.Error()
		return m
	}
	m.status = "Game saved."
	return m
}

// choiceKey maps "1".."9" to an option index. Events without options take
// enter as the acknowledgement.
func choiceKey(key string, options int) (int, bool) {
	if options == 0 {
		return -1, key == "enter"
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		return i, i < options
	}
	return 0, false
}

func resultLine(label string, unlocked []string, lang game.Language) string {
	out := label
	for _, id := range unlocked {
		if a, ok := game.AchievementByID(id); ok {
			out += "  [+] " + a.Title.In(lang)
		}
	}
	return out
}

func (m playModel) View() string {
	s := m.state.Stats
	var b strings.Builder
	b.WriteString(titleStyle.Render("PETROSMART  " + monthLabel(s)))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Turns", fmt.Sprintf("%d/%d", s.TurnsRemaining, game.TurnsPerMonth)},
		{"Cash", moneyStyle(s.Cash).Render(formatMoney(s.Cash))},
		{"Crude Oil", humanize.Commaf(round1(s.CrudeOil)) + " bbl"},
		{"Refined", humanize.Commaf(round1(s.RefinedProducts)) + " bbl"},
		{"Pollution", levelStyle(s.Pollution < 60).Render(fmt.Sprintf("%.1f%%", s.Pollution))},
		{"Approval", levelStyle(s.Approval > 40).Render(fmt.Sprintf("%.1f%%", s.Approval))},
		{"Knowledge", fmt.Sprintf("%.1f", s.Knowledge)},
		{"Renewables", fmt.Sprintf("%.1f GW", s.RenewableCapacity)},
	}
	var stats strings.Builder
	for i, r := range rows {
		if i > 0 {
			stats.WriteString("\n")
		}
		stats.WriteString(labelStyle.Render(r[0]) + r[1])
	}
	b.WriteString(panelStyle.Render(stats.String()))
	b.WriteString("\n")

	if body := m.phaseView(); body != "" {
		b.WriteString(promptStyle.Render(body))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render(m.hint()))
	return b.String()
}

func (m playModel) phaseView() string {
	st := m.state
	var b strings.Builder
	switch {
	case st.Phase == game.PhaseEvent && st.Event != nil:
		b.WriteString(titleStyle.Render("BREAKING: " + st.Event.Title))
		b.WriteString("\n" + st.Event.Description)
		for i, opt := range st.Event.Options {
			fmt.Fprintf(&b, "\n %d) %s", i+1, opt.Label)
		}
	case st.Phase == game.PhaseQuiz && st.Quiz != nil:
		b.WriteString(titleStyle.Render("QUIZ: " + st.Quiz.Question))
		for i, opt := range st.Quiz.Options {
			fmt.Fprintf(&b, "\n %d) %s", i+1, opt)
		}
	case st.Phase == game.PhaseYearlyReview && st.Review != nil:
		r := st.Review
		fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("YEAR %d IN REVIEW", r.Year)))
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Cash Growth"), formatMoney(r.CashGrowth))
		fmt.Fprintf(&b, "%s%+.1f\n", labelStyle.Render("Pollution Cut"), r.PollutionReduction)
		fmt.Fprintf(&b, "%s%+.1f GW\n", labelStyle.Render("Renewables"), r.RenewableGrowth)
		fmt.Fprintf(&b, "%s%+.1f\n", labelStyle.Render("Approval"), r.ApprovalChange)
		fmt.Fprintf(&b, "%s%s (%s)", labelStyle.Render("Grade"), string(r.Grade), humanize.Comma(int64(r.Score)))
	case st.Phase == game.PhaseGameOver:
		fmt.Fprintf(&b, "%s\n%s\n", badStyle.Render("GAME OVER"), st.Reason.Text(st.Stats.Language))
		fmt.Fprintf(&b, "%s%d\n", labelStyle.Render("Years Active"), st.Stats.YearsActive())
		fmt.Fprintf(&b, "%s%s", labelStyle.Render("Final Cash"), formatMoney(st.Stats.Cash))
	case st.Phase == game.PhaseMenu:
		b.WriteString("No company running.")
	}
	return b.String()
}

func (m playModel) hint() string {
	switch m.state.Phase {
	case game.PhasePlaying:
		return actionHints(m.state.Stats) + "  shift+key: buy upgrade  [w] save  [q]uit without saving"
	case game.PhaseEvent:
		if m.state.Event == nil || len(m.state.Event.Options) == 0 {
			return "[enter] continue  [w] save  [q]uit"
		}
		return "[1-9] choose  [w] save  [q]uit"
	case game.PhaseQuiz:
		return "[1-4] answer  [w] save  [q]uit"
	case game.PhaseMenu:
		return "[enter] new company  [q]uit"
	default:
		return "[enter] continue  [w] save  [q]uit"
	}
}

var actionHintLabels = map[game.ActionKind]string{
	game.ActionDrill:     "[d]rill",
	game.ActionRefine:    "[r]efine",
	game.ActionResearch:  "r[e]search",
	game.ActionRenewable: "re[n]ewable",
	game.ActionSkip:      "[s]kip",
}

// actionHints strikes out the actions whose resource gate is closed.
func actionHints(s game.Snapshot) string {
	parts := make([]string, 0, len(game.Actions))
	for _, kind := range game.Actions {
		label := actionHintLabels[kind]
		if !game.CanAfford(s, kind) {
			label = disabledStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func moneyStyle(v float64) lipgloss.Style {
	return levelStyle(v >= 0)
}

func levelStyle(ok bool) lipgloss.Style {
	if ok {
		return goodStyle
	}
	return badStyle
}
