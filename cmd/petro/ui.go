package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"petrosmart/internal/game"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

// promptIndex asks for a 1-based option number and returns it 0-based.
func promptIndex(label string, n int) (int, error) {
	for {
		text, err := promptRequired(fmt.Sprintf("%s [1-%d]", label, n))
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err != nil || v < 1 || v > n {
			printWarn(fmt.Sprintf("Enter a number from 1 to %d.", n))
			continue
		}
		return v - 1, nil
	}
}

func monthLabel(s game.Snapshot) string {
	return fmt.Sprintf("%s %d", time.Month(s.Month).String(), s.Year)
}

func renderState(st game.State) {
	s := st.Stats
	accent.Printf("\n== %s ==\n", strings.ToUpper(monthLabel(s)))
	fmt.Printf("Phase:              %s\n", phaseLabel(st.Phase))
	fmt.Printf("Turns Left:         %d/%d\n", s.TurnsRemaining, game.TurnsPerMonth)
	fmt.Printf("Cash:               %s\n", colorizeMoney(s.Cash))
	fmt.Printf("Crude Oil:          %s bbl\n", humanize.Commaf(round1(s.CrudeOil)))
	fmt.Printf("Refined Products:   %s bbl\n", humanize.Commaf(round1(s.RefinedProducts)))
	fmt.Printf("Pollution:          %s\n", gauge(s.Pollution, 60, 85, true))
	fmt.Printf("Approval:           %s\n", gauge(s.Approval, 40, 20, false))
	fmt.Printf("Knowledge:          %.1f\n", s.Knowledge)
	fmt.Printf("Renewables:         %.1f GW\n", s.RenewableCapacity)
	if st.Phase == game.PhasePlaying && !st.Pending {
		fmt.Printf("Actions:            %s\n", actionChoices(s))
	}

	switch {
	case st.Pending:
		printInfo("\nWaiting for news and quiz content...")
	case st.Phase == game.PhaseEvent && st.Event != nil:
		fmt.Println()
		renderEvent(*st.Event)
		printInfo("Respond with `petro event [option]`.")
	case st.Phase == game.PhaseQuiz && st.Quiz != nil:
		fmt.Println()
		renderQuiz(*st.Quiz)
		printInfo("Answer with `petro quiz <option>`.")
	case st.Phase == game.PhaseYearlyReview && st.Review != nil:
		renderReview(*st.Review)
		printInfo("Continue with `petro ack`.")
	case st.Phase == game.PhaseGameOver:
		renderGameOver(st)
	}
	fmt.Println()
}

// actionChoices lists the actions, dimming the ones whose resource gate is
// closed.
func actionChoices(s game.Snapshot) string {
	parts := make([]string, 0, len(game.Actions))
	for _, kind := range game.Actions {
		name := actionName(kind)
		if game.CanAfford(s, kind) {
			parts = append(parts, success.Sprint(name))
		} else {
			parts = append(parts, neutral.Sprint("("+name+")"))
		}
	}
	return strings.Join(parts, " ")
}

func actionName(kind game.ActionKind) string {
	return strings.ToLower(strings.TrimSuffix(string(kind), "_TURN"))
}

func phaseLabel(p game.Phase) string {
	switch p {
	case game.PhasePlaying:
		return success.Sprint("playing")
	case game.PhaseEvent:
		return warn.Sprint("world event")
	case game.PhaseQuiz:
		return warn.Sprint("quiz")
	case game.PhaseYearlyReview:
		return accent.Sprint("yearly review")
	case game.PhaseGameOver:
		return danger.Sprint("game over")
	default:
		return neutral.Sprint("menu")
	}
}

func renderActionResult(res game.ActionResult) {
	if res.Applied {
		printSuccess(res.Label)
	} else {
		printWarn(res.Label)
	}
	if res.RolledOver {
		printInfo(fmt.Sprintf("Month closed. Now %s.", monthLabel(res.Stats)))
	}
	renderUnlocked(res.Unlocked, res.Stats.Language)
	if res.Reason != game.ReasonNone {
		danger.Printf("GAME OVER: %s\n", res.Reason.Text(res.Stats.Language))
	}
}

func renderUnlocked(ids []string, lang game.Language) {
	for _, id := range ids {
		a, ok := game.AchievementByID(id)
		if !ok {
			continue
		}
		success.Printf("Achievement unlocked: %s\n", a.Title.In(lang))
	}
}

func renderEvent(ev game.NewsEvent) {
	accent.Printf("BREAKING: %s\n", ev.Title)
	fmt.Println(ev.Description)
	for i, opt := range ev.Options {
		fmt.Printf("  %d) %s\n", i+1, opt.Label)
	}
}

func renderQuiz(q game.QuizView) {
	accent.Printf("QUIZ (%s): %s\n", strings.ToLower(string(q.Difficulty)), q.Question)
	for i, opt := range q.Options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
}

func renderQuizResult(res game.QuizResult) {
	if res.Correct {
		printSuccess("Correct! Knowledge and approval are up.")
	} else {
		printError(fmt.Sprintf("Not quite. The answer was option %d.", res.CorrectIndex+1))
	}
	if res.Explanation != "" {
		printInfo(res.Explanation)
	}
	renderUnlocked(res.Unlocked, res.Stats.Language)
}

func renderReview(r game.ReviewReport) {
	accent.Printf("\n== YEAR %d IN REVIEW ==\n", r.Year)
	fmt.Printf("Cash Growth:         %s\n", colorizeMoney(r.CashGrowth))
	fmt.Printf("Pollution Reduced:   %s\n", colorizeDelta(r.PollutionReduction, ""))
	fmt.Printf("Renewables Added:    %s\n", colorizeDelta(r.RenewableGrowth, " GW"))
	fmt.Printf("Approval Change:     %s\n", colorizeDelta(r.ApprovalChange, "%"))
	fmt.Printf("Crude Produced:      %s bbl\n", humanize.Commaf(round1(r.CrudeProduced)))
	fmt.Printf("Refined Produced:    %s bbl\n", humanize.Commaf(round1(r.RefinedProduced)))
	fmt.Printf("Knowledge Gained:    %.1f\n", r.KnowledgeGained)
	fmt.Printf("Score:               %s\n", humanize.Comma(int64(r.Score)))
	fmt.Printf("Grade:               %s\n", gradeLabel(r.Grade))
}

func gradeLabel(g game.Grade) string {
	switch g {
	case game.GradeS, game.GradeA:
		return success.Sprint(g)
	case game.GradeB:
		return accent.Sprint(g)
	case game.GradeC:
		return warn.Sprint(g)
	default:
		return danger.Sprint(g)
	}
}

func renderGameOver(st game.State) {
	s := st.Stats
	danger.Println("\n== GAME OVER ==")
	fmt.Println(st.Reason.Text(s.Language))
	fmt.Printf("Years Active:       %d\n", s.YearsActive())
	fmt.Printf("Final Cash:         %s\n", colorizeMoney(s.Cash))
	fmt.Printf("Knowledge:          %.1f\n", s.Knowledge)
	fmt.Printf("Renewables:         %.1f GW\n", s.RenewableCapacity)
	printInfo("Close the company with `petro ack`.")
}

func renderUpgrades(views []game.UpgradeView) {
	accent.Println("\n== UPGRADES ==")
	fmt.Printf("%-14s %-24s %6s %16s\n", "ID", "NAME", "LEVEL", "NEXT COST")
	for _, u := range views {
		fmt.Printf("%-14s %-24s %6d %16s\n",
			strings.TrimSuffix(u.ID, "Level"),
			truncate(u.Title, 24),
			u.Level,
			formatMoney(u.NextCost),
		)
	}
	fmt.Println()
}

func renderHistory(entries []game.Snapshot, limit int) {
	accent.Println("\n== HISTORY ==")
	if len(entries) == 0 {
		printInfo("No entries yet.")
		return
	}
	start := 0
	if limit > 0 && len(entries) > limit {
		start = len(entries) - limit
	}
	fmt.Printf("%5s %-14s %5s %16s %10s %10s %9s %9s %9s\n", "#", "MONTH", "TURNS", "CASH", "CRUDE", "REFINED", "POLL", "APPROVAL", "RENEW")
	for i := start; i < len(entries); i++ {
		s := entries[i]
		fmt.Printf("%5d %-14s %5d %16s %10.0f %10.0f %9.1f %9.1f %9.1f\n",
			i,
			monthLabel(s),
			s.TurnsRemaining,
			formatMoney(s.Cash),
			s.CrudeOil,
			s.RefinedProducts,
			s.Pollution,
			s.Approval,
			s.RenewableCapacity,
		)
	}
	fmt.Println()
}

func renderAchievements(views []game.AchievementView) {
	accent.Println("\n== ACHIEVEMENTS ==")
	unlocked := 0
	for _, a := range views {
		mark := neutral.Sprint("[ ]")
		if a.Unlocked {
			mark = success.Sprint("[x]")
			unlocked++
		}
		fmt.Printf("%s %-22s %s\n", mark, a.Title, a.Description)
	}
	fmt.Printf("\n%d of %d unlocked\n\n", unlocked, len(views))
}

func gauge(v, warnAt, dangerAt float64, highIsBad bool) string {
	text := fmt.Sprintf("%.1f%%", v)
	bad := v >= dangerAt
	caution := v >= warnAt
	if !highIsBad {
		bad = v <= dangerAt
		caution = v <= warnAt
	}
	switch {
	case bad:
		return danger.Sprint(text)
	case caution:
		return warn.Sprint(text)
	default:
		return success.Sprint(text)
	}
}

func colorizeMoney(v float64) string {
	text := formatMoney(v)
	if v < 0 {
		return danger.Sprint(text)
	}
	return neutral.Sprint(text)
}

func colorizeDelta(v float64, unit string) string {
	text := fmt.Sprintf("%+.1f%s", v, unit)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMoney(v float64) string {
	if v < 0 {
		return "-$" + humanize.Commaf(round1(-v))
	}
	return "$" + humanize.Commaf(round1(v))
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
