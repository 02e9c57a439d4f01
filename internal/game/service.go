package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultContentTimeout = 20 * time.Second

	quizKnowledgeReward = 20.0
	quizCashReward      = 100_000.0
	quizApprovalReward  = 5.0
)

type ServiceConfig struct {
	Language       Language
	ContentTimeout time.Duration
}

// Service owns one play session and is the only thing that mutates it. All
// mutations run under mu; content lookups run outside it and are matched
// back by token.
type Service struct {
	cfg     ServiceConfig
	store   Store
	content ContentProvider
	log     *slog.Logger

	mu        sync.Mutex
	gameID    string
	phase     Phase
	stats     Snapshot
	ledger    *Ledger
	ledgerGen uint64
	unlocked  map[string]struct{}
	order     []string
	event     *NewsEvent
	quiz      *Quiz
	review    *ReviewReport
	reason    GameOverReason
	saved     *SaveRecord

	token         uint64
	pending       bool
	cancelContent context.CancelFunc
}

func NewService(cfg ServiceConfig, store Store, content ContentProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = LangEN
	}
	if cfg.ContentTimeout <= 0 {
		cfg.ContentTimeout = defaultContentTimeout
	}
	s := &Service{
		cfg:     cfg,
		store:   store,
		content: content,
		log:     logger,
	}
	s.resetLocked(PhaseMenu)
	return s
}

func (s *Service) resetLocked(phase Phase) {
	start := NewSnapshot(s.cfg.Language)
	s.gameID = uuid.NewString()
	s.phase = phase
	s.stats = start
	s.ledger = NewLedger(start)
	s.ledgerGen++
	s.unlocked = make(map[string]struct{})
	s.order = nil
	s.event = nil
	s.quiz = nil
	s.review = nil
	s.reason = ReasonNone
	s.invalidateContentLocked()
}

func (s *Service) loadLocked(rec SaveRecord) {
	s.gameID = rec.GameID
	if s.gameID == "" {
		s.gameID = uuid.NewString()
	}
	s.phase = rec.Phase
	s.stats = rec.Stats
	s.ledger = NewLedger(rec.History...)
	s.ledgerGen++
	s.unlocked = make(map[string]struct{}, len(rec.Unlocked))
	s.order = nil
	for _, id := range rec.Unlocked {
		s.unlocked[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.event = rec.Event
	s.quiz = rec.Quiz
	s.review = nil
	s.reason = ReasonNone
	switch s.phase {
	case PhaseYearlyReview:
		report := Summarize(s.stats, rec.History, YearJustEnded(s.stats))
		s.review = &report
	case PhaseGameOver:
		s.reason = GameOverReasonFor(s.stats)
	}
	s.invalidateContentLocked()
}

// invalidateContentLocked makes any in-flight content response stale.
func (s *Service) invalidateContentLocked() {
	s.token++
	s.pending = false
	if s.cancelContent != nil {
		s.cancelContent()
		s.cancelContent = nil
	}
}

func (s *Service) recordLocked() SaveRecord {
	rec := SaveRecord{
		GameID:   s.gameID,
		Phase:    s.phase,
		Stats:    s.stats,
		History:  s.ledger.Entries(),
		Unlocked: append([]string(nil), s.order...),
	}
	if s.event != nil {
		ev := *s.event
		rec.Event = &ev
	}
	if s.quiz != nil {
		q := *s.quiz
		rec.Quiz = &q
	}
	return rec
}

// commitLocked makes next the current snapshot, appends it to the ledger and
// returns achievements it newly unlocks.
func (s *Service) commitLocked(next Snapshot) []string {
	s.stats = next
	s.ledger.Append(next)
	fresh := EvaluateAchievements(next, s.unlocked)
	for _, id := range fresh {
		s.unlocked[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return fresh
}

// NewGame discards the session and starts playing from the initial snapshot.
func (s *Service) NewGame() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(PhasePlaying)
	s.log.Info("new game", "game_id", s.gameID)
	return s.stateLocked()
}

// Restart clears the session to initial values and returns to the menu.
func (s *Service) Restart() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(PhaseMenu)
	s.saved = nil
	return s.stateLocked()
}

// Resume loads the saved game as-is. A missing or unreadable save falls back
// to a fresh game; resumed reports which happened.
func (s *Service) Resume(ctx context.Context) (state State, resumed bool) {
	var rec SaveRecord
	var err error
	if s.store == nil {
		err = ErrNoSave
	} else {
		rec, err = s.store.Load(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrNoSave) {
			s.log.Info("no saved game, starting fresh")
		} else {
			s.log.Warn("saved game unreadable, starting fresh", "err", err)
		}
		s.resetLocked(PhasePlaying)
		return s.stateLocked(), false
	}
	if rec.Repair(s.cfg.Language) {
		s.log.Warn("saved game repaired", "game_id", rec.GameID)
	}
	s.loadLocked(rec)
	saved := s.recordLocked()
	s.saved = &saved
	return s.stateLocked(), true
}

// Save writes the session to the store.
func (s *Service) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no store configured")
	}
	s.mu.Lock()
	rec := s.recordLocked()
	s.mu.Unlock()

	rec.SavedAt = time.Now().UTC()
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	s.mu.Lock()
	s.saved = &rec
	s.mu.Unlock()
	return nil
}

// Exit returns to the menu and drops everything since the last save.
func (s *Service) Exit() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved != nil {
		s.loadLocked(*s.saved)
	} else {
		s.resetLocked(PhaseMenu)
	}
	s.phase = PhaseMenu
	return s.stateLocked()
}

// Act resolves one player action. A closed resource gate is not an error:
// the result comes back with Applied false and nothing changes.
func (s *Service) Act(ctx context.Context, kind ActionKind) (ActionResult, error) {
	res, follow, err := s.act(kind)
	if err != nil || follow == nil {
		return res, err
	}
	s.fetchContent(ctx, *follow)

	s.mu.Lock()
	res.Phase = s.phase
	s.mu.Unlock()
	return res, nil
}

type contentRequest struct {
	token uint64
	phase Phase
	stats Snapshot
	ctx   context.Context
}

func (s *Service) act(kind ActionKind) (ActionResult, *contentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, err := ParseAction(string(kind))
	if err != nil {
		return ActionResult{}, nil, err
	}
	if err := s.guardPlayingLocked(); err != nil {
		return ActionResult{}, nil, err
	}
	if s.stats.TurnsRemaining <= 0 {
		return ActionResult{}, nil, ErrNoTurns
	}

	next, applied, label := Resolve(s.stats, kind)
	res := ActionResult{Applied: applied, Label: label}
	if !applied {
		res.Stats = s.stats
		res.Phase = s.phase
		return res, nil, nil
	}
	res.Unlocked = s.commitLocked(next)

	var follow *contentRequest
	if next.TurnsRemaining == 0 {
		roll := Rollover(next)
		res.Unlocked = append(res.Unlocked, s.commitLocked(roll.Snapshot)...)
		res.RolledOver = true

		switch roll.Phase {
		case PhaseGameOver:
			s.phase = PhaseGameOver
			s.reason = roll.Reason
			res.Reason = roll.Reason
			s.log.Info("game over", "game_id", s.gameID, "reason", roll.Reason,
				"year", roll.Snapshot.Year, "month", roll.Snapshot.Month)
		case PhaseYearlyReview:
			report := Summarize(roll.Snapshot, s.ledger.Entries(), YearJustEnded(roll.Snapshot))
			s.review = &report
			s.phase = PhaseYearlyReview
			res.Review = &report
		case PhaseEvent, PhaseQuiz:
			follow = s.beginContentLocked(roll.Phase)
		}
	}
	res.Stats = s.stats
	res.Phase = s.phase
	return res, follow, nil
}

func (s *Service) guardPlayingLocked() error {
	if s.phase != PhasePlaying {
		return fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	if s.pending {
		return ErrContentPending
	}
	return nil
}

func (s *Service) beginContentLocked(phase Phase) *contentRequest {
	s.invalidateContentLocked()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ContentTimeout)
	s.pending = true
	s.cancelContent = cancel
	return &contentRequest{token: s.token, phase: phase, stats: s.stats, ctx: ctx}
}

// fetchContent asks the provider for the event or quiz and commits the phase
// change only if req is still the latest request.
func (s *Service) fetchContent(ctx context.Context, req contentRequest) {
	stop := context.AfterFunc(ctx, func() { s.CancelContent() })
	defer stop()

	var (
		ev  NewsEvent
		qz  Quiz
		err error
	)
	switch {
	case s.content == nil:
		err = errors.New("no content provider configured")
	case req.phase == PhaseEvent:
		ev, err = s.content.NewsEvent(req.ctx, req.stats)
	default:
		qz, err = s.content.Quiz(req.ctx, DifficultyFor(req.stats.Knowledge), req.stats.Language)
		if err == nil {
			err = qz.Validate()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.token != s.token {
		s.log.Warn("discarding stale content response", "phase", req.phase, "token", req.token, "latest", s.token)
		return
	}
	s.pending = false
	if s.cancelContent != nil {
		s.cancelContent()
		s.cancelContent = nil
	}
	if err != nil {
		s.log.Error("content request failed", "phase", req.phase, "game_id", s.gameID, "err", err)
		return
	}
	if req.phase == PhaseEvent {
		s.event = &ev
	} else {
		s.quiz = &qz
	}
	s.phase = req.phase
}

// CancelContent abandons an in-flight content request. The session stays in
// Playing.
func (s *Service) CancelContent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		s.invalidateContentLocked()
	}
}

// Purchase buys one upgrade level. It costs cash but no turn.
func (s *Service) Purchase(id UpgradeID) (ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !id.Valid() {
		return ActionResult{}, ErrUnknownUpgrade
	}
	if err := s.guardPlayingLocked(); err != nil {
		return ActionResult{}, err
	}
	next, applied, label := PurchaseUpgrade(s.stats, id)
	res := ActionResult{Applied: applied, Label: label, Phase: s.phase}
	if applied {
		res.Unlocked = s.commitLocked(next)
	}
	res.Stats = s.stats
	return res, nil
}

// ResolveEvent applies the chosen option, or the acknowledge impact when the
// event has no options, and returns to Playing.
func (s *Service) ResolveEvent(choice int) (ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEvent || s.event == nil {
		return ActionResult{}, fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	impact, err := s.event.ImpactFor(choice)
	if err != nil {
		return ActionResult{}, err
	}
	title := s.event.Title
	res := ActionResult{Applied: true, Label: title}
	res.Unlocked = s.commitLocked(impact.Apply(s.stats))
	s.event = nil
	s.phase = PhasePlaying
	res.Stats = s.stats
	res.Phase = s.phase
	return res, nil
}

// AnswerQuiz grades the answer. Only a correct answer changes the snapshot.
func (s *Service) AnswerQuiz(answer int) (QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseQuiz || s.quiz == nil {
		return QuizResult{}, fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	if answer < 0 || answer >= len(s.quiz.Options) {
		return QuizResult{}, fmt.Errorf("%w: answer %d", ErrInvalidChoice, answer)
	}
	q := *s.quiz
	res := QuizResult{
		Correct:      answer == q.CorrectIndex,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}
	if res.Correct {
		next := s.stats
		next.Knowledge += quizKnowledgeReward
		next.Cash += quizCashReward
		next.Approval = min(100, next.Approval+quizApprovalReward)
		res.Unlocked = s.commitLocked(next)
	}
	s.quiz = nil
	s.phase = PhasePlaying
	res.Stats = s.stats
	return res, nil
}

func (s *Service) AcknowledgeReview() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseYearlyReview {
		return State{}, fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	s.phase = PhasePlaying
	return s.stateLocked(), nil
}

// AcknowledgeGameOver goes back to the menu. The finished session stays in
// memory until NewGame or Restart.
func (s *Service) AcknowledgeGameOver() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseGameOver {
		return State{}, fmt.Errorf("%w: %s", ErrWrongPhase, s.phase)
	}
	s.phase = PhaseMenu
	return s.stateLocked(), nil
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Service) stateLocked() State {
	st := State{
		GameID:     s.gameID,
		Phase:      s.phase,
		Stats:      s.stats,
		HistoryLen: s.ledger.Len(),
		Unlocked:   append([]string{}, s.order...),
		Reason:     s.reason,
		Pending:    s.pending,
	}
	if s.event != nil {
		ev := *s.event
		st.Event = &ev
	}
	if s.quiz != nil {
		st.Quiz = &QuizView{
			Question:   s.quiz.Question,
			Options:    append([]string(nil), s.quiz.Options...),
			Difficulty: s.quiz.Difficulty,
		}
	}
	if s.phase == PhaseYearlyReview && s.review != nil {
		r := *s.review
		st.Review = &r
	}
	return st
}

func (s *Service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Ledger returns the current ledger. It may be read without holding the
// service lock. New game, resume and exit swap in a different ledger and bump
// generation, so readers holding a cursor know to start over.
func (s *Service) Ledger() (gameID string, generation uint64, ledger *Ledger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID, s.ledgerGen, s.ledger
}

func (s *Service) History() []Snapshot {
	_, _, l := s.Ledger()
	return l.Entries()
}

// LastReview returns the most recent yearly review, if any was computed.
func (s *Service) LastReview() (ReviewReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review == nil {
		return ReviewReport{}, false
	}
	return *s.review, true
}

func (s *Service) Achievements() []AchievementView {
	s.mu.Lock()
	defer s.mu.Unlock()
	lang := s.stats.Language
	out := make([]AchievementView, 0, len(Achievements))
	for _, a := range Achievements {
		_, ok := s.unlocked[a.ID]
		out = append(out, AchievementView{
			ID:          a.ID,
			Title:       a.Title.In(lang),
			Description: a.Description.In(lang),
			Icon:        a.Icon,
			Unlocked:    ok,
		})
	}
	return out
}

func (s *Service) UpgradeViews() []UpgradeView {
	snap := s.Snapshot()
	out := make([]UpgradeView, 0, len(Upgrades))
	for _, u := range Upgrades {
		level := snap.Level(u.ID)
		out = append(out, UpgradeView{
			ID:       u.Key,
			Title:    u.Title.In(snap.Language),
			Level:    level,
			NextCost: UpgradeCost(u.ID, level),
		})
	}
	return out
}
