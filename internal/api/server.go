package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petrosmart/internal/config"
	"petrosmart/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	game    *game.Service
	limiter *ipLimiter
	mux     *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StreamPoll <= 0 {
		cfg.StreamPoll = 500 * time.Millisecond
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		game:    gameSvc,
		limiter: newIPLimiter(cfg.RPS, cfg.Burst),
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1/game", func(r chi.Router) {
		// Long-lived; stays outside the request timeout.
		r.Get("/history/stream", s.handleHistoryStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/", s.handleState)
			r.Post("/new", s.handleNew)
			r.Post("/resume", s.handleResume)
			r.Post("/save", s.handleSave)
			r.Post("/exit", s.handleExit)
			r.Post("/restart", s.handleRestart)

			r.Post("/actions", s.handleAction)
			r.Get("/upgrades", s.handleUpgrades)
			r.Post("/upgrades", s.handlePurchase)
			r.Post("/event/resolve", s.handleResolveEvent)
			r.Post("/quiz/answer", s.handleAnswerQuiz)
			r.Post("/review/ack", s.handleAckReview)
			r.Post("/over/ack", s.handleAckGameOver)

			r.Get("/history", s.handleHistory)
			r.Get("/achievements", s.handleAchievements)
			r.Get("/review", s.handleReview)
		})
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.State())
}

func (s *Server) handleNew(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.NewGame())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	st, resumed := s.game.Resume(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"resumed": resumed, "state": st})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Save(r.Context()); err != nil {
		s.log.Error("save failed", "err", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleExit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Exit())
}

func (s *Server) handleRestart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Restart())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Kind string `json:"kind"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.game.Act(r.Context(), game.ActionKind(in.Kind))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpgrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"upgrades": s.game.UpgradeViews()})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Upgrade string `json:"upgrade"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := game.ParseUpgrade(in.Upgrade)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := s.game.Purchase(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Choice *int `json:"choice"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	choice := -1
	if in.Choice != nil {
		choice = *in.Choice
	}
	res, err := s.game.ResolveEvent(choice)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnswerQuiz(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Answer *int `json:"answer"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Answer == nil {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}
	res, err := s.game.AnswerQuiz(*in.Answer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAckReview(w http.ResponseWriter, _ *http.Request) {
	st, err := s.game.AcknowledgeReview()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAckGameOver(w http.ResponseWriter, _ *http.Request) {
	st, err := s.game.AcknowledgeGameOver()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gameID, gen, ledger := s.game.Ledger()
	writeJSON(w, http.StatusOK, map[string]any{
		"gameId":     gameID,
		"generation": gen,
		"since":      since,
		"entries":    ledger.Since(since),
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"achievements": s.game.Achievements()})
}

func (s *Server) handleReview(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.game.LastReview()
	if !ok {
		writeError(w, http.StatusNotFound, "no yearly review yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func sinceParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("since"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("since must be a non-negative integer")
	}
	return n, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrNoTurns), errors.Is(err, game.ErrContentPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrUnknownAction), errors.Is(err, game.ErrUnknownUpgrade), errors.Is(err, game.ErrInvalidChoice):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNoSave):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
