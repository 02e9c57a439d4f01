package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"petrosmart/internal/config"
	"petrosmart/internal/content"
	"petrosmart/internal/game"
	"petrosmart/internal/store"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "petro",
		Short:        "PetroSmart: run a petroleum company one turn at a time",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(),
		newStatusCmd(),
		newActCmd(),
		newBuyCmd(),
		newEventCmd(),
		newQuizCmd(),
		newReviewCmd(),
		newAckCmd(),
		newHistoryCmd(),
		newAchievementsCmd(),
		newRestartCmd(),
		newPlayCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type engine struct {
	svc   *game.Service
	store game.Store
	close func()
}

func openEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.LoadEngineFromEnv()
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	provider, err := contentProvider(cfg.Content, logger)
	if err != nil {
		closeStore()
		return nil, err
	}
	svc := game.NewService(game.ServiceConfig{
		Language:       cfg.Language,
		ContentTimeout: cfg.Content.Timeout,
	}, st, provider, logger)
	return &engine{svc: svc, store: st, close: closeStore}, nil
}

func contentProvider(cfg config.ContentConfig, logger *slog.Logger) (game.ContentProvider, error) {
	catalog, err := content.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return catalog, nil
	}
	remote := content.NewRemoteClient(cfg.URL, cfg.Timeout, cfg.RPS)
	return content.NewFallback(remote, catalog, logger), nil
}

// withGame resumes the saved game, runs fn, and saves the result.
func withGame(cmd *cobra.Command, fn func(ctx context.Context, svc *game.Service) error) error {
	ctx := cmd.Context()
	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.close()

	if _, resumed := eng.svc.Resume(ctx); !resumed {
		printWarn("No saved game found; starting a new company.")
	}
	if err := fn(ctx, eng.svc); err != nil {
		return err
	}
	return eng.save(ctx)
}

// save persists the session, or clears the slot once the game is finished.
func (e *engine) save(ctx context.Context) error {
	if e.svc.Phase() == game.PhaseMenu {
		return e.store.Clear(ctx)
	}
	return e.svc.Save(ctx)
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new company, replacing any saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.close()
			st := eng.svc.NewGame()
			if err := eng.save(cmd.Context()); err != nil {
				return err
			}
			printSuccess("New company founded.")
			renderState(st)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current month, resources, and phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				renderState(svc.State())
				return nil
			})
		},
	}
}

func newActCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "act <drill|refine|research|renewable|skip>",
		Short:     "Spend one turn on an action",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"drill", "refine", "research", "renewable", "skip"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := game.ParseAction(args[0])
			if err != nil {
				return err
			}
			return withGame(cmd, func(ctx context.Context, svc *game.Service) error {
				res, err := svc.Act(ctx, kind)
				if err != nil {
					return explain(err)
				}
				renderActionResult(res)
				renderState(svc.State())
				return nil
			})
		},
	}
}

func newBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy [drill|refine|research|renewable]",
		Short: "Buy an upgrade level, or list upgrade prices",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				if len(args) == 0 {
					renderUpgrades(svc.UpgradeViews())
					return nil
				}
				id, err := game.ParseUpgrade(args[0])
				if err != nil {
					return err
				}
				res, err := svc.Purchase(id)
				if err != nil {
					return explain(err)
				}
				renderActionResult(res)
				renderUpgrades(svc.UpgradeViews())
				return nil
			})
		},
	}
}

func newEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event [option]",
		Short: "Show the pending world event, or respond with an option number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				st := svc.State()
				if st.Phase != game.PhaseEvent || st.Event == nil {
					return explain(fmt.Errorf("%w: %s", game.ErrWrongPhase, st.Phase))
				}
				renderEvent(*st.Event)
				choice := -1
				switch {
				case len(args) == 1:
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("option must be a number")
					}
					choice = n - 1
				case len(st.Event.Options) > 0:
					n, err := promptIndex("Your decision", len(st.Event.Options))
					if err != nil {
						return err
					}
					choice = n
				}
				res, err := svc.ResolveEvent(choice)
				if err != nil {
					return explain(err)
				}
				renderActionResult(res)
				return nil
			})
		},
	}
}

func newQuizCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz [answer]",
		Short: "Show the pending quiz, or answer it with an option number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				st := svc.State()
				if st.Phase != game.PhaseQuiz || st.Quiz == nil {
					return explain(fmt.Errorf("%w: %s", game.ErrWrongPhase, st.Phase))
				}
				renderQuiz(*st.Quiz)
				var answer int
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("answer must be a number")
					}
					answer = n - 1
				} else {
					n, err := promptIndex("Your answer", len(st.Quiz.Options))
					if err != nil {
						return err
					}
					answer = n
				}
				res, err := svc.AnswerQuiz(answer)
				if err != nil {
					return explain(err)
				}
				renderQuizResult(res)
				return nil
			})
		},
	}
}

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Show the most recent yearly review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				r, ok := svc.LastReview()
				if !ok {
					printInfo("No yearly review yet. Reviews arrive every January.")
					return nil
				}
				renderReview(r)
				return nil
			})
		},
	}
}

func newAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge the yearly review or the game over screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				switch svc.Phase() {
				case game.PhaseYearlyReview:
					st, err := svc.AcknowledgeReview()
					if err != nil {
						return err
					}
					printSuccess(fmt.Sprintf("On to %s.", monthLabel(st.Stats)))
				case game.PhaseGameOver:
					if _, err := svc.AcknowledgeGameOver(); err != nil {
						return err
					}
					printInfo("Company closed. Run `petro new` to start again.")
				default:
					printInfo("Nothing to acknowledge.")
				}
				return nil
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded snapshots, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				renderHistory(svc.History(), limit)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 15, "number of entries to show (0 for all)")
	return cmd
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which are unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, func(_ context.Context, svc *game.Service) error {
				renderAchievements(svc.Achievements())
				return nil
			})
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Delete the saved game and return to the menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.close()
			eng.svc.Restart()
			if err := eng.store.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Saved game deleted.")
			return nil
		},
	}
}

// explain adds a hint for the guard errors a player is likely to hit.
func explain(err error) error {
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		return fmt.Errorf("%v (run `petro status` to see what the game is waiting for)", err)
	case errors.Is(err, game.ErrNoTurns):
		return fmt.Errorf("%v (skip or finish the month first)", err)
	case errors.Is(err, game.ErrInvalidChoice):
		return fmt.Errorf("%v (options are numbered from 1)", err)
	}
	return err
}
