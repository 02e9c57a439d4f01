package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrosmart/internal/game"
)

func TestBuiltinCatalogIsValid(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	for _, d := range []game.Difficulty{game.DifficultyEasy, game.DifficultyMedium, game.DifficultyHard} {
		for _, lang := range []game.Language{game.LangEN, game.LangID} {
			q, err := c.Quiz(context.Background(), d, lang)
			require.NoError(t, err)
			require.NoError(t, q.Validate())
			assert.Equal(t, d, q.Difficulty)
		}
	}
}

func TestCatalogEventMaterializesDeltas(t *testing.T) {
	c, err := ParseCatalog([]byte(`
events:
  - title: {EN: Spill, ID: Tumpahan}
    description: {EN: Oil in the bay}
    impact: {approval: -10, pollution: -20}
    options:
      - label: {EN: Clean up}
        impact: {cash: -300000}
quizzes:
  - difficulty: easy
    question: {EN: Q}
    options: {EN: [a, b, c, d]}
    correctIndex: 0
`))
	require.NoError(t, err)

	s := game.NewSnapshot(game.LangID)
	s.Cash = 2_000_000
	ev, err := c.NewsEvent(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Tumpahan", ev.Title)
	assert.Equal(t, "Oil in the bay", ev.Description)
	require.NotNil(t, ev.Impact.Approval)
	assert.Equal(t, 70.0, *ev.Impact.Approval)
	require.NotNil(t, ev.Impact.Pollution)
	assert.Equal(t, 0.0, *ev.Impact.Pollution)
	assert.Nil(t, ev.Impact.Cash)
	require.Len(t, ev.Options, 1)
	assert.Equal(t, 1_700_000.0, *ev.Options[0].Impact.Cash)

	// Applying the option overlay gives the delta result.
	next := ev.Options[0].Impact.Apply(s)
	assert.Equal(t, 1_700_000.0, next.Cash)
	assert.Equal(t, s.Approval, next.Approval)
}

func TestCatalogQuizRotates(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	first, err := c.Quiz(context.Background(), game.DifficultyHard, game.LangEN)
	require.NoError(t, err)
	second, err := c.Quiz(context.Background(), game.DifficultyHard, game.LangEN)
	require.NoError(t, err)
	assert.NotEqual(t, first.Question, second.Question)
}

func TestParseCatalogRejectsBadQuiz(t *testing.T) {
	_, err := ParseCatalog([]byte(`
events:
  - title: {EN: T}
quizzes:
  - difficulty: easy
    question: {EN: Q}
    options: {EN: [a, b]}
    correctIndex: 0
`))
	require.Error(t, err)
}

func TestRemoteClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/events":
			assert.Equal(t, "2026", r.URL.Query().Get("year"))
			_, _ = w.Write([]byte(`{"title":"OPEC cut","description":"Prices up","impact":{"stat":"cash","value":1500000},
				"options":[{"label":"Sell","impact":{"cash":2000000,"approval":60}}]}`))
		case "/v1/quiz":
			assert.Equal(t, "hard", r.URL.Query().Get("difficulty"))
			_, _ = w.Write([]byte(`{"question":"Q?","options":["a","b","c","d"],"correctIndex":3,"explanation":"because"}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL+"/", time.Second, 100)
	s := game.NewSnapshot(game.LangEN)
	s.Year = 2026
	ev, err := c.NewsEvent(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "OPEC cut", ev.Title)
	require.NotNil(t, ev.Impact.Cash)
	assert.Equal(t, 1_500_000.0, *ev.Impact.Cash)
	require.Len(t, ev.Options, 1)
	assert.Equal(t, 60.0, *ev.Options[0].Impact.Approval)

	q, err := c.Quiz(context.Background(), game.DifficultyHard, game.LangEN)
	require.NoError(t, err)
	assert.Equal(t, 3, q.CorrectIndex)
	assert.Equal(t, game.DifficultyHard, q.Difficulty)
}

func TestRemoteClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/quiz" {
			_, _ = w.Write([]byte(`{"question":"Q?","options":["a"],"correctIndex":0}`))
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, time.Second, 100)
	_, err := c.NewsEvent(context.Background(), game.NewSnapshot(game.LangEN))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = c.Quiz(context.Background(), game.DifficultyEasy, game.LangEN)
	require.Error(t, err)
}

func TestRemoteClientHonorsContext(t *testing.T) {
	c := NewRemoteClient("http://127.0.0.1:1", time.Second, 0.001)
	// Drain the single burst token so the next call has to wait.
	c.limiter.Allow()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Quiz(ctx, game.DifficultyEasy, game.LangEN)
	require.Error(t, err)
}

type failingProvider struct{}

func (failingProvider) NewsEvent(context.Context, game.Snapshot) (game.NewsEvent, error) {
	return game.NewsEvent{}, errors.New("down")
}

func (failingProvider) Quiz(context.Context, game.Difficulty, game.Language) (game.Quiz, error) {
	return game.Quiz{}, errors.New("down")
}

func TestFallbackUsesCatalog(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	f := NewFallback(failingProvider{}, c, nil)

	q, err := f.Quiz(context.Background(), game.DifficultyEasy, game.LangEN)
	require.NoError(t, err)
	assert.NoError(t, q.Validate())

	ev, err := f.NewsEvent(context.Background(), game.NewSnapshot(game.LangEN))
	require.NoError(t, err)
	assert.NotEmpty(t, ev.Title)
}
