package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petrosmart/internal/game"
)

// RemoteClient fetches generated events and quizzes from a content service.
// Remote event impacts are absolute values, as the service returns them.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type remoteStatImpact struct {
	Stat  string   `json:"stat"`
	Value *float64 `json:"value"`
}

type remoteEvent struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Impact      remoteStatImpact   `json:"impact"`
	Options     []game.EventOption `json:"options"`
}

func NewRemoteClient(baseURL string, timeout time.Duration, rps float64) *RemoteClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *RemoteClient) NewsEvent(ctx context.Context, current game.Snapshot) (game.NewsEvent, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(current.Year))
	q.Set("pollution", strconv.FormatFloat(current.Pollution, 'f', 1, 64))
	q.Set("lang", string(current.Language))

	var raw remoteEvent
	if err := c.getJSON(ctx, "/v1/events", q, &raw); err != nil {
		return game.NewsEvent{}, err
	}
	if strings.TrimSpace(raw.Title) == "" {
		return game.NewsEvent{}, fmt.Errorf("content event has no title")
	}
	out := game.NewsEvent{
		Title:       raw.Title,
		Description: raw.Description,
		Options:     raw.Options,
	}
	if raw.Impact.Stat != "" && raw.Impact.Value != nil {
		impact, err := game.StatImpact(raw.Impact.Stat, *raw.Impact.Value)
		if err != nil {
			return game.NewsEvent{}, fmt.Errorf("content event impact: %w", err)
		}
		out.Impact = impact
	}
	return out, nil
}

func (c *RemoteClient) Quiz(ctx context.Context, difficulty game.Difficulty, lang game.Language) (game.Quiz, error) {
	q := url.Values{}
	q.Set("difficulty", string(difficulty))
	q.Set("lang", string(lang))

	var out game.Quiz
	if err := c.getJSON(ctx, "/v1/quiz", q, &out); err != nil {
		return game.Quiz{}, err
	}
	if out.Difficulty == "" {
		out.Difficulty = difficulty
	}
	if err := out.Validate(); err != nil {
		return game.Quiz{}, fmt.Errorf("content quiz: %w", err)
	}
	return out, nil
}

func (c *RemoteClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("content rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("content request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("content status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}
	return nil
}

// Fallback tries primary first and serves from secondary when it fails.
type Fallback struct {
	primary   game.ContentProvider
	secondary game.ContentProvider
	log       *slog.Logger
}

func NewFallback(primary, secondary game.ContentProvider, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, log: logger}
}

func (f *Fallback) NewsEvent(ctx context.Context, current game.Snapshot) (game.NewsEvent, error) {
	ev, err := f.primary.NewsEvent(ctx, current)
	if err == nil {
		return ev, nil
	}
	if ctx.Err() != nil {
		return game.NewsEvent{}, err
	}
	f.log.Warn("remote event failed, using catalog", "err", err)
	return f.secondary.NewsEvent(ctx, current)
}

func (f *Fallback) Quiz(ctx context.Context, difficulty game.Difficulty, lang game.Language) (game.Quiz, error) {
	q, err := f.primary.Quiz(ctx, difficulty, lang)
	if err == nil {
		return q, nil
	}
	if ctx.Err() != nil {
		return game.Quiz{}, err
	}
	f.log.Warn("remote quiz failed, using catalog", "err", err)
	return f.secondary.Quiz(ctx, difficulty, lang)
}
