package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"petrosmart/internal/game"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type StoreConfig struct {
	Kind        string
	DataDir     string
	SQLitePath  string
	DatabaseURL string
}

type ContentConfig struct {
	URL     string
	Timeout time.Duration
	RPS     float64
}

type EngineConfig struct {
	Language game.Language
	Debug    bool
	Store    StoreConfig
	Content  ContentConfig
}

type APIConfig struct {
	EngineConfig
	Addr       string
	RPS        float64
	Burst      int
	StreamPoll time.Duration
}

func LoadEngineFromEnv() (EngineConfig, error) {
	dataDir := strings.TrimSpace(os.Getenv("PETRO_DATA_DIR"))
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return EngineConfig{}, fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".petrosmart")
	}

	cfg := EngineConfig{
		Language: game.ParseLanguage(envDefault("PETRO_LANG", string(game.LangEN))),
		Debug:    envBoolDefault("PETRO_DEBUG", false),
		Store: StoreConfig{
			Kind:        strings.ToLower(envDefault("PETRO_STORE", StoreFile)),
			DataDir:     dataDir,
			SQLitePath:  envDefault("PETRO_SQLITE_PATH", filepath.Join(dataDir, "petrosmart.db")),
			DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		},
		Content: ContentConfig{
			URL:     strings.TrimRight(strings.TrimSpace(os.Getenv("PETRO_CONTENT_URL")), "/"),
			Timeout: envDurationDefault("PETRO_CONTENT_TIMEOUT", 20*time.Second),
			RPS:     envFloatDefault("PETRO_CONTENT_RPS", 2),
		},
	}
	switch cfg.Store.Kind {
	case StoreFile, StoreSQLite:
	case StorePostgres:
		if cfg.Store.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for PETRO_STORE=postgres")
		}
	default:
		return cfg, fmt.Errorf("unknown PETRO_STORE %q", cfg.Store.Kind)
	}
	return cfg, nil
}

func LoadAPIFromEnv() (APIConfig, error) {
	engine, err := LoadEngineFromEnv()
	if err != nil {
		return APIConfig{}, err
	}

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("PETRO_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		EngineConfig: engine,
		Addr:         addr,
		RPS:          envFloatDefault("PETRO_API_RPS", 10),
		Burst:        envIntDefault("PETRO_API_BURST", 20),
		StreamPoll:   envDurationDefault("PETRO_STREAM_POLL", 500*time.Millisecond),
	}
	if cfg.RPS <= 0 {
		return cfg, fmt.Errorf("PETRO_API_RPS must be positive")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
