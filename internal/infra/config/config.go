package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	SQLitePath         string
	ConflictPolicy     string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// Load reads configuration from the environment, with a .env file applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               8080,
		SQLitePath:         os.Getenv("SQLITE_PATH"),
		ConflictPolicy:     "return-existing",
		OutboxPollInterval: 500 * time.Millisecond,
		OutboxBatchSize:    50,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("CONFLICT_POLICY"); v != "" {
		if v != "return-existing" && v != "reject" {
			return nil, fmt.Errorf("invalid CONFLICT_POLICY %q (want return-existing or reject)", v)
		}
		cfg.ConflictPolicy = v
	}

	if v := os.Getenv("OUTBOX_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid OUTBOX_POLL_INTERVAL %q", v)
		}
		cfg.OutboxPollInterval = d
	}

	if v := os.Getenv("OUTBOX_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid OUTBOX_BATCH_SIZE %q", v)
		}
		cfg.OutboxBatchSize = n
	}

	return cfg, nil
}
