package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultAddr              = ":8080"
	DefaultHeartbeatInterval = 20 * time.Second
	DefaultBroadcastCapacity = 16
	DefaultInboundQueueSize  = 256
	DefaultMaxMessageBody    = 256
	DefaultMaxPageSize       = 100
)

// Config holds all configuration for the messenger service.
//
// HeartbeatInterval must be a positive duration: the hub's keep-alive loop
// has no "disabled" mode, so a zero interval is a startup fault rather than
// a silently skipped heartbeat.
type Config struct {
	Addr              string        `validate:"required"`
	HeartbeatInterval time.Duration `validate:"required,gt=0"`
	BroadcastCapacity int           `validate:"required,gt=0"`
	InboundQueueSize  int           `validate:"required,gt=0"`
	MaxMessageBody    int           `validate:"required,gt=0"`
	MaxPageSize       int           `validate:"required,gt=0"`
}

// New loads configuration from environment variables, falling back to
// defaults for anything unset. It returns an error for values that fail
// validation (e.g. a non-positive heartbeat interval).
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:              envString("SERVER_ADDR", DefaultAddr),
		HeartbeatInterval: DefaultHeartbeatInterval,
		BroadcastCapacity: envInt("BROADCAST_CAPACITY", DefaultBroadcastCapacity),
		InboundQueueSize:  envInt("INBOUND_QUEUE_SIZE", DefaultInboundQueueSize),
		MaxMessageBody:    envInt("MAX_MESSAGE_BODY", DefaultMaxMessageBody),
		MaxPageSize:       envInt("MAX_PAGE_SIZE", DefaultMaxPageSize),
	}

	if raw := os.Getenv("HEARTBEAT_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HEARTBEAT_INTERVAL %q: %w", raw, err)
		}
		cfg.HeartbeatInterval = interval
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring non-numeric environment variable", "key", key, "value", raw)
		return fallback
	}
	return v
}
