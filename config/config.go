// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the chat server.
type Config struct {
	Port        int           `env:"PORT" envDefault:"3000"`
	StoragePath string        `env:"STORAGE_PATH" envDefault:"/tmp/lan-chat"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	Shutdown    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Room behavior.
	MaxMessageRunes  int     `env:"MAX_MESSAGE_RUNES" envDefault:"2000"`
	AnnouncePresence bool    `env:"ANNOUNCE_PRESENCE" envDefault:"false"`
	SendQueueSize    int     `env:"SEND_QUEUE_SIZE" envDefault:"256"`
	ChatRateLimit    float64 `env:"CHAT_RATE_LIMIT" envDefault:"10"`
	ChatRateBurst    int     `env:"CHAT_RATE_BURST" envDefault:"20"`

	// Uploads.
	MaxUploadSize        int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	UploadBucketMaxBytes int64 `env:"UPLOAD_BUCKET_MAX_BYTES" envDefault:"1073741824"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.StoragePath == "" {
		errs = append(errs, errors.New("STORAGE_PATH is required"))
	}
	if c.MaxMessageRunes < 0 {
		errs = append(errs, fmt.Errorf("MAX_MESSAGE_RUNES must not be negative: %d", c.MaxMessageRunes))
	}
	if c.SendQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("SEND_QUEUE_SIZE must be positive: %d", c.SendQueueSize))
	}
	if c.ChatRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_RATE_LIMIT must be positive: %v", c.ChatRateLimit))
	}
	if c.ChatRateBurst <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_RATE_BURST must be positive: %d", c.ChatRateBurst))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE must be positive: %d", c.MaxUploadSize))
	}
	if c.UploadBucketMaxBytes < c.MaxUploadSize {
		errs = append(errs, fmt.Errorf("UPLOAD_BUCKET_MAX_BYTES (%d) is smaller than MAX_UPLOAD_SIZE (%d)",
			c.UploadBucketMaxBytes, c.MaxUploadSize))
	}
	if _, err := c.ErrorLogsOnly(); err != nil {
		errs = append(errs, err)
	}
	if c.Shutdown <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive: %s", c.Shutdown))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ErrorLogsOnly reports whether LOG_LEVEL restricts output to errors.
func (c Config) ErrorLogsOnly() (bool, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return false, nil
	case "error":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported LOG_LEVEL %q (want info or error)", c.LogLevel)
	}
}
