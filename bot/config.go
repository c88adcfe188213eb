// Package bot runs an AI participant that sits in the room and answers
// through an OpenAI-compatible chat completions endpoint such as Ollama or
// LM Studio.
package bot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported endpoint flavors.
const (
	APITypeOllama   = "ollama"
	APITypeLMStudio = "lmstudio"
)

// Config holds the bot settings. ServerURL may be left empty and filled in by
// the caller.
type Config struct {
	ServerURL string `env:"AI_SERVER_URL"`
	Nickname  string `env:"AI_NICKNAME"`
	FullName  string `env:"AI_FULL_NAME" envDefault:"LanAI Bot"`

	APIType string `env:"AI_API_TYPE" envDefault:"ollama"`
	APIURL  string `env:"AI_API_URL" envDefault:"http://localhost:11434/v1/"`
	APIKey  string `env:"AI_API_KEY" envDefault:"local"`
	Model   string `env:"AI_MODEL" envDefault:"qwen3:8b"`

	ResponseProbability float64 `env:"AI_RESPONSE_PROBABILITY" envDefault:"0.1"`
	InfoProbability     float64 `env:"AI_INFO_PROBABILITY" envDefault:"0.1"`

	Retries        int           `env:"AI_RETRIES" envDefault:"10"`
	RetryWait      time.Duration `env:"AI_RETRY_WAIT" envDefault:"5s"`
	RequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"30s"`
	ReconnectWait  time.Duration `env:"AI_RECONNECT_WAIT" envDefault:"5s"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
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
	if !slices.Contains([]string{APITypeOllama, APITypeLMStudio}, c.APIType) {
		errs = append(errs, fmt.Errorf("AI_API_TYPE must be %s or %s: %q", APITypeOllama, APITypeLMStudio, c.APIType))
	}
	if c.APIURL == "" {
		errs = append(errs, errors.New("AI_API_URL is required"))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("AI_MODEL is required"))
	}
	if c.ResponseProbability < 0 || c.ResponseProbability > 1 {
		errs = append(errs, fmt.Errorf("AI_RESPONSE_PROBABILITY must be within [0,1]: %v", c.ResponseProbability))
	}
	if c.InfoProbability < 0 || c.InfoProbability > 1 {
		errs = append(errs, fmt.Errorf("AI_INFO_PROBABILITY must be within [0,1]: %v", c.InfoProbability))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("AI_RETRIES must not be negative: %d", c.Retries))
	}
	if c.RetryWait < 0 {
		errs = append(errs, fmt.Errorf("AI_RETRY_WAIT must not be negative: %s", c.RetryWait))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("AI_REQUEST_TIMEOUT must be positive: %s", c.RequestTimeout))
	}
	if c.ReconnectWait <= 0 {
		errs = append(errs, fmt.Errorf("AI_RECONNECT_WAIT must be positive: %s", c.ReconnectWait))
	}
	return errors.Join(errs...)
}
