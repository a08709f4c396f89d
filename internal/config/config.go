// Package config loads pipeline configuration by layering defaults, an
// optional YAML file, and SONGPREP_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SONGPREP_"

// Spotify holds the external catalog client settings. BaseURL and TokenURL
// are overridable so tests can point the client at a local server.
type Spotify struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	BaseURL      string        `koanf:"base_url"`
	TokenURL     string        `koanf:"token_url"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// MinFeatureFields is the minimum number of populated fields a feature
	// response must carry to count as a match. Under-populated placeholder
	// entries (e.g. instrumental-only stubs) fall below it and are treated
	// as no-match. The external schema has drifted before, so this is a
	// validation rule, not a constant.
	MinFeatureFields int `koanf:"min_feature_fields"`
}

type Config struct {
	CorpusPath   string `koanf:"corpus_path"`
	OutputDir    string `koanf:"output_dir"`
	DatabasePath string `koanf:"database_path"`
	ReportPath   string `koanf:"report_path"`

	// Workers bounds concurrent feature lookups. 1 keeps lookups strictly
	// sequential, which is the safe default under the catalog's rate limits.
	Workers int `koanf:"workers"`

	// OnWriteError picks the policy for period write failures:
	// "continue" (default) finishes the run and reports them all,
	// "abort" stops at the first one.
	OnWriteError string `koanf:"on_write_error"`

	Spotify Spotify `koanf:"spotify"`
}

func defaults() *Config {
	return &Config{
		CorpusPath:   "data.json",
		OutputDir:    "data",
		DatabasePath: "",
		ReportPath:   "",
		Workers:      1,
		OnWriteError: "continue",
		Spotify: Spotify{
			BaseURL:          "https://api.spotify.com/v1",
			TokenURL:         "https://accounts.spotify.com/api/token",
			MaxRetries:       3,
			RetryBackoff:     500 * time.Millisecond,
			MinFeatureFields: 12,
		},
	}
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults
//  2. YAML file (path argument, or SONGPREP_CONFIG)
//  3. env vars (SONGPREP_ prefix, "__" separates nesting:
//     SONGPREP_SPOTIFY__CLIENT_ID -> spotify.client_id)
//  4. SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET, honored directly
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("SONGPREP_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CorpusPath == "" {
		return errors.New("corpus_path must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	switch c.OnWriteError {
	case "continue", "abort":
	default:
		return fmt.Errorf("on_write_error must be \"continue\" or \"abort\", got %q", c.OnWriteError)
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return errors.New("spotify client credentials are required (SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET)")
	}
	if c.Spotify.MinFeatureFields < 1 {
		return fmt.Errorf("spotify.min_feature_fields must be >= 1, got %d", c.Spotify.MinFeatureFields)
	}
	return nil
}
