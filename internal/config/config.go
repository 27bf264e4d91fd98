// Package config holds the typed application configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/readlater/internal/acquire"
	"github.com/dgnsrekt/readlater/internal/normalize"
	"github.com/dgnsrekt/readlater/internal/playback"
)

// Speech engines.
const (
	EngineESpeak = "espeak"
	EngineMock   = "mock"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Speech rate bounds.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// Config contains all configuration options.
type Config struct {
	Speech     SpeechConfig     `yaml:"speech"`
	Acquire    AcquireConfig    `yaml:"acquire"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Storage    StorageConfig    `yaml:"storage"`
	Normalize  NormalizeConfig  `yaml:"normalize"`
}

// SpeechConfig contains speech and playback settings.
type SpeechConfig struct {
	Engine          string        `yaml:"engine"`
	Binary          string        `yaml:"binary"`
	Language        string        `yaml:"language"`
	Rate            float64       `yaml:"rate"`
	MaxChars        int           `yaml:"max_chars"`
	WatchdogTimeout time.Duration `yaml:"watchdog_timeout"`
}

// AcquireConfig contains scraping proxy settings.
type AcquireConfig struct {
	ProxyURL          string        `yaml:"proxy_url"`
	Mode              string        `yaml:"mode"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxContent        int           `yaml:"max_content"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Placeholder       string        `yaml:"placeholder"`
}

// DictionaryConfig points at the pronunciation dictionary CSV.
type DictionaryConfig struct {
	Source  string        `yaml:"source"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig selects where articles and preferences live.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// NormalizeConfig contains text normalization settings.
type NormalizeConfig struct {
	StripBoilerplate bool `yaml:"strip_boilerplate"`
}

// Default returns a Config with sensible defaults. Storage.Dir is left
// empty; the caller fills it with the platform data directory.
func Default() Config {
	acq := acquire.DefaultConfig()
	return Config{
		Speech: SpeechConfig{
			Engine:          EngineESpeak,
			Language:        playback.DefaultLanguage,
			Rate:            1.0,
			MaxChars:        playback.DefaultMaxChars,
			WatchdogTimeout: playback.DefaultWatchdogTimeout,
		},
		Acquire: AcquireConfig{
			ProxyURL:          acq.ProxyURL,
			Mode:              string(acq.Mode),
			Timeout:           acq.Timeout,
			MaxContent:        acq.MaxContent,
			RequestsPerMinute: acq.RequestsPerMinute,
			Placeholder:       acq.Placeholder,
		},
		Dictionary: DictionaryConfig{
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend:     BackendFile,
			RedisPrefix: "readlater:",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	var errs []error

	switch c.Speech.Engine {
	case EngineESpeak, EngineMock:
	default:
		errs = append(errs, fmt.Errorf("speech.engine must be %q or %q, got %q", EngineESpeak, EngineMock, c.Speech.Engine))
	}
	if c.Speech.Rate < MinRate || c.Speech.Rate > MaxRate {
		errs = append(errs, fmt.Errorf("speech.rate must be between %.1f and %.1f, got %g", MinRate, MaxRate, c.Speech.Rate))
	}
	if _, err := language.Parse(c.Speech.Language); err != nil {
		errs = append(errs, fmt.Errorf("speech.language %q is not a valid language tag", c.Speech.Language))
	}
	if c.Speech.MaxChars <= 0 {
		errs = append(errs, errors.New("speech.max_chars must be positive"))
	}
	if c.Speech.WatchdogTimeout <= 0 {
		errs = append(errs, errors.New("speech.watchdog_timeout must be positive"))
	}

	switch acquire.Mode(c.Acquire.Mode) {
	case acquire.ModeHTML, acquire.ModeMarkdown:
	default:
		errs = append(errs, fmt.Errorf("acquire.mode must be %q or %q, got %q", acquire.ModeHTML, acquire.ModeMarkdown, c.Acquire.Mode))
	}
	if !strings.HasPrefix(c.Acquire.ProxyURL, "http://") && !strings.HasPrefix(c.Acquire.ProxyURL, "https://") {
		errs = append(errs, fmt.Errorf("acquire.proxy_url must be an http(s) url, got %q", c.Acquire.ProxyURL))
	}
	if c.Acquire.MaxContent <= 0 {
		errs = append(errs, errors.New("acquire.max_content must be positive"))
	}
	if c.Acquire.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("acquire.requests_per_minute cannot be negative"))
	}

	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be file, redis or memory, got %q", c.Storage.Backend))
	}

	return errors.Join(errs...)
}

// PlaybackConfig converts the speech settings for the player.
func (c Config) PlaybackConfig() playback.Config {
	return playback.Config{
		MaxChars:        c.Speech.MaxChars,
		WatchdogTimeout: c.Speech.WatchdogTimeout,
		Language:        c.Speech.Language,
		Rate:            c.Speech.Rate,
		Normalize:       normalize.Options{StripBoilerplate: c.Normalize.StripBoilerplate},
	}
}

// AcquireConfig converts the acquisition settings.
func (c Config) AcquireConfig() acquire.Config {
	return acquire.Config{
		ProxyURL:          c.Acquire.ProxyURL,
		Mode:              acquire.Mode(c.Acquire.Mode),
		Timeout:           c.Acquire.Timeout,
		MaxContent:        c.Acquire.MaxContent,
		RequestsPerMinute: c.Acquire.RequestsPerMinute,
		Placeholder:       c.Acquire.Placeholder,
	}
}

// StorageDir returns the expanded storage directory, or fallback when none
// is configured.
func (c Config) StorageDir(fallback string) (string, error) {
	if c.Storage.Dir == "" {
		return fallback, nil
	}
	dir, err := homedir.Expand(c.Storage.Dir)
	if err != nil {
		return "", fmt.Errorf("unable to expand storage.dir: %w", err)
	}
	return filepath.Clean(dir), nil
}
