package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load reads the configuration from v on top of the defaults.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	// Speech settings
	if v.IsSet("speech.engine") {
		cfg.Speech.Engine = v.GetString("speech.engine")
	}
	if v.IsSet("speech.binary") {
		cfg.Speech.Binary = v.GetString("speech.binary")
	}
	if v.IsSet("speech.language") {
		cfg.Speech.Language = v.GetString("speech.language")
	}
	if v.IsSet("speech.rate") {
		cfg.Speech.Rate = v.GetFloat64("speech.rate")
	}
	if v.IsSet("speech.max_chars") {
		cfg.Speech.MaxChars = v.GetInt("speech.max_chars")
	}
	if v.IsSet("speech.watchdog_timeout") {
		if d, err := time.ParseDuration(v.GetString("speech.watchdog_timeout")); err == nil {
			cfg.Speech.WatchdogTimeout = d
		}
	}

	// Acquisition settings
	if v.IsSet("acquire.proxy_url") {
		cfg.Acquire.ProxyURL = v.GetString("acquire.proxy_url")
	}
	if v.IsSet("acquire.mode") {
		cfg.Acquire.Mode = v.GetString("acquire.mode")
	}
	if v.IsSet("acquire.timeout") {
		if d, err := time.ParseDuration(v.GetString("acquire.timeout")); err == nil {
			cfg.Acquire.Timeout = d
		}
	}
	if v.IsSet("acquire.max_content") {
		cfg.Acquire.MaxContent = v.GetInt("acquire.max_content")
	}
	if v.IsSet("acquire.requests_per_minute") {
		cfg.Acquire.RequestsPerMinute = v.GetInt("acquire.requests_per_minute")
	}
	if v.IsSet("acquire.placeholder") {
		cfg.Acquire.Placeholder = v.GetString("acquire.placeholder")
	}

	// Dictionary settings
	if v.IsSet("dictionary.source") {
		cfg.Dictionary.Source = v.GetString("dictionary.source")
	}
	if v.IsSet("dictionary.timeout") {
		if d, err := time.ParseDuration(v.GetString("dictionary.timeout")); err == nil {
			cfg.Dictionary.Timeout = d
		}
	}

	// Storage settings
	if v.IsSet("storage.backend") {
		cfg.Storage.Backend = v.GetString("storage.backend")
	}
	if v.IsSet("storage.dir") {
		cfg.Storage.Dir = v.GetString("storage.dir")
	}
	if v.IsSet("storage.redis_url") {
		cfg.Storage.RedisURL = v.GetString("storage.redis_url")
	}
	if v.IsSet("storage.redis_prefix") {
		cfg.Storage.RedisPrefix = v.GetString("storage.redis_prefix")
	}

	// Normalization settings
	if v.IsSet("normalize.strip_boilerplate") {
		cfg.Normalize.StripBoilerplate = v.GetBool("normalize.strip_boilerplate")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SetDefaults registers the defaults with v so they show up in v.AllSettings
// and can be bound to flags.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("speech.engine", d.Speech.Engine)
	v.SetDefault("speech.language", d.Speech.Language)
	v.SetDefault("speech.rate", d.Speech.Rate)
	v.SetDefault("speech.max_chars", d.Speech.MaxChars)
	v.SetDefault("speech.watchdog_timeout", d.Speech.WatchdogTimeout.String())

	v.SetDefault("acquire.proxy_url", d.Acquire.ProxyURL)
	v.SetDefault("acquire.mode", d.Acquire.Mode)
	v.SetDefault("acquire.timeout", d.Acquire.Timeout.String())
	v.SetDefault("acquire.max_content", d.Acquire.MaxContent)
	v.SetDefault("acquire.requests_per_minute", d.Acquire.RequestsPerMinute)

	v.SetDefault("dictionary.timeout", d.Dictionary.Timeout.String())

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.redis_prefix", d.Storage.RedisPrefix)

	v.SetDefault("normalize.strip_boilerplate", d.Normalize.StripBoilerplate)
}
