package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/readlater/internal/acquire"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
speech:
  engine: mock
  language: en-US
  rate: 1.5
  watchdog_timeout: 2s
acquire:
  proxy_url: https://r.example/{raw}
  mode: markdown
  max_content: 5000
dictionary:
  source: https://example.com/dict.csv
storage:
  backend: redis
  redis_url: redis://localhost:6379/0
normalize:
  strip_boilerplate: true
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, EngineMock, cfg.Speech.Engine)
	assert.Equal(t, "en-US", cfg.Speech.Language)
	assert.InDelta(t, 1.5, cfg.Speech.Rate, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Speech.WatchdogTimeout)
	assert.Equal(t, 32000, cfg.Speech.MaxChars, "unset values keep their defaults")
	assert.Equal(t, "markdown", cfg.Acquire.Mode)
	assert.Equal(t, 5000, cfg.Acquire.MaxContent)
	assert.Equal(t, "https://example.com/dict.csv", cfg.Dictionary.Source)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.True(t, cfg.Normalize.StripBoilerplate)

	pc := cfg.PlaybackConfig()
	assert.Equal(t, 2*time.Second, pc.WatchdogTimeout)
	assert.True(t, pc.Normalize.StripBoilerplate)

	ac := cfg.AcquireConfig()
	assert.Equal(t, acquire.ModeMarkdown, ac.Mode)
	assert.Equal(t, "https://r.example/{raw}", ac.ProxyURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"speech.engine", "piper", "speech.engine"},
		{"speech.rate", 3.0, "speech.rate"},
		{"speech.language", "!!", "speech.language"},
		{"acquire.mode", "pdf", "acquire.mode"},
		{"acquire.proxy_url", "ftp://x", "acquire.proxy_url"},
		{"storage.backend", "s3", "storage.backend"},
		{"storage.backend", "redis", "storage.redis_url"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSetDefaultsRoundTrip(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestStorageDir(t *testing.T) {
	cfg := Default()
	dir, err := cfg.StorageDir("/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", dir)

	cfg.Storage.Dir = "/tmp/readlater/../readlater"
	dir, err = cfg.StorageDir("/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/readlater", dir)
}
