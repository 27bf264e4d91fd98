package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/readlater/internal/acquire"
	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/config"
	"github.com/dgnsrekt/readlater/internal/prefs"
	"github.com/dgnsrekt/readlater/internal/share"
)

func testApp(t *testing.T, mutate ...func(*config.Config)) *app {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Speech.Engine = config.EngineMock
	cfg.Acquire.RequestsPerMinute = 0
	for _, fn := range mutate {
		fn(&cfg)
	}
	require.NoError(t, cfg.Validate())

	a, err := openApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func TestSaveTextAndList(t *testing.T) {
	a := testApp(t)

	var out bytes.Buffer
	require.NoError(t, saveText(a, &out, "Notes", "Some text to read later."))
	assert.Contains(t, out.String(), "Saved Notes")
	require.Equal(t, 1, a.repo.Len())

	out.Reset()
	require.NoError(t, listArticles(a, &out, false))
	line := out.String()
	assert.Contains(t, line, a.repo.Articles()[0].ID)
	assert.Contains(t, line, "Notes")
}

func TestSaveTextRejectsEmptyBody(t *testing.T) {
	a := testApp(t)
	assert.Error(t, saveText(a, &bytes.Buffer{}, "Empty", "  \n\t"))
	assert.Zero(t, a.repo.Len())
}

func TestTextBodyFromStdin(t *testing.T) {
	body, err := textBody(strings.NewReader("from stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", body)

	body, err = textBody(strings.NewReader("ignored"), []string{"from args"})
	require.NoError(t, err)
	assert.Equal(t, "from args", body)
}

func TestListEmpty(t *testing.T) {
	a := testApp(t)

	var out bytes.Buffer
	require.NoError(t, listArticles(a, &out, false))
	assert.Equal(t, "No articles saved.\n", out.String())

	out.Reset()
	require.NoError(t, listArticles(a, &out, true))
	assert.JSONEq(t, "[]", out.String())
}

func TestListJSON(t *testing.T) {
	a := testApp(t)
	require.NoError(t, saveText(a, &bytes.Buffer{}, "First", "one"))
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Second", "two"))

	var out bytes.Buffer
	require.NoError(t, listArticles(a, &out, true))

	var got []article.Article
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Second", got[0].Title)
	assert.Equal(t, "First", got[1].Title)
}

func TestSaveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "# Fetched Title\n\nBody of the fetched page.")
	}))
	t.Cleanup(srv.Close)

	a := testApp(t, func(c *config.Config) {
		c.Acquire.ProxyURL = srv.URL + "/{raw}"
		c.Acquire.Mode = string(acquire.ModeMarkdown)
	})

	var out bytes.Buffer
	require.NoError(t, saveURL(context.Background(), a, &out, "https://example.com/post"))
	require.Equal(t, 1, a.repo.Len())
	art := a.repo.Articles()[0]
	assert.Equal(t, "Fetched Title", art.Title)
	assert.Equal(t, "https://example.com/post", art.URL)
	assert.Contains(t, out.String(), "Saved Fetched Title")
}

func TestSaveURLInvalid(t *testing.T) {
	a := testApp(t)
	err := saveURL(context.Background(), a, &bytes.Buffer{}, "not a url")
	require.Error(t, err)

	var aerr *acquire.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, acquire.KindInvalidURL, aerr.Kind)
	assert.Zero(t, a.repo.Len())
}

func TestRemoveArticleByPrefix(t *testing.T) {
	a := testApp(t)
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Keep", "one"))
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Drop", "two"))
	drop := a.repo.Articles()[0]

	var out bytes.Buffer
	require.NoError(t, removeArticle(a, &out, drop.ID))
	assert.Equal(t, "Deleted Drop\n", out.String())
	require.Equal(t, 1, a.repo.Len())

	keep := a.repo.Articles()[0]
	require.NoError(t, removeArticle(a, &bytes.Buffer{}, keep.ID[:len(keep.ID)-4]))
	assert.Zero(t, a.repo.Len())
}

func TestRemoveArticleErrors(t *testing.T) {
	a := testApp(t)
	assert.ErrorContains(t, removeArticle(a, &bytes.Buffer{}, "missing"), "no article")

	require.NoError(t, saveText(a, &bytes.Buffer{}, "One", "one"))
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Two", "two"))
	assert.ErrorContains(t, removeArticle(a, &bytes.Buffer{}, ""), "matches 2 articles")
	assert.Equal(t, 2, a.repo.Len())
}

func TestQueueShare(t *testing.T) {
	a := testApp(t)

	require.NoError(t, queueShare(a, &bytes.Buffer{}, "check https://example.com/x out"))
	payload, ok, err := a.inbox.Take()
	require.NoError(t, err)
	require.True(t, ok)

	u, ok := share.ExtractURL(payload)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/x", u)
}

func TestSpeakArticle(t *testing.T) {
	a := testApp(t)
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Short", "Hello there."))
	id := a.repo.Articles()[0].ID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, speakArticle(ctx, a, &out, id, false))
	assert.Equal(t, "Reading Short\n", out.String())
	require.NoError(t, ctx.Err())
}

func TestSpeakLongArticleNeedsTruncate(t *testing.T) {
	a := testApp(t, func(c *config.Config) {
		c.Speech.MaxChars = 10
	})
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Long", "This article is longer than ten characters."))
	id := a.repo.Articles()[0].ID

	err := speakArticle(context.Background(), a, &bytes.Buffer{}, id, false)
	assert.ErrorContains(t, err, "--truncate")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, speakArticle(ctx, a, &bytes.Buffer{}, id, true))
}

func TestSpeakStopsOnCancel(t *testing.T) {
	a := testApp(t)
	long := strings.Repeat("word ", 2000)
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Very long", long))
	id := a.repo.Articles()[0].ID

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, speakArticle(ctx, a, &bytes.Buffer{}, id, true))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewPlayerAppliesPrefs(t *testing.T) {
	a := testApp(t)
	require.NoError(t, a.prefs.SetRate(1.5))
	require.NoError(t, a.prefs.SetLanguage("en-US"))
	require.NoError(t, a.prefs.SetVoiceIndex(0))

	player, engine, err := a.newPlayer()
	require.NoError(t, err)
	assert.Len(t, engine.Voices(), len(mockVoices))

	cfg := player.Config()
	assert.InDelta(t, 1.5, cfg.Rate, 0.001)
	assert.Equal(t, "en-US", cfg.Language)
	assert.Equal(t, "mock-en", cfg.Voice)
}

func TestLanguages(t *testing.T) {
	a := testApp(t, func(c *config.Config) {
		c.Speech.Language = "en-US"
	})
	assert.Equal(t, []string{"en-US", "ja-JP"}, languages(a))

	require.NoError(t, a.prefs.SetLanguage("fr-FR"))
	assert.Equal(t, []string{"en-US", "fr-FR", "ja-JP"}, languages(a))
}

func TestFileBackend(t *testing.T) {
	dir := t.TempDir()
	a := testApp(t, func(c *config.Config) {
		c.Storage.Backend = config.BackendFile
		c.Storage.Dir = dir
	})
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Persisted", "body"))
	require.NoError(t, a.prefs.SetTheme(prefs.ThemeLight))
	assert.True(t, strings.HasPrefix(a.sharePath(), dir))
	a.close()

	b, err := openApp(a.cfg)
	require.NoError(t, err)
	t.Cleanup(b.close)
	require.Equal(t, 1, b.repo.Len())
	assert.Equal(t, "Persisted", b.repo.Articles()[0].Title)

	theme, ok := b.prefs.Theme()
	require.True(t, ok)
	assert.Equal(t, prefs.ThemeLight, theme)
}

func TestMemoryBackendHasNoShareFile(t *testing.T) {
	a := testApp(t)
	assert.Empty(t, a.sharePath())
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	configFile = t.TempDir() + "/nested/readlater.yml"
	require.NoError(t, ensureConfigFile())
	b, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, string(b))

	configFile = t.TempDir() + "/readlater.toml"
	assert.Error(t, ensureConfigFile())
}
