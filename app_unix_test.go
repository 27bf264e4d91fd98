//go:build unix

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/readlater/internal/config"
)

// slowESpeak writes an espeak-ng stand-in that takes a moment to list two
// American English voices.
func slowESpeak(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
if [ "$1" = "--voices" ]; then
  sleep 0.05
  echo "Pty Language Age/Gender VoiceName File Other Languages"
  echo " 5  en-us  --/M  English_(America)  gmw/en-US"
  echo " 5  en-us  --/F  English_(America,_B)  gmw/en-B"
  exit 0
fi
cat >/dev/null
exit 0
`
	path := filepath.Join(t.TempDir(), "espeak-ng")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func espeakApp(t *testing.T) *app {
	t.Helper()
	bin := slowESpeak(t)
	a := testApp(t, func(c *config.Config) {
		c.Speech.Engine = config.EngineESpeak
		c.Speech.Binary = bin
	})
	require.NoError(t, a.prefs.SetLanguage("en-US"))
	require.NoError(t, a.prefs.SetVoiceIndex(1))
	return a
}

func TestAwaitVoicesAppliesSavedVoice(t *testing.T) {
	a := espeakApp(t)

	player, engine, err := a.newPlayer()
	require.NoError(t, err)

	a.awaitVoices(context.Background(), player, engine)
	require.Len(t, engine.Voices(), 2)
	assert.Equal(t, "gmw/en-B", player.Config().Voice)
}

func TestAwaitVoicesStopsOnCancel(t *testing.T) {
	a := espeakApp(t)

	player, engine, err := a.newPlayer()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	a.awaitVoices(ctx, player, engine)
	assert.Less(t, time.Since(start), voiceListTimeout)
}

func TestSpeakArticleWithESpeak(t *testing.T) {
	a := espeakApp(t)
	require.NoError(t, saveText(a, &bytes.Buffer{}, "Short", "Hello there."))
	id := a.repo.Articles()[0].ID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, speakArticle(ctx, a, &out, id, false))
	assert.Equal(t, "Reading Short\n", out.String())
}
