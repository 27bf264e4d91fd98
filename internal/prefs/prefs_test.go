package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/readlater/internal/speech"
	"github.com/dgnsrekt/readlater/internal/store"
)

func TestMissingPrefs(t *testing.T) {
	p := New(store.NewMemory())

	_, ok := p.Rate()
	assert.False(t, ok)
	_, ok = p.VoiceIndex()
	assert.False(t, ok)
	_, ok = p.Language()
	assert.False(t, ok)
	_, ok = p.Theme()
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	p := New(store.NewMemory())

	require.NoError(t, p.SetRate(1.25))
	require.NoError(t, p.SetVoiceIndex(3))
	require.NoError(t, p.SetLanguage("en-US"))
	require.NoError(t, p.SetTheme(ThemeLight))

	rate, ok := p.Rate()
	assert.True(t, ok)
	assert.InDelta(t, 1.25, rate, 1e-9)

	idx, ok := p.VoiceIndex()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	lang, ok := p.Language()
	assert.True(t, ok)
	assert.Equal(t, "en-US", lang)

	theme, ok := p.Theme()
	assert.True(t, ok)
	assert.Equal(t, ThemeLight, theme)
}

func TestInvalidValuesAreMissing(t *testing.T) {
	s := store.NewMemory()
	p := New(s)

	tests := []struct {
		key   string
		value string
		check func() bool
	}{
		{KeyRate, "fast", func() bool { _, ok := p.Rate(); return ok }},
		{KeyRate, "9", func() bool { _, ok := p.Rate(); return ok }},
		{KeyVoiceIndex, "-1", func() bool { _, ok := p.VoiceIndex(); return ok }},
		{KeyVoiceIndex, "two", func() bool { _, ok := p.VoiceIndex(); return ok }},
		{KeyLanguage, "!!", func() bool { _, ok := p.Language(); return ok }},
		{KeyTheme, "sepia", func() bool { _, ok := p.Theme(); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			require.NoError(t, s.Put(tt.key, []byte(tt.value)))
			assert.False(t, tt.check())
		})
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := store.NewMemory()
	p := New(s)
	require.NoError(t, s.Put(KeyRate, []byte("garbage")))
	require.NoError(t, p.SetTheme(ThemeDark))

	_, ok := p.Rate()
	assert.False(t, ok)
	theme, ok := p.Theme()
	assert.True(t, ok)
	assert.Equal(t, ThemeDark, theme)
}

func TestThemeToggle(t *testing.T) {
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeDark, Theme("").Toggle())
}

func TestVoiceResolvesSavedIndex(t *testing.T) {
	p := New(store.NewMemory())
	voices := []speech.Voice{
		{ID: "en", Lang: "en"},
		{ID: "ja-1", Lang: "ja"},
		{ID: "ja-2", Lang: "ja-JP"},
	}

	v, ok := p.Voice(voices, "ja-JP")
	require.True(t, ok)
	assert.Equal(t, "ja-1", v.ID, "no saved index picks the first match")

	require.NoError(t, p.SetVoiceIndex(1))
	v, ok = p.Voice(voices, "ja-JP")
	require.True(t, ok)
	assert.Equal(t, "ja-2", v.ID)

	require.NoError(t, p.SetVoiceIndex(7))
	v, ok = p.Voice(voices, "ja-JP")
	require.True(t, ok)
	assert.Equal(t, "ja-1", v.ID, "stale index falls back to the first match")

	_, ok = p.Voice(voices, "fr-FR")
	assert.False(t, ok)
}
