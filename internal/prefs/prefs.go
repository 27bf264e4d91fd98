// Package prefs persists the user's playback and display preferences.
// Each preference lives under its own key, so one being missing or
// unreadable never affects the others.
package prefs

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/dgnsrekt/readlater/internal/speech"
	"github.com/dgnsrekt/readlater/internal/store"
)

const (
	KeyRate       = "speechRate"
	KeyVoiceIndex = "voiceIndex"
	KeyLanguage   = "language"
	KeyTheme      = "theme"
)

// Speech rate bounds accepted from storage.
const (
	MinRate = 0.5
	MaxRate = 2.0
)

// Theme is the colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Prefs reads and writes preferences on a store.
type Prefs struct {
	store store.Store
}

// New returns preferences kept in s.
func New(s store.Store) *Prefs {
	return &Prefs{store: s}
}

func (p *Prefs) get(key string) (string, bool) {
	data, err := p.store.Get(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Debug("Could not read preference", "key", key, "error", err)
		}
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (p *Prefs) put(key, value string) error {
	return p.store.Put(key, []byte(value))
}

// Rate returns the saved speech rate.
func (p *Prefs) Rate() (float64, bool) {
	s, ok := p.get(KeyRate)
	if !ok {
		return 0, false
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < MinRate || r > MaxRate {
		return 0, false
	}
	return r, true
}

// SetRate saves the speech rate.
func (p *Prefs) SetRate(rate float64) error {
	return p.put(KeyRate, strconv.FormatFloat(rate, 'f', -1, 64))
}

// VoiceIndex returns the saved index into the filtered voice list.
func (p *Prefs) VoiceIndex() (int, bool) {
	s, ok := p.get(KeyVoiceIndex)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// SetVoiceIndex saves the voice index.
func (p *Prefs) SetVoiceIndex(i int) error {
	return p.put(KeyVoiceIndex, strconv.Itoa(i))
}

// Language returns the saved BCP 47 language tag.
func (p *Prefs) Language() (string, bool) {
	s, ok := p.get(KeyLanguage)
	if !ok {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// SetLanguage saves the language tag.
func (p *Prefs) SetLanguage(tag string) error {
	return p.put(KeyLanguage, tag)
}

// Theme returns the saved theme.
func (p *Prefs) Theme() (Theme, bool) {
	s, ok := p.get(KeyTheme)
	if !ok {
		return "", false
	}
	switch t := Theme(strings.ToLower(s)); t {
	case ThemeDark, ThemeLight:
		return t, true
	}
	return "", false
}

// SetTheme saves the theme.
func (p *Prefs) SetTheme(t Theme) error {
	return p.put(KeyTheme, string(t))
}

// Voice resolves the saved voice index against the voices available for
// lang.
func (p *Prefs) Voice(voices []speech.Voice, lang string) (speech.Voice, bool) {
	i, _ := p.VoiceIndex()
	return speech.VoiceAt(voices, lang, i)
}
