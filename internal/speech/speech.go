// Package speech defines the on-device speech capability the player talks
// to, along with an espeak-ng backed implementation.
package speech

import (
	"errors"

	"golang.org/x/text/language"
)

// ErrUnavailable is returned when no speech backend can be found.
var ErrUnavailable = errors.New("speech engine unavailable")

// Voice is a voice offered by the engine.
type Voice struct {
	// ID is what the engine expects when selecting this voice.
	ID      string
	Name    string
	Lang    string // BCP 47 tag
	Default bool
}

// Utterance is one request to speak.
type Utterance struct {
	Text  string
	Lang  string  // BCP 47 tag
	Rate  float64 // 1.0 is normal speed
	Voice string  // Voice.ID, empty for the language default
}

// EventType identifies a lifecycle event of an utterance.
type EventType int

const (
	EventStarted EventType = iota
	EventEnded
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Error kinds reported by engines.
const (
	KindInterrupted = "interrupted"
	KindSynthesis   = "synthesis-failed"
)

// Event is delivered on the stream returned by Speak.
type Event struct {
	Type EventType

	// Kind and CharIndex describe an EventError. CharIndex is the offset
	// into the utterance text where speech stopped, or -1 when unknown.
	Kind      string
	CharIndex int
	Err       error
}

// Engine is an external speech capability. Each Speak call gets its own
// event stream, which is closed after its Ended or Error event.
type Engine interface {
	Speak(u Utterance) (<-chan Event, error)
	Cancel()
	Pause() error
	Resume() error

	// Speaking reports whether an utterance is in progress, paused or not.
	Speaking() bool

	Voices() []Voice

	// VoicesChanged signals when the voice list has been (re)loaded.
	VoicesChanged() <-chan struct{}

	Close() error
}

// FilterVoices returns the voices whose language matches lang by base
// language, so "ja-JP" selects both "ja" and "ja-JP" voices.
func FilterVoices(voices []Voice, lang string) []Voice {
	want, err := language.Parse(lang)
	if err != nil {
		return nil
	}
	wantBase, _ := want.Base()

	var out []Voice
	for _, v := range voices {
		tag, err := language.Parse(v.Lang)
		if err != nil {
			continue
		}
		if base, _ := tag.Base(); base == wantBase {
			out = append(out, v)
		}
	}
	return out
}

// VoiceAt returns the voice at index i of the filtered list, clamping
// out-of-range indexes to the first voice. ok is false when no voice
// matches lang.
func VoiceAt(voices []Voice, lang string, i int) (Voice, bool) {
	filtered := FilterVoices(voices, lang)
	if len(filtered) == 0 {
		return Voice{}, false
	}
	if i < 0 || i >= len(filtered) {
		i = 0
	}
	return filtered[i], true
}
