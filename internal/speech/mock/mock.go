// Package mock provides a scriptable speech engine.
//
// In manual mode nothing happens on its own: tests drive each request with
// Start, End and Fail. In auto mode every request starts after StartDelay
// and ends after a reading-time estimate, which is handy for demos on
// machines without espeak.
package mock

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/readlater/internal/speech"
)

// Mode selects how requests progress.
type Mode int

const (
	Manual Mode = iota
	Auto
)

// WordsPerMinute is the auto mode speaking speed at rate 1.0.
const WordsPerMinute = 180

// Request is one recorded Speak call.
type Request struct {
	Utterance speech.Utterance

	events chan speech.Event
	closed bool
}

// Engine is an in-memory speech.Engine.
type Engine struct {
	Mode       Mode
	StartDelay time.Duration

	mu        sync.Mutex
	requests  []*Request
	current   int // index into requests, -1 when idle
	speaking  bool
	busy      bool // reported by Speaking even without a current request
	paused    bool
	cancels   int
	speakErr  error
	voices    []speech.Voice
	changed   chan struct{}
	autoTimer *time.Timer
	remaining time.Duration
	deadline  time.Time
}

// New returns an engine in the given mode offering voices.
func New(mode Mode, voices ...speech.Voice) *Engine {
	return &Engine{
		Mode:    mode,
		current: -1,
		voices:  voices,
		changed: make(chan struct{}, 1),
	}
}

// FailNextSpeak makes the next Speak call return err.
func (e *Engine) FailNextSpeak(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = err
}

// SetBusy forces Speaking to report true, as a real engine might while it
// is still warming up an utterance it never announced.
func (e *Engine) SetBusy(busy bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = busy
}

// SetVoices replaces the voice list and signals VoicesChanged.
func (e *Engine) SetVoices(voices ...speech.Voice) {
	e.mu.Lock()
	e.voices = voices
	e.mu.Unlock()

	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// Speak implements speech.Engine.
func (e *Engine) Speak(u speech.Utterance) (<-chan speech.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.speakErr; err != nil {
		e.speakErr = nil
		return nil, err
	}

	r := &Request{Utterance: u, events: make(chan speech.Event, 4)}
	e.requests = append(e.requests, r)
	e.current = len(e.requests) - 1
	e.paused = false

	if e.Mode == Auto {
		idx := e.current
		e.stopAutoLocked()
		e.autoTimer = time.AfterFunc(e.StartDelay, func() {
			e.Start(idx)
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.current == idx {
				e.armAutoEndLocked(idx, Duration(u))
			}
		})
	}
	return r.events, nil
}

// Duration estimates how long u takes to read aloud.
func Duration(u speech.Utterance) time.Duration {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	words := len(strings.Fields(u.Text))
	// Unspaced scripts count roughly three characters per word.
	if chars := len([]rune(u.Text)); words <= 1 && chars > 3 {
		words = chars / 3
	}
	return time.Duration(float64(words) / (WordsPerMinute * rate) * float64(time.Minute))
}

func (e *Engine) armAutoEndLocked(idx int, d time.Duration) {
	e.remaining = d
	e.deadline = time.Now().Add(d)
	e.autoTimer = time.AfterFunc(d, func() { e.End(idx) })
}

func (e *Engine) stopAutoLocked() {
	if e.autoTimer != nil {
		e.autoTimer.Stop()
		e.autoTimer = nil
	}
}

func (e *Engine) emit(idx int, ev speech.Event, final bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx < 0 || idx >= len(e.requests) {
		return false
	}
	r := e.requests[idx]
	if r.closed {
		return false
	}
	r.events <- ev
	if ev.Type == speech.EventStarted && idx == e.current {
		e.speaking = true
	}
	if final {
		r.closed = true
		close(r.events)
		if idx == e.current {
			e.current = -1
			e.speaking = false
			e.paused = false
		}
	}
	return true
}

// Start emits the started event for request idx.
func (e *Engine) Start(idx int) bool {
	return e.emit(idx, speech.Event{Type: speech.EventStarted}, false)
}

// End emits the ended event for request idx and closes its stream.
func (e *Engine) End(idx int) bool {
	return e.emit(idx, speech.Event{Type: speech.EventEnded}, true)
}

// Fail emits an error event for request idx and closes its stream.
func (e *Engine) Fail(idx int, kind string, charIndex int) bool {
	return e.emit(idx, speech.Event{
		Type:      speech.EventError,
		Kind:      kind,
		CharIndex: charIndex,
		Err:       errors.New(kind),
	}, true)
}

// Cancel implements speech.Engine. Like browser engines, the cancelled
// request reports an interrupted error.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.cancels++
	idx := e.current
	e.stopAutoLocked()
	e.mu.Unlock()

	if idx >= 0 {
		e.Fail(idx, speech.KindInterrupted, -1)
	}
}

// Pause implements speech.Engine.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current < 0 || e.paused {
		return nil
	}
	e.paused = true
	if e.Mode == Auto && e.autoTimer != nil && e.speaking {
		e.autoTimer.Stop()
		e.remaining = time.Until(e.deadline)
	}
	return nil
}

// Resume implements speech.Engine.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current < 0 || !e.paused {
		return nil
	}
	e.paused = false
	if e.Mode == Auto && e.speaking {
		e.armAutoEndLocked(e.current, max(e.remaining, 0))
	}
	return nil
}

// Speaking implements speech.Engine.
func (e *Engine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy || e.speaking
}

// Voices implements speech.Engine.
func (e *Engine) Voices() []speech.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]speech.Voice(nil), e.voices...)
}

// VoicesChanged implements speech.Engine.
func (e *Engine) VoicesChanged() <-chan struct{} { return e.changed }

// Close implements speech.Engine.
func (e *Engine) Close() error {
	e.Cancel()
	return nil
}

// Requests returns the utterances received so far.
func (e *Engine) Requests() []speech.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]speech.Utterance, len(e.requests))
	for i, r := range e.requests {
		out[i] = r.Utterance
	}
	return out
}

// Cancels returns how many times Cancel was called.
func (e *Engine) Cancels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}

// Paused reports whether the current request is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}
