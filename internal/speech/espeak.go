package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// normalWPM is espeak's default speed in words per minute.
const normalWPM = 175

// ESpeak drives espeak-ng (or espeak) as a subprocess, one process per
// utterance.
type ESpeak struct {
	binary string

	mu      sync.Mutex
	cmd     *exec.Cmd
	events  chan Event
	done    chan struct{}
	stopped bool // set by Cancel so the exit is reported as interrupted
	paused  bool

	voicesMu sync.RWMutex
	voices   []Voice
	changed  chan struct{}
}

// FindESpeak returns the path to espeak-ng or espeak.
func FindESpeak() (string, error) {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: espeak-ng not found in PATH", ErrUnavailable)
}

// NewESpeak returns an engine using binary, or the first espeak found in
// PATH when binary is empty. Voices load in the background.
func NewESpeak(binary string) (*ESpeak, error) {
	if binary == "" {
		var err error
		if binary, err = FindESpeak(); err != nil {
			return nil, err
		}
	} else if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	e := &ESpeak{
		binary:  binary,
		changed: make(chan struct{}, 1),
	}
	go e.loadVoices()
	return e, nil
}

func (e *ESpeak) loadVoices() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, e.binary, "--voices").Output()
	if err != nil {
		log.Warn("Could not list espeak voices", "error", err)
		return
	}

	voices := ParseVoices(string(out))
	e.voicesMu.Lock()
	e.voices = voices
	e.voicesMu.Unlock()

	log.Debug("Loaded espeak voices", "count", len(voices))
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// ParseVoices reads the table printed by espeak --voices:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  ja              --/M      Japanese           sit/ja
func ParseVoices(output string) []Voice {
	var voices []Voice
	for i, line := range strings.Split(output, "\n") {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		voices = append(voices, Voice{
			ID:   fields[4],
			Name: strings.ReplaceAll(fields[3], "_", " "),
			Lang: fields[1],
		})
	}
	if len(voices) > 0 {
		voices[0].Default = true
	}
	return voices
}

// Voices returns the voices loaded so far.
func (e *ESpeak) Voices() []Voice {
	e.voicesMu.RLock()
	defer e.voicesMu.RUnlock()
	return append([]Voice(nil), e.voices...)
}

// VoicesChanged implements Engine.
func (e *ESpeak) VoicesChanged() <-chan struct{} {
	return e.changed
}

// Args builds the espeak command line for u. The text itself goes on stdin.
func Args(u Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	voice := u.Voice
	if voice == "" {
		voice = espeakLanguage(u.Lang)
	}

	args := []string{"-s", strconv.Itoa(int(normalWPM * rate))}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, "--stdin")
}

func espeakLanguage(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, _ := t.Base()
	return base.String()
}

// Speak cancels any utterance in progress and starts u.
func (e *ESpeak) Speak(u Utterance) (<-chan Event, error) {
	e.Cancel()

	cmd := exec.Command(e.binary, Args(u)...)
	cmd.Stdin = strings.NewReader(u.Text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", e.binary, err)
	}

	events := make(chan Event, 2)
	done := make(chan struct{})

	e.mu.Lock()
	e.cmd = cmd
	e.events = events
	e.done = done
	e.stopped = false
	e.paused = false
	e.mu.Unlock()

	events <- Event{Type: EventStarted}

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		stopped := e.stopped
		if e.cmd == cmd {
			e.cmd = nil
			e.paused = false
		}
		e.mu.Unlock()

		switch {
		case stopped:
			events <- Event{Type: EventError, Kind: KindInterrupted, CharIndex: -1}
		case err != nil:
			msg := strings.TrimSpace(stderr.String())
			events <- Event{Type: EventError, Kind: KindSynthesis, CharIndex: -1,
				Err: fmt.Errorf("%s: %w: %s", e.binary, err, msg)}
		default:
			events <- Event{Type: EventEnded}
		}
		close(events)
		close(done)
	}()

	return events, nil
}

// Cancel stops the current utterance and waits for its process to exit.
func (e *ESpeak) Cancel() {
	e.mu.Lock()
	cmd, done, paused := e.cmd, e.done, e.paused
	if cmd != nil {
		e.stopped = true
	}
	e.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	if paused {
		// A stopped process can't act on the kill until it is continued.
		_ = resumeProcess(cmd.Process)
	}
	_ = cmd.Process.Kill()
	<-done
}

// Pause suspends the current utterance.
func (e *ESpeak) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil || e.paused {
		return nil
	}
	if err := pauseProcess(e.cmd.Process); err != nil {
		return err
	}
	e.paused = true
	return nil
}

// Resume continues a paused utterance.
func (e *ESpeak) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil || !e.paused {
		return nil
	}
	if err := resumeProcess(e.cmd.Process); err != nil {
		return err
	}
	e.paused = false
	return nil
}

// Speaking implements Engine.
func (e *ESpeak) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cmd != nil
}

// Close cancels any utterance in progress.
func (e *ESpeak) Close() error {
	e.Cancel()
	return nil
}
