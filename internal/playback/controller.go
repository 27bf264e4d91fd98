// Package playback owns the single active speech session: it prepares an
// article's text, submits it to the speech engine and tracks the session
// through its lifecycle.
package playback

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/normalize"
	"github.com/dgnsrekt/readlater/internal/speech"
)

// Defaults.
const (
	DefaultMaxChars        = 32000
	DefaultWatchdogTimeout = 5 * time.Second
	DefaultLanguage        = "ja-JP"
)

// ArticleSource looks articles up by id.
type ArticleSource interface {
	Get(id string) (article.Article, bool)
}

// Substituter rewrites text before it is spoken, e.g. a pronunciation
// dictionary.
type Substituter interface {
	Apply(text string) string
}

// Confirmer is asked before an article longer than the limit is cut down.
// Returning false aborts playback.
type Confirmer func(length, limit int) bool

// Config holds the playback settings.
type Config struct {
	MaxChars        int
	WatchdogTimeout time.Duration
	Language        string
	Rate            float64
	Voice           string

	// Normalize options. An empty SentenceEnd follows Language.
	Normalize normalize.Options
}

// Status describes a state change.
type Status struct {
	State     StateType
	ArticleID string
	Message   string
	Err       error
}

// Session is a snapshot of the active session.
type Session struct {
	ID        uint64
	ArticleID string
	Paused    bool
	StartedAt time.Time
}

type session struct {
	Session
	watchdog *time.Timer
}

// Controller is the playback state machine. All methods are safe for
// concurrent use.
type Controller struct {
	engine   speech.Engine
	articles ArticleSource

	mu      sync.Mutex
	dict    Substituter
	cfg     Config
	state   StateType
	session *session
	nextID  uint64
	lastErr error

	updates chan Status
}

// New returns an idle controller. dict may be nil.
func New(engine speech.Engine, articles ArticleSource, dict Substituter, cfg Config) *Controller {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.WatchdogTimeout <= 0 {
		cfg.WatchdogTimeout = DefaultWatchdogTimeout
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}

	return &Controller{
		engine:   engine,
		articles: articles,
		dict:     dict,
		cfg:      cfg,
		state:    StateIdle,
		updates:  make(chan Status, 32),
	}
}

// Updates delivers every state change. Updates are dropped when the
// channel is full.
func (c *Controller) Updates() <-chan Status {
	return c.updates
}

// State returns the current state.
func (c *Controller) State() StateType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the active session.
func (c *Controller) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return c.session.Session, true
}

// LastError returns the error that put the controller in StateError.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// NeedsConfirmation reports whether the article is too long to speak in
// full, along with its length in characters.
func (c *Controller) NeedsConfirmation(id string) (length int, needed bool) {
	a, ok := c.articles.Get(id)
	if !ok {
		return 0, false
	}
	c.mu.Lock()
	limit := c.cfg.MaxChars
	c.mu.Unlock()

	n := utf8.RuneCountInString(a.Content)
	return n, n > limit
}

// SetDictionary replaces the substitution applied to future utterances.
func (c *Controller) SetDictionary(d Substituter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dict = d
}

// SetRate sets the speech rate for the next utterance.
func (c *Controller) SetRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Rate = rate
}

// SetVoice selects the voice for the next utterance. Empty means the
// language default.
func (c *Controller) SetVoice(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Voice = id
}

// SetLanguage sets the language for the next utterance.
func (c *Controller) SetLanguage(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Language = tag
}

// Config returns the current settings.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Prepare returns the text that would be spoken for content.
func (c *Controller) Prepare(content string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepareLocked(content)
}

func (c *Controller) prepareLocked(content string) string {
	opts := c.cfg.Normalize
	if opts.SentenceEnd == "" {
		opts.SentenceEnd = normalize.ForLanguage(c.cfg.Language).SentenceEnd
	}
	text := normalize.Normalize(content, opts)
	if c.dict != nil {
		text = c.dict.Apply(text)
	}
	return text
}

// Play speaks the article with id, superseding any current session.
//
// When the content exceeds MaxChars, confirm decides whether to speak a
// truncated version. If it declines, or is nil, Play returns
// ErrTruncationDeclined and the current session carries on untouched.
func (c *Controller) Play(id string, confirm Confirmer) error {
	a, ok := c.articles.Get(id)
	if !ok {
		return ErrArticleNotFound
	}

	c.mu.Lock()
	limit := c.cfg.MaxChars
	c.mu.Unlock()

	text := a.Content
	if n := utf8.RuneCountInString(text); n > limit {
		if confirm == nil || !confirm(n, limit) {
			return ErrTruncationDeclined
		}
		text = string([]rune(text)[:limit])
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	spoken := c.prepareLocked(text)
	if spoken == "" {
		return ErrNothingToSpeak
	}

	c.cancelLocked()
	c.nextID++
	sid := c.nextID
	c.lastErr = nil
	c.setStateLocked(StateRequesting, a.ID, "Starting "+a.Title, nil)

	events, err := c.engine.Speak(speech.Utterance{
		Text:  spoken,
		Lang:  c.cfg.Language,
		Rate:  c.cfg.Rate,
		Voice: c.cfg.Voice,
	})
	if err != nil {
		perr := &Error{
			Code:    ErrorCodeSubmit,
			Message: "could not start speech",
			Hint:    HintSubmit,
			Cause:   err,
		}
		c.lastErr = perr
		c.setStateLocked(StateError, a.ID, perr.UserMessage(), perr)
		return perr
	}

	s := &session{Session: Session{ID: sid, ArticleID: a.ID, StartedAt: time.Now()}}
	s.watchdog = time.AfterFunc(c.cfg.WatchdogTimeout, func() { c.onWatchdog(sid) })
	c.session = s

	log.Debug("Submitted utterance", "session", sid, "article", a.ID, "chars", utf8.RuneCountInString(spoken))
	go c.watch(sid, events)
	return nil
}

func (c *Controller) watch(sid uint64, events <-chan speech.Event) {
	for ev := range events {
		c.handle(sid, ev)
	}
}

func (c *Controller) handle(sid uint64, ev speech.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.ID != sid {
		log.Debug("Ignoring stale speech event", "session", sid, "event", ev.Type, "kind", ev.Kind)
		return
	}
	articleID := c.session.ArticleID

	switch ev.Type {
	case speech.EventStarted:
		if c.state != StateRequesting {
			return
		}
		c.session.watchdog.Stop()
		c.setStateLocked(StatePlaying, articleID, "Playing", nil)

	case speech.EventEnded:
		c.clearLocked()
		c.setStateLocked(StateIdle, articleID, "Finished", nil)

	case speech.EventError:
		c.clearLocked()
		err := &Error{
			Code:    ErrorCodeEngine,
			Message: fmt.Sprintf("speech stopped: %s at character %d", ev.Kind, ev.CharIndex),
			Cause:   ev.Err,
		}
		log.Warn("Speech engine reported an error", "session", sid, "kind", ev.Kind, "char", ev.CharIndex, "error", ev.Err)
		c.setStateLocked(StateIdle, articleID, err.UserMessage(), err)
	}
}

func (c *Controller) onWatchdog(sid uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.ID != sid || c.state != StateRequesting {
		return
	}
	articleID := c.session.ArticleID

	if c.engine.Speaking() {
		log.Debug("Start event missing but engine is speaking", "session", sid)
		c.setStateLocked(StatePlaying, articleID, "Playing", nil)
		return
	}

	c.cancelLocked()
	err := &Error{
		Code:    ErrorCodeStartTimeout,
		Message: fmt.Sprintf("speech did not start within %s", c.cfg.WatchdogTimeout),
		Hint:    HintStartTimeout,
		Cause:   ErrStartTimeout,
	}
	c.lastErr = err
	log.Warn("Speech start timed out", "session", sid, "timeout", c.cfg.WatchdogTimeout)
	c.setStateLocked(StateError, articleID, err.UserMessage(), err)
}

// Pause toggles between playing and paused. It does nothing in other
// states.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePlaying:
		return c.pauseLocked()
	case StatePaused:
		return c.resumeLocked()
	}
	return nil
}

// Resume continues a paused session.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return nil
	}
	return c.resumeLocked()
}

func (c *Controller) pauseLocked() error {
	if err := c.engine.Pause(); err != nil {
		return fmt.Errorf("unable to pause: %w", err)
	}
	c.session.Paused = true
	c.setStateLocked(StatePaused, c.session.ArticleID, "Paused", nil)
	return nil
}

func (c *Controller) resumeLocked() error {
	if err := c.engine.Resume(); err != nil {
		return fmt.Errorf("unable to resume: %w", err)
	}
	c.session.Paused = false
	c.setStateLocked(StatePlaying, c.session.ArticleID, "Playing", nil)
	return nil
}

// Stop ends the current session. Stopping when idle is a no-op, and
// stopping in the error state clears the error.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return
	case StateError:
		c.lastErr = nil
		c.setStateLocked(StateIdle, "", "", nil)
		return
	}

	articleID := ""
	if c.session != nil {
		articleID = c.session.ArticleID
	}
	c.cancelLocked()
	c.setStateLocked(StateIdle, articleID, "Stopped", nil)
}

// Close stops playback.
func (c *Controller) Close() {
	c.Stop()
}

// cancelLocked drops the current session and tells the engine to stop.
func (c *Controller) cancelLocked() {
	if c.session == nil {
		return
	}
	c.clearLocked()
	c.engine.Cancel()
}

func (c *Controller) clearLocked() {
	if c.session == nil {
		return
	}
	c.session.watchdog.Stop()
	c.session = nil
}

func (c *Controller) setStateLocked(to StateType, articleID, msg string, err error) {
	if !CanTransition(c.state, to) {
		log.Debug("Rejected playback transition", "from", c.state, "to", to)
		return
	}
	c.state = to

	select {
	case c.updates <- Status{State: to, ArticleID: articleID, Message: msg, Err: err}:
	default:
		log.Debug("Dropped playback update", "state", to)
	}
}
