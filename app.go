package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/readlater/internal/acquire"
	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/config"
	"github.com/dgnsrekt/readlater/internal/dictionary"
	"github.com/dgnsrekt/readlater/internal/playback"
	"github.com/dgnsrekt/readlater/internal/prefs"
	"github.com/dgnsrekt/readlater/internal/share"
	"github.com/dgnsrekt/readlater/internal/speech"
	"github.com/dgnsrekt/readlater/internal/speech/mock"
	"github.com/dgnsrekt/readlater/internal/store"
)

const (
	redisPingTimeout = 3 * time.Second
	voiceListTimeout = 2 * time.Second
)

var mockVoices = []speech.Voice{
	{ID: "mock-ja", Name: "Mock Japanese", Lang: "ja-JP", Default: true},
	{ID: "mock-en", Name: "Mock English", Lang: "en-US"},
}

// app holds the services shared by the TUI and the subcommands.
type app struct {
	cfg   config.Config
	store store.Store
	file  *store.File // nil unless the file backend is used

	repo  *article.Repository
	acq   *acquire.Acquirer
	prefs *prefs.Prefs
	inbox *share.Inbox

	closers []func() error
}

func withApp(fn func(*app) error) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func openApp(cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.openStore(); err != nil {
		return nil, err
	}

	a.repo = article.NewRepository(a.store)
	a.repo.Load()
	a.acq = acquire.New(cfg.AcquireConfig())
	a.prefs = prefs.New(a.store)
	a.inbox = share.NewInbox(a.store)

	log.Debug("Opened store", "backend", cfg.Storage.Backend, "articles", a.repo.Len())
	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		a.store = store.NewMemory()

	case config.BackendRedis:
		r, err := store.NewRedis(a.cfg.Storage.RedisURL, store.WithPrefix(a.cfg.Storage.RedisPrefix))
		if err != nil {
			return fmt.Errorf("unable to open redis store: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return fmt.Errorf("unable to reach redis: %w", err)
		}
		a.store = r
		a.closers = append(a.closers, r.Close)

	default:
		fallback, err := gap.NewScope(gap.User, "readlater").DataPath("store")
		if err != nil {
			return fmt.Errorf("unable to find data directory: %w", err)
		}
		dir, err := a.cfg.StorageDir(fallback)
		if err != nil {
			return err
		}
		f, err := store.NewFile(dir)
		if err != nil {
			return err
		}
		a.store = f
		a.file = f
		a.closers = append(a.closers, f.Close)
	}
	return nil
}

// sharePath is the file another process writes to when it shares a URL.
// Only the file backend has one.
func (a *app) sharePath() string {
	if a.file == nil {
		return ""
	}
	return a.file.Path(share.StoreKey)
}

// newPlayer starts the speech engine and a playback controller with the
// saved preferences applied. The dictionary is empty until loadDictionary
// runs.
func (a *app) newPlayer() (*playback.Controller, speech.Engine, error) {
	engine, err := newEngine(a.cfg.Speech)
	if err != nil {
		return nil, nil, err
	}

	pc := a.cfg.PlaybackConfig()
	if rate, ok := a.prefs.Rate(); ok {
		pc.Rate = rate
	}
	if lang, ok := a.prefs.Language(); ok {
		pc.Language = lang
	}

	player := playback.New(engine, a.repo, nil, pc)
	a.applyVoice(player, engine)

	a.closers = append(a.closers, func() error {
		player.Close()
		return engine.Close()
	})
	return player, engine, nil
}

func (a *app) applyVoice(player *playback.Controller, engine speech.Engine) {
	if v, ok := a.prefs.Voice(engine.Voices(), player.Config().Language); ok {
		player.SetVoice(v.ID)
	}
}

// awaitVoices waits up to voiceListTimeout for an engine that lists its
// voices in the background, then applies the saved voice. The TUI reselects
// on VoicesChanged itself.
func (a *app) awaitVoices(ctx context.Context, player *playback.Controller, engine speech.Engine) {
	if len(engine.Voices()) > 0 {
		return
	}

	timer := time.NewTimer(voiceListTimeout)
	defer timer.Stop()
	select {
	case <-engine.VoicesChanged():
		a.applyVoice(player, engine)
	case <-timer.C:
		log.Debug("No voices listed yet, using the language default")
	case <-ctx.Done():
	}
}

func (a *app) loadDictionary(ctx context.Context, player *playback.Controller) {
	loader := dictionary.Loader{
		Source:  a.cfg.Dictionary.Source,
		Timeout: a.cfg.Dictionary.Timeout,
	}
	player.SetDictionary(loader.Load(ctx))
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("Error during shutdown", "error", err)
		}
	}
	a.closers = nil
}

func newEngine(cfg config.SpeechConfig) (speech.Engine, error) {
	switch cfg.Engine {
	case config.EngineMock:
		return mock.New(mock.Auto, mockVoices...), nil
	default:
		e, err := speech.NewESpeak(cfg.Binary)
		if err != nil {
			return nil, fmt.Errorf("unable to start speech engine: %w", err)
		}
		return e, nil
	}
}

// languages lists the languages the TUI cycles through, configured and
// saved ones first.
func languages(a *app) []string {
	langs := []string{a.cfg.Speech.Language}
	if saved, ok := a.prefs.Language(); ok {
		langs = append(langs, saved)
	}
	langs = append(langs, playback.DefaultLanguage, "en-US")

	var out []string
	for _, l := range langs {
		if l != "" && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out
}
