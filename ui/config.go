package ui

import (
	"github.com/dgnsrekt/readlater/internal/acquire"
	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/playback"
	"github.com/dgnsrekt/readlater/internal/prefs"
	"github.com/dgnsrekt/readlater/internal/share"
	"github.com/dgnsrekt/readlater/internal/speech"
)

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint   `env:"READLATER_MAX_WIDTH" envDefault:"100"`
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Languages offered by the language switch. The first entry is the
	// default.
	Languages []string

	// ShareFile is watched for links handed over by `readlater share`.
	// Empty disables watching.
	ShareFile string

	// For debugging the UI
	GlamourEnabled bool `env:"READLATER_ENABLE_GLAMOUR" envDefault:"true"`
	AltScreen      bool `env:"READLATER_ALT_SCREEN"     envDefault:"true"`
}

// Services are the components the TUI drives.
type Services struct {
	Articles *article.Repository
	Acquirer *acquire.Acquirer
	Player   *playback.Controller
	Engine   speech.Engine
	Prefs    *prefs.Prefs
	Inbox    *share.Inbox
}
