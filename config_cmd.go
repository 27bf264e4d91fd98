package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# word-wrap previews at width (0 follows the terminal)
width: 0
# mouse support (TUI-mode only)
mouse: false
# write debug output to the log file
debug: false

# Speech settings
speech:
  # speech engine: espeak or mock
  engine: "espeak"
  # path to espeak-ng or espeak, found on PATH when empty
  # binary: "/usr/bin/espeak-ng"
  # language of the speaking voice (BCP 47)
  language: "ja-JP"
  # speaking rate, from 0.5 to 2.0
  rate: 1.0
  # longer articles are truncated after confirmation
  max_chars: 32000
  # give up when speech has not started after this long
  watchdog_timeout: "5s"

# Article acquisition
acquire:
  # CORS proxy; {url} is the escaped address, {raw} the address as is
  proxy_url: "https://api.allorigins.win/get?url={url}"
  # html (JSON envelope with page HTML) or markdown (reader proxy)
  mode: "html"
  timeout: "20s"
  # stored content is capped at this many characters
  max_content: 32000
  # 0 disables rate limiting
  requests_per_minute: 30
  placeholder: "Content could not be extracted from this page."

# Pronunciation dictionary (CSV: term,reading)
dictionary:
  # http(s) URL or file path, empty disables substitution
  source: ""
  timeout: "10s"

# Where articles and preferences are kept
storage:
  # file, redis or memory
  backend: "file"
  # directory for the file backend (default: the user data directory)
  # dir: "~/.local/share/readlater/store"
  # redis_url: "redis://localhost:6379/0"
  redis_prefix: "readlater:"

normalize:
  # drop lines such as "Advertisement" or "Share this"
  strip_boilerplate: false
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readlater config file",
	Long:    paragraph(fmt.Sprintf("\n%s the readlater config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("readlater config\nreadlater config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Readlater", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
