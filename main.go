// Package main provides the entry point for the readlater CLI application.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/readlater/internal/config"
	"github.com/dgnsrekt/readlater/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	ephemeral  bool
	mouse      bool
	width      uint

	rootCmd = &cobra.Command{
		Use:   "readlater [URL]",
		Short: "Save articles and listen to them later",
		Long: paragraph(
			fmt.Sprintf("\nSave web articles and pasted text, then %s.", keyword("listen to them later")),
		),
		Example: paragraph("readlater\nreadlater https://example.com/post\nreadlater add --text \"$(pbpaste)\" --title Notes"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	debug = viper.GetBool("debug")
	mouse = viper.GetBool("mouse")
	width = viper.GetUint("width")

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
	}

	// Detect terminal width
	if width == 0 {
		width = 100
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w < int(width) {
				width = uint(w) //nolint:gosec
			}
		}
	}
	return nil
}

func execute(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		// A URL on the command line arrives the same way as a share.
		if len(args) == 1 {
			if err := a.inbox.Put(args[0]); err != nil {
				return fmt.Errorf("unable to queue %s: %w", args[0], err)
			}
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return listArticles(a, cmd.OutOrStdout(), false)
		}
		return runTUI(cmd, a)
	})
}

func runTUI(cmd *cobra.Command, a *app) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	if cmd.Flags().Changed("width") || cfg.GlamourMaxWidth == 0 {
		cfg.GlamourMaxWidth = width
	}
	cfg.EnableMouse = mouse
	cfg.Languages = languages(a)
	cfg.ShareFile = a.sharePath()

	player, engine, err := a.newPlayer()
	if err != nil {
		return err
	}
	go a.loadDictionary(cmd.Context(), player)

	svc := ui.Services{
		Articles: a.repo,
		Acquirer: a.acq,
		Player:   player,
		Engine:   engine,
		Prefs:    a.prefs,
		Inbox:    a.inbox,
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, svc).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	loadDotEnv()
	config.SetDefaults(viper.GetViper())
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep articles in memory only")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap previews at width")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("width", 0)

	rootCmd.AddCommand(configCmd, manCmd, addCmd, listCmd, rmCmd, speakCmd, shareCmd)
}

// loadDotEnv reads a .env file from the working directory, if there is one.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not parse .env file", "err", err)
	}
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "readlater")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "readlater")}, dirs...)
	}

	if c := os.Getenv("READLATER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readlater")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("readlater")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "readlater.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
