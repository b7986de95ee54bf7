package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/averbeke/mopctl/internal/config"
	mopctlerrors "github.com/averbeke/mopctl/internal/errors"
	"github.com/averbeke/mopctl/internal/mopidy"
	"github.com/averbeke/mopctl/internal/speaker"
)

var (
	cfgFile  string
	jsonOut  bool
	verbose  bool
	hostFlag string
	portFlag int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mopctl",
	Short: "Control a Mopidy music server from the command line",
	Long:  `Mopctl is a CLI for controlling playback, the play queue and playlists on a Mopidy server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.mopctlrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "server host (overrides config)")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "server HTTP port (overrides config)")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if hostFlag != "" {
		cfg.Mopidy.Host = hostFlag
	}
	if portFlag != 0 {
		cfg.Mopidy.Port = portFlag
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	setupLogging()
	return nil
}

func setupLogging() {
	level := slog.LevelWarn
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot open log file: %v\n", err)
		} else {
			out = f
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, mopctlerrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// newSpeaker builds a Speaker for the configured server.
func newSpeaker() *speaker.Speaker {
	return speaker.New(mopidy.New(cfg.Mopidy.Host, cfg.Mopidy.Port))
}
