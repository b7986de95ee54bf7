package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/averbeke/mopctl/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, progress, mixer and options
  • Queue - upcoming tracks
  • Sources - server playlists

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/-          Volume up/down
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	refresh := tuiRefresh
	if refresh == 0 {
		refresh = cfg.TUI.RefreshInterval
	}

	app := tui.NewApp(newSpeaker(), time.Duration(refresh)*time.Millisecond)
	return app.Run(context.Background())
}
