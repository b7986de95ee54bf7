package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/averbeke/mopctl/internal/speaker"
)

var (
	playMode string
	playType string
)

var playCmd = &cobra.Command{
	Use:   "play [uri]",
	Short: "Play media or resume playback",
	Long: `Play a track, playlist or directory by URI, or resume playback when
called without arguments.

The --mode flag controls how the media combines with the queue:
  replace  clear the queue, add the media, start playing (default)
  add      append to the end of the queue
  next     insert after the current track
  play     insert at the current position and play it now

With add and next, playback starts if nothing is playing but never
jumps to the new items.

Examples:
  mopctl play                                  # Resume playback
  mopctl play local:track:album/01.flac        # Replace queue and play
  mopctl play m3u:evening.m3u --mode add       # Append a playlist
  mopctl play http://radio.example/stream --mode play`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playMode, "mode", "m", "", "enqueue mode: replace, add, next, or play")
	playCmd.Flags().StringVarP(&playType, "type", "t", "", "media type hint: track, playlist, or directory")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s := newSpeaker()

	if len(args) == 0 {
		if err := s.Play(ctx); err != nil {
			return fmt.Errorf("failed to resume: %w", err)
		}
		reportAction("playing", "▶ Resumed")
		return nil
	}

	modeStr := playMode
	if modeStr == "" {
		modeStr = cfg.Defaults.EnqueueMode
	}
	mode, err := speaker.ParseEnqueueMode(modeStr)
	if err != nil {
		return err
	}

	uri := args[0]
	if err := s.PlayMedia(ctx, uri, playType, mode); err != nil {
		return fmt.Errorf("failed to play %q: %w", uri, err)
	}

	switch mode {
	case speaker.EnqueueAdd:
		reportAction("added", "Added to queue")
	case speaker.EnqueueNext:
		reportAction("queued", "Playing next")
	default:
		reportAction("playing", "▶ Playing")
	}
	return nil
}
