package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mopctlerrors "github.com/averbeke/mopctl/internal/errors"
	"github.com/averbeke/mopctl/internal/speaker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long:  `Shows the playback state, mixer state, options and the current track.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s := newSpeaker()
	s.Refresh(ctx)

	st := s.Status()
	if !st.Available {
		return mopctlerrors.ErrNotAvailable
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(st)
	}
	printStatus(st)
	return nil
}

func printStatus(st speaker.Status) {
	icon := "■"
	switch st.State {
	case speaker.StatePlaying:
		icon = "▶"
	case speaker.StatePaused:
		icon = "⏸"
	}

	if st.Track == nil {
		fmt.Printf("%s Nothing playing\n", icon)
	} else {
		fmt.Printf("%s %s\n", icon, st.Track.Title)
		if st.Track.Artist != "" || st.Track.Album != "" {
			fmt.Printf("  %s — %s\n", st.Track.Artist, st.Track.Album)
		}
		if st.Position != nil && st.Track.Duration > 0 {
			bar := FormatProgress(*st.Position, st.Track.Duration, 30)
			fmt.Printf("  %s %s / %s\n", bar,
				FormatDuration(*st.Position),
				FormatDuration(st.Track.Duration))
		}
		if st.Track.Playlist != "" {
			fmt.Printf("  from %s\n", st.Track.Playlist)
		}
	}

	mute := ""
	if st.Muted {
		mute = " (muted)"
	}
	fmt.Printf("  🔊 %d%%%s", st.Volume, mute)
	if st.QueueIndex != nil {
		fmt.Printf("  ♫ %d/%d", *st.QueueIndex+1, st.QueueSize)
	} else {
		fmt.Printf("  ♫ %d queued", st.QueueSize)
	}
	fmt.Printf("  shuffle %s  repeat %s  consume %s\n",
		StatusIcon(st.Shuffle), st.RepeatMode, StatusIcon(st.Consume))
}
