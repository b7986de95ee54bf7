package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/averbeke/mopctl/internal/speaker"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	Long:  `Resume paused playback.`,
	RunE:  runResume,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Long:  `Pause the current playback.`,
	RunE:  runPause,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	Long:  `Stop playback entirely.`,
	RunE:  runStop,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	Long:  `Skip to the next track in the queue.`,
	RunE:  runNext,
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	Long:  `Go back to the previous track.`,
	RunE:  runPrev,
}

var seekCmd = &cobra.Command{
	Use:   "seek <seconds>",
	Short: "Seek within the current track",
	Long:  `Seek to a position in the current track, in seconds.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSeek,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it up/down.

Examples:
  mopctl volume 50      # Set volume to 50%
  mopctl volume --up    # Increase volume by 5%
  mopctl volume --down  # Decrease volume by 5%`,
	RunE: runVolume,
}

var muteCmd = &cobra.Command{
	Use:   "mute [on|off]",
	Short: "Mute or unmute playback",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMute,
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle <on|off>",
	Short: "Enable or disable shuffle",
	Args:  cobra.ExactArgs(1),
	RunE:  runShuffle,
}

var repeatCmd = &cobra.Command{
	Use:   "repeat <off|all|one>",
	Short: "Set the repeat mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepeat,
}

var consumeCmd = &cobra.Command{
	Use:   "consume <on|off>",
	Short: "Enable or disable consume mode",
	Long:  `With consume enabled, finished tracks are removed from the queue.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConsume,
}

func init() {
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "Increase volume by 5%")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "Decrease volume by 5%")

	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(seekCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(repeatCmd)
	rootCmd.AddCommand(consumeCmd)
}

func reportAction(status, message string) {
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"status": status})
	} else {
		fmt.Println(message)
	}
}

func runResume(cmd *cobra.Command, args []string) error {
	if err := newSpeaker().Play(context.Background()); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}
	reportAction("playing", "▶ Resumed")
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	if err := newSpeaker().Pause(context.Background()); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	reportAction("paused", "⏸ Paused")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	if err := newSpeaker().Stop(context.Background()); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	reportAction("stopped", "■ Stopped")
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	if err := newSpeaker().NextTrack(context.Background()); err != nil {
		return fmt.Errorf("failed to skip: %w", err)
	}
	reportAction("skipped", "⏭ Skipped to next track")
	return nil
}

func runPrev(cmd *cobra.Command, args []string) error {
	if err := newSpeaker().PreviousTrack(context.Background()); err != nil {
		return fmt.Errorf("failed to go back: %w", err)
	}
	reportAction("previous", "⏮ Previous track")
	return nil
}

func runSeek(cmd *cobra.Command, args []string) error {
	pos, err := strconv.Atoi(args[0])
	if err != nil || pos < 0 {
		return fmt.Errorf("invalid position: %s", args[0])
	}

	if err := newSpeaker().Seek(context.Background(), pos); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	reportAction("seeked", fmt.Sprintf("⏩ Seeked to %s", FormatDuration(pos)))
	return nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s := newSpeaker()
	s.Refresh(ctx)
	current := s.Volume()

	if !volumeUp && !volumeDown && len(args) == 0 {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]int{"volume": current})
		} else {
			fmt.Printf("🔊 Volume: %d%%\n", current)
		}
		return nil
	}

	var err error
	switch {
	case volumeUp:
		err = s.VolumeUp(ctx)
	case volumeDown:
		err = s.VolumeDown(ctx)
	default:
		val, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("invalid volume level: %s", args[0])
		}
		if val < 0 || val > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		err = s.SetVolume(ctx, val)
	}
	if err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	s.Refresh(ctx)
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]int{"volume": s.Volume(), "previous": current})
	} else {
		fmt.Printf("🔊 Volume: %d%% (was %d%%)\n", s.Volume(), current)
	}
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value: %s (must be on or off)", s)
	}
}

func runMute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s := newSpeaker()

	mute := true
	if len(args) > 0 {
		var err error
		if mute, err = parseOnOff(args[0]); err != nil {
			return err
		}
	}

	if err := s.SetMute(ctx, mute); err != nil {
		return fmt.Errorf("failed to set mute: %w", err)
	}
	if mute {
		reportAction("muted", "🔇 Muted")
	} else {
		reportAction("unmuted", "🔊 Unmuted")
	}
	return nil
}

func runShuffle(cmd *cobra.Command, args []string) error {
	on, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	if err := newSpeaker().SetShuffle(context.Background(), on); err != nil {
		return fmt.Errorf("failed to set shuffle: %w", err)
	}
	reportAction("shuffle "+args[0], "🔀 Shuffle "+args[0])
	return nil
}

func runRepeat(cmd *cobra.Command, args []string) error {
	mode, err := speaker.ParseRepeatMode(args[0])
	if err != nil {
		return err
	}
	if err := newSpeaker().SetRepeatMode(context.Background(), mode); err != nil {
		return fmt.Errorf("failed to set repeat mode: %w", err)
	}
	reportAction("repeat "+mode.String(), "🔁 Repeat "+mode.String())
	return nil
}

func runConsume(cmd *cobra.Command, args []string) error {
	on, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	if err := newSpeaker().SetConsumeMode(context.Background(), on); err != nil {
		return fmt.Errorf("failed to set consume mode: %w", err)
	}
	reportAction("consume "+args[0], "Consume "+args[0])
	return nil
}
