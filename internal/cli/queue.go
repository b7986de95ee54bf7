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

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the play queue",
	Long:  `List, add to or clear the server's play queue.`,
	RunE:  runQueueList,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the play queue",
	RunE:  runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <uri>...",
	Short: "Append tracks to the queue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQueueAdd,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the queue",
	RunE:  runQueueClear,
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueClearCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s := newSpeaker()
	s.Refresh(ctx)
	if !s.Available() {
		return mopctlerrors.ErrNotAvailable
	}

	entries := s.Queue().Entries()
	current, hasCurrent := s.Queue().Current()

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}

	table := NewTable("", "#", "TITLE", "ARTIST", "LENGTH")
	for i, e := range entries {
		marker := ""
		if hasCurrent && e.TLID == current.TLID {
			marker = "▶"
		}
		table.Row(marker,
			fmt.Sprintf("%d", i+1),
			TruncateString(e.DisplayTitle(), 40),
			TruncateString(e.Artist, 30),
			FormatDuration(e.Duration))
	}
	table.Flush()
	return nil
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s := newSpeaker()

	for _, uri := range args {
		if err := s.PlayMedia(ctx, uri, "", speaker.EnqueueAdd); err != nil {
			return fmt.Errorf("failed to add %q: %w", uri, err)
		}
	}

	reportAction("added", fmt.Sprintf("Added %d item(s) to queue", len(args)))
	return nil
}

func runQueueClear(cmd *cobra.Command, args []string) error {
	if err := newSpeaker().ClearQueue(context.Background()); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	reportAction("cleared", "Queue cleared")
	return nil
}
