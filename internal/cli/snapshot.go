package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	mopctlerrors "github.com/averbeke/mopctl/internal/errors"
	"github.com/averbeke/mopctl/internal/speaker"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and restore the listening session",
	Long: `Takes a snapshot of the queue, playback position and mixer state, or
restores the last one. Useful around announcements that hijack the queue.
Snapshots persist across mopctl invocations and are consumed on restore.`,
}

var snapshotTakeCmd = &cobra.Command{
	Use:   "take",
	Short: "Snapshot the current session",
	RunE:  runSnapshotTake,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the last snapshot",
	RunE:  runSnapshotRestore,
}

func init() {
	snapshotCmd.AddCommand(snapshotTakeCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// snapshotPath returns where snapshots persist between invocations.
func snapshotPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "mopctl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshot.json"), nil
}

func saveSnapshotFile(snap speaker.Snapshot) error {
	path, err := snapshotPath()
	if err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadSnapshotFile() (*speaker.Snapshot, error) {
	path, err := snapshotPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var snap speaker.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func removeSnapshotFile() {
	if path, err := snapshotPath(); err == nil {
		_ = os.Remove(path)
	}
}

func runSnapshotTake(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s := newSpeaker()
	s.Refresh(ctx)
	if !s.Available() {
		return mopctlerrors.ErrNotAvailable
	}

	if err := s.TakeSnapshot(ctx); err != nil {
		return fmt.Errorf("failed to take snapshot: %w", err)
	}

	snap, _ := s.SnapshotInfo()
	if err := saveSnapshotFile(snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"status": "saved",
			"tracks": len(snap.URIs),
			"state":  snap.State.String(),
		})
	}
	fmt.Printf("Snapshot saved (%d tracks, %s)\n", len(snap.URIs), snap.State)
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	snap, err := loadSnapshotFile()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap == nil {
		fmt.Println("No snapshot to restore")
		return nil
	}

	s := newSpeaker()
	s.Refresh(ctx)
	if !s.Available() {
		return mopctlerrors.ErrNotAvailable
	}

	s.SetSnapshot(*snap)
	removeSnapshotFile()

	if err := s.RestoreSnapshot(ctx); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	reportAction("restored", "Snapshot restored")
	return nil
}
