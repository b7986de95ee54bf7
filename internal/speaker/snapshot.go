package speaker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/averbeke/mopctl/internal/mopidy"
)

// Restore polls playback state until the server confirms playback
// resumed. Package vars so tests can shrink the wait.
var (
	restorePollInterval = 500 * time.Millisecond
	restorePollLimit    = 120
)

// Snapshot captures enough state to reproduce the listening session
// after the queue was hijacked (an announcement, an alarm). It keys the
// queue by URI list and order index, never by tlid: a clear invalidates
// every tlid, so the restored queue carries entirely new ones.
type Snapshot struct {
	TakenAt  time.Time
	State    PlaybackState
	Volume   int
	Muted    bool
	Shuffle  bool
	Repeat   RepeatMode
	URIs     []string
	Index    *int
	Position *int // seconds
}

// TakeSnapshot records the current session. A later snapshot replaces
// an unconsumed earlier one.
func (s *Speaker) TakeSnapshot(ctx context.Context) error {
	snap := &Snapshot{
		TakenAt: time.Now(),
		State:   s.State(),
		Volume:  s.Volume(),
		Muted:   s.Muted(),
		Shuffle: s.Shuffle(),
		Repeat:  s.RepeatModeValue(),
		URIs:    s.queue.URIList(),
		Index:   s.queue.Index(),
	}
	if pos, _ := s.queue.Position(); pos != nil {
		p := *pos
		snap.Position = &p
	}

	s.snapMu.Lock()
	s.snapshot = snap
	s.snapMu.Unlock()

	slog.Debug("snapshot taken", "tracks", len(snap.URIs), "state", snap.State)
	return nil
}

// SetSnapshot installs a previously captured snapshot, e.g. one loaded
// from disk by a CLI front end.
func (s *Speaker) SetSnapshot(snap Snapshot) {
	s.snapMu.Lock()
	s.snapshot = &snap
	s.snapMu.Unlock()
}

// HasSnapshot reports whether an unconsumed snapshot exists.
func (s *Speaker) HasSnapshot() bool {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.snapshot != nil
}

// SnapshotInfo returns a copy of the pending snapshot, if any.
func (s *Speaker) SnapshotInfo() (Snapshot, bool) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// RestoreSnapshot rebuilds the session recorded by the last
// TakeSnapshot. Without a pending snapshot it is a no-op. The snapshot
// is single-use: it is consumed whether or not the restore fully
// succeeds, so a broken snapshot cannot wedge every later restore.
//
// Each step is best-effort: mixer state is restored even when the
// queue cannot be, and a track that vanished from the library since
// the snapshot silently drops out. Only the initial clear is fatal.
func (s *Speaker) RestoreSnapshot(ctx context.Context) error {
	s.snapMu.Lock()
	snap := s.snapshot
	s.snapshot = nil
	s.snapMu.Unlock()

	if snap == nil {
		slog.Debug("no snapshot to restore")
		return nil
	}

	slog.Debug("restoring snapshot", "tracks", len(snap.URIs), "state", snap.State)

	if err := s.client.Stop(ctx); err != nil {
		slog.Warn("cannot stop playback for restore", "err", err)
	}
	if err := s.client.TracklistClear(ctx); err != nil {
		return fmt.Errorf("clearing queue for restore: %w", err)
	}

	queued := false
	if len(snap.URIs) > 0 {
		if _, err := s.client.TracklistAdd(ctx, snap.URIs, nil); err != nil {
			slog.Warn("cannot re-add snapshotted tracks", "err", err)
		} else {
			queued = true
		}
	}

	if err := s.client.SetVolume(ctx, snap.Volume); err != nil {
		slog.Warn("cannot restore volume", "err", err)
	}
	if err := s.client.SetMute(ctx, snap.Muted); err != nil {
		slog.Warn("cannot restore mute", "err", err)
	}

	if !queued {
		return nil
	}

	if err := s.queue.UpdateTracks(ctx); err != nil {
		slog.Warn("cannot refresh queue after restore", "err", err)
	}

	if snap.State != StatePlaying && snap.State != StatePaused {
		return nil
	}
	if snap.Index == nil {
		return nil
	}

	// The old tlids died with the clear; resolve the saved order index
	// against the rebuilt queue.
	entries := s.queue.Entries()
	if *snap.Index >= len(entries) {
		slog.Warn("snapshotted track index out of range after restore", "index", *snap.Index)
		return nil
	}
	tlid := entries[*snap.Index].TLID

	if err := s.client.Play(ctx, &tlid); err != nil {
		slog.Warn("cannot resume snapshotted track", "err", err)
		return nil
	}

	// Seeking or pausing before the backend has actually resumed would
	// land on nothing, so wait for confirmation. On timeout the restore
	// is abandoned as-is; the snapshot is already spent.
	if !s.waitForPlayback(ctx) {
		slog.Warn("playback did not restart in time, abandoning restore")
		return nil
	}

	if snap.Position != nil && *snap.Position > 0 {
		if _, err := s.client.Seek(ctx, int64(*snap.Position)*1000); err != nil {
			slog.Warn("cannot restore playback position", "err", err)
		}
	}

	if snap.State == StatePaused {
		if err := s.client.Pause(ctx); err != nil {
			slog.Warn("cannot re-pause restored playback", "err", err)
		}
	}
	return nil
}

// waitForPlayback polls playback state until the server reports
// playing or paused.
func (s *Speaker) waitForPlayback(ctx context.Context) bool {
	for i := 0; i < restorePollLimit; i++ {
		state, err := s.client.PlaybackState(ctx)
		if err == nil && (state == mopidy.StatePlaying || state == mopidy.StatePaused) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(restorePollInterval):
		}
	}
	return false
}
