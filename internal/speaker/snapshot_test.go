package speaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastRestore(t *testing.T) {
	oldInterval, oldLimit := restorePollInterval, restorePollLimit
	restorePollInterval = time.Millisecond
	restorePollLimit = 5
	t.Cleanup(func() {
		restorePollInterval, restorePollLimit = oldInterval, oldLimit
	})
}

func TestSnapshotRestoreRebuildsSession(t *testing.T) {
	fastRestore(t)

	f := newFakeMopidy(t)
	f.volume = 44
	f.state = "playing"
	f.addTrack("local:track:a", "A")
	f.addTrack("local:track:b", "B")
	f.mu.Lock()
	idx := 1
	f.current = &idx
	f.mu.Unlock()

	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.TakeSnapshot(t.Context()))
	require.True(t, s.HasSnapshot())

	// Hijack: the announcement replaces the queue and cranks the volume.
	require.NoError(t, s.PlayMedia(t.Context(), "http://tts.example/alert.mp3", MediaTypeTrack, EnqueueReplace))
	require.NoError(t, s.SetVolume(t.Context(), 90))
	require.Equal(t, []string{"http://tts.example/alert.mp3"}, f.uris())

	require.NoError(t, s.RestoreSnapshot(t.Context()))

	require.Equal(t, []string{"local:track:a", "local:track:b"}, f.uris())
	f.mu.Lock()
	require.Equal(t, 44, f.volume)
	require.Equal(t, "playing", f.state)
	require.NotNil(t, f.current)
	require.Equal(t, 1, *f.current)
	f.mu.Unlock()
}

func TestSnapshotIsSingleUse(t *testing.T) {
	fastRestore(t)

	f := newFakeMopidy(t)
	f.addTrack("local:track:a", "A")
	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.TakeSnapshot(t.Context()))
	require.NoError(t, s.RestoreSnapshot(t.Context()))
	require.False(t, s.HasSnapshot())

	// A second restore is a no-op: no clears, no adds.
	clears := f.callCount("core.tracklist.clear")
	adds := f.callCount("core.tracklist.add")
	require.NoError(t, s.RestoreSnapshot(t.Context()))
	require.Equal(t, clears, f.callCount("core.tracklist.clear"))
	require.Equal(t, adds, f.callCount("core.tracklist.add"))
}

func TestRestoreWithoutSnapshotIsNoOp(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	require.NoError(t, s.RestoreSnapshot(t.Context()))
	require.Zero(t, f.callCount("core.tracklist.clear"))
	require.Zero(t, f.callCount("core.mixer.set_volume"))
}

func TestRestorePausedSessionStaysPaused(t *testing.T) {
	fastRestore(t)

	f := newFakeMopidy(t)
	f.state = "paused"
	f.addTrack("local:track:a", "A")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.mu.Unlock()

	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.TakeSnapshot(t.Context()))
	require.NoError(t, s.RestoreSnapshot(t.Context()))

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "paused", f.state)
}

func TestRestoreIdleSessionDoesNotPlay(t *testing.T) {
	fastRestore(t)

	f := newFakeMopidy(t)
	f.state = "stopped"
	f.addTrack("local:track:a", "A")

	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.TakeSnapshot(t.Context()))
	require.NoError(t, s.RestoreSnapshot(t.Context()))

	require.Zero(t, f.callCount("core.playback.play"))
	require.Equal(t, []string{"local:track:a"}, f.uris())
}

func TestSnapshotCapturesOptions(t *testing.T) {
	f := newFakeMopidy(t)
	f.shuffle = true
	f.repeat = true
	f.single = false

	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.TakeSnapshot(t.Context()))
	snap, ok := s.SnapshotInfo()
	require.True(t, ok)
	require.True(t, snap.Shuffle)
	require.Equal(t, RepeatAll, snap.Repeat)
}

func TestRestoreWaitsOnPlaybackState(t *testing.T) {
	fastRestore(t)

	f := newFakeMopidy(t)
	f.state = "playing"
	f.addTrack("local:track:a", "A")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.mu.Unlock()

	s := f.speaker(t)
	s.Refresh(t.Context())
	require.NoError(t, s.TakeSnapshot(t.Context()))

	before := f.callCount("core.playback.get_state")
	require.NoError(t, s.RestoreSnapshot(t.Context()))
	require.Greater(t, f.callCount("core.playback.get_state"), before)
}

func TestRestoreAbandonsWhenPlaybackNeverStarts(t *testing.T) {
	fastRestore(t)

	f := newFakeMopidy(t)
	f.state = "paused"
	f.position = 30000
	f.addTrack("local:track:a", "A")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.mu.Unlock()

	s := f.speaker(t)
	s.Refresh(t.Context())
	require.NoError(t, s.TakeSnapshot(t.Context()))

	f.mu.Lock()
	f.stuckPlay = true
	f.mu.Unlock()

	require.NoError(t, s.RestoreSnapshot(t.Context()))

	// Playback never confirmed, so the restore is abandoned as-is: no
	// seek, no re-pause, and the snapshot is spent.
	require.Zero(t, f.callCount("core.playback.seek"))
	require.Zero(t, f.callCount("core.playback.pause"))
	require.False(t, s.HasSnapshot())
}

func TestSnapshotRecordsTimestamp(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	before := time.Now()
	require.NoError(t, s.TakeSnapshot(t.Context()))
	snap, ok := s.SnapshotInfo()
	require.True(t, ok)
	require.False(t, snap.TakenAt.Before(before))
}
