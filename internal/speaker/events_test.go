package speaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/averbeke/mopctl/internal/mopidy"
)

func TestHandleVolumeAndMuteEvents(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	s.handleEvent(t.Context(), &mopidy.VolumeChangedEvent{Volume: 61})
	require.Equal(t, 61, s.Volume())

	s.handleEvent(t.Context(), &mopidy.MuteChangedEvent{Mute: true})
	require.True(t, s.Muted())
}

func TestHandleOptionsChangedRefetches(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	f.mu.Lock()
	f.repeat = true
	f.single = false
	f.shuffle = true
	f.mu.Unlock()

	s.handleEvent(t.Context(), &mopidy.OptionsChangedEvent{})

	// The re-fetch runs off the dispatch path.
	require.Eventually(t, func() bool {
		return s.RepeatModeValue() == RepeatAll && s.Shuffle()
	}, time.Second, 5*time.Millisecond)
}

func TestHandlePlaybackStateChanged(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)
	tlid := f.addTrack("local:track:a", "A")

	s.handleEvent(t.Context(), &mopidy.TrackPlaybackStartedEvent{
		TLTrack: mopidy.TLTrack{TLID: tlid, Track: mopidy.Track{URI: "local:track:a", Name: "A"}},
	})
	require.Equal(t, StatePlaying, s.State())
	cur, ok := s.Queue().Current()
	require.True(t, ok)
	require.Equal(t, "A", cur.Title)

	// Stopping clears the now-playing pointer.
	s.handleEvent(t.Context(), &mopidy.PlaybackStateChangedEvent{
		OldState: mopidy.StatePlaying,
		NewState: mopidy.StateStopped,
	})
	require.Equal(t, StateIdle, s.State())
	_, ok = s.Queue().Current()
	require.False(t, ok)
}

func TestHandlePauseCarriesPosition(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	s.handleEvent(t.Context(), &mopidy.TrackPlaybackPausedEvent{
		TLTrack:      mopidy.TLTrack{TLID: 3, Track: mopidy.Track{URI: "local:track:b", Name: "B"}},
		TimePosition: 42500,
	})

	require.Equal(t, StatePaused, s.State())
	pos, _ := s.Queue().Position()
	require.NotNil(t, pos)
	require.Equal(t, 42, *pos)
}

func TestHandleSeeked(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)
	s.Queue().apply([]mopidy.TLTrack{tl(1, "local:track:a")})
	s.Queue().setCurrentFromEvent(tl(1, "local:track:a"), nil)

	s.handleEvent(t.Context(), &mopidy.SeekedEvent{TimePosition: 93000})

	pos, _ := s.Queue().Position()
	require.NotNil(t, pos)
	require.Equal(t, 93, *pos)
}

func TestHandleStreamTitleChanged(t *testing.T) {
	f := newFakeMopidy(t)
	tlid := f.addTrack("http://radio.example/stream", "")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.state = "playing"
	f.mu.Unlock()

	s := f.speaker(t)
	s.Queue().apply([]mopidy.TLTrack{tl(tlid, "http://radio.example/stream")})
	s.Queue().setCurrentFromEvent(tl(tlid, "http://radio.example/stream"), nil)

	s.handleEvent(t.Context(), &mopidy.StreamTitleChangedEvent{Title: "Night Flight"})

	// The override applies immediately on the dispatch path.
	cur, ok := s.Queue().Current()
	require.True(t, ok)
	require.Equal(t, "Night Flight", cur.DisplayTitle())

	// A follow-on fetch reconciles the rest of the track's metadata,
	// without losing the override.
	require.Eventually(t, func() bool {
		return f.callCount("core.playback.get_current_tl_track") > 0
	}, time.Second, 5*time.Millisecond)
	cur, ok = s.Queue().Current()
	require.True(t, ok)
	require.Equal(t, "Night Flight", cur.DisplayTitle())
}

func TestHandlePlayingStateFetchesCurrentTrack(t *testing.T) {
	f := newFakeMopidy(t)
	tlid := f.addTrack("local:track:a", "A")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.mu.Unlock()
	s := f.speaker(t)

	s.handleEvent(t.Context(), &mopidy.PlaybackStateChangedEvent{
		OldState: mopidy.StateStopped,
		NewState: mopidy.StatePlaying,
	})

	require.Equal(t, StatePlaying, s.State())
	require.Eventually(t, func() bool {
		cur, ok := s.Queue().Current()
		return ok && cur.TLID == tlid
	}, time.Second, 5*time.Millisecond)
}

func TestHandleTracklistChangedRefetches(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)
	f.addTrack("local:track:a", "A")
	f.addTrack("local:track:b", "B")

	s.handleEvent(t.Context(), &mopidy.TracklistChangedEvent{})

	require.Eventually(t, func() bool {
		return s.Queue().Len() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestHandleTrackEndedClearsCurrent(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)
	s.Queue().apply([]mopidy.TLTrack{tl(1, "local:track:a")})
	s.Queue().setCurrentFromEvent(tl(1, "local:track:a"), nil)

	s.handleEvent(t.Context(), &mopidy.TrackPlaybackEndedEvent{
		TLTrack: tl(1, "local:track:a"),
	})

	_, ok := s.Queue().Current()
	require.False(t, ok)
}

func TestHandleEventNotifies(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	var fired int
	s.OnChange(func() { fired++ })
	s.handleEvent(t.Context(), &mopidy.VolumeChangedEvent{Volume: 10})

	require.Equal(t, 1, fired)
}
