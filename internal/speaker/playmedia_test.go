package speaker

import (
	"testing"

	"github.com/stretchr/testify/require"

	mopctlerrors "github.com/averbeke/mopctl/internal/errors"
	"github.com/averbeke/mopctl/internal/mopidy"
)

func TestParseEnqueueMode(t *testing.T) {
	for _, s := range []string{"replace", "add", "next", "play"} {
		mode, err := ParseEnqueueMode(s)
		require.NoError(t, err)
		require.Equal(t, s, mode.String())
	}
	_, err := ParseEnqueueMode("shuffle")
	require.Error(t, err)
}

func TestPlayMediaReplace(t *testing.T) {
	f := newFakeMopidy(t)
	f.addTrack("local:track:x", "X")
	f.addTrack("local:track:y", "Y")
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:a", MediaTypeTrack, EnqueueReplace)
	require.NoError(t, err)

	require.Equal(t, []string{"local:track:a"}, f.uris())
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "playing", f.state)
	require.NotNil(t, f.current)
	require.Equal(t, 0, *f.current)
}

func TestPlayMediaAddStartsIdleDevice(t *testing.T) {
	f := newFakeMopidy(t)
	f.addTrack("local:track:a", "A")
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:z", MediaTypeTrack, EnqueueAdd)
	require.NoError(t, err)

	require.Equal(t, []string{"local:track:a", "local:track:z"}, f.uris())
	require.Equal(t, 1, f.callCount("core.playback.play"))
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "playing", f.state)
}

func TestPlayMediaAddKeepsPlayingTrack(t *testing.T) {
	f := newFakeMopidy(t)
	f.addTrack("local:track:a", "A")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.state = "playing"
	f.mu.Unlock()
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:z", MediaTypeTrack, EnqueueAdd)
	require.NoError(t, err)

	// Already playing: the append never touches playback.
	require.Zero(t, f.callCount("core.playback.play"))
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotNil(t, f.current)
	require.Equal(t, 0, *f.current)
}

func TestPlayMediaNextInsertsAfterCurrent(t *testing.T) {
	f := newFakeMopidy(t)
	f.addTrack("local:track:a", "A")
	f.addTrack("local:track:b", "B")
	f.addTrack("local:track:c", "C")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.state = "playing"
	f.mu.Unlock()
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:z", MediaTypeTrack, EnqueueNext)
	require.NoError(t, err)

	require.Equal(t, []string{"local:track:a", "local:track:z", "local:track:b", "local:track:c"}, f.uris())
	require.Zero(t, f.callCount("core.playback.play"))
}

func TestPlayMediaNextWithEmptyQueueAppends(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:z", MediaTypeTrack, EnqueueNext)
	require.NoError(t, err)

	require.Equal(t, []string{"local:track:z"}, f.uris())
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "playing", f.state)
}

func TestPlayMediaPlayStartsInsertedTrack(t *testing.T) {
	f := newFakeMopidy(t)
	f.addTrack("local:track:a", "A")
	f.addTrack("local:track:b", "B")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.mu.Unlock()
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:z", MediaTypeTrack, EnqueuePlay)
	require.NoError(t, err)

	// The insert lands in the current slot, so the new track becomes
	// "next" and playback jumps straight to it.
	require.Equal(t, []string{"local:track:z", "local:track:a", "local:track:b"}, f.uris())
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "playing", f.state)
	require.NotNil(t, f.current)
	require.Equal(t, 0, *f.current)
}

func TestPlayMediaUnknownMode(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "local:track:a", MediaTypeTrack, EnqueueMode(42))
	require.ErrorIs(t, err, mopctlerrors.ErrMissingMediaInformation)
	require.Zero(t, f.callCount("core.tracklist.add"))
}

func TestPlayMediaExpandsPlaylist(t *testing.T) {
	f := newFakeMopidy(t)
	f.playlists["m3u:evening.m3u"] = &mopidy.Playlist{
		URI:  "m3u:evening.m3u",
		Name: "Evening",
		Tracks: []mopidy.Track{
			{URI: "local:track:a", Name: "A"},
			{URI: "local:track:b", Name: "B"},
		},
	}
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "m3u:evening.m3u", MediaTypePlaylist, EnqueueReplace)
	require.NoError(t, err)

	require.Equal(t, []string{"local:track:a", "local:track:b"}, f.uris())

	// Playlist name sticks to the queued entries.
	require.NoError(t, s.Queue().UpdateTracks(t.Context()))
	for _, e := range s.Queue().Entries() {
		require.Equal(t, "Evening", e.PlaylistName)
	}
}

func TestPlayMediaEmptyURI(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "", MediaTypeTrack, EnqueueReplace)
	require.ErrorIs(t, err, mopctlerrors.ErrMissingMediaInformation)
	require.Zero(t, f.callCount("core.tracklist.clear"))
}

func TestPlayMediaEmptyPlaylist(t *testing.T) {
	f := newFakeMopidy(t)
	f.playlists["m3u:empty.m3u"] = &mopidy.Playlist{URI: "m3u:empty.m3u", Name: "Empty"}
	s := f.speaker(t)

	err := s.PlayMedia(t.Context(), "m3u:empty.m3u", MediaTypePlaylist, EnqueueReplace)
	require.ErrorIs(t, err, mopctlerrors.ErrMissingMediaInformation)
	require.Empty(t, f.uris())
}

func TestSelectSource(t *testing.T) {
	f := newFakeMopidy(t)
	f.playlists["m3u:morning.m3u"] = &mopidy.Playlist{
		URI:    "m3u:morning.m3u",
		Name:   "Morning",
		Tracks: []mopidy.Track{{URI: "local:track:a", Name: "A"}},
	}
	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.SelectSource(t.Context(), "Morning"))
	require.Equal(t, []string{"local:track:a"}, f.uris())
}

func TestSelectSourceUnknown(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)
	s.Refresh(t.Context())

	err := s.SelectSource(t.Context(), "No Such List")
	require.ErrorIs(t, err, mopctlerrors.ErrUnknownSource)
}

func TestGuessMediaType(t *testing.T) {
	require.Equal(t, MediaTypePlaylist, guessMediaType("m3u:evening.m3u"))
	require.Equal(t, MediaTypeDirectory, guessMediaType("local:directory?type=album"))
	require.Equal(t, MediaTypeTrack, guessMediaType("local:track:a.flac"))
	require.Equal(t, MediaTypeTrack, guessMediaType("http://radio.example/stream"))
}
