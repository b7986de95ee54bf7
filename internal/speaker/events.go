package speaker

import (
	"context"
	"log/slog"

	"github.com/averbeke/mopctl/internal/mopidy"
)

// handleEvent applies one pushed event to the aggregated state.
// Payload-carried values are written directly; events that only signal
// "something changed" trigger a scoped re-fetch. Follow-on fetches need
// a round trip, so they run off-band: a slow RPC must not delay event
// delivery or, with the listener's drop-on-full buffer, shed events.
func (s *Speaker) handleEvent(ctx context.Context, ev mopidy.Event) {
	switch e := ev.(type) {
	case *mopidy.VolumeChangedEvent:
		s.setVolume(e.Volume)

	case *mopidy.MuteChangedEvent:
		s.setMuted(e.Mute)

	case *mopidy.OptionsChangedEvent:
		s.followUp("options", s.refreshOptions)

	case *mopidy.PlaybackStateChangedEvent:
		s.setState(playbackStateFrom(e.NewState))
		switch e.NewState {
		case mopidy.StateStopped:
			s.queue.ClearCurrent()
		case mopidy.StatePlaying:
			s.followUp("current track", s.queue.UpdateCurrentTrack)
		}

	case *mopidy.SeekedEvent:
		s.queue.SetPositionMs(e.TimePosition)

	case *mopidy.StreamTitleChangedEvent:
		// Apply the override immediately, then re-fetch the current
		// track so the rest of its metadata stays consistent with it.
		s.queue.SetStreamTitle(e.Title)
		s.followUp("current track", s.queue.UpdateCurrentTrack)

	case *mopidy.TrackPlaybackStartedEvent:
		s.setState(StatePlaying)
		gen := s.queue.setCurrentFromEvent(e.TLTrack, nil)
		s.fetchArtwork(gen, e.TLTrack)

	case *mopidy.TrackPlaybackPausedEvent:
		s.setState(StatePaused)
		s.queue.setCurrentFromEvent(e.TLTrack, &e.TimePosition)

	case *mopidy.TrackPlaybackResumedEvent:
		s.setState(StatePlaying)
		s.queue.setCurrentFromEvent(e.TLTrack, &e.TimePosition)

	case *mopidy.TrackPlaybackEndedEvent:
		s.queue.ClearCurrent()

	case *mopidy.TracklistChangedEvent:
		s.followUp("tracklist", s.queue.UpdateTracks)

	case *mopidy.PlaylistsLoadedEvent:
		s.followUp("sources", s.refreshSources)
	}

	s.notify()
}

// followUp runs a scoped re-fetch on its own goroutine and notifies
// observers once it lands. Concurrent reconciliations are safe: the
// queue serializes them against itself.
func (s *Speaker) followUp(name string, fn func(context.Context) error) {
	go func() {
		if err := fn(context.Background()); err != nil {
			slog.Debug("cannot refresh "+name, "err", err)
		}
		s.notify()
	}()
}

// fetchArtwork resolves artwork off the dispatch goroutine so a slow
// image lookup never delays event handling.
func (s *Speaker) fetchArtwork(gen uint64, tl mopidy.TLTrack) {
	uri := tl.Track.URI
	isStream := uriScheme(uri) == "http" || uriScheme(uri) == "https"
	go s.queue.resolveArtwork(context.Background(), gen, tl.TLID, uri, isStream)
}
