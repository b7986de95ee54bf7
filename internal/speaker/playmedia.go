package speaker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/averbeke/mopctl/internal/errors"
	"github.com/averbeke/mopctl/internal/mopidy"
)

// EnqueueMode controls how PlayMedia combines new media with the
// existing queue.
type EnqueueMode int

const (
	// EnqueueReplace clears the queue, adds the media, and plays it.
	EnqueueReplace EnqueueMode = iota
	// EnqueueAdd appends the media to the end of the queue. Playback
	// starts if the device is idle, but never jumps to the new items.
	EnqueueAdd
	// EnqueueNext inserts the media directly after the current track.
	// Playback starts if the device is idle, but never jumps to the
	// new items.
	EnqueueNext
	// EnqueuePlay inserts the media at the current position and starts
	// playing its first item immediately.
	EnqueuePlay
)

func (m EnqueueMode) String() string {
	switch m {
	case EnqueueAdd:
		return "add"
	case EnqueueNext:
		return "next"
	case EnqueuePlay:
		return "play"
	default:
		return "replace"
	}
}

// ParseEnqueueMode parses "replace", "add", "next" or "play".
func ParseEnqueueMode(s string) (EnqueueMode, error) {
	switch s {
	case "replace":
		return EnqueueReplace, nil
	case "add":
		return EnqueueAdd, nil
	case "next":
		return EnqueueNext, nil
	case "play":
		return EnqueuePlay, nil
	default:
		return EnqueueReplace, fmt.Errorf("invalid enqueue mode: %s (must be replace, add, next, or play)", s)
	}
}

// Media type hints accepted by PlayMedia.
const (
	MediaTypeTrack     = "track"
	MediaTypePlaylist  = "playlist"
	MediaTypeDirectory = "directory"
)

// PlayMedia resolves a URI to playable track URIs and enqueues them
// according to mode. mediaType hints how to resolve the URI: playlists
// and directories are expanded to their tracks, anything else is
// treated as a single playable item. An empty expansion is an error;
// enqueueing nothing silently would look like success.
func (s *Speaker) PlayMedia(ctx context.Context, uri, mediaType string, mode EnqueueMode) error {
	if uri == "" {
		return errors.ErrMissingMediaInformation
	}

	uris, playlist, err := s.resolveMedia(ctx, uri, mediaType)
	if err != nil {
		return err
	}
	if len(uris) == 0 {
		return fmt.Errorf("%w: %q resolved to no playable tracks", errors.ErrMissingMediaInformation, uri)
	}

	if err := s.enqueue(ctx, uris, mode); err != nil {
		return err
	}

	if playlist != nil {
		s.queue.setPlaylist(playlist.Name, playlist.URI, uris)
	} else if mode == EnqueueReplace {
		s.queue.clearPlaylist()
	}
	return nil
}

// resolveMedia expands container URIs to track URIs. For playlists it
// also returns the playlist so its name can be attached to the queued
// entries.
func (s *Speaker) resolveMedia(ctx context.Context, uri, mediaType string) ([]string, *mopidy.Playlist, error) {
	if mediaType == "" {
		mediaType = guessMediaType(uri)
	}

	switch mediaType {
	case MediaTypePlaylist:
		pl, err := s.library.Playlist(ctx, uri)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving playlist %q: %w", uri, err)
		}
		if pl != nil && len(pl.Tracks) > 0 {
			uris := make([]string, 0, len(pl.Tracks))
			for _, t := range pl.Tracks {
				uris = append(uris, t.URI)
			}
			return uris, pl, nil
		}
		// Some backends expose playlists only through browse.
		uris, err := s.library.TrackURIs(ctx, uri)
		if err != nil {
			return nil, nil, err
		}
		if pl != nil {
			return uris, pl, nil
		}
		return uris, nil, nil

	case MediaTypeDirectory:
		uris, err := s.library.TrackURIs(ctx, uri)
		return uris, nil, err

	default:
		return []string{uri}, nil, nil
	}
}

func guessMediaType(uri string) string {
	if strings.HasPrefix(uri, "m3u:") {
		return MediaTypePlaylist
	}
	if strings.HasPrefix(uri, "local:directory") {
		return MediaTypeDirectory
	}
	return MediaTypeTrack
}

// enqueue applies one mode's insert-and-maybe-play sequence.
func (s *Speaker) enqueue(ctx context.Context, uris []string, mode EnqueueMode) error {
	switch mode {
	case EnqueueReplace:
		if err := s.client.TracklistClear(ctx); err != nil {
			return fmt.Errorf("clearing queue: %w", err)
		}
		added, err := s.client.TracklistAdd(ctx, uris, nil)
		if err != nil {
			return fmt.Errorf("adding tracks: %w", err)
		}
		if len(added) == 0 {
			return fmt.Errorf("%w: server accepted no tracks", errors.ErrMissingMediaInformation)
		}
		tlid := added[0].TLID
		if err := s.client.Play(ctx, &tlid); err != nil {
			return fmt.Errorf("starting playback: %w", err)
		}
		return nil

	case EnqueueAdd:
		if _, err := s.client.TracklistAdd(ctx, uris, nil); err != nil {
			return fmt.Errorf("adding tracks: %w", err)
		}
		return s.ensurePlaying(ctx)

	case EnqueueNext:
		pos, err := s.insertPosition(ctx, 1)
		if err != nil {
			return err
		}
		if _, err := s.client.TracklistAdd(ctx, uris, &pos); err != nil {
			return fmt.Errorf("inserting tracks: %w", err)
		}
		return s.ensurePlaying(ctx)

	case EnqueuePlay:
		pos, err := s.insertPosition(ctx, 0)
		if err != nil {
			return err
		}
		added, err := s.client.TracklistAdd(ctx, uris, &pos)
		if err != nil {
			return fmt.Errorf("inserting tracks: %w", err)
		}
		if len(added) == 0 {
			return fmt.Errorf("%w: server accepted no tracks", errors.ErrMissingMediaInformation)
		}
		tlid := added[0].TLID
		if err := s.client.Play(ctx, &tlid); err != nil {
			return fmt.Errorf("starting playback: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unhandled enqueue mode %d", errors.ErrMissingMediaInformation, mode)
	}
}

// ensurePlaying starts playback when the device is idle, without
// forcing it to any particular entry.
func (s *Speaker) ensurePlaying(ctx context.Context) error {
	state, err := s.client.PlaybackState(ctx)
	if err != nil {
		return fmt.Errorf("reading playback state: %w", err)
	}
	if state == mopidy.StatePlaying {
		return nil
	}
	if err := s.client.Play(ctx, nil); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	return nil
}

// insertPosition computes the at_position for an insert relative to
// the current track: offset 1 puts the new items directly after it,
// offset 0 puts them in its slot so they become "next". With nothing
// playing the insert goes to the end of the queue.
func (s *Speaker) insertPosition(ctx context.Context, offset int) (int, error) {
	idx, err := s.client.TracklistIndex(ctx)
	if err != nil {
		return 0, fmt.Errorf("locating current track: %w", err)
	}
	if idx != nil {
		return *idx + offset, nil
	}
	n, err := s.client.TracklistLength(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading queue length: %w", err)
	}
	return n, nil
}

// SelectSource enqueues the named source (a server playlist) in
// replace mode. The name must match a source reported by Sources.
func (s *Speaker) SelectSource(ctx context.Context, name string) error {
	uri, ok := s.sourceURI(name)
	if !ok {
		if err := s.refreshSources(ctx); err != nil {
			slog.Debug("cannot refresh sources", "err", err)
		}
		uri, ok = s.sourceURI(name)
	}
	if !ok {
		return fmt.Errorf("%w: %q", errors.ErrUnknownSource, name)
	}
	return s.PlayMedia(ctx, uri, MediaTypePlaylist, EnqueueReplace)
}
