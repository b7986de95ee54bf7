package speaker

import (
	"context"
	"fmt"
	"strings"

	"github.com/averbeke/mopctl/internal/mopidy"
)

// Library wraps the server's library, playlist and image endpoints
// behind the handful of lookups the rest of the engine needs.
type Library struct {
	client *mopidy.Client
}

func newLibrary(client *mopidy.Client) *Library {
	return &Library{client: client}
}

// Browse lists the children of uri, or the backend roots when uri is
// empty.
func (l *Library) Browse(ctx context.Context, uri string) ([]mopidy.Ref, error) {
	var p *string
	if uri != "" {
		p = &uri
	}
	refs, err := l.client.LibraryBrowse(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("browsing %q: %w", uri, err)
	}
	return refs, nil
}

// Images returns artwork references keyed by URI.
func (l *Library) Images(ctx context.Context, uris []string) (map[string][]mopidy.Image, error) {
	return l.client.LibraryImages(ctx, uris)
}

// Playlists returns refs to every playlist the server knows about.
func (l *Library) Playlists(ctx context.Context) ([]mopidy.Ref, error) {
	return l.client.PlaylistsList(ctx)
}

// Playlist fetches a playlist with its tracks, or nil when the URI does
// not resolve to one.
func (l *Library) Playlist(ctx context.Context, uri string) (*mopidy.Playlist, error) {
	return l.client.PlaylistLookup(ctx, uri)
}

// TrackURIs resolves a container URI to the ordered track URIs inside
// it. M3U playlists are expanded through the playlists endpoint, which
// preserves their on-disk order; everything else is browsed.
func (l *Library) TrackURIs(ctx context.Context, uri string) ([]string, error) {
	if strings.HasPrefix(uri, "m3u:") {
		pl, err := l.client.PlaylistLookup(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("looking up playlist %q: %w", uri, err)
		}
		if pl == nil {
			return nil, nil
		}
		uris := make([]string, 0, len(pl.Tracks))
		for _, t := range pl.Tracks {
			uris = append(uris, t.URI)
		}
		return uris, nil
	}

	refs, err := l.Browse(ctx, uri)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Type == mopidy.RefTrack || r.Type == "" {
			uris = append(uris, r.URI)
		}
	}
	return uris, nil
}

// SearchTracks queries the library for tracks. A non-empty scheme
// restricts the search to backends whose URIs use it.
func (l *Library) SearchTracks(ctx context.Context, query map[string][]string, scheme string, exact bool) ([]mopidy.Track, error) {
	var uris []string
	if scheme != "" {
		uris = []string{scheme + ":"}
	}
	results, err := l.client.LibrarySearch(ctx, query, uris, exact)
	if err != nil {
		return nil, fmt.Errorf("searching library: %w", err)
	}
	var tracks []mopidy.Track
	for _, r := range results {
		tracks = append(tracks, r.Tracks...)
	}
	return tracks, nil
}
