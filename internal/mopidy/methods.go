package mopidy

import "context"

// Version returns the Mopidy core version. Used as the liveness probe.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	err := c.Call(ctx, "core.get_version", nil, &v)
	return v, err
}

// URISchemes returns the content schemes the server's backends support.
func (c *Client) URISchemes(ctx context.Context) ([]string, error) {
	var schemes []string
	err := c.Call(ctx, "core.get_uri_schemes", nil, &schemes)
	return schemes, err
}

// PlaybackState returns one of StatePlaying, StatePaused or StateStopped.
func (c *Client) PlaybackState(ctx context.Context) (string, error) {
	var state string
	err := c.Call(ctx, "core.playback.get_state", nil, &state)
	return state, err
}

// CurrentTLTrack returns the tracklist entry being played, or nil when
// playback is stopped.
func (c *Client) CurrentTLTrack(ctx context.Context) (*TLTrack, error) {
	var tl *TLTrack
	err := c.Call(ctx, "core.playback.get_current_tl_track", nil, &tl)
	return tl, err
}

// StreamTitle returns the stream's now-playing text, or "" when the
// current item is not a stream.
func (c *Client) StreamTitle(ctx context.Context) (string, error) {
	var title *string
	if err := c.Call(ctx, "core.playback.get_stream_title", nil, &title); err != nil {
		return "", err
	}
	if title == nil {
		return "", nil
	}
	return *title, nil
}

// TimePosition returns the playback position in milliseconds.
func (c *Client) TimePosition(ctx context.Context) (int64, error) {
	var pos int64
	err := c.Call(ctx, "core.playback.get_time_position", nil, &pos)
	return pos, err
}

// Play starts playback. With a non-nil tlid it plays that specific
// tracklist entry, otherwise it resumes from the current position.
func (c *Client) Play(ctx context.Context, tlid *int) error {
	params := map[string]any{}
	if tlid != nil {
		params["tlid"] = *tlid
	}
	return c.Call(ctx, "core.playback.play", params, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.Call(ctx, "core.playback.pause", nil, nil)
}

// Resume resumes paused playback.
func (c *Client) Resume(ctx context.Context) error {
	return c.Call(ctx, "core.playback.resume", nil, nil)
}

// Stop stops playback.
func (c *Client) Stop(ctx context.Context) error {
	return c.Call(ctx, "core.playback.stop", nil, nil)
}

// Next skips to the next tracklist entry.
func (c *Client) Next(ctx context.Context) error {
	return c.Call(ctx, "core.playback.next", nil, nil)
}

// Previous skips back to the previous tracklist entry.
func (c *Client) Previous(ctx context.Context) error {
	return c.Call(ctx, "core.playback.previous", nil, nil)
}

// Seek moves playback to the given position in milliseconds.
func (c *Client) Seek(ctx context.Context, positionMs int64) (bool, error) {
	var ok bool
	err := c.Call(ctx, "core.playback.seek", map[string]any{"time_position": positionMs}, &ok)
	return ok, err
}

// Volume returns the mixer volume (0-100).
func (c *Client) Volume(ctx context.Context) (int, error) {
	var v int
	err := c.Call(ctx, "core.mixer.get_volume", nil, &v)
	return v, err
}

// SetVolume sets the mixer volume (0-100).
func (c *Client) SetVolume(ctx context.Context, volume int) error {
	return c.Call(ctx, "core.mixer.set_volume", map[string]any{"volume": volume}, nil)
}

// Mute returns the mixer mute flag.
func (c *Client) Mute(ctx context.Context) (bool, error) {
	var m bool
	err := c.Call(ctx, "core.mixer.get_mute", nil, &m)
	return m, err
}

// SetMute sets the mixer mute flag.
func (c *Client) SetMute(ctx context.Context, mute bool) error {
	return c.Call(ctx, "core.mixer.set_mute", map[string]any{"mute": mute}, nil)
}

// TracklistTracks returns the full ordered tracklist.
func (c *Client) TracklistTracks(ctx context.Context) ([]TLTrack, error) {
	var tracks []TLTrack
	err := c.Call(ctx, "core.tracklist.get_tl_tracks", nil, &tracks)
	return tracks, err
}

// TracklistAdd appends the given URIs, or inserts them at atPosition
// when non-nil. The server assigns a fresh tlid to every insertion.
func (c *Client) TracklistAdd(ctx context.Context, uris []string, atPosition *int) ([]TLTrack, error) {
	params := map[string]any{"uris": uris}
	if atPosition != nil {
		params["at_position"] = *atPosition
	}
	var added []TLTrack
	err := c.Call(ctx, "core.tracklist.add", params, &added)
	return added, err
}

// TracklistClear empties the tracklist, invalidating all tlids.
func (c *Client) TracklistClear(ctx context.Context) error {
	return c.Call(ctx, "core.tracklist.clear", nil, nil)
}

// TracklistIndex returns the index of the current track, or nil when
// there is no current track.
func (c *Client) TracklistIndex(ctx context.Context) (*int, error) {
	var idx *int
	err := c.Call(ctx, "core.tracklist.index", nil, &idx)
	return idx, err
}

// TracklistLength returns the number of tracklist entries.
func (c *Client) TracklistLength(ctx context.Context) (int, error) {
	var n int
	err := c.Call(ctx, "core.tracklist.get_length", nil, &n)
	return n, err
}

// Consume returns the consume flag.
func (c *Client) Consume(ctx context.Context) (bool, error) {
	var v bool
	err := c.Call(ctx, "core.tracklist.get_consume", nil, &v)
	return v, err
}

// SetConsume sets the consume flag.
func (c *Client) SetConsume(ctx context.Context, value bool) error {
	return c.Call(ctx, "core.tracklist.set_consume", map[string]any{"value": value}, nil)
}

// Random returns the shuffle flag.
func (c *Client) Random(ctx context.Context) (bool, error) {
	var v bool
	err := c.Call(ctx, "core.tracklist.get_random", nil, &v)
	return v, err
}

// SetRandom sets the shuffle flag.
func (c *Client) SetRandom(ctx context.Context, value bool) error {
	return c.Call(ctx, "core.tracklist.set_random", map[string]any{"value": value}, nil)
}

// Repeat returns the repeat flag.
func (c *Client) Repeat(ctx context.Context) (bool, error) {
	var v bool
	err := c.Call(ctx, "core.tracklist.get_repeat", nil, &v)
	return v, err
}

// SetRepeat sets the repeat flag.
func (c *Client) SetRepeat(ctx context.Context, value bool) error {
	return c.Call(ctx, "core.tracklist.set_repeat", map[string]any{"value": value}, nil)
}

// Single returns the single flag.
func (c *Client) Single(ctx context.Context) (bool, error) {
	var v bool
	err := c.Call(ctx, "core.tracklist.get_single", nil, &v)
	return v, err
}

// SetSingle sets the single flag.
func (c *Client) SetSingle(ctx context.Context, value bool) error {
	return c.Call(ctx, "core.tracklist.set_single", map[string]any{"value": value}, nil)
}

// LibraryBrowse lists the children of uri; a nil uri lists the roots.
func (c *Client) LibraryBrowse(ctx context.Context, uri *string) ([]Ref, error) {
	params := map[string]any{"uri": nil}
	if uri != nil {
		params["uri"] = *uri
	}
	var refs []Ref
	err := c.Call(ctx, "core.library.browse", params, &refs)
	return refs, err
}

// LibrarySearch queries the library. Query maps field names to search
// terms; uris, when non-nil, restricts the search to those roots.
func (c *Client) LibrarySearch(ctx context.Context, query map[string][]string, uris []string, exact bool) ([]SearchResult, error) {
	params := map[string]any{"query": query, "exact": exact}
	if uris != nil {
		params["uris"] = uris
	}
	var results []SearchResult
	err := c.Call(ctx, "core.library.search", params, &results)
	return results, err
}

// LibraryImages returns artwork references keyed by URI.
func (c *Client) LibraryImages(ctx context.Context, uris []string) (map[string][]Image, error) {
	var images map[string][]Image
	err := c.Call(ctx, "core.library.get_images", map[string]any{"uris": uris}, &images)
	return images, err
}

// PlaylistsList returns refs to all playlists known to the server.
func (c *Client) PlaylistsList(ctx context.Context) ([]Ref, error) {
	var refs []Ref
	err := c.Call(ctx, "core.playlists.as_list", nil, &refs)
	return refs, err
}

// PlaylistLookup fetches a playlist with its tracks, or nil when the
// URI does not resolve.
func (c *Client) PlaylistLookup(ctx context.Context, uri string) (*Playlist, error) {
	var pl *Playlist
	err := c.Call(ctx, "core.playlists.lookup", map[string]any{"uri": uri}, &pl)
	return pl, err
}
