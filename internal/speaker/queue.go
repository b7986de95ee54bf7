package speaker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/averbeke/mopctl/internal/mopidy"
)

// Entry is one item in the device's play queue, keyed by the tlid the
// server assigned on insertion. A tlid is never reused for a different
// URI within one queue generation; clearing or replacing the queue
// invalidates every tlid.
type Entry struct {
	TLID       int
	URI        string
	Scheme     string
	OrderIndex int

	Title       string
	Artist      string
	AlbumName   string
	AlbumArtist string
	TrackNumber int
	Duration    int // seconds, 0 when unknown

	PlaylistName string
	PlaylistURI  string

	IsStream    bool
	StreamTitle string
	ArtworkURL  string
}

// DisplayTitle returns the title to present: a stream's now-playing
// text when present, the track name otherwise.
func (e *Entry) DisplayTitle() string {
	if e.IsStream && e.StreamTitle != "" {
		return e.StreamTitle
	}
	return e.Title
}

// Queue mirrors the device-side tracklist. Two refresh paths write it
// concurrently (poll and push events); every mutation is field-scoped
// under the queue lock, and full reconciliation is additionally
// serialized against itself so only one insert/purge pass is in flight
// per device.
type Queue struct {
	client  *mopidy.Client
	library *Library
	baseURL string
	now     func() time.Time

	mu          sync.RWMutex
	entries     map[int]*Entry
	order       []int
	generation  uint64
	currentTLID int
	position    *int // seconds
	positionAt  time.Time

	playlistName    string
	playlistURI     string
	playlistMembers map[string]bool

	reconcileMu sync.Mutex
}

func newQueue(client *mopidy.Client, library *Library) *Queue {
	return &Queue{
		client:      client,
		library:     library,
		baseURL:     client.BaseURL(),
		now:         time.Now,
		entries:     make(map[int]*Entry),
		currentTLID: -1,
	}
}

// parseTrackInfo maps a raw track record onto entry fields. Absent
// optional attributes leave the corresponding field unset.
func parseTrackInfo(t mopidy.Track, tlid int) *Entry {
	e := &Entry{
		TLID:        tlid,
		URI:         t.URI,
		Scheme:      uriScheme(t.URI),
		Title:       t.Name,
		TrackNumber: t.TrackNo,
	}
	if t.Length > 0 {
		e.Duration = int(t.Length / 1000)
	}
	if len(t.Artists) > 0 {
		e.Artist = joinArtists(t.Artists)
		e.AlbumArtist = joinArtists(t.Artists)
	}
	if t.Album != nil {
		e.AlbumName = t.Album.Name
		if len(t.Album.Artists) > 0 {
			e.AlbumArtist = joinArtists(t.Album.Artists)
		}
	}
	return e
}

func joinArtists(artists []mopidy.Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func uriScheme(uri string) string {
	scheme, _, _ := strings.Cut(uri, ":")
	return scheme
}

// UpdateTracks pulls the full tracklist and reconciles the local arena
// by tlid: remote entries are created or refreshed, local entries the
// server no longer reports are purged. This is the only place tlids
// are garbage-collected.
func (q *Queue) UpdateTracks(ctx context.Context) error {
	q.reconcileMu.Lock()
	defer q.reconcileMu.Unlock()

	remote, err := q.client.TracklistTracks(ctx)
	if err != nil {
		return err
	}
	q.apply(remote)
	return nil
}

func (q *Queue) apply(remote []mopidy.TLTrack) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generation++

	seen := make(map[int]bool, len(remote))
	order := make([]int, 0, len(remote))
	for i, tl := range remote {
		seen[tl.TLID] = true
		order = append(order, tl.TLID)

		if e, ok := q.entries[tl.TLID]; ok {
			// Merge: stream-title override and resolved artwork are
			// event-owned state and must survive reconciliation.
			fresh := parseTrackInfo(tl.Track, tl.TLID)
			fresh.OrderIndex = i
			fresh.IsStream = e.IsStream
			fresh.StreamTitle = e.StreamTitle
			fresh.ArtworkURL = e.ArtworkURL
			fresh.PlaylistName = e.PlaylistName
			fresh.PlaylistURI = e.PlaylistURI
			*e = *fresh
			continue
		}

		e := parseTrackInfo(tl.Track, tl.TLID)
		e.OrderIndex = i
		q.attachPlaylistLocked(e)
		q.entries[tl.TLID] = e
	}

	for tlid := range q.entries {
		if !seen[tlid] {
			delete(q.entries, tlid)
		}
	}
	q.order = order

	if q.currentTLID != -1 && !seen[q.currentTLID] {
		q.currentTLID = -1
		q.position = nil
	}
}

// UpdateCurrentTrack pulls the device's notion of "now playing" and
// folds it into the arena, then resolves artwork for it. The position
// and stream-title fetches are tolerated individually: a failure there
// leaves the respective field untouched.
func (q *Queue) UpdateCurrentTrack(ctx context.Context) error {
	tl, err := q.client.CurrentTLTrack(ctx)
	if err != nil {
		return err
	}
	if tl == nil {
		q.ClearCurrent()
		return nil
	}

	streamTitle, err := q.client.StreamTitle(ctx)
	if err != nil {
		slog.Debug("cannot get stream title", "err", err)
		streamTitle = ""
	}

	var position *int
	if ms, err := q.client.TimePosition(ctx); err != nil {
		slog.Debug("cannot get time position", "err", err)
	} else {
		p := int(ms / 1000)
		position = &p
	}

	gen, uri, isStream := q.foldCurrent(*tl, streamTitle, position)
	q.resolveArtwork(ctx, gen, tl.TLID, uri, isStream)
	return nil
}

func (q *Queue) foldCurrent(tl mopidy.TLTrack, streamTitle string, position *int) (gen uint64, uri string, isStream bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.upsertLocked(tl)
	if streamTitle != "" {
		e.IsStream = true
		e.StreamTitle = streamTitle
	}
	q.currentTLID = tl.TLID
	if position != nil {
		q.position = position
		q.positionAt = q.now()
	}
	q.dropPlaylistIfLeftLocked(e.URI)
	return q.generation, e.URI, e.IsStream
}

// upsertLocked refreshes or creates the entry for tl, preserving
// event-owned fields. An entry unknown to the arena (event raced ahead
// of reconciliation) is appended provisionally; the next UpdateTracks
// assigns its real order index.
func (q *Queue) upsertLocked(tl mopidy.TLTrack) *Entry {
	if e, ok := q.entries[tl.TLID]; ok {
		fresh := parseTrackInfo(tl.Track, tl.TLID)
		fresh.OrderIndex = e.OrderIndex
		fresh.IsStream = e.IsStream
		fresh.StreamTitle = e.StreamTitle
		fresh.ArtworkURL = e.ArtworkURL
		fresh.PlaylistName = e.PlaylistName
		fresh.PlaylistURI = e.PlaylistURI
		*e = *fresh
		return e
	}

	e := parseTrackInfo(tl.Track, tl.TLID)
	e.OrderIndex = len(q.order)
	q.attachPlaylistLocked(e)
	q.entries[tl.TLID] = e
	q.order = append(q.order, tl.TLID)
	return e
}

// setCurrentFromEvent applies an event payload without a round trip.
// positionMs may be nil when the event carries no position.
func (q *Queue) setCurrentFromEvent(tl mopidy.TLTrack, positionMs *int64) (gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.upsertLocked(tl)
	q.currentTLID = tl.TLID
	if positionMs != nil {
		p := int(*positionMs / 1000)
		q.position = &p
		q.positionAt = q.now()
	}
	q.dropPlaylistIfLeftLocked(e.URI)
	return q.generation
}

// SetStreamTitle applies a stream-title override to the current entry.
func (q *Queue) SetStreamTitle(title string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[q.currentTLID]
	if !ok {
		return
	}
	e.IsStream = true
	e.StreamTitle = title
}

// SetPositionMs records a playback position reported by the device.
func (q *Queue) SetPositionMs(ms int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p := int(ms / 1000)
	q.position = &p
	q.positionAt = q.now()
}

// ClearCurrent drops the current-track pointer and position, e.g. when
// playback stops.
func (q *Queue) ClearCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.currentTLID = -1
	q.position = nil
}

// reset purges the arena, e.g. when the device became unreachable.
func (q *Queue) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.generation++
	q.entries = make(map[int]*Entry)
	q.order = nil
	q.currentTLID = -1
	q.position = nil
}

// setPlaylist records which URIs belong to the playlist that was just
// enqueued, so playlist metadata attaches to the matching entries on
// the next reconciliation.
func (q *Queue) setPlaylist(name, uri string, memberURIs []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playlistName = name
	q.playlistURI = uri
	q.playlistMembers = make(map[string]bool, len(memberURIs))
	for _, u := range memberURIs {
		q.playlistMembers[u] = true
	}
	for _, e := range q.entries {
		q.attachPlaylistLocked(e)
	}
}

func (q *Queue) clearPlaylist() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playlistName = ""
	q.playlistURI = ""
	q.playlistMembers = nil
}

func (q *Queue) attachPlaylistLocked(e *Entry) {
	if q.playlistMembers != nil && q.playlistMembers[e.URI] {
		e.PlaylistName = q.playlistName
		e.PlaylistURI = q.playlistURI
	}
}

// dropPlaylistIfLeftLocked forgets playlist membership once playback
// moved to a track outside the enqueued playlist.
func (q *Queue) dropPlaylistIfLeftLocked(currentURI string) {
	if q.playlistMembers != nil && !q.playlistMembers[currentURI] {
		q.playlistName = ""
		q.playlistURI = ""
		q.playlistMembers = nil
	}
}

// Generation returns the reconciliation counter. Follow-on fetches
// capture it before a slow call and discard their result when it moved.
func (q *Queue) Generation() uint64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.generation
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.order)
}

// URIList returns the ordered URIs across the queue. Snapshots key on
// URIs, never tlids, because tlids do not survive a clear.
func (q *Queue) URIList() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	uris := make([]string, 0, len(q.order))
	for _, tlid := range q.order {
		if e, ok := q.entries[tlid]; ok {
			uris = append(uris, e.URI)
		}
	}
	return uris
}

// Entries returns ordered copies of all queue entries.
func (q *Queue) Entries() []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Entry, 0, len(q.order))
	for _, tlid := range q.order {
		if e, ok := q.entries[tlid]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// Current returns a copy of the now-playing entry, if any.
func (q *Queue) Current() (Entry, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, ok := q.entries[q.currentTLID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Index returns the order index of the current entry, or nil.
func (q *Queue) Index() *int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for i, tlid := range q.order {
		if tlid == q.currentTLID {
			idx := i
			return &idx
		}
	}
	return nil
}

// Position returns the last known playback position in seconds and
// when it was recorded.
func (q *Queue) Position() (*int, time.Time) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.position == nil {
		return nil, time.Time{}
	}
	p := *q.position
	return &p, q.positionAt
}

// resolveArtwork looks up artwork for uri and records its absolutized
// URL on the entry, unless the queue was reconciled in the meantime
// (the result would then describe a superseded generation). Streams
// legitimately have no artwork; anything else without an image gets a
// warning.
func (q *Queue) resolveArtwork(ctx context.Context, gen uint64, tlid int, uri string, isStream bool) {
	if uri == "" {
		return
	}

	images, err := q.library.Images(ctx, []string{uri})
	if err != nil {
		slog.Warn("cannot get image for media", "uri", uri, "err", err)
		return
	}

	refs := images[uri]
	if len(refs) == 0 || refs[0].URI == "" {
		if !isStream {
			slog.Warn("no artwork found", "uri", uri)
		}
		return
	}

	resolved := expandImageURL(q.baseURL, refs[0].URI, q.now())

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.generation != gen {
		return
	}
	if e, ok := q.entries[tlid]; ok {
		e.ArtworkURL = resolved
	}
}
