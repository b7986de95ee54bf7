package speaker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/averbeke/mopctl/internal/mopidy"
)

const volumeStep = 5

// Speaker aggregates everything the engine knows about one Mopidy
// server: playback state, mixer state, playback options, the play
// queue and the event listener. All reads go through accessors; state
// is updated either by Refresh or by pushed events, never by command
// verbs (a command's effect always arrives as an event or shows up on
// the next poll).
type Speaker struct {
	client  *mopidy.Client
	library *Library
	queue   *Queue

	snapMu   sync.Mutex
	snapshot *Snapshot

	mu         sync.RWMutex
	available  bool
	version    string
	schemes    []string
	state      PlaybackState
	volume     int
	muted      bool
	shuffle    bool
	consume    bool
	repeat     RepeatMode
	sources    []string
	sourceURIs map[string]string

	faultMu sync.Mutex
	faults  map[string]*faultLatch

	listenerMu sync.Mutex
	listener   *mopidy.Listener
	dispatchWG sync.WaitGroup

	notifyMu sync.Mutex
	onChange []func()
}

// New builds a Speaker for the given server. No connection is made
// until Connect or the first Refresh.
func New(client *mopidy.Client) *Speaker {
	library := newLibrary(client)
	return &Speaker{
		client:  client,
		library: library,
		queue:   newQueue(client, library),
		state:   StateUnknown,
		faults:  make(map[string]*faultLatch),
	}
}

// Client exposes the underlying RPC client for callers that need raw
// access (e.g. the tail command's liveness check).
func (s *Speaker) Client() *mopidy.Client { return s.client }

// Library exposes browse/search/playlist lookups.
func (s *Speaker) Library() *Library { return s.library }

// Queue exposes the local queue mirror.
func (s *Speaker) Queue() *Queue { return s.queue }

// OnChange registers fn to run after every state mutation. Callbacks
// run on the goroutine that applied the mutation and must not block.
func (s *Speaker) OnChange(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Speaker) notify() {
	s.notifyMu.Lock()
	fns := s.onChange
	s.notifyMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Connect opens the event channel and starts dispatching pushed events.
// Refresh keeps working without it, at poll granularity.
func (s *Speaker) Connect(ctx context.Context) error {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	if s.listener != nil && s.listener.Alive() {
		return nil
	}

	l, err := s.client.Listen(ctx)
	if err != nil {
		return fmt.Errorf("connecting event channel: %w", err)
	}
	s.listener = l
	s.dispatchWG.Add(1)
	go s.dispatch(l)
	return nil
}

// Close tears down the event channel. The Speaker remains usable for
// polling and commands.
func (s *Speaker) Close() {
	s.listenerMu.Lock()
	l := s.listener
	s.listener = nil
	s.listenerMu.Unlock()
	if l != nil {
		l.Close()
	}
	s.dispatchWG.Wait()
}

// dispatch serializes event handling: every direct state write from
// the push path happens on this goroutine. Follow-on fetches that need
// a round trip run on their own goroutines and re-enter through the
// queue's locks.
func (s *Speaker) dispatch(l *mopidy.Listener) {
	defer s.dispatchWG.Done()
	for ev := range l.Events() {
		s.handleEvent(context.Background(), ev)
	}
	slog.Debug("event channel closed")
}

// reconnectIfDead re-establishes the event channel after the listener
// died or was never started. Called from Refresh once the server is
// known reachable again.
func (s *Speaker) reconnectIfDead(ctx context.Context) {
	s.listenerMu.Lock()
	dead := s.listener == nil || !s.listener.Alive()
	s.listenerMu.Unlock()
	if !dead {
		return
	}
	if err := s.Connect(ctx); err != nil {
		slog.Debug("cannot reconnect event channel", "err", err)
	}
}

// Refresh polls the full device state. It never returns an error:
// availability is itself part of the state, and callers observe it via
// Available. Each sub-fetch is fault-latched so a flapping server logs
// once per failure streak, not once per poll.
func (s *Speaker) Refresh(ctx context.Context) {
	version, err := s.client.Version(ctx)
	if err != nil {
		if s.fault("version", err) {
			slog.Warn("server not reachable", "host", s.client.Host(), "err", err)
		}
		s.markUnavailable()
		s.notify()
		return
	}
	s.clearFault("version")

	wasAvailable := s.setAvailable(version)
	if !wasAvailable {
		slog.Info("server reachable", "host", s.client.Host(), "version", version)
	}
	s.reconnectIfDead(ctx)

	if schemes, err := s.client.URISchemes(ctx); err != nil {
		s.logFault("uri schemes", err)
	} else {
		s.clearFault("uri schemes")
		s.mu.Lock()
		s.schemes = schemes
		s.mu.Unlock()
	}

	if state, err := s.client.PlaybackState(ctx); err != nil {
		s.logFault("playback state", err)
	} else {
		s.clearFault("playback state")
		s.setState(playbackStateFrom(state))
	}

	if v, err := s.client.Volume(ctx); err != nil {
		s.logFault("volume", err)
	} else {
		s.clearFault("volume")
		s.setVolume(v)
	}

	if m, err := s.client.Mute(ctx); err != nil {
		s.logFault("mute", err)
	} else {
		s.clearFault("mute")
		s.setMuted(m)
	}

	if err := s.refreshOptions(ctx); err != nil {
		s.logFault("options", err)
	} else {
		s.clearFault("options")
	}

	if err := s.queue.UpdateTracks(ctx); err != nil {
		s.logFault("tracklist", err)
	} else {
		s.clearFault("tracklist")
	}

	if err := s.queue.UpdateCurrentTrack(ctx); err != nil {
		s.logFault("current track", err)
	} else {
		s.clearFault("current track")
	}

	if err := s.refreshSources(ctx); err != nil {
		s.logFault("sources", err)
	} else {
		s.clearFault("sources")
	}

	s.notify()
}

// refreshOptions pulls the four playback option flags and folds repeat
// and single into the tri-state repeat mode.
func (s *Speaker) refreshOptions(ctx context.Context) error {
	shuffle, err := s.client.Random(ctx)
	if err != nil {
		return err
	}
	consume, err := s.client.Consume(ctx)
	if err != nil {
		return err
	}
	repeat, err := s.client.Repeat(ctx)
	if err != nil {
		return err
	}
	single, err := s.client.Single(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.shuffle = shuffle
	s.consume = consume
	s.repeat = repeatModeFrom(repeat, single)
	s.mu.Unlock()
	return nil
}

// refreshSources rebuilds the selectable source list from the server's
// playlists.
func (s *Speaker) refreshSources(ctx context.Context) error {
	refs, err := s.library.Playlists(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(refs))
	uris := make(map[string]string, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
		uris[r.Name] = r.URI
	}

	s.mu.Lock()
	s.sources = names
	s.sourceURIs = uris
	s.mu.Unlock()
	return nil
}

// markUnavailable empties the aggregated state. Nothing read from a
// dead server stays authoritative, so every scalar field goes back to
// its zero value along with the queue mirror.
func (s *Speaker) markUnavailable() {
	s.mu.Lock()
	was := s.available
	s.available = false
	s.version = ""
	s.schemes = nil
	s.state = StateUnknown
	s.volume = 0
	s.muted = false
	s.shuffle = false
	s.consume = false
	s.repeat = RepeatOff
	s.sources = nil
	s.sourceURIs = nil
	s.mu.Unlock()
	if was {
		s.queue.reset()
	}
}

func (s *Speaker) setAvailable(version string) (was bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	was = s.available
	s.available = true
	s.version = version
	return was
}

func (s *Speaker) setState(state PlaybackState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Speaker) setVolume(v int) {
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

func (s *Speaker) setMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	s.mu.Unlock()
}

// Available reports whether the last probe reached the server.
func (s *Speaker) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// State returns the aggregated playback state.
func (s *Speaker) State() PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Volume returns the last known mixer volume.
func (s *Speaker) Volume() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Muted returns the last known mute flag.
func (s *Speaker) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

// SupportedSchemes returns the URI schemes the server's backends
// handle, e.g. "local", "m3u", "file".
func (s *Speaker) SupportedSchemes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.schemes))
	copy(out, s.schemes)
	return out
}

// Sources returns the selectable source names, in server order.
func (s *Speaker) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

func (s *Speaker) sourceURI(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uri, ok := s.sourceURIs[name]
	return uri, ok
}

// Play starts or resumes playback.
func (s *Speaker) Play(ctx context.Context) error {
	return s.client.Resume(ctx)
}

// PlayEntry starts playback of a specific queue entry.
func (s *Speaker) PlayEntry(ctx context.Context, tlid int) error {
	return s.client.Play(ctx, &tlid)
}

// Pause pauses playback.
func (s *Speaker) Pause(ctx context.Context) error {
	return s.client.Pause(ctx)
}

// Stop stops playback.
func (s *Speaker) Stop(ctx context.Context) error {
	return s.client.Stop(ctx)
}

// NextTrack skips forward.
func (s *Speaker) NextTrack(ctx context.Context) error {
	return s.client.Next(ctx)
}

// PreviousTrack skips backward.
func (s *Speaker) PreviousTrack(ctx context.Context) error {
	return s.client.Previous(ctx)
}

// Seek moves playback to position seconds into the current track.
func (s *Speaker) Seek(ctx context.Context, position int) error {
	ok, err := s.client.Seek(ctx, int64(position)*1000)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("seek to %ds rejected", position)
	}
	return nil
}

// SetVolume sets the mixer volume, clamped to 0-100.
func (s *Speaker) SetVolume(ctx context.Context, volume int) error {
	return s.client.SetVolume(ctx, clampVolume(volume))
}

// VolumeUp raises the volume by one step.
func (s *Speaker) VolumeUp(ctx context.Context) error {
	return s.SetVolume(ctx, s.Volume()+volumeStep)
}

// VolumeDown lowers the volume by one step.
func (s *Speaker) VolumeDown(ctx context.Context) error {
	return s.SetVolume(ctx, s.Volume()-volumeStep)
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// SetMute sets the mixer mute flag.
func (s *Speaker) SetMute(ctx context.Context, mute bool) error {
	return s.client.SetMute(ctx, mute)
}

// SetShuffle sets the shuffle flag.
func (s *Speaker) SetShuffle(ctx context.Context, shuffle bool) error {
	return s.client.SetRandom(ctx, shuffle)
}

// SetConsumeMode sets the consume flag.
func (s *Speaker) SetConsumeMode(ctx context.Context, consume bool) error {
	return s.client.SetConsume(ctx, consume)
}

// SetRepeatMode writes both device flags for the tri-state mode. The
// two writes are not atomic; the options_changed events they trigger
// re-read both flags, so the final state converges.
func (s *Speaker) SetRepeatMode(ctx context.Context, mode RepeatMode) error {
	repeat, single := mode.flags()
	if err := s.client.SetRepeat(ctx, repeat); err != nil {
		return err
	}
	return s.client.SetSingle(ctx, single)
}

// ClearQueue empties the device's tracklist.
func (s *Speaker) ClearQueue(ctx context.Context) error {
	return s.client.TracklistClear(ctx)
}

// TrackInfo describes the now-playing entry for presentation.
type TrackInfo struct {
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	URI         string `json:"uri"`
	Playlist    string `json:"playlist,omitempty"`
	ArtworkURL  string `json:"artwork_url,omitempty"`
	IsStream    bool   `json:"is_stream,omitempty"`
}

// Status is a point-in-time snapshot of the aggregated state.
type Status struct {
	Available        bool     `json:"available"`
	Version          string   `json:"version,omitempty"`
	SupportedSchemes []string `json:"supported_schemes,omitempty"`

	State      PlaybackState `json:"-"`
	StateName  string        `json:"state"`
	Volume     int           `json:"volume"`
	Muted      bool          `json:"muted"`
	Shuffle    bool          `json:"shuffle"`
	Consume    bool          `json:"consume"`
	RepeatMode string        `json:"repeat"`
	Track      *TrackInfo    `json:"track,omitempty"`
	Position   *int          `json:"position,omitempty"`
	QueueIndex *int          `json:"queue_index,omitempty"`
	QueueSize  int           `json:"queue_size"`
}

// Status assembles the current aggregated state.
func (s *Speaker) Status() Status {
	s.mu.RLock()
	st := Status{
		Available:        s.available,
		Version:          s.version,
		SupportedSchemes: s.schemes,
		State:            s.state,
		StateName:        s.state.String(),
		Volume:           s.volume,
		Muted:            s.muted,
		Shuffle:          s.shuffle,
		Consume:          s.consume,
		RepeatMode:       s.repeat.String(),
	}
	s.mu.RUnlock()

	st.QueueSize = s.queue.Len()
	st.QueueIndex = s.queue.Index()
	if pos, _ := s.queue.Position(); pos != nil {
		st.Position = pos
	}

	if e, ok := s.queue.Current(); ok {
		st.Track = &TrackInfo{
			Title:       e.DisplayTitle(),
			Artist:      e.Artist,
			Album:       e.AlbumName,
			AlbumArtist: e.AlbumArtist,
			TrackNumber: e.TrackNumber,
			Duration:    e.Duration,
			URI:         e.URI,
			Playlist:    e.PlaylistName,
			ArtworkURL:  e.ArtworkURL,
			IsStream:    e.IsStream,
		}
	}
	return st
}

// RepeatModeValue returns the aggregated repeat mode.
func (s *Speaker) RepeatModeValue() RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repeat
}

// Shuffle returns the last known shuffle flag.
func (s *Speaker) Shuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuffle
}

// ConsumeMode returns the last known consume flag.
func (s *Speaker) ConsumeMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consume
}

// faultLatch tracks a failure streak for one sub-fetch so only the
// first failure of a streak is logged at warning level.
type faultLatch struct {
	failing bool
}

// fault records a failure and reports whether it opens a new streak.
func (s *Speaker) fault(name string, err error) (first bool) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	l, ok := s.faults[name]
	if !ok {
		l = &faultLatch{}
		s.faults[name] = l
	}
	first = !l.failing
	l.failing = true
	return first
}

func (s *Speaker) clearFault(name string) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if l, ok := s.faults[name]; ok {
		l.failing = false
	}
}

// logFault records a degraded sub-fetch. The field keeps its previous
// value, but a contact that was not fully successful cannot be trusted,
// so availability drops with it.
func (s *Speaker) logFault(name string, err error) {
	if s.fault(name, err) {
		slog.Warn("cannot refresh "+name, "err", err)
	} else {
		slog.Debug("cannot refresh "+name, "err", err)
	}
	s.mu.Lock()
	s.available = false
	s.mu.Unlock()
}
