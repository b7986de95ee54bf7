package speaker

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/averbeke/mopctl/internal/mopidy"
)

// fakeMopidy is an in-memory JSON-RPC server backing speaker tests. It
// models just enough tracklist semantics: tlids are assigned
// monotonically and never reused, and clear invalidates the lot.
type fakeMopidy struct {
	mu       sync.Mutex
	tracks   []mopidy.TLTrack
	nextTLID int
	current  *int // index into tracks
	state    string
	position int // ms
	volume   int
	muted    bool
	shuffle  bool
	consume  bool
	repeat   bool
	single   bool

	playlists map[string]*mopidy.Playlist
	images    map[string][]mopidy.Image

	// failMethods answer with a JSON-RPC error instead of dispatching.
	failMethods map[string]bool
	// stuckPlay models a backend that accepts play but never leaves
	// the stopped state.
	stuckPlay bool

	calls map[string]int
	srv   *httptest.Server
}

func newFakeMopidy(t *testing.T) *fakeMopidy {
	f := &fakeMopidy{
		nextTLID:    1,
		state:       mopidy.StateStopped,
		playlists:   make(map[string]*mopidy.Playlist),
		images:      make(map[string][]mopidy.Image),
		failMethods: make(map[string]bool),
		calls:       make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeMopidy) client(t *testing.T) *mopidy.Client {
	u := f.srv.Listener.Addr().String()
	host, portStr, err := net.SplitHostPort(u)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return mopidy.New(host, port)
}

func (f *fakeMopidy) speaker(t *testing.T) *Speaker {
	return New(f.client(t))
}

func (f *fakeMopidy) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeMopidy) addTrack(uri, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	tlid := f.nextTLID
	f.nextTLID++
	f.tracks = append(f.tracks, mopidy.TLTrack{
		TLID:  tlid,
		Track: mopidy.Track{URI: uri, Name: name},
	})
	return tlid
}

func (f *fakeMopidy) uris() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.tracks))
	for _, tl := range f.tracks {
		out = append(out, tl.Track.URI)
	}
	return out
}

func (f *fakeMopidy) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64          `json:"id"`
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls[req.Method]++
	fail := f.failMethods[req.Method]
	var result any
	if !fail {
		result = f.dispatch(req.Method, req.Params)
	}
	f.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if fail {
		resp["error"] = map[string]any{"code": -32000, "message": "injected failure"}
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeMopidy) dispatch(method string, params map[string]any) any {
	switch method {
	case "core.get_version":
		return "3.4.2"
	case "core.get_uri_schemes":
		return []string{"local", "m3u", "http"}
	case "core.playback.get_state":
		return f.state
	case "core.playback.get_current_tl_track":
		if f.current == nil || *f.current >= len(f.tracks) {
			return nil
		}
		return f.tracks[*f.current]
	case "core.playback.get_stream_title":
		return nil
	case "core.playback.get_time_position":
		return f.position
	case "core.playback.play":
		if tlid, ok := params["tlid"]; ok {
			want := int(tlid.(float64))
			for i, tl := range f.tracks {
				if tl.TLID == want {
					idx := i
					f.current = &idx
				}
			}
		}
		if !f.stuckPlay {
			f.state = mopidy.StatePlaying
		}
		return nil
	case "core.playback.pause":
		f.state = mopidy.StatePaused
		return nil
	case "core.playback.stop":
		f.state = mopidy.StateStopped
		f.current = nil
		return nil
	case "core.playback.seek":
		return true
	case "core.mixer.get_volume":
		return f.volume
	case "core.mixer.set_volume":
		f.volume = int(params["volume"].(float64))
		return nil
	case "core.mixer.get_mute":
		return f.muted
	case "core.mixer.set_mute":
		f.muted = params["mute"].(bool)
		return nil
	case "core.tracklist.get_tl_tracks":
		return f.tracks
	case "core.tracklist.add":
		return f.add(params)
	case "core.tracklist.clear":
		f.tracks = nil
		f.current = nil
		return nil
	case "core.tracklist.index":
		if f.current == nil {
			return nil
		}
		return *f.current
	case "core.tracklist.get_length":
		return len(f.tracks)
	case "core.tracklist.get_consume":
		return f.consume
	case "core.tracklist.get_random":
		return f.shuffle
	case "core.tracklist.get_repeat":
		return f.repeat
	case "core.tracklist.get_single":
		return f.single
	case "core.tracklist.set_consume":
		f.consume = params["value"].(bool)
		return nil
	case "core.tracklist.set_random":
		f.shuffle = params["value"].(bool)
		return nil
	case "core.tracklist.set_repeat":
		f.repeat = params["value"].(bool)
		return nil
	case "core.tracklist.set_single":
		f.single = params["value"].(bool)
		return nil
	case "core.library.get_images":
		out := make(map[string][]mopidy.Image)
		for _, u := range params["uris"].([]any) {
			uri := u.(string)
			out[uri] = f.images[uri]
		}
		return out
	case "core.library.browse":
		return []mopidy.Ref{}
	case "core.playlists.as_list":
		refs := make([]mopidy.Ref, 0, len(f.playlists))
		for _, pl := range f.playlists {
			refs = append(refs, mopidy.Ref{URI: pl.URI, Name: pl.Name, Type: mopidy.RefPlaylist})
		}
		return refs
	case "core.playlists.lookup":
		pl, ok := f.playlists[params["uri"].(string)]
		if !ok {
			return nil
		}
		return pl
	default:
		return nil
	}
}

func (f *fakeMopidy) add(params map[string]any) []mopidy.TLTrack {
	rawURIs := params["uris"].([]any)
	added := make([]mopidy.TLTrack, 0, len(rawURIs))
	for _, u := range rawURIs {
		tl := mopidy.TLTrack{
			TLID:  f.nextTLID,
			Track: mopidy.Track{URI: u.(string), Name: u.(string)},
		}
		f.nextTLID++
		added = append(added, tl)
	}

	pos := len(f.tracks)
	if p, ok := params["at_position"]; ok {
		pos = int(p.(float64))
		if pos > len(f.tracks) {
			pos = len(f.tracks)
		}
	}

	currentTLID := -1
	if f.current != nil && *f.current < len(f.tracks) {
		currentTLID = f.tracks[*f.current].TLID
	}

	rest := make([]mopidy.TLTrack, len(f.tracks[pos:]))
	copy(rest, f.tracks[pos:])
	f.tracks = append(append(f.tracks[:pos:pos], added...), rest...)

	if currentTLID != -1 {
		for i, tl := range f.tracks {
			if tl.TLID == currentTLID {
				idx := i
				f.current = &idx
			}
		}
	}
	return added
}

func TestRefreshAggregatesState(t *testing.T) {
	f := newFakeMopidy(t)
	f.volume = 37
	f.muted = true
	f.shuffle = true
	f.repeat = true
	f.single = true
	f.state = mopidy.StatePaused
	tlid := f.addTrack("local:track:a.flac", "A")
	f.mu.Lock()
	idx := 0
	f.current = &idx
	f.mu.Unlock()

	s := f.speaker(t)
	s.Refresh(t.Context())

	st := s.Status()
	require.True(t, st.Available)
	require.Equal(t, "3.4.2", st.Version)
	require.Equal(t, []string{"local", "m3u", "http"}, st.SupportedSchemes)
	require.Equal(t, StatePaused, st.State)
	require.Equal(t, 37, st.Volume)
	require.True(t, st.Muted)
	require.True(t, st.Shuffle)
	require.Equal(t, "one", st.RepeatMode)
	require.NotNil(t, st.Track)
	require.Equal(t, "A", st.Track.Title)
	require.Equal(t, 1, st.QueueSize)

	cur, ok := s.Queue().Current()
	require.True(t, ok)
	require.Equal(t, tlid, cur.TLID)
}

func TestRefreshUnavailableServer(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)
	f.srv.Close()

	s.Refresh(t.Context())

	require.False(t, s.Available())
	require.Equal(t, StateUnknown, s.State())
}

func TestUnavailableServerWipesState(t *testing.T) {
	f := newFakeMopidy(t)
	f.volume = 62
	f.muted = true
	f.shuffle = true
	f.playlists["m3u:a.m3u"] = &mopidy.Playlist{URI: "m3u:a.m3u", Name: "A"}
	s := f.speaker(t)

	s.Refresh(t.Context())
	require.True(t, s.Available())
	require.Equal(t, 62, s.Volume())

	f.srv.Close()
	s.Refresh(t.Context())

	st := s.Status()
	require.False(t, st.Available)
	require.Empty(t, st.Version)
	require.Empty(t, st.SupportedSchemes)
	require.Zero(t, st.Volume)
	require.False(t, st.Muted)
	require.False(t, st.Shuffle)
	require.Equal(t, "off", st.RepeatMode)
	require.Empty(t, s.Sources())
}

func TestFieldFaultDropsAvailability(t *testing.T) {
	f := newFakeMopidy(t)
	f.volume = 48
	f.failMethods["core.mixer.get_volume"] = true
	s := f.speaker(t)

	s.Refresh(t.Context())

	// The liveness probe succeeded but the contact was degraded: the
	// failing field keeps its previous value, availability drops.
	require.False(t, s.Available())
	require.Equal(t, "3.4.2", s.Status().Version)
	require.Zero(t, s.Volume())

	f.mu.Lock()
	f.failMethods["core.mixer.get_volume"] = false
	f.mu.Unlock()
	s.Refresh(t.Context())
	require.True(t, s.Available())
	require.Equal(t, 48, s.Volume())
}

func TestRefreshRecoversAvailability(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	s.Refresh(t.Context())
	require.True(t, s.Available())

	// Unreachable polls flip availability and purge the queue mirror.
	f.addTrack("local:track:a.flac", "A")
	s.Refresh(t.Context())
	require.Equal(t, 1, s.Queue().Len())

	f.srv.Close()
	s.Refresh(t.Context())
	require.False(t, s.Available())
	require.Equal(t, 0, s.Queue().Len())
}

func TestSetRepeatModeWritesBothFlags(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	for _, mode := range []RepeatMode{RepeatOne, RepeatAll, RepeatOff} {
		require.NoError(t, s.SetRepeatMode(t.Context(), mode))
		f.mu.Lock()
		got := repeatModeFrom(f.repeat, f.single)
		f.mu.Unlock()
		require.Equal(t, mode, got)
	}
}

func TestVolumeStepClamps(t *testing.T) {
	f := newFakeMopidy(t)
	f.volume = 98
	s := f.speaker(t)
	s.Refresh(t.Context())

	require.NoError(t, s.VolumeUp(t.Context()))
	f.mu.Lock()
	v := f.volume
	f.mu.Unlock()
	require.Equal(t, 100, v)

	s.setVolume(3)
	require.NoError(t, s.VolumeDown(t.Context()))
	f.mu.Lock()
	v = f.volume
	f.mu.Unlock()
	require.Equal(t, 0, v)
}

func TestOnChangeFiresOnRefresh(t *testing.T) {
	f := newFakeMopidy(t)
	s := f.speaker(t)

	var fired int
	s.OnChange(func() { fired++ })
	s.Refresh(t.Context())

	require.Equal(t, 1, fired)
}
