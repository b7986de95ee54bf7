package mopidy

// Ref types returned by library browse and playlists.as_list.
const (
	RefAlbum     = "album"
	RefArtist    = "artist"
	RefDirectory = "directory"
	RefPlaylist  = "playlist"
	RefTrack     = "track"
)

// Ref is a lightweight reference to an item in the Mopidy library.
type Ref struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Artist is a track or album artist.
type Artist struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// Album groups tracks.
type Album struct {
	URI       string   `json:"uri"`
	Name      string   `json:"name"`
	Artists   []Artist `json:"artists"`
	NumTracks int      `json:"num_tracks"`
	Date      string   `json:"date"`
}

// Track is a playable item. Length is in milliseconds, per the wire
// protocol; zero means unknown.
type Track struct {
	URI     string   `json:"uri"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   *Album   `json:"album"`
	TrackNo int      `json:"track_no"`
	DiscNo  int      `json:"disc_no"`
	Length  int64    `json:"length"`
	Date    string   `json:"date"`
}

// TLTrack is a track instance in the tracklist. The tlid is assigned by
// the server on insertion and never reused within one queue generation.
type TLTrack struct {
	TLID  int   `json:"tlid"`
	Track Track `json:"track"`
}

// Image is an artwork reference returned by library.get_images.
type Image struct {
	URI    string `json:"uri"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Playlist is a named, ordered list of tracks.
type Playlist struct {
	URI          string  `json:"uri"`
	Name         string  `json:"name"`
	Tracks       []Track `json:"tracks"`
	LastModified int64   `json:"last_modified"`
}

// SearchResult is one backend's result set for a library search.
type SearchResult struct {
	URI     string   `json:"uri"`
	Tracks  []Track  `json:"tracks"`
	Albums  []Album  `json:"albums"`
	Artists []Artist `json:"artists"`
}

// Playback states reported by core.playback.get_state.
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)
