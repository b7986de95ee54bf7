package mopidy

import (
	"encoding/json"
	"fmt"
)

// Event is a push notification from the server's event websocket. The
// set of variants is closed so dispatchers can type-switch exhaustively.
type Event interface {
	eventName() string
}

// VolumeChangedEvent reports a new mixer volume.
type VolumeChangedEvent struct {
	Volume int `json:"volume"`
}

// MuteChangedEvent reports a new mixer mute flag.
type MuteChangedEvent struct {
	Mute bool `json:"mute"`
}

// OptionsChangedEvent signals that one of consume/random/repeat/single
// changed; it carries no payload, the new values must be fetched.
type OptionsChangedEvent struct{}

// PlaybackStateChangedEvent reports a playback state transition.
type PlaybackStateChangedEvent struct {
	OldState string `json:"old_state"`
	NewState string `json:"new_state"`
}

// SeekedEvent reports a playback position change in milliseconds.
type SeekedEvent struct {
	TimePosition int64 `json:"time_position"`
}

// StreamTitleChangedEvent carries a stream's now-playing text.
type StreamTitleChangedEvent struct {
	Title string `json:"title"`
}

// TrackPlaybackStartedEvent reports that a tracklist entry started.
type TrackPlaybackStartedEvent struct {
	TLTrack TLTrack `json:"tl_track"`
}

// TrackPlaybackPausedEvent reports a pause, with the position at the
// time of pausing in milliseconds.
type TrackPlaybackPausedEvent struct {
	TLTrack      TLTrack `json:"tl_track"`
	TimePosition int64   `json:"time_position"`
}

// TrackPlaybackResumedEvent reports a resume.
type TrackPlaybackResumedEvent struct {
	TLTrack      TLTrack `json:"tl_track"`
	TimePosition int64   `json:"time_position"`
}

// TrackPlaybackEndedEvent reports that a tracklist entry finished.
type TrackPlaybackEndedEvent struct {
	TLTrack      TLTrack `json:"tl_track"`
	TimePosition int64   `json:"time_position"`
}

// TracklistChangedEvent signals that the tracklist was mutated; the new
// contents must be fetched.
type TracklistChangedEvent struct{}

// PlaylistsLoadedEvent signals that the server reloaded its playlists.
type PlaylistsLoadedEvent struct{}

func (*VolumeChangedEvent) eventName() string        { return "volume_changed" }
func (*MuteChangedEvent) eventName() string          { return "mute_changed" }
func (*OptionsChangedEvent) eventName() string       { return "options_changed" }
func (*PlaybackStateChangedEvent) eventName() string { return "playback_state_changed" }
func (*SeekedEvent) eventName() string               { return "seeked" }
func (*StreamTitleChangedEvent) eventName() string   { return "stream_title_changed" }
func (*TrackPlaybackStartedEvent) eventName() string { return "track_playback_started" }
func (*TrackPlaybackPausedEvent) eventName() string  { return "track_playback_paused" }
func (*TrackPlaybackResumedEvent) eventName() string { return "track_playback_resumed" }
func (*TrackPlaybackEndedEvent) eventName() string   { return "track_playback_ended" }
func (*TracklistChangedEvent) eventName() string     { return "tracklist_changed" }
func (*PlaylistsLoadedEvent) eventName() string      { return "playlists_loaded" }

// DecodeEvent parses one websocket message. Unknown event names decode
// to (nil, nil) so new server versions do not break the listener.
func DecodeEvent(data []byte) (Event, error) {
	var probe struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	var ev Event
	switch probe.Event {
	case "volume_changed":
		ev = &VolumeChangedEvent{}
	case "mute_changed":
		ev = &MuteChangedEvent{}
	case "options_changed":
		return &OptionsChangedEvent{}, nil
	case "playback_state_changed":
		ev = &PlaybackStateChangedEvent{}
	case "seeked":
		ev = &SeekedEvent{}
	case "stream_title_changed":
		ev = &StreamTitleChangedEvent{}
	case "track_playback_started":
		ev = &TrackPlaybackStartedEvent{}
	case "track_playback_paused":
		ev = &TrackPlaybackPausedEvent{}
	case "track_playback_resumed":
		ev = &TrackPlaybackResumedEvent{}
	case "track_playback_ended":
		ev = &TrackPlaybackEndedEvent{}
	case "tracklist_changed":
		return &TracklistChangedEvent{}, nil
	case "playlists_loaded":
		return &PlaylistsLoadedEvent{}, nil
	default:
		return nil, nil
	}

	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", probe.Event, err)
	}
	return ev, nil
}
