package tail

import (
	"testing"

	"github.com/averbeke/mopctl/internal/speaker"
)

func available(state speaker.PlaybackState) *speaker.Status {
	return &speaker.Status{Available: true, State: state, RepeatMode: "off"}
}

func withTrack(st *speaker.Status, uri string, duration int, position *int) *speaker.Status {
	st.Track = &speaker.TrackInfo{Title: uri, URI: uri, Duration: duration}
	st.Position = position
	return st
}

func types(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestDiffStatus(t *testing.T) {
	almostDone := 190
	justStarted := 5

	tests := []struct {
		name string
		prev *speaker.Status
		curr *speaker.Status
		want []EventType
	}{
		{
			name: "no change",
			prev: available(speaker.StatePlaying),
			curr: available(speaker.StatePlaying),
			want: nil,
		},
		{
			name: "track appears",
			prev: available(speaker.StatePlaying),
			curr: withTrack(available(speaker.StatePlaying), "local:track:a", 200, nil),
			want: []EventType{EventTrackChange},
		},
		{
			name: "natural completion then next track",
			prev: withTrack(available(speaker.StatePlaying), "local:track:a", 200, &almostDone),
			curr: withTrack(available(speaker.StatePlaying), "local:track:b", 180, &justStarted),
			want: []EventType{EventTrackComplete, EventTrackChange},
		},
		{
			name: "skip mid-track",
			prev: withTrack(available(speaker.StatePlaying), "local:track:a", 200, &justStarted),
			curr: withTrack(available(speaker.StatePlaying), "local:track:b", 180, nil),
			want: []EventType{EventTrackSkip, EventTrackChange},
		},
		{
			name: "pause",
			prev: available(speaker.StatePlaying),
			curr: available(speaker.StatePaused),
			want: []EventType{EventPause},
		},
		{
			name: "resume",
			prev: available(speaker.StatePaused),
			curr: available(speaker.StatePlaying),
			want: []EventType{EventResume},
		},
		{
			name: "stop drops the track too",
			prev: withTrack(available(speaker.StatePlaying), "local:track:a", 200, &justStarted),
			curr: available(speaker.StateIdle),
			want: []EventType{EventTrackSkip, EventStop},
		},
		{
			name: "volume change",
			prev: available(speaker.StatePlaying),
			curr: func() *speaker.Status {
				st := available(speaker.StatePlaying)
				st.Volume = 70
				return st
			}(),
			want: []EventType{EventVolumeChange},
		},
		{
			name: "server goes away",
			prev: available(speaker.StatePlaying),
			curr: &speaker.Status{Available: false},
			want: []EventType{EventOffline},
		},
		{
			name: "server comes back",
			prev: &speaker.Status{Available: false},
			curr: available(speaker.StateIdle),
			want: []EventType{EventOnline},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(diffStatus(tt.prev, tt.curr))
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatterLine(t *testing.T) {
	f := NewFormatter(WithEmoji(false))

	curr := withTrack(available(speaker.StatePlaying), "local:track:a", 200, nil)
	curr.Track.Title = "Opening"
	curr.Track.Artist = "Band"

	got := f.Format(Event{Type: EventTrackChange, Current: curr})
	if got != "Now playing: Band - Opening" {
		t.Errorf("Format() = %q", got)
	}
}

func TestFormatterTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}}:{{.Title}}"))

	curr := withTrack(available(speaker.StatePlaying), "local:track:a", 200, nil)
	curr.Track.Title = "Opening"

	got := f.Format(Event{Type: EventTrackChange, Current: curr})
	if got != "track_change:Opening" {
		t.Errorf("Format() = %q", got)
	}
}
