package speaker

import (
	"testing"

	"github.com/averbeke/mopctl/internal/mopidy"
)

func TestRepeatModeRoundTrip(t *testing.T) {
	for _, mode := range []RepeatMode{RepeatOff, RepeatAll, RepeatOne} {
		repeat, single := mode.flags()
		if got := repeatModeFrom(repeat, single); got != mode {
			t.Errorf("round trip %s -> (%v,%v) -> %s", mode, repeat, single, got)
		}
	}
}

func TestRepeatModeFromSingleOnly(t *testing.T) {
	// single without repeat has no tri-state equivalent; it folds to off.
	if got := repeatModeFrom(false, true); got != RepeatOff {
		t.Errorf("repeatModeFrom(false, true) = %s, want off", got)
	}
}

func TestParseRepeatMode(t *testing.T) {
	for _, s := range []string{"off", "all", "one"} {
		mode, err := ParseRepeatMode(s)
		if err != nil {
			t.Fatalf("ParseRepeatMode(%q) error: %v", s, err)
		}
		if mode.String() != s {
			t.Errorf("ParseRepeatMode(%q).String() = %q", s, mode.String())
		}
	}
	if _, err := ParseRepeatMode("twice"); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestPlaybackStateFrom(t *testing.T) {
	tests := []struct {
		wire string
		want PlaybackState
	}{
		{mopidy.StatePlaying, StatePlaying},
		{mopidy.StatePaused, StatePaused},
		{mopidy.StateStopped, StateIdle},
		{"garbage", StateUnknown},
	}
	for _, tt := range tests {
		if got := playbackStateFrom(tt.wire); got != tt.want {
			t.Errorf("playbackStateFrom(%q) = %s, want %s", tt.wire, got, tt.want)
		}
	}
}
