package speaker

import (
	"fmt"

	"github.com/averbeke/mopctl/internal/mopidy"
)

// PlaybackState is the device-wide playback status.
type PlaybackState int

const (
	StateUnknown PlaybackState = iota
	StateIdle
	StatePlaying
	StatePaused
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// playbackStateFrom maps the wire state to a PlaybackState.
func playbackStateFrom(state string) PlaybackState {
	switch state {
	case mopidy.StatePlaying:
		return StatePlaying
	case mopidy.StatePaused:
		return StatePaused
	case mopidy.StateStopped:
		return StateIdle
	default:
		return StateUnknown
	}
}

// RepeatMode is the tri-state repeat setting presented to callers. The
// device models it as two independent booleans (repeat, single); the
// mapping below and its inverse in flags are exact in both directions.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// ParseRepeatMode parses "off", "all" or "one".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "off":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	default:
		return RepeatOff, fmt.Errorf("invalid repeat mode: %s (must be off, all, or one)", s)
	}
}

// repeatModeFrom decodes the device's (repeat, single) booleans.
func repeatModeFrom(repeat, single bool) RepeatMode {
	switch {
	case repeat && single:
		return RepeatOne
	case repeat:
		return RepeatAll
	default:
		return RepeatOff
	}
}

// flags encodes the mode back into the device's (repeat, single) pair.
func (m RepeatMode) flags() (repeat, single bool) {
	switch m {
	case RepeatOne:
		return true, true
	case RepeatAll:
		return true, false
	default:
		return false, false
	}
}
