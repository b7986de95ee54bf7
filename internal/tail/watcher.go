package tail

import (
	"context"
	"time"

	"github.com/averbeke/mopctl/internal/speaker"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventStop
	EventVolumeChange
	EventMuteChange
	EventOptionsChange
	EventQueueChange
	EventOffline
	EventOnline
)

// Event represents an observed state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *speaker.Status
	Current   *speaker.Status
}

// Watcher polls a speaker for state changes and emits events.
type Watcher struct {
	speaker  *speaker.Speaker
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(s *speaker.Speaker, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		speaker:  s,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling for state changes. The speaker's push channel,
// when connected, makes the poll pick up changes without waiting a
// full interval; the diff itself always runs against polled snapshots.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	w.speaker.Refresh(ctx)
	prev := w.speaker.Status()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			w.speaker.Refresh(ctx)
			curr := w.speaker.Status()

			for _, e := range diffStatus(&prev, &curr) {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}

			prev = curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffStatus compares two snapshots and returns detected events.
func diffStatus(prev, curr *speaker.Status) []Event {
	now := time.Now()
	var events []Event

	emit := func(t EventType) {
		events = append(events, Event{
			Type:      t,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	if prev.Available != curr.Available {
		if curr.Available {
			emit(EventOnline)
		} else {
			emit(EventOffline)
			return events
		}
	}
	if !curr.Available {
		return events
	}

	if trackChanged(prev, curr) {
		switch {
		case prev.Track != nil && wasCompleted(prev):
			emit(EventTrackComplete)
		case prev.Track != nil:
			emit(EventTrackSkip)
		default:
			emit(EventTrackChange)
		}
		if curr.Track != nil && prev.Track != nil {
			emit(EventTrackChange)
		}
	}

	switch {
	case prev.State == speaker.StatePlaying && curr.State == speaker.StatePaused:
		emit(EventPause)
	case prev.State == speaker.StatePaused && curr.State == speaker.StatePlaying:
		emit(EventResume)
	case prev.State != speaker.StateIdle && curr.State == speaker.StateIdle:
		emit(EventStop)
	}

	if prev.Volume != curr.Volume {
		emit(EventVolumeChange)
	}
	if prev.Muted != curr.Muted {
		emit(EventMuteChange)
	}
	if prev.Shuffle != curr.Shuffle || prev.Consume != curr.Consume ||
		prev.RepeatMode != curr.RepeatMode {
		emit(EventOptionsChange)
	}
	if prev.QueueSize != curr.QueueSize {
		emit(EventQueueChange)
	}

	return events
}

// trackChanged returns true if the now-playing track changed.
func trackChanged(prev, curr *speaker.Status) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.URI != curr.Track.URI
}

// wasCompleted returns true if the track likely finished naturally.
func wasCompleted(st *speaker.Status) bool {
	if st.Track == nil || st.Track.Duration == 0 || st.Position == nil {
		return false
	}
	// Consider completed if the last seen position was >= 95% in.
	threshold := float64(st.Track.Duration) * 0.95
	return float64(*st.Position) >= threshold
}
