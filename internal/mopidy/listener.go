package mopidy

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// eventBuffer bounds the listener's queue. Events are dropped, not
// blocked on, when a consumer falls behind: every dropped event class is
// recovered by the next poll refresh.
const eventBuffer = 32

// Listener owns one event-subscription connection. Its receive loop
// only decodes frames and enqueues events; it never issues blocking
// calls of its own.
type Listener struct {
	conn   *websocket.Conn
	events chan Event
	alive  atomic.Bool
	closed atomic.Bool
}

// Listen opens the event websocket and starts the receive loop.
func (c *Client) Listen(ctx context.Context) (*Listener, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return nil, &TransportError{Method: "listen", Err: err}
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	l := &Listener{
		conn:   conn,
		events: make(chan Event, eventBuffer),
	}
	l.alive.Store(true)
	go l.receive()
	return l, nil
}

// Events returns the stream of decoded push events. The channel is
// closed when the connection dies or Close is called.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Alive reports whether the subscription connection is still up.
func (l *Listener) Alive() bool {
	return l.alive.Load()
}

// Close tears down the subscription.
func (l *Listener) Close() error {
	l.alive.Store(false)
	if l.closed.CompareAndSwap(false, true) {
		return l.conn.Close()
	}
	return nil
}

func (l *Listener) receive() {
	defer close(l.events)
	defer l.alive.Store(false)

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if !l.closed.Load() {
				slog.Debug("event connection lost", "err", err)
			}
			return
		}

		ev, err := DecodeEvent(data)
		if err != nil {
			slog.Warn("discarding malformed event", "err", err)
			continue
		}
		if ev == nil {
			continue
		}

		select {
		case l.events <- ev:
		default:
			slog.Warn("event buffer full, dropping event", "event", ev)
		}
	}
}
