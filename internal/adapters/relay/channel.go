// Package relay is the websocket client for the signaling relay. It carries
// typed events both ways and nothing else; all room/chat state lives upstream.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sandeep3158/strangercall/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Envelope is the wire format: one event name plus its raw payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Channel implements core.SignalChannel over a single long-lived websocket.
// Inbound events are dispatched from one reader goroutine in arrival order;
// no reordering or batching happens here.
type Channel struct {
	conn *websocket.Conn
	send chan []byte

	hmu      sync.RWMutex
	handlers map[string]core.EventHandler

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Dial connects to the relay and starts the read/write pumps. The returned
// channel is ready for On/Emit immediately; handlers registered before the
// first inbound event are guaranteed to see it.
func Dial(ctx context.Context, url string) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		conn:     conn,
		send:     make(chan []byte, 32),
		handlers: make(map[string]core.EventHandler),
		done:     make(chan struct{}),
	}
	go c.writePump()
	go c.readPump()
	log.Info().Str("module", "relay").Str("url", url).Msg("connected to relay")
	return c, nil
}

// On registers the handler for event. A second registration for the same
// event replaces the first; handlers never stack.
func (c *Channel) On(event string, h core.EventHandler) {
	c.hmu.Lock()
	c.handlers[event] = h
	c.hmu.Unlock()
}

func (c *Channel) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("channel closed")
	}
	select {
	case c.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close shuts the channel down. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	close(c.done)
	_ = c.conn.Close()
	c.mu.Unlock()
	log.Info().Str("module", "relay").Msg("channel closed")
}

func (c *Channel) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("bad envelope")
		return
	}

	c.hmu.RLock()
	h, ok := c.handlers[env.Event]
	c.hmu.RUnlock()
	if !ok {
		log.Warn().Str("module", "relay").Str("event", env.Event).Msg("unhandled event")
		return
	}
	// Run on the reader goroutine so room/peer lifecycle events keep their
	// arrival order.
	h(env.Data)
}
