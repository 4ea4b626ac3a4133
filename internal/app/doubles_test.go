package app_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/sandeep3158/strangercall/internal/core"
	"github.com/sandeep3158/strangercall/internal/domain"
)

type emitted struct {
	Event   string
	Payload any
}

// fakeChannel implements core.SignalChannel in-memory: it records outbound
// emits and lets a test deliver inbound relay events to the registered
// handlers, synchronously and in order, exactly like the real reader
// goroutine does.
type fakeChannel struct {
	mu       sync.Mutex
	handlers map[string]core.EventHandler
	emits    []emitted
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]core.EventHandler)}
}

func (c *fakeChannel) Emit(event string, payload any) error {
	c.mu.Lock()
	c.emits = append(c.emits, emitted{Event: event, Payload: payload})
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) On(event string, h core.EventHandler) {
	c.mu.Lock()
	c.handlers[event] = h
	c.mu.Unlock()
}

func (c *fakeChannel) Close() {}

func (c *fakeChannel) deliver(t *testing.T, event string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)

	c.mu.Lock()
	h := c.handlers[event]
	c.mu.Unlock()
	require.NotNil(t, h, "no handler registered for %q", event)
	h(data)
}

func (c *fakeChannel) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.emits))
	for _, e := range c.emits {
		out = append(out, e.Event)
	}
	return out
}

func (c *fakeChannel) countOf(event string) int {
	n := 0
	for _, e := range c.events() {
		if e == event {
			n++
		}
	}
	return n
}

// lastPayload JSON-round-trips the most recent payload for event into out,
// mirroring what the wire would carry.
func (c *fakeChannel) lastPayload(t *testing.T, event string, out any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.emits) - 1; i >= 0; i-- {
		if c.emits[i].Event != event {
			continue
		}
		data, err := json.Marshal(c.emits[i].Payload)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
		return
	}
	t.Fatalf("no %q was emitted", event)
}

// fakeGateway implements core.MediaGateway without touching any hardware.
type fakeGateway struct {
	mu       sync.Mutex
	stream   mediadevices.MediaStream
	err      error
	acquires int
	releases int
}

func (g *fakeGateway) Acquire() (mediadevices.MediaStream, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acquires++
	if g.err != nil {
		return nil, g.err
	}
	return g.stream, nil
}

func (g *fakeGateway) Release(mediadevices.MediaStream) {
	g.mu.Lock()
	g.releases++
	g.mu.Unlock()
}

func (g *fakeGateway) stats() (acquires, releases int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acquires, g.releases
}

type fakeTrack struct {
	id, streamID string
	kind         webrtc.RTPCodecType
}

func (t fakeTrack) ID() string                { return t.id }
func (t fakeTrack) StreamID() string          { return t.streamID }
func (t fakeTrack) Kind() webrtc.RTPCodecType { return t.kind }

// fakeLink implements core.PeerLink with canned descriptions.
type fakeLink struct {
	mu      sync.Mutex
	role    domain.PeerRole
	lent    mediadevices.MediaStream
	closes  int
	offers  int
	answers []webrtc.SessionDescription
	applied []webrtc.SessionDescription
	onTrack func(core.RemoteTrack)
	onErr   func(error)
}

func (l *fakeLink) Role() domain.PeerRole { return l.role }

func (l *fakeLink) Offer() (webrtc.SessionDescription, error) {
	l.mu.Lock()
	l.offers++
	l.mu.Unlock()
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 fake-offer"}, nil
}

func (l *fakeLink) Answer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	l.mu.Lock()
	l.answers = append(l.answers, offer)
	l.mu.Unlock()
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 fake-answer"}, nil
}

func (l *fakeLink) ApplyAnswer(answer webrtc.SessionDescription) error {
	l.mu.Lock()
	l.applied = append(l.applied, answer)
	l.mu.Unlock()
	return nil
}

func (l *fakeLink) OnRemoteTrack(fn func(core.RemoteTrack)) {
	l.mu.Lock()
	l.onTrack = fn
	l.mu.Unlock()
}

func (l *fakeLink) OnError(fn func(error)) {
	l.mu.Lock()
	l.onErr = fn
	l.mu.Unlock()
}

func (l *fakeLink) Close() {
	l.mu.Lock()
	l.closes++
	l.mu.Unlock()
}

func (l *fakeLink) closed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

func (l *fakeLink) fireTrack(kind webrtc.RTPCodecType) {
	l.mu.Lock()
	fn := l.onTrack
	l.mu.Unlock()
	if fn != nil {
		fn(fakeTrack{id: "t1", streamID: "s1", kind: kind})
	}
}

type fakeFactory struct {
	mu    sync.Mutex
	links []*fakeLink
}

func (f *fakeFactory) NewPeerLink(role domain.PeerRole, local mediadevices.MediaStream) (core.PeerLink, error) {
	l := &fakeLink{role: role, lent: local}
	f.mu.Lock()
	f.links = append(f.links, l)
	f.mu.Unlock()
	return l, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.links)
}

func (f *fakeFactory) last() *fakeLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.links) == 0 {
		return nil
	}
	return f.links[len(f.links)-1]
}
