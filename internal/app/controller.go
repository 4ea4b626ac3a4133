// Package app holds the session state machine that drives matching,
// signaling and the peer media connection.
package app

import (
	"strings"
	"sync"
	"time"

	"github.com/pion/mediadevices"
	"github.com/rs/zerolog/log"

	"github.com/sandeep3158/strangercall/internal/core"
	"github.com/sandeep3158/strangercall/internal/domain"
)

// Controller owns all mutable session state: the local session, the room,
// the peer link and the pending deadline. It is the only component allowed
// to mutate them; adapters report events and results but never write back.
//
// Every transition runs to completion under one mutex, so no handler ever
// observes a torn intermediate state. Relay events reach the controller in
// arrival order on the channel's reader goroutine; handlers are registered
// exactly once at construction and always read the live controller fields
// through the receiver, never copies captured at registration time.
type Controller struct {
	sig      core.SignalChannel
	media    core.MediaGateway
	peers    core.PeerFactory
	timeouts *TimeoutManager

	mu           sync.Mutex
	state        domain.SessionState
	localID      domain.UserID
	username     string
	localStream  mediadevices.MediaStream
	room         *domain.Room
	link         core.PeerLink
	messages     []domain.ChatMessage
	remoteTracks []core.RemoteTrack
	mediaError   string
	userNotFound bool
}

// NewController wires the collaborators and registers the relay handlers.
// The signal channel is injected: its connect/disconnect lifecycle belongs
// to the caller.
func NewController(
	sig core.SignalChannel,
	media core.MediaGateway,
	peers core.PeerFactory,
	searchingTimeout, signalingTimeout time.Duration,
) *Controller {
	c := &Controller{
		sig:   sig,
		media: media,
		peers: peers,
		state: domain.StateIdle,
	}
	c.timeouts = NewTimeoutManager(searchingTimeout, signalingTimeout, c.onDeadline)
	c.bindHandlers()
	return c
}

// bindHandlers registers one canonical handler per relay event. The channel
// replaces on re-registration, so even a second call could not stack
// duplicate side effects.
func (c *Controller) bindHandlers() {
	c.sig.On(evSocketID, c.onSocketID)
	c.sig.On(evMatchedPeer, c.onMatchedPeer)
	c.sig.On(evInviteRequested, c.onInviteRequested)
	c.sig.On(evEnterRoom, c.onEnterRoom)
	c.sig.On(evUserCall, c.onUserCall)
	c.sig.On(evCallAccepted, c.onCallAccepted)
	c.sig.On(evReceiveMessage, c.onReceiveMessage)
	c.sig.On(evCloseRoom, c.onCloseRoom)
}

// EnterChat acquires local media and registers with the relay for matching.
// On capture failure the session rolls back to idle with a recoverable media
// error and no relay registration happens.
func (c *Controller) EnterChat(username string) error {
	username = strings.TrimSpace(username)
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != domain.StateIdle {
		c.mu.Unlock()
		return nil
	}
	c.state = domain.StateAwaitingMedia
	c.username = username
	c.mediaError = ""
	c.mu.Unlock()

	// Suspension point: the capture request may block on a permission
	// prompt. No lock held while we wait.
	stream, err := c.media.Acquire()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateAwaitingMedia {
		// A relay closure raced the prompt; the reset already won.
		if stream != nil {
			c.media.Release(stream)
		}
		return nil
	}
	if err != nil {
		c.state = domain.StateIdle
		c.mediaError = err.Error()
		c.username = ""
		log.Warn().Err(err).Str("module", "app").Msg("enter chat rolled back, media unavailable")
		return err
	}

	c.localStream = stream
	c.startSearchingLocked()
	return nil
}

// Retry re-registers with the relay after a failed match. It reuses the
// already-acquired local stream; the capture device is not touched again.
// No-op unless the session is in the not-found state.
func (c *Controller) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateNotFound {
		return
	}
	c.startSearchingLocked()
}

// EndChat notifies the relay that the user is done. It is a no-op without an
// active room. The full reset waits for the relay's close event: closure is
// authoritative, so both ends converge even when the relay is already
// cleaning up its registration record.
func (c *Controller) EndChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return
	}
	if err := c.sig.Emit(evEndChat, c.room.ID); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("emit end chat")
	}
	// The user chose to leave: a still-armed deadline must not fire while
	// the relay is confirming and demote the session to not-found.
	c.timeouts.Cancel()
	c.closeLinkLocked()
}

// SendMessage emits one chat message for the current room. Blank text and a
// missing room are no-ops. The message is not appended locally; it shows up
// in the log only when the relay echoes it back.
func (c *Controller) SendMessage(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return
	}
	if err := c.sig.Emit(evSendMessage, sendMessagePayload{Msg: text, RoomID: c.room.ID}); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("emit chat message")
	}
}

// startSearchingLocked registers with the relay and arms the searching-tier
// deadline. Callers hold c.mu.
func (c *Controller) startSearchingLocked() {
	c.state = domain.StateSearching
	c.userNotFound = false
	if err := c.sig.Emit(evUserEntered, userEnteredPayload{Username: c.username}); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("emit user entered")
	}
	c.timeouts.Arm(TierSearching)
	log.Info().Str("module", "app").Str("username", c.username).Msg("searching for a match")
}

// onDeadline is the single deadline-expiry path into the not-found state.
func (c *Controller) onDeadline(tier DeadlineTier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateSearching && c.state != domain.StateSignaling {
		// Cancel-on-connect makes this unreachable after a connection, but a
		// relay closure can still race the fire.
		return
	}
	log.Warn().Str("module", "app").Str("tier", tier.String()).Msg("match deadline fired")

	c.closeLinkLocked()
	c.room = nil
	c.messages = nil
	c.remoteTracks = nil
	c.state = domain.StateNotFound
	c.userNotFound = true
}

// closeLinkLocked destroys the peer link, if any. Callers hold c.mu.
func (c *Controller) closeLinkLocked() {
	if c.link == nil {
		return
	}
	c.link.Close()
	c.link = nil
}

// resetLocked performs the ended-state teardown and drains back to idle:
// release media, destroy the peer link, clear room and messages. The
// user-not-found flag deliberately survives; it belongs to the retry flow,
// not the room lifecycle. Callers hold c.mu.
func (c *Controller) resetLocked() {
	c.state = domain.StateEnded

	c.timeouts.Cancel()
	c.closeLinkLocked()
	if c.localStream != nil {
		// The link is gone, so nothing references the lent stream anymore.
		c.media.Release(c.localStream)
		c.localStream = nil
	}
	c.room = nil
	c.messages = nil
	c.remoteTracks = nil
	c.username = ""

	c.state = domain.StateIdle
	log.Info().Str("module", "app").Msg("session reset")
}

// Snapshot is the read-only view a rendering collaborator displays.
type Snapshot struct {
	State        string               `json:"state"`
	LocalID      domain.UserID        `json:"localId"`
	Username     string               `json:"username"`
	RoomID       domain.RoomID        `json:"roomId,omitempty"`
	Messages     []domain.ChatMessage `json:"messages"`
	MediaError   string               `json:"mediaError,omitempty"`
	UserNotFound bool                 `json:"isUserNotFound"`
	HasLocal     bool                 `json:"hasLocalStream"`
	RemoteKinds  []string             `json:"remoteKinds"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:        c.state.String(),
		LocalID:      c.localID,
		Username:     c.username,
		MediaError:   c.mediaError,
		UserNotFound: c.userNotFound,
		HasLocal:     c.localStream != nil,
		Messages:     make([]domain.ChatMessage, len(c.messages)),
	}
	copy(snap.Messages, c.messages)
	if c.room != nil {
		snap.RoomID = c.room.ID
	}
	for _, t := range c.remoteTracks {
		snap.RemoteKinds = append(snap.RemoteKinds, t.Kind().String())
	}
	return snap
}

// RemoteTracks hands the current remote media to a rendering collaborator.
// The tracks are owned by the peer link and become invalid once it closes.
func (c *Controller) RemoteTracks() []core.RemoteTrack {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.RemoteTrack, len(c.remoteTracks))
	copy(out, c.remoteTracks)
	return out
}

// DismissMediaError clears the recoverable media banner.
func (c *Controller) DismissMediaError() {
	c.mu.Lock()
	c.mediaError = ""
	c.mu.Unlock()
}
