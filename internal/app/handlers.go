package app

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/sandeep3158/strangercall/internal/core"
	"github.com/sandeep3158/strangercall/internal/domain"
)

func (c *Controller) onSocketID(data json.RawMessage) {
	var id domain.UserID
	if err := json.Unmarshal(data, &id); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("bad socket id payload")
		return
	}
	c.mu.Lock()
	c.localID = id
	c.mu.Unlock()
	log.Info().Str("module", "app").Str("local_id", string(id)).Msg("relay assigned local id")
}

// onMatchedPeer reacts to a match candidate. Only the side whose identifier
// orders lower invites, so exactly one invite is sent per pair.
func (c *Controller) onMatchedPeer(data json.RawMessage) {
	var peer domain.UserID
	if err := json.Unmarshal(data, &peer); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("bad matched peer payload")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateSearching || c.localID == "" || peer == c.localID {
		return
	}
	if domain.RoleOf(c.localID, peer) != domain.RoleInitiator {
		return
	}
	if err := c.sig.Emit(evInvitePrivate, peer); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("emit invite")
	}
}

func (c *Controller) onInviteRequested(data json.RawMessage) {
	var inviter domain.UserID
	if err := json.Unmarshal(data, &inviter); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("bad invite payload")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateSearching {
		log.Warn().Str("module", "app").Str("state", c.state.String()).Msg("invite ignored")
		return
	}
	if err := c.sig.Emit(evInviteAccepted, inviter); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("emit invite accepted")
	}
}

// onEnterRoom handles a room assignment: record the room, restart the
// deadline clock at the signaling tier, elect the role, and on the initiator
// side run the single-shot offer.
func (c *Controller) onEnterRoom(data json.RawMessage) {
	var p enterRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || len(p.Users) != 2 {
		log.Error().Err(err).Str("module", "app").Msg("bad room payload")
		return
	}

	c.mu.Lock()
	if c.state != domain.StateSearching && c.state != domain.StateSignaling {
		c.mu.Unlock()
		log.Warn().Str("module", "app").Str("state", c.state.String()).Msg("room assignment ignored")
		return
	}

	c.room = &domain.Room{ID: p.RoomID, Members: [2]domain.UserID{p.Users[0], p.Users[1]}}
	peer, ok := c.room.Peer(c.localID)
	if !ok {
		c.room = nil
		c.mu.Unlock()
		log.Error().Str("module", "app").Str("room", string(p.RoomID)).Msg("room does not contain local id")
		return
	}

	c.state = domain.StateSignaling
	// Unconditional upgrade: a fresh room means a fresh negotiation clock,
	// even if a signaling deadline was already pending.
	c.timeouts.Arm(TierSignaling)

	role := domain.RoleOf(c.localID, peer)
	log.Info().
		Str("module", "app").
		Str("room", string(p.RoomID)).
		Str("peer", string(peer)).
		Str("role", string(role)).
		Msg("entered chat room")

	if role != domain.RoleInitiator {
		// The responder waits for the incoming call payload.
		c.mu.Unlock()
		return
	}

	link, err := c.newLinkLocked(domain.RoleInitiator)
	if err != nil {
		c.mu.Unlock()
		log.Error().Err(err).Str("module", "app").Msg("create initiator link")
		return
	}
	from := c.localID
	c.mu.Unlock()

	// Suspension point: one consolidated description, gathering included.
	offer, err := link.Offer()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.link != link || c.state != domain.StateSignaling {
		// Torn down while gathering; whoever reset the session closed the
		// link already, the stale offer must not resurrect it.
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("create offer")
		return
	}
	emitErr := c.sig.Emit(evCallUser, callUserPayload{
		UserToCall: peer,
		SignalData: offer,
		From:       from,
	})
	if emitErr != nil {
		log.Error().Err(emitErr).Str("module", "app").Msg("emit call")
	}
}

// onUserCall handles the incoming call payload on the responder side. The
// existing local stream is reused; the capture device is never reacquired.
func (c *Controller) onUserCall(data json.RawMessage) {
	var p userCallPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("bad call payload")
		return
	}

	c.mu.Lock()
	if c.state != domain.StateSignaling || c.localStream == nil {
		c.mu.Unlock()
		log.Warn().Str("module", "app").Str("state", c.state.String()).Msg("incoming call ignored")
		return
	}
	link, err := c.newLinkLocked(domain.RoleResponder)
	if err != nil {
		c.mu.Unlock()
		log.Error().Err(err).Str("module", "app").Msg("create responder link")
		return
	}
	c.mu.Unlock()

	answer, err := link.Answer(p.Signal)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.link != link || c.state == domain.StateIdle {
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("answer call")
		return
	}
	if emitErr := c.sig.Emit(evAnswerCall, answerCallPayload{Signal: answer, To: p.From}); emitErr != nil {
		log.Error().Err(emitErr).Str("module", "app").Msg("emit answer")
	}
}

func (c *Controller) onCallAccepted(data json.RawMessage) {
	var signal webrtc.SessionDescription
	if err := json.Unmarshal(data, &signal); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("bad answer payload")
		return
	}

	c.mu.Lock()
	link := c.link
	c.mu.Unlock()
	if link == nil {
		log.Warn().Str("module", "app").Msg("answer skipped, no live peer link")
		return
	}
	if err := link.ApplyAnswer(signal); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("apply answer")
	}
}

func (c *Controller) onReceiveMessage(data json.RawMessage) {
	var p receiveMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("bad message payload")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil || !c.room.Has(p.UserID) {
		// A straggling echo from a previous room must not leak into this log.
		return
	}
	c.messages = append(c.messages, domain.ChatMessage{SenderID: p.UserID, Text: p.Msg})
}

// onCloseRoom is the authoritative reset: the relay already discarded the
// registration, so the session always converges back to idle, whatever the
// current state.
func (c *Controller) onCloseRoom(json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.StateIdle {
		return
	}
	log.Info().Str("module", "app").Msg("relay closed the room")
	c.resetLocked()
}

// newLinkLocked swaps in a fresh peer link for role, closing any previous
// one first. Callers hold c.mu.
func (c *Controller) newLinkLocked(role domain.PeerRole) (core.PeerLink, error) {
	c.closeLinkLocked()

	link, err := c.peers.NewPeerLink(role, c.localStream)
	if err != nil {
		return nil, err
	}
	link.OnRemoteTrack(c.onRemoteTrack)
	link.OnError(c.onPeerError)
	c.link = link
	return link, nil
}

// onRemoteTrack marks the session connected on the first remote media and
// cancels the pending deadline so a late fire can never declare not-found
// after success.
func (c *Controller) onRemoteTrack(track core.RemoteTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remoteTracks = append(c.remoteTracks, track)
	if c.state != domain.StateSignaling {
		return
	}
	c.timeouts.Cancel()
	c.state = domain.StateConnected
	log.Info().Str("module", "app").Str("kind", track.Kind().String()).Msg("connected")
}

// onPeerError records a non-fatal transport failure. State is untouched: the
// connection either still completes or the signaling deadline gives up on it.
func (c *Controller) onPeerError(err error) {
	log.Warn().Err(err).Str("module", "app").Msg("peer connection error")
}
