package core

import (
	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"

	"github.com/sandeep3158/strangercall/internal/domain"
)

// RemoteTrack is the slice of *webrtc.TrackRemote the controller and the
// rendering collaborator actually need.
type RemoteTrack interface {
	ID() string
	StreamID() string
	Kind() webrtc.RTPCodecType
}

// PeerLink is one negotiated media connection for a room. At most one live
// link exists per session; creating a new one implies the previous was fully
// closed first. The local stream is lent to the link, never owned by it.
type PeerLink interface {
	Role() domain.PeerRole

	// Offer produces one consolidated local description (gathering complete,
	// no candidate trickle). Initiator side only.
	Offer() (webrtc.SessionDescription, error)
	// ApplyAnswer installs the remote answer on the initiator side.
	ApplyAnswer(answer webrtc.SessionDescription) error
	// Answer installs the remote offer and produces one consolidated answer.
	// Responder side only.
	Answer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error)

	// OnRemoteTrack sets the callback for incoming remote media. Must be set
	// before Offer/Answer.
	OnRemoteTrack(fn func(track RemoteTrack))
	// OnError sets the callback for non-fatal transport errors.
	OnError(fn func(err error))

	// Close tears the link down. Idempotent: closing an already-closed link
	// is a no-op, not an error.
	Close()
}

// PeerFactory builds peer links; injected so the controller can be driven by
// a test double.
type PeerFactory interface {
	NewPeerLink(role domain.PeerRole, local mediadevices.MediaStream) (PeerLink, error)
}
