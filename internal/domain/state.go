package domain

// SessionState is the lifecycle state of the local session.
//
// Idle → AwaitingMedia → Searching → Signaling → Connected, with NotFound
// reachable from Searching/Signaling on deadline expiry and Ended reachable
// from any non-Idle state; Ended drains back to Idle.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingMedia
	StateSearching
	StateSignaling
	StateConnected
	StateNotFound
	StateEnded
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingMedia:
		return "awaiting_media"
	case StateSearching:
		return "searching"
	case StateSignaling:
		return "signaling"
	case StateConnected:
		return "connected"
	case StateNotFound:
		return "not_found"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}
