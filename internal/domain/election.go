package domain

// PeerRole is the deterministic role of a member in peer negotiation.
// The initiator creates the first offer; the responder answers once.
type PeerRole string

const (
	RoleInitiator PeerRole = "initiator"
	RoleResponder PeerRole = "responder"
)

// Less is the total-order comparator over relay-assigned identifiers used for
// initiator election: plain byte-wise string comparison. It is spelled out as
// a function so the rule is explicit and testable rather than an implicit
// reliance on native ordering.
func Less(a, b UserID) bool {
	return a < b
}

// Initiator returns the member that must create the offer. Both sides of a
// room compute this independently from the same two identifiers and arrive at
// the same answer, which removes the offer glare race without an extra round
// trip.
func Initiator(a, b UserID) UserID {
	if Less(a, b) {
		return a
	}
	return b
}

// RoleOf derives the local role for a pairing with the given peer.
func RoleOf(local, peer UserID) PeerRole {
	if Initiator(local, peer) == local {
		return RoleInitiator
	}
	return RoleResponder
}
