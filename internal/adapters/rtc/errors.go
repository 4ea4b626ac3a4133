package rtc

import (
	"fmt"

	"github.com/pion/webrtc/v4"
)

// PeerConnectionError reports a non-fatal failure of the underlying
// connection. It never changes session state by itself: the connection either
// still completes or the signaling deadline times the attempt out.
type PeerConnectionError struct {
	State webrtc.PeerConnectionState
}

func (e *PeerConnectionError) Error() string {
	return fmt.Sprintf("peer connection %s", e.State)
}
