package core

import "github.com/pion/mediadevices"

// MediaGateway owns access to the local capture hardware.
type MediaGateway interface {
	// Acquire releases any previously held stream and requests a fresh
	// combined audio+video capture. Failures come back classified with a
	// user-facing reason so the caller stays recoverable.
	Acquire() (mediadevices.MediaStream, error)
	// Release stops every track of the given stream. Safe with nil.
	Release(stream mediadevices.MediaStream)
}
