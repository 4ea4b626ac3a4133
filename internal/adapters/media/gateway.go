// Package media acquires and releases the local capture devices through
// pion/mediadevices.
package media

import (
	"sync"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"     // registers the camera driver
	_ "github.com/pion/mediadevices/pkg/driver/microphone" // registers the microphone driver
	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/rs/zerolog/log"
)

// Gateway implements core.MediaGateway. It holds at most one capture stream:
// acquiring again releases the previous one first, so the devices are never
// held twice.
type Gateway struct {
	selector *mediadevices.CodecSelector

	mu     sync.Mutex
	stream mediadevices.MediaStream
}

// NewGateway builds the VP8+Opus codec selector shared with the peer link
// factory (the same selector must populate the webrtc media engine that the
// captured tracks are added to).
func NewGateway() (*Gateway, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, err
	}
	vpxParams.BitRate = 1_500_000 // 1.5 Mbps

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, err
	}

	selector := mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	)
	return &Gateway{selector: selector}, nil
}

func (g *Gateway) CodecSelector() *mediadevices.CodecSelector {
	return g.selector
}

// Acquire requests a combined audio+video capture. There is exactly one
// request path: no pre-flight permission probe, the capture call itself is
// the permission check.
func (g *Gateway) Acquire() (mediadevices.MediaStream, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stream != nil {
		stopTracks(g.stream)
		g.stream = nil
	}

	stream, err := mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Codec: g.selector,
		Video: func(c *mediadevices.MediaTrackConstraints) {
			// The user-facing camera of the machine: raw formats only (MJPEG
			// nodes can emit malformed frames that poison the VP8 encoder)
			// and capped at 640x480 to keep encode latency down.
			c.FrameFormat = prop.FrameFormatOneOf{
				frame.FormatYUYV,
				frame.FormatI420,
				frame.FormatI444,
				frame.FormatRGBA,
			}
			c.Width = prop.IntRanged{Max: 640}
			c.Height = prop.IntRanged{Max: 480}
		},
		Audio: func(_ *mediadevices.MediaTrackConstraints) {},
	})
	if err != nil {
		accessErr := Classify(err)
		log.Warn().Err(err).
			Str("module", "media").
			Str("cause", string(accessErr.Cause)).
			Msg("capture failed")
		return nil, accessErr
	}

	for _, track := range stream.GetTracks() {
		track.OnEnded(func(err error) {
			if err != nil {
				log.Warn().Err(err).Str("module", "media").Msg("local track ended")
			}
		})
	}

	g.stream = stream
	log.Info().Str("module", "media").Int("tracks", len(stream.GetTracks())).Msg("local media captured")
	return stream, nil
}

// Release stops every track of the given stream. Safe with nil and safe to
// call for a stream the gateway no longer tracks.
func (g *Gateway) Release(stream mediadevices.MediaStream) {
	if stream == nil {
		return
	}
	g.mu.Lock()
	if g.stream == stream {
		g.stream = nil
	}
	g.mu.Unlock()

	stopTracks(stream)
	log.Info().Str("module", "media").Msg("local media released")
}

func stopTracks(stream mediadevices.MediaStream) {
	for _, track := range stream.GetTracks() {
		track.Close()
	}
}
