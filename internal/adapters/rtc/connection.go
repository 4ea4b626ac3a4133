// Package rtc wraps pion/webrtc peer connections for one-to-one calls.
package rtc

import (
	"sync"

	"github.com/pion/interceptor"
	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/sandeep3158/strangercall/internal/core"
	"github.com/sandeep3158/strangercall/internal/domain"
)

// Factory builds peer links sharing one webrtc configuration and the codec
// selector the capture gateway encodes with.
type Factory struct {
	cfg      webrtc.Configuration
	selector *mediadevices.CodecSelector
}

func NewFactory(stunURLs []string, selector *mediadevices.CodecSelector) *Factory {
	cfg := webrtc.Configuration{}
	if len(stunURLs) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: stunURLs}}
	}
	return &Factory{cfg: cfg, selector: selector}
}

// NewPeerLink creates a connection for the given role and attaches the lent
// local tracks. The link borrows the stream: Close never stops local tracks,
// their owner does.
func (f *Factory) NewPeerLink(role domain.PeerRole, local mediadevices.MediaStream) (core.PeerLink, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if f.selector != nil {
		f.selector.Populate(mediaEngine)
	} else if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, err
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
	)
	pc, err := api.NewPeerConnection(f.cfg)
	if err != nil {
		return nil, err
	}

	l := &Link{pc: pc, role: role}

	if local != nil {
		for _, track := range local.GetTracks() {
			if _, err := pc.AddTrack(track); err != nil {
				log.Error().Err(err).Str("module", "rtc").Msg("add local track")
			}
		}
	} else {
		// No lent stream: still produce valid m-lines with ICE credentials.
		addRecvOnlyTransceivers(pc)
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "rtc").
			Str("role", string(role)).
			Str("kind", track.Kind().String()).
			Str("stream_id", track.StreamID()).
			Msg("remote track received")
		l.mu.Lock()
		fn := l.onTrack
		l.mu.Unlock()
		if fn != nil {
			fn(track)
		}
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("role", string(role)).Str("peer_connection_state", s.String()).Msg("peer state")
		if s == webrtc.PeerConnectionStateFailed {
			l.mu.Lock()
			fn := l.onError
			l.mu.Unlock()
			if fn != nil {
				fn(&PeerConnectionError{State: s})
			}
		}
	})

	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("role", string(role)).Str("ice_state", s.String()).Msg("ICE state")
	})

	return l, nil
}

func addRecvOnlyTransceivers(pc *webrtc.PeerConnection) {
	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeVideo, webrtc.RTPCodecTypeAudio} {
		if _, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			log.Error().Err(err).Str("module", "rtc").Str("kind", kind.String()).Msg("add transceiver")
		}
	}
}

// Link implements core.PeerLink over a single pion PeerConnection.
type Link struct {
	pc   *webrtc.PeerConnection
	role domain.PeerRole

	mu      sync.Mutex
	closed  bool
	onTrack func(core.RemoteTrack)
	onError func(error)
}

func (l *Link) Role() domain.PeerRole { return l.role }

func (l *Link) OnRemoteTrack(fn func(core.RemoteTrack)) {
	l.mu.Lock()
	l.onTrack = fn
	l.mu.Unlock()
}

func (l *Link) OnError(fn func(error)) {
	l.mu.Lock()
	l.onError = fn
	l.mu.Unlock()
}

// Offer creates the local offer and blocks until ICE gathering completes, so
// exactly one consolidated description is exchanged per side.
func (l *Link) Offer() (webrtc.SessionDescription, error) {
	offer, err := l.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(l.pc)
	if err := l.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	<-gatherComplete

	return *l.pc.LocalDescription(), nil
}

// Answer installs the remote offer and returns one consolidated answer.
func (l *Link) Answer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	if err := l.pc.SetRemoteDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	answer, err := l.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(l.pc)
	if err := l.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	<-gatherComplete

	return *l.pc.LocalDescription(), nil
}

func (l *Link) ApplyAnswer(answer webrtc.SessionDescription) error {
	return l.pc.SetRemoteDescription(answer)
}

// Close tears the connection down. Calling it twice, or on a link that never
// negotiated, is a no-op.
func (l *Link) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	if err := l.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "rtc").Str("role", string(l.role)).Msg("close error")
		return
	}
	log.Info().Str("module", "rtc").Str("role", string(l.role)).Msg("closed")
}
