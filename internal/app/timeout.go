package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DeadlineTier selects the duration class of the single pending match
// deadline.
type DeadlineTier int

const (
	// TierSearching is short: no match yet, the user can simply retry.
	TierSearching DeadlineTier = iota
	// TierSignaling is long: peers are paired, a full offer/answer round
	// trip deserves more time before giving up.
	TierSignaling
)

func (t DeadlineTier) String() string {
	if t == TierSignaling {
		return "signaling"
	}
	return "searching"
}

// TimeoutManager tracks the single active match deadline. Arming always
// cancels any previously pending deadline, and a cancel invalidates an
// already-scheduled fire, so a deadline can never fire after the session is
// marked connected.
type TimeoutManager struct {
	searching time.Duration
	signaling time.Duration
	fire      func(tier DeadlineTier)

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewTimeoutManager(searching, signaling time.Duration, fire func(DeadlineTier)) *TimeoutManager {
	return &TimeoutManager{
		searching: searching,
		signaling: signaling,
		fire:      fire,
	}
}

// Arm schedules the deadline for tier, superseding any pending one. Room
// assignment re-arms unconditionally at the signaling tier to restart the
// clock for the new attempt.
func (m *TimeoutManager) Arm(tier DeadlineTier) {
	d := m.searching
	if tier == TierSignaling {
		d = m.signaling
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = time.AfterFunc(d, func() {
		m.mu.Lock()
		if m.gen != gen {
			// Superseded or canceled while this fire was in flight.
			m.mu.Unlock()
			return
		}
		m.timer = nil
		m.mu.Unlock()
		m.fire(tier)
	})
	m.mu.Unlock()

	log.Info().Str("module", "app.timeout").Str("tier", tier.String()).Dur("after", d).Msg("deadline armed")
}

// Cancel discards the pending deadline, if any, including one whose fire is
// already in flight.
func (m *TimeoutManager) Cancel() {
	m.mu.Lock()
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
}

// Pending reports whether a deadline is currently scheduled.
func (m *TimeoutManager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}
