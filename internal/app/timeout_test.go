package app_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeep3158/strangercall/internal/app"
)

type tierRecorder struct {
	mu    sync.Mutex
	fired []app.DeadlineTier
}

func (r *tierRecorder) fire(tier app.DeadlineTier) {
	r.mu.Lock()
	r.fired = append(r.fired, tier)
	r.mu.Unlock()
}

func (r *tierRecorder) snapshot() []app.DeadlineTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]app.DeadlineTier, len(r.fired))
	copy(out, r.fired)
	return out
}

func TestArmSupersedesPendingDeadline(t *testing.T) {
	rec := &tierRecorder{}
	m := app.NewTimeoutManager(30*time.Millisecond, 60*time.Millisecond, rec.fire)

	// Searching armed, then immediately upgraded: only the signaling
	// deadline may ever fire.
	m.Arm(app.TierSearching)
	m.Arm(app.TierSignaling)
	assert.True(t, m.Pending())

	time.Sleep(120 * time.Millisecond)

	fired := rec.snapshot()
	require.Len(t, fired, 1, "a superseded deadline must not fire")
	assert.Equal(t, app.TierSignaling, fired[0])
	assert.False(t, m.Pending())
}

func TestCancelDiscardsPendingDeadline(t *testing.T) {
	rec := &tierRecorder{}
	m := app.NewTimeoutManager(20*time.Millisecond, 40*time.Millisecond, rec.fire)

	m.Arm(app.TierSearching)
	m.Cancel()
	assert.False(t, m.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "a canceled deadline must not fire")
}

func TestReArmAfterFireSchedulesAgain(t *testing.T) {
	rec := &tierRecorder{}
	m := app.NewTimeoutManager(15*time.Millisecond, 30*time.Millisecond, rec.fire)

	m.Arm(app.TierSearching)
	time.Sleep(40 * time.Millisecond)
	m.Arm(app.TierSearching)
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, []app.DeadlineTier{app.TierSearching, app.TierSearching}, rec.snapshot())
}

func TestCancelIsSafeWithNothingPending(t *testing.T) {
	m := app.NewTimeoutManager(time.Second, time.Second, func(app.DeadlineTier) {})
	m.Cancel()
	m.Cancel()
	assert.False(t, m.Pending())
}
