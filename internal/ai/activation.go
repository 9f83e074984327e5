package ai

import (
	"log/slog"
	"sync/atomic"
)

// Activation decides when a brain may run. One instance per brain.
type Activation interface {
	// CanStart is consulted by Start before anything else.
	CanStart(b *Brain) bool
	// OnStart runs on every accepted Start call, including one made while
	// the brain is already active.
	OnStart(b *Brain)
	// BeforeThink runs at the top of each tick; false stops the brain
	// before the policy thinks.
	BeforeThink(b *Brain) bool
}

// AlwaysActive never refuses and never stops on its own.
type AlwaysActive struct{}

func (AlwaysActive) CanStart(*Brain) bool    { return true }
func (AlwaysActive) OnStart(*Brain)          {}
func (AlwaysActive) BeforeThink(*Brain) bool { return true }

// VicinityDormancy keeps a brain running only while players are around.
// Start requires at least one player within the visibility radius and arms a
// countdown of NoPlayersStopDelay / ThinkInterval ticks. Each tick decrements
// it first and stops the brain at zero. Only another Start refreshes it.
type VicinityDormancy struct {
	countdown atomic.Int32
}

// NewVicinityDormancy creates a dormancy strategy.
func NewVicinityDormancy() *VicinityDormancy {
	return &VicinityDormancy{}
}

func (v *VicinityDormancy) CanStart(b *Brain) bool {
	for p := range b.Body().PlayersInRadius(b.Tuning().VisibilityRadius) {
		if p.IsActive() {
			return true
		}
	}
	return false
}

func (v *VicinityDormancy) OnStart(b *Brain) {
	ticks := int32(b.Tuning().NoPlayersStopDelay / b.ThinkInterval())
	v.countdown.Store(ticks)

	if IsDebugEnabled() {
		slog.Debug("dormancy countdown armed", "npc", b.Body().Name(), "ticks", ticks)
	}
}

func (v *VicinityDormancy) BeforeThink(b *Brain) bool {
	if v.countdown.Add(-1) <= 0 {
		if IsDebugEnabled() {
			slog.Debug("no players nearby, going dormant", "npc", b.Body().Name())
		}
		return false
	}
	return true
}

// Remaining returns ticks left before the brain goes dormant.
func (v *VicinityDormancy) Remaining() int32 {
	return v.countdown.Load()
}
