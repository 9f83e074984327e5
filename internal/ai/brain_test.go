package ai

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/npcbrain/internal/model"
)

func TestBrain_StartStop(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning()})

	require.True(t, b.Start())
	assert.True(t, b.IsActive())

	advance(s, 2500*time.Millisecond)
	assert.Equal(t, int64(1), b.Thinks())

	assert.True(t, b.Stop())
	assert.False(t, b.IsActive())
	assert.False(t, b.Stop(), "second Stop is a no-op")

	advance(s, 10*time.Second)
	assert.Equal(t, int64(1), b.Thinks(), "no thinks after Stop")
	assert.Equal(t, 0, s.Count())
}

func TestBrain_DoubleStart(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning()})

	require.True(t, b.Start())
	assert.False(t, b.Start())
	assert.Equal(t, 1, s.Count(), "one think chain per brain")

	advance(s, 2500*time.Millisecond)
	assert.Equal(t, int64(1), b.Thinks())
}

func TestBrain_StartRefusedForInvalidBody(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testBody)
	}{
		{"dead", func(b *testBody) { b.SetCurrentHP(0) }},
		{"out of world", func(b *testBody) { b.SetInWorld(false) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler()
			body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
			tt.setup(body)

			b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning()})
			assert.False(t, b.Start())
			assert.False(t, b.IsActive())
			assert.Equal(t, 0, s.Count())
		})
	}
}

func TestBrain_StopsWhenBodyLeavesWorld(t *testing.T) {
	s := newTestScheduler()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning()})

	require.True(t, b.Start())
	body.SetInWorld(false)

	advance(s, 2500*time.Millisecond)
	assert.False(t, b.IsActive())
	assert.Equal(t, int64(0), b.Thinks())
	assert.Equal(t, 0, s.Count())
}

func TestBrain_StartWithoutScheduler(t *testing.T) {
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Tuning: quietTuning()})
	assert.False(t, b.Start())

	s := newTestScheduler()
	s.Stop()
	b = NewBrain(body, Options{Scheduler: s, Tuning: quietTuning()})
	assert.False(t, b.Start())
	assert.False(t, b.IsActive())
}

func TestBrain_SetThinkInterval(t *testing.T) {
	s := newTestScheduler()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning()})

	assert.Equal(t, DefaultThinkInterval, b.ThinkInterval())

	b.SetThinkInterval(time.Second)
	assert.Equal(t, time.Second, b.ThinkInterval())

	require.True(t, b.Start())
	advance(s, 3*time.Second)
	assert.Equal(t, int64(3), b.Thinks())

	b.SetThinkInterval(0)
	assert.Equal(t, DefaultThinkInterval, b.ThinkInterval())
	b.SetThinkInterval(-time.Second)
	assert.Equal(t, DefaultThinkInterval, b.ThinkInterval())
}

type panicPolicy struct{ *PassivePolicy }

func (panicPolicy) Think(*Brain) { panic("boom") }

func TestBrain_PanickingPolicyEndsChain(t *testing.T) {
	s := newTestScheduler()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning(), Policy: panicPolicy{NewPassivePolicy()}})

	require.True(t, b.Start())
	advance(s, 2500*time.Millisecond)

	assert.False(t, b.IsActive())
	assert.Equal(t, uint64(1), s.Stats().Panics)

	// The state lock was released, so transitions still work.
	assert.True(t, b.Fear(time.Second))
	assert.Equal(t, StateFeared, b.State())
}

func TestBrain_LifecycleEvents(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))

	tuning := quietTuning()
	tuning.LifecycleNotifications = true
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: tuning})

	var started, thinks, stopped atomic.Int32
	bus.Subscribe(EventBrainStarted, func(ev Event) {
		assert.Equal(t, uint32(1), ev.Sender.ObjectID())
		started.Add(1)
	})
	bus.Subscribe(EventBrainThink, func(Event) { thinks.Add(1) })
	bus.Subscribe(EventBrainStopped, func(Event) { stopped.Add(1) })

	require.True(t, b.Start())
	advance(s, 5*time.Second)
	require.True(t, b.Stop())

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, int32(2), thinks.Load())
	assert.Equal(t, int32(1), stopped.Load())
}

func TestBrain_LifecycleEventsDisabled(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: quietTuning()})

	var got atomic.Int32
	for _, tag := range []EventTag{EventBrainStarted, EventBrainThink, EventBrainStopped} {
		bus.Subscribe(tag, func(Event) { got.Add(1) })
	}

	require.True(t, b.Start())
	advance(s, 5*time.Second)
	b.Stop()
	assert.Zero(t, got.Load())
}

func TestBrain_Detach(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	attacker := newTestPlayer(t, w, 50, 100, 0)
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: quietTuning()})

	require.True(t, b.Start())
	require.True(t, b.Fear(time.Minute))

	b.Detach()
	assert.False(t, b.IsActive())
	assert.Equal(t, 0, s.Count(), "think chain and fear expiry cancelled")

	assert.Zero(t, bus.PublishTo(1, EventAttacked, attacker, attacker, int32(10)))
	assert.True(t, b.Aggro().IsEmpty())
}

func TestDormancy_StopsAfterDelay(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	newTestPlayer(t, w, 50, 100, 0)

	tuning := quietTuning()
	tuning.AggroRadius = 10
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Activation: NewVicinityDormancy()})

	require.True(t, b.Start())
	dorm := b.Activation().(*VicinityDormancy)
	assert.Equal(t, int32(18), dorm.Remaining(), "45s / 2.5s")

	advance(s, 17*2500*time.Millisecond)
	assert.True(t, b.IsActive(), "still active after 17 ticks")
	assert.Equal(t, int64(17), b.Thinks())

	advance(s, 2500*time.Millisecond)
	assert.False(t, b.IsActive(), "dormant after 18 ticks")
	assert.Equal(t, int64(17), b.Thinks())
}

func TestDormancy_RequiresPlayerNearby(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning(), Activation: NewVicinityDormancy()})

	assert.False(t, b.Start(), "no players at all")

	far := newTestPlayer(t, w, 50, 5000, 0)
	assert.False(t, b.Start(), "player beyond visibility radius")

	far.SetInWorld(false)
	w.remove(far.ObjectID())
	near := newTestPlayer(t, w, 51, 3000, 0)
	near.SetInWorld(false)
	assert.False(t, b.Start(), "inactive player does not count")

	near.SetInWorld(true)
	assert.True(t, b.Start())
}

func TestDormancy_NewPlayerDoesNotResetCountdown(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	newTestPlayer(t, w, 50, 100, 0)

	tuning := quietTuning()
	tuning.AggroRadius = 10
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Activation: NewVicinityDormancy()})
	require.True(t, b.Start())

	advance(s, 10*2500*time.Millisecond)
	newTestPlayer(t, w, 51, 200, 0)

	advance(s, 8*2500*time.Millisecond)
	assert.False(t, b.IsActive())
}

func TestDormancy_StartRefreshesCountdown(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	newTestPlayer(t, w, 50, 100, 0)

	tuning := quietTuning()
	tuning.AggroRadius = 10
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Activation: NewVicinityDormancy()})
	require.True(t, b.Start())

	advance(s, 10*2500*time.Millisecond)
	dorm := b.Activation().(*VicinityDormancy)
	assert.Equal(t, int32(8), dorm.Remaining())

	assert.False(t, b.Start(), "already active")
	assert.Equal(t, int32(18), dorm.Remaining(), "countdown refreshed")

	advance(s, 17*2500*time.Millisecond)
	assert.True(t, b.IsActive())
	advance(s, 2500*time.Millisecond)
	assert.False(t, b.IsActive())
}

func TestDormancy_WokenByVicinityEvent(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: quietTuning(), Activation: NewVicinityDormancy()})

	p := newTestPlayer(t, w, 50, 100, 0)
	assert.Equal(t, 1, bus.PublishTo(1, EventPlayerEnteredVicinity, p))
	assert.True(t, b.IsActive())
}

func TestBrain_AttackedStartsAndRetaliates(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	attacker := newTestPlayer(t, w, 50, 50, 0)

	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: quietTuning(), Policy: NewPassivePolicy()})
	bus.PublishTo(1, EventAttacked, attacker, attacker, int32(100))

	assert.True(t, b.IsActive())
	hate, ok := b.Aggro().Hate(50)
	require.True(t, ok)
	assert.Positive(t, hate)

	advance(s, 2500*time.Millisecond)
	assert.Equal(t, uint32(50), body.currentAttack())
}

func TestBrain_FactionCall(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()

	victim := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	ally := newTestBody(w, 2, model.FactionMonster, model.NewLocation(300, 0, 0, 0))
	farAlly := newTestBody(w, 3, model.FactionMonster, model.NewLocation(2000, 0, 0, 0))
	guard := newTestBody(w, 4, model.FactionGuard, model.NewLocation(100, 0, 0, 0))
	attacker := newTestPlayer(t, w, 50, 50, 0)

	opts := Options{Scheduler: s, Bus: bus, Tuning: quietTuning(), Policy: NewAggressivePolicy()}
	victimBrain := NewBrain(victim, opts)
	opts.Policy = NewAggressivePolicy()
	allyBrain := NewBrain(ally, opts)
	opts.Policy = NewAggressivePolicy()
	farBrain := NewBrain(farAlly, opts)
	opts.Policy = NewAggressivePolicy()
	guardBrain := NewBrain(guard, opts)

	bus.PublishTo(1, EventAttacked, attacker, attacker, int32(100))

	assert.True(t, victimBrain.Aggro().Contains(50))
	assert.True(t, victimBrain.IsActive())

	hate, ok := allyBrain.Aggro().Hate(50)
	require.True(t, ok, "ally answered the call")
	assert.Equal(t, int64(1), hate)
	assert.True(t, allyBrain.IsActive())

	assert.False(t, farBrain.Aggro().Contains(50), "out of call range")
	assert.False(t, guardBrain.Aggro().Contains(50), "different faction")
	assert.False(t, guardBrain.IsActive())
}

func TestAggressive_SpawnImmunity(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	newTestPlayer(t, w, 50, 100, 0)

	tuning := quietTuning()
	tuning.SpawnImmunityTicks = 2
	policy := NewAggressivePolicy()
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Policy: policy})

	require.True(t, b.Start())
	assert.Equal(t, int32(2), policy.ImmunityLeft())

	advance(s, 2*2500*time.Millisecond)
	assert.True(t, b.Aggro().IsEmpty(), "no scans while immune")
	assert.Zero(t, body.currentAttack())

	advance(s, 2500*time.Millisecond)
	assert.True(t, b.Aggro().Contains(50))
	assert.Equal(t, uint32(50), body.currentAttack())
}

func TestAggressive_AttackedBreaksImmunity(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	attacker := newTestPlayer(t, w, 50, 100, 0)

	tuning := quietTuning()
	tuning.SpawnImmunityTicks = 5
	policy := NewAggressivePolicy()
	NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: tuning, Policy: policy})

	bus.PublishTo(1, EventAttacked, attacker, attacker, int32(10))
	assert.Zero(t, policy.ImmunityLeft())
}

func TestAggressive_ReturnsHomeWhenChasedTooFar(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	home := model.NewLocation(0, 0, 0, 0)
	body := newTestBody(w, 1, model.FactionMonster, home)
	body.SetLocation(model.NewLocation(2000, 0, 0, 0))
	newTestPlayer(t, w, 50, 2100, 0)

	tuning := quietTuning()
	tuning.ChaseRange = 1000
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Policy: NewAggressivePolicy()})
	require.True(t, b.Start())

	advance(s, 2500*time.Millisecond)
	assert.True(t, b.Aggro().IsEmpty())
	assert.Zero(t, body.currentAttack())
	require.NotEmpty(t, body.paths)
	assert.Equal(t, home, body.paths[len(body.paths)-1])
}

func TestAggressive_ForgetsHateAtFullHealth(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	newTestPlayer(t, w, 50, 1000, 0)

	tuning := quietTuning()
	tuning.HateForgetChance = 1
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Policy: NewAggressivePolicy()})
	b.Aggro().Add(50, 10)

	require.True(t, b.Start())
	advance(s, 2500*time.Millisecond)
	assert.True(t, b.Aggro().IsEmpty())

	body.SetCurrentHP(100)
	b.Aggro().Add(50, 10)
	advance(s, 2500*time.Millisecond)
	assert.True(t, b.Aggro().Contains(50), "wounded brains remember")
}

func TestAggressive_WalksBackWhenDrifted(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	home := model.NewLocation(0, 0, 0, 0)
	body := newTestBody(w, 1, model.FactionMonster, home)
	body.SetLocation(model.NewLocation(1000, 0, 0, 0))

	tuning := quietTuning()
	tuning.MaxDriftRange = 300
	b := NewBrain(body, Options{Scheduler: s, Tuning: tuning, Policy: NewAggressivePolicy()})
	require.True(t, b.Start())

	advance(s, 2500*time.Millisecond)
	walk, ok := body.lastWalk()
	require.True(t, ok)
	assert.Equal(t, home, walk)
}

func TestAggressive_StopClearsTargets(t *testing.T) {
	s := newTestScheduler()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	newTestPlayer(t, w, 50, 100, 0)

	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning(), Policy: NewAggressivePolicy()})
	require.True(t, b.Start())
	advance(s, 2500*time.Millisecond)
	require.Equal(t, uint32(50), body.currentAttack())

	require.True(t, b.Stop())
	assert.True(t, b.Aggro().IsEmpty())
	assert.Zero(t, body.currentAttack())
}

func TestBrain_AggroListHelpers(t *testing.T) {
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	p := newTestPlayer(t, w, 50, 100, 0)
	b := NewBrain(body, Options{Tuning: quietTuning()})

	assert.Equal(t, int64(30), b.AddToAggroList(p, 30))
	assert.Equal(t, int64(20), b.AddToAggroList(p, -10))

	target, ok := b.AttackMostWanted()
	require.True(t, ok)
	assert.Equal(t, uint32(50), target.ObjectID())

	assert.True(t, b.RemoveFromAggroList(p))
	assert.False(t, b.RemoveFromAggroList(p))

	assert.Zero(t, b.AddToAggroList(nil, 10), "nil target ignored")
	assert.False(t, b.RemoveFromAggroList(nil))
	assert.True(t, b.Aggro().IsEmpty())

	_, ok = b.AttackMostWanted()
	assert.False(t, ok)
	assert.Zero(t, body.currentAttack())
}

// thinkOncePolicy runs fn on its first think, then behaves passively.
type thinkOncePolicy struct {
	*PassivePolicy
	once  sync.Once
	fn    func(*Brain)
	stops atomic.Int32
}

func newThinkOncePolicy(fn func(*Brain)) *thinkOncePolicy {
	return &thinkOncePolicy{PassivePolicy: NewPassivePolicy(), fn: fn}
}

func (p *thinkOncePolicy) Think(b *Brain) {
	p.once.Do(func() { p.fn(b) })
}

func (p *thinkOncePolicy) OnStop(*Brain) {
	p.stops.Add(1)
}

// advanceWithin fails the test if advancing the wheel by d takes longer than limit.
func advanceWithin(t *testing.T, s *Scheduler, d, limit time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		advance(s, d)
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatal("wheel blocked")
	}
}

func TestBrain_StopFromThink(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))

	tuning := quietTuning()
	tuning.LifecycleNotifications = true
	var p *thinkOncePolicy
	p = newThinkOncePolicy(func(b *Brain) {
		assert.True(t, b.Stop())
		assert.Zero(t, p.stops.Load(), "stop hook waits for the think")
	})
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: tuning, Policy: p})

	var stopped atomic.Int32
	bus.Subscribe(EventBrainStopped, func(Event) { stopped.Add(1) })

	require.True(t, b.Start())
	advanceWithin(t, s, 2500*time.Millisecond, 2*time.Second)

	assert.False(t, b.IsActive())
	assert.Equal(t, int64(1), b.Thinks())
	assert.Equal(t, int32(1), p.stops.Load())
	assert.Equal(t, int32(1), stopped.Load())
	assert.Equal(t, 0, s.Count())

	advance(s, 5*time.Second)
	assert.Equal(t, int64(1), b.Thinks(), "no thinks after Stop")
}

func TestBrain_TransitionsFromThink(t *testing.T) {
	w := newTestWorld()
	caster := newTestPlayer(t, w, 50, 100, 0)

	tests := []struct {
		name   string
		fn     func(*Brain)
		state  State
		owner  uint32
		active bool
	}{
		{"fear", func(b *Brain) { b.Fear(time.Minute) }, StateFeared, 0, true},
		{"charm", func(b *Brain) { b.Charm(caster, time.Minute) }, StateCharmed, 0, true},
		{"control", func(b *Brain) { b.Control(100) }, StateControlledPet, 100, true},
		{"control then release", func(b *Brain) {
			b.Control(100)
			b.Release()
		}, StateNormal, 0, true},
		{"detach", func(b *Brain) {
			b.Fear(time.Minute)
			b.Detach()
		}, StateFeared, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler()
			body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
			var during State
			p := newThinkOncePolicy(func(b *Brain) {
				tt.fn(b)
				during = b.State()
			})
			b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning(), Policy: p})

			require.True(t, b.Start())
			advanceWithin(t, s, 2500*time.Millisecond, 2*time.Second)

			assert.Equal(t, StateNormal, during, "applied once the think returns")
			assert.Equal(t, tt.state, b.State())
			assert.Equal(t, tt.owner, b.Owner())
			assert.Equal(t, tt.active, b.IsActive())
			if !tt.active {
				assert.Equal(t, 0, s.Count(), "think chain and expiry cancelled")
			}
		})
	}
}

func TestBrain_PublishToSelfFromThink(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	attacker := newTestPlayer(t, w, 50, 50, 0)

	p := newThinkOncePolicy(func(b *Brain) {
		assert.Equal(t, 1, b.Bus().PublishTo(1, EventAttacked, attacker, attacker, int32(100)))
	})
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: quietTuning(), Policy: p})

	require.True(t, b.Start())
	advanceWithin(t, s, 2500*time.Millisecond, 2*time.Second)

	hate, ok := b.Aggro().Hate(50)
	require.True(t, ok, "event delivered after the think")
	assert.Positive(t, hate)
}

// enterTracker counts notifications delivered to it while it is not the
// current policy.
type enterTracker struct {
	*PassivePolicy
	entered atomic.Bool
	stray   atomic.Int32
	seen    atomic.Int32
}

func (p *enterTracker) Enter(*Brain) { p.entered.Store(true) }
func (p *enterTracker) Exit(*Brain)  { p.entered.Store(false) }

func (p *enterTracker) Notify(*Brain, Event) {
	p.seen.Add(1)
	if !p.entered.Load() {
		p.stray.Add(1)
	}
}

func TestBrain_NotifySerializedWithTransitions(t *testing.T) {
	s := newTestScheduler()
	body := newTestBody(newTestWorld(), 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	p := &enterTracker{PassivePolicy: NewPassivePolicy()}
	p.entered.Store(true)
	b := NewBrain(body, Options{Scheduler: s, Tuning: quietTuning(), Policy: p})

	stop := make(chan struct{})
	var transitions sync.WaitGroup
	transitions.Go(func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			b.Fear(100 * time.Millisecond)
			s.Advance()
			b.Release()
		}
	})

	var notifiers sync.WaitGroup
	for range 4 {
		notifiers.Go(func() {
			for range 500 {
				b.Notify(Event{Tag: EventOwnerCommand})
			}
		})
	}
	notifiers.Wait()
	close(stop)
	transitions.Wait()

	assert.Positive(t, p.seen.Load())
	assert.Zero(t, p.stray.Load(), "no event reached an exited policy")
}

func TestBrain_ConcurrentStartStop(t *testing.T) {
	s := newTestScheduler()
	bus := NewBus()
	w := newTestWorld()
	body := newTestBody(w, 1, model.FactionMonster, model.NewLocation(0, 0, 0, 0))
	attacker := newTestPlayer(t, w, 50, 50, 0)
	b := NewBrain(body, Options{Scheduler: s, Bus: bus, Tuning: quietTuning()})

	stop := make(chan struct{})
	var overfull atomic.Int32
	var wheel sync.WaitGroup
	wheel.Go(func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			s.Advance()
			// one think chain plus at most one fear expiry
			if s.Count() > 2 {
				overfull.Add(1)
			}
		}
	})

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Go(func() {
			for j := range 200 {
				switch (i + j) % 4 {
				case 0:
					b.Start()
				case 1:
					b.Stop()
				case 2:
					bus.PublishTo(1, EventAttacked, attacker, attacker, int32(10))
				case 3:
					b.Fear(300 * time.Millisecond)
				}
			}
		})
	}
	wg.Wait()
	close(stop)
	wheel.Wait()

	assert.Zero(t, overfull.Load())

	// Release cancels any pending expiry; what remains is the think chain.
	b.Release()
	if b.IsActive() {
		assert.Equal(t, 1, s.Count())
	} else {
		assert.Equal(t, 0, s.Count())
	}

	b.Stop()
	b.Detach()
	assert.False(t, b.IsActive())
	assert.Equal(t, 0, s.Count())
}
