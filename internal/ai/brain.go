package ai

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrUnknownBrainType is returned when a spawn names a brain type nobody registered.
var ErrUnknownBrainType = errors.New("unknown brain type")

// State is the behavior mode of a brain.
type State int32

const (
	// StateNormal - the brain's own policy (aggressive, passive, ...)
	StateNormal State = iota
	// StateFeared - fleeing from the nearest player
	StateFeared
	// StateCharmed - fighting for the caster's side
	StateCharmed
	// StateControlledPet - obeying an owner
	StateControlledPet
)

// String returns human-readable state name
func (s State) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateFeared:
		return "FEARED"
	case StateCharmed:
		return "CHARMED"
	case StateControlledPet:
		return "CONTROLLED_PET"
	default:
		return "UNKNOWN"
	}
}

// Policy is the behavior of one brain state. Instances are per brain.
// Enter, Exit, Think and Notify run under the brain's state lock. Brain calls
// they make that need the lock (Stop, Fear, Release, ...) are queued and
// applied right after the policy method returns.
type Policy interface {
	Enter(b *Brain)
	Exit(b *Brain)
	Think(b *Brain)
	Notify(b *Brain, ev Event)
	// Interval returns the delay until the next think; 0 means ThinkInterval.
	Interval(b *Brain) time.Duration
}

// Optional lifecycle hooks of a Policy.
type (
	startHook interface{ OnStart(b *Brain) }
	stopHook  interface{ OnStop(b *Brain) }
)

type stateSlot struct {
	state  State
	policy Policy
}

// Options configure a Brain.
type Options struct {
	Scheduler  *Scheduler
	Bus        *Bus
	LOS        LineOfSight
	Tuning     Tuning
	Activation Activation // nil = AlwaysActive
	Policy     Policy     // normal-state policy, nil = passive
	PetSpellID int32      // ranged spell used when controlled as a pet, 0 = melee only
}

// Brain drives one Body. It owns a scheduled think chain, an aggro table and
// a state machine over policies.
//
// Start/Stop are serialized by mu. Thinks, notifications, state transitions
// and start/stop hooks are serialized by stateMu. Work that finds stateMu
// busy is queued and run by the holder before it releases the lock, so no
// brain method blocks on a think in flight, including one it was called from.
// Once Stop returns no new think starts.
type Brain struct {
	body       Body
	sched      *Scheduler
	bus        *Bus
	los        LineOfSight
	tuning     Tuning
	activation Activation
	selector   *AggroSelector
	petSpell   int32

	interval atomic.Int64

	mu   sync.Mutex
	task *Task
	run  uint64

	stateMu sync.Mutex
	cur     atomic.Pointer[stateSlot]
	base    stateSlot
	owner   atomic.Uint32
	normal  Policy
	gen     uint64
	expiry  *Task

	pendingMu sync.Mutex
	pending   []func()

	thinks atomic.Int64

	unsubscribe []func()
}

// NewBrain creates an inactive brain for body.
func NewBrain(body Body, opts Options) *Brain {
	if opts.Activation == nil {
		opts.Activation = AlwaysActive{}
	}
	if opts.Policy == nil {
		opts.Policy = NewPassivePolicy()
	}

	b := &Brain{
		body:       body,
		sched:      opts.Scheduler,
		bus:        opts.Bus,
		los:        opts.LOS,
		tuning:     opts.Tuning.normalized(),
		activation: opts.Activation,
		selector:   NewAggroSelector(body, NewAggroTable()),
		petSpell:   opts.PetSpellID,
		normal:     opts.Policy,
	}
	b.interval.Store(int64(b.tuning.ThinkInterval))
	b.base = stateSlot{state: StateNormal, policy: opts.Policy}
	b.cur.Store(&stateSlot{state: StateNormal, policy: opts.Policy})

	if b.bus != nil {
		for _, tag := range []EventTag{EventAttacked, EventPlayerEnteredVicinity, EventFactionCall, EventOwnerCommand} {
			b.unsubscribe = append(b.unsubscribe, b.bus.SubscribeScoped(tag, body.ObjectID(), b.Notify))
		}
	}

	return b
}

// Body returns the driven body.
func (b *Brain) Body() Body {
	return b.body
}

// Tuning returns the brain's tuning.
func (b *Brain) Tuning() Tuning {
	return b.tuning
}

// Bus returns the notification bus (may be nil).
func (b *Brain) Bus() *Bus {
	return b.bus
}

// Activation returns the activation strategy.
func (b *Brain) Activation() Activation {
	return b.activation
}

// Selector returns the target selector.
func (b *Brain) Selector() *AggroSelector {
	return b.selector
}

// Aggro returns the aggro table.
func (b *Brain) Aggro() *AggroTable {
	return b.selector.Table()
}

// ThinkInterval returns the default delay between thinks.
func (b *Brain) ThinkInterval() time.Duration {
	return time.Duration(b.interval.Load())
}

// SetThinkInterval changes the delay between thinks.
// Non-positive values reset it to the configured default.
func (b *Brain) SetThinkInterval(d time.Duration) {
	if d <= 0 {
		d = b.tuning.ThinkInterval
	}
	b.interval.Store(int64(d))
}

// Thinks returns number of completed thinks.
func (b *Brain) Thinks() int64 {
	return b.thinks.Load()
}

// State returns the current state.
func (b *Brain) State() State {
	return b.cur.Load().state
}

// Policy returns the policy of the current state.
func (b *Brain) Policy() Policy {
	return b.cur.Load().policy
}

// IsActive reports whether a think chain is scheduled.
func (b *Brain) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.task != nil && b.task.Alive()
}

func (b *Brain) bodyValid() bool {
	return b.body.IsAlive() && b.body.IsActive()
}

// Start schedules the think chain. Returns false if the body is dead or out
// of the world, if the activation strategy refuses, if the brain is already
// active, or if the scheduler rejects the task. An accepted Start on an
// already active brain still refreshes the activation strategy.
func (b *Brain) Start() bool {
	if !b.bodyValid() {
		return false
	}
	if !b.activation.CanStart(b) {
		return false
	}

	b.mu.Lock()
	b.activation.OnStart(b)
	if b.task != nil && b.task.Alive() {
		b.mu.Unlock()
		return false
	}
	if b.sched == nil {
		b.mu.Unlock()
		slog.Error("brain start failed", "npc", b.body.Name(), "objectID", b.body.ObjectID(), "err", ErrSchedulerStopped)
		return false
	}

	b.run++
	run := b.run
	task, err := b.sched.Schedule(b.ThinkInterval(), func() time.Duration {
		return b.tick(run)
	})
	if err != nil {
		b.mu.Unlock()
		slog.Error("brain start failed", "npc", b.body.Name(), "objectID", b.body.ObjectID(), "err", err)
		return false
	}
	b.task = task
	b.mu.Unlock()

	b.withState(func() {
		if h, ok := b.cur.Load().policy.(startHook); ok {
			h.OnStart(b)
		}
		if IsDebugEnabled() {
			slog.Debug("brain started", "npc", b.body.Name(), "objectID", b.body.ObjectID(), "state", b.State())
		}
		b.publishLifecycle(EventBrainStarted)
	})
	return true
}

// Stop cancels the think chain. Returns false if the brain was not active.
// Safe from any goroutine, including from inside a policy method: the stop
// hook then runs once that method returns.
func (b *Brain) Stop() bool {
	return b.stop(0)
}

// stop cancels the chain; a non-zero run restricts it to that chain.
func (b *Brain) stop(run uint64) bool {
	b.mu.Lock()
	if b.task == nil || (run != 0 && b.run != run) {
		b.mu.Unlock()
		return false
	}
	task := b.task
	b.task = nil
	cancelled := task.Cancel()
	b.mu.Unlock()

	if !cancelled {
		return false
	}

	b.withState(func() {
		if h, ok := b.cur.Load().policy.(stopHook); ok {
			h.OnStop(b)
		}
		if IsDebugEnabled() {
			slog.Debug("brain stopped", "npc", b.body.Name(), "objectID", b.body.ObjectID())
		}
		b.publishLifecycle(EventBrainStopped)
	})
	return true
}

func (b *Brain) running(run uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.run == run && b.task != nil && b.task.Alive()
}

// tick is the scheduled callback of one think chain.
func (b *Brain) tick(run uint64) time.Duration {
	if !b.running(run) {
		return 0
	}
	if !b.bodyValid() {
		b.stop(run)
		return 0
	}
	if !b.activation.BeforeThink(b) {
		b.stop(run)
		return 0
	}

	next, ok := b.think(run)
	if !ok {
		return 0
	}

	b.thinks.Add(1)
	if !b.running(run) {
		// stopped from inside the think
		return 0
	}
	b.publishLifecycle(EventBrainThink)

	if next <= 0 {
		next = b.ThinkInterval()
	}
	return next
}

// think runs the current policy under the state lock. Whatever the policy
// queued meanwhile is applied before the lock is released.
func (b *Brain) think(run uint64) (time.Duration, bool) {
	b.stateMu.Lock()
	defer b.unlockState()

	if !b.running(run) {
		return 0, false
	}
	slot := b.cur.Load()
	slot.policy.Think(b)
	return slot.policy.Interval(b), true
}

// withState runs fn under the state lock. If the lock is held, fn is queued
// for the holder, which may be the caller itself further up the stack.
// Returns true if fn ran before withState returned.
func (b *Brain) withState(fn func()) bool {
	if b.stateMu.TryLock() {
		defer b.unlockState()
		fn()
		return true
	}

	b.pendingMu.Lock()
	b.pending = append(b.pending, fn)
	b.pendingMu.Unlock()

	// The holder may have released between TryLock and the append.
	if b.stateMu.TryLock() {
		b.unlockState()
	}
	return false
}

// unlockState drains queued work and releases the state lock. Work queued
// after the release but before the re-check is picked up by another round.
func (b *Brain) unlockState() {
	for {
		for {
			b.pendingMu.Lock()
			ops := b.pending
			b.pending = nil
			b.pendingMu.Unlock()
			if len(ops) == 0 {
				break
			}
			for _, op := range ops {
				b.runQueued(op)
			}
		}
		b.stateMu.Unlock()

		b.pendingMu.Lock()
		more := len(b.pending) > 0
		b.pendingMu.Unlock()
		if !more || !b.stateMu.TryLock() {
			return
		}
	}
}

// runQueued keeps a panicking op from leaving the state lock held.
func (b *Brain) runQueued(op func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("queued brain operation panicked", "npc", b.body.Name(), "objectID", b.body.ObjectID(), "panic", r)
		}
	}()
	op()
}

func (b *Brain) publishLifecycle(tag EventTag) {
	if b.bus == nil || !b.tuning.LifecycleNotifications {
		return
	}
	b.bus.Publish(tag, b.body)
}

// Detach stops the brain and drops its bus subscriptions.
// Used when the body leaves the world for good.
func (b *Brain) Detach() {
	b.Stop()

	b.withState(func() {
		b.gen++
		if b.expiry != nil {
			b.expiry.Cancel()
			b.expiry = nil
		}
	})

	for _, unsub := range b.unsubscribe {
		unsub()
	}
	b.unsubscribe = nil
}

// Notify delivers an event to the brain. A player entering the vicinity
// starts the brain; being attacked or called for help wakes it up before
// the event goes to the current policy.
func (b *Brain) Notify(ev Event) {
	if ev.Tag == EventPlayerEnteredVicinity {
		b.Start()
		return
	}

	if ev.Tag == EventAttacked || ev.Tag == EventFactionCall {
		b.Start()
	}
	// The policy is picked under the lock so a concurrent transition can't
	// hand the event to a policy that already exited.
	b.withState(func() {
		b.cur.Load().policy.Notify(b, ev)
	})
}

// Fear makes the brain flee from players for d, then return to its base state.
func (b *Brain) Fear(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	b.transition(stateSlot{state: StateFeared, policy: NewFearPolicy()}, d)
	return true
}

// Charm makes the brain fight on the caster's side for d.
func (b *Brain) Charm(caster Creature, d time.Duration) bool {
	if caster == nil || d <= 0 || caster.ObjectID() == b.body.ObjectID() {
		return false
	}
	b.transition(stateSlot{state: StateCharmed, policy: NewCharmPolicy(caster)}, d)
	return true
}

// Control binds the brain to an owner as a pet until Release.
func (b *Brain) Control(ownerID uint32) bool {
	if ownerID == 0 || ownerID == b.body.ObjectID() {
		return false
	}

	b.withState(func() {
		b.setBaseLocked(stateSlot{state: StateControlledPet, policy: NewPetPolicy(ownerID, b.petSpell, b.los)}, ownerID)
		b.switchLocked(b.base, 0)
	})
	return true
}

// Release drops any special state and returns to the normal policy.
// Returns false if the brain was already normal. Called from inside a policy
// method the release is queued and the result reflects the state at the call.
func (b *Brain) Release() bool {
	released := false
	applied := b.withState(func() {
		b.setBaseLocked(stateSlot{state: StateNormal, policy: b.normal}, 0)
		if b.cur.Load().state == StateNormal {
			return
		}
		b.switchLocked(b.base, 0)
		released = true
	})
	if !applied {
		return b.State() != StateNormal
	}
	return released
}

// Owner returns the controlling owner's object ID, 0 if not a pet.
func (b *Brain) Owner() uint32 {
	return b.owner.Load()
}

func (b *Brain) setBaseLocked(base stateSlot, ownerID uint32) {
	b.base = base
	b.owner.Store(ownerID)
}

func (b *Brain) transition(next stateSlot, d time.Duration) {
	b.withState(func() {
		b.switchLocked(next, d)
	})
}

// switchLocked swaps the current state. A positive d schedules a return to
// the base state; the generation guard drops the expiry if another
// transition happens first.
func (b *Brain) switchLocked(next stateSlot, d time.Duration) {
	prev := b.cur.Load()
	prev.policy.Exit(b)

	b.gen++
	if b.expiry != nil {
		b.expiry.Cancel()
		b.expiry = nil
	}

	b.cur.Store(&next)
	next.policy.Enter(b)

	if d > 0 && b.sched != nil {
		gen := b.gen
		task, err := b.sched.Schedule(d, func() time.Duration {
			b.expire(gen)
			return 0
		})
		if err != nil {
			slog.Error("scheduling state expiry", "npc", b.body.Name(), "state", next.state, "err", err)
		} else {
			b.expiry = task
		}
	}

	if IsDebugEnabled() {
		slog.Debug("brain state changed",
			"npc", b.body.Name(),
			"objectID", b.body.ObjectID(),
			"from", prev.state,
			"to", next.state)
	}
}

func (b *Brain) expire(gen uint64) {
	b.withState(func() {
		if b.gen != gen {
			return
		}
		b.expiry = nil
		b.switchLocked(b.base, 0)
	})
}

// AddToAggroList adds amount of hate (may be negative) against target.
// A nil target is ignored and yields 0.
func (b *Brain) AddToAggroList(target Creature, amount int64) int64 {
	if target == nil {
		b.debugNilTarget("add to aggro list")
		return 0
	}
	return b.Aggro().Add(target.ObjectID(), amount)
}

// RemoveFromAggroList forgets target.
func (b *Brain) RemoveFromAggroList(target Creature) bool {
	if target == nil {
		b.debugNilTarget("remove from aggro list")
		return false
	}
	return b.Aggro().Remove(target.ObjectID())
}

func (b *Brain) debugNilTarget(op string) {
	if IsDebugEnabled() {
		slog.Debug("nil aggro target ignored", "npc", b.body.Name(), "objectID", b.body.ObjectID(), "op", op)
	}
}

// CheckPlayerAggro merges hostile players within the aggro radius.
func (b *Brain) CheckPlayerAggro() int {
	return b.selector.CheckPlayerAggro(b.tuning.AggroRadius)
}

// CheckNPCAggro merges hostile NPCs within the aggro radius.
func (b *Brain) CheckNPCAggro() int {
	return b.selector.CheckNPCAggro(b.tuning.AggroRadius)
}

// AttackMostWanted attacks the most hated valid target.
func (b *Brain) AttackMostWanted() (Creature, bool) {
	return b.selector.AttackMostWanted()
}

// Attack orders the body to fight target. Pets only take orders from their owner.
func (b *Brain) Attack(target Creature) bool {
	if b.ignoresHelpers("attack") || target == nil {
		return false
	}
	b.Aggro().Add(target.ObjectID(), 1)
	b.body.StartAttack(target)
	return true
}

// Follow orders the body to follow target. Pets only take orders from their owner.
func (b *Brain) Follow(target Creature) bool {
	if b.ignoresHelpers("follow") || target == nil {
		return false
	}
	b.body.Follow(target)
	return true
}

// Stay orders the body to stop moving and fighting. Pets only take orders from their owner.
func (b *Brain) Stay() bool {
	if b.ignoresHelpers("stay") {
		return false
	}
	b.body.StopAttack()
	b.body.StopFollowing()
	return true
}

func (b *Brain) ignoresHelpers(order string) bool {
	if b.State() != StateControlledPet {
		return false
	}
	if IsDebugEnabled() {
		slog.Debug("pet ignores framework order", "npc", b.body.Name(), "order", order)
	}
	return true
}

// Command relays an owner command to a pet. Returns false if the brain is not a pet.
func (b *Brain) Command(cmd PetCommand, args ...any) bool {
	p, ok := b.Policy().(*PetPolicy)
	if !ok {
		return false
	}
	ev := Event{Tag: EventOwnerCommand, Args: append([]any{cmd}, args...)}
	b.withState(func() {
		if b.cur.Load().policy == Policy(p) {
			p.Notify(b, ev)
		}
	})
	return true
}
