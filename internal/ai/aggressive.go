package ai

import (
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/npcbrain/internal/model"
)

// retaliate records hate against the attacker carried by an EventAttacked.
func retaliate(b *Brain, ev Event) (Creature, bool) {
	attacker, ok := ev.Arg(0).(Creature)
	if !ok || attacker == nil || attacker.ObjectID() == b.Body().ObjectID() {
		return nil, false
	}
	damage, _ := ev.Arg(1).(int32)

	hate := max(CalcHate(damage, b.Body().Level()), 1)
	b.Aggro().AddDamage(attacker.ObjectID(), int64(damage), hate)

	if IsDebugEnabled() {
		slog.Debug("brain notified of damage",
			"npc", b.Body().Name(),
			"objectID", b.Body().ObjectID(),
			"attackerID", attacker.ObjectID(),
			"damage", damage,
			"hate", hate)
	}
	return attacker, true
}

func combatInterval(b *Brain) time.Duration {
	if b.Aggro().IsEmpty() {
		return 0
	}
	return b.Tuning().AttackThinkInterval
}

// PassivePolicy never looks for targets but fights back when attacked.
type PassivePolicy struct{}

// NewPassivePolicy creates a passive policy.
func NewPassivePolicy() *PassivePolicy {
	return &PassivePolicy{}
}

func (p *PassivePolicy) Enter(*Brain) {}
func (p *PassivePolicy) Exit(*Brain)  {}

func (p *PassivePolicy) Think(b *Brain) {
	if b.Aggro().IsEmpty() {
		return
	}
	b.AttackMostWanted()
}

func (p *PassivePolicy) Notify(b *Brain, ev Event) {
	if ev.Tag == EventAttacked {
		retaliate(b, ev)
	}
}

func (p *PassivePolicy) Interval(b *Brain) time.Duration {
	return combatInterval(b)
}

func (p *PassivePolicy) OnStop(b *Brain) {
	b.Aggro().Clear()
	b.Body().StopAttack()
}

// AggressivePolicy scans for hostile players and NPCs and attacks the most hated.
// Supplements: spawn immunity, hate decay at full HP, return home when chased
// too far, faction call when attacked, and random wander while idle.
type AggressivePolicy struct {
	// Thinks left before the first scan after Start.
	immunity atomic.Int32
}

// NewAggressivePolicy creates an aggressive policy.
func NewAggressivePolicy() *AggressivePolicy {
	return &AggressivePolicy{}
}

func (p *AggressivePolicy) Enter(*Brain) {}
func (p *AggressivePolicy) Exit(*Brain)  {}

// OnStart arms the spawn immunity window.
func (p *AggressivePolicy) OnStart(b *Brain) {
	p.immunity.Store(b.Tuning().SpawnImmunityTicks)
}

// OnStop forgets all targets.
func (p *AggressivePolicy) OnStop(b *Brain) {
	b.Aggro().Clear()
	b.Body().StopAttack()
}

func (p *AggressivePolicy) Think(b *Brain) {
	if p.immunity.Load() > 0 {
		p.immunity.Add(-1)
	} else {
		b.CheckPlayerAggro()
		b.CheckNPCAggro()
	}

	if p.forgetHate(b) {
		return
	}
	if p.tooFarFromHome(b) {
		p.returnHome(b)
		return
	}

	target, ok := b.AttackMostWanted()
	if !ok {
		p.wander(b)
		return
	}

	if IsDebugEnabled() {
		slog.Debug("brain attacking", "npc", b.Body().Name(), "objectID", b.Body().ObjectID(), "targetID", target.ObjectID())
	}
}

func (p *AggressivePolicy) Notify(b *Brain, ev Event) {
	switch ev.Tag {
	case EventAttacked:
		p.immunity.Store(0)
		if attacker, ok := retaliate(b, ev); ok {
			callFaction(b, attacker)
		}

	case EventFactionCall:
		attacker, ok := ev.Arg(0).(Creature)
		if !ok || attacker == nil || attacker.ObjectID() == b.Body().ObjectID() || !attacker.IsAlive() {
			return
		}
		p.immunity.Store(0)
		b.Aggro().Merge(attacker.ObjectID(), 1)

		if IsDebugEnabled() {
			slog.Debug("faction call answered", "npc", b.Body().Name(), "targetID", attacker.ObjectID())
		}
	}
}

func (p *AggressivePolicy) Interval(b *Brain) time.Duration {
	return combatInterval(b)
}

// ImmunityLeft returns thinks left in the spawn immunity window.
func (p *AggressivePolicy) ImmunityLeft() int32 {
	return p.immunity.Load()
}

// forgetHate clears the table with 1/HateForgetChance when the body is unhurt.
func (p *AggressivePolicy) forgetHate(b *Brain) bool {
	chance := b.Tuning().HateForgetChance
	body := b.Body()
	if chance <= 0 || b.Aggro().IsEmpty() || body.CurrentHP() < body.MaxHP() {
		return false
	}
	if rand.Int32N(chance) != 0 {
		return false
	}

	b.Aggro().Clear()
	body.StopAttack()

	if IsDebugEnabled() {
		slog.Debug("hate decayed, cleared aggro list", "npc", body.Name(), "objectID", body.ObjectID())
	}
	return true
}

func (p *AggressivePolicy) tooFarFromHome(b *Brain) bool {
	chase := b.Tuning().ChaseRange
	if chase <= 0 || b.Aggro().IsEmpty() {
		return false
	}
	body := b.Body()
	return !body.Location().InRange(body.Home(), chase)
}

func (p *AggressivePolicy) returnHome(b *Brain) {
	body := b.Body()
	b.Aggro().Clear()
	body.StopAttack()
	body.PathTo(body.Home())

	if IsDebugEnabled() {
		slog.Debug("returning home", "npc", body.Name(), "objectID", body.ObjectID())
	}
}

// wander walks back when drifted too far from home, otherwise takes an
// occasional random step near it.
func (p *AggressivePolicy) wander(b *Brain) {
	t := b.Tuning()
	body := b.Body()
	home := body.Home()

	if t.MaxDriftRange > 0 && !body.Location().InRange(home, t.MaxDriftRange) {
		body.WalkTo(home)
		return
	}
	if t.RandomWalkChance <= 0 || t.MaxDriftRange <= 0 || rand.Int32N(t.RandomWalkChance) != 0 {
		return
	}

	dx := rand.Int32N(t.MaxDriftRange*2+1) - t.MaxDriftRange
	dy := rand.Int32N(t.MaxDriftRange*2+1) - t.MaxDriftRange
	body.WalkTo(model.NewLocation(home.X+dx, home.Y+dy, home.Z, home.Heading))
}

// callFaction asks same-faction NPCs nearby to join the fight.
func callFaction(b *Brain, attacker Creature) {
	body := b.Body()
	radius := b.Tuning().FactionCallRange
	bus := b.Bus()
	if radius <= 0 || bus == nil || body.Faction() == "" {
		return
	}

	for npc := range body.NPCsInRadius(radius) {
		if npc.ObjectID() == body.ObjectID() || npc.Faction() != body.Faction() || !npc.IsAlive() {
			continue
		}
		bus.PublishTo(npc.ObjectID(), EventFactionCall, body, attacker)
	}
}
