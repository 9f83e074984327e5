package ai

import "time"

// CharmPolicy fights for the caster's side. The caster itself is never a target.
type CharmPolicy struct {
	caster   Creature
	casterID uint32
}

// NewCharmPolicy creates a charm policy bound to caster.
func NewCharmPolicy(caster Creature) *CharmPolicy {
	return &CharmPolicy{caster: caster, casterID: caster.ObjectID()}
}

// Caster returns the charming creature's object ID.
func (p *CharmPolicy) Caster() uint32 {
	return p.casterID
}

func (p *CharmPolicy) Enter(b *Brain) {
	b.Aggro().Clear()
	b.Body().StopAttack()
	b.Selector().SetAllegiance(p.caster.Faction(), p.casterID)
}

func (p *CharmPolicy) Exit(b *Brain) {
	b.Selector().ResetAllegiance()
	b.Aggro().Clear()
	b.Body().StopAttack()
}

func (p *CharmPolicy) Think(b *Brain) {
	b.Aggro().Remove(p.casterID)
	b.CheckPlayerAggro()
	b.CheckNPCAggro()

	if _, ok := b.AttackMostWanted(); ok {
		return
	}

	if caster, ok := b.Body().Resolve(p.casterID); ok && caster.IsAlive() {
		b.Body().Follow(caster)
	}
}

func (p *CharmPolicy) Notify(b *Brain, ev Event) {
	if ev.Tag != EventAttacked {
		return
	}
	if attacker, ok := ev.Arg(0).(Creature); ok && attacker != nil && attacker.ObjectID() == p.casterID {
		return
	}
	retaliate(b, ev)
}

func (p *CharmPolicy) Interval(b *Brain) time.Duration {
	return combatInterval(b)
}
