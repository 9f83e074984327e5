package ai

import (
	"log/slog"
	"time"
)

// FearPolicy runs away from the nearest player. It never attacks.
type FearPolicy struct{}

// NewFearPolicy creates a fear policy.
func NewFearPolicy() *FearPolicy {
	return &FearPolicy{}
}

func (p *FearPolicy) Enter(b *Brain) {
	b.Body().StopAttack()
}

func (p *FearPolicy) Exit(*Brain) {}

func (p *FearPolicy) Think(b *Brain) {
	body := b.Body()
	threat, ok := nearestPlayer(body, b.Tuning().VisibilityRadius)
	if !ok {
		return
	}

	dst := body.Location().AwayFrom(threat.Location(), b.Tuning().FleeDistance)
	body.StopAttack()
	body.StopFollowing()
	body.WalkTo(dst)

	if IsDebugEnabled() {
		slog.Debug("fleeing", "npc", body.Name(), "from", threat.ObjectID(), "toX", dst.X, "toY", dst.Y)
	}
}

// Notify still records hate so the brain remembers attackers once the fear ends.
func (p *FearPolicy) Notify(b *Brain, ev Event) {
	if ev.Tag == EventAttacked {
		retaliate(b, ev)
	}
}

func (p *FearPolicy) Interval(b *Brain) time.Duration {
	return b.Tuning().FearThinkInterval
}

func nearestPlayer(body Body, radius int32) (Creature, bool) {
	from := body.Location()

	var (
		best     Creature
		bestDist int64
	)
	for c := range body.PlayersInRadius(radius) {
		if !c.IsAlive() || !c.IsActive() {
			continue
		}
		d := from.DistanceSquared(c.Location())
		if best == nil || d < bestDist || (d == bestDist && c.ObjectID() < best.ObjectID()) {
			best, bestDist = c, d
		}
	}
	return best, best != nil
}
