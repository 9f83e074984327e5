package ai

import (
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/npcbrain/internal/model"
)

// PetCommand is an order from a pet's owner.
type PetCommand int

const (
	// CommandFollow - follow the owner
	CommandFollow PetCommand = iota
	// CommandStay - hold position
	CommandStay
	// CommandGoto - walk to a location (arg: model.Location)
	CommandGoto
	// CommandAttack - fight the owner's current target
	CommandAttack
)

// String returns human-readable command name
func (c PetCommand) String() string {
	switch c {
	case CommandFollow:
		return "FOLLOW"
	case CommandStay:
		return "STAY"
	case CommandGoto:
		return "GOTO"
	case CommandAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}

// PetPolicy obeys an owner. The attack target is always the owner's current
// target. Ranged spells go through an asynchronous line-of-sight check whose
// reply is dropped if anything changed in the meantime.
type PetPolicy struct {
	ownerID uint32
	spellID int32
	los     LineOfSight

	mu        sync.Mutex
	mode      PetCommand // CommandFollow, CommandStay or CommandGoto
	dest      model.Location
	attacking bool
	losGen    uint64
	pending   bool
}

// NewPetPolicy creates a pet policy. spellID 0 means melee only; nil los casts without checking.
func NewPetPolicy(ownerID uint32, spellID int32, los LineOfSight) *PetPolicy {
	return &PetPolicy{
		ownerID: ownerID,
		spellID: spellID,
		los:     los,
		mode:    CommandFollow,
	}
}

// OwnerID returns the owner's object ID.
func (p *PetPolicy) OwnerID() uint32 {
	return p.ownerID
}

// Mode returns the current walk mode and whether an attack order is active.
func (p *PetPolicy) Mode() (PetCommand, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode, p.attacking
}

// invalidateLocked drops any pending line-of-sight reply.
func (p *PetPolicy) invalidateLocked() {
	p.losGen++
	p.pending = false
}

func (p *PetPolicy) Enter(b *Brain) {
	p.mu.Lock()
	p.mode = CommandFollow
	p.attacking = false
	p.invalidateLocked()
	p.mu.Unlock()

	b.Aggro().Clear()
	b.Body().StopAttack()
}

func (p *PetPolicy) Exit(b *Brain) {
	p.mu.Lock()
	p.attacking = false
	p.invalidateLocked()
	p.mu.Unlock()

	b.Body().StopAttack()
	b.Body().StopFollowing()
}

func (p *PetPolicy) Think(b *Brain) {
	body := b.Body()
	owner, ok := body.Resolve(p.ownerID)
	if !ok || !owner.IsActive() {
		body.StopAttack()
		body.StopFollowing()
		return
	}

	p.mu.Lock()
	mode, attacking := p.mode, p.attacking
	p.mu.Unlock()

	if attacking {
		if target, ok := p.ownerTarget(body, owner); ok {
			p.engage(b, target)
			return
		}
		body.StopAttack()
	}

	if mode == CommandFollow && !body.Location().InRange(owner.Location(), b.Tuning().PetFollowDistance) {
		body.Follow(owner)
	}
}

func (p *PetPolicy) Notify(b *Brain, ev Event) {
	if ev.Tag != EventOwnerCommand {
		return
	}
	if ev.Sender != nil && ev.Sender.ObjectID() != p.ownerID {
		return
	}
	cmd, ok := ev.Arg(0).(PetCommand)
	if !ok {
		return
	}

	body := b.Body()
	dest, hasDest := ev.Arg(1).(model.Location)
	if cmd == CommandGoto && !hasDest {
		return
	}

	p.mu.Lock()
	p.invalidateLocked()
	switch cmd {
	case CommandAttack:
		p.attacking = true
	case CommandFollow, CommandStay:
		p.mode = cmd
		p.attacking = false
	case CommandGoto:
		p.mode = CommandGoto
		p.dest = dest
		p.attacking = false
	}
	p.mu.Unlock()

	switch cmd {
	case CommandFollow:
		body.StopAttack()
		if owner, ok := body.Resolve(p.ownerID); ok {
			body.Follow(owner)
		}
	case CommandStay:
		body.StopAttack()
		body.StopFollowing()
	case CommandGoto:
		body.StopAttack()
		body.StopFollowing()
		body.WalkTo(dest)
	}

	if IsDebugEnabled() {
		slog.Debug("pet command", "npc", body.Name(), "objectID", body.ObjectID(), "command", cmd)
	}
}

func (p *PetPolicy) Interval(b *Brain) time.Duration {
	if _, attacking := p.Mode(); attacking {
		return b.Tuning().AttackThinkInterval
	}
	return 0
}

// ownerTarget resolves the owner's current target if the pet may fight it.
func (p *PetPolicy) ownerTarget(body Body, owner Creature) (Creature, bool) {
	id := owner.Target()
	if id == 0 || id == body.ObjectID() || id == p.ownerID {
		return nil, false
	}
	c, ok := body.Resolve(id)
	if !ok || !c.IsAlive() || !c.IsActive() {
		return nil, false
	}
	return c, true
}

func (p *PetPolicy) engage(b *Brain, target Creature) {
	body := b.Body()
	dist := body.Location().Distance2D(target.Location())
	if p.spellID == 0 || dist <= float64(b.Tuning().MeleeRange) {
		body.StartAttack(target)
		return
	}
	if p.los == nil {
		body.CastSpell(p.spellID, target)
		return
	}

	p.mu.Lock()
	if p.pending {
		p.mu.Unlock()
		return
	}
	p.losGen++
	gen := p.losGen
	p.pending = true
	p.mu.Unlock()

	targetID := target.ObjectID()
	accepted := p.los.RequestLOS(body.Location(), target.Location(), func(visible bool) {
		p.onLineOfSight(b, gen, targetID, visible)
	})
	if !accepted {
		p.mu.Lock()
		if p.losGen == gen {
			p.pending = false
		}
		p.mu.Unlock()
		body.PathTo(target.Location())
	}
}

// onLineOfSight runs on the LOS worker. Everything is re-validated: the reply
// may arrive after a new command, a state change, or the target's death.
func (p *PetPolicy) onLineOfSight(b *Brain, gen uint64, targetID uint32, visible bool) {
	p.mu.Lock()
	stale := p.losGen != gen || !p.attacking
	if p.losGen == gen {
		p.pending = false
	}
	p.mu.Unlock()

	body := b.Body()
	if stale || !b.IsActive() || b.Policy() != Policy(p) {
		if IsDebugEnabled() {
			slog.Debug("dropped stale LOS reply", "npc", body.Name(), "targetID", targetID)
		}
		return
	}

	owner, ok := body.Resolve(p.ownerID)
	if !ok || owner.Target() != targetID {
		return
	}
	target, ok := body.Resolve(targetID)
	if !ok || !target.IsAlive() || !target.IsActive() {
		return
	}

	if visible {
		body.CastSpell(p.spellID, target)
	} else {
		body.PathTo(target.Location())
	}
}
