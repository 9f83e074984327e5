package spawn

import (
	"log/slog"

	"github.com/udisondev/npcbrain/internal/ai"
	"github.com/udisondev/npcbrain/internal/model"
)

// Actions carries out the orders brains give to NPC bodies.
// Movement and combat engines implement it; the brain only decides.
type Actions interface {
	StartAttack(npc *model.Npc, target ai.Creature)
	StopAttack(npc *model.Npc)
	PathTo(npc *model.Npc, loc model.Location)
	WalkTo(npc *model.Npc, loc model.Location)
	Follow(npc *model.Npc, target ai.Creature)
	StopFollowing(npc *model.Npc)
	CastSpell(npc *model.Npc, spellID int32, target ai.Creature)
}

// IntentActions records every order on the NPC itself (intention, target and
// destination) for the movement and combat systems to pick up.
type IntentActions struct{}

func (IntentActions) StartAttack(npc *model.Npc, target ai.Creature) {
	npc.SetTarget(target.ObjectID())
	npc.SetIntention(model.IntentionAttack)
}

func (IntentActions) StopAttack(npc *model.Npc) {
	switch npc.Intention() {
	case model.IntentionAttack, model.IntentionCast:
		npc.ClearTarget()
		npc.SetIntention(model.IntentionActive)
	}
}

func (IntentActions) PathTo(npc *model.Npc, loc model.Location) {
	npc.SetDestination(loc)
	npc.SetIntention(model.IntentionMoveTo)
}

func (IntentActions) WalkTo(npc *model.Npc, loc model.Location) {
	npc.SetDestination(loc)
	npc.SetIntention(model.IntentionMoveTo)
}

func (IntentActions) Follow(npc *model.Npc, target ai.Creature) {
	npc.SetDestination(target.Location())
	npc.SetIntention(model.IntentionFollow)
}

func (IntentActions) StopFollowing(npc *model.Npc) {
	if npc.Intention() == model.IntentionFollow {
		npc.ClearDestination()
		npc.SetIntention(model.IntentionActive)
	}
}

func (IntentActions) CastSpell(npc *model.Npc, spellID int32, target ai.Creature) {
	npc.SetTarget(target.ObjectID())
	npc.SetIntention(model.IntentionCast)

	if ai.IsDebugEnabled() {
		slog.Debug("npc casting", "npc", npc.Name(), "objectID", npc.ObjectID(), "spellID", spellID, "targetID", target.ObjectID())
	}
}
