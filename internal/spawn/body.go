package spawn

import (
	"iter"

	"github.com/udisondev/npcbrain/internal/ai"
	"github.com/udisondev/npcbrain/internal/model"
	"github.com/udisondev/npcbrain/internal/world"
)

// npcBody adapts an in-world NPC to ai.Body. World queries go through the
// region grid; orders go to Actions.
type npcBody struct {
	*model.Npc
	world   *world.World
	actions Actions
}

func newNpcBody(npc *model.Npc, w *world.World, actions Actions) *npcBody {
	return &npcBody{Npc: npc, world: w, actions: actions}
}

// Home returns the spawn point, or the current location for NPCs without one.
func (b *npcBody) Home() model.Location {
	if s := b.Spawn(); s != nil {
		return s.Location()
	}
	return b.Location()
}

func (b *npcBody) PlayersInRadius(r int32) iter.Seq[ai.Creature] {
	players := b.world.PlayersInRadius(b.Location(), r)
	return func(yield func(ai.Creature) bool) {
		for p := range players {
			if !yield(p) {
				return
			}
		}
	}
}

func (b *npcBody) NPCsInRadius(r int32) iter.Seq[ai.Creature] {
	npcs := b.world.NPCsInRadius(b.Location(), r)
	return func(yield func(ai.Creature) bool) {
		for n := range npcs {
			if !yield(n) {
				return
			}
		}
	}
}

func (b *npcBody) Resolve(id uint32) (ai.Creature, bool) {
	return resolveCreature(b.world, id)
}

func (b *npcBody) StartAttack(target ai.Creature) { b.actions.StartAttack(b.Npc, target) }
func (b *npcBody) StopAttack()                    { b.actions.StopAttack(b.Npc) }
func (b *npcBody) PathTo(loc model.Location)      { b.actions.PathTo(b.Npc, loc) }
func (b *npcBody) WalkTo(loc model.Location)      { b.actions.WalkTo(b.Npc, loc) }
func (b *npcBody) Follow(target ai.Creature)      { b.actions.Follow(b.Npc, target) }
func (b *npcBody) StopFollowing()                 { b.actions.StopFollowing(b.Npc) }

func (b *npcBody) CastSpell(spellID int32, target ai.Creature) {
	b.actions.CastSpell(b.Npc, spellID, target)
}

// resolveCreature looks an object up in the world and returns it as a creature.
func resolveCreature(w *world.World, id uint32) (ai.Creature, bool) {
	obj, ok := w.GetObject(id)
	if !ok {
		return nil, false
	}
	switch v := obj.Data.(type) {
	case *model.Player:
		return v, true
	case *model.Npc:
		return v, true
	default:
		return nil, false
	}
}
