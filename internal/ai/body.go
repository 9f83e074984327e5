package ai

import (
	"iter"

	"github.com/udisondev/npcbrain/internal/model"
)

// Creature is a read-only view of something a brain can see or target.
// *model.Player and *model.Npc satisfy it.
type Creature interface {
	ObjectID() uint32
	Name() string
	Level() int32
	IsAlive() bool
	IsActive() bool // present in world
	IsStealthed() bool
	IsPlayer() bool
	Faction() string
	Location() model.Location
	Target() uint32
}

// Body is the NPC a brain drives. Commands are fire-and-forget orders;
// movement and combat resolution happen elsewhere.
type Body interface {
	Creature

	CurrentHP() int32
	MaxHP() int32
	// Home is where the body was spawned.
	Home() model.Location

	PlayersInRadius(radius int32) iter.Seq[Creature]
	NPCsInRadius(radius int32) iter.Seq[Creature]
	// Resolve looks up a creature by object ID.
	Resolve(objectID uint32) (Creature, bool)

	StartAttack(target Creature)
	StopAttack()
	PathTo(loc model.Location)
	WalkTo(loc model.Location)
	Follow(target Creature)
	StopFollowing()
	CastSpell(spellID int32, target Creature)
}

// LineOfSight answers visibility queries asynchronously.
// reply runs on another goroutine; RequestLOS returns false if the
// query was not accepted and reply will never run.
type LineOfSight interface {
	RequestLOS(from, to model.Location, reply func(visible bool)) bool
}

// Factions that never fight each other.
var allies = map[[2]string]bool{
	{model.FactionGuard, model.FactionPlayer}: true,
	{model.FactionPlayer, model.FactionGuard}: true,
}

// Hostile reports whether creatures of faction a attack creatures of faction b.
// Empty faction is neutral.
func Hostile(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	return !allies[[2]string{a, b}]
}
