package model

import (
	"sync"
	"sync/atomic"
)

// Controller is the brain attached to an NPC body.
// Declared here so Npc can hold it without importing the ai package.
type Controller interface {
	Stop() bool
	IsActive() bool
}

// Npc is the in-world body controlled by a brain.
type Npc struct {
	*Character

	templateID int32
	template   *NpcTemplate
	spawn      *Spawn
	intention  atomic.Int32
	owner      atomic.Uint32 // controlling player for pets, 0 otherwise

	// Last movement order issued to the body.
	destination atomic.Pointer[Location]

	// brainMu serializes controller swaps so two brains are never active at once.
	brainMu    sync.Mutex
	controller Controller
}

// NewNpc creates an NPC from template. The NPC is not in the world until SetInWorld(true).
func NewNpc(objectID uint32, templateID int32, template *NpcTemplate) *Npc {
	n := &Npc{
		Character:  NewCharacter(objectID, template.Name(), Location{}, template.Level(), template.MaxHP(), template.Faction()),
		templateID: templateID,
		template:   template,
	}
	n.intention.Store(int32(IntentionIdle))
	n.WorldObject.Data = n
	return n
}

// TemplateID returns template ID
func (n *Npc) TemplateID() int32 {
	return n.templateID
}

// Template returns NPC template
func (n *Npc) Template() *NpcTemplate {
	return n.template
}

// Title returns NPC title
func (n *Npc) Title() string {
	return n.template.Title()
}

// MoveSpeed returns movement speed
func (n *Npc) MoveSpeed() int32 {
	return n.template.MoveSpeed()
}

// Spawn returns spawn point the NPC belongs to (nil for summoned NPCs)
func (n *Npc) Spawn() *Spawn {
	return n.spawn
}

// SetSpawn sets spawn reference
func (n *Npc) SetSpawn(s *Spawn) {
	n.spawn = s
}

// Intention returns current AI intention
func (n *Npc) Intention() Intention {
	return Intention(n.intention.Load())
}

// SetIntention sets AI intention
func (n *Npc) SetIntention(i Intention) {
	n.intention.Store(int32(i))
}

// OwnerID returns objectID of the controlling player (0 if none)
func (n *Npc) OwnerID() uint32 {
	return n.owner.Load()
}

// SetOwnerID binds the NPC to a controlling player. Owner lifecycle is independent.
func (n *Npc) SetOwnerID(id uint32) {
	n.owner.Store(id)
}

// Destination returns the last movement target, if any.
func (n *Npc) Destination() (Location, bool) {
	if d := n.destination.Load(); d != nil {
		return *d, true
	}
	return Location{}, false
}

// SetDestination records a movement order.
func (n *Npc) SetDestination(loc Location) {
	n.destination.Store(&loc)
}

// ClearDestination drops the movement order.
func (n *Npc) ClearDestination() {
	n.destination.Store(nil)
}

// Controller returns the attached brain (nil if none).
func (n *Npc) Controller() Controller {
	n.brainMu.Lock()
	defer n.brainMu.Unlock()
	return n.controller
}

// SetController stops the previous brain and attaches c.
// The swap happens under the body lock, so the old brain is stopped before
// the new one becomes visible.
func (n *Npc) SetController(c Controller) {
	n.brainMu.Lock()
	defer n.brainMu.Unlock()

	if n.controller != nil && n.controller != c {
		n.controller.Stop()
	}
	n.controller = c
}
