package model

import (
	"sync/atomic"
)

// Well-known factions. Empty faction is neutral: never hostile, never targeted.
const (
	FactionPlayer  = "player"
	FactionMonster = "monster"
	FactionGuard   = "guard"
)

// Character: базовый класс для живых существ (Player, Npc).
// Добавляет HP, level, faction и флаги состояния к WorldObject.
type Character struct {
	*WorldObject // embedded

	level     int32
	currentHP int32
	maxHP     int32
	faction   atomic.Pointer[string]

	// inWorld is true between spawn and despawn/logout.
	inWorld atomic.Bool
	// stealthed characters are skipped by aggro scans.
	stealthed atomic.Bool
	// target is the objectID of the current target (0 = none).
	target atomic.Uint32
}

// NewCharacter создаёт нового персонажа. Текущее HP равно максимальному.
func NewCharacter(objectID uint32, name string, loc Location, level, maxHP int32, faction string) *Character {
	if maxHP < 1 {
		maxHP = 1
	}
	c := &Character{
		WorldObject: NewWorldObject(objectID, name, loc),
		level:       level,
		currentHP:   maxHP,
		maxHP:       maxHP,
	}
	c.faction.Store(&faction)
	return c
}

// Level возвращает уровень.
func (c *Character) Level() int32 {
	return c.level
}

// CurrentHP возвращает текущее HP.
func (c *Character) CurrentHP() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentHP
}

// MaxHP возвращает максимальное HP.
func (c *Character) MaxHP() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHP
}

// SetCurrentHP устанавливает текущее HP с валидацией (clamp 0..maxHP).
func (c *Character) SetCurrentHP(hp int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentHP = max(0, min(hp, c.maxHP))
}

// IsDead проверяет мёртв ли персонаж (HP <= 0).
func (c *Character) IsDead() bool {
	return c.CurrentHP() <= 0
}

// IsAlive is the negation of IsDead.
func (c *Character) IsAlive() bool {
	return !c.IsDead()
}

// IsActive reports whether the character is currently present in the world.
func (c *Character) IsActive() bool {
	return c.inWorld.Load()
}

// SetInWorld marks the character as present in (or removed from) the world.
func (c *Character) SetInWorld(v bool) {
	c.inWorld.Store(v)
}

// IsStealthed reports whether the character is hidden from aggro scans.
func (c *Character) IsStealthed() bool {
	return c.stealthed.Load()
}

// SetStealthed toggles stealth.
func (c *Character) SetStealthed(v bool) {
	c.stealthed.Store(v)
}

// Faction возвращает фракцию.
func (c *Character) Faction() string {
	return *c.faction.Load()
}

// SetFaction меняет фракцию.
func (c *Character) SetFaction(f string) {
	c.faction.Store(&f)
}

// Target returns current target objectID (0 if no target).
func (c *Character) Target() uint32 {
	return c.target.Load()
}

// SetTarget sets current target objectID.
func (c *Character) SetTarget(objectID uint32) {
	c.target.Store(objectID)
}

// ClearTarget clears current target.
func (c *Character) ClearTarget() {
	c.target.Store(0)
}

// IsPlayer is overridden by Player.
func (c *Character) IsPlayer() bool {
	return false
}
