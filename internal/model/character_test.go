package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacter_HP(t *testing.T) {
	c := NewCharacter(1, "Orc", Location{}, 10, 500, FactionMonster)
	assert.Equal(t, int32(500), c.CurrentHP())
	assert.True(t, c.IsAlive())

	c.SetCurrentHP(900)
	assert.Equal(t, int32(500), c.CurrentHP(), "clamped to max")

	c.SetCurrentHP(-5)
	assert.Zero(t, c.CurrentHP())
	assert.True(t, c.IsDead())

	assert.Equal(t, int32(1), NewCharacter(2, "Ghost", Location{}, 1, 0, "").MaxHP(), "max HP at least 1")
}

func TestCharacter_Flags(t *testing.T) {
	c := NewCharacter(1, "Orc", Location{}, 10, 500, FactionMonster)

	assert.False(t, c.IsActive())
	c.SetInWorld(true)
	assert.True(t, c.IsActive())

	assert.False(t, c.IsStealthed())
	c.SetStealthed(true)
	assert.True(t, c.IsStealthed())

	c.SetFaction(FactionGuard)
	assert.Equal(t, FactionGuard, c.Faction())

	c.SetTarget(42)
	assert.Equal(t, uint32(42), c.Target())
	c.ClearTarget()
	assert.Zero(t, c.Target())

	assert.False(t, c.IsPlayer())
}

func TestNewPlayer(t *testing.T) {
	p, err := NewPlayer(0x10000001, 7, "Hero", 20)
	assert.NoError(t, err)
	assert.True(t, p.IsPlayer())
	assert.Equal(t, int64(7), p.CharacterID())
	assert.Equal(t, FactionPlayer, p.Faction())
	assert.Equal(t, int32(2000), p.MaxHP())

	_, err = NewPlayer(1, 1, "X", 20)
	assert.Error(t, err)
	_, err = NewPlayer(1, 1, "Hero", 0)
	assert.Error(t, err)
	_, err = NewPlayer(1, 1, "Hero", 81)
	assert.Error(t, err)
}
