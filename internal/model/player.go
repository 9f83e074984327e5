package model

import "fmt"

// Player: игрок в мире. Для brain-подсистемы это только наблюдатель
// (vicinity dormancy), цель агрессии или владелец питомца.
type Player struct {
	*Character

	characterID int64
}

// NewPlayer создаёт нового игрока с валидацией.
// objectID must be unique across all world objects (players, NPCs).
func NewPlayer(objectID uint32, characterID int64, name string, level int32) (*Player, error) {
	if len(name) < 2 {
		return nil, fmt.Errorf("name must be at least 2 characters, got %q", name)
	}
	if level < 1 || level > 80 {
		return nil, fmt.Errorf("level must be between 1 and 80, got %d", level)
	}

	maxHP := 1000 + level*50

	p := &Player{
		Character:   NewCharacter(objectID, name, Location{}, level, maxHP, FactionPlayer),
		characterID: characterID,
	}
	p.WorldObject.Data = p

	return p, nil
}

// CharacterID возвращает DB ID персонажа (immutable).
func (p *Player) CharacterID() int64 {
	return p.characterID
}

// IsPlayer always returns true.
func (p *Player) IsPlayer() bool {
	return true
}
