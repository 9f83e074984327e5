package model

import (
	"maps"
	"sync"
	"sync/atomic"
)

// SpawnDef describes a spawn point as stored in a spawn source (file or database).
type SpawnDef struct {
	SpawnID    int64
	TemplateID int32
	Name       string
	Title      string
	Brain      string // brain type name resolved through the brain registry
	X, Y, Z    int32
	Heading    uint16
	Count      int32
	Level      int32
	MaxHP      int32
	AggroRange int32
	MoveSpeed  int32
	Faction    string
	Params     map[string]string
}

// Spawn represents a spawn point for NPCs
type Spawn struct {
	def      SpawnDef
	location Location
	template *NpcTemplate

	mu           sync.RWMutex
	currentCount atomic.Int32
	npcList      []*Npc
}

// NewSpawn creates a new spawn point from its definition.
func NewSpawn(def SpawnDef) *Spawn {
	def.Params = maps.Clone(def.Params)
	return &Spawn{
		def:      def,
		location: NewLocation(def.X, def.Y, def.Z, def.Heading),
		template: NewNpcTemplate(def.TemplateID, def.Name, def.Title, def.Level, def.MaxHP, def.AggroRange, def.MoveSpeed, def.Faction),
		npcList:  make([]*Npc, 0, max(def.Count, 0)),
	}
}

// SpawnID returns spawn ID
func (s *Spawn) SpawnID() int64 {
	return s.def.SpawnID
}

// TemplateID returns template ID
func (s *Spawn) TemplateID() int32 {
	return s.def.TemplateID
}

// Template returns the NPC template built from the definition
func (s *Spawn) Template() *NpcTemplate {
	return s.template
}

// BrainType returns configured brain type name
func (s *Spawn) BrainType() string {
	return s.def.Brain
}

// Param returns a brain parameter by key
func (s *Spawn) Param(key string) (string, bool) {
	v, ok := s.def.Params[key]
	return v, ok
}

// Def returns a copy of the spawn definition
func (s *Spawn) Def() SpawnDef {
	d := s.def
	d.Params = maps.Clone(s.def.Params)
	return d
}

// Location returns spawn location
func (s *Spawn) Location() Location {
	return s.location
}

// MaximumCount returns maximum number of NPCs that can spawn
func (s *Spawn) MaximumCount() int32 {
	return s.def.Count
}

// CurrentCount returns current spawned count (atomic read)
func (s *Spawn) CurrentCount() int32 {
	return s.currentCount.Load()
}

// AddNpc adds NPC to spawn's NPC list and increases the count
func (s *Spawn) AddNpc(npc *Npc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.npcList = append(s.npcList, npc)
	s.currentCount.Add(1)
}

// RemoveNpc removes NPC from spawn's NPC list and decreases the count
func (s *Spawn) RemoveNpc(npc *Npc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.npcList {
		if n == npc {
			s.npcList = append(s.npcList[:i], s.npcList[i+1:]...)
			s.currentCount.Add(-1)
			return
		}
	}
}

// NPCs returns copy of spawned NPCs list
func (s *Spawn) NPCs() []*Npc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	npcs := make([]*Npc, len(s.npcList))
	copy(npcs, s.npcList)
	return npcs
}
