package model

import (
	"testing"
)

func testSpawnDef() SpawnDef {
	return SpawnDef{
		SpawnID:    1,
		TemplateID: 1000,
		Name:       "Wolf",
		Brain:      "aggressive",
		X:          17000,
		Y:          170000,
		Z:          -3500,
		Count:      3,
		Level:      5,
		MaxHP:      1500,
		AggroRange: 300,
		Faction:    FactionMonster,
		Params:     map[string]string{"flee_distance": "800"},
	}
}

func TestNewSpawn(t *testing.T) {
	spawn := NewSpawn(testSpawnDef())

	if spawn.SpawnID() != 1 {
		t.Errorf("SpawnID() = %d, want 1", spawn.SpawnID())
	}
	if spawn.TemplateID() != 1000 {
		t.Errorf("TemplateID() = %d, want 1000", spawn.TemplateID())
	}
	if spawn.BrainType() != "aggressive" {
		t.Errorf("BrainType() = %q, want aggressive", spawn.BrainType())
	}
	if spawn.Location() != NewLocation(17000, 170000, -3500, 0) {
		t.Errorf("Location() = %+v", spawn.Location())
	}
	if spawn.MaximumCount() != 3 {
		t.Errorf("MaximumCount() = %d, want 3", spawn.MaximumCount())
	}
	if spawn.Template().Faction() != FactionMonster {
		t.Errorf("Template().Faction() = %q, want %q", spawn.Template().Faction(), FactionMonster)
	}
	if v, ok := spawn.Param("flee_distance"); !ok || v != "800" {
		t.Errorf("Param(flee_distance) = %q, %v", v, ok)
	}
}

func TestSpawn_ParamsAreCopied(t *testing.T) {
	def := testSpawnDef()
	spawn := NewSpawn(def)

	def.Params["flee_distance"] = "1"
	if v, _ := spawn.Param("flee_distance"); v != "800" {
		t.Errorf("spawn params changed through caller map: %q", v)
	}

	d := spawn.Def()
	d.Params["flee_distance"] = "2"
	if v, _ := spawn.Param("flee_distance"); v != "800" {
		t.Errorf("spawn params changed through Def() copy: %q", v)
	}
}

func TestSpawn_NpcList(t *testing.T) {
	spawn := NewSpawn(testSpawnDef())
	a := NewNpc(1, 1000, spawn.Template())
	b := NewNpc(2, 1000, spawn.Template())

	spawn.AddNpc(a)
	spawn.AddNpc(b)
	if spawn.CurrentCount() != 2 {
		t.Fatalf("CurrentCount() = %d, want 2", spawn.CurrentCount())
	}

	spawn.RemoveNpc(a)
	spawn.RemoveNpc(a) // second remove is a no-op
	if spawn.CurrentCount() != 1 {
		t.Errorf("CurrentCount() after remove = %d, want 1", spawn.CurrentCount())
	}
	if npcs := spawn.NPCs(); len(npcs) != 1 || npcs[0] != b {
		t.Errorf("NPCs() = %v, want [b]", npcs)
	}
}
