package ai

import (
	"cmp"
	"slices"
	"sync"
)

// AggroEntry tracks hate and damage from a single target.
type AggroEntry struct {
	TargetID uint32
	Hate     int64
	Damage   int64
}

// AggroTable maps targets to hate for one brain.
// Hate never goes below zero. Safe for concurrent use: the tick path and
// attacked notifications both write through it.
type AggroTable struct {
	mu      sync.Mutex
	entries map[uint32]*AggroEntry
}

// NewAggroTable creates an empty table.
func NewAggroTable() *AggroTable {
	return &AggroTable{entries: make(map[uint32]*AggroEntry)}
}

// Add adds amount (may be negative) to the target's hate, creating the entry
// if needed. Returns the resulting hate.
func (t *AggroTable) Add(targetID uint32, amount int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.getOrCreateLocked(targetID)
	e.Hate = max(e.Hate+amount, 0)
	return e.Hate
}

// AddDamage records damage and the hate it causes.
func (t *AggroTable) AddDamage(targetID uint32, damage, hate int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.getOrCreateLocked(targetID)
	e.Damage += max(damage, 0)
	e.Hate = max(e.Hate+hate, 0)
}

// Merge adds the target with the given hate only if it is not tracked yet.
// Returns true if an entry was created.
func (t *AggroTable) Merge(targetID uint32, hate int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[targetID]; ok {
		return false
	}
	t.entries[targetID] = &AggroEntry{TargetID: targetID, Hate: max(hate, 0)}
	return true
}

func (t *AggroTable) getOrCreateLocked(targetID uint32) *AggroEntry {
	e, ok := t.entries[targetID]
	if !ok {
		e = &AggroEntry{TargetID: targetID}
		t.entries[targetID] = e
	}
	return e
}

// Remove drops the target. Returns false if it was not tracked.
func (t *AggroTable) Remove(targetID uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[targetID]; !ok {
		return false
	}
	delete(t.entries, targetID)
	return true
}

// Contains reports whether the target is tracked.
func (t *AggroTable) Contains(targetID uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[targetID]
	return ok
}

// Hate returns the target's hate.
func (t *AggroTable) Hate(targetID uint32) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[targetID]
	if !ok {
		return 0, false
	}
	return e.Hate, true
}

// MostHated returns the target with highest hate; ties go to the lowest ID.
func (t *AggroTable) MostHated() (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		bestID   uint32
		bestHate int64
		found    bool
	)
	for id, e := range t.entries {
		if !found || e.Hate > bestHate || (e.Hate == bestHate && id < bestID) {
			bestID, bestHate, found = id, e.Hate, true
		}
	}
	return bestID, found
}

// Len returns number of tracked targets.
func (t *AggroTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// IsEmpty returns true if no target is tracked.
func (t *AggroTable) IsEmpty() bool {
	return t.Len() == 0
}

// Clear removes all entries.
func (t *AggroTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.entries)
}

// Snapshot returns a copy of the entries ordered by hate (desc), then target ID.
func (t *AggroTable) Snapshot() []AggroEntry {
	t.mu.Lock()
	out := make([]AggroEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	t.mu.Unlock()

	slices.SortFunc(out, func(a, b AggroEntry) int {
		if c := cmp.Compare(b.Hate, a.Hate); c != 0 {
			return c
		}
		return cmp.Compare(a.TargetID, b.TargetID)
	})
	return out
}

// CalcHate converts damage into hate: (damage * 100) / (npcLevel + 7).
func CalcHate(damage, npcLevel int32) int64 {
	if npcLevel < 1 {
		npcLevel = 1
	}
	return (int64(damage) * 100) / int64(npcLevel+7)
}
