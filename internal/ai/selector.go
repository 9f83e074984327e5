package ai

import (
	"iter"
	"log/slog"
	"sync"
)

// AggroSelector scans the vicinity for hostile targets and picks the one to attack.
// It judges hostility against an allegiance which defaults to the body's own
// faction and may be overridden (charm).
type AggroSelector struct {
	body  Body
	table *AggroTable

	mu         sync.Mutex
	allegiance string
	overridden bool
	exclude    uint32
}

// NewAggroSelector creates a selector over table for body.
func NewAggroSelector(body Body, table *AggroTable) *AggroSelector {
	return &AggroSelector{body: body, table: table}
}

// Table returns the aggro table.
func (s *AggroSelector) Table() *AggroTable {
	return s.table
}

// SetAllegiance makes the selector judge targets as if it belonged to faction
// and never select exclude.
func (s *AggroSelector) SetAllegiance(faction string, exclude uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allegiance = faction
	s.overridden = true
	s.exclude = exclude
}

// ResetAllegiance restores the body's own faction.
func (s *AggroSelector) ResetAllegiance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allegiance = ""
	s.overridden = false
	s.exclude = 0
}

// Allegiance returns the effective faction and the excluded object ID.
func (s *AggroSelector) Allegiance() (faction string, exclude uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overridden {
		return s.allegiance, s.exclude
	}
	return s.body.Faction(), 0
}

// Qualifies reports whether c may be attacked under the current allegiance.
func (s *AggroSelector) Qualifies(c Creature) bool {
	if c == nil || c.ObjectID() == s.body.ObjectID() {
		return false
	}
	if !c.IsAlive() || !c.IsActive() || c.IsStealthed() {
		return false
	}
	faction, exclude := s.Allegiance()
	if exclude != 0 && c.ObjectID() == exclude {
		return false
	}
	return Hostile(faction, c.Faction())
}

// CheckPlayerAggro merges qualifying players within radius with hate 1.
// Returns number of new entries.
func (s *AggroSelector) CheckPlayerAggro(radius int32) int {
	return s.merge(s.body.PlayersInRadius(radius))
}

// CheckNPCAggro merges qualifying NPCs within radius with hate 1.
func (s *AggroSelector) CheckNPCAggro(radius int32) int {
	return s.merge(s.body.NPCsInRadius(radius))
}

func (s *AggroSelector) merge(candidates iter.Seq[Creature]) int {
	added := 0
	for c := range candidates {
		if s.table.Contains(c.ObjectID()) || !s.Qualifies(c) {
			continue
		}
		if s.table.Merge(c.ObjectID(), 1) {
			added++
		}
	}
	return added
}

// valid reports whether a tracked target can still be attacked.
func (s *AggroSelector) valid(c Creature) bool {
	if !c.IsAlive() || !c.IsActive() || c.IsStealthed() {
		return false
	}
	_, exclude := s.Allegiance()
	return exclude == 0 || c.ObjectID() != exclude
}

// Prune drops entries whose target is gone or can no longer be attacked.
// Returns number of removed entries.
func (s *AggroSelector) Prune() int {
	removed := 0
	for _, e := range s.table.Snapshot() {
		c, ok := s.body.Resolve(e.TargetID)
		if ok && s.valid(c) {
			continue
		}
		if s.table.Remove(e.TargetID) {
			removed++
		}
	}
	return removed
}

// MostWanted returns the most hated valid target, pruning invalid ones on the way.
func (s *AggroSelector) MostWanted() (Creature, bool) {
	for {
		id, ok := s.table.MostHated()
		if !ok {
			return nil, false
		}

		c, ok := s.body.Resolve(id)
		if ok && s.valid(c) {
			return c, true
		}

		s.table.Remove(id)
		if IsDebugEnabled() {
			slog.Debug("pruned aggro target", "npc", s.body.Name(), "targetID", id)
		}
	}
}

// AttackMostWanted orders the body to attack the most hated target,
// or to stop attacking if none is left.
func (s *AggroSelector) AttackMostWanted() (Creature, bool) {
	target, ok := s.MostWanted()
	if !ok {
		s.body.StopAttack()
		return nil, false
	}
	s.body.StartAttack(target)
	return target, true
}
