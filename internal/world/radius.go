package world

import (
	"iter"

	"github.com/udisondev/npcbrain/internal/model"
)

// objectsInRadius collects the objects within radius of center.
// The result is a point-in-time snapshot: later moves do not affect it.
func (w *World) objectsInRadius(center model.Location, radius int32) []*model.WorldObject {
	if radius < 0 {
		return nil
	}

	minRX, minRY, maxRX, maxRY := regionBounds(center.X, center.Y, radius)
	var found []*model.WorldObject
	for rx := minRX; rx <= maxRX; rx++ {
		for ry := minRY; ry <= maxRY; ry++ {
			for _, obj := range w.regions[rx][ry].Snapshot() {
				if center.InRange(obj.Location(), radius) {
					found = append(found, obj)
				}
			}
		}
	}
	return found
}

// PlayersInRadius returns the players within radius of center.
// Membership is captured when PlayersInRadius is called; the sequence
// only walks that snapshot, so it may be ranged over without holding any lock.
func (w *World) PlayersInRadius(center model.Location, radius int32) iter.Seq[*model.Player] {
	snapshot := w.objectsInRadius(center, radius)
	return func(yield func(*model.Player) bool) {
		for _, obj := range snapshot {
			p, ok := obj.Data.(*model.Player)
			if !ok {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// NPCsInRadius returns the NPCs within radius of center, snapshotted like PlayersInRadius.
func (w *World) NPCsInRadius(center model.Location, radius int32) iter.Seq[*model.Npc] {
	snapshot := w.objectsInRadius(center, radius)
	return func(yield func(*model.Npc) bool) {
		for _, obj := range snapshot {
			n, ok := obj.Data.(*model.Npc)
			if !ok {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}
