package geo

import "github.com/udisondev/npcbrain/internal/model"

// CanSee checks line of sight between two world positions.
// Traces the cells between them with Bresenham; the end cells themselves
// never block, so a caster standing against a wall can still see out.
// A nil or empty grid sees everything.
func (g *Grid) CanSee(from, to model.Location) bool {
	if g == nil || len(g.blocked) == 0 {
		return true
	}

	start := g.CellAt(from.X, from.Y)
	end := g.CellAt(to.X, to.Y)
	if start == end {
		return true
	}

	it := NewLineIterator(start.X, start.Y, end.X, end.Y)
	it.Next() // skip start

	for it.Next() {
		c := Cell{it.X(), it.Y()}
		if c == end {
			return true
		}
		if _, ok := g.blocked[c]; ok {
			return false
		}
	}
	return true
}
