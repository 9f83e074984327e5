package geo

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCellSize is the obstacle grid resolution in world units.
const DefaultCellSize = 16

// Cell is a grid cell index.
type Cell struct {
	X, Y int32
}

// Grid is a set of blocked cells. It is immutable after loading,
// so it is safe for concurrent readers.
type Grid struct {
	cellSize int32
	blocked  map[Cell]struct{}
}

// Wall is a rectangle of blocked world space, both corners inclusive.
type Wall struct {
	X1 int32 `yaml:"x1"`
	Y1 int32 `yaml:"y1"`
	X2 int32 `yaml:"x2"`
	Y2 int32 `yaml:"y2"`
}

type gridFile struct {
	CellSize int32  `yaml:"cell_size"`
	Walls    []Wall `yaml:"walls"`
}

// NewGrid builds a grid from walls.
func NewGrid(cellSize int32, walls []Wall) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}

	g := &Grid{
		cellSize: cellSize,
		blocked:  make(map[Cell]struct{}),
	}

	var errs []error
	for i, w := range walls {
		if w.X1 > w.X2 || w.Y1 > w.Y2 {
			errs = append(errs, fmt.Errorf("wall %d: inverted corners (%d,%d)-(%d,%d)", i, w.X1, w.Y1, w.X2, w.Y2))
			continue
		}
		lo := g.CellAt(w.X1, w.Y1)
		hi := g.CellAt(w.X2, w.Y2)
		for cx := lo.X; cx <= hi.X; cx++ {
			for cy := lo.Y; cy <= hi.Y; cy++ {
				g.blocked[Cell{cx, cy}] = struct{}{}
			}
		}
	}

	return g, errors.Join(errs...)
}

// LoadGrid reads an obstacle grid from a YAML file.
// Missing file yields an empty grid (everything visible).
func LoadGrid(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewGrid(DefaultCellSize, nil)
		}
		return nil, fmt.Errorf("reading obstacles %s: %w", path, err)
	}

	var f gridFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing obstacles %s: %w", path, err)
	}
	if f.CellSize == 0 {
		f.CellSize = DefaultCellSize
	}

	g, err := NewGrid(f.CellSize, f.Walls)
	if err != nil {
		return nil, fmt.Errorf("building obstacles %s: %w", path, err)
	}
	return g, nil
}

// CellAt converts world coordinates to a cell (floor division).
func (g *Grid) CellAt(x, y int32) Cell {
	return Cell{floorDiv(x, g.cellSize), floorDiv(y, g.cellSize)}
}

// IsBlocked reports whether the cell holding world point (x, y) is an obstacle.
func (g *Grid) IsBlocked(x, y int32) bool {
	_, ok := g.blocked[g.CellAt(x, y)]
	return ok
}

// BlockedCount returns number of blocked cells.
func (g *Grid) BlockedCount() int {
	return len(g.blocked)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
