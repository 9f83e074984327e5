package world

import (
	"fmt"
	"sync"

	"github.com/udisondev/npcbrain/internal/model"
)

// World represents the game world with 2D region grid.
// Objects are indexed both by objectID and by region for radius queries.
type World struct {
	regions [][]*Region // 2D array [RegionsX][RegionsY]
	objects sync.Map    // map[uint32]*model.WorldObject: objectID → object

	// moveMu serializes region changes of a single object so that concurrent
	// moves cannot leave an object registered in two regions.
	moveMu sync.Mutex
}

// New creates a world with an initialized region grid.
func New() *World {
	w := &World{}
	w.initialize()
	return w
}

// initialize creates 2D region grid
func (w *World) initialize() {
	w.regions = make([][]*Region, RegionsX)
	for rx := range RegionsX {
		w.regions[rx] = make([]*Region, RegionsY)
		for ry := range RegionsY {
			w.regions[rx][ry] = NewRegion(int32(rx), int32(ry))
		}
	}
}

// GetRegion returns region at world coordinates (x, y)
// Returns nil if coordinates are out of bounds
func (w *World) GetRegion(x, y int32) *Region {
	rx, ry := CoordToRegionIndex(x, y)
	if !IsValidRegionIndex(rx, ry) {
		return nil
	}
	return w.regions[rx][ry]
}

// AddObject adds object to world and its region
// Returns error if region is invalid
func (w *World) AddObject(obj *model.WorldObject) error {
	loc := obj.Location()
	region := w.GetRegion(loc.X, loc.Y)
	if region == nil {
		return fmt.Errorf("invalid coordinates for object %d: (%d, %d)", obj.ObjectID(), loc.X, loc.Y)
	}

	w.objects.Store(obj.ObjectID(), obj)
	region.AddVisibleObject(obj)
	return nil
}

// RemoveObject removes object from world and its region
func (w *World) RemoveObject(objectID uint32) {
	value, ok := w.objects.LoadAndDelete(objectID)
	if !ok {
		return
	}

	obj := value.(*model.WorldObject)
	loc := obj.Location()
	if region := w.GetRegion(loc.X, loc.Y); region != nil {
		region.RemoveVisibleObject(objectID)
	}
}

// MoveObject updates object location and moves it between regions if needed.
func (w *World) MoveObject(obj *model.WorldObject, loc model.Location) error {
	to := w.GetRegion(loc.X, loc.Y)
	if to == nil {
		return fmt.Errorf("invalid coordinates for object %d: (%d, %d)", obj.ObjectID(), loc.X, loc.Y)
	}

	w.moveMu.Lock()
	defer w.moveMu.Unlock()

	old := obj.Location()
	obj.SetLocation(loc)

	if _, tracked := w.objects.Load(obj.ObjectID()); !tracked {
		return nil
	}

	from := w.GetRegion(old.X, old.Y)
	if from != to {
		if from != nil {
			from.RemoveVisibleObject(obj.ObjectID())
		}
		to.AddVisibleObject(obj)
	}
	return nil
}

// GetObject returns object by ID
func (w *World) GetObject(objectID uint32) (*model.WorldObject, bool) {
	value, ok := w.objects.Load(objectID)
	if !ok {
		return nil, false
	}
	return value.(*model.WorldObject), true
}

// RegionCount returns total number of regions
func (w *World) RegionCount() int {
	return RegionsX * RegionsY
}

// ObjectCount returns total number of objects in world (O(N), expensive!)
func (w *World) ObjectCount() int {
	count := 0
	w.objects.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
