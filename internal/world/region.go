package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/npcbrain/internal/model"
)

// Region represents a single world region (2048×2048 game units)
type Region struct {
	rx, ry int32 // region coordinates

	visibleObjects sync.Map // map[uint32]*model.WorldObject: objectID → object

	// Snapshot cache (immutable slice), rebuilt lazily after Add/Remove.
	snapshotCache atomic.Pointer[[]*model.WorldObject]
	snapshotDirty atomic.Bool
}

// NewRegion creates a new region
func NewRegion(rx, ry int32) *Region {
	return &Region{
		rx: rx,
		ry: ry,
	}
}

// RX returns region X index
func (r *Region) RX() int32 {
	return r.rx
}

// RY returns region Y index
func (r *Region) RY() int32 {
	return r.ry
}

// AddVisibleObject adds object to region's visible objects (concurrent-safe)
func (r *Region) AddVisibleObject(obj *model.WorldObject) {
	r.visibleObjects.Store(obj.ObjectID(), obj)
	r.snapshotDirty.Store(true)
}

// RemoveVisibleObject removes object from region's visible objects (concurrent-safe)
func (r *Region) RemoveVisibleObject(objectID uint32) {
	r.visibleObjects.Delete(objectID)
	r.snapshotDirty.Store(true)
}

// ForEachVisibleObject iterates over all visible objects in this region.
// If fn returns false, iteration stops.
func (r *Region) ForEachVisibleObject(fn func(*model.WorldObject) bool) {
	r.visibleObjects.Range(func(_, value any) bool {
		return fn(value.(*model.WorldObject))
	})
}

// Snapshot returns cached snapshot of visible objects.
// IMPORTANT: Returned slice is immutable. DO NOT modify.
func (r *Region) Snapshot() []*model.WorldObject {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return *cache
		}
	}
	return r.rebuildSnapshot()
}

// rebuildSnapshot rebuilds snapshot cache from sync.Map.
func (r *Region) rebuildSnapshot() []*model.WorldObject {
	// Clear the flag first: a concurrent Add after this point marks it dirty again.
	r.snapshotDirty.Store(false)

	objects := make([]*model.WorldObject, 0, 64)
	r.visibleObjects.Range(func(_, value any) bool {
		objects = append(objects, value.(*model.WorldObject))
		return true
	})

	r.snapshotCache.Store(&objects)
	return objects
}
