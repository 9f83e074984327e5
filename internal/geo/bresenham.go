package geo

// LineIterator steps through grid cells along a 2D Bresenham line.
type LineIterator struct {
	currentX, currentY int32
	targetX, targetY   int32
	deltaX, deltaY     int32
	stepX, stepY       int32
	err                int32
	xDominant          bool
	started            bool
}

// NewLineIterator creates a line iterator from (sx, sy) to (ex, ey), both inclusive.
func NewLineIterator(sx, sy, ex, ey int32) *LineIterator {
	it := &LineIterator{
		currentX: sx, currentY: sy,
		targetX: ex, targetY: ey,
		deltaX: abs32(ex - sx),
		deltaY: abs32(ey - sy),
		stepX:  1,
		stepY:  1,
	}

	if sx > ex {
		it.stepX = -1
	}
	if sy > ey {
		it.stepY = -1
	}

	it.xDominant = it.deltaX >= it.deltaY
	if it.xDominant {
		it.err = it.deltaX / 2
	} else {
		it.err = it.deltaY / 2
	}

	return it
}

// Next advances the iterator to the next cell.
// Returns false when the target has already been visited.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true // start point
	}

	if it.currentX == it.targetX && it.currentY == it.targetY {
		return false
	}

	if it.xDominant {
		it.currentX += it.stepX
		it.err += it.deltaY
		if it.err >= it.deltaX {
			it.currentY += it.stepY
			it.err -= it.deltaX
		}
	} else {
		it.currentY += it.stepY
		it.err += it.deltaX
		if it.err >= it.deltaY {
			it.currentX += it.stepX
			it.err -= it.deltaY
		}
	}

	return true
}

// X returns current X cell.
func (it *LineIterator) X() int32 { return it.currentX }

// Y returns current Y cell.
func (it *LineIterator) Y() int32 { return it.currentY }

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
