package world

// Grid constants
const (
	// ShiftBy - shift by N bits for 2^N units per region (2^11 = 2048)
	ShiftBy = 11

	// World boundaries (game coordinates)
	WorldXMin = -131072
	WorldYMin = -262144
	WorldXMax = 196608
	WorldYMax = 229376

	// Offsets for array indexing
	// OffsetX = abs(WorldXMin >> ShiftBy) = 64
	// OffsetY = abs(WorldYMin >> ShiftBy) = 128
	OffsetX = 64
	OffsetY = 128

	// Grid size (regions count), one extra row on Y for the inclusive max border
	RegionsX = 160
	RegionsY = 241

	// Region size in game units
	RegionSize = 1 << ShiftBy // 2048
)

// CoordToRegionIndex converts world coordinate to region index
// Formula: (worldCoord >> ShiftBy) + Offset
func CoordToRegionIndex(x, y int32) (rx, ry int32) {
	rx = (x >> ShiftBy) + OffsetX
	ry = (y >> ShiftBy) + OffsetY
	return rx, ry
}

// IsValidRegionIndex checks if region index is within valid bounds
func IsValidRegionIndex(rx, ry int32) bool {
	return rx >= 0 && rx < RegionsX && ry >= 0 && ry < RegionsY
}

// RegionIndexToCoord converts region index to world coordinate (center of region)
func RegionIndexToCoord(rx, ry int32) (x, y int32) {
	x = ((rx - OffsetX) << ShiftBy) + (RegionSize / 2)
	y = ((ry - OffsetY) << ShiftBy) + (RegionSize / 2)
	return x, y
}

// regionBounds returns the clamped region index rectangle covering
// the square [x-radius, x+radius] × [y-radius, y+radius].
func regionBounds(x, y, radius int32) (minRX, minRY, maxRX, maxRY int32) {
	minRX, minRY = CoordToRegionIndex(x-radius, y-radius)
	maxRX, maxRY = CoordToRegionIndex(x+radius, y+radius)
	minRX = max(minRX, 0)
	minRY = max(minRY, 0)
	maxRX = min(maxRX, RegionsX-1)
	maxRY = min(maxRY, RegionsY-1)
	return minRX, minRY, maxRX, maxRY
}
