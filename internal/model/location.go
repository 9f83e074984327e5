package model

import "math"

// Location представляет координаты в игровом мире.
// Value type, передаётся по значению (immutable).
type Location struct {
	X       int32
	Y       int32
	Z       int32
	Heading uint16 // 0-65535
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(x, y, z int32, heading uint16) Location {
	return Location{X: x, Y: y, Z: z, Heading: heading}
}

// WithCoordinates возвращает новый Location с обновлёнными координатами (immutable pattern).
func (l Location) WithCoordinates(x, y, z int32) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (l Location) DistanceSquared(other Location) int64 {
	dx := int64(l.X - other.X)
	dy := int64(l.Y - other.Y)
	dz := int64(l.Z - other.Z)
	return dx*dx + dy*dy + dz*dz
}

// Distance2D возвращает расстояние на плоскости XY.
func (l Location) Distance2D(other Location) float64 {
	dx := float64(l.X - other.X)
	dy := float64(l.Y - other.Y)
	return math.Hypot(dx, dy)
}

// InRange reports whether other lies within radius (3D, inclusive).
func (l Location) InRange(other Location, radius int32) bool {
	r := int64(radius)
	return l.DistanceSquared(other) <= r*r
}

// AwayFrom returns the point at distance dist from l, on the ray pointing from
// threat through l. When both points coincide the heading of l picks the ray.
func (l Location) AwayFrom(threat Location, dist int32) Location {
	dx := float64(l.X - threat.X)
	dy := float64(l.Y - threat.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		angle := float64(l.Heading) * 2 * math.Pi / 65536
		dx, dy, length = math.Cos(angle), math.Sin(angle), 1
	}

	scale := float64(dist) / length
	return Location{
		X:       l.X + int32(math.Round(dx*scale)),
		Y:       l.Y + int32(math.Round(dy*scale)),
		Z:       l.Z,
		Heading: l.Heading,
	}
}
