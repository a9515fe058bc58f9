package geom

import "fmt"

// BoundingBox is an axis-aligned, inclusive cube in RGB space.
type BoundingBox struct {
	LR, LG, LB int32 // lower bounds
	UR, UG, UB int32 // upper bounds
}

// NewBoundingBox builds a BoundingBox from explicit inclusive bounds.
func NewBoundingBox(lr, lg, lb, ur, ug, ub int32) BoundingBox {
	return BoundingBox{LR: lr, LG: lg, LB: lb, UR: ur, UG: ug, UB: ub}
}

// FromAround builds the cube [c-r, c+r] per channel. Bounds are not
// clamped to [0,255]: callers only ever compare them against the root
// cube's bounds via Intersects/Contains, so an out-of-range search cube
// still behaves correctly and clamping would just be extra arithmetic on
// the hot path.
func FromAround(center ColorPoint, radius int32) BoundingBox {
	if radius <= 0 {
		panic(fmt.Sprintf("geom: non-positive search radius %d", radius))
	}
	return BoundingBox{
		LR: int32(center.R) - radius, UR: int32(center.R) + radius,
		LG: int32(center.G) - radius, UG: int32(center.G) + radius,
		LB: int32(center.B) - radius, UB: int32(center.B) + radius,
	}
}

// Intersects reports whether two inclusive cubes share any point.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return !(b.UR < o.LR || o.UR < b.LR) &&
		!(b.UG < o.LG || o.UG < b.LG) &&
		!(b.UB < o.LB || o.UB < b.LB)
}

// Contains reports whether o lies entirely within b.
func (b BoundingBox) Contains(o BoundingBox) bool {
	return o.UR <= b.UR && o.LR >= b.LR &&
		o.UG <= b.UG && o.LG >= b.LG &&
		o.UB <= b.UB && o.LB >= b.LB
}

// ContainsColor reports whether color c lies within b's inclusive bounds.
func (b BoundingBox) ContainsColor(c ColorPoint) bool {
	r, g, bl := int32(c.R), int32(c.G), int32(c.B)
	return r >= b.LR && r <= b.UR &&
		g >= b.LG && g <= b.UG &&
		bl >= b.LB && bl <= b.UB
}

// SubForIdx returns the octant of b addressed by idx (a 3-bit value,
// bit 2 = R half, bit 1 = G half, bit 0 = B half), where radius is half
// the side length of b. The lower half ends at b's lower bound + radius
// and the upper half starts at b's upper bound - radius, so with inclusive
// bounds the two halves overlap (the root [0,255] splits into [0,128] and
// [127,255]).
func (b BoundingBox) SubForIdx(idx int, radius int32) BoundingBox {
	sub := b
	if idx&4 != 0 {
		sub.LR = b.UR - radius
	} else {
		sub.UR = b.LR + radius
	}
	if idx&2 != 0 {
		sub.LG = b.UG - radius
	} else {
		sub.UG = b.LG + radius
	}
	if idx&1 != 0 {
		sub.LB = b.UB - radius
	} else {
		sub.UB = b.LB + radius
	}
	return sub
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("Bounds< R in [%d, %d] G in [%d, %d] B in [%d, %d] >",
		b.LR, b.UR, b.LG, b.UG, b.LB, b.UB)
}
