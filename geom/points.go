// Package geom holds the value types shared by colorgrow's spatial index
// and growth engine: pixel positions, RGB colors, and the combination of
// the two that the octree indexes.
package geom

import "fmt"

// Width and Height are the nominal image dimensions colorgrow targets.
// growth.Config may override them for smaller test images; the imagesink
// and colorspace packages take dimensions as explicit parameters rather than
// compiling these constants in, so the override is a real parameter, not
// a build-time switch.
const (
	Width  = 4096
	Height = 4096
)

// SpacePoint is a pixel position in [0,Width) x [0,Height).
type SpacePoint struct {
	X, Y uint32
}

// Offset packs the position into a single row-major index, y*width+x.
func (s SpacePoint) Offset(width uint32) uint32 {
	return s.Y*width + s.X
}

// Neighbors returns the up-to-four 4-connected positions around s,
// skipping any that would fall outside [0,width) x [0,height).
func (s SpacePoint) Neighbors(width, height uint32) []SpacePoint {
	ret := make([]SpacePoint, 0, 4)
	if s.X > 0 {
		ret = append(ret, SpacePoint{s.X - 1, s.Y})
	}
	if s.X < width-1 {
		ret = append(ret, SpacePoint{s.X + 1, s.Y})
	}
	if s.Y > 0 {
		ret = append(ret, SpacePoint{s.X, s.Y - 1})
	}
	if s.Y < height-1 {
		ret = append(ret, SpacePoint{s.X, s.Y + 1})
	}
	return ret
}

func (s SpacePoint) String() string {
	return fmt.Sprintf("Space<%d,%d>", s.X, s.Y)
}

// ColorPoint is an RGB triple, each channel in [0,256).
type ColorPoint struct {
	R, G, B uint8
}

// DistanceTo returns the squared Euclidean distance between two colors.
// The maximum possible value is 3*255*255 < 2^18, so int32 never
// overflows.
func (c ColorPoint) DistanceTo(other ColorPoint) int32 {
	dr := int32(c.R) - int32(other.R)
	dg := int32(c.G) - int32(other.G)
	db := int32(c.B) - int32(other.B)
	return dr*dr + dg*dg + db*db
}

func (c ColorPoint) String() string {
	return fmt.Sprintf("Color<%d,%d,%d>", c.R, c.G, c.B)
}

// Point is a candidate placement: a pending space position paired with
// one of its neighboring placed colors. The same SpacePoint may appear in
// the octree multiple times, once per distinct candidate color.
type Point struct {
	Space SpacePoint
	Color ColorPoint
}

func (p Point) String() string {
	return fmt.Sprintf("Point<%s # %s>", p.Space, p.Color)
}
