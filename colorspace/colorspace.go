// Package colorspace builds the two full enumerations the growth engine
// consumes: every 24-bit RGB color exactly once, and every pixel position
// in the target image exactly once. It does not decide an ordering for
// either; shuffling the color list and choosing seed positions remain
// the caller's concern.
package colorspace

import (
	"fmt"
	"math/rand/v2"

	"github.com/jarmillemich/colorgrow/geom"
)

// Colors returns all 2^24 24-bit RGB colors exactly once, enumerated R
// major, then G, then B. Nothing assumes this particular order, but it
// is kept deterministic so tests seeding a fixed RNG get reproducible
// output.
func Colors() []geom.ColorPoint {
	colors := make([]geom.ColorPoint, 0, 1<<24)
	for r := 0; r <= 255; r++ {
		for g := 0; g <= 255; g++ {
			for b := 0; b <= 255; b++ {
				colors = append(colors, geom.ColorPoint{R: uint8(r), G: uint8(g), B: uint8(b)})
			}
		}
	}
	return colors
}

// Spaces returns every pixel position of a width x height image exactly
// once, in row-major order (matching geom.SpacePoint.Offset).
func Spaces(width, height uint32) []geom.SpacePoint {
	if width == 0 || height == 0 {
		panic(fmt.Sprintf("colorspace: invalid dimensions %dx%d", width, height))
	}
	spaces := make([]geom.SpacePoint, 0, int(width)*int(height))
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			spaces = append(spaces, geom.SpacePoint{X: x, Y: y})
		}
	}
	return spaces
}

// Shuffle randomizes colors in place using rng. It is a thin convenience
// wrapper around rand.Shuffle. The growth engine only ever reads colors
// in whatever order it is handed, so callers remain free to supply their
// own ordering instead of calling this at all.
func Shuffle(colors []geom.ColorPoint, rng *rand.Rand) {
	rng.Shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})
}
