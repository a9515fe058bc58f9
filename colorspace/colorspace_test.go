package colorspace

import (
	"math/rand/v2"
	"testing"

	"gopkg.in/check.v1"

	"github.com/jarmillemich/colorgrow/geom"
)

func TestAll(t *testing.T) { check.TestingT(t) }

type ColorSpaceSuite struct{}

var _ = check.Suite(&ColorSpaceSuite{})

func (*ColorSpaceSuite) TestColorsAreDistinctAndComplete(c *check.C) {
	colors := Colors()
	c.Assert(colors, check.HasLen, 1<<24)

	seen := make(map[geom.ColorPoint]bool, len(colors))
	for _, col := range colors {
		c.Assert(seen[col], check.Equals, false)
		seen[col] = true
	}

	c.Check(colors[0], check.Equals, geom.ColorPoint{R: 0, G: 0, B: 0})
	c.Check(colors[len(colors)-1], check.Equals, geom.ColorPoint{R: 255, G: 255, B: 255})
}

func (*ColorSpaceSuite) TestSpacesAreDistinctAndComplete(c *check.C) {
	const w, h = 8, 6
	spaces := Spaces(w, h)
	c.Assert(spaces, check.HasLen, w*h)

	seen := make(map[geom.SpacePoint]bool, len(spaces))
	for _, sp := range spaces {
		c.Assert(seen[sp], check.Equals, false)
		seen[sp] = true
	}
}

func (*ColorSpaceSuite) TestSpacesInvalidDimensions(c *check.C) {
	c.Check(func() { Spaces(0, 4) }, check.PanicMatches, "colorspace: invalid dimensions.*")
}

func (*ColorSpaceSuite) TestShuffleIsPermutation(c *check.C) {
	small := []geom.ColorPoint{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {4, 4, 4}}
	before := make([]geom.ColorPoint, len(small))
	copy(before, small)

	rng := rand.New(rand.NewPCG(1, 2))
	Shuffle(small, rng)

	c.Assert(small, check.HasLen, len(before))
	seen := make(map[geom.ColorPoint]bool)
	for _, col := range small {
		seen[col] = true
	}
	for _, col := range before {
		c.Check(seen[col], check.Equals, true)
	}
}
