package octree

import (
	"sync"
	"testing"

	"gopkg.in/check.v1"

	"github.com/jarmillemich/colorgrow/geom"
)

func TestTree(t *testing.T) { check.TestingT(t) }

type TreeSuite struct{}

var _ = check.Suite(&TreeSuite{})

func (*TreeSuite) TestNewInvalidDepth(c *check.C) {
	_, err := New(0)
	c.Check(err, check.ErrorMatches, "octree: invalid depth 0")

	_, err = New(8)
	c.Check(err, check.ErrorMatches, "octree: invalid depth 8")
}

func (*TreeSuite) TestAddRemoveRoundTrip(c *check.C) {
	tree, err := New(3)
	c.Assert(err, check.IsNil)
	c.Check(tree.IsEmpty(), check.Equals, true)

	p := geom.Point{Space: geom.SpacePoint{X: 0, Y: 0}, Color: geom.ColorPoint{R: 10, G: 20, B: 30}}
	tree.Add(p)
	c.Check(tree.IsEmpty(), check.Equals, false)
	c.Check(tree.Len(), check.Equals, int64(1))
	c.Check(tree.HasPoint(p), check.Equals, true)
	c.Check(tree.Has(p.Space), check.Equals, true)

	c.Check(tree.Remove(p), check.Equals, true)
	c.Check(tree.IsEmpty(), check.Equals, true)
	c.Check(tree.HasPoint(p), check.Equals, false)
	c.Check(tree.Has(p.Space), check.Equals, false)
}

func (*TreeSuite) TestAddBatchSharesLeaf(c *check.C) {
	tree, err := New(3)
	c.Assert(err, check.IsNil)

	color := geom.ColorPoint{R: 5, G: 5, B: 5}
	points := []geom.Point{
		{Space: geom.SpacePoint{X: 0, Y: 0}, Color: color},
		{Space: geom.SpacePoint{X: 1, Y: 0}, Color: color},
		{Space: geom.SpacePoint{X: 0, Y: 1}, Color: color},
	}
	tree.AddBatch(color, points)

	c.Check(tree.Len(), check.Equals, int64(3))
	for _, p := range points {
		c.Check(tree.HasPoint(p), check.Equals, true)
	}
}

func (*TreeSuite) TestFindNearestSinglePoint(c *check.C) {
	tree, err := New(2)
	c.Assert(err, check.IsNil)

	p := geom.Point{Space: geom.SpacePoint{X: 0, Y: 0}, Color: geom.ColorPoint{R: 0, G: 0, B: 0}}
	tree.Add(p)

	queries := []geom.ColorPoint{
		{0, 0, 0}, {255, 255, 255}, {0, 0, 255}, {0, 255, 0},
		{0, 255, 255}, {255, 0, 0}, {255, 0, 255}, {255, 255, 0},
	}

	for _, q := range queries {
		got, ok := tree.FindNearest(q)
		c.Assert(ok, check.Equals, true)
		c.Check(got, check.Equals, p)
	}
}

func (*TreeSuite) TestFindNearestMulti(c *check.C) {
	tree, err := New(4)
	c.Assert(err, check.IsNil)

	placed := []geom.ColorPoint{
		{15, 118, 246}, {39, 85, 206}, {108, 135, 90}, {249, 228, 159},
		{83, 27, 105}, {20, 198, 200}, {99, 184, 189}, {87, 221, 39},
		{148, 27, 114}, {94, 189, 2}, {88, 186, 237}, {162, 144, 96},
		{195, 95, 154}, {246, 14, 205}, {238, 40, 80}, {183, 146, 75},
	}
	for _, pc := range placed {
		tree.Add(geom.Point{Space: geom.SpacePoint{X: 0, Y: 0}, Color: pc})
	}

	searches := []geom.ColorPoint{
		{50, 6, 84}, {62, 93, 91}, {224, 185, 93}, {209, 17, 203},
		{134, 202, 34}, {43, 153, 89}, {110, 142, 160}, {116, 107, 233},
		{38, 196, 2}, {240, 20, 107}, {233, 56, 187}, {248, 8, 36},
		{51, 202, 123}, {20, 65, 92}, {247, 3, 245}, {192, 158, 162},
	}

	for _, s := range searches {
		var want geom.ColorPoint
		best := int32(-1)
		for _, pc := range placed {
			d := pc.DistanceTo(s)
			if best < 0 || d < best {
				best = d
				want = pc
			}
		}

		got, ok := tree.FindNearest(s)
		c.Assert(ok, check.Equals, true)
		c.Check(got.Color.DistanceTo(s), check.Equals, best)
		c.Check(got.Color, check.Equals, want)
	}
}

func (*TreeSuite) TestFindNearestEmptyTree(c *check.C) {
	tree, err := New(3)
	c.Assert(err, check.IsNil)

	_, ok := tree.FindNearest(geom.ColorPoint{R: 1, G: 2, B: 3})
	c.Check(ok, check.Equals, false)
}

func (*TreeSuite) TestConcurrentAddFindRemove(c *check.C) {
	tree, err := New(4)
	c.Assert(err, check.IsNil)

	const n = 500
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			p := geom.Point{
				Space: geom.SpacePoint{X: uint32(i % 64), Y: uint32(i / 64)},
				Color: geom.ColorPoint{R: uint8(i), G: uint8(i * 3), B: uint8(i * 7)},
			}
			tree.Add(p)
			tree.FindNearest(p.Color)
			tree.Remove(p)
		}(i)
	}
	wg.Wait()

	c.Check(tree.Len(), check.Equals, int64(0))
}
