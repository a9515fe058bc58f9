package imagesink

import (
	"testing"

	"gopkg.in/check.v1"

	"github.com/jarmillemich/colorgrow/geom"
)

func TestAll(t *testing.T) { check.TestingT(t) }

type SinkSuite struct{}

var _ = check.Suite(&SinkSuite{})

func (*SinkSuite) TestWriteAndReadBack(c *check.C) {
	s := New(4, 4)
	sp := geom.SpacePoint{X: 2, Y: 1}
	col := geom.ColorPoint{R: 10, G: 20, B: 30}

	c.Check(s.Has(sp), check.Equals, false)
	s.Write(sp, col)
	c.Check(s.Has(sp), check.Equals, true)

	raw := s.ToRaw()
	offset := int(sp.Offset(4))
	c.Check(raw[4*offset], check.Equals, byte(10))
	c.Check(raw[4*offset+1], check.Equals, byte(20))
	c.Check(raw[4*offset+2], check.Equals, byte(30))
	c.Check(raw[4*offset+3], check.Equals, byte(255))
}

func (*SinkSuite) TestDoubleWritePanics(c *check.C) {
	s := New(4, 4)
	sp := geom.SpacePoint{X: 0, Y: 0}
	s.Write(sp, geom.ColorPoint{})

	c.Check(func() {
		s.Write(sp, geom.ColorPoint{R: 1})
	}, check.PanicMatches, "imagesink: double write at .*")
}

func (*SinkSuite) TestUnwrittenDefaultsOpaqueBlack(c *check.C) {
	s := New(2, 2)
	raw := s.ToRaw()
	for o := 0; o < 4; o++ {
		c.Check(raw[4*o], check.Equals, byte(0))
		c.Check(raw[4*o+1], check.Equals, byte(0))
		c.Check(raw[4*o+2], check.Equals, byte(0))
		c.Check(raw[4*o+3], check.Equals, byte(255))
	}
}
