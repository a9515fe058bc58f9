package bitmap

import (
	"sync"
	"sync/atomic"
	"testing"

	"gopkg.in/check.v1"
)

func TestAll(t *testing.T) { check.TestingT(t) }

type BitmapSuite struct{}

var _ = check.Suite(&BitmapSuite{})

func (*BitmapSuite) TestBasics(c *check.C) {
	const numBits = 33
	b := New(numBits)

	for i := 0; i < numBits; i++ {
		c.Check(b.TestAndSet(i), check.Equals, false)
	}

	for i := 0; i < numBits; i++ {
		c.Check(b.Test(i), check.Equals, true)
	}

	for i := 0; i < numBits; i++ {
		c.Check(b.TestAndSet(i), check.Equals, true)
	}
}

func (*BitmapSuite) TestClearRoundTrip(c *check.C) {
	b := New(64)

	c.Check(b.TestAndSet(10), check.Equals, false)
	c.Check(b.Test(10), check.Equals, true)
	c.Check(b.Clear(10), check.Equals, true)
	c.Check(b.Test(10), check.Equals, false)
	c.Check(b.Clear(10), check.Equals, false)
}

func (*BitmapSuite) TestIteratorOrder(c *check.C) {
	b := New(128)
	set := []int{5, 7, 19, 63, 64, 65}
	for _, i := range set {
		b.TestAndSet(i)
	}

	var got []int
	for i := range b.All() {
		got = append(got, i)
	}

	c.Check(got, check.DeepEquals, set)
}

func (*BitmapSuite) TestIteratorEarlyStop(c *check.C) {
	b := New(128)
	for _, i := range []int{1, 2, 3, 4} {
		b.TestAndSet(i)
	}

	var got []int
	for i := range b.All() {
		got = append(got, i)
		if len(got) == 2 {
			break
		}
	}

	c.Check(got, check.DeepEquals, []int{1, 2})
}

func (*BitmapSuite) TestOutOfRangePanics(c *check.C) {
	b := New(8)
	c.Check(func() { b.Test(8) }, check.PanicMatches, "bitmap: index .* out of range .*")
}

func (*BitmapSuite) TestThreadedRace(c *check.C) {
	const numBits = 4096
	const threadCount = 16

	queueMask := New(numBits)
	writtenMask := New(numBits)
	var nextIndex atomic.Int64

	var wg sync.WaitGroup
	wg.Add(threadCount)

	for t := 0; t < threadCount; t++ {
		go func() {
			defer wg.Done()
			for {
				i := int(nextIndex.Add(1)) - 1
				if i >= numBits {
					return
				}

				if !queueMask.TestAndSet(i) {
					c.Check(writtenMask.TestAndSet(i), check.Equals, false)
				}
			}
		}()
	}

	wg.Wait()

	for i := 0; i < numBits; i++ {
		c.Check(queueMask.Test(i), check.Equals, true)
		c.Check(writtenMask.Test(i), check.Equals, true)
	}
}
