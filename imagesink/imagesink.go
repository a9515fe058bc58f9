// Package imagesink provides an append-only RGBA image buffer that
// enforces single-write-per-pixel semantics under concurrent writers.
package imagesink

import (
	"fmt"
	"sync/atomic"

	"github.com/jarmillemich/colorgrow/bitmap"
	"github.com/jarmillemich/colorgrow/geom"
)

// Sink is a fixed-size image buffer. Each pixel may be written exactly
// once; a second write to the same position panics. Reads that race a
// write may observe stale bytes; only the final snapshot taken via
// ToRaw after all writes complete is meaningful.
type Sink struct {
	width, height uint32
	r, g, b       []atomic.Uint32
	written       *bitmap.AtomicBitmap
}

// New allocates a Sink for a width x height image.
func New(width, height uint32) *Sink {
	if width == 0 || height == 0 {
		panic(fmt.Sprintf("imagesink: invalid dimensions %dx%d", width, height))
	}
	n := int(width) * int(height)
	return &Sink{
		width:   width,
		height:  height,
		r:       make([]atomic.Uint32, n),
		g:       make([]atomic.Uint32, n),
		b:       make([]atomic.Uint32, n),
		written: bitmap.New(n),
	}
}

// Write stores color at space's offset and marks it written. It panics on
// a double write to the same position; that is a programming error, not
// a recoverable race (the growth engine's bitmap arbitration is the only
// thing that is allowed to decide who gets to call Write for a given
// position, and it never calls it twice).
func (s *Sink) Write(space geom.SpacePoint, color geom.ColorPoint) {
	offset := int(space.Offset(s.width))
	if s.written.TestAndSet(offset) {
		panic(fmt.Sprintf("imagesink: double write at %s", space))
	}
	s.r[offset].Store(uint32(color.R))
	s.g[offset].Store(uint32(color.G))
	s.b[offset].Store(uint32(color.B))
}

// Has reports whether the pixel at space has been written.
func (s *Sink) Has(space geom.SpacePoint) bool {
	return s.written.Test(int(space.Offset(s.width)))
}

// ToRaw materializes an RGBA8 byte buffer, alpha fixed at 255. Unwritten
// pixels read back as (0,0,0,255).
func (s *Sink) ToRaw() []byte {
	n := int(s.width) * int(s.height)
	out := make([]byte, n*4)
	for o := 0; o < n; o++ {
		out[4*o] = byte(s.r[o].Load())
		out[4*o+1] = byte(s.g[o].Load())
		out[4*o+2] = byte(s.b[o].Load())
		out[4*o+3] = 255
	}
	return out
}

// Width and Height report the sink's dimensions.
func (s *Sink) Width() uint32  { return s.width }
func (s *Sink) Height() uint32 { return s.height }
