// Package bitmap provides a fixed-size, concurrently-mutable bit array used
// for the pixel-state flags in colorgrow's growth engine.
package bitmap

import (
	"fmt"
	"iter"
	"math/bits"
	"sync/atomic"
)

const wordBits = 64

// AtomicBitmap is a fixed-size bit array backed by atomic 64-bit words.
// Every operation is safe to call concurrently from multiple goroutines;
// there is no internal lock.
type AtomicBitmap struct {
	size  int
	words []atomic.Uint64
}

// New allocates an AtomicBitmap able to address indices in [0, size).
func New(size int) *AtomicBitmap {
	if size <= 0 {
		panic(fmt.Sprintf("bitmap: invalid size %d", size))
	}
	return &AtomicBitmap{
		size:  size,
		words: make([]atomic.Uint64, (size+wordBits-1)/wordBits),
	}
}

// Len reports the number of addressable bits.
func (b *AtomicBitmap) Len() int { return b.size }

func (b *AtomicBitmap) checkIndex(i int) {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("bitmap: index %d out of range [0,%d)", i, b.size))
	}
}

func (b *AtomicBitmap) wordAndMask(i int) (word int, mask uint64) {
	return i / wordBits, uint64(1) << uint(i%wordBits)
}

// TestAndSet atomically sets bit i and reports whether it was already set.
func (b *AtomicBitmap) TestAndSet(i int) bool {
	b.checkIndex(i)
	word, mask := b.wordAndMask(i)
	prev := b.words[word].Or(mask)
	return prev&mask != 0
}

// Clear atomically clears bit i and reports whether it was set before.
func (b *AtomicBitmap) Clear(i int) bool {
	b.checkIndex(i)
	word, mask := b.wordAndMask(i)
	prev := b.words[word].And(^mask)
	return prev&mask != 0
}

// Test performs a relaxed read of bit i.
func (b *AtomicBitmap) Test(i int) bool {
	b.checkIndex(i)
	word, mask := b.wordAndMask(i)
	return b.words[word].Load()&mask != 0
}

// All returns a lazy, finite iterator over the currently-set bit indices,
// in increasing order. Each word is snapshotted independently as it is
// visited, not as one atomic global snapshot; callers that need a
// consistent view across words must arrange their own synchronization;
// every use inside this module tolerates a stale read.
func (b *AtomicBitmap) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for w := range b.words {
			word := b.words[w].Load()
			if word == 0 {
				continue
			}
			base := w * wordBits
			for word != 0 {
				bit := bits.TrailingZeros64(word)
				if !yield(base + bit) {
					return
				}
				word &= word - 1
			}
		}
	}
}
