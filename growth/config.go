package growth

import (
	"log"

	"github.com/jarmillemich/colorgrow/geom"
)

// Config parameterizes an Engine. The zero value is not usable directly;
// call DefaultConfig and override what needs overriding. Constants may
// be parameterized while 4096x4096/24-bit remains the nominal case,
// which is exactly what DefaultConfig returns.
type Config struct {
	Width, Height uint32

	// OctreeDepth tunes the spatial index; 4 is the recommended default
	// (fine enough to keep leaf scans small, shallow enough to keep
	// descent and memory cost low).
	OctreeDepth int

	// SearchWorkers is the size of the fixed nearest-neighbor search
	// pool. MutationWorkers is the size of the octree-mutation pool;
	// the design recommends 1, since mutation-channel order is only
	// guaranteed per-worker and a single worker keeps the removals-
	// before-additions ordering trivially correct across placements.
	SearchWorkers   int
	MutationWorkers int

	// DispatchBatch bounds how many colors the arbiter keeps in flight
	// (fresh dispatches plus retried collisions) at once.
	DispatchBatch int

	// Logger receives periodic progress lines; LogInterval is how many
	// placements occur between them. A nil Logger disables logging.
	Logger      *log.Logger
	LogInterval int
}

// DefaultConfig returns the nominal 4096x4096/24-bit configuration.
func DefaultConfig() Config {
	return Config{
		Width:           geom.Width,
		Height:          geom.Height,
		OctreeDepth:     4,
		SearchWorkers:   4,
		MutationWorkers: 1,
		DispatchBatch:   16,
		Logger:          log.Default(),
		LogInterval:     1 << 18,
	}
}
