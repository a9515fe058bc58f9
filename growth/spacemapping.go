package growth

import (
	"sync"
	"sync/atomic"

	"github.com/jarmillemich/colorgrow/geom"
)

// numShards is fixed rather than sized to the image, trading a little
// memory for simplicity; contention across 1024 shards is negligible
// next to the cost of the octree mutation each entry guards.
const numShards = 1024

// spaceMapping tracks, for every space position currently on the
// frontier, the set of candidate colors pending for it in the octree,
// one per already-placed neighbor. It exists so a mutation worker can look up
// "every entry to remove for this space" in one shard-local operation
// instead of scanning the whole octree for it, mirroring the original's
// CrashMap-shaped sharded concurrent map (crashmap.rs): fixed shard
// count, one RWMutex per shard, an atomic running count in place of
// crashmap's AtomicIsize length. Unlike crashmap.rs, nothing here ever
// iterates the whole map, so there is no occupancy bitmap and no
// foreach_lockfree. Every operation is a direct shard lookup by key.
type spaceMapping struct {
	shards [numShards]shard
	count  atomic.Int64
}

type shard struct {
	mu sync.RWMutex
	m  map[uint32][]geom.ColorPoint
}

func newSpaceMapping() *spaceMapping {
	sm := &spaceMapping{}
	for i := range sm.shards {
		sm.shards[i].m = make(map[uint32][]geom.ColorPoint)
	}
	return sm
}

func (s *spaceMapping) shardFor(offset uint32) *shard {
	return &s.shards[offset%numShards]
}

// Add registers color as a pending candidate for the space at offset.
func (s *spaceMapping) Add(offset uint32, color geom.ColorPoint) {
	sh := s.shardFor(offset)
	sh.mu.Lock()
	sh.m[offset] = append(sh.m[offset], color)
	sh.mu.Unlock()
	s.count.Add(1)
}

// TakeAll removes and returns every candidate color pending for offset.
func (s *spaceMapping) TakeAll(offset uint32) []geom.ColorPoint {
	sh := s.shardFor(offset)
	sh.mu.Lock()
	colors := sh.m[offset]
	delete(sh.m, offset)
	sh.mu.Unlock()
	if len(colors) > 0 {
		s.count.Add(-int64(len(colors)))
	}
	return colors
}

// Len reports the total number of pending (space,color) candidates
// across every shard. May read stale under concurrent mutation.
func (s *spaceMapping) Len() int64 {
	return s.count.Load()
}
