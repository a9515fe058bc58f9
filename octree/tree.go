// Package octree implements the leafy, depth-bounded spatial index the
// growth engine uses to find the frontier point whose candidate color is
// nearest a target color. It is the "leafy" shape the original design
// settled on: a fixed tree built once at construction time, searched
// strictly top-down with a shrinking bounding box, with no parent
// pointers and no reference cycles.
package octree

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/jarmillemich/colorgrow/geom"
)

const (
	minDepth = 1
	maxDepth = 7
)

// node is either an inner node (children != nil) or a leaf (children ==
// nil). totalPoints is maintained on every node along a point's path,
// including the leaf holding it, and is read during search to prune
// subtrees that currently hold nothing; under concurrent mutation it may
// read stale, which search tolerates (see Tree.FindNearest).
type node struct {
	bounds      geom.BoundingBox
	depth       int
	totalPoints atomic.Int64

	children [8]*node

	mu     sync.RWMutex
	points []geom.Point
}

func (n *node) isLeaf() bool { return n.children[0] == nil }

// Tree is a fixed-depth octree over the RGB cube [0,255]^3. All exported
// methods are safe to call concurrently.
type Tree struct {
	root  *node
	depth int
}

// New builds a tree of the given depth (1-7; depth 4 is the recommended
// tuning point: fine enough to keep leaf scans small, shallow enough to
// keep memory and descent cost low).
func New(depth int) (*Tree, error) {
	if depth < minDepth || depth > maxDepth {
		return nil, fmt.Errorf("octree: invalid depth %d", depth)
	}
	root := buildNode(0, depth, geom.NewBoundingBox(0, 0, 0, 255, 255, 255))
	return &Tree{root: root, depth: depth}, nil
}

func buildNode(depth, remaining int, bounds geom.BoundingBox) *node {
	n := &node{bounds: bounds, depth: depth}
	if remaining == 0 {
		return n
	}
	subRadius := radiusForDepth(depth)
	for i := 0; i < 8; i++ {
		n.children[i] = buildNode(depth+1, remaining-1, bounds.SubForIdx(i, subRadius))
	}
	return n
}

// radiusForDepth is the half-width used both to split a node's bounds
// into its 8 children and to compute the octant address of a color within
// that node; the two must agree or addressing and bounds would disagree.
func radiusForDepth(depth int) int32 {
	return 128 >> uint(depth)
}

func addrForDepth(depth int, c geom.ColorPoint) int {
	mask := radiusForDepth(depth)
	over := uint(7 - depth)
	ar := (int32(c.R) & mask) >> over
	ag := (int32(c.G) & mask) >> over
	ab := (int32(c.B) & mask) >> over
	return int(ar<<2 | ag<<1 | ab)
}

func (n *node) childFor(c geom.ColorPoint) *node {
	return n.children[addrForDepth(n.depth, c)]
}

// Len returns the number of points currently stored in the tree. It may
// be stale the instant it returns under concurrent mutation.
func (t *Tree) Len() int64 { return t.root.totalPoints.Load() }

// IsEmpty reports whether the tree currently holds no points.
func (t *Tree) IsEmpty() bool { return t.Len() == 0 }

// Add inserts a point, descending by its color octant from the root to a
// leaf and incrementing totalPoints at every node along the path.
func (t *Tree) Add(p geom.Point) {
	n := t.root
	for {
		n.totalPoints.Add(1)
		if n.isLeaf() {
			n.mu.Lock()
			n.points = append(n.points, p)
			n.mu.Unlock()
			return
		}
		n = n.childFor(p.Color)
	}
}

// AddBatch inserts several points that all share the same color in one
// descent, updating each ancestor's totalPoints once for the whole batch
// instead of once per point. This is the one case the growth engine's
// frontier extension actually hits: the up-to-four newly-exposed neighbors
// of a placement are always colored with the placement's color.
func (t *Tree) AddBatch(color geom.ColorPoint, points []geom.Point) {
	if len(points) == 0 {
		return
	}
	path := make([]*node, 0, t.depth+1)
	n := t.root
	path = append(path, n)
	for !n.isLeaf() {
		n = n.childFor(color)
		path = append(path, n)
	}

	leaf := path[len(path)-1]
	leaf.mu.Lock()
	leaf.points = append(leaf.points, points...)
	leaf.mu.Unlock()

	delta := int64(len(points))
	for _, anc := range path {
		anc.totalPoints.Add(delta)
	}
}

// Remove deletes every entry equal to p (by (space,color) identity) and
// reports whether anything was removed. Duplicates should not occur in
// practice, but removal is written to delete all matches in one pass
// rather than assume uniqueness.
func (t *Tree) Remove(p geom.Point) bool {
	n := t.root
	for !n.isLeaf() {
		child := n.childFor(p.Color)
		removed := child.remove(p)
		if removed > 0 {
			n.totalPoints.Add(-int64(removed))
			return true
		}
		n = child
	}
	return n.remove(p) > 0
}

func (n *node) remove(p geom.Point) int {
	if !n.isLeaf() {
		child := n.childFor(p.Color)
		removed := child.remove(p)
		if removed > 0 {
			n.totalPoints.Add(-int64(removed))
		}
		return removed
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	before := len(n.points)
	kept := n.points[:0]
	for _, q := range n.points {
		if q != p {
			kept = append(kept, q)
		}
	}
	n.points = kept
	removed := before - len(kept)
	if removed > 0 {
		n.totalPoints.Add(-int64(removed))
	}
	return removed
}

// Has reports whether any entry for the given space position exists,
// regardless of its candidate color. This requires a full scan since
// entries are addressed by color, not space.
func (t *Tree) Has(space geom.SpacePoint) bool {
	return t.root.has(space)
}

func (n *node) has(space geom.SpacePoint) bool {
	if n.totalPoints.Load() == 0 {
		return false
	}
	if n.isLeaf() {
		n.mu.RLock()
		defer n.mu.RUnlock()
		for _, p := range n.points {
			if p.Space == space {
				return true
			}
		}
		return false
	}
	for _, c := range n.children {
		if c.has(space) {
			return true
		}
	}
	return false
}

// HasPoint reports whether the exact (space,color) pair is present.
// Unlike Has, this descends a single path by color.
func (t *Tree) HasPoint(p geom.Point) bool {
	n := t.root
	for !n.isLeaf() {
		n = n.childFor(p.Color)
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, q := range n.points {
		if q == p {
			return true
		}
	}
	return false
}

type searchState struct {
	nearest     geom.Point
	nearestDist int32
	bounds      geom.BoundingBox
}

// FindNearest returns the stored point whose color is nearest to color,
// or false if the tree is empty or a concurrent removal raced the search
// to emptiness (the caller is expected to re-dispatch in that case).
func (t *Tree) FindNearest(color geom.ColorPoint) (geom.Point, bool) {
	if t.root.totalPoints.Load() == 0 {
		return geom.Point{}, false
	}

	at := t.root
	for !at.isLeaf() {
		next := at.childFor(color)
		if next.totalPoints.Load() == 0 {
			break
		}
		at = next
	}

	nearest, ok := at.firstPoint()
	if !ok {
		return geom.Point{}, false
	}

	dist := nearest.Color.DistanceTo(color)
	if dist == 0 {
		return nearest, true
	}

	search := &searchState{
		nearest:     nearest,
		nearestDist: dist,
		bounds:      geom.FromAround(color, isqrt(dist)),
	}

	t.root.findNearestInner(color, search)
	return search.nearest, true
}

func (n *node) firstPoint() (geom.Point, bool) {
	if n.totalPoints.Load() == 0 {
		return geom.Point{}, false
	}
	if n.isLeaf() {
		n.mu.RLock()
		defer n.mu.RUnlock()
		if len(n.points) == 0 {
			return geom.Point{}, false
		}
		return n.points[0], true
	}
	for _, c := range n.children {
		if p, ok := c.firstPoint(); ok {
			return p, true
		}
	}
	return geom.Point{}, false
}

func (n *node) findNearestInner(color geom.ColorPoint, search *searchState) {
	if n.isLeaf() {
		n.mu.RLock()
		defer n.mu.RUnlock()
		for _, p := range n.points {
			if !search.bounds.ContainsColor(p.Color) {
				continue
			}
			dist := p.Color.DistanceTo(color)
			if dist == 0 {
				search.nearest = p
				search.nearestDist = 0
				return
			}
			if dist < search.nearestDist {
				search.nearest = p
				search.nearestDist = dist
				search.bounds = geom.FromAround(color, isqrt(dist))
			}
		}
		return
	}

	for _, c := range n.children {
		if c.totalPoints.Load() == 0 {
			continue
		}
		if !c.bounds.Intersects(search.bounds) {
			continue
		}
		c.findNearestInner(color, search)
	}
}

// isqrt returns floor(sqrt(n)) for n >= 0, using integer arithmetic only
// in the correction step to avoid float round-trip surprises right at
// perfect squares.
func isqrt(n int32) int32 {
	if n <= 0 {
		return 0
	}
	x := int32(math.Sqrt(float64(n)))
	for (x+1)*(x+1) <= n {
		x++
	}
	for x*x > n {
		x--
	}
	return x
}
