// Package growth implements the seeded nearest-color growth process: it
// owns the frontier (an octree.Tree of colored candidate points), the
// pixel-state bitmaps, and the image sink, and drives placement of a
// shuffled color sequence onto a growing region one nearest-match at a
// time.
package growth

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jarmillemich/colorgrow/bitmap"
	"github.com/jarmillemich/colorgrow/colorspace"
	"github.com/jarmillemich/colorgrow/geom"
	"github.com/jarmillemich/colorgrow/imagesink"
	"github.com/jarmillemich/colorgrow/octree"
)

// Engine drives the growth process described in spec.md: seeds are
// placed directly, then GrowPixelsTo dispatches nearest-color searches
// against the frontier octree, arbitrates claims through writtenBits, and
// applies the resulting mutations. All exported methods are safe to call
// concurrently except that AddSeedPixel and GrowPixelsTo are expected to
// be called from setup code before growth begins, not interleaved with
// each other.
type Engine struct {
	cfg Config

	colors []geom.ColorPoint
	spaces []geom.SpacePoint

	writingBits *bitmap.AtomicBitmap
	writtenBits *bitmap.AtomicBitmap
	root        *octree.Tree
	image       *imagesink.Sink
	spaceMap    *spaceMapping

	currentColorIdx atomic.Int64
	stats           atomicStats
}

// New constructs an Engine over exactly cfg.Width*cfg.Height colors. The
// caller owns shuffling colors into the order it wants placed. See
// colorspace.Shuffle for a convenience wrapper.
func New(colors []geom.ColorPoint, cfg Config) (*Engine, error) {
	want := int(cfg.Width) * int(cfg.Height)
	if len(colors) != want {
		return nil, fmt.Errorf("growth: need exactly %d colors for a %dx%d image, got %d",
			want, cfg.Width, cfg.Height, len(colors))
	}

	root, err := octree.New(cfg.OctreeDepth)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:         cfg,
		colors:      colors,
		spaces:      colorspace.Spaces(cfg.Width, cfg.Height),
		writingBits: bitmap.New(want),
		writtenBits: bitmap.New(want),
		root:        root,
		image:       imagesink.New(cfg.Width, cfg.Height),
		spaceMap:    newSpaceMapping(),
	}, nil
}

// Image returns the sink being painted into. It is safe to read ToRaw
// from it only after GrowPixelsTo has returned.
func (e *Engine) Image() *imagesink.Sink { return e.image }

// Spaces returns every pixel position in row-major order, for callers
// that pick their own seeding policy.
func (e *Engine) Spaces() []geom.SpacePoint { return e.spaces }

// Stats returns a point-in-time snapshot of diagnostic counters.
func (e *Engine) Stats() Stats { return e.stats.snapshot() }

func (e *Engine) nextColor() (geom.ColorPoint, int, bool) {
	i := int(e.currentColorIdx.Add(1)) - 1
	if i >= len(e.colors) {
		return geom.ColorPoint{}, i, false
	}
	return e.colors[i], i, true
}

// AddSeedPixel places the next unconsumed color from the sequence at
// (x,y), then extends the frontier with that color into every unwritten
// neighbor. It panics if the position is already claimed or written;
// re-seeding a position is a programming error, not a recoverable race.
func (e *Engine) AddSeedPixel(x, y uint32) {
	color, _, ok := e.nextColor()
	if !ok {
		panic("growth: no colors remain to seed with")
	}

	space := geom.SpacePoint{X: x, Y: y}
	offset := space.Offset(e.cfg.Width)

	if e.writingBits.TestAndSet(int(offset)) || e.writtenBits.TestAndSet(int(offset)) {
		panic(fmt.Sprintf("growth: seeded already-claimed position %s", space))
	}

	e.image.Write(space, color)
	e.stats.placed.Add(1)
	e.addNeighbors(space, color)
}

// addNeighbors extends the frontier from a just-placed pixel: every
// unwritten, unclaimed 4-neighbor gets a new candidate colored with the
// placement's color. A neighbor is claimed only for the very short
// duration of its spaceMapping registration, so two concurrent placements
// that share a neighbor cannot both register for it at once; the claim is
// released before the octree insert, since it is not the permanent
// per-pixel claim the growth arbiter uses. Candidates for a neighbor that
// was placed in the meantime are removed again after the insert.
func (e *Engine) addNeighbors(space geom.SpacePoint, color geom.ColorPoint) {
	neighbors := space.Neighbors(e.cfg.Width, e.cfg.Height)
	fresh := make([]geom.Point, 0, len(neighbors))

	for _, n := range neighbors {
		offset := n.Offset(e.cfg.Width)
		if e.writtenBits.Test(int(offset)) || e.writingBits.Test(int(offset)) {
			continue
		}
		if e.writingBits.TestAndSet(int(offset)) {
			// Somebody else is already adding (or claiming) this
			// neighbor; let them.
			continue
		}

		e.spaceMap.Add(offset, color)
		fresh = append(fresh, geom.Point{Space: n, Color: color})

		if !e.writingBits.Clear(int(offset)) {
			panic(fmt.Sprintf("growth: lost our own claim on %s", n))
		}
	}

	if len(fresh) > 0 {
		e.root.AddBatch(color, fresh)
	}

	// A neighbor placed after the writtenBits check above may already have
	// had its candidates taken by its own mutation job, before ours were
	// registered or inserted; drop whatever is left for it now.
	for _, p := range fresh {
		offset := p.Space.Offset(e.cfg.Width)
		if !e.writtenBits.Test(int(offset)) {
			continue
		}
		e.root.Remove(p)
		for _, stale := range e.spaceMap.TakeAll(offset) {
			e.root.Remove(geom.Point{Space: p.Space, Color: stale})
		}
	}
}

// searchJob is one color awaiting a nearest-candidate lookup.
type searchJob struct {
	idx   int
	color geom.ColorPoint
}

// searchResult pairs a search job with the frontier candidate that
// matched it.
type searchResult struct {
	idx   int
	color geom.ColorPoint
	point geom.Point
}

// GrowPixelsTo drives placement until at least target pixels (seeds
// included) have been written, or ctx is cancelled. It is the concurrent
// engine at the center of the package: a fixed pool of search workers
// repeatedly finds the frontier point nearest each dispatched color. The
// arbiter runs synchronously on the calling goroutine as the sole mutator
// of writtenBits. It resolves each search result against the current
// pixel state and hands confirmed placements to a fixed pool of mutation
// workers that apply the resulting octree removals and insertions.
func (e *Engine) GrowPixelsTo(ctx context.Context, target int) error {
	if int64(target) <= e.stats.placed.Load() {
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)

	searchCh := make(chan searchJob, e.cfg.DispatchBatch)
	resultCh := make(chan searchResult, e.cfg.DispatchBatch)
	mutationCh := make(chan mutationJob, e.cfg.DispatchBatch)

	for i := 0; i < e.cfg.SearchWorkers; i++ {
		group.Go(func() error {
			return e.runSearchWorker(gctx, searchCh, resultCh)
		})
	}
	for i := 0; i < e.cfg.MutationWorkers; i++ {
		group.Go(func() error {
			return e.runMutationWorker(gctx, mutationCh)
		})
	}

	arbiterErr := e.runArbiter(gctx, target, searchCh, resultCh, mutationCh)

	close(searchCh)
	close(mutationCh)

	if err := group.Wait(); err != nil && arbiterErr == nil {
		arbiterErr = err
	}
	return arbiterErr
}

// runArbiter is the sole mutator of writtenBits. It keeps up to
// DispatchBatch searches outstanding, resolving each result as either a
// confirmed placement (handed to the mutation pool) or a stale collision
// (the candidate's space was claimed by a different placement first,
// so the same color is redispatched for a fresh search).
func (e *Engine) runArbiter(
	ctx context.Context,
	target int,
	searchCh chan<- searchJob,
	resultCh <-chan searchResult,
	mutationCh chan<- mutationJob,
) error {
	outstanding := 0

	dispatchOne := func() (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		color, idx, ok := e.nextColor()
		if !ok {
			return false, nil
		}
		select {
		case searchCh <- searchJob{idx: idx, color: color}:
			outstanding++
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	for e.stats.placed.Load() < int64(target) || outstanding > 0 {
		for outstanding < e.cfg.DispatchBatch && e.stats.placed.Load()+int64(outstanding) < int64(target) {
			dispatched, err := dispatchOne()
			if err != nil {
				return err
			}
			if !dispatched {
				break
			}
		}
		if outstanding == 0 {
			break
		}

		var res searchResult
		select {
		case res = <-resultCh:
		case <-ctx.Done():
			return ctx.Err()
		}
		outstanding--

		offset := res.point.Space.Offset(e.cfg.Width)
		if e.writtenBits.TestAndSet(int(offset)) {
			// Lost the race: someone else already wrote this space.
			// The candidate itself is still sitting in the octree.
			// Whoever wins the race removes every candidate for this
			// space, ours included, so just retry the color.
			e.stats.collisionMisses.Add(1)
			select {
			case searchCh <- searchJob{idx: res.idx, color: res.color}:
				outstanding++
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		e.image.Write(res.point.Space, res.color)
		e.stats.placed.Add(1)
		e.logProgress()

		select {
		case mutationCh <- mutationJob{space: res.point.Space, color: res.color}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (e *Engine) runSearchWorker(ctx context.Context, searchCh <-chan searchJob, resultCh chan<- searchResult) error {
	for {
		var job searchJob
		var ok bool
		select {
		case job, ok = <-searchCh:
			if !ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		for {
			point, found := e.root.FindNearest(job.color)
			if found {
				select {
				case resultCh <- searchResult{idx: job.idx, color: job.color, point: point}:
				case <-ctx.Done():
					return ctx.Err()
				}
				break
			}
			// The frontier is momentarily empty for every point reachable
			// from job.color (a concurrent placement hasn't registered its
			// neighbors yet). Spin-retry rather than failing the search;
			// this is an expected transient miss, not an error.
			e.stats.colorMisses.Add(1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
}

// mutationJob is a confirmed placement awaiting its octree mutation:
// every stale candidate registered for space is removed, then the
// frontier is extended from space with color.
type mutationJob struct {
	space geom.SpacePoint
	color geom.ColorPoint
}

func (e *Engine) runMutationWorker(ctx context.Context, mutationCh <-chan mutationJob) error {
	for {
		var job mutationJob
		var ok bool
		select {
		case job, ok = <-mutationCh:
			if !ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		offset := job.space.Offset(e.cfg.Width)
		for _, stale := range e.spaceMap.TakeAll(offset) {
			e.root.Remove(geom.Point{Space: job.space, Color: stale})
		}
		e.addNeighbors(job.space, job.color)
	}
}

func (e *Engine) logProgress() {
	if e.cfg.Logger == nil || e.cfg.LogInterval <= 0 {
		return
	}
	placed := e.stats.placed.Load()
	if placed%int64(e.cfg.LogInterval) == 0 {
		e.cfg.Logger.Printf("growth: placed %d/%d (colorMisses=%d collisionMisses=%d)",
			placed, len(e.colors), e.stats.colorMisses.Load(), e.stats.collisionMisses.Load())
	}
}
