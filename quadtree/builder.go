package quadtree

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/sbma44/adm0-reverse/errs"
	"github.com/sbma44/adm0-reverse/oracle"
	"github.com/sbma44/adm0-reverse/rect"
)

// ProgressSink receives periodic, purely observational progress reports
// from Build, plus depth-limit warnings (spec §7: DepthLimit events are
// logged, not fatal). Neither call ever influences the tree that gets
// built: the rate ReportProgress is called at is independent of sampling,
// branching, or the PRNG stream (see Config.ProgressInterval). Build passes
// the cumulative oracle-call count; it does not track leaves during the
// build, so the leaves argument it passes is always 0.
type ProgressSink interface {
	ReportProgress(oracleCalls int64, leaves int)
	Warning(format string, args ...interface{})
}

// Config collects the builder's tuning knobs (spec §4.3).
type Config struct {
	// SampleK is the number of pseudo-random interior samples drawn per
	// rectangle, in addition to the fixed corner/center/stratified points.
	SampleK int
	// BruteForceThreshold is the largest lattice-point count a rectangle
	// may have and still be proven uniform by exhaustive evaluation.
	BruteForceThreshold int64
	// MaxDepth caps recursion depth; once reached the builder switches to
	// forced brute force (spec step 6) instead of recursing further via
	// sampling.
	MaxDepth int
	// RNGSeed seeds the per-rectangle deterministic PRNG.
	RNGSeed int64
	// Parallel builds the four top-level children concurrently. The
	// oracle must be safe for concurrent reads when set.
	Parallel bool
	// Progress, if non-nil, is notified roughly every ProgressInterval
	// oracle calls. Never affects the built tree.
	Progress         ProgressSink
	ProgressInterval int64
}

// DefaultConfig returns reasonable defaults: sample_k=16,
// brute_force_threshold=4096, max_depth=40 (above
// ceil(log2(max(Xmax,Ymax)))+2 for precisions up to 8), rng_seed=1.
func DefaultConfig() Config {
	return Config{
		SampleK:             16,
		BruteForceThreshold: 4096,
		MaxDepth:            40,
		RNGSeed:             1,
		ProgressInterval:    10000,
	}
}

// Build runs the prove-or-split recursion (spec §4.3) over root against o,
// returning the materialized tree. Two builds with identical (o, cfg)
// produce identical trees (property 6).
func Build(ctx context.Context, o oracle.Oracle, root rect.Rect, cfg Config) (*Node, error) {
	b := &builder{oracle: o, cfg: cfg}
	n, err := b.build(ctx, root, 0, false)
	if err != nil {
		return nil, err
	}
	return n, nil
}

type builder struct {
	oracle oracle.Oracle
	cfg    Config

	oracleCalls int64
}

func (b *builder) at(ilat, ilon int64) (uint16, error) {
	n := atomic.AddInt64(&b.oracleCalls, 1)
	id, err := b.oracle.At(ilat, ilon)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrOracleFailure, err)
	}
	if b.cfg.Progress != nil && b.cfg.ProgressInterval > 0 && n%b.cfg.ProgressInterval == 0 {
		b.cfg.Progress.ReportProgress(n, 0)
	}
	return id, nil
}

func (b *builder) build(ctx context.Context, r rect.Rect, depth int, forced bool) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.ErrCancelled
	}

	// Step 1: singleton.
	if r.IsPoint() {
		id, err := b.at(r.Y0, r.X0)
		if err != nil {
			return nil, err
		}
		return NewLeaf(id), nil
	}

	if !forced {
		if depth >= b.cfg.MaxDepth {
			// Step 6: depth guard. Non-fatal: warn through the progress
			// sink (if any) and fall back to forced brute force instead
			// of returning errs.ErrDepthLimit to the caller.
			if b.cfg.Progress != nil {
				b.cfg.Progress.Warning("%v: rect (%d,%d)-(%d,%d) at depth %d, forcing brute force",
					errs.ErrDepthLimit, r.X0, r.Y0, r.X1, r.Y1, depth)
			}
			forced = true
		} else {
			uniform, id, err := b.sampleAndCheck(r)
			if err != nil {
				return nil, err
			}
			if uniform {
				n := r.PointCount()
				if n <= b.cfg.BruteForceThreshold {
					// Step 3: prove by exhaustive evaluation.
					ok, err := b.bruteForceUniform(r, id)
					if err != nil {
						return nil, err
					}
					if ok {
						return NewLeaf(id), nil
					}
					// samples agreed but a corner case inside disagrees: split.
				} else {
					// Step 4: conservative split (too large to prove).
				}
			}
			// Step 2 disagreement, step 3 failure, or step 4: fall through to split.
		}
	}

	if forced {
		// Step 6 continued: evaluate every lattice point; if uniform,
		// prove directly regardless of BruteForceThreshold (we are
		// already past MaxDepth, so the rectangle is expected to be
		// small per the max_depth sizing contract in spec §4.3).
		id, uniform, err := b.fullScanID(r)
		if err != nil {
			return nil, err
		}
		if uniform {
			return NewLeaf(id), nil
		}
	}

	return b.split(ctx, r, depth, forced)
}

// sampleAndCheck evaluates the deterministic sample set for r (spec step 2)
// and reports whether every sample agreed, and if so on which id.
func (b *builder) sampleAndCheck(r rect.Rect) (uniform bool, id uint16, err error) {
	points := b.samplePoints(r)
	first := true
	for _, p := range points {
		sampleID, err := b.at(p[0], p[1])
		if err != nil {
			return false, 0, err
		}
		if first {
			id = sampleID
			first = false
		} else if sampleID != id {
			return false, 0, nil
		}
	}
	return true, id, nil
}

// samplePoints returns (ilat,ilon) pairs: corners, center, 1/3-2/3
// stratified points, and sample_k PRNG interior points, in deterministic
// order. Identical for identical (r, cfg.RNGSeed).
func (b *builder) samplePoints(r rect.Rect) [][2]int64 {
	pts := make([][2]int64, 0, 4+1+4+b.cfg.SampleK)
	for _, c := range r.Corners() {
		// Corners() returns (x,y); samplePoints speaks (ilat,ilon).
		pts = append(pts, [2]int64{c[1], c[0]})
	}
	pts = append(pts, [2]int64{(r.Y0 + r.Y1) / 2, (r.X0 + r.X1) / 2})

	x13 := r.X0 + (r.X1-r.X0)/3
	x23 := r.X0 + 2*(r.X1-r.X0)/3
	y13 := r.Y0 + (r.Y1-r.Y0)/3
	y23 := r.Y0 + 2*(r.Y1-r.Y0)/3
	for _, y := range []int64{y13, y23} {
		for _, x := range []int64{x13, x23} {
			pts = append(pts, [2]int64{y, x})
		}
	}

	rng := rand.New(rand.NewSource(rectSeed(r, b.cfg.RNGSeed)))
	width := r.X1 - r.X0 + 1
	height := r.Y1 - r.Y0 + 1
	for i := 0; i < b.cfg.SampleK; i++ {
		x := r.X0 + rng.Int63n(width)
		y := r.Y0 + rng.Int63n(height)
		pts = append(pts, [2]int64{y, x})
	}
	return pts
}

// rectSeed derives a deterministic PRNG seed from r and the configured
// rng_seed. Using hash/fnv (not hash/maphash): maphash's seed is randomized
// per process by design, which would break byte-determinism across builds
// (property 6); FNV-1a over fixed integer bytes gives the same seed every
// run.
func rectSeed(r rect.Rect, rngSeed int64) int64 {
	h := fnv.New64a()
	var buf [40]byte
	putInt64(buf[0:8], r.X0)
	putInt64(buf[8:16], r.Y0)
	putInt64(buf[16:24], r.X1)
	putInt64(buf[24:32], r.Y1)
	putInt64(buf[32:40], rngSeed)
	_, _ = h.Write(buf[:])
	return int64(h.Sum64())
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

// bruteForceUniform evaluates every lattice point in r and reports whether
// all of them equal id.
func (b *builder) bruteForceUniform(r rect.Rect, id uint16) (bool, error) {
	for y := r.Y0; y <= r.Y1; y++ {
		for x := r.X0; x <= r.X1; x++ {
			got, err := b.at(y, x)
			if err != nil {
				return false, err
			}
			if got != id {
				return false, nil
			}
		}
	}
	return true, nil
}

// fullScanID evaluates every lattice point in r, returning the first id and
// whether all points agreed with it.
func (b *builder) fullScanID(r rect.Rect) (id uint16, uniform bool, err error) {
	first := true
	for y := r.Y0; y <= r.Y1; y++ {
		for x := r.X0; x <= r.X1; x++ {
			got, err := b.at(y, x)
			if err != nil {
				return 0, false, err
			}
			if first {
				id = got
				first = false
			} else if got != id {
				uniform = false
				return id, false, nil
			}
		}
	}
	return id, true, nil
}

// split computes r's children (spec §4.2) and recurses into each, eagerly
// collapsing back to a single leaf when every present child is a leaf with
// the same country id (spec open question: sibling collapse is eager, not
// a post-pass).
func (b *builder) split(ctx context.Context, r rect.Rect, depth int, forced bool) (*Node, error) {
	children, present := r.Split()

	var kids [4]*Node
	if b.cfg.Parallel && depth == 0 {
		var wg sync.WaitGroup
		errCh := make(chan error, 4)
		for i := 0; i < 4; i++ {
			if !present[i] {
				continue
			}
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := b.build(ctx, children[i], depth+1, forced)
				if err != nil {
					errCh <- err
					return
				}
				kids[i] = n
			}()
		}
		wg.Wait()
		close(errCh)
		if err, ok := <-errCh; ok {
			return nil, err
		}
	} else {
		for i := 0; i < 4; i++ {
			if !present[i] {
				continue
			}
			n, err := b.build(ctx, children[i], depth+1, forced)
			if err != nil {
				return nil, err
			}
			kids[i] = n
		}
	}

	if collapsed, ok := collapseSiblings(kids, present); ok {
		return collapsed, nil
	}
	return NewInternal(kids, present), nil
}

// collapseSiblings returns (Leaf(c), true) when every present child is a
// leaf sharing the same country id c.
func collapseSiblings(kids [4]*Node, present [4]bool) (*Node, bool) {
	var id uint16
	first := true
	for i := 0; i < 4; i++ {
		if !present[i] {
			continue
		}
		k := kids[i]
		if k == nil || !k.IsLeaf() {
			return nil, false
		}
		if first {
			id = k.CountryID()
			first = false
		} else if k.CountryID() != id {
			return nil, false
		}
	}
	if first {
		// no present children at all: unreachable (Split always yields >=2).
		return nil, false
	}
	return NewLeaf(id), true
}
