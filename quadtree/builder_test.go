package quadtree

import (
	"context"
	"fmt"
	"testing"

	"github.com/sbma44/adm0-reverse/oracle"
	"github.com/sbma44/adm0-reverse/rect"
)

func smallCfg() Config {
	c := DefaultConfig()
	c.SampleK = 4
	c.BruteForceThreshold = 64
	c.MaxDepth = 12
	return c
}

// walkAndVerify walks the tree alongside r.Split(), checking that child
// presence matches the split and, by brute-force oracle comparison, that
// every lattice point under a leaf has that leaf's id.
func walkAndVerify(t *testing.T, n *Node, r rect.Rect, o oracle.Oracle) {
	t.Helper()
	if n.IsLeaf() {
		for y := r.Y0; y <= r.Y1; y++ {
			for x := r.X0; x <= r.X1; x++ {
				got, err := o.At(y, x)
				if err != nil {
					t.Fatalf("oracle error: %v", err)
				}
				if got != n.CountryID() {
					t.Fatalf("leaf over %v claims id %d but oracle says %d at (%d,%d)", r, n.CountryID(), got, y, x)
				}
			}
		}
		return
	}
	children, present := r.Split()
	for i := 0; i < 4; i++ {
		child, ok := n.Child(rect.Children(i))
		if ok != present[i] {
			t.Fatalf("presence mismatch at %v child %d", r, i)
		}
		if present[i] {
			walkAndVerify(t, child, children[i], o)
		}
	}
}

func TestBuildUniformOracleSingleLeaf(t *testing.T) {
	root := rect.New(0, 0, 100, 100)
	o := oracle.Simple{ID: 7}
	n, err := Build(context.Background(), o, root, smallCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !n.IsLeaf() || n.CountryID() != 7 {
		t.Fatalf("expected single leaf id=7, got leaf=%v id=%d", n.IsLeaf(), n.CountryID())
	}
}

func TestBuildNorthSouthSplit(t *testing.T) {
	root := rect.New(0, 0, 63, 63)
	boundary := int64(32)
	o := oracle.Func(func(ilat, ilon int64) (uint16, error) {
		if ilat >= boundary {
			return 1, nil
		}
		return 2, nil
	})
	n, err := Build(context.Background(), o, root, smallCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.IsLeaf() {
		t.Fatalf("expected an internal split across the boundary, got a single leaf")
	}
	walkAndVerify(t, n, root, o)
}

func TestBuildRectangleOracleBoundedLeaves(t *testing.T) {
	root := rect.New(0, 0, 127, 127)
	o := oracle.Composite{Layers: []oracle.Oracle{
		oracle.Rectangle{X0: 40, Y0: 40, X1: 80, Y1: 80, ID: 5},
		oracle.Simple{ID: 1},
	}}
	n, err := Build(context.Background(), o, root, smallCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	walkAndVerify(t, n, root, o)
	// Leaves scale with the feature's border, not the root's area: bound by
	// twice the rectangle's lattice perimeter.
	perimeter := 4 * (80 - 40 + 1)
	if leaves := n.CountLeaves(); leaves > 2*perimeter {
		t.Fatalf("expected at most %d leaves for an axis-aligned rectangle feature, got %d", 2*perimeter, leaves)
	}
}

func TestBuildSinglePointIsland(t *testing.T) {
	root := rect.New(0, 0, 15, 15)
	o := oracle.Rectangle{X0: 8, Y0: 8, X1: 8, Y1: 8, ID: 9}
	n, err := Build(context.Background(), o, root, smallCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	walkAndVerify(t, n, root, o)

	got, err := o.At(8, 8)
	if err != nil || got != 9 {
		t.Fatalf("sanity: oracle should report id 9 at the island, got %d,%v", got, err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	root := rect.New(0, 0, 255, 255)
	o := oracle.Composite{Layers: []oracle.Oracle{
		oracle.Circle{CenterLat: 128, CenterLon: 128, Radius: 50, ID: 3},
		oracle.Simple{ID: 1},
	}}
	cfg := smallCfg()
	n1, err := Build(context.Background(), o, root, cfg)
	if err != nil {
		t.Fatalf("Build 1: %v", err)
	}
	n2, err := Build(context.Background(), o, root, cfg)
	if err != nil {
		t.Fatalf("Build 2: %v", err)
	}
	if !n1.Equal(n2) {
		t.Fatalf("two builds with identical (oracle, config) produced different trees")
	}
}

func TestBuildDepthGuardForcesCorrectness(t *testing.T) {
	root := rect.New(0, 0, 511, 511)
	// A checkerboard at single-lattice-point granularity: every sample
	// and stratified point is equally likely to disagree with its
	// neighbor, forcing the builder to recurse all the way to MaxDepth.
	o := oracle.Func(func(ilat, ilon int64) (uint16, error) {
		if (ilat+ilon)%2 == 0 {
			return 1, nil
		}
		return 2, nil
	})
	cfg := smallCfg()
	cfg.MaxDepth = 6
	cfg.BruteForceThreshold = 8
	sink := &recordingSink{}
	cfg.Progress = sink
	n, err := Build(context.Background(), o, root, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	walkAndVerify(t, n, root, o)
	if len(sink.warnings) == 0 {
		t.Fatalf("expected the depth guard to report at least one Warning, got none")
	}
}

// recordingSink is a minimal ProgressSink for asserting what Build reports
// without pulling in the logger package.
type recordingSink struct {
	warnings []string
}

func (s *recordingSink) ReportProgress(oracleCalls int64, leaves int) {}

func (s *recordingSink) Warning(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func TestBuildCancellation(t *testing.T) {
	root := rect.New(0, 0, 1023, 1023)
	o := oracle.Simple{ID: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, o, root, smallCfg())
	if err == nil {
		t.Fatalf("expected cancellation error, got nil")
	}
}

func TestBuildOracleFailurePropagates(t *testing.T) {
	root := rect.New(0, 0, 7, 7)
	boom := oracle.Func(func(ilat, ilon int64) (uint16, error) {
		return 0, errBoom
	})
	_, err := Build(context.Background(), boom, root, smallCfg())
	if err == nil {
		t.Fatalf("expected oracle failure to propagate")
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	root := rect.New(0, 0, 200, 200)
	o := oracle.Composite{Layers: []oracle.Oracle{
		oracle.Rectangle{X0: 20, Y0: 20, X1: 120, Y1: 90, ID: 4},
		oracle.Simple{ID: 1},
	}}
	cfgSerial := smallCfg()
	cfgParallel := smallCfg()
	cfgParallel.Parallel = true

	serial, err := Build(context.Background(), o, root, cfgSerial)
	if err != nil {
		t.Fatalf("serial build: %v", err)
	}
	parallel, err := Build(context.Background(), o, root, cfgParallel)
	if err != nil {
		t.Fatalf("parallel build: %v", err)
	}
	if !serial.Equal(parallel) {
		t.Fatalf("parallel build produced a different tree than serial build")
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}
