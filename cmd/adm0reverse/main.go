// Command adm0reverse builds a sparse quadtree country lookup table against
// a synthetic oracle and emits either a generated Go header or build
// statistics, mirroring the teacher's server2/main.go flag.String/flag.Int
// style rather than adopting a CLI framework.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sbma44/adm0-reverse/country"
	"github.com/sbma44/adm0-reverse/internal/codegen"
	"github.com/sbma44/adm0-reverse/logger"
	"github.com/sbma44/adm0-reverse/oracle"
	"github.com/sbma44/adm0-reverse/quadtree"
	"github.com/sbma44/adm0-reverse/quant"
	"github.com/sbma44/adm0-reverse/rect"
	"github.com/sbma44/adm0-reverse/serialize"
)

// exit codes per the CLI surface contract: 0 success, 2 bad usage, 1 other failure.
const (
	exitOK         = 0
	exitBadUsage   = 2
	exitOtherError = 1
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitBadUsage)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		usage()
		os.Exit(exitBadUsage)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "adm0reverse:", err)
		os.Exit(exitOtherError)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: adm0reverse build|stats [flags]")
}

type sharedFlags struct {
	precision  int
	mockOracle string
}

func addSharedFlags(fs *flag.FlagSet) *sharedFlags {
	sf := &sharedFlags{}
	fs.IntVar(&sf.precision, "p", 0, "quantization precision (decimal digits)")
	fs.StringVar(&sf.mockOracle, "mock-oracle", "simple", "synthetic oracle: simple|rectangle|circle|composite")
	return sf
}

func buildMockOracle(name string, xmax, ymax int64) (oracle.Oracle, error) {
	switch name {
	case "simple":
		return oracle.Simple{ID: 1}, nil
	case "rectangle":
		return oracle.Composite{Layers: []oracle.Oracle{
			oracle.Rectangle{X0: xmax / 4, Y0: ymax / 4, X1: xmax / 2, Y1: ymax / 2, ID: 1},
		}}, nil
	case "circle":
		return oracle.Composite{Layers: []oracle.Oracle{
			oracle.Circle{CenterLat: ymax / 2, CenterLon: xmax / 2, Radius: ymax / 4, ID: 1},
		}}, nil
	case "composite":
		return oracle.Composite{Layers: []oracle.Oracle{
			oracle.Rectangle{X0: xmax / 8, Y0: ymax / 8, X1: xmax / 3, Y1: ymax / 3, ID: 1},
			oracle.Circle{CenterLat: ymax * 2 / 3, CenterLon: xmax * 2 / 3, Radius: ymax / 6, ID: 2},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown --mock-oracle %q", name)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	sf := addSharedFlags(fs)
	out := fs.String("o", "", "output path for the generated .go file")
	sampleK := fs.Int("sample-k", 16, "pseudo-random interior samples per rectangle")
	bruteForceThreshold := fs.Int64("brute-force-threshold", 4096, "max lattice points provable by exhaustive scan")
	maxDepth := fs.Int("max-depth", 40, "recursion depth safety cap")
	rngSeed := fs.Int64("rng-seed", 1, "seed for deterministic sampling")
	namespace := fs.String("namespace", "Adm0", "exported identifier prefix in the generated file")
	noCompress := fs.Bool("no-compress", true, "skip blob compression (compression is an external, opaque step)")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitBadUsage)
	}
	if *out == "" {
		return fmt.Errorf("-o is required")
	}
	_ = noCompress // compression is a seam (Compressor), no-op by default either way.

	l := logger.NewLogger(os.Stderr, logger.Info)
	defer l.Close()

	lattice := quant.NewLattice(sf.precision)
	root := rect.New(0, 0, lattice.Xmax, lattice.Ymax)

	o, err := buildMockOracle(sf.mockOracle, lattice.Xmax, lattice.Ymax)
	if err != nil {
		return err
	}

	cfg := quadtree.DefaultConfig()
	cfg.SampleK = *sampleK
	cfg.BruteForceThreshold = *bruteForceThreshold
	cfg.MaxDepth = *maxDepth
	cfg.RNGSeed = *rngSeed
	cfg.Progress = l
	cfg.Parallel = true

	l.StartProgressLogging(2*time.Second, 30*time.Second)
	started := time.Now()
	node, err := quadtree.Build(context.Background(), o, root, cfg)
	l.RunAllPeriodic() // flush the final progress snapshot before it's stopped
	l.StopProgressLogging()
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	l.Info("built tree with %d leaves in %s", node.CountLeaves(), time.Since(started))

	table := country.NewTable([]string{"", "XYZ"})
	var buf bytes.Buffer
	if err := serialize.Encode(&buf, sf.precision, root, table, node); err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := codegen.GenerateHeader(f, buf.Bytes(), codegen.Options{Namespace: *namespace}); err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	l.Info("wrote %s (%d bytes blob)", *out, buf.Len())
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	sf := addSharedFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(exitBadUsage)
	}

	lattice := quant.NewLattice(sf.precision)
	root := rect.New(0, 0, lattice.Xmax, lattice.Ymax)
	o, err := buildMockOracle(sf.mockOracle, lattice.Xmax, lattice.Ymax)
	if err != nil {
		return err
	}

	cfg := quadtree.DefaultConfig()
	started := time.Now()
	node, err := quadtree.Build(context.Background(), o, root, cfg)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Printf("precision=%d leaves=%d elapsed=%s\n", sf.precision, node.CountLeaves(), time.Since(started))
	return nil
}
