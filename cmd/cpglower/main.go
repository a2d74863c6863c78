package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/plume-oss/plume-driver/internal/delta"
	"github.com/plume-oss/plume-driver/internal/extern"
	"github.com/plume-oss/plume-driver/internal/ir"
	"github.com/plume-oss/plume-driver/internal/jsonir"
	"github.com/plume-oss/plume-driver/internal/lower"
	"github.com/plume-oss/plume-driver/internal/progresslog"
	"github.com/plume-oss/plume-driver/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the real entry point, kept separate from main so every defer
// (store close included) runs even on an error return.
func run() error {
	input := flag.String("input", "", "Path to a JSON-encoded method batch; omit to lower an in-memory demo batch")
	dbPath := flag.String("db", "cpg.db", "Output SQLite path")
	workers := flag.Int("workers", 4, "Maximum number of methods lowered concurrently")
	verbose := flag.Bool("verbose", false, "Print detailed progress")
	configPath := flag.String("config", "", "Optional TOML config file; flags override its values")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cpglower [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Lowers a batch of Jimple-like methods to a code property graph SQLite database.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Workers != 0 && !isFlagSet("workers") {
			*workers = cfg.Workers
		}
		if cfg.Verbose && !isFlagSet("verbose") {
			*verbose = true
		}
	}
	if *workers < 1 {
		*workers = 1
	}

	prog := progresslog.New(*verbose)

	methods, methodIdx, typeIdx, err := loadBatch(*input, prog)
	if err != nil {
		return err
	}
	prog.Log("Lowering %d methods with %d workers", len(methods), *workers)

	deltas := make([]*delta.DeltaGraph, len(methods))
	g := new(errgroup.Group)
	g.SetLimit(*workers)
	for i, m := range methods {
		i, m := i, m
		g.Go(func() error {
			deltas[i] = lower.RunMethod(m, methodIdx, typeIdx, extern.DefaultEvalStrategy, prog.Warn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	prog.Verbose("Lowering complete, applying to %s", *dbPath)

	db, err := store.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	var totalNodes, totalEdges int
	for i, dg := range deltas {
		nodes, edges, err := db.Apply(dg)
		if err != nil {
			return fmt.Errorf("apply %s: %w", methods[i].FullName, err)
		}
		totalNodes += nodes
		totalEdges += edges
	}

	prog.Log("Done. %d nodes, %d edges.", totalNodes, totalEdges)
	return nil
}

// loadBatch reads and decodes -input, or falls back to the in-memory demo
// batch, registering every method/type stub the lowering core expects to
// find pre-populated in its external collaborators (§6, §12 step 2).
func loadBatch(inputPath string, prog *progresslog.Progress) ([]*ir.Method, *extern.InMemoryMethodIndex, *extern.InMemoryTypeIndex, error) {
	methodIdx := extern.NewInMemoryMethodIndex()
	typeIdx := extern.NewInMemoryTypeIndex()

	if inputPath == "" {
		prog.Verbose("No -input given, lowering the in-memory demo batch")
		methods := demoMethods()
		for _, m := range methods {
			methodIdx.Register(m.FullName, m.ReturnType)
			typeIdx.Register(m.DeclaringClass)
		}
		typeIdx.Register("int")
		return methods, methodIdx, typeIdx, nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read input: %w", err)
	}
	batch, methods, err := jsonir.DecodeBatch(data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode input: %w", err)
	}
	for _, t := range batch.Types {
		typeIdx.Register(t)
	}
	for i, md := range batch.Methods {
		methodIdx.Register(methods[i].FullName, md.ReturnType)
	}
	return methods, methodIdx, typeIdx, nil
}

// isFlagSet reports whether name was explicitly passed on the command
// line, so a config file's value only applies when the flag wasn't.
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
