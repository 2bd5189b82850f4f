// Lumibot: program-synthesis solver for grid-world light puzzles.
//
// This is the command-line entry point. It loads levels from the text
// notation, runs one of the search strategies, and optionally records
// outcomes in the benchmark results store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lumibot/lumibot/pkg/checkpoint"
	"github.com/lumibot/lumibot/pkg/engine"
	"github.com/lumibot/lumibot/pkg/level"
	"github.com/lumibot/lumibot/pkg/program"
	"github.com/lumibot/lumibot/pkg/results"
	"github.com/lumibot/lumibot/pkg/solver"
)

// Version information
var (
	Version   = "0.1.0"
	GitCommit = "dev"
)

// Configuration flags
var (
	mode        = flag.String("mode", "solve", "Mode: solve, bench, retry, render")
	levelPath   = flag.String("level", "", "Level file (solve and render modes)")
	levelsDir   = flag.String("levels", "", "Directory of level files (bench and retry modes)")
	solverName  = flag.String("solver", "procedure", "Solver: bfs, ids, procedure, resumable")
	maxSize     = flag.Int("max-size", solver.DefaultMaxProgramSize, "Total program size bound")
	maxSteps    = flag.Int("max-steps", program.DefaultMaxSteps, "Execution step budget per candidate")
	timeout     = flag.Duration("timeout", time.Minute, "Session time budget (resumable solver)")
	resume      = flag.Bool("resume", true, "Continue from a checkpoint if one exists")
	prune       = flag.Bool("prune", false, "Prune candidates that revisit world states")
	dataDir     = flag.String("data-dir", "lumibot-data", "Directory for checkpoint and results databases")
	saveTrace   = flag.Bool("trace", false, "Store the solution's execution trace")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("lumibot %s (%s)\n", Version, GitCommit)
		os.Exit(0)
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	var err error
	switch *mode {
	case "solve":
		err = runSolve()
	case "bench":
		err = runBench()
	case "retry":
		err = runRetry()
	case "render":
		err = runRender()
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatalf("lumibot: %v", err)
	}
}

// loadLevel reads and parses one level file.
func loadLevel(path string) (*level.Level, error) {
	if path == "" {
		return nil, fmt.Errorf("no level file given (use -level)")
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := level.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return l, nil
}

// loadLevels reads every .lvl file in a directory, sorted by name.
func loadLevels(dir string) ([]*level.Level, error) {
	if dir == "" {
		return nil, fmt.Errorf("no level directory given (use -levels)")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lvl") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var levels []*level.Level
	for _, name := range names {
		l, err := loadLevel(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no .lvl files in %s", dir)
	}
	return levels, nil
}

// solveLevel runs the configured solver against one level. The stores
// may be nil when persistence is not wanted for the mode.
func solveLevel(l *level.Level, cpStore *checkpoint.Store) (*program.Program, solver.Stats, error) {
	eng, err := engine.New(l)
	if err != nil {
		return nil, solver.Stats{}, err
	}

	switch *solverName {
	case "bfs":
		p, stats := solver.NewBFS(eng).Solve(*maxSize)
		return p, stats, nil
	case "ids":
		p, stats := solver.NewIDS(eng).Solve(*maxSize)
		return p, stats, nil
	case "procedure":
		cfg := solver.DefaultProcedureConfig()
		cfg.MaxExecSteps = *maxSteps
		cfg.Prune = *prune
		p, stats := solver.NewProcedure(eng, cfg).Solve(*maxSize)
		return p, stats, nil
	case "resumable":
		if cpStore == nil {
			return nil, solver.Stats{}, fmt.Errorf("resumable solver needs a checkpoint store")
		}
		cfg := solver.DefaultResumableConfig()
		cfg.MaxSize = *maxSize
		cfg.MaxExecSteps = *maxSteps
		cfg.Timeout = *timeout
		cfg.Resume = *resume
		return solver.NewResumable(eng, cpStore, cfg).Solve()
	default:
		return nil, solver.Stats{}, fmt.Errorf("unknown solver %q", *solverName)
	}
}

// openCheckpoints opens the checkpoint store when the solver needs one.
func openCheckpoints() (*checkpoint.Store, error) {
	if *solverName != "resumable" {
		return nil, nil
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return nil, err
	}
	return checkpoint.Open(checkpoint.DefaultConfig(filepath.Join(*dataDir, "checkpoints.db")))
}

func runSolve() error {
	l, err := loadLevel(*levelPath)
	if err != nil {
		return err
	}

	cpStore, err := openCheckpoints()
	if err != nil {
		return err
	}
	if cpStore != nil {
		defer cpStore.Close()
	}

	log.Printf("Solving level %d (%dx%d, %d lights) with %s solver",
		l.ID, l.Width, l.Height, len(l.LightCells()), *solverName)

	p, stats, err := solveLevel(l, cpStore)
	if err != nil {
		return err
	}
	reportOutcome(l, p, stats)

	if p != nil && *saveTrace {
		return storeTrace(l, p)
	}
	return nil
}

func runBench() error {
	levels, err := loadLevels(*levelsDir)
	if err != nil {
		return err
	}

	cpStore, err := openCheckpoints()
	if err != nil {
		return err
	}
	if cpStore != nil {
		defer cpStore.Close()
	}

	store, err := openResults()
	if err != nil {
		return err
	}
	defer store.Close()

	log.Printf("Benchmarking %d levels with %s solver", len(levels), *solverName)

	solved := 0
	for _, l := range levels {
		p, stats, err := solveLevel(l, cpStore)
		if err != nil {
			return fmt.Errorf("level %d: %w", l.ID, err)
		}
		reportOutcome(l, p, stats)

		if err := recordOutcome(store, l, p, stats); err != nil {
			return fmt.Errorf("record level %d: %w", l.ID, err)
		}
		if p != nil {
			solved++
		}
	}

	log.Printf("Benchmark done: %d/%d solved", solved, len(levels))
	return nil
}

func runRetry() error {
	levels, err := loadLevels(*levelsDir)
	if err != nil {
		return err
	}

	cpStore, err := openCheckpoints()
	if err != nil {
		return err
	}
	if cpStore != nil {
		defer cpStore.Close()
	}

	store, err := openResults()
	if err != nil {
		return err
	}
	defer store.Close()

	worklist, err := store.Unsolved()
	if err != nil {
		return err
	}
	if len(worklist) == 0 {
		log.Println("Nothing to retry: no unsolved levels recorded")
		return nil
	}

	byID := make(map[uint64]*level.Level, len(levels))
	for _, l := range levels {
		byID[l.ID] = l
	}

	log.Printf("Retrying %d unsolved levels with %s solver", len(worklist), *solverName)

	for _, id := range worklist {
		l, ok := byID[id]
		if !ok {
			log.Printf("Level %d recorded but not present in %s, skipping", id, *levelsDir)
			continue
		}

		p, stats, err := solveLevel(l, cpStore)
		if err != nil {
			return fmt.Errorf("level %d: %w", id, err)
		}
		reportOutcome(l, p, stats)

		if err := recordOutcome(store, l, p, stats); err != nil {
			return fmt.Errorf("record level %d: %w", id, err)
		}
	}
	return nil
}

func runRender() error {
	l, err := loadLevel(*levelPath)
	if err != nil {
		return err
	}
	eng, err := engine.New(l)
	if err != nil {
		return err
	}
	fmt.Print(eng.Render())
	return nil
}

func openResults() (*results.Store, error) {
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return nil, err
	}
	return results.Open(results.DefaultConfig(filepath.Join(*dataDir, "results")))
}

func reportOutcome(l *level.Level, p *program.Program, stats solver.Stats) {
	switch {
	case p != nil:
		log.Printf("Level %d solved: %s (size %d, %d candidates, %.2fs)",
			l.ID, p, p.TotalSize(), stats.ProgramsTested, stats.TimeSeconds)
	case stats.TimedOut:
		log.Printf("Level %d timed out at size %d after %d candidates, checkpoint saved",
			l.ID, stats.SizeSearched, stats.ProgramsTested)
	default:
		log.Printf("Level %d: no solution within size %d (%d candidates, %.2fs)",
			l.ID, stats.SizeSearched, stats.ProgramsTested, stats.TimeSeconds)
	}
}

func recordOutcome(store *results.Store, l *level.Level, p *program.Program, stats solver.Stats) error {
	rec := &results.Record{
		Level:          l.ID,
		Solver:         *solverName,
		ProgramsTested: stats.ProgramsTested,
		TimeSeconds:    stats.TimeSeconds,
		Solved:         p != nil,
	}
	if p != nil {
		rec.Program = p.String()
		rec.TotalSize = p.TotalSize()
	}
	if err := store.Put(rec); err != nil {
		return err
	}

	if p != nil && *saveTrace {
		text, err := traceText(l, p)
		if err != nil {
			return err
		}
		return store.PutTrace(l.ID, *solverName, []byte(text))
	}
	return nil
}

// storeTrace persists a trace for the standalone solve mode.
func storeTrace(l *level.Level, p *program.Program) error {
	store, err := openResults()
	if err != nil {
		return err
	}
	defer store.Close()

	text, err := traceText(l, p)
	if err != nil {
		return err
	}
	return store.PutTrace(l.ID, *solverName, []byte(text))
}

// traceText replays a program and renders its step log.
func traceText(l *level.Level, p *program.Program) (string, error) {
	eng, err := engine.New(l)
	if err != nil {
		return "", err
	}

	solved, steps, trace := program.NewExecutor(eng, *maxSteps).ExecuteTrace(*p)
	var b strings.Builder
	fmt.Fprintf(&b, "program %s\n", p)
	for i, ts := range trace {
		fmt.Fprintf(&b, "%4d %-9s (%d,%d) %s lit=%d\n",
			i+1, ts.Instr, ts.Pos.X, ts.Pos.Y, ts.Facing, ts.Lit)
	}
	fmt.Fprintf(&b, "solved=%v steps=%d\n", solved, steps)
	return b.String(), nil
}
