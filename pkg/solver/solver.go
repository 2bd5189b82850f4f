// Package solver implements the search strategies that find minimal bot
// programs: breadth-first and iterative-deepening search over flat
// instruction sequences, iterative deepening over procedure-bearing
// program shapes, and a checkpointable variant that survives timeouts.
//
// All solvers are optimal in total instruction count over the space they
// search; failing to find a solution within the configured bound is a
// normal outcome, reported as a nil program.
package solver

import (
	"github.com/lumibot/lumibot/pkg/program"
)

// Stats describes one solve attempt.
type Stats struct {
	// ProgramsTested is the number of candidate programs executed.
	ProgramsTested int64

	// StatesExplored is the number of search nodes expanded (flat
	// solvers only).
	StatesExplored int64

	// TimeSeconds is the wall-clock time spent, cumulative across
	// resumed sessions.
	TimeSeconds float64

	// TimedOut reports whether the attempt stopped on its time budget.
	TimedOut bool

	// Resumed reports whether the attempt continued from a checkpoint.
	Resumed bool

	// SizeSearched is the largest total size or depth reached.
	SizeSearched int
}

// Solver is the shared capability of all strategies: find a minimal
// program within a total-size bound, or report none. Flat strategies
// return programs with only a main routine.
type Solver interface {
	Solve(bound int) (*program.Program, Stats)
}

// shape is one (main, proc1, proc2) size distribution.
type shape struct {
	main, p1, p2 int
}

// shapes returns every distribution of totalSize across the three parts
// with a non-empty main, ordered by procedure size ascending: simpler
// programs tend to solve faster and are easier to verify. The order is a
// heuristic only, since minimality depends on totalSize alone, but it is
// deterministic, which resume depends on.
func shapes(totalSize int) []shape {
	var out []shape
	for procs := 0; procs < totalSize; procs++ {
		main := totalSize - procs
		for p1 := 0; p1 <= procs; p1++ {
			out = append(out, shape{main: main, p1: p1, p2: procs - p1})
		}
	}
	return out
}
