package solver

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/lumibot/lumibot/internal/types"
	"github.com/lumibot/lumibot/pkg/engine"
	"github.com/lumibot/lumibot/pkg/program"
)

// IDS finds the shortest flat instruction sequence by iterative
// deepening: depth-limited depth-first search at depth 1, 2, 3, … until
// a solution appears. It trades the memory of BFS's frontier for
// re-exploration, and must return the same solution length as BFS on any
// level.
type IDS struct {
	eng *engine.Engine
}

// NewIDS creates an iterative-deepening solver. The engine is cloned.
func NewIDS(eng *engine.Engine) *IDS {
	return &IDS{eng: eng.Clone()}
}

// SolveSequence returns a shortest solving sequence of at most maxDepth
// primitives, or nil if none exists within the bound.
func (s *IDS) SolveSequence(maxDepth int) ([]types.Instruction, Stats) {
	start := time.Now()
	if maxDepth <= 0 {
		maxDepth = DefaultMaxSequenceLen
	}

	var stats Stats
	for depth := 1; depth <= maxDepth; depth++ {
		stats.SizeSearched = depth
		// The visited set only guards the current depth iteration.
		visited := make(map[types.StateHash]struct{})
		s.eng.Reset()

		if seq := s.dfs(nil, s.eng.Clone(), depth, visited, &stats); seq != nil {
			stats.TimeSeconds = time.Since(start).Seconds()
			return seq, stats
		}
	}

	stats.TimeSeconds = time.Since(start).Seconds()
	return nil, stats
}

// dfs is depth-limited depth-first search. A state is held in the
// visited set only while its subtree is being explored and is released
// afterwards: unlike BFS's global dedup, different paths must be allowed
// to pass through the same state at different remaining depths, or
// deeper iterations would miss solutions.
func (s *IDS) dfs(path []types.Instruction, eng *engine.Engine, remaining int, visited map[types.StateHash]struct{}, stats *Stats) []types.Instruction {
	stats.StatesExplored++

	if eng.IsSolved() {
		return path
	}
	if remaining == 0 {
		return nil
	}

	h := eng.StateHash()
	if _, seen := visited[h]; seen {
		return nil
	}
	visited[h] = struct{}{}
	defer delete(visited, h)

	for _, instr := range program.Primitives {
		child := eng.Clone()
		child.Step(instr)

		if seq := s.dfs(append(slices.Clone(path), instr), child, remaining-1, visited, stats); seq != nil {
			return seq
		}
	}
	return nil
}

// Solve implements Solver, wrapping the sequence as a main-only program.
func (s *IDS) Solve(bound int) (*program.Program, Stats) {
	seq, stats := s.SolveSequence(bound)
	if seq == nil {
		return nil, stats
	}
	return &program.Program{Main: seq}, stats
}
