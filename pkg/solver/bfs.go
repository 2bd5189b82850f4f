package solver

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/lumibot/lumibot/internal/types"
	"github.com/lumibot/lumibot/pkg/engine"
	"github.com/lumibot/lumibot/pkg/program"
)

// DefaultMaxSequenceLen bounds flat searches when the caller has no
// better estimate.
const DefaultMaxSequenceLen = 30

// BFS finds the shortest flat instruction sequence solving a level by
// breadth-first search over engine states. Frontier nodes are expanded in
// sequence-length order, so the first solution found is a shortest one.
// A state reached once is never revisited at any depth: dedup is global
// across the whole search.
type BFS struct {
	eng *engine.Engine
}

// NewBFS creates a breadth-first solver. The engine is cloned; the
// caller's instance is left untouched.
func NewBFS(eng *engine.Engine) *BFS {
	return &BFS{eng: eng.Clone()}
}

type bfsNode struct {
	seq []types.Instruction
	eng *engine.Engine
}

// SolveSequence returns a shortest solving sequence of at most maxLen
// primitives, or nil if none exists within the bound.
func (s *BFS) SolveSequence(maxLen int) ([]types.Instruction, Stats) {
	start := time.Now()
	if maxLen <= 0 {
		maxLen = DefaultMaxSequenceLen
	}

	var stats Stats
	s.eng.Reset()

	queue := []bfsNode{{eng: s.eng.Clone()}}
	visited := map[types.StateHash]struct{}{s.eng.StateHash(): {}}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		stats.StatesExplored++
		if len(n.seq) > stats.SizeSearched {
			stats.SizeSearched = len(n.seq)
		}

		if len(n.seq) >= maxLen {
			continue
		}

		for _, instr := range program.Primitives {
			child := n.eng.Clone()
			child.Step(instr)

			if child.IsSolved() {
				stats.TimeSeconds = time.Since(start).Seconds()
				stats.SizeSearched = len(n.seq) + 1
				return append(slices.Clone(n.seq), instr), stats
			}

			h := child.StateHash()
			if _, seen := visited[h]; seen {
				continue
			}
			visited[h] = struct{}{}
			queue = append(queue, bfsNode{seq: append(slices.Clone(n.seq), instr), eng: child})
		}
	}

	stats.TimeSeconds = time.Since(start).Seconds()
	return nil, stats
}

// Solve implements Solver, wrapping the sequence as a main-only program.
func (s *BFS) Solve(bound int) (*program.Program, Stats) {
	seq, stats := s.SolveSequence(bound)
	if seq == nil {
		return nil, stats
	}
	return &program.Program{Main: seq}, stats
}
