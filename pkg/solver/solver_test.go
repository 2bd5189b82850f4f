package solver

import (
	"testing"

	"github.com/lumibot/lumibot/internal/types"
	"github.com/lumibot/lumibot/pkg/engine"
	"github.com/lumibot/lumibot/pkg/level"
	"github.com/lumibot/lumibot/pkg/program"
)

// Interface compliance.
var (
	_ Solver = (*BFS)(nil)
	_ Solver = (*IDS)(nil)
	_ Solver = (*Procedure)(nil)
)

// light one walk away, with a spare cell beyond it.
const oneWalkLevel = `
level 20
start 0 0 SE
map
. l0 .
`

// five lights in a row, bot starting on the first.
const fiveLights = `
level 21
start 0 0 SE
map
l0 l0 l0 l0 l0
`

// stairs needing a jump, light on top.
const jumpLevel = `
level 22
start 0 0 SE
map
. p1 l1
`

// elevator ride: raise the elevator to reach a height-2 light.
const elevatorRide = `
level 23
start 0 0 SE
map
. e0 l2
`

// unreachable light: too high to walk or jump onto, nowhere else to go.
const unsolvable = `
level 24
start 0 0 SE
map
. l5
`

func mustEngine(t *testing.T, text string) *engine.Engine {
	t.Helper()
	l, err := level.Parse(text)
	if err != nil {
		t.Fatalf("parse level: %v", err)
	}
	eng, err := engine.New(l)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func TestBFSOneWalk(t *testing.T) {
	eng := mustEngine(t, oneWalkLevel)
	seq, stats := NewBFS(eng).SolveSequence(10)

	want := []types.Instruction{types.Walk, types.Light}
	if len(seq) != len(want) {
		t.Fatalf("solution %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("solution %v, want %v", seq, want)
		}
	}
	if stats.SizeSearched != 2 {
		t.Errorf("SizeSearched = %d, want 2", stats.SizeSearched)
	}

	// Negative cases: light alone acts off the light cell, and an
	// overshoot walks past it.
	x := program.NewExecutor(eng.Clone(), 0)
	if solved, _ := x.Execute(program.Program{Main: []types.Instruction{types.Light}}); solved {
		t.Error("[light] should not solve")
	}
	overshoot := []types.Instruction{types.Walk, types.Walk, types.Light}
	if solved, _ := x.Execute(program.Program{Main: overshoot}); solved {
		t.Error("[walk walk light] should not solve: second walk leaves the light cell")
	}
}

func TestBFSAndIDSAgreeOnLength(t *testing.T) {
	levels := []struct {
		name string
		text string
	}{
		{"one walk", oneWalkLevel},
		{"five lights", fiveLights},
		{"jump", jumpLevel},
		{"elevator", elevatorRide},
	}

	for _, tt := range levels {
		t.Run(tt.name, func(t *testing.T) {
			eng := mustEngine(t, tt.text)

			bfsSeq, _ := NewBFS(eng).SolveSequence(12)
			idsSeq, _ := NewIDS(eng).SolveSequence(12)

			if bfsSeq == nil || idsSeq == nil {
				t.Fatalf("bfs=%v ids=%v, both should solve", bfsSeq, idsSeq)
			}
			if len(bfsSeq) != len(idsSeq) {
				t.Errorf("optimal lengths disagree: bfs=%d ids=%d", len(bfsSeq), len(idsSeq))
			}

			// Both claimed solutions must actually solve.
			for name, seq := range map[string][]types.Instruction{"bfs": bfsSeq, "ids": idsSeq} {
				x := program.NewExecutor(eng.Clone(), 0)
				if solved, _ := x.Execute(program.Program{Main: seq}); !solved {
					t.Errorf("%s solution %v does not solve", name, seq)
				}
			}
		})
	}
}

func TestBFSAndIDSAgreeOnNoSolution(t *testing.T) {
	eng := mustEngine(t, unsolvable)

	if seq, _ := NewBFS(eng).SolveSequence(8); seq != nil {
		t.Errorf("bfs found %v on unsolvable level", seq)
	}
	if seq, _ := NewIDS(eng).SolveSequence(8); seq != nil {
		t.Errorf("ids found %v on unsolvable level", seq)
	}
}

func TestFiveLightsFlatLength(t *testing.T) {
	// light walk light walk light walk light walk light: 9 instructions.
	eng := mustEngine(t, fiveLights)
	seq, _ := NewBFS(eng).SolveSequence(12)
	if len(seq) != 9 {
		t.Errorf("flat solution length = %d, want 9", len(seq))
	}
}

func TestSolverInterfaceWrapsSequences(t *testing.T) {
	eng := mustEngine(t, oneWalkLevel)

	p, _ := NewBFS(eng).Solve(10)
	if p == nil || len(p.Proc1) != 0 || len(p.Proc2) != 0 {
		t.Fatalf("flat solver returned %v, want main-only program", p)
	}
	if p.TotalSize() != 2 {
		t.Errorf("TotalSize = %d, want 2", p.TotalSize())
	}
}

func TestShapes(t *testing.T) {
	got := shapes(3)
	want := []shape{
		{main: 3, p1: 0, p2: 0},
		{main: 2, p1: 0, p2: 1},
		{main: 2, p1: 1, p2: 0},
		{main: 1, p1: 0, p2: 2},
		{main: 1, p1: 1, p2: 1},
		{main: 1, p1: 2, p2: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("shapes(3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shapes(3)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
