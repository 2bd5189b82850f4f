package program

import (
	"github.com/lumibot/lumibot/internal/types"
	"github.com/lumibot/lumibot/pkg/engine"
)

// DefaultMaxSteps is the default execution step budget. Recursive
// procedures are legal, so the budget is the only termination guard.
const DefaultMaxSteps = 500

// Executor runs programs against an engine, expanding procedure calls
// inline. A call does not push a stack frame: it replaces itself with the
// procedure body at the front of the pending queue, so infinite recursion
// shows up as a queue that never drains, stopped by the step budget.
type Executor struct {
	eng      *engine.Engine
	maxSteps int
}

// NewExecutor creates an executor with the given step budget. A budget
// of zero or less uses DefaultMaxSteps.
func NewExecutor(eng *engine.Engine, maxSteps int) *Executor {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Executor{eng: eng, maxSteps: maxSteps}
}

// Engine returns the engine the executor runs on.
func (x *Executor) Engine() *engine.Engine { return x.eng }

// Execute resets the engine and runs the program. It returns the instant
// the level is solved, even mid-procedure, or when the queue drains or
// the step budget is spent. Every instruction consumed counts as one
// step, calls included. Running out of budget is a normal outcome, not
// an error: the program just did not solve the level.
func (x *Executor) Execute(p Program) (solved bool, steps int) {
	x.eng.Reset()

	queue := make([]types.Instruction, len(p.Main), len(p.Main)+16)
	copy(queue, p.Main)

	for len(queue) > 0 && steps < x.maxSteps {
		instr := queue[0]
		queue = queue[1:]
		steps++

		switch instr {
		case types.CallProc1:
			queue = prepend(queue, p.Proc1)
		case types.CallProc2:
			queue = prepend(queue, p.Proc2)
		default:
			x.eng.Step(instr)
		}

		if x.eng.IsSolved() {
			return true, steps
		}
	}
	return x.eng.IsSolved(), steps
}

// ExecutePruned is Execute with an in-run state check: if the engine
// revisits a state already seen during this execution, the run is an
// unproductive loop that can never newly solve the level, and is
// abandoned early. Used by the pruning solver variant.
func (x *Executor) ExecutePruned(p Program) (solved bool, steps int) {
	x.eng.Reset()

	queue := make([]types.Instruction, len(p.Main), len(p.Main)+16)
	copy(queue, p.Main)
	seen := make(map[types.StateHash]struct{})

	for len(queue) > 0 && steps < x.maxSteps {
		instr := queue[0]
		queue = queue[1:]
		steps++

		switch instr {
		case types.CallProc1:
			queue = prepend(queue, p.Proc1)
		case types.CallProc2:
			queue = prepend(queue, p.Proc2)
		default:
			x.eng.Step(instr)
		}

		if x.eng.IsSolved() {
			return true, steps
		}

		if !instr.IsCall() {
			h := x.eng.StateHash()
			if _, ok := seen[h]; ok {
				return false, steps
			}
			seen[h] = struct{}{}
		}
	}
	return x.eng.IsSolved(), steps
}

// TraceStep records the engine state after one primitive step.
type TraceStep struct {
	Instr  types.Instruction
	Pos    types.Coord
	Facing types.Direction
	Lit    int
}

// ExecuteTrace is Execute with a per-step state trace for diagnostics.
// Call expansions advance the step counter but produce no trace entry.
func (x *Executor) ExecuteTrace(p Program) (solved bool, steps int, trace []TraceStep) {
	x.eng.Reset()

	queue := make([]types.Instruction, len(p.Main), len(p.Main)+16)
	copy(queue, p.Main)

	for len(queue) > 0 && steps < x.maxSteps {
		instr := queue[0]
		queue = queue[1:]
		steps++

		switch instr {
		case types.CallProc1:
			queue = prepend(queue, p.Proc1)
		case types.CallProc2:
			queue = prepend(queue, p.Proc2)
		default:
			x.eng.Step(instr)
			lit, _ := x.eng.LightCount()
			trace = append(trace, TraceStep{
				Instr:  instr,
				Pos:    x.eng.Bot(),
				Facing: x.eng.Facing(),
				Lit:    lit,
			})
		}

		if x.eng.IsSolved() {
			return true, steps, trace
		}
	}
	return x.eng.IsSolved(), steps, trace
}

// prepend puts body in front of queue without sharing backing arrays
// with the program parts.
func prepend(queue, body []types.Instruction) []types.Instruction {
	out := make([]types.Instruction, 0, len(body)+len(queue))
	out = append(out, body...)
	return append(out, queue...)
}
