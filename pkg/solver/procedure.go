package solver

import (
	"time"

	"github.com/lumibot/lumibot/pkg/engine"
	"github.com/lumibot/lumibot/pkg/program"
)

// DefaultMaxProgramSize bounds procedure searches when the caller has no
// better estimate. Program spaces grow as 7^size, so the practical
// ceiling is low.
const DefaultMaxProgramSize = 12

// ProcedureConfig configures a procedure search.
type ProcedureConfig struct {
	// MaxExecSteps is the execution budget per candidate program.
	MaxExecSteps int

	// Prune abandons a candidate execution that revisits one of its own
	// earlier states. This changes how fast candidates are rejected,
	// never which total size solves: an execution stuck in a state loop
	// cannot newly solve the level.
	Prune bool
}

// DefaultProcedureConfig returns the default procedure search settings.
func DefaultProcedureConfig() ProcedureConfig {
	return ProcedureConfig{MaxExecSteps: program.DefaultMaxSteps}
}

// Procedure finds a minimum-total-size program (main plus up to two
// procedures) by iterative deepening on total size. For each size it
// tries every (main, proc1, proc2) distribution and, within one, every
// candidate in canonical odometer order; statically invalid candidates
// are rejected without execution.
type Procedure struct {
	exec *program.Executor
	cfg  ProcedureConfig
}

// NewProcedure creates a procedure solver. The engine is cloned.
func NewProcedure(eng *engine.Engine, cfg ProcedureConfig) *Procedure {
	if cfg.MaxExecSteps <= 0 {
		cfg.MaxExecSteps = program.DefaultMaxSteps
	}
	return &Procedure{
		exec: program.NewExecutor(eng.Clone(), cfg.MaxExecSteps),
		cfg:  cfg,
	}
}

// Solve returns a solving program of minimal total size at most maxSize,
// or nil if none exists within the bound.
func (s *Procedure) Solve(maxSize int) (*program.Program, Stats) {
	start := time.Now()
	if maxSize <= 0 {
		maxSize = DefaultMaxProgramSize
	}

	var stats Stats
	for size := 1; size <= maxSize; size++ {
		stats.SizeSearched = size
		if p := s.searchSize(size, &stats); p != nil {
			stats.TimeSeconds = time.Since(start).Seconds()
			return p, stats
		}
	}

	stats.TimeSeconds = time.Since(start).Seconds()
	return nil, stats
}

// searchSize tries every program of exactly the given total size.
func (s *Procedure) searchSize(totalSize int, stats *Stats) *program.Program {
	for _, sh := range shapes(totalSize) {
		for o := program.NewShapeOdometer(sh.main, sh.p1, sh.p2); !o.Done(); o.Next() {
			p := o.Program()
			if !p.Valid() {
				continue
			}
			stats.ProgramsTested++

			var solved bool
			if s.cfg.Prune {
				solved, _ = s.exec.ExecutePruned(p)
			} else {
				solved, _ = s.exec.Execute(p)
			}
			if solved {
				return &p
			}
		}
	}
	return nil
}
