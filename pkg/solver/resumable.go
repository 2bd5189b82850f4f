package solver

import (
	"time"

	"github.com/lumibot/lumibot/pkg/checkpoint"
	"github.com/lumibot/lumibot/pkg/engine"
	"github.com/lumibot/lumibot/pkg/program"
)

// State is the lifecycle phase of a resumable search.
type State uint8

const (
	// StateFresh means no search has run yet.
	StateFresh State = iota

	// StateRunning means a search is in progress.
	StateRunning

	// StateTimedOut means the last search stopped on its time budget and
	// wrote a checkpoint.
	StateTimedOut

	// StateSolved means the last search found a program and consumed the
	// checkpoint.
	StateSolved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateRunning:
		return "running"
	case StateTimedOut:
		return "timed-out"
	case StateSolved:
		return "solved"
	default:
		return "unknown"
	}
}

// ResumableConfig configures a resumable procedure search.
type ResumableConfig struct {
	// MaxSize is the total-size search ceiling.
	MaxSize int

	// Timeout is the wall-clock budget for one session.
	Timeout time.Duration

	// MaxExecSteps is the execution budget per candidate.
	MaxExecSteps int

	// PollEvery is the number of candidates between clock checks. The
	// clock is not consulted per candidate to avoid call overhead; a
	// running candidate always finishes before a timeout takes effect.
	PollEvery int

	// Resume loads an existing checkpoint. When false, the run starts
	// fresh and consumes any checkpoint for the level.
	Resume bool
}

// DefaultResumableConfig returns the default resumable search settings.
func DefaultResumableConfig() ResumableConfig {
	return ResumableConfig{
		MaxSize:      DefaultMaxProgramSize,
		Timeout:      time.Minute,
		MaxExecSteps: 200,
		PollEvery:    10000,
		Resume:       true,
	}
}

// Resumable wraps the procedure search with checkpointing: on timeout it
// persists the exact next untested enumeration position, and a later
// session continues from there without re-testing or skipping a single
// candidate. The checkpoint store is an explicit handle, private per
// level identifier.
type Resumable struct {
	exec    *program.Executor
	store   *checkpoint.Store
	levelID uint64
	cfg     ResumableConfig
	state   State

	// cumulative across sessions
	programsTested int64
	timeSpent      float64

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewResumable creates a resumable solver for the engine's level. The
// engine is cloned; the store stays owned by the caller.
func NewResumable(eng *engine.Engine, store *checkpoint.Store, cfg ResumableConfig) *Resumable {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxProgramSize
	}
	if cfg.MaxExecSteps <= 0 {
		cfg.MaxExecSteps = 200
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 1
	}
	clone := eng.Clone()
	return &Resumable{
		exec:    program.NewExecutor(clone, cfg.MaxExecSteps),
		store:   store,
		levelID: clone.Level().ID,
		cfg:     cfg,
		state:   StateFresh,
		now:     time.Now,
	}
}

// State returns the current lifecycle phase.
func (s *Resumable) State() State { return s.state }

// resumePoint is a validated checkpoint position.
type resumePoint struct {
	size    int
	shape   shape
	indices [3]int64
}

// loadResumePoint fetches and validates the checkpoint for this level.
// Anything wrong with it, missing, unreadable, wrong level, or a
// position that does not address the canonical enumeration, means
// starting fresh; checkpoint trouble is never fatal.
func (s *Resumable) loadResumePoint() *resumePoint {
	cp, err := s.store.Get(s.levelID)
	if err != nil || cp.Level != s.levelID {
		return nil
	}
	if cp.CurrentSize < 1 || cp.CurrentSize > s.cfg.MaxSize {
		return nil
	}
	if cp.MainSize < 1 || cp.MainSize+cp.P1Size+cp.P2Size != cp.CurrentSize {
		return nil
	}

	o := program.NewShapeOdometer(cp.MainSize, cp.P1Size, cp.P2Size)
	if o.Seek(cp.MainIndex, cp.P1Index, cp.P2Index) != nil {
		return nil
	}

	s.programsTested = cp.ProgramsTested
	s.timeSpent = cp.TimeSpent
	return &resumePoint{
		size:    cp.CurrentSize,
		shape:   shape{main: cp.MainSize, p1: cp.P1Size, p2: cp.P2Size},
		indices: [3]int64{cp.MainIndex, cp.P1Index, cp.P2Index},
	}
}

// Solve runs one search session. It returns the minimal solving program,
// or nil together with stats telling whether the session timed out (and
// checkpointed) or genuinely exhausted the search space. Store I/O
// failures while persisting or consuming a checkpoint are returned as
// errors; the search result itself is never an error.
func (s *Resumable) Solve() (*program.Program, Stats, error) {
	start := s.now()
	deadline := start.Add(s.cfg.Timeout)

	s.programsTested = 0
	s.timeSpent = 0

	var resume *resumePoint
	if s.cfg.Resume {
		resume = s.loadResumePoint()
	} else if err := s.store.Delete(s.levelID); err != nil {
		return nil, Stats{}, err
	}

	s.state = StateRunning
	startSize := 1
	if resume != nil {
		startSize = resume.size
	}

	stats := Stats{Resumed: resume != nil}
	sincePoll := 0

	finish := func() {
		s.timeSpent += s.now().Sub(start).Seconds()
		stats.ProgramsTested = s.programsTested
		stats.TimeSeconds = s.timeSpent
	}

	for size := startSize; size <= s.cfg.MaxSize; size++ {
		stats.SizeSearched = size

		for _, sh := range shapes(size) {
			if resume != nil && sh != resume.shape {
				continue // fast-forward to the checkpointed distribution
			}

			o := program.NewShapeOdometer(sh.main, sh.p1, sh.p2)
			if resume != nil {
				// Validated in loadResumePoint; cannot fail here.
				o.Seek(resume.indices[0], resume.indices[1], resume.indices[2])
				resume = nil
			}

			for ; !o.Done(); o.Next() {
				if sincePoll++; sincePoll >= s.cfg.PollEvery {
					sincePoll = 0
					if s.now().After(deadline) {
						// The current position is the next untested
						// candidate: everything before it ran to
						// completion, nothing at or after it ran at all.
						mi, pi, qi := o.Indices()
						finish()
						stats.TimedOut = true
						s.state = StateTimedOut
						err := s.store.Put(&checkpoint.Checkpoint{
							Level:          s.levelID,
							CurrentSize:    size,
							MainSize:       sh.main,
							P1Size:         sh.p1,
							P2Size:         sh.p2,
							ProgramsTested: s.programsTested,
							TimeSpent:      s.timeSpent,
							MainIndex:      mi,
							P1Index:        pi,
							P2Index:        qi,
						})
						return nil, stats, err
					}
				}

				p := o.Program()
				if !p.Valid() {
					continue
				}
				s.programsTested++

				if solved, _ := s.exec.Execute(p); solved {
					finish()
					s.state = StateSolved
					return &p, stats, s.store.Delete(s.levelID)
				}
			}
		}
	}

	// Search space exhausted within the bound: a normal no-solution
	// outcome, no checkpoint left behind.
	finish()
	return nil, stats, nil
}
