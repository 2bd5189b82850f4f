// Package engine implements the deterministic simulation of a bot on a
// height-mapped grid.
//
// The engine owns all mutable level state: bot cell and facing, the
// working copy of tile heights (elevators change height at runtime) and
// the set of lit light cells. It applies one primitive instruction at a
// time and reports whether anything observable changed. Illegal moves are
// game rules, not faults: they leave the state untouched and return false.
//
// Searches branch by cloning an engine; clones are fully independent.
package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/lumibot/lumibot/internal/types"
	"github.com/lumibot/lumibot/pkg/level"
)

// Engine simulates one level. Not safe for concurrent use; clone per
// goroutine instead.
type Engine struct {
	lvl *level.Level

	// Immutable per level, shared between clones.
	lightCells []types.Coord
	lightIndex map[types.Coord]int
	elevCells  []types.Coord
	elevIndex  map[types.Coord]int

	// Mutable state.
	bot         types.Coord
	facing      types.Direction
	heights     []uint8 // working copy of all cell heights, row-major
	lit         []bool  // parallel to lightCells
	litCount    int
	elevHeights []uint8 // parallel to elevCells
}

// New creates an engine for the given level. The level is validated and
// then only borrowed; the engine keeps its own copy of every mutable
// field.
func New(l *level.Level) (*Engine, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("level %d: %w", l.ID, err)
	}

	e := &Engine{
		lvl:        l,
		lightCells: l.LightCells(),
		elevCells:  l.ElevatorCells(),
	}
	e.lightIndex = make(map[types.Coord]int, len(e.lightCells))
	for i, c := range e.lightCells {
		e.lightIndex[c] = i
	}
	e.elevIndex = make(map[types.Coord]int, len(e.elevCells))
	for i, c := range e.elevCells {
		e.elevIndex[c] = i
	}

	e.Reset()
	return e, nil
}

// Reset restores the initial state of the level: bot at the start pose,
// all lights off, all elevators at their defined heights.
func (e *Engine) Reset() {
	l := e.lvl
	e.bot = l.Start
	e.facing = l.Facing

	if e.heights == nil {
		e.heights = make([]uint8, len(l.Cells))
	}
	for i, c := range l.Cells {
		e.heights[i] = c.Height
	}

	if e.lit == nil {
		e.lit = make([]bool, len(e.lightCells))
	}
	for i := range e.lit {
		e.lit[i] = false
	}
	e.litCount = 0

	if e.elevHeights == nil {
		e.elevHeights = make([]uint8, len(e.elevCells))
	}
	for i, c := range e.elevCells {
		e.elevHeights[i] = l.Cell(c.X, c.Y).Height
	}
}

// Clone returns a deep, independent copy. Mutating the clone never
// affects the source and vice versa.
func (e *Engine) Clone() *Engine {
	c := &Engine{
		lvl:        e.lvl,
		lightCells: e.lightCells,
		lightIndex: e.lightIndex,
		elevCells:  e.elevCells,
		elevIndex:  e.elevIndex,

		bot:      e.bot,
		facing:   e.facing,
		litCount: e.litCount,
	}
	c.heights = append([]uint8(nil), e.heights...)
	c.lit = append([]bool(nil), e.lit...)
	c.elevHeights = append([]uint8(nil), e.elevHeights...)
	return c
}

// Level returns the level being simulated.
func (e *Engine) Level() *level.Level { return e.lvl }

// Bot returns the bot's current cell.
func (e *Engine) Bot() types.Coord { return e.bot }

// Facing returns the bot's current direction.
func (e *Engine) Facing() types.Direction { return e.facing }

// CurrentHeight returns the height of the tile under the bot.
func (e *Engine) CurrentHeight() uint8 {
	return e.heights[e.bot.Y*e.lvl.Width+e.bot.X]
}

// HeightAt returns the current height of the cell at (x, y). The caller
// must ensure bounds.
func (e *Engine) HeightAt(x, y int) uint8 {
	return e.heights[y*e.lvl.Width+x]
}

// Step applies one primitive instruction and reports whether it changed
// any observable state. Illegal moves are silent no-ops. Call
// instructions are not primitives and never change engine state; they are
// expanded by the program executor. Passing an undefined instruction
// value is a contract violation and panics.
func (e *Engine) Step(instr types.Instruction) bool {
	switch instr {
	case types.Walk:
		return e.walk()
	case types.Jump:
		return e.jump()
	case types.Light:
		return e.light()
	case types.TurnLeft:
		e.facing = e.facing.Left()
		return true
	case types.TurnRight:
		e.facing = e.facing.Right()
		return true
	case types.CallProc1, types.CallProc2:
		return false
	default:
		panic(fmt.Sprintf("engine: undefined instruction %d", uint8(instr)))
	}
}

// target returns the cell the bot is facing and whether it is in bounds.
func (e *Engine) target() (types.Coord, bool) {
	dx, dy := e.facing.Delta()
	t := types.Coord{X: e.bot.X + dx, Y: e.bot.Y + dy}
	return t, e.lvl.InBounds(t.X, t.Y)
}

// walk moves one cell forward when the target height equals the current
// height.
func (e *Engine) walk() bool {
	t, ok := e.target()
	if !ok {
		return false
	}
	if e.HeightAt(t.X, t.Y) != e.CurrentHeight() {
		return false
	}
	e.bot = t
	return true
}

// jump moves one cell forward when going up exactly one level or down any
// amount.
func (e *Engine) jump() bool {
	t, ok := e.target()
	if !ok {
		return false
	}
	cur := int(e.CurrentHeight())
	tgt := int(e.HeightAt(t.X, t.Y))
	if tgt-cur != 1 && cur <= tgt {
		return false
	}
	e.bot = t
	return true
}

// light toggles the light under the bot, or raises an elevator by two
// levels modulo MaxHeight. On a plain tile it does nothing.
func (e *Engine) light() bool {
	if i, ok := e.lightIndex[e.bot]; ok {
		if e.lit[i] {
			e.lit[i] = false
			e.litCount--
		} else {
			e.lit[i] = true
			e.litCount++
		}
		return true
	}
	if i, ok := e.elevIndex[e.bot]; ok {
		h := (e.elevHeights[i] + 2) % level.MaxHeight
		e.elevHeights[i] = h
		e.heights[e.bot.Y*e.lvl.Width+e.bot.X] = h
		return true
	}
	return false
}

// IsSolved reports whether every light on the level is lit.
func (e *Engine) IsSolved() bool {
	return e.litCount == len(e.lightCells)
}

// LightCount returns the number of lit lights and the total light count.
func (e *Engine) LightCount() (lit, total int) {
	return e.litCount, len(e.lightCells)
}

// StateHash returns the canonical digest of the current state: bot cell,
// facing, lit set and, when the level has elevators, their heights.
// Elevator-free levels hash identically whether or not elevators would
// have been considered, and the cost is O(lights+elevators), not O(grid):
// light and elevator cells are visited in their fixed scan order.
func (e *Engine) StateHash() types.StateHash {
	buf := make([]byte, 0, 9+len(e.lit)+len(e.elevHeights))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(e.bot.X))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(e.bot.Y))
	buf = append(buf, byte(e.facing))
	for _, on := range e.lit {
		if on {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	// Heights diverge between action and no-action histories, so they are
	// always part of the digest when elevators exist.
	buf = append(buf, e.elevHeights...)
	return types.StateHash(blake3.Sum256(buf))
}

// String returns a one-line debug summary.
func (e *Engine) String() string {
	lit, total := e.LightCount()
	return fmt.Sprintf("Engine(level=%d, pos=%v, dir=%s, lights=%d/%d)",
		e.lvl.ID, e.bot, e.facing, lit, total)
}
