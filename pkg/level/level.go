// Package level defines the immutable level geometry consumed by the
// engine: grid dimensions, per-cell heights and tile kinds, the bot start
// pose and the medal instruction-count thresholds.
//
// Levels are plain values. The engine borrows a level to initialize its
// mutable state and never writes back; solvers treat the level as opaque.
package level

import (
	"errors"
	"fmt"

	"github.com/lumibot/lumibot/internal/types"
)

// MaxHeight is the exclusive upper bound for tile heights. Elevator
// heights cycle modulo this value.
const MaxHeight = 6

var (
	// ErrNoLights is returned when a level has no light tiles.
	ErrNoLights = errors.New("level has no light tiles")

	// ErrStartOutOfBounds is returned when the start cell is outside the grid.
	ErrStartOutOfBounds = errors.New("start position out of bounds")

	// ErrEmptyGrid is returned when the grid has zero cells.
	ErrEmptyGrid = errors.New("empty grid")

	// ErrBadHeight is returned when a cell height is out of range.
	ErrBadHeight = errors.New("cell height out of range")
)

// Cell is one grid tile.
type Cell struct {
	Kind   types.TileKind
	Height uint8
}

// Medals holds the instruction-count thresholds for scoring. They do not
// affect search correctness.
type Medals struct {
	Gold   int
	Silver int
	Bronze int
}

// Level is an immutable level definition.
type Level struct {
	// ID identifies the level for checkpointing and result storage.
	ID uint64

	// Width and Height are the grid dimensions.
	Width  int
	Height int

	// Cells holds the grid in row-major order, index y*Width+x.
	Cells []Cell

	// Start is the bot's initial cell.
	Start types.Coord

	// Facing is the bot's initial direction.
	Facing types.Direction

	// Medals holds the scoring thresholds.
	Medals Medals
}

// InBounds reports whether (x, y) addresses a grid cell.
func (l *Level) InBounds(x, y int) bool {
	return x >= 0 && x < l.Width && y >= 0 && y < l.Height
}

// Cell returns the cell at (x, y). The caller must ensure bounds.
func (l *Level) Cell(x, y int) Cell {
	return l.Cells[y*l.Width+x]
}

// LightCells returns the positions of all light tiles in scan order
// (row-major, ascending y then x). The order is deterministic and is the
// canonical order used by state hashing.
func (l *Level) LightCells() []types.Coord {
	var cells []types.Coord
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.Cell(x, y).Kind == types.TileLight {
				cells = append(cells, types.Coord{X: x, Y: y})
			}
		}
	}
	return cells
}

// ElevatorCells returns the positions of all elevator tiles in scan order.
func (l *Level) ElevatorCells() []types.Coord {
	var cells []types.Coord
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if l.Cell(x, y).Kind == types.TileElevator {
				cells = append(cells, types.Coord{X: x, Y: y})
			}
		}
	}
	return cells
}

// Validate checks level invariants: a non-empty grid, at least one light,
// an in-bounds start cell and in-range heights.
func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 || len(l.Cells) == 0 {
		return ErrEmptyGrid
	}
	if len(l.Cells) != l.Width*l.Height {
		return fmt.Errorf("grid size mismatch: %d cells for %dx%d", len(l.Cells), l.Width, l.Height)
	}
	if !l.InBounds(l.Start.X, l.Start.Y) {
		return fmt.Errorf("%w: %v", ErrStartOutOfBounds, l.Start)
	}
	if !l.Facing.Valid() {
		return fmt.Errorf("%w: %d", types.ErrInvalidDirection, l.Facing)
	}
	lights := 0
	for i, c := range l.Cells {
		if c.Height >= MaxHeight {
			return fmt.Errorf("%w: cell %d height %d", ErrBadHeight, i, c.Height)
		}
		if c.Kind == types.TileLight {
			lights++
		}
	}
	if lights == 0 {
		return ErrNoLights
	}
	return nil
}
