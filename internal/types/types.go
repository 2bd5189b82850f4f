// Package types defines the core value types shared by the lumibot engine
// and solvers: instructions, facings, tile kinds, grid coordinates and the
// canonical state digest used for search deduplication.
package types

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// StateHashSize is the size of a state digest in bytes.
const StateHashSize = 32

var (
	// ErrInvalidInstruction is returned when parsing an unknown instruction name.
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrInvalidDirection is returned when parsing an unknown direction name.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidStateHash is returned when a state hash has invalid length.
	ErrInvalidStateHash = errors.New("invalid state hash: must be 32 bytes")
)

// Instruction is one of the seven bot instructions. The first five are
// primitives understood by the engine; the two call instructions are only
// meaningful inside a program and are expanded by the executor.
type Instruction uint8

const (
	Walk Instruction = iota
	Jump
	Light
	TurnLeft
	TurnRight
	CallProc1
	CallProc2

	numInstructions
)

var instructionNames = [numInstructions]string{
	Walk:      "walk",
	Jump:      "jump",
	Light:     "light",
	TurnLeft:  "turnLeft",
	TurnRight: "turnRight",
	CallProc1: "proc1",
	CallProc2: "proc2",
}

// Valid reports whether i is a defined instruction value.
func (i Instruction) Valid() bool { return i < numInstructions }

// IsCall reports whether i is a procedure call.
func (i Instruction) IsCall() bool { return i == CallProc1 || i == CallProc2 }

// IsAction reports whether i can change the world (walk, jump or light).
// Turns only change the bot facing and calls change nothing by themselves.
func (i Instruction) IsAction() bool { return i == Walk || i == Jump || i == Light }

// String returns the human-readable instruction name.
func (i Instruction) String() string {
	if !i.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(i))
	}
	return instructionNames[i]
}

// InstructionFromString parses a human-readable instruction name.
func InstructionFromString(s string) (Instruction, error) {
	for i, name := range instructionNames {
		if name == s {
			return Instruction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidInstruction, s)
}

// FormatInstructions renders a sequence as "[walk, light, proc1]".
func FormatInstructions(seq []Instruction) string {
	buf := make([]byte, 0, 2+len(seq)*8)
	buf = append(buf, '[')
	for i, instr := range seq {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, instr.String()...)
	}
	return string(append(buf, ']'))
}

// Direction is one of the four diagonal facings of the bot. The values are
// ordered counter-clockwise so that turning left is +1 (mod 4) and turning
// right is +3 (mod 4).
type Direction uint8

const (
	SouthEast Direction = iota
	NorthEast
	NorthWest
	SouthWest

	numDirections
)

var directionNames = [numDirections]string{
	SouthEast: "SE",
	NorthEast: "NE",
	NorthWest: "NW",
	SouthWest: "SW",
}

// Grid deltas per facing. The facings are diagonal on screen but map to
// unit steps in grid coordinates.
var directionDeltas = [numDirections][2]int{
	SouthEast: {1, 0},
	NorthEast: {0, 1},
	NorthWest: {-1, 0},
	SouthWest: {0, -1},
}

// Valid reports whether d is a defined direction value.
func (d Direction) Valid() bool { return d < numDirections }

// Left returns the facing after one counter-clockwise turn.
func (d Direction) Left() Direction { return (d + 1) % numDirections }

// Right returns the facing after one clockwise turn.
func (d Direction) Right() Direction { return (d + 3) % numDirections }

// Delta returns the (dx, dy) grid step for the facing.
func (d Direction) Delta() (int, int) {
	return directionDeltas[d][0], directionDeltas[d][1]
}

// String returns the compass name of the facing.
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
	return directionNames[d]
}

// DirectionFromString parses a compass direction name.
func DirectionFromString(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// TileKind classifies a grid cell.
type TileKind uint8

const (
	// TilePlain is a regular walkable cell.
	TilePlain TileKind = iota

	// TileLight is a cell that must be lit to solve the level.
	TileLight

	// TileElevator is a cell whose height is raised by the light action.
	TileElevator
)

// String returns the tile kind name.
func (k TileKind) String() string {
	switch k {
	case TilePlain:
		return "plain"
	case TileLight:
		return "light"
	case TileElevator:
		return "elevator"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Coord is a grid cell position.
type Coord struct {
	X, Y int
}

// String returns the coordinate as "(x,y)".
func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// StateHash is a 32-byte digest canonically identifying an engine state
// (bot pose, lit lights, elevator heights). Two engines with equal hashes
// are interchangeable for search purposes. The type is comparable and can
// be used directly as a map key.
type StateHash [StateHashSize]byte

// StateHashFromBytes creates a StateHash from a byte slice.
func StateHashFromBytes(b []byte) (StateHash, error) {
	var h StateHash
	if len(b) != StateHashSize {
		return h, ErrInvalidStateHash
	}
	copy(h[:], b)
	return h, nil
}

// String returns the base58-encoded representation.
func (h StateHash) String() string {
	return base58.Encode(h[:])
}

// Bytes returns the digest as a byte slice.
func (h StateHash) Bytes() []byte {
	return h[:]
}

// MarshalText implements encoding.TextMarshaler.
func (h StateHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *StateHash) UnmarshalText(text []byte) error {
	data, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("base58 decode: %w", err)
	}
	parsed, err := StateHashFromBytes(data)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
