package level

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lumibot/lumibot/internal/types"
)

// Text notation for levels.
//
// A level file is a sequence of lines. Blank lines and lines starting with
// '#' are ignored. Header lines come first:
//
//	level <id>
//	start <x> <y> <dir>
//	medals <gold> <silver> <bronze>
//
// followed by a "map" line and one line per grid row, topmost row first
// (the first map row is y = height-1). Each cell is a token:
//
//	.     plain tile, height 0
//	p<h>  plain tile, height h
//	l<h>  light tile, height h (initially unlit)
//	e<h>  elevator tile, height h
var (
	// ErrBadNotation is returned for malformed level text.
	ErrBadNotation = errors.New("bad level notation")
)

// Parse parses a level from its text notation and validates it.
func Parse(text string) (*Level, error) {
	l := &Level{Facing: types.SouthEast}

	var rows [][]Cell
	inMap := false

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if inMap {
			row, err := parseRow(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			rows = append(rows, row)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "level":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: level wants 1 argument", ErrBadNotation, lineNo+1)
			}
			id, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadNotation, lineNo+1, err)
			}
			l.ID = id
		case "start":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: start wants x y dir", ErrBadNotation, lineNo+1)
			}
			x, err1 := strconv.Atoi(fields[1])
			y, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: line %d: bad start coordinate", ErrBadNotation, lineNo+1)
			}
			dir, err := types.DirectionFromString(fields[3])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadNotation, lineNo+1, err)
			}
			l.Start = types.Coord{X: x, Y: y}
			l.Facing = dir
		case "medals":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: medals wants gold silver bronze", ErrBadNotation, lineNo+1)
			}
			vals := make([]int, 3)
			for i, f := range fields[1:] {
				v, err := strconv.Atoi(f)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrBadNotation, lineNo+1, err)
				}
				vals[i] = v
			}
			l.Medals = Medals{Gold: vals[0], Silver: vals[1], Bronze: vals[2]}
		case "map":
			inMap = true
		default:
			return nil, fmt.Errorf("%w: line %d: unknown directive %q", ErrBadNotation, lineNo+1, fields[0])
		}
	}

	if len(rows) == 0 {
		return nil, ErrEmptyGrid
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: map row %d has %d cells, want %d", ErrBadNotation, i+1, len(row), width)
		}
	}

	// The first map row is the top of the grid, so flip rows into
	// ascending y order.
	height := len(rows)
	l.Width = width
	l.Height = height
	l.Cells = make([]Cell, width*height)
	for i, row := range rows {
		y := height - i - 1
		copy(l.Cells[y*width:(y+1)*width], row)
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func parseRow(line string) ([]Cell, error) {
	var row []Cell
	for _, tok := range strings.Fields(line) {
		cell, err := parseCell(tok)
		if err != nil {
			return nil, err
		}
		row = append(row, cell)
	}
	return row, nil
}

func parseCell(tok string) (Cell, error) {
	if tok == "." {
		return Cell{Kind: types.TilePlain}, nil
	}
	if len(tok) != 2 {
		return Cell{}, fmt.Errorf("%w: cell %q", ErrBadNotation, tok)
	}

	var kind types.TileKind
	switch tok[0] {
	case 'p':
		kind = types.TilePlain
	case 'l':
		kind = types.TileLight
	case 'e':
		kind = types.TileElevator
	default:
		return Cell{}, fmt.Errorf("%w: cell %q", ErrBadNotation, tok)
	}

	h := tok[1] - '0'
	if h >= MaxHeight {
		return Cell{}, fmt.Errorf("%w: cell %q", ErrBadHeight, tok)
	}
	return Cell{Kind: kind, Height: h}, nil
}

// Format renders a level back into text notation. Parse(Format(l))
// reproduces l.
func Format(l *Level) string {
	var b strings.Builder
	fmt.Fprintf(&b, "level %d\n", l.ID)
	fmt.Fprintf(&b, "start %d %d %s\n", l.Start.X, l.Start.Y, l.Facing)
	fmt.Fprintf(&b, "medals %d %d %d\n", l.Medals.Gold, l.Medals.Silver, l.Medals.Bronze)
	b.WriteString("map\n")
	for y := l.Height - 1; y >= 0; y-- {
		for x := 0; x < l.Width; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(formatCell(l.Cell(x, y)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatCell(c Cell) string {
	switch c.Kind {
	case types.TileLight:
		return fmt.Sprintf("l%d", c.Height)
	case types.TileElevator:
		return fmt.Sprintf("e%d", c.Height)
	default:
		if c.Height == 0 {
			return "."
		}
		return fmt.Sprintf("p%d", c.Height)
	}
}
