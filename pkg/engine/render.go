package engine

import (
	"fmt"
	"strings"

	"github.com/lumibot/lumibot/internal/types"
)

// Glyphs for the bot facing, chosen to match the on-screen diagonal
// directions of the isometric rendering.
var facingGlyphs = [...]byte{
	types.SouthEast: 'v',
	types.NorthEast: '>',
	types.NorthWest: '^',
	types.SouthWest: '<',
}

// Render returns an ASCII snapshot of the grid: the bot as a facing
// glyph, lit lights as 'O', unlit lights as 'o', elevators as their
// current height in brackets and plain tiles as their height.
func (e *Engine) Render() string {
	var b strings.Builder
	lit, total := e.LightCount()
	fmt.Fprintf(&b, "level %d  bot=%v %s  lights %d/%d\n", e.lvl.ID, e.bot, e.facing, lit, total)

	for y := e.lvl.Height - 1; y >= 0; y-- {
		for x := 0; x < e.lvl.Width; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(e.renderCell(types.Coord{X: x, Y: y}))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (e *Engine) renderCell(c types.Coord) string {
	if c == e.bot {
		return fmt.Sprintf(" %c ", facingGlyphs[e.facing])
	}
	if i, ok := e.lightIndex[c]; ok {
		if e.lit[i] {
			return " O "
		}
		return " o "
	}
	if i, ok := e.elevIndex[c]; ok {
		return fmt.Sprintf("[%d]", e.elevHeights[i])
	}
	return fmt.Sprintf(" %d ", e.HeightAt(c.X, c.Y))
}
