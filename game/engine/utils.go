package engine

import "strings"

// Shape classifies a tile by its stub layout, ignoring orientation
type Shape string

const (
	ShapeEmpty    Shape = "empty"
	ShapeDeadEnd  Shape = "dead_end"
	ShapeStraight Shape = "straight"
	ShapeCorner   Shape = "corner"
	ShapeTee      Shape = "tee"
	ShapeCross    Shape = "cross"
)

// glyphs maps a N=1 E=2 S=4 W=8 stub mask to a box-drawing character
var glyphs = [16]string{
	"·", "╵", "╶", "└",
	"╷", "│", "┌", "├",
	"╴", "┘", "─", "┴",
	"┐", "┤", "┬", "┼",
}

// ShapeOf classifies a tile
func ShapeOf(t Tile) Shape {
	switch t.StubCount() {
	case 0:
		return ShapeEmpty
	case 1:
		return ShapeDeadEnd
	case 2:
		if (t.North && t.South) || (t.East && t.West) {
			return ShapeStraight
		}
		return ShapeCorner
	case 3:
		return ShapeTee
	default:
		return ShapeCross
	}
}

// Glyph returns the box-drawing character for a tile's current orientation
func Glyph(t Tile) string {
	mask := 0
	if t.North {
		mask |= 1
	}
	if t.East {
		mask |= 2
	}
	if t.South {
		mask |= 4
	}
	if t.West {
		mask |= 8
	}
	return glyphs[mask]
}

// RenderBoard draws the grid one line per row. Each tile is its glyph followed
// by '@' for the power station, '+' when powered, or ' ' otherwise.
func RenderBoard(grid *Grid, source Position) []string {
	if grid == nil {
		return nil
	}

	lines := make([]string, 0, grid.Height)
	for row := 0; row < grid.Height; row++ {
		var line strings.Builder
		for col := 0; col < grid.Width; col++ {
			tile := grid.Tiles[row][col]
			line.WriteString(Glyph(tile))
			switch {
			case source.Row == row && source.Col == col:
				line.WriteString("@")
			case tile.Powered:
				line.WriteString("+")
			default:
				line.WriteString(" ")
			}
		}
		lines = append(lines, strings.TrimRight(line.String(), " "))
	}
	return lines
}

// CountShapes counts the tiles of each shape on the board
func CountShapes(grid *Grid) map[Shape]int {
	counts := make(map[Shape]int)
	grid.ForEach(func(t *Tile) {
		counts[ShapeOf(*t)]++
	})
	return counts
}

// WireDistances returns the number of wire hops from source to every tile it reaches
func WireDistances(grid *Grid, source Position) map[Position]int {
	dist := make(map[Position]int)
	if !grid.InBounds(source) {
		return dist
	}

	dist[source] = 0
	queue := []Position{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			if !grid.HasWire(current, d) {
				continue
			}
			next := current.Step(d)
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
