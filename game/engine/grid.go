package engine

import "fmt"

// Grid owns the tiles of a width x height board. Tiles are indexed [row][col].
type Grid struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Tiles  [][]Tile `json:"tiles"`
}

// NewGrid creates a board with every stub closed
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidConfiguration, width, height)
	}

	tiles := make([][]Tile, height)
	for row := range tiles {
		tiles[row] = make([]Tile, width)
		for col := range tiles[row] {
			tiles[row][col] = Tile{Row: row, Col: col}
		}
	}

	return &Grid{Width: width, Height: height, Tiles: tiles}, nil
}

// InBounds reports whether p lies on the board
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.Height && p.Col >= 0 && p.Col < g.Width
}

// Tile returns the tile at p
func (g *Grid) Tile(p Position) (*Tile, error) {
	if !g.InBounds(p) {
		return nil, fmt.Errorf("%w: %s on a %dx%d board", ErrOutOfBounds, p, g.Width, g.Height)
	}
	return &g.Tiles[p.Row][p.Col], nil
}

// Neighbor returns the position adjacent to p toward d, and false at the boundary
func (g *Grid) Neighbor(p Position, d Direction) (Position, bool) {
	n := p.Step(d)
	if !g.InBounds(n) || n == p {
		return Position{}, false
	}
	return n, true
}

// HasWire reports whether p and its neighbor toward d both have their facing stubs open
func (g *Grid) HasWire(p Position, d Direction) bool {
	if !g.InBounds(p) {
		return false
	}
	n, ok := g.Neighbor(p, d)
	if !ok {
		return false
	}
	return g.Tiles[p.Row][p.Col].Open(d) && g.Tiles[n.Row][n.Col].Open(d.Opposite())
}

// Rotate turns the tile at p 90 degrees clockwise
func (g *Grid) Rotate(p Position) error {
	tile, err := g.Tile(p)
	if err != nil {
		return err
	}
	tile.Rotate()
	return nil
}

// OpenInterior opens every stub that faces an existing neighbor
func (g *Grid) OpenInterior() {
	g.ForEach(func(t *Tile) {
		for _, d := range Directions {
			_, ok := g.Neighbor(t.Position(), d)
			t.SetOpen(d, ok)
		}
	})
}

// Clear closes every stub on every tile
func (g *Grid) Clear() {
	g.ForEach(func(t *Tile) {
		t.North, t.East, t.South, t.West = false, false, false, false
	})
}

// Connect opens the mutually facing stubs of two adjacent tiles
func (g *Grid) Connect(a, b Position) error {
	from, err := g.Tile(a)
	if err != nil {
		return err
	}
	to, err := g.Tile(b)
	if err != nil {
		return err
	}

	for _, d := range Directions {
		if a.Step(d) == b {
			from.SetOpen(d, true)
			to.SetOpen(d.Opposite(), true)
			return nil
		}
	}
	return fmt.Errorf("%s and %s are not adjacent", a, b)
}

// ForEach visits every tile in row-major order
func (g *Grid) ForEach(fn func(t *Tile)) {
	for row := range g.Tiles {
		for col := range g.Tiles[row] {
			fn(&g.Tiles[row][col])
		}
	}
}

// WireCount counts the wires on the board, each shared pair counted once
func (g *Grid) WireCount() int {
	count := 0
	g.ForEach(func(t *Tile) {
		p := t.Position()
		if g.HasWire(p, East) {
			count++
		}
		if g.HasWire(p, South) {
			count++
		}
	})
	return count
}

// Size returns the number of tiles on the board
func (g *Grid) Size() int {
	return g.Width * g.Height
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	clone := &Grid{Width: g.Width, Height: g.Height, Tiles: make([][]Tile, len(g.Tiles))}
	for row := range g.Tiles {
		clone.Tiles[row] = append([]Tile(nil), g.Tiles[row]...)
	}
	return clone
}
