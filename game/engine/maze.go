package engine

import (
	"fmt"
	"math/rand"
	"sort"
)

// MazeGenerator builds boards whose wires form a random spanning tree.
// The same seed and dimensions always produce the same tree.
type MazeGenerator struct {
	rng *rand.Rand
}

// NewMazeGenerator creates a generator drawing weights from rng
func NewMazeGenerator(rng *rand.Rand) *MazeGenerator {
	return &MazeGenerator{rng: rng}
}

// NewSeededMazeGenerator creates a generator with its own source seeded by seed
func NewSeededMazeGenerator(seed int64) *MazeGenerator {
	return NewMazeGenerator(rand.New(rand.NewSource(seed)))
}

// Generate returns a width x height grid drawn from a random spanning tree,
// along with the tree's edges in the order Kruskal accepted them.
func (m *MazeGenerator) Generate(width, height int) (*Grid, []Edge, error) {
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, nil, err
	}

	grid.OpenInterior()
	edges := m.Edges(grid)
	tree := KruskalTree(edges)

	grid.Clear()
	if err := DrawTree(grid, tree); err != nil {
		return nil, nil, err
	}

	return grid, tree, nil
}

// Edges enumerates every grid edge with a random weight. Columns are visited
// left to right and rows top to bottom; the right-neighbor edge of a tile is
// emitted before its bottom-neighbor edge.
func (m *MazeGenerator) Edges(grid *Grid) []Edge {
	edges := make([]Edge, 0, 2*grid.Size())
	for col := 0; col < grid.Width; col++ {
		for row := 0; row < grid.Height; row++ {
			here := Position{Row: row, Col: col}
			if col < grid.Width-1 {
				edges = append(edges, Edge{From: here, To: here.Step(East), Weight: m.rng.Int63()})
			}
			if row < grid.Height-1 {
				edges = append(edges, Edge{From: here, To: here.Step(South), Weight: m.rng.Int63()})
			}
		}
	}
	return edges
}

// Scramble rotates every tile a random number of quarter turns, visiting
// columns left to right and rows top to bottom.
func (m *MazeGenerator) Scramble(grid *Grid) {
	for col := 0; col < grid.Width; col++ {
		for row := 0; row < grid.Height; row++ {
			turns := m.rng.Intn(4)
			for i := 0; i < turns; i++ {
				grid.Tiles[row][col].Rotate()
			}
		}
	}
}

// KruskalTree stable-sorts a copy of edges by ascending weight and keeps each
// edge that joins two different components.
func KruskalTree(edges []Edge) []Edge {
	worklist := append([]Edge(nil), edges...)
	sort.SliceStable(worklist, func(i, j int) bool {
		return worklist[i].Weight < worklist[j].Weight
	})

	uf := NewUnionFind()
	tree := make([]Edge, 0, len(worklist))
	for _, edge := range worklist {
		from, to := uf.Find(edge.From), uf.Find(edge.To)
		if from == to {
			continue
		}
		tree = append(tree, edge)
		uf.Union(from, to)
	}
	return tree
}

// DrawTree opens the facing stubs for every tree edge
func DrawTree(grid *Grid, tree []Edge) error {
	for _, edge := range tree {
		if err := grid.Connect(edge.From, edge.To); err != nil {
			return fmt.Errorf("draw edge %s-%s: %w", edge.From, edge.To, err)
		}
	}
	return nil
}
