package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// RecomputePower clears every powered flag and then powers each tile reachable
// from source through wires. It returns the number of powered tiles.
func RecomputePower(grid *Grid, source Position) (int, error) {
	grid.ForEach(func(t *Tile) {
		t.Powered = false
	})

	if !grid.InBounds(source) {
		return 0, fmt.Errorf("%w: source %s", ErrOutOfBounds, source)
	}

	reached := mapset.New[Position]()
	reached.Put(source)
	worklist := []Position{source}

	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, d := range Directions {
			if !grid.HasWire(current, d) {
				continue
			}
			next := current.Step(d)
			if reached.Has(next) {
				continue
			}
			reached.Put(next)
			worklist = append(worklist, next)
		}
	}

	reached.Each(func(p Position) {
		grid.Tiles[p.Row][p.Col].Powered = true
	})

	return reached.Size(), nil
}

// IsSolved walks from the source tile through neighbors whose powered flag is
// already set, without looking at wires, and reports whether the walk covers
// the whole board.
func IsSolved(grid *Grid, source Position) bool {
	if !grid.InBounds(source) {
		return false
	}

	seen := mapset.New[Position]()
	seen.Put(source)
	queue := []Position{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			next, ok := grid.Neighbor(current, d)
			if !ok || seen.Has(next) || !grid.Tiles[next.Row][next.Col].Powered {
				continue
			}
			seen.Put(next)
			queue = append(queue, next)
		}
	}

	return seen.Size() == grid.Size()
}

// PoweredCount counts tiles whose powered flag is set
func PoweredCount(grid *Grid) int {
	count := 0
	grid.ForEach(func(t *Tile) {
		if t.Powered {
			count++
		}
	})
	return count
}
