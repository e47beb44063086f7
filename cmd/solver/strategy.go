package main

import (
	"errors"

	"github.com/wricardo/lightem/game/engine"
)

var (
	ErrNoSolution      = errors.New("no orientation powers every tile")
	ErrBudgetExhausted = errors.New("search budget exhausted")
)

// Stub bits, matching the glyph mask used by the renderer
const (
	stubNorth uint8 = 1 << iota
	stubEast
	stubSouth
	stubWest
)

// orientation is one distinct rotation of a tile
type orientation struct {
	mask  uint8
	turns int
}

func maskOf(t engine.Tile) uint8 {
	var m uint8
	if t.North {
		m |= stubNorth
	}
	if t.East {
		m |= stubEast
	}
	if t.South {
		m |= stubSouth
	}
	if t.West {
		m |= stubWest
	}
	return m
}

// rotateMask turns a mask a quarter clockwise: north becomes east, west becomes north
func rotateMask(m uint8) uint8 {
	return ((m << 1) | (m >> 3)) & 0xF
}

// orientations lists the distinct rotations of mask with the fewest turns reaching each
func orientations(mask uint8) []orientation {
	seen := make(map[uint8]bool, 4)
	out := make([]orientation, 0, 4)
	m := mask
	for turns := 0; turns < 4; turns++ {
		if !seen[m] {
			seen[m] = true
			out = append(out, orientation{mask: m, turns: turns})
		}
		m = rotateMask(m)
	}
	return out
}

// rollbackSet is a union-find without path compression, so unions can be undone in order
type rollbackSet struct {
	parent     []int
	size       []int
	history    []int
	components int
}

func newRollbackSet(n int) *rollbackSet {
	r := &rollbackSet{parent: make([]int, n), size: make([]int, n), components: n}
	for i := range r.parent {
		r.parent[i] = i
		r.size[i] = 1
	}
	return r
}

func (r *rollbackSet) find(x int) int {
	for r.parent[x] != x {
		x = r.parent[x]
	}
	return x
}

// union merges two components and reports false when they were already joined
func (r *rollbackSet) union(a, b int) bool {
	ra, rb := r.find(a), r.find(b)
	if ra == rb {
		return false
	}
	if r.size[ra] < r.size[rb] {
		ra, rb = rb, ra
	}
	r.parent[rb] = ra
	r.size[ra] += r.size[rb]
	r.history = append(r.history, rb)
	r.components--
	return true
}

func (r *rollbackSet) mark() int {
	return len(r.history)
}

func (r *rollbackSet) rollback(mark int) {
	for len(r.history) > mark {
		rb := r.history[len(r.history)-1]
		r.history = r.history[:len(r.history)-1]
		ra := r.parent[rb]
		r.size[ra] -= r.size[rb]
		r.parent[rb] = rb
		r.components++
	}
}

// Solver searches tile orientations in row-major order. A placement must agree
// with its north and west neighbors, keep border stubs closed, and never close
// a loop; a full placement with one component powers every tile.
type Solver struct {
	width, height int
	options       [][]orientation
	masks         []uint8
	turns         []int
	set           *rollbackSet
	budget        int
	steps         int
}

// NewSolver prepares a search over the grid's current orientation. budget caps
// the number of placements tried; zero or less means no cap.
func NewSolver(grid *engine.Grid, budget int) *Solver {
	n := grid.Width * grid.Height
	s := &Solver{
		width:   grid.Width,
		height:  grid.Height,
		options: make([][]orientation, n),
		masks:   make([]uint8, n),
		turns:   make([]int, n),
		set:     newRollbackSet(n),
		budget:  budget,
	}
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			s.options[row*grid.Width+col] = orientations(maskOf(grid.Tiles[row][col]))
		}
	}
	return s
}

// Steps returns the number of placements tried so far
func (s *Solver) Steps() int {
	return s.steps
}

// Solve returns the quarter turns each tile needs. Tiles already in place are omitted.
func (s *Solver) Solve() (map[engine.Position]int, error) {
	if len(s.options) == 0 {
		return nil, ErrNoSolution
	}

	solved, err := s.place(0)
	if err != nil {
		return nil, err
	}
	if !solved {
		return nil, ErrNoSolution
	}

	plan := make(map[engine.Position]int)
	for idx, turns := range s.turns {
		if turns > 0 {
			plan[engine.Position{Row: idx / s.width, Col: idx % s.width}] = turns
		}
	}
	return plan, nil
}

func (s *Solver) place(idx int) (bool, error) {
	if idx == len(s.options) {
		return s.set.components == 1, nil
	}

	row, col := idx/s.width, idx%s.width
	for _, o := range s.options[idx] {
		if !s.fits(idx, row, col, o.mask) {
			continue
		}

		s.steps++
		if s.budget > 0 && s.steps > s.budget {
			return false, ErrBudgetExhausted
		}

		mark := s.set.mark()
		if s.join(idx, o.mask) {
			s.masks[idx] = o.mask
			s.turns[idx] = o.turns
			solved, err := s.place(idx + 1)
			if err != nil || solved {
				return solved, err
			}
		}
		s.set.rollback(mark)
	}
	s.turns[idx] = 0
	return false, nil
}

// fits checks mask against the placed neighbors and the board edge
func (s *Solver) fits(idx, row, col int, mask uint8) bool {
	north := mask&stubNorth != 0
	if row == 0 {
		if north {
			return false
		}
	} else if north != (s.masks[idx-s.width]&stubSouth != 0) {
		return false
	}

	west := mask&stubWest != 0
	if col == 0 {
		if west {
			return false
		}
	} else if west != (s.masks[idx-1]&stubEast != 0) {
		return false
	}

	if col == s.width-1 && mask&stubEast != 0 {
		return false
	}
	if row == s.height-1 && mask&stubSouth != 0 {
		return false
	}
	return true
}

// join links idx to its north and west wires, failing if either closes a loop
func (s *Solver) join(idx int, mask uint8) bool {
	if mask&stubNorth != 0 && !s.set.union(idx, idx-s.width) {
		return false
	}
	if mask&stubWest != 0 && !s.set.union(idx, idx-1) {
		return false
	}
	return true
}

// PlanActions expands a plan into rotate actions in row-major order
func PlanActions(width, height int, plan map[engine.Position]int) []engine.Action {
	var actions []engine.Action
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			for i := 0; i < plan[engine.Position{Row: row, Col: col}]; i++ {
				actions = append(actions, engine.Action{Type: engine.ActionRotate, Row: row, Col: col})
			}
		}
	}
	return actions
}

// Chunk splits actions into batches of at most size
func Chunk(actions []engine.Action, size int) [][]engine.Action {
	var batches [][]engine.Action
	for len(actions) > size {
		batches = append(batches, actions[:size])
		actions = actions[size:]
	}
	if len(actions) > 0 {
		batches = append(batches, actions)
	}
	return batches
}
