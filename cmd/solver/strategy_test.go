package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/wricardo/lightem/game/engine"
)

func TestRotateMask(t *testing.T) {
	tests := []struct {
		in, expected uint8
	}{
		{stubNorth, stubEast},
		{stubEast, stubSouth},
		{stubSouth, stubWest},
		{stubWest, stubNorth},
		{stubNorth | stubSouth, stubEast | stubWest},
		{stubNorth | stubWest, stubNorth | stubEast},
		{0xF, 0xF},
	}

	for _, tt := range tests {
		if got := rotateMask(tt.in); got != tt.expected {
			t.Errorf("rotateMask(%04b) = %04b, expected %04b", tt.in, got, tt.expected)
		}
	}
}

func TestRotateMask_MatchesTileRotate(t *testing.T) {
	for mask := uint8(0); mask < 16; mask++ {
		tile := engine.Tile{
			North: mask&stubNorth != 0,
			East:  mask&stubEast != 0,
			South: mask&stubSouth != 0,
			West:  mask&stubWest != 0,
		}
		tile.Rotate()
		if got := maskOf(tile); got != rotateMask(mask) {
			t.Errorf("mask %04b: tile rotated to %04b, rotateMask gave %04b", mask, got, rotateMask(mask))
		}
	}
}

func TestOrientations(t *testing.T) {
	tests := []struct {
		name     string
		mask     uint8
		expected int
	}{
		{"empty", 0, 1},
		{"cross", 0xF, 1},
		{"straight", stubNorth | stubSouth, 2},
		{"corner", stubNorth | stubEast, 4},
		{"dead end", stubWest, 4},
		{"tee", stubNorth | stubEast | stubSouth, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orientations(tt.mask)
			if len(got) != tt.expected {
				t.Fatalf("Expected %d orientations, got %d", tt.expected, len(got))
			}
			if got[0].mask != tt.mask || got[0].turns != 0 {
				t.Errorf("Expected the current orientation first, got %+v", got[0])
			}
		})
	}
}

func TestRollbackSet(t *testing.T) {
	set := newRollbackSet(4)

	if !set.union(0, 1) || !set.union(2, 3) {
		t.Fatal("Expected unions of separate components to succeed")
	}
	if set.components != 2 {
		t.Errorf("Expected 2 components, got %d", set.components)
	}

	mark := set.mark()
	if !set.union(1, 2) {
		t.Fatal("Expected union to succeed")
	}
	if set.union(0, 3) {
		t.Error("Expected union inside one component to report a loop")
	}
	if set.components != 1 {
		t.Errorf("Expected 1 component, got %d", set.components)
	}

	set.rollback(mark)
	if set.components != 2 {
		t.Errorf("Expected 2 components after rollback, got %d", set.components)
	}
	if set.find(0) == set.find(3) {
		t.Error("Expected 0 and 3 to be separated after rollback")
	}
	if set.find(0) != set.find(1) {
		t.Error("Expected 0 and 1 to stay joined after rollback")
	}
}

func generated(t *testing.T, width, height int, seed int64) *engine.GameEngine {
	t.Helper()
	config := engine.NewBoardConfig(width, height)
	config.Seed = &seed
	eng, err := engine.NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to generate %dx%d board: %v", width, height, err)
	}
	return eng
}

func TestSolver_GeneratedBoards(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 6}, {6, 1}, {3, 3}, {5, 5}, {8, 3}, {12, 12}}

	for _, size := range sizes {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("%dx%d/seed%d", size[0], size[1], seed), func(t *testing.T) {
				eng := generated(t, size[0], size[1], seed)

				plan, err := NewSolver(eng.GetState().Grid, 0).Solve()
				if err != nil {
					t.Fatalf("Failed to solve: %v", err)
				}

				actions := PlanActions(size[0], size[1], plan)
				if _, err := eng.BulkApply(actions); err != nil {
					t.Fatalf("Failed to apply plan: %v", err)
				}

				if !eng.IsSolved() {
					t.Errorf("Expected board to be solved after %d rotations, powered %d/%d",
						len(actions), eng.GetState().PoweredCount, eng.GetState().TotalTiles)
				}
			})
		}
	}
}

func TestSolver_AlreadySolved(t *testing.T) {
	seed := int64(21)
	config := engine.NewBoardConfig(6, 4)
	config.Seed = &seed
	config.Scramble = false
	eng, err := engine.NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to generate board: %v", err)
	}

	plan, err := NewSolver(eng.GetState().Grid, 0).Solve()
	if err != nil {
		t.Fatalf("Failed to solve: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("Expected an empty plan for a solved board, got %v", plan)
	}
}

func TestSolver_NoSolution(t *testing.T) {
	twoEmpty, _ := engine.NewGrid(2, 1)

	deadEnd, _ := engine.NewGrid(1, 1)
	deadEnd.Tiles[0][0].North = true

	// Four corners closing a loop leave no tree
	loop, _ := engine.NewGrid(2, 2)
	loop.Tiles[0][0].East, loop.Tiles[0][0].South = true, true
	loop.Tiles[0][1].West, loop.Tiles[0][1].South = true, true
	loop.Tiles[1][0].North, loop.Tiles[1][0].East = true, true
	loop.Tiles[1][1].North, loop.Tiles[1][1].West = true, true

	tests := []struct {
		name string
		grid *engine.Grid
	}{
		{"disconnected", twoEmpty},
		{"stub into the border", deadEnd},
		{"loop", loop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSolver(tt.grid, 0).Solve()
			if !errors.Is(err, ErrNoSolution) {
				t.Errorf("Expected ErrNoSolution, got %v", err)
			}
		})
	}
}

func TestSolver_Budget(t *testing.T) {
	eng := generated(t, 8, 8, 3)

	solver := NewSolver(eng.GetState().Grid, 1)
	if _, err := solver.Solve(); !errors.Is(err, ErrBudgetExhausted) {
		t.Errorf("Expected ErrBudgetExhausted, got %v", err)
	}
	if solver.Steps() != 2 {
		t.Errorf("Expected the search to stop on the second placement, got %d", solver.Steps())
	}
}

func TestPlanActions(t *testing.T) {
	plan := map[engine.Position]int{
		{Row: 1, Col: 0}: 2,
		{Row: 0, Col: 1}: 1,
	}

	actions := PlanActions(2, 2, plan)
	expected := []engine.Action{
		{Type: engine.ActionRotate, Row: 0, Col: 1},
		{Type: engine.ActionRotate, Row: 1, Col: 0},
		{Type: engine.ActionRotate, Row: 1, Col: 0},
	}

	if len(actions) != len(expected) {
		t.Fatalf("Expected %d actions, got %d", len(expected), len(actions))
	}
	for i := range expected {
		if actions[i] != expected[i] {
			t.Errorf("Action %d: expected %+v, got %+v", i, expected[i], actions[i])
		}
	}
}

func TestChunk(t *testing.T) {
	actions := make([]engine.Action, 250)

	batches := Chunk(actions, 100)
	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[2]) != 50 {
		t.Errorf("Unexpected batch sizes %d, %d, %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}

	if got := Chunk(nil, 100); len(got) != 0 {
		t.Errorf("Expected no batches for no actions, got %d", len(got))
	}
}
