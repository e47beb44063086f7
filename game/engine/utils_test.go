package engine

import (
	"reflect"
	"testing"
)

func TestShapeOf(t *testing.T) {
	tests := map[string]Shape{
		"":     ShapeEmpty,
		"S":    ShapeDeadEnd,
		"NS":   ShapeStraight,
		"EW":   ShapeStraight,
		"NE":   ShapeCorner,
		"SW":   ShapeCorner,
		"NEW":  ShapeTee,
		"NESW": ShapeCross,
	}

	for stubs, want := range tests {
		grid := gridFromStubs(t, [][]string{{stubs}})
		if got := ShapeOf(grid.Tiles[0][0]); got != want {
			t.Errorf("ShapeOf(%q) = %s, want %s", stubs, got, want)
		}
	}
}

func TestRenderBoard(t *testing.T) {
	grid := gridFromStubs(t, [][]string{
		{"E", "WS", ""},
		{"", "NE", "W"},
	})
	RecomputePower(grid, Position{0, 0})

	got := RenderBoard(grid, Position{0, 0})
	want := []string{
		"╶@┐+·",
		"· └+╴+",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RenderBoard:\n got %q\nwant %q", got, want)
	}

	if RenderBoard(nil, Position{}) != nil {
		t.Error("Expected nil for a nil grid")
	}
}

func TestCountShapes(t *testing.T) {
	grid := gridFromStubs(t, [][]string{
		{"E", "WS", ""},
		{"", "NE", "W"},
	})

	counts := CountShapes(grid)
	want := map[Shape]int{ShapeDeadEnd: 2, ShapeCorner: 2, ShapeEmpty: 2}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Expected %v, got %v", want, counts)
	}
}

func TestWireDistances(t *testing.T) {
	grid := gridFromStubs(t, [][]string{
		{"E", "WS", ""},
		{"", "NE", "W"},
	})

	dist := WireDistances(grid, Position{0, 0})
	want := map[Position]int{{0, 0}: 0, {0, 1}: 1, {1, 1}: 2, {1, 2}: 3}
	if !reflect.DeepEqual(dist, want) {
		t.Errorf("Expected %v, got %v", want, dist)
	}

	if len(WireDistances(grid, Position{-1, 0})) != 0 {
		t.Error("Expected no distances from an out of bounds source")
	}
}

func TestManhattanDistance(t *testing.T) {
	if d := ManhattanDistance(Position{0, 0}, Position{3, 4}); d != 7 {
		t.Errorf("Expected 7, got %d", d)
	}
	if d := ManhattanDistance(Position{5, 1}, Position{2, 2}); d != 4 {
		t.Errorf("Expected 4, got %d", d)
	}
}
