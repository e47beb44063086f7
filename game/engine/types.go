package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the four absolute sides of a tile
type Direction string

const (
	North Direction = "north"
	East  Direction = "east"
	South Direction = "south"
	West  Direction = "west"

	// Validation constants
	MinBoardSize   = 1
	MaxBulkActions = 100
)

// Directions lists the sides in clockwise order starting at North
var Directions = []Direction{North, East, South, West}

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOutOfBounds          = errors.New("position out of bounds")
	ErrBoardLocked          = errors.New("board is solved and locked")
)

// ParseDirection accepts compass names and the arrow-key aliases up/right/down/left
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "up", "n":
		return North, nil
	case "east", "right", "e":
		return East, nil
	case "south", "down", "s":
		return South, nil
	case "west", "left", "w":
		return West, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Opposite returns the side facing d on the neighboring tile
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

// Delta returns the row/column offset of a step toward d
func (d Direction) Delta() (int, int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	}
	return 0, 0
}

// Position identifies a tile by row and column
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Step returns the position one tile toward d. It does not check bounds.
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Tile is a single board cell with four wire stubs
type Tile struct {
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	North       bool `json:"north"`
	East        bool `json:"east"`
	South       bool `json:"south"`
	West        bool `json:"west"`
	PowerSource bool `json:"power_source,omitempty"`
	Powered     bool `json:"powered"`
}

// Position returns the tile's grid coordinates
func (t *Tile) Position() Position {
	return Position{Row: t.Row, Col: t.Col}
}

// Open reports whether the stub facing d is open
func (t *Tile) Open(d Direction) bool {
	switch d {
	case North:
		return t.North
	case East:
		return t.East
	case South:
		return t.South
	case West:
		return t.West
	}
	return false
}

// SetOpen opens or closes the stub facing d
func (t *Tile) SetOpen(d Direction, open bool) {
	switch d {
	case North:
		t.North = open
	case East:
		t.East = open
	case South:
		t.South = open
	case West:
		t.West = open
	}
}

// OpenSides returns the open stubs in clockwise order
func (t *Tile) OpenSides() []Direction {
	sides := make([]Direction, 0, 4)
	for _, d := range Directions {
		if t.Open(d) {
			sides = append(sides, d)
		}
	}
	return sides
}

// StubCount returns the number of open stubs
func (t *Tile) StubCount() int {
	return len(t.OpenSides())
}

// Rotate turns the tile 90 degrees clockwise.
// The West stub becomes North, North becomes East, East becomes South, South becomes West.
func (t *Tile) Rotate() {
	t.North, t.East, t.South, t.West = t.West, t.North, t.East, t.South
}

// Edge joins two grid-adjacent tiles during generation
type Edge struct {
	From   Position `json:"from"`
	To     Position `json:"to"`
	Weight int64    `json:"weight"`
}

// BoardConfig describes how a board is generated
type BoardConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SourceRow   int    `json:"source_row"`
	SourceCol   int    `json:"source_col"`
	Seed        *int64 `json:"seed,omitempty"`
	Scramble    bool   `json:"scramble"`
	LockOnSolve bool   `json:"lock_on_solve,omitempty"`
	Messages    struct {
		Welcome     string `json:"welcome"`
		Solved      string `json:"solved"`
		Rotated     string `json:"rotated"`
		Moved       string `json:"moved"`
		CantMove    string `json:"cant_move"`
		PowerStatus string `json:"power_status"`
	} `json:"messages"`
}

// GameState represents the complete, externally readable board state
type GameState struct {
	Grid         *Grid                `json:"grid"`
	Source       Position             `json:"source"`
	PowerSource  Position             `json:"power_source"`
	Solved       bool                 `json:"solved"`
	PoweredCount int                  `json:"powered_count"`
	TotalTiles   int                  `json:"total_tiles"`
	Message      string               `json:"message"`
	ConfigName   string               `json:"config_name"`
	Seed         int64                `json:"seed"`
	History      []ActionHistoryEntry `json:"action_history"`
	TotalActions int                  `json:"total_actions"`

	// CurrentActions tracks only the actions since the last reset. It mirrors History
	// entries but gets cleared on reset while History remains cumulative.
	CurrentActions      []ActionHistoryEntry `json:"current_actions"`
	CurrentActionsCount int                  `json:"current_actions_count"`

	// Computed helper view (not required for core game logic)
	Board []string `json:"board,omitempty"`
}

// ActionKind names a player mutation
type ActionKind string

const (
	ActionRotate ActionKind = "rotate"
	ActionMove   ActionKind = "move"
)

// ActionHistoryEntry represents a single rotate or move in the game history
type ActionHistoryEntry struct {
	Action       ActionKind `json:"action"`
	Target       Position   `json:"target"`
	Direction    Direction  `json:"direction,omitempty"`
	FromSource   Position   `json:"from_source"`
	ToSource     Position   `json:"to_source"`
	PoweredCount int        `json:"powered_count"`
	Solved       bool       `json:"solved"`
	Timestamp    int64      `json:"timestamp"`
	Success      bool       `json:"success"`
	ActionNumber int        `json:"action_number"`
}
