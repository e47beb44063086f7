package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for board operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsSolved() bool
	Locked() bool
	Dimensions() (int, int)
	SourcePosition() Position

	// Mutations
	RotateTile(row, col int) error
	MoveSource(direction Direction) bool
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Tiles
	TileAt(row, col int) (Tile, error)
	SpanningTree() []Edge

	// Configuration
	GetConfig() *BoardConfig
	SetConfig(config *BoardConfig) error

	// History
	GetActionHistory() []ActionHistoryEntry
	GetLastAction() *ActionHistoryEntry
}

// Action is a single player command, used for bulk execution
type Action struct {
	Type      ActionKind `json:"type"`
	Row       int        `json:"row,omitempty"`
	Col       int        `json:"col,omitempty"`
	Direction string     `json:"direction,omitempty"`
}

// GameEngine implements the Engine interface. It is not safe for concurrent use.
type GameEngine struct {
	state   *GameState
	config  *BoardConfig
	tree    []Edge
	initial *Grid
}

// NewEngine generates a board from the provided configuration
func NewEngine(config *BoardConfig) (*GameEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	applyDefaultMessages(config)

	engine := &GameEngine{config: config}
	if err := engine.generate(); err != nil {
		return nil, err
	}
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the default configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultBoardConfig())
	if err != nil {
		panic(fmt.Sprintf("default board config is invalid: %v", err))
	}
	return engine
}

// NewEngineFromGrid wraps a prepared grid. The tile at source is marked as the
// power station and the cursor starts there.
func NewEngineFromGrid(grid *Grid, source Position) (*GameEngine, error) {
	if grid == nil || grid.Width <= 0 || grid.Height <= 0 {
		return nil, fmt.Errorf("%w: grid must be at least 1x1", ErrInvalidConfiguration)
	}
	if !grid.InBounds(source) {
		return nil, fmt.Errorf("%w: source %s", ErrOutOfBounds, source)
	}

	config := NewBoardConfig(grid.Width, grid.Height)
	config.Scramble = false
	config.SourceRow, config.SourceCol = source.Row, source.Col

	grid.Tiles[source.Row][source.Col].PowerSource = true
	engine := &GameEngine{config: config, initial: grid.Clone()}
	engine.state = engine.freshState(grid, source, 0)
	return engine, nil
}

// generate builds the board, marks the power station, and computes initial power
func (e *GameEngine) generate() error {
	seed := time.Now().UnixNano()
	if e.config.Seed != nil {
		seed = *e.config.Seed
	}

	gen := NewSeededMazeGenerator(seed)
	grid, tree, err := gen.Generate(e.config.Width, e.config.Height)
	if err != nil {
		return err
	}
	if e.config.Scramble {
		gen.Scramble(grid)
	}

	source := Position{Row: e.config.SourceRow, Col: e.config.SourceCol}
	grid.Tiles[source.Row][source.Col].PowerSource = true

	e.tree = tree
	e.initial = grid.Clone()
	e.state = e.freshState(grid, source, seed)
	return nil
}

// freshState creates an initial state around grid and computes power once
func (e *GameEngine) freshState(grid *Grid, source Position, seed int64) *GameState {
	state := &GameState{
		Grid:                grid,
		Source:              source,
		PowerSource:         source,
		TotalTiles:          grid.Size(),
		Message:             e.config.Messages.Welcome,
		ConfigName:          e.config.Name,
		Seed:                seed,
		History:             []ActionHistoryEntry{},
		CurrentActions:      []ActionHistoryEntry{},
		CurrentActionsCount: 0,
	}
	state.Recompute(e.config)
	return state
}

// GetState returns the current game state. The engine keeps mutating it;
// use Snapshot for a copy that outlives the caller's lock.
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a deep copy of the state sharing nothing with gs
func (gs *GameState) Snapshot() *GameState {
	if gs == nil {
		return nil
	}
	snap := *gs
	if gs.Grid != nil {
		snap.Grid = gs.Grid.Clone()
	}
	snap.History = append([]ActionHistoryEntry{}, gs.History...)
	snap.CurrentActions = append([]ActionHistoryEntry{}, gs.CurrentActions...)
	snap.Board = append([]string(nil), gs.Board...)
	return &snap
}

// Reset restores the board as it was generated
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.History
	prevTotal := e.state.TotalActions

	e.state = e.freshState(e.initial.Clone(), e.state.PowerSource, e.state.Seed)

	e.state.History = prevHistory
	e.state.TotalActions = prevTotal
	return e.state
}

// IsSolved runs the solved-state traversal over the current powered flags
func (e *GameEngine) IsSolved() bool {
	return IsSolved(e.state.Grid, e.state.Source)
}

// Dimensions returns the board width and height
func (e *GameEngine) Dimensions() (int, int) {
	return e.state.Grid.Width, e.state.Grid.Height
}

// SourcePosition returns the current power station cursor
func (e *GameEngine) SourcePosition() Position {
	return e.state.Source
}

// Locked reports whether the board refuses input: solved with LockOnSolve set
func (e *GameEngine) Locked() bool {
	return e.config.LockOnSolve && e.state.Solved
}

// RotateTile turns the tile at (row, col) clockwise and recomputes power
func (e *GameEngine) RotateTile(row, col int) error {
	if e.Locked() {
		return ErrBoardLocked
	}
	target := Position{Row: row, Col: col}
	source := e.state.Source

	if err := e.state.RotateTile(target, e.config); err != nil {
		return err
	}

	e.state.AddActionToHistory(ActionRotate, target, "", source, source, true)
	return nil
}

// MoveSource moves the power station toward direction if a wire leads there
func (e *GameEngine) MoveSource(direction Direction) bool {
	if e.Locked() {
		return false
	}
	from := e.state.Source
	success := e.state.MoveSource(direction, e.config)

	e.state.AddActionToHistory(ActionMove, from.Step(direction), direction, from, e.state.Source, success)
	return success
}

// CanMove checks whether the power station can move toward direction
func (e *GameEngine) CanMove(direction Direction) bool {
	return e.state.CanMoveSource(direction)
}

// GetPossibleMoves returns all directions the power station can move
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// TileAt returns a copy of the tile at (row, col)
func (e *GameEngine) TileAt(row, col int) (Tile, error) {
	tile, err := e.state.Grid.Tile(Position{Row: row, Col: col})
	if err != nil {
		return Tile{}, err
	}
	return *tile, nil
}

// SpanningTree returns the tree the board was drawn from. Boards built with
// NewEngineFromGrid have no tree.
func (e *GameEngine) SpanningTree() []Edge {
	return append([]Edge(nil), e.tree...)
}

// GetConfig returns the current board configuration
func (e *GameEngine) GetConfig() *BoardConfig {
	return e.config
}

// SetConfig sets a new board configuration and generates a fresh board
func (e *GameEngine) SetConfig(config *BoardConfig) error {
	if err := ValidateBoardConfig(config); err != nil {
		return err
	}
	applyDefaultMessages(config)

	prev := e.config
	e.config = config
	if err := e.generate(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetActionHistory returns the complete action history
func (e *GameEngine) GetActionHistory() []ActionHistoryEntry {
	return e.state.History
}

// GetLastAction returns the last action taken, or nil if none
func (e *GameEngine) GetLastAction() *ActionHistoryEntry {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// Apply executes a single action. Rotations outside the board return
// ErrOutOfBounds; an unknown direction is an error, a blocked move is not.
func (e *GameEngine) Apply(action Action) (bool, error) {
	switch action.Type {
	case ActionRotate:
		if err := e.RotateTile(action.Row, action.Col); err != nil {
			return false, err
		}
		return true, nil
	case ActionMove:
		dir, err := ParseDirection(action.Direction)
		if err != nil {
			return false, err
		}
		if e.Locked() {
			return false, ErrBoardLocked
		}
		return e.MoveSource(dir), nil
	default:
		return false, fmt.Errorf("unknown action type %q", action.Type)
	}
}

// BulkApply executes actions in sequence until the board is solved or an action errors
func (e *GameEngine) BulkApply(actions []Action) ([]bool, error) {
	results := make([]bool, 0, len(actions))

	for _, action := range actions {
		if e.state.Solved {
			break
		}

		ok, err := e.Apply(action)
		if err != nil {
			return results, err
		}
		results = append(results, ok)
	}

	return results, nil
}
