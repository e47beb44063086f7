package service

import (
	"time"

	"github.com/wricardo/lightem/game/engine"
)

// Event types emitted by game operations
const (
	EventRotate      = "rotate"
	EventMove        = "move"
	EventMoveBlocked = "move_blocked"
	EventPowerChange = "power_change"
	EventSolved      = "solved"
	EventReset       = "reset"
)

// Stop reason codes reported by bulk execution
const (
	StopSolved        = "solved"
	StopBlocked       = "blocked"
	StopOutOfBounds   = "out_of_bounds"
	StopInvalidAction = "invalid_action"
)

// NewGameOptions overrides fields of the selected board configuration.
// Nil fields keep the configured value.
type NewGameOptions struct {
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`
	SourceRow *int   `json:"source_row,omitempty"`
	SourceCol *int   `json:"source_col,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
	Scramble  *bool  `json:"scramble,omitempty"`

	LockOnSolve *bool `json:"lock_on_solve,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	GameConfig     *engine.BoardConfig `json:"game_config"`
}

// ActionResult contains the result of a single rotate or move
type ActionResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkActionResult contains the result of several actions run in sequence
type BulkActionResult struct {
	// Summary
	ActionsExecuted  int               `json:"actions_executed"`
	RequestedActions int               `json:"requested_actions"`
	Success          bool              `json:"success"`
	GameState        *engine.GameState `json:"game_state"`
	Events           []GameEvent       `json:"events"`
	StoppedReason    string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode   string            `json:"stop_reason_code,omitempty"` // solved|blocked|out_of_bounds|invalid_action
	StoppedOnAction  int               `json:"stopped_on_action,omitempty"`
	Truncated        bool              `json:"truncated,omitempty"`
	Limit            int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartSource  engine.Position `json:"start_source"`
	EndSource    engine.Position `json:"end_source"`
	StartPowered int             `json:"start_powered"`
	EndPowered   int             `json:"end_powered"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	Board         []string `json:"board,omitempty"`
}

// StepInfo is a compact record for each executed action
type StepInfo struct {
	Idx           int               `json:"idx"`
	Action        engine.ActionKind `json:"action"`
	Target        engine.Position   `json:"target"`
	Direction     string            `json:"direction,omitempty"`
	From          engine.Position   `json:"from"`
	To            engine.Position   `json:"to"`
	PoweredBefore int               `json:"powered_before"`
	PoweredAfter  int               `json:"powered_after"`
	Success       bool              `json:"success"`
	Solved        bool              `json:"solved,omitempty"`
}

// TileInfo describes one tile together with the wires it currently forms
type TileInfo struct {
	Tile     engine.Tile        `json:"tile"`
	Shape    engine.Shape       `json:"shape"`
	Glyph    string             `json:"glyph"`
	Wires    []engine.Direction `json:"wires"`
	IsSource bool               `json:"is_source"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "rotate", "move", "move_blocked", "power_change", "solved", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.ActionHistoryEntry `json:"actions"`
	TotalActions int                         `json:"total_actions"`
	Page         int                         `json:"page"`
	PageSize     int                         `json:"page_size"`
	TotalPages   int                         `json:"total_pages"`
	HasNext      bool                        `json:"has_next"`
	HasPrevious  bool                        `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Scramble    bool   `json:"scramble"`
	Seeded      bool   `json:"seeded"`
}
