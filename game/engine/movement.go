package engine

import (
	"fmt"
	"time"
)

// CanMoveSource checks whether a wire leads from the power station toward direction
func (gs *GameState) CanMoveSource(direction Direction) bool {
	if gs.Grid == nil {
		return false
	}
	return gs.Grid.HasWire(gs.Source, direction)
}

// MoveSource attempts to move the power station one tile toward direction.
// A move without a wire is rejected silently and leaves the station in place.
func (gs *GameState) MoveSource(direction Direction, config *BoardConfig) bool {
	if !gs.CanMoveSource(direction) {
		target := gs.Source.Step(direction)
		gs.Message = fmt.Sprintf("Can't move %s from %s to %s", direction, gs.Source, target)
		if config != nil && config.Messages.CantMove != "" {
			gs.Message = config.Messages.CantMove + fmt.Sprintf(" [Blocked: %s toward %s]", gs.Source, direction)
		}
		gs.Recompute(config)
		return false
	}

	gs.Source = gs.Source.Step(direction)
	gs.Message = ""
	if config != nil {
		gs.Message = config.Messages.Moved
	}
	gs.Recompute(config)
	return true
}

// RotateTile turns the tile at target clockwise and recomputes power
func (gs *GameState) RotateTile(target Position, config *BoardConfig) error {
	if err := gs.Grid.Rotate(target); err != nil {
		return err
	}

	gs.Message = ""
	if config != nil {
		gs.Message = config.Messages.Rotated
	}
	gs.Recompute(config)
	return nil
}

// Recompute refreshes the powered flags, the solved flag, and the status message.
// It is the single place derived state is rebuilt after a mutation.
func (gs *GameState) Recompute(config *BoardConfig) {
	gs.TotalTiles = gs.Grid.Size()

	// A cursor off the board lights nothing
	count, err := RecomputePower(gs.Grid, gs.Source)
	gs.PoweredCount = count
	gs.Solved = err == nil && IsSolved(gs.Grid, gs.Source)

	if config == nil {
		return
	}
	if gs.Solved {
		gs.Message = config.Messages.Solved
		return
	}
	status := fmt.Sprintf(config.Messages.PowerStatus, gs.PoweredCount, gs.TotalTiles)
	if gs.Message == "" {
		gs.Message = status
	} else {
		gs.Message = gs.Message + " " + status
	}
}

// AddActionToHistory adds an action to the game's history
func (gs *GameState) AddActionToHistory(action ActionKind, target Position, direction Direction, from, to Position, success bool) {
	entry := ActionHistoryEntry{
		Action:       action,
		Target:       target,
		Direction:    direction,
		FromSource:   from,
		ToSource:     to,
		PoweredCount: gs.PoweredCount,
		Solved:       gs.Solved,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		ActionNumber: gs.TotalActions + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.History = append(gs.History, entry)
	gs.TotalActions++

	gs.CurrentActions = append(gs.CurrentActions, entry)
	gs.CurrentActionsCount++
}
